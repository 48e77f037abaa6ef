// internal/api/handler/helpers.go
package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"finledger/internal/domain"
	"finledger/internal/service"
	"finledger/internal/util"
)

// DefaultTimeout is the per-request timeout applied by the router.
const DefaultTimeout = 15 * time.Second

// LedgerHandler handles HTTP requests for accounts, operations, saving
// goals and planned purchases.
type LedgerHandler struct {
	service service.LedgerService
	logger  *slog.Logger
}

// NewLedgerHandler creates a new LedgerHandler.
func NewLedgerHandler(svc service.LedgerService, logger *slog.Logger) *LedgerHandler {
	return &LedgerHandler{
		service: svc,
		logger:  logger,
	}
}

// Helper function to send JSON responses.
func (h *LedgerHandler) respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		h.logger.Error("Failed to marshal JSON response", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write(response)
}

// Helper function to send error responses.
func (h *LedgerHandler) respondWithError(w http.ResponseWriter, err error) {
	statusCode := http.StatusInternalServerError
	message := "Internal server error"

	switch {
	case util.IsError(err, util.ErrInvalidInput),
		util.IsError(err, util.ErrInvalidAmount),
		util.IsError(err, util.ErrInvalidTarget),
		util.IsError(err, util.ErrInvalidGoal):
		statusCode = http.StatusBadRequest
		message = err.Error()
	case util.IsError(err, util.ErrNotFound),
		util.IsError(err, util.ErrAccountNotFound),
		util.IsError(err, util.ErrGoalNotFound):
		statusCode = http.StatusNotFound
		message = "Resource not found"
	case util.IsError(err, util.ErrInsufficientFunds):
		statusCode = http.StatusPaymentRequired // 402 Payment Required
		message = "Insufficient funds"
	default:
		h.logger.Error("Unhandled service error", "error", err)
	}

	h.respondWithJSON(w, statusCode, map[string]string{"error": message})
}

// uuidParam parses a UUID path parameter.
func uuidParam(r *http.Request, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		return uuid.Nil, util.ErrInvalidInput
	}
	return id, nil
}

// parseKind builds an OperationKind from its wire form. The category
// enumerations are closed; an unknown value is rejected here so it can
// never reach a ledger or the store.
func parseKind(opType, category string) (domain.OperationKind, error) {
	switch domain.OperationType(opType) {
	case domain.OperationTypeIncome:
		if category == "" {
			category = string(domain.IncomeUndefined)
		}
		c := domain.IncomeCategory(category)
		if !c.IsValid() {
			return domain.OperationKind{}, util.ErrInvalidInput
		}
		return domain.IncomeKind(c), nil
	case domain.OperationTypeExpense:
		if category == "" {
			category = string(domain.ExpenseUndefined)
		}
		c := domain.ExpenseCategory(category)
		if !c.IsValid() {
			return domain.OperationKind{}, util.ErrInvalidInput
		}
		return domain.ExpenseKind(c), nil
	}
	return domain.OperationKind{}, util.ErrInvalidInput
}

// parseWhen parses an optional RFC3339 timestamp, defaulting to now.
func parseWhen(raw string) (time.Time, error) {
	if raw == "" {
		return time.Now().UTC(), nil
	}
	when, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, util.ErrInvalidInput
	}
	return when, nil
}
