// internal/api/handler/account.go
package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/shopspring/decimal"

	"finledger/internal/api/types"
	"finledger/internal/domain"
	"finledger/internal/util"
)

// CreateAccountRequest represents the request body for account creation.
type CreateAccountRequest struct {
	Name           string          `json:"name"`
	CurrencyCode   string          `json:"currency_code"`
	InitialDeposit decimal.Decimal `json:"initial_deposit"`
}

// CreateAccount handles the create account request.
// POST /accounts
func (h *LedgerHandler) CreateAccount(w http.ResponseWriter, r *http.Request) {
	var req CreateAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondWithError(w, util.ErrInvalidInput)
		return
	}
	if req.Name == "" || req.CurrencyCode == "" {
		h.respondWithError(w, util.ErrInvalidInput)
		return
	}

	account, err := h.service.CreateAccount(r.Context(), req.Name, req.CurrencyCode, req.InitialDeposit)
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	h.respondWithJSON(w, http.StatusCreated, map[string]interface{}{
		"account_id":    account.ID,
		"name":          account.Name,
		"currency_code": account.CurrencyCode,
		"balance":       account.Balance(),
	})
}

// ListAccounts handles the list accounts request.
// GET /accounts
func (h *LedgerHandler) ListAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.service.ListAccounts(r.Context())
	if err != nil {
		h.respondWithError(w, err)
		return
	}
	h.respondWithJSON(w, http.StatusOK, map[string]interface{}{"data": accounts})
}

// GetAccount handles the get account request.
// GET /accounts/{accountID}
func (h *LedgerHandler) GetAccount(w http.ResponseWriter, r *http.Request) {
	accountID, err := uuidParam(r, "accountID")
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	account, err := h.service.GetAccount(r.Context(), accountID)
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	h.respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"account_id":    account.ID,
		"name":          account.Name,
		"currency_code": account.CurrencyCode,
		"balance":       account.Balance(),
		"created_at":    account.CreatedAt,
	})
}

// RenameAccountRequest represents the request body for renaming an account.
type RenameAccountRequest struct {
	Name string `json:"name"`
}

// RenameAccount handles the rename account request.
// PATCH /accounts/{accountID}
func (h *LedgerHandler) RenameAccount(w http.ResponseWriter, r *http.Request) {
	accountID, err := uuidParam(r, "accountID")
	if err != nil {
		h.respondWithError(w, err)
		return
	}
	var req RenameAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondWithError(w, util.ErrInvalidInput)
		return
	}

	if err := h.service.RenameAccount(r.Context(), accountID, req.Name); err != nil {
		h.respondWithError(w, err)
		return
	}
	h.respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"message":    "Account renamed",
		"account_id": accountID,
	})
}

// DeleteAccount handles the delete account request, cascading to owned
// operations, goals and planned purchases.
// DELETE /accounts/{accountID}
func (h *LedgerHandler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	accountID, err := uuidParam(r, "accountID")
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	if err := h.service.DeleteAccount(r.Context(), accountID); err != nil {
		h.respondWithError(w, err)
		return
	}
	h.respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"message":    "Account deleted",
		"account_id": accountID,
	})
}

// GetBalance handles the get balance request.
// GET /accounts/{accountID}/balance
func (h *LedgerHandler) GetBalance(w http.ResponseWriter, r *http.Request) {
	accountID, err := uuidParam(r, "accountID")
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	balance, err := h.service.GetBalance(r.Context(), accountID)
	if err != nil {
		h.respondWithError(w, err)
		return
	}
	h.respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"account_id": accountID,
		"balance":    balance,
	})
}

// AddOperationRequest represents the request body for adding an operation.
type AddOperationRequest struct {
	Date     string          `json:"date"` // RFC3339; defaults to now
	Amount   decimal.Decimal `json:"amount"`
	Type     string          `json:"type"` // INCOME or EXPENSE
	Category string          `json:"category"`
}

// AddOperation handles the add operation request.
// POST /accounts/{accountID}/operations
func (h *LedgerHandler) AddOperation(w http.ResponseWriter, r *http.Request) {
	accountID, err := uuidParam(r, "accountID")
	if err != nil {
		h.respondWithError(w, err)
		return
	}
	var req AddOperationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondWithError(w, util.ErrInvalidInput)
		return
	}
	kind, err := parseKind(req.Type, req.Category)
	if err != nil {
		h.respondWithError(w, err)
		return
	}
	date, err := parseWhen(req.Date)
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	op, err := h.service.AddOperation(r.Context(), accountID, date, req.Amount, kind)
	if err != nil {
		h.respondWithError(w, err)
		return
	}
	h.respondWithJSON(w, http.StatusCreated, map[string]interface{}{
		"operation_id": op.ID,
		"date":         op.Date,
		"amount":       op.Amount,
		"kind":         op.Kind,
	})
}

// UpdateOperationRequest represents the request body for a partial
// operation edit. Absent fields are left untouched.
type UpdateOperationRequest struct {
	Date     *string          `json:"date"`
	Amount   *decimal.Decimal `json:"amount"`
	Type     *string          `json:"type"`
	Category *string          `json:"category"`
}

// UpdateOperation handles the edit operation request.
// PATCH /accounts/{accountID}/operations/{operationID}
func (h *LedgerHandler) UpdateOperation(w http.ResponseWriter, r *http.Request) {
	accountID, err := uuidParam(r, "accountID")
	if err != nil {
		h.respondWithError(w, err)
		return
	}
	operationID, err := uuidParam(r, "operationID")
	if err != nil {
		h.respondWithError(w, err)
		return
	}
	var req UpdateOperationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondWithError(w, util.ErrInvalidInput)
		return
	}

	params := domain.UpdateOperationParams{Amount: req.Amount}
	if req.Date != nil {
		date, err := parseWhen(*req.Date)
		if err != nil {
			h.respondWithError(w, err)
			return
		}
		params.Date = &date
	}
	if req.Type != nil {
		category := ""
		if req.Category != nil {
			category = *req.Category
		}
		kind, err := parseKind(*req.Type, category)
		if err != nil {
			h.respondWithError(w, err)
			return
		}
		params.Kind = &kind
	} else if req.Category != nil {
		// A category belongs to one arm of the kind union; without the
		// type the edit is ambiguous.
		h.respondWithError(w, util.ErrInvalidInput)
		return
	}

	op, err := h.service.UpdateOperation(r.Context(), accountID, operationID, params)
	if err != nil {
		h.respondWithError(w, err)
		return
	}
	h.respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"operation_id": op.ID,
		"date":         op.Date,
		"amount":       op.Amount,
		"kind":         op.Kind,
	})
}

// RemoveOperation handles the remove operation request.
// DELETE /accounts/{accountID}/operations/{operationID}
func (h *LedgerHandler) RemoveOperation(w http.ResponseWriter, r *http.Request) {
	accountID, err := uuidParam(r, "accountID")
	if err != nil {
		h.respondWithError(w, err)
		return
	}
	operationID, err := uuidParam(r, "operationID")
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	if err := h.service.RemoveOperation(r.Context(), accountID, operationID); err != nil {
		h.respondWithError(w, err)
		return
	}
	h.respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"message":      "Operation removed",
		"operation_id": operationID,
	})
}

// GetOperationHistory handles the operation history request. Results are
// sorted by date descending for display.
// GET /accounts/{accountID}/operations
func (h *LedgerHandler) GetOperationHistory(w http.ResponseWriter, r *http.Request) {
	accountID, err := uuidParam(r, "accountID")
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || limit <= 0 {
		limit = 10 // Default limit
	}
	offset, err := strconv.Atoi(r.URL.Query().Get("offset"))
	if err != nil || offset < 0 {
		offset = 0 // Default offset
	}

	ops, totalCount, err := h.service.GetOperationHistory(r.Context(), accountID, limit, offset)
	if err != nil {
		h.respondWithError(w, err)
		return
	}
	h.respondWithJSON(w, http.StatusOK, types.PaginatedResponse[*domain.Operation]{
		Data:       ops,
		Limit:      limit,
		Offset:     offset,
		TotalCount: totalCount,
	})
}
