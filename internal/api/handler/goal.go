// internal/api/handler/goal.go
package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"finledger/internal/domain"
	"finledger/internal/util"
)

// goalView is the wire shape of a saving goal with its derived progress.
type goalView struct {
	GoalID           uuid.UUID       `json:"goal_id"`
	Name             string          `json:"name"`
	TargetAmount     decimal.Decimal `json:"target_amount"`
	CurrentAmount    decimal.Decimal `json:"current_amount"`
	ProgressAmount   decimal.Decimal `json:"progress_amount"`
	ProgressFraction float64         `json:"progress_fraction"`
}

func newGoalView(goal *domain.SavingGoal) goalView {
	return goalView{
		GoalID:           goal.ID,
		Name:             goal.Name,
		TargetAmount:     goal.TargetAmount,
		CurrentAmount:    goal.CurrentAmount(),
		ProgressAmount:   goal.ProgressAmount(),
		ProgressFraction: goal.ProgressFraction(),
	}
}

// CreateGoalRequest represents the request body for goal creation.
type CreateGoalRequest struct {
	Name         string          `json:"name"`
	TargetAmount decimal.Decimal `json:"target_amount"`
}

// CreateSavingGoal handles the create saving goal request.
// POST /accounts/{accountID}/goals
func (h *LedgerHandler) CreateSavingGoal(w http.ResponseWriter, r *http.Request) {
	accountID, err := uuidParam(r, "accountID")
	if err != nil {
		h.respondWithError(w, err)
		return
	}
	var req CreateGoalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondWithError(w, util.ErrInvalidInput)
		return
	}
	if req.Name == "" {
		h.respondWithError(w, util.ErrInvalidInput)
		return
	}

	goal, err := h.service.CreateSavingGoal(r.Context(), accountID, req.Name, req.TargetAmount)
	if err != nil {
		h.respondWithError(w, err)
		return
	}
	h.respondWithJSON(w, http.StatusCreated, newGoalView(goal))
}

// GetSavingGoal handles the get goal request.
// GET /accounts/{accountID}/goals/{goalID}
func (h *LedgerHandler) GetSavingGoal(w http.ResponseWriter, r *http.Request) {
	accountID, err := uuidParam(r, "accountID")
	if err != nil {
		h.respondWithError(w, err)
		return
	}
	goalID, err := uuidParam(r, "goalID")
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	goal, err := h.service.GetSavingGoal(r.Context(), accountID, goalID)
	if err != nil {
		h.respondWithError(w, err)
		return
	}
	h.respondWithJSON(w, http.StatusOK, newGoalView(goal))
}

// ListSavingGoals handles the list goals request.
// GET /accounts/{accountID}/goals
func (h *LedgerHandler) ListSavingGoals(w http.ResponseWriter, r *http.Request) {
	accountID, err := uuidParam(r, "accountID")
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	goals, err := h.service.ListSavingGoals(r.Context(), accountID)
	if err != nil {
		h.respondWithError(w, err)
		return
	}
	views := make([]goalView, 0, len(goals))
	for _, goal := range goals {
		views = append(views, newGoalView(goal))
	}
	h.respondWithJSON(w, http.StatusOK, map[string]interface{}{"data": views})
}

// DeleteSavingGoal handles the delete goal request, cascading the goal's
// private operations.
// DELETE /accounts/{accountID}/goals/{goalID}
func (h *LedgerHandler) DeleteSavingGoal(w http.ResponseWriter, r *http.Request) {
	accountID, err := uuidParam(r, "accountID")
	if err != nil {
		h.respondWithError(w, err)
		return
	}
	goalID, err := uuidParam(r, "goalID")
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	if err := h.service.DeleteSavingGoal(r.Context(), accountID, goalID); err != nil {
		h.respondWithError(w, err)
		return
	}
	h.respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Saving goal deleted",
		"goal_id": goalID,
	})
}

// AllocateRequest represents the request body for allocation and
// deallocation.
type AllocateRequest struct {
	Amount decimal.Decimal `json:"amount"`
	When   string          `json:"when"` // RFC3339; defaults to now
}

// allocationFunc is the shared signature of Allocate and Deallocate on the
// service.
type allocationFunc func(ctx context.Context, accountID, goalID uuid.UUID, amount decimal.Decimal, when time.Time) (*domain.Account, *domain.SavingGoal, error)

// Allocate handles the allocation request: move funds from the account
// into one of its goals.
// POST /accounts/{accountID}/goals/{goalID}/allocations
func (h *LedgerHandler) Allocate(w http.ResponseWriter, r *http.Request) {
	h.runAllocation(w, r, h.service.Allocate, "Allocation successful")
}

// Deallocate handles the reverse movement, goal back to account.
// POST /accounts/{accountID}/goals/{goalID}/deallocations
func (h *LedgerHandler) Deallocate(w http.ResponseWriter, r *http.Request) {
	h.runAllocation(w, r, h.service.Deallocate, "Deallocation successful")
}

func (h *LedgerHandler) runAllocation(w http.ResponseWriter, r *http.Request, run allocationFunc, message string) {
	accountID, err := uuidParam(r, "accountID")
	if err != nil {
		h.respondWithError(w, err)
		return
	}
	goalID, err := uuidParam(r, "goalID")
	if err != nil {
		h.respondWithError(w, err)
		return
	}
	var req AllocateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondWithError(w, util.ErrInvalidInput)
		return
	}
	when, err := parseWhen(req.When)
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	account, goal, err := run(r.Context(), accountID, goalID, req.Amount, when)
	if err != nil {
		h.respondWithError(w, err)
		return
	}
	h.respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"message":              message,
		"account_id":           account.ID,
		"account_balance":      account.Balance(),
		"goal_id":              goal.ID,
		"goal_current_amount":  goal.CurrentAmount(),
		"goal_progress_amount": goal.ProgressAmount(),
	})
}

// CreatePurchaseRequest represents the request body for a planned purchase.
type CreatePurchaseRequest struct {
	Name     string          `json:"name"`
	Category string          `json:"category"`
	Price    decimal.Decimal `json:"price"`
}

// CreatePlannedPurchase handles the create planned purchase request.
// POST /accounts/{accountID}/planned-purchases
func (h *LedgerHandler) CreatePlannedPurchase(w http.ResponseWriter, r *http.Request) {
	accountID, err := uuidParam(r, "accountID")
	if err != nil {
		h.respondWithError(w, err)
		return
	}
	var req CreatePurchaseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondWithError(w, util.ErrInvalidInput)
		return
	}
	if req.Name == "" {
		h.respondWithError(w, util.ErrInvalidInput)
		return
	}

	purchase, err := h.service.CreatePlannedPurchase(r.Context(), accountID, req.Name, domain.ExpenseCategory(req.Category), req.Price)
	if err != nil {
		h.respondWithError(w, err)
		return
	}
	h.respondWithJSON(w, http.StatusCreated, purchase)
}

// ListPlannedPurchases handles the list planned purchases request.
// GET /accounts/{accountID}/planned-purchases
func (h *LedgerHandler) ListPlannedPurchases(w http.ResponseWriter, r *http.Request) {
	accountID, err := uuidParam(r, "accountID")
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	purchases, err := h.service.ListPlannedPurchases(r.Context(), accountID)
	if err != nil {
		h.respondWithError(w, err)
		return
	}
	h.respondWithJSON(w, http.StatusOK, map[string]interface{}{"data": purchases})
}

// DeletePlannedPurchase handles the delete planned purchase request.
// DELETE /accounts/{accountID}/planned-purchases/{purchaseID}
func (h *LedgerHandler) DeletePlannedPurchase(w http.ResponseWriter, r *http.Request) {
	accountID, err := uuidParam(r, "accountID")
	if err != nil {
		h.respondWithError(w, err)
		return
	}
	purchaseID, err := uuidParam(r, "purchaseID")
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	if err := h.service.DeletePlannedPurchase(r.Context(), accountID, purchaseID); err != nil {
		h.respondWithError(w, err)
		return
	}
	h.respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"message":     "Planned purchase deleted",
		"purchase_id": purchaseID,
	})
}
