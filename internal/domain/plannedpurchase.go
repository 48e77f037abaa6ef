// internal/domain/plannedpurchase.go
package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"finledger/internal/util"
)

// PlannedPurchase is a future expense noted against an account. It has no
// ledger effect until the user records the matching operation; it exists so
// the caller can show what spending is coming. Cascades with its account.
type PlannedPurchase struct {
	ID        uuid.UUID       `json:"id"`
	AccountID uuid.UUID       `json:"account_id"`
	Name      string          `json:"name"`
	Category  ExpenseCategory `json:"category"`
	Price     decimal.Decimal `json:"price"`
	CreatedAt time.Time       `json:"created_at"`
}

// NewPlannedPurchase creates a planned purchase for an account.
func NewPlannedPurchase(accountID uuid.UUID, name string, category ExpenseCategory, price decimal.Decimal) (*PlannedPurchase, error) {
	if price.IsNegative() {
		return nil, util.ErrInvalidAmount
	}
	if category == "" {
		category = ExpenseUndefined
	}
	return &PlannedPurchase{
		ID:        uuid.New(),
		AccountID: accountID,
		Name:      name,
		Category:  category,
		Price:     price,
		CreatedAt: time.Now().UTC(),
	}, nil
}
