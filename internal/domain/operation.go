// internal/domain/operation.go
package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal" // For precise monetary calculations

	"finledger/internal/util"
)

// Operation is a single money movement in a ledger. The amount is a
// non-negative magnitude; the direction is encoded solely by Kind.
// Operations are created by their owning Account or SavingGoal and never
// move to a different owner.
type Operation struct {
	ID     uuid.UUID       `json:"id"`
	Date   time.Time       `json:"date"`
	Amount decimal.Decimal `json:"amount"`
	Kind   OperationKind   `json:"kind"`
}

// NewOperation creates an Operation. A negative amount is a caller error.
func NewOperation(date time.Time, amount decimal.Decimal, kind OperationKind) (*Operation, error) {
	if amount.IsNegative() {
		return nil, util.ErrInvalidAmount
	}
	return &Operation{
		ID:     uuid.New(),
		Date:   date,
		Amount: amount,
		Kind:   kind,
	}, nil
}

// Signed returns the operation's contribution to a balance: +Amount for an
// income, -Amount for an expense.
func (o *Operation) Signed() decimal.Decimal {
	switch o.Kind.Type {
	case OperationTypeIncome:
		return o.Amount
	case OperationTypeExpense:
		return o.Amount.Neg()
	}
	// Unknown tags contribute nothing; they cannot be constructed through
	// IncomeKind/ExpenseKind.
	return decimal.Zero
}

// UpdateOperationParams carries the fields of a partial operation edit.
// Nil fields are left untouched.
type UpdateOperationParams struct {
	Date   *time.Time
	Amount *decimal.Decimal
	Kind   *OperationKind
}

// Update applies a partial edit. The amount invariant is checked before any
// field is touched, so a rejected edit never partially mutates the record.
func (o *Operation) Update(params UpdateOperationParams) error {
	if params.Amount != nil && params.Amount.IsNegative() {
		return util.ErrInvalidAmount
	}
	if params.Date != nil {
		o.Date = *params.Date
	}
	if params.Amount != nil {
		o.Amount = *params.Amount
	}
	if params.Kind != nil {
		o.Kind = *params.Kind
	}
	return nil
}

// sumOperations derives a balance from an operation list by signed sum.
// This is the single derivation rule shared by Account and SavingGoal.
func sumOperations(ops []*Operation) decimal.Decimal {
	total := decimal.Zero
	for _, op := range ops {
		total = total.Add(op.Signed())
	}
	return total
}
