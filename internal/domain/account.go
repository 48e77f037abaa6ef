// internal/domain/account.go
package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal" // For precise monetary calculations

	"finledger/internal/util"
)

// Account is the aggregate root of a ledger: it owns an insertion-ordered
// collection of Operations and the SavingGoals scoped to it. Its balance is
// derived from the operation list on every read and is never stored, so it
// cannot desynchronize from history.
type Account struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	CurrencyCode string    `json:"currency_code"` // Fixed at creation
	CreatedAt    time.Time `json:"created_at"`

	Operations  []*Operation  `json:"operations"`
	SavingGoals []*SavingGoal `json:"saving_goals"`
}

// NewAccount creates an account with a mandatory non-negative initial
// deposit. The deposit is materialized as a synthetic Income(undefined)
// operation dated at creation time, so the balance never needs a stored
// field of its own.
func NewAccount(name, currencyCode string, initialDeposit decimal.Decimal) (*Account, error) {
	if initialDeposit.IsNegative() {
		return nil, util.ErrInvalidAmount
	}
	now := time.Now().UTC()
	account := &Account{
		ID:           uuid.New(),
		Name:         name,
		CurrencyCode: currencyCode,
		CreatedAt:    now,
		Operations:   []*Operation{},
		SavingGoals:  []*SavingGoal{},
	}
	seed, err := NewOperation(now, initialDeposit, IncomeKind(IncomeUndefined))
	if err != nil {
		return nil, err
	}
	account.Operations = append(account.Operations, seed)
	return account, nil
}

// Balance derives the account balance by signed sum over the owned
// operations. Pure read; no caching.
func (a *Account) Balance() decimal.Decimal {
	return sumOperations(a.Operations)
}

// AddOperation appends a new operation to the account's ledger. There is no
// upper bound check: an account may go into overdraft through regular
// operations; warning about it is the caller's concern.
func (a *Account) AddOperation(date time.Time, amount decimal.Decimal, kind OperationKind) (*Operation, error) {
	op, err := NewOperation(date, amount, kind)
	if err != nil {
		return nil, err
	}
	a.Operations = append(a.Operations, op)
	return op, nil
}

// FindOperation returns the operation with the given identity, or nil.
func (a *Account) FindOperation(id uuid.UUID) *Operation {
	for _, op := range a.Operations {
		if op.ID == id {
			return op
		}
	}
	return nil
}

// RemoveOperation removes the operation with the given identity. An absent
// identity returns ErrNotFound. The synthetic seed operation is not
// protected; removing it is permitted.
func (a *Account) RemoveOperation(id uuid.UUID) error {
	for i, op := range a.Operations {
		if op.ID == id {
			a.Operations = append(a.Operations[:i], a.Operations[i+1:]...)
			return nil
		}
	}
	return util.ErrNotFound
}

// Goal returns the owned saving goal with the given identity, or nil.
func (a *Account) Goal(id uuid.UUID) *SavingGoal {
	for _, g := range a.SavingGoals {
		if g.ID == id {
			return g
		}
	}
	return nil
}

// RemoveGoal detaches the goal with the given identity from the account's
// goal collection. Cascading the goal's private operations out of storage is
// the persistence collaborator's job, via the goal's OperationIDs.
func (a *Account) RemoveGoal(id uuid.UUID) error {
	for i, g := range a.SavingGoals {
		if g.ID == id {
			a.SavingGoals = append(a.SavingGoals[:i], a.SavingGoals[i+1:]...)
			return nil
		}
	}
	return util.ErrNotFound
}

// Allocate moves amount from the account into one of its saving goals by
// appending a mirrored pair of operations: an Expense(saving) on the
// account and an Income(undefined) on the goal, both dated when. Each side
// keeps deriving its balance from its own operation list; the mirrored pair
// is what keeps that derivation rule local to each aggregate.
//
// Preconditions are checked in a fixed order for deterministic error
// reporting: goal ownership, sufficient funds, non-negative amount. Either
// both operations are appended or neither is.
func (a *Account) Allocate(goal *SavingGoal, amount decimal.Decimal, when time.Time) (accountOp, goalOp *Operation, err error) {
	if goal == nil || goal.AccountID != a.ID {
		return nil, nil, util.ErrInvalidGoal
	}
	if a.Balance().LessThan(amount) {
		return nil, nil, util.ErrInsufficientFunds
	}
	if amount.IsNegative() {
		return nil, nil, util.ErrInvalidAmount
	}

	accountOp, err = NewOperation(when, amount, ExpenseKind(ExpenseSaving))
	if err != nil {
		return nil, nil, err
	}
	goalOp, err = NewOperation(when, amount, IncomeKind(IncomeUndefined))
	if err != nil {
		return nil, nil, err
	}

	a.Operations = append(a.Operations, accountOp)
	goal.Operations = append(goal.Operations, goalOp)
	return accountOp, goalOp, nil
}

// Deallocate is the inverse of Allocate: it moves amount back from a goal
// into the account with the mirrored pair Income(undefined) on the account
// and Expense(saving) on the goal. The guard is the goal's current amount,
// so a goal can never go negative through deallocation.
func (a *Account) Deallocate(goal *SavingGoal, amount decimal.Decimal, when time.Time) (accountOp, goalOp *Operation, err error) {
	if goal == nil || goal.AccountID != a.ID {
		return nil, nil, util.ErrInvalidGoal
	}
	if goal.CurrentAmount().LessThan(amount) {
		return nil, nil, util.ErrInsufficientFunds
	}
	if amount.IsNegative() {
		return nil, nil, util.ErrInvalidAmount
	}

	accountOp, err = NewOperation(when, amount, IncomeKind(IncomeUndefined))
	if err != nil {
		return nil, nil, err
	}
	goalOp, err = NewOperation(when, amount, ExpenseKind(ExpenseSaving))
	if err != nil {
		return nil, nil, err
	}

	a.Operations = append(a.Operations, accountOp)
	goal.Operations = append(goal.Operations, goalOp)
	return accountOp, goalOp, nil
}

// OperationIDs returns the identities of every operation the account owns
// directly. Together with GoalIDs it is the cascade set a delete must cover.
func (a *Account) OperationIDs() []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(a.Operations))
	for _, op := range a.Operations {
		ids = append(ids, op.ID)
	}
	return ids
}

// GoalIDs returns the identities of the account's saving goals.
func (a *Account) GoalIDs() []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(a.SavingGoals))
	for _, g := range a.SavingGoals {
		ids = append(ids, g.ID)
	}
	return ids
}
