// internal/domain/savinggoal.go
package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"finledger/internal/util"
)

// SavingGoal is a sub-ledger scoped to a single account: it owns its own
// operation list, disjoint from the account's, and derives its current
// amount by the same signed-sum rule. The back-reference to the owning
// account is an identity, not a handle; a goal never mutates its account
// and cannot outlive it.
type SavingGoal struct {
	ID           uuid.UUID       `json:"id"`
	AccountID    uuid.UUID       `json:"account_id"`
	Name         string          `json:"name"`
	TargetAmount decimal.Decimal `json:"target_amount"`
	CreatedAt    time.Time       `json:"created_at"`

	Operations []*Operation `json:"operations"`
}

// NewSavingGoal creates a goal against an existing account and registers it
// in the account's goal collection. The target must be positive.
func NewSavingGoal(name string, targetAmount decimal.Decimal, account *Account) (*SavingGoal, error) {
	if targetAmount.LessThanOrEqual(decimal.Zero) {
		return nil, util.ErrInvalidTarget
	}
	goal := &SavingGoal{
		ID:           uuid.New(),
		AccountID:    account.ID,
		Name:         name,
		TargetAmount: targetAmount,
		CreatedAt:    time.Now().UTC(),
		Operations:   []*Operation{},
	}
	account.SavingGoals = append(account.SavingGoals, goal)
	return goal, nil
}

// CurrentAmount derives the goal's funded amount from its private
// operation list. Pure read.
func (g *SavingGoal) CurrentAmount() decimal.Decimal {
	return sumOperations(g.Operations)
}

// ProgressAmount is the remaining distance to the target. Negative when the
// goal is over-funded.
func (g *SavingGoal) ProgressAmount() decimal.Decimal {
	return g.TargetAmount.Sub(g.CurrentAmount())
}

// ProgressFraction is CurrentAmount / TargetAmount, or 0 when the target is
// not positive. Clamping for display is the caller's concern.
func (g *SavingGoal) ProgressFraction() float64 {
	if g.TargetAmount.LessThanOrEqual(decimal.Zero) {
		return 0
	}
	fraction, _ := g.CurrentAmount().Div(g.TargetAmount).Float64()
	return fraction
}

// OperationIDs returns the identities of the goal's private operations, the
// cascade set a goal delete must cover.
func (g *SavingGoal) OperationIDs() []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(g.Operations))
	for _, op := range g.Operations {
		ids = append(ids, op.ID)
	}
	return ids
}
