// internal/domain/account_test.go
package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finledger/internal/util"
)

func mustAccount(t *testing.T, deposit string) *Account {
	t.Helper()
	account, err := NewAccount("Checking", "EUR", decimal.RequireFromString(deposit))
	require.NoError(t, err)
	return account
}

func TestNewAccount(t *testing.T) {
	t.Run("SeedsSyntheticDeposit", func(t *testing.T) {
		account := mustAccount(t, "100.00")
		require.Len(t, account.Operations, 1)
		seed := account.Operations[0]
		assert.Equal(t, OperationTypeIncome, seed.Kind.Type)
		assert.Equal(t, IncomeUndefined, seed.Kind.Income)
		assert.True(t, seed.Amount.Equal(decimal.RequireFromString("100.00")))
		assert.True(t, account.Balance().Equal(decimal.RequireFromString("100.00")))
	})

	t.Run("ZeroDepositAllowed", func(t *testing.T) {
		account := mustAccount(t, "0")
		assert.True(t, account.Balance().IsZero())
		assert.Len(t, account.Operations, 1)
	})

	t.Run("NegativeDepositRejected", func(t *testing.T) {
		account, err := NewAccount("Checking", "EUR", decimal.NewFromFloat(-1))
		assert.ErrorIs(t, err, util.ErrInvalidAmount)
		assert.Nil(t, account)
	})
}

func TestBalanceDerivation(t *testing.T) {
	account := mustAccount(t, "100.00")
	now := time.Now().UTC()

	// Reference sum computed independently of Balance().
	expected := decimal.RequireFromString("100.00")
	steps := []struct {
		amount string
		kind   OperationKind
	}{
		{"30.00", IncomeKind(IncomeSalary)},
		{"20.00", ExpenseKind(ExpenseFood)},
		{"5.50", ExpenseKind(ExpenseTrip)},
		{"0.01", IncomeKind(IncomeInterest)},
		{"0", ExpenseKind(ExpenseUndefined)},
	}
	for _, step := range steps {
		amount := decimal.RequireFromString(step.amount)
		_, err := account.AddOperation(now, amount, step.kind)
		require.NoError(t, err)
		switch step.kind.Type {
		case OperationTypeIncome:
			expected = expected.Add(amount)
		case OperationTypeExpense:
			expected = expected.Sub(amount)
		}
	}
	assert.True(t, account.Balance().Equal(expected), "balance %s, expected %s", account.Balance(), expected)
}

func TestBalanceReadsAreIdempotent(t *testing.T) {
	account := mustAccount(t, "42.42")
	first := account.Balance()
	second := account.Balance()
	assert.True(t, first.Equal(second))
	assert.Len(t, account.Operations, 1)
}

func TestOverdraftIsPermitted(t *testing.T) {
	account := mustAccount(t, "10.00")
	_, err := account.AddOperation(time.Now().UTC(), decimal.RequireFromString("25.00"), ExpenseKind(ExpenseRent))
	require.NoError(t, err)
	assert.True(t, account.Balance().Equal(decimal.RequireFromString("-15.00")))
}

func TestRemoveOperation(t *testing.T) {
	account := mustAccount(t, "100.00")
	op, err := account.AddOperation(time.Now().UTC(), decimal.NewFromInt(10), ExpenseKind(ExpenseFood))
	require.NoError(t, err)

	t.Run("RemovesByIdentity", func(t *testing.T) {
		require.NoError(t, account.RemoveOperation(op.ID))
		assert.Nil(t, account.FindOperation(op.ID))
		assert.True(t, account.Balance().Equal(decimal.NewFromInt(100)))
	})

	t.Run("AbsentIdentityIsNotFound", func(t *testing.T) {
		assert.ErrorIs(t, account.RemoveOperation(uuid.New()), util.ErrNotFound)
	})

	t.Run("SeedOperationIsNotProtected", func(t *testing.T) {
		seedID := account.Operations[0].ID
		require.NoError(t, account.RemoveOperation(seedID))
		assert.True(t, account.Balance().IsZero())
	})
}

func TestAllocate(t *testing.T) {
	when := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	setup := func(t *testing.T) (*Account, *SavingGoal) {
		account := mustAccount(t, "100.00")
		goal, err := NewSavingGoal("Vacation", decimal.RequireFromString("50.00"), account)
		require.NoError(t, err)
		return account, goal
	}

	t.Run("MirroredPair", func(t *testing.T) {
		account, goal := setup(t)
		accountOp, goalOp, err := account.Allocate(goal, decimal.RequireFromString("40.00"), when)
		require.NoError(t, err)

		assert.Equal(t, OperationTypeExpense, accountOp.Kind.Type)
		assert.Equal(t, ExpenseSaving, accountOp.Kind.Expense)
		assert.Equal(t, OperationTypeIncome, goalOp.Kind.Type)
		assert.Equal(t, IncomeUndefined, goalOp.Kind.Income)
		assert.Equal(t, when, accountOp.Date)
		assert.Equal(t, when, goalOp.Date)

		assert.True(t, account.Balance().Equal(decimal.RequireFromString("60.00")))
		assert.True(t, goal.CurrentAmount().Equal(decimal.RequireFromString("40.00")))
		assert.True(t, goal.ProgressAmount().Equal(decimal.RequireFromString("10.00")))
	})

	t.Run("InsufficientFundsMutatesNothing", func(t *testing.T) {
		account, goal := setup(t)
		// Balance plus one currency unit.
		_, _, err := account.Allocate(goal, decimal.RequireFromString("100.01"), when)
		assert.ErrorIs(t, err, util.ErrInsufficientFunds)
		assert.True(t, account.Balance().Equal(decimal.RequireFromString("100.00")))
		assert.True(t, goal.CurrentAmount().IsZero())
		assert.Len(t, account.Operations, 1)
		assert.Empty(t, goal.Operations)
	})

	t.Run("ForeignGoalMutatesNothing", func(t *testing.T) {
		account, _ := setup(t)
		other := mustAccount(t, "0")
		foreignGoal, err := NewSavingGoal("Someone else's", decimal.NewFromInt(10), other)
		require.NoError(t, err)

		_, _, err = account.Allocate(foreignGoal, decimal.NewFromInt(1), when)
		assert.ErrorIs(t, err, util.ErrInvalidGoal)
		assert.Len(t, account.Operations, 1)
		assert.Empty(t, foreignGoal.Operations)
	})

	t.Run("PreconditionOrder", func(t *testing.T) {
		account, goal := setup(t)
		other := mustAccount(t, "0")
		foreignGoal, err := NewSavingGoal("Other", decimal.NewFromInt(10), other)
		require.NoError(t, err)

		// Ownership is checked before funds: a foreign goal wins over an
		// oversized amount.
		_, _, err = account.Allocate(foreignGoal, decimal.NewFromInt(1_000_000), when)
		assert.ErrorIs(t, err, util.ErrInvalidGoal)

		// Funds are checked before the amount sign; a negative amount on an
		// owned goal with cover reports InvalidAmount.
		_, _, err = account.Allocate(goal, decimal.NewFromInt(-5), when)
		assert.ErrorIs(t, err, util.ErrInvalidAmount)
		assert.Len(t, account.Operations, 1)
		assert.Empty(t, goal.Operations)
	})

	t.Run("ScenarioFromLedgerHistory", func(t *testing.T) {
		account := mustAccount(t, "100.00")
		_, err := account.AddOperation(when, decimal.RequireFromString("30.00"), IncomeKind(IncomeSalary))
		require.NoError(t, err)
		assert.True(t, account.Balance().Equal(decimal.RequireFromString("130.00")))

		_, err = account.AddOperation(when, decimal.RequireFromString("20.00"), ExpenseKind(ExpenseFood))
		require.NoError(t, err)
		assert.True(t, account.Balance().Equal(decimal.RequireFromString("110.00")))

		goal, err := NewSavingGoal("Bike", decimal.RequireFromString("50.00"), account)
		require.NoError(t, err)

		_, _, err = account.Allocate(goal, decimal.RequireFromString("40.00"), when)
		require.NoError(t, err)
		assert.True(t, account.Balance().Equal(decimal.RequireFromString("70.00")))
		assert.True(t, goal.CurrentAmount().Equal(decimal.RequireFromString("40.00")))
		assert.True(t, goal.ProgressAmount().Equal(decimal.RequireFromString("10.00")))

		_, _, err = account.Allocate(goal, decimal.RequireFromString("100.00"), when)
		assert.ErrorIs(t, err, util.ErrInsufficientFunds)
		assert.True(t, account.Balance().Equal(decimal.RequireFromString("70.00")))
		assert.True(t, goal.CurrentAmount().Equal(decimal.RequireFromString("40.00")))
	})
}

func TestDeallocate(t *testing.T) {
	when := time.Now().UTC()
	account := mustAccount(t, "100.00")
	goal, err := NewSavingGoal("Vacation", decimal.NewFromInt(50), account)
	require.NoError(t, err)
	_, _, err = account.Allocate(goal, decimal.NewFromInt(40), when)
	require.NoError(t, err)

	t.Run("ReversesTheMirroredPair", func(t *testing.T) {
		accountOp, goalOp, err := account.Deallocate(goal, decimal.NewFromInt(15), when)
		require.NoError(t, err)
		assert.Equal(t, OperationTypeIncome, accountOp.Kind.Type)
		assert.Equal(t, OperationTypeExpense, goalOp.Kind.Type)
		assert.Equal(t, ExpenseSaving, goalOp.Kind.Expense)
		assert.True(t, account.Balance().Equal(decimal.NewFromInt(75)))
		assert.True(t, goal.CurrentAmount().Equal(decimal.NewFromInt(25)))
	})

	t.Run("GuardedByGoalFunds", func(t *testing.T) {
		_, _, err := account.Deallocate(goal, decimal.NewFromInt(1000), when)
		assert.ErrorIs(t, err, util.ErrInsufficientFunds)
		assert.True(t, goal.CurrentAmount().Equal(decimal.NewFromInt(25)))
	})

	t.Run("ForeignGoalRejected", func(t *testing.T) {
		other := mustAccount(t, "0")
		foreignGoal, err := NewSavingGoal("Other", decimal.NewFromInt(10), other)
		require.NoError(t, err)
		_, _, err = account.Deallocate(foreignGoal, decimal.NewFromInt(1), when)
		assert.ErrorIs(t, err, util.ErrInvalidGoal)
	})
}

func TestCascadeIdentitySets(t *testing.T) {
	account := mustAccount(t, "100.00")
	op, err := account.AddOperation(time.Now().UTC(), decimal.NewFromInt(5), ExpenseKind(ExpenseFood))
	require.NoError(t, err)
	goal, err := NewSavingGoal("Vacation", decimal.NewFromInt(50), account)
	require.NoError(t, err)
	_, goalOp, err := account.Allocate(goal, decimal.NewFromInt(10), time.Now().UTC())
	require.NoError(t, err)

	assert.Len(t, account.OperationIDs(), 3) // seed, expense, allocation
	assert.Contains(t, account.OperationIDs(), op.ID)
	assert.Equal(t, []uuid.UUID{goal.ID}, account.GoalIDs())
	assert.Equal(t, []uuid.UUID{goalOp.ID}, goal.OperationIDs())
}

func TestRemoveGoal(t *testing.T) {
	account := mustAccount(t, "10.00")
	goal, err := NewSavingGoal("Vacation", decimal.NewFromInt(50), account)
	require.NoError(t, err)

	require.NoError(t, account.RemoveGoal(goal.ID))
	assert.Nil(t, account.Goal(goal.ID))
	assert.ErrorIs(t, account.RemoveGoal(goal.ID), util.ErrNotFound)
}
