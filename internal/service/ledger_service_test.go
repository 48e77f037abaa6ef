// internal/service/ledger_service_test.go
package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"finledger/internal/domain"
	"finledger/internal/repository"
	"finledger/internal/util"
	"finledger/pkg/db" // Import pkg/db for interfaces and function types

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockDBExecutor is a mock implementation of repository.DBExecutor.
type MockDBExecutor struct {
	mock.Mock
}

func (m *MockDBExecutor) GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error {
	argsCalled := m.Called(ctx, dest, query, args)
	return argsCalled.Error(0)
}

func (m *MockDBExecutor) SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error {
	argsCalled := m.Called(ctx, dest, query, args)
	return argsCalled.Error(0)
}

func (m *MockDBExecutor) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	argsCalled := m.Called(ctx, query, args)
	return argsCalled.Get(0).(sql.Result), argsCalled.Error(1)
}

func (m *MockDBExecutor) QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row {
	m.Called(ctx, query, args)
	return &sql.Row{}
}

// MockAccountRepository is a mock implementation of repository.AccountRepository.
type MockAccountRepository struct {
	mock.Mock
}

func (m *MockAccountRepository) CreateAccount(ctx context.Context, q repository.DBExecutor, account *domain.Account) error {
	args := m.Called(ctx, q, account)
	return args.Error(0)
}

func (m *MockAccountRepository) GetAccountByID(ctx context.Context, q repository.DBExecutor, id uuid.UUID) (*domain.Account, error) {
	args := m.Called(ctx, q, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountRepository) ListAccounts(ctx context.Context, q repository.DBExecutor) ([]*domain.Account, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Account), args.Error(1)
}

func (m *MockAccountRepository) UpdateAccountName(ctx context.Context, q repository.DBExecutor, id uuid.UUID, name string) error {
	args := m.Called(ctx, q, id, name)
	return args.Error(0)
}

func (m *MockAccountRepository) DeleteAccount(ctx context.Context, q repository.DBExecutor, id uuid.UUID) error {
	args := m.Called(ctx, q, id)
	return args.Error(0)
}

// MockOperationRepository is a mock implementation of repository.OperationRepository.
type MockOperationRepository struct {
	mock.Mock
}

func (m *MockOperationRepository) CreateForAccount(ctx context.Context, q repository.DBExecutor, accountID uuid.UUID, op *domain.Operation) error {
	args := m.Called(ctx, q, accountID, op)
	return args.Error(0)
}

func (m *MockOperationRepository) CreateForGoal(ctx context.Context, q repository.DBExecutor, goalID uuid.UUID, op *domain.Operation) error {
	args := m.Called(ctx, q, goalID, op)
	return args.Error(0)
}

func (m *MockOperationRepository) UpdateOperation(ctx context.Context, q repository.DBExecutor, op *domain.Operation) error {
	args := m.Called(ctx, q, op)
	return args.Error(0)
}

func (m *MockOperationRepository) DeleteOperation(ctx context.Context, q repository.DBExecutor, id uuid.UUID) error {
	args := m.Called(ctx, q, id)
	return args.Error(0)
}

func (m *MockOperationRepository) DeleteByAccount(ctx context.Context, q repository.DBExecutor, accountID uuid.UUID) error {
	args := m.Called(ctx, q, accountID)
	return args.Error(0)
}

func (m *MockOperationRepository) DeleteByGoal(ctx context.Context, q repository.DBExecutor, goalID uuid.UUID) error {
	args := m.Called(ctx, q, goalID)
	return args.Error(0)
}

func (m *MockOperationRepository) ListByAccount(ctx context.Context, q repository.DBExecutor, accountID uuid.UUID) ([]*domain.Operation, error) {
	args := m.Called(ctx, q, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Operation), args.Error(1)
}

func (m *MockOperationRepository) ListByGoal(ctx context.Context, q repository.DBExecutor, goalID uuid.UUID) ([]*domain.Operation, error) {
	args := m.Called(ctx, q, goalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Operation), args.Error(1)
}

func (m *MockOperationRepository) ListByAccountDateDesc(ctx context.Context, q repository.DBExecutor, accountID uuid.UUID, limit, offset int) ([]*domain.Operation, int64, error) {
	args := m.Called(ctx, q, accountID, limit, offset)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*domain.Operation), args.Get(1).(int64), args.Error(2)
}

// MockGoalRepository is a mock implementation of repository.GoalRepository.
type MockGoalRepository struct {
	mock.Mock
}

func (m *MockGoalRepository) CreateGoal(ctx context.Context, q repository.DBExecutor, goal *domain.SavingGoal) error {
	args := m.Called(ctx, q, goal)
	return args.Error(0)
}

func (m *MockGoalRepository) GetGoalByID(ctx context.Context, q repository.DBExecutor, id uuid.UUID) (*domain.SavingGoal, error) {
	args := m.Called(ctx, q, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SavingGoal), args.Error(1)
}

func (m *MockGoalRepository) ListByAccount(ctx context.Context, q repository.DBExecutor, accountID uuid.UUID) ([]*domain.SavingGoal, error) {
	args := m.Called(ctx, q, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.SavingGoal), args.Error(1)
}

func (m *MockGoalRepository) DeleteGoal(ctx context.Context, q repository.DBExecutor, id uuid.UUID) error {
	args := m.Called(ctx, q, id)
	return args.Error(0)
}

// MockPurchaseRepository is a mock implementation of repository.PurchaseRepository.
type MockPurchaseRepository struct {
	mock.Mock
}

func (m *MockPurchaseRepository) CreatePurchase(ctx context.Context, q repository.DBExecutor, purchase *domain.PlannedPurchase) error {
	args := m.Called(ctx, q, purchase)
	return args.Error(0)
}

func (m *MockPurchaseRepository) ListByAccount(ctx context.Context, q repository.DBExecutor, accountID uuid.UUID) ([]*domain.PlannedPurchase, error) {
	args := m.Called(ctx, q, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.PlannedPurchase), args.Error(1)
}

func (m *MockPurchaseRepository) DeletePurchase(ctx context.Context, q repository.DBExecutor, id uuid.UUID) error {
	args := m.Called(ctx, q, id)
	return args.Error(0)
}

func (m *MockPurchaseRepository) DeleteByAccount(ctx context.Context, q repository.DBExecutor, accountID uuid.UUID) error {
	args := m.Called(ctx, q, accountID)
	return args.Error(0)
}

// MockDBBeginner is a mock implementation of db.DBTxBeginner.
type MockDBBeginner struct {
	mock.Mock
}

func (m *MockDBBeginner) BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error) {
	args := m.Called(ctx, opts)
	return &sqlx.Tx{}, args.Error(1)
}

// MockTxController is a mock implementation of db.TxController.
// It also implicitly implements repository.DBExecutor for testing purposes
// by embedding MockDBExecutor.
type MockTxController struct {
	mock.Mock
	MockDBExecutor // Embed MockDBExecutor to satisfy repository.DBExecutor interface
}

func (m *MockTxController) Commit() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockTxController) Rollback() error {
	args := m.Called()
	return args.Error(0)
}

// ledgerMocks bundles one fresh mock of every collaborator plus a service
// wired to them. Each t.Run block builds its own set.
type ledgerMocks struct {
	accountRepo   *MockAccountRepository
	operationRepo *MockOperationRepository
	goalRepo      *MockGoalRepository
	purchaseRepo  *MockPurchaseRepository
	dbBeginner    *MockDBBeginner
	dbExecutor    *MockDBExecutor
	txController  *MockTxController
	service       LedgerService
}

func newLedgerMocks() *ledgerMocks {
	m := &ledgerMocks{
		accountRepo:   new(MockAccountRepository),
		operationRepo: new(MockOperationRepository),
		goalRepo:      new(MockGoalRepository),
		purchaseRepo:  new(MockPurchaseRepository),
		dbBeginner:    new(MockDBBeginner),
		dbExecutor:    new(MockDBExecutor),
		txController:  new(MockTxController),
	}
	m.service = NewLedgerService(
		m.dbBeginner,
		m.dbExecutor,
		m.accountRepo,
		m.operationRepo,
		m.goalRepo,
		m.purchaseRepo,
		func(ctx context.Context, dbConn db.DBTxBeginner) (db.TxController, error) {
			return m.txController, nil
		},
		func(tx db.TxController) error {
			return m.txController.Commit()
		},
		func(tx db.TxController) {
			_ = m.txController.Rollback()
		},
	)
	return m
}

func (m *ledgerMocks) assertAll(t *testing.T) {
	t.Helper()
	mock.AssertExpectationsForObjects(t, m.dbBeginner, m.dbExecutor, m.txController,
		m.accountRepo, m.operationRepo, m.goalRepo, m.purchaseRepo)
}

// seedOperation builds an account-ledger operation directly, bypassing the
// constructor, the way a row would come back from storage.
func seedOperation(amount string, kind domain.OperationKind) *domain.Operation {
	return &domain.Operation{
		ID:     uuid.New(),
		Date:   time.Now().UTC(),
		Amount: decimal.RequireFromString(amount),
		Kind:   kind,
	}
}

// TestAddOperation tests the AddOperation method of LedgerService.
func TestAddOperation(t *testing.T) {
	accountID := uuid.New()
	date := time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)

	t.Run("SuccessfulAdd", func(t *testing.T) {
		ctx := context.Background()
		m := newLedgerMocks()

		m.txController.On("Commit").Return(nil).Once()
		m.txController.On("Rollback").Return(nil).Maybe() // Deferred rollback runs after Commit.

		m.accountRepo.On("GetAccountByID", ctx, mock.Anything, accountID).
			Return(&domain.Account{ID: accountID}, nil).Once()
		m.operationRepo.On("ListByAccount", ctx, mock.Anything, accountID).
			Return([]*domain.Operation{seedOperation("100.00", domain.IncomeKind(domain.IncomeUndefined))}, nil).Once()
		m.goalRepo.On("ListByAccount", ctx, mock.Anything, accountID).
			Return([]*domain.SavingGoal{}, nil).Once()
		m.operationRepo.On("CreateForAccount", ctx, mock.Anything, accountID, mock.AnythingOfType("*domain.Operation")).
			Return(nil).Once()

		op, err := m.service.AddOperation(ctx, accountID, date, decimal.RequireFromString("30.00"), domain.IncomeKind(domain.IncomeSalary))

		assert.NoError(t, err)
		assert.NotNil(t, op)
		assert.True(t, op.Amount.Equal(decimal.RequireFromString("30.00")))
		assert.Equal(t, domain.OperationTypeIncome, op.Kind.Type)

		m.assertAll(t)
	})

	t.Run("InvalidAmount", func(t *testing.T) {
		ctx := context.Background()
		m := newLedgerMocks()

		op, err := m.service.AddOperation(ctx, accountID, date, decimal.NewFromFloat(-10.00), domain.IncomeKind(domain.IncomeSalary))

		assert.ErrorIs(t, err, util.ErrInvalidAmount)
		assert.Nil(t, op)

		// Ensure no transaction was begun (early return on invalid input).
		m.txController.AssertNotCalled(t, "Commit")
		m.txController.AssertNotCalled(t, "Rollback")
		m.accountRepo.AssertNotCalled(t, "GetAccountByID", mock.Anything, mock.Anything, mock.Anything)

		m.assertAll(t)
	})

	t.Run("AccountNotFound", func(t *testing.T) {
		ctx := context.Background()
		m := newLedgerMocks()

		// A transaction begins, the load fails, so Rollback runs and Commit does not.
		m.accountRepo.On("GetAccountByID", ctx, mock.Anything, accountID).
			Return(nil, util.ErrAccountNotFound).Once()
		m.txController.On("Rollback").Return(nil).Once()

		op, err := m.service.AddOperation(ctx, accountID, date, decimal.NewFromFloat(30.00), domain.IncomeKind(domain.IncomeSalary))

		assert.ErrorIs(t, err, util.ErrAccountNotFound)
		assert.Nil(t, op)
		m.txController.AssertNotCalled(t, "Commit")

		m.assertAll(t)
	})
}

// TestAllocate tests the Allocate method of LedgerService.
func TestAllocate(t *testing.T) {
	accountID := uuid.New()
	goalID := uuid.New()
	when := time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)

	loadExpectations := func(ctx context.Context, m *ledgerMocks, balance string) {
		m.accountRepo.On("GetAccountByID", ctx, mock.Anything, accountID).
			Return(&domain.Account{ID: accountID}, nil).Once()
		m.operationRepo.On("ListByAccount", ctx, mock.Anything, accountID).
			Return([]*domain.Operation{seedOperation(balance, domain.IncomeKind(domain.IncomeUndefined))}, nil).Once()
		m.goalRepo.On("ListByAccount", ctx, mock.Anything, accountID).
			Return([]*domain.SavingGoal{{ID: goalID, AccountID: accountID, Name: "Vacation", TargetAmount: decimal.RequireFromString("50.00")}}, nil).Once()
		m.operationRepo.On("ListByGoal", ctx, mock.Anything, goalID).
			Return([]*domain.Operation{}, nil).Once()
	}

	t.Run("SuccessfulAllocation", func(t *testing.T) {
		ctx := context.Background()
		m := newLedgerMocks()

		m.txController.On("Commit").Return(nil).Once()
		m.txController.On("Rollback").Return(nil).Maybe()
		loadExpectations(ctx, m, "100.00")
		m.operationRepo.On("CreateForAccount", ctx, mock.Anything, accountID, mock.AnythingOfType("*domain.Operation")).
			Return(nil).Once()
		m.operationRepo.On("CreateForGoal", ctx, mock.Anything, goalID, mock.AnythingOfType("*domain.Operation")).
			Return(nil).Once()

		account, goal, err := m.service.Allocate(ctx, accountID, goalID, decimal.RequireFromString("40.00"), when)

		assert.NoError(t, err)
		assert.NotNil(t, account)
		assert.NotNil(t, goal)
		assert.True(t, account.Balance().Equal(decimal.RequireFromString("60.00")))
		assert.True(t, goal.CurrentAmount().Equal(decimal.RequireFromString("40.00")))

		m.assertAll(t)
	})

	t.Run("InsufficientFunds", func(t *testing.T) {
		ctx := context.Background()
		m := newLedgerMocks()

		// The domain guard fails after the load, so nothing is persisted.
		loadExpectations(ctx, m, "100.00")
		m.txController.On("Rollback").Return(nil).Once()

		account, goal, err := m.service.Allocate(ctx, accountID, goalID, decimal.RequireFromString("100.01"), when)

		assert.ErrorIs(t, err, util.ErrInsufficientFunds)
		assert.Nil(t, account)
		assert.Nil(t, goal)
		m.txController.AssertNotCalled(t, "Commit")
		m.operationRepo.AssertNotCalled(t, "CreateForAccount", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		m.operationRepo.AssertNotCalled(t, "CreateForGoal", mock.Anything, mock.Anything, mock.Anything, mock.Anything)

		m.assertAll(t)
	})

	t.Run("GoalOfAnotherAccount", func(t *testing.T) {
		ctx := context.Background()
		m := newLedgerMocks()

		// The goal is not among the account's own, so it is fetched directly
		// and the ownership check rejects it.
		m.accountRepo.On("GetAccountByID", ctx, mock.Anything, accountID).
			Return(&domain.Account{ID: accountID}, nil).Once()
		m.operationRepo.On("ListByAccount", ctx, mock.Anything, accountID).
			Return([]*domain.Operation{seedOperation("100.00", domain.IncomeKind(domain.IncomeUndefined))}, nil).Once()
		m.goalRepo.On("ListByAccount", ctx, mock.Anything, accountID).
			Return([]*domain.SavingGoal{}, nil).Once()
		m.goalRepo.On("GetGoalByID", ctx, mock.Anything, goalID).
			Return(&domain.SavingGoal{ID: goalID, AccountID: uuid.New(), TargetAmount: decimal.NewFromInt(50)}, nil).Once()
		m.operationRepo.On("ListByGoal", ctx, mock.Anything, goalID).
			Return([]*domain.Operation{}, nil).Once()
		m.txController.On("Rollback").Return(nil).Once()

		account, goal, err := m.service.Allocate(ctx, accountID, goalID, decimal.NewFromInt(10), when)

		assert.ErrorIs(t, err, util.ErrInvalidGoal)
		assert.Nil(t, account)
		assert.Nil(t, goal)
		m.txController.AssertNotCalled(t, "Commit")

		m.assertAll(t)
	})

	t.Run("GoalNotFound", func(t *testing.T) {
		ctx := context.Background()
		m := newLedgerMocks()

		m.accountRepo.On("GetAccountByID", ctx, mock.Anything, accountID).
			Return(&domain.Account{ID: accountID}, nil).Once()
		m.operationRepo.On("ListByAccount", ctx, mock.Anything, accountID).
			Return([]*domain.Operation{}, nil).Once()
		m.goalRepo.On("ListByAccount", ctx, mock.Anything, accountID).
			Return([]*domain.SavingGoal{}, nil).Once()
		m.goalRepo.On("GetGoalByID", ctx, mock.Anything, goalID).
			Return(nil, util.ErrGoalNotFound).Once()
		m.txController.On("Rollback").Return(nil).Once()

		_, _, err := m.service.Allocate(ctx, accountID, goalID, decimal.NewFromInt(10), when)

		assert.ErrorIs(t, err, util.ErrGoalNotFound)
		m.txController.AssertNotCalled(t, "Commit")

		m.assertAll(t)
	})
}

// TestDeallocateService tests the Deallocate method of LedgerService.
func TestDeallocateService(t *testing.T) {
	accountID := uuid.New()
	goalID := uuid.New()
	when := time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)

	t.Run("GuardedByGoalFunds", func(t *testing.T) {
		ctx := context.Background()
		m := newLedgerMocks()

		m.accountRepo.On("GetAccountByID", ctx, mock.Anything, accountID).
			Return(&domain.Account{ID: accountID}, nil).Once()
		m.operationRepo.On("ListByAccount", ctx, mock.Anything, accountID).
			Return([]*domain.Operation{seedOperation("100.00", domain.IncomeKind(domain.IncomeUndefined))}, nil).Once()
		m.goalRepo.On("ListByAccount", ctx, mock.Anything, accountID).
			Return([]*domain.SavingGoal{{ID: goalID, AccountID: accountID, TargetAmount: decimal.NewFromInt(50)}}, nil).Once()
		// The goal holds 20; pulling 30 back out must fail.
		m.operationRepo.On("ListByGoal", ctx, mock.Anything, goalID).
			Return([]*domain.Operation{seedOperation("20.00", domain.IncomeKind(domain.IncomeUndefined))}, nil).Once()
		m.txController.On("Rollback").Return(nil).Once()

		account, goal, err := m.service.Deallocate(ctx, accountID, goalID, decimal.NewFromInt(30), when)

		assert.ErrorIs(t, err, util.ErrInsufficientFunds)
		assert.Nil(t, account)
		assert.Nil(t, goal)
		m.txController.AssertNotCalled(t, "Commit")

		m.assertAll(t)
	})
}

// TestCreateAccountService tests the CreateAccount method of LedgerService.
func TestCreateAccountService(t *testing.T) {
	t.Run("SuccessfulCreate", func(t *testing.T) {
		ctx := context.Background()
		m := newLedgerMocks()

		m.txController.On("Commit").Return(nil).Once()
		m.txController.On("Rollback").Return(nil).Maybe()
		m.accountRepo.On("CreateAccount", ctx, mock.Anything, mock.AnythingOfType("*domain.Account")).
			Return(nil).Once()
		// Exactly one persisted operation: the synthetic initial deposit.
		m.operationRepo.On("CreateForAccount", ctx, mock.Anything, mock.AnythingOfType("uuid.UUID"), mock.AnythingOfType("*domain.Operation")).
			Return(nil).Once()

		account, err := m.service.CreateAccount(ctx, "Checking", "EUR", decimal.RequireFromString("100.00"))

		assert.NoError(t, err)
		assert.NotNil(t, account)
		assert.True(t, account.Balance().Equal(decimal.RequireFromString("100.00")))

		m.assertAll(t)
	})

	t.Run("NegativeDeposit", func(t *testing.T) {
		ctx := context.Background()
		m := newLedgerMocks()

		account, err := m.service.CreateAccount(ctx, "Checking", "EUR", decimal.NewFromInt(-1))

		assert.ErrorIs(t, err, util.ErrInvalidAmount)
		assert.Nil(t, account)
		m.txController.AssertNotCalled(t, "Commit")
		m.txController.AssertNotCalled(t, "Rollback")

		m.assertAll(t)
	})
}

// TestRemoveOperationService tests the RemoveOperation method of LedgerService.
func TestRemoveOperationService(t *testing.T) {
	accountID := uuid.New()

	t.Run("AbsentOperation", func(t *testing.T) {
		ctx := context.Background()
		m := newLedgerMocks()

		m.accountRepo.On("GetAccountByID", ctx, mock.Anything, accountID).
			Return(&domain.Account{ID: accountID}, nil).Once()
		m.operationRepo.On("ListByAccount", ctx, mock.Anything, accountID).
			Return([]*domain.Operation{}, nil).Once()
		m.goalRepo.On("ListByAccount", ctx, mock.Anything, accountID).
			Return([]*domain.SavingGoal{}, nil).Once()
		m.txController.On("Rollback").Return(nil).Once()

		err := m.service.RemoveOperation(ctx, accountID, uuid.New())

		assert.ErrorIs(t, err, util.ErrNotFound)
		m.txController.AssertNotCalled(t, "Commit")
		m.operationRepo.AssertNotCalled(t, "DeleteOperation", mock.Anything, mock.Anything, mock.Anything)

		m.assertAll(t)
	})

	t.Run("SuccessfulRemove", func(t *testing.T) {
		ctx := context.Background()
		m := newLedgerMocks()

		op := seedOperation("10.00", domain.ExpenseKind(domain.ExpenseFood))
		m.txController.On("Commit").Return(nil).Once()
		m.txController.On("Rollback").Return(nil).Maybe()
		m.accountRepo.On("GetAccountByID", ctx, mock.Anything, accountID).
			Return(&domain.Account{ID: accountID}, nil).Once()
		m.operationRepo.On("ListByAccount", ctx, mock.Anything, accountID).
			Return([]*domain.Operation{op}, nil).Once()
		m.goalRepo.On("ListByAccount", ctx, mock.Anything, accountID).
			Return([]*domain.SavingGoal{}, nil).Once()
		m.operationRepo.On("DeleteOperation", ctx, mock.Anything, op.ID).Return(nil).Once()

		err := m.service.RemoveOperation(ctx, accountID, op.ID)

		assert.NoError(t, err)

		m.assertAll(t)
	})
}
