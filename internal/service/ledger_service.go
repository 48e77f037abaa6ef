// internal/service/ledger_service.go
package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"finledger/internal/domain"
	"finledger/internal/repository"
	"finledger/internal/util"
	"finledger/pkg/db"
)

// LedgerService defines the business operations over accounts, their
// operation history, saving goals and planned purchases. Balances and goal
// progress are always derived from operation lists, never read from a
// stored total.
type LedgerService interface {
	CreateAccount(ctx context.Context, name, currencyCode string, initialDeposit decimal.Decimal) (*domain.Account, error)
	GetAccount(ctx context.Context, accountID uuid.UUID) (*domain.Account, error)
	ListAccounts(ctx context.Context) ([]*domain.Account, error)
	RenameAccount(ctx context.Context, accountID uuid.UUID, name string) error
	DeleteAccount(ctx context.Context, accountID uuid.UUID) error

	GetBalance(ctx context.Context, accountID uuid.UUID) (decimal.Decimal, error)
	AddOperation(ctx context.Context, accountID uuid.UUID, date time.Time, amount decimal.Decimal, kind domain.OperationKind) (*domain.Operation, error)
	UpdateOperation(ctx context.Context, accountID, operationID uuid.UUID, params domain.UpdateOperationParams) (*domain.Operation, error)
	RemoveOperation(ctx context.Context, accountID, operationID uuid.UUID) error
	GetOperationHistory(ctx context.Context, accountID uuid.UUID, limit, offset int) ([]*domain.Operation, int64, error)

	CreateSavingGoal(ctx context.Context, accountID uuid.UUID, name string, targetAmount decimal.Decimal) (*domain.SavingGoal, error)
	GetSavingGoal(ctx context.Context, accountID, goalID uuid.UUID) (*domain.SavingGoal, error)
	ListSavingGoals(ctx context.Context, accountID uuid.UUID) ([]*domain.SavingGoal, error)
	DeleteSavingGoal(ctx context.Context, accountID, goalID uuid.UUID) error

	Allocate(ctx context.Context, accountID, goalID uuid.UUID, amount decimal.Decimal, when time.Time) (*domain.Account, *domain.SavingGoal, error)
	Deallocate(ctx context.Context, accountID, goalID uuid.UUID, amount decimal.Decimal, when time.Time) (*domain.Account, *domain.SavingGoal, error)

	CreatePlannedPurchase(ctx context.Context, accountID uuid.UUID, name string, category domain.ExpenseCategory, price decimal.Decimal) (*domain.PlannedPurchase, error)
	ListPlannedPurchases(ctx context.Context, accountID uuid.UUID) ([]*domain.PlannedPurchase, error)
	DeletePlannedPurchase(ctx context.Context, accountID, purchaseID uuid.UUID) error
}

// ledgerService implements the LedgerService interface.
type ledgerService struct {
	dbBeginner    db.DBTxBeginner       // For starting transactions (e.g., *sqlx.DB)
	dbExecutor    repository.DBExecutor // For non-transactional reads (e.g., *sqlx.DB)
	accountRepo   repository.AccountRepository
	operationRepo repository.OperationRepository
	goalRepo      repository.GoalRepository
	purchaseRepo  repository.PurchaseRepository
	beginTx       db.BeginTxFunc
	commitTx      db.CommitTxFunc
	rollbackTx    db.RollbackTxFunc
	locks         *accountLocks
}

// NewLedgerService creates a new instance of LedgerService.
func NewLedgerService(
	dbBeginner db.DBTxBeginner,
	dbExecutor repository.DBExecutor,
	accountRepo repository.AccountRepository,
	operationRepo repository.OperationRepository,
	goalRepo repository.GoalRepository,
	purchaseRepo repository.PurchaseRepository,
	beginTx db.BeginTxFunc,
	commitTx db.CommitTxFunc,
	rollbackTx db.RollbackTxFunc,
) LedgerService {
	return &ledgerService{
		dbBeginner:    dbBeginner,
		dbExecutor:    dbExecutor,
		accountRepo:   accountRepo,
		operationRepo: operationRepo,
		goalRepo:      goalRepo,
		purchaseRepo:  purchaseRepo,
		beginTx:       beginTx,
		commitTx:      commitTx,
		rollbackTx:    rollbackTx,
		locks:         newAccountLocks(),
	}
}

// begin starts a transaction and returns it as both controller and executor.
func (s *ledgerService) begin(ctx context.Context) (db.TxController, repository.DBExecutor, error) {
	txController, err := s.beginTx(ctx, s.dbBeginner)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	txExecutor, ok := txController.(repository.DBExecutor)
	if !ok {
		s.rollbackTx(txController)
		return nil, nil, fmt.Errorf("transaction controller does not implement DBExecutor")
	}
	return txController, txExecutor, nil
}

// loadAccount hydrates the full account aggregate: the record, its own
// operations in insertion order, and its goals with their private
// operations. The aggregate is what the domain rules run against.
func (s *ledgerService) loadAccount(ctx context.Context, q repository.DBExecutor, accountID uuid.UUID) (*domain.Account, error) {
	account, err := s.accountRepo.GetAccountByID(ctx, q, accountID)
	if err != nil {
		return nil, err
	}
	ops, err := s.operationRepo.ListByAccount(ctx, q, accountID)
	if err != nil {
		return nil, err
	}
	account.Operations = ops

	goals, err := s.goalRepo.ListByAccount(ctx, q, accountID)
	if err != nil {
		return nil, err
	}
	for _, goal := range goals {
		goalOps, err := s.operationRepo.ListByGoal(ctx, q, goal.ID)
		if err != nil {
			return nil, err
		}
		goal.Operations = goalOps
	}
	account.SavingGoals = goals
	return account, nil
}

// CreateAccount creates an account with its synthetic initial-deposit
// operation, both persisted in one transaction.
func (s *ledgerService) CreateAccount(ctx context.Context, name, currencyCode string, initialDeposit decimal.Decimal) (*domain.Account, error) {
	account, err := domain.NewAccount(name, currencyCode, initialDeposit)
	if err != nil {
		return nil, err
	}

	txController, txExecutor, err := s.begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("create account: %w", err)
	}
	defer s.rollbackTx(txController)

	if err := s.accountRepo.CreateAccount(ctx, txExecutor, account); err != nil {
		return nil, fmt.Errorf("create account: %w", err)
	}
	for _, op := range account.Operations {
		if err := s.operationRepo.CreateForAccount(ctx, txExecutor, account.ID, op); err != nil {
			return nil, fmt.Errorf("create account: failed to persist seed operation: %w", err)
		}
	}

	if err := s.commitTx(txController); err != nil {
		return nil, fmt.Errorf("create account: failed to commit transaction: %w", err)
	}
	return account, nil
}

// GetAccount returns the fully hydrated aggregate.
func (s *ledgerService) GetAccount(ctx context.Context, accountID uuid.UUID) (*domain.Account, error) {
	return s.loadAccount(ctx, s.dbExecutor, accountID)
}

// ListAccounts returns all account records without their collections.
func (s *ledgerService) ListAccounts(ctx context.Context) ([]*domain.Account, error) {
	return s.accountRepo.ListAccounts(ctx, s.dbExecutor)
}

// RenameAccount updates the account's display label.
func (s *ledgerService) RenameAccount(ctx context.Context, accountID uuid.UUID, name string) error {
	if name == "" {
		return util.ErrInvalidInput
	}
	return s.accountRepo.UpdateAccountName(ctx, s.dbExecutor, accountID, name)
}

// DeleteAccount deletes an account and cascades to everything it owns,
// driven by the aggregate's cascade-identity sets, in one transaction.
func (s *ledgerService) DeleteAccount(ctx context.Context, accountID uuid.UUID) error {
	lock := s.locks.get(accountID)
	lock.Lock()
	defer lock.Unlock()

	txController, txExecutor, err := s.begin(ctx)
	if err != nil {
		return fmt.Errorf("delete account: %w", err)
	}
	defer s.rollbackTx(txController)

	account, err := s.loadAccount(ctx, txExecutor, accountID)
	if err != nil {
		return fmt.Errorf("delete account: %w", err)
	}

	for _, goalID := range account.GoalIDs() {
		if err := s.operationRepo.DeleteByGoal(ctx, txExecutor, goalID); err != nil {
			return fmt.Errorf("delete account: %w", err)
		}
		if err := s.goalRepo.DeleteGoal(ctx, txExecutor, goalID); err != nil {
			return fmt.Errorf("delete account: %w", err)
		}
	}
	if err := s.operationRepo.DeleteByAccount(ctx, txExecutor, accountID); err != nil {
		return fmt.Errorf("delete account: %w", err)
	}
	if err := s.purchaseRepo.DeleteByAccount(ctx, txExecutor, accountID); err != nil {
		return fmt.Errorf("delete account: %w", err)
	}
	if err := s.accountRepo.DeleteAccount(ctx, txExecutor, accountID); err != nil {
		return fmt.Errorf("delete account: %w", err)
	}

	if err := s.commitTx(txController); err != nil {
		return fmt.Errorf("delete account: failed to commit transaction: %w", err)
	}
	return nil
}

// GetBalance derives the account balance from its operation history.
func (s *ledgerService) GetBalance(ctx context.Context, accountID uuid.UUID) (decimal.Decimal, error) {
	if _, err := s.accountRepo.GetAccountByID(ctx, s.dbExecutor, accountID); err != nil {
		return decimal.Zero, fmt.Errorf("get balance: %w", err)
	}
	ops, err := s.operationRepo.ListByAccount(ctx, s.dbExecutor, accountID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("get balance: %w", err)
	}
	account := &domain.Account{ID: accountID, Operations: ops}
	return account.Balance(), nil
}

// AddOperation appends an operation to an account's ledger.
func (s *ledgerService) AddOperation(ctx context.Context, accountID uuid.UUID, date time.Time, amount decimal.Decimal, kind domain.OperationKind) (*domain.Operation, error) {
	if amount.IsNegative() {
		return nil, util.ErrInvalidAmount
	}

	lock := s.locks.get(accountID)
	lock.Lock()
	defer lock.Unlock()

	txController, txExecutor, err := s.begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("add operation: %w", err)
	}
	defer s.rollbackTx(txController)

	account, err := s.loadAccount(ctx, txExecutor, accountID)
	if err != nil {
		return nil, fmt.Errorf("add operation: %w", err)
	}
	op, err := account.AddOperation(date, amount, kind)
	if err != nil {
		return nil, err
	}
	if err := s.operationRepo.CreateForAccount(ctx, txExecutor, accountID, op); err != nil {
		return nil, fmt.Errorf("add operation: %w", err)
	}

	if err := s.commitTx(txController); err != nil {
		return nil, fmt.Errorf("add operation: failed to commit transaction: %w", err)
	}
	return op, nil
}

// UpdateOperation applies a partial edit to one of the account's own
// operations, re-validating the amount invariant.
func (s *ledgerService) UpdateOperation(ctx context.Context, accountID, operationID uuid.UUID, params domain.UpdateOperationParams) (*domain.Operation, error) {
	lock := s.locks.get(accountID)
	lock.Lock()
	defer lock.Unlock()

	txController, txExecutor, err := s.begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("update operation: %w", err)
	}
	defer s.rollbackTx(txController)

	account, err := s.loadAccount(ctx, txExecutor, accountID)
	if err != nil {
		return nil, fmt.Errorf("update operation: %w", err)
	}
	op := account.FindOperation(operationID)
	if op == nil {
		return nil, util.ErrNotFound
	}
	if err := op.Update(params); err != nil {
		return nil, err
	}
	if err := s.operationRepo.UpdateOperation(ctx, txExecutor, op); err != nil {
		return nil, fmt.Errorf("update operation: %w", err)
	}

	if err := s.commitTx(txController); err != nil {
		return nil, fmt.Errorf("update operation: failed to commit transaction: %w", err)
	}
	return op, nil
}

// RemoveOperation removes an operation from the account's ledger. An absent
// identity is an error (ErrNotFound), consistently with the domain rule.
func (s *ledgerService) RemoveOperation(ctx context.Context, accountID, operationID uuid.UUID) error {
	lock := s.locks.get(accountID)
	lock.Lock()
	defer lock.Unlock()

	txController, txExecutor, err := s.begin(ctx)
	if err != nil {
		return fmt.Errorf("remove operation: %w", err)
	}
	defer s.rollbackTx(txController)

	account, err := s.loadAccount(ctx, txExecutor, accountID)
	if err != nil {
		return fmt.Errorf("remove operation: %w", err)
	}
	if err := account.RemoveOperation(operationID); err != nil {
		return err
	}
	if err := s.operationRepo.DeleteOperation(ctx, txExecutor, operationID); err != nil {
		return fmt.Errorf("remove operation: %w", err)
	}

	if err := s.commitTx(txController); err != nil {
		return fmt.Errorf("remove operation: failed to commit transaction: %w", err)
	}
	return nil
}

// GetOperationHistory returns a page of the account's operations in
// date-descending display order, plus the total count.
func (s *ledgerService) GetOperationHistory(ctx context.Context, accountID uuid.UUID, limit, offset int) ([]*domain.Operation, int64, error) {
	if _, err := s.accountRepo.GetAccountByID(ctx, s.dbExecutor, accountID); err != nil {
		return nil, 0, fmt.Errorf("operation history: %w", err)
	}
	ops, totalCount, err := s.operationRepo.ListByAccountDateDesc(ctx, s.dbExecutor, accountID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("operation history: %w", err)
	}
	return ops, totalCount, nil
}

// CreateSavingGoal creates a goal against an existing account.
func (s *ledgerService) CreateSavingGoal(ctx context.Context, accountID uuid.UUID, name string, targetAmount decimal.Decimal) (*domain.SavingGoal, error) {
	lock := s.locks.get(accountID)
	lock.Lock()
	defer lock.Unlock()

	txController, txExecutor, err := s.begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("create saving goal: %w", err)
	}
	defer s.rollbackTx(txController)

	account, err := s.accountRepo.GetAccountByID(ctx, txExecutor, accountID)
	if err != nil {
		return nil, fmt.Errorf("create saving goal: %w", err)
	}
	goal, err := domain.NewSavingGoal(name, targetAmount, account)
	if err != nil {
		return nil, err
	}
	if err := s.goalRepo.CreateGoal(ctx, txExecutor, goal); err != nil {
		return nil, fmt.Errorf("create saving goal: %w", err)
	}

	if err := s.commitTx(txController); err != nil {
		return nil, fmt.Errorf("create saving goal: failed to commit transaction: %w", err)
	}
	return goal, nil
}

// GetSavingGoal returns a hydrated goal belonging to the given account.
func (s *ledgerService) GetSavingGoal(ctx context.Context, accountID, goalID uuid.UUID) (*domain.SavingGoal, error) {
	goal, err := s.goalRepo.GetGoalByID(ctx, s.dbExecutor, goalID)
	if err != nil {
		return nil, fmt.Errorf("get saving goal: %w", err)
	}
	if goal.AccountID != accountID {
		return nil, util.ErrInvalidGoal
	}
	ops, err := s.operationRepo.ListByGoal(ctx, s.dbExecutor, goalID)
	if err != nil {
		return nil, fmt.Errorf("get saving goal: %w", err)
	}
	goal.Operations = ops
	return goal, nil
}

// ListSavingGoals returns the account's goals hydrated with their private
// operations, so CurrentAmount and progress are computable by the caller.
func (s *ledgerService) ListSavingGoals(ctx context.Context, accountID uuid.UUID) ([]*domain.SavingGoal, error) {
	if _, err := s.accountRepo.GetAccountByID(ctx, s.dbExecutor, accountID); err != nil {
		return nil, fmt.Errorf("list saving goals: %w", err)
	}
	goals, err := s.goalRepo.ListByAccount(ctx, s.dbExecutor, accountID)
	if err != nil {
		return nil, fmt.Errorf("list saving goals: %w", err)
	}
	for _, goal := range goals {
		ops, err := s.operationRepo.ListByGoal(ctx, s.dbExecutor, goal.ID)
		if err != nil {
			return nil, fmt.Errorf("list saving goals: %w", err)
		}
		goal.Operations = ops
	}
	return goals, nil
}

// DeleteSavingGoal detaches the goal from its account and cascades its
// private operations, in one transaction.
func (s *ledgerService) DeleteSavingGoal(ctx context.Context, accountID, goalID uuid.UUID) error {
	lock := s.locks.get(accountID)
	lock.Lock()
	defer lock.Unlock()

	txController, txExecutor, err := s.begin(ctx)
	if err != nil {
		return fmt.Errorf("delete saving goal: %w", err)
	}
	defer s.rollbackTx(txController)

	account, err := s.loadAccount(ctx, txExecutor, accountID)
	if err != nil {
		return fmt.Errorf("delete saving goal: %w", err)
	}
	if account.Goal(goalID) == nil {
		return util.ErrGoalNotFound
	}
	if err := account.RemoveGoal(goalID); err != nil {
		return err
	}
	if err := s.operationRepo.DeleteByGoal(ctx, txExecutor, goalID); err != nil {
		return fmt.Errorf("delete saving goal: %w", err)
	}
	if err := s.goalRepo.DeleteGoal(ctx, txExecutor, goalID); err != nil {
		return fmt.Errorf("delete saving goal: %w", err)
	}

	if err := s.commitTx(txController); err != nil {
		return fmt.Errorf("delete saving goal: failed to commit transaction: %w", err)
	}
	return nil
}

// Allocate moves funds from the account into the goal via the mirrored
// operation pair. The whole precondition-then-append sequence runs under
// the account's lock and one DB transaction, so either both ledgers record
// the movement or neither does.
func (s *ledgerService) Allocate(ctx context.Context, accountID, goalID uuid.UUID, amount decimal.Decimal, when time.Time) (*domain.Account, *domain.SavingGoal, error) {
	lock := s.locks.get(accountID)
	lock.Lock()
	defer lock.Unlock()

	txController, txExecutor, err := s.begin(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("allocate: %w", err)
	}
	defer s.rollbackTx(txController)

	account, err := s.loadAccount(ctx, txExecutor, accountID)
	if err != nil {
		return nil, nil, fmt.Errorf("allocate: %w", err)
	}
	goal, err := s.loadGoal(ctx, txExecutor, account, goalID)
	if err != nil {
		return nil, nil, fmt.Errorf("allocate: %w", err)
	}

	accountOp, goalOp, err := account.Allocate(goal, amount, when)
	if err != nil {
		return nil, nil, err
	}

	if err := s.operationRepo.CreateForAccount(ctx, txExecutor, account.ID, accountOp); err != nil {
		return nil, nil, fmt.Errorf("allocate: failed to persist account operation: %w", err)
	}
	if err := s.operationRepo.CreateForGoal(ctx, txExecutor, goal.ID, goalOp); err != nil {
		return nil, nil, fmt.Errorf("allocate: failed to persist goal operation: %w", err)
	}

	if err := s.commitTx(txController); err != nil {
		return nil, nil, fmt.Errorf("allocate: failed to commit transaction: %w", err)
	}
	return account, goal, nil
}

// Deallocate moves funds back from the goal into the account via the
// inverse mirrored pair, under the same exclusion and atomicity as Allocate.
func (s *ledgerService) Deallocate(ctx context.Context, accountID, goalID uuid.UUID, amount decimal.Decimal, when time.Time) (*domain.Account, *domain.SavingGoal, error) {
	lock := s.locks.get(accountID)
	lock.Lock()
	defer lock.Unlock()

	txController, txExecutor, err := s.begin(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("deallocate: %w", err)
	}
	defer s.rollbackTx(txController)

	account, err := s.loadAccount(ctx, txExecutor, accountID)
	if err != nil {
		return nil, nil, fmt.Errorf("deallocate: %w", err)
	}
	goal, err := s.loadGoal(ctx, txExecutor, account, goalID)
	if err != nil {
		return nil, nil, fmt.Errorf("deallocate: %w", err)
	}

	accountOp, goalOp, err := account.Deallocate(goal, amount, when)
	if err != nil {
		return nil, nil, err
	}

	if err := s.operationRepo.CreateForAccount(ctx, txExecutor, account.ID, accountOp); err != nil {
		return nil, nil, fmt.Errorf("deallocate: failed to persist account operation: %w", err)
	}
	if err := s.operationRepo.CreateForGoal(ctx, txExecutor, goal.ID, goalOp); err != nil {
		return nil, nil, fmt.Errorf("deallocate: failed to persist goal operation: %w", err)
	}

	if err := s.commitTx(txController); err != nil {
		return nil, nil, fmt.Errorf("deallocate: failed to commit transaction: %w", err)
	}
	return account, goal, nil
}

// loadGoal resolves a goal for an allocation call. A goal already hydrated
// on the account aggregate is reused; otherwise the goal is fetched so that
// a goal of a different account reaches the domain's ownership check rather
// than reporting not-found.
func (s *ledgerService) loadGoal(ctx context.Context, q repository.DBExecutor, account *domain.Account, goalID uuid.UUID) (*domain.SavingGoal, error) {
	if goal := account.Goal(goalID); goal != nil {
		return goal, nil
	}
	goal, err := s.goalRepo.GetGoalByID(ctx, q, goalID)
	if err != nil {
		return nil, err
	}
	ops, err := s.operationRepo.ListByGoal(ctx, q, goalID)
	if err != nil {
		return nil, err
	}
	goal.Operations = ops
	return goal, nil
}

// CreatePlannedPurchase records a future expense against an account.
func (s *ledgerService) CreatePlannedPurchase(ctx context.Context, accountID uuid.UUID, name string, category domain.ExpenseCategory, price decimal.Decimal) (*domain.PlannedPurchase, error) {
	if _, err := s.accountRepo.GetAccountByID(ctx, s.dbExecutor, accountID); err != nil {
		return nil, fmt.Errorf("create planned purchase: %w", err)
	}
	purchase, err := domain.NewPlannedPurchase(accountID, name, category, price)
	if err != nil {
		return nil, err
	}
	if err := s.purchaseRepo.CreatePurchase(ctx, s.dbExecutor, purchase); err != nil {
		return nil, fmt.Errorf("create planned purchase: %w", err)
	}
	return purchase, nil
}

// ListPlannedPurchases returns the account's planned purchases.
func (s *ledgerService) ListPlannedPurchases(ctx context.Context, accountID uuid.UUID) ([]*domain.PlannedPurchase, error) {
	if _, err := s.accountRepo.GetAccountByID(ctx, s.dbExecutor, accountID); err != nil {
		return nil, fmt.Errorf("list planned purchases: %w", err)
	}
	purchases, err := s.purchaseRepo.ListByAccount(ctx, s.dbExecutor, accountID)
	if err != nil {
		return nil, fmt.Errorf("list planned purchases: %w", err)
	}
	return purchases, nil
}

// DeletePlannedPurchase removes a planned purchase.
func (s *ledgerService) DeletePlannedPurchase(ctx context.Context, accountID, purchaseID uuid.UUID) error {
	if _, err := s.accountRepo.GetAccountByID(ctx, s.dbExecutor, accountID); err != nil {
		return fmt.Errorf("delete planned purchase: %w", err)
	}
	if err := s.purchaseRepo.DeletePurchase(ctx, s.dbExecutor, purchaseID); err != nil {
		return fmt.Errorf("delete planned purchase: %w", err)
	}
	return nil
}
