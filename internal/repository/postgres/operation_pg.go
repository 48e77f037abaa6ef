// internal/repository/postgres/operation_pg.go
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"finledger/internal/domain"
	"finledger/internal/repository"
	"finledger/internal/util"
)

// OperationRepository implements repository.OperationRepository for PostgreSQL.
type OperationRepository struct {
	// Methods receive a DBExecutor directly; no connection is held here.
}

// NewOperationRepository creates a new OperationRepository.
func NewOperationRepository(db *sqlx.DB) repository.OperationRepository {
	return &OperationRepository{}
}

// operationRow is the flat projection of an operation record. The kind's
// tagged union is stored as (op_type, category) columns.
type operationRow struct {
	ID       uuid.UUID       `db:"id"`
	OpDate   time.Time       `db:"op_date"`
	Amount   decimal.Decimal `db:"amount"`
	OpType   string          `db:"op_type"`
	Category string          `db:"category"`
}

func (r operationRow) toDomain() *domain.Operation {
	var kind domain.OperationKind
	switch domain.OperationType(r.OpType) {
	case domain.OperationTypeIncome:
		kind = domain.IncomeKind(domain.IncomeCategory(r.Category))
	case domain.OperationTypeExpense:
		kind = domain.ExpenseKind(domain.ExpenseCategory(r.Category))
	}
	return &domain.Operation{
		ID:     r.ID,
		Date:   r.OpDate,
		Amount: r.Amount,
		Kind:   kind,
	}
}

// CreateForAccount inserts an operation owned by an account's own ledger.
func (r *OperationRepository) CreateForAccount(ctx context.Context, q repository.DBExecutor, accountID uuid.UUID, op *domain.Operation) error {
	query := `INSERT INTO operations (id, account_id, goal_id, op_date, amount, op_type, category)
              VALUES ($1, $2, NULL, $3, $4, $5, $6)`
	if _, err := q.ExecContext(ctx, query, op.ID, accountID, op.Date, op.Amount, string(op.Kind.Type), op.Kind.Category()); err != nil {
		return fmt.Errorf("failed to create operation for account %s: %w", accountID, err)
	}
	return nil
}

// CreateForGoal inserts an operation owned by a goal's private ledger.
func (r *OperationRepository) CreateForGoal(ctx context.Context, q repository.DBExecutor, goalID uuid.UUID, op *domain.Operation) error {
	query := `INSERT INTO operations (id, account_id, goal_id, op_date, amount, op_type, category)
              VALUES ($1, NULL, $2, $3, $4, $5, $6)`
	if _, err := q.ExecContext(ctx, query, op.ID, goalID, op.Date, op.Amount, string(op.Kind.Type), op.Kind.Category()); err != nil {
		return fmt.Errorf("failed to create operation for goal %s: %w", goalID, err)
	}
	return nil
}

// UpdateOperation rewrites the mutable fields of an operation. Ownership
// columns are never touched: an operation cannot move to a different owner.
func (r *OperationRepository) UpdateOperation(ctx context.Context, q repository.DBExecutor, op *domain.Operation) error {
	query := `UPDATE operations SET op_date = $1, amount = $2, op_type = $3, category = $4 WHERE id = $5`
	result, err := q.ExecContext(ctx, query, op.Date, op.Amount, string(op.Kind.Type), op.Kind.Category(), op.ID)
	if err != nil {
		return fmt.Errorf("failed to update operation %s: %w", op.ID, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected after updating operation %s: %w", op.ID, err)
	}
	if rowsAffected == 0 {
		return util.ErrNotFound
	}
	return nil
}

// DeleteOperation removes a single operation by identity.
func (r *OperationRepository) DeleteOperation(ctx context.Context, q repository.DBExecutor, id uuid.UUID) error {
	query := `DELETE FROM operations WHERE id = $1`
	result, err := q.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete operation %s: %w", id, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected after deleting operation %s: %w", id, err)
	}
	if rowsAffected == 0 {
		return util.ErrNotFound
	}
	return nil
}

// DeleteByAccount removes every operation owned directly by an account.
func (r *OperationRepository) DeleteByAccount(ctx context.Context, q repository.DBExecutor, accountID uuid.UUID) error {
	query := `DELETE FROM operations WHERE account_id = $1`
	if _, err := q.ExecContext(ctx, query, accountID); err != nil {
		return fmt.Errorf("failed to delete operations for account %s: %w", accountID, err)
	}
	return nil
}

// DeleteByGoal removes every operation in a goal's private ledger.
func (r *OperationRepository) DeleteByGoal(ctx context.Context, q repository.DBExecutor, goalID uuid.UUID) error {
	query := `DELETE FROM operations WHERE goal_id = $1`
	if _, err := q.ExecContext(ctx, query, goalID); err != nil {
		return fmt.Errorf("failed to delete operations for goal %s: %w", goalID, err)
	}
	return nil
}

// ListByAccount retrieves an account's operations in insertion order.
func (r *OperationRepository) ListByAccount(ctx context.Context, q repository.DBExecutor, accountID uuid.UUID) ([]*domain.Operation, error) {
	rows := []operationRow{}
	query := `SELECT id, op_date, amount, op_type, category
	          FROM operations WHERE account_id = $1 ORDER BY seq`
	if err := q.SelectContext(ctx, &rows, query, accountID); err != nil {
		return nil, fmt.Errorf("failed to list operations for account %s: %w", accountID, err)
	}
	return rowsToDomain(rows), nil
}

// ListByGoal retrieves a goal's operations in insertion order.
func (r *OperationRepository) ListByGoal(ctx context.Context, q repository.DBExecutor, goalID uuid.UUID) ([]*domain.Operation, error) {
	rows := []operationRow{}
	query := `SELECT id, op_date, amount, op_type, category
	          FROM operations WHERE goal_id = $1 ORDER BY seq`
	if err := q.SelectContext(ctx, &rows, query, goalID); err != nil {
		return nil, fmt.Errorf("failed to list operations for goal %s: %w", goalID, err)
	}
	return rowsToDomain(rows), nil
}

// ListByAccountDateDesc retrieves a page of an account's operations in
// date-descending display order, plus the total count.
func (r *OperationRepository) ListByAccountDateDesc(ctx context.Context, q repository.DBExecutor, accountID uuid.UUID, limit, offset int) ([]*domain.Operation, int64, error) {
	rows := []operationRow{}
	query := `
		SELECT id, op_date, amount, op_type, category
		FROM operations
		WHERE account_id = $1
		ORDER BY op_date DESC, seq DESC
		LIMIT $2 OFFSET $3`
	if err := q.SelectContext(ctx, &rows, query, accountID, limit, offset); err != nil {
		return nil, 0, fmt.Errorf("failed to fetch operations for account %s: %w", accountID, err)
	}

	var totalCount int64
	countQuery := `SELECT COUNT(*) FROM operations WHERE account_id = $1`
	if err := q.GetContext(ctx, &totalCount, countQuery, accountID); err != nil {
		return nil, 0, fmt.Errorf("failed to get total operation count for account %s: %w", accountID, err)
	}

	return rowsToDomain(rows), totalCount, nil
}

func rowsToDomain(rows []operationRow) []*domain.Operation {
	ops := make([]*domain.Operation, 0, len(rows))
	for _, row := range rows {
		ops = append(ops, row.toDomain())
	}
	return ops
}
