// internal/repository/postgres/goal_pg.go
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"finledger/internal/domain"
	"finledger/internal/repository"
	"finledger/internal/util"
)

// GoalRepository implements repository.GoalRepository for PostgreSQL.
type GoalRepository struct {
	// Methods receive a DBExecutor directly; no connection is held here.
}

// NewGoalRepository creates a new GoalRepository.
func NewGoalRepository(db *sqlx.DB) repository.GoalRepository {
	return &GoalRepository{}
}

type goalRow struct {
	ID           uuid.UUID       `db:"id"`
	AccountID    uuid.UUID       `db:"account_id"`
	Name         string          `db:"name"`
	TargetAmount decimal.Decimal `db:"target_amount"`
	CreatedAt    time.Time       `db:"created_at"`
}

func (r goalRow) toDomain() *domain.SavingGoal {
	return &domain.SavingGoal{
		ID:           r.ID,
		AccountID:    r.AccountID,
		Name:         r.Name,
		TargetAmount: r.TargetAmount,
		CreatedAt:    r.CreatedAt,
		Operations:   []*domain.Operation{},
	}
}

// CreateGoal inserts a new saving goal record using the provided DBExecutor.
func (r *GoalRepository) CreateGoal(ctx context.Context, q repository.DBExecutor, goal *domain.SavingGoal) error {
	query := `INSERT INTO saving_goals (id, account_id, name, target_amount, created_at)
              VALUES ($1, $2, $3, $4, $5)`
	if _, err := q.ExecContext(ctx, query, goal.ID, goal.AccountID, goal.Name, goal.TargetAmount, goal.CreatedAt); err != nil {
		return fmt.Errorf("failed to create saving goal: %w", err)
	}
	return nil
}

// GetGoalByID retrieves a goal record by its ID using the provided DBExecutor.
func (r *GoalRepository) GetGoalByID(ctx context.Context, q repository.DBExecutor, id uuid.UUID) (*domain.SavingGoal, error) {
	var row goalRow
	query := `SELECT id, account_id, name, target_amount, created_at FROM saving_goals WHERE id = $1`
	if err := q.GetContext(ctx, &row, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, util.ErrGoalNotFound
		}
		return nil, fmt.Errorf("failed to get saving goal by ID %s: %w", id, err)
	}
	return row.toDomain(), nil
}

// ListByAccount retrieves all goal records belonging to an account.
func (r *GoalRepository) ListByAccount(ctx context.Context, q repository.DBExecutor, accountID uuid.UUID) ([]*domain.SavingGoal, error) {
	rows := []goalRow{}
	query := `SELECT id, account_id, name, target_amount, created_at
	          FROM saving_goals WHERE account_id = $1 ORDER BY created_at`
	if err := q.SelectContext(ctx, &rows, query, accountID); err != nil {
		return nil, fmt.Errorf("failed to list saving goals for account %s: %w", accountID, err)
	}
	goals := make([]*domain.SavingGoal, 0, len(rows))
	for _, row := range rows {
		goals = append(goals, row.toDomain())
	}
	return goals, nil
}

// DeleteGoal removes a goal record.
func (r *GoalRepository) DeleteGoal(ctx context.Context, q repository.DBExecutor, id uuid.UUID) error {
	query := `DELETE FROM saving_goals WHERE id = $1`
	result, err := q.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete saving goal %s: %w", id, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected after deleting saving goal %s: %w", id, err)
	}
	if rowsAffected == 0 {
		return util.ErrGoalNotFound
	}
	return nil
}
