// internal/repository/goal_repo.go
package repository

import (
	"context"

	"github.com/google/uuid"

	"finledger/internal/domain"
)

// GoalRepository defines the store operations for saving goals.
type GoalRepository interface {
	// CreateGoal adds a new saving goal record using the provided DBExecutor.
	CreateGoal(ctx context.Context, q DBExecutor, goal *domain.SavingGoal) error
	// GetGoalByID retrieves a goal record (without its operations).
	GetGoalByID(ctx context.Context, q DBExecutor, id uuid.UUID) (*domain.SavingGoal, error)
	// ListByAccount retrieves all goal records belonging to an account.
	ListByAccount(ctx context.Context, q DBExecutor, accountID uuid.UUID) ([]*domain.SavingGoal, error)
	// DeleteGoal removes a goal record. Its private operations are deleted
	// first by the caller via the goal's cascade-identity set.
	DeleteGoal(ctx context.Context, q DBExecutor, id uuid.UUID) error
}
