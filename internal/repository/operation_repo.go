// internal/repository/operation_repo.go
package repository

import (
	"context"

	"github.com/google/uuid"

	"finledger/internal/domain"
)

// OperationRepository defines the store operations for ledger operations.
// An operation row is owned by exactly one account or one goal, mirroring
// the exclusive ownership in the domain model.
type OperationRepository interface {
	// CreateForAccount inserts an operation into an account's own ledger.
	CreateForAccount(ctx context.Context, q DBExecutor, accountID uuid.UUID, op *domain.Operation) error
	// CreateForGoal inserts an operation into a goal's private ledger.
	CreateForGoal(ctx context.Context, q DBExecutor, goalID uuid.UUID, op *domain.Operation) error
	// UpdateOperation rewrites the mutable fields of an operation.
	UpdateOperation(ctx context.Context, q DBExecutor, op *domain.Operation) error
	// DeleteOperation removes a single operation by identity.
	DeleteOperation(ctx context.Context, q DBExecutor, id uuid.UUID) error
	// DeleteByAccount removes every operation owned directly by an account.
	DeleteByAccount(ctx context.Context, q DBExecutor, accountID uuid.UUID) error
	// DeleteByGoal removes every operation in a goal's private ledger.
	DeleteByGoal(ctx context.Context, q DBExecutor, goalID uuid.UUID) error
	// ListByAccount retrieves an account's operations in insertion order.
	ListByAccount(ctx context.Context, q DBExecutor, accountID uuid.UUID) ([]*domain.Operation, error)
	// ListByGoal retrieves a goal's operations in insertion order.
	ListByGoal(ctx context.Context, q DBExecutor, goalID uuid.UUID) ([]*domain.Operation, error)
	// ListByAccountDateDesc retrieves a page of an account's operations in
	// date-descending display order, plus the total count.
	ListByAccountDateDesc(ctx context.Context, q DBExecutor, accountID uuid.UUID, limit, offset int) ([]*domain.Operation, int64, error)
}
