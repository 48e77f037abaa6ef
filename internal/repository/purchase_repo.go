// internal/repository/purchase_repo.go
package repository

import (
	"context"

	"github.com/google/uuid"

	"finledger/internal/domain"
)

// PurchaseRepository defines the store operations for planned purchases.
type PurchaseRepository interface {
	// CreatePurchase adds a new planned purchase record.
	CreatePurchase(ctx context.Context, q DBExecutor, purchase *domain.PlannedPurchase) error
	// ListByAccount retrieves all planned purchases for an account.
	ListByAccount(ctx context.Context, q DBExecutor, accountID uuid.UUID) ([]*domain.PlannedPurchase, error)
	// DeletePurchase removes a planned purchase by identity.
	DeletePurchase(ctx context.Context, q DBExecutor, id uuid.UUID) error
	// DeleteByAccount removes every planned purchase for an account.
	DeleteByAccount(ctx context.Context, q DBExecutor, accountID uuid.UUID) error
}
