// internal/repository/account_repo.go
package repository

import (
	"context"

	"github.com/google/uuid"

	"finledger/internal/domain"
)

// AccountRepository defines the store operations for accounts. The store is
// a black box to the ledger core: create, update, delete and query-all are
// the whole contract. There is no stored balance to read or write.
type AccountRepository interface {
	// CreateAccount adds a new account record using the provided DBExecutor.
	CreateAccount(ctx context.Context, q DBExecutor, account *domain.Account) error
	// GetAccountByID retrieves an account record (without its collections).
	GetAccountByID(ctx context.Context, q DBExecutor, id uuid.UUID) (*domain.Account, error)
	// ListAccounts retrieves all account records.
	ListAccounts(ctx context.Context, q DBExecutor) ([]*domain.Account, error)
	// UpdateAccountName updates the mutable display label.
	UpdateAccountName(ctx context.Context, q DBExecutor, id uuid.UUID, name string) error
	// DeleteAccount removes the account record itself. Dependents are
	// deleted first by the caller via the cascade-identity sets.
	DeleteAccount(ctx context.Context, q DBExecutor, id uuid.UUID) error
}
