// internal/repository/postgres/account_pg.go
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"finledger/internal/domain"
	"finledger/internal/repository"
	"finledger/internal/util"
)

// AccountRepository implements repository.AccountRepository for PostgreSQL.
type AccountRepository struct {
	// Methods receive a DBExecutor directly; no connection is held here.
}

// NewAccountRepository creates a new AccountRepository.
func NewAccountRepository(db *sqlx.DB) repository.AccountRepository {
	return &AccountRepository{}
}

// accountRow is the flat projection of an account record. Collections are
// hydrated separately; there is no balance column by design.
type accountRow struct {
	ID           uuid.UUID `db:"id"`
	Name         string    `db:"name"`
	CurrencyCode string    `db:"currency_code"`
	CreatedAt    time.Time `db:"created_at"`
}

func (r accountRow) toDomain() *domain.Account {
	return &domain.Account{
		ID:           r.ID,
		Name:         r.Name,
		CurrencyCode: r.CurrencyCode,
		CreatedAt:    r.CreatedAt,
		Operations:   []*domain.Operation{},
		SavingGoals:  []*domain.SavingGoal{},
	}
}

// CreateAccount inserts a new account record using the provided DBExecutor.
func (r *AccountRepository) CreateAccount(ctx context.Context, q repository.DBExecutor, account *domain.Account) error {
	query := `INSERT INTO accounts (id, name, currency_code, created_at)
              VALUES ($1, $2, $3, $4)`
	if _, err := q.ExecContext(ctx, query, account.ID, account.Name, account.CurrencyCode, account.CreatedAt); err != nil {
		return fmt.Errorf("failed to create account: %w", err)
	}
	return nil
}

// GetAccountByID retrieves an account record by its ID using the provided DBExecutor.
func (r *AccountRepository) GetAccountByID(ctx context.Context, q repository.DBExecutor, id uuid.UUID) (*domain.Account, error) {
	var row accountRow
	query := `SELECT id, name, currency_code, created_at FROM accounts WHERE id = $1`
	if err := q.GetContext(ctx, &row, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, util.ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to get account by ID %s: %w", id, err)
	}
	return row.toDomain(), nil
}

// ListAccounts retrieves all account records.
func (r *AccountRepository) ListAccounts(ctx context.Context, q repository.DBExecutor) ([]*domain.Account, error) {
	rows := []accountRow{}
	query := `SELECT id, name, currency_code, created_at FROM accounts ORDER BY created_at`
	if err := q.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	accounts := make([]*domain.Account, 0, len(rows))
	for _, row := range rows {
		accounts = append(accounts, row.toDomain())
	}
	return accounts, nil
}

// UpdateAccountName updates the account's display label.
func (r *AccountRepository) UpdateAccountName(ctx context.Context, q repository.DBExecutor, id uuid.UUID, name string) error {
	query := `UPDATE accounts SET name = $1 WHERE id = $2`
	result, err := q.ExecContext(ctx, query, name, id)
	if err != nil {
		return fmt.Errorf("failed to update account name for ID %s: %w", id, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected after renaming account %s: %w", id, err)
	}
	if rowsAffected == 0 {
		return util.ErrAccountNotFound
	}
	return nil
}

// DeleteAccount removes the account record itself.
func (r *AccountRepository) DeleteAccount(ctx context.Context, q repository.DBExecutor, id uuid.UUID) error {
	query := `DELETE FROM accounts WHERE id = $1`
	result, err := q.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete account %s: %w", id, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected after deleting account %s: %w", id, err)
	}
	if rowsAffected == 0 {
		return util.ErrAccountNotFound
	}
	return nil
}
