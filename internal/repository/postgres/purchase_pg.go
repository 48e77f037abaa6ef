// internal/repository/postgres/purchase_pg.go
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

// PurchaseRepository implements repository.PurchaseRepository for PostgreSQL.
type PurchaseRepository struct{}

// NewPurchaseRepository creates a new PurchaseRepository.
func NewPurchaseRepository(db *sqlx.DB) repository.PurchaseRepository {
	return &PurchaseRepository{}
}

type purchaseRow struct {
	ID        uuid.UUID       `db:"id"`
	AccountID uuid.UUID       `db:"account_id"`
	Name      string          `db:"name"`
	Category  string          `db:"category"`
	Price     decimal.Decimal `db:"price"`
	CreatedAt time.Time       `db:"created_at"`
}

func (r purchaseRow) toDomain() *domain.PlannedPurchase {
	return &domain.PlannedPurchase{
		ID:        r.ID,
		AccountID: r.AccountID,
		Name:      r.Name,
		Category:  domain.ExpenseCategory(r.Category),
		Price:     r.Price,
		CreatedAt: r.CreatedAt,
	}
}

// CreatePurchase inserts a new planned purchase record.
func (r *PurchaseRepository) CreatePurchase(ctx context.Context, q repository.DBExecutor, purchase *domain.PlannedPurchase) error {
	query := `INSERT INTO planned_purchases (id, account_id, name, category, price, created_at)
              VALUES ($1, $2, $3, $4, $5, $6)`
	if _, err := q.ExecContext(ctx, query, purchase.ID, purchase.AccountID, purchase.Name, string(purchase.Category), purchase.Price, purchase.CreatedAt); err != nil {
		return fmt.Errorf("failed to create planned purchase: %w", err)
	}
	return nil
}

// ListByAccount retrieves all planned purchases for an account.
func (r *PurchaseRepository) ListByAccount(ctx context.Context, q repository.DBExecutor, accountID uuid.UUID) ([]*domain.PlannedPurchase, error) {
	rows := []purchaseRow{}
	query := `SELECT id, account_id, name, category, price, created_at
	          FROM planned_purchases WHERE account_id = $1 ORDER BY created_at`
	if err := q.SelectContext(ctx, &rows, query, accountID); err != nil {
		return nil, fmt.Errorf("failed to list planned purchases for account %s: %w", accountID, err)
	}
	purchases := make([]*domain.PlannedPurchase, 0, len(rows))
	for _, row := range rows {
		purchases = append(purchases, row.toDomain())
	}
	return purchases, nil
}

// DeletePurchase removes a planned purchase by identity.
func (r *PurchaseRepository) DeletePurchase(ctx context.Context, q repository.DBExecutor, id uuid.UUID) error {
	query := `DELETE FROM planned_purchases WHERE id = $1`
	result, err := q.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete planned purchase %s: %w", id, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected after deleting planned purchase %s: %w", id, err)
	}
	if rowsAffected == 0 {
		return util.ErrNotFound
	}
	return nil
}

// DeleteByAccount removes every planned purchase for an account.
func (r *PurchaseRepository) DeleteByAccount(ctx context.Context, q repository.DBExecutor, accountID uuid.UUID) error {
	query := `DELETE FROM planned_purchases WHERE account_id = $1`
	if _, err := q.ExecContext(ctx, query, accountID); err != nil {
		return fmt.Errorf("failed to delete planned purchases for account %s: %w", accountID, err)
	}
	return nil
}
