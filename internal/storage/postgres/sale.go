package postgres

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/avdev/sales-order-api/internal/domain/sale"
)

const (
	createSaleSQL = `INSERT INTO sales (id, customer_id, sale_date, total_gross_value, discount_percent, total_net_value, cancelled)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	createSaleItemSQL = `INSERT INTO sale_items (sale_id, product_code, quantity, unit_price, position)
		VALUES ($1, $2, $3, $4, $5)`

	getSaleByIDSQL = `SELECT id, customer_id, sale_date, total_gross_value, discount_percent, total_net_value, cancelled
		FROM sales WHERE id = $1`

	getSaleItemsSQL = `SELECT sale_id, product_code, quantity, unit_price
		FROM sale_items WHERE sale_id = $1 ORDER BY position`

	listSalesSQL = `SELECT id, customer_id, sale_date, total_gross_value, discount_percent, total_net_value, cancelled
		FROM sales ORDER BY sale_date DESC`

	deleteSaleItemsSQL = `DELETE FROM sale_items WHERE sale_id = $1`
	deleteSaleSQL      = `DELETE FROM sales WHERE id = $1`

	setSaleCancelledSQL = `UPDATE sales SET cancelled = $2 WHERE id = $1`
)

var _ sale.Repository = (*SaleRepository)(nil)

// SaleRepository implements sale.Repository backed by PostgreSQL.
type SaleRepository struct {
	pool *pgxpool.Pool
}

// NewSaleRepository returns a SaleRepository that uses the given pool.
func NewSaleRepository(pool *pgxpool.Pool) *SaleRepository {
	return &SaleRepository{pool: pool}
}

// Create persists the sale header and its items in one transaction. A
// partially written sale is never observable: either every row commits or
// none do.
func (r *SaleRepository) Create(ctx context.Context, s *sale.Sale) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // no-op after commit

	_, err = tx.Exec(ctx, createSaleSQL,
		s.ID, s.CustomerID, s.SaleDate, s.TotalGrossValue, s.DiscountPercent, s.TotalNetValue, s.Cancelled,
	)
	if err != nil {
		return fmt.Errorf("creating sale %q: %w", s.ID, err)
	}

	for i, it := range s.Items {
		_, err = tx.Exec(ctx, createSaleItemSQL, it.SaleID, it.ProductCode, it.Quantity, it.UnitPrice, i)
		if err != nil {
			return fmt.Errorf("creating sale item %q/%q: %w", it.SaleID, it.ProductCode, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing sale %q: %w", s.ID, err)
	}
	return nil
}

// GetByID returns a sale with its items in stored order.
func (r *SaleRepository) GetByID(ctx context.Context, id uuid.UUID) (*sale.Sale, error) {
	rows, err := r.pool.Query(ctx, getSaleByIDSQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting sale %q: %w", id, err)
	}

	s, err := pgx.CollectExactlyOneRow(rows, scanSale)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, sale.ErrNotFound
		}
		return nil, fmt.Errorf("getting sale %q: %w", id, err)
	}

	itemRows, err := r.pool.Query(ctx, getSaleItemsSQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting sale items %q: %w", id, err)
	}
	s.Items, err = pgx.CollectRows(itemRows, scanSaleItem)
	if err != nil {
		return nil, fmt.Errorf("getting sale items %q: %w", id, err)
	}

	return &s, nil
}

// List returns all sale headers, newest first. Items are not loaded.
func (r *SaleRepository) List(ctx context.Context) ([]sale.Sale, error) {
	rows, err := r.pool.Query(ctx, listSalesSQL)
	if err != nil {
		return nil, fmt.Errorf("listing sales: %w", err)
	}
	return pgx.CollectRows(rows, scanSale)
}

// Delete removes a sale and its items in one transaction. Returns
// sale.ErrNotFound when the sale does not exist.
func (r *SaleRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // no-op after commit

	if _, err := tx.Exec(ctx, deleteSaleItemsSQL, id); err != nil {
		return fmt.Errorf("deleting sale items %q: %w", id, err)
	}

	tag, err := tx.Exec(ctx, deleteSaleSQL, id)
	if err != nil {
		return fmt.Errorf("deleting sale %q: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return sale.ErrNotFound
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing delete of sale %q: %w", id, err)
	}
	return nil
}

// SetCancelled flips the cancelled flag on a sale header.
func (r *SaleRepository) SetCancelled(ctx context.Context, id uuid.UUID, cancelled bool) error {
	tag, err := r.pool.Exec(ctx, setSaleCancelledSQL, id, cancelled)
	if err != nil {
		return fmt.Errorf("cancelling sale %q: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return sale.ErrNotFound
	}
	return nil
}

func scanSale(row pgx.CollectableRow) (sale.Sale, error) {
	var (
		s          sale.Sale
		gross, net decimal.Decimal
	)
	err := row.Scan(&s.ID, &s.CustomerID, &s.SaleDate, &gross, &s.DiscountPercent, &net, &s.Cancelled)
	s.TotalGrossValue = gross
	s.TotalNetValue = net
	return s, err
}

func scanSaleItem(row pgx.CollectableRow) (sale.SaleItem, error) {
	var (
		it    sale.SaleItem
		price decimal.Decimal
	)
	err := row.Scan(&it.SaleID, &it.ProductCode, &it.Quantity, &price)
	it.UnitPrice = price
	return it, err
}
