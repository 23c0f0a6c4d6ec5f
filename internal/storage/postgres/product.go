package postgres

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/avdev/sales-order-api/internal/domain/product"
)

const (
	createProductSQL = `INSERT INTO products (id, code, description, category, image, price, quantity_in_stock)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	getProductByIDSQL = `SELECT id, code, description, category, image, price, quantity_in_stock
		FROM products WHERE id = $1`

	getProductByCodeSQL = `SELECT id, code, description, category, image, price, quantity_in_stock
		FROM products WHERE code = $1`

	getProductsByCodesSQL = `SELECT id, code, description, category, image, price, quantity_in_stock
		FROM products WHERE code = ANY($1)`

	searchProductsSQL = `SELECT id, code, description, category, image, price, quantity_in_stock
		FROM products WHERE LOWER(description) LIKE '%' || LOWER($1) || '%'
		ORDER BY code`

	listProductsSQL = `SELECT id, code, description, category, image, price, quantity_in_stock
		FROM products ORDER BY code`

	deleteProductSQL = `DELETE FROM products WHERE code = $1`

	upsertProductSQL = `INSERT INTO products (id, code, description, category, image, price, quantity_in_stock)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (code) DO UPDATE SET
			description = EXCLUDED.description,
			category = EXCLUDED.category,
			image = EXCLUDED.image,
			price = EXCLUDED.price,
			quantity_in_stock = EXCLUDED.quantity_in_stock`
)

var _ product.Repository = (*ProductRepository)(nil)

// ProductRepository implements product.Repository backed by PostgreSQL.
type ProductRepository struct {
	pool *pgxpool.Pool
}

// NewProductRepository returns a ProductRepository that uses the given pool.
func NewProductRepository(pool *pgxpool.Pool) *ProductRepository {
	return &ProductRepository{pool: pool}
}

// Create persists a new product. Returns product.ErrAlreadyExists when the
// code or description is taken.
func (r *ProductRepository) Create(ctx context.Context, p *product.Product) error {
	_, err := r.pool.Exec(ctx, createProductSQL,
		p.ID, p.Code, p.Description, p.Category, p.Image, p.Price, p.QuantityInStock,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return product.ErrAlreadyExists
		}
		return fmt.Errorf("creating product %q: %w", p.Code, err)
	}
	return nil
}

// GetByID returns a single product by its identifier.
func (r *ProductRepository) GetByID(ctx context.Context, id uuid.UUID) (*product.Product, error) {
	return r.getOne(ctx, getProductByIDSQL, id)
}

// GetByCode returns a single product by its unique code.
func (r *ProductRepository) GetByCode(ctx context.Context, code string) (*product.Product, error) {
	return r.getOne(ctx, getProductByCodeSQL, code)
}

// GetByCodes returns products matching any of the given codes.
func (r *ProductRepository) GetByCodes(ctx context.Context, codes []string) ([]product.Product, error) {
	rows, err := r.pool.Query(ctx, getProductsByCodesSQL, codes)
	if err != nil {
		return nil, fmt.Errorf("getting products by codes: %w", err)
	}
	return pgx.CollectRows(rows, scanProduct)
}

// SearchByDescription returns products whose description contains the given
// term, matched case-insensitively.
func (r *ProductRepository) SearchByDescription(ctx context.Context, term string) ([]product.Product, error) {
	rows, err := r.pool.Query(ctx, searchProductsSQL, term)
	if err != nil {
		return nil, fmt.Errorf("searching products: %w", err)
	}
	return pgx.CollectRows(rows, scanProduct)
}

// List returns all products from the catalog ordered by code.
func (r *ProductRepository) List(ctx context.Context) ([]product.Product, error) {
	rows, err := r.pool.Query(ctx, listProductsSQL)
	if err != nil {
		return nil, fmt.Errorf("listing products: %w", err)
	}
	return pgx.CollectRows(rows, scanProduct)
}

// Upsert inserts a product or, when the code is already present, refreshes
// its description, category, image, price and stock.
func (r *ProductRepository) Upsert(ctx context.Context, p *product.Product) error {
	_, err := r.pool.Exec(ctx, upsertProductSQL,
		p.ID, p.Code, p.Description, p.Category, p.Image, p.Price, p.QuantityInStock,
	)
	if err != nil {
		return fmt.Errorf("upserting product %q: %w", p.Code, err)
	}
	return nil
}

// Delete removes a product by code. Returns product.ErrNotFound when no row
// matched.
func (r *ProductRepository) Delete(ctx context.Context, code string) error {
	tag, err := r.pool.Exec(ctx, deleteProductSQL, code)
	if err != nil {
		return fmt.Errorf("deleting product %q: %w", code, err)
	}
	if tag.RowsAffected() == 0 {
		return product.ErrNotFound
	}
	return nil
}

func (r *ProductRepository) getOne(ctx context.Context, sql string, arg any) (*product.Product, error) {
	rows, err := r.pool.Query(ctx, sql, arg)
	if err != nil {
		return nil, fmt.Errorf("getting product: %w", err)
	}

	p, err := pgx.CollectExactlyOneRow(rows, scanProduct)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, product.ErrNotFound
		}
		return nil, fmt.Errorf("getting product: %w", err)
	}
	return &p, nil
}

func scanProduct(row pgx.CollectableRow) (product.Product, error) {
	var (
		p     product.Product
		price decimal.Decimal
	)
	err := row.Scan(&p.ID, &p.Code, &p.Description, &p.Category, &p.Image, &price, &p.QuantityInStock)
	p.Price = price
	return p, err
}
