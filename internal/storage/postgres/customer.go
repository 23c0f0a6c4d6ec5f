package postgres

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/avdev/sales-order-api/internal/domain/customer"
)

const (
	createCustomerSQL = `INSERT INTO customers (id, name, phone, email)
		VALUES ($1, $2, $3, $4)`

	getCustomerByIDSQL = `SELECT id, name, phone, email
		FROM customers WHERE id = $1`

	getCustomerByNameSQL = `SELECT id, name, phone, email
		FROM customers WHERE LOWER(name) = LOWER($1)`

	getCustomerByPartialNameSQL = `SELECT id, name, phone, email
		FROM customers WHERE LOWER(name) LIKE '%' || LOWER($1) || '%'
		ORDER BY name LIMIT 1`

	getCustomerByEmailSQL = `SELECT id, name, phone, email
		FROM customers WHERE email = $1`

	listCustomersSQL = `SELECT id, name, phone, email
		FROM customers ORDER BY name`

	deleteCustomerSQL = `DELETE FROM customers WHERE id = $1`
)

var _ customer.Repository = (*CustomerRepository)(nil)

// CustomerRepository implements customer.Repository backed by PostgreSQL.
type CustomerRepository struct {
	pool *pgxpool.Pool
}

// NewCustomerRepository returns a CustomerRepository that uses the given pool.
func NewCustomerRepository(pool *pgxpool.Pool) *CustomerRepository {
	return &CustomerRepository{pool: pool}
}

// Create persists a new customer. Returns customer.ErrAlreadyExists when the
// name or email is taken.
func (r *CustomerRepository) Create(ctx context.Context, c *customer.Customer) error {
	_, err := r.pool.Exec(ctx, createCustomerSQL, c.ID, c.Name, c.Phone, c.Email)
	if err != nil {
		if isUniqueViolation(err) {
			return customer.ErrAlreadyExists
		}
		return fmt.Errorf("creating customer %q: %w", c.ID, err)
	}
	return nil
}

// GetByID returns a single customer by its identifier.
func (r *CustomerRepository) GetByID(ctx context.Context, id uuid.UUID) (*customer.Customer, error) {
	return r.getOne(ctx, getCustomerByIDSQL, id)
}

// GetByName returns the customer with the given name, matched case-insensitively.
func (r *CustomerRepository) GetByName(ctx context.Context, name string) (*customer.Customer, error) {
	return r.getOne(ctx, getCustomerByNameSQL, name)
}

// GetByPartialName returns the first customer whose name contains the given
// fragment, matched case-insensitively.
func (r *CustomerRepository) GetByPartialName(ctx context.Context, name string) (*customer.Customer, error) {
	return r.getOne(ctx, getCustomerByPartialNameSQL, name)
}

// GetByEmail returns the customer with the given email address.
func (r *CustomerRepository) GetByEmail(ctx context.Context, email string) (*customer.Customer, error) {
	return r.getOne(ctx, getCustomerByEmailSQL, email)
}

// List returns all customers ordered by name.
func (r *CustomerRepository) List(ctx context.Context) ([]customer.Customer, error) {
	rows, err := r.pool.Query(ctx, listCustomersSQL)
	if err != nil {
		return nil, fmt.Errorf("listing customers: %w", err)
	}
	return pgx.CollectRows(rows, scanCustomer)
}

// Delete removes a customer. Returns customer.ErrNotFound when no row matched.
func (r *CustomerRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, deleteCustomerSQL, id)
	if err != nil {
		return fmt.Errorf("deleting customer %q: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return customer.ErrNotFound
	}
	return nil
}

func (r *CustomerRepository) getOne(ctx context.Context, sql string, arg any) (*customer.Customer, error) {
	rows, err := r.pool.Query(ctx, sql, arg)
	if err != nil {
		return nil, fmt.Errorf("getting customer: %w", err)
	}

	c, err := pgx.CollectExactlyOneRow(rows, scanCustomer)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, customer.ErrNotFound
		}
		return nil, fmt.Errorf("getting customer: %w", err)
	}
	return &c, nil
}

func scanCustomer(row pgx.CollectableRow) (customer.Customer, error) {
	var c customer.Customer
	err := row.Scan(&c.ID, &c.Name, &c.Phone, &c.Email)
	return c, err
}
