package customer

import (
	"context"
	"regexp"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
)

var (
	// ErrNotFound is returned when a requested customer does not exist.
	ErrNotFound = errors.New("customer not found")
	// ErrAlreadyExists is returned when the name or email of a new customer
	// is already taken.
	ErrAlreadyExists = errors.New("customer already exists")
)

// Customer is a buyer that sales reference by ID.
type Customer struct {
	ID    uuid.UUID
	Name  string
	Phone string
	Email string
}

// Repository defines persistence operations for customers.
type Repository interface {
	Create(ctx context.Context, c *Customer) error
	GetByID(ctx context.Context, id uuid.UUID) (*Customer, error)
	GetByName(ctx context.Context, name string) (*Customer, error)
	GetByPartialName(ctx context.Context, name string) (*Customer, error)
	GetByEmail(ctx context.Context, email string) (*Customer, error)
	List(ctx context.Context) ([]Customer, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

var (
	phonePattern = regexp.MustCompile(`^\+[1-9]\d{10,14}$`)
	emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
)

// Validate checks the customer's field constraints: name 3-50 characters,
// E.164-style phone number, well-formed email. Uniqueness of name and email
// is a separate pre-check against the repository.
func Validate(c *Customer) error {
	if n := len(c.Name); n < 3 || n > 50 {
		return errors.New("name must be between 3 and 50 characters")
	}
	if !phonePattern.MatchString(c.Phone) {
		return errors.New("phone must start with '+' followed by 11-15 digits")
	}
	if !emailPattern.MatchString(c.Email) {
		return errors.New("email is not valid")
	}
	return nil
}
