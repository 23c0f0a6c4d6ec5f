// Command seed-db applies migrations and loads demo customers and products.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log/slog"
	"os"
	"os/signal"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/avdev/sales-order-api/internal/domain/customer"
	"github.com/avdev/sales-order-api/internal/domain/product"
	"github.com/avdev/sales-order-api/internal/storage/postgres"
)

type customerJSON struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Email string `json:"email"`
}

type productJSON struct {
	Code            string          `json:"code"`
	Description     string          `json:"description"`
	Category        string          `json:"category"`
	Image           string          `json:"image"`
	Price           decimal.Decimal `json:"price"`
	QuantityInStock int             `json:"quantityInStock"`
}

type seedFile struct {
	Customers []customerJSON `json:"customers"`
	Products  []productJSON  `json:"products"`
}

func main() {
	var (
		databaseURL string
		seedPath    string
	)

	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.StringVar(&seedPath, "seed-file", "db/seed/demo.json", "path to seed JSON file")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, databaseURL, seedPath); err != nil {
		slog.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("seed completed successfully")
}

func run(ctx context.Context, databaseURL, seedPath string) error {
	slog.Info("connecting to database")

	pool, err := postgres.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	slog.Info("running migrations")

	if err := postgres.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	slog.Info("reading seed file", slog.String("path", seedPath))

	data, err := os.ReadFile(seedPath)
	if err != nil {
		return errors.Wrap(err, "read seed file")
	}

	var seed seedFile
	if err := json.Unmarshal(data, &seed); err != nil {
		return errors.Wrap(err, "parse seed JSON")
	}

	if err := seedCustomers(ctx, postgres.NewCustomerRepository(pool), seed.Customers); err != nil {
		return errors.Wrap(err, "seed customers")
	}

	if err := seedProducts(ctx, postgres.NewProductRepository(pool), seed.Products); err != nil {
		return errors.Wrap(err, "seed products")
	}

	return nil
}

func seedCustomers(ctx context.Context, repo *postgres.CustomerRepository, customers []customerJSON) error {
	slog.Info("creating customers", slog.Int("count", len(customers)))

	for _, c := range customers {
		cust := customer.Customer{
			ID:    uuid.New(),
			Name:  c.Name,
			Phone: c.Phone,
			Email: c.Email,
		}
		if err := customer.Validate(&cust); err != nil {
			return errors.Wrapf(err, "validate customer %s", c.Name)
		}

		err := repo.Create(ctx, &cust)
		if errors.Is(err, customer.ErrAlreadyExists) {
			slog.Info("customer exists, skipping", slog.String("name", c.Name))
			continue
		}
		if err != nil {
			return errors.Wrapf(err, "create customer %s", c.Name)
		}

		slog.Info("created customer", slog.String("id", cust.ID.String()), slog.String("name", c.Name))
	}

	return nil
}

func seedProducts(ctx context.Context, repo *postgres.ProductRepository, products []productJSON) error {
	slog.Info("creating products", slog.Int("count", len(products)))

	for _, p := range products {
		prod := product.Product{
			ID:              uuid.New(),
			Code:            p.Code,
			Description:     p.Description,
			Category:        p.Category,
			Image:           p.Image,
			Price:           p.Price,
			QuantityInStock: p.QuantityInStock,
		}
		if err := product.Validate(&prod); err != nil {
			return errors.Wrapf(err, "validate product %s", p.Code)
		}

		err := repo.Create(ctx, &prod)
		if errors.Is(err, product.ErrAlreadyExists) {
			slog.Info("product exists, skipping", slog.String("code", p.Code))
			continue
		}
		if err != nil {
			return errors.Wrapf(err, "create product %s", p.Code)
		}

		slog.Info("created product", slog.String("id", prod.ID.String()), slog.String("code", p.Code))
	}

	return nil
}
