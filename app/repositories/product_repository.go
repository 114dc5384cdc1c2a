package repositories

import (
	"context"
	"fmt"

	"github.com/shashiranjanraj/salesdash/app/models"
	"github.com/shashiranjanraj/salesdash/pkg/database"
)

// ProductReader is the read side used by the query and statistics services.
type ProductReader interface {
	// Find returns products matching search, sorted by id ascending,
	// skipping skip records and returning at most limit.
	Find(ctx context.Context, search models.ProductSearch, skip, limit int) ([]models.Product, error)
	// Count returns the number of products matching search.
	Count(ctx context.Context, search models.ProductSearch) (int64, error)
	// StatisticsByMonth aggregates every product sold in month (1-12) of any
	// year.
	StatisticsByMonth(ctx context.Context, month int) (models.Statistics, error)
}

// ProductWriter is the write side used by the dataset seeder.
type ProductWriter interface {
	// Upsert inserts products, replacing any existing record with the same id.
	Upsert(ctx context.Context, products []models.Product) error
	// DeleteAll removes every product and reports how many were removed.
	DeleteAll(ctx context.Context) (int64, error)
}

// ProductRepository is implemented by every product store driver.
type ProductRepository interface {
	ProductReader
	ProductWriter
	// Migrate creates the indexes or tables the store needs. Idempotent.
	Migrate(ctx context.Context) error
	// Ping reports whether the backing store is reachable.
	Ping(ctx context.Context) error
}

// New returns the repository matching the connection's driver.
func New(conn *database.Conn) (ProductRepository, error) {
	switch {
	case conn.Driver == "memory":
		return NewMemoryProductRepository(), nil
	case conn.Mongo != nil:
		return NewMongoProductRepository(conn.MongoCollection()), nil
	case conn.SQL != nil:
		return NewSQLProductRepository(conn.SQL, conn.Driver), nil
	default:
		return nil, fmt.Errorf("repositories: no store for driver %q", conn.Driver)
	}
}
