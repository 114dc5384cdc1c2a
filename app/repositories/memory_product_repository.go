package repositories

import (
	"context"
	"strings"
	"sync"

	"github.com/shashiranjanraj/salesdash/app/models"
	"github.com/shashiranjanraj/salesdash/pkg/collection"
)

// MemoryProductRepository keeps products in process memory. It backs the
// "memory" driver used for demos and tests.
type MemoryProductRepository struct {
	mu   sync.RWMutex
	byID map[int64]models.Product
}

func NewMemoryProductRepository(seed ...models.Product) *MemoryProductRepository {
	r := &MemoryProductRepository{byID: make(map[int64]models.Product, len(seed))}
	for _, p := range seed {
		r.byID[p.ID] = p
	}
	return r
}

// matching returns the products that satisfy s, sorted by id.
func (r *MemoryProductRepository) matching(s models.ProductSearch) []models.Product {
	r.mu.RLock()
	all := make([]models.Product, 0, len(r.byID))
	for _, p := range r.byID {
		all = append(all, p)
	}
	r.mu.RUnlock()

	needle := strings.ToLower(s.Text)
	out := collection.Filter(all, func(p models.Product) bool {
		if s.Empty() {
			return true
		}
		if needle != "" && (strings.Contains(strings.ToLower(p.Title), needle) ||
			strings.Contains(strings.ToLower(p.Description), needle)) {
			return true
		}
		return s.Price != nil && p.Price == *s.Price
	})

	return collection.SortBy(out, func(a, b models.Product) bool { return a.ID < b.ID })
}

func (r *MemoryProductRepository) Find(ctx context.Context, search models.ProductSearch, skip, limit int) ([]models.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return collection.Window(r.matching(search), skip, limit), nil
}

func (r *MemoryProductRepository) Count(ctx context.Context, search models.ProductSearch) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	return int64(len(r.matching(search))), nil
}

func (r *MemoryProductRepository) StatisticsByMonth(ctx context.Context, month int) (models.Statistics, error) {
	if err := ctx.Err(); err != nil {
		return models.Statistics{}, err
	}

	r.mu.RLock()
	inMonth := make([]models.Product, 0)
	for _, p := range r.byID {
		if p.Month() == month {
			inMonth = append(inMonth, p)
		}
	}
	r.mu.RUnlock()

	rows := collection.Map(inMonth, func(p models.Product) models.SaleRow {
		return models.SaleRow{Price: p.Price, Sold: p.Sold}
	})
	return models.Aggregate(rows), nil
}

func (r *MemoryProductRepository) Upsert(ctx context.Context, products []models.Product) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range products {
		r.byID[p.ID] = p
	}
	return nil
}

func (r *MemoryProductRepository) DeleteAll(ctx context.Context) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	n := int64(len(r.byID))
	r.byID = make(map[int64]models.Product)
	return n, nil
}

func (r *MemoryProductRepository) Migrate(context.Context) error { return nil }

func (r *MemoryProductRepository) Ping(ctx context.Context) error { return ctx.Err() }
