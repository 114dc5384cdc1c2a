package repositories

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/shashiranjanraj/salesdash/app/models"
	"github.com/shashiranjanraj/salesdash/pkg/metrics"
)

const sqlUpsertBatch = 100

// SQLProductRepository stores products in a relational table through GORM.
// Statistics are folded in-process from the month's (price, sold) rows,
// selected through the indexed sale_month column.
type SQLProductRepository struct {
	db     *gorm.DB
	driver string
}

func NewSQLProductRepository(db *gorm.DB, driver string) *SQLProductRepository {
	return &SQLProductRepository{db: db, driver: driver}
}

func (r *SQLProductRepository) scoped(ctx context.Context, s models.ProductSearch) *gorm.DB {
	q := r.db.WithContext(ctx).Model(&models.Product{})
	if s.Empty() {
		return q
	}

	group := r.db.Session(&gorm.Session{NewDB: true})
	if s.Text != "" {
		like := "%" + escapeLike(strings.ToLower(s.Text)) + "%"
		group = group.
			Where("title_lower LIKE ? ESCAPE '!'", like).
			Or("description_lower LIKE ? ESCAPE '!'", like)
	}
	if s.Price != nil {
		if s.Text != "" {
			group = group.Or("price = ?", *s.Price)
		} else {
			group = group.Where("price = ?", *s.Price)
		}
	}
	return q.Where(group)
}

var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_", "[", "![")

func escapeLike(s string) string { return likeEscaper.Replace(s) }

func (r *SQLProductRepository) Find(ctx context.Context, search models.ProductSearch, skip, limit int) (out []models.Product, err error) {
	defer metrics.ObserveStore(r.driver, "find", time.Now(), &err)

	out = make([]models.Product, 0, limit)
	err = r.scoped(ctx, search).
		Order("id ASC").
		Offset(skip).
		Limit(limit).
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("%s: find products: %w", r.driver, err)
	}
	return out, nil
}

func (r *SQLProductRepository) Count(ctx context.Context, search models.ProductSearch) (n int64, err error) {
	defer metrics.ObserveStore(r.driver, "count", time.Now(), &err)

	if err = r.scoped(ctx, search).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("%s: count products: %w", r.driver, err)
	}
	return n, nil
}

func (r *SQLProductRepository) StatisticsByMonth(ctx context.Context, month int) (stats models.Statistics, err error) {
	defer metrics.ObserveStore(r.driver, "statistics", time.Now(), &err)

	var rows []models.SaleRow
	err = r.db.WithContext(ctx).
		Model(&models.Product{}).
		Select("price", "sold").
		Where("sale_month = ?", month).
		Scan(&rows).Error
	if err != nil {
		return models.Statistics{}, fmt.Errorf("%s: load month %d: %w", r.driver, month, err)
	}
	return models.Aggregate(rows), nil
}

func (r *SQLProductRepository) Upsert(ctx context.Context, products []models.Product) (err error) {
	defer metrics.ObserveStore(r.driver, "insert", time.Now(), &err)

	if len(products) == 0 {
		return nil
	}

	batch := make([]models.Product, len(products))
	copy(batch, products)

	err = r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "id"}}, UpdateAll: true}).
		CreateInBatches(&batch, sqlUpsertBatch).Error
	if err != nil {
		return fmt.Errorf("%s: upsert %d products: %w", r.driver, len(products), err)
	}
	return nil
}

func (r *SQLProductRepository) DeleteAll(ctx context.Context) (n int64, err error) {
	defer metrics.ObserveStore(r.driver, "delete", time.Now(), &err)

	res := r.db.WithContext(ctx).
		Session(&gorm.Session{AllowGlobalUpdate: true}).
		Delete(&models.Product{})
	if res.Error != nil {
		return 0, fmt.Errorf("%s: delete products: %w", r.driver, res.Error)
	}
	return res.RowsAffected, nil
}

func (r *SQLProductRepository) Migrate(ctx context.Context) (err error) {
	defer metrics.ObserveStore(r.driver, "migrate", time.Now(), &err)

	if err = r.db.WithContext(ctx).AutoMigrate(&models.Product{}); err != nil {
		return fmt.Errorf("%s: migrate products: %w", r.driver, err)
	}
	return nil
}

func (r *SQLProductRepository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
