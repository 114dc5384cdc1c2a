package repositories_test

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/salesdash/app/models"
	"github.com/shashiranjanraj/salesdash/app/repositories"
	"github.com/shashiranjanraj/salesdash/pkg/database"
)

func date(month time.Month) time.Time {
	return time.Date(2022, month, 15, 10, 0, 0, 0, time.UTC)
}

func fixtures() []models.Product {
	return []models.Product{
		{ID: 1, Title: "Fjällräven Backpack", Description: "Your perfect pack", Price: 329.85, Category: "men's clothing", Sold: false, DateOfSale: date(time.March)},
		{ID: 2, Title: "Mens Casual T-Shirt", Description: "Slim-fitting style", Price: 44.6, Category: "men's clothing", Sold: true, DateOfSale: date(time.March)},
		{ID: 3, Title: "Cotton Jacket", Description: "Great outerwear, ÉTÉ edition", Price: 615.89, Category: "men's clothing", Sold: true, DateOfSale: date(time.March)},
		{ID: 4, Title: "Gold Bracelet", Description: "100% off? (not really)", Price: 100, Category: "jewelery", Sold: false, DateOfSale: date(time.July)},
		{ID: 5, Title: "SSD 1TB", Description: "Fast storage", Price: 109, Category: "electronics", Sold: true, DateOfSale: date(time.July)},
		{ID: 6, Title: "Monitor", Description: "Curved 49 inch", Price: 999.99, Category: "electronics", Sold: true, DateOfSale: date(time.December)},
	}
}

// stores returns every repository backed by an in-process store.
func stores(t *testing.T) map[string]repositories.ProductRepository {
	t.Helper()
	ctx := context.Background()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	conn, err := database.Connect(ctx, database.Options{Driver: "sqlite", DSN: dsn})
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close(context.Background()) })

	sqlRepo, err := repositories.New(conn)
	require.NoError(t, err)

	memConn, err := database.Connect(ctx, database.Options{Driver: "memory"})
	require.NoError(t, err)
	memRepo, err := repositories.New(memConn)
	require.NoError(t, err)

	out := map[string]repositories.ProductRepository{"memory": memRepo, "sqlite": sqlRepo}
	for _, repo := range out {
		require.NoError(t, repo.Migrate(ctx))
		require.NoError(t, repo.Upsert(ctx, fixtures()))
	}
	return out
}

func ids(products []models.Product) []int64 {
	out := make([]int64, 0, len(products))
	for _, p := range products {
		out = append(out, p.ID)
	}
	return out
}

func TestFindPaginatesByID(t *testing.T) {
	for name, repo := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			first, err := repo.Find(ctx, models.ProductSearch{}, 0, 4)
			require.NoError(t, err)
			second, err := repo.Find(ctx, models.ProductSearch{}, 4, 4)
			require.NoError(t, err)
			past, err := repo.Find(ctx, models.ProductSearch{}, 40, 4)
			require.NoError(t, err)

			assert.Equal(t, []int64{1, 2, 3, 4}, ids(first))
			assert.Equal(t, []int64{5, 6}, ids(second))
			assert.NotNil(t, past)
			assert.Empty(t, past)
		})
	}
}

func TestSearchMatchesTextOrPrice(t *testing.T) {
	price := 100.0
	cases := []struct {
		name   string
		search models.ProductSearch
		want   []int64
	}{
		{"title case-insensitive", models.ProductSearch{Text: "jACKet"}, []int64{3}},
		{"description", models.ProductSearch{Text: "outerwear"}, []int64{3}},
		{"non-ascii title folds case", models.ProductSearch{Text: "FJÄLLRÄVEN"}, []int64{1}},
		{"non-ascii description folds case", models.ProductSearch{Text: "été"}, []int64{3}},
		{"literal percent", models.ProductSearch{Text: "100%"}, []int64{4}},
		{"literal parenthesis", models.ProductSearch{Text: "(not"}, []int64{4}},
		{"price only", models.ProductSearch{Price: &price}, []int64{4}},
		{"text or price", models.ProductSearch{Text: "monitor", Price: &price}, []int64{4, 6}},
		{"no match", models.ProductSearch{Text: "zzz"}, []int64{}},
	}

	for name, repo := range stores(t) {
		for _, tc := range cases {
			t.Run(name+"/"+tc.name, func(t *testing.T) {
				ctx := context.Background()

				got, err := repo.Find(ctx, tc.search, 0, 10)
				require.NoError(t, err)
				n, err := repo.Count(ctx, tc.search)
				require.NoError(t, err)

				assert.Equal(t, tc.want, ids(got))
				assert.Equal(t, int64(len(tc.want)), n)
			})
		}
	}
}

func TestStatisticsByMonth(t *testing.T) {
	for name, repo := range stores(t) {
		t.Run(name, func(t *testing.T) {
			stats, err := repo.StatisticsByMonth(context.Background(), 3)
			require.NoError(t, err)

			assert.InDelta(t, 329.85+44.6+615.89, stats.TotalSaleAmount, 1e-9)
			assert.Equal(t, int64(2), stats.TotalSoldItems)
			assert.Equal(t, int64(1), stats.TotalNotSoldItems)
			require.Len(t, stats.PriceDistribution, len(models.PriceBuckets))
			assert.Equal(t, models.PriceRangeCount{PriceRange: "0-100", Count: 1}, stats.PriceDistribution[0])
			assert.Equal(t, models.PriceRangeCount{PriceRange: "301-400", Count: 1}, stats.PriceDistribution[3])
			assert.Equal(t, models.PriceRangeCount{PriceRange: "601-700", Count: 1}, stats.PriceDistribution[6])
		})
	}
}

func TestStatisticsUpperBoundInclusive(t *testing.T) {
	for name, repo := range stores(t) {
		t.Run(name, func(t *testing.T) {
			stats, err := repo.StatisticsByMonth(context.Background(), 7)
			require.NoError(t, err)

			assert.Equal(t, int64(1), stats.PriceDistribution[0].Count, "100 belongs to 0-100")
			assert.Equal(t, int64(1), stats.PriceDistribution[1].Count, "109 belongs to 101-200")
		})
	}
}

func TestStatisticsEmptyMonth(t *testing.T) {
	for name, repo := range stores(t) {
		t.Run(name, func(t *testing.T) {
			stats, err := repo.StatisticsByMonth(context.Background(), 1)
			require.NoError(t, err)

			assert.Zero(t, stats.TotalSaleAmount)
			assert.Zero(t, stats.TotalSoldItems)
			assert.Zero(t, stats.TotalNotSoldItems)
			require.Len(t, stats.PriceDistribution, len(models.PriceBuckets))
			for _, b := range stats.PriceDistribution {
				assert.Zero(t, b.Count, b.PriceRange)
			}
		})
	}
}

func TestUpsertReplacesByID(t *testing.T) {
	for name, repo := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			changed := fixtures()[5]
			changed.DateOfSale = date(time.January)
			changed.Sold = false
			require.NoError(t, repo.Upsert(ctx, []models.Product{changed}))

			n, err := repo.Count(ctx, models.ProductSearch{})
			require.NoError(t, err)
			assert.Equal(t, int64(6), n)

			stats, err := repo.StatisticsByMonth(ctx, 1)
			require.NoError(t, err)
			assert.Equal(t, int64(1), stats.TotalNotSoldItems)
			assert.Equal(t, int64(1), stats.PriceDistribution[9].Count)
		})
	}
}

func TestDeleteAll(t *testing.T) {
	for name, repo := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			n, err := repo.DeleteAll(ctx)
			require.NoError(t, err)
			assert.Equal(t, int64(6), n)

			left, err := repo.Count(ctx, models.ProductSearch{})
			require.NoError(t, err)
			assert.Zero(t, left)
			assert.NoError(t, repo.Ping(ctx))
		})
	}
}

func TestNewRejectsUnknownConn(t *testing.T) {
	_, err := repositories.New(&database.Conn{Driver: "oracle"})
	assert.Error(t, err)
}
