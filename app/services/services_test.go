package services_test

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/salesdash/app/models"
	"github.com/shashiranjanraj/salesdash/app/repositories"
	"github.com/shashiranjanraj/salesdash/app/services"
)

func catalogue() []models.Product {
	out := make([]models.Product, 0, 37)
	for i := 1; i <= 37; i++ {
		out = append(out, models.Product{
			ID:          int64(i),
			Title:       fmt.Sprintf("Item %d", i),
			Description: strings.Repeat("x", i%3) + " widget",
			Price:       float64(i * 30),
			Sold:        i%2 == 0,
			DateOfSale:  time.Date(2021+i%2, time.Month(1+i%12), 3, 12, 0, 0, 0, time.UTC),
		})
	}
	// price 120 appears in a title too
	out = append(out, models.Product{ID: 99, Title: "Bundle of 120 pens", Price: 9.5, DateOfSale: time.Date(2022, 5, 1, 0, 0, 0, 0, time.UTC)})
	return out
}

func TestParseProductQuery(t *testing.T) {
	q, err := services.ParseProductQuery("", "", "")
	require.NoError(t, err)
	assert.Equal(t, services.ProductQuery{Page: 1, Limit: 10}, q)

	q, err = services.ParseProductQuery("3", " 25 ", "pen")
	require.NoError(t, err)
	assert.Equal(t, services.ProductQuery{Page: 3, Limit: 25, Search: "pen"}, q)

	_, err = services.ParseProductQuery("two", "10", "")
	require.Error(t, err)
	assert.True(t, services.IsValidation(err))
	assert.Contains(t, err.Error(), "page")
}

func TestListRejectsOutOfRange(t *testing.T) {
	svc := services.NewProductService(repositories.NewMemoryProductRepository(catalogue()...))

	for _, q := range []services.ProductQuery{
		{Page: 0, Limit: 10},
		{Page: 1, Limit: 0},
		{Page: 1, Limit: 101},
		{Page: -4, Limit: 10},
	} {
		_, err := svc.List(context.Background(), q)
		assert.True(t, services.IsValidation(err), "%+v", q)
	}
}

func TestListPagesConcatenateToFullSet(t *testing.T) {
	svc := services.NewProductService(repositories.NewMemoryProductRepository(catalogue()...))
	ctx := context.Background()

	for _, search := range []string{"", "widget", "item 1", "120"} {
		for _, limit := range []int{1, 7, 10, 100} {
			first, err := svc.List(ctx, services.ProductQuery{Page: 1, Limit: limit, Search: search})
			require.NoError(t, err)

			var all []int64
			pages := int((first.Total + int64(limit) - 1) / int64(limit))
			for page := 1; page <= pages; page++ {
				got, err := svc.List(ctx, services.ProductQuery{Page: page, Limit: limit, Search: search})
				require.NoError(t, err)
				assert.Equal(t, first.Total, got.Total)
				for _, p := range got.Products {
					all = append(all, p.ID)
				}
			}

			assert.Len(t, all, int(first.Total), "search=%q limit=%d", search, limit)
			assert.True(t, sort.SliceIsSorted(all, func(i, j int) bool { return all[i] < all[j] }))
		}
	}
}

func TestListNumericSearchIsPriceUnionText(t *testing.T) {
	svc := services.NewProductService(repositories.NewMemoryProductRepository(catalogue()...))

	page, err := svc.List(context.Background(), services.ProductQuery{Page: 1, Limit: 100, Search: "120"})
	require.NoError(t, err)

	got := make([]int64, 0, len(page.Products))
	for _, p := range page.Products {
		got = append(got, p.ID)
	}
	// id 4 is priced 120, id 99 mentions 120 in its title.
	assert.Equal(t, []int64{4, 99}, got)
	assert.Equal(t, int64(2), page.Total)
}

func TestListPastTheEndIsEmptyNotNil(t *testing.T) {
	svc := services.NewProductService(repositories.NewMemoryProductRepository(catalogue()...))

	page, err := svc.List(context.Background(), services.ProductQuery{Page: 50, Limit: 10})
	require.NoError(t, err)
	assert.NotNil(t, page.Products)
	assert.Empty(t, page.Products)
	assert.Equal(t, int64(38), page.Total)
}

func TestSearchForLiteral(t *testing.T) {
	s := services.SearchFor("a+b")
	assert.Equal(t, "a+b", s.Text)
	assert.Nil(t, s.Price)

	s = services.SearchFor("12.5")
	require.NotNil(t, s.Price)
	assert.Equal(t, 12.5, *s.Price)

	assert.True(t, services.SearchFor("").Empty())
}

func TestParseMonth(t *testing.T) {
	cases := map[string]string{
		"":    "Please provide the month for the statistics.",
		"0":   "Please provide a valid month (1-12).",
		"13":  "Please provide a valid month (1-12).",
		"abc": "Please provide a valid month (1-12).",
	}
	for raw, want := range cases {
		_, err := services.ParseMonth(raw)
		require.Error(t, err, raw)
		assert.True(t, services.IsValidation(err))
		assert.Equal(t, want, err.Error())
	}

	m, err := services.ParseMonth("03")
	require.NoError(t, err)
	assert.Equal(t, 3, m)
}

func TestByMonthBucketsBalance(t *testing.T) {
	svc := services.NewStatisticsService(repositories.NewMemoryProductRepository(catalogue()...))

	for month := 1; month <= 12; month++ {
		stats, err := svc.ByMonth(context.Background(), month)
		require.NoError(t, err)

		var sum int64
		for _, b := range stats.PriceDistribution {
			sum += b.Count
		}
		assert.Len(t, stats.PriceDistribution, 10)
		assert.Equal(t, stats.TotalSoldItems+stats.TotalNotSoldItems, sum, "month %d", month)
	}
}

func TestByMonthRejectsInvalid(t *testing.T) {
	svc := services.NewStatisticsService(repositories.NewMemoryProductRepository())

	_, err := svc.ByMonth(context.Background(), 13)
	assert.True(t, services.IsValidation(err))
}

type failingReader struct{ repositories.ProductReader }

func (failingReader) StatisticsByMonth(context.Context, int) (models.Statistics, error) {
	return models.Statistics{}, errors.New("connection reset")
}

func TestByMonthWrapsStoreErrors(t *testing.T) {
	svc := services.NewStatisticsService(failingReader{})

	_, err := svc.ByMonth(context.Background(), 2)
	require.Error(t, err)
	assert.False(t, services.IsValidation(err))
	assert.Contains(t, err.Error(), "connection reset")
}
