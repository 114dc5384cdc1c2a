package services

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/shashiranjanraj/salesdash/app/models"
	"github.com/shashiranjanraj/salesdash/app/repositories"
	"github.com/shashiranjanraj/salesdash/pkg/validate"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
)

// ProductQuery is one page request of the transaction listing.
type ProductQuery struct {
	Page   int    `json:"page"  validate:"gte=1"`
	Limit  int    `json:"limit" validate:"between=1,100"`
	Search string `json:"search"`
}

type rawProductQuery struct {
	Page  string `json:"page"  validate:"nullable,integer"`
	Limit string `json:"limit" validate:"nullable,integer"`
}

// ParseProductQuery builds a ProductQuery from raw query-string values.
// Empty page or limit take the defaults; non-integers are rejected.
func ParseProductQuery(page, limit, search string) (ProductQuery, error) {
	raw := rawProductQuery{Page: strings.TrimSpace(page), Limit: strings.TrimSpace(limit)}
	if errs := validate.Struct(raw); validate.HasErrors(errs) {
		return ProductQuery{}, fieldErrors(errs)
	}

	q := ProductQuery{Page: DefaultPage, Limit: DefaultLimit, Search: search}
	if raw.Page != "" {
		q.Page, _ = strconv.Atoi(raw.Page)
	}
	if raw.Limit != "" {
		q.Limit, _ = strconv.Atoi(raw.Limit)
	}
	return q, nil
}

type ProductService struct {
	repo repositories.ProductReader
}

func NewProductService(repo repositories.ProductReader) *ProductService {
	return &ProductService{repo: repo}
}

// List returns the requested page of products matching q.Search, sorted by
// id, together with the total number of matches.
func (s *ProductService) List(ctx context.Context, q ProductQuery) (models.ProductPage, error) {
	if errs := validate.Struct(q); validate.HasErrors(errs) {
		return models.ProductPage{}, fieldErrors(errs)
	}

	search := SearchFor(q.Search)

	total, err := s.repo.Count(ctx, search)
	if err != nil {
		return models.ProductPage{}, fmt.Errorf("count products: %w", err)
	}

	if q.Page-1 > math.MaxInt/q.Limit {
		return models.ProductPage{Products: []models.Product{}, Total: total}, nil
	}

	products, err := s.repo.Find(ctx, search, (q.Page-1)*q.Limit, q.Limit)
	if err != nil {
		return models.ProductPage{}, fmt.Errorf("list products: %w", err)
	}
	if products == nil {
		products = []models.Product{}
	}

	return models.ProductPage{Products: products, Total: total}, nil
}

// SearchFor turns free text into a store filter. Text that parses as a
// number also matches products priced exactly at that value.
func SearchFor(text string) models.ProductSearch {
	if text == "" {
		return models.ProductSearch{}
	}

	s := models.ProductSearch{Text: text}
	if f, err := strconv.ParseFloat(strings.TrimSpace(text), 64); err == nil {
		s.Price = &f
	}
	return s
}
