// Package seeders imports the product dataset into the configured store.
//
//	res, err := seeders.NewProductSeeder(repo).Run(ctx, seeders.Options{
//	    Source: "s3://roxiler/product_transaction.json",
//	    Fresh:  true,
//	})
package seeders

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shashiranjanraj/salesdash/app/models"
	"github.com/shashiranjanraj/salesdash/app/repositories"
	"github.com/shashiranjanraj/salesdash/pkg/collection"
	"github.com/shashiranjanraj/salesdash/pkg/http"
	"github.com/shashiranjanraj/salesdash/pkg/logger"
	"github.com/shashiranjanraj/salesdash/pkg/metrics"
	"github.com/shashiranjanraj/salesdash/pkg/storage"
	"github.com/shashiranjanraj/salesdash/pkg/workerpool"
)

const (
	DefaultBatchSize = 100
	DefaultWorkers   = 4
)

// Options controls one seeding run. Zero values fall back to the defaults.
type Options struct {
	// Source is an http(s) URL, s3://bucket/key or a local file path.
	Source    string
	Fresh     bool
	BatchSize int
	Workers   int
}

// Result reports what a run changed.
type Result struct {
	Deleted  int64
	Inserted int
	Batches  int
}

type ProductSeeder struct {
	repo repositories.ProductWriter
}

func NewProductSeeder(repo repositories.ProductWriter) *ProductSeeder {
	return &ProductSeeder{repo: repo}
}

// Run loads the dataset from opts.Source and upserts it in batches. The
// first failing batch aborts the run.
func (s *ProductSeeder) Run(ctx context.Context, opts Options) (Result, error) {
	if opts.BatchSize <= 0 {
		opts.BatchSize = DefaultBatchSize
	}
	if opts.Workers <= 0 {
		opts.Workers = DefaultWorkers
	}

	products, err := Load(ctx, opts.Source)
	if err != nil {
		return Result{}, err
	}

	var res Result
	if opts.Fresh {
		if res.Deleted, err = s.repo.DeleteAll(ctx); err != nil {
			return res, fmt.Errorf("seed: clear products: %w", err)
		}
		logger.Info("seed: cleared products", "deleted", res.Deleted)
	}

	batches := collection.Chunk(products, opts.BatchSize)
	pool := workerpool.New(opts.Workers)
	defer pool.Shutdown()

	g, _ := pool.Group(ctx)
	for i, batch := range batches {
		err := g.Go(func(ctx context.Context) error {
			if err := s.repo.Upsert(ctx, batch); err != nil {
				return fmt.Errorf("seed: batch %d: %w", i+1, err)
			}
			metrics.SeededProducts.Add(float64(len(batch)))
			return nil
		})
		if err != nil {
			break
		}
	}
	if err := g.Wait(); err != nil {
		return res, err
	}

	res.Inserted = len(products)
	res.Batches = len(batches)
	logger.Info("seed: done", "source", opts.Source, "products", res.Inserted, "batches", res.Batches)
	return res, nil
}

// Load reads and decodes the dataset at source.
func Load(ctx context.Context, source string) ([]models.Product, error) {
	raw, err := read(ctx, source)
	if err != nil {
		return nil, err
	}
	return Decode(raw)
}

func read(ctx context.Context, source string) ([]byte, error) {
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		resp, err := http.Get(source).
			WithContext(ctx).
			Timeout(30*time.Second).
			Retry(3, time.Second).
			Send()
		if err != nil {
			return nil, fmt.Errorf("seed: fetch: %w", err)
		}
		if err := resp.Throw(); err != nil {
			return nil, fmt.Errorf("seed: fetch: %w", err)
		}
		return resp.Raw, nil
	}

	disk, path, err := storage.ForURI(ctx, source)
	if err != nil {
		return nil, fmt.Errorf("seed: %w", err)
	}
	raw, err := disk.Get(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("seed: read: %w", err)
	}
	return raw, nil
}

// Decode parses a JSON array of products. Every record needs a positive id
// and a sale date.
func Decode(raw []byte) ([]models.Product, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '[' {
		return nil, fmt.Errorf("seed: dataset must be a JSON array")
	}

	var products []models.Product
	if err := json.Unmarshal(raw, &products); err != nil {
		return nil, fmt.Errorf("seed: decode: %w", err)
	}

	for i, p := range products {
		if p.ID <= 0 {
			return nil, fmt.Errorf("seed: record %d: id must be positive", i)
		}
		if p.DateOfSale.IsZero() {
			return nil, fmt.Errorf("seed: record %d (id %d): dateOfSale is required", i, p.ID)
		}
	}
	return products, nil
}
