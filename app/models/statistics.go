package models

import (
	"fmt"
	"math"
)

// PriceBucket is one fixed histogram range. Min is exclusive except for the
// first bucket; Max is inclusive, and +Inf for the last bucket.
type PriceBucket struct {
	Min   float64
	Max   float64
	Label string
}

// PriceBuckets partitions the non-negative prices into ten ranges:
// [0,100], (100,200], ... (800,900], (900,+Inf).
var PriceBuckets = buildBuckets()

func buildBuckets() []PriceBucket {
	out := make([]PriceBucket, 0, 10)
	out = append(out, PriceBucket{Min: 0, Max: 100, Label: "0-100"})
	for lo := 100; lo < 900; lo += 100 {
		out = append(out, PriceBucket{
			Min:   float64(lo),
			Max:   float64(lo + 100),
			Label: fmt.Sprintf("%d-%d", lo+1, lo+100),
		})
	}
	out = append(out, PriceBucket{Min: 900, Max: math.Inf(1), Label: "901-above"})
	return out
}

// BucketIndex returns the index into PriceBuckets for price. Negative prices
// land in the first bucket.
func BucketIndex(price float64) int {
	for i, b := range PriceBuckets {
		if price <= b.Max {
			return i
		}
	}
	return len(PriceBuckets) - 1
}

// PriceRangeCount is one bar of the price histogram.
type PriceRangeCount struct {
	PriceRange string `json:"priceRange"`
	Count      int64  `json:"count"`
}

// Statistics is the monthly summary returned by /api/statisticsByMonth.
type Statistics struct {
	TotalSaleAmount   float64           `json:"totalSaleAmount"`
	TotalSoldItems    int64             `json:"totalSoldItems"`
	TotalNotSoldItems int64             `json:"totalNotSoldItems"`
	PriceDistribution []PriceRangeCount `json:"priceDistribution"`
}

// Distribution labels counts[i] with PriceBuckets[i].Label. counts shorter
// than the bucket list is zero-filled.
func Distribution(counts []int64) []PriceRangeCount {
	out := make([]PriceRangeCount, len(PriceBuckets))
	for i, b := range PriceBuckets {
		out[i].PriceRange = b.Label
		if i < len(counts) {
			out[i].Count = counts[i]
		}
	}
	return out
}

// SaleRow is the projection the aggregation needs from each product.
type SaleRow struct {
	Price float64
	Sold  bool
}

// Aggregate folds rows into Statistics in a single pass.
func Aggregate(rows []SaleRow) Statistics {
	var s Statistics
	counts := make([]int64, len(PriceBuckets))

	for _, r := range rows {
		s.TotalSaleAmount += r.Price
		if r.Sold {
			s.TotalSoldItems++
		} else {
			s.TotalNotSoldItems++
		}
		counts[BucketIndex(r.Price)]++
	}

	s.PriceDistribution = Distribution(counts)
	return s
}
