package services

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/shashiranjanraj/salesdash/app/models"
	"github.com/shashiranjanraj/salesdash/app/repositories"
)

const (
	msgMonthMissing = "Please provide the month for the statistics."
	msgMonthInvalid = "Please provide a valid month (1-12)."
)

// ParseMonth validates the raw month query value.
func ParseMonth(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, invalid(msgMonthMissing)
	}
	month, err := strconv.Atoi(raw)
	if err != nil || month < 1 || month > 12 {
		return 0, invalid(msgMonthInvalid)
	}
	return month, nil
}

type StatisticsService struct {
	repo repositories.ProductReader
}

func NewStatisticsService(repo repositories.ProductReader) *StatisticsService {
	return &StatisticsService{repo: repo}
}

// ByMonth summarises every sale whose date falls in month (1-12) of any
// year: total amount, sold and unsold counts and the price histogram.
func (s *StatisticsService) ByMonth(ctx context.Context, month int) (models.Statistics, error) {
	if month < 1 || month > 12 {
		return models.Statistics{}, invalid(msgMonthInvalid)
	}

	stats, err := s.repo.StatisticsByMonth(ctx, month)
	if err != nil {
		return models.Statistics{}, fmt.Errorf("statistics for month %d: %w", month, err)
	}
	if len(stats.PriceDistribution) == 0 {
		stats.PriceDistribution = models.Distribution(nil)
	}
	return stats, nil
}
