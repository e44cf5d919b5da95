package reporting

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/bbms/bbms/internal/platform/cache"
)

const (
	stockCacheKey   = "reports:stock"
	summaryCacheKey = "reports:summary"

	expiringWindowDays = 7
	donationWindowDays = 7
)

// Service builds inventory and activity reports. Results are cached in
// Redis for ttl; a nil cache always misses.
type Service struct {
	repo  Repository
	cache *cache.Cache
	ttl   time.Duration
}

func NewService(repo Repository, c *cache.Cache, ttl time.Duration) *Service {
	return &Service{repo: repo, cache: c, ttl: ttl}
}

func (s *Service) StockReport(ctx context.Context) (*StockReport, error) {
	var cached StockReport
	if err := s.cache.GetJSON(ctx, stockCacheKey, &cached); err == nil {
		return &cached, nil
	}
	levels, err := s.repo.StockLevels(ctx)
	if err != nil {
		return nil, err
	}
	report := &StockReport{Levels: levels, GeneratedAt: time.Now()}
	for _, l := range levels {
		report.TotalUnits += l.Units
	}
	if err := s.cache.SetJSON(ctx, stockCacheKey, report, s.ttl); err != nil {
		log.Warn().Err(err).Msg("failed to cache stock report")
	}
	return report, nil
}

func (s *Service) Summary(ctx context.Context) (*Summary, error) {
	var cached Summary
	if err := s.cache.GetJSON(ctx, summaryCacheKey, &cached); err == nil {
		return &cached, nil
	}
	sum := &Summary{GeneratedAt: time.Now()}
	var err error
	if sum.Donors, err = s.repo.DonorCount(ctx); err != nil {
		return nil, err
	}
	if sum.DonationsThisWeek, err = s.repo.DonationsSince(ctx, donationWindowDays); err != nil {
		return nil, err
	}
	if sum.AvailableUnits, err = s.repo.AvailableUnits(ctx); err != nil {
		return nil, err
	}
	if sum.ExpiringUnits, err = s.repo.ExpiringUnits(ctx, expiringWindowDays); err != nil {
		return nil, err
	}
	if sum.PendingRequests, err = s.repo.PendingRequests(ctx); err != nil {
		return nil, err
	}
	if sum.CriticalRequests, err = s.repo.CriticalRequests(ctx); err != nil {
		return nil, err
	}
	if err := s.cache.SetJSON(ctx, summaryCacheKey, sum, s.ttl); err != nil {
		log.Warn().Err(err).Msg("failed to cache summary report")
	}
	return sum, nil
}

// Invalidate drops cached reports. Inventory and transfusion mutations call
// it so dashboards do not serve stale stock levels for a full TTL.
func (s *Service) Invalidate(ctx context.Context) {
	if err := s.cache.Delete(ctx, stockCacheKey); err != nil {
		log.Warn().Err(err).Msg("failed to invalidate stock report cache")
	}
	if err := s.cache.Delete(ctx, summaryCacheKey); err != nil {
		log.Warn().Err(err).Msg("failed to invalidate summary report cache")
	}
}
