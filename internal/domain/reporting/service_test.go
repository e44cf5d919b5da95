package reporting

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"

	"github.com/bbms/bbms/internal/platform/cache"
)

type mockReportRepo struct {
	levels []StockLevel
	calls  int
}

func (m *mockReportRepo) StockLevels(_ context.Context) ([]StockLevel, error) {
	m.calls++
	return m.levels, nil
}
func (m *mockReportRepo) DonorCount(_ context.Context) (int, error)            { m.calls++; return 12, nil }
func (m *mockReportRepo) DonationsSince(_ context.Context, _ int) (int, error) { return 4, nil }
func (m *mockReportRepo) AvailableUnits(_ context.Context) (int, error)        { return 30, nil }
func (m *mockReportRepo) ExpiringUnits(_ context.Context, _ int) (int, error)  { return 3, nil }
func (m *mockReportRepo) PendingRequests(_ context.Context) (int, error)       { return 5, nil }
func (m *mockReportRepo) CriticalRequests(_ context.Context) (int, error)      { return 1, nil }

func newTestCache(t *testing.T) *cache.Cache {
	t.Helper()
	mr := miniredis.RunT(t)
	return cache.NewWithClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
}

func TestStockReport_Totals(t *testing.T) {
	repo := &mockReportRepo{levels: []StockLevel{
		{BloodType: "O+", Component: "RBC", Units: 10, VolumeML: 2800},
		{BloodType: "A-", Component: "PLASMA", Units: 4, VolumeML: 800},
	}}
	svc := NewService(repo, nil, time.Minute)
	report, err := svc.StockReport(context.Background())
	if err != nil { t.Fatalf("unexpected error: %v", err) }
	if report.TotalUnits != 14 { t.Errorf("expected total 14, got %d", report.TotalUnits) }
	if len(report.Levels) != 2 { t.Errorf("expected 2 levels, got %d", len(report.Levels)) }
}

func TestStockReport_CacheHitSkipsRepo(t *testing.T) {
	repo := &mockReportRepo{levels: []StockLevel{{BloodType: "O+", Component: "RBC", Units: 10, VolumeML: 2800}}}
	svc := NewService(repo, newTestCache(t), time.Minute)
	if _, err := svc.StockReport(context.Background()); err != nil { t.Fatalf("unexpected error: %v", err) }
	if _, err := svc.StockReport(context.Background()); err != nil { t.Fatalf("unexpected error: %v", err) }
	if repo.calls != 1 { t.Errorf("expected 1 repo call, got %d", repo.calls) }
}

func TestStockReport_NilCacheAlwaysMisses(t *testing.T) {
	repo := &mockReportRepo{levels: []StockLevel{{BloodType: "O+", Component: "RBC", Units: 10, VolumeML: 2800}}}
	svc := NewService(repo, nil, time.Minute)
	svc.StockReport(context.Background())
	svc.StockReport(context.Background())
	if repo.calls != 2 { t.Errorf("expected 2 repo calls with nil cache, got %d", repo.calls) }
}

func TestSummary(t *testing.T) {
	repo := &mockReportRepo{}
	svc := NewService(repo, nil, time.Minute)
	sum, err := svc.Summary(context.Background())
	if err != nil { t.Fatalf("unexpected error: %v", err) }
	if sum.Donors != 12 { t.Errorf("expected 12 donors, got %d", sum.Donors) }
	if sum.PendingRequests != 5 { t.Errorf("expected 5 pending, got %d", sum.PendingRequests) }
	if sum.CriticalRequests != 1 { t.Errorf("expected 1 critical, got %d", sum.CriticalRequests) }
}

func TestInvalidate(t *testing.T) {
	repo := &mockReportRepo{levels: []StockLevel{{BloodType: "O+", Component: "RBC", Units: 10, VolumeML: 2800}}}
	svc := NewService(repo, newTestCache(t), time.Minute)
	svc.StockReport(context.Background())
	svc.Invalidate(context.Background())
	svc.StockReport(context.Background())
	if repo.calls != 2 { t.Errorf("expected repo re-queried after invalidation, got %d calls", repo.calls) }
}
