package reporting

import "context"

type Repository interface {
	StockLevels(ctx context.Context) ([]StockLevel, error)
	DonorCount(ctx context.Context) (int, error)
	DonationsSince(ctx context.Context, days int) (int, error)
	AvailableUnits(ctx context.Context) (int, error)
	ExpiringUnits(ctx context.Context, days int) (int, error)
	PendingRequests(ctx context.Context) (int, error)
	CriticalRequests(ctx context.Context) (int, error)
}
