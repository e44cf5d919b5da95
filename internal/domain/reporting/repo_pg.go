package reporting

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository { return &repoPG{pool: pool} }

func (r *repoPG) StockLevels(ctx context.Context) ([]StockLevel, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT blood_type, component, COUNT(*), COALESCE(SUM(volume_ml), 0)
		FROM blood_unit
		WHERE status = 'AVAILABLE' AND expiry_date > NOW()
		GROUP BY blood_type, component
		ORDER BY blood_type, component`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var levels []StockLevel
	for rows.Next() {
		var l StockLevel
		if err := rows.Scan(&l.BloodType, &l.Component, &l.Units, &l.VolumeML); err != nil {
			return nil, err
		}
		levels = append(levels, l)
	}
	return levels, rows.Err()
}

func (r *repoPG) DonorCount(ctx context.Context) (int, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM donor`)
}

func (r *repoPG) DonationsSince(ctx context.Context, days int) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM donation
		WHERE status IN ('COMPLETED','PROCESSED')
		  AND actual_at >= NOW() - make_interval(days => $1)`, days).Scan(&n)
	return n, err
}

func (r *repoPG) AvailableUnits(ctx context.Context) (int, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM blood_unit WHERE status = 'AVAILABLE' AND expiry_date > NOW()`)
}

func (r *repoPG) ExpiringUnits(ctx context.Context, days int) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM blood_unit
		WHERE status = 'AVAILABLE' AND expiry_date > NOW()
		  AND expiry_date <= NOW() + make_interval(days => $1)`, days).Scan(&n)
	return n, err
}

func (r *repoPG) PendingRequests(ctx context.Context) (int, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM blood_request WHERE status = 'PENDING'`)
}

func (r *repoPG) CriticalRequests(ctx context.Context) (int, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM blood_request WHERE urgency = 'CRITICAL' AND status IN ('PENDING','APPROVED')`)
}

func (r *repoPG) count(ctx context.Context, query string) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, query).Scan(&n)
	return n, err
}
