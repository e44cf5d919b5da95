package db

import (
	"context"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
)

// PoolInfo is the pool slice of the health payload.
type PoolInfo struct {
	Open     int32  `json:"open"`
	Idle     int32  `json:"idle"`
	Busy     int32  `json:"busy"`
	Max      int32  `json:"max"`
	Acquires int64  `json:"acquires"`
	Waited   string `json:"waited"`
}

func poolInfoFrom(stat *pgxpool.Stat) PoolInfo {
	return PoolInfo{
		Open:     stat.TotalConns(),
		Idle:     stat.IdleConns(),
		Busy:     stat.AcquiredConns(),
		Max:      stat.MaxConns(),
		Acquires: stat.AcquireCount(),
		Waited:   stat.AcquireDuration().String(),
	}
}

const healthPingTimeout = 5 * time.Second

// HealthHandler reports database reachability plus pool pressure, for the
// /health/db route.
func HealthHandler(pool *pgxpool.Pool) echo.HandlerFunc {
	return healthHandler(pool.Ping, func() PoolInfo { return poolInfoFrom(pool.Stat()) })
}

func healthHandler(ping func(context.Context) error, stats func() PoolInfo) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx, cancel := context.WithTimeout(c.Request().Context(), healthPingTimeout)
		defer cancel()

		if err := ping(ctx); err != nil {
			return c.JSON(http.StatusServiceUnavailable, map[string]interface{}{
				"status": "unavailable",
				"error":  err.Error(),
				"pool":   stats(),
			})
		}
		return c.JSON(http.StatusOK, map[string]interface{}{
			"status": "ok",
			"pool":   stats(),
		})
	}
}
