package db

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func callHealth(t *testing.T, h echo.HandlerFunc) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/health/db", nil)
	rec := httptest.NewRecorder()
	if err := h(e.NewContext(req, rec)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var body map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON body: %v", err)
	}
	return rec, body
}

func TestHealthHandler_OK(t *testing.T) {
	h := healthHandler(
		func(context.Context) error { return nil },
		func() PoolInfo { return PoolInfo{Open: 3, Idle: 2, Busy: 1, Max: 20} },
	)
	rec, body := callHealth(t, h)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if body["status"] != "ok" {
		t.Errorf("expected status ok, got %v", body["status"])
	}
	pool, ok := body["pool"].(map[string]interface{})
	if !ok {
		t.Fatal("expected pool section")
	}
	if pool["open"] != float64(3) || pool["busy"] != float64(1) {
		t.Errorf("unexpected pool counts: %v", pool)
	}
}

func TestHealthHandler_DatabaseDown(t *testing.T) {
	h := healthHandler(
		func(context.Context) error { return fmt.Errorf("connection refused") },
		func() PoolInfo { return PoolInfo{Max: 20} },
	)
	rec, body := callHealth(t, h)
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
	if body["status"] != "unavailable" {
		t.Errorf("expected status unavailable, got %v", body["status"])
	}
	if body["error"] != "connection refused" {
		t.Errorf("expected ping error surfaced, got %v", body["error"])
	}
}
