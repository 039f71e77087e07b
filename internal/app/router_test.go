package app

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/stockroom/internal/audit"
	"github.com/odyssey-erp/stockroom/internal/observability"
	"github.com/odyssey-erp/stockroom/internal/persistence"
	"github.com/odyssey-erp/stockroom/internal/warehouse"
	"github.com/odyssey-erp/stockroom/jobs"
)

func newTestRouter(t *testing.T) (http.Handler, *warehouse.Service) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := &Config{AppEnv: "test", RateLimitPerMinute: 1000}
	metrics := observability.NewMetrics()
	svc := warehouse.NewService(persistence.Defaults(), warehouse.Options{Logger: logger, Metrics: metrics})
	router := NewRouter(RouterParams{
		Logger:           logger,
		Config:           cfg,
		WarehouseHandler: warehouse.NewHandler(logger, svc, nil),
		JobHandler:       jobs.NewHandler(nil, logger),
		Metrics:          metrics,
	})
	return router, svc
}

func TestHealthz(t *testing.T) {
	router, _ := newTestRouter(t)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	require.JSONEq(t, `{"status":"ok"}`, rr.Body.String())
	require.Equal(t, "nosniff", rr.Header().Get("X-Content-Type-Options"))
}

func TestOperatorHeaderReachesAuditLog(t *testing.T) {
	router, svc := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/inventory/1/restock", strings.NewReader(`{"amount":3,"reason":"Cycle count"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(OperatorHeader, "dock_team_7")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	logs := svc.Logs(audit.Filter{Limit: 1})
	require.Len(t, logs, 1)
	require.Equal(t, "dock_team_7", logs[0].User)
	require.Equal(t, 3, logs[0].QuantityDelta)
}

func TestMetricsAndJobsMounted(t *testing.T) {
	router, _ := newTestRouter(t)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/inventory", nil))
	require.Equal(t, http.StatusOK, rr.Code)

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	require.Contains(t, rr.Body.String(), "stockroom_http_requests_total")

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/jobs/health", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	require.Equal(t, jobs.QueueDefault, body["queue"])
}
