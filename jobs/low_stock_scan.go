package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/odyssey-erp/stockroom/internal/inventory"
	jobmetrics "github.com/odyssey-erp/stockroom/internal/jobs"
	"github.com/odyssey-erp/stockroom/internal/persistence"
)

var defaultJobMetrics = jobmetrics.NewMetrics(nil)

// LowStockScanJob logs every item at or below its minimum stock.
type LowStockScanJob struct {
	Store   persistence.Store
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
}

// NewLowStockScanJob wires dependencies for the scan handler.
func NewLowStockScanJob(store persistence.Store, logger *slog.Logger, metrics *jobmetrics.Metrics) *LowStockScanJob {
	return &LowStockScanJob{Store: store, Logger: logger, Metrics: metrics}
}

// Handle processes low-stock scan tasks.
func (j *LowStockScanJob) Handle(ctx context.Context, t *asynq.Task) (err error) {
	if j == nil || j.Store == nil {
		return errors.New("low stock scan: handler not configured")
	}
	var payload LowStockScanPayload
	if len(t.Payload()) > 0 {
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return asynq.SkipRetry
		}
	}

	tracker := j.metrics().Track(TaskLowStockScan)
	defer func() {
		err = tracker.End(err)
	}()

	logger := j.logger().With(slog.String("trigger", payload.Trigger))
	snap, err := loadSnapshot(ctx, j.Store)
	if errors.Is(err, errNoSnapshot) {
		logger.Info("low stock scan skipped, nothing persisted yet")
		return nil
	}
	if err != nil {
		logger.Error("load snapshot", slog.Any("error", err))
		return err
	}

	low := inventory.LowStockItems(snap.Inventory)
	out := 0
	for _, item := range low {
		level := slog.LevelWarn
		if item.OutOfStock() {
			out++
			level = slog.LevelError
		}
		logger.Log(ctx, level, "item needs replenishment",
			slog.String("sku", item.SKU),
			slog.String("name", item.Name),
			slog.Int("quantity", item.Quantity),
			slog.Int("min_stock", item.MinStock))
	}
	j.metrics().SetLowStock(len(low), out)
	logger.Info("low stock scan complete", slog.Int("items", len(snap.Inventory)), slog.Int("low", len(low)), slog.Int("out", out))
	return nil
}

func (j *LowStockScanJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger
	}
	return slog.Default()
}

func (j *LowStockScanJob) metrics() *jobmetrics.Metrics {
	if j.Metrics != nil {
		return j.Metrics
	}
	return defaultJobMetrics
}
