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

// Analyzer produces and caches the stock analysis.
type Analyzer interface {
	Analyze(ctx context.Context, items []inventory.Item) (string, error)
}

// StockAnalysisJob warms the analysis cache from the persisted snapshot.
type StockAnalysisJob struct {
	Store    persistence.Store
	Analyzer Analyzer
	Logger   *slog.Logger
	Metrics  *jobmetrics.Metrics
}

// NewStockAnalysisJob wires dependencies for the analysis handler.
func NewStockAnalysisJob(store persistence.Store, analyzer Analyzer, logger *slog.Logger, metrics *jobmetrics.Metrics) *StockAnalysisJob {
	return &StockAnalysisJob{Store: store, Analyzer: analyzer, Logger: logger, Metrics: metrics}
}

// Handle processes stock analysis tasks.
func (j *StockAnalysisJob) Handle(ctx context.Context, t *asynq.Task) (err error) {
	if j == nil || j.Store == nil || j.Analyzer == nil {
		return errors.New("stock analysis: handler not configured")
	}
	var payload StockAnalysisPayload
	if len(t.Payload()) > 0 {
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return asynq.SkipRetry
		}
	}

	tracker := j.metrics().Track(TaskStockAnalysis)
	defer func() {
		err = tracker.End(err)
	}()

	logger := j.logger().With(slog.String("trigger", payload.Trigger))
	snap, err := loadSnapshot(ctx, j.Store)
	if errors.Is(err, errNoSnapshot) {
		logger.Info("stock analysis skipped, nothing persisted yet")
		return nil
	}
	if err != nil {
		logger.Error("load snapshot", slog.Any("error", err))
		return err
	}
	text, err := j.Analyzer.Analyze(ctx, snap.Inventory)
	if err != nil {
		logger.Warn("stock analysis failed", slog.Any("error", err))
		return err
	}
	logger.Info("stock analysis refreshed", slog.Int("items", len(snap.Inventory)), slog.Int("chars", len(text)))
	return nil
}

func (j *StockAnalysisJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger
	}
	return slog.Default()
}

func (j *StockAnalysisJob) metrics() *jobmetrics.Metrics {
	if j.Metrics != nil {
		return j.Metrics
	}
	return defaultJobMetrics
}
