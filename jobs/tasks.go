package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskLowStockScan reports items at or below their minimum stock.
	TaskLowStockScan = "inventory:low_stock_scan"
	// TaskStockAnalysis refreshes the cached stock analysis.
	TaskStockAnalysis = "inventory:stock_analysis"
)

// Trigger values carried in payloads.
const (
	TriggerCron   = "cron"
	TriggerManual = "manual"
)

// LowStockScanPayload describes one scan request.
type LowStockScanPayload struct {
	Trigger string `json:"trigger"`
}

// StockAnalysisPayload describes one analysis refresh request.
type StockAnalysisPayload struct {
	Trigger string `json:"trigger"`
}

// NewLowStockScanTask constructs an Asynq task.
func NewLowStockScanTask(trigger string) (*asynq.Task, error) {
	data, err := json.Marshal(LowStockScanPayload{Trigger: trigger})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskLowStockScan, data), nil
}

// NewStockAnalysisTask constructs an Asynq task.
func NewStockAnalysisTask(trigger string) (*asynq.Task, error) {
	data, err := json.Marshal(StockAnalysisPayload{Trigger: trigger})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskStockAnalysis, data), nil
}
