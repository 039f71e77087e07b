// Package warehouse is the single writer over inventory, the audit log and
// RMAs. Every intent runs validate, mutate, audit, persist and publish while
// holding one lock.
package warehouse

import (
	"github.com/odyssey-erp/stockroom/internal/audit"
	"github.com/odyssey-erp/stockroom/internal/inventory"
	"github.com/odyssey-erp/stockroom/internal/realtime"
	"github.com/odyssey-erp/stockroom/internal/rma"
)

// Default audit reasons for intents submitted without one.
const (
	ReasonRestock      = "Restock"
	ReasonWithdrawal   = "Withdrawal"
	ReasonBulkImport   = "Bulk import"
	ReasonManualAdjust = "Manual adjustment"
	reasonRMARestock   = "RMA Restock: "
	recentMovements    = 5
)

// Publisher receives change events after each committed mutation.
type Publisher interface {
	Publish(evt realtime.Event)
}

// MetricsSink receives domain counters.
type MetricsSink interface {
	StockMovement(movementType string)
	RMATransition(status string)
	PersistFailure()
}

// RestockInput credits stock to one item.
type RestockInput struct {
	ItemID string
	Amount int
	Reason string
}

// WithdrawInput removes stock from one item.
type WithdrawInput struct {
	ItemID string
	Amount int
	Reason string
}

// MovementResult is the outcome of one restock or withdrawal.
type MovementResult struct {
	Item     inventory.Item     `json:"item"`
	Movement inventory.Movement `json:"movement"`
	Entry    audit.Entry        `json:"entry"`
}

// ImportSummary is the outcome of a bulk import.
type ImportSummary struct {
	Created int                      `json:"created"`
	Merged  int                      `json:"merged"`
	Rows    []inventory.ImportResult `json:"rows"`
	Entries []audit.Entry            `json:"entries"`
}

// ItemResult is the outcome of a manual create or update.
type ItemResult struct {
	Item  inventory.Item `json:"item"`
	Entry *audit.Entry   `json:"entry,omitempty"`
}

// RMAResult is the outcome of an RMA status write.
type RMAResult struct {
	RMA       rma.Entry    `json:"rma"`
	Previous  rma.Status   `json:"previous"`
	Restocked bool         `json:"restocked"`
	Entry     *audit.Entry `json:"entry,omitempty"`
}

// Dashboard bundles the summary read model.
type Dashboard struct {
	Stats     inventory.Stats       `json:"stats"`
	Recent    []audit.Entry         `json:"recentMovements"`
	LowStock  []inventory.Item      `json:"lowStock"`
	Locations []inventory.ShelfCell `json:"locations"`
}

type noopPublisher struct{}

func (noopPublisher) Publish(realtime.Event) {}

type noopMetrics struct{}

func (noopMetrics) StockMovement(string) {}
func (noopMetrics) RMATransition(string) {}
func (noopMetrics) PersistFailure()      {}
