// Package rma tracks return-merchandise authorisations and their dispositions.
package rma

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/odyssey-erp/stockroom/internal/shared"
)

// Reason explains why goods came back.
type Reason string

const (
	ReasonDamaged   Reason = "DAMAGED"
	ReasonDefective Reason = "DEFECTIVE"
	ReasonWrongItem Reason = "WRONG_ITEM"
	ReasonOther     Reason = "OTHER"
)

// Valid reports whether r is a known reason.
func (r Reason) Valid() bool {
	switch r {
	case ReasonDamaged, ReasonDefective, ReasonWrongItem, ReasonOther:
		return true
	}
	return false
}

// Status is the disposition state of an entry.
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusInspected Status = "INSPECTED"
	StatusReplaced  Status = "REPLACED"
	StatusRestocked Status = "RESTOCKED"
	StatusScrapped  Status = "SCRAPPED"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusInspected, StatusReplaced, StatusRestocked, StatusScrapped:
		return true
	}
	return false
}

// Entry is one return record. Item fields are a snapshot taken at creation.
type Entry struct {
	ID              string     `json:"id"`
	OriginalOrderID string     `json:"originalOrderId,omitempty"`
	ItemID          string     `json:"itemId"`
	ItemName        string     `json:"itemName"`
	SKU             string     `json:"sku"`
	Quantity        int        `json:"quantity"`
	Reason          Reason     `json:"reason"`
	Status          Status     `json:"status"`
	Timestamp       time.Time  `json:"timestamp"`
	Notes           string     `json:"notes"`
	RestockedAt     *time.Time `json:"restockedAt,omitempty"`
}

// ItemRef is the resolved inventory item an RMA is raised against.
type ItemRef struct {
	ID   string
	Name string
	SKU  string
}

// CreateInput carries the caller-supplied part of a new entry.
type CreateInput struct {
	OriginalOrderID string
	SKU             string
	Quantity        int
	Reason          Reason
	Notes           string
}

// Transition reports the outcome of a status write.
type Transition struct {
	Entry    Entry
	Previous Status
	// Restock is true only on the edge into RESTOCKED.
	Restock bool
}

var (
	// ErrNotFound indicates an unknown RMA id.
	ErrNotFound = fmt.Errorf("rma: entry %w", shared.ErrNotFound)
	// ErrUnknownSKU indicates creation against a SKU that is not stocked.
	ErrUnknownSKU = fmt.Errorf("rma: unknown sku: %w", shared.ErrValidation)
	// ErrInvalidQuantity indicates a non-positive return quantity.
	ErrInvalidQuantity = fmt.Errorf("rma: quantity must be positive: %w", shared.ErrValidation)
	// ErrInvalidReason indicates an unsupported reason.
	ErrInvalidReason = fmt.Errorf("rma: invalid reason: %w", shared.ErrValidation)
	// ErrInvalidStatus indicates an unsupported status.
	ErrInvalidStatus = fmt.Errorf("rma: invalid status: %w", shared.ErrValidation)
	// ErrInvalidTransition indicates an attempt to leave RESTOCKED.
	ErrInvalidTransition = fmt.Errorf("rma: restocked entries cannot change status: %w", shared.ErrConflict)
)

func newEntryID() string {
	raw := strings.ReplaceAll(uuid.NewString(), "-", "")
	return "RMA-" + strings.ToUpper(raw[:8])
}
