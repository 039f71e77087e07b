// Package audit keeps the append-only stock-movement log.
package audit

import (
	"time"

	"github.com/google/uuid"
)

// MovementType enumerates stock movements recorded in the log.
type MovementType string

const (
	// MovementIn records a restock.
	MovementIn MovementType = "IN"
	// MovementOut records a withdrawal.
	MovementOut MovementType = "OUT"
	// MovementAdjust records imports and manual corrections.
	MovementAdjust MovementType = "ADJUST"
	// MovementRMA records stock returned to shelf through an RMA.
	MovementRMA MovementType = "RMA"
)

// Valid reports whether t is a known movement type.
func (t MovementType) Valid() bool {
	switch t {
	case MovementIn, MovementOut, MovementAdjust, MovementRMA:
		return true
	}
	return false
}

// ItemRef is the item snapshot copied into an entry at write time.
type ItemRef struct {
	ID   string
	Name string
	SKU  string
}

// Entry is one immutable log record. Item fields are a snapshot, not a link.
type Entry struct {
	ID            string       `json:"id"`
	ItemID        string       `json:"itemId"`
	ItemName      string       `json:"itemName"`
	SKU           string       `json:"sku"`
	Type          MovementType `json:"type"`
	QuantityDelta int          `json:"quantityDelta"`
	Reason        string       `json:"reason"`
	Timestamp     time.Time    `json:"timestamp"`
	User          string       `json:"user"`
}

// Filter narrows log queries. Zero values match everything.
type Filter struct {
	Type  MovementType
	SKU   string
	Limit int
}

// newEntryID derives a time-ordered identifier.
func newEntryID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return "log-" + uuid.NewString()
	}
	return "log-" + id.String()
}
