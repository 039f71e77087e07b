// Package persistence saves and restores the warehouse state as one
// serialized snapshot in a single key-value slot.
package persistence

import (
	"encoding/json"
	"fmt"

	"github.com/odyssey-erp/stockroom/internal/audit"
	"github.com/odyssey-erp/stockroom/internal/inventory"
	"github.com/odyssey-erp/stockroom/internal/rma"
)

// Snapshot is the full persisted state.
type Snapshot struct {
	Inventory []inventory.Item `json:"inventory"`
	Logs      []audit.Entry    `json:"logs"`
	RMAs      []rma.Entry      `json:"rmas"`
}

// Encode serializes the snapshot.
func (s Snapshot) Encode() ([]byte, error) {
	if s.Inventory == nil {
		s.Inventory = []inventory.Item{}
	}
	if s.Logs == nil {
		s.Logs = []audit.Entry{}
	}
	if s.RMAs == nil {
		s.RMAs = []rma.Entry{}
	}
	payload, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("persistence: encode snapshot: %w", err)
	}
	return payload, nil
}

// Decode parses a stored snapshot. The three collections must all be present.
func Decode(payload []byte) (Snapshot, error) {
	var raw struct {
		Inventory *[]inventory.Item `json:"inventory"`
		Logs      *[]audit.Entry    `json:"logs"`
		RMAs      *[]rma.Entry      `json:"rmas"`
	}
	if err := json.Unmarshal(payload, &raw); err != nil {
		return Snapshot{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if raw.Inventory == nil || raw.Logs == nil || raw.RMAs == nil {
		return Snapshot{}, fmt.Errorf("%w: missing collection", ErrMalformed)
	}
	return Snapshot{Inventory: *raw.Inventory, Logs: *raw.Logs, RMAs: *raw.RMAs}, nil
}
