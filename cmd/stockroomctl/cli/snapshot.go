package cli

import (
	"context"
	"encoding/json"
	"io"

	"github.com/odyssey-erp/stockroom/internal/persistence"
)

// SnapshotSummary counts the collections of a persisted snapshot.
type SnapshotSummary struct {
	Items int `json:"items"`
	Logs  int `json:"logs"`
	RMAs  int `json:"rmas"`
}

// DumpSnapshot decodes the persisted state and writes it as indented JSON.
// A malformed or missing slot is reported rather than replaced by defaults.
func DumpSnapshot(ctx context.Context, store persistence.Store, w io.Writer) (SnapshotSummary, error) {
	payload, err := store.Load(ctx)
	if err != nil {
		return SnapshotSummary{}, err
	}
	snap, err := persistence.Decode(payload)
	if err != nil {
		return SnapshotSummary{}, err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(snap); err != nil {
		return SnapshotSummary{}, err
	}
	return SnapshotSummary{Items: len(snap.Inventory), Logs: len(snap.Logs), RMAs: len(snap.RMAs)}, nil
}
