package jobs

import (
	"context"
	"errors"

	"github.com/odyssey-erp/stockroom/internal/persistence"
)

var errNoSnapshot = errors.New("jobs: no persisted snapshot")

// loadSnapshot reads the persisted state. Jobs never seed defaults, so an
// empty slot is reported as errNoSnapshot.
func loadSnapshot(ctx context.Context, store persistence.Store) (persistence.Snapshot, error) {
	payload, err := store.Load(ctx)
	if errors.Is(err, persistence.ErrNotFound) {
		return persistence.Snapshot{}, errNoSnapshot
	}
	if err != nil {
		return persistence.Snapshot{}, err
	}
	return persistence.Decode(payload)
}
