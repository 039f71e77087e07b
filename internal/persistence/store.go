package persistence

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

// DefaultKey is the slot name used when none is configured.
const DefaultKey = "warehouse_data"

var (
	// ErrNotFound indicates the slot holds nothing yet.
	ErrNotFound = errors.New("persistence: snapshot not found")
	// ErrMalformed indicates the slot holds something that is not a snapshot.
	ErrMalformed = errors.New("persistence: malformed snapshot")
)

// Store is a single key-value slot.
type Store interface {
	Load(ctx context.Context) ([]byte, error)
	Save(ctx context.Context, payload []byte) error
}

// LoadOrDefault restores the last snapshot. An empty slot or a payload that
// fails to decode yields the seed defaults; a read error is logged and also
// falls back to defaults.
func LoadOrDefault(ctx context.Context, store Store, logger *slog.Logger) Snapshot {
	if logger == nil {
		logger = slog.Default()
	}
	payload, err := store.Load(ctx)
	if errors.Is(err, ErrNotFound) {
		logger.Info("no persisted snapshot, seeding defaults")
		return Defaults()
	}
	if err != nil {
		logger.Warn("load snapshot failed, seeding defaults", slog.Any("error", err))
		return Defaults()
	}
	snap, err := Decode(payload)
	if err != nil {
		logger.Warn("discarding unreadable snapshot", slog.Any("error", err))
		return Defaults()
	}
	return snap
}

// Save encodes snap and writes it to store.
func Save(ctx context.Context, store Store, snap Snapshot) error {
	payload, err := snap.Encode()
	if err != nil {
		return err
	}
	if err := store.Save(ctx, payload); err != nil {
		return fmt.Errorf("persistence: save: %w", err)
	}
	return nil
}
