package rma

import (
	"fmt"
	"time"
)

// Store holds RMA entries newest-first. Not safe for concurrent use.
type Store struct {
	entries []Entry
	newID   func() string
}

// NewStore seeds the store with entries that are already newest-first.
func NewStore(entries []Entry) *Store {
	seeded := make([]Entry, len(entries))
	copy(seeded, entries)
	return &Store{entries: seeded, newID: newEntryID}
}

// List returns a copy of all entries.
func (s *Store) List() []Entry {
	out := make([]Entry, len(s.entries))
	copy(out, s.entries)
	return out
}

// Get resolves an entry by id.
func (s *Store) Get(id string) (Entry, error) {
	idx := s.indexOf(id)
	if idx < 0 {
		return Entry{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return s.entries[idx], nil
}

// Validate checks input without touching the store.
func Validate(in CreateInput) error {
	if in.Quantity <= 0 {
		return ErrInvalidQuantity
	}
	if in.Reason != "" && !in.Reason.Valid() {
		return fmt.Errorf("%w: %s", ErrInvalidReason, in.Reason)
	}
	return nil
}

// Create prepends a PENDING entry for the resolved item.
func (s *Store) Create(in CreateInput, item ItemRef, at time.Time) (Entry, error) {
	if err := Validate(in); err != nil {
		return Entry{}, err
	}
	if item.ID == "" {
		return Entry{}, fmt.Errorf("%w: %s", ErrUnknownSKU, in.SKU)
	}
	reason := in.Reason
	if reason == "" {
		reason = ReasonOther
	}
	entry := Entry{
		ID:              s.newID(),
		OriginalOrderID: in.OriginalOrderID,
		ItemID:          item.ID,
		ItemName:        item.Name,
		SKU:             item.SKU,
		Quantity:        in.Quantity,
		Reason:          reason,
		Status:          StatusPending,
		Timestamp:       at,
		Notes:           in.Notes,
	}
	s.entries = append([]Entry{entry}, s.entries...)
	return entry, nil
}

// Plan computes the transition for a status write without applying it.
func (s *Store) Plan(id string, status Status) (Transition, error) {
	if !status.Valid() {
		return Transition{}, fmt.Errorf("%w: %s", ErrInvalidStatus, status)
	}
	entry, err := s.Get(id)
	if err != nil {
		return Transition{}, err
	}
	if entry.Status == StatusRestocked && status != StatusRestocked {
		return Transition{}, fmt.Errorf("%w: %s", ErrInvalidTransition, id)
	}
	return Transition{
		Entry:    entry,
		Previous: entry.Status,
		Restock:  status == StatusRestocked && entry.Status != StatusRestocked,
	}, nil
}

// SetStatus applies a status write. Re-applying the current status is a
// no-op; the restock edge stamps RestockedAt exactly once.
func (s *Store) SetStatus(id string, status Status, at time.Time) (Transition, error) {
	tr, err := s.Plan(id, status)
	if err != nil {
		return Transition{}, err
	}
	idx := s.indexOf(id)
	entry := &s.entries[idx]
	entry.Status = status
	if tr.Restock {
		stamp := at
		entry.RestockedAt = &stamp
	}
	tr.Entry = *entry
	return tr, nil
}

func (s *Store) indexOf(id string) int {
	for i := range s.entries {
		if s.entries[i].ID == id {
			return i
		}
	}
	return -1
}
