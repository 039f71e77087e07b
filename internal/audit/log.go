package audit

import (
	"errors"
	"time"
)

// ErrUnknownType indicates an append with an unsupported movement type.
var ErrUnknownType = errors.New("audit: unknown movement type")

// Log is the newest-first movement log. It has no update or delete API.
// Not safe for concurrent use; the warehouse service serialises access.
type Log struct {
	entries []Entry
	newID   func() string
}

// NewLog seeds the log with entries that are already newest-first.
func NewLog(entries []Entry) *Log {
	seeded := make([]Entry, len(entries))
	copy(seeded, entries)
	return &Log{entries: seeded, newID: newEntryID}
}

// Append builds an entry from the item snapshot and prepends it.
func (l *Log) Append(item ItemRef, delta int, typ MovementType, reason, user string, at time.Time) (Entry, error) {
	if !typ.Valid() {
		return Entry{}, ErrUnknownType
	}
	entry := Entry{
		ID:            l.newID(),
		ItemID:        item.ID,
		ItemName:      item.Name,
		SKU:           item.SKU,
		Type:          typ,
		QuantityDelta: delta,
		Reason:        reason,
		Timestamp:     at,
		User:          user,
	}
	l.entries = append(l.entries, Entry{})
	copy(l.entries[1:], l.entries)
	l.entries[0] = entry
	return entry, nil
}

// Len returns the number of entries.
func (l *Log) Len() int {
	return len(l.entries)
}

// Entries returns a copy of the log, newest first.
func (l *Log) Entries() []Entry {
	out := make([]Entry, len(l.entries))
	copy(out, l.entries)
	return out
}

// Recent returns up to n newest entries.
func (l *Log) Recent(n int) []Entry {
	return l.Query(Filter{Limit: n})
}

// Query returns entries matching f in log order.
func (l *Log) Query(f Filter) []Entry {
	out := make([]Entry, 0)
	for _, entry := range l.entries {
		if f.Type != "" && entry.Type != f.Type {
			continue
		}
		if f.SKU != "" && entry.SKU != f.SKU {
			continue
		}
		out = append(out, entry)
		if f.Limit > 0 && len(out) == f.Limit {
			break
		}
	}
	return out
}
