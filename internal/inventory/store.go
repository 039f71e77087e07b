package inventory

import (
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/odyssey-erp/stockroom/internal/shared"
)

// Store is the ordered item collection. It is not safe for concurrent use;
// the warehouse service serialises every call.
type Store struct {
	items  []Item
	policy WithdrawPolicy
	newID  func() string
}

// NewStore seeds a store with items, preserving their order.
func NewStore(items []Item, policy WithdrawPolicy) *Store {
	if !policy.Valid() {
		policy = WithdrawClamp
	}
	seeded := make([]Item, len(items))
	copy(seeded, items)
	return &Store{items: seeded, policy: policy, newID: uuid.NewString}
}

// List returns a copy of all items in insertion order.
func (s *Store) List() []Item {
	out := make([]Item, len(s.items))
	copy(out, s.items)
	return out
}

// Policy reports the active withdrawal policy.
func (s *Store) Policy() WithdrawPolicy {
	return s.policy
}

// Len returns the number of items.
func (s *Store) Len() int {
	return len(s.items)
}

// Get resolves an item by identifier.
func (s *Store) Get(id string) (Item, error) {
	idx := s.indexOf(id)
	if idx < 0 {
		return Item{}, fmt.Errorf("%w: id %q", ErrItemNotFound, id)
	}
	return s.items[idx], nil
}

// FindBySKU returns the first item carrying sku.
func (s *Store) FindBySKU(sku string) (Item, error) {
	idx := s.indexOfSKU(sku)
	if idx < 0 {
		return Item{}, fmt.Errorf("%w: sku %q", ErrItemNotFound, sku)
	}
	return s.items[idx], nil
}

// Create inserts a manually entered item under a fresh identifier.
func (s *Store) Create(item Item, at time.Time) (Item, error) {
	if err := validate(item); err != nil {
		return Item{}, err
	}
	if s.indexOfSKU(item.SKU) >= 0 {
		return Item{}, fmt.Errorf("%w: %s", ErrDuplicateSKU, item.SKU)
	}
	item.ID = s.newID()
	item.LastUpdated = at
	s.items = append(s.items, item)
	return item, nil
}

// Restock adds amount to the item's quantity.
func (s *Store) Restock(id string, amount int, at time.Time) (Movement, error) {
	if amount <= 0 {
		return Movement{}, ErrInvalidQuantity
	}
	idx := s.indexOf(id)
	if idx < 0 {
		return Movement{}, fmt.Errorf("%w: id %q", ErrItemNotFound, id)
	}
	item := &s.items[idx]
	if err := checkCredit(item.SKU, item.Quantity, amount); err != nil {
		return Movement{}, err
	}
	mv := Movement{ItemID: id, Requested: amount, Applied: amount, Before: item.Quantity}
	item.Quantity += amount
	item.LastUpdated = at
	mv.After = item.Quantity
	return mv, nil
}

// Withdraw removes amount from the item's quantity. Under WithdrawClamp the
// quantity floors at zero and the uncovered part is reported as Shortfall.
func (s *Store) Withdraw(id string, amount int, at time.Time) (Movement, error) {
	if amount <= 0 {
		return Movement{}, ErrInvalidQuantity
	}
	idx := s.indexOf(id)
	if idx < 0 {
		return Movement{}, fmt.Errorf("%w: id %q", ErrItemNotFound, id)
	}
	item := &s.items[idx]
	if amount > item.Quantity && s.policy == WithdrawReject {
		return Movement{}, fmt.Errorf("%w: %s has %d, requested %d", ErrInsufficientStock, item.SKU, item.Quantity, amount)
	}
	mv := Movement{ItemID: id, Requested: amount, Before: item.Quantity}
	next := item.Quantity - amount
	if next < 0 {
		mv.Shortfall = -next
		next = 0
	}
	item.Quantity = next
	item.LastUpdated = at
	mv.Applied = next - mv.Before
	mv.After = next
	return mv, nil
}

// BulkImport merges rows by SKU. A matched row adds its quantity to the
// existing one and overwrites every other field except the identifier and,
// when the row carries none, the image; an unmatched row is appended under a
// fresh identifier. Rows are applied in order, so duplicate SKUs in one
// batch accumulate into the same item. The batch is rejected before any row
// is applied if a row is invalid or a merged quantity would overflow.
func (s *Store) BulkImport(rows []Item, at time.Time) ([]ImportResult, error) {
	totals := make(map[string]int, len(rows))
	for i, row := range rows {
		if err := validate(row); err != nil {
			return nil, fmt.Errorf("inventory: import row %d: %w", i+1, err)
		}
		current, ok := totals[row.SKU]
		if !ok {
			if idx := s.indexOfSKU(row.SKU); idx >= 0 {
				current = s.items[idx].Quantity
			}
		}
		if err := checkCredit(row.SKU, current, row.Quantity); err != nil {
			return nil, fmt.Errorf("inventory: import row %d: %w", i+1, err)
		}
		totals[row.SKU] = current + row.Quantity
	}
	results := make([]ImportResult, 0, len(rows))
	for _, row := range rows {
		row.LastUpdated = at
		if idx := s.indexOfSKU(row.SKU); idx >= 0 {
			existing := s.items[idx]
			row.ID = existing.ID
			row.Quantity = existing.Quantity + row.Quantity
			if row.ImageURL == "" {
				row.ImageURL = existing.ImageURL
			}
			s.items[idx] = row
			results = append(results, ImportResult{ItemID: row.ID, SKU: row.SKU, Merged: true, Delta: row.Quantity - existing.Quantity})
			continue
		}
		row.ID = s.newID()
		s.items = append(s.items, row)
		results = append(results, ImportResult{ItemID: row.ID, SKU: row.SKU, Delta: row.Quantity})
	}
	return results, nil
}

// UpdateItem replaces the stored item with the same identifier.
func (s *Store) UpdateItem(item Item, at time.Time) (Item, error) {
	if item.ID == "" {
		return Item{}, fmt.Errorf("inventory: id required: %w", shared.ErrValidation)
	}
	if err := validate(item); err != nil {
		return Item{}, err
	}
	idx := s.indexOf(item.ID)
	if idx < 0 {
		return Item{}, fmt.Errorf("%w: id %q", ErrItemNotFound, item.ID)
	}
	item.LastUpdated = at
	s.items[idx] = item
	return item, nil
}

// checkCredit rejects an increase that would push quantity past math.MaxInt.
func checkCredit(sku string, quantity, amount int) error {
	if amount > math.MaxInt-quantity {
		return fmt.Errorf("%w: %s would exceed %d units", ErrInvalidQuantity, sku, math.MaxInt)
	}
	return nil
}

func (s *Store) indexOf(id string) int {
	for i := range s.items {
		if s.items[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) indexOfSKU(sku string) int {
	for i := range s.items {
		if s.items[i].SKU == sku {
			return i
		}
	}
	return -1
}
