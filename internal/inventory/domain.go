package inventory

import (
	"fmt"
	"time"

	"github.com/odyssey-erp/stockroom/internal/shared"
)

// Location pins an item to an aisle/shelf/bin triple.
type Location struct {
	Aisle string `json:"aisle"`
	Shelf string `json:"shelf"`
	Bin   string `json:"bin"`
}

// Item is one stocked product. Quantity is the authoritative on-hand count.
type Item struct {
	ID          string    `json:"id"`
	SKU         string    `json:"sku"`
	Name        string    `json:"name"`
	Category    string    `json:"category"`
	Quantity    int       `json:"quantity"`
	MinStock    int       `json:"minStock"`
	Location    Location  `json:"location"`
	Description string    `json:"description"`
	UnitPrice   float64   `json:"unitPrice"`
	LastUpdated time.Time `json:"lastUpdated"`
	ImageURL    string    `json:"imageUrl,omitempty"`
}

// LowStock reports whether on-hand quantity is at or below the threshold.
func (i Item) LowStock() bool {
	return i.Quantity <= i.MinStock
}

// OutOfStock reports whether nothing is on hand.
func (i Item) OutOfStock() bool {
	return i.Quantity == 0
}

// Value is the on-hand valuation at unit price.
func (i Item) Value() float64 {
	return float64(i.Quantity) * i.UnitPrice
}

// Movement describes a quantity change applied to one item.
type Movement struct {
	ItemID    string
	Requested int
	// Applied is the signed change actually made to Quantity.
	Applied   int
	Shortfall int
	Before    int
	After     int
}

// ImportResult reports how one imported row landed.
type ImportResult struct {
	ItemID string `json:"itemId"`
	SKU    string `json:"sku"`
	Merged bool   `json:"merged"`
	Delta  int    `json:"delta"`
}

// WithdrawPolicy decides what happens when a withdrawal exceeds on-hand stock.
type WithdrawPolicy string

const (
	// WithdrawClamp floors quantity at zero and reports the shortfall.
	WithdrawClamp WithdrawPolicy = "clamp"
	// WithdrawReject refuses the withdrawal with ErrInsufficientStock.
	WithdrawReject WithdrawPolicy = "reject"
)

// Valid reports whether p is a known policy.
func (p WithdrawPolicy) Valid() bool {
	return p == WithdrawClamp || p == WithdrawReject
}

var (
	// ErrItemNotFound is returned when an id or SKU does not resolve.
	ErrItemNotFound = fmt.Errorf("inventory: item %w", shared.ErrNotFound)
	// ErrInvalidQuantity indicates a non-positive movement amount.
	ErrInvalidQuantity = fmt.Errorf("inventory: quantity must be a positive integer: %w", shared.ErrValidation)
	// ErrInsufficientStock is returned under WithdrawReject.
	ErrInsufficientStock = fmt.Errorf("inventory: insufficient stock: %w", shared.ErrConflict)
	// ErrDuplicateSKU is returned when manual entry reuses an existing SKU.
	ErrDuplicateSKU = fmt.Errorf("inventory: sku already exists: %w", shared.ErrDuplicate)
)

// validate checks the fields every stored item must satisfy.
func validate(item Item) error {
	switch {
	case item.SKU == "":
		return fmt.Errorf("inventory: sku required: %w", shared.ErrValidation)
	case item.Quantity < 0:
		return fmt.Errorf("inventory: quantity must be >= 0: %w", shared.ErrValidation)
	case item.UnitPrice < 0:
		return fmt.Errorf("inventory: unit price must be >= 0: %w", shared.ErrValidation)
	}
	return nil
}
