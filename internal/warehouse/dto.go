package warehouse

import (
	"github.com/odyssey-erp/stockroom/internal/inventory"
	"github.com/odyssey-erp/stockroom/internal/rma"
)

type locationRequest struct {
	Aisle string `json:"aisle" validate:"max=16"`
	Shelf string `json:"shelf" validate:"max=16"`
	Bin   string `json:"bin" validate:"max=16"`
}

type itemRequest struct {
	SKU         string          `json:"sku" validate:"required,max=64"`
	Name        string          `json:"name" validate:"required,max=200"`
	Category    string          `json:"category" validate:"max=100"`
	Quantity    int             `json:"quantity" validate:"gte=0"`
	MinStock    int             `json:"minStock" validate:"gte=0"`
	Location    locationRequest `json:"location"`
	Description string          `json:"description" validate:"max=2000"`
	UnitPrice   float64         `json:"unitPrice" validate:"gte=0"`
	ImageURL    string          `json:"imageUrl"`
}

func (r itemRequest) toItem(id string) inventory.Item {
	return inventory.Item{
		ID:          id,
		SKU:         r.SKU,
		Name:        r.Name,
		Category:    r.Category,
		Quantity:    r.Quantity,
		MinStock:    r.MinStock,
		Location:    inventory.Location{Aisle: r.Location.Aisle, Shelf: r.Location.Shelf, Bin: r.Location.Bin},
		Description: r.Description,
		UnitPrice:   r.UnitPrice,
		ImageURL:    r.ImageURL,
	}
}

type movementRequest struct {
	Amount int    `json:"amount" validate:"gt=0"`
	Reason string `json:"reason" validate:"max=200"`
}

type checkoutLine struct {
	ItemID string `json:"itemId" validate:"required"`
	Amount int    `json:"amount" validate:"gt=0"`
	Reason string `json:"reason" validate:"max=200"`
}

type checkoutRequest struct {
	Lines []checkoutLine `json:"lines" validate:"required,min=1,max=100,dive"`
}

func (r checkoutRequest) toInputs() []WithdrawInput {
	out := make([]WithdrawInput, len(r.Lines))
	for i, line := range r.Lines {
		out[i] = WithdrawInput{ItemID: line.ItemID, Amount: line.Amount, Reason: line.Reason}
	}
	return out
}

type rmaRequest struct {
	OriginalOrderID string `json:"originalOrderId" validate:"max=64"`
	SKU             string `json:"sku" validate:"required"`
	Quantity        int    `json:"quantity" validate:"gt=0"`
	Reason          string `json:"reason" validate:"omitempty,oneof=DAMAGED DEFECTIVE WRONG_ITEM OTHER"`
	Notes           string `json:"notes" validate:"max=2000"`
}

func (r rmaRequest) toInput() rma.CreateInput {
	return rma.CreateInput{
		OriginalOrderID: r.OriginalOrderID,
		SKU:             r.SKU,
		Quantity:        r.Quantity,
		Reason:          rma.Reason(r.Reason),
		Notes:           r.Notes,
	}
}

type rmaStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=PENDING INSPECTED REPLACED RESTOCKED SCRAPPED"`
}
