package persistence

import (
	"time"

	"github.com/odyssey-erp/stockroom/internal/audit"
	"github.com/odyssey-erp/stockroom/internal/inventory"
	"github.com/odyssey-erp/stockroom/internal/rma"
)

func seedTime(v string) time.Time {
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		panic(err)
	}
	return t
}

// Defaults returns the seed state used on first start.
func Defaults() Snapshot {
	return Snapshot{
		Inventory: []inventory.Item{
			{
				ID:          "1",
				SKU:         "EL-001-PRO",
				Name:        "Industrial Relay Switch",
				Category:    "Electronics",
				Quantity:    142,
				MinStock:    50,
				Location:    inventory.Location{Aisle: "A1", Shelf: "S4", Bin: "B12"},
				Description: "Heavy-duty relay switch for industrial automation panels.",
				UnitPrice:   24.50,
				LastUpdated: seedTime("2023-10-27T10:00:00Z"),
			},
			{
				ID:          "2",
				SKU:         "ME-992-HXS",
				Name:        "M12 Titanium Hex Bolt",
				Category:    "Mechanical",
				Quantity:    1200,
				MinStock:    2000,
				Location:    inventory.Location{Aisle: "B3", Shelf: "S1", Bin: "B05"},
				Description: "High-tensile titanium bolts for structural assembly.",
				UnitPrice:   1.25,
				LastUpdated: seedTime("2023-10-27T11:30:00Z"),
			},
			{
				ID:          "3",
				SKU:         "SF-KIT-02",
				Name:        "Standard Safety Goggles",
				Category:    "Safety",
				Quantity:    85,
				MinStock:    20,
				Location:    inventory.Location{Aisle: "C2", Shelf: "S2", Bin: "B01"},
				Description: "ANSI Z87.1 certified protective eyewear.",
				UnitPrice:   8.99,
				LastUpdated: seedTime("2023-10-26T09:15:00Z"),
			},
		},
		Logs: []audit.Entry{
			{
				ID:            "log-1",
				ItemID:        "1",
				ItemName:      "Industrial Relay Switch",
				SKU:           "EL-001-PRO",
				Type:          audit.MovementIn,
				QuantityDelta: 50,
				Reason:        "Restock from Vendor X",
				Timestamp:     seedTime("2023-10-27T10:00:00Z"),
				User:          "admin@warehouse.com",
			},
		},
		RMAs: []rma.Entry{
			{
				ID:        "rma-1",
				ItemID:    "1",
				ItemName:  "Industrial Relay Switch",
				SKU:       "EL-001-PRO",
				Quantity:  2,
				Reason:    rma.ReasonDefective,
				Status:    rma.StatusPending,
				Timestamp: seedTime("2023-10-28T08:00:00Z"),
				Notes:     "Coil failure reported by client.",
			},
		},
	}
}
