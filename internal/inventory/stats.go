package inventory

import "strings"

// chartRows caps the per-item rows returned for the stock-level chart.
const chartRows = 10

// CategoryCount is the number of items in one category.
type CategoryCount struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}

// ChartRow is one item's quantity against its threshold.
type ChartRow struct {
	Name string `json:"name"`
	Qty  int    `json:"qty"`
	Min  int    `json:"min"`
}

// Stats summarises the collection for the dashboard.
type Stats struct {
	TotalItems int             `json:"totalItems"`
	TotalStock int             `json:"totalStock"`
	LowStock   int             `json:"lowStock"`
	OutOfStock int             `json:"outOfStock"`
	TotalValue float64         `json:"totalValue"`
	Categories []CategoryCount `json:"categories"`
	Chart      []ChartRow      `json:"chart"`
}

// Summarize computes dashboard statistics over items.
func Summarize(items []Item) Stats {
	stats := Stats{TotalItems: len(items), Categories: []CategoryCount{}, Chart: []ChartRow{}}
	index := make(map[string]int)
	for i, item := range items {
		stats.TotalStock += item.Quantity
		stats.TotalValue += item.Value()
		if item.LowStock() {
			stats.LowStock++
		}
		if item.OutOfStock() {
			stats.OutOfStock++
		}
		if pos, ok := index[item.Category]; ok {
			stats.Categories[pos].Value++
		} else {
			index[item.Category] = len(stats.Categories)
			stats.Categories = append(stats.Categories, CategoryCount{Name: item.Category, Value: 1})
		}
		if i < chartRows {
			stats.Chart = append(stats.Chart, ChartRow{Name: item.SKU, Qty: item.Quantity, Min: item.MinStock})
		}
	}
	return stats
}

// LowStockItems returns the items at or below their threshold.
func LowStockItems(items []Item) []Item {
	out := []Item{}
	for _, item := range items {
		if item.LowStock() {
			out = append(out, item)
		}
	}
	return out
}

// Map layout used by the location overview.
var (
	MapAisles  = []string{"A", "B", "C", "D"}
	MapShelves = []string{"S1", "S2", "S3", "S4"}
)

// ShelfCell is the occupancy of one aisle/shelf pair.
type ShelfCell struct {
	Aisle   string   `json:"aisle"`
	Shelf   string   `json:"shelf"`
	Count   int      `json:"count"`
	Density int      `json:"density"`
	SKUs    []string `json:"skus"`
}

// LocationMap buckets items into aisle/shelf cells. An item belongs to an
// aisle when its aisle label starts with the aisle letter. Density is
// 20 points per item, capped at 100.
func LocationMap(items []Item) []ShelfCell {
	cells := make([]ShelfCell, 0, len(MapAisles)*len(MapShelves))
	for _, aisle := range MapAisles {
		for _, shelf := range MapShelves {
			cell := ShelfCell{Aisle: aisle, Shelf: shelf, SKUs: []string{}}
			for _, item := range items {
				if strings.HasPrefix(item.Location.Aisle, aisle) && item.Location.Shelf == shelf {
					cell.Count++
					cell.SKUs = append(cell.SKUs, item.SKU)
				}
			}
			cell.Density = min(cell.Count*20, 100)
			cells = append(cells, cell)
		}
	}
	return cells
}
