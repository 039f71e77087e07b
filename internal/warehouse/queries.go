package warehouse

import (
	"github.com/odyssey-erp/stockroom/internal/audit"
	"github.com/odyssey-erp/stockroom/internal/inventory"
	"github.com/odyssey-erp/stockroom/internal/persistence"
	"github.com/odyssey-erp/stockroom/internal/rma"
)

// Snapshot returns a copy of the full state.
func (s *Service) Snapshot() persistence.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Service) snapshotLocked() persistence.Snapshot {
	return persistence.Snapshot{
		Inventory: s.inventory.List(),
		Logs:      s.logs.Entries(),
		RMAs:      s.rmas.List(),
	}
}

// Items returns every item in insertion order.
func (s *Service) Items() []inventory.Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inventory.List()
}

// Item resolves an item by id.
func (s *Service) Item(id string) (inventory.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inventory.Get(id)
}

// ItemBySKU resolves a scanned SKU.
func (s *Service) ItemBySKU(sku string) (inventory.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inventory.FindBySKU(sku)
}

// Search filters items by term and category.
func (s *Service) Search(f inventory.Filter) []inventory.Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inventory.Search(f)
}

// Categories lists distinct categories in first-seen order.
func (s *Service) Categories() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inventory.Categories()
}

// Logs queries the audit log, newest first.
func (s *Service) Logs(f audit.Filter) []audit.Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.logs.Query(f)
}

// RMAs lists returns, newest first.
func (s *Service) RMAs() []rma.Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rmas.List()
}

// Stats summarises the inventory.
func (s *Service) Stats() inventory.Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return inventory.Summarize(s.inventory.List())
}

// Dashboard returns the summary read model. Every part is taken from the
// same state.
func (s *Service) Dashboard() Dashboard {
	s.mu.Lock()
	defer s.mu.Unlock()
	items := s.inventory.List()
	return Dashboard{
		Stats:     inventory.Summarize(items),
		Recent:    s.logs.Recent(recentMovements),
		LowStock:  inventory.LowStockItems(items),
		Locations: inventory.LocationMap(items),
	}
}

// LocationMap returns shelf occupancy for the aisle grid.
func (s *Service) LocationMap() []inventory.ShelfCell {
	s.mu.Lock()
	defer s.mu.Unlock()
	return inventory.LocationMap(s.inventory.List())
}
