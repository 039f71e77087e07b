package inventory

import (
	"fmt"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

func relaySwitch() Item {
	return Item{
		ID:          "1",
		SKU:         "EL-001-PRO",
		Name:        "Industrial Relay Switch",
		Category:    "Electronics",
		Quantity:    142,
		MinStock:    50,
		Location:    Location{Aisle: "A1", Shelf: "S4", Bin: "B12"},
		Description: "Heavy-duty relay switch",
		UnitPrice:   24.5,
	}
}

func newTestStore(policy WithdrawPolicy, items ...Item) *Store {
	s := NewStore(items, policy)
	seq := 0
	s.newID = func() string {
		seq++
		return fmt.Sprintf("gen-%d", seq)
	}
	return s
}

func TestRestockAndWithdrawClamp(t *testing.T) {
	s := newTestStore(WithdrawClamp, relaySwitch())

	mv, err := s.Withdraw("1", 200, testNow)
	require.NoError(t, err)
	require.Equal(t, 200, mv.Requested)
	require.Equal(t, -142, mv.Applied)
	require.Equal(t, 58, mv.Shortfall)
	require.Equal(t, 0, mv.After)

	mv, err = s.Restock("1", 10, testNow)
	require.NoError(t, err)
	require.Equal(t, 10, mv.Applied)
	require.Equal(t, 10, mv.After)

	item, err := s.Get("1")
	require.NoError(t, err)
	require.Equal(t, 10, item.Quantity)
	require.Equal(t, testNow, item.LastUpdated)
}

func TestQuantityFollowsSignedDeltasClampedAtZero(t *testing.T) {
	s := newTestStore(WithdrawClamp, relaySwitch())
	ops := []int{+5, -100, -60, +3, -1, +40, -500, +7}
	expected := 142
	for _, op := range ops {
		var err error
		if op > 0 {
			_, err = s.Restock("1", op, testNow)
		} else {
			_, err = s.Withdraw("1", -op, testNow)
		}
		require.NoError(t, err)
		expected = max(expected+op, 0)
		item, err := s.Get("1")
		require.NoError(t, err)
		require.Equal(t, expected, item.Quantity)
	}
}

func TestWithdrawRejectPolicy(t *testing.T) {
	s := newTestStore(WithdrawReject, relaySwitch())

	_, err := s.Withdraw("1", 143, testNow)
	require.ErrorIs(t, err, ErrInsufficientStock)

	item, err := s.Get("1")
	require.NoError(t, err)
	require.Equal(t, 142, item.Quantity)
	require.True(t, item.LastUpdated.IsZero())

	mv, err := s.Withdraw("1", 142, testNow)
	require.NoError(t, err)
	require.Equal(t, 0, mv.After)
}

func TestMovementGuards(t *testing.T) {
	s := newTestStore(WithdrawClamp, relaySwitch())

	_, err := s.Restock("1", 0, testNow)
	require.ErrorIs(t, err, ErrInvalidQuantity)
	_, err = s.Withdraw("1", -4, testNow)
	require.ErrorIs(t, err, ErrInvalidQuantity)
	_, err = s.Restock("missing", 1, testNow)
	require.ErrorIs(t, err, ErrItemNotFound)
	_, err = s.Withdraw("missing", 1, testNow)
	require.ErrorIs(t, err, ErrItemNotFound)
}

func TestRestockRejectsQuantityOverflow(t *testing.T) {
	s := newTestStore(WithdrawClamp, relaySwitch())

	_, err := s.Restock("1", math.MaxInt, testNow)
	require.ErrorIs(t, err, ErrInvalidQuantity)

	item, err := s.Get("1")
	require.NoError(t, err)
	require.Equal(t, 142, item.Quantity)
	require.True(t, item.LastUpdated.IsZero())

	mv, err := s.Restock("1", math.MaxInt-142, testNow)
	require.NoError(t, err)
	require.Equal(t, math.MaxInt, mv.After)
}

func TestBulkImportRejectsQuantityOverflow(t *testing.T) {
	s := newTestStore(WithdrawClamp, relaySwitch())

	_, err := s.BulkImport([]Item{
		{SKU: "NEW-1", Quantity: 1},
		{SKU: "EL-001-PRO", Quantity: math.MaxInt - 142},
		{SKU: "EL-001-PRO", Quantity: 1},
	}, testNow)
	require.ErrorIs(t, err, ErrInvalidQuantity)
	require.Equal(t, 1, s.Len())

	relay, err := s.Get("1")
	require.NoError(t, err)
	require.Equal(t, 142, relay.Quantity)

	_, err = s.BulkImport([]Item{
		{SKU: "NEW-1", Quantity: math.MaxInt},
		{SKU: "NEW-1", Quantity: 1},
	}, testNow)
	require.ErrorIs(t, err, ErrInvalidQuantity)
	require.Equal(t, 1, s.Len())
}

func TestBulkImportKeepsImageWhenRowHasNone(t *testing.T) {
	relay := relaySwitch()
	relay.ImageURL = "data:image/png;base64,AAAA"
	s := newTestStore(WithdrawClamp, relay)

	_, err := s.BulkImport([]Item{{SKU: "EL-001-PRO", Name: "Relay", Quantity: 5}}, testNow)
	require.NoError(t, err)
	got, err := s.Get("1")
	require.NoError(t, err)
	require.Equal(t, "data:image/png;base64,AAAA", got.ImageURL)
	require.Equal(t, 147, got.Quantity)

	_, err = s.BulkImport([]Item{{SKU: "EL-001-PRO", Name: "Relay", ImageURL: "https://img/relay.png"}}, testNow)
	require.NoError(t, err)
	got, err = s.Get("1")
	require.NoError(t, err)
	require.Equal(t, "https://img/relay.png", got.ImageURL)
}

func TestBulkImportMergesBySKU(t *testing.T) {
	s := newTestStore(WithdrawClamp, relaySwitch())

	results, err := s.BulkImport([]Item{
		{SKU: "EL-001-PRO", Name: "Relay v2", Category: ImportCategory, Quantity: 5, MinStock: 10, Location: Location{Aisle: "D1", Shelf: "S1", Bin: "B01"}},
		{SKU: "NEW-1", Name: "Widget", Quantity: 3},
		{SKU: "NEW-1", Name: "Widget Mk2", Quantity: 4},
	}, testNow)
	require.NoError(t, err)
	require.Len(t, results, 3)
	require.True(t, results[0].Merged)
	require.Equal(t, 5, results[0].Delta)
	require.False(t, results[1].Merged)
	require.Equal(t, "gen-1", results[1].ItemID)
	require.True(t, results[2].Merged)
	require.Equal(t, "gen-1", results[2].ItemID)

	require.Equal(t, 2, s.Len())
	relay, err := s.FindBySKU("EL-001-PRO")
	require.NoError(t, err)
	require.Equal(t, "1", relay.ID)
	require.Equal(t, 147, relay.Quantity)
	require.Equal(t, "Relay v2", relay.Name)
	require.Equal(t, 10, relay.MinStock)
	require.Equal(t, "D1", relay.Location.Aisle)

	widget, err := s.FindBySKU("NEW-1")
	require.NoError(t, err)
	require.Equal(t, 7, widget.Quantity)
	require.Equal(t, "Widget Mk2", widget.Name)
}

func TestBulkImportRejectsInvalidBatchWithoutSideEffects(t *testing.T) {
	s := newTestStore(WithdrawClamp, relaySwitch())
	_, err := s.BulkImport([]Item{{SKU: "OK", Quantity: 1}, {SKU: "", Quantity: 1}}, testNow)
	require.Error(t, err)
	require.Equal(t, 1, s.Len())
}

func TestCreateAndUpdateItem(t *testing.T) {
	s := newTestStore(WithdrawClamp, relaySwitch())

	_, err := s.Create(Item{SKU: "EL-001-PRO"}, testNow)
	require.ErrorIs(t, err, ErrDuplicateSKU)

	created, err := s.Create(Item{SKU: "SF-KIT-02", Name: "Goggles", Quantity: 85}, testNow)
	require.NoError(t, err)
	require.Equal(t, "gen-1", created.ID)

	created.ImageURL = "data:image/png;base64,AAAA"
	updated, err := s.UpdateItem(created, testNow.Add(time.Hour))
	require.NoError(t, err)
	require.Equal(t, "data:image/png;base64,AAAA", updated.ImageURL)

	_, err = s.UpdateItem(Item{ID: "nope", SKU: "X"}, testNow)
	require.ErrorIs(t, err, ErrItemNotFound)
}

func TestSearchAndCategories(t *testing.T) {
	bolt := Item{ID: "2", SKU: "ME-992-HXS", Name: "M12 Titanium Hex Bolt", Category: "Mechanical"}
	s := newTestStore(WithdrawClamp, relaySwitch(), bolt)

	require.Len(t, s.Search(Filter{Term: "relay"}), 1)
	require.Len(t, s.Search(Filter{Term: "hxs"}), 1)
	require.Len(t, s.Search(Filter{Category: AllCategories}), 2)
	require.Empty(t, s.Search(Filter{Term: "relay", Category: "Mechanical"}))
	require.Equal(t, []string{"Electronics", "Mechanical"}, s.Categories())

	empty := newTestStore(WithdrawClamp)
	require.NotNil(t, empty.Categories())
	require.Empty(t, empty.Categories())
}

func TestParseImport(t *testing.T) {
	input := strings.Join([]string{
		"sku,name,qty,aisle,shelf,bin",
		"EL-001-PRO, Relay ,5,A1,S4,B12",
		"",
		"ME-1,Bolt,lots,B3,S1,B05",
		"SHORT,Only name",
		",no sku,3,A,S1,B1",
	}, "\n")
	items, err := ParseImport(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, items, 3)
	require.Equal(t, "Relay", items[0].Name)
	require.Equal(t, 5, items[0].Quantity)
	require.Equal(t, ImportCategory, items[0].Category)
	require.Equal(t, ImportMinStock, items[0].MinStock)
	require.Equal(t, 0, items[1].Quantity)
	require.Equal(t, Location{}, items[2].Location)
}

func TestSummarizeAndLocationMap(t *testing.T) {
	bolt := Item{ID: "2", SKU: "ME-992-HXS", Category: "Mechanical", Quantity: 0, MinStock: 20, UnitPrice: 1.25, Location: Location{Aisle: "A2", Shelf: "S4"}}
	items := []Item{relaySwitch(), bolt}

	stats := Summarize(items)
	require.Equal(t, 2, stats.TotalItems)
	require.Equal(t, 142, stats.TotalStock)
	require.Equal(t, 1, stats.LowStock)
	require.Equal(t, 1, stats.OutOfStock)
	require.InDelta(t, 3479.0, stats.TotalValue, 0.001)
	require.Len(t, stats.Categories, 2)
	require.Len(t, LowStockItems(items), 1)

	cells := LocationMap(items)
	require.Len(t, cells, 16)
	for _, cell := range cells {
		if cell.Aisle == "A" && cell.Shelf == "S4" {
			require.Equal(t, 2, cell.Count)
			require.Equal(t, 40, cell.Density)
		}
	}
}
