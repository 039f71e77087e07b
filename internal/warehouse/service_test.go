package warehouse

import (
	"context"
	"errors"
	"math"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/stockroom/internal/audit"
	"github.com/odyssey-erp/stockroom/internal/inventory"
	"github.com/odyssey-erp/stockroom/internal/persistence"
	"github.com/odyssey-erp/stockroom/internal/realtime"
	"github.com/odyssey-erp/stockroom/internal/rma"
	"github.com/odyssey-erp/stockroom/internal/shared"
)

var testNow = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

type memStore struct {
	mu      sync.Mutex
	payload []byte
	saves   int
	failing bool
}

func (m *memStore) Load(context.Context) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.payload == nil {
		return nil, persistence.ErrNotFound
	}
	return m.payload, nil
}

func (m *memStore) Save(_ context.Context, payload []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failing {
		return errors.New("disk full")
	}
	m.saves++
	m.payload = append([]byte(nil), payload...)
	return nil
}

type recordingPublisher struct {
	mu      sync.Mutex
	intents []string
}

func (p *recordingPublisher) Publish(evt realtime.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.intents = append(p.intents, evt.Intent)
}

type countingMetrics struct {
	mu              sync.Mutex
	movements       map[string]int
	transitions     map[string]int
	persistFailures int
}

func newCountingMetrics() *countingMetrics {
	return &countingMetrics{movements: map[string]int{}, transitions: map[string]int{}}
}

func (m *countingMetrics) StockMovement(t string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.movements[t]++
}

func (m *countingMetrics) RMATransition(s string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.transitions[s]++
}

func (m *countingMetrics) PersistFailure() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.persistFailures++
}

type fixture struct {
	svc       *Service
	store     *memStore
	publisher *recordingPublisher
	metrics   *countingMetrics
}

func newFixture(t *testing.T, policy inventory.WithdrawPolicy) fixture {
	t.Helper()
	f := fixture{store: &memStore{}, publisher: &recordingPublisher{}, metrics: newCountingMetrics()}
	f.svc = NewService(persistence.Defaults(), Options{
		Store:           f.store,
		Publisher:       f.publisher,
		Metrics:         f.metrics,
		Clock:           func() time.Time { return testNow },
		DefaultOperator: "tester",
		WithdrawPolicy:  policy,
	})
	return f
}

func TestRelaySwitchScenario(t *testing.T) {
	f := newFixture(t, inventory.WithdrawClamp)
	ctx := context.Background()

	res, err := f.svc.Withdraw(ctx, WithdrawInput{ItemID: "1", Amount: 200, Reason: "Line 4 rebuild"})
	require.NoError(t, err)
	require.Equal(t, 0, res.Item.Quantity)
	require.Equal(t, 58, res.Movement.Shortfall)
	require.Equal(t, -200, res.Entry.QuantityDelta)
	require.Equal(t, audit.MovementOut, res.Entry.Type)
	require.Equal(t, "tester", res.Entry.User)

	res, err = f.svc.Restock(ctx, RestockInput{ItemID: "1", Amount: 10})
	require.NoError(t, err)
	require.Equal(t, 10, res.Item.Quantity)
	require.Equal(t, 10, res.Entry.QuantityDelta)
	require.Equal(t, ReasonRestock, res.Entry.Reason)

	summary, err := f.svc.BulkImport(ctx, []inventory.Item{{
		SKU:         "EL-001-PRO",
		Name:        "Relay Switch v2",
		Category:    inventory.ImportCategory,
		Quantity:    5,
		MinStock:    inventory.ImportMinStock,
		Location:    inventory.Location{Aisle: "D1", Shelf: "S2", Bin: "B01"},
		Description: inventory.ImportDescription,
	}})
	require.NoError(t, err)
	require.Equal(t, 1, summary.Merged)
	require.Len(t, summary.Entries, 1)
	require.Equal(t, 5, summary.Entries[0].QuantityDelta)

	item, err := f.svc.Item("1")
	require.NoError(t, err)
	require.Equal(t, 15, item.Quantity)
	require.Equal(t, "Relay Switch v2", item.Name)
	require.Equal(t, "D1", item.Location.Aisle)
	require.Equal(t, 0.0, item.UnitPrice)
	require.Len(t, f.svc.Items(), 3)

	logs := f.svc.Logs(audit.Filter{})
	require.Len(t, logs, 4)
	require.Equal(t, []int{5, 10, -200, 50}, []int{logs[0].QuantityDelta, logs[1].QuantityDelta, logs[2].QuantityDelta, logs[3].QuantityDelta})
	require.Equal(t, "Relay Switch v2", logs[0].ItemName)
	require.Equal(t, "Industrial Relay Switch", logs[2].ItemName)

	require.Equal(t, 3, f.store.saves)
	require.Equal(t, []string{"withdraw", "restock", "bulk_import"}, f.publisher.intents)
	require.Equal(t, 1, f.metrics.movements["OUT"])
	require.Equal(t, 1, f.metrics.movements["IN"])
	require.Equal(t, 1, f.metrics.movements["ADJUST"])
}

func TestUnknownItemHasNoSideEffects(t *testing.T) {
	f := newFixture(t, inventory.WithdrawClamp)
	ctx := context.Background()

	_, err := f.svc.Restock(ctx, RestockInput{ItemID: "404", Amount: 1})
	require.ErrorIs(t, err, inventory.ErrItemNotFound)
	require.ErrorIs(t, err, shared.ErrNotFound)
	_, err = f.svc.Withdraw(ctx, WithdrawInput{ItemID: "404", Amount: 1})
	require.ErrorIs(t, err, inventory.ErrItemNotFound)
	_, err = f.svc.Restock(ctx, RestockInput{ItemID: "1", Amount: 0})
	require.ErrorIs(t, err, inventory.ErrInvalidQuantity)

	require.Len(t, f.svc.Logs(audit.Filter{}), 1)
	require.Zero(t, f.store.saves)
	require.Empty(t, f.publisher.intents)
}

func TestRestockOverflowIsRejected(t *testing.T) {
	f := newFixture(t, inventory.WithdrawClamp)
	ctx := context.Background()

	_, err := f.svc.Restock(ctx, RestockInput{ItemID: "1", Amount: math.MaxInt})
	require.ErrorIs(t, err, inventory.ErrInvalidQuantity)
	require.ErrorIs(t, err, shared.ErrValidation)

	item, err := f.svc.Item("1")
	require.NoError(t, err)
	require.Equal(t, 142, item.Quantity)
	require.Len(t, f.svc.Logs(audit.Filter{}), 1)
	require.Zero(t, f.store.saves)
	require.Empty(t, f.publisher.intents)
}

func TestRMARestockOverflowLeavesStatus(t *testing.T) {
	snap := persistence.Defaults()
	snap.Inventory[0].Quantity = math.MaxInt - 1
	svc := NewService(snap, Options{Clock: func() time.Time { return testNow }})

	_, err := svc.UpdateRMAStatus(context.Background(), "rma-1", rma.StatusRestocked)
	require.ErrorIs(t, err, inventory.ErrInvalidQuantity)
	require.Equal(t, rma.StatusPending, svc.RMAs()[0].Status)
}

func TestImportCSVKeepsItemImage(t *testing.T) {
	f := newFixture(t, inventory.WithdrawClamp)
	ctx := context.Background()

	_, err := f.svc.SetItemImage(ctx, "1", "data:image/png;base64,AAAA")
	require.NoError(t, err)

	_, err = f.svc.ImportCSV(ctx, strings.NewReader("sku,name,qty,aisle,shelf,bin\nEL-001-PRO,Relay,5,A,S1,B1\n"))
	require.NoError(t, err)

	item, err := f.svc.Item("1")
	require.NoError(t, err)
	require.Equal(t, 147, item.Quantity)
	require.Equal(t, "data:image/png;base64,AAAA", item.ImageURL)
}

func TestRMARestockCreditsExactlyOnce(t *testing.T) {
	f := newFixture(t, inventory.WithdrawClamp)
	ctx := context.Background()

	res, err := f.svc.UpdateRMAStatus(ctx, "rma-1", rma.StatusInspected)
	require.NoError(t, err)
	require.False(t, res.Restocked)
	require.Nil(t, res.Entry)

	for i := 0; i < 3; i++ {
		res, err = f.svc.UpdateRMAStatus(ctx, "rma-1", rma.StatusRestocked)
		require.NoError(t, err)
		require.Equal(t, rma.StatusRestocked, res.RMA.Status)
		require.NotNil(t, res.RMA.RestockedAt)
	}

	item, err := f.svc.Item("1")
	require.NoError(t, err)
	require.Equal(t, 144, item.Quantity)

	rmaLogs := f.svc.Logs(audit.Filter{Type: audit.MovementRMA})
	require.Len(t, rmaLogs, 1)
	require.Equal(t, 2, rmaLogs[0].QuantityDelta)
	require.Equal(t, "RMA Restock: rma-1", rmaLogs[0].Reason)

	_, err = f.svc.UpdateRMAStatus(ctx, "rma-1", rma.StatusScrapped)
	require.ErrorIs(t, err, rma.ErrInvalidTransition)
	require.Equal(t, 1, f.metrics.transitions["RESTOCKED"])
	require.Equal(t, 2, f.store.saves)
}

func TestRMARestockAbortsWhenItemMissing(t *testing.T) {
	snap := persistence.Defaults()
	snap.RMAs[0].ItemID = "gone"
	svc := NewService(snap, Options{Clock: func() time.Time { return testNow }})

	_, err := svc.UpdateRMAStatus(context.Background(), "rma-1", rma.StatusRestocked)
	require.ErrorIs(t, err, inventory.ErrItemNotFound)
	require.Equal(t, rma.StatusPending, svc.RMAs()[0].Status)
}

func TestCreateRMA(t *testing.T) {
	f := newFixture(t, inventory.WithdrawClamp)
	ctx := context.Background()

	_, err := f.svc.CreateRMA(ctx, rma.CreateInput{SKU: "NOPE", Quantity: 1})
	require.ErrorIs(t, err, rma.ErrUnknownSKU)
	require.Len(t, f.svc.RMAs(), 1)

	entry, err := f.svc.CreateRMA(ctx, rma.CreateInput{SKU: "SF-KIT-02", Quantity: 3, Reason: rma.ReasonDamaged})
	require.NoError(t, err)
	require.Equal(t, "Standard Safety Goggles", entry.ItemName)
	require.Equal(t, "3", entry.ItemID)
	require.Equal(t, entry.ID, f.svc.RMAs()[0].ID)
	require.Len(t, f.svc.Logs(audit.Filter{}), 1)
}

func TestCheckoutValidatesWholeCart(t *testing.T) {
	f := newFixture(t, inventory.WithdrawClamp)
	ctx := context.Background()

	_, err := f.svc.Checkout(ctx, []WithdrawInput{{ItemID: "1", Amount: 5}, {ItemID: "404", Amount: 1}})
	require.ErrorIs(t, err, inventory.ErrItemNotFound)
	item, _ := f.svc.Item("1")
	require.Equal(t, 142, item.Quantity)

	results, err := f.svc.Checkout(ctx, []WithdrawInput{{ItemID: "1", Amount: 5}, {ItemID: "3", Amount: 5}})
	require.NoError(t, err)
	require.Len(t, results, 2)
	require.Len(t, f.svc.Logs(audit.Filter{Type: audit.MovementOut}), 2)
	require.Equal(t, 1, f.store.saves)
	require.Equal(t, []string{"checkout"}, f.publisher.intents)
}

func TestCheckoutRejectPolicySumsLines(t *testing.T) {
	f := newFixture(t, inventory.WithdrawReject)

	_, err := f.svc.Checkout(context.Background(), []WithdrawInput{{ItemID: "3", Amount: 50}, {ItemID: "3", Amount: 50}})
	require.ErrorIs(t, err, inventory.ErrInsufficientStock)
	item, _ := f.svc.Item("3")
	require.Equal(t, 85, item.Quantity)
}

func TestUpdateItemRecordsQuantityAdjustment(t *testing.T) {
	f := newFixture(t, inventory.WithdrawClamp)
	ctx := context.Background()

	item, _ := f.svc.Item("2")
	item.ImageURL = "data:image/png;base64,AAAA"
	res, err := f.svc.UpdateItem(ctx, item)
	require.NoError(t, err)
	require.Nil(t, res.Entry)

	item.Quantity = 1100
	res, err = f.svc.UpdateItem(ctx, item)
	require.NoError(t, err)
	require.NotNil(t, res.Entry)
	require.Equal(t, -100, res.Entry.QuantityDelta)
	require.Equal(t, audit.MovementAdjust, res.Entry.Type)

	item.Quantity = -1
	_, err = f.svc.UpdateItem(ctx, item)
	require.ErrorIs(t, err, shared.ErrValidation)
}

func TestCreateItemAndImportCSV(t *testing.T) {
	f := newFixture(t, inventory.WithdrawClamp)
	ctx := context.Background()

	res, err := f.svc.CreateItem(ctx, inventory.Item{SKU: "TL-100", Name: "Torque Wrench", Category: "Tools", Quantity: 4})
	require.NoError(t, err)
	require.NotEmpty(t, res.Item.ID)
	require.NotNil(t, res.Entry)

	_, err = f.svc.CreateItem(ctx, inventory.Item{SKU: "TL-100", Name: "dup"})
	require.ErrorIs(t, err, inventory.ErrDuplicateSKU)

	csv := "sku,name,qty,aisle,shelf,bin\nTL-100,Torque Wrench,6,A1,S1,B1\nNEW-1,Cable Ties,abc,B1,S2,B2\n"
	summary, err := f.svc.ImportCSV(ctx, strings.NewReader(csv))
	require.NoError(t, err)
	require.Equal(t, 1, summary.Merged)
	require.Equal(t, 1, summary.Created)
	require.Len(t, summary.Entries, 1)

	wrench, err := f.svc.ItemBySKU("TL-100")
	require.NoError(t, err)
	require.Equal(t, 10, wrench.Quantity)
	ties, err := f.svc.ItemBySKU("NEW-1")
	require.NoError(t, err)
	require.Equal(t, 0, ties.Quantity)
	require.Equal(t, inventory.ImportCategory, ties.Category)
}

func TestPersistFailureKeepsState(t *testing.T) {
	f := newFixture(t, inventory.WithdrawClamp)
	f.store.failing = true

	_, err := f.svc.Restock(context.Background(), RestockInput{ItemID: "1", Amount: 8})
	require.NoError(t, err)
	item, _ := f.svc.Item("1")
	require.Equal(t, 150, item.Quantity)
	require.Equal(t, 1, f.metrics.persistFailures)
	require.Equal(t, []string{"restock"}, f.publisher.intents)
}

func TestSnapshotRoundTrip(t *testing.T) {
	f := newFixture(t, inventory.WithdrawClamp)
	ctx := context.Background()

	_, err := f.svc.Withdraw(ctx, WithdrawInput{ItemID: "2", Amount: 300})
	require.NoError(t, err)
	_, err = f.svc.CreateRMA(ctx, rma.CreateInput{SKU: "ME-992-HXS", Quantity: 10, Reason: rma.ReasonWrongItem})
	require.NoError(t, err)

	restored := persistence.LoadOrDefault(ctx, f.store, nil)
	want := f.svc.Snapshot()
	require.Len(t, restored.Inventory, len(want.Inventory))
	require.Len(t, restored.Logs, len(want.Logs))
	require.Len(t, restored.RMAs, len(want.RMAs))
	for i := range want.Inventory {
		require.Equal(t, want.Inventory[i].ID, restored.Inventory[i].ID)
		require.Equal(t, want.Inventory[i].Quantity, restored.Inventory[i].Quantity)
	}
	for i := range want.Logs {
		require.Equal(t, want.Logs[i].ID, restored.Logs[i].ID)
		require.Equal(t, want.Logs[i].QuantityDelta, restored.Logs[i].QuantityDelta)
	}
	require.Equal(t, want.RMAs[0].ID, restored.RMAs[0].ID)
}

func TestOperatorFromContextLabelsEntries(t *testing.T) {
	f := newFixture(t, inventory.WithdrawClamp)
	ctx := shared.ContextWithOperator(context.Background(), "dock-2")

	res, err := f.svc.Restock(ctx, RestockInput{ItemID: "3", Amount: 1})
	require.NoError(t, err)
	require.Equal(t, "dock-2", res.Entry.User)
}

func TestConcurrentIntentsAreSerialised(t *testing.T) {
	f := newFixture(t, inventory.WithdrawClamp)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, _ = f.svc.Restock(ctx, RestockInput{ItemID: "2", Amount: 3})
		}()
		go func() {
			defer wg.Done()
			_, _ = f.svc.Withdraw(ctx, WithdrawInput{ItemID: "2", Amount: 1})
		}()
	}
	wg.Wait()

	item, _ := f.svc.Item("2")
	require.Equal(t, 1200+50*2, item.Quantity)
	require.Len(t, f.svc.Logs(audit.Filter{}), 101)
}

func TestDashboardAndLocations(t *testing.T) {
	f := newFixture(t, inventory.WithdrawClamp)

	dash := f.svc.Dashboard()
	require.Equal(t, 3, dash.Stats.TotalItems)
	require.Equal(t, 1, dash.Stats.LowStock)
	require.Len(t, dash.LowStock, 1)
	require.Equal(t, "ME-992-HXS", dash.LowStock[0].SKU)
	require.Len(t, dash.Recent, 1)

	require.Len(t, dash.Locations, 16)
	cells := f.svc.LocationMap()
	require.Equal(t, cells, dash.Locations)
	require.Equal(t, []string{"Electronics", "Mechanical", "Safety"}, f.svc.Categories())
}
