package warehouse

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/odyssey-erp/stockroom/internal/audit"
	"github.com/odyssey-erp/stockroom/internal/inventory"
	"github.com/odyssey-erp/stockroom/internal/persistence"
	"github.com/odyssey-erp/stockroom/internal/realtime"
	"github.com/odyssey-erp/stockroom/internal/rma"
	"github.com/odyssey-erp/stockroom/internal/shared"
)

// Options wires the service collaborators. Zero values are usable.
type Options struct {
	Store           persistence.Store
	Publisher       Publisher
	Metrics         MetricsSink
	Logger          *slog.Logger
	Clock           func() time.Time
	DefaultOperator string
	WithdrawPolicy  inventory.WithdrawPolicy
	PersistTimeout  time.Duration
}

// Service is the authoritative sequencer for warehouse state.
type Service struct {
	mu        sync.Mutex
	inventory *inventory.Store
	logs      *audit.Log
	rmas      *rma.Store

	store          persistence.Store
	publisher      Publisher
	metrics        MetricsSink
	logger         *slog.Logger
	now            func() time.Time
	operator       string
	persistTimeout time.Duration
}

// NewService builds the service over a restored snapshot.
func NewService(snap persistence.Snapshot, opts Options) *Service {
	svc := &Service{
		inventory:      inventory.NewStore(snap.Inventory, opts.WithdrawPolicy),
		logs:           audit.NewLog(snap.Logs),
		rmas:           rma.NewStore(snap.RMAs),
		store:          opts.Store,
		publisher:      opts.Publisher,
		metrics:        opts.Metrics,
		logger:         opts.Logger,
		now:            opts.Clock,
		operator:       opts.DefaultOperator,
		persistTimeout: opts.PersistTimeout,
	}
	if svc.publisher == nil {
		svc.publisher = noopPublisher{}
	}
	if svc.metrics == nil {
		svc.metrics = noopMetrics{}
	}
	if svc.logger == nil {
		svc.logger = slog.Default()
	}
	if svc.now == nil {
		svc.now = func() time.Time { return time.Now().UTC() }
	}
	if svc.operator == "" {
		svc.operator = "warehouse_operator_01"
	}
	if svc.persistTimeout <= 0 {
		svc.persistTimeout = 5 * time.Second
	}
	return svc
}

// Restock credits stock and records an IN entry.
func (s *Service) Restock(ctx context.Context, input RestockInput) (MovementResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	at := s.now()
	mv, err := s.inventory.Restock(input.ItemID, input.Amount, at)
	if err != nil {
		return MovementResult{}, err
	}
	item, _ := s.inventory.Get(input.ItemID)
	entry, err := s.appendLocked(ctx, item, mv.Applied, audit.MovementIn, reasonOr(input.Reason, ReasonRestock), at)
	if err != nil {
		return MovementResult{}, err
	}
	s.commitLocked(ctx, "restock")
	return MovementResult{Item: item, Movement: mv, Entry: entry}, nil
}

// Withdraw removes stock and records an OUT entry for the requested amount.
func (s *Service) Withdraw(ctx context.Context, input WithdrawInput) (MovementResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.withdrawLocked(ctx, input, s.now())
	if err != nil {
		return MovementResult{}, err
	}
	s.commitLocked(ctx, "withdraw")
	return res, nil
}

// Checkout applies a cart of withdrawals. Every line is validated before the
// first one is applied, so a bad line leaves state untouched.
func (s *Service) Checkout(ctx context.Context, lines []WithdrawInput) ([]MovementResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(lines) == 0 {
		return nil, fmt.Errorf("warehouse: empty cart: %w", shared.ErrValidation)
	}
	pending := make(map[string]int, len(lines))
	for i, line := range lines {
		if line.Amount <= 0 {
			return nil, fmt.Errorf("warehouse: cart line %d: %w", i+1, inventory.ErrInvalidQuantity)
		}
		item, err := s.inventory.Get(line.ItemID)
		if err != nil {
			return nil, fmt.Errorf("warehouse: cart line %d: %w", i+1, err)
		}
		pending[line.ItemID] += line.Amount
		if s.inventory.Policy() == inventory.WithdrawReject && pending[line.ItemID] > item.Quantity {
			return nil, fmt.Errorf("warehouse: cart line %d: %w", i+1, inventory.ErrInsufficientStock)
		}
	}

	at := s.now()
	results := make([]MovementResult, 0, len(lines))
	for _, line := range lines {
		res, err := s.withdrawLocked(ctx, line, at)
		if err != nil {
			return nil, err
		}
		results = append(results, res)
	}
	s.commitLocked(ctx, "checkout")
	return results, nil
}

func (s *Service) withdrawLocked(ctx context.Context, input WithdrawInput, at time.Time) (MovementResult, error) {
	mv, err := s.inventory.Withdraw(input.ItemID, input.Amount, at)
	if err != nil {
		return MovementResult{}, err
	}
	item, _ := s.inventory.Get(input.ItemID)
	entry, err := s.appendLocked(ctx, item, -mv.Requested, audit.MovementOut, reasonOr(input.Reason, ReasonWithdrawal), at)
	if err != nil {
		return MovementResult{}, err
	}
	if mv.Shortfall > 0 {
		s.logger.Warn("withdrawal exceeded on-hand stock",
			slog.String("sku", item.SKU),
			slog.Int("requested", mv.Requested),
			slog.Int("shortfall", mv.Shortfall))
	}
	return MovementResult{Item: item, Movement: mv, Entry: entry}, nil
}

// BulkImport merges rows by SKU and records one ADJUST entry per row whose
// quantity changed.
func (s *Service) BulkImport(ctx context.Context, rows []inventory.Item) (ImportSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	at := s.now()
	results, err := s.inventory.BulkImport(rows, at)
	if err != nil {
		return ImportSummary{}, err
	}
	summary := ImportSummary{Rows: results, Entries: []audit.Entry{}}
	for _, res := range results {
		if res.Merged {
			summary.Merged++
		} else {
			summary.Created++
		}
		if res.Delta == 0 {
			continue
		}
		item, _ := s.inventory.Get(res.ItemID)
		entry, err := s.appendLocked(ctx, item, res.Delta, audit.MovementAdjust, ReasonBulkImport, at)
		if err != nil {
			return ImportSummary{}, err
		}
		summary.Entries = append(summary.Entries, entry)
	}
	s.commitLocked(ctx, "bulk_import")
	return summary, nil
}

// ImportCSV parses delimited rows and bulk-imports them.
func (s *Service) ImportCSV(ctx context.Context, r io.Reader) (ImportSummary, error) {
	rows, err := inventory.ParseImport(r)
	if err != nil {
		return ImportSummary{}, err
	}
	return s.BulkImport(ctx, rows)
}

// CreateItem adds a manually entered item. Opening stock is recorded as an
// ADJUST entry.
func (s *Service) CreateItem(ctx context.Context, item inventory.Item) (ItemResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	at := s.now()
	created, err := s.inventory.Create(item, at)
	if err != nil {
		return ItemResult{}, err
	}
	res := ItemResult{Item: created}
	if created.Quantity > 0 {
		entry, err := s.appendLocked(ctx, created, created.Quantity, audit.MovementAdjust, ReasonManualAdjust, at)
		if err != nil {
			return ItemResult{}, err
		}
		res.Entry = &entry
	}
	s.commitLocked(ctx, "create_item")
	return res, nil
}

// UpdateItem replaces an item. A changed quantity is recorded as an ADJUST
// entry for the difference.
func (s *Service) UpdateItem(ctx context.Context, item inventory.Item) (ItemResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	before, err := s.inventory.Get(item.ID)
	if err != nil {
		return ItemResult{}, err
	}
	at := s.now()
	updated, err := s.inventory.UpdateItem(item, at)
	if err != nil {
		return ItemResult{}, err
	}
	res := ItemResult{Item: updated}
	if delta := updated.Quantity - before.Quantity; delta != 0 {
		entry, err := s.appendLocked(ctx, updated, delta, audit.MovementAdjust, ReasonManualAdjust, at)
		if err != nil {
			return ItemResult{}, err
		}
		res.Entry = &entry
	}
	s.commitLocked(ctx, "update_item")
	return res, nil
}

// SetItemImage replaces only the image reference of an item.
func (s *Service) SetItemImage(ctx context.Context, id, imageURL string) (inventory.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, err := s.inventory.Get(id)
	if err != nil {
		return inventory.Item{}, err
	}
	item.ImageURL = imageURL
	updated, err := s.inventory.UpdateItem(item, s.now())
	if err != nil {
		return inventory.Item{}, err
	}
	s.commitLocked(ctx, "update_item_image")
	return updated, nil
}

// CreateRMA opens a return against a stocked SKU.
func (s *Service) CreateRMA(ctx context.Context, input rma.CreateInput) (rma.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := rma.Validate(input); err != nil {
		return rma.Entry{}, err
	}
	item, err := s.inventory.FindBySKU(input.SKU)
	if err != nil {
		return rma.Entry{}, fmt.Errorf("%w: %s", rma.ErrUnknownSKU, input.SKU)
	}
	entry, err := s.rmas.Create(input, rma.ItemRef{ID: item.ID, Name: item.Name, SKU: item.SKU}, s.now())
	if err != nil {
		return rma.Entry{}, err
	}
	s.metrics.RMATransition(string(entry.Status))
	s.commitLocked(ctx, "create_rma")
	return entry, nil
}

// UpdateRMAStatus writes a status. The edge into RESTOCKED credits the item
// and records an RMA entry; re-applying RESTOCKED changes nothing.
func (s *Service) UpdateRMAStatus(ctx context.Context, id string, status rma.Status) (RMAResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	plan, err := s.rmas.Plan(id, status)
	if err != nil {
		return RMAResult{}, err
	}
	if plan.Previous == status {
		return RMAResult{RMA: plan.Entry, Previous: plan.Previous}, nil
	}

	at := s.now()
	res := RMAResult{Previous: plan.Previous, Restocked: plan.Restock}
	if plan.Restock {
		if _, err := s.inventory.Get(plan.Entry.ItemID); err != nil {
			return RMAResult{}, err
		}
		if _, err := s.inventory.Restock(plan.Entry.ItemID, plan.Entry.Quantity, at); err != nil {
			return RMAResult{}, err
		}
		item, _ := s.inventory.Get(plan.Entry.ItemID)
		entry, err := s.appendLocked(ctx, item, plan.Entry.Quantity, audit.MovementRMA, reasonRMARestock+id, at)
		if err != nil {
			return RMAResult{}, err
		}
		res.Entry = &entry
	}
	tr, err := s.rmas.SetStatus(id, status, at)
	if err != nil {
		return RMAResult{}, err
	}
	res.RMA = tr.Entry
	s.metrics.RMATransition(string(status))
	s.commitLocked(ctx, "update_rma_status")
	return res, nil
}

func (s *Service) appendLocked(ctx context.Context, item inventory.Item, delta int, typ audit.MovementType, reason string, at time.Time) (audit.Entry, error) {
	ref := audit.ItemRef{ID: item.ID, Name: item.Name, SKU: item.SKU}
	entry, err := s.logs.Append(ref, delta, typ, reason, shared.OperatorFromContext(ctx, s.operator), at)
	if err != nil {
		return audit.Entry{}, err
	}
	s.metrics.StockMovement(string(typ))
	return entry, nil
}

// commitLocked persists the snapshot and publishes a change event. A failed
// save keeps the in-memory state.
func (s *Service) commitLocked(ctx context.Context, intent string) {
	if s.store != nil {
		saveCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.persistTimeout)
		err := persistence.Save(saveCtx, s.store, s.snapshotLocked())
		cancel()
		if err != nil {
			s.metrics.PersistFailure()
			s.logger.Error("persist snapshot", slog.String("intent", intent), slog.Any("error", err))
		}
	}
	s.publisher.Publish(realtime.Event{Type: realtime.EventStateChanged, Intent: intent, At: s.now()})
}

func reasonOr(reason, fallback string) string {
	if reason == "" {
		return fallback
	}
	return reason
}
