package warehouse

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/odyssey-erp/stockroom/internal/audit"
	"github.com/odyssey-erp/stockroom/internal/inventory"
	"github.com/odyssey-erp/stockroom/internal/platform/httpx"
	"github.com/odyssey-erp/stockroom/internal/rma"
	"github.com/odyssey-erp/stockroom/internal/shared"
)

// IdempotencyHeader carries the client-chosen retry key.
const IdempotencyHeader = "Idempotency-Key"

const maxImportBytes = 5 << 20

// Handler wires HTTP endpoints for warehouse state.
type Handler struct {
	logger      *slog.Logger
	service     *Service
	idempotency *shared.IdempotencyStore
	validator   *validator.Validate
}

// NewHandler constructs the warehouse handler.
func NewHandler(logger *slog.Logger, service *Service, idem *shared.IdempotencyStore) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, service: service, idempotency: idem, validator: httpx.NewValidator()}
}

// MountRoutes registers warehouse routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/inventory", func(r chi.Router) {
		r.Get("/", h.handleListItems)
		r.Post("/", h.idempotent("create_item", h.handleCreateItem))
		r.Get("/categories", h.handleCategories)
		r.Post("/import", h.idempotent("import", h.handleImport))
		r.Get("/sku/{sku}", h.handleItemBySKU)
		r.Get("/{id}", h.handleGetItem)
		r.Put("/{id}", h.idempotent("update_item", h.handleUpdateItem))
		r.Post("/{id}/restock", h.idempotent("restock", h.handleRestock))
	})
	r.Post("/withdrawals", h.idempotent("withdrawals", h.handleCheckout))
	r.Get("/logs", h.handleLogs)
	r.Get("/logs/export.csv", h.handleExportLogs)
	r.Get("/rmas", h.handleListRMAs)
	r.Post("/rmas", h.idempotent("create_rma", h.handleCreateRMA))
	r.Patch("/rmas/{id}/status", h.idempotent("rma_status", h.handleRMAStatus))
	r.Get("/dashboard", h.handleDashboard)
	r.Get("/locations", h.handleLocations)
}

// errorHandlerFunc returns the intent error so idempotent can release its key.
type errorHandlerFunc func(w http.ResponseWriter, r *http.Request) error

func (h *Handler) idempotent(module string, next errorHandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key := r.Header.Get(IdempotencyHeader)
		if key == "" {
			_ = next(w, r)
			return
		}
		if err := h.idempotency.Claim(r.Context(), key, module); err != nil {
			h.logger.Warn("idempotency claim rejected", slog.String("module", module), slog.Any("error", err))
			httpx.RespondError(w, err)
			return
		}
		if err := next(w, r); err != nil {
			if relErr := h.idempotency.Release(r.Context(), key, module); relErr != nil {
				h.logger.Error("release idempotency key", slog.String("module", module), slog.Any("error", relErr))
			}
		}
	}
}

func (h *Handler) fail(w http.ResponseWriter, err error) error {
	httpx.RespondError(w, err)
	return err
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, target any) error {
	if err := httpx.DecodeJSON(r, target); err != nil {
		return h.fail(w, err)
	}
	if fields := httpx.FieldErrors(h.validator, target); fields != nil {
		httpx.ValidationProblem(w, fields)
		return shared.ErrValidation
	}
	return nil
}

func (h *Handler) handleListItems(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	items := h.service.Search(inventory.Filter{Term: q.Get("q"), Category: q.Get("category")})
	httpx.JSON(w, http.StatusOK, items)
}

func (h *Handler) handleCategories(w http.ResponseWriter, _ *http.Request) {
	httpx.JSON(w, http.StatusOK, h.service.Categories())
}

func (h *Handler) handleGetItem(w http.ResponseWriter, r *http.Request) {
	item, err := h.service.Item(chi.URLParam(r, "id"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, item)
}

func (h *Handler) handleItemBySKU(w http.ResponseWriter, r *http.Request) {
	item, err := h.service.ItemBySKU(chi.URLParam(r, "sku"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, item)
}

func (h *Handler) handleCreateItem(w http.ResponseWriter, r *http.Request) error {
	var req itemRequest
	if err := h.decode(w, r, &req); err != nil {
		return err
	}
	res, err := h.service.CreateItem(r.Context(), req.toItem(""))
	if err != nil {
		return h.fail(w, err)
	}
	httpx.JSON(w, http.StatusCreated, res)
	return nil
}

func (h *Handler) handleUpdateItem(w http.ResponseWriter, r *http.Request) error {
	var req itemRequest
	if err := h.decode(w, r, &req); err != nil {
		return err
	}
	res, err := h.service.UpdateItem(r.Context(), req.toItem(chi.URLParam(r, "id")))
	if err != nil {
		return h.fail(w, err)
	}
	httpx.JSON(w, http.StatusOK, res)
	return nil
}

func (h *Handler) handleRestock(w http.ResponseWriter, r *http.Request) error {
	var req movementRequest
	if err := h.decode(w, r, &req); err != nil {
		return err
	}
	res, err := h.service.Restock(r.Context(), RestockInput{ItemID: chi.URLParam(r, "id"), Amount: req.Amount, Reason: req.Reason})
	if err != nil {
		return h.fail(w, err)
	}
	httpx.JSON(w, http.StatusOK, res)
	return nil
}

func (h *Handler) handleCheckout(w http.ResponseWriter, r *http.Request) error {
	var req checkoutRequest
	if err := h.decode(w, r, &req); err != nil {
		return err
	}
	results, err := h.service.Checkout(r.Context(), req.toInputs())
	if err != nil {
		return h.fail(w, err)
	}
	httpx.JSON(w, http.StatusOK, results)
	return nil
}

func (h *Handler) handleImport(w http.ResponseWriter, r *http.Request) error {
	body := http.MaxBytesReader(w, r.Body, maxImportBytes)
	summary, err := h.service.ImportCSV(r.Context(), body)
	if err != nil {
		return h.fail(w, err)
	}
	h.logger.Info("inventory imported", slog.Int("created", summary.Created), slog.Int("merged", summary.Merged))
	httpx.JSON(w, http.StatusOK, summary)
	return nil
}

func (h *Handler) logFilter(r *http.Request) (audit.Filter, map[string]string) {
	q := r.URL.Query()
	filter := audit.Filter{Type: audit.MovementType(q.Get("type")), SKU: q.Get("sku")}
	fields := map[string]string{}
	if filter.Type != "" && !filter.Type.Valid() {
		fields["type"] = "oneof"
	}
	if raw := q.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			fields["limit"] = "gte"
		}
		filter.Limit = limit
	}
	if len(fields) > 0 {
		return filter, fields
	}
	return filter, nil
}

func (h *Handler) handleLogs(w http.ResponseWriter, r *http.Request) {
	filter, fields := h.logFilter(r)
	if fields != nil {
		httpx.ValidationProblem(w, fields)
		return
	}
	httpx.JSON(w, http.StatusOK, h.service.Logs(filter))
}

func (h *Handler) handleExportLogs(w http.ResponseWriter, r *http.Request) {
	filter, fields := h.logFilter(r)
	if fields != nil {
		httpx.ValidationProblem(w, fields)
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="audit-log.csv"`)
	if err := audit.WriteCSV(w, h.service.Logs(filter)); err != nil {
		h.logger.Error("export audit log", slog.Any("error", err))
	}
}

func (h *Handler) handleListRMAs(w http.ResponseWriter, _ *http.Request) {
	httpx.JSON(w, http.StatusOK, h.service.RMAs())
}

func (h *Handler) handleCreateRMA(w http.ResponseWriter, r *http.Request) error {
	var req rmaRequest
	if err := h.decode(w, r, &req); err != nil {
		return err
	}
	entry, err := h.service.CreateRMA(r.Context(), req.toInput())
	if err != nil {
		return h.fail(w, err)
	}
	httpx.JSON(w, http.StatusCreated, entry)
	return nil
}

func (h *Handler) handleRMAStatus(w http.ResponseWriter, r *http.Request) error {
	var req rmaStatusRequest
	if err := h.decode(w, r, &req); err != nil {
		return err
	}
	res, err := h.service.UpdateRMAStatus(r.Context(), chi.URLParam(r, "id"), rma.Status(req.Status))
	if err != nil {
		return h.fail(w, err)
	}
	httpx.JSON(w, http.StatusOK, res)
	return nil
}

func (h *Handler) handleDashboard(w http.ResponseWriter, _ *http.Request) {
	httpx.JSON(w, http.StatusOK, h.service.Dashboard())
}

func (h *Handler) handleLocations(w http.ResponseWriter, _ *http.Request) {
	httpx.JSON(w, http.StatusOK, h.service.LocationMap())
}
