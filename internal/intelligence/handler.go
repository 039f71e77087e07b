package intelligence

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/odyssey-erp/stockroom/internal/inventory"
	"github.com/odyssey-erp/stockroom/internal/platform/httpx"
)

// ItemSource is the warehouse read/write surface the handler needs.
type ItemSource interface {
	Items() []inventory.Item
	Item(id string) (inventory.Item, error)
	SetItemImage(ctx context.Context, id, imageURL string) (inventory.Item, error)
}

// Handler wires HTTP endpoints for generative features.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	items     ItemSource
	validator *validator.Validate
}

// NewHandler constructs the handler.
func NewHandler(logger *slog.Logger, service *Service, items ItemSource) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, service: service, items: items, validator: httpx.NewValidator()}
}

// MountRoutes registers intelligence routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/intelligence", func(r chi.Router) {
		r.Post("/analysis", h.handleAnalysis)
		r.Post("/bin-suggestions", h.handleBinSuggestions)
		r.Post("/items/{id}/image", h.handleEditImage)
	})
}

type analysisResponse struct {
	Analysis string `json:"analysis"`
}

func (h *Handler) handleAnalysis(w http.ResponseWriter, r *http.Request) {
	text := h.service.AnalyzeStock(r.Context(), h.items.Items())
	httpx.JSON(w, http.StatusOK, analysisResponse{Analysis: text})
}

func (h *Handler) handleBinSuggestions(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, h.service.SuggestBinMoves(r.Context(), h.items.Items()))
}

type imageRequest struct {
	Prompt          string `json:"prompt" validate:"max=1000"`
	UseCurrentImage bool   `json:"useCurrentImage"`
}

func (h *Handler) handleEditImage(w http.ResponseWriter, r *http.Request) {
	var req imageRequest
	if r.ContentLength != 0 {
		if err := httpx.DecodeJSON(r, &req); err != nil {
			httpx.RespondError(w, err)
			return
		}
	}
	if fields := httpx.FieldErrors(h.validator, req); fields != nil {
		httpx.ValidationProblem(w, fields)
		return
	}
	item, err := h.items.Item(chi.URLParam(r, "id"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	prompt := req.Prompt
	if prompt == "" {
		prompt = DefaultImagePrompt(item.Name)
	}
	source := ""
	if req.UseCurrentImage {
		source = item.ImageURL
	}
	dataURL, err := h.service.EditImage(r.Context(), prompt, source)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	updated, err := h.items.SetItemImage(r.Context(), item.ID, dataURL)
	if err != nil {
		h.logger.Error("store generated image", slog.String("item", item.ID), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, updated)
}
