package intelligence

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/sync/singleflight"
	"google.golang.org/genai"

	"github.com/odyssey-erp/stockroom/internal/inventory"
	"github.com/odyssey-erp/stockroom/internal/shared"
)

// FallbackAnalysis is returned whenever the analysis call fails.
const FallbackAnalysis = "Failed to analyze inventory. Please try again later."

// Default model names.
const (
	DefaultTextModel  = "gemini-3-flash-preview"
	DefaultImageModel = "gemini-2.5-flash-image"
)

// ErrNoImage indicates the model answered without an image part.
var ErrNoImage = fmt.Errorf("intelligence: no image returned: %w", shared.ErrUnavailable)

// Generator is the model call used by the service. *Client and
// *genai.Models both satisfy it.
type Generator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// BinSuggestion proposes moving a SKU to another aisle.
type BinSuggestion struct {
	SKU            string `json:"sku"`
	SuggestedAisle string `json:"suggestedAisle"`
	Reason         string `json:"reason"`
}

// Config selects models.
type Config struct {
	TextModel  string
	ImageModel string
}

// Service wraps the generative calls with caching and fallbacks.
type Service struct {
	generator  Generator
	cache      *Cache
	logger     *slog.Logger
	textModel  string
	imageModel string
	flights    singleflight.Group
}

// NewService constructs the service.
func NewService(generator Generator, cache *Cache, logger *slog.Logger, cfg Config) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.TextModel == "" {
		cfg.TextModel = DefaultTextModel
	}
	if cfg.ImageModel == "" {
		cfg.ImageModel = DefaultImageModel
	}
	return &Service{generator: generator, cache: cache, logger: logger, textModel: cfg.TextModel, imageModel: cfg.ImageModel}
}

type stockLine struct {
	SKU      string `json:"sku"`
	Name     string `json:"name"`
	Qty      int    `json:"qty"`
	Min      int    `json:"min"`
	Category string `json:"category"`
}

func stockProjection(items []inventory.Item) []stockLine {
	out := make([]stockLine, len(items))
	for i, item := range items {
		out[i] = stockLine{SKU: item.SKU, Name: item.Name, Qty: item.Quantity, Min: item.MinStock, Category: item.Category}
	}
	return out
}

func analysisPrompt(projection []byte) string {
	return "As a warehouse optimization AI, analyze the current inventory and suggest items that need attention.\n" +
		"Current Inventory: " + string(projection) + "\n\n" +
		"Identify:\n" +
		"1. Critical low stock items.\n" +
		"2. Potential overstock (items far exceeding minStock).\n" +
		"3. Suggestions for minStock adjustments based on typical warehouse velocity.\n\n" +
		"Provide your response in a clear, professional summary."
}

// AnalyzeStock returns a free-text stock analysis, or FallbackAnalysis.
func (s *Service) AnalyzeStock(ctx context.Context, items []inventory.Item) string {
	text, err := s.Analyze(ctx, items)
	if err != nil {
		s.logger.Warn("stock analysis failed", slog.Any("error", err))
		return FallbackAnalysis
	}
	return text
}

// Analyze is AnalyzeStock without the fallback. Identical inventories share
// one cached result and concurrent identical calls share one model request.
func (s *Service) Analyze(ctx context.Context, items []inventory.Item) (string, error) {
	projection, err := json.Marshal(stockProjection(items))
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(projection)
	digest := hex.EncodeToString(sum[:])

	val, err, _ := collapse(ctx, &s.flights, "analysis:"+digest, func(ctx context.Context) (any, error) {
		var text string
		err := s.cache.FetchJSON(ctx, s.cache.Key("analysis", s.textModel, digest), &text, func(ctx context.Context) (any, error) {
			resp, err := s.generator.GenerateContent(ctx, s.textModel, userContent(genai.NewPartFromText(analysisPrompt(projection))), nil)
			if err != nil {
				return nil, err
			}
			out := strings.TrimSpace(responseText(resp))
			if out == "" {
				return nil, fmt.Errorf("intelligence: empty analysis: %w", shared.ErrUnavailable)
			}
			return out, nil
		})
		return text, err
	})
	if err != nil {
		return "", err
	}
	return val.(string), nil
}

// DefaultImagePrompt is used when the caller supplies no prompt.
func DefaultImagePrompt(name string) string {
	return "A high quality professional industrial photo of " + name
}

// EditImage generates or edits a product image and returns it as a PNG
// data URL. source may be a data URL or bare base64.
func (s *Service) EditImage(ctx context.Context, prompt, source string) (string, error) {
	parts := []*genai.Part{genai.NewPartFromText(prompt)}
	if source != "" {
		data := source
		if idx := strings.Index(source, ","); idx >= 0 {
			data = source[idx+1:]
		}
		raw, err := base64.StdEncoding.DecodeString(data)
		if err != nil {
			return "", fmt.Errorf("intelligence: source image is not base64: %w", shared.ErrValidation)
		}
		parts = append(parts, genai.NewPartFromBytes(raw, "image/png"))
	}
	resp, err := s.generator.GenerateContent(ctx, s.imageModel, userContent(parts...), nil)
	if err != nil {
		s.logger.Error("image edit failed", slog.Any("error", err))
		return "", err
	}
	blob, ok := responseImage(resp)
	if !ok {
		return "", ErrNoImage
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(blob.Data), nil
}

var binSuggestionSchema = &genai.Schema{
	Type: genai.TypeArray,
	Items: &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"sku":            {Type: genai.TypeString},
			"suggestedAisle": {Type: genai.TypeString},
			"reason":         {Type: genai.TypeString},
		},
		Required: []string{"sku", "suggestedAisle", "reason"},
	},
}

type binLine struct {
	SKU      string `json:"sku"`
	Category string `json:"category"`
	Aisle    string `json:"aisle"`
}

// SuggestBinMoves asks for aisle moves that group categories. Any failure
// yields an empty list.
func (s *Service) SuggestBinMoves(ctx context.Context, items []inventory.Item) []BinSuggestion {
	lines := make([]binLine, len(items))
	for i, item := range items {
		lines[i] = binLine{SKU: item.SKU, Category: item.Category, Aisle: item.Location.Aisle}
	}
	projection, err := json.Marshal(lines)
	if err != nil {
		return []BinSuggestion{}
	}
	prompt := "Given this warehouse inventory: " + string(projection) + "\n" +
		"Suggest moving items between aisles (A, B, C, D) to group similar categories together for better picking efficiency.\n" +
		"Return a list of suggested moves."
	resp, err := s.generator.GenerateContent(ctx, s.textModel, userContent(genai.NewPartFromText(prompt)), &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   binSuggestionSchema,
	})
	if err != nil {
		s.logger.Warn("bin optimisation failed", slog.Any("error", err))
		return []BinSuggestion{}
	}
	var out []BinSuggestion
	if err := json.Unmarshal([]byte(responseText(resp)), &out); err != nil {
		s.logger.Warn("bin optimisation returned invalid json", slog.Any("error", err))
		return []BinSuggestion{}
	}
	if out == nil {
		out = []BinSuggestion{}
	}
	return out
}
