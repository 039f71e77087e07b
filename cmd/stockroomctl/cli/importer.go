package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// ImportRow is one row of the server's bulk-import response.
type ImportRow struct {
	ItemID string `json:"itemId"`
	SKU    string `json:"sku"`
	Merged bool   `json:"merged"`
	Delta  int    `json:"delta"`
}

// ImportSummary mirrors the server's bulk-import response.
type ImportSummary struct {
	Created int         `json:"created"`
	Merged  int         `json:"merged"`
	Rows    []ImportRow `json:"rows"`
}

// Importer posts CSV files to a running stockroom API.
type Importer struct {
	baseURL    string
	operator   string
	httpClient *http.Client
}

// NewImporter constructs an importer for the given server base URL.
func NewImporter(baseURL, operator string, timeout time.Duration) *Importer {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Importer{
		baseURL:    strings.TrimRight(baseURL, "/"),
		operator:   operator,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Import uploads body to POST /api/inventory/import. idempotencyKey may be empty.
func (i *Importer) Import(ctx context.Context, body io.Reader, idempotencyKey string) (ImportSummary, error) {
	if i == nil || i.baseURL == "" {
		return ImportSummary{}, errors.New("import cli: server url not configured")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, i.baseURL+"/api/inventory/import", body)
	if err != nil {
		return ImportSummary{}, err
	}
	req.Header.Set("Content-Type", "text/csv")
	if i.operator != "" {
		req.Header.Set("X-Operator", i.operator)
	}
	if idempotencyKey != "" {
		req.Header.Set("Idempotency-Key", idempotencyKey)
	}
	resp, err := i.httpClient.Do(req)
	if err != nil {
		return ImportSummary{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return ImportSummary{}, fmt.Errorf("import cli: server returned %d: %s", resp.StatusCode, strings.TrimSpace(string(detail)))
	}
	var summary ImportSummary
	if err := json.NewDecoder(resp.Body).Decode(&summary); err != nil {
		return ImportSummary{}, fmt.Errorf("import cli: decode response: %w", err)
	}
	return summary, nil
}
