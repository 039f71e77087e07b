package inventory

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/odyssey-erp/stockroom/internal/shared"
)

// Defaults applied to rows coming from a delimited import file.
const (
	ImportCategory    = "Imported"
	ImportMinStock    = 10
	ImportDescription = "Imported via CSV"
)

// importColumns is the column order after the header line.
var importColumns = []string{"sku", "name", "quantity", "aisle", "shelf", "bin"}

// ParseImport reads a header line followed by rows of
// SKU,name,quantity,aisle,shelf,bin. Blank lines and rows without a SKU are
// skipped; an unparsable quantity becomes zero.
func ParseImport(r io.Reader) ([]Item, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	var items []Item
	header := true
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("inventory: parse import: %v: %w", err, shared.ErrValidation)
		}
		if header {
			header = false
			continue
		}
		if blank(record) {
			continue
		}
		cols := make([]string, len(importColumns))
		for i := range cols {
			if i < len(record) {
				cols[i] = strings.TrimSpace(record[i])
			}
		}
		if cols[0] == "" {
			continue
		}
		qty, err := strconv.Atoi(cols[2])
		if err != nil || qty < 0 {
			qty = 0
		}
		items = append(items, Item{
			SKU:         cols[0],
			Name:        cols[1],
			Category:    ImportCategory,
			Quantity:    qty,
			MinStock:    ImportMinStock,
			Location:    Location{Aisle: cols[3], Shelf: cols[4], Bin: cols[5]},
			Description: ImportDescription,
		})
	}
	return items, nil
}

func blank(record []string) bool {
	for _, field := range record {
		if strings.TrimSpace(field) != "" {
			return false
		}
	}
	return true
}
