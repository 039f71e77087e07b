package audit

import (
	"encoding/csv"
	"io"
	"strconv"
	"time"
)

var csvHeader = []string{"ID", "Timestamp", "Type", "SKU", "Item", "Delta", "Reason", "User"}

// WriteCSV serialises entries, in the given order, to CSV with a header row.
func WriteCSV(w io.Writer, entries []Entry) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(csvHeader); err != nil {
		return err
	}
	for _, e := range entries {
		if err := writer.Write([]string{
			e.ID,
			e.Timestamp.UTC().Format(time.RFC3339),
			string(e.Type),
			e.SKU,
			e.ItemName,
			strconv.Itoa(e.QuantityDelta),
			e.Reason,
			e.User,
		}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}
