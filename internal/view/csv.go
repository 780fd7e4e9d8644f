package view

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/Azaziop/systeme-detect-fraude/internal/core"
)

// WriteCSV exports a ledger snapshot for download. Column order mirrors the
// on-screen table; unscored records export an empty score.
func WriteCSV(w io.Writer, snapshot []core.Transaction) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"Date", "Amount", "Merchant", "Category", "Status", "Score", "Description"}); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, t := range snapshot {
		score := ""
		if t.FraudScore != nil {
			score = fmt.Sprintf("%.2f%%", *t.FraudScore*100)
		}
		record := []string{
			t.Timestamp,
			strconv.FormatFloat(t.Amount, 'f', 2, 64),
			t.Merchant,
			t.Category,
			string(t.Status),
			score,
			t.Description,
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write csv record: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}
