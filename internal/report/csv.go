package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"PeriodReturns/internal/model"
)

// WriteCSV writes one row per period: period,start,end,<instrument...>.
func WriteCSV(w io.Writer, t *model.ResultTable) error {
	cw := csv.NewWriter(w)

	header := append([]string{"period", "start", "end"}, t.Instruments...)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, row := range t.Rows {
		rec := make([]string, 0, len(header))
		rec = append(rec, row.Label(), row.Period.Start.String(), row.Period.End.String())
		for _, id := range t.Instruments {
			rec = append(rec, formatPercent(row.Value(id), ""))
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("write csv row %s: %w", row.Label(), err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// RenderCSV renders the table as a CSV string.
func RenderCSV(t *model.ResultTable) string {
	var sb strings.Builder
	_ = WriteCSV(&sb, t)
	return sb.String()
}
