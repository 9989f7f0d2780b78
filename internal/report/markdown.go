package report

import (
	"fmt"
	"strings"
	"time"
)

// RenderMarkdown renders the report as Markdown.
func RenderMarkdown(r *Report) string {
	var sb strings.Builder

	sb.WriteString("# Bimonthly Period Returns\n\n")
	sb.WriteString(fmt.Sprintf("Generated: %s | Run: %s | Source: %s\n\n",
		r.GeneratedAt.Format(time.RFC3339), r.RunID, r.Source))
	sb.WriteString(fmt.Sprintf("Span: %s to %s | Periods: %d | Rows: %d | Dropped: %d\n\n",
		r.SpanStart, r.SpanEnd, r.Periods, len(r.Table.Rows), r.Dropped()))

	if r.Table.Empty() {
		sb.WriteString("No data.\n")
		return sb.String()
	}

	// Returns
	sb.WriteString("## Returns (%)\n\n")
	sb.WriteString("| Period |")
	for _, id := range r.Table.Instruments {
		sb.WriteString(" " + id + " |")
	}
	sb.WriteString("\n|--------|")
	for range r.Table.Instruments {
		sb.WriteString("------:|")
	}
	sb.WriteString("\n")
	for _, row := range r.Table.Rows {
		sb.WriteString("| " + row.Label() + " |")
		for _, id := range r.Table.Instruments {
			sb.WriteString(" " + formatPercent(row.Value(id), "n/a") + " |")
		}
		sb.WriteString("\n")
	}
	sb.WriteString("\n")

	// Summary
	if len(r.Summary) > 0 {
		sb.WriteString("## Summary\n\n")
		sb.WriteString("| Instrument | Periods | Mean | StdDev | Min | Max | Positive |\n")
		sb.WriteString("|------------|--------:|-----:|-------:|----:|----:|---------:|\n")
		for _, s := range r.Summary {
			sb.WriteString(fmt.Sprintf("| %s | %d | %s | %s | %s | %s | %.0f%% |\n",
				s.Instrument, s.Periods,
				formatPercent(s.Mean, "n/a"), formatPercent(s.StdDev, "n/a"),
				formatPercent(s.Min, "n/a"), formatPercent(s.Max, "n/a"),
				s.PositiveRate*100))
		}
		sb.WriteString("\n")
	}

	return sb.String()
}
