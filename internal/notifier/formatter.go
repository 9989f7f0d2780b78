package notifier

import (
	"fmt"
	"html"
	"math"
	"strings"

	"PeriodReturns/internal/model"
	"PeriodReturns/internal/report"
)

// MaxMessageLen is Telegram's limit for one text message.
const MaxMessageLen = 4096

// DefaultRecentRows is how many of the latest periods a report message shows.
const DefaultRecentRows = 12

// FormatReport renders the latest periods and the per-instrument summary as
// an HTML message. Older rows are dropped until the message fits.
func FormatReport(rep *report.Report, recent int) string {
	if rep == nil || rep.Table.Empty() {
		return "📉 <b>Period returns</b>\n\nNo data."
	}
	if recent <= 0 {
		recent = DefaultRecentRows
	}
	rows := rep.Table.Rows
	if len(rows) > recent {
		rows = rows[len(rows)-recent:]
	}

	for {
		msg := formatReport(rep, rows)
		if len(msg) <= MaxMessageLen || len(rows) <= 1 {
			return msg
		}
		rows = rows[1:]
	}
}

func formatReport(rep *report.Report, rows []model.PeriodReturnRow) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📈 <b>Period returns</b> | %s\n", rep.GeneratedAt.Format("2006-01-02"))
	fmt.Fprintf(&b, "Span %s to %s, %d periods (%d dropped)\n\n",
		rep.SpanStart, rep.SpanEnd, len(rep.Table.Rows), rep.Dropped())

	b.WriteString("<pre>")
	fmt.Fprintf(&b, "%-10s", "start")
	for _, id := range rep.Table.Instruments {
		fmt.Fprintf(&b, " %9s", html.EscapeString(truncate(id, 9)))
	}
	b.WriteString("\n")
	for _, row := range rows {
		fmt.Fprintf(&b, "%-10s", row.Period.Start)
		for _, id := range rep.Table.Instruments {
			fmt.Fprintf(&b, " %9s", percent(row.Value(id)))
		}
		b.WriteString("\n")
	}
	b.WriteString("</pre>\n")

	if len(rep.Summary) > 0 {
		b.WriteString("\n<b>Summary</b>\n")
		for _, s := range rep.Summary {
			fmt.Fprintf(&b, "%s: mean %s%%, σ %.2f, min %s%%, max %s%%, up %.0f%%\n",
				html.EscapeString(s.Instrument), percent(s.Mean), s.StdDev, percent(s.Min), percent(s.Max), s.PositiveRate*100)
		}
	}
	return b.String()
}

// FormatHelp lists the bot commands.
func FormatHelp() string {
	return "<b>Commands</b>\n/report - recompute and send the latest period returns\n/last - resend the last computed table\n/help - this message"
}

// FormatError renders a failed run.
func FormatError(err error) string {
	return fmt.Sprintf("⚠️ <b>Period returns failed</b>\n%s", html.EscapeString(err.Error()))
}

func percent(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "n/a"
	}
	return fmt.Sprintf("%+.2f", v)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
