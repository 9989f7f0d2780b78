package model

import "fmt"

// Period is a calendar window anchored on an even month: it opens on the
// anchor's 4th Monday and closes on the 3rd Friday two months later.
type Period struct {
	Start Date
	End   Date
}

func (p Period) String() string { return fmt.Sprintf("%s to %s", p.Start, p.End) }

// ResolvedPeriod is a Period whose bounds were snapped onto trading dates.
type ResolvedPeriod struct {
	Calendar Period
	Start    Date // first trading date on or after Calendar.Start
	End      Date // last trading date on or before Calendar.End
}

// Label is the human readable row key, e.g. "2024-02-26 to 2024-04-19".
func (r ResolvedPeriod) Label() string { return fmt.Sprintf("%s to %s", r.Start, r.End) }
