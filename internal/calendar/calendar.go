// Package calendar derives the bimonthly trading periods: each one opens on the
// 4th Monday of an even anchor month and closes on the 3rd Friday two months later.
package calendar

import (
	"errors"
	"fmt"
	"iter"
	"time"

	"PeriodReturns/internal/model"
)

var (
	ErrInvalidMonth = errors.New("month out of range")
	ErrInvalidYear  = errors.New("year out of range")
)

// Error reports an invalid (year, month) passed to the date arithmetic.
type Error struct {
	Op    string
	Year  int
	Month time.Month
	Err   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("calendar %s(%d, %d): %v", e.Op, e.Year, int(e.Month), e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

func validate(op string, year int, month time.Month) error {
	if month < time.January || month > time.December {
		return &Error{Op: op, Year: year, Month: month, Err: ErrInvalidMonth}
	}
	if year < 1 || year > 9999 {
		return &Error{Op: op, Year: year, Month: month, Err: ErrInvalidYear}
	}
	return nil
}

// FourthMonday returns the first Monday on or after the 1st of the month plus three weeks.
func FourthMonday(year int, month time.Month) (model.Date, error) {
	if err := validate("FourthMonday", year, month); err != nil {
		return model.Date{}, err
	}
	first := model.NewDate(year, month, 1)
	toMonday := (int(time.Monday) - int(first.Weekday()) + 7) % 7
	return first.AddDays(toMonday + 21), nil
}

// ThirdFriday returns the 3rd Friday of the month two months after the anchor
// month, rolling the year over past December.
func ThirdFriday(year int, month time.Month) (model.Date, error) {
	if err := validate("ThirdFriday", year, month); err != nil {
		return model.Date{}, err
	}
	y, m := addMonths(year, month, 2)
	if y > 9999 {
		return model.Date{}, &Error{Op: "ThirdFriday", Year: year, Month: month, Err: ErrInvalidYear}
	}
	first := model.NewDate(y, m, 1)
	toFriday := (int(time.Friday) - int(first.Weekday()) + 7) % 7
	return first.AddDays(14 + toFriday), nil
}

// Anchor returns the Period anchored on (year, month).
func Anchor(year int, month time.Month) (model.Period, error) {
	start, err := FourthMonday(year, month)
	if err != nil {
		return model.Period{}, err
	}
	end, err := ThirdFriday(year, month)
	if err != nil {
		return model.Period{}, err
	}
	return model.Period{Start: start, End: end}, nil
}

// FirstAnchor rounds d's month up to the next even month.
func FirstAnchor(d model.Date) (int, time.Month) {
	year, month := d.Year, d.Month
	if month%2 != 0 {
		year, month = addMonths(year, month, 1)
	}
	return year, month
}

// EnumeratePeriods yields the periods anchored from spanStart's (rounded up)
// even month onward and stops before the first period whose start falls after
// spanEnd. Each range over the sequence starts again from spanStart.
func EnumeratePeriods(spanStart, spanEnd model.Date) iter.Seq[model.Period] {
	return func(yield func(model.Period) bool) {
		year, month := FirstAnchor(spanStart)
		for {
			p, err := Anchor(year, month)
			if err != nil {
				// only reachable at the year 9999 boundary
				return
			}
			if p.Start.After(spanEnd) {
				return
			}
			if !yield(p) {
				return
			}
			year, month = addMonths(year, month, 2)
		}
	}
}

// Periods collects EnumeratePeriods into a slice.
func Periods(spanStart, spanEnd model.Date) []model.Period {
	var out []model.Period
	for p := range EnumeratePeriods(spanStart, spanEnd) {
		out = append(out, p)
	}
	return out
}

func addMonths(year int, month time.Month, n int) (int, time.Month) {
	m := int(month) - 1 + n
	return year + m/12, time.Month(m%12 + 1)
}
