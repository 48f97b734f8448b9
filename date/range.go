package date

import (
	"fmt"
	"time"
)

// Range represents a range of dates, boundaries included.
type Range struct{ From, To Date }

// Span returns the smallest Range containing all the dates.
//
// ok is false if there are no dates.
func Span(dates ...Date) (r Range, ok bool) {
	for i, d := range dates {
		if i == 0 || d.Before(r.From) {
			r.From = d
		}
		if i == 0 || d.After(r.To) {
			r.To = d
		}
	}
	return r, len(dates) > 0
}

// Pad returns the range widened by before days on the left and after days on the right.
func (r Range) Pad(before, after int) Range { return Range{From: r.From.Add(-before), To: r.To.Add(after)} }

// Clamp returns the range with its end moved back to max when it goes past it.
func (r Range) Clamp(max Date) Range {
	if r.To.After(max) {
		r.To = max
	}
	return r
}

func (r Range) String() string { return fmt.Sprintf("%s..%s", r.From, r.To) }

// return the period of this range if it's a standard one.
func (r Range) Period() (p Period, ok bool) {
	switch {
	case r.From == r.To:
		return Daily, true
	case r.From.Weekday() == time.Monday && r.From.EndOf(Weekly) == r.To:
		return Weekly, true
	case r.From.Day() == 1 && r.From.EndOf(Monthly) == r.To:
		return Monthly, true
	case r.From.StartOf(Quarterly) == r.From && r.From.EndOf(Quarterly) == r.To:
		return Quarterly, true
	case r.From.StartOf(Yearly) == r.From && r.From.EndOf(Yearly) == r.To:
		return Yearly, true
	default:
		return Daily, false
	}
}

// Identifier compute a unique identifier for the Range.
// If the period is defined, use a short insighful name
func (r Range) Identifier() string {
	p, ok := r.Period()
	if !ok {
		return fmt.Sprintf("%s_%s", r.From, r.To)
	}

	switch p {
	case Daily:
		return r.From.String()
	case Weekly:
		_, week := r.From.ISOWeek()
		return fmt.Sprintf("%d-W%02d", r.From.Year(), week)
	case Monthly:
		return r.From.Format("2006-01")
	case Quarterly:
		return fmt.Sprintf("%d-Q%d", r.From.Year(), (r.From.Month()-1)/3+1)
	case Yearly:
		return r.From.Format("2006")
	default:
		panic("unknown period")
	}
}
