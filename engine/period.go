package engine

import "time"

// =============================================================================
// PERIOD - The time boundary for norm and summary calculation
// =============================================================================

// Period is an inclusive date range. Norms, summaries and SIRV allocation
// are always computed for a period, never at a point in time.
type Period struct {
	Start Date
	End   Date
}

// MonthPeriod returns the calendar-month period for year/month.
func MonthPeriod(year int, month time.Month) Period {
	start := NewDate(year, month, 1)
	end := Date{Time: time.Date(year, month+1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, -1)}
	return Period{Start: start, End: end}
}

// Contains reports whether d falls within [Start, End].
func (p Period) Contains(d Date) bool {
	return d.AfterOrEqual(p.Start) && d.BeforeOrEqual(p.End)
}

// Days returns every day in the period in ascending order.
func (p Period) Days() []Date {
	var days []Date
	for cur := p.Start; cur.BeforeOrEqual(p.End); cur = cur.AddDays(1) {
		days = append(days, cur)
	}
	return days
}

// Valid reports whether the period is well-formed.
func (p Period) Valid() bool {
	return !p.Start.IsZero() && !p.End.IsZero() && !p.End.Before(p.Start)
}

// ClampToEmployment narrows the period to the employee's employment range
// (inclusive bounds). The second return is false when the ranges do not
// overlap at all.
func (p Period) ClampToEmployment(e Employee) (Period, bool) {
	out := p
	if !e.StartDate.IsZero() && e.StartDate.After(out.Start) {
		out.Start = e.StartDate
	}
	if e.EndDate != nil && e.EndDate.Before(out.End) {
		out.End = *e.EndDate
	}
	if out.End.Before(out.Start) {
		return Period{}, false
	}
	return out, true
}

func (p Period) String() string {
	return "[" + p.Start.String() + ", " + p.End.String() + "]"
}
