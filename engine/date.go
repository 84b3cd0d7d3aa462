/*
date.go - Day-granularity dates and HH:MM clock arithmetic

PURPOSE:
  Everything in this engine is minute math anchored at calendar days.
  Date is a day-granularity point in time (always UTC, always midnight);
  clock values are minutes-of-day in [0, 1440).

KEY CONCEPTS:
  - Date: a calendar day, the anchor for shifts and norm calculation
  - ParseClock: "HH:MM" -> minutes-of-day, with a sentinel invalid result
  - MinutesPerDay: 1440, the boundary at which shifts are split

INVALID INPUT POLICY:
  ParseClock and ParseDate never panic. A malformed clock string yields
  (InvalidClock, false); a malformed date yields an error. Callers inside
  the engine treat invalid clocks as zero contribution so one bad record
  cannot abort a batch.

SEE ALSO:
  - split.go: Uses ParseClock and the midnight-crossing rule
  - period.go: Day iteration over periods
*/
package engine

import (
	"fmt"
	"time"
)

// MinutesPerDay is the segment-split boundary for midnight-crossing shifts.
const MinutesPerDay = 1440

// InvalidClock is the sentinel returned for malformed HH:MM strings.
const InvalidClock = -1

// =============================================================================
// DATE - Day-granularity calendar date
// =============================================================================

// Date is a calendar day. The zero value is "no date".
type Date struct {
	Time time.Time
}

// NewDate constructs a Date at midnight UTC.
func NewDate(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses an ISO "YYYY-MM-DD" string.
func ParseDate(iso string) (Date, error) {
	t, err := time.Parse("2006-01-02", iso)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: %w", iso, err)
	}
	return Date{Time: t.UTC()}, nil
}

// Comparison
func (d Date) Before(other Date) bool        { return d.normalize().Before(other.normalize()) }
func (d Date) After(other Date) bool         { return d.normalize().After(other.normalize()) }
func (d Date) Equal(other Date) bool         { return d.normalize().Equal(other.normalize()) }
func (d Date) BeforeOrEqual(other Date) bool { return d.Before(other) || d.Equal(other) }
func (d Date) AfterOrEqual(other Date) bool  { return d.After(other) || d.Equal(other) }

func (d Date) normalize() time.Time {
	return time.Date(d.Time.Year(), d.Time.Month(), d.Time.Day(), 0, 0, 0, 0, time.UTC)
}

// Arithmetic
func (d Date) AddDays(n int) Date { return Date{Time: d.Time.AddDate(0, 0, n)} }

// DaysBetween returns to - from in whole days.
func DaysBetween(from, to Date) int {
	return int(to.normalize().Sub(from.normalize()).Hours() / 24)
}

// Properties
func (d Date) Year() int             { return d.Time.Year() }
func (d Date) Month() time.Month     { return d.Time.Month() }
func (d Date) Day() int              { return d.Time.Day() }
func (d Date) Weekday() time.Weekday { return d.normalize().Weekday() }
func (d Date) IsZero() bool          { return d.Time.IsZero() }

// IsWeekend reports whether the date is a Saturday or Sunday.
func (d Date) IsWeekend() bool {
	wd := d.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// ISOWeek returns the ISO 8601 year and week number (weeks start Monday).
func (d Date) ISOWeek() (int, int) { return d.normalize().ISOWeek() }

// ISO returns the canonical "YYYY-MM-DD" form, used as map keys throughout.
func (d Date) ISO() string { return d.normalize().Format("2006-01-02") }

func (d Date) String() string { return d.ISO() }

// =============================================================================
// CLOCK - Minutes-of-day parsing
// =============================================================================

// ParseClock converts "HH:MM" to minutes-of-day. Hours must be 0-23 and
// minutes 0-59; anything else returns (InvalidClock, false).
func ParseClock(s string) (int, bool) {
	if len(s) != 5 || s[2] != ':' {
		return InvalidClock, false
	}
	h, okH := atoi2(s[0], s[1])
	m, okM := atoi2(s[3], s[4])
	if !okH || !okM || h > 23 || m > 59 {
		return InvalidClock, false
	}
	return h*60 + m, true
}

func atoi2(a, b byte) (int, bool) {
	if a < '0' || a > '9' || b < '0' || b > '9' {
		return 0, false
	}
	return int(a-'0')*10 + int(b-'0'), true
}

// FormatClock renders minutes-of-day as "HH:MM". Values outside a single
// day wrap; negative values render as "00:00".
func FormatClock(minutes int) string {
	if minutes < 0 {
		minutes = 0
	}
	minutes %= MinutesPerDay
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}
