/*
metrics.go - Per-shift minute breakdowns

PURPOSE:
  For one shift occurrence this computes:
  - worked minutes (break policy applied)
  - night minutes (night-window overlap with all-or-nothing eligibility)
  - weekend/holiday minutes (proportional attribution across day segments)
  - per-shift overtime (non-SIRV regimes only)

NIGHT WINDOW:
  The night band runs 22:00-06:00, or 20:00-06:00 for young workers. A
  window spans two calendar days, and a midnight-crossing shift can touch
  windows anchored on the day before or after, so overlap is summed over
  a 4-day scan (yesterday .. day+2). If the total overlap is under the
  180-minute eligibility threshold, night minutes are zeroed entirely:
  eligibility is all-or-nothing, not partial credit.

ROUNDING POLICY (load-bearing):
  Worked minutes are allocated to segments as
  floor(worked * segDuration / totalDuration), with the LAST segment
  receiving the residual so the allocations always reconcile to worked
  minutes exactly. Multiple allocations are mathematically valid; only
  this one is correct here. Do not reorder.
*/
package engine

import "context"

// =============================================================================
// NIGHT WINDOW CONSTANTS
// =============================================================================

const (
	// NightWindowStart is 22:00 in minutes-of-day.
	NightWindowStart = 22 * 60
	// YoungWorkerNightStart is 20:00; young workers get the wider band.
	YoungWorkerNightStart = 20 * 60
	// NightWindowEnd is 06:00 on the following day.
	NightWindowEnd = 6 * 60
	// NightEligibilityMinutes is the all-or-nothing threshold.
	NightEligibilityMinutes = 180
)

// ShiftMetrics is the per-occurrence breakdown.
type ShiftMetrics struct {
	Valid           bool
	CrossesMidnight bool

	DurationMinutes int
	WorkedMinutes   int
	NightMinutes    int
	HolidayMinutes  int
	WeekendMinutes  int
	OvertimeMinutes int

	// Exclusive split of worked minutes by day class, used for overtime
	// bucket caps. Holiday wins over weekend when a day is both.
	ClassSplit DayClassSplit
}

// DayClassSplit partitions worked minutes by the class of the day each
// segment falls on. The three parts always sum to WorkedMinutes.
type DayClassSplit struct {
	Holiday int
	Restday int
	Weekday int
}

// MetricsCalculator computes ShiftMetrics against an injected holiday
// resolver. The zero value (nil resolver) treats every day as non-holiday.
type MetricsCalculator struct {
	Holidays HolidayResolver
}

// Calculate computes the breakdown for shift anchored at day. Malformed
// clock strings yield a zeroed, invalid result and no error: downstream
// validators are expected to have screened formats already, and a bad
// record must not abort a batch.
func (c *MetricsCalculator) Calculate(ctx context.Context, day Date, shift Shift, emp Employee) (ShiftMetrics, error) {
	split := SplitShift(day, shift.StartTime, shift.EndTime)
	if !split.Valid {
		return ShiftMetrics{}, nil
	}

	worked := split.Duration
	if !shift.BreakIncluded {
		br := shift.BreakMinutes
		if br > worked {
			br = worked
		}
		worked -= br
	}

	m := ShiftMetrics{
		Valid:           true,
		CrossesMidnight: split.CrossesMidnight,
		DurationMinutes: split.Duration,
		WorkedMinutes:   worked,
	}

	m.NightMinutes = nightOverlap(split, emp.YoungWorker)
	if m.NightMinutes > worked {
		m.NightMinutes = worked
	}

	alloc := allocateWorked(split.Segments, worked, split.Duration)
	for i, seg := range split.Segments {
		cd, err := ClassifyDay(ctx, c.Holidays, seg.Date)
		if err != nil {
			return ShiftMetrics{}, err
		}
		if cd.IsHoliday {
			m.HolidayMinutes += alloc[i]
		}
		if cd.IsWeekend {
			m.WeekendMinutes += alloc[i]
		}
		switch {
		case cd.IsHoliday:
			m.ClassSplit.Holiday += alloc[i]
		case cd.IsWeekend:
			m.ClassSplit.Restday += alloc[i]
		default:
			m.ClassSplit.Weekday += alloc[i]
		}
	}

	// Per-shift overtime applies to fixed regimes only; SIRV overtime is
	// a period-level quantity (see sirv.go).
	if !emp.IsSIRV && shift.PlannedMinutes > 0 && worked > shift.PlannedMinutes {
		m.OvertimeMinutes = worked - shift.PlannedMinutes
	}

	return m, nil
}

// FromSnapshot converts a precomputed entry snapshot into metrics. The
// snapshot is authoritative; the entry's anchor day classifies the whole
// worked amount for bucket caps since segment detail is gone.
func (c *MetricsCalculator) FromSnapshot(ctx context.Context, day Date, snap MinuteSnapshot) (ShiftMetrics, error) {
	m := ShiftMetrics{
		Valid:           true,
		DurationMinutes: snap.WorkMinutes,
		WorkedMinutes:   snap.WorkMinutes,
		NightMinutes:    snap.NightMinutes,
		HolidayMinutes:  snap.HolidayMinutes,
		WeekendMinutes:  snap.WeekendMinutes,
	}
	cd, err := ClassifyDay(ctx, c.Holidays, day)
	if err != nil {
		return ShiftMetrics{}, err
	}
	switch {
	case cd.IsHoliday:
		m.ClassSplit.Holiday = snap.WorkMinutes
	case cd.IsWeekend:
		m.ClassSplit.Restday = snap.WorkMinutes
	default:
		m.ClassSplit.Weekday = snap.WorkMinutes
	}
	return m, nil
}

// nightOverlap sums the overlap between the shift's absolute interval and
// every night window anchored on yesterday .. day+2, then applies the
// all-or-nothing eligibility threshold.
func nightOverlap(split SplitResult, youngWorker bool) int {
	nightStart := NightWindowStart
	if youngWorker {
		nightStart = YoungWorkerNightStart
	}

	total := 0
	for k := -1; k <= 2; k++ {
		winStart := k*MinutesPerDay + nightStart
		winEnd := (k+1)*MinutesPerDay + NightWindowEnd
		total += overlap(split.StartMinute, split.EndMinute, winStart, winEnd)
	}

	if total < NightEligibilityMinutes {
		return 0
	}
	return total
}

func overlap(aStart, aEnd, bStart, bEnd int) int {
	start := aStart
	if bStart > start {
		start = bStart
	}
	end := aEnd
	if bEnd < end {
		end = bEnd
	}
	if end <= start {
		return 0
	}
	return end - start
}

// allocateWorked distributes worked minutes across segments proportionally
// to segment duration. Floor division loses minutes; the last segment
// absorbs the residual so the parts reconcile exactly.
func allocateWorked(segments []Segment, worked, totalDuration int) []int {
	alloc := make([]int, len(segments))
	if len(segments) == 0 || totalDuration == 0 {
		return alloc
	}
	sum := 0
	for i, seg := range segments {
		if i == len(segments)-1 {
			alloc[i] = worked - sum
			break
		}
		alloc[i] = worked * seg.Duration / totalDuration
		sum += alloc[i]
	}
	return alloc
}
