/*
sirv.go - Period-level overtime allocation for flexible regimes

PURPOSE:
  SIRV (uneven distribution) employees have no per-day overtime: a period
  total governs. This computes the absence-adjusted period norm, converts
  worked minutes with the night coefficient, derives period overtime and
  back-allocates it onto concrete days and entries.

ALLOCATION (load-bearing, do not reorder):
  1. adjustedNorm = baseNorm - sum(plannedMinutes of vacation/sick entries)
  2. converted    = round(worked + night x (nightCoeff - 1))
  3. overtime     = max(0, converted - adjustedNorm)
  4. Walk distinct worked dates DESCENDING; greedily consume overtime
     against each date's local excess (dayWorked - dailyNorm, floored at
     0) until exhausted.
  5. If overtime remains, a fallback pass distributes the remainder
     proportionally against each date's worked capacity (not just its
     excess), again latest-date-first, and emits a warning finding.
  6. Within a date, minutes split across entries proportionally to worked
     share; the last entry in (scheduleID, shiftCode) order absorbs the
     rounding remainder.

  Several allocations are mathematically valid; only this one matches the
  statutory reporting downstream, so the order of operations is fixed.
*/
package engine

import (
	"context"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
)

// SIRVInput is the allocation request for one employee and period. The
// period is expected to be employment-clamped already; BaseNormMinutes is
// the unadjusted norm for that period.
type SIRVInput struct {
	Employee        Employee
	Period          Period
	Entries         []ScheduleEntry
	Shifts          map[string]Shift
	BaseNormMinutes int
}

// SIRVEntryAllocation is the overtime share of a single entry.
type SIRVEntryAllocation struct {
	ScheduleID      string
	ShiftCode       string
	Day             Date
	WorkedMinutes   int
	OvertimeMinutes int
}

// SIRVDayAllocation is the per-date rollup.
type SIRVDayAllocation struct {
	Date            Date
	WorkedMinutes   int
	OvertimeMinutes int
	Entries         []SIRVEntryAllocation
}

// SIRVResult is the full allocation outcome. Days are ascending by date;
// the backward order is an allocation detail, not an output order.
type SIRVResult struct {
	AdjustedNormMinutes    int
	ConvertedWorkedMinutes int
	OvertimeMinutes        int
	UsedFallback           bool
	Days                   []SIRVDayAllocation
	Violations             []Violation
}

// SIRVAllocator performs period-level allocation.
type SIRVAllocator struct {
	Holidays HolidayResolver
	Rates    PayRates
}

// Allocate computes and distributes period overtime.
func (a *SIRVAllocator) Allocate(ctx context.Context, in SIRVInput) (*SIRVResult, error) {
	if !in.Period.Valid() {
		return nil, ErrInvalidPeriod
	}

	calc := &MetricsCalculator{Holidays: a.Holidays}

	type entryWork struct {
		alloc SIRVEntryAllocation
	}
	byDay := make(map[string][]entryWork)
	var dates []Date

	workedTotal := 0
	nightTotal := 0
	absencePlanned := 0

	for _, entry := range in.Entries {
		if entry.EmployeeID != in.Employee.ID || !in.Period.Contains(entry.Day) {
			continue
		}
		shift, known := in.Shifts[entry.ShiftCode]
		if known && shift.IsAbsence() {
			absencePlanned += shift.PlannedMinutes
			continue
		}

		var m ShiftMetrics
		var err error
		switch {
		case entry.Snapshot != nil:
			m, err = calc.FromSnapshot(ctx, entry.Day, *entry.Snapshot)
		case known:
			m, err = calc.Calculate(ctx, entry.Day, shift, in.Employee)
		default:
			continue
		}
		if err != nil {
			return nil, err
		}
		if !m.Valid || m.WorkedMinutes == 0 {
			continue
		}

		key := entry.Day.ISO()
		if len(byDay[key]) == 0 {
			dates = append(dates, entry.Day)
		}
		byDay[key] = append(byDay[key], entryWork{alloc: SIRVEntryAllocation{
			ScheduleID:    entry.ScheduleID,
			ShiftCode:     entry.ShiftCode,
			Day:           entry.Day,
			WorkedMinutes: m.WorkedMinutes,
		}})
		workedTotal += m.WorkedMinutes
		nightTotal += m.NightMinutes
	}

	adjustedNorm := in.BaseNormMinutes - absencePlanned
	if adjustedNorm < 0 {
		adjustedNorm = 0
	}

	one := decimal.NewFromInt(1)
	converted := int(decimal.NewFromInt(int64(workedTotal)).
		Add(decimal.NewFromInt(int64(nightTotal)).Mul(a.Rates.NightCoefficient.Sub(one))).
		Round(0).IntPart())

	overtime := converted - adjustedNorm
	if overtime < 0 {
		overtime = 0
	}

	res := &SIRVResult{
		AdjustedNormMinutes:    adjustedNorm,
		ConvertedWorkedMinutes: converted,
		OvertimeMinutes:        overtime,
	}

	// Latest date first: the most recent days absorb overtime first.
	sort.Slice(dates, func(i, j int) bool { return dates[i].After(dates[j]) })

	dayWorked := make(map[string]int, len(dates))
	dayOvertime := make(map[string]int, len(dates))
	for _, d := range dates {
		for _, ew := range byDay[d.ISO()] {
			dayWorked[d.ISO()] += ew.alloc.WorkedMinutes
		}
	}

	remaining := overtime
	for _, d := range dates {
		if remaining == 0 {
			break
		}
		excess := dayWorked[d.ISO()] - in.Employee.WorkdayMinutes
		if excess <= 0 {
			continue
		}
		take := min(remaining, excess)
		dayOvertime[d.ISO()] += take
		remaining -= take
	}

	// Fallback: local excess was insufficient; spread the remainder
	// proportionally against worked capacity, latest date first. No
	// holiday/restday ordering applies here.
	if remaining > 0 && workedTotal > 0 {
		res.UsedFallback = true
		initial := remaining
		for _, d := range dates {
			if remaining == 0 {
				break
			}
			share := initial * dayWorked[d.ISO()] / workedTotal
			take := min(remaining, share)
			dayOvertime[d.ISO()] += take
			remaining -= take
		}
		if remaining > 0 && len(dates) > 0 {
			dayOvertime[dates[0].ISO()] += remaining
			remaining = 0
		}
		res.Violations = append(res.Violations, Violation{
			Type:       ViolationSIRVFallback,
			Severity:   SeverityWarning,
			EmployeeID: in.Employee.ID,
			Date:       in.Period.Start,
			EndDate:    in.Period.End,
			Measured:   initial,
			Threshold:  0,
			Message:    fmt.Sprintf("%d overtime minutes exceeded daily excess capacity; fallback allocation used", initial),
		})
	}

	// Materialize ascending day rollups with in-date entry splits.
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
	for _, d := range dates {
		key := d.ISO()
		entries := byDay[key]
		sort.SliceStable(entries, func(i, j int) bool {
			if entries[i].alloc.ScheduleID != entries[j].alloc.ScheduleID {
				return entries[i].alloc.ScheduleID < entries[j].alloc.ScheduleID
			}
			return entries[i].alloc.ShiftCode < entries[j].alloc.ShiftCode
		})

		day := SIRVDayAllocation{
			Date:            d,
			WorkedMinutes:   dayWorked[key],
			OvertimeMinutes: dayOvertime[key],
		}

		assigned := 0
		for i, ew := range entries {
			alloc := ew.alloc
			if i == len(entries)-1 {
				alloc.OvertimeMinutes = day.OvertimeMinutes - assigned
			} else if day.WorkedMinutes > 0 {
				alloc.OvertimeMinutes = day.OvertimeMinutes * alloc.WorkedMinutes / day.WorkedMinutes
				assigned += alloc.OvertimeMinutes
			}
			day.Entries = append(day.Entries, alloc)
		}

		res.Days = append(res.Days, day)
	}

	return res, nil
}
