/*
summary.go - Monthly aggregation

PURPOSE:
  Aggregates per-shift metrics across a month for each employee:
  - norm minutes (calendar workdays x workday length, employment-clamped)
  - worked/night/holiday/weekend totals (snapshot-first, else derived)
  - total overtime, distributed across holiday/restday/weekday buckets
  - payable hours with night differential and premium coefficients
  - compliance findings for the same entry set

OVERTIME DISTRIBUTION:
  Strict priority: holiday first, then rest-day, then weekday. Each bucket
  is capped at the minutes actually worked on that category of day; any
  excess after holiday+restday saturation falls to weekday.

MISSING REFERENCES:
  An entry referencing an unknown shift code is skipped (unless it carries
  a snapshot, which is authoritative on its own). A single bad record must
  not abort the batch.

SEE ALSO:
  - metrics.go: per-shift derivation
  - sirv.go:    period-level overtime for flexible regimes
  - compliance.go: the violation checks attached to each summary
*/
package engine

import (
	"context"

	"github.com/shopspring/decimal"
)

// SummaryInput is the per-employee computation request.
type SummaryInput struct {
	Employee Employee
	Period   Period
	Entries  []ScheduleEntry
	Shifts   map[string]Shift
}

// Aggregator computes monthly summaries. It holds only injected
// capabilities and configuration; all state is per-call.
type Aggregator struct {
	Holidays HolidayResolver
	Rates    PayRates
}

// NewAggregator wires an aggregator with the given resolver and rates.
func NewAggregator(holidays HolidayResolver, rates PayRates) *Aggregator {
	return &Aggregator{Holidays: holidays, Rates: rates}
}

// SummarizeAll computes one summary per employee over a shared entry set.
// Entries for unknown employees are ignored.
func (a *Aggregator) SummarizeAll(ctx context.Context, employees []Employee, entries []ScheduleEntry, shifts map[string]Shift, period Period) (map[string]*MonthlySummary, error) {
	byEmployee := make(map[string][]ScheduleEntry)
	for _, e := range entries {
		byEmployee[e.EmployeeID] = append(byEmployee[e.EmployeeID], e)
	}

	out := make(map[string]*MonthlySummary, len(employees))
	for _, emp := range employees {
		summary, err := a.Summarize(ctx, SummaryInput{
			Employee: emp,
			Period:   period,
			Entries:  byEmployee[emp.ID],
			Shifts:   shifts,
		})
		if err != nil {
			return nil, err
		}
		out[emp.ID] = summary
	}
	return out, nil
}

// Summarize computes the monthly summary for one employee.
func (a *Aggregator) Summarize(ctx context.Context, in SummaryInput) (*MonthlySummary, error) {
	if !in.Period.Valid() {
		return nil, ErrInvalidPeriod
	}

	summary := &MonthlySummary{
		EmployeeID:   in.Employee.ID,
		Period:       in.Period,
		PayableHours: minutesToHours(0),
	}

	period, employed := in.Period.ClampToEmployment(in.Employee)
	if !employed {
		return summary, nil
	}

	norm, err := a.normMinutes(ctx, period, in.Employee.WorkdayMinutes)
	if err != nil {
		return nil, err
	}
	summary.NormMinutes = norm

	calc := &MetricsCalculator{Holidays: a.Holidays}

	var split DayClassSplit
	for _, entry := range in.Entries {
		if entry.EmployeeID != in.Employee.ID || !period.Contains(entry.Day) {
			continue
		}

		shift, known := in.Shifts[entry.ShiftCode]
		if known && shift.IsAbsence() {
			switch shift.Kind {
			case ShiftVacation:
				summary.VacationDays++
			case ShiftSick:
				summary.SickDays++
			}
			continue
		}

		var m ShiftMetrics
		switch {
		case entry.Snapshot != nil:
			m, err = calc.FromSnapshot(ctx, entry.Day, *entry.Snapshot)
		case known:
			m, err = calc.Calculate(ctx, entry.Day, shift, in.Employee)
		default:
			continue // dangling reference, tier-2 skip
		}
		if err != nil {
			return nil, err
		}
		if !m.Valid {
			continue
		}

		summary.WorkedMinutes += m.WorkedMinutes
		summary.NightMinutes += m.NightMinutes
		summary.HolidayMinutes += m.HolidayMinutes
		summary.WeekendMinutes += m.WeekendMinutes
		split.Holiday += m.ClassSplit.Holiday
		split.Restday += m.ClassSplit.Restday
		split.Weekday += m.ClassSplit.Weekday
	}

	if in.Employee.IsSIRV {
		alloc := &SIRVAllocator{Holidays: a.Holidays, Rates: a.Rates}
		res, err := alloc.Allocate(ctx, SIRVInput{
			Employee:        in.Employee,
			Period:          period,
			Entries:         in.Entries,
			Shifts:          in.Shifts,
			BaseNormMinutes: norm,
		})
		if err != nil {
			return nil, err
		}
		summary.OvertimeMinutes = res.OvertimeMinutes
		summary.Violations = append(summary.Violations, res.Violations...)
	} else {
		total := summary.WorkedMinutes - norm
		if total < 0 {
			total = 0
		}
		summary.OvertimeMinutes = total
	}

	distributeOvertime(summary, split)
	summary.NormalMinutes = summary.WorkedMinutes - summary.OvertimeMinutes

	summary.PayableHours = a.payableHours(summary, in.Employee)

	checker := &Checker{}
	summary.Violations = append(summary.Violations, checker.Check(CheckInput{
		Employee: in.Employee,
		Entries:  in.Entries,
		Shifts:   in.Shifts,
	})...)

	return summary, nil
}

// normMinutes counts calendar days that are neither weekend nor holiday
// and multiplies by the workday length.
func (a *Aggregator) normMinutes(ctx context.Context, period Period, workdayMinutes int) (int, error) {
	workdays := 0
	for _, day := range period.Days() {
		cd, err := ClassifyDay(ctx, a.Holidays, day)
		if err != nil {
			return 0, err
		}
		if !cd.IsWeekend && !cd.IsHoliday {
			workdays++
		}
	}
	return workdays * workdayMinutes, nil
}

// distributeOvertime fills the three buckets in strict priority order:
// holiday, then rest-day, then weekday. Each bucket is capped at the
// minutes worked on that category; the excess lands on weekday.
func distributeOvertime(summary *MonthlySummary, split DayClassSplit) {
	remaining := summary.OvertimeMinutes

	summary.OvertimeHoliday = min(remaining, split.Holiday)
	remaining -= summary.OvertimeHoliday

	summary.OvertimeRestday = min(remaining, split.Restday)
	remaining -= summary.OvertimeRestday

	summary.OvertimeWeekday = remaining
}

// payableHours = worked hours
//   + holiday hours x (holidayCoeff - 1)
//   + weekend-premium hours x (weekendCoeff - 1)
//   + night hours x (nightCoeff - 1)
//
// For SIRV employees only the overtime portion of rest-day minutes earns
// the weekend premium; fixed regimes use the raw rest-day minutes.
func (a *Aggregator) payableHours(summary *MonthlySummary, emp Employee) decimal.Decimal {
	one := decimal.NewFromInt(1)

	payable := minutesToHours(summary.WorkedMinutes)
	payable = payable.Add(minutesToHours(summary.HolidayMinutes).Mul(a.Rates.HolidayCoefficient.Sub(one)))

	weekendBase := summary.WeekendMinutes
	if emp.IsSIRV {
		weekendBase = summary.OvertimeRestday
	}
	payable = payable.Add(minutesToHours(weekendBase).Mul(a.Rates.WeekendCoefficient.Sub(one)))
	payable = payable.Add(minutesToHours(summary.NightMinutes).Mul(a.Rates.NightCoefficient.Sub(one)))

	return payable
}
