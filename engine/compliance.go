/*
compliance.go - Statutory violation checks

PURPOSE:
  Evaluates one employee's entry set and emits typed findings:
  - MAX_SHIFT_HOURS:              single shift over 12h          (error)
  - DAILY_REST_VIOLATION:         inter-shift rest under 12h     (error)
  - WEEKLY_REST_VIOLATION:        week-boundary rest under 36h   (error)
  - SIRV_WEEKLY_HOURS_VIOLATION:  ISO week over 56h, SIRV only   (error)
  - MAX_CONSECUTIVE_DAYS_WARNING: streak over 5 worked days      (warning)

  Both rest checks run over the same sorted adjacent-pair scan with
  independent thresholds. The 36h weekly-rest requirement applies to the
  turnaround between shifts in different ISO weeks; inside one week the
  12h daily minimum governs.

  Findings are not errors: the summary they accompany is still valid, and
  a warning never blocks anything.
*/
package engine

import (
	"fmt"
	"sort"
	"time"
)

// Thresholds, all in minutes except the streak limit.
const (
	MaxShiftMinutes        = 12 * 60
	MinDailyRestMinutes    = 12 * 60
	MinWeeklyRestMinutes   = 36 * 60
	MaxSIRVWeeklyMinutes   = 56 * 60
	MaxConsecutiveWorkDays = 5
)

// CheckInput is one employee's entry set with its shift templates.
type CheckInput struct {
	Employee Employee
	Entries  []ScheduleEntry
	Shifts   map[string]Shift
}

// Checker evaluates compliance rules. Stateless; safe for reuse.
type Checker struct{}

type shiftInterval struct {
	day    Date
	start  time.Time
	end    time.Time
	worked int
}

// Check runs every rule and returns the findings in rule order.
func (c *Checker) Check(in CheckInput) []Violation {
	intervals := c.intervals(in)

	var violations []Violation
	violations = append(violations, c.checkShiftLength(in.Employee, intervals)...)
	violations = append(violations, c.checkRest(in.Employee, intervals)...)
	if in.Employee.IsSIRV {
		violations = append(violations, c.checkWeeklyCeiling(in.Employee, intervals)...)
	}
	violations = append(violations, c.checkConsecutiveDays(in.Employee, intervals)...)
	return violations
}

// intervals materializes absolute shift intervals, skipping absences,
// dangling codes and malformed times.
func (c *Checker) intervals(in CheckInput) []shiftInterval {
	var out []shiftInterval
	for _, entry := range in.Entries {
		if entry.EmployeeID != in.Employee.ID {
			continue
		}
		shift, ok := in.Shifts[entry.ShiftCode]
		if !ok || shift.IsAbsence() {
			continue
		}
		split := SplitShift(entry.Day, shift.StartTime, shift.EndTime)
		if !split.Valid {
			continue
		}
		worked := split.Duration
		if !shift.BreakIncluded {
			br := shift.BreakMinutes
			if br > worked {
				br = worked
			}
			worked -= br
		}
		start := entry.Day.Time.Add(time.Duration(split.StartMinute) * time.Minute)
		out = append(out, shiftInterval{
			day:    entry.Day,
			start:  start,
			end:    start.Add(time.Duration(split.Duration) * time.Minute),
			worked: worked,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].start.Before(out[j].start) })
	return out
}

func (c *Checker) checkShiftLength(emp Employee, intervals []shiftInterval) []Violation {
	var out []Violation
	for _, iv := range intervals {
		length := int(iv.end.Sub(iv.start).Minutes())
		if length > MaxShiftMinutes {
			out = append(out, Violation{
				Type:       ViolationMaxShiftHours,
				Severity:   SeverityError,
				EmployeeID: emp.ID,
				Date:       iv.day,
				Measured:   length,
				Threshold:  MaxShiftMinutes,
				Message:    fmt.Sprintf("shift of %dh%02dm exceeds the 12h maximum", length/60, length%60),
			})
		}
	}
	return out
}

// checkRest scans adjacent pairs of the time-sorted intervals once,
// applying both rest thresholds.
func (c *Checker) checkRest(emp Employee, intervals []shiftInterval) []Violation {
	var out []Violation
	for i := 1; i < len(intervals); i++ {
		prev, next := intervals[i-1], intervals[i]
		rest := int(next.start.Sub(prev.end).Minutes())
		if rest < 0 {
			rest = 0
		}

		if rest < MinDailyRestMinutes {
			out = append(out, Violation{
				Type:       ViolationDailyRest,
				Severity:   SeverityError,
				EmployeeID: emp.ID,
				Date:       prev.day,
				EndDate:    next.day,
				Measured:   rest,
				Threshold:  MinDailyRestMinutes,
				Message:    fmt.Sprintf("only %dh%02dm rest before next shift, 12h required", rest/60, rest%60),
			})
		}

		prevYear, prevWeek := prev.day.ISOWeek()
		nextYear, nextWeek := next.day.ISOWeek()
		if (prevYear != nextYear || prevWeek != nextWeek) && rest < MinWeeklyRestMinutes {
			out = append(out, Violation{
				Type:       ViolationWeeklyRest,
				Severity:   SeverityError,
				EmployeeID: emp.ID,
				Date:       prev.day,
				EndDate:    next.day,
				Measured:   rest,
				Threshold:  MinWeeklyRestMinutes,
				Message:    fmt.Sprintf("only %dh%02dm weekly rest across the week boundary, 36h required", rest/60, rest%60),
			})
		}
	}
	return out
}

// checkWeeklyCeiling buckets worked minutes into ISO weeks (Monday start)
// and flags any week over 56h. SIRV regimes only.
func (c *Checker) checkWeeklyCeiling(emp Employee, intervals []shiftInterval) []Violation {
	type weekKey struct{ year, week int }
	totals := make(map[weekKey]int)
	firstDay := make(map[weekKey]Date)

	for _, iv := range intervals {
		year, week := iv.day.ISOWeek()
		key := weekKey{year, week}
		totals[key] += iv.worked
		if _, seen := firstDay[key]; !seen {
			firstDay[key] = iv.day
		}
	}

	keys := make([]weekKey, 0, len(totals))
	for k := range totals {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].year != keys[j].year {
			return keys[i].year < keys[j].year
		}
		return keys[i].week < keys[j].week
	})

	var out []Violation
	for _, key := range keys {
		if totals[key] > MaxSIRVWeeklyMinutes {
			out = append(out, Violation{
				Type:       ViolationSIRVWeeklyHours,
				Severity:   SeverityError,
				EmployeeID: emp.ID,
				Date:       firstDay[key],
				Measured:   totals[key],
				Threshold:  MaxSIRVWeeklyMinutes,
				Message:    fmt.Sprintf("week %d/%d has %dh%02dm worked, 56h ceiling", key.year, key.week, totals[key]/60, totals[key]%60),
			})
		}
	}
	return out
}

// checkConsecutiveDays walks distinct worked dates in ascending order; a
// streak resets whenever the gap is not exactly one day. One warning per
// streak, emitted at the first date past the limit.
func (c *Checker) checkConsecutiveDays(emp Employee, intervals []shiftInterval) []Violation {
	seen := make(map[string]bool)
	var dates []Date
	for _, iv := range intervals {
		if !seen[iv.day.ISO()] {
			seen[iv.day.ISO()] = true
			dates = append(dates, iv.day)
		}
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	var out []Violation
	streak := 0
	for i, d := range dates {
		if i > 0 && DaysBetween(dates[i-1], d) == 1 {
			streak++
		} else {
			streak = 1
		}
		if streak == MaxConsecutiveWorkDays+1 {
			out = append(out, Violation{
				Type:       ViolationMaxConsecutiveDays,
				Severity:   SeverityWarning,
				EmployeeID: emp.ID,
				Date:       d,
				Measured:   streak,
				Threshold:  MaxConsecutiveWorkDays,
				Message:    fmt.Sprintf("%d consecutive worked days as of %s", streak, d),
			})
		}
	}
	return out
}
