/*
Package pattern generates rotating shift-code sequences.

PURPOSE:
  Builds cyclic dayIndex -> shiftCode lookups for named rotation
  templates, generates candidate schedule entries for a period, validates
  them against the statutory rest rules, and merges them into existing
  schedules under an overwrite policy.

TEMPLATES:
  two_on_two_off   12h days:   D12 D12 - -                  (cycle 4)
  two_on_four_off  12h mixed:  D12 N12 - - - -              (cycle 6)
  three_shift      3x8h crews: M8 M8 A8 A8 N8 N8 - -        (cycle 8)
  weekday          8h Mon-Fri: D8 on weekdays, blank weekends

OFFSETS:
  A per-employee offset staggers crews over the same template. Index
  arithmetic normalizes negative values so patterns continue correctly
  across month boundaries (index -1 is the last cycle position).

MERGE POLICIES:
  empty_only          write only where no shift is set
  overwrite_auto_only write only where the entry was not manually edited
  overwrite_all       always write
*/
package pattern

import (
	"fmt"
	"sort"
	"time"

	"github.com/warp/compliance-engine/engine"
)

// Template names a rotation layout.
type Template string

const (
	TemplateTwoOnTwoOff  Template = "two_on_two_off"
	TemplateTwoOnFourOff Template = "two_on_four_off"
	TemplateThreeShift   Template = "three_shift"
	TemplateWeekday      Template = "weekday"
)

// OverwritePolicy controls merging generated entries into a schedule.
type OverwritePolicy string

const (
	OverwriteEmptyOnly OverwritePolicy = "empty_only"
	OverwriteAutoOnly  OverwritePolicy = "overwrite_auto_only"
	OverwriteAll       OverwritePolicy = "overwrite_all"
)

// Rotation is a materialized template with a crew offset.
type Rotation struct {
	Template     Template
	Cycle        []string
	Offset       int
	WeekdaysOnly bool
}

// NewRotation builds a rotation for a named template. Offset shifts the
// cycle start for staggered crews.
func NewRotation(template Template, offset int) (*Rotation, error) {
	r := &Rotation{Template: template, Offset: offset}
	switch template {
	case TemplateTwoOnTwoOff:
		r.Cycle = []string{"D12", "D12", "", ""}
	case TemplateTwoOnFourOff:
		r.Cycle = []string{"D12", "N12", "", "", "", ""}
	case TemplateThreeShift:
		r.Cycle = []string{"M8", "M8", "A8", "A8", "N8", "N8", "", ""}
	case TemplateWeekday:
		r.Cycle = []string{"D8"}
		r.WeekdaysOnly = true
	default:
		return nil, fmt.Errorf("unknown pattern template %q", template)
	}
	return r, nil
}

// CodeAt returns the shift code for a day index. Negative indices are
// normalized into the cycle, so continuation from a previous month can
// ask for index -1 and get the last cycle position.
func (r *Rotation) CodeAt(index int) string {
	n := len(r.Cycle)
	i := ((index+r.Offset)%n + n) % n
	return r.Cycle[i]
}

// CodeFor returns the code for a concrete date. The anchor is day index
// zero; weekday-only templates return blank on weekends regardless of
// index.
func (r *Rotation) CodeFor(d, anchor engine.Date) string {
	if r.WeekdaysOnly {
		wd := d.Weekday()
		if wd == time.Saturday || wd == time.Sunday {
			return ""
		}
		return r.Cycle[0]
	}
	return r.CodeAt(engine.DaysBetween(anchor, d))
}

// Generate produces candidate entries for every day of the period that
// maps to a non-blank code. Generated entries are never marked manually
// edited.
func (r *Rotation) Generate(employeeID, scheduleID string, period engine.Period, anchor engine.Date) []engine.ScheduleEntry {
	var entries []engine.ScheduleEntry
	for _, day := range period.Days() {
		code := r.CodeFor(day, anchor)
		if code == "" {
			continue
		}
		entries = append(entries, engine.ScheduleEntry{
			EmployeeID: employeeID,
			ScheduleID: scheduleID,
			Day:        day,
			ShiftCode:  code,
		})
	}
	return entries
}

// DefaultShifts returns the shift templates the built-in rotations
// reference, keyed by code.
func DefaultShifts() map[string]engine.Shift {
	return map[string]engine.Shift{
		"D8":  {Code: "D8", Kind: engine.ShiftWork, StartTime: "09:00", EndTime: "17:30", BreakMinutes: 30, PlannedMinutes: 480},
		"M8":  {Code: "M8", Kind: engine.ShiftWork, StartTime: "06:00", EndTime: "14:00", PlannedMinutes: 480},
		"A8":  {Code: "A8", Kind: engine.ShiftWork, StartTime: "14:00", EndTime: "22:00", PlannedMinutes: 480},
		"N8":  {Code: "N8", Kind: engine.ShiftWork, StartTime: "22:00", EndTime: "06:00", PlannedMinutes: 480},
		"D12": {Code: "D12", Kind: engine.ShiftWork, StartTime: "07:00", EndTime: "19:00", BreakMinutes: 60, BreakIncluded: true, PlannedMinutes: 720},
		"N12": {Code: "N12", Kind: engine.ShiftWork, StartTime: "19:00", EndTime: "07:00", BreakMinutes: 60, BreakIncluded: true, PlannedMinutes: 720},
	}
}

// ValidateRest runs the candidate entries (merged view) through the rest
// rules before they are committed. Errors in the findings should block
// the merge; warnings should not.
func ValidateRest(emp engine.Employee, entries []engine.ScheduleEntry, shifts map[string]engine.Shift) []engine.Violation {
	checker := &engine.Checker{}
	return checker.Check(engine.CheckInput{
		Employee: emp,
		Entries:  entries,
		Shifts:   shifts,
	})
}

// Merge combines candidate entries into an existing schedule under the
// given policy. The existing slice is not mutated; the result contains
// one entry per (employee, schedule, day), sorted by day.
func Merge(existing, candidates []engine.ScheduleEntry, policy OverwritePolicy) []engine.ScheduleEntry {
	type key struct{ employee, schedule, day string }
	mk := func(e engine.ScheduleEntry) key {
		return key{e.EmployeeID, e.ScheduleID, e.Day.ISO()}
	}

	merged := make(map[key]engine.ScheduleEntry, len(existing)+len(candidates))
	var order []key
	for _, e := range existing {
		k := mk(e)
		if _, seen := merged[k]; !seen {
			order = append(order, k)
		}
		merged[k] = e
	}

	for _, cand := range candidates {
		k := mk(cand)
		cur, exists := merged[k]
		switch policy {
		case OverwriteEmptyOnly:
			if exists && cur.ShiftCode != "" {
				continue
			}
		case OverwriteAutoOnly:
			if exists && cur.ManuallyEdited {
				continue
			}
		case OverwriteAll:
			// always write
		default:
			continue
		}
		if !exists {
			order = append(order, k)
		}
		merged[k] = cand
	}

	out := make([]engine.ScheduleEntry, 0, len(order))
	for _, k := range order {
		out = append(out, merged[k])
	}
	sortEntries(out)
	return out
}

func sortEntries(entries []engine.ScheduleEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Day.Before(entries[j].Day)
	})
}
