package engine_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/compliance-engine/engine"
)

func checkEntries(t *testing.T, emp engine.Employee, shifts map[string]engine.Shift, entries ...engine.ScheduleEntry) []engine.Violation {
	t.Helper()
	checker := &engine.Checker{}
	return checker.Check(engine.CheckInput{Employee: emp, Entries: entries, Shifts: shifts})
}

func violationTypes(violations []engine.Violation) []engine.ViolationType {
	var out []engine.ViolationType
	for _, v := range violations {
		out = append(out, v.Type)
	}
	return out
}

func TestCompliance_ShiftOverTwelveHours(t *testing.T) {
	emp := fullTimer("emp-1")
	shifts := map[string]engine.Shift{
		"XXL": {Code: "XXL", Kind: engine.ShiftWork, StartTime: "07:00", EndTime: "20:00"},
	}

	violations := checkEntries(t, emp, shifts,
		entry(emp.ID, engine.NewDate(2026, time.March, 2), "XXL"))

	require.Len(t, violations, 1)
	assert.Equal(t, engine.ViolationMaxShiftHours, violations[0].Type)
	assert.Equal(t, engine.SeverityError, violations[0].Severity)
	assert.Equal(t, 780, violations[0].Measured)
}

func TestCompliance_DailyRest(t *testing.T) {
	// GIVEN: a 12h shift ending 20:00, next shift starting 06:00 next day
	// WHEN:  the gap is 10h
	// THEN:  DAILY_REST_VIOLATION (error)
	emp := fullTimer("emp-1")
	shifts := map[string]engine.Shift{
		"A": {Code: "A", Kind: engine.ShiftWork, StartTime: "08:00", EndTime: "20:00"},
		"B": {Code: "B", Kind: engine.ShiftWork, StartTime: "06:00", EndTime: "14:00"},
	}

	violations := checkEntries(t, emp, shifts,
		entry(emp.ID, engine.NewDate(2026, time.March, 2), "A"),
		entry(emp.ID, engine.NewDate(2026, time.March, 3), "B"))

	require.Len(t, violations, 1)
	v := violations[0]
	assert.Equal(t, engine.ViolationDailyRest, v.Type)
	assert.Equal(t, engine.SeverityError, v.Severity)
	assert.Equal(t, 600, v.Measured)
	assert.Equal(t, 720, v.Threshold)
	assert.Equal(t, "2026-03-02", v.Date.ISO())
	assert.Equal(t, "2026-03-03", v.EndDate.ISO())
}

func TestCompliance_ThirteenHourGapIsClean(t *testing.T) {
	emp := fullTimer("emp-1")
	shifts := map[string]engine.Shift{
		"A": {Code: "A", Kind: engine.ShiftWork, StartTime: "08:00", EndTime: "17:00"},
		"B": {Code: "B", Kind: engine.ShiftWork, StartTime: "06:00", EndTime: "14:00"},
	}

	violations := checkEntries(t, emp, shifts,
		entry(emp.ID, engine.NewDate(2026, time.March, 2), "A"),
		entry(emp.ID, engine.NewDate(2026, time.March, 3), "B"))

	assert.Empty(t, violations)
}

func TestCompliance_WeeklyRestAtWeekBoundary(t *testing.T) {
	// GIVEN: Sunday shift ending 20:00, Monday shift starting 08:00.
	// The 12h turnaround satisfies daily rest but crosses an ISO week
	// boundary with far less than 36h.
	emp := fullTimer("emp-1")
	shifts := map[string]engine.Shift{
		"A": {Code: "A", Kind: engine.ShiftWork, StartTime: "08:00", EndTime: "20:00"},
		"B": {Code: "B", Kind: engine.ShiftWork, StartTime: "08:00", EndTime: "16:00"},
	}

	violations := checkEntries(t, emp, shifts,
		entry(emp.ID, engine.NewDate(2026, time.March, 8), "A"), // Sunday
		entry(emp.ID, engine.NewDate(2026, time.March, 9), "B")) // Monday

	require.Len(t, violations, 1)
	v := violations[0]
	assert.Equal(t, engine.ViolationWeeklyRest, v.Type)
	assert.Equal(t, 720, v.Measured)
	assert.Equal(t, 2160, v.Threshold)
}

func TestCompliance_SIRVWeeklyCeiling(t *testing.T) {
	// GIVEN: a SIRV employee with six 10h days in one ISO week (60h > 56h)
	emp := fullTimer("emp-1")
	emp.IsSIRV = true
	shifts := map[string]engine.Shift{
		"T": {Code: "T", Kind: engine.ShiftWork, StartTime: "08:00", EndTime: "18:00"},
	}

	var entries []engine.ScheduleEntry
	for d := 2; d <= 7; d++ { // Mon..Sat, ISO week 10
		entries = append(entries, entry(emp.ID, engine.NewDate(2026, time.March, d), "T"))
	}

	violations := checkEntries(t, emp, shifts, entries...)

	types := violationTypes(violations)
	assert.Contains(t, types, engine.ViolationSIRVWeeklyHours)
	assert.Contains(t, types, engine.ViolationMaxConsecutiveDays)

	for _, v := range violations {
		if v.Type == engine.ViolationSIRVWeeklyHours {
			assert.Equal(t, 3600, v.Measured)
			assert.Equal(t, 3360, v.Threshold)
		}
	}
}

func TestCompliance_WeeklyCeilingSkippedForFixedRegimes(t *testing.T) {
	emp := fullTimer("emp-1")
	shifts := map[string]engine.Shift{
		"T": {Code: "T", Kind: engine.ShiftWork, StartTime: "08:00", EndTime: "18:00"},
	}

	var entries []engine.ScheduleEntry
	for d := 2; d <= 6; d++ {
		entries = append(entries, entry(emp.ID, engine.NewDate(2026, time.March, d), "T"))
	}

	violations := checkEntries(t, emp, shifts, entries...)
	assert.NotContains(t, violationTypes(violations), engine.ViolationSIRVWeeklyHours)
}

func TestCompliance_SixConsecutiveDaysWarns(t *testing.T) {
	// GIVEN: worked dates Mon Mar 2 .. Sat Mar 7
	// THEN:  a warning fires at the 6th date, once per streak
	emp := fullTimer("emp-1")
	shifts := map[string]engine.Shift{"DAY": dayShift()}

	var entries []engine.ScheduleEntry
	for d := 2; d <= 7; d++ {
		entries = append(entries, entry(emp.ID, engine.NewDate(2026, time.March, d), "DAY"))
	}

	violations := checkEntries(t, emp, shifts, entries...)

	require.Len(t, violations, 1)
	v := violations[0]
	assert.Equal(t, engine.ViolationMaxConsecutiveDays, v.Type)
	assert.Equal(t, engine.SeverityWarning, v.Severity)
	assert.Equal(t, "2026-03-07", v.Date.ISO())
	assert.Equal(t, 6, v.Measured)
}

func TestCompliance_GapResetsStreak(t *testing.T) {
	emp := fullTimer("emp-1")
	shifts := map[string]engine.Shift{"DAY": dayShift()}

	var entries []engine.ScheduleEntry
	for _, d := range []int{2, 3, 4, 6, 7, 9} { // gaps at 5 and 8
		entries = append(entries, entry(emp.ID, engine.NewDate(2026, time.March, d), "DAY"))
	}

	violations := checkEntries(t, emp, shifts, entries...)
	assert.NotContains(t, violationTypes(violations), engine.ViolationMaxConsecutiveDays)
}

func TestCompliance_AbsencesAndDanglingCodesIgnored(t *testing.T) {
	emp := fullTimer("emp-1")
	shifts := map[string]engine.Shift{
		"VAC": {Code: "VAC", Kind: engine.ShiftVacation, PlannedMinutes: 480},
	}

	violations := checkEntries(t, emp, shifts,
		entry(emp.ID, engine.NewDate(2026, time.March, 2), "VAC"),
		entry(emp.ID, engine.NewDate(2026, time.March, 3), "MISSING"))

	assert.Empty(t, violations)
}
