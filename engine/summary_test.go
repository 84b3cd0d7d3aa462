package engine_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/compliance-engine/engine"
)

// March 2026: Mar 1 is a Sunday, 9 weekend days, 22 weekdays.
func march2026() engine.Period {
	return engine.MonthPeriod(2026, time.March)
}

func marchHolidays() stubHolidays {
	return stubHolidays{"2026-03-03": "Liberation Day"}
}

func fullTimer(id string) engine.Employee {
	return engine.Employee{
		ID:             id,
		StartDate:      engine.NewDate(2025, time.January, 1),
		WorkdayMinutes: 480,
	}
}

func entry(empID string, day engine.Date, code string) engine.ScheduleEntry {
	return engine.ScheduleEntry{EmployeeID: empID, ScheduleID: "sch-1", Day: day, ShiftCode: code}
}

func TestSummary_NormMinutes(t *testing.T) {
	// GIVEN: March 2026 with 2026-03-03 a holiday
	// THEN:  norm = (22 weekdays - 1 holiday) * 480
	agg := engine.NewAggregator(marchHolidays(), engine.DefaultPayRates())

	s, err := agg.Summarize(context.Background(), engine.SummaryInput{
		Employee: fullTimer("emp-1"),
		Period:   march2026(),
	})

	require.NoError(t, err)
	assert.Equal(t, 21*480, s.NormMinutes)
	assert.Equal(t, 0, s.WorkedMinutes)
	assert.Equal(t, 0, s.OvertimeMinutes)
}

func TestSummary_WorkedWeekWithHoliday(t *testing.T) {
	// GIVEN: Mon-Fri day shifts, Tuesday is a holiday
	agg := engine.NewAggregator(marchHolidays(), engine.DefaultPayRates())
	emp := fullTimer("emp-1")

	var entries []engine.ScheduleEntry
	for d := 2; d <= 6; d++ {
		entries = append(entries, entry(emp.ID, engine.NewDate(2026, time.March, d), "DAY"))
	}

	s, err := agg.Summarize(context.Background(), engine.SummaryInput{
		Employee: emp,
		Period:   march2026(),
		Entries:  entries,
		Shifts:   map[string]engine.Shift{"DAY": dayShift()},
	})

	require.NoError(t, err)
	assert.Equal(t, 5*480, s.WorkedMinutes)
	assert.Equal(t, 480, s.HolidayMinutes, "the Tuesday shift is entirely on the holiday")
	assert.Equal(t, 0, s.WeekendMinutes)
	assert.Equal(t, 0, s.NightMinutes)
	assert.Equal(t, 0, s.OvertimeMinutes)
	assert.Equal(t, s.WorkedMinutes, s.NormalMinutes+s.OvertimeMinutes)

	// payable = 40h worked + 8h holiday premium at coefficient 2
	assert.True(t, s.PayableHours.Equal(decimal.NewFromInt(48)),
		"payable %s", s.PayableHours)
}

func TestSummary_OvertimeFallsToWeekdayBucket(t *testing.T) {
	// GIVEN: employment clamped to Mon Mar 30 - Tue Mar 31, two 12h shifts
	agg := engine.NewAggregator(marchHolidays(), engine.DefaultPayRates())
	end := engine.NewDate(2026, time.March, 31)
	emp := engine.Employee{
		ID:             "emp-2",
		StartDate:      engine.NewDate(2026, time.March, 30),
		EndDate:        &end,
		WorkdayMinutes: 480,
	}
	long := engine.Shift{Code: "LNG", Kind: engine.ShiftWork, StartTime: "08:00", EndTime: "20:00", PlannedMinutes: 480}

	s, err := agg.Summarize(context.Background(), engine.SummaryInput{
		Employee: emp,
		Period:   march2026(),
		Entries: []engine.ScheduleEntry{
			entry(emp.ID, engine.NewDate(2026, time.March, 30), "LNG"),
			entry(emp.ID, engine.NewDate(2026, time.March, 31), "LNG"),
		},
		Shifts: map[string]engine.Shift{"LNG": long},
	})

	require.NoError(t, err)
	assert.Equal(t, 960, s.NormMinutes, "norm covers only the employed days")
	assert.Equal(t, 1440, s.WorkedMinutes)
	assert.Equal(t, 480, s.OvertimeMinutes)
	assert.Equal(t, 0, s.OvertimeHoliday)
	assert.Equal(t, 0, s.OvertimeRestday)
	assert.Equal(t, 480, s.OvertimeWeekday)
	assert.Equal(t, 960, s.NormalMinutes)
}

func TestSummary_OvertimeRestdayBucketPriority(t *testing.T) {
	// GIVEN: employment covering only a weekend, norm 0, all work on rest days
	agg := engine.NewAggregator(marchHolidays(), engine.DefaultPayRates())
	end := engine.NewDate(2026, time.March, 8)
	emp := engine.Employee{
		ID:             "emp-3",
		StartDate:      engine.NewDate(2026, time.March, 7),
		EndDate:        &end,
		WorkdayMinutes: 480,
	}

	s, err := agg.Summarize(context.Background(), engine.SummaryInput{
		Employee: emp,
		Period:   march2026(),
		Entries: []engine.ScheduleEntry{
			entry(emp.ID, engine.NewDate(2026, time.March, 7), "DAY"),
			entry(emp.ID, engine.NewDate(2026, time.March, 8), "DAY"),
		},
		Shifts: map[string]engine.Shift{"DAY": dayShift()},
	})

	require.NoError(t, err)
	assert.Equal(t, 0, s.NormMinutes)
	assert.Equal(t, 960, s.WorkedMinutes)
	assert.Equal(t, 960, s.WeekendMinutes)
	assert.Equal(t, 960, s.OvertimeMinutes)
	assert.Equal(t, 960, s.OvertimeRestday, "rest-day bucket saturates before weekday")
	assert.Equal(t, 0, s.OvertimeWeekday)
	assert.Equal(t, s.OvertimeMinutes, s.OvertimeHoliday+s.OvertimeRestday+s.OvertimeWeekday)
}

func TestSummary_SnapshotIsAuthoritative(t *testing.T) {
	// An entry with a snapshot contributes even when its code is unknown;
	// one without a snapshot and with a dangling code is skipped.
	agg := engine.NewAggregator(marchHolidays(), engine.DefaultPayRates())
	emp := fullTimer("emp-4")

	withSnap := entry(emp.ID, engine.NewDate(2026, time.March, 4), "GONE")
	withSnap.Snapshot = &engine.MinuteSnapshot{WorkMinutes: 480, NightMinutes: 120}
	dangling := entry(emp.ID, engine.NewDate(2026, time.March, 5), "GONE")

	s, err := agg.Summarize(context.Background(), engine.SummaryInput{
		Employee: emp,
		Period:   march2026(),
		Entries:  []engine.ScheduleEntry{withSnap, dangling},
		Shifts:   map[string]engine.Shift{},
	})

	require.NoError(t, err)
	assert.Equal(t, 480, s.WorkedMinutes)
	assert.Equal(t, 120, s.NightMinutes)
}

func TestSummary_VacationAndSickCounts(t *testing.T) {
	agg := engine.NewAggregator(marchHolidays(), engine.DefaultPayRates())
	emp := fullTimer("emp-5")

	shifts := map[string]engine.Shift{
		"DAY": dayShift(),
		"VAC": {Code: "VAC", Kind: engine.ShiftVacation, PlannedMinutes: 480},
		"SCK": {Code: "SCK", Kind: engine.ShiftSick, PlannedMinutes: 480},
	}

	s, err := agg.Summarize(context.Background(), engine.SummaryInput{
		Employee: emp,
		Period:   march2026(),
		Entries: []engine.ScheduleEntry{
			entry(emp.ID, engine.NewDate(2026, time.March, 2), "DAY"),
			entry(emp.ID, engine.NewDate(2026, time.March, 4), "VAC"),
			entry(emp.ID, engine.NewDate(2026, time.March, 5), "VAC"),
			entry(emp.ID, engine.NewDate(2026, time.March, 6), "SCK"),
		},
		Shifts: shifts,
	})

	require.NoError(t, err)
	assert.Equal(t, 2, s.VacationDays)
	assert.Equal(t, 1, s.SickDays)
	assert.Equal(t, 480, s.WorkedMinutes, "absence entries add no worked minutes")
}

func TestSummary_SIRVPeriodOvertime(t *testing.T) {
	// GIVEN: a SIRV employee employed Wed Mar 25 - Fri Mar 27 with
	// snapshot worked minutes 600/540/480 against a 1440 norm
	agg := engine.NewAggregator(marchHolidays(), engine.DefaultPayRates())
	end := engine.NewDate(2026, time.March, 27)
	emp := engine.Employee{
		ID:             "emp-6",
		StartDate:      engine.NewDate(2026, time.March, 25),
		EndDate:        &end,
		IsSIRV:         true,
		WorkdayMinutes: 480,
	}

	days := []int{25, 26, 27}
	worked := []int{600, 540, 480}
	var entries []engine.ScheduleEntry
	for i, d := range days {
		e := entry(emp.ID, engine.NewDate(2026, time.March, d), "")
		e.Snapshot = &engine.MinuteSnapshot{WorkMinutes: worked[i]}
		entries = append(entries, e)
	}

	s, err := agg.Summarize(context.Background(), engine.SummaryInput{
		Employee: emp,
		Period:   march2026(),
		Entries:  entries,
		Shifts:   map[string]engine.Shift{},
	})

	require.NoError(t, err)
	assert.Equal(t, 1440, s.NormMinutes)
	assert.Equal(t, 1620, s.WorkedMinutes)
	assert.Equal(t, 180, s.OvertimeMinutes)
	assert.Equal(t, 1440, s.NormalMinutes)
	assert.Equal(t, 180, s.OvertimeWeekday)
}

func TestSummarizeAll_MapsByEmployee(t *testing.T) {
	agg := engine.NewAggregator(marchHolidays(), engine.DefaultPayRates())
	empA := fullTimer("emp-a")
	empB := fullTimer("emp-b")

	entries := []engine.ScheduleEntry{
		entry(empA.ID, engine.NewDate(2026, time.March, 2), "DAY"),
		entry(empB.ID, engine.NewDate(2026, time.March, 2), "DAY"),
		entry(empB.ID, engine.NewDate(2026, time.March, 3), "DAY"),
	}

	out, err := agg.SummarizeAll(context.Background(),
		[]engine.Employee{empA, empB}, entries,
		map[string]engine.Shift{"DAY": dayShift()}, march2026())

	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, 480, out["emp-a"].WorkedMinutes)
	assert.Equal(t, 960, out["emp-b"].WorkedMinutes)
}
