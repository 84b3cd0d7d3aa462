package pattern_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/compliance-engine/engine"
	"github.com/warp/compliance-engine/pattern"
)

func TestNewRotation_UnknownTemplate(t *testing.T) {
	_, err := pattern.NewRotation("four_on_four_off", 0)
	assert.Error(t, err)
}

func TestRotation_CodeAt(t *testing.T) {
	r, err := pattern.NewRotation(pattern.TemplateTwoOnTwoOff, 0)
	require.NoError(t, err)

	assert.Equal(t, "D12", r.CodeAt(0))
	assert.Equal(t, "D12", r.CodeAt(1))
	assert.Equal(t, "", r.CodeAt(2))
	assert.Equal(t, "", r.CodeAt(3))
	assert.Equal(t, "D12", r.CodeAt(4))

	// Negative indices wrap: -1 is the last cycle position. This is how
	// a pattern continues correctly across a month boundary.
	assert.Equal(t, "", r.CodeAt(-1))
	assert.Equal(t, "D12", r.CodeAt(-4))
}

func TestRotation_OffsetStaggersCrews(t *testing.T) {
	crewA, err := pattern.NewRotation(pattern.TemplateTwoOnTwoOff, 0)
	require.NoError(t, err)
	crewB, err := pattern.NewRotation(pattern.TemplateTwoOnTwoOff, 2)
	require.NoError(t, err)

	// When crew A works, crew B rests, and vice versa.
	for i := 0; i < 8; i++ {
		a, b := crewA.CodeAt(i), crewB.CodeAt(i)
		assert.True(t, (a == "") != (b == ""), "index %d: %q vs %q", i, a, b)
	}
}

func TestRotation_GenerateTwoOnFourOff(t *testing.T) {
	// GIVEN: March 2026 anchored at Mar 1 (a Sunday)
	r, err := pattern.NewRotation(pattern.TemplateTwoOnFourOff, 0)
	require.NoError(t, err)
	period := engine.MonthPeriod(2026, time.March)
	anchor := engine.NewDate(2026, time.March, 1)

	entries := r.Generate("emp-1", "sch-1", period, anchor)

	// 31 days over a 6-day cycle: 5 full cycles (2 worked each) plus
	// day 30 (D12), 11 entries total.
	require.Len(t, entries, 11)
	assert.Equal(t, "D12", entries[0].ShiftCode)
	assert.Equal(t, "2026-03-01", entries[0].Day.ISO())
	assert.Equal(t, "N12", entries[1].ShiftCode)
	assert.Equal(t, "2026-03-02", entries[1].Day.ISO())
	assert.Equal(t, "D12", entries[2].ShiftCode)
	assert.Equal(t, "2026-03-07", entries[2].Day.ISO())

	for _, e := range entries {
		assert.False(t, e.ManuallyEdited)
		assert.Equal(t, "emp-1", e.EmployeeID)
	}
}

func TestRotation_GenerateWeekday(t *testing.T) {
	r, err := pattern.NewRotation(pattern.TemplateWeekday, 0)
	require.NoError(t, err)
	period := engine.MonthPeriod(2026, time.March)

	entries := r.Generate("emp-1", "sch-1", period, period.Start)

	// March 2026 has 22 weekdays.
	require.Len(t, entries, 22)
	for _, e := range entries {
		assert.Equal(t, "D8", e.ShiftCode)
		wd := e.Day.Weekday()
		assert.NotEqual(t, time.Saturday, wd)
		assert.NotEqual(t, time.Sunday, wd)
	}
}

func TestRotation_AnchorBeforePeriod(t *testing.T) {
	// An anchor in a previous month continues the cycle rather than
	// restarting it.
	r, err := pattern.NewRotation(pattern.TemplateTwoOnTwoOff, 0)
	require.NoError(t, err)
	anchor := engine.NewDate(2026, time.February, 27)
	period := engine.MonthPeriod(2026, time.March)

	entries := r.Generate("emp-1", "sch-1", period, anchor)

	// Feb 27 is index 0, so Mar 1 is index 2 (rest); the first worked
	// day of March is Mar 3.
	require.NotEmpty(t, entries)
	assert.Equal(t, "2026-03-03", entries[0].Day.ISO())
}

func TestValidateRest_FlagsTightTurnaround(t *testing.T) {
	// N12 ends 07:00 Tuesday and D12 starts 07:00 Tuesday: zero rest.
	shifts := pattern.DefaultShifts()
	emp := engine.Employee{ID: "emp-1", StartDate: engine.NewDate(2025, time.January, 1), WorkdayMinutes: 480}

	entries := []engine.ScheduleEntry{
		{EmployeeID: emp.ID, ScheduleID: "sch-1", Day: engine.NewDate(2026, time.March, 2), ShiftCode: "N12"},
		{EmployeeID: emp.ID, ScheduleID: "sch-1", Day: engine.NewDate(2026, time.March, 3), ShiftCode: "D12"},
	}

	violations := pattern.ValidateRest(emp, entries, shifts)

	require.NotEmpty(t, violations)
	assert.Equal(t, engine.ViolationDailyRest, violations[0].Type)
	assert.Equal(t, 0, violations[0].Measured)
}

func TestValidateRest_CleanRotation(t *testing.T) {
	r, err := pattern.NewRotation(pattern.TemplateWeekday, 0)
	require.NoError(t, err)
	period := engine.MonthPeriod(2026, time.March)
	emp := engine.Employee{ID: "emp-1", StartDate: engine.NewDate(2025, time.January, 1), WorkdayMinutes: 480}

	entries := r.Generate(emp.ID, "sch-1", period, period.Start)
	violations := pattern.ValidateRest(emp, entries, pattern.DefaultShifts())

	assert.Empty(t, violations)
}

func TestMerge_Policies(t *testing.T) {
	day1 := engine.NewDate(2026, time.March, 2)
	day2 := engine.NewDate(2026, time.March, 3)
	day3 := engine.NewDate(2026, time.March, 4)

	existing := []engine.ScheduleEntry{
		{EmployeeID: "e", ScheduleID: "s", Day: day1, ShiftCode: "M8", ManuallyEdited: true},
		{EmployeeID: "e", ScheduleID: "s", Day: day2, ShiftCode: "A8"},
		{EmployeeID: "e", ScheduleID: "s", Day: day3, ShiftCode: ""},
	}
	candidates := []engine.ScheduleEntry{
		{EmployeeID: "e", ScheduleID: "s", Day: day1, ShiftCode: "D12"},
		{EmployeeID: "e", ScheduleID: "s", Day: day2, ShiftCode: "D12"},
		{EmployeeID: "e", ScheduleID: "s", Day: day3, ShiftCode: "D12"},
	}

	codes := func(entries []engine.ScheduleEntry) []string {
		var out []string
		for _, e := range entries {
			out = append(out, e.ShiftCode)
		}
		return out
	}

	emptyOnly := pattern.Merge(existing, candidates, pattern.OverwriteEmptyOnly)
	assert.Equal(t, []string{"M8", "A8", "D12"}, codes(emptyOnly))

	autoOnly := pattern.Merge(existing, candidates, pattern.OverwriteAutoOnly)
	assert.Equal(t, []string{"M8", "D12", "D12"}, codes(autoOnly))

	all := pattern.Merge(existing, candidates, pattern.OverwriteAll)
	assert.Equal(t, []string{"D12", "D12", "D12"}, codes(all))

	// The input slices are never mutated.
	assert.Equal(t, "A8", existing[1].ShiftCode)
}

func TestMerge_NewDaysAppendInDateOrder(t *testing.T) {
	existing := []engine.ScheduleEntry{
		{EmployeeID: "e", ScheduleID: "s", Day: engine.NewDate(2026, time.March, 5), ShiftCode: "M8"},
	}
	candidates := []engine.ScheduleEntry{
		{EmployeeID: "e", ScheduleID: "s", Day: engine.NewDate(2026, time.March, 2), ShiftCode: "D12"},
		{EmployeeID: "e", ScheduleID: "s", Day: engine.NewDate(2026, time.March, 9), ShiftCode: "D12"},
	}

	out := pattern.Merge(existing, candidates, pattern.OverwriteEmptyOnly)

	require.Len(t, out, 3)
	assert.Equal(t, "2026-03-02", out[0].Day.ISO())
	assert.Equal(t, "2026-03-05", out[1].Day.ISO())
	assert.Equal(t, "2026-03-09", out[2].Day.ISO())
}
