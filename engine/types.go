/*
Package engine implements the labor-compliance time computation core.

PURPOSE:
  Given raw shift occurrences for employees over a calendar period, the
  engine produces minute-accurate breakdowns (worked, night, weekend,
  holiday, overtime) and detects statutory violations (rest gaps, weekly
  hour ceilings, consecutive-day streaks).

KEY CONCEPTS IN THIS FILE (types.go):
  - Shift: an HH:MM template with break policy and planned minutes
  - ScheduleEntry: one occurrence of a shift on a day, optionally carrying
    a precomputed minute snapshot
  - Employee: employment range, regime flags and workday length
  - HolidayResolver: the injected capability for non-working-day lookup
  - Violation: a structured compliance finding, never a Go error
  - MonthlySummary: the aggregate output per employee

DESIGN PRINCIPLES:
  1. Purity: every computation is a function over caller-supplied inputs;
     the engine persists nothing and holds no cross-call state
  2. Totality: one malformed or dangling record contributes zero, it never
     aborts a batch
  3. Determinism: rounding residuals and allocation order are fixed so two
     runs over the same inputs are bit-identical

SEE ALSO:
  - split.go:      midnight-crossing segment splitting
  - metrics.go:    per-shift minute breakdowns
  - summary.go:    monthly aggregation and overtime buckets
  - compliance.go: violation checks
  - sirv.go:       period-level allocation for flexible regimes
*/
package engine

import (
	"context"

	"github.com/shopspring/decimal"
)

// =============================================================================
// SHIFT TEMPLATE
// =============================================================================

// ShiftKind distinguishes working shifts from absence placeholders.
type ShiftKind string

const (
	ShiftWork     ShiftKind = "work"
	ShiftVacation ShiftKind = "vacation"
	ShiftSick     ShiftKind = "sick"
)

// Shift is a reusable shift template, referenced from schedule entries by
// code. Times are "HH:MM" 24h clock strings; end <= start means the shift
// crosses midnight.
type Shift struct {
	Code           string
	Kind           ShiftKind
	StartTime      string
	EndTime        string
	BreakMinutes   int
	BreakIncluded  bool
	PlannedMinutes int
}

// Duration returns the raw shift length in minutes, applying the
// midnight-crossing rule. Malformed clock strings yield 0.
func (s Shift) Duration() int {
	start, okS := ParseClock(s.StartTime)
	end, okE := ParseClock(s.EndTime)
	if !okS || !okE {
		return 0
	}
	if end <= start {
		end += MinutesPerDay
	}
	return end - start
}

// IsAbsence reports whether the template represents vacation or sick leave.
func (s Shift) IsAbsence() bool {
	return s.Kind == ShiftVacation || s.Kind == ShiftSick
}

// =============================================================================
// SCHEDULE ENTRY
// =============================================================================

// MinuteSnapshot is a precomputed metric set attached to an entry. When
// present it is authoritative; the engine does not re-derive it.
type MinuteSnapshot struct {
	WorkMinutes    int
	NightMinutes   int
	HolidayMinutes int
	WeekendMinutes int
}

// ScheduleEntry is one shift occurrence for one employee on one day.
type ScheduleEntry struct {
	EmployeeID     string
	ScheduleID     string
	Day            Date
	ShiftCode      string
	ManuallyEdited bool
	Snapshot       *MinuteSnapshot
}

// =============================================================================
// EMPLOYEE
// =============================================================================

// Employee carries the attributes the engine needs. The employment range
// [StartDate, EndDate] gates which calendar days count toward norm and
// worked totals (inclusive bounds, nil EndDate = still employed).
type Employee struct {
	ID                    string
	StartDate             Date
	EndDate               *Date
	IsSIRV                bool
	WorkdayMinutes        int
	YoungWorker           bool
	Telk                  bool
	BaseVacationAllowance int
}

// EmployedOn reports whether the employee is employed on the given day.
func (e Employee) EmployedOn(d Date) bool {
	if !e.StartDate.IsZero() && d.Before(e.StartDate) {
		return false
	}
	if e.EndDate != nil && d.After(*e.EndDate) {
		return false
	}
	return true
}

// =============================================================================
// HOLIDAY RESOLUTION - Injected capability
// =============================================================================

// HolidayType orders holiday precedence: a tenant working-day override
// cancels any holiday status, then a tenant company day off wins, then the
// official calendar, else none.
type HolidayType string

const (
	HolidayOfficial        HolidayType = "official"
	HolidayCompany         HolidayType = "company"
	HolidayOverrideWorking HolidayType = "override_working"
	HolidayNone            HolidayType = "none"
)

// HolidayRecord is one row of a holiday table (official or tenant).
type HolidayRecord struct {
	Date      Date
	Name      string
	Type      HolidayType
	Recurring bool
}

// HolidayInfo is the resolver answer for a single date.
type HolidayInfo struct {
	IsHoliday bool
	Name      string
	Type      HolidayType
}

// HolidayResolver is the injected lookup capability. Implementations must
// be deterministic for a given date; caching and retries are theirs, not
// the engine's.
type HolidayResolver interface {
	Resolve(ctx context.Context, d Date) (HolidayInfo, error)
}

// CalendarDay is a derived day classification, never persisted.
type CalendarDay struct {
	Date      Date
	IsWeekend bool
	IsHoliday bool
}

// ClassifyDay derives a CalendarDay through the resolver.
func ClassifyDay(ctx context.Context, holidays HolidayResolver, d Date) (CalendarDay, error) {
	day := CalendarDay{Date: d, IsWeekend: d.IsWeekend()}
	if holidays == nil {
		return day, nil
	}
	info, err := holidays.Resolve(ctx, d)
	if err != nil {
		return day, err
	}
	day.IsHoliday = info.IsHoliday
	return day, nil
}

// =============================================================================
// VIOLATIONS - Structured findings, not errors
// =============================================================================

type ViolationType string

const (
	ViolationMaxShiftHours      ViolationType = "MAX_SHIFT_HOURS"
	ViolationDailyRest          ViolationType = "DAILY_REST_VIOLATION"
	ViolationWeeklyRest         ViolationType = "WEEKLY_REST_VIOLATION"
	ViolationSIRVWeeklyHours    ViolationType = "SIRV_WEEKLY_HOURS_VIOLATION"
	ViolationMaxConsecutiveDays ViolationType = "MAX_CONSECUTIVE_DAYS_WARNING"
	ViolationSIRVFallback       ViolationType = "SIRV_FALLBACK_ALLOCATION_WARNING"
)

type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Violation is an append-only compliance finding. An "error" blocks
// downstream workflow; a "warning" is advisory. A violation is never a Go
// error: the summary it accompanies is still valid.
type Violation struct {
	Type       ViolationType
	Severity   Severity
	EmployeeID string
	Date       Date
	// EndDate is set for findings spanning two shifts (rest gaps).
	EndDate Date
	// Measured vs threshold, both in minutes (streak checks use days).
	Measured  int
	Threshold int
	Message   string
}

// =============================================================================
// MONTHLY SUMMARY - Aggregate output per employee
// =============================================================================

// MonthlySummary is the per-employee aggregate for one period.
//
// Invariants:
//   NormalMinutes + OvertimeMinutes == WorkedMinutes
//   OvertimeHoliday + OvertimeRestday + OvertimeWeekday == OvertimeMinutes
//   Night/Holiday/Weekend minutes never exceed WorkedMinutes per shift
type MonthlySummary struct {
	EmployeeID string
	Period     Period

	WorkedMinutes  int
	NormMinutes    int
	NormalMinutes  int
	NightMinutes   int
	HolidayMinutes int
	WeekendMinutes int

	OvertimeMinutes int
	OvertimeHoliday int
	OvertimeRestday int
	OvertimeWeekday int

	VacationDays int
	SickDays     int

	PayableHours decimal.Decimal

	Violations []Violation
}

// =============================================================================
// PAY RATES
// =============================================================================

// PayRates are the premium coefficients feeding payable hours. Only the
// night coefficient is statutory (1.43); the rest are tenant-configurable.
type PayRates struct {
	NightCoefficient   decimal.Decimal
	HolidayCoefficient decimal.Decimal
	WeekendCoefficient decimal.Decimal
}

// DefaultPayRates returns the standard coefficient set.
func DefaultPayRates() PayRates {
	return PayRates{
		NightCoefficient:   decimal.NewFromFloat(1.43),
		HolidayCoefficient: decimal.NewFromInt(2),
		WeekendCoefficient: decimal.NewFromFloat(1.75),
	}
}

func minutesToHours(minutes int) decimal.Decimal {
	return decimal.NewFromInt(int64(minutes)).Div(decimal.NewFromInt(60))
}
