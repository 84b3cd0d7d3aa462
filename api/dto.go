/*
dto.go - Data Transfer Objects and boundary normalization

PURPOSE:
  Defines the JSON structures of the compute API and the single
  normalization step that maps loose external record shapes into the
  canonical engine types. Upstream systems disagree on field naming
  (work_minutes vs workMinutes); both are accepted here and nowhere
  else, so the engine never sees the variance.

VALIDATION:
  Inbound records are validated with field tags (go-playground/validator)
  plus a custom "hhmm" clock tag. Failures come back as a field-tagged
  error list with HTTP 400 (tier one of the error model). Records that
  pass validation can still reference unknown shift codes; the engine
  skips those rather than failing the batch (tier two).

SEE ALSO:
  - handlers.go: endpoints consuming these types
  - engine/types.go: the canonical shapes
*/
package api

import (
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"github.com/warp/compliance-engine/engine"
)

var validate *validator.Validate

func init() {
	validate = validator.New()
	validate.RegisterValidation("hhmm", func(fl validator.FieldLevel) bool {
		_, ok := engine.ParseClock(fl.Field().String())
		return ok
	})
}

// FieldErrorDTO is one field-tagged validation failure.
type FieldErrorDTO struct {
	Field   string `json:"field"`
	Tag     string `json:"tag"`
	Message string `json:"message"`
}

func validateStruct(s interface{}) []FieldErrorDTO {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var out []FieldErrorDTO
	for _, fe := range err.(validator.ValidationErrors) {
		out = append(out, FieldErrorDTO{
			Field:   fe.Field(),
			Tag:     fe.Tag(),
			Message: fe.Error(),
		})
	}
	return out
}

// =============================================================================
// INBOUND RECORDS
// =============================================================================

// EmployeeDTO is the inbound employee record.
type EmployeeDTO struct {
	ID                    string  `json:"id" validate:"required"`
	StartDate             string  `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate               *string `json:"end_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	IsSIRV                bool    `json:"is_sirv"`
	WorkdayMinutes        int     `json:"workday_minutes" validate:"gte=0,lte=1440"`
	YoungWorker           bool    `json:"young_worker"`
	Telk                  bool    `json:"telk"`
	BaseVacationAllowance int     `json:"base_vacation_allowance" validate:"gte=0"`
}

func (d EmployeeDTO) toEngine() (engine.Employee, error) {
	start, err := engine.ParseDate(d.StartDate)
	if err != nil {
		return engine.Employee{}, err
	}
	emp := engine.Employee{
		ID:                    d.ID,
		StartDate:             start,
		IsSIRV:                d.IsSIRV,
		WorkdayMinutes:        d.WorkdayMinutes,
		YoungWorker:           d.YoungWorker,
		Telk:                  d.Telk,
		BaseVacationAllowance: d.BaseVacationAllowance,
	}
	if emp.WorkdayMinutes == 0 {
		emp.WorkdayMinutes = 480
	}
	if d.EndDate != nil {
		end, err := engine.ParseDate(*d.EndDate)
		if err != nil {
			return engine.Employee{}, err
		}
		emp.EndDate = &end
	}
	return emp, nil
}

// ShiftDTO is the inbound shift template record.
type ShiftDTO struct {
	Code           string `json:"code" validate:"required"`
	Kind           string `json:"kind" validate:"omitempty,oneof=work vacation sick"`
	StartTime      string `json:"start_time" validate:"omitempty,hhmm"`
	EndTime        string `json:"end_time" validate:"omitempty,hhmm"`
	BreakMinutes   int    `json:"break_minutes" validate:"gte=0"`
	BreakIncluded  bool   `json:"break_included"`
	PlannedMinutes int    `json:"planned_minutes" validate:"gte=0"`
}

func (d ShiftDTO) toEngine() engine.Shift {
	kind := engine.ShiftKind(d.Kind)
	if kind == "" {
		kind = engine.ShiftWork
	}
	return engine.Shift{
		Code:           d.Code,
		Kind:           kind,
		StartTime:      d.StartTime,
		EndTime:        d.EndTime,
		BreakMinutes:   d.BreakMinutes,
		BreakIncluded:  d.BreakIncluded,
		PlannedMinutes: d.PlannedMinutes,
	}
}

// EntryDTO is the inbound schedule entry. The minute snapshot fields come
// in both snake_case and camelCase from different upstreams; pick
// whichever is present, snake_case winning.
type EntryDTO struct {
	EmployeeID     string `json:"employee_id" validate:"required"`
	ScheduleID     string `json:"schedule_id"`
	Day            string `json:"day" validate:"required,datetime=2006-01-02"`
	ShiftCode      string `json:"shift_code"`
	ManuallyEdited bool   `json:"manually_edited"`

	WorkMinutes    *int `json:"work_minutes,omitempty"`
	NightMinutes   *int `json:"night_minutes,omitempty"`
	HolidayMinutes *int `json:"holiday_minutes,omitempty"`
	WeekendMinutes *int `json:"weekend_minutes,omitempty"`

	WorkMinutesAlt    *int `json:"workMinutes,omitempty"`
	NightMinutesAlt   *int `json:"nightMinutes,omitempty"`
	HolidayMinutesAlt *int `json:"holidayMinutes,omitempty"`
	WeekendMinutesAlt *int `json:"weekendMinutes,omitempty"`
}

func pick(primary, alt *int) *int {
	if primary != nil {
		return primary
	}
	return alt
}

func (d EntryDTO) toEngine() (engine.ScheduleEntry, error) {
	day, err := engine.ParseDate(d.Day)
	if err != nil {
		return engine.ScheduleEntry{}, err
	}
	entry := engine.ScheduleEntry{
		EmployeeID:     d.EmployeeID,
		ScheduleID:     d.ScheduleID,
		Day:            day,
		ShiftCode:      d.ShiftCode,
		ManuallyEdited: d.ManuallyEdited,
	}

	work := pick(d.WorkMinutes, d.WorkMinutesAlt)
	if work != nil {
		snap := &engine.MinuteSnapshot{WorkMinutes: *work}
		if v := pick(d.NightMinutes, d.NightMinutesAlt); v != nil {
			snap.NightMinutes = *v
		}
		if v := pick(d.HolidayMinutes, d.HolidayMinutesAlt); v != nil {
			snap.HolidayMinutes = *v
		}
		if v := pick(d.WeekendMinutes, d.WeekendMinutesAlt); v != nil {
			snap.WeekendMinutes = *v
		}
		entry.Snapshot = snap
	}
	return entry, nil
}

// PeriodDTO selects a calendar month.
type PeriodDTO struct {
	Year  int `json:"year" validate:"required,gte=2000,lte=2100"`
	Month int `json:"month" validate:"required,gte=1,lte=12"`
}

// =============================================================================
// REQUESTS
// =============================================================================

// SummariesRequest is the batch month computation request.
type SummariesRequest struct {
	Period    PeriodDTO     `json:"period" validate:"required"`
	Employees []EmployeeDTO `json:"employees" validate:"required,min=1,dive"`
	Shifts    []ShiftDTO    `json:"shifts" validate:"dive"`
	Entries   []EntryDTO    `json:"entries" validate:"dive"`
}

// ComplianceRequest checks one employee's entries.
type ComplianceRequest struct {
	Employee EmployeeDTO `json:"employee" validate:"required"`
	Shifts   []ShiftDTO  `json:"shifts" validate:"dive"`
	Entries  []EntryDTO  `json:"entries" validate:"required,min=1,dive"`
}

// PatternRequest generates and merges a rotation for one employee.
type PatternRequest struct {
	Template        string      `json:"template" validate:"required"`
	Offset          int         `json:"offset"`
	Employee        EmployeeDTO `json:"employee" validate:"required"`
	ScheduleID      string      `json:"schedule_id"`
	Period          PeriodDTO   `json:"period" validate:"required"`
	Anchor          string      `json:"anchor" validate:"omitempty,datetime=2006-01-02"`
	OverwritePolicy string      `json:"overwrite_policy" validate:"omitempty,oneof=empty_only overwrite_auto_only overwrite_all"`
	Shifts          []ShiftDTO  `json:"shifts" validate:"dive"`
	Existing        []EntryDTO  `json:"existing" validate:"dive"`
}

// HolidayUpsertRequest writes one tenant holiday row.
type HolidayUpsertRequest struct {
	Date      string `json:"date" validate:"required,datetime=2006-01-02"`
	Name      string `json:"name" validate:"required"`
	Type      string `json:"type" validate:"required,oneof=official company override_working"`
	Recurring bool   `json:"recurring"`
}

// =============================================================================
// RESPONSES
// =============================================================================

// ViolationDTO is one compliance finding.
type ViolationDTO struct {
	Type       string `json:"type"`
	Severity   string `json:"severity"`
	EmployeeID string `json:"employee_id"`
	Date       string `json:"date,omitempty"`
	EndDate    string `json:"end_date,omitempty"`
	Measured   int    `json:"measured"`
	Threshold  int    `json:"threshold"`
	Message    string `json:"message"`
}

func toViolationDTO(v engine.Violation) ViolationDTO {
	dto := ViolationDTO{
		Type:       string(v.Type),
		Severity:   string(v.Severity),
		EmployeeID: v.EmployeeID,
		Measured:   v.Measured,
		Threshold:  v.Threshold,
		Message:    v.Message,
	}
	if !v.Date.IsZero() {
		dto.Date = v.Date.ISO()
	}
	if !v.EndDate.IsZero() {
		dto.EndDate = v.EndDate.ISO()
	}
	return dto
}

// SummaryDTO is the per-employee monthly aggregate.
type SummaryDTO struct {
	EmployeeID string `json:"employee_id"`
	From       string `json:"from"`
	To         string `json:"to"`

	WorkedMinutes  int `json:"worked_minutes"`
	NormMinutes    int `json:"norm_minutes"`
	NormalMinutes  int `json:"normal_minutes"`
	NightMinutes   int `json:"night_minutes"`
	HolidayMinutes int `json:"holiday_minutes"`
	WeekendMinutes int `json:"weekend_minutes"`

	OvertimeMinutes int `json:"overtime_minutes"`
	OvertimeHoliday int `json:"overtime_holiday_minutes"`
	OvertimeRestday int `json:"overtime_restday_minutes"`
	OvertimeWeekday int `json:"overtime_weekday_minutes"`

	VacationDays int `json:"vacation_days"`
	SickDays     int `json:"sick_days"`

	PayableHours decimal.Decimal `json:"payable_hours"`

	Violations []ViolationDTO `json:"violations"`
}

func toSummaryDTO(s *engine.MonthlySummary) SummaryDTO {
	dto := SummaryDTO{
		EmployeeID:      s.EmployeeID,
		From:            s.Period.Start.ISO(),
		To:              s.Period.End.ISO(),
		WorkedMinutes:   s.WorkedMinutes,
		NormMinutes:     s.NormMinutes,
		NormalMinutes:   s.NormalMinutes,
		NightMinutes:    s.NightMinutes,
		HolidayMinutes:  s.HolidayMinutes,
		WeekendMinutes:  s.WeekendMinutes,
		OvertimeMinutes: s.OvertimeMinutes,
		OvertimeHoliday: s.OvertimeHoliday,
		OvertimeRestday: s.OvertimeRestday,
		OvertimeWeekday: s.OvertimeWeekday,
		VacationDays:    s.VacationDays,
		SickDays:        s.SickDays,
		PayableHours:    s.PayableHours.Round(2),
		Violations:      []ViolationDTO{},
	}
	for _, v := range s.Violations {
		dto.Violations = append(dto.Violations, toViolationDTO(v))
	}
	return dto
}

// HolidayDTO is one calendar row.
type HolidayDTO struct {
	Date      string `json:"date"`
	Name      string `json:"name"`
	Type      string `json:"type"`
	Recurring bool   `json:"recurring,omitempty"`
}

func toHolidayDTO(rec engine.HolidayRecord) HolidayDTO {
	return HolidayDTO{
		Date:      rec.Date.ISO(),
		Name:      rec.Name,
		Type:      string(rec.Type),
		Recurring: rec.Recurring,
	}
}

// EntryOutDTO is a generated/merged schedule entry.
type EntryOutDTO struct {
	EmployeeID     string `json:"employee_id"`
	ScheduleID     string `json:"schedule_id,omitempty"`
	Day            string `json:"day"`
	ShiftCode      string `json:"shift_code"`
	ManuallyEdited bool   `json:"manually_edited,omitempty"`
}

func toEntryOutDTO(e engine.ScheduleEntry) EntryOutDTO {
	return EntryOutDTO{
		EmployeeID:     e.EmployeeID,
		ScheduleID:     e.ScheduleID,
		Day:            e.Day.ISO(),
		ShiftCode:      e.ShiftCode,
		ManuallyEdited: e.ManuallyEdited,
	}
}
