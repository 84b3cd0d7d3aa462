/*
handlers.go - HTTP handlers for the compute API

PURPOSE:
  The engine is pure; these handlers are the collaborator surface that
  feeds it. Callers POST already-scoped employee/shift/entry records and
  get summaries and findings back; nothing computed here is persisted.
  Only the tenant holiday table lives in the store.

ERROR HANDLING:
  - 400: body decoding and field-tagged validation failures
  - 500: store failures
  Deletes are idempotent: removing an absent holiday row is a 204.
  Compliance findings are never HTTP errors; they ride in the payload.

SEE ALSO:
  - dto.go: request/response shapes and normalization
  - server.go: router and middleware
*/
package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/warp/compliance-engine/calendar"
	"github.com/warp/compliance-engine/engine"
	"github.com/warp/compliance-engine/pattern"
	"github.com/warp/compliance-engine/store/sqlite"
)

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store    *sqlite.Store
	Calendar *calendar.Calendar
	Rates    engine.PayRates
}

// NewHandler wires a handler over the given store. The calendar is built
// once here and injected into every computation.
func NewHandler(store *sqlite.Store) *Handler {
	return &Handler{
		Store:    store,
		Calendar: calendar.New(store),
		Rates:    engine.DefaultPayRates(),
	}
}

// =============================================================================
// SUMMARIES
// =============================================================================

// ComputeSummaries handles POST /api/summaries.
func (h *Handler) ComputeSummaries(w http.ResponseWriter, r *http.Request) {
	var req SummariesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if fields := validateStruct(req); fields != nil {
		writeValidationErrors(w, fields)
		return
	}

	employees, shifts, entries, err := h.normalize(req.Employees, req.Shifts, req.Entries)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid record", err)
		return
	}

	period := engine.MonthPeriod(req.Period.Year, time.Month(req.Period.Month))
	agg := engine.NewAggregator(h.Calendar, h.Rates)
	summaries, err := agg.SummarizeAll(r.Context(), employees, entries, shifts, period)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to compute summaries", err)
		return
	}

	out := make(map[string]SummaryDTO, len(summaries))
	for id, s := range summaries {
		out[id] = toSummaryDTO(s)
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"summaries": out})
}

// =============================================================================
// COMPLIANCE
// =============================================================================

// CheckCompliance handles POST /api/compliance/check.
func (h *Handler) CheckCompliance(w http.ResponseWriter, r *http.Request) {
	var req ComplianceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if fields := validateStruct(req); fields != nil {
		writeValidationErrors(w, fields)
		return
	}

	employees, shifts, entries, err := h.normalize([]EmployeeDTO{req.Employee}, req.Shifts, req.Entries)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid record", err)
		return
	}

	checker := &engine.Checker{}
	violations := checker.Check(engine.CheckInput{
		Employee: employees[0],
		Entries:  entries,
		Shifts:   shifts,
	})

	dtos := []ViolationDTO{}
	blocked := false
	for _, v := range violations {
		dtos = append(dtos, toViolationDTO(v))
		if v.Severity == engine.SeverityError {
			blocked = true
		}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"violations": dtos,
		"blocked":    blocked,
	})
}

// =============================================================================
// PATTERNS
// =============================================================================

// GeneratePattern handles POST /api/patterns/generate.
func (h *Handler) GeneratePattern(w http.ResponseWriter, r *http.Request) {
	var req PatternRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if fields := validateStruct(req); fields != nil {
		writeValidationErrors(w, fields)
		return
	}

	rotation, err := pattern.NewRotation(pattern.Template(req.Template), req.Offset)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Unknown template", err)
		return
	}

	employees, shifts, existing, err := h.normalize([]EmployeeDTO{req.Employee}, req.Shifts, req.Existing)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid record", err)
		return
	}
	emp := employees[0]

	// The built-in rotations reference their default templates; caller
	// templates with matching codes take precedence.
	for code, shift := range pattern.DefaultShifts() {
		if _, ok := shifts[code]; !ok {
			shifts[code] = shift
		}
	}

	period := engine.MonthPeriod(req.Period.Year, time.Month(req.Period.Month))
	anchor := period.Start
	if req.Anchor != "" {
		anchor, err = engine.ParseDate(req.Anchor)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid anchor date", err)
			return
		}
	}

	policy := pattern.OverwritePolicy(req.OverwritePolicy)
	if policy == "" {
		policy = pattern.OverwriteEmptyOnly
	}

	candidates := rotation.Generate(emp.ID, req.ScheduleID, period, anchor)
	merged := pattern.Merge(existing, candidates, policy)
	violations := pattern.ValidateRest(emp, merged, shifts)

	dtos := []ViolationDTO{}
	blocked := false
	for _, v := range violations {
		dtos = append(dtos, toViolationDTO(v))
		if v.Severity == engine.SeverityError {
			blocked = true
		}
	}

	entryDTOs := make([]EntryOutDTO, 0, len(merged))
	for _, e := range merged {
		entryDTOs = append(entryDTOs, toEntryOutDTO(e))
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"entries":    entryDTOs,
		"violations": dtos,
		"blocked":    blocked,
	})
}

// =============================================================================
// HOLIDAYS
// =============================================================================

// ListHolidays handles GET /api/holidays?from=YYYY-MM-DD&to=YYYY-MM-DD.
func (h *Handler) ListHolidays(w http.ResponseWriter, r *http.Request) {
	from, err := engine.ParseDate(r.URL.Query().Get("from"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid from date (use YYYY-MM-DD)", err)
		return
	}
	to, err := engine.ParseDate(r.URL.Query().Get("to"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid to date (use YYYY-MM-DD)", err)
		return
	}

	records, err := h.Calendar.ListCombined(r.Context(), from, to)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list holidays", err)
		return
	}

	dtos := make([]HolidayDTO, 0, len(records))
	for _, rec := range records {
		dtos = append(dtos, toHolidayDTO(rec))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// UpsertHoliday handles POST /api/holidays.
func (h *Handler) UpsertHoliday(w http.ResponseWriter, r *http.Request) {
	var req HolidayUpsertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if fields := validateStruct(req); fields != nil {
		writeValidationErrors(w, fields)
		return
	}

	date, err := engine.ParseDate(req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date format (use YYYY-MM-DD)", err)
		return
	}

	rec := engine.HolidayRecord{
		Date:      date,
		Name:      req.Name,
		Type:      engine.HolidayType(req.Type),
		Recurring: req.Recurring,
	}
	if err := h.Store.Upsert(r.Context(), rec); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save holiday", err)
		return
	}
	writeJSON(w, http.StatusCreated, toHolidayDTO(rec))
}

// DeleteHoliday handles DELETE /api/holidays/{date}.
func (h *Handler) DeleteHoliday(w http.ResponseWriter, r *http.Request) {
	date, err := engine.ParseDate(chi.URLParam(r, "date"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date format (use YYYY-MM-DD)", err)
		return
	}
	if err := h.Store.Delete(r.Context(), date); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to delete holiday", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SeedYear handles GET /api/holidays/seed/{year}.
func (h *Handler) SeedYear(w http.ResponseWriter, r *http.Request) {
	year, err := strconv.Atoi(chi.URLParam(r, "year"))
	if err != nil || year < 1900 || year > 2099 {
		writeError(w, http.StatusBadRequest, "Invalid year", err)
		return
	}

	records := h.Calendar.SeedYear(year)
	dtos := make([]HolidayDTO, 0, len(records))
	for _, rec := range records {
		dtos = append(dtos, toHolidayDTO(rec))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// =============================================================================
// HELPERS
// =============================================================================

// normalize maps the loose inbound records into canonical engine types.
func (h *Handler) normalize(employees []EmployeeDTO, shifts []ShiftDTO, entries []EntryDTO) ([]engine.Employee, map[string]engine.Shift, []engine.ScheduleEntry, error) {
	emps := make([]engine.Employee, 0, len(employees))
	for _, dto := range employees {
		emp, err := dto.toEngine()
		if err != nil {
			return nil, nil, nil, err
		}
		emps = append(emps, emp)
	}

	shiftMap := make(map[string]engine.Shift, len(shifts))
	for _, dto := range shifts {
		shift := dto.toEngine()
		shiftMap[shift.Code] = shift
	}

	entryList := make([]engine.ScheduleEntry, 0, len(entries))
	for _, dto := range entries {
		entry, err := dto.toEngine()
		if err != nil {
			return nil, nil, nil, err
		}
		entryList = append(entryList, entry)
	}
	return emps, shiftMap, entryList, nil
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	body := map[string]interface{}{"error": message}
	if err != nil {
		body["detail"] = err.Error()
	}
	writeJSON(w, status, body)
}

func writeValidationErrors(w http.ResponseWriter, fields []FieldErrorDTO) {
	writeJSON(w, http.StatusBadRequest, map[string]interface{}{
		"error":  "Validation failed",
		"fields": fields,
	})
}
