/*
Package calendar resolves whether a date is a non-working day.

PURPOSE:
  Implements the holiday-lookup capability the engine depends on. A
  Calendar layers three sources, highest precedence first:

  1. Tenant rows (from an injected Source): a working-day override
     cancels any holiday status for its date; otherwise a company day
     off wins; recurring company rows repeat yearly.
  2. Official tenant rows (same Source, type "official").
  3. The built-in Bulgarian seed set (seed.go), computed per year and
     cached. The cache holds derived data only, never authoritative
     state.

  Unknown or malformed dates resolve to {IsHoliday: false, Type: none}
  without raising.

CONSTRUCTION:
  Build one Calendar per process/tenant with its resolved Source and
  pass it by reference into the engine. The engine owns no caching or
  retry policy for it.

SEE ALSO:
  - seed.go, easter.go: the built-in seed computation
  - memory.go: in-memory Source for tests
  - store/sqlite: the persistent Source implementation
*/
package calendar

import (
	"context"
	"sort"
	"sync"

	"github.com/teambition/rrule-go"
	"github.com/warp/compliance-engine/engine"
)

// Source supplies tenant and official holiday rows. Implementations own
// their caching and retry behavior; Lookup must be deterministic for a
// given date.
type Source interface {
	// Lookup returns the row for an exact date, if any.
	Lookup(ctx context.Context, d engine.Date) (engine.HolidayRecord, bool, error)

	// ListRange returns all non-recurring rows with dates in [from, to].
	ListRange(ctx context.Context, from, to engine.Date) ([]engine.HolidayRecord, error)

	// ListRecurring returns all rows marked recurring.
	ListRecurring(ctx context.Context) ([]engine.HolidayRecord, error)
}

// Calendar resolves dates against tenant rows and the built-in seed set.
// Safe for concurrent use.
type Calendar struct {
	source Source

	mu    sync.RWMutex
	seeds map[int]map[string]engine.HolidayRecord
}

var _ engine.HolidayResolver = (*Calendar)(nil)

// New creates a Calendar over the given Source. A nil source leaves only
// the built-in seed set.
func New(source Source) *Calendar {
	return &Calendar{
		source: source,
		seeds:  make(map[int]map[string]engine.HolidayRecord),
	}
}

// Resolve answers the holiday question for one date, applying the
// precedence chain. Zero dates resolve to none.
func (c *Calendar) Resolve(ctx context.Context, d engine.Date) (engine.HolidayInfo, error) {
	if d.IsZero() {
		return engine.HolidayInfo{Type: engine.HolidayNone}, nil
	}

	if c.source != nil {
		rec, ok, err := c.source.Lookup(ctx, d)
		if err != nil {
			return engine.HolidayInfo{}, err
		}
		if !ok {
			rec, ok, err = c.recurringFor(ctx, d)
			if err != nil {
				return engine.HolidayInfo{}, err
			}
		}
		if ok {
			if rec.Type == engine.HolidayOverrideWorking {
				return engine.HolidayInfo{IsHoliday: false, Name: rec.Name, Type: rec.Type}, nil
			}
			return engine.HolidayInfo{IsHoliday: true, Name: rec.Name, Type: rec.Type}, nil
		}
	}

	if rec, ok := c.seedFor(d); ok {
		return engine.HolidayInfo{IsHoliday: true, Name: rec.Name, Type: engine.HolidayOfficial}, nil
	}

	return engine.HolidayInfo{Type: engine.HolidayNone}, nil
}

// SeedYear returns the built-in official set for a year, cached.
func (c *Calendar) SeedYear(year int) []engine.HolidayRecord {
	byDate := c.seedMap(year)
	records := make([]engine.HolidayRecord, 0, len(byDate))
	for _, rec := range byDate {
		records = append(records, rec)
	}
	sortRecords(records)
	return records
}

// ListCombined merges the built-in seeds, tenant rows and expanded
// recurring rows into one deduplicated date-ordered view. Tenant rows
// override seeds on overlap; a working-day override row stays visible so
// callers can render the cancellation.
func (c *Calendar) ListCombined(ctx context.Context, from, to engine.Date) ([]engine.HolidayRecord, error) {
	if to.Before(from) {
		return nil, engine.ErrInvalidPeriod
	}

	rank := func(t engine.HolidayType) int {
		switch t {
		case engine.HolidayOverrideWorking:
			return 3
		case engine.HolidayCompany:
			return 2
		case engine.HolidayOfficial:
			return 1
		default:
			return 0
		}
	}

	best := make(map[string]engine.HolidayRecord)
	merge := func(rec engine.HolidayRecord, tenant bool) {
		if rec.Date.Before(from) || rec.Date.After(to) {
			return
		}
		key := rec.Date.ISO()
		cur, exists := best[key]
		if !exists {
			best[key] = rec
			return
		}
		// Tenant rows override the seed at equal rank.
		if rank(rec.Type) > rank(cur.Type) || (tenant && rank(rec.Type) == rank(cur.Type)) {
			best[key] = rec
		}
	}

	for year := from.Year(); year <= to.Year(); year++ {
		for _, rec := range c.SeedYear(year) {
			merge(rec, false)
		}
	}

	if c.source != nil {
		rows, err := c.source.ListRange(ctx, from, to)
		if err != nil {
			return nil, err
		}
		for _, rec := range rows {
			merge(rec, true)
		}

		recurring, err := c.source.ListRecurring(ctx)
		if err != nil {
			return nil, err
		}
		for _, rec := range recurring {
			dates, err := expandRecurring(rec, from, to)
			if err != nil {
				return nil, err
			}
			for _, d := range dates {
				occurrence := rec
				occurrence.Date = d
				merge(occurrence, true)
			}
		}
	}

	records := make([]engine.HolidayRecord, 0, len(best))
	for _, rec := range best {
		records = append(records, rec)
	}
	sortRecords(records)
	return records, nil
}

// expandRecurring materializes a yearly-recurring row's occurrences
// within [from, to].
func expandRecurring(rec engine.HolidayRecord, from, to engine.Date) ([]engine.Date, error) {
	rule, err := rrule.NewRRule(rrule.ROption{
		Freq:    rrule.YEARLY,
		Dtstart: rec.Date.Time,
	})
	if err != nil {
		return nil, err
	}

	var dates []engine.Date
	for _, t := range rule.Between(from.Time.AddDate(0, 0, -1), to.Time.AddDate(0, 0, 1), true) {
		dates = append(dates, engine.NewDate(t.Year(), t.Month(), t.Day()))
	}
	return dates, nil
}

// recurringFor matches a date against recurring tenant rows.
func (c *Calendar) recurringFor(ctx context.Context, d engine.Date) (engine.HolidayRecord, bool, error) {
	recurring, err := c.source.ListRecurring(ctx)
	if err != nil {
		return engine.HolidayRecord{}, false, err
	}
	for _, rec := range recurring {
		if rec.Date.Month() == d.Month() && rec.Date.Day() == d.Day() && !d.Before(rec.Date) {
			occurrence := rec
			occurrence.Date = d
			return occurrence, true, nil
		}
	}
	return engine.HolidayRecord{}, false, nil
}

func (c *Calendar) seedFor(d engine.Date) (engine.HolidayRecord, bool) {
	rec, ok := c.seedMap(d.Year())[d.ISO()]
	return rec, ok
}

func (c *Calendar) seedMap(year int) map[string]engine.HolidayRecord {
	c.mu.RLock()
	cached, ok := c.seeds[year]
	c.mu.RUnlock()
	if ok {
		return cached
	}

	byDate := make(map[string]engine.HolidayRecord)
	for _, rec := range SeedYear(year) {
		byDate[rec.Date.ISO()] = rec
	}

	c.mu.Lock()
	c.seeds[year] = byDate
	c.mu.Unlock()
	return byDate
}

func sortRecords(records []engine.HolidayRecord) {
	sort.Slice(records, func(i, j int) bool {
		return records[i].Date.Before(records[j].Date)
	})
}
