package calendar

import (
	"context"
	"sync"

	"github.com/warp/compliance-engine/engine"
)

// MemorySource is an in-memory Source, one row per date. Used in tests
// and anywhere persistence is not wanted.
type MemorySource struct {
	mu        sync.RWMutex
	rows      map[string]engine.HolidayRecord
	recurring []engine.HolidayRecord
}

var _ Source = (*MemorySource)(nil)

func NewMemorySource() *MemorySource {
	return &MemorySource{rows: make(map[string]engine.HolidayRecord)}
}

// Upsert writes a row keyed by date. Recurring rows are kept separately.
func (m *MemorySource) Upsert(rec engine.HolidayRecord) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if rec.Recurring {
		for i, r := range m.recurring {
			if r.Date.Equal(rec.Date) {
				m.recurring[i] = rec
				return
			}
		}
		m.recurring = append(m.recurring, rec)
		return
	}
	m.rows[rec.Date.ISO()] = rec
}

// Delete removes the row for a date, if present.
func (m *MemorySource) Delete(d engine.Date) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.rows, d.ISO())
}

func (m *MemorySource) Lookup(ctx context.Context, d engine.Date) (engine.HolidayRecord, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.rows[d.ISO()]
	return rec, ok, nil
}

func (m *MemorySource) ListRange(ctx context.Context, from, to engine.Date) ([]engine.HolidayRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []engine.HolidayRecord
	for _, rec := range m.rows {
		if !rec.Date.Before(from) && !rec.Date.After(to) {
			out = append(out, rec)
		}
	}
	sortRecords(out)
	return out, nil
}

func (m *MemorySource) ListRecurring(ctx context.Context) ([]engine.HolidayRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]engine.HolidayRecord, len(m.recurring))
	copy(out, m.recurring)
	return out, nil
}
