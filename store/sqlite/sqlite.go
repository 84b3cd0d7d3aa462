/*
Package sqlite persists tenant holiday rows.

PURPOSE:
  The engine itself persists nothing; what needs durability is the tenant
  holiday table behind the calendar's Source interface: company days off,
  working-day overrides, and official-table rows a tenant maintains.
  Upserts and deletes are simple keyed writes by date.

INTERFACES IMPLEMENTED:
  calendar.Source: Lookup, ListRange, ListRecurring

KEY TABLES:
  holidays: one row per date (recurring rows keyed separately)

CONCURRENCY:
  Uses sync.RWMutex for thread-safety on top of WAL mode. Multiple
  readers don't block; a single writer at a time.

USAGE:
  store, err := sqlite.New("./data/holidays.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

  cal := calendar.New(store)

SEE ALSO:
  - calendar/calendar.go: Source interface and precedence rules
  - calendar/memory.go: in-memory implementation for tests
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/warp/compliance-engine/engine"
)

// Store is a SQLite-backed holiday source.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New opens (or creates) the database at dbPath. Use ":memory:" for an
// in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS holidays (
		id         TEXT PRIMARY KEY,
		date       TEXT NOT NULL,
		name       TEXT NOT NULL,
		type       TEXT NOT NULL,
		recurring  INTEGER NOT NULL DEFAULT 0,
		created_at TEXT NOT NULL
	);
	CREATE UNIQUE INDEX IF NOT EXISTS idx_holidays_date
		ON holidays(date) WHERE recurring = 0;
	CREATE INDEX IF NOT EXISTS idx_holidays_recurring
		ON holidays(recurring);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Upsert writes a holiday row keyed by date. An existing row for the
// same date is replaced. The partial unique index only covers
// non-recurring rows, so recurring rows are replaced explicitly.
func (s *Store) Upsert(ctx context.Context, rec engine.HolidayRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	recurring := 0
	if rec.Recurring {
		recurring = 1
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if rec.Recurring {
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM holidays WHERE date = ? AND recurring = 1`, rec.Date.ISO()); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO holidays (id, date, name, type, recurring, created_at)
			VALUES (?, ?, ?, ?, ?, ?)`,
			uuid.NewString(), rec.Date.ISO(), rec.Name, string(rec.Type), recurring,
			time.Now().UTC().Format(time.RFC3339)); err != nil {
			return err
		}
		return tx.Commit()
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO holidays (id, date, name, type, recurring, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(date) WHERE recurring = 0 DO UPDATE SET
			name = excluded.name,
			type = excluded.type,
			recurring = excluded.recurring`,
		uuid.NewString(), rec.Date.ISO(), rec.Name, string(rec.Type), recurring,
		time.Now().UTC().Format(time.RFC3339)); err != nil {
		return err
	}
	return tx.Commit()
}

// Delete removes every row for a date (recurring rows included).
func (s *Store) Delete(ctx context.Context, d engine.Date) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `DELETE FROM holidays WHERE date = ?`, d.ISO())
	return err
}

// Lookup returns the non-recurring row for an exact date, if any.
func (s *Store) Lookup(ctx context.Context, d engine.Date) (engine.HolidayRecord, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT date, name, type, recurring FROM holidays
		WHERE date = ? AND recurring = 0`, d.ISO())

	rec, err := scanRecord(row)
	if err == sql.ErrNoRows {
		return engine.HolidayRecord{}, false, nil
	}
	if err != nil {
		return engine.HolidayRecord{}, false, err
	}
	return rec, true, nil
}

// ListRange returns all non-recurring rows with dates in [from, to],
// date-ordered.
func (s *Store) ListRange(ctx context.Context, from, to engine.Date) ([]engine.HolidayRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT date, name, type, recurring FROM holidays
		WHERE recurring = 0 AND date >= ? AND date <= ?
		ORDER BY date`, from.ISO(), to.ISO())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectRecords(rows)
}

// ListRecurring returns all recurring rows.
func (s *Store) ListRecurring(ctx context.Context) ([]engine.HolidayRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT date, name, type, recurring FROM holidays
		WHERE recurring = 1
		ORDER BY date`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectRecords(rows)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (engine.HolidayRecord, error) {
	var dateISO, name, holidayType string
	var recurring int
	if err := row.Scan(&dateISO, &name, &holidayType, &recurring); err != nil {
		return engine.HolidayRecord{}, err
	}
	d, err := engine.ParseDate(dateISO)
	if err != nil {
		return engine.HolidayRecord{}, err
	}
	return engine.HolidayRecord{
		Date:      d,
		Name:      name,
		Type:      engine.HolidayType(holidayType),
		Recurring: recurring == 1,
	}, nil
}

func collectRecords(rows *sql.Rows) ([]engine.HolidayRecord, error) {
	var out []engine.HolidayRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
