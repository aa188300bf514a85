// Package catalog keeps a SQLite index of recording sessions and the driving
// log rows written during each one, so datasets can be queried without
// parsing every CSV.
package catalog

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"teleop-logger/models"
	"teleop-logger/utils"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// ErrNoSession is returned when records are added before StartSession.
var ErrNoSession = errors.New("catalog: no active session")

// Session is one run of the rig.
type Session struct {
	ID             string
	StartedAt      time.Time
	EndedAt        time.Time // zero while the session is open
	CSVPath        string
	ImageDir       string
	SamplesLogged  uint64
	SamplesDropped uint64
	FramesCaptured uint64
}

// Totals are the counters stored when a session ends.
type Totals struct {
	SamplesLogged  uint64
	SamplesDropped uint64
	FramesCaptured uint64
}

// Catalog is safe for concurrent use.
type Catalog struct {
	db *sql.DB

	mu      sync.Mutex
	session string
}

// Open opens or creates the catalog database at path and applies pending
// migrations.
func Open(path string) (*Catalog, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("catalog dir %s: %w", dir, err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open catalog %s: %w", path, err)
	}
	// SQLite allows one writer; a single connection avoids SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(`PRAGMA foreign_keys = ON; PRAGMA journal_mode = WAL; PRAGMA busy_timeout = 5000`); err != nil {
		db.Close()
		return nil, fmt.Errorf("catalog pragmas: %w", err)
	}
	if err := migrateUp(db); err != nil {
		db.Close()
		return nil, err
	}
	return &Catalog{db: db}, nil
}

func migrateUp(db *sql.DB) error {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("catalog migrations source: %w", err)
	}
	driver, err := sqlite.WithInstance(db, &sqlite.Config{})
	if err != nil {
		return fmt.Errorf("failed to create sqlite driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "sqlite", driver)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}
	// m is not closed: that would close db as well.
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration up failed: %w", err)
	}
	return nil
}

// StartSession opens a new session and makes it the target of AddRecord.
func (c *Catalog) StartSession(csvPath, imageDir string, startedAt time.Time) (string, error) {
	id := uuid.NewString()
	_, err := c.db.Exec(
		`INSERT INTO sessions (session_id, started_at_ns, csv_path, image_dir) VALUES (?, ?, ?, ?)`,
		id, startedAt.UnixNano(), csvPath, imageDir,
	)
	if err != nil {
		return "", fmt.Errorf("start session: %w", err)
	}
	c.mu.Lock()
	c.session = id
	c.mu.Unlock()
	return id, nil
}

// AddRecord stores one driving-log row under the active session.
func (c *Catalog) AddRecord(rec models.LogRecord) error {
	c.mu.Lock()
	id := c.session
	c.mu.Unlock()
	if id == "" {
		return ErrNoSession
	}
	_, err := c.db.Exec(
		`INSERT INTO records (session_id, timestamp_ns, image_path, steering_pulse, throttle_pulse) VALUES (?, ?, ?, ?, ?)`,
		id, rec.Timestamp.UnixNano(), rec.ImagePath, rec.SteeringPulse, rec.ThrottlePulse,
	)
	if err != nil {
		return fmt.Errorf("add record: %w", err)
	}
	return nil
}

// EndSession closes the active session with its final counters.
func (c *Catalog) EndSession(endedAt time.Time, t Totals) error {
	c.mu.Lock()
	id := c.session
	c.session = ""
	c.mu.Unlock()
	if id == "" {
		return ErrNoSession
	}
	_, err := c.db.Exec(
		`UPDATE sessions SET ended_at_ns = ?, samples_logged = ?, samples_dropped = ?, frames_captured = ? WHERE session_id = ?`,
		endedAt.UnixNano(), int64(t.SamplesLogged), int64(t.SamplesDropped), int64(t.FramesCaptured), id,
	)
	if err != nil {
		return fmt.Errorf("end session: %w", err)
	}
	return nil
}

// Session loads one session by id.
func (c *Catalog) Session(id string) (Session, error) {
	var (
		s                       Session
		started                 int64
		ended                   sql.NullInt64
		logged, dropped, frames int64
	)
	err := c.db.QueryRow(
		`SELECT session_id, started_at_ns, ended_at_ns, csv_path, image_dir, samples_logged, samples_dropped, frames_captured
		   FROM sessions WHERE session_id = ?`, id,
	).Scan(&s.ID, &started, &ended, &s.CSVPath, &s.ImageDir, &logged, &dropped, &frames)
	if err != nil {
		return Session{}, fmt.Errorf("load session %s: %w", id, err)
	}
	s.StartedAt = utils.NanoToTime(started)
	if ended.Valid {
		s.EndedAt = utils.NanoToTime(ended.Int64)
	}
	s.SamplesLogged, s.SamplesDropped, s.FramesCaptured = uint64(logged), uint64(dropped), uint64(frames)
	return s, nil
}

// Records returns the rows of a session in the order they were logged.
func (c *Catalog) Records(sessionID string) ([]models.LogRecord, error) {
	rows, err := c.db.Query(
		`SELECT timestamp_ns, image_path, steering_pulse, throttle_pulse
		   FROM records WHERE session_id = ? ORDER BY record_id`, sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("query records: %w", err)
	}
	defer rows.Close()

	var out []models.LogRecord
	for rows.Next() {
		var (
			ts  int64
			rec models.LogRecord
		)
		if err := rows.Scan(&ts, &rec.ImagePath, &rec.SteeringPulse, &rec.ThrottlePulse); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		rec.Timestamp = utils.NanoToTime(ts)
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Close closes the database.
func (c *Catalog) Close() error {
	return c.db.Close()
}
