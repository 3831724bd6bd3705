package sqlite

import (
	"database/sql"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS alerts (
	alert_id   TEXT PRIMARY KEY,
	module     TEXT NOT NULL,
	message    TEXT NOT NULL,
	tick       INTEGER NOT NULL,
	created_at TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_alerts_created ON alerts(created_at);
CREATE INDEX IF NOT EXISTS idx_alerts_module ON alerts(module);
`

// AlertRecord is one persisted alert occurrence.
type AlertRecord struct {
	ID        string    `json:"id"`
	Module    string    `json:"module"`
	Message   string    `json:"message"`
	Tick      int64     `json:"tick"`
	CreatedAt time.Time `json:"created_at"`
}

// AlertStore persists aggregation alerts for later review. Persistence is
// advisory: a failed insert is logged and dropped, never surfaced to the
// analysis loop.
type AlertStore struct {
	db *sql.DB
}

// Open opens the alert database at path, creating the schema if needed.
func Open(path string) (*AlertStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening alert db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA temp_store=MEMORY",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("executing %q: %w", pragma, err)
		}
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating alert schema: %w", err)
	}

	log.Printf("💾 Alert store ready at %s", path)
	return &AlertStore{db: db}, nil
}

// Insert stores one alert and returns the persisted record.
func (s *AlertStore) Insert(module, message string, tick int64) (AlertRecord, error) {
	record := AlertRecord{
		ID:        uuid.NewString(),
		Module:    module,
		Message:   message,
		Tick:      tick,
		CreatedAt: time.Now().UTC(),
	}

	err := retryOnBusy(func() error {
		_, err := s.db.Exec(`
			INSERT INTO alerts (alert_id, module, message, tick, created_at)
			VALUES (?, ?, ?, ?, ?)`,
			record.ID, record.Module, record.Message, record.Tick,
			record.CreatedAt.Format(time.RFC3339Nano),
		)
		return err
	})
	if err != nil {
		return AlertRecord{}, fmt.Errorf("inserting alert: %w", err)
	}
	return record, nil
}

// InsertBatch stores a tick's alerts for one module. Failures are logged
// and swallowed so persistence never degrades the loop.
func (s *AlertStore) InsertBatch(module string, messages []string, tick int64) {
	for _, msg := range messages {
		if _, err := s.Insert(module, msg, tick); err != nil {
			log.Printf("⚠️  Alert persistence failed (module=%s): %v", module, err)
			return
		}
	}
}

// ListRecent returns the newest alerts, most recent first.
func (s *AlertStore) ListRecent(limit int) ([]AlertRecord, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.db.Query(`
		SELECT alert_id, module, message, tick, created_at
		FROM alerts
		ORDER BY created_at DESC, tick DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing alerts: %w", err)
	}
	defer rows.Close()

	var records []AlertRecord
	for rows.Next() {
		record, err := scanAlert(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

// CountByModule returns the total alerts persisted per module.
func (s *AlertStore) CountByModule() (map[string]int64, error) {
	rows, err := s.db.Query(`SELECT module, COUNT(*) FROM alerts GROUP BY module`)
	if err != nil {
		return nil, fmt.Errorf("counting alerts: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int64)
	for rows.Next() {
		var module string
		var n int64
		if err := rows.Scan(&module, &n); err != nil {
			return nil, fmt.Errorf("scanning alert count: %w", err)
		}
		counts[module] = n
	}
	return counts, rows.Err()
}

// Close closes the underlying database.
func (s *AlertStore) Close() error {
	return s.db.Close()
}

func scanAlert(rows *sql.Rows) (AlertRecord, error) {
	var record AlertRecord
	var createdAt string
	if err := rows.Scan(&record.ID, &record.Module, &record.Message, &record.Tick, &createdAt); err != nil {
		return AlertRecord{}, fmt.Errorf("scanning alert row: %w", err)
	}

	ts, err := time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return AlertRecord{}, fmt.Errorf("parsing alert timestamp %q: %w", createdAt, err)
	}
	record.CreatedAt = ts
	return record, nil
}

// retryOnBusy retries writes that lose the SQLite write lock race. WAL
// plus busy_timeout covers most contention; this covers the rest.
func retryOnBusy(fn func() error) error {
	const maxAttempts = 5

	var err error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		err = fn()
		if err == nil || !isBusyError(err) {
			return err
		}
		time.Sleep(time.Duration(attempt) * 10 * time.Millisecond)
	}
	return err
}

func isBusyError(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}
