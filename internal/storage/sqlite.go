package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

const (
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusFailed    = "failed"

	DeliveryPending = "pending"
	DeliverySent    = "sent"
	DeliveryFailed  = "failed"
	DeliverySkipped = "skipped"
)

// Report is one processed upload: its extracted transcript, the generated
// summary, and the Slack delivery outcome.
type Report struct {
	ID             int64     `json:"id"`
	CreatedAt      time.Time `json:"created_at"`
	Source         string    `json:"source"`
	Filename       string    `json:"filename"`
	Transcript     string    `json:"transcript"`
	Summary        string    `json:"summary"`
	Status         string    `json:"status"`
	Error          string    `json:"error"`
	DeliveryStatus string    `json:"delivery_status"`
	DeliveryError  string    `json:"delivery_error"`
	SlackTS        string    `json:"slack_ts"`
}

type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if strings.TrimSpace(dbPath) == "" {
		dbPath = filepath.Join("data", "clover.db")
	}

	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	store := &SQLiteStore{db: db}
	if err := store.init(); err != nil {
		_ = db.Close()
		return nil, err
	}

	return store, nil
}

func (s *SQLiteStore) init() error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}
	for _, p := range pragmas {
		if _, err := s.db.Exec(p); err != nil {
			return fmt.Errorf("apply pragma %q: %w", p, err)
		}
	}

	if _, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS reports (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			created_at TEXT NOT NULL,
			source TEXT NOT NULL,
			filename TEXT NOT NULL DEFAULT '',
			transcript TEXT NOT NULL DEFAULT '',
			summary TEXT NOT NULL DEFAULT '',
			status TEXT NOT NULL,
			error TEXT NOT NULL DEFAULT '',
			delivery_status TEXT NOT NULL DEFAULT 'pending',
			delivery_error TEXT NOT NULL DEFAULT '',
			slack_ts TEXT NOT NULL DEFAULT ''
		);
	`); err != nil {
		return fmt.Errorf("create reports table: %w", err)
	}

	if _, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS settings (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);
	`); err != nil {
		return fmt.Errorf("create settings table: %w", err)
	}

	if _, err := s.db.Exec("CREATE INDEX IF NOT EXISTS idx_reports_created_at ON reports(created_at)"); err != nil {
		return fmt.Errorf("create reports index: %w", err)
	}

	return nil
}

func (s *SQLiteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *SQLiteStore) DB() *sql.DB {
	return s.db
}

// CreateReport inserts a new running report row and returns its ID.
func (s *SQLiteStore) CreateReport(source, filename string, createdAt time.Time) (int64, error) {
	if strings.TrimSpace(source) == "" {
		return 0, errors.New("report source is required")
	}

	res, err := s.db.Exec(
		`INSERT INTO reports(created_at, source, filename, status) VALUES(?, ?, ?, ?)`,
		createdAt.UTC().Format(time.RFC3339Nano),
		source,
		filename,
		StatusRunning,
	)
	if err != nil {
		return 0, fmt.Errorf("create report: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("report insert id: %w", err)
	}
	return id, nil
}

// CompleteReport records a successful run.
func (s *SQLiteStore) CompleteReport(id int64, transcript, summary string) error {
	return s.updateReport(id,
		`UPDATE reports SET transcript = ?, summary = ?, status = ?, error = '' WHERE id = ?`,
		transcript, summary, StatusCompleted, id,
	)
}

// FailReport records a failed run.
func (s *SQLiteStore) FailReport(id int64, cause string) error {
	return s.updateReport(id,
		`UPDATE reports SET status = ?, error = ? WHERE id = ?`,
		StatusFailed, cause, id,
	)
}

// UpdateDelivery records the Slack delivery outcome for a report.
func (s *SQLiteStore) UpdateDelivery(id int64, status, deliveryError, slackTS string) error {
	return s.updateReport(id,
		`UPDATE reports SET delivery_status = ?, delivery_error = ?, slack_ts = ? WHERE id = ?`,
		status, deliveryError, slackTS, id,
	)
}

func (s *SQLiteStore) updateReport(id int64, query string, args ...any) error {
	res, err := s.db.Exec(query, args...)
	if err != nil {
		return fmt.Errorf("update report %d: %w", id, err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update report rows affected: %w", err)
	}
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (s *SQLiteStore) GetReport(id int64) (Report, error) {
	row := s.db.QueryRow(
		`SELECT id, created_at, source, filename, transcript, summary, status, error, delivery_status, delivery_error, slack_ts
		 FROM reports WHERE id = ?`,
		id,
	)
	return scanReport(row)
}

func (s *SQLiteStore) GetReportsByDate(date string) ([]Report, error) {
	rows, err := s.db.Query(
		`SELECT id, created_at, source, filename, transcript, summary, status, error, delivery_status, delivery_error, slack_ts
		 FROM reports
		 WHERE substr(created_at, 1, 10) = ?
		 ORDER BY created_at DESC`,
		date,
	)
	if err != nil {
		return nil, fmt.Errorf("query reports by date %s: %w", date, err)
	}
	defer func() { _ = rows.Close() }()

	var reports []Report
	for rows.Next() {
		report, err := scanReport(rows)
		if err != nil {
			return nil, err
		}
		reports = append(reports, report)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate report rows: %w", err)
	}
	return reports, nil
}

func (s *SQLiteStore) GetDates() ([]string, error) {
	rows, err := s.db.Query(
		`SELECT DISTINCT substr(created_at, 1, 10) AS date FROM reports ORDER BY date DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("query dates: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var dates []string
	for rows.Next() {
		var d string
		if err := rows.Scan(&d); err != nil {
			return nil, fmt.Errorf("scan date: %w", err)
		}
		dates = append(dates, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate dates rows: %w", err)
	}

	return dates, nil
}

// SetSetting upserts one settings key.
func (s *SQLiteStore) SetSetting(key, value string) error {
	if strings.TrimSpace(key) == "" {
		return errors.New("setting key is required")
	}
	_, err := s.db.Exec(
		`INSERT INTO settings(key, value) VALUES(?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value,
	)
	if err != nil {
		return fmt.Errorf("set setting %s: %w", key, err)
	}
	return nil
}

// GetSettings returns all persisted settings.
func (s *SQLiteStore) GetSettings() (map[string]string, error) {
	rows, err := s.db.Query(`SELECT key, value FROM settings`)
	if err != nil {
		return nil, fmt.Errorf("query settings: %w", err)
	}
	defer func() { _ = rows.Close() }()

	settings := make(map[string]string)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("scan setting: %w", err)
		}
		settings[key] = value
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate settings rows: %w", err)
	}
	return settings, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanReport(row rowScanner) (Report, error) {
	var report Report
	var createdAt string
	if err := row.Scan(
		&report.ID, &createdAt, &report.Source, &report.Filename,
		&report.Transcript, &report.Summary, &report.Status, &report.Error,
		&report.DeliveryStatus, &report.DeliveryError, &report.SlackTS,
	); err != nil {
		return Report{}, fmt.Errorf("scan report: %w", err)
	}

	parsed, err := time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return Report{}, fmt.Errorf("parse report created_at: %w", err)
	}
	report.CreatedAt = parsed
	return report, nil
}
