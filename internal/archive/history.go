// Package archive keeps a DuckDB-backed history of completed processing
// runs so past generations can be listed and aggregated.
package archive

import (
	"database/sql"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/marcboeker/go-duckdb"

	"github.com/fsd-console/backend/internal/models"
)

// Entry is one recorded processing run.
type Entry struct {
	ID               int64               `json:"id"`
	FileName         string              `json:"fileName"`
	TemplateType     models.TemplateType `json:"templateType"`
	Status           models.JobStatus    `json:"status"`
	Sections         int                 `json:"sections"`
	Tables           int                 `json:"tables"`
	Parameters       int                 `json:"parameters"`
	FieldMappings    int                 `json:"fieldMappings"`
	ProcessingTimeMs int64               `json:"processingTimeMs"`
	FinishedAt       time.Time           `json:"finishedAt"`
}

// TemplateCount aggregates run counts per template type.
type TemplateCount struct {
	TemplateType models.TemplateType `json:"templateType"`
	Runs         int                 `json:"runs"`
}

// History records processing runs in a DuckDB file under dataDir.
type History struct {
	db *sql.DB
	mu sync.Mutex
}

// Open creates or opens the history database in dataDir.
func Open(dataDir string) (*History, error) {
	dbPath := filepath.Join(dataDir, "history.duckdb")

	connector, err := duckdb.NewConnector(dbPath, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}

	db := sql.OpenDB(connector)

	if _, err := db.Exec(`CREATE SEQUENCE IF NOT EXISTS runs_seq`); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create runs sequence: %w", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS runs (
			id             BIGINT PRIMARY KEY DEFAULT nextval('runs_seq'),
			file_name      VARCHAR NOT NULL,
			template_type  VARCHAR NOT NULL,
			status         VARCHAR NOT NULL,
			sections       INTEGER NOT NULL,
			tables         INTEGER NOT NULL,
			parameters     INTEGER NOT NULL,
			field_mappings INTEGER NOT NULL,
			duration_ms    BIGINT NOT NULL,
			finished_at    TIMESTAMP NOT NULL
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create runs table: %w", err)
	}

	return &History{db: db}, nil
}

// Append records a finished job. Failures are logged and swallowed; a
// broken history never fails a processing run.
func (h *History) Append(job *models.ProcessJob) {
	if h == nil {
		return
	}

	var stats models.Stats
	if job.Result != nil {
		stats = job.Result.Statistics
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	_, err := h.db.Exec(`
		INSERT INTO runs (file_name, template_type, status, sections, tables,
			parameters, field_mappings, duration_ms, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		job.FileName, string(job.TemplateType), string(job.Status),
		stats.Sections, stats.Tables, stats.Parameters, stats.FieldMappings,
		job.ProcessingTimeMs, time.Now())
	if err != nil {
		fmt.Printf("[History] Failed to record run for %s: %v\n", job.FileName, err)
	}
}

// List returns the most recent runs, newest first.
func (h *History) List(limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 50
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	rows, err := h.db.Query(`
		SELECT id, file_name, template_type, status, sections, tables,
			parameters, field_mappings, duration_ms, finished_at
		FROM runs ORDER BY finished_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	entries := make([]Entry, 0, limit)
	for rows.Next() {
		var e Entry
		var tt, status string
		if err := rows.Scan(&e.ID, &e.FileName, &tt, &status, &e.Sections,
			&e.Tables, &e.Parameters, &e.FieldMappings, &e.ProcessingTimeMs,
			&e.FinishedAt); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		e.TemplateType = models.TemplateType(tt)
		e.Status = models.JobStatus(status)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// CountByTemplate returns run counts grouped by template type.
func (h *History) CountByTemplate() ([]TemplateCount, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	rows, err := h.db.Query(`
		SELECT template_type, COUNT(*) FROM runs
		GROUP BY template_type ORDER BY template_type`)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate runs: %w", err)
	}
	defer rows.Close()

	var counts []TemplateCount
	for rows.Next() {
		var c TemplateCount
		var tt string
		if err := rows.Scan(&tt, &c.Runs); err != nil {
			return nil, fmt.Errorf("failed to scan aggregate: %w", err)
		}
		c.TemplateType = models.TemplateType(tt)
		counts = append(counts, c)
	}
	return counts, rows.Err()
}

// Close releases the underlying database.
func (h *History) Close() error {
	if h == nil {
		return nil
	}
	return h.db.Close()
}
