// ABOUTME: SQLite export target for reports
// ABOUTME: Writes the envelope and its flattened rows into a standalone database file
package reports

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

const exportSchema = `
CREATE TABLE IF NOT EXISTS reports (
	id TEXT PRIMARY KEY,
	report_type TEXT NOT NULL,
	range_start TEXT NOT NULL,
	range_end TEXT NOT NULL,
	generated_at DATETIME NOT NULL,
	summary TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS report_rows (
	report_id TEXT NOT NULL,
	section TEXT NOT NULL,
	key TEXT NOT NULL,
	value TEXT NOT NULL,
	FOREIGN KEY (report_id) REFERENCES reports(id)
);

CREATE INDEX IF NOT EXISTS idx_report_rows_section ON report_rows(report_id, section);
`

func openExportDB(path string) (*sql.DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, err
	}
	conn, err := sql.Open("sqlite3", path+"?_journal_mode=WAL")
	if err != nil {
		return nil, err
	}
	conn.SetMaxOpenConns(1)
	if _, err := conn.Exec(exportSchema); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to initialize export schema: %w", err)
	}
	return conn, nil
}

// WriteSQLite stores e in the SQLite file at path, creating it if needed.
// Several reports can share one file.
func WriteSQLite(path string, e Envelope) error {
	conn, err := openExportDB(path)
	if err != nil {
		return fmt.Errorf("failed to open export database: %w", err)
	}
	defer conn.Close()

	summary, err := json.Marshal(e.Summary)
	if err != nil {
		return fmt.Errorf("failed to encode summary: %w", err)
	}

	tx, err := conn.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin export: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT INTO reports (id, report_type, range_start, range_end, generated_at, summary)
		VALUES (?, ?, ?, ?, ?, ?)
	`, e.ID, string(e.ReportType), e.DateRange.Start, e.DateRange.End, e.GeneratedAt.Format(time.RFC3339), string(summary))
	if err != nil {
		return fmt.Errorf("failed to insert report: %w", err)
	}

	stmt, err := tx.Prepare(`INSERT INTO report_rows (report_id, section, key, value) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare row insert: %w", err)
	}
	defer stmt.Close()
	for _, r := range Rows(e) {
		if _, err := stmt.Exec(e.ID, r.Section, r.Key, r.Value); err != nil {
			return fmt.Errorf("failed to insert row %s/%s: %w", r.Section, r.Key, err)
		}
	}
	return tx.Commit()
}
