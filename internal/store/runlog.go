package store

import (
	"database/sql"
	"fmt"
	"time"

	"gachahub/internal/catalog"
)

// RunLogStore persists the append-only run history
type RunLogStore struct {
	db  *sql.DB
	now func() time.Time
}

// NewRunLogStore creates a run log store on the given database
func NewRunLogStore(db *sql.DB) *RunLogStore {
	return &RunLogStore{db: db, now: time.Now}
}

// Save appends one run log entry and assigns its identity
func (s *RunLogStore) Save(log *catalog.RunLog) error {
	if log.ExecutedAt.IsZero() {
		log.ExecutedAt = s.now()
	}

	res, err := s.db.Exec(`INSERT INTO scrape_logs
		(target_site, status, items_found, error_message, executed_at)
		VALUES (?, ?, ?, ?, ?)`,
		log.TargetSite, log.Status, nullableInt(log.ItemsFound),
		nullableString(log.ErrorMessage), log.ExecutedAt.Format(timeFormat))
	if err != nil {
		return fmt.Errorf("insert run log: %w", err)
	}

	log.ID, err = res.LastInsertId()
	return err
}

// FindRecent returns the n most recent run logs across all sites
func (s *RunLogStore) FindRecent(n int) ([]catalog.RunLog, error) {
	if n <= 0 {
		n = 10
	}
	rows, err := s.db.Query(`SELECT id, target_site, status, items_found, error_message, executed_at
		FROM scrape_logs ORDER BY executed_at DESC, id DESC LIMIT ?`, n)
	if err != nil {
		return nil, err
	}
	return scanRunLogs(rows)
}

// FindBySite returns all run logs for one site, most recent first
func (s *RunLogStore) FindBySite(site string) ([]catalog.RunLog, error) {
	rows, err := s.db.Query(`SELECT id, target_site, status, items_found, error_message, executed_at
		FROM scrape_logs WHERE target_site = ? ORDER BY executed_at DESC, id DESC`, site)
	if err != nil {
		return nil, err
	}
	return scanRunLogs(rows)
}

func scanRunLogs(rows *sql.Rows) ([]catalog.RunLog, error) {
	defer rows.Close()
	var logs []catalog.RunLog
	for rows.Next() {
		var log catalog.RunLog
		var itemsFound sql.NullInt64
		var errorMessage sql.NullString
		var executedAt string

		if err := rows.Scan(&log.ID, &log.TargetSite, &log.Status, &itemsFound, &errorMessage, &executedAt); err != nil {
			return nil, err
		}
		log.ItemsFound = intPtr(itemsFound)
		log.ErrorMessage = errorMessage.String
		log.ExecutedAt, _ = time.Parse(timeFormat, executedAt)
		logs = append(logs, log)
	}
	return logs, rows.Err()
}
