package store

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// RunRecord summarizes one check run for the history table.
type RunRecord struct {
	ID         string
	StartedAt  time.Time
	Duration   time.Duration
	RefsTotal  int
	Unresolved int
	Suppressed int
}

// NewRunRecord allocates a record with a fresh ID and start time.
func NewRunRecord() RunRecord {
	return RunRecord{
		ID:        uuid.NewString(),
		StartedAt: time.Now().UTC(),
	}
}

// RecordRun persists one finished check run.
func (s *CacheStore) RecordRun(run RunRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(`INSERT INTO check_runs (id, started_at, duration_ms, refs_total, unresolved, suppressed)
		VALUES (?, ?, ?, ?, ?, ?)`,
		run.ID, run.StartedAt, run.Duration.Milliseconds(), run.RefsTotal, run.Unresolved, run.Suppressed)
	if err != nil {
		return fmt.Errorf("failed to record run: %w", err)
	}
	return nil
}

// RecentRuns returns up to limit runs, newest first.
func (s *CacheStore) RecentRuns(limit int) ([]RunRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`SELECT id, started_at, duration_ms, refs_total, unresolved, suppressed
		FROM check_runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []RunRecord
	for rows.Next() {
		var run RunRecord
		var durMs int64
		if err := rows.Scan(&run.ID, &run.StartedAt, &durMs, &run.RefsTotal, &run.Unresolved, &run.Suppressed); err != nil {
			return nil, fmt.Errorf("failed to scan run row: %w", err)
		}
		run.Duration = time.Duration(durMs) * time.Millisecond
		runs = append(runs, run)
	}
	return runs, rows.Err()
}
