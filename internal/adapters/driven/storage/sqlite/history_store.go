package sqlite

import (
	"context"
	"fmt"

	"github.com/custodia-labs/shiftsheet/internal/core/domain"
	"github.com/custodia-labs/shiftsheet/internal/core/ports/driven"
)

// Ensure SyncHistoryStore implements the interface.
var _ driven.SyncHistoryStore = (*SyncHistoryStore)(nil)

// DefaultHistoryLimit is used when List is called with a non-positive limit.
const DefaultHistoryLimit = 20

// SyncHistoryStore records sync run summaries.
type SyncHistoryStore struct {
	store *Store
}

// NewSyncHistoryStore creates a history store.
func NewSyncHistoryStore(store *Store) *SyncHistoryStore {
	return &SyncHistoryStore{store: store}
}

// Record persists a run summary. Recording the same run ID twice replaces it.
func (s *SyncHistoryStore) Record(ctx context.Context, run domain.SyncRun) error {
	if run.ID == "" {
		return fmt.Errorf("%w: sync run has no id", domain.ErrInvalidInput)
	}
	_, err := s.store.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO sync_runs
			(id, team_id, started_at, finished_at, dry_run, created, updated, skipped, failed, error)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.TeamID, formatTime(run.StartedAt), formatTime(run.FinishedAt),
		run.DryRun, run.Created, run.Updated, run.Skipped, run.Failed, run.Error,
	)
	if err != nil {
		return fmt.Errorf("record sync run: %w", err)
	}
	return nil
}

// List returns the most recent runs, newest first.
func (s *SyncHistoryStore) List(ctx context.Context, limit int) ([]domain.SyncRun, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}

	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, team_id, started_at, finished_at, dry_run, created, updated, skipped, failed, error
		FROM sync_runs
		ORDER BY started_at DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list sync runs: %w", err)
	}
	defer rows.Close()

	var runs []domain.SyncRun
	for rows.Next() {
		var (
			run                 domain.SyncRun
			startedAt, finished string
		)
		if err := rows.Scan(&run.ID, &run.TeamID, &startedAt, &finished, &run.DryRun,
			&run.Created, &run.Updated, &run.Skipped, &run.Failed, &run.Error); err != nil {
			return nil, fmt.Errorf("scan sync run: %w", err)
		}
		if run.StartedAt, err = parseTime(startedAt); err != nil {
			return nil, fmt.Errorf("parse started_at: %w", err)
		}
		if run.FinishedAt, err = parseTime(finished); err != nil {
			return nil, fmt.Errorf("parse finished_at: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}
