package tropiiify

import (
	"context"
	"fmt"
	"time"
)

// Run is one recorded export.
type Run struct {
	ID         string
	StartedAt  time.Time
	OutputRoot string
	Exported   int
	Failed     int
	Elapsed    time.Duration
}

// SaveRun records an export run.
func (s *Store) SaveRun(ctx context.Context, r Run) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, started_at, output_root, exported, failed, elapsed_ms) VALUES (?, ?, ?, ?, ?, ?)`,
		r.ID, r.StartedAt.UTC(), r.OutputRoot, r.Exported, r.Failed, r.Elapsed.Milliseconds())
	return err
}

// ListRuns returns the most recent runs, newest first.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, started_at, output_root, exported, failed, elapsed_ms FROM runs ORDER BY started_at DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Run
	for rows.Next() {
		var r Run
		var ms int64
		if err := rows.Scan(&r.ID, &r.StartedAt, &r.OutputRoot, &r.Exported, &r.Failed, &ms); err != nil {
			return nil, err
		}
		r.Elapsed = time.Duration(ms) * time.Millisecond
		out = append(out, r)
	}
	return out, rows.Err()
}

// PruneRuns deletes runs started before cutoff.
func (s *Store) PruneRuns(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM runs WHERE started_at < ?`, cutoff.UTC())
	if err != nil {
		return 0, fmt.Errorf("prune runs: %w", err)
	}
	return res.RowsAffected()
}

// recordRun stores report in the history when enabled. Failures are logged.
func (a *App) recordRun(ctx context.Context, started time.Time, report *Report) {
	if !a.Config.RecordHistory {
		return
	}
	s, err := a.Store()
	if err != nil {
		a.Log.Warn().Err(err).Msg("record export history")
		return
	}
	run := Run{
		ID:         report.RunID,
		StartedAt:  started,
		OutputRoot: report.OutputRoot,
		Exported:   len(report.Exported),
		Failed:     len(report.Failed),
		Elapsed:    report.Elapsed,
	}
	if err := s.SaveRun(ctx, run); err != nil {
		a.Log.Warn().Err(err).Msg("record export history")
		return
	}
	if a.Config.HistoryRetention > 0 {
		if _, err := s.PruneRuns(ctx, started.Add(-a.Config.HistoryRetention)); err != nil {
			a.Log.Warn().Err(err).Msg("prune export history")
		}
	}
}
