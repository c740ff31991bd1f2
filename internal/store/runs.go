package store

import (
	"database/sql"
	"fmt"
	"time"
)

// SaveRun stores a finished project and its task results.
func (s *Store) SaveRun(r Run) (*Run, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.Exec(
		`INSERT INTO runs (session_id, name, estimated_seconds, actual_seconds, started_at, completed_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		r.SessionID, r.Name, r.EstimatedSeconds, r.ActualSeconds,
		r.StartedAt.UTC().Format(time.RFC3339), r.CompletedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return nil, fmt.Errorf("insert run: %w", err)
	}
	runID, _ := res.LastInsertId()

	for i, rr := range r.Results {
		_, err := tx.Exec(
			`INSERT INTO run_results (run_id, position, task_id, name, estimated_minutes, actual_seconds, status, completed_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			runID, i, rr.TaskID, rr.Name, rr.EstimatedMinutes, rr.ActualSeconds, rr.Status,
			rr.CompletedAt.UTC().Format(time.RFC3339),
		)
		if err != nil {
			return nil, fmt.Errorf("insert run result: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	s.logger.Debugf("Saved run %d for session %s", runID, r.SessionID)
	return s.GetRun(runID)
}

func (s *Store) GetRun(id int64) (*Run, error) {
	r := &Run{}
	var startedAt, completedAt string
	err := s.db.QueryRow(
		`SELECT id, session_id, name, estimated_seconds, actual_seconds, started_at, completed_at
		 FROM runs WHERE id = ?`, id,
	).Scan(&r.ID, &r.SessionID, &r.Name, &r.EstimatedSeconds, &r.ActualSeconds, &startedAt, &completedAt)
	if err != nil {
		return nil, fmt.Errorf("get run %d: %w", id, err)
	}
	r.StartedAt, _ = time.Parse(time.RFC3339, startedAt)
	r.CompletedAt, _ = time.Parse(time.RFC3339, completedAt)

	results, err := s.listRunResults(id)
	if err != nil {
		return nil, err
	}
	r.Results = results
	return r, nil
}

func (s *Store) listRunResults(runID int64) ([]RunResult, error) {
	rows, err := s.db.Query(
		`SELECT id, run_id, position, task_id, name, estimated_minutes, actual_seconds, status, completed_at
		 FROM run_results WHERE run_id = ? ORDER BY position`, runID,
	)
	if err != nil {
		return nil, fmt.Errorf("list run results: %w", err)
	}
	defer rows.Close()

	var results []RunResult
	for rows.Next() {
		var rr RunResult
		var completedAt string
		if err := rows.Scan(&rr.ID, &rr.RunID, &rr.Position, &rr.TaskID, &rr.Name, &rr.EstimatedMinutes,
			&rr.ActualSeconds, &rr.Status, &completedAt); err != nil {
			return nil, err
		}
		rr.CompletedAt, _ = time.Parse(time.RFC3339, completedAt)
		results = append(results, rr)
	}
	return results, rows.Err()
}

// ListRuns returns runs newest first, with their results.
func (s *Store) ListRuns(f RunFilter) ([]Run, error) {
	query := `SELECT id, session_id, name, estimated_seconds, actual_seconds, started_at, completed_at FROM runs WHERE 1=1`
	var args []any

	if f.From != nil {
		query += ` AND completed_at >= ?`
		args = append(args, f.From.UTC().Format(time.RFC3339))
	}
	if f.To != nil {
		query += ` AND completed_at < ?`
		args = append(args, f.To.UTC().Format(time.RFC3339))
	}
	query += ` ORDER BY completed_at DESC, id DESC`
	if f.Limit > 0 {
		query += fmt.Sprintf(` LIMIT %d`, f.Limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}

	var runs []Run
	for rows.Next() {
		var r Run
		var startedAt, completedAt string
		if err := rows.Scan(&r.ID, &r.SessionID, &r.Name, &r.EstimatedSeconds, &r.ActualSeconds, &startedAt, &completedAt); err != nil {
			rows.Close()
			return nil, err
		}
		r.StartedAt, _ = time.Parse(time.RFC3339, startedAt)
		r.CompletedAt, _ = time.Parse(time.RFC3339, completedAt)
		runs = append(runs, r)
	}
	// Single connection: rows must be released before the results queries.
	err = rows.Err()
	rows.Close()
	if err != nil {
		return nil, err
	}

	for i := range runs {
		results, err := s.listRunResults(runs[i].ID)
		if err != nil {
			return nil, err
		}
		runs[i].Results = results
	}
	return runs, nil
}

func (s *Store) GetRunStats(from, to time.Time) (RunStats, error) {
	var st RunStats
	err := s.db.QueryRow(`
		SELECT COUNT(*), COALESCE(SUM(estimated_seconds), 0), COALESCE(SUM(actual_seconds), 0)
		FROM runs
		WHERE completed_at >= ? AND completed_at < ?`,
		from.UTC().Format(time.RFC3339), to.UTC().Format(time.RFC3339),
	).Scan(&st.Runs, &st.EstimatedSeconds, &st.ActualSeconds)
	if err != nil {
		return RunStats{}, fmt.Errorf("run stats: %w", err)
	}

	var completed, skipped sql.NullInt64
	err = s.db.QueryRow(`
		SELECT SUM(CASE WHEN rr.status = 'completed' THEN 1 ELSE 0 END),
		       SUM(CASE WHEN rr.status = 'skipped' THEN 1 ELSE 0 END)
		FROM run_results rr
		JOIN runs r ON r.id = rr.run_id
		WHERE r.completed_at >= ? AND r.completed_at < ?`,
		from.UTC().Format(time.RFC3339), to.UTC().Format(time.RFC3339),
	).Scan(&completed, &skipped)
	if err != nil {
		return RunStats{}, fmt.Errorf("run task stats: %w", err)
	}
	st.TasksCompleted = int(completed.Int64)
	st.TasksSkipped = int(skipped.Int64)
	return st, nil
}

// GetTodayFocus returns the seconds spent on tasks of runs finished today (UTC).
func (s *Store) GetTodayFocus() (int64, error) {
	today := time.Now().UTC().Format("2006-01-02")
	var total sql.NullInt64
	err := s.db.QueryRow(`
		SELECT COALESCE(SUM(actual_seconds), 0)
		FROM runs
		WHERE date(completed_at) = ?`, today,
	).Scan(&total)
	if err != nil {
		return 0, err
	}
	return total.Int64, nil
}
