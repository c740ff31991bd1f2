package store

import (
	"database/sql"
	"fmt"
	"time"
)

func (s *Store) CreatePlan(name string) (*Plan, error) {
	now := time.Now().UTC().Format(time.RFC3339)
	res, err := s.db.Exec(
		`INSERT INTO plans (name, created_at, updated_at) VALUES (?, ?, ?)`,
		name, now, now,
	)
	if err != nil {
		return nil, fmt.Errorf("insert plan: %w", err)
	}
	id, _ := res.LastInsertId()
	return s.GetPlan(id)
}

func (s *Store) GetPlan(id int64) (*Plan, error) {
	p := &Plan{}
	var createdAt, updatedAt string
	var archived int
	err := s.db.QueryRow(
		`SELECT id, name, archived, created_at, updated_at FROM plans WHERE id = ?`, id,
	).Scan(&p.ID, &p.Name, &archived, &createdAt, &updatedAt)
	if err != nil {
		return nil, fmt.Errorf("get plan %d: %w", id, err)
	}
	p.Archived = archived == 1
	p.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	p.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	return p, nil
}

func (s *Store) ListPlans(includeArchived bool) ([]Plan, error) {
	query := `SELECT id, name, archived, created_at, updated_at FROM plans`
	if !includeArchived {
		query += ` WHERE archived = 0`
	}
	query += ` ORDER BY name`

	rows, err := s.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("list plans: %w", err)
	}
	defer rows.Close()

	var plans []Plan
	for rows.Next() {
		var p Plan
		var createdAt, updatedAt string
		var archived int
		if err := rows.Scan(&p.ID, &p.Name, &archived, &createdAt, &updatedAt); err != nil {
			return nil, err
		}
		p.Archived = archived == 1
		p.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		p.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
		plans = append(plans, p)
	}
	return plans, rows.Err()
}

func (s *Store) RenamePlan(id int64, name string) error {
	now := time.Now().UTC().Format(time.RFC3339)
	_, err := s.db.Exec(
		`UPDATE plans SET name = ?, updated_at = ? WHERE id = ?`,
		name, now, id,
	)
	return err
}

func (s *Store) ArchivePlan(id int64) error {
	now := time.Now().UTC().Format(time.RFC3339)
	_, err := s.db.Exec(
		`UPDATE plans SET archived = 1, updated_at = ? WHERE id = ?`, now, id,
	)
	return err
}

// AddPlanTask appends a task at the end of the plan.
func (s *Store) AddPlanTask(planID int64, name string, estimatedMinutes, breakMinutes int) (*PlanTask, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	var pos int
	err = tx.QueryRow(`SELECT COALESCE(MAX(position), -1) + 1 FROM plan_tasks WHERE plan_id = ?`, planID).Scan(&pos)
	if err != nil {
		return nil, fmt.Errorf("next task position: %w", err)
	}
	res, err := tx.Exec(
		`INSERT INTO plan_tasks (plan_id, position, name, estimated_minutes, break_minutes) VALUES (?, ?, ?, ?, ?)`,
		planID, pos, name, estimatedMinutes, breakMinutes,
	)
	if err != nil {
		return nil, fmt.Errorf("insert plan task: %w", err)
	}
	if _, err := tx.Exec(`UPDATE plans SET updated_at = ? WHERE id = ?`, time.Now().UTC().Format(time.RFC3339), planID); err != nil {
		return nil, fmt.Errorf("touch plan: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}

	id, _ := res.LastInsertId()
	return &PlanTask{
		ID:               id,
		PlanID:           planID,
		Position:         pos,
		Name:             name,
		EstimatedMinutes: estimatedMinutes,
		BreakMinutes:     breakMinutes,
	}, nil
}

func (s *Store) ListPlanTasks(planID int64) ([]PlanTask, error) {
	rows, err := s.db.Query(
		`SELECT id, plan_id, position, name, estimated_minutes, break_minutes
		 FROM plan_tasks WHERE plan_id = ? ORDER BY position`, planID,
	)
	if err != nil {
		return nil, fmt.Errorf("list plan tasks: %w", err)
	}
	defer rows.Close()

	var tasks []PlanTask
	for rows.Next() {
		var t PlanTask
		if err := rows.Scan(&t.ID, &t.PlanID, &t.Position, &t.Name, &t.EstimatedMinutes, &t.BreakMinutes); err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

func (s *Store) RemovePlanTask(id int64) error {
	res, err := s.db.Exec(`DELETE FROM plan_tasks WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete plan task %d: %w", id, err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return fmt.Errorf("delete plan task %d: %w", id, sql.ErrNoRows)
	}
	return nil
}
