package export

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/sadopc/sprintr/internal/store"
)

type jsonExport struct {
	ExportedAt string    `json:"exported_at"`
	Count      int       `json:"count"`
	Runs       []jsonRun `json:"runs"`
}

type jsonRun struct {
	ID           int64      `json:"id"`
	SessionID    string     `json:"session_id"`
	Name         string     `json:"name"`
	StartedAt    string     `json:"started_at"`
	CompletedAt  string     `json:"completed_at"`
	EstimatedSec int64      `json:"estimated_seconds"`
	ActualSec    int64      `json:"actual_seconds"`
	Actual       string     `json:"actual"`
	Tasks        []jsonTask `json:"tasks"`
}

type jsonTask struct {
	TaskID           string `json:"task_id"`
	Name             string `json:"name"`
	Status           string `json:"status"`
	EstimatedMinutes int    `json:"estimated_minutes"`
	ActualSec        int64  `json:"actual_seconds"`
	Actual           string `json:"actual"`
	CompletedAt      string `json:"completed_at"`
}

func ToJSON(runs []store.Run, path string) error {
	export := jsonExport{
		ExportedAt: time.Now().UTC().Format(time.RFC3339),
		Count:      len(runs),
		Runs:       []jsonRun{},
	}

	for _, r := range runs {
		jr := jsonRun{
			ID:           r.ID,
			SessionID:    r.SessionID,
			Name:         r.Name,
			StartedAt:    r.StartedAt.Local().Format(time.RFC3339),
			CompletedAt:  r.CompletedAt.Local().Format(time.RFC3339),
			EstimatedSec: r.EstimatedSeconds,
			ActualSec:    r.ActualSeconds,
			Actual:       formatDuration(r.ActualSeconds),
			Tasks:        []jsonTask{},
		}
		for _, res := range r.Results {
			jr.Tasks = append(jr.Tasks, jsonTask{
				TaskID:           res.TaskID,
				Name:             res.Name,
				Status:           res.Status,
				EstimatedMinutes: res.EstimatedMinutes,
				ActualSec:        res.ActualSeconds,
				Actual:           formatDuration(res.ActualSeconds),
				CompletedAt:      res.CompletedAt.Local().Format(time.RFC3339),
			})
		}
		export.Runs = append(export.Runs, jr)
	}

	data, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write json file: %w", err)
	}
	return nil
}
