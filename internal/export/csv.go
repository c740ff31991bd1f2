package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"time"

	"github.com/sadopc/sprintr/internal/store"
)

var csvHeader = []string{
	"Run", "Project", "#", "Task", "Status",
	"Estimated (min)", "Actual (s)", "Actual", "Over/Under (s)", "Completed",
}

// ToCSV writes one row per task result.
func ToCSV(runs []store.Run, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write(csvHeader); err != nil {
		return err
	}

	for _, r := range runs {
		for i, res := range r.Results {
			delta := res.ActualSeconds - int64(res.EstimatedMinutes)*60
			row := []string{
				fmt.Sprintf("%d", r.ID),
				r.Name,
				fmt.Sprintf("%d", i+1),
				res.Name,
				res.Status,
				fmt.Sprintf("%d", res.EstimatedMinutes),
				fmt.Sprintf("%d", res.ActualSeconds),
				formatDuration(res.ActualSeconds),
				fmt.Sprintf("%+d", delta),
				res.CompletedAt.Local().Format(time.RFC3339),
			}
			if err := w.Write(row); err != nil {
				return err
			}
		}
	}

	return w.Error()
}

func formatDuration(secs int64) string {
	h := secs / 3600
	m := (secs % 3600) / 60
	s := secs % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}
