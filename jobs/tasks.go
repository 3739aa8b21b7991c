package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskReportWarmup pre-computes projection reports into the cache.
	TaskReportWarmup = "finplan:report_warmup"
)

// ReportWarmupPayload scopes one warmup run.
type ReportWarmupPayload struct {
	// Months is the trailing window to warm, counted back from the
	// current month.
	Months int `json:"months"`
	// ActiveSince filters organizations by recent plan activity, in days.
	ActiveSince int `json:"active_since_days"`
}

// NewReportWarmupTask constructs an Asynq task.
func NewReportWarmupTask(payload ReportWarmupPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskReportWarmup, data), nil
}
