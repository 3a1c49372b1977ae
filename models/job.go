package models

import "time"

// JobStatus tracks a scrape job through its lifecycle. Transitions are
// pending → running → completed|failed; both end states are terminal.
type JobStatus string

const (
	JobPending   JobStatus = "pending"
	JobRunning   JobStatus = "running"
	JobCompleted JobStatus = "completed"
	JobFailed    JobStatus = "failed"
)

// Job is the per-job state owned by the job registry. The extraction core
// never touches it; the server layer updates it from pipeline callbacks.
type Job struct {
	ID           string     `json:"job_id"`
	Status       JobStatus  `json:"status"`
	Kind         TargetKind `json:"kind"`
	Query        string     `json:"query"`
	Cap          int        `json:"max_results,omitempty"`
	WebhookURL   string     `json:"webhook_url,omitempty"`
	Progress     string     `json:"progress,omitempty"`
	TotalResults *int       `json:"total_results,omitempty"`
	Error        string     `json:"error,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
}

// Terminal reports whether the job has reached an end state.
func (j *Job) Terminal() bool {
	return j.Status == JobCompleted || j.Status == JobFailed
}
