package server

import (
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/AhmedRagabRG/scraper/models"
	"github.com/AhmedRagabRG/scraper/utils"
)

// RecordPayload is POSTed to the job's webhook once per accepted record.
type RecordPayload struct {
	JobID         string        `json:"job_id"`
	Status        string        `json:"status"`
	CurrentIndex  int           `json:"current_index"`
	TotalExpected int           `json:"total_expected"`
	Record        models.Record `json:"record"`
	Timestamp     string        `json:"timestamp"`
}

// TerminalPayload is POSTed once when the job reaches a terminal state.
type TerminalPayload struct {
	JobID        string `json:"job_id"`
	Status       string `json:"status"`
	TotalResults *int   `json:"total_results,omitempty"`
	Error        string `json:"error,omitempty"`
	CompletedAt  string `json:"completed_at"`
	Message      string `json:"message,omitempty"`
}

// WebhookClient delivers payloads fire-and-forget: failures are logged and
// never retried, and delivery never blocks or fails the pipeline.
type WebhookClient struct {
	client *resty.Client
	logger *utils.Logger
}

func NewWebhookClient(timeout time.Duration, logger *utils.Logger) *WebhookClient {
	return &WebhookClient{
		client: resty.New().SetTimeout(timeout),
		logger: logger,
	}
}

// SendRecord notifies the webhook of one newly accepted record.
func (w *WebhookClient) SendRecord(url, jobID string, index, totalExpected int, rec models.Record) {
	if url == "" {
		return
	}
	w.post(url, RecordPayload{
		JobID:         jobID,
		Status:        "processing",
		CurrentIndex:  index,
		TotalExpected: totalExpected,
		Record:        rec,
		Timestamp:     time.Now().UTC().Format(time.RFC3339),
	})
}

// SendTerminal notifies the webhook that the job finished.
func (w *WebhookClient) SendTerminal(url string, job *models.Job, message string) {
	if url == "" {
		return
	}
	completedAt := time.Now().UTC()
	if job.CompletedAt != nil {
		completedAt = job.CompletedAt.UTC()
	}
	w.post(url, TerminalPayload{
		JobID:        job.ID,
		Status:       string(job.Status),
		TotalResults: job.TotalResults,
		Error:        job.Error,
		CompletedAt:  completedAt.Format(time.RFC3339),
		Message:      message,
	})
}

func (w *WebhookClient) post(url string, payload interface{}) {
	resp, err := w.client.R().
		SetHeader("Content-Type", "application/json").
		SetBody(payload).
		Post(url)
	if err != nil {
		w.logger.Warn("[webhook] Delivery to %s failed: %v", url, err)
		return
	}
	if resp.IsError() {
		w.logger.Warn("[webhook] %s answered %d", url, resp.StatusCode())
	}
}
