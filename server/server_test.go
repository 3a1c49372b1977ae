package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/AhmedRagabRG/scraper/config"
	"github.com/AhmedRagabRG/scraper/models"
	"github.com/AhmedRagabRG/scraper/scraper/gmaps"
	"github.com/AhmedRagabRG/scraper/utils"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	cfg := config.Load()
	cfg.CSVOutputDir = t.TempDir()
	return New(cfg, utils.NewLogger(), nil)
}

func doRequest(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealthEndpoint(t *testing.T) {
	srv := newTestServer(t)
	rec := doRequest(t, srv.Routes(), http.MethodGet, "/health", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d; want 200", rec.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if body["status"] != "healthy" {
		t.Errorf("status field = %q", body["status"])
	}
}

func TestStatusUnknownJob(t *testing.T) {
	srv := newTestServer(t)
	rec := doRequest(t, srv.Routes(), http.MethodGet, "/status/nope", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d; want 404", rec.Code)
	}
}

func TestDeleteUnknownJob(t *testing.T) {
	srv := newTestServer(t)
	rec := doRequest(t, srv.Routes(), http.MethodDelete, "/jobs/nope", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d; want 404", rec.Code)
	}
}

func TestScrapeRequiresQuery(t *testing.T) {
	srv := newTestServer(t)

	rec := doRequest(t, srv.Routes(), http.MethodPost, "/scrape", `{}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("empty query: status = %d; want 400", rec.Code)
	}

	rec = doRequest(t, srv.Routes(), http.MethodPost, "/scrape", `not json`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad JSON: status = %d; want 400", rec.Code)
	}
}

func TestReviewsRequiresURL(t *testing.T) {
	srv := newTestServer(t)
	rec := doRequest(t, srv.Routes(), http.MethodPost, "/reviews", `{"query":"ignored"}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d; want 400", rec.Code)
	}
}

func TestJobsListEmpty(t *testing.T) {
	srv := newTestServer(t)
	rec := doRequest(t, srv.Routes(), http.MethodGet, "/jobs", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d; want 200", rec.Code)
	}
	var body struct {
		Total int `json:"total"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if body.Total != 0 {
		t.Errorf("total = %d; want 0", body.Total)
	}
}

// seedJob plants a job directly in the registry so transitions can be tested
// without launching a browser.
func seedJob(r *Registry, id string) *models.Job {
	job := &models.Job{
		ID:        id,
		Status:    models.JobRunning,
		Kind:      models.TargetBusiness,
		Query:     "diners in springfield",
		CreatedAt: time.Now().UTC(),
	}
	r.mu.Lock()
	r.entries[id] = &jobEntry{job: job, cancel: func() {}}
	r.mu.Unlock()
	return job
}

func TestZeroResultsCompletesJob(t *testing.T) {
	srv := newTestServer(t)
	seedJob(srv.registry, "job-1")

	srv.registry.complete("job-1", &gmaps.Result{})

	job := srv.registry.Get("job-1")
	if job.Status != models.JobCompleted {
		t.Errorf("status = %q; zero results must still complete", job.Status)
	}
	if job.TotalResults == nil || *job.TotalResults != 0 {
		t.Errorf("TotalResults = %v; want 0", job.TotalResults)
	}
	if job.CompletedAt == nil {
		t.Error("CompletedAt must be set on completion")
	}
}

func TestFailedJobKeepsError(t *testing.T) {
	srv := newTestServer(t)
	seedJob(srv.registry, "job-2")

	srv.registry.fail("job-2", context.DeadlineExceeded)

	job := srv.registry.Get("job-2")
	if job.Status != models.JobFailed {
		t.Errorf("status = %q; want failed", job.Status)
	}
	if job.Error == "" {
		t.Error("failed jobs must carry the cause")
	}
}

func TestResultsRejectsUnfinishedJob(t *testing.T) {
	srv := newTestServer(t)
	seedJob(srv.registry, "job-3")

	rec := doRequest(t, srv.Routes(), http.MethodGet, "/results/job-3", "")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d; want 400 while running", rec.Code)
	}
}

func TestDeleteRemovesJob(t *testing.T) {
	srv := newTestServer(t)
	seedJob(srv.registry, "job-4")

	rec := doRequest(t, srv.Routes(), http.MethodDelete, "/jobs/job-4", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d; want 200", rec.Code)
	}
	if srv.registry.Get("job-4") != nil {
		t.Error("job must be gone after delete")
	}
}
