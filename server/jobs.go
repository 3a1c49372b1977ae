package server

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/AhmedRagabRG/scraper/config"
	"github.com/AhmedRagabRG/scraper/models"
	"github.com/AhmedRagabRG/scraper/scraper/gmaps"
	"github.com/AhmedRagabRG/scraper/storage"
	"github.com/AhmedRagabRG/scraper/utils"
)

// Registry owns the lifecycle of extraction jobs: creation, bounded execution,
// state transitions, cancellation, and deletion. Execution happens on the
// worker pool so the number of live Chrome processes stays capped.
type Registry struct {
	cfg      *config.Config
	logger   *utils.Logger
	runner   *gmaps.Runner
	store    storage.JobStore
	webhooks *WebhookClient
	pool     *utils.WorkerPool

	mu      sync.Mutex
	entries map[string]*jobEntry
}

type jobEntry struct {
	job    *models.Job
	cancel context.CancelFunc
}

// NewRegistry creates a Registry. store may be nil to run without persistence;
// results are then only available as CSV downloads.
func NewRegistry(cfg *config.Config, logger *utils.Logger, store storage.JobStore) *Registry {
	return &Registry{
		cfg:      cfg,
		logger:   logger,
		runner:   gmaps.NewRunner(cfg, logger),
		store:    store,
		webhooks: NewWebhookClient(cfg.WebhookTimeout(), logger),
		pool:     utils.NewWorkerPool(cfg.MaxConcurrency, 1000),
		entries:  make(map[string]*jobEntry),
	}
}

// Submit registers a new job and schedules it for execution.
func (r *Registry) Submit(kind models.TargetKind, query string, limit int, webhookURL string) *models.Job {
	ctx, cancel := context.WithCancel(context.Background())

	job := &models.Job{
		ID:         uuid.New().String(),
		Status:     models.JobPending,
		Kind:       kind,
		Query:      query,
		Cap:        limit,
		WebhookURL: webhookURL,
		Progress:   "Queued",
		CreatedAt:  time.Now().UTC(),
	}

	r.mu.Lock()
	r.entries[job.ID] = &jobEntry{job: job, cancel: cancel}
	r.mu.Unlock()

	if r.store != nil {
		if err := r.store.SaveJob(job); err != nil {
			r.logger.Warn("[jobs] Could not persist job %s: %v", job.ID, err)
		}
	}

	r.pool.Submit(func() { r.run(ctx, job.ID) })
	return r.snapshot(job.ID)
}

// Get returns a copy of the job, or nil when unknown.
func (r *Registry) Get(id string) *models.Job {
	return r.snapshot(id)
}

// List returns copies of all known jobs, newest first.
func (r *Registry) List() []*models.Job {
	r.mu.Lock()
	defer r.mu.Unlock()

	jobs := make([]*models.Job, 0, len(r.entries))
	for _, e := range r.entries {
		c := *e.job
		jobs = append(jobs, &c)
	}
	sort.Slice(jobs, func(i, j int) bool {
		return jobs[i].CreatedAt.After(jobs[j].CreatedAt)
	})
	return jobs
}

// Delete cancels the job if it is still running and removes it from the
// registry. Returns false when the job is unknown.
func (r *Registry) Delete(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[id]
	if !ok {
		return false
	}
	e.cancel()
	delete(r.entries, id)
	return true
}

// CSVPath returns where the job's export lives on disk.
func (r *Registry) CSVPath(id string) string {
	return filepath.Join(r.cfg.CSVOutputDir, id+".csv")
}

// FetchRecords loads a completed job's records from the store.
func (r *Registry) FetchRecords(job *models.Job) ([]models.Record, error) {
	if r.store == nil {
		return nil, fmt.Errorf("jobs: no record store configured")
	}
	return r.store.FetchRecords(job.ID, job.Kind)
}

// run drives one job from pending to a terminal state.
func (r *Registry) run(ctx context.Context, id string) {
	job := r.snapshot(id)
	if job == nil || ctx.Err() != nil {
		return
	}

	r.update(id, func(j *models.Job) {
		j.Status = models.JobRunning
		j.Progress = "Starting extraction..."
	})

	csvWriter, err := storage.NewCSVWriter(r.CSVPath(id), job.Kind)
	if err != nil {
		r.fail(id, fmt.Errorf("create export file: %w", err))
		return
	}
	defer csvWriter.Close()

	sink := func(rec models.Record, progress models.RunProgress) error {
		if err := csvWriter.WriteRecord(rec); err != nil {
			return err
		}
		r.webhooks.SendRecord(job.WebhookURL, id, progress.Accepted, progress.ExpectedTotal, rec)
		r.update(id, func(j *models.Job) {
			j.Progress = progress.String()
		})
		return nil
	}

	target := models.ExtractionTarget{Kind: job.Kind, Query: job.Query, Cap: job.Cap}
	result, err := r.runner.Run(ctx, target, sink)
	if err != nil {
		r.fail(id, err)
		return
	}

	r.complete(id, result)
}

// complete marks the job finished. Zero accepted records is still a completed
// job, not a failure.
func (r *Registry) complete(id string, result *gmaps.Result) {
	total := result.Summary.TotalAccepted
	now := time.Now().UTC()

	r.update(id, func(j *models.Job) {
		j.Status = models.JobCompleted
		j.TotalResults = &total
		j.CompletedAt = &now
		if total == 0 {
			j.Progress = "No results found"
		} else {
			j.Progress = fmt.Sprintf("Completed, %d results", total)
		}
	})

	job := r.snapshot(id)
	if job == nil {
		return
	}

	if r.store != nil {
		if err := r.store.SaveRecords(id, result.Records); err != nil {
			r.logger.Warn("[jobs] Could not persist records for %s: %v", id, err)
		}
		if err := r.store.UpdateJob(job); err != nil {
			r.logger.Warn("[jobs] Could not persist job %s: %v", id, err)
		}
	}

	r.webhooks.SendTerminal(job.WebhookURL, job, job.Progress)
	r.logger.Info("[jobs] Job %s completed with %d results (%d duplicates removed)",
		id, total, result.Summary.DuplicatesRemoved)
}

func (r *Registry) fail(id string, cause error) {
	now := time.Now().UTC()

	r.update(id, func(j *models.Job) {
		j.Status = models.JobFailed
		j.Error = cause.Error()
		j.CompletedAt = &now
		j.Progress = "Failed"
	})

	job := r.snapshot(id)
	if job == nil {
		return
	}

	if r.store != nil {
		if err := r.store.UpdateJob(job); err != nil {
			r.logger.Warn("[jobs] Could not persist job %s: %v", id, err)
		}
	}

	r.webhooks.SendTerminal(job.WebhookURL, job, "")
	r.logger.Error("[jobs] Job %s failed: %v", id, cause)
}

func (r *Registry) update(id string, fn func(*models.Job)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.entries[id]; ok {
		fn(e.job)
	}
}

func (r *Registry) snapshot(id string) *models.Job {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[id]
	if !ok {
		return nil
	}
	c := *e.job
	return &c
}
