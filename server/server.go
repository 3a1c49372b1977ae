package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/AhmedRagabRG/scraper/config"
	"github.com/AhmedRagabRG/scraper/models"
	"github.com/AhmedRagabRG/scraper/storage"
	"github.com/AhmedRagabRG/scraper/utils"
)

// Server exposes the job API over HTTP.
type Server struct {
	cfg      *config.Config
	logger   *utils.Logger
	registry *Registry
}

// New builds the HTTP layer on top of a job registry.
func New(cfg *config.Config, logger *utils.Logger, store storage.JobStore) *Server {
	return &Server{
		cfg:      cfg,
		logger:   logger,
		registry: NewRegistry(cfg, logger, store),
	}
}

// ListenAndServe blocks serving the API.
func (s *Server) ListenAndServe() error {
	addr := fmt.Sprintf(":%d", s.cfg.ServerPort)
	s.logger.Info("[server] Listening on %s", addr)
	return http.ListenAndServe(addr, s.Routes())
}

// Routes assembles the router; split out so tests can drive handlers directly.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Post("/scrape", s.handleScrape)
	r.Post("/reviews", s.handleReviews)
	r.Get("/status/{id}", s.handleStatus)
	r.Get("/results/{id}", s.handleResults)
	r.Get("/download/{id}", s.handleDownload)
	r.Get("/jobs", s.handleJobs)
	r.Delete("/jobs/{id}", s.handleDelete)
	r.Get("/health", s.handleHealth)

	return r
}

type scrapeRequest struct {
	Query      string `json:"query"`
	URL        string `json:"url"`
	MaxResults int    `json:"max_results"`
	WebhookURL string `json:"webhook_url"`
}

type scrapeResponse struct {
	JobID   string           `json:"job_id"`
	Status  models.JobStatus `json:"status"`
	Message string           `json:"message"`
}

func (s *Server) handleScrape(w http.ResponseWriter, r *http.Request) {
	var req scrapeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Query == "" {
		writeError(w, http.StatusBadRequest, "query is required")
		return
	}

	job := s.registry.Submit(models.TargetBusiness, req.Query, req.MaxResults, req.WebhookURL)
	s.respondSubmitted(w, job)
}

func (s *Server) handleReviews(w http.ResponseWriter, r *http.Request) {
	var req scrapeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.URL == "" {
		writeError(w, http.StatusBadRequest, "url is required")
		return
	}

	job := s.registry.Submit(models.TargetReview, req.URL, req.MaxResults, req.WebhookURL)
	s.respondSubmitted(w, job)
}

func (s *Server) respondSubmitted(w http.ResponseWriter, job *models.Job) {
	msg := fmt.Sprintf("Job accepted. Poll /status/%s for progress.", job.ID)
	if job.WebhookURL != "" {
		msg += " Results will be delivered to the webhook."
	}
	writeJSON(w, http.StatusAccepted, scrapeResponse{
		JobID:   job.ID,
		Status:  job.Status,
		Message: msg,
	})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	job := s.registry.Get(chi.URLParam(r, "id"))
	if job == nil {
		writeError(w, http.StatusNotFound, "job not found")
		return
	}
	writeJSON(w, http.StatusOK, job)
}

func (s *Server) handleResults(w http.ResponseWriter, r *http.Request) {
	job := s.registry.Get(chi.URLParam(r, "id"))
	if job == nil {
		writeError(w, http.StatusNotFound, "job not found")
		return
	}
	if job.Status != models.JobCompleted {
		writeError(w, http.StatusBadRequest, "job not completed yet")
		return
	}

	records, err := s.registry.FetchRecords(job)
	if err != nil {
		s.logger.Error("[server] Fetch records for %s: %v", job.ID, err)
		writeError(w, http.StatusInternalServerError, "could not load results")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"job_id":        job.ID,
		"total_results": len(records),
		"results":       records,
	})
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	job := s.registry.Get(chi.URLParam(r, "id"))
	if job == nil {
		writeError(w, http.StatusNotFound, "job not found")
		return
	}
	if job.Status != models.JobCompleted {
		writeError(w, http.StatusBadRequest, "job not completed yet")
		return
	}

	path := s.registry.CSVPath(job.ID)
	if _, err := os.Stat(path); err != nil {
		writeError(w, http.StatusNotFound, "results file not found")
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf(`attachment; filename="%s.csv"`, job.ID))
	http.ServeFile(w, r, path)
}

func (s *Server) handleJobs(w http.ResponseWriter, r *http.Request) {
	jobs := s.registry.List()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"total": len(jobs),
		"jobs":  jobs,
	})
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !s.registry.Delete(id) {
		writeError(w, http.StatusNotFound, "job not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"job_id":  id,
		"message": "job deleted",
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}
