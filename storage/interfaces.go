package storage

import "github.com/AhmedRagabRG/scraper/models"

// RecordWriter is the interface any per-record export backend must satisfy.
type RecordWriter interface {
	WriteRecord(rec models.Record) error
	Close() error
}

// JobStore persists jobs and their accepted records.
type JobStore interface {
	SaveJob(job *models.Job) error
	UpdateJob(job *models.Job) error
	SaveRecords(jobID string, records []models.Record) error
	FetchRecords(jobID string, kind models.TargetKind) ([]models.Record, error)
	Close() error
}
