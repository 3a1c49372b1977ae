package storage

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/AhmedRagabRG/scraper/models"
)

// businessColumns and reviewColumns are stable contracts: downstream consumers
// index by position, so the order never changes. A column with no value for a
// given record is written empty, never dropped.
var (
	businessColumns = []string{
		"name", "rating", "review_count",
		"five_star", "four_star", "three_star", "two_star", "one_star",
		"phone", "email", "email_source", "website", "address",
	}
	reviewColumns = []string{
		"reviewer_name", "review_date", "rating", "review_text",
		"has_pictures", "company_reply",
	}
)

// CSVWriter streams accepted records to a CSV file, one row per record.
// It is safe for concurrent use.
type CSVWriter struct {
	mu     sync.Mutex
	kind   models.TargetKind
	file   *os.File
	writer *csv.Writer
}

// NewCSVWriter creates (or truncates) the CSV file at the given path and
// writes the header row for the record kind. Intermediate directories are
// created automatically.
func NewCSVWriter(path string, kind models.TargetKind) (*CSVWriter, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("csv: create output dir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("csv: create file %q: %w", path, err)
	}

	w := csv.NewWriter(f)

	header := businessColumns
	if kind == models.TargetReview {
		header = reviewColumns
	}
	if err := w.Write(header); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("csv: write header: %w", err)
	}
	w.Flush()

	return &CSVWriter{kind: kind, file: f, writer: w}, nil
}

// WriteRecord appends one record and flushes, so partial output survives an
// interrupted run.
func (c *CSVWriter) WriteRecord(rec models.Record) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var row []string
	switch r := rec.(type) {
	case *models.BusinessRecord:
		row = businessRow(r)
	case *models.ReviewRecord:
		row = reviewRow(r)
	default:
		return fmt.Errorf("csv: unsupported record type %T", rec)
	}

	if err := c.writer.Write(row); err != nil {
		return fmt.Errorf("csv: write row: %w", err)
	}
	c.writer.Flush()
	return c.writer.Error()
}

// Close flushes and closes the underlying file.
func (c *CSVWriter) Close() error {
	c.writer.Flush()
	return c.file.Close()
}

func businessRow(r *models.BusinessRecord) []string {
	return []string{
		r.Name,
		floatCell(r.Rating),
		intCell(r.ReviewCount),
		intCell(r.FiveStar),
		intCell(r.FourStar),
		intCell(r.ThreeStar),
		intCell(r.TwoStar),
		intCell(r.OneStar),
		r.Phone,
		r.Email,
		string(r.EmailSource),
		r.Website,
		r.Address,
	}
}

func reviewRow(r *models.ReviewRecord) []string {
	reply := r.CompanyReply
	if reply == "" {
		reply = "no"
	}
	return []string{
		r.ReviewerName,
		r.DateText,
		intCell(r.Rating),
		r.Text,
		yesNo(r.HasPictures),
		reply,
	}
}

func intCell(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

func floatCell(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}
