package storage

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/AhmedRagabRG/scraper/models"
)

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open %s: %v", path, err)
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return rows
}

func TestCSVBusinessColumnOrder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "businesses.csv")
	w, err := NewCSVWriter(path, models.TargetBusiness)
	if err != nil {
		t.Fatalf("NewCSVWriter: %v", err)
	}

	rating := 4.5
	count := 89
	five := 60
	rec := &models.BusinessRecord{
		Name:        "Joe's Diner",
		Rating:      &rating,
		ReviewCount: &count,
		FiveStar:    &five,
		Phone:       "+1 415 555 0132",
		Email:       "owner@joes.example",
		EmailSource: models.EmailSourceWebsite,
		Website:     "https://joes.example",
		Address:     "12 Main St",
		ScrapedAt:   time.Now(),
	}
	if err := w.WriteRecord(rec); err != nil {
		t.Fatalf("WriteRecord: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	rows := readCSV(t, path)
	if len(rows) != 2 {
		t.Fatalf("got %d rows; want header + 1", len(rows))
	}

	wantHeader := []string{
		"name", "rating", "review_count",
		"five_star", "four_star", "three_star", "two_star", "one_star",
		"phone", "email", "email_source", "website", "address",
	}
	for i, col := range wantHeader {
		if rows[0][i] != col {
			t.Errorf("header[%d] = %q; want %q", i, rows[0][i], col)
		}
	}

	row := rows[1]
	if row[0] != "Joe's Diner" || row[1] != "4.5" || row[2] != "89" {
		t.Errorf("unexpected leading cells: %v", row[:3])
	}
	if row[3] != "60" {
		t.Errorf("five_star = %q; want 60", row[3])
	}
	if row[4] != "" {
		t.Errorf("four_star = %q; absent buckets must be empty", row[4])
	}
	if row[10] != "website" {
		t.Errorf("email_source = %q; want website", row[10])
	}
}

func TestCSVReviewColumnOrder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reviews.csv")
	w, err := NewCSVWriter(path, models.TargetReview)
	if err != nil {
		t.Fatalf("NewCSVWriter: %v", err)
	}

	rating := 5
	withReply := &models.ReviewRecord{
		ReviewerName: "Ana",
		DateText:     "2 months ago",
		Rating:       &rating,
		Text:         "Great food",
		HasPictures:  true,
		CompanyReply: "Thanks Ana!",
		ScrapedAt:    time.Now(),
	}
	noReply := &models.ReviewRecord{
		ReviewerName: "Ben",
		Text:         "Fine",
		ScrapedAt:    time.Now(),
	}

	for _, rec := range []models.Record{withReply, noReply} {
		if err := w.WriteRecord(rec); err != nil {
			t.Fatalf("WriteRecord: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	rows := readCSV(t, path)
	wantHeader := []string{
		"reviewer_name", "review_date", "rating", "review_text",
		"has_pictures", "company_reply",
	}
	for i, col := range wantHeader {
		if rows[0][i] != col {
			t.Errorf("header[%d] = %q; want %q", i, rows[0][i], col)
		}
	}

	if rows[1][4] != "yes" || rows[1][5] != "Thanks Ana!" {
		t.Errorf("row with reply = %v", rows[1])
	}
	if rows[2][4] != "no" || rows[2][5] != "no" {
		t.Errorf("row without reply = %v; pictures and reply must read no", rows[2])
	}
}

func TestCSVRejectsForeignRecordKind(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	w, err := NewCSVWriter(path, models.TargetBusiness)
	if err != nil {
		t.Fatalf("NewCSVWriter: %v", err)
	}
	defer w.Close()

	if err := w.WriteRecord(nil); err == nil {
		t.Error("nil record must be rejected")
	}
}
