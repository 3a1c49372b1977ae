package storage

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"

	"github.com/AhmedRagabRG/scraper/models"
)

// PostgresStore persists jobs and their accepted records to PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore opens a connection to PostgreSQL, runs schema migrations,
// and returns a ready-to-use PostgresStore.
func NewPostgresStore(dsn string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}

	for i := 0; i < 10; i++ {
		if err = db.Ping(); err == nil {
			break
		}
		time.Sleep(2 * time.Second)
	}
	if err != nil {
		return nil, fmt.Errorf("postgres: ping failed after retries: %w", err)
	}

	ps := &PostgresStore{db: db}
	if err := ps.migrate(); err != nil {
		return nil, fmt.Errorf("postgres: migrate: %w", err)
	}

	return ps, nil
}

func (ps *PostgresStore) migrate() error {
	_, err := ps.db.Exec(`
		CREATE TABLE IF NOT EXISTS jobs (
			id            TEXT         PRIMARY KEY,
			status        VARCHAR(20)  NOT NULL,
			kind          VARCHAR(20)  NOT NULL,
			query         TEXT         NOT NULL,
			cap_limit     INT          NOT NULL DEFAULT 0,
			webhook_url   TEXT         NOT NULL DEFAULT '',
			total_results INT,
			error         TEXT         NOT NULL DEFAULT '',
			created_at    TIMESTAMPTZ  NOT NULL,
			completed_at  TIMESTAMPTZ
		);

		CREATE TABLE IF NOT EXISTS business_records (
			id           SERIAL PRIMARY KEY,
			job_id       TEXT   NOT NULL REFERENCES jobs(id) ON DELETE CASCADE,
			name         TEXT   NOT NULL,
			rating       NUMERIC(3,1),
			review_count INT,
			five_star    INT,
			four_star    INT,
			three_star   INT,
			two_star     INT,
			one_star     INT,
			phone        TEXT   NOT NULL DEFAULT '',
			email        TEXT   NOT NULL DEFAULT '',
			email_source VARCHAR(20) NOT NULL DEFAULT 'none',
			website      TEXT   NOT NULL DEFAULT '',
			address      TEXT   NOT NULL DEFAULT '',
			scraped_at   TIMESTAMPTZ NOT NULL
		);

		CREATE TABLE IF NOT EXISTS review_records (
			id            SERIAL PRIMARY KEY,
			job_id        TEXT   NOT NULL REFERENCES jobs(id) ON DELETE CASCADE,
			reviewer_name TEXT   NOT NULL,
			review_date   TEXT   NOT NULL DEFAULT '',
			rating        INT,
			review_text   TEXT   NOT NULL DEFAULT '',
			has_pictures  BOOLEAN NOT NULL DEFAULT FALSE,
			company_reply TEXT   NOT NULL DEFAULT '',
			permalink     TEXT   NOT NULL DEFAULT '',
			scraped_at    TIMESTAMPTZ NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_jobs_status              ON jobs(status);
		CREATE INDEX IF NOT EXISTS idx_business_records_job_id  ON business_records(job_id);
		CREATE INDEX IF NOT EXISTS idx_review_records_job_id    ON review_records(job_id);
	`)
	return err
}

// SaveJob inserts a freshly created job.
func (ps *PostgresStore) SaveJob(job *models.Job) error {
	_, err := ps.db.Exec(`
		INSERT INTO jobs (id, status, kind, query, cap_limit, webhook_url, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
	`, job.ID, job.Status, job.Kind, job.Query, job.Cap, job.WebhookURL, job.CreatedAt)
	if err != nil {
		return fmt.Errorf("postgres: save job: %w", err)
	}
	return nil
}

// UpdateJob rewrites a job's mutable fields after a state transition.
func (ps *PostgresStore) UpdateJob(job *models.Job) error {
	_, err := ps.db.Exec(`
		UPDATE jobs
		SET status = $2, total_results = $3, error = $4, completed_at = $5
		WHERE id = $1
	`, job.ID, job.Status, job.TotalResults, job.Error, job.CompletedAt)
	if err != nil {
		return fmt.Errorf("postgres: update job: %w", err)
	}
	return nil
}

// SaveRecords batch-inserts a finished run's accepted records.
func (ps *PostgresStore) SaveRecords(jobID string, records []models.Record) error {
	if len(records) == 0 {
		return nil
	}

	const batchSize = 50
	for i := 0; i < len(records); i += batchSize {
		end := i + batchSize
		if end > len(records) {
			end = len(records)
		}
		if err := ps.insertBatch(jobID, records[i:end]); err != nil {
			return err
		}
	}
	return nil
}

func (ps *PostgresStore) insertBatch(jobID string, batch []models.Record) error {
	switch batch[0].(type) {
	case *models.BusinessRecord:
		return ps.insertBusinessBatch(jobID, batch)
	case *models.ReviewRecord:
		return ps.insertReviewBatch(jobID, batch)
	default:
		return fmt.Errorf("postgres: unsupported record type %T", batch[0])
	}
}

func (ps *PostgresStore) insertBusinessBatch(jobID string, batch []models.Record) error {
	const cols = 15
	valueStrings := make([]string, 0, len(batch))
	valueArgs := make([]interface{}, 0, len(batch)*cols)

	for idx, rec := range batch {
		r, ok := rec.(*models.BusinessRecord)
		if !ok {
			return fmt.Errorf("postgres: mixed record kinds in batch")
		}
		base := idx * cols
		placeholders := make([]string, cols)
		for p := 0; p < cols; p++ {
			placeholders[p] = fmt.Sprintf("$%d", base+p+1)
		}
		valueStrings = append(valueStrings, "("+strings.Join(placeholders, ",")+")")
		valueArgs = append(valueArgs,
			jobID, r.Name, r.Rating, r.ReviewCount,
			r.FiveStar, r.FourStar, r.ThreeStar, r.TwoStar, r.OneStar,
			r.Phone, r.Email, string(r.EmailSource), r.Website, r.Address, r.ScrapedAt)
	}

	query := fmt.Sprintf(`
		INSERT INTO business_records
			(job_id, name, rating, review_count,
			 five_star, four_star, three_star, two_star, one_star,
			 phone, email, email_source, website, address, scraped_at)
		VALUES %s
	`, strings.Join(valueStrings, ","))

	if _, err := ps.db.Exec(query, valueArgs...); err != nil {
		return fmt.Errorf("postgres: insert businesses: %w", err)
	}
	return nil
}

func (ps *PostgresStore) insertReviewBatch(jobID string, batch []models.Record) error {
	const cols = 9
	valueStrings := make([]string, 0, len(batch))
	valueArgs := make([]interface{}, 0, len(batch)*cols)

	for idx, rec := range batch {
		r, ok := rec.(*models.ReviewRecord)
		if !ok {
			return fmt.Errorf("postgres: mixed record kinds in batch")
		}
		base := idx * cols
		placeholders := make([]string, cols)
		for p := 0; p < cols; p++ {
			placeholders[p] = fmt.Sprintf("$%d", base+p+1)
		}
		valueStrings = append(valueStrings, "("+strings.Join(placeholders, ",")+")")
		valueArgs = append(valueArgs,
			jobID, r.ReviewerName, r.DateText, r.Rating, r.Text,
			r.HasPictures, r.CompanyReply, r.Permalink, r.ScrapedAt)
	}

	query := fmt.Sprintf(`
		INSERT INTO review_records
			(job_id, reviewer_name, review_date, rating, review_text,
			 has_pictures, company_reply, permalink, scraped_at)
		VALUES %s
	`, strings.Join(valueStrings, ","))

	if _, err := ps.db.Exec(query, valueArgs...); err != nil {
		return fmt.Errorf("postgres: insert reviews: %w", err)
	}
	return nil
}

// FetchRecords retrieves a job's stored records in insertion order.
func (ps *PostgresStore) FetchRecords(jobID string, kind models.TargetKind) ([]models.Record, error) {
	if kind == models.TargetReview {
		return ps.fetchReviews(jobID)
	}
	return ps.fetchBusinesses(jobID)
}

func (ps *PostgresStore) fetchBusinesses(jobID string) ([]models.Record, error) {
	rows, err := ps.db.Query(`
		SELECT name, rating, review_count,
		       five_star, four_star, three_star, two_star, one_star,
		       phone, email, email_source, website, address, scraped_at
		FROM business_records
		WHERE job_id = $1
		ORDER BY id
	`, jobID)
	if err != nil {
		return nil, fmt.Errorf("postgres: fetch businesses: %w", err)
	}
	defer rows.Close()

	var records []models.Record
	for rows.Next() {
		r := &models.BusinessRecord{}
		var (
			rating            sql.NullFloat64
			reviewCount       sql.NullInt64
			five, four, three sql.NullInt64
			two, one          sql.NullInt64
			emailSource       string
		)
		if err := rows.Scan(
			&r.Name, &rating, &reviewCount,
			&five, &four, &three, &two, &one,
			&r.Phone, &r.Email, &emailSource, &r.Website, &r.Address, &r.ScrapedAt,
		); err != nil {
			return nil, fmt.Errorf("postgres: scan business: %w", err)
		}
		r.Rating = nullFloat(rating)
		r.ReviewCount = nullInt(reviewCount)
		r.FiveStar = nullInt(five)
		r.FourStar = nullInt(four)
		r.ThreeStar = nullInt(three)
		r.TwoStar = nullInt(two)
		r.OneStar = nullInt(one)
		r.EmailSource = models.EmailSource(emailSource)
		records = append(records, r)
	}
	return records, rows.Err()
}

func (ps *PostgresStore) fetchReviews(jobID string) ([]models.Record, error) {
	rows, err := ps.db.Query(`
		SELECT reviewer_name, review_date, rating, review_text,
		       has_pictures, company_reply, permalink, scraped_at
		FROM review_records
		WHERE job_id = $1
		ORDER BY id
	`, jobID)
	if err != nil {
		return nil, fmt.Errorf("postgres: fetch reviews: %w", err)
	}
	defer rows.Close()

	var records []models.Record
	for rows.Next() {
		r := &models.ReviewRecord{}
		var rating sql.NullInt64
		if err := rows.Scan(
			&r.ReviewerName, &r.DateText, &rating, &r.Text,
			&r.HasPictures, &r.CompanyReply, &r.Permalink, &r.ScrapedAt,
		); err != nil {
			return nil, fmt.Errorf("postgres: scan review: %w", err)
		}
		r.Rating = nullInt(rating)
		records = append(records, r)
	}
	return records, rows.Err()
}

func (ps *PostgresStore) Close() error {
	return ps.db.Close()
}

func nullInt(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	i := int(v.Int64)
	return &i
}

func nullFloat(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}
