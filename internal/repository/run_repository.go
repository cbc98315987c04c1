package repository

import (
	"database/sql"
	"time"

	"github.com/kudzimusar/morning-pulse-sub002/internal/model"
)

// RunRepository archives aggregation runs in Postgres for historical
// reads. The Redis document store stays the hot path; this table is
// written by the archiver worker after each run lands.
type RunRepository struct {
	db *sql.DB
}

func NewRunRepository(db *sql.DB) *RunRepository {
	return &RunRepository{db: db}
}

// SaveRun upserts the run and replaces its articles in one
// transaction. Re-archiving the same (date, country) key is idempotent.
func (r *RunRepository) SaveRun(run *model.AggregationRun) error {
	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var runID int64
	err = tx.QueryRow(`
		INSERT INTO aggregation_run(run_date, country, created_at, article_count)
		VALUES($1, $2, $3, $4)
		ON CONFLICT (run_date, country) DO UPDATE
		SET created_at = EXCLUDED.created_at, article_count = EXCLUDED.article_count
		RETURNING id
	`, run.Date, run.Country, run.CreatedAt, run.TotalArticles()).Scan(&runID)
	if err != nil {
		return err
	}

	_, err = tx.Exec(`DELETE FROM run_article WHERE run_id = $1`, runID)
	if err != nil {
		return err
	}

	for category, articles := range run.Categories {
		for _, a := range articles {
			var ts sql.NullTime
			if a.Timestamp != nil {
				ts = sql.NullTime{Time: *a.Timestamp, Valid: true}
			}
			_, err = tx.Exec(`
				INSERT INTO run_article(run_id, article_id, category, headline, detail, source, url, published_at)
				VALUES($1, $2, $3, $4, $5, $6, $7, $8)
			`, runID, a.ID, category, a.Headline, a.Detail, a.Source, a.URL, ts)
			if err != nil {
				return err
			}
		}
	}

	return tx.Commit()
}

func (r *RunRepository) GetRun(country, date string) (*model.AggregationRun, error) {
	return r.queryRun(`
		SELECT id, run_date, country, created_at
		FROM aggregation_run
		WHERE country = $1 AND run_date = $2
	`, country, date)
}

func (r *RunRepository) GetLatestRun(country string) (*model.AggregationRun, error) {
	return r.queryRun(`
		SELECT id, run_date, country, created_at
		FROM aggregation_run
		WHERE country = $1
		ORDER BY run_date DESC
		LIMIT 1
	`, country)
}

func (r *RunRepository) queryRun(query string, args ...any) (*model.AggregationRun, error) {
	var (
		runID   int64
		run     model.AggregationRun
		created time.Time
	)
	err := r.db.QueryRow(query, args...).Scan(&runID, &run.Date, &run.Country, &created)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	run.CreatedAt = created

	rows, err := r.db.Query(`
		SELECT article_id, category, headline, detail, source, url, published_at
		FROM run_article
		WHERE run_id = $1
		ORDER BY id ASC
	`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	run.Categories = map[string][]model.Article{}
	for rows.Next() {
		var (
			a  model.Article
			ts sql.NullTime
		)
		err := rows.Scan(&a.ID, &a.Category, &a.Headline, &a.Detail, &a.Source, &a.URL, &ts)
		if err != nil {
			return nil, err
		}
		if ts.Valid {
			t := ts.Time
			a.Timestamp = &t
		}
		run.Categories[a.Category] = append(run.Categories[a.Category], a)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &run, nil
}
