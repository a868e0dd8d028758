package postgres

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/google/uuid"

	domain "github.com/bryanwahyu/stripscan/internal/domain/analysis"
)

const Schema = `
CREATE TABLE IF NOT EXISTS strip_analyses (
  id         UUID        PRIMARY KEY,
  intake     TEXT        NOT NULL,
  source     TEXT        NOT NULL,
  kind       TEXT        NOT NULL,
  image_url  TEXT,
  result     TEXT        NOT NULL,
  created_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_strip_analyses_created ON strip_analyses (created_at DESC);`

type AnalysisRepository struct {
	db *sql.DB
}

func NewAnalysisRepository(db *sql.DB) *AnalysisRepository {
	return &AnalysisRepository{db: db}
}

func (r *AnalysisRepository) EnsureSchema(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, Schema)
	return err
}

// Save inserts or updates an analysis record
func (r *AnalysisRepository) Save(ctx context.Context, a *domain.Analysis) error {
	const q = `
INSERT INTO strip_analyses
  (id, intake, source, kind, image_url, result, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7)
ON CONFLICT (id) DO UPDATE SET
  image_url=EXCLUDED.image_url,
  result=EXCLUDED.result;`

	source := a.Source
	if strings.TrimSpace(source) == "" {
		source = "-"
	}
	createdAt := a.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	var imageURL sql.NullString
	if a.ImageURL != "" {
		imageURL = sql.NullString{String: a.ImageURL, Valid: true}
	}
	_, err := r.db.ExecContext(ctx, q,
		string(a.ID), string(a.Intake), source, string(a.Kind), imageURL, a.Result, createdAt,
	)
	return err
}

// Get returns sql.ErrNoRows for unknown ids, including ids that are not a
// UUID (the column type would reject them).
func (r *AnalysisRepository) Get(ctx context.Context, id domain.ID) (*domain.Analysis, error) {
	if _, err := uuid.Parse(string(id)); err != nil {
		return nil, sql.ErrNoRows
	}
	const q = `
SELECT id, intake, source, kind, image_url, result, created_at
FROM strip_analyses WHERE id=$1;`
	row := r.db.QueryRowContext(ctx, q, string(id))
	var (
		a        domain.Analysis
		imageURL sql.NullString
	)
	if err := row.Scan(&a.ID, &a.Intake, &a.Source, &a.Kind, &imageURL, &a.Result, &a.CreatedAt); err != nil {
		return nil, err
	}
	a.ImageURL = imageURL.String
	return &a, nil
}

func (r *AnalysisRepository) Latest(ctx context.Context, limit int) ([]*domain.Analysis, error) {
	if limit <= 0 {
		limit = 20
	}
	const q = `
SELECT id, intake, source, kind, image_url, result, created_at
FROM strip_analyses
ORDER BY created_at DESC, id DESC
LIMIT $1;`
	rows, err := r.db.QueryContext(ctx, q, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Analysis
	for rows.Next() {
		var (
			a        domain.Analysis
			imageURL sql.NullString
		)
		if err := rows.Scan(&a.ID, &a.Intake, &a.Source, &a.Kind, &imageURL, &a.Result, &a.CreatedAt); err != nil {
			return nil, err
		}
		a.ImageURL = imageURL.String
		out = append(out, &a)
	}
	return out, rows.Err()
}

func (r *AnalysisRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}
