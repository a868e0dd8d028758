package mysql

import (
	"context"
	"database/sql"
	"time"

	domain "github.com/bryanwahyu/stripscan/internal/domain/analysis"
)

// Schema creates the archive table.
const Schema = `
CREATE TABLE IF NOT EXISTS strip_analyses (
  id         VARCHAR(36)  NOT NULL PRIMARY KEY,
  intake     VARCHAR(16)  NOT NULL,
  source     TEXT         NOT NULL,
  kind       VARCHAR(16)  NOT NULL,
  image_url  TEXT         NULL,
  result     TEXT         NOT NULL,
  created_at DATETIME(6)  NOT NULL,
  INDEX idx_strip_analyses_created (created_at)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;`

type AnalysisRepository struct {
	db *sql.DB
}

func NewAnalysisRepository(db *sql.DB) *AnalysisRepository {
	return &AnalysisRepository{db: db}
}

// EnsureSchema jalankan CREATE TABLE kalau belum ada
func (r *AnalysisRepository) EnsureSchema(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, Schema)
	return err
}

// Save inserts an analysis record
func (r *AnalysisRepository) Save(ctx context.Context, a *domain.Analysis) error {
	const q = `
INSERT INTO strip_analyses
  (id, intake, source, kind, image_url, result, created_at)
VALUES (?,?,?,?,?,?,?)
ON DUPLICATE KEY UPDATE
  image_url=VALUES(image_url), result=VALUES(result);`

	createdAt := a.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	_, err := r.db.ExecContext(ctx, q,
		a.ID, string(a.Intake), stringOrDash(a.Source), string(a.Kind),
		nullString(a.ImageURL), a.Result, createdAt,
	)
	return err
}

// Get returns sql.ErrNoRows when id is unknown.
func (r *AnalysisRepository) Get(ctx context.Context, id domain.ID) (*domain.Analysis, error) {
	const q = `
SELECT id, intake, source, kind, image_url, result, created_at
FROM strip_analyses WHERE id=?;`
	return scanOne(r.db.QueryRowContext(ctx, q, id))
}

// Latest returns the newest records first
func (r *AnalysisRepository) Latest(ctx context.Context, limit int) ([]*domain.Analysis, error) {
	if limit <= 0 {
		limit = 20
	}
	const q = `
SELECT id, intake, source, kind, image_url, result, created_at
FROM strip_analyses
ORDER BY created_at DESC, id DESC
LIMIT ?;`
	rows, err := r.db.QueryContext(ctx, q, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Analysis
	for rows.Next() {
		a, err := scanOne(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *AnalysisRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanOne(s scanner) (*domain.Analysis, error) {
	var (
		a        domain.Analysis
		imageURL sql.NullString
	)
	if err := s.Scan(&a.ID, &a.Intake, &a.Source, &a.Kind, &imageURL, &a.Result, &a.CreatedAt); err != nil {
		return nil, err
	}
	a.ImageURL = imageURL.String
	return &a, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
