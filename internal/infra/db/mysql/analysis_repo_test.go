package mysql

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/bryanwahyu/stripscan/internal/domain/analysis"
	"github.com/bryanwahyu/stripscan/internal/domain/diagnosis"
	"github.com/bryanwahyu/stripscan/internal/domain/document"
)

func newMock(t *testing.T) (*AnalysisRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewAnalysisRepository(db), mock
}

func TestSave(t *testing.T) {
	repo, mock := newMock(t)
	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO strip_analyses")).
		WithArgs("a1", "direct", "-", "png", sql.NullString{}, "Based on the analysis", at).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Save(context.Background(), &domain.Analysis{
		ID: "a1", Intake: diagnosis.IntakeDirect, Kind: document.KindPNG,
		Result: "Based on the analysis", CreatedAt: at,
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGet(t *testing.T) {
	repo, mock := newMock(t)
	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	rows := sqlmock.NewRows([]string{"id", "intake", "source", "kind", "image_url", "result", "created_at"}).
		AddRow("a1", "url", "https://drive.google.com/open?id=x", "pdf", "http://minio/a1.png", "ok", at)
	mock.ExpectQuery(regexp.QuoteMeta("FROM strip_analyses WHERE id=?")).WithArgs("a1").WillReturnRows(rows)

	a, err := repo.Get(context.Background(), "a1")
	require.NoError(t, err)
	assert.Equal(t, diagnosis.IntakeURL, a.Intake)
	assert.Equal(t, document.KindPDF, a.Kind)
	assert.Equal(t, "http://minio/a1.png", a.ImageURL)
	assert.Equal(t, at, a.CreatedAt)
}

func TestGet_NotFound(t *testing.T) {
	repo, mock := newMock(t)
	mock.ExpectQuery("SELECT").WithArgs("missing").WillReturnError(sql.ErrNoRows)

	_, err := repo.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestLatest(t *testing.T) {
	repo, mock := newMock(t)
	at := time.Now().UTC()

	rows := sqlmock.NewRows([]string{"id", "intake", "source", "kind", "image_url", "result", "created_at"}).
		AddRow("b", "direct", "strip.png", "png", nil, "r2", at).
		AddRow("a", "direct", "strip.jpg", "jpg", nil, "r1", at.Add(-time.Minute))
	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY created_at DESC")).WithArgs(20).WillReturnRows(rows)

	list, err := repo.Latest(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, domain.ID("b"), list[0].ID)
	assert.Empty(t, list[0].ImageURL)
}

func TestStringOrDash(t *testing.T) {
	assert.Equal(t, "-", stringOrDash("  "))
	assert.Equal(t, "x", stringOrDash("x"))
}
