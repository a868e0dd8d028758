package postgres

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

func TestSaveAndLatest(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewAnalysisRepository(db)
	at := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectExec(regexp.QuoteMeta("ON CONFLICT (id) DO UPDATE")).
		WithArgs("id-1", "url", "https://x/open?id=1", "jpg",
			sql.NullString{String: "http://img", Valid: true}, "text", at).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Save(context.Background(), &domain.Analysis{
		ID: "id-1", Intake: diagnosis.IntakeURL, Source: "https://x/open?id=1",
		Kind: document.KindJPG, ImageURL: "http://img", Result: "text", CreatedAt: at,
	}))

	rows := sqlmock.NewRows([]string{"id", "intake", "source", "kind", "image_url", "result", "created_at"}).
		AddRow("id-1", "url", "https://x/open?id=1", "jpg", "http://img", "text", at)
	mock.ExpectQuery(regexp.QuoteMeta("LIMIT $1")).WithArgs(5).WillReturnRows(rows)

	list, err := repo.Latest(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "http://img", list[0].ImageURL)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGet_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	const id = "6f1c2a4e-8b7d-4c3a-9e21-0d5b7f9a1c33"
	mock.ExpectQuery("SELECT").WithArgs(id).WillReturnError(sql.ErrNoRows)
	_, err = NewAnalysisRepository(db).Get(context.Background(), id)
	assert.ErrorIs(t, err, sql.ErrNoRows)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGet_NonUUIDNeverQueries(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	_, err = NewAnalysisRepository(db).Get(context.Background(), "nope")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	require.NoError(t, mock.ExpectationsWereMet(), "no query may reach the uuid column")
}
