package analyze

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/bryanwahyu/stripscan/internal/domain/analysis"
	"github.com/bryanwahyu/stripscan/internal/domain/diagnosis"
)

// Archive keeps a copy of every successful analysis. Either field may be
// nil; a nil Images skips the upload and leaves ImageURL empty.
type Archive struct {
	Repo   analysis.Repository
	Images analysis.ImageStore
	Log    *slog.Logger
}

// Record stores res and its normalized image. Failures are logged only, the
// caller already has its answer.
func (a *Archive) Record(ctx context.Context, at time.Time, res *diagnosis.Result, source string, png []byte) *analysis.Analysis {
	log := a.Log
	if log == nil {
		log = slog.Default()
	}

	rec := &analysis.Analysis{
		ID:        analysis.ID(uuid.NewString()),
		Intake:    res.Intake,
		Source:    source,
		Kind:      res.Kind,
		Result:    res.Text,
		CreatedAt: at.UTC(),
	}

	if a.Images != nil {
		key := ObjectKey(at, rec.ID)
		url, err := a.Images.PutPNG(ctx, key, png)
		if err != nil {
			log.WarnContext(ctx, "archive image upload failed", "id", rec.ID, "error", err)
		} else {
			rec.ImageURL = url
		}
	}

	if a.Repo != nil {
		if err := a.Repo.Save(ctx, rec); err != nil {
			log.WarnContext(ctx, "archive save failed", "id", rec.ID, "error", err)
			return rec
		}
	}
	log.DebugContext(ctx, "analysis archived", "id", rec.ID, "image_url", rec.ImageURL)
	return rec
}

// ObjectKey lays images out by day: 2006/01/02/<id>.png
func ObjectKey(at time.Time, id analysis.ID) string {
	return fmt.Sprintf("%s/%s.png", at.UTC().Format("2006/01/02"), id)
}

// ErrArchiveDisabled is returned by lookups when no repository is wired.
var ErrArchiveDisabled = errors.New("analysis archive is disabled")

// Latest lists the newest archived analyses.
func (a *Archive) Latest(ctx context.Context, limit int) ([]*analysis.Analysis, error) {
	if a == nil || a.Repo == nil {
		return nil, ErrArchiveDisabled
	}
	return a.Repo.Latest(ctx, limit)
}

// Get returns one archived analysis.
func (a *Archive) Get(ctx context.Context, id analysis.ID) (*analysis.Analysis, error) {
	if a == nil || a.Repo == nil {
		return nil, ErrArchiveDisabled
	}
	return a.Repo.Get(ctx, id)
}
