package analyze

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"strings"
	"time"

	"github.com/bryanwahyu/stripscan/internal/application"
	"github.com/bryanwahyu/stripscan/internal/domain/diagnosis"
	"github.com/bryanwahyu/stripscan/internal/domain/document"
	"github.com/bryanwahyu/stripscan/internal/infra/imaging"
)

// Observer receives one call per finished analysis. outcome is "ok" or an
// error kind.
type Observer interface {
	ObserveAnalysis(intake diagnosis.Intake, kind document.Kind, outcome string)
}

// Service composes fetch, normalize, encode and diagnose for both intakes.
type Service struct {
	Fetcher    diagnosis.Fetcher
	Rasterizer diagnosis.Rasterizer
	Advisor    diagnosis.Advisor
	Chart      diagnosis.ChartLoader

	// Chart policy per intake.
	URLPolicy    diagnosis.ChartPolicy
	DirectPolicy diagnosis.ChartPolicy

	// MaxPixels caps decoded strip images; <= 0 means imaging.DefaultMaxPixels.
	MaxPixels int64

	Archive  *Archive // nil disables archiving
	Observer Observer // optional
	Clock    application.Clock
	Log      *slog.Logger
}

// NewService wires the default chart policies: always for URL intake,
// never for PDF uploads.
func NewService(f diagnosis.Fetcher, r diagnosis.Rasterizer, a diagnosis.Advisor, c diagnosis.ChartLoader) *Service {
	return &Service{
		Fetcher:      f,
		Rasterizer:   r,
		Advisor:      a,
		Chart:        c,
		URLPolicy:    diagnosis.ChartAlways,
		DirectPolicy: diagnosis.ChartUnlessReport,
		Clock:        application.SystemClock{},
		Log:          slog.Default(),
	}
}

// AnalyzeURL downloads the document behind shareURL and diagnoses it.
func (s *Service) AnalyzeURL(ctx context.Context, shareURL string) (res *diagnosis.Result, err error) {
	kind := document.KindUnknown
	defer func() { s.observe(diagnosis.IntakeURL, kind, err) }()

	if strings.TrimSpace(shareURL) == "" {
		return nil, diagnosis.E(diagnosis.KindValidation, diagnosis.MsgNoURL, nil)
	}

	dl, err := s.Fetcher.Fetch(ctx, shareURL)
	if err != nil {
		if diagnosis.KindOf(err) == diagnosis.KindValidation {
			return nil, err
		}
		s.Log.WarnContext(ctx, "download failed", "url", shareURL, "error", err)
		return nil, diagnosis.E(diagnosis.KindDownload, diagnosis.MsgDownloadFailed, err)
	}
	s.Log.InfoContext(ctx, "downloaded file", "content_type", dl.ContentType, "bytes", len(dl.Body))

	kind = document.Classify(dl.Body)
	s.Log.InfoContext(ctx, "detected file type", "kind", kind, "mime", kind.MIME(), "sniffed", document.DetectMIME(dl.Body))

	var refB64 string
	if s.URLPolicy.AttachChart(kind == document.KindPDF) {
		if refB64, err = s.chartBase64(); err != nil {
			return nil, err
		}
	}

	img, err := s.normalize(dl.Body, kind)
	if err != nil {
		return nil, err
	}

	return s.diagnose(ctx, diagnosis.IntakeURL, shareURL, kind, img, refB64)
}

// AnalyzeUpload diagnoses a file posted directly. PDFs are treated as lab
// reports; everything else as a strip photo.
func (s *Service) AnalyzeUpload(ctx context.Context, up diagnosis.Upload) (res *diagnosis.Result, err error) {
	kind := document.KindUnknown
	defer func() { s.observe(diagnosis.IntakeDirect, kind, err) }()

	if len(up.Body) == 0 {
		return nil, diagnosis.E(diagnosis.KindValidation, diagnosis.MsgNoFileReceived, nil)
	}

	isPDF := document.IsPDFUpload(up.Filename, up.Body)
	kind = document.Classify(up.Body)
	if isPDF {
		kind = document.KindPDF
	}
	s.Log.InfoContext(ctx, "received upload", "filename", up.Filename, "bytes", len(up.Body),
		"kind", kind, "mime", document.DetectMIME(up.Body))

	var refB64 string
	if s.DirectPolicy.AttachChart(isPDF) {
		if refB64, err = s.chartBase64(); err != nil {
			return nil, err
		}
	}

	var img *image.RGBA
	if isPDF {
		s.Log.DebugContext(ctx, "processing upload as report")
		img, err = s.Rasterizer.RasterizeFirstPage(up.Body)
	} else {
		s.Log.DebugContext(ctx, "processing upload as strip image")
		img, err = imaging.DecodeRasterLimit(up.Body, s.MaxPixels)
	}
	if err != nil {
		return nil, err
	}

	return s.diagnose(ctx, diagnosis.IntakeDirect, up.Filename, kind, img, refB64)
}

// normalize turns downloaded bytes into an RGB image according to kind.
func (s *Service) normalize(b []byte, kind document.Kind) (*image.RGBA, error) {
	switch {
	case kind == document.KindPDF:
		return s.Rasterizer.RasterizeFirstPage(b)
	case kind.IsRaster():
		return imaging.DecodeRasterLimit(b, s.MaxPixels)
	case kind == document.KindHTML:
		return nil, diagnosis.E(diagnosis.KindPermission, diagnosis.MsgPermissionPage, nil)
	default:
		return nil, diagnosis.E(diagnosis.KindUnsupported, diagnosis.MsgUnsupported, nil)
	}
}

func (s *Service) chartBase64() (string, error) {
	chart, err := s.Chart.LoadChart()
	if err != nil {
		return "", fmt.Errorf("load reference chart: %w", err)
	}
	return imaging.EncodeBase64(chart)
}

func (s *Service) diagnose(ctx context.Context, intake diagnosis.Intake, source string, kind document.Kind, img *image.RGBA, refB64 string) (*diagnosis.Result, error) {
	png, err := imaging.EncodePNG(img)
	if err != nil {
		return nil, err
	}

	text, err := s.Advisor.Diagnose(ctx, diagnosis.Input{
		UserImageB64:      imaging.Base64(png),
		ReferenceImageB64: refB64,
		WithGuide:         refB64 != "",
	})
	if err != nil {
		return nil, err
	}

	res := &diagnosis.Result{Text: text, Kind: kind, Intake: intake}
	if s.Archive != nil {
		s.Archive.Record(ctx, s.now(), res, source, png)
	}
	return res, nil
}

func (s *Service) now() time.Time {
	if s.Clock == nil {
		return time.Now()
	}
	return s.Clock.Now()
}

func (s *Service) observe(intake diagnosis.Intake, kind document.Kind, err error) {
	if s.Observer == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = string(diagnosis.KindOf(err))
		if errors.Is(err, context.Canceled) {
			outcome = "canceled"
		}
	}
	s.Observer.ObserveAnalysis(intake, kind, outcome)
}
