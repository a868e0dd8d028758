package httpserver

import (
	"database/sql"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"

	appanalyze "github.com/bryanwahyu/stripscan/internal/application/analyze"
	domai "github.com/bryanwahyu/stripscan/internal/domain/ai"
	"github.com/bryanwahyu/stripscan/internal/domain/analysis"
	"github.com/bryanwahyu/stripscan/internal/domain/diagnosis"
	"github.com/bryanwahyu/stripscan/internal/middleware"
)

const (
	// DefaultMaxUploadBytes caps /analyze_direct bodies.
	DefaultMaxUploadBytes = 20 << 20
	maxJSONBytes          = 1 << 20
	maxListLimit          = 100

	kindQuota    = "quota"
	kindNotFound = "not_found"
	kindTooLarge = "too_large"
)

// Options wires the router. Only Service is required.
type Options struct {
	Service        *appanalyze.Service
	Metrics        *middleware.Metrics
	Limiter        *middleware.RateLimiter
	APIKeys        map[string]string
	AllowedOrigins []string
	MaxUploadBytes int64
	Health         map[string]middleware.HealthChecker
	Log            *slog.Logger
}

type Router struct {
	svc       *appanalyze.Service
	maxUpload int64
	log       *slog.Logger
}

func NewRouter(opts Options) http.Handler {
	r := &Router{svc: opts.Service, maxUpload: opts.MaxUploadBytes, log: opts.Log}
	if r.maxUpload <= 0 {
		r.maxUpload = DefaultMaxUploadBytes
	}
	if r.log == nil {
		r.log = slog.Default()
	}
	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	mux := chi.NewRouter()
	mux.Use(chimw.Recoverer)
	mux.Use(middleware.Logging(r.log))
	if opts.Metrics != nil {
		mux.Use(opts.Metrics.Middleware)
	}
	mux.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
		ExposedHeaders: []string{middleware.ErrorKindHeader},
		MaxAge:         300,
	}))
	mux.Use(middleware.RateLimit(opts.Limiter))
	mux.Use(middleware.APIKeyAuth(opts.APIKeys))

	mux.Get("/", middleware.LivenessHandler)
	mux.Get("/healthz", middleware.HealthHandler(opts.Health))
	mux.Get("/readyz", middleware.ReadinessHandler)
	if opts.Metrics != nil {
		mux.Handle("/metrics", opts.Metrics.Handler())
	}

	mux.Post("/analyze", r.wrap(r.handleAnalyzeURL))
	mux.Post("/analyze_direct", r.wrap(r.handleAnalyzeDirect))

	if r.svc.Archive != nil {
		mux.Get("/analyses", r.wrap(r.handleLatest))
		mux.Get("/analyses/{id}", r.wrap(r.handleGet))
	}

	return mux
}

type handlerFunc func(http.ResponseWriter, *http.Request) error

func (r *Router) wrap(h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		if err := h(w, req); err != nil {
			status, kind, msg := classify(err)
			if status >= http.StatusInternalServerError {
				r.log.ErrorContext(req.Context(), "request failed", "path", req.URL.Path, "kind", kind, "err", err)
			}
			w.Header().Set(middleware.ErrorKindHeader, kind)
			writeJSON(w, status, map[string]string{"error": msg})
		}
	}
}

// classify maps an error onto status, kind tag and public message.
func classify(err error) (int, string, string) {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.Is(err, sql.ErrNoRows), errors.Is(err, appanalyze.ErrArchiveDisabled):
		return http.StatusNotFound, kindNotFound, "not found"
	case errors.Is(err, domai.ErrQuotaExceeded):
		return http.StatusTooManyRequests, kindQuota, "ai quota exceeded"
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge, kindTooLarge,
			"File too large (limit " + strconv.FormatInt(tooLarge.Limit, 10) + " bytes)"
	}

	kind := diagnosis.KindOf(err)
	msg := diagnosis.PublicMessage(err)
	switch kind {
	case diagnosis.KindValidation, diagnosis.KindDownload, diagnosis.KindUnsupported, diagnosis.KindPermission:
		return http.StatusBadRequest, string(kind), msg
	case diagnosis.KindDocument, diagnosis.KindDecode:
		return http.StatusUnprocessableEntity, string(kind), msg
	case diagnosis.KindRemoteModel:
		return http.StatusBadGateway, string(kind), msg
	default:
		return http.StatusInternalServerError, string(kind), msg
	}
}

// POST /analyze
// Body: {"url": "<google drive share link>"}
func (r *Router) handleAnalyzeURL(w http.ResponseWriter, req *http.Request) error {
	var body struct {
		URL string `json:"url"`
	}
	// body yang bukan JSON dianggap kosong
	data, err := io.ReadAll(io.LimitReader(req.Body, maxJSONBytes))
	if err != nil {
		return err
	}
	_ = json.Unmarshal(data, &body)

	res, err := r.svc.AnalyzeURL(req.Context(), body.URL)
	if err != nil {
		return err
	}
	return writeResult(w, res)
}

// POST /analyze_direct
// Multipart field "file": strip photo or lab report PDF.
func (r *Router) handleAnalyzeDirect(w http.ResponseWriter, req *http.Request) error {
	req.Body = http.MaxBytesReader(w, req.Body, r.maxUpload)

	file, header, err := req.FormFile("file")
	switch {
	case err == nil:
		defer file.Close()
	case errors.Is(err, http.ErrMissingFile) && req.MultipartForm != nil && len(req.MultipartForm.Value["file"]) > 0:
		// part tanpa filename masuk sebagai value biasa
		return diagnosis.E(diagnosis.KindValidation, diagnosis.MsgNoFileReceived, nil)
	case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
		return diagnosis.E(diagnosis.KindValidation, diagnosis.MsgNoFile, nil)
	default:
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return err
		}
		return diagnosis.E(diagnosis.KindValidation, diagnosis.MsgNoFile, err)
	}

	if header.Filename == "" {
		return diagnosis.E(diagnosis.KindValidation, diagnosis.MsgNoFileReceived, nil)
	}
	body, err := io.ReadAll(file)
	if err != nil {
		return err
	}

	res, err := r.svc.AnalyzeUpload(req.Context(), diagnosis.Upload{Filename: header.Filename, Body: body})
	if err != nil {
		return err
	}
	return writeResult(w, res)
}

// GET /analyses?limit=20 (max 100)
func (r *Router) handleLatest(w http.ResponseWriter, req *http.Request) error {
	limit, _ := strconv.Atoi(req.URL.Query().Get("limit"))
	limit = min(limit, maxListLimit)

	list, err := r.svc.Archive.Latest(req.Context(), limit)
	if err != nil {
		return err
	}
	if list == nil {
		list = []*analysis.Analysis{}
	}
	writeJSON(w, http.StatusOK, list)
	return nil
}

// GET /analyses/{id}
func (r *Router) handleGet(w http.ResponseWriter, req *http.Request) error {
	// id selalu UUID; yang lain pasti tidak ada di archive
	id, err := uuid.Parse(chi.URLParam(req, "id"))
	if err != nil {
		return sql.ErrNoRows
	}

	a, err := r.svc.Archive.Get(req.Context(), analysis.ID(id.String()))
	if err != nil {
		return err
	}
	if a == nil {
		return sql.ErrNoRows
	}
	writeJSON(w, http.StatusOK, a)
	return nil
}

func writeResult(w http.ResponseWriter, res *diagnosis.Result) error {
	writeJSON(w, http.StatusOK, map[string]string{"result": res.Text})
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
