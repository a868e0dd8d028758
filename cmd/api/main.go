package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bryanwahyu/stripscan/internal/application"
	appanalyze "github.com/bryanwahyu/stripscan/internal/application/analyze"
	"github.com/bryanwahyu/stripscan/internal/config"
	"github.com/bryanwahyu/stripscan/internal/domain/analysis"
	aiopenai "github.com/bryanwahyu/stripscan/internal/infra/ai/openai"
	"github.com/bryanwahyu/stripscan/internal/infra/db/mysql"
	"github.com/bryanwahyu/stripscan/internal/infra/db/postgres"
	"github.com/bryanwahyu/stripscan/internal/infra/drive"
	"github.com/bryanwahyu/stripscan/internal/infra/httpserver"
	"github.com/bryanwahyu/stripscan/internal/infra/imaging"
	minioStore "github.com/bryanwahyu/stripscan/internal/infra/storage"
	"github.com/bryanwahyu/stripscan/internal/logger"
	"github.com/bryanwahyu/stripscan/internal/middleware"
)

func main() {
	// load config
	cfg, err := config.Load(config.Path())
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load error: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.Init(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		log.Warn("falling back to info level", "err", err)
	}

	if err := cfg.Validate(); err != nil {
		fatal(log, "invalid config", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	metrics := middleware.NewMetrics()
	chart := imaging.FileChart{Path: cfg.Reference.Path}
	rasterizer := imaging.NewPDFRasterizer(cfg.Imaging.PDFDPI)
	rasterizer.MaxPixels = cfg.Imaging.MaxPixels

	// init service
	svc := appanalyze.NewService(
		drive.New(cfg.Drive.DownloadURL, cfg.Drive.Timeout),
		rasterizer,
		aiopenai.NewClient(cfg.OpenAI.APIKey, cfg.OpenAI.BaseURL, cfg.OpenAI.Model, cfg.OpenAI.MaxTokens),
		chart,
	)
	svc.Observer = metrics
	svc.Clock = application.SystemClock{}
	svc.Log = log
	svc.MaxPixels = cfg.Imaging.MaxPixels

	health := map[string]middleware.HealthChecker{"reference_chart": chart}

	if cfg.Archive.Enabled {
		db, repo, err := openArchive(ctx, cfg)
		if err != nil {
			fatal(log, "archive db connect error", err)
		}
		defer db.Close()

		// init minio
		store, err := minioStore.New(ctx,
			cfg.Archive.Minio.Endpoint,
			cfg.Archive.Minio.Region,
			cfg.Archive.Minio.BucketName,
			cfg.Archive.Minio.AccessKey,
			cfg.Archive.Minio.SecretKey,
			cfg.Archive.Minio.UseSSL,
		)
		if err != nil {
			fatal(log, "minio init error", err)
		}

		svc.Archive = &appanalyze.Archive{Repo: repo, Images: store, Log: log}
		health["archive_db"] = middleware.CheckFunc(repo.Ping)
		log.Info("analysis archive enabled", "driver", cfg.Archive.Driver, "bucket", cfg.Archive.Minio.BucketName)
	}

	limiter := middleware.NewRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst)
	go limiter.Run(ctx)

	// init router
	handler := httpserver.NewRouter(httpserver.Options{
		Service:        svc,
		Metrics:        metrics,
		Limiter:        limiter,
		APIKeys:        cfg.Auth.APIKeys,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		MaxUploadBytes: cfg.Server.MaxUploadBytes,
		Health:         health,
		Log:            log,
	})

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// run server
	errCh := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", addr, "model", cfg.OpenAI.Model, "reference", cfg.Reference.Path)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	// graceful shutdown
	select {
	case <-ctx.Done():
	case err := <-errCh:
		fatal(log, "server error", err)
	}
	log.Info("shutting down server...")

	ctx2, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx2); err != nil {
		log.Error("shutdown error", "err", err)
	}
}

type archiveRepo interface {
	analysis.Repository
	EnsureSchema(ctx context.Context) error
}

func openArchive(ctx context.Context, cfg *config.Config) (*sql.DB, archiveRepo, error) {
	var (
		db   *sql.DB
		repo archiveRepo
		err  error
	)
	switch cfg.Archive.Driver {
	case "postgres":
		if db, err = postgres.Connect(ctx, cfg.PostgresDSN()); err != nil {
			return nil, nil, err
		}
		repo = postgres.NewAnalysisRepository(db)
	default:
		if db, err = mysql.Connect(ctx, cfg.MySQLDSN()); err != nil {
			return nil, nil, err
		}
		repo = mysql.NewAnalysisRepository(db)
	}
	if err := repo.EnsureSchema(ctx); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("ensure schema: %w", err)
	}
	return db, repo, nil
}

func fatal(log *slog.Logger, msg string, err error) {
	log.Error(msg, "err", err)
	os.Exit(1)
}
