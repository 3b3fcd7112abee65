package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/dvloznov/spend-insights/internal/api/handlers"
	"github.com/dvloznov/spend-insights/internal/api/middleware"
	"github.com/dvloznov/spend-insights/internal/config"
	"github.com/dvloznov/spend-insights/internal/jobs"
	"github.com/dvloznov/spend-insights/internal/jobs/inmemory"
	"github.com/dvloznov/spend-insights/internal/logger"
	"github.com/dvloznov/spend-insights/internal/pipeline"
	"github.com/dvloznov/spend-insights/internal/storage"
)

func main() {
	// A missing .env is fine; the environment may already be set.
	_ = godotenv.Load()

	cfg := config.Load()

	port := flag.String("port", cfg.Port, "HTTP server port (or set PORT env)")
	flag.Parse()
	cfg.Port = *port

	log := cfg.Logger()

	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	opts, err := cfg.AnalyzerOptions()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to build analyzer")
	}
	if opts.Model == nil {
		log.Warn().Msg("No GOOGLE_CLOUD_PROJECT or GEMINI_API_KEY configured - AI insights will be skipped")
	}
	analyzer := pipeline.NewAnalyzer(opts)
	log.Info().Strs("steps", analyzer.Steps()).Msg("Analysis pipeline ready")

	// Initialize job infrastructure
	jobStore := inmemory.NewStore()
	jobQueue := inmemory.NewQueue(cfg.JobQueueSize, cfg.JobWorkers, jobStore)

	workerCtx, cancelWorker := context.WithCancel(logger.WithContext(context.Background(), log))
	defer cancelWorker()

	jobHandler := func(ctx context.Context, job *jobs.AnalysisJob) (*pipeline.Result, error) {
		jobLog := logger.FromContext(ctx)
		jobLog.Info().Str("filename", job.Filename).Msg("Processing analysis job")
		return analyzer.Analyze(ctx, job.SourcePath)
	}

	log.Info().Int("workers", cfg.JobWorkers).Msg("Starting job workers")
	if err := jobQueue.Start(workerCtx, jobHandler); err != nil {
		log.Fatal().Err(err).Msg("Failed to start job workers")
	}

	// Initialize handlers
	analysisHandler := handlers.NewAnalysisHandler(
		analyzer,
		storage.NewLocalStore(cfg.UploadDir),
		opts.Store,
		jobQueue,
		cfg.MaxUploadBytes(),
	)
	jobsHandler := handlers.NewJobsHandler(jobStore)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      middleware.Chain(handlers.Routes(analysisHandler, jobsHandler), log),
		ReadTimeout:  60 * time.Second,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info().Str("port", cfg.Port).Str("upload_dir", cfg.UploadDir).Msg("Starting API server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	// Stop job queue and wait for in-flight jobs
	if err := jobQueue.Stop(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Error stopping job queue")
	}
	cancelWorker()

	log.Info().Msg("Server exited")
}
