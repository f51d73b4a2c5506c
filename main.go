package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"github.com/serisow/docextract/bootstrap"
	"github.com/serisow/docextract/config"
	"github.com/serisow/docextract/db"
	"github.com/serisow/docextract/handlers"
	"github.com/serisow/docextract/job_store"
	"github.com/serisow/docextract/logging"
	"github.com/serisow/docextract/repository"
	"github.com/serisow/docextract/server"

	"github.com/urfave/negroni"
)

func main() {
	cfg := config.Load()

	// Initialize the logger
	logger, err := initLogger(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	service := bootstrap.NewExtractService(cfg, false, logger)

	// Start the job store cleanup
	jobs := job_store.NewStore(logger)
	jobs.StartCleanup(cfg.JobRetention, cfg.JobCleanupInterval)
	defer jobs.StopCleanup()

	// Persistence is optional
	var recorder handlers.ExtractionRecorder
	if cfg.DatabaseURL != "" {
		pool, err := db.Connect(context.Background(), cfg.DatabaseURL, db.DefaultOptions, logger)
		if err != nil {
			log.Fatalf("Failed to connect to the database: %v", err)
		}
		defer pool.Close()
		recorder = repository.NewExtractionRepository(pool)
	} else {
		logger.Info("DATABASE_URL not set, extraction results will not be stored")
	}

	extractHandler := handlers.NewExtractHandler(service, recorder, jobs, cfg.MaxBatchSize, logger)
	extractHandler.SetFileTimeout(server.WriteTimeout(cfg))

	// Initialize server
	r := server.SetupRoutes(extractHandler, recorder != nil)
	n := setupNegroni(r, cfg)

	logger.Info("Starting docextract",
		slog.String("environment", cfg.Environment),
		slog.String("port", cfg.HTTPPort))

	if cfg.Environment == "production" {
		server.ServeProduction(n, cfg)
	} else {
		srv := &http.Server{
			Addr:         ":" + cfg.HTTPPort,
			Handler:      n,
			IdleTimeout:  time.Minute,
			ReadTimeout:  5 * time.Second,
			WriteTimeout: server.WriteTimeout(cfg),
		}
		server.ServeDevelopment(srv)
	}
}

func setupNegroni(r *mux.Router, cfg config.Config) *negroni.Negroni {
	n := negroni.New()

	n.Use(negroni.NewRecovery())
	n.Use(negroni.NewLogger())
	n.Use(cors.New(cors.Options{
		AllowedOrigins: cfg.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "Authorization"},
		ExposedHeaders: []string{"X-Extraction-Id"},
	}))

	n.UseHandler(r)
	return n
}

func initLogger(cfg config.Config) (*slog.Logger, error) {
	fileHandler, err := logging.NewDailyFileHandler(cfg.LogDir, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	})
	if err != nil {
		return nil, err
	}

	logger := slog.New(fileHandler)
	slog.SetDefault(logger)

	return logger, nil
}
