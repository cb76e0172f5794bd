package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/emberlab/emgsync/internal/config"
	"github.com/emberlab/emgsync/internal/export"
	httpapp "github.com/emberlab/emgsync/internal/http"
	"github.com/emberlab/emgsync/internal/logger"
	"github.com/emberlab/emgsync/internal/storage"
	"github.com/emberlab/emgsync/internal/store"
	"github.com/emberlab/emgsync/internal/syncer"
	"github.com/emberlab/emgsync/internal/transport"
)

func main() {
	cfg := config.Load()

	if err := cfg.Validate(); err != nil {
		log.Fatalf("Configuration error: %v", err)
	}

	appLogger := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
	})

	if err := storage.EnsureDir(cfg.DataDir); err != nil {
		appLogger.Error("Failed to create data dir", "error", err)
		os.Exit(1)
	}
	if err := storage.EnsureDir(cfg.ScratchDir); err != nil {
		appLogger.Error("Failed to create scratch dir", "error", err)
		os.Exit(1)
	}

	db, err := store.NewSQLiteDB(cfg.DBPath)
	if err != nil {
		appLogger.Error("Failed to init DB", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	blobTransport := transport.NewHTTPTransport(cfg.BlobURL, cfg.BlobToken, nil)

	guard := syncer.NewGuard()
	coordinator := syncer.NewCoordinator(db, blobTransport, guard, appLogger, cfg.UploadRetries)

	w := syncer.NewWorker(coordinator, db, appLogger, cfg.SyncInterval, cfg.SyncConcurrency, cfg.ResyncFailed)
	w.Start()
	defer w.Stop()

	resolver := export.NewResolver(blobTransport, cfg.ScratchDir, appLogger)
	exporter := export.NewExporter(db, resolver, guard, appLogger)

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	h := httpapp.NewHandler(db, exporter, w, appLogger)
	h.RegisterRoutes(r)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	go func() {
		log.Printf("Server listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exiting")
}
