package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dgallion1/transcriptr/internal/api"
	"github.com/dgallion1/transcriptr/internal/config"
	"github.com/dgallion1/transcriptr/internal/parser"
	"github.com/dgallion1/transcriptr/internal/pipeline"
	"github.com/dgallion1/transcriptr/internal/storage"
	"github.com/dgallion1/transcriptr/internal/transcript"
)

func main() {
	cfg := config.Load()
	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))

	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	patterns, err := cfg.NoisePatterns()
	if err != nil {
		log.Error("failed to load noise patterns", "error", err)
		os.Exit(1)
	}
	noise, err := transcript.NewNoiseFilter(patterns)
	if err != nil {
		log.Error("invalid noise pattern", "error", err)
		os.Exit(1)
	}

	store, err := storage.New(cfg.UploadDir, cfg.OutputDir)
	if err != nil {
		log.Error("failed to prepare storage", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize pipeline.
	conv := pipeline.NewConverter(
		transcript.NewParser(noise, log),
		store,
		pipeline.NewStats(cfg.StatsWindow),
		parser.Options{PDFFallbackPdftotext: cfg.PDFFallbackPdftotext},
		log,
	)
	orch := pipeline.NewOrchestrator(cfg, conv, log)
	orch.Start(ctx)

	// Initialize HTTP server.
	srv := api.NewServer(orch, store, log, cfg)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown.
	done := make(chan struct{})
	go func() {
		defer close(done)
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.Warn("http shutdown", "error", err)
		}

		// Handlers are drained, so nothing submits after the queue closes.
		orch.Stop()
	}()

	log.Info("starting transcriptr",
		"port", cfg.Port,
		"upload_dir", cfg.UploadDir,
		"output_dir", cfg.OutputDir,
		"export_format", cfg.ExportFormat,
		"noise_patterns", noise.Len(),
		"workers", cfg.WorkerCount)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
	<-done
}
