package config

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/dgallion1/transcriptr/internal/export"
	"github.com/dgallion1/transcriptr/internal/transcript"
)

type Config struct {
	Port string

	// Logging
	LogLevel slog.Level

	// Auth for the /api routes. Empty leaves them open.
	APIKey string

	// Storage
	DataDir   string
	UploadDir string
	OutputDir string

	// Upload limits
	MaxUploadBytes int64

	// Worker pool
	WorkerCount  int
	MaxQueueSize int

	// Job state
	JobTTL time.Duration

	// PDF
	PDFFallbackPdftotext bool

	// Parsing
	NoisePatternsFile string

	// Export
	ExportFormat export.Format

	// Stats
	StatsWindow time.Duration
}

// Load reads a .env file when present, then the environment.
func Load() Config {
	_ = godotenv.Load()

	dataDir := envOr("DATA_DIR", "data")
	cfg := Config{
		Port: envOr("PORT", "5012"),

		LogLevel: envLevel("LOG_LEVEL", slog.LevelInfo),

		APIKey: os.Getenv("TRANSCRIPTR_API_KEY"),

		DataDir:   dataDir,
		UploadDir: envOr("UPLOAD_DIR", filepath.Join(dataDir, "uploads")),
		OutputDir: envOr("OUTPUT_DIR", filepath.Join(dataDir, "output")),

		MaxUploadBytes: envInt64("MAX_UPLOAD_BYTES", 20971520), // 20MB

		WorkerCount:  envInt("WORKER_COUNT", 2),
		MaxQueueSize: envInt("MAX_QUEUE_SIZE", 50),

		JobTTL: envDuration("JOB_TTL", 1*time.Hour),

		PDFFallbackPdftotext: envBool("PDF_FALLBACK_PDFTOTEXT", true),

		NoisePatternsFile: os.Getenv("NOISE_PATTERNS_FILE"),

		ExportFormat: export.Format(strings.ToLower(envOr("EXPORT_FORMAT", string(export.FormatCSV)))),

		StatsWindow: envDuration("STATS_WINDOW", 1*time.Hour),
	}

	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 2
	}
	if cfg.MaxQueueSize <= 0 {
		cfg.MaxQueueSize = 50
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 20971520
	}
	if cfg.JobTTL <= 0 {
		cfg.JobTTL = 1 * time.Hour
	}
	if cfg.StatsWindow <= 0 {
		cfg.StatsWindow = 1 * time.Hour
	}

	return cfg
}

func (c Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("PORT is required")
	}
	if c.UploadDir == "" || c.OutputDir == "" {
		return fmt.Errorf("UPLOAD_DIR and OUTPUT_DIR must not be empty")
	}
	if _, err := export.ParseFormat(string(c.ExportFormat)); err != nil {
		return fmt.Errorf("EXPORT_FORMAT: %w", err)
	}
	return nil
}

// NoisePatterns returns the built-in boilerplate patterns followed by any
// listed in NoisePatternsFile, one regular expression per line. Blank lines
// and lines starting with # are skipped.
func (c Config) NoisePatterns() ([]transcript.NoisePattern, error) {
	patterns := transcript.DefaultNoisePatterns()
	if c.NoisePatternsFile == "" {
		return patterns, nil
	}

	f, err := os.Open(c.NoisePatternsFile)
	if err != nil {
		return nil, fmt.Errorf("open noise patterns: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		patterns = append(patterns, transcript.NoisePattern{Expr: line})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read noise patterns: %w", err)
	}
	return patterns, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envLevel(key string, fallback slog.Level) slog.Level {
	if v := os.Getenv(key); v != "" {
		var l slog.Level
		if err := l.UnmarshalText([]byte(v)); err == nil {
			return l
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
