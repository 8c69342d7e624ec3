package pipeline

import (
	"context"
	"log/slog"
	"time"
)

// Worker processes a single conversion job.
type Worker struct {
	conv *Converter
	log  *slog.Logger
}

func NewWorker(conv *Converter, log *slog.Logger) *Worker {
	return &Worker{conv: conv, log: log}
}

// Process runs the full conversion for a job.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID, "filename", job.Filename)
	start := time.Now()

	conv, err := w.conv.convert(ctx, job.Filename, job.FileData(), job.Format, job.SetStatus)
	w.conv.observe(start, conv, err)
	if err != nil {
		log.Error("conversion failed", "error", err)
		job.Fail(err.Error())
		return
	}

	job.SetResult(conv)
	job.SetStatus(StatusCompleted, "done")
	log.Info("conversion complete",
		"records", len(conv.Records),
		"output", conv.OutputName,
		"duration_ms", time.Since(start).Milliseconds())
}
