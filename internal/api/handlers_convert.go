package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dgallion1/transcriptr/internal/pipeline"
	"github.com/dgallion1/transcriptr/internal/transcript"
)

// handleTranscripts parses an upload and returns the records as JSON without
// writing an export.
func (s *Server) handleTranscripts(w http.ResponseWriter, r *http.Request) {
	u, err := s.readUpload(w, r)
	if err != nil {
		jsonError(w, err.Error(), uploadStatus(err))
		return
	}

	conv, err := s.converter.Extract(r.Context(), u.filename, u.data)
	if err != nil {
		s.log.Warn("extraction failed", "filename", u.filename, "error", err)
		jsonError(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"filename":        u.filename,
		"title":           conv.Title,
		"content_hash":    conv.ContentHash,
		"pages":           conv.Pages,
		"records":         conv.Records,
		"diagnostics":     conv.Diagnostics,
		"fallback_lines":  conv.Count(transcript.DiagnosticFallback),
		"unmatched_lines": conv.Count(transcript.DiagnosticUnmatched),
	})
}

// handleConvert stores the upload and queues it for conversion.
func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	u, err := s.readUpload(w, r)
	if err != nil {
		jsonError(w, err.Error(), uploadStatus(err))
		return
	}

	stored, err := s.save(u)
	if err != nil {
		s.log.Error("upload failed", "error", err)
		jsonError(w, "could not store the upload", http.StatusInternalServerError)
		return
	}

	job := pipeline.NewJob(stored, u.format, u.data)
	if err := s.orchestrator.Submit(job); err != nil {
		code := http.StatusInternalServerError
		if errors.Is(err, pipeline.ErrQueueFull) {
			code = http.StatusServiceUnavailable
		}
		jsonError(w, err.Error(), code)
		return
	}

	snap := job.Snapshot()
	writeJSON(w, http.StatusAccepted, map[string]any{
		"job_id":   snap.ID,
		"filename": snap.Filename,
		"format":   snap.Format,
		"status":   snap.Status,
		"poll_url": fmt.Sprintf("/api/convert/%s/status", snap.ID),
	})
}

func (s *Server) handleConvertStatus(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")
	job := s.orchestrator.GetJob(jobID)
	if job == nil {
		jsonError(w, "job not found", http.StatusNotFound)
		return
	}
	snap := job.Snapshot()

	resp := map[string]any{
		"job_id":      snap.ID,
		"filename":    snap.Filename,
		"status":      snap.Status,
		"phase":       snap.Phase,
		"progress":    snap.Progress,
		"diagnostics": snap.Diagnostics,
	}
	if snap.Status == pipeline.StatusCompleted {
		resp["output_name"] = snap.OutputName
		resp["content_hash"] = snap.ContentHash
		resp["download_url"] = downloadURL(snap.OutputName)
	}
	writeJSON(w, http.StatusOK, resp)
}
