package pipeline

import (
	"crypto/sha256"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dgallion1/transcriptr/internal/export"
	"github.com/dgallion1/transcriptr/internal/transcript"
)

// JobStatus represents the state of a conversion job.
type JobStatus string

const (
	StatusQueued     JobStatus = "queued"
	StatusParsing    JobStatus = "parsing"
	StatusExtracting JobStatus = "extracting"
	StatusExporting  JobStatus = "exporting"
	StatusCompleted  JobStatus = "completed"
	StatusFailed     JobStatus = "failed"
)

// Job tracks the state of a single transcript conversion.
type Job struct {
	mu sync.Mutex

	ID string `json:"job_id"`

	Status   JobStatus     `json:"status"`
	Phase    string        `json:"phase"`
	Filename string        `json:"filename"`
	Format   export.Format `json:"format"`

	Progress Progress `json:"progress"`

	OutputName  string    `json:"output_name,omitempty"`
	ContentHash string    `json:"content_hash,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Internal: not serialized.
	fileData    []byte
	diagnostics []transcript.Diagnostic
	errors      []string
}

// Progress tracks processing progress.
type Progress struct {
	Records        int      `json:"records"`
	FallbackLines  int      `json:"fallback_lines"`
	UnmatchedLines int      `json:"unmatched_lines"`
	Errors         []string `json:"errors"`
}

// NewJob creates a queued job for an uploaded file.
func NewJob(filename string, format export.Format, data []byte) *Job {
	now := time.Now()
	return &Job{
		ID:        uuid.NewString(),
		Status:    StatusQueued,
		Phase:     "queued",
		Filename:  filename,
		Format:    format,
		CreatedAt: now,
		UpdatedAt: now,
		fileData:  data,
	}
}

// JobStore is a thread-safe in-memory job registry with TTL eviction.
type JobStore struct {
	mu   sync.Mutex
	jobs map[string]*Job
	ttl  time.Duration
}

func NewJobStore(ttl time.Duration) *JobStore {
	return &JobStore{
		jobs: make(map[string]*Job),
		ttl:  ttl,
	}
}

func (s *JobStore) Put(job *Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.ID] = job
}

func (s *JobStore) Get(id string) *Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.jobs[id]
}

// Len returns the number of tracked jobs.
func (s *JobStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.jobs)
}

// Cleanup removes expired jobs.
func (s *JobStore) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	for id, job := range s.jobs {
		job.mu.Lock()
		updated := job.UpdatedAt
		job.mu.Unlock()
		if now.Sub(updated) > s.ttl {
			delete(s.jobs, id)
		}
	}
}

// SetStatus updates job status atomically.
func (j *Job) SetStatus(status JobStatus, phase string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Status = status
	j.Phase = phase
	j.UpdatedAt = time.Now()
}

// AddError records an error.
func (j *Job) AddError(err string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.errors = append(j.errors, err)
	j.Progress.Errors = j.errors
	j.UpdatedAt = time.Now()
}

// Fail records err and marks the job failed in its current phase.
func (j *Job) Fail(err string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.errors = append(j.errors, err)
	j.Progress.Errors = j.errors
	j.Status = StatusFailed
	j.fileData = nil
	j.UpdatedAt = time.Now()
}

// SetResult records the outcome of a successful conversion and releases the
// uploaded bytes.
func (j *Job) SetResult(conv *Conversion) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Progress.Records = len(conv.Records)
	j.Progress.FallbackLines = 0
	j.Progress.UnmatchedLines = 0
	for _, d := range conv.Diagnostics {
		switch d.Kind {
		case transcript.DiagnosticFallback:
			j.Progress.FallbackLines++
		case transcript.DiagnosticUnmatched:
			j.Progress.UnmatchedLines++
		}
	}
	j.diagnostics = append([]transcript.Diagnostic(nil), conv.Diagnostics...)
	j.OutputName = conv.OutputName
	j.ContentHash = conv.ContentHash
	j.fileData = nil
	j.UpdatedAt = time.Now()
}

// SetFileData sets the raw file bytes for processing.
func (j *Job) SetFileData(data []byte) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.fileData = data
}

// FileData returns the raw file bytes.
func (j *Job) FileData() []byte {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.fileData
}

// JobSnapshot is a read-only, JSON-safe copy of job state.
type JobSnapshot struct {
	ID          string                  `json:"job_id"`
	Status      JobStatus               `json:"status"`
	Phase       string                  `json:"phase"`
	Filename    string                  `json:"filename"`
	Format      export.Format           `json:"format"`
	Progress    Progress                `json:"progress"`
	Diagnostics []transcript.Diagnostic `json:"diagnostics"`
	OutputName  string                  `json:"output_name,omitempty"`
	ContentHash string                  `json:"content_hash,omitempty"`
	CreatedAt   time.Time               `json:"created_at"`
	UpdatedAt   time.Time               `json:"updated_at"`
}

// Snapshot returns a JSON-safe copy of the job state.
func (j *Job) Snapshot() JobSnapshot {
	j.mu.Lock()
	defer j.mu.Unlock()
	errs := append([]string{}, j.Progress.Errors...)
	diags := append([]transcript.Diagnostic{}, j.diagnostics...)
	return JobSnapshot{
		ID:       j.ID,
		Status:   j.Status,
		Phase:    j.Phase,
		Filename: j.Filename,
		Format:   j.Format,
		Progress: Progress{
			Records:        j.Progress.Records,
			FallbackLines:  j.Progress.FallbackLines,
			UnmatchedLines: j.Progress.UnmatchedLines,
			Errors:         errs,
		},
		Diagnostics: diags,
		OutputName:  j.OutputName,
		ContentHash: j.ContentHash,
		CreatedAt:   j.CreatedAt,
		UpdatedAt:   j.UpdatedAt,
	}
}

// ContentHashHex computes SHA-256 of content and returns hex string.
func ContentHashHex(data []byte) string {
	h := sha256.Sum256(data)
	return fmt.Sprintf("%x", h[:])
}
