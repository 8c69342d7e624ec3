package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/dgallion1/transcriptr/internal/export"
	"github.com/dgallion1/transcriptr/internal/parser"
	"github.com/dgallion1/transcriptr/internal/storage"
)

// formOverhead is allowed on top of MaxUploadBytes for multipart framing.
const formOverhead = 1024 * 1024

// upload is a validated transcript file from a multipart form.
type upload struct {
	filename string
	data     []byte
	format   export.Format
}

// uploadError carries the status code a bad upload should be answered with.
type uploadError struct {
	msg  string
	code int
}

func (e *uploadError) Error() string { return e.msg }

func badUpload(code int, format string, args ...any) error {
	return &uploadError{msg: fmt.Sprintf(format, args...), code: code}
}

// uploadStatus maps an error from readUpload to an HTTP status.
func uploadStatus(err error) int {
	var ue *uploadError
	if errors.As(err, &ue) {
		return ue.code
	}
	return http.StatusInternalServerError
}

// readUpload reads the "file" field and the optional "format" field.
func (s *Server) readUpload(w http.ResponseWriter, r *http.Request) (*upload, error) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+formOverhead)

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, badUpload(http.StatusRequestEntityTooLarge, "file exceeds max size (%d bytes)", s.cfg.MaxUploadBytes)
		}
		return nil, badUpload(http.StatusBadRequest, "invalid multipart form: %s", err)
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if errors.Is(err, http.ErrMissingFile) {
		return nil, badUpload(http.StatusBadRequest, "no file part")
	}
	if err != nil {
		return nil, badUpload(http.StatusBadRequest, "file is required: %s", err)
	}
	defer file.Close()

	if header.Filename == "" {
		return nil, badUpload(http.StatusBadRequest, "no selected file")
	}
	filename := sanitizeFilename(header.Filename)
	if !parser.IsSupportedExtension(filename) {
		return nil, badUpload(http.StatusBadRequest, "unsupported file type: %s", filepath.Ext(filename))
	}

	data, err := io.ReadAll(io.LimitReader(file, s.cfg.MaxUploadBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if int64(len(data)) > s.cfg.MaxUploadBytes {
		return nil, badUpload(http.StatusRequestEntityTooLarge, "file exceeds max size (%d bytes)", s.cfg.MaxUploadBytes)
	}
	if len(data) == 0 {
		return nil, badUpload(http.StatusBadRequest, "file is empty")
	}

	format := s.cfg.ExportFormat
	if v := r.FormValue("format"); v != "" {
		f, err := export.ParseFormat(v)
		if err != nil {
			return nil, badUpload(http.StatusBadRequest, "%s", err)
		}
		format = f
	}

	return &upload{filename: filename, data: data, format: format}, nil
}

// save stores the upload under a timestamped name and returns that name.
func (s *Server) save(u *upload) (string, error) {
	ext := strings.ToLower(filepath.Ext(u.filename))
	name, err := s.store.SaveUpload(storage.UploadName(time.Now(), ext), u.data)
	if err != nil {
		return "", fmt.Errorf("save upload: %w", err)
	}
	return name, nil
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func sanitizeFilename(name string) string {
	// Browsers on Windows may send the full client path.
	name = strings.ReplaceAll(name, "\\", "/")
	name = filepath.Base(name)
	name = strings.ReplaceAll(name, "..", "_")
	if name == "" || name == "." || name == "/" {
		name = "unnamed"
	}
	return name
}
