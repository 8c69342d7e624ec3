// Package storage keeps uploaded transcripts and generated exports on the
// local filesystem.
package storage

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"
)

var (
	ErrNotFound    = errors.New("file not found")
	ErrInvalidName = errors.New("invalid file name")
)

// maxUniqueAttempts bounds the numeric suffixes tried by the create helpers.
const maxUniqueAttempts = 1000

// Store owns an upload directory and an output directory.
type Store struct {
	uploadDir string
	outputDir string
}

// New creates both directories if needed.
func New(uploadDir, outputDir string) (*Store, error) {
	for _, dir := range []string{uploadDir, outputDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create storage directory %s: %w", dir, err)
		}
	}
	return &Store{uploadDir: uploadDir, outputDir: outputDir}, nil
}

// UploadDir returns the directory uploads are written to.
func (s *Store) UploadDir() string { return s.uploadDir }

// OutputDir returns the directory exports are written to.
func (s *Store) OutputDir() string { return s.outputDir }

// UploadName is the timestamped name an upload is stored under, e.g.
// upload_2020-12-11_1530.pdf.
func UploadName(now time.Time, ext string) string {
	return "upload_" + now.Format("2006-01-02_1504") + ext
}

// ReplaceExt swaps the extension of name.
func ReplaceExt(name, ext string) string {
	return strings.TrimSuffix(name, filepath.Ext(name)) + ext
}

// SaveUpload writes data under name, adding a numeric suffix if the name is
// taken. It returns the name actually used.
func (s *Store) SaveUpload(name string, data []byte) (string, error) {
	f, stored, err := createUnique(s.uploadDir, name)
	if err != nil {
		return "", err
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(filepath.Join(s.uploadDir, stored))
		return "", fmt.Errorf("write upload: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close upload: %w", err)
	}
	return stored, nil
}

// CreateOutput creates a new export file, adding a numeric suffix if the name
// is taken. The caller closes the file.
func (s *Store) CreateOutput(name string) (*os.File, string, error) {
	return createUnique(s.outputDir, name)
}

// RemoveOutput deletes an export, used to clean up after a failed write.
func (s *Store) RemoveOutput(name string) error {
	if err := checkName(name); err != nil {
		return err
	}
	return os.Remove(filepath.Join(s.outputDir, name))
}

// OpenOutput opens an existing export for reading.
func (s *Store) OpenOutput(name string) (*os.File, fs.FileInfo, error) {
	if err := checkName(name); err != nil {
		return nil, nil, err
	}
	f, err := os.Open(filepath.Join(s.outputDir, name))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil, ErrNotFound
	}
	if err != nil {
		return nil, nil, fmt.Errorf("open output: %w", err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, nil, fmt.Errorf("stat output: %w", err)
	}
	if info.IsDir() {
		f.Close()
		return nil, nil, ErrNotFound
	}
	return f, info, nil
}

// Uniquify returns name, or name with _1, _2, ... before the extension, whichever
// does not exist yet in dir.
func Uniquify(dir, name string) (string, error) {
	if err := checkName(name); err != nil {
		return "", err
	}
	for i := 0; i < maxUniqueAttempts; i++ {
		candidate := suffixed(name, i)
		if _, err := os.Stat(filepath.Join(dir, candidate)); errors.Is(err, fs.ErrNotExist) {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("no free name for %s after %d attempts", name, maxUniqueAttempts)
}

// createUnique is Uniquify with O_EXCL so two concurrent requests never get
// the same file.
func createUnique(dir, name string) (*os.File, string, error) {
	if err := checkName(name); err != nil {
		return nil, "", err
	}
	for i := 0; i < maxUniqueAttempts; i++ {
		candidate := suffixed(name, i)
		f, err := os.OpenFile(filepath.Join(dir, candidate), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if err == nil {
			return f, candidate, nil
		}
		if !errors.Is(err, fs.ErrExist) {
			return nil, "", fmt.Errorf("create %s: %w", candidate, err)
		}
	}
	return nil, "", fmt.Errorf("no free name for %s after %d attempts", name, maxUniqueAttempts)
}

func suffixed(name string, n int) string {
	if n == 0 {
		return name
	}
	ext := filepath.Ext(name)
	return fmt.Sprintf("%s_%d%s", strings.TrimSuffix(name, ext), n, ext)
}

// checkName rejects anything that is not a plain file name.
func checkName(name string) error {
	if name == "" || name == "." || name == ".." || filepath.Base(name) != name || strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}
