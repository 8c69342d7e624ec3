// Package export writes unit records as tabular files. Columns always follow
// transcript.Header and rows keep the order they were parsed in.
package export

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/dgallion1/transcriptr/internal/transcript"
)

// Format is an export file type.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// ErrUnknownFormat is returned by ParseFormat.
var ErrUnknownFormat = errors.New("unknown export format")

// ParseFormat accepts "csv" or "xlsx" in any case, with or without a dot.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.TrimPrefix(strings.ToLower(strings.TrimSpace(s)), ".")) {
	case FormatCSV:
		return FormatCSV, nil
	case FormatXLSX:
		return FormatXLSX, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

// Extension returns the file extension including the dot.
func (f Format) Extension() string {
	return "." + string(f)
}

// ContentType returns the MIME type served for the format.
func (f Format) ContentType() string {
	switch f {
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	default:
		return "text/csv; charset=utf-8"
	}
}

// Write encodes records in the given format.
func Write(w io.Writer, f Format, records []transcript.UnitRecord) error {
	switch f {
	case FormatCSV:
		return WriteCSV(w, records)
	case FormatXLSX:
		return WriteXLSX(w, records)
	}
	return fmt.Errorf("%w: %q", ErrUnknownFormat, string(f))
}

// Read decodes records written by Write in the given format.
func Read(r io.Reader, f Format) ([]transcript.UnitRecord, error) {
	switch f {
	case FormatCSV:
		return ReadCSV(r)
	case FormatXLSX:
		return ReadXLSX(r)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, string(f))
}
