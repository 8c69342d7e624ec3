package parser

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"golang.org/x/text/unicode/norm"
)

var (
	// ErrUnsupportedFormat is returned by ForFile for unknown extensions.
	ErrUnsupportedFormat = errors.New("unsupported file format")
	// ErrNoText means the document was readable but yielded no text.
	ErrNoText = errors.New("document contains no extractable text")
)

// Document is the per-page text of an uploaded transcript, in reading order.
// Title comes from the HTML <title> when there is one, otherwise the
// filename without its extension.
type Document struct {
	Title string
	Pages []string
}

// NormalizedPages returns the pages normalized to NFC so that accented names
// compare equal however the source encoded them.
func (d *Document) NormalizedPages() []string {
	out := make([]string, len(d.Pages))
	for i, p := range d.Pages {
		out[i] = norm.NFC.String(p)
	}
	return out
}

// Parser converts raw document bytes into page text.
type Parser interface {
	Parse(r io.Reader, filename string) (*Document, error)
}

// SupportedExtensions lists file extensions this service can handle.
var SupportedExtensions = map[string]bool{
	".pdf":  true,
	".txt":  true,
	".html": true,
	".htm":  true,
	".docx": true,
}

// Options tune the parsers ForFile returns.
type Options struct {
	PDFFallbackPdftotext bool
}

// ForFile returns the appropriate parser for a filename.
func ForFile(filename string, opts Options) (Parser, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".pdf":
		return &PDFParser{FallbackPdftotext: opts.PDFFallbackPdftotext}, nil
	case ".txt":
		return &TextParser{}, nil
	case ".html", ".htm":
		return &HTMLParser{}, nil
	case ".docx":
		return &DOCXParser{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
}

// IsSupportedExtension checks if a file extension is supported.
func IsSupportedExtension(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return SupportedExtensions[ext]
}

func titleFromFilename(filename string) string {
	return strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
}
