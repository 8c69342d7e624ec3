package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgallion1/transcriptr/internal/export"
	"github.com/dgallion1/transcriptr/internal/parser"
	"github.com/dgallion1/transcriptr/internal/storage"
	"github.com/dgallion1/transcriptr/internal/transcript"
)

// Conversion is the outcome of turning one uploaded transcript into records.
type Conversion struct {
	Title       string                  `json:"title"`
	Records     []transcript.UnitRecord `json:"records"`
	Diagnostics []transcript.Diagnostic `json:"diagnostics"`
	Pages       int                     `json:"pages"`
	OutputName  string                  `json:"output_name,omitempty"`
	ContentHash string                  `json:"content_hash"`
}

// Count returns how many diagnostics of the given kind the conversion produced.
func (c *Conversion) Count(kind transcript.DiagnosticKind) int {
	n := 0
	for _, d := range c.Diagnostics {
		if d.Kind == kind {
			n++
		}
	}
	return n
}

// phaseFunc is told when a conversion moves to a new phase.
type phaseFunc func(status JobStatus, phase string)

// Converter runs document parsing, record extraction and export.
type Converter struct {
	transcripts *transcript.Parser
	store       *storage.Store
	stats       *Stats
	log         *slog.Logger
	parserOpts  parser.Options
}

// NewConverter wires the stages together. store may be nil when only Extract
// is used; stats may be nil to skip recording.
func NewConverter(transcripts *transcript.Parser, store *storage.Store, stats *Stats, opts parser.Options, log *slog.Logger) *Converter {
	if transcripts == nil {
		transcripts = transcript.NewParser(nil, log)
	}
	if log == nil {
		log = slog.Default()
	}
	return &Converter{
		transcripts: transcripts,
		store:       store,
		stats:       stats,
		log:         log,
		parserOpts:  opts,
	}
}

// Stats returns the converter's statistics, or nil.
func (c *Converter) Stats() *Stats {
	return c.stats
}

// Extract parses a document and returns its unit records without writing
// any export.
func (c *Converter) Extract(ctx context.Context, filename string, data []byte) (*Conversion, error) {
	start := time.Now()
	conv, err := c.extract(ctx, filename, data, nil)
	c.observe(start, conv, err)
	return conv, err
}

// Convert parses a document and writes its records to a new export named
// after filename with the format's extension.
func (c *Converter) Convert(ctx context.Context, filename string, data []byte, format export.Format) (*Conversion, error) {
	start := time.Now()
	conv, err := c.convert(ctx, filename, data, format, nil)
	c.observe(start, conv, err)
	return conv, err
}

func (c *Converter) convert(ctx context.Context, filename string, data []byte, format export.Format, onPhase phaseFunc) (*Conversion, error) {
	if c.store == nil {
		return nil, fmt.Errorf("converter has no output storage")
	}
	if _, err := export.ParseFormat(string(format)); err != nil {
		return nil, err
	}

	conv, err := c.extract(ctx, filename, data, onPhase)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	notify(onPhase, StatusExporting, "exporting")
	name, err := c.export(filename, format, conv.Records)
	if err != nil {
		return nil, err
	}
	conv.OutputName = name
	return conv, nil
}

func (c *Converter) extract(ctx context.Context, filename string, data []byte, onPhase phaseFunc) (*Conversion, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	notify(onPhase, StatusParsing, "parsing")
	p, err := parser.ForFile(filename, c.parserOpts)
	if err != nil {
		return nil, err
	}
	doc, err := p.Parse(bytes.NewReader(data), filename)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", filename, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	notify(onPhase, StatusExtracting, "extracting")
	pages := doc.NormalizedPages()
	res := c.transcripts.ParsePages(pages)

	c.log.Info("extracted transcript",
		"filename", filename,
		"title", doc.Title,
		"pages", len(pages),
		"records", len(res.Records),
		"fallback", res.Count(transcript.DiagnosticFallback),
		"unmatched", res.Count(transcript.DiagnosticUnmatched))

	return &Conversion{
		Title:       doc.Title,
		Records:     res.Records,
		Diagnostics: res.Diagnostics,
		Pages:       len(pages),
		ContentHash: ContentHashHex(data),
	}, nil
}

func (c *Converter) export(filename string, format export.Format, records []transcript.UnitRecord) (string, error) {
	f, name, err := c.store.CreateOutput(storage.ReplaceExt(filename, format.Extension()))
	if err != nil {
		return "", fmt.Errorf("create output: %w", err)
	}
	if err := export.Write(f, format, records); err != nil {
		f.Close()
		c.removeOutput(name)
		return "", fmt.Errorf("write %s: %w", format, err)
	}
	if err := f.Close(); err != nil {
		c.removeOutput(name)
		return "", fmt.Errorf("close output: %w", err)
	}
	return name, nil
}

func (c *Converter) removeOutput(name string) {
	if err := c.store.RemoveOutput(name); err != nil {
		c.log.Warn("failed to remove partial output", "output", name, "error", err)
	}
}

func (c *Converter) observe(start time.Time, conv *Conversion, err error) {
	if c.stats == nil {
		return
	}
	if err != nil {
		c.stats.RecordFailure()
		return
	}
	c.stats.RecordConversion(time.Since(start).Milliseconds(),
		len(conv.Records),
		conv.Count(transcript.DiagnosticFallback),
		conv.Count(transcript.DiagnosticUnmatched))
}

func notify(onPhase phaseFunc, status JobStatus, phase string) {
	if onPhase != nil {
		onPhase(status, phase)
	}
}
