// Package transcript turns the extracted text of an academic transcript into
// unit records.
//
// The text is cleaned of page boilerplate, split into trimmed lines and
// walked as nested blocks:
//
//	<year>    <degree>
//	<semester label>
//	<grade> [<mark>] <unit name> <credit points> <unit code>
//	...
//
// Each unit line becomes one UnitRecord carrying the year, degree and
// semester of the blocks around it. Lines that cannot be fully parsed still
// produce a record, together with a Diagnostic.
package transcript

import (
	"log/slog"
	"strings"
)

// Result is the outcome of parsing one document.
type Result struct {
	Records     []UnitRecord `json:"records"`
	Diagnostics []Diagnostic `json:"diagnostics"`
}

// Count returns how many diagnostics of the given kind were produced.
func (r *Result) Count(kind DiagnosticKind) int {
	n := 0
	for _, d := range r.Diagnostics {
		if d.Kind == kind {
			n++
		}
	}
	return n
}

// Parser is safe for concurrent use; all parse state is local to a call.
type Parser struct {
	noise *NoiseFilter
	log   *slog.Logger
}

// NewParser builds a parser. A nil filter uses DefaultNoisePatterns and a nil
// logger uses slog.Default().
func NewParser(noise *NoiseFilter, log *slog.Logger) *Parser {
	if noise == nil {
		noise = MustNoiseFilter(defaultNoisePatterns)
	}
	if log == nil {
		log = slog.Default()
	}
	return &Parser{noise: noise, log: log}
}

// ParsePages joins per-page text in order, with no separator, and parses it.
func (p *Parser) ParsePages(pages []string) *Result {
	return p.Parse(strings.Join(pages, ""))
}

// Parse strips noise from the document text and parses what remains.
func (p *Parser) Parse(text string) *Result {
	return p.ParseLines(splitLines(p.noise.Apply(text)))
}

// ParseLines parses lines that are already free of noise. Records come back
// in the order their lines appear.
func (p *Parser) ParseLines(lines []string) *Result {
	res := &Result{
		Records:     []UnitRecord{},
		Diagnostics: []Diagnostic{},
	}
	// Blank lines are what noise removal leaves behind at page breaks; they
	// must not end a semester block.
	trimmed := make([]string, 0, len(lines))
	for _, l := range lines {
		if l = strings.TrimSpace(l); l != "" {
			trimmed = append(trimmed, l)
		}
	}

	for _, yd := range splitYearDegreeBlocks(trimmed) {
		for _, sem := range splitSemesterBlocks(yd.lines) {
			bc := blockContext{Year: yd.year, Degree: yd.degree, Semester: sem.label}
			for _, unit := range sem.units {
				rec, diag := extractUnit(unit, bc)
				res.Records = append(res.Records, rec)
				if diag != nil {
					p.report(*diag)
					res.Diagnostics = append(res.Diagnostics, *diag)
				}
			}
		}
	}
	return res
}

func (p *Parser) report(d Diagnostic) {
	attrs := []any{
		"kind", d.Kind,
		"line", d.Line,
		"year", d.Year,
		"degree", d.Degree,
		"semester", d.Semester,
	}
	switch d.Kind {
	case DiagnosticUnmatched:
		p.log.Warn("unit line not matched, needs manual review", attrs...)
	default:
		p.log.Debug("unit line parsed by fallback", attrs...)
	}
}
