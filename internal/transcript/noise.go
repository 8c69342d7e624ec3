package transcript

import (
	"fmt"
	"regexp"
)

// NoisePattern is a single boilerplate pattern removed before segmentation.
// Literal patterns are matched verbatim; the rest are RE2 expressions.
type NoisePattern struct {
	Expr    string
	Literal bool
}

// Header, footer and certification text printed on every page of the
// transcript.
var defaultNoisePatterns = []NoisePattern{
	{Expr: `This electronic transcript is a certified, authentic University of Tasmania document when viewed within\s*the My eQuals portal and is valid at the time of issue ?\.\n?`},
	{Expr: `The University of Tasmania cannot verify this document ?'s authenticity in printed format\.`},
	{Expr: `Page \d+ of \d+`},
	{Expr: "UNIVERSITY OF TASMANIA", Literal: true},
	{Expr: "Academic Transcript", Literal: true},
	{Expr: `As At ?: \d{2}/\d{2}/\d{4}`},
	{Expr: `Student: +\d{6} +[\w ]+ Date of Birth: \d{2}/\d{2}/\d{4}`},
	{Expr: "Credit Points Grade Mark", Literal: true},
}

// DefaultNoisePatterns returns the built-in boilerplate patterns in order.
func DefaultNoisePatterns() []NoisePattern {
	return append([]NoisePattern(nil), defaultNoisePatterns...)
}

// maxNoisePasses bounds the repeat-until-stable loop in Apply.
const maxNoisePasses = 8

// NoiseFilter deletes boilerplate from the joined document text.
type NoiseFilter struct {
	patterns []*regexp.Regexp
}

// NewNoiseFilter compiles patterns in order.
func NewNoiseFilter(patterns []NoisePattern) (*NoiseFilter, error) {
	f := &NoiseFilter{patterns: make([]*regexp.Regexp, 0, len(patterns))}
	for i, p := range patterns {
		expr := p.Expr
		if p.Literal {
			expr = regexp.QuoteMeta(expr)
		}
		re, err := regexp.Compile(expr)
		if err != nil {
			return nil, fmt.Errorf("noise pattern %d %q: %w", i, p.Expr, err)
		}
		f.patterns = append(f.patterns, re)
	}
	return f, nil
}

// MustNoiseFilter is NewNoiseFilter for patterns known to compile.
func MustNoiseFilter(patterns []NoisePattern) *NoiseFilter {
	f, err := NewNoiseFilter(patterns)
	if err != nil {
		panic(err)
	}
	return f
}

// Apply removes every match of every pattern, patterns taken in order.
// Deleting one match can splice together text that matches again, so the
// ordered pass repeats until the text stops changing.
func (f *NoiseFilter) Apply(text string) string {
	for i := 0; i < maxNoisePasses; i++ {
		next := text
		for _, re := range f.patterns {
			next = re.ReplaceAllLiteralString(next, "")
		}
		if next == text {
			break
		}
		text = next
	}
	return text
}

// Len returns the number of compiled patterns.
func (f *NoiseFilter) Len() int {
	return len(f.patterns)
}
