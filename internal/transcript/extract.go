package transcript

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
)

// DiagnosticKind classifies a unit line the primary pattern could not parse.
type DiagnosticKind string

const (
	// DiagnosticFallback: parsed by the unit-code fallback; mark and credit
	// points were dropped.
	DiagnosticFallback DiagnosticKind = "fallback"
	// DiagnosticUnmatched: no unit code found; the record carries only the
	// raw line and needs manual review.
	DiagnosticUnmatched DiagnosticKind = "unmatched"
)

// Diagnostic describes a unit line that was only partially recovered.
type Diagnostic struct {
	Kind     DiagnosticKind `json:"kind"`
	Line     string         `json:"line"`
	Year     string         `json:"year"`
	Degree   string         `json:"degree"`
	Semester string         `json:"semester"`
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s: %q (%s %s, %s)", d.Kind, d.Line, d.Year, d.Degree, d.Semester)
}

// <grade> [<mark>] <unit name> <credit points> <unit code>
//
// Whitespace runs are accepted between columns and the gap before the unit
// code may be empty, which is what a repaired line looks like.
var unitLineRe = regexp.MustCompile(`^([A-Z]{2})\s+(?:(\d{2})\s+)?(.+)\s+(\d+(?:\.\d)?)\s*([A-Z]{3}\d{3})$`)

// ExtractUnit parses a single unit line. It always returns a record; the
// diagnostic is non-nil when the line needed the fallback or could not be
// parsed at all.
func ExtractUnit(line, year, degree, semester string) (UnitRecord, *Diagnostic) {
	return extractUnit(strings.TrimSpace(line), blockContext{Year: year, Degree: degree, Semester: semester})
}

func extractUnit(line string, bc blockContext) (UnitRecord, *Diagnostic) {
	rec := bc.record()

	if m := unitLineRe.FindStringSubmatch(line); m != nil {
		rec.Grade = strings.TrimSpace(m[1])
		rec.Mark = strings.TrimSpace(m[2])
		rec.UnitName = strings.TrimSpace(m[3])
		rec.CreditPoints = strings.TrimSpace(m[4])
		rec.UnitCode = strings.TrimSpace(m[5])
		return rec, nil
	}

	diag := &Diagnostic{
		Line:     line,
		Year:     bc.Year,
		Degree:   bc.Degree,
		Semester: bc.Semester,
	}

	loc := trailingCodeRe.FindStringIndex(line)
	if loc == nil {
		rec.UnitName = line
		diag.Kind = DiagnosticUnmatched
		return rec, diag
	}

	rec.UnitCode = line[loc[0]:]
	rec.Grade, rec.UnitName = cutSpace(strings.TrimSpace(line[:loc[0]]))
	diag.Kind = DiagnosticFallback
	return rec, diag
}

// cutSpace splits s at its first whitespace run.
func cutSpace(s string) (before, after string) {
	i := strings.IndexFunc(s, unicode.IsSpace)
	if i < 0 {
		return s, ""
	}
	return s[:i], strings.TrimSpace(s[i:])
}
