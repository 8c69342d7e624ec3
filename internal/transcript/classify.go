package transcript

import (
	"regexp"
	"strings"
)

// Grade vocabulary printed at the start of every unit line.
var (
	passFailGrades  = []string{"HD", "DN", "CR", "PP", "UP", "TP"}
	specialGrades   = []string{"XE"}
	withdrawnGrades = []string{"WW", "WN"}
)

// Teaching-period words that open a semester block.
var semesterIndicators = []string{
	"Semester",
	"Winter",
	"Spring",
	"Summer",
}

var allGrades = func() []string {
	out := make([]string, 0, len(passFailGrades)+len(specialGrades)+len(withdrawnGrades))
	out = append(out, passFailGrades...)
	out = append(out, specialGrades...)
	return append(out, withdrawnGrades...)
}()

// GradeCodes returns the full grade vocabulary.
func GradeCodes() []string {
	return append([]string(nil), allGrades...)
}

var (
	yearStartRe    = regexp.MustCompile(`^2\d{3}(?:\s|$)`)
	trailingCodeRe = regexp.MustCompile(`[A-Z]{3}\d{3}$`)
	bareCodeRe     = regexp.MustCompile(`^[A-Z]{3}\d{3}$`)
)

// StartsSemesterBlock reports whether line opens a semester block.
func StartsSemesterBlock(line string) bool {
	return hasAnyPrefix(line, semesterIndicators)
}

// StartsYearDegreeBlock reports whether line opens a year/degree block.
func StartsYearDegreeBlock(line string) bool {
	return yearStartRe.MatchString(line)
}

// IsUnitLine reports whether line starts with a grade code.
func IsUnitLine(line string) bool {
	return hasAnyPrefix(line, allGrades)
}

// IsUnitLineBroken reports whether a unit line is missing its trailing unit
// code, meaning the extractor split it across two physical lines.
func IsUnitLineBroken(line string) bool {
	return !trailingCodeRe.MatchString(line)
}

// isBareUnitCode reports whether line is nothing but a unit code, the shape
// of a continuation left behind when a unit line wraps.
func isBareUnitCode(line string) bool {
	return bareCodeRe.MatchString(line)
}

func hasAnyPrefix(s string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}
