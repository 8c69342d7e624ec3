package transcript

import (
	"bytes"
	"log/slog"
	"strings"
	"sync"
	"testing"
)

func newTestParser(buf *bytes.Buffer) *Parser {
	log := slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return NewParser(nil, log)
}

func TestParseLines_SingleRecordExample(t *testing.T) {
	lines := []string{
		"2019    Bachelor of Science",
		"Semester 1",
		"HD 85 Algorithms 12.5 COM101",
		"Semester 2",
		"2020    Bachelor of Science",
	}
	res := NewParser(nil, nil).ParseLines(lines)
	if len(res.Records) != 1 {
		t.Fatalf("expected 1 record, got %d: %+v", len(res.Records), res.Records)
	}
	want := UnitRecord{
		UnitCode:     "COM101",
		UnitName:     "Algorithms",
		Mark:         "85",
		Grade:        "HD",
		CreditPoints: "12.5",
		Degree:       "Bachelor of Science",
		Semester:     "Semester 1",
		Year:         "2019",
	}
	if res.Records[0] != want {
		t.Errorf("expected %+v, got %+v", want, res.Records[0])
	}
	if len(res.Diagnostics) != 0 {
		t.Errorf("expected no diagnostics, got %v", res.Diagnostics)
	}
}

func TestParseLines_DoesNotMutateInput(t *testing.T) {
	lines := []string{"  2019    Bachelor of Science  ", " Semester 1 ", " HD 85 Algorithms 12.5 COM101 "}
	orig := append([]string(nil), lines...)
	res := NewParser(nil, nil).ParseLines(lines)
	if len(res.Records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(res.Records))
	}
	for i := range lines {
		if lines[i] != orig[i] {
			t.Errorf("line %d modified: %q -> %q", i, orig[i], lines[i])
		}
	}
}

func TestParse_NoUnitLines(t *testing.T) {
	inputs := []string{
		"",
		"UNIVERSITY OF TASMANIA\nAcademic Transcript\n",
		"2019    Bachelor of Science\nSemester 1\n",
		"2019    Bachelor of Science\nNo semesters here\n2020    Bachelor of Arts\n",
		"Semester 1\nHD 85 Algorithms 12.5 COM101\n",
	}
	p := NewParser(nil, nil)
	for _, in := range inputs {
		res := p.Parse(in)
		if len(res.Records) != 0 {
			t.Errorf("input %q: expected 0 records, got %d", in, len(res.Records))
		}
		if res.Records == nil {
			t.Errorf("input %q: expected non-nil records slice", in)
		}
	}
}

const samplePage1 = `UNIVERSITY OF TASMANIA
Academic Transcript
As At : 11/12/2020
Student:    123456    Jane Citizen Date of Birth: 01/02/2000
Credit Points Grade Mark
2019    Bachelor of Science
Semester 1
HD 85 Algorithms 12.5 COM101
DN 75 Discrete Mathematics 12.5
MAT102
Page 1 of 5
CR 65 Statistics 12.5 MAT103
Semester 2
WW Linear Algebra 12.5 MAT201
XE Exchange Unit 12.125 EXC100
`

const samplePage2 = `UNIVERSITY OF TASMANIA
Academic Transcript
2020    Bachelor of Science
Summer School
PP 52 Physics 1A 12.5 KYA101
UP Unit with no code at all
Semester 1
TP 62 Thesis Preparation 25 THS400
Page 2 of 5
`

func TestParsePages_FullDocument(t *testing.T) {
	var logs bytes.Buffer
	res := newTestParser(&logs).ParsePages([]string{samplePage1, samplePage2})

	want := []UnitRecord{
		{UnitCode: "COM101", UnitName: "Algorithms", Mark: "85", Grade: "HD", CreditPoints: "12.5", Degree: "Bachelor of Science", Semester: "Semester 1", Year: "2019"},
		{UnitCode: "MAT102", UnitName: "Discrete Mathematics", Mark: "75", Grade: "DN", CreditPoints: "12.5", Degree: "Bachelor of Science", Semester: "Semester 1", Year: "2019"},
		{UnitCode: "MAT103", UnitName: "Statistics", Mark: "65", Grade: "CR", CreditPoints: "12.5", Degree: "Bachelor of Science", Semester: "Semester 1", Year: "2019"},
		{UnitCode: "MAT201", UnitName: "Linear Algebra", Grade: "WW", CreditPoints: "12.5", Degree: "Bachelor of Science", Semester: "Semester 2", Year: "2019"},
		{UnitCode: "EXC100", UnitName: "Exchange Unit 12.125", Grade: "XE", Degree: "Bachelor of Science", Semester: "Semester 2", Year: "2019"},
		{UnitCode: "KYA101", UnitName: "Physics 1A", Mark: "52", Grade: "PP", CreditPoints: "12.5", Degree: "Bachelor of Science", Semester: "Summer School", Year: "2020"},
		{UnitName: "UP Unit with no code at all", Degree: "Bachelor of Science", Semester: "Summer School", Year: "2020"},
		{UnitCode: "THS400", UnitName: "Thesis Preparation", Mark: "62", Grade: "TP", CreditPoints: "25", Degree: "Bachelor of Science", Semester: "Semester 1", Year: "2020"},
	}

	if len(res.Records) != len(want) {
		t.Fatalf("expected %d records, got %d: %+v", len(want), len(res.Records), res.Records)
	}
	for i := range want {
		if res.Records[i] != want[i] {
			t.Errorf("record %d:\nexpected %+v\ngot      %+v", i, want[i], res.Records[i])
		}
	}

	if res.Count(DiagnosticFallback) != 1 {
		t.Errorf("expected 1 fallback diagnostic, got %d", res.Count(DiagnosticFallback))
	}
	if res.Count(DiagnosticUnmatched) != 1 {
		t.Errorf("expected 1 unmatched diagnostic, got %d", res.Count(DiagnosticUnmatched))
	}
	if !strings.Contains(logs.String(), "needs manual review") {
		t.Errorf("expected unmatched line to be logged, got %q", logs.String())
	}
}

func TestParse_RepairedLineMatchesUnsplit(t *testing.T) {
	// The last five codes begin with grade letters.
	codes := []string{"MAT102", "CRM201", "HDS101", "PPE300", "DNA110", "XEN100"}
	p := NewParser(nil, nil)
	for _, code := range codes {
		t.Run(code, func(t *testing.T) {
			head := "2019    Bachelor of Science\nSemester 1\n"
			split := p.Parse(head + "DN 75 Some Unit 12.5\n" + code + "\n")
			whole := p.Parse(head + "DN 75 Some Unit 12.5 " + code + "\n")

			if len(split.Records) != 1 || len(whole.Records) != 1 {
				t.Fatalf("expected one record each, got %d and %d", len(split.Records), len(whole.Records))
			}
			if split.Records[0] != whole.Records[0] {
				t.Errorf("repaired record %+v differs from unsplit %+v", split.Records[0], whole.Records[0])
			}
			if split.Records[0].UnitCode != code || split.Records[0].Grade != "DN" {
				t.Errorf("expected %s graded DN, got %+v", code, split.Records[0])
			}
			if len(split.Diagnostics) != 0 {
				t.Errorf("expected no diagnostics, got %+v", split.Diagnostics)
			}
		})
	}
}

func TestParse_BrokenLastLineIsDegraded(t *testing.T) {
	res := NewParser(nil, nil).Parse("2019    Bachelor of Science\nSemester 1\nHD 85 Algorithms 12.5")
	if len(res.Records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(res.Records))
	}
	rec := res.Records[0]
	if rec.UnitName != "HD 85 Algorithms 12.5" || rec.UnitCode != "" || rec.Grade != "" {
		t.Errorf("expected degraded record, got %+v", rec)
	}
	if rec.Year != "2019" || rec.Degree != "Bachelor of Science" || rec.Semester != "Semester 1" {
		t.Errorf("expected block context to be kept, got %+v", rec)
	}
	if res.Count(DiagnosticUnmatched) != 1 {
		t.Errorf("expected 1 unmatched diagnostic, got %d", res.Count(DiagnosticUnmatched))
	}
}

func TestParse_RecordsStayInTheirBlocks(t *testing.T) {
	text := strings.Join([]string{
		"2018    Diploma of Music",
		"Semester 1",
		"HD 90 Composition 12.5 MUS101",
		"Semester 2",
		"DN 76 Performance 12.5 MUS102",
		"2019    Bachelor of Science",
		"Semester 1",
		"CR 66 Chemistry 12.5 CHM101",
		"Winter School",
		"PP 51 Field Ecology 12.5 ECO150",
	}, "\n")

	res := NewParser(nil, nil).Parse(text)
	if len(res.Records) != 4 {
		t.Fatalf("expected 4 records, got %d", len(res.Records))
	}
	for _, r := range res.Records[:2] {
		if r.Year != "2018" || r.Degree != "Diploma of Music" {
			t.Errorf("record %s attributed to %s/%s", r.UnitCode, r.Year, r.Degree)
		}
	}
	for _, r := range res.Records[2:] {
		if r.Year != "2019" || r.Degree != "Bachelor of Science" {
			t.Errorf("record %s attributed to %s/%s", r.UnitCode, r.Year, r.Degree)
		}
	}
	wantSemesters := []string{"Semester 1", "Semester 2", "Semester 1", "Winter School"}
	for i, s := range wantSemesters {
		if res.Records[i].Semester != s {
			t.Errorf("record %d: expected semester %q, got %q", i, s, res.Records[i].Semester)
		}
	}
}

func TestParser_ConcurrentUse(t *testing.T) {
	p := NewParser(nil, nil)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res := p.ParsePages([]string{samplePage1, samplePage2})
			if len(res.Records) != 8 {
				t.Errorf("expected 8 records, got %d", len(res.Records))
			}
		}()
	}
	wg.Wait()
}
