package transcript

import "testing"

func TestStartsSemesterBlock(t *testing.T) {
	tests := []struct {
		line string
		want bool
	}{
		{"Semester 1", true},
		{"Semester 2", true},
		{"Winter School", true},
		{"Spring School", true},
		{"Summer School", true},
		{"semester 1", false},
		{"Autumn", false},
		{"HD 85 Algorithms 12.5 COM101", false},
		{"2019    Bachelor of Science", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := StartsSemesterBlock(tt.line); got != tt.want {
			t.Errorf("StartsSemesterBlock(%q) = %v, want %v", tt.line, got, tt.want)
		}
	}
}

func TestStartsYearDegreeBlock(t *testing.T) {
	tests := []struct {
		line string
		want bool
	}{
		{"2019    Bachelor of Science", true},
		{"2020 Bachelor of Arts", true},
		{"2021", true},
		{"1999    Bachelor of Science", false},
		{"20190    Something", false},
		{"201", false},
		{"Semester 1", false},
		{"HD 85 Algorithms 12.5 COM101", false},
	}
	for _, tt := range tests {
		if got := StartsYearDegreeBlock(tt.line); got != tt.want {
			t.Errorf("StartsYearDegreeBlock(%q) = %v, want %v", tt.line, got, tt.want)
		}
	}
}

func TestIsUnitLine(t *testing.T) {
	for _, g := range GradeCodes() {
		line := g + " Some Unit 12.5 ABC123"
		if !IsUnitLine(line) {
			t.Errorf("IsUnitLine(%q) = false, want true", line)
		}
	}

	notUnits := []string{
		"NN 40 Failed Unit 12.5 ABC123",
		"Semester 1",
		"2019    Bachelor of Science",
		"hd 85 Algorithms 12.5 COM101",
		"",
	}
	for _, line := range notUnits {
		if IsUnitLine(line) {
			t.Errorf("IsUnitLine(%q) = true, want false", line)
		}
	}
}

func TestGradeCodes_Vocabulary(t *testing.T) {
	want := []string{"HD", "DN", "CR", "PP", "UP", "TP", "XE", "WW", "WN"}
	got := GradeCodes()
	if len(got) != len(want) {
		t.Fatalf("expected %d grade codes, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("grade[%d]: expected %q, got %q", i, want[i], got[i])
		}
	}

	// Callers get a copy.
	got[0] = "ZZ"
	if GradeCodes()[0] != "HD" {
		t.Error("expected GradeCodes to return a copy")
	}
}

func TestIsUnitLineBroken(t *testing.T) {
	tests := []struct {
		line string
		want bool
	}{
		{"HD 85 Algorithms 12.5 COM101", false},
		{"WW Linear Algebra 12.5 MAT201", false},
		{"HD 85 Algorithms 12.5", true},
		{"HD 85 Algorithms 12.5 COM101 ", true},
		{"HD 85 Algorithms 12.5 com101", true},
		{"HD 85 Algorithms 12.5 CO101", true},
	}
	for _, tt := range tests {
		if got := IsUnitLineBroken(tt.line); got != tt.want {
			t.Errorf("IsUnitLineBroken(%q) = %v, want %v", tt.line, got, tt.want)
		}
	}
}
