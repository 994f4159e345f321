package report

import (
	"testing"
)

func TestParseFindings_PlainArray(t *testing.T) {
	content := `[
		{"severity":"HIGH","category":"SQL Injection","title":"Unsanitized query","description":"d","impact":"i","remediation":"r","path":"app/db.py","startLine":12,"endLine":14},
		{"severity":"weird","title":"Odd label"}
	]`

	findings, err := ParseFindings(content)
	if err != nil {
		t.Fatalf("ParseFindings: %v", err)
	}
	if len(findings) != 2 {
		t.Fatalf("got %d findings, want 2", len(findings))
	}

	f := findings[0]
	if f.Severity != SeverityHigh {
		t.Errorf("Severity = %q, want high", f.Severity)
	}
	if len(f.Paths) != 1 || f.Paths[0] != "app/db.py" {
		t.Errorf("Paths = %v, want [app/db.py]", f.Paths)
	}
	if f.Lines.Start != 12 || f.Lines.End != 14 {
		t.Errorf("Lines = %+v, want 12-14", f.Lines)
	}

	// Unknown severity labels default to info.
	if findings[1].Severity != SeverityInfo {
		t.Errorf("unknown severity = %q, want info", findings[1].Severity)
	}
}

func TestParseFindings_StripsCodeFences(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"json fence", "```json\n[{\"title\":\"t\"}]\n```"},
		{"bare fence", "```\n[{\"title\":\"t\"}]\n```"},
		{"whitespace around", "  \n```json\n[{\"title\":\"t\"}]\n```\n  "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			findings, err := ParseFindings(tt.content)
			if err != nil {
				t.Fatalf("ParseFindings: %v", err)
			}
			if len(findings) != 1 || findings[0].Title != "t" {
				t.Errorf("findings = %+v", findings)
			}
		})
	}
}

func TestParseFindings_EmptyArray(t *testing.T) {
	findings, err := ParseFindings("[]")
	if err != nil {
		t.Fatalf("ParseFindings: %v", err)
	}
	if len(findings) != 0 {
		t.Errorf("got %d findings, want 0", len(findings))
	}
}

func TestParseFindings_Unparseable(t *testing.T) {
	inputs := []string{
		"The code looks mostly fine, but I noticed...",
		`{"title":"object not array"}`,
		"",
	}
	for _, content := range inputs {
		if _, err := ParseFindings(content); err == nil {
			t.Errorf("ParseFindings(%q) should fail", content)
		}
	}
}

func TestParseFindings_SwappedLineBounds(t *testing.T) {
	findings, err := ParseFindings(`[{"title":"t","startLine":20,"endLine":5}]`)
	if err != nil {
		t.Fatal(err)
	}
	if findings[0].Lines.End != 20 {
		t.Errorf("End = %d, want clamped to Start", findings[0].Lines.End)
	}
}

func TestNormalizeSeverity(t *testing.T) {
	tests := []struct {
		raw  string
		want Severity
	}{
		{"Critical", SeverityCritical},
		{"HIGH", SeverityHigh},
		{"moderate", SeverityMedium},
		{" low ", SeverityLow},
		{"info", SeverityInfo},
		{"", SeverityInfo},
		{"p0", SeverityInfo},
	}
	for _, tt := range tests {
		if got := NormalizeSeverity(tt.raw); got != tt.want {
			t.Errorf("NormalizeSeverity(%q) = %q, want %q", tt.raw, got, tt.want)
		}
	}
}
