package report

import (
	"errors"
	"reflect"
	"testing"

	"github.com/401-Nick/SecRev/internal/chunk"
	"github.com/401-Nick/SecRev/internal/scan"
)

func twoFileChunk() *chunk.Chunk {
	return &chunk.Chunk{
		Index: 0,
		Segments: []chunk.Segment{
			{
				File:      scan.FileDescriptor{RelPath: "app/main.py"},
				StartLine: 1,
				Content:   "a\nb\nc\n", // lines 1-4
			},
			{
				File:      scan.FileDescriptor{RelPath: "app/db.py"},
				StartLine: 1,
				Content:   "x\ny\n",
			},
		},
	}
}

func TestAggregator_AttributesByPath(t *testing.T) {
	a := NewAggregator("scripted", "test", "/src")
	a.AddResponse(twoFileChunk(), `[{"title":"t","path":"app/db.py"}]`)

	r := a.Result()
	f := r.Outcomes[0].Findings[0]
	if !reflect.DeepEqual(f.Paths, []string{"app/db.py"}) {
		t.Errorf("Paths = %v, want [app/db.py]", f.Paths)
	}
}

func TestAggregator_AttributesAbsoluteAndSuffixPaths(t *testing.T) {
	tests := []struct {
		name     string
		reported string
		want     string
	}{
		{"absolute echo", "/src/app/main.py", "app/main.py"},
		{"backslashes", `app\\db.py`, "app/db.py"},
		{"bare name suffix", "db.py", "app/db.py"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := NewAggregator("scripted", "test", "/src")
			a.AddResponse(twoFileChunk(), `[{"title":"t","path":"`+tt.reported+`"}]`)
			f := a.Result().Outcomes[0].Findings[0]
			if !reflect.DeepEqual(f.Paths, []string{tt.want}) {
				t.Errorf("Paths = %v, want [%s]", f.Paths, tt.want)
			}
		})
	}
}

func TestAggregator_ResolvesLineHintToSegment(t *testing.T) {
	// No usable path, but a line hint that only the first segment covers.
	a := NewAggregator("scripted", "test", "/src")
	a.AddResponse(twoFileChunk(), `[{"title":"t","path":"unknown.py","startLine":3}]`)

	f := a.Result().Outcomes[0].Findings[0]
	if !reflect.DeepEqual(f.Paths, []string{"app/main.py"}) {
		t.Errorf("Paths = %v, want [app/main.py]", f.Paths)
	}
}

func TestAggregator_UnresolvedFallsBackToFileList(t *testing.T) {
	a := NewAggregator("scripted", "test", "/src")
	a.AddResponse(twoFileChunk(), `[{"title":"t"}]`)

	f := a.Result().Outcomes[0].Findings[0]
	want := []string{"app/main.py", "app/db.py"}
	if !reflect.DeepEqual(f.Paths, want) {
		t.Errorf("Paths = %v, want %v", f.Paths, want)
	}
}

func TestAggregator_DegradedResponse(t *testing.T) {
	a := NewAggregator("scripted", "test", "/src")
	a.AddResponse(twoFileChunk(), "I could not produce JSON, but here is prose.")

	r := a.Result()
	if r.UsableChunks() != 1 {
		t.Fatalf("UsableChunks = %d, want 1: degraded is usable", r.UsableChunks())
	}
	f := r.Outcomes[0].Findings[0]
	if !f.Degraded {
		t.Error("Degraded = false, want true")
	}
	if f.Severity != SeverityInfo {
		t.Errorf("Severity = %q, want info", f.Severity)
	}
	if f.Description != "I could not produce JSON, but here is prose." {
		t.Errorf("Description should retain the full response text, got %q", f.Description)
	}
	if len(f.Paths) != 2 {
		t.Errorf("degraded finding should attribute to the chunk's file list, got %v", f.Paths)
	}
}

func TestAggregator_FailureAndCounts(t *testing.T) {
	a := NewAggregator("scripted", "test", "/src")
	a.AddResponse(twoFileChunk(), `[{"title":"a","severity":"critical"},{"title":"b","severity":"low"}]`)
	a.AddFailure(&chunk.Chunk{Index: 1}, errors.New("boom"))

	r := a.Finish(2, 100, true, false, []string{"could not read x"})
	if r.UsableChunks() != 1 {
		t.Errorf("UsableChunks = %d, want 1", r.UsableChunks())
	}
	if len(r.FailedChunks()) != 1 || r.FailedChunks()[0].Err != "boom" {
		t.Errorf("FailedChunks = %+v", r.FailedChunks())
	}

	counts := r.CountBySeverity()
	if counts.Critical != 1 || counts.Low != 1 || counts.Total() != 2 {
		t.Errorf("counts = %+v", counts)
	}
	if !r.BudgetExhausted || r.Canceled {
		t.Errorf("flags = exhausted %v canceled %v", r.BudgetExhausted, r.Canceled)
	}
	if r.FilesScanned != 2 || r.TotalChars != 100 {
		t.Errorf("metadata = %d files %d chars", r.FilesScanned, r.TotalChars)
	}
	if r.RunID == "" {
		t.Error("RunID should be set")
	}
}
