package report

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/401-Nick/SecRev/internal/chunk"
)

// Aggregator accumulates chunk outcomes in submission order. Ordering is
// by chunk sequence index; since the pipeline is sequential this coincides
// with arrival order, but the index is what callers must rely on.
type Aggregator struct {
	result ScanResult
}

// NewAggregator starts an empty ScanResult for one run.
func NewAggregator(provider, model, root string) *Aggregator {
	return &Aggregator{result: ScanResult{
		RunID:     uuid.New().String(),
		StartedAt: time.Now(),
		Provider:  provider,
		Model:     model,
		Root:      root,
	}}
}

// AddResponse records a successful oracle call. Structured responses are
// parsed into findings with origin attribution; unparseable responses are
// retained whole as a single degraded finding (not an error).
func (a *Aggregator) AddResponse(c *chunk.Chunk, content string) {
	findings, err := ParseFindings(content)
	if err != nil {
		text := strings.TrimSpace(content)
		a.result.Outcomes = append(a.result.Outcomes, ChunkOutcome{
			Chunk: c,
			Findings: []Finding{{
				Paths:       c.Files(),
				Severity:    SeverityInfo,
				Category:    "unstructured-response",
				Title:       "Unstructured oracle response",
				Description: text,
				Degraded:    true,
			}},
		})
		return
	}
	for i := range findings {
		attribute(c, &findings[i])
	}
	a.result.Outcomes = append(a.result.Outcomes, ChunkOutcome{Chunk: c, Findings: findings})
}

// AddFailure records a chunk whose oracle call failed terminally.
func (a *Aggregator) AddFailure(c *chunk.Chunk, err error) {
	a.result.Outcomes = append(a.result.Outcomes, ChunkOutcome{
		Chunk:  c,
		Failed: true,
		Err:    err.Error(),
	})
}

// Finish stamps run-level metadata and returns the completed result.
func (a *Aggregator) Finish(filesScanned, totalChars int, exhausted, canceled bool, warnings []string) *ScanResult {
	a.result.FilesScanned = filesScanned
	a.result.TotalChars = totalChars
	a.result.BudgetExhausted = exhausted
	a.result.Canceled = canceled
	a.result.Warnings = warnings
	return &a.result
}

// Result returns the ScanResult accumulated so far. It remains valid and
// renderable after a mid-run abort.
func (a *Aggregator) Result() *ScanResult { return &a.result }

// attribute resolves a finding's origin against the chunk's segment list.
// A finding naming a file the chunk actually contains keeps that path. A
// bare line hint resolves to the segment covering that line. Anything
// unresolved attributes to the chunk's full file list.
func attribute(c *chunk.Chunk, f *Finding) {
	files := c.Files()

	if len(f.Paths) == 1 {
		for _, rel := range files {
			if pathMatches(rel, f.Paths[0]) {
				f.Paths = []string{rel}
				return
			}
		}
	}

	if f.Lines.Start > 0 {
		for _, s := range c.Segments {
			endLine := s.StartLine + strings.Count(s.Content, "\n")
			if f.Lines.Start >= s.StartLine && f.Lines.Start <= endLine {
				f.Paths = []string{s.File.RelPath}
				return
			}
		}
	}

	f.Paths = files
}

// pathMatches tolerates the oracle echoing an absolute path or a suffix of
// the relative path.
func pathMatches(rel, reported string) bool {
	reported = strings.TrimSpace(strings.ReplaceAll(reported, "\\", "/"))
	return reported == rel || strings.HasSuffix(reported, "/"+rel) || strings.HasSuffix(rel, "/"+reported)
}
