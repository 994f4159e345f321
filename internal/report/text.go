package report

import (
	"io"
	"strings"
)

const textRule = "------------------------"

// TextRenderer produces the flat plain-text rendering: one block per
// finding in discovery order, failed chunks interleaved where they occurred.
// It walks the same ScanResult as the markdown renderer, so no finding can
// appear in one rendering and not the other.
type TextRenderer struct{}

func (t *TextRenderer) Render(w io.Writer, r *ScanResult) error {
	ew := &errWriter{w: w}
	counts := r.CountBySeverity()

	ew.printf("SecRev Report - %s\n\n", r.StartedAt.Format("2006-01-02 15:04:05"))
	ew.println("Disclaimer:")
	ew.printf("%s\n\n", disclaimer)

	ew.printf("Scan: root=%s oracle=%s/%s files=%d chars=%d\n",
		r.Root, r.Provider, r.Model, r.FilesScanned, r.TotalChars)
	if r.BudgetExhausted {
		ew.println("NOTE: character budget exhausted, scan stopped early.")
	}
	if r.Canceled {
		ew.println("NOTE: scan canceled, results are partial.")
	}
	for _, warn := range r.Warnings {
		ew.printf("WARNING: %s\n", warn)
	}
	ew.printf("\nFindings: %d total (%d critical, %d high, %d medium, %d low, %d info)\n",
		counts.Total(), counts.Critical, counts.High, counts.Medium, counts.Low, counts.Info)
	ew.println(strings.Repeat("=", 20) + "\n")

	any := false
	for _, o := range r.Outcomes {
		if o.Failed {
			any = true
			ew.printf("%s\nCHUNK %d FAILED (%s)\n%s\n\n", textRule, o.Chunk.Index,
				strings.Join(o.Chunk.Files(), ", "), o.Err)
			continue
		}
		for _, f := range o.Findings {
			any = true
			ew.println(textRule)
			ew.printf("[%s] %s\n", strings.ToUpper(string(f.Severity)), f.Title)
			ew.printf("File: %s", strings.Join(f.Paths, ", "))
			if loc := lineLabel(f.Lines); loc != "" {
				ew.printf(" (%s)", loc)
			}
			ew.println("")
			if f.Category != "" {
				ew.printf("Category: %s\n", f.Category)
			}
			if f.Description != "" {
				ew.printf("%s\n", f.Description)
			}
			if f.Impact != "" {
				ew.printf("Impact: %s\n", f.Impact)
			}
			if f.Remediation != "" {
				ew.printf("Remediation: %s\n", f.Remediation)
			}
			ew.println("")
		}
	}

	if !any {
		ew.println("No potential vulnerabilities were reported across the scanned files.")
	}

	return ew.err
}
