package report

import (
	"io"
	"strings"
)

// MarkdownRenderer produces the structured long-form rendering: findings
// grouped by originating file, severity annotated, failed chunks and
// warnings enumerated.
type MarkdownRenderer struct{}

func (m *MarkdownRenderer) Render(w io.Writer, r *ScanResult) error {
	ew := &errWriter{w: w}
	counts := r.CountBySeverity()

	ew.printf("# SecRev Report — %s\n\n", r.StartedAt.Format("2006-01-02 15:04:05"))

	ew.println("## Disclaimer")
	ew.printf("%s\n\n", disclaimer)

	ew.println("## Scan")
	ew.printf("- Run ID: `%s`\n", r.RunID)
	ew.printf("- Root: `%s`\n", r.Root)
	ew.printf("- Oracle: %s (%s)\n", r.Provider, r.Model)
	ew.printf("- Files scanned: %d\n", r.FilesScanned)
	ew.printf("- Characters processed: %d\n", r.TotalChars)
	if r.BudgetExhausted {
		ew.println("- **Character budget exhausted — scan stopped early.**")
	}
	if r.Canceled {
		ew.println("- **Scan canceled — results are partial.**")
	}
	ew.println("")

	ew.println("## Summary")
	ew.println("| Severity | Count |")
	ew.println("|----------|-------|")
	ew.printf("| Critical | %d |\n", counts.Critical)
	ew.printf("| High     | %d |\n", counts.High)
	ew.printf("| Medium   | %d |\n", counts.Medium)
	ew.printf("| Low      | %d |\n", counts.Low)
	ew.printf("| Info     | %d |\n", counts.Info)
	ew.printf("| **Total** | **%d** |\n\n", counts.Total())

	if len(r.Warnings) > 0 {
		ew.println("## Warnings")
		for _, warn := range r.Warnings {
			ew.printf("- %s\n", warn)
		}
		ew.println("")
	}

	ew.println("## Findings")
	groups := groupByFile(r)
	if len(groups) == 0 {
		ew.println("No potential vulnerabilities were reported across the scanned files.")
	}
	for _, g := range groups {
		ew.printf("\n### `%s`\n\n", g.label)
		for _, f := range g.findings {
			ew.printf("#### [%s] %s\n\n", strings.ToUpper(string(f.Severity)), f.Title)
			if loc := lineLabel(f.Lines); loc != "" {
				ew.printf("- Location: %s\n", loc)
			}
			if f.Category != "" {
				ew.printf("- Category: %s\n", f.Category)
			}
			ew.println("")
			if f.Description != "" {
				ew.printf("%s\n\n", f.Description)
			}
			if f.Impact != "" {
				ew.printf("**Impact:** %s\n\n", f.Impact)
			}
			if f.Remediation != "" {
				ew.printf("**Remediation:** %s\n\n", f.Remediation)
			}
			ew.println("---")
		}
	}

	if failed := r.FailedChunks(); len(failed) > 0 {
		ew.println("\n## Failed chunks")
		ew.println("These chunks could not be analyzed; re-run a narrower scan targeting the listed files.")
		ew.println("")
		for _, o := range failed {
			ew.printf("- Chunk %d (`%s`): %s\n", o.Chunk.Index, strings.Join(o.Chunk.Files(), "`, `"), o.Err)
		}
	}

	return ew.err
}
