package report

import (
	"fmt"
	"io"
	"sort"
	"strings"
)

// Renderer produces one textual representation of a ScanResult.
type Renderer interface {
	Render(w io.Writer, result *ScanResult) error
}

// GetRenderer returns the renderer for a format name.
func GetRenderer(format string) (Renderer, error) {
	switch format {
	case "markdown":
		return &MarkdownRenderer{}, nil
	case "text":
		return &TextRenderer{}, nil
	default:
		return nil, fmt.Errorf("unsupported report format: %s", format)
	}
}

const disclaimer = "This report was generated by an AI-assisted security review tool. " +
	"The findings are potential vulnerabilities and require human verification and contextual understanding. " +
	"This tool is an aid and not a replacement for thorough manual code review, dedicated SAST/DAST tools, or professional security audits."

// fileGroup is a set of findings sharing an origin label, in discovery
// order of first appearance.
type fileGroup struct {
	label    string
	findings []Finding
}

func groupByFile(r *ScanResult) []fileGroup {
	var order []string
	byLabel := make(map[string][]Finding)
	for _, o := range r.Outcomes {
		for _, f := range o.Findings {
			label := strings.Join(f.Paths, ", ")
			if label == "" {
				label = "(unattributed)"
			}
			if _, ok := byLabel[label]; !ok {
				order = append(order, label)
			}
			byLabel[label] = append(byLabel[label], f)
		}
	}

	groups := make([]fileGroup, 0, len(order))
	for _, label := range order {
		findings := byLabel[label]
		sort.SliceStable(findings, func(i, j int) bool {
			ri, rj := SeverityRank(findings[i].Severity), SeverityRank(findings[j].Severity)
			if ri != rj {
				return ri > rj
			}
			return findings[i].Lines.Start < findings[j].Lines.Start
		})
		groups = append(groups, fileGroup{label: label, findings: findings})
	}
	return groups
}

func lineLabel(l LineRange) string {
	switch {
	case l.Start == 0:
		return ""
	case l.End == 0 || l.End == l.Start:
		return fmt.Sprintf("line %d", l.Start)
	default:
		return fmt.Sprintf("lines %d-%d", l.Start, l.End)
	}
}

// errWriter wraps an io.Writer and captures the first error.
type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) printf(format string, args ...interface{}) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprintf(ew.w, format, args...)
}

func (ew *errWriter) println(s string) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprintln(ew.w, s)
}
