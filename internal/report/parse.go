package report

import (
	"encoding/json"
	"fmt"
	"strings"
)

// WireFinding is the JSON structure the oracle is instructed to return for
// each finding. The field descriptions feed the schema embedded in the
// review instruction.
type WireFinding struct {
	Severity    string `json:"severity" jsonschema:"enum=critical,enum=high,enum=medium,enum=low,enum=info" jsonschema_description:"Estimated severity based on impact and exploitability."`
	Category    string `json:"category" jsonschema_description:"Vulnerability type, e.g. SQL Injection, Hardcoded Secrets, Path Traversal."`
	Title       string `json:"title" jsonschema_description:"Short descriptive title of the finding."`
	Description string `json:"description" jsonschema_description:"What the vulnerability is and why it is a risk."`
	Impact      string `json:"impact" jsonschema_description:"What an attacker could achieve by exploiting it."`
	Remediation string `json:"remediation" jsonschema_description:"Specific, actionable advice on how to fix or mitigate it."`
	Path        string `json:"path" jsonschema_description:"The file path exactly as given in the submitted content."`
	StartLine   int    `json:"startLine,omitempty" jsonschema_description:"First affected line number, 1-based, if evident."`
	EndLine     int    `json:"endLine,omitempty" jsonschema_description:"Last affected line number, if evident."`
}

// ParseFindings decodes an oracle response into findings. Markdown code
// fences around the JSON array are tolerated. A decode failure is reported
// to the caller, which treats the response as degraded, not as an error.
func ParseFindings(content string) ([]Finding, error) {
	content = stripFences(strings.TrimSpace(content))

	var raw []WireFinding
	if err := json.Unmarshal([]byte(content), &raw); err != nil {
		return nil, fmt.Errorf("invalid findings array: %w", err)
	}

	findings := make([]Finding, 0, len(raw))
	for _, w := range raw {
		f := Finding{
			Severity:    NormalizeSeverity(w.Severity),
			Category:    w.Category,
			Title:       w.Title,
			Description: w.Description,
			Impact:      w.Impact,
			Remediation: w.Remediation,
			Lines:       LineRange{Start: w.StartLine, End: w.EndLine},
		}
		if w.Path != "" {
			f.Paths = []string{w.Path}
		}
		if f.Lines.End < f.Lines.Start {
			f.Lines.End = f.Lines.Start
		}
		findings = append(findings, f)
	}
	return findings, nil
}

func stripFences(content string) string {
	if !strings.HasPrefix(content, "```") {
		return content
	}
	lines := strings.Split(content, "\n")
	if len(lines) < 2 {
		return content
	}
	end := len(lines)
	if strings.TrimSpace(lines[end-1]) == "```" {
		end--
	}
	return strings.Join(lines[1:end], "\n")
}
