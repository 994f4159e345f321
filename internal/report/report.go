// Package report collects per-chunk oracle outcomes into a ScanResult and
// renders it. The ScanResult is written once by the Aggregator and read
// once at render time; both renderings derive from the same data.
package report

import (
	"strings"
	"time"

	"github.com/401-Nick/SecRev/internal/chunk"
)

// Severity labels, most severe first.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
	SeverityLow      Severity = "low"
	SeverityInfo     Severity = "info"
)

// SeverityRank returns a numeric rank for sorting (higher = more severe).
func SeverityRank(s Severity) int {
	switch s {
	case SeverityCritical:
		return 5
	case SeverityHigh:
		return 4
	case SeverityMedium:
		return 3
	case SeverityLow:
		return 2
	case SeverityInfo:
		return 1
	default:
		return 0
	}
}

// NormalizeSeverity maps free-form oracle severity labels onto the known
// set, defaulting to info.
func NormalizeSeverity(raw string) Severity {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "critical":
		return SeverityCritical
	case "high":
		return SeverityHigh
	case "medium", "moderate":
		return SeverityMedium
	case "low":
		return SeverityLow
	default:
		return SeverityInfo
	}
}

// LineRange is an inclusive 1-based line span.
type LineRange struct {
	Start int
	End   int
}

// Finding is one reported potential issue. Paths holds the originating
// file(s): a single resolved file when the oracle's location could be
// attributed, or the chunk's whole file list when it could not. Degraded
// marks a finding synthesized from unparseable oracle output.
type Finding struct {
	Paths       []string
	Lines       LineRange
	Severity    Severity
	Category    string
	Title       string
	Description string
	Impact      string
	Remediation string
	Degraded    bool
}

// ChunkOutcome records one chunk's result in submission order.
type ChunkOutcome struct {
	Chunk    *chunk.Chunk
	Findings []Finding
	Failed   bool
	Err      string
}

// ScanResult is the complete ordered record of one run, the sole input to
// report rendering.
type ScanResult struct {
	RunID           string
	StartedAt       time.Time
	Provider        string
	Model           string
	Root            string
	FilesScanned    int
	TotalChars      int
	BudgetExhausted bool
	Canceled        bool
	Warnings        []string
	Outcomes        []ChunkOutcome
}

// SeverityCounts tallies findings per severity.
type SeverityCounts struct {
	Critical int
	High     int
	Medium   int
	Low      int
	Info     int
}

// Total returns the finding count across all severities.
func (c SeverityCounts) Total() int {
	return c.Critical + c.High + c.Medium + c.Low + c.Info
}

// CountBySeverity tallies findings across all outcomes.
func (r *ScanResult) CountBySeverity() SeverityCounts {
	var c SeverityCounts
	for _, o := range r.Outcomes {
		for _, f := range o.Findings {
			switch f.Severity {
			case SeverityCritical:
				c.Critical++
			case SeverityHigh:
				c.High++
			case SeverityMedium:
				c.Medium++
			case SeverityLow:
				c.Low++
			default:
				c.Info++
			}
		}
	}
	return c
}

// UsableChunks counts outcomes that produced findings data (including
// degraded responses), i.e. everything not marked failed.
func (r *ScanResult) UsableChunks() int {
	n := 0
	for _, o := range r.Outcomes {
		if !o.Failed {
			n++
		}
	}
	return n
}

// FailedChunks returns the outcomes that recorded a failure, in order.
func (r *ScanResult) FailedChunks() []ChunkOutcome {
	var out []ChunkOutcome
	for _, o := range r.Outcomes {
		if o.Failed {
			out = append(out, o)
		}
	}
	return out
}
