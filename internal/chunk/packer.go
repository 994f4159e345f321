// Package chunk packs selected files into size-bounded submission units.
//
// Budgets are counted in characters of decoded text (runes), not raw bytes,
// so multi-byte encodings cannot silently overrun the configured limits.
package chunk

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/401-Nick/SecRev/internal/scan"
)

// DefaultChunkChars is the per-chunk character budget when none is given.
const DefaultChunkChars = 200000

// ErrBudgetExceeded signals that the run-level character ceiling was
// reached. It is a normal termination signal: chunks already produced
// remain valid and renderable.
var ErrBudgetExceeded = errors.New("total character budget exceeded")

// Segment is a whole-or-split slice of one file's content. Offsets are rune
// offsets within the decoded file; StartLine is the 1-based line number at
// which the slice begins, preserved across split boundaries.
type Segment struct {
	File        scan.FileDescriptor
	StartOffset int
	EndOffset   int
	StartLine   int
	Content     string
}

// Chunk is an ordered bundle of segments submitted to the oracle as one
// unit. Immutable after the Packer emits it.
type Chunk struct {
	Index    int
	Segments []Segment
	Chars    int
}

// Content returns the concatenation of all segment contents.
func (c *Chunk) Content() string {
	var b strings.Builder
	b.Grow(c.Chars)
	for _, s := range c.Segments {
		b.WriteString(s.Content)
	}
	return b.String()
}

// Files returns the distinct originating file paths in segment order.
func (c *Chunk) Files() []string {
	seen := make(map[string]bool, len(c.Segments))
	var out []string
	for _, s := range c.Segments {
		if !seen[s.File.RelPath] {
			seen[s.File.RelPath] = true
			out = append(out, s.File.RelPath)
		}
	}
	return out
}

// ContainsLine reports whether line n of the named file falls inside one of
// the chunk's segments.
func (c *Chunk) ContainsLine(relPath string, n int) bool {
	for _, s := range c.Segments {
		if relPath != "" && s.File.RelPath != relPath {
			continue
		}
		endLine := s.StartLine + strings.Count(s.Content, "\n")
		if n >= s.StartLine && n <= endLine {
			return true
		}
	}
	return false
}

// Packer emits chunks lazily so submission can begin before the whole tree
// has been read. Peak memory stays a small multiple of the chunk budget.
type Packer struct {
	files       []scan.FileDescriptor
	chunkBudget int
	maxTotal    int // 0 = unlimited

	pos       int
	total     int
	scanned   int
	nextIndex int
	cur       []Segment
	curChars  int
	ready     []*Chunk
	warnings  []string
	exhausted bool
}

// NewPacker prepares a packer over files in the given order. A
// non-positive chunkBudget falls back to DefaultChunkChars; maxTotal of
// zero means no run-level ceiling.
func NewPacker(files []scan.FileDescriptor, chunkBudget, maxTotal int) *Packer {
	if chunkBudget <= 0 {
		chunkBudget = DefaultChunkChars
	}
	return &Packer{files: files, chunkBudget: chunkBudget, maxTotal: maxTotal}
}

// Next returns the next chunk in sequence order. It returns (nil, nil) when
// all files are consumed, and (nil, ErrBudgetExceeded) once intake stopped
// because the run-level ceiling was reached. Empty files produce nothing;
// unreadable files are skipped with a recorded warning.
func (p *Packer) Next() (*Chunk, error) {
	p.fill()
	if len(p.ready) > 0 {
		c := p.ready[0]
		p.ready = p.ready[1:]
		return c, nil
	}
	if p.exhausted {
		return nil, ErrBudgetExceeded
	}
	return nil, nil
}

// Exhausted reports whether intake stopped due to the run-level ceiling.
func (p *Packer) Exhausted() bool { return p.exhausted }

// TotalChars returns the running total of characters taken in so far.
func (p *Packer) TotalChars() int { return p.total }

// FilesScanned returns the number of files taken in so far. Unreadable
// files and files turned away by the run-level ceiling do not count.
func (p *Packer) FilesScanned() int { return p.scanned }

// Warnings returns per-file read failures recorded during packing.
func (p *Packer) Warnings() []string { return p.warnings }

func (p *Packer) fill() {
	for len(p.ready) == 0 && p.pos < len(p.files) {
		fd := p.files[p.pos]

		data, err := os.ReadFile(fd.Path)
		if err != nil {
			p.warnings = append(p.warnings, fmt.Sprintf("could not read %s: %v", fd.RelPath, err))
			p.pos++
			continue
		}
		runes := []rune(string(data))
		n := len(runes)
		if n == 0 {
			p.pos++
			p.scanned++
			continue
		}

		// Run-level ceiling: a file that would push the total past the
		// ceiling is not taken in at all, and intake stops.
		if p.maxTotal > 0 && p.total+n > p.maxTotal {
			p.exhausted = true
			p.pos = len(p.files)
			break
		}
		p.total += n
		p.scanned++
		p.pos++

		if n > p.chunkBudget {
			p.flush()
			p.splitOversized(fd, runes)
			continue
		}

		if p.curChars > 0 && p.curChars+n > p.chunkBudget {
			p.flush()
		}
		p.cur = append(p.cur, Segment{
			File:        fd,
			StartOffset: 0,
			EndOffset:   n,
			StartLine:   1,
			Content:     string(runes),
		})
		p.curChars += n
	}

	if p.pos >= len(p.files) {
		p.flush()
	}
}

// splitOversized slices a file larger than the chunk budget into successive
// solo chunks, carrying the line count across each boundary.
func (p *Packer) splitOversized(fd scan.FileDescriptor, runes []rune) {
	line := 1
	for off := 0; off < len(runes); off += p.chunkBudget {
		end := off + p.chunkBudget
		if end > len(runes) {
			end = len(runes)
		}
		content := string(runes[off:end])
		p.emit(&Chunk{
			Segments: []Segment{{
				File:        fd,
				StartOffset: off,
				EndOffset:   end,
				StartLine:   line,
				Content:     content,
			}},
			Chars: end - off,
		})
		line += strings.Count(content, "\n")
	}
}

func (p *Packer) flush() {
	if p.curChars == 0 {
		return
	}
	p.emit(&Chunk{Segments: p.cur, Chars: p.curChars})
	p.cur = nil
	p.curChars = 0
}

func (p *Packer) emit(c *Chunk) {
	c.Index = p.nextIndex
	p.nextIndex++
	p.ready = append(p.ready, c)
}
