package review

import (
	"strings"
	"testing"

	"github.com/401-Nick/SecRev/internal/chunk"
	"github.com/401-Nick/SecRev/internal/scan"
)

func TestInstruction_EmbedsSchema(t *testing.T) {
	instr := Instruction()
	for _, field := range []string{"severity", "category", "title", "remediation", "startLine"} {
		if !strings.Contains(instr, `"`+field+`"`) {
			t.Errorf("instruction schema missing field %q", field)
		}
	}
	if !strings.Contains(instr, "JSON array") {
		t.Error("instruction should demand a JSON array response")
	}
}

func TestBuildChunkContent_Headers(t *testing.T) {
	c := &chunk.Chunk{Segments: []chunk.Segment{
		{
			File:      scan.FileDescriptor{RelPath: "app/main.py"},
			StartLine: 1,
			Content:   "print('hi')\n",
		},
		{
			File:        scan.FileDescriptor{RelPath: "app/big.py"},
			StartOffset: 500,
			StartLine:   42,
			Content:     "tail of the file",
		},
	}}

	content := BuildChunkContent(c, false, nil)

	if !strings.Contains(content, "File: app/main.py\n") {
		t.Error("missing whole-file header")
	}
	if !strings.Contains(content, "File: app/big.py (partial, starting at line 42)\n") {
		t.Error("missing partial-slice header with start line")
	}
	if !strings.Contains(content, "print('hi')\n") {
		t.Error("missing file content")
	}
	// Unterminated content still closes its fence on its own line.
	if !strings.Contains(content, "tail of the file\n```") {
		t.Error("fence not closed after unterminated content")
	}
}

func TestBuildChunkContent_Redaction(t *testing.T) {
	c := &chunk.Chunk{Segments: []chunk.Segment{{
		File:      scan.FileDescriptor{RelPath: "config.py"},
		StartLine: 1,
		Content:   `api_key = "sk-1234567890abcdefghijklmn"` + "\n",
	}}}

	masked := BuildChunkContent(c, true, nil)
	if strings.Contains(masked, "sk-1234567890abcdefghijklmn") {
		t.Error("secret survived redaction")
	}

	clear := BuildChunkContent(c, false, nil)
	if !strings.Contains(clear, "sk-1234567890abcdefghijklmn") {
		t.Error("redaction applied although disabled")
	}
}

func TestBuildChunkContent_PathWithholding(t *testing.T) {
	c := &chunk.Chunk{Segments: []chunk.Segment{{
		File:      scan.FileDescriptor{RelPath: ".env"},
		StartLine: 1,
		Content:   "DB_PASSWORD=hunter2\n",
	}}}

	content := BuildChunkContent(c, true, []string{"**/.env"})
	if strings.Contains(content, "hunter2") {
		t.Error("path-matched file content should be withheld entirely")
	}
	if !strings.Contains(content, "File: .env") {
		t.Error("header should still identify the withheld file")
	}
}
