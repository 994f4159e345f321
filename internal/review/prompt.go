package review

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/invopop/jsonschema"

	"github.com/401-Nick/SecRev/internal/chunk"
	"github.com/401-Nick/SecRev/internal/redact"
	"github.com/401-Nick/SecRev/internal/report"
)

const instructionHeader = `You are an expert AI security code reviewer. Meticulously analyze the provided source files or configuration for potential security vulnerabilities: SQL injection, cross-site scripting, insecure deserialization, hardcoded secrets, weak cryptography, command injection, path traversal, insufficient input validation, insecure direct object references, security misconfiguration, and outdated dependencies where inferable from package files.

Guidelines:
1. Be precise and actionable. Focus on actual vulnerabilities, not style, unless the style has direct security implications.
2. Use the file paths exactly as provided in the "File:" headers. Do not invent file paths or line numbers that are not evident from the input.
3. Reference line numbers relative to the whole file; each submitted slice states the line it starts at.
4. Rate severity as critical, high, medium, low, or info, based on potential impact and exploitability.
5. Assume the code is part of a larger system but analyze it in isolation unless broader context is given.

You MUST respond with ONLY a JSON array of findings. No markdown, no explanation, no preamble. Each element must conform to this JSON Schema:

%s

If you find no specific, actionable security vulnerabilities, respond with an empty array: []`

// Instruction returns the fixed review instruction sent with every chunk.
func Instruction() string {
	return fmt.Sprintf(instructionHeader, findingSchemaJSON)
}

// findingSchemaJSON is the finding wire schema, reflected once at startup.
var findingSchemaJSON = func() string {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	schema := reflector.Reflect(&report.WireFinding{})
	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		panic(fmt.Sprintf("reflecting finding schema: %v", err))
	}
	return string(data)
}()

// BuildChunkContent renders a chunk's segments for submission, each slice
// annotated with its originating path and starting line. When redaction is
// on, obvious secrets are masked before anything leaves the process.
func BuildChunkContent(c *chunk.Chunk, redactSecrets bool, redactPaths []string) string {
	var b strings.Builder
	for _, s := range c.Segments {
		content := s.Content
		if redactSecrets {
			content = redact.Content(content, s.File.RelPath, redactPaths)
		}
		if s.StartLine > 1 || s.StartOffset > 0 {
			fmt.Fprintf(&b, "File: %s (partial, starting at line %d)\n", s.File.RelPath, s.StartLine)
		} else {
			fmt.Fprintf(&b, "File: %s\n", s.File.RelPath)
		}
		b.WriteString("```\n")
		b.WriteString(content)
		if !strings.HasSuffix(content, "\n") {
			b.WriteString("\n")
		}
		b.WriteString("```\n\n")
	}
	return b.String()
}
