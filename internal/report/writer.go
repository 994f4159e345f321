package report

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
)

// WriteArtifacts renders the ScanResult in both formats and writes them as
// timestamped files under dir (created if absent). It returns the markdown
// and text file paths.
func WriteArtifacts(result *ScanResult, dir, baseName string) (mdPath, txtPath string, err error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", "", fmt.Errorf("creating reports directory: %w", err)
	}

	stamp := result.StartedAt.Format("20060102_150405")
	mdPath = filepath.Join(dir, fmt.Sprintf("%s_%s.md", baseName, stamp))
	txtPath = filepath.Join(dir, fmt.Sprintf("%s_%s.txt", baseName, stamp))

	if err := writeRendering(result, &MarkdownRenderer{}, mdPath); err != nil {
		return "", "", err
	}
	if err := writeRendering(result, &TextRenderer{}, txtPath); err != nil {
		return "", "", err
	}
	return mdPath, txtPath, nil
}

func writeRendering(result *ScanResult, r Renderer, path string) error {
	var buf bytes.Buffer
	if err := r.Render(&buf, result); err != nil {
		return fmt.Errorf("rendering %s: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("writing report %s: %w", path, err)
	}
	return nil
}
