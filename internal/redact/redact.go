// Package redact masks obvious credentials in text before it is submitted
// to the external analysis service.
package redact

import (
	"path/filepath"
	"regexp"
	"strings"
)

const placeholder = "[REDACTED]"

// secretPatterns are regex heuristics for common secret shapes. False
// positives are acceptable: a masked token still reviews as a hardcoded
// credential, which is the point.
var secretPatterns = []*regexp.Regexp{
	// assignments of api keys, secrets, tokens and passwords
	regexp.MustCompile(`(?i)(api[_-]?key|apikey|api[_-]?secret|secret|token|password|passwd|credential)\s*[:=]\s*["']?([A-Za-z0-9/+=_.-]{16,})["']?`),
	// AWS access key IDs and secret keys
	regexp.MustCompile(`AKIA[0-9A-Z]{16}`),
	regexp.MustCompile(`(?i)(aws[_-]?secret[_-]?access[_-]?key)\s*[:=]\s*["']?([A-Za-z0-9/+=]{40})["']?`),
	// Google API keys
	regexp.MustCompile(`AIza[0-9A-Za-z_-]{35}`),
	// bearer tokens and JWTs
	regexp.MustCompile(`(?i)Bearer\s+[A-Za-z0-9._-]{20,}`),
	regexp.MustCompile(`eyJ[A-Za-z0-9_-]{10,}\.eyJ[A-Za-z0-9_-]{10,}\.[A-Za-z0-9_-]{10,}`),
	// private key blocks
	regexp.MustCompile(`-----BEGIN\s+(RSA\s+|EC\s+|OPENSSH\s+)?PRIVATE KEY-----`),
	// vendor token prefixes: github, slack, anthropic, openai
	regexp.MustCompile(`gh[pousr]_[A-Za-z0-9_]{36,}`),
	regexp.MustCompile(`xox[bporas]-[A-Za-z0-9-]{10,}`),
	regexp.MustCompile(`sk-ant-[A-Za-z0-9_-]{20,}`),
	regexp.MustCompile(`sk-[A-Za-z0-9]{20,}`),
}

// Secrets replaces detected secrets in text with a placeholder.
func Secrets(text string) string {
	result := text
	for _, pat := range secretPatterns {
		result = pat.ReplaceAllString(result, placeholder)
	}
	return result
}

// Content redacts secrets from one file's content. Files matching a
// redaction path pattern have their whole content withheld.
func Content(content, relPath string, redactPaths []string) string {
	if matchesPath(relPath, redactPaths) {
		return placeholder + " (file content withheld by path policy)\n"
	}
	return Secrets(content)
}

func matchesPath(relPath string, patterns []string) bool {
	base := filepath.Base(relPath)
	for _, pattern := range patterns {
		if ok, err := filepath.Match(pattern, relPath); err == nil && ok {
			return true
		}
		trimmed := strings.TrimPrefix(pattern, "**/")
		if trimmed != pattern {
			if ok, err := filepath.Match(trimmed, base); err == nil && ok {
				return true
			}
		}
	}
	return false
}
