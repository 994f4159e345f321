package scan

import (
	"fmt"
	"strings"
)

// Default extension allow-list applied when no explicit include list is
// configured. Prose formats (.md, .txt) are deliberately absent: they are
// not reviewable code and inflate the character budget.
var defaultIncludeExts = []string{
	".py", ".js", ".ts", ".java", ".c", ".cpp", ".h", ".hpp", ".cs", ".go", ".rb", ".php",
	".html", ".htm", ".css", ".scss", ".less",
	".json", ".yaml", ".yml", ".xml", ".ini", ".toml", ".env",
	".sh", ".bash", ".ps1",
	".sql",
	".dockerfile", "dockerfile", ".tf", ".hcl",
}

var defaultExcludeExts = []string{
	".pyc", ".pyo", ".o", ".so", ".dll", ".exe",
	".log", ".tmp", ".bak", ".swp",
	".ds_store",
	".jpg", ".jpeg", ".png", ".gif", ".bmp", ".tiff", ".webp",
	".mp3", ".wav", ".aac", ".flac", ".ogg",
	".mp4", ".mov", ".avi", ".mkv", ".webm",
	".zip", ".tar", ".gz", ".rar", ".7z",
	".pdf", ".doc", ".docx", ".xls", ".xlsx", ".ppt", ".pptx",
}

// Default name/path-segment exclusions. VCS and dependency-manager
// directories are pruned without being descended into.
var defaultExcludePatterns = []string{
	".gitignore", "license", "node_modules", "venv", ".venv", "dist", "build",
	"__pycache__", ".git", ".svn", ".hg",
	"package-lock.json", "yarn.lock", "composer.lock", "gemfile.lock", "pipfile.lock",
}

// FilterPolicy decides which discovered files are eligible for scanning.
// Matching is case-insensitive. Patterns are exact per-path-component
// matches, no wildcards. Exclusion always wins over inclusion.
type FilterPolicy struct {
	includeExts     map[string]bool
	excludeExts     map[string]bool
	excludePatterns map[string]bool
}

// FilterConflictError reports a policy entry that cannot be honored.
type FilterConflictError struct {
	Entry  string
	Reason string
}

func (e *FilterConflictError) Error() string {
	return fmt.Sprintf("filter policy conflict: %q: %s", e.Entry, e.Reason)
}

// NewFilterPolicy builds a policy from user-supplied lists merged with the
// defaults. A non-empty include list replaces the default allow-list; the
// exclusion lists always add to the defaults.
func NewFilterPolicy(includeExts, excludeExts, excludePatterns []string) (FilterPolicy, error) {
	p := FilterPolicy{
		includeExts:     make(map[string]bool),
		excludeExts:     make(map[string]bool),
		excludePatterns: make(map[string]bool),
	}

	if len(includeExts) > 0 {
		if err := addExts(p.includeExts, includeExts); err != nil {
			return FilterPolicy{}, err
		}
	} else {
		for _, e := range defaultIncludeExts {
			p.includeExts[e] = true
		}
	}

	for _, e := range defaultExcludeExts {
		p.excludeExts[e] = true
	}
	if err := addExts(p.excludeExts, excludeExts); err != nil {
		return FilterPolicy{}, err
	}

	for _, pat := range defaultExcludePatterns {
		p.excludePatterns[pat] = true
	}
	if err := addPatterns(p.excludePatterns, excludePatterns); err != nil {
		return FilterPolicy{}, err
	}

	return p, nil
}

// DefaultFilterPolicy returns the built-in policy with no user additions.
func DefaultFilterPolicy() FilterPolicy {
	p, err := NewFilterPolicy(nil, nil, nil)
	if err != nil {
		panic(err) // defaults are static and valid
	}
	return p
}

// Suppress adds run-scoped extension exclusions (from the interactive
// review stage) on top of the configured policy.
func (p FilterPolicy) Suppress(exts []string) (FilterPolicy, error) {
	out := FilterPolicy{
		includeExts:     p.includeExts,
		excludeExts:     make(map[string]bool, len(p.excludeExts)+len(exts)),
		excludePatterns: p.excludePatterns,
	}
	for e := range p.excludeExts {
		out.excludeExts[e] = true
	}
	if err := addExts(out.excludeExts, exts); err != nil {
		return FilterPolicy{}, err
	}
	return out, nil
}

// Included reports whether a file name passes the allow-list. Both the
// extension and the full lowercase name are checked so bare names like
// "dockerfile" can be allow-listed.
func (p FilterPolicy) Included(name string) bool {
	lower := strings.ToLower(name)
	return p.includeExts[fileExt(lower)] || p.includeExts[lower]
}

// Excluded reports whether a file is excluded by extension, by name, or by
// any path component of its root-relative path. Exclusion wins over
// inclusion.
func (p FilterPolicy) Excluded(relPath string) bool {
	lower := strings.ToLower(relPath)
	parts := strings.Split(lower, "/")
	name := parts[len(parts)-1]
	if p.excludeExts[fileExt(name)] {
		return true
	}
	if p.excludePatterns[name] {
		return true
	}
	for _, part := range parts[:len(parts)-1] {
		if p.excludePatterns[part] {
			return true
		}
	}
	return false
}

// PruneDir reports whether a directory should be skipped entirely.
func (p FilterPolicy) PruneDir(name string) bool {
	return p.excludePatterns[strings.ToLower(name)]
}

func addExts(dst map[string]bool, entries []string) error {
	for _, raw := range entries {
		e := strings.ToLower(strings.TrimSpace(raw))
		if e == "" || strings.Trim(e, ".") == "" {
			return &FilterConflictError{Entry: raw, Reason: "normalizes to an empty extension"}
		}
		if strings.ContainsAny(e, "*?[/\\") {
			return &FilterConflictError{Entry: raw, Reason: "wildcards and path separators are not supported"}
		}
		if !strings.HasPrefix(e, ".") && strings.Contains(e, ".") {
			// Entries like "main.py" are full names, keep them as typed.
			dst[e] = true
			continue
		}
		dst["."+strings.TrimLeft(e, ".")] = true
		if !strings.HasPrefix(strings.TrimSpace(raw), ".") {
			// Bare names like "dockerfile" also match as literal file names.
			dst[e] = true
		}
	}
	return nil
}

func addPatterns(dst map[string]bool, entries []string) error {
	for _, raw := range entries {
		pat := strings.ToLower(strings.Trim(strings.TrimSpace(raw), "/"))
		if pat == "" {
			return &FilterConflictError{Entry: raw, Reason: "normalizes to an empty pattern"}
		}
		if strings.ContainsAny(pat, "*?[") {
			return &FilterConflictError{Entry: raw, Reason: "patterns are exact component matches, wildcards are not supported"}
		}
		if strings.ContainsAny(pat, "/\\") {
			return &FilterConflictError{Entry: raw, Reason: "patterns match a single path component, separators are not supported"}
		}
		dst[pat] = true
	}
	return nil
}

func fileExt(name string) string {
	if i := strings.LastIndex(name, "."); i >= 0 {
		return name[i:]
	}
	return ""
}
