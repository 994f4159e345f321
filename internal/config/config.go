// Package config holds the effective secrev configuration, merged from
// defaults, the config file, environment variables, and CLI overrides.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
)

// Config is the secrev configuration.
type Config struct {
	Provider        string        `json:"provider"`
	Model           string        `json:"model"`
	ChunkChars      int           `json:"chunkChars"`
	MaxTotalChars   int           `json:"maxTotalChars"` // 0 = unlimited
	ReportsDir      string        `json:"reportsDir"`
	ReportBase      string        `json:"reportBase"`
	IncludeExts     []string      `json:"includeExtensions,omitempty"`
	ExcludeExts     []string      `json:"excludeExtensions,omitempty"`
	ExcludePatterns []string      `json:"excludeFiles,omitempty"`
	CredentialFile  string        `json:"credentialFile,omitempty"`
	Cache           CacheConfig   `json:"cache"`
	Privacy         PrivacyConfig `json:"privacy"`
}

// CacheConfig controls oracle response caching.
type CacheConfig struct {
	Enabled    bool   `json:"enabled"`
	Dir        string `json:"dir,omitempty"`
	TTLSeconds int    `json:"ttlSeconds"`
}

// PrivacyConfig controls redaction of content before submission.
type PrivacyConfig struct {
	RedactSecrets bool     `json:"redactSecrets"`
	RedactPaths   []string `json:"redactPaths,omitempty"`
}

// Default returns a Config with all defaults applied.
func Default() Config {
	return Config{
		Provider:      "gemini",
		Model:         "gemini-1.5-flash-latest",
		ChunkChars:    200000,
		MaxTotalChars: 5000000,
		ReportsDir:    "secrev_reports",
		ReportBase:    "secrev_scan",
		Cache: CacheConfig{
			Enabled:    true,
			TTLSeconds: 86400,
		},
		Privacy: PrivacyConfig{
			RedactSecrets: true,
			RedactPaths:   []string{"**/.env", "**/*secrets*"},
		},
	}
}

// ConfigDir returns the platform-appropriate config directory.
func ConfigDir() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "secrev"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", "secrev"), nil
	case "windows":
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, "secrev"), nil
		}
		return filepath.Join(home, "AppData", "Roaming", "secrev"), nil
	default:
		return filepath.Join(home, ".config", "secrev"), nil
	}
}

// ConfigPath returns the full path to the config file.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// LoadFile loads config from the config file. Returns a zero Config and
// nil error if the file does not exist.
func LoadFile() (Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return Config{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Config{}, nil
		}
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config file: %w", err)
	}
	return cfg, nil
}

// Save writes the config to the config file.
func Save(cfg Config) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// Load builds the effective config: defaults <- file <- env <- overrides.
// The overrides map comes from CLI flags; only flags the user actually set
// should be present, so an explicit "0" (unlimited budget) is honored.
func Load(overrides map[string]string) (Config, error) {
	cfg := Default()

	fileCfg, err := LoadFile()
	if err != nil {
		return Config{}, err
	}
	mergeFile(&cfg, fileCfg)
	mergeEnv(&cfg)
	mergeOverrides(&cfg, overrides)

	return cfg, nil
}

func mergeFile(dst *Config, src Config) {
	if src.Provider != "" {
		dst.Provider = src.Provider
	}
	if src.Model != "" {
		dst.Model = src.Model
	}
	if src.ChunkChars > 0 {
		dst.ChunkChars = src.ChunkChars
	}
	if src.MaxTotalChars > 0 {
		dst.MaxTotalChars = src.MaxTotalChars
	}
	if src.ReportsDir != "" {
		dst.ReportsDir = src.ReportsDir
	}
	if src.ReportBase != "" {
		dst.ReportBase = src.ReportBase
	}
	if len(src.IncludeExts) > 0 {
		dst.IncludeExts = src.IncludeExts
	}
	if len(src.ExcludeExts) > 0 {
		dst.ExcludeExts = src.ExcludeExts
	}
	if len(src.ExcludePatterns) > 0 {
		dst.ExcludePatterns = src.ExcludePatterns
	}
	if src.CredentialFile != "" {
		dst.CredentialFile = src.CredentialFile
	}
	if src.Cache.Dir != "" {
		dst.Cache.Dir = src.Cache.Dir
	}
	if src.Cache.TTLSeconds > 0 {
		dst.Cache.TTLSeconds = src.Cache.TTLSeconds
	}
	dst.Cache.Enabled = src.Cache.Enabled || dst.Cache.Enabled
	if len(src.Privacy.RedactPaths) > 0 {
		dst.Privacy.RedactPaths = src.Privacy.RedactPaths
	}
}

func mergeEnv(cfg *Config) {
	if v := os.Getenv("SECREV_PROVIDER"); v != "" {
		cfg.Provider = v
	}
	if v := os.Getenv("SECREV_MODEL"); v != "" {
		cfg.Model = v
	}
	if v := os.Getenv("SECREV_REPORTS_DIR"); v != "" {
		cfg.ReportsDir = v
	}
	if v := os.Getenv("SECREV_CHUNK_CHARS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.ChunkChars = n
		}
	}
	if v := os.Getenv("SECREV_MAX_TOTAL_CHARS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			cfg.MaxTotalChars = n
		}
	}
}

func mergeOverrides(cfg *Config, overrides map[string]string) {
	if overrides == nil {
		return
	}
	if v, ok := overrides["provider"]; ok && v != "" {
		cfg.Provider = v
	}
	if v, ok := overrides["model"]; ok && v != "" {
		cfg.Model = v
	}
	if v, ok := overrides["chunkChars"]; ok {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.ChunkChars = n
		}
	}
	if v, ok := overrides["maxTotalChars"]; ok {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			cfg.MaxTotalChars = n
		}
	}
	if v, ok := overrides["reportsDir"]; ok && v != "" {
		cfg.ReportsDir = v
	}
	if v, ok := overrides["reportBase"]; ok && v != "" {
		cfg.ReportBase = v
	}
	if v, ok := overrides["credentialFile"]; ok && v != "" {
		cfg.CredentialFile = v
	}
}

// SetField sets a single config field by key name, for `secrev config set`.
func SetField(cfg *Config, key, value string) error {
	switch key {
	case "provider":
		cfg.Provider = value
	case "model":
		cfg.Model = value
	case "reportsDir":
		cfg.ReportsDir = value
	case "reportBase":
		cfg.ReportBase = value
	case "credentialFile":
		cfg.CredentialFile = value
	case "chunkChars":
		n, err := strconv.Atoi(value)
		if err != nil || n <= 0 {
			return fmt.Errorf("chunkChars must be a positive integer")
		}
		cfg.ChunkChars = n
	case "maxTotalChars":
		n, err := strconv.Atoi(value)
		if err != nil || n < 0 {
			return fmt.Errorf("maxTotalChars must be a non-negative integer")
		}
		cfg.MaxTotalChars = n
	default:
		return fmt.Errorf("unknown config key: %s", key)
	}
	return nil
}
