package config

import (
	"fmt"
	"strings"

	"github.com/joho/godotenv"
)

// MissingCredentialError is the fatal pre-flight error when no credential
// source yields a value.
type MissingCredentialError struct {
	Provider string
	EnvVars  []string
}

func (e *MissingCredentialError) Error() string {
	return fmt.Sprintf("no API key for provider %q: pass --api-key, set %s, or add it to a .env file",
		e.Provider, strings.Join(e.EnvVars, " or "))
}

// CredentialEnvVars returns the environment variables consulted for a
// provider, highest priority first.
func CredentialEnvVars(provider string) []string {
	switch provider {
	case "gemini", "google":
		return []string{"GEMINI_API_KEY", "GOOGLE_API_KEY"}
	case "anthropic":
		return []string{"ANTHROPIC_API_KEY"}
	case "openai":
		return []string{"OPENAI_API_KEY"}
	default:
		return nil
	}
}

// ResolveCredential resolves an API key for provider. Precedence, highest
// first: explicit flag value, environment variable, secret file (.env
// format), interactive prompt. The first non-empty value wins. prompt may
// be nil for non-interactive runs.
func ResolveCredential(provider, flagValue, secretFile string, getenv func(string) string, prompt func(string) (string, error)) (string, error) {
	if v := strings.TrimSpace(flagValue); v != "" {
		return v, nil
	}

	envVars := CredentialEnvVars(provider)
	for _, name := range envVars {
		if v := strings.TrimSpace(getenv(name)); v != "" {
			return v, nil
		}
	}

	if secretFile == "" {
		secretFile = ".env"
	}
	if vars, err := godotenv.Read(secretFile); err == nil {
		for _, name := range envVars {
			if v := strings.TrimSpace(vars[name]); v != "" {
				return v, nil
			}
		}
	}

	if prompt != nil {
		v, err := prompt(fmt.Sprintf("Enter API key for %s: ", provider))
		if err == nil {
			if v = strings.TrimSpace(v); v != "" {
				return v, nil
			}
		}
	}

	return "", &MissingCredentialError{Provider: provider, EnvVars: envVars}
}
