package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/401-Nick/SecRev/internal/cache"
	"github.com/401-Nick/SecRev/internal/config"
	"github.com/401-Nick/SecRev/internal/oracle"
	"github.com/401-Nick/SecRev/internal/report"
	"github.com/401-Nick/SecRev/internal/review"
	"github.com/401-Nick/SecRev/internal/scan"
)

// consoleSummaryLimit truncates the report echoed to stdout.
const consoleSummaryLimit = 3000

var (
	flagDir            string
	flagProvider       string
	flagModel          string
	flagAPIKey         string
	flagReportsDir     string
	flagReportBase     string
	flagIncludeExts    string
	flagExcludeExts    string
	flagExcludeFiles   string
	flagChunkSize      int
	flagMaxTotalChars  int
	flagCredentialFile string
	flagYes            bool
	flagNoCache        bool
	flagNoRedact       bool
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Scan a directory tree for security findings",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(buildOverrides(cmd))
		if err != nil {
			return err
		}
		runScan(cmd, cfg)
		return nil
	},
}

func buildOverrides(cmd *cobra.Command) map[string]string {
	m := make(map[string]string)
	if flagProvider != "" {
		m["provider"] = flagProvider
	}
	if flagModel != "" {
		m["model"] = flagModel
	}
	if flagReportsDir != "" {
		m["reportsDir"] = flagReportsDir
	}
	if flagReportBase != "" {
		m["reportBase"] = flagReportBase
	}
	if flagCredentialFile != "" {
		m["credentialFile"] = flagCredentialFile
	}
	if cmd.Flags().Changed("chunk-size") {
		m["chunkChars"] = fmt.Sprintf("%d", flagChunkSize)
	}
	// 0 is meaningful here (unlimited), so only an explicitly set flag counts.
	if cmd.Flags().Changed("max-total-chars") {
		m["maxTotalChars"] = fmt.Sprintf("%d", flagMaxTotalChars)
	}
	return m
}

func runScan(cmd *cobra.Command, cfg config.Config) {
	// Pre-flight: policy, root, credential. All of these abort before any
	// oracle call and produce no report.
	include := append(splitComma(flagIncludeExts), cfg.IncludeExts...)
	excludeExts := append(splitComma(flagExcludeExts), cfg.ExcludeExts...)
	excludeFiles := append(splitComma(flagExcludeFiles), cfg.ExcludePatterns...)

	policy, err := scan.NewFilterPolicy(include, excludeExts, excludeFiles)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		exitCode = ExitUsageError
		return
	}

	files, err := scan.Discover(flagDir, policy)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		exitCode = ExitUsageError
		return
	}
	if len(files) == 0 {
		fmt.Fprintln(os.Stderr, "[*] No files found to scan based on the criteria.")
		return
	}
	fmt.Fprintf(os.Stderr, "[*] Discovered %d candidate file(s) in %s\n", len(files), flagDir)

	var apiKey string
	if oracle.RequiresCredential(cfg.Provider) {
		var prompt func(string) (string, error)
		if !flagYes {
			prompt = promptLine
		}
		apiKey, err = config.ResolveCredential(cfg.Provider, flagAPIKey, cfg.CredentialFile, os.Getenv, prompt)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			exitCode = ExitAuthError
			return
		}
	}

	client, err := oracle.New(cfg.Provider, cfg.Model, apiKey)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		exitCode = ExitAuthError
		return
	}

	// Human review stage. Cancellation here aborts before any oracle call.
	var confirmer scan.Confirmer = scan.AcceptAll{}
	if !flagYes {
		confirmer = NewTerminalConfirmer(os.Stdin, os.Stdout, policy)
	} else {
		fmt.Fprintf(os.Stderr, "[*] Skipping interactive review, proceeding with all %d file(s).\n", len(files))
	}
	confirmation, err := confirmer.Confirm(files)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		exitCode = ExitRuntimeError
		return
	}
	if confirmation.Canceled {
		fmt.Fprintln(os.Stderr, "[*] Scan aborted by user.")
		return
	}
	if len(confirmation.Files) == 0 {
		fmt.Fprintln(os.Stderr, "[*] No files selected for analysis.")
		return
	}
	if len(confirmation.SuppressedExts) > 0 {
		fmt.Fprintf(os.Stderr, "[*] Excluding for this run: %s\n", strings.Join(confirmation.SuppressedExts, " "))
	}

	var respCache *cache.Cache
	if cfg.Cache.Enabled && !flagNoCache {
		respCache, err = cache.New(cfg.Cache.Dir, cfg.Cache.TTLSeconds)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: cache unavailable: %v\n", err)
		}
	}

	if flagNoRedact {
		cfg.Privacy.RedactSecrets = false
		fmt.Fprintln(os.Stderr, "WARNING: secret redaction is disabled")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	result, runErr := review.Run(ctx, review.Options{
		Root:          flagDir,
		Files:         confirmation.Files,
		Client:        client,
		Model:         cfg.Model,
		ChunkChars:    cfg.ChunkChars,
		MaxTotalChars: cfg.MaxTotalChars,
		Cache:         respCache,
		RedactSecrets: cfg.Privacy.RedactSecrets,
		RedactPaths:   cfg.Privacy.RedactPaths,
		Progress:      os.Stderr,
	})

	if runErr != nil {
		fmt.Fprintf(os.Stderr, "Error: remaining chunks aborted: %v\n", runErr)
	}

	mdPath, txtPath, err := report.WriteArtifacts(result, cfg.ReportsDir, cfg.ReportBase)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error writing reports: %v\n", err)
		exitCode = ExitRuntimeError
		return
	}

	printConsoleSummary(result, mdPath, txtPath)

	// A permanent oracle failure with nothing usable is a failed run; any
	// usable chunk means the reports carry real results.
	if runErr != nil && result.UsableChunks() == 0 {
		if isAuthFailure(runErr) {
			exitCode = ExitAuthError
		} else {
			exitCode = ExitRuntimeError
		}
	}
}

func printConsoleSummary(result *report.ScanResult, mdPath, txtPath string) {
	var buf strings.Builder
	if err := (&report.TextRenderer{}).Render(&buf, result); err == nil {
		summary := buf.String()
		if len(summary) > consoleSummaryLimit {
			summary = summary[:consoleSummaryLimit] + "\n... (full report saved to file)"
		}
		fmt.Fprintln(os.Stdout, summary)
	}
	fmt.Fprintf(os.Stdout, "[*] Markdown report saved to: %s\n", mdPath)
	fmt.Fprintf(os.Stdout, "[*] Text report saved to: %s\n", txtPath)
	fmt.Fprintf(os.Stdout, "[*] Scan complete. Total characters processed: %d\n", result.TotalChars)
}

func isAuthFailure(err error) bool {
	var pe *oracle.PermanentError
	if errors.As(err, &pe) {
		return pe.Status == 401 || pe.Status == 403
	}
	return false
}

func promptLine(label string) (string, error) {
	fmt.Fprint(os.Stderr, label)
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func splitComma(s string) []string {
	if s == "" {
		return nil
	}
	var result []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			result = append(result, p)
		}
	}
	return result
}

func init() {
	scanCmd.Flags().StringVarP(&flagDir, "dir", "d", "", "Path to the codebase directory to scan")
	scanCmd.Flags().StringVar(&flagProvider, "provider", "", "Oracle provider (gemini, anthropic, openai, scripted)")
	scanCmd.Flags().StringVarP(&flagModel, "model", "m", "", "Model name")
	scanCmd.Flags().StringVarP(&flagAPIKey, "api-key", "k", "", "API key (overrides env and .env)")
	scanCmd.Flags().StringVar(&flagReportsDir, "reports-dir", "", "Directory to save report files")
	scanCmd.Flags().StringVarP(&flagReportBase, "output-base", "o", "", "Base name for the report files")
	scanCmd.Flags().StringVar(&flagIncludeExts, "include-extensions", "", "Comma-separated extensions/names to include (replaces defaults)")
	scanCmd.Flags().StringVar(&flagExcludeExts, "exclude-extensions", "", "Comma-separated extensions to exclude (adds to defaults)")
	scanCmd.Flags().StringVar(&flagExcludeFiles, "exclude-files", "", "Comma-separated filenames or directory names to exclude (adds to defaults)")
	scanCmd.Flags().IntVar(&flagChunkSize, "chunk-size", 0, "Max characters per chunk")
	scanCmd.Flags().IntVar(&flagMaxTotalChars, "max-total-chars", 0, "Limit on total characters processed (0 = unlimited)")
	scanCmd.Flags().StringVar(&flagCredentialFile, "credential-file", "", "Path to a .env-style file holding the API key")
	scanCmd.Flags().BoolVarP(&flagYes, "yes", "y", false, "Skip the interactive file review")
	scanCmd.Flags().BoolVar(&flagNoCache, "no-cache", false, "Disable the oracle response cache")
	scanCmd.Flags().BoolVar(&flagNoRedact, "no-redact", false, "Disable secret redaction (use with caution)")
	_ = scanCmd.MarkFlagRequired("dir")
}
