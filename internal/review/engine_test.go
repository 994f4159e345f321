package review

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/401-Nick/SecRev/internal/cache"
	"github.com/401-Nick/SecRev/internal/oracle"
	"github.com/401-Nick/SecRev/internal/scan"
)

// threeChunkFiles writes three files sized so that, with a chunk budget of
// 10, each becomes its own chunk.
func threeChunkFiles(t *testing.T) []scan.FileDescriptor {
	t.Helper()
	dir := t.TempDir()
	var files []scan.FileDescriptor
	for _, name := range []string{"a.py", "b.py", "c.py"} {
		path := filepath.Join(dir, name)
		content := strings.Repeat(string(name[0]), 8) + "\n"
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
		files = append(files, scan.FileDescriptor{Path: path, RelPath: name, Text: true})
	}
	return files
}

func TestRun_AllChunksSucceed(t *testing.T) {
	client := oracle.NewScripted([]oracle.ScriptedResult{
		{Content: `[{"title":"finding one","severity":"high","path":"a.py"}]`},
		{Content: "[]"},
		{Content: "[]"},
	})

	result, err := Run(context.Background(), Options{
		Root:       "/src",
		Files:      threeChunkFiles(t),
		Client:     client,
		Model:      "test",
		ChunkChars: 10,
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if client.Calls != 3 {
		t.Errorf("Calls = %d, want 3", client.Calls)
	}
	if result.UsableChunks() != 3 {
		t.Errorf("UsableChunks = %d, want 3", result.UsableChunks())
	}
	if got := result.CountBySeverity().Total(); got != 1 {
		t.Errorf("total findings = %d, want 1", got)
	}
	if result.FilesScanned != 3 || result.TotalChars != 27 {
		t.Errorf("metadata = %d files %d chars", result.FilesScanned, result.TotalChars)
	}
}

func TestRun_PermanentFailureAbortsRemainingChunks(t *testing.T) {
	client := oracle.NewScripted([]oracle.ScriptedResult{
		{Content: "[]"},
		{Err: &oracle.PermanentError{Status: 401, Message: "bad key"}},
		{Content: "[]"}, // must never be reached
	})

	result, err := Run(context.Background(), Options{
		Root:       "/src",
		Files:      threeChunkFiles(t),
		Client:     client,
		Model:      "test",
		ChunkChars: 10,
	})
	if !oracle.IsPermanent(err) {
		t.Fatalf("Run err = %v, want permanent", err)
	}
	if client.Calls != 2 {
		t.Errorf("Calls = %d, want 2: chunk 3 must not be submitted", client.Calls)
	}

	// The partial result is still renderable: one usable chunk, one failed.
	if result.UsableChunks() != 1 {
		t.Errorf("UsableChunks = %d, want 1", result.UsableChunks())
	}
	if len(result.FailedChunks()) != 1 {
		t.Errorf("FailedChunks = %d, want 1", len(result.FailedChunks()))
	}
}

func TestRun_TransientExhaustionContinues(t *testing.T) {
	client := oracle.NewScripted([]oracle.ScriptedResult{
		{Content: "[]"},
		{Err: &oracle.TransientError{Status: 503, Message: "still down"}},
		{Content: `[{"title":"t"}]`},
	})

	result, err := Run(context.Background(), Options{
		Root:       "/src",
		Files:      threeChunkFiles(t),
		Client:     client,
		Model:      "test",
		ChunkChars: 10,
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if client.Calls != 3 {
		t.Errorf("Calls = %d, want 3: later chunks proceed after a transient-exhausted chunk", client.Calls)
	}
	if result.UsableChunks() != 2 || len(result.FailedChunks()) != 1 {
		t.Errorf("usable=%d failed=%d, want 2/1", result.UsableChunks(), len(result.FailedChunks()))
	}
}

func TestRun_CancellationBetweenChunks(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	client := oracle.NewScripted(nil)
	result, err := Run(ctx, Options{
		Root:       "/src",
		Files:      threeChunkFiles(t),
		Client:     client,
		Model:      "test",
		ChunkChars: 10,
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if client.Calls != 0 {
		t.Errorf("Calls = %d, want 0", client.Calls)
	}
	if !result.Canceled {
		t.Error("Canceled = false, want true")
	}
}

func TestRun_BudgetExhaustionIsNotAnError(t *testing.T) {
	client := oracle.NewScripted(nil)
	result, err := Run(context.Background(), Options{
		Root:          "/src",
		Files:         threeChunkFiles(t),
		Client:        client,
		Model:         "test",
		ChunkChars:    10,
		MaxTotalChars: 12, // a.py (9) fits, b.py would overrun
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !result.BudgetExhausted {
		t.Error("BudgetExhausted = false, want true")
	}
	if client.Calls != 1 {
		t.Errorf("Calls = %d, want 1", client.Calls)
	}
	if result.TotalChars != 9 {
		t.Errorf("TotalChars = %d, want 9", result.TotalChars)
	}
	// Only files actually taken in count as scanned, not all confirmed ones.
	if result.FilesScanned != 1 {
		t.Errorf("FilesScanned = %d, want 1", result.FilesScanned)
	}
}

func TestRun_CacheHitSkipsOracle(t *testing.T) {
	files := threeChunkFiles(t)[:1]
	c, err := cache.New(t.TempDir(), 3600)
	if err != nil {
		t.Fatal(err)
	}

	first := oracle.NewScripted([]oracle.ScriptedResult{
		{Content: `[{"title":"cached finding"}]`},
	})
	if _, err := Run(context.Background(), Options{
		Root: "/src", Files: files, Client: first, Model: "test", ChunkChars: 10, Cache: c,
	}); err != nil {
		t.Fatal(err)
	}
	if first.Calls != 1 {
		t.Fatalf("first run Calls = %d, want 1", first.Calls)
	}

	second := oracle.NewScripted(nil)
	result, err := Run(context.Background(), Options{
		Root: "/src", Files: files, Client: second, Model: "test", ChunkChars: 10, Cache: c,
	})
	if err != nil {
		t.Fatal(err)
	}
	if second.Calls != 0 {
		t.Errorf("second run Calls = %d, want 0 (cache hit)", second.Calls)
	}
	if got := result.CountBySeverity().Total(); got != 1 {
		t.Errorf("cached findings = %d, want 1", got)
	}
}

func TestRun_ProgressOutput(t *testing.T) {
	var buf strings.Builder
	client := oracle.NewScripted(nil)
	if _, err := Run(context.Background(), Options{
		Root:       "/src",
		Files:      threeChunkFiles(t),
		Client:     client,
		Model:      "test",
		ChunkChars: 10,
		Progress:   &buf,
	}); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "Analyzing chunk 1") {
		t.Errorf("progress output missing, got %q", buf.String())
	}
}
