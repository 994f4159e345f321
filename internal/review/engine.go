// Package review drives the scan pipeline: packing confirmed files into
// chunks, submitting them to the oracle one at a time, and aggregating the
// outcomes. Submission is strictly sequential in discovery order; this
// bounds API usage and keeps ordering deterministic at the cost of
// wall-clock latency.
package review

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/401-Nick/SecRev/internal/cache"
	"github.com/401-Nick/SecRev/internal/chunk"
	"github.com/401-Nick/SecRev/internal/oracle"
	"github.com/401-Nick/SecRev/internal/report"
	"github.com/401-Nick/SecRev/internal/scan"
)

// maxResponseTokens caps the oracle's output per chunk.
const maxResponseTokens = 8192

// reviewTemperature keeps oracle output conservative and parseable.
const reviewTemperature = 0.2

// Options configures one pipeline run.
type Options struct {
	Root          string
	Files         []scan.FileDescriptor
	Client        oracle.Client
	Model         string
	ChunkChars    int
	MaxTotalChars int // 0 = unlimited
	Cache         *cache.Cache
	RedactSecrets bool
	RedactPaths   []string
	Progress      io.Writer // human progress, typically stderr; nil silences
}

// Run executes the sequential pipeline and returns the aggregated result.
// The returned error is non-nil only for a permanent oracle failure, which
// aborts the remaining chunks; the ScanResult accumulated up to that point
// is still returned and renderable. Cancellation is honored between
// chunks: an in-flight call completes or times out naturally.
func Run(ctx context.Context, opts Options) (*report.ScanResult, error) {
	agg := report.NewAggregator(opts.Client.Name(), opts.Model, opts.Root)
	packer := chunk.NewPacker(opts.Files, opts.ChunkChars, opts.MaxTotalChars)
	instruction := Instruction()

	var permanent error
	canceled := false

	for {
		if ctx.Err() != nil {
			canceled = true
			break
		}

		c, err := packer.Next()
		if err == chunk.ErrBudgetExceeded {
			opts.progressf("[*] Character budget reached (%d chars), stopping intake.\n", packer.TotalChars())
			break
		}
		if c == nil {
			break
		}

		opts.progressf("[*] Analyzing chunk %d (%d chars: %s)...\n",
			c.Index+1, c.Chars, strings.Join(c.Files(), ", "))

		content := BuildChunkContent(c, opts.RedactSecrets, opts.RedactPaths)
		key := cache.BuildKey(opts.Client.Name(), opts.Model, instruction+content)

		if cached, ok := opts.Cache.Get(key); ok {
			opts.progressf("    (cached)\n")
			agg.AddResponse(c, cached)
			continue
		}

		resp, err := opts.Client.Review(ctx, oracle.Request{
			Instruction: instruction,
			Content:     content,
			MaxTokens:   maxResponseTokens,
			Temperature: reviewTemperature,
		})
		if err != nil {
			if ctx.Err() != nil {
				canceled = true
				agg.AddFailure(c, fmt.Errorf("scan canceled: %w", err))
				break
			}
			agg.AddFailure(c, err)
			if oracle.IsPermanent(err) {
				permanent = err
				break
			}
			opts.progressf("    chunk %d failed after retries: %v\n", c.Index+1, err)
			continue
		}

		if err := opts.Cache.Put(key, resp.Content); err != nil {
			opts.progressf("    cache write failed: %v\n", err)
		}
		agg.AddResponse(c, resp.Content)
	}

	result := agg.Finish(packer.FilesScanned(), packer.TotalChars(), packer.Exhausted(), canceled, packer.Warnings())
	return result, permanent
}

func (o Options) progressf(format string, args ...interface{}) {
	if o.Progress == nil {
		return
	}
	fmt.Fprintf(o.Progress, format, args...)
}
