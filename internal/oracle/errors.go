package oracle

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"
)

// maxAttempts bounds retries of transient failures per chunk.
const maxAttempts = 3

// TransientError is a failure worth retrying: network timeout, rate limit,
// or a server-side (5xx-equivalent) error.
type TransientError struct {
	Status  int
	Message string
}

func (e *TransientError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("transient oracle failure (status %d): %s", e.Status, e.Message)
	}
	return "transient oracle failure: " + e.Message
}

// PermanentError is a failure that retrying cannot fix: invalid
// credentials, exhausted quota, or a malformed request. It aborts the
// remaining run.
type PermanentError struct {
	Status  int
	Message string
}

func (e *PermanentError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("permanent oracle failure (status %d): %s", e.Status, e.Message)
	}
	return "permanent oracle failure: " + e.Message
}

// IsPermanent reports whether err should abort the remaining run.
func IsPermanent(err error) bool {
	var pe *PermanentError
	return errors.As(err, &pe)
}

// IsTransient reports whether err is retryable.
func IsTransient(err error) bool {
	var te *TransientError
	return errors.As(err, &te)
}

// classifyStatus maps an HTTP status to the failure taxonomy. nil means the
// status is not an error.
func classifyStatus(status int, body string) error {
	switch {
	case status == 200:
		return nil
	case status == 429 || status >= 500:
		return &TransientError{Status: status, Message: body}
	default:
		return &PermanentError{Status: status, Message: body}
	}
}

// classifyTransport wraps transport-level failures. Timeouts and
// temporary network conditions are transient; anything else is permanent
// (typically a malformed request or unreachable configuration).
func classifyTransport(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) {
		return err
	}
	var ne net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &ne) && ne.Timeout()) {
		return &TransientError{Message: err.Error()}
	}
	var oe *net.OpError
	if errors.As(err, &oe) {
		return &TransientError{Message: err.Error()}
	}
	return &PermanentError{Message: err.Error()}
}

// retryWithBackoff runs fn up to maxAttempts times, sleeping exponentially
// between transient failures. Permanent failures and context cancellation
// return immediately. No other work proceeds during a backoff wait.
func retryWithBackoff(ctx context.Context, fn func() error) error {
	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		lastErr = fn()
		if lastErr == nil || !IsTransient(lastErr) {
			return lastErr
		}
		if attempt < maxAttempts-1 {
			backoff := time.Duration(1<<uint(attempt)) * time.Second
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
		}
	}
	return lastErr
}
