package oracle

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestClassifyStatus(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		transient bool
		permanent bool
	}{
		{"ok", 200, false, false},
		{"rate limited", 429, true, false},
		{"server error", 500, true, false},
		{"bad gateway", 502, true, false},
		{"bad request", 400, false, true},
		{"unauthorized", 401, false, true},
		{"forbidden", 403, false, true},
		{"not found", 404, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := classifyStatus(tt.status, "body")
			if tt.status == 200 {
				if err != nil {
					t.Fatalf("classifyStatus(200) = %v, want nil", err)
				}
				return
			}
			if got := IsTransient(err); got != tt.transient {
				t.Errorf("IsTransient = %v, want %v", got, tt.transient)
			}
			if got := IsPermanent(err); got != tt.permanent {
				t.Errorf("IsPermanent = %v, want %v", got, tt.permanent)
			}
		})
	}
}

func TestClassifyTransport(t *testing.T) {
	if err := classifyTransport(nil); err != nil {
		t.Errorf("classifyTransport(nil) = %v, want nil", err)
	}
	if err := classifyTransport(context.Canceled); !errors.Is(err, context.Canceled) {
		t.Errorf("cancellation should pass through, got %v", err)
	}
	if err := classifyTransport(context.DeadlineExceeded); !IsTransient(err) {
		t.Errorf("deadline should be transient, got %v", err)
	}
	if err := classifyTransport(errors.New("tls: handshake failure")); !IsPermanent(err) {
		t.Errorf("unknown transport error should be permanent, got %v", err)
	}
}

func TestClassifyAdapterErrors_MalformedReplyIsTransient(t *testing.T) {
	classifiers := map[string]func(error) error{
		"anthropic": classifyAnthropic,
		"openai":    classifyOpenAI,
	}
	for name, classify := range classifiers {
		if err := classify(errors.New("unexpected EOF")); !IsTransient(err) {
			t.Errorf("%s: a truncated reply should classify transient, got %v", name, err)
		}
		if err := classify(context.Canceled); !errors.Is(err, context.Canceled) {
			t.Errorf("%s: cancellation should pass through, got %v", name, err)
		}
	}
}

func TestRetryWithBackoff_TransientThenSuccess(t *testing.T) {
	calls := 0
	err := retryWithBackoff(context.Background(), func() error {
		calls++
		if calls == 1 {
			return &TransientError{Status: 429, Message: "slow down"}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("retryWithBackoff = %v, want nil", err)
	}
	if calls != 2 {
		t.Errorf("calls = %d, want 2", calls)
	}
}

func TestRetryWithBackoff_PermanentNoRetry(t *testing.T) {
	calls := 0
	err := retryWithBackoff(context.Background(), func() error {
		calls++
		return &PermanentError{Status: 401, Message: "bad key"}
	})
	if !IsPermanent(err) {
		t.Fatalf("retryWithBackoff = %v, want permanent", err)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1: permanent failures must not be retried", calls)
	}
}

func TestRetryWithBackoff_ExhaustsAttempts(t *testing.T) {
	calls := 0
	err := retryWithBackoff(context.Background(), func() error {
		calls++
		return &TransientError{Status: 503, Message: "down"}
	})
	if !IsTransient(err) {
		t.Fatalf("retryWithBackoff = %v, want transient after exhaustion", err)
	}
	if calls != maxAttempts {
		t.Errorf("calls = %d, want %d", calls, maxAttempts)
	}
}

func TestRetryWithBackoff_ContextCanceledDuringBackoff(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()
	err := retryWithBackoff(ctx, func() error {
		calls++
		return &TransientError{Status: 429, Message: "slow down"}
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("retryWithBackoff = %v, want context.Canceled", err)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestNew_UnknownProvider(t *testing.T) {
	if _, err := New("cohere", "model", "key"); err == nil {
		t.Error("New(cohere) should fail")
	}
}

func TestRequiresCredential(t *testing.T) {
	for _, provider := range []string{"gemini", "google", "anthropic", "openai"} {
		if !RequiresCredential(provider) {
			t.Errorf("RequiresCredential(%q) = false, want true", provider)
		}
	}
	if RequiresCredential("scripted") {
		t.Error("RequiresCredential(scripted) = true, want false")
	}
}
