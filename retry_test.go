package i18nmig

import (
	"context"
	"errors"
	"testing"
	"time"
)

func fastBackoff() Backoff {
	return Backoff{
		MaxRetries: 3,
		BaseDelay:  time.Millisecond,
		MaxDelay:   5 * time.Millisecond,
	}
}

func TestRetry_Success(t *testing.T) {
	calls := 0
	result, err := Retry(context.Background(), fastBackoff(), func() (string, error) {
		calls++
		return "ok", nil
	})

	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if result != "ok" {
		t.Errorf("Expected 'ok', got %q", result)
	}
	if calls != 1 {
		t.Errorf("Expected 1 call, got %d", calls)
	}
}

func TestRetry_RetryableError(t *testing.T) {
	calls := 0
	result, err := Retry(context.Background(), fastBackoff(), func() (string, error) {
		calls++
		if calls < 3 {
			return "", &ProviderError{Message: "rate limited", Retryable: true}
		}
		return "ok", nil
	})

	if err != nil {
		t.Fatalf("Expected no error after retries, got: %v", err)
	}
	if result != "ok" {
		t.Errorf("Expected 'ok', got %q", result)
	}
	if calls != 3 {
		t.Errorf("Expected 3 calls, got %d", calls)
	}
}

func TestRetry_NonRetryableError(t *testing.T) {
	calls := 0
	_, err := Retry(context.Background(), fastBackoff(), func() (string, error) {
		calls++
		return "", &ProviderError{Message: "invalid API key", Retryable: false}
	})

	if err == nil {
		t.Fatal("Expected error")
	}
	if calls != 1 {
		t.Errorf("Expected 1 call for non-retryable error, got %d", calls)
	}
}

func TestRetry_MaxRetriesExceeded(t *testing.T) {
	calls := 0
	_, err := Retry(context.Background(), fastBackoff(), func() (int, error) {
		calls++
		return 0, &ProviderError{Message: "timeout", Retryable: true}
	})

	var providerErr *ProviderError
	if !errors.As(err, &providerErr) {
		t.Fatalf("Expected ProviderError, got %v", err)
	}
	if calls != 4 {
		t.Errorf("Expected 4 calls (1 + 3 retries), got %d", calls)
	}
}

func TestRetry_ContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	b := Backoff{MaxRetries: 5, BaseDelay: time.Second, MaxDelay: time.Second}

	calls := 0
	_, err := Retry(ctx, b, func() (string, error) {
		calls++
		cancel()
		return "", &ProviderError{Message: "timeout", Retryable: true}
	})

	if !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
	if calls != 1 {
		t.Errorf("Expected 1 call, got %d", calls)
	}
}

func TestBackoff_Delay(t *testing.T) {
	b := Backoff{BaseDelay: 100 * time.Millisecond, MaxDelay: time.Second}

	tests := []struct {
		attempt  int
		expected time.Duration
	}{
		{0, 100 * time.Millisecond},
		{1, 200 * time.Millisecond},
		{2, 400 * time.Millisecond},
		{3, 800 * time.Millisecond},
		{4, time.Second},
		{40, time.Second},
	}

	for _, tt := range tests {
		if got := b.Delay(tt.attempt); got != tt.expected {
			t.Errorf("Delay(%d) = %v, want %v", tt.attempt, got, tt.expected)
		}
	}
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{"nil", nil, false},
		{"retryable provider error", &ProviderError{Retryable: true}, true},
		{"non-retryable provider error", &ProviderError{Retryable: false}, false},
		{"plain error", errors.New("boom"), false},
		{"context canceled", context.Canceled, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsRetryable(tt.err); got != tt.expected {
				t.Errorf("IsRetryable(%v) = %v, want %v", tt.err, got, tt.expected)
			}
		})
	}
}

type flakyProvider struct {
	failures int
	calls    int
}

func (p *flakyProvider) Suggest(ctx context.Context, req SuggestRequest) ([]string, error) {
	p.calls++
	if p.calls <= p.failures {
		return nil, &ProviderError{Message: "503", Retryable: true}
	}
	return req.Texts, nil
}

func TestRetryingProvider(t *testing.T) {
	inner := &flakyProvider{failures: 2}
	p := NewRetryingProvider(inner, fastBackoff())

	result, err := p.Suggest(context.Background(), SuggestRequest{Texts: []string{"Hola"}})
	if err != nil {
		t.Fatalf("Suggest failed: %v", err)
	}
	if len(result) != 1 || result[0] != "Hola" {
		t.Errorf("unexpected result: %v", result)
	}
	if inner.calls != 3 {
		t.Errorf("Expected 3 calls, got %d", inner.calls)
	}
}
