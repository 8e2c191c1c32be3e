package i18nmig

import (
	"context"
	"errors"
	"time"
)

// Backoff describes exponential retry behavior for provider calls.
type Backoff struct {
	MaxRetries int           // Retries after the first attempt
	BaseDelay  time.Duration // Delay before the first retry
	MaxDelay   time.Duration // Upper bound for any single delay
}

// DefaultBackoff returns three retries starting at one second.
func DefaultBackoff() Backoff {
	return Backoff{
		MaxRetries: 3,
		BaseDelay:  time.Second,
		MaxDelay:   30 * time.Second,
	}
}

// Delay returns the wait before retry number attempt (0-based).
func (b Backoff) Delay(attempt int) time.Duration {
	d := b.BaseDelay
	for i := 0; i < attempt; i++ {
		d *= 2
		if b.MaxDelay > 0 && d >= b.MaxDelay {
			return b.MaxDelay
		}
	}
	return d
}

// Retry calls fn until it succeeds, fails with a non-retryable error, or the
// retries are used up. It returns the last error.
func Retry[T any](ctx context.Context, b Backoff, fn func() (T, error)) (T, error) {
	var zero T

	for attempt := 0; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return zero, err
		}

		result, err := fn()
		if err == nil {
			return result, nil
		}
		if !IsRetryable(err) || attempt >= b.MaxRetries {
			return zero, err
		}

		timer := time.NewTimer(b.Delay(attempt))
		select {
		case <-ctx.Done():
			timer.Stop()
			return zero, ctx.Err()
		case <-timer.C:
		}
	}
}

// IsRetryable reports whether err is a provider error marked retryable.
func IsRetryable(err error) bool {
	var providerErr *ProviderError
	if errors.As(err, &providerErr) {
		return providerErr.Retryable
	}
	return false
}

// RetryingProvider wraps an AIProvider with Retry.
type RetryingProvider struct {
	provider AIProvider
	backoff  Backoff
}

// NewRetryingProvider creates a provider that retries transient failures.
func NewRetryingProvider(provider AIProvider, b Backoff) *RetryingProvider {
	return &RetryingProvider{provider: provider, backoff: b}
}

// Suggest implements AIProvider.
func (p *RetryingProvider) Suggest(ctx context.Context, req SuggestRequest) ([]string, error) {
	return Retry(ctx, p.backoff, func() ([]string, error) {
		return p.provider.Suggest(ctx, req)
	})
}

var _ AIProvider = (*RetryingProvider)(nil)
