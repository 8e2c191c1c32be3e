package i18nmig

import (
	"context"
	"sync"
	"time"
)

// RateLimiter is a token bucket limiting provider requests per minute.
type RateLimiter struct {
	mu       sync.Mutex
	tokens   float64
	capacity float64
	perSec   float64
	last     time.Time
	now      func() time.Time
}

// NewRateLimiter creates a limiter allowing rpm requests per minute with
// bursts of up to burst requests. Non-positive values default to 60 rpm and
// a burst equal to rpm.
func NewRateLimiter(rpm, burst int) *RateLimiter {
	if rpm <= 0 {
		rpm = 60
	}
	if burst <= 0 {
		burst = rpm
	}
	return &RateLimiter{
		tokens:   float64(burst),
		capacity: float64(burst),
		perSec:   float64(rpm) / 60,
		last:     time.Now(),
		now:      time.Now,
	}
}

// reserve takes a token if one is available, otherwise returns how long
// until one will be.
func (r *RateLimiter) reserve() time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	r.tokens = min(r.capacity, r.tokens+now.Sub(r.last).Seconds()*r.perSec)
	r.last = now

	if r.tokens >= 1 {
		r.tokens--
		return 0
	}
	return time.Duration((1 - r.tokens) / r.perSec * float64(time.Second))
}

// Wait blocks until a token is taken or ctx is done.
func (r *RateLimiter) Wait(ctx context.Context) error {
	for {
		wait := r.reserve()
		if wait == 0 {
			return nil
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// Allow takes a token without blocking and reports whether it succeeded.
func (r *RateLimiter) Allow() bool {
	return r.reserve() == 0
}

// RateLimitedProvider wraps an AIProvider with a RateLimiter.
type RateLimitedProvider struct {
	provider AIProvider
	limiter  *RateLimiter
}

// NewRateLimitedProvider creates a provider limited to rpm requests per
// minute.
func NewRateLimitedProvider(provider AIProvider, rpm, burst int) *RateLimitedProvider {
	return &RateLimitedProvider{provider: provider, limiter: NewRateLimiter(rpm, burst)}
}

// Suggest implements AIProvider.
func (p *RateLimitedProvider) Suggest(ctx context.Context, req SuggestRequest) ([]string, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, &ProviderError{Message: "rate limit wait cancelled", Cause: err}
	}
	return p.provider.Suggest(ctx, req)
}

var _ AIProvider = (*RateLimitedProvider)(nil)
