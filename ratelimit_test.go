package i18nmig

import (
	"context"
	"sync"
	"testing"
	"time"
)

// fakeClock lets tests advance the limiter's notion of time.
type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

func newTestLimiter(rpm, burst int) (*RateLimiter, *fakeClock) {
	clock := &fakeClock{t: time.Unix(0, 0)}
	r := NewRateLimiter(rpm, burst)
	r.now = clock.Now
	r.last = clock.Now()
	return r, clock
}

func TestRateLimiter_Burst(t *testing.T) {
	r, _ := newTestLimiter(60, 3)

	for i := 0; i < 3; i++ {
		if !r.Allow() {
			t.Fatalf("request %d should be allowed", i)
		}
	}
	if r.Allow() {
		t.Error("fourth request should be refused")
	}
}

func TestRateLimiter_Refill(t *testing.T) {
	r, clock := newTestLimiter(60, 1) // one token per second

	if !r.Allow() {
		t.Fatal("first request should be allowed")
	}
	if r.Allow() {
		t.Fatal("bucket should be empty")
	}

	clock.Advance(500 * time.Millisecond)
	if wait := r.reserve(); wait != 500*time.Millisecond {
		t.Errorf("reserve() = %v, want 500ms", wait)
	}

	clock.Advance(500 * time.Millisecond)
	if !r.Allow() {
		t.Error("token should be available after one second")
	}
}

func TestRateLimiter_CapsAtCapacity(t *testing.T) {
	r, clock := newTestLimiter(60, 2)

	clock.Advance(time.Hour)
	allowed := 0
	for r.Allow() {
		allowed++
	}
	if allowed != 2 {
		t.Errorf("allowed %d requests after idle period, want 2", allowed)
	}
}

func TestRateLimiter_WaitCancelled(t *testing.T) {
	r := NewRateLimiter(1, 1)
	r.Allow() // drain

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	if err := r.Wait(ctx); err == nil {
		t.Error("Expected error when context cancelled")
	}
}

func TestRateLimiter_Wait(t *testing.T) {
	r := NewRateLimiter(6000, 1) // 100 per second

	ctx := context.Background()
	if err := r.Wait(ctx); err != nil {
		t.Fatal(err)
	}

	start := time.Now()
	if err := r.Wait(ctx); err != nil {
		t.Fatal(err)
	}
	if elapsed := time.Since(start); elapsed < 5*time.Millisecond {
		t.Errorf("Expected to wait for a token, returned in %v", elapsed)
	}
}

type countingProvider struct {
	mu    sync.Mutex
	calls int
}

func (p *countingProvider) Suggest(ctx context.Context, req SuggestRequest) ([]string, error) {
	p.mu.Lock()
	p.calls++
	p.mu.Unlock()
	return req.Texts, nil
}

func TestRateLimitedProvider_ContextCancelled(t *testing.T) {
	inner := &countingProvider{}
	p := NewRateLimitedProvider(inner, 1, 1)

	if _, err := p.Suggest(context.Background(), SuggestRequest{Texts: []string{"a"}}); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	if _, err := p.Suggest(ctx, SuggestRequest{Texts: []string{"b"}}); err == nil {
		t.Error("Expected error when context cancelled")
	}
	if inner.calls != 1 {
		t.Errorf("inner provider called %d times, want 1", inner.calls)
	}
}
