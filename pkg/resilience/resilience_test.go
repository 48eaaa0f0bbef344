package resilience

import (
	"context"
	"errors"
	"testing"
	"time"
)

var errFake = errors.New("fake failure")

func failing(context.Context) error { return errFake }
func succeeding(context.Context) error { return nil }

func TestBreakerTripsAfterThreshold(t *testing.T) {
	b := NewBreaker(BreakerOpts{FailThreshold: 3, Timeout: time.Minute})
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if err := b.Call(ctx, failing); !errors.Is(err, errFake) {
			t.Fatalf("call %d: %v", i, err)
		}
	}
	if b.State() != StateOpen {
		t.Fatalf("state = %v, want open", b.State())
	}
	if err := b.Call(ctx, succeeding); !errors.Is(err, ErrCircuitOpen) {
		t.Errorf("open breaker let a call through: %v", err)
	}
}

func TestBreakerHalfOpenRecovery(t *testing.T) {
	b := NewBreaker(BreakerOpts{FailThreshold: 1, Timeout: time.Minute})
	clock := time.Now()
	b.now = func() time.Time { return clock }
	ctx := context.Background()

	b.Call(ctx, failing)
	if b.State() != StateOpen {
		t.Fatal("breaker should be open")
	}

	clock = clock.Add(2 * time.Minute)
	if b.State() != StateHalfOpen {
		t.Fatalf("state after timeout = %v, want half-open", b.State())
	}
	if err := b.Call(ctx, succeeding); err != nil {
		t.Fatalf("probe call failed: %v", err)
	}
	if b.State() != StateClosed {
		t.Errorf("state after successful probe = %v, want closed", b.State())
	}
}

func TestBreakerHalfOpenFailureReopens(t *testing.T) {
	b := NewBreaker(BreakerOpts{FailThreshold: 1, Timeout: time.Minute})
	clock := time.Now()
	b.now = func() time.Time { return clock }
	ctx := context.Background()

	b.Call(ctx, failing)
	clock = clock.Add(2 * time.Minute)
	b.Call(ctx, failing)
	if b.State() != StateOpen {
		t.Errorf("state after failed probe = %v, want open", b.State())
	}
}

func TestLimiterAllow(t *testing.T) {
	l := NewLimiter(LimiterOpts{Rate: 1, Burst: 2})
	if !l.Allow() || !l.Allow() {
		t.Fatal("burst tokens should be available")
	}
	if l.Allow() {
		t.Error("third immediate call should be limited")
	}
}

func TestLimiterRefill(t *testing.T) {
	l := NewLimiter(LimiterOpts{Rate: 10, Burst: 1})
	clock := time.Now()
	l.now = func() time.Time { return clock }

	if !l.Allow() {
		t.Fatal("first token missing")
	}
	if l.Allow() {
		t.Fatal("bucket should be empty")
	}
	clock = clock.Add(200 * time.Millisecond)
	if !l.Allow() {
		t.Error("token not refilled after elapsed time")
	}
}

func TestLimiterWaitCancelled(t *testing.T) {
	l := NewLimiter(LimiterOpts{Rate: 0.001, Burst: 1})
	l.Allow() // drain

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if err := l.Wait(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Wait = %v, want deadline exceeded", err)
	}
}

func TestLimiterZeroValueOptsDefaulted(t *testing.T) {
	l := NewLimiter(LimiterOpts{})
	if !l.Allow() {
		t.Fatal("defaulted burst should allow the first call")
	}
	// Rate defaults to one token per second; after a second the bucket
	// refills instead of dividing the wait by zero.
	clock := time.Now()
	l.now = func() time.Time { return clock }
	l.Allow() // pins l.last to the fake clock
	clock = clock.Add(time.Second)
	if !l.Allow() {
		t.Error("defaulted rate never refills")
	}
}
