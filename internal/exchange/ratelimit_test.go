package exchange

import (
	"context"
	"testing"
	"time"
)

func TestNewRateLimiterBurstAllowsImmediateAdmission(t *testing.T) {
	t.Parallel()
	rl := NewRateLimiter()

	for i := 0; i < 5; i++ {
		start := time.Now()
		if err := rl.Book.Wait(context.Background()); err != nil {
			t.Fatalf("Wait() returned error: %v", err)
		}
		if elapsed := time.Since(start); elapsed > 50*time.Millisecond {
			t.Errorf("Wait() took %v, expected immediate admission from burst (iter %d)", elapsed, i)
		}
	}
}

func TestRateLimiterBlocksOnceBurstExhausted(t *testing.T) {
	t.Parallel()
	rl := NewRateLimiter()

	// Drain the book bucket's burst allowance (150 tokens).
	for i := 0; i < 150; i++ {
		if err := rl.Book.Wait(context.Background()); err != nil {
			t.Fatalf("Wait() returned error at token %d: %v", i, err)
		}
	}

	start := time.Now()
	if err := rl.Book.Wait(context.Background()); err != nil {
		t.Fatalf("Wait() returned error: %v", err)
	}
	// refill at 15/sec -> next token in ~67ms
	if elapsed := time.Since(start); elapsed < 20*time.Millisecond {
		t.Errorf("expected blocking wait once burst was exhausted, got %v", elapsed)
	}
}

func TestRateLimiterWaitRespectsContextCancellation(t *testing.T) {
	t.Parallel()
	rl := NewRateLimiter()

	for i := 0; i < 350; i++ {
		if err := rl.Order.Wait(context.Background()); err != nil {
			t.Fatalf("Wait() returned error at token %d: %v", i, err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	if err := rl.Order.Wait(ctx); err == nil {
		t.Error("expected context deadline error, got nil")
	}
}
