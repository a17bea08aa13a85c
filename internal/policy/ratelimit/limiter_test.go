package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/savetube/savetube/internal/fetch"
	"github.com/savetube/savetube/internal/metrics"
)

func TestWaitAllowsWithinBurst(t *testing.T) {
	t.Parallel()
	metrics.Init()

	l := New(Config{DefaultRPS: 100, DefaultBurst: 2})
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	start := time.Now()
	for i := 0; i < 2; i++ {
		if err := l.Wait(ctx, fetch.PlatformYouTube); err != nil {
			t.Fatalf("Wait() error = %v", err)
		}
	}
	if elapsed := time.Since(start); elapsed > 200*time.Millisecond {
		t.Fatalf("burst waits took %v, expected immediate tokens", elapsed)
	}
}

func TestWaitRespectsContextCancellation(t *testing.T) {
	t.Parallel()
	metrics.Init()

	// Zero burst capacity is replaced by one token, so exhaust it first.
	l := New(Config{DefaultRPS: 0.001, DefaultBurst: 1})
	if err := l.Wait(context.Background(), fetch.PlatformTikTok); err != nil {
		t.Fatalf("first Wait() error = %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if err := l.Wait(ctx, fetch.PlatformTikTok); err == nil {
		t.Fatal("Wait() should fail once the context deadline passes")
	}
}

func TestPlatformsIsolated(t *testing.T) {
	t.Parallel()
	metrics.Init()

	l := New(Config{DefaultRPS: 0.001, DefaultBurst: 1})
	if err := l.Wait(context.Background(), fetch.PlatformYouTube); err != nil {
		t.Fatalf("Wait() error = %v", err)
	}
	// A different platform has its own bucket and an immediate token.
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := l.Wait(ctx, fetch.PlatformInstagram); err != nil {
		t.Fatalf("Wait() for second platform error = %v", err)
	}
}
