package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/speeddate-dev/speeddate/internal/auth"
	"github.com/speeddate-dev/speeddate/internal/middleware"
)

func TestSchedulerRunsJobsUntilCanceled(t *testing.T) {
	var ticks atomic.Int32
	failing := errors.New("boom")

	s := New(
		Job{Name: "count", Interval: 5 * time.Millisecond, Run: func(context.Context) error {
			ticks.Add(1)
			return nil
		}},
		Job{Name: "fail", Interval: 5 * time.Millisecond, Run: func(context.Context) error {
			return failing
		}},
	)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx) }()

	deadline := time.Now().Add(2 * time.Second)
	for ticks.Load() < 3 {
		if time.Now().After(deadline) {
			t.Fatal("job did not run three times")
		}
		time.Sleep(5 * time.Millisecond)
	}

	cancel()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Serve returned %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}

	status := s.Status()
	fail, ok := status["fail"].(map[string]any)
	if !ok {
		t.Fatalf("missing status for failing job: %v", status)
	}
	if fail["last_error"] != "boom" {
		t.Errorf("last_error = %v, want boom", fail["last_error"])
	}
}

func TestAddIgnoresIncompleteJobs(t *testing.T) {
	s := New(
		Job{Name: "no-interval", Run: func(context.Context) error { return nil }},
		Job{Name: "no-run", Interval: time.Second},
	)

	if got := len(s.Status()); got != 0 {
		t.Errorf("registered %d jobs, want 0", got)
	}
}

func TestSessionCleanupJob(t *testing.T) {
	store := auth.NewMemorySessionStore()
	ctx := context.Background()

	live := auth.NewSession(1, "live@example.com", "participant", time.Hour)
	stale := auth.NewSession(2, "stale@example.com", "participant", -time.Minute)
	for _, s := range []*auth.Session{live, stale} {
		if err := store.Create(ctx, s); err != nil {
			t.Fatal(err)
		}
	}

	job := SessionCleanupJob(store)
	if job.Interval != SessionCleanupInterval {
		t.Errorf("interval = %v", job.Interval)
	}
	if err := job.Run(ctx); err != nil {
		t.Fatal(err)
	}

	if _, err := store.Get(ctx, live.ID); err != nil {
		t.Errorf("live session removed: %v", err)
	}
	if _, err := store.Get(ctx, stale.ID); !errors.Is(err, auth.ErrSessionNotFound) {
		t.Errorf("stale session: err = %v, want ErrSessionNotFound", err)
	}
}

func TestLimiterEvictJob(t *testing.T) {
	rl := middleware.NewRateLimiter(60, 1)
	rl.Allow("203.0.113.7")

	if err := LimiterEvictJob(rl).Run(context.Background()); err != nil {
		t.Fatal(err)
	}

	// Fresh entries survive the idle cutoff, so the client is still throttled.
	if rl.Allow("203.0.113.7") {
		t.Error("recent limiter entry was evicted")
	}
}
