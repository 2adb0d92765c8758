// Package scheduler runs periodic maintenance jobs: expired session cleanup,
// session store compaction and rate limiter eviction.
package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/speeddate-dev/speeddate/internal/logging"
)

// Job is one periodic task. Run should return promptly once ctx is done.
type Job struct {
	Name     string
	Interval time.Duration
	Run      func(ctx context.Context) error
}

type Scheduler struct {
	mu   sync.RWMutex
	jobs map[string]*jobState
}

type jobState struct {
	job     Job
	runs    int
	lastErr error
	lastRun time.Time
}

func New(jobs ...Job) *Scheduler {
	s := &Scheduler{jobs: make(map[string]*jobState)}
	for _, job := range jobs {
		s.Add(job)
	}
	return s
}

// Add registers a job. Jobs with a non-positive interval or no Run func are
// ignored. Adding a job with an existing name replaces it on the next Serve.
func (s *Scheduler) Add(job Job) {
	if job.Interval <= 0 || job.Run == nil {
		logging.Warn().Str("job", job.Name).Msg("skipping job without interval or run func")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.Name] = &jobState{job: job}
}

// Serve runs every job on its own ticker until ctx is canceled.
func (s *Scheduler) Serve(ctx context.Context) error {
	s.mu.RLock()
	states := make([]*jobState, 0, len(s.jobs))
	for _, state := range s.jobs {
		states = append(states, state)
	}
	s.mu.RUnlock()

	logging.Info().Int("jobs", len(states)).Msg("scheduler started")

	var wg sync.WaitGroup
	for _, state := range states {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.runJob(ctx, state)
		}()
	}

	wg.Wait()
	logging.Info().Msg("scheduler stopped")
	return ctx.Err()
}

func (s *Scheduler) String() string {
	return "scheduler"
}

func (s *Scheduler) runJob(ctx context.Context, state *jobState) {
	ticker := time.NewTicker(state.job.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.executeJob(ctx, state)
		}
	}
}

func (s *Scheduler) executeJob(ctx context.Context, state *jobState) {
	start := time.Now()
	err := state.job.Run(ctx)

	s.mu.Lock()
	state.runs++
	state.lastErr = err
	state.lastRun = start
	s.mu.Unlock()

	if err != nil {
		logging.Warn().Err(err).Str("job", state.job.Name).Msg("maintenance job failed")
		return
	}
	logging.Debug().Str("job", state.job.Name).Dur("took", time.Since(start)).Msg("maintenance job finished")
}

// Status reports how often each job has run and its last error, if any.
func (s *Scheduler) Status() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]any, len(s.jobs))
	for name, state := range s.jobs {
		entry := map[string]any{"runs": state.runs}
		if !state.lastRun.IsZero() {
			entry["last_run"] = state.lastRun
		}
		if state.lastErr != nil {
			entry["last_error"] = state.lastErr.Error()
		}
		out[name] = entry
	}
	return out
}
