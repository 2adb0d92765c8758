package scheduler

import (
	"context"
	"time"

	"github.com/speeddate-dev/speeddate/internal/auth"
	"github.com/speeddate-dev/speeddate/internal/logging"
	"github.com/speeddate-dev/speeddate/internal/middleware"
)

const (
	SessionCleanupInterval = 10 * time.Minute
	ValueLogGCInterval     = time.Hour
	LimiterEvictInterval   = 10 * time.Minute
	limiterMaxIdle         = 30 * time.Minute
)

// SessionCleanupJob deletes expired sessions from store.
func SessionCleanupJob(store auth.SessionStore) Job {
	return Job{
		Name:     "session-cleanup",
		Interval: SessionCleanupInterval,
		Run: func(ctx context.Context) error {
			n, err := store.CleanupExpired(ctx)
			if err != nil {
				return err
			}
			if n > 0 {
				logging.Info().Int("removed", n).Msg("expired sessions removed")
			}
			return nil
		},
	}
}

// ValueLogGCJob compacts the badger value log behind the session store.
func ValueLogGCJob(store *auth.BadgerSessionStore) Job {
	return Job{
		Name:     "session-value-log-gc",
		Interval: ValueLogGCInterval,
		Run: func(context.Context) error {
			return store.RunValueLogGC()
		},
	}
}

// LimiterEvictJob forgets clients the rate limiter has not seen recently.
func LimiterEvictJob(rl *middleware.RateLimiter) Job {
	return Job{
		Name:     "rate-limiter-evict",
		Interval: LimiterEvictInterval,
		Run: func(context.Context) error {
			if n := rl.Evict(limiterMaxIdle); n > 0 {
				logging.Debug().Int("evicted", n).Msg("idle rate limiter entries evicted")
			}
			return nil
		},
	}
}
