package jobs

import (
	"context"
	"log"
	"time"
)

type Sweeper interface {
	Sweep() int
}

// StartSessionSweepJob periodically drops expired sessions from an in-memory
// registry. Redis-backed registries expire keys on their own and need no job.
func StartSessionSweepJob(ctx context.Context, interval time.Duration, sweeper Sweeper) {
	if sweeper == nil {
		log.Printf("session sweep job disabled: no in-memory registry")
		return
	}
	if interval <= 0 {
		interval = time.Minute
	}

	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if removed := sweeper.Sweep(); removed > 0 {
					log.Printf("session sweep job removed %d expired sessions", removed)
				}
			}
		}
	}()
}
