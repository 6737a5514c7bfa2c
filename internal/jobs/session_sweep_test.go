package jobs

import (
	"context"
	"sync/atomic"
	"testing"
	"time"
)

type countingSweeper struct {
	calls atomic.Int32
}

func (s *countingSweeper) Sweep() int {
	s.calls.Add(1)
	return 0
}

func TestSessionSweepJobTicksUntilCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	sweeper := &countingSweeper{}
	StartSessionSweepJob(ctx, 5*time.Millisecond, sweeper)

	deadline := time.Now().Add(2 * time.Second)
	for sweeper.calls.Load() < 2 {
		if time.Now().After(deadline) {
			t.Fatalf("expected sweep job to tick")
		}
		time.Sleep(5 * time.Millisecond)
	}
	cancel()
}

func TestSessionSweepJobNilSweeper(t *testing.T) {
	StartSessionSweepJob(context.Background(), time.Millisecond, nil)
}
