package service

import (
	"context"
	"math/rand"
	"sync"
	"time"
)

// Latency is a uniform delay range [Min, Max).
type Latency struct {
	Min time.Duration
	Max time.Duration
}

type LatencyProfile struct {
	Authorize Latency
	Read      Latency
	Scan      Latency
}

func DefaultLatency() LatencyProfile {
	return LatencyProfile{
		Authorize: Latency{Min: 300 * time.Millisecond, Max: 600 * time.Millisecond},
		Read:      Latency{Min: 200 * time.Millisecond, Max: 400 * time.Millisecond},
		Scan:      Latency{Min: 100 * time.Millisecond, Max: 300 * time.Millisecond},
	}
}

type waiter struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func newWaiter() *waiter {
	return &waiter{rng: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

func (w *waiter) pick(l Latency) time.Duration {
	if l.Max <= l.Min {
		return l.Min
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	return l.Min + time.Duration(w.rng.Int63n(int64(l.Max-l.Min)))
}

func (w *waiter) sleep(ctx context.Context, l Latency) error {
	d := w.pick(l)
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
