package view

import (
	"context"
	"sync"
	"testing"
	"time"

	"schoolmon/internal/db"
	"schoolmon/internal/model"
	"schoolmon/internal/service"
	"schoolmon/internal/session"
	"schoolmon/internal/tokens"
)

type fakeClock struct {
	mu     sync.Mutex
	now    time.Duration
	timers []*fakeTimer
}

type fakeTimer struct {
	clock   *fakeClock
	at      time.Duration
	fn      func()
	stopped bool
	fired   bool
}

func (c *fakeClock) AfterFunc(d time.Duration, f func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTimer{clock: c, at: c.now + d, fn: f}
	c.timers = append(c.timers, t)
	return t
}

func (t *fakeTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	active := !t.stopped && !t.fired
	t.stopped = true
	return active
}

// Advance moves time forward and runs due callbacks in schedule order.
func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now += d
	var due []*fakeTimer
	for _, t := range c.timers {
		if !t.stopped && !t.fired && t.at <= c.now {
			t.fired = true
			due = append(due, t)
		}
	}
	c.mu.Unlock()
	for _, t := range due {
		t.fn()
	}
}

type fakeNav struct {
	mu      sync.Mutex
	logins  int
	schools int
	school  []string
}

func (n *fakeNav) ToLogin() {
	n.mu.Lock()
	n.logins++
	n.mu.Unlock()
}

func (n *fakeNav) ToSchools() {
	n.mu.Lock()
	n.schools++
	n.mu.Unlock()
}

func (n *fakeNav) ToSchool(id string) {
	n.mu.Lock()
	n.school = append(n.school, id)
	n.mu.Unlock()
}

func (n *fakeNav) counts() (int, int, []string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.logins, n.schools, append([]string(nil), n.school...)
}

// countingAPI wraps a real API, counts calls and can hold LoadSchools open
// until released.
type countingAPI struct {
	API
	mu      sync.Mutex
	calls   map[string]int
	entered chan struct{}
	release chan struct{}
}

func newCountingAPI(api API) *countingAPI {
	return &countingAPI{API: api, calls: make(map[string]int)}
}

func (c *countingAPI) count(name string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls[name]
}

func (c *countingAPI) inc(name string) {
	c.mu.Lock()
	c.calls[name]++
	c.mu.Unlock()
}

func (c *countingAPI) Authorize(ctx context.Context, username, password string) (model.AuthResponse, error) {
	c.inc("Authorize")
	return c.API.Authorize(ctx, username, password)
}

func (c *countingAPI) LoadSchools(ctx context.Context, page, limit int) (model.Page[model.School], error) {
	c.inc("LoadSchools")
	if c.entered != nil {
		c.entered <- struct{}{}
		<-c.release
	}
	return c.API.LoadSchools(ctx, page, limit)
}

func (c *countingAPI) LoadSchoolDevices(ctx context.Context, schoolID string) ([]model.Device, error) {
	c.inc("LoadSchoolDevices")
	return c.API.LoadSchoolDevices(ctx, schoolID)
}

func (c *countingAPI) ScanQRCode(ctx context.Context, code string) (model.ScanResult, error) {
	c.inc("ScanQRCode")
	return c.API.ScanQRCode(ctx, code)
}

// stubAPI answers detail lookups from fixed data.
type stubAPI struct {
	API
	school  model.School
	devices []model.Device
}

func (s stubAPI) LoadSchool(context.Context, string) (model.School, error) {
	return s.school, nil
}

func (s stubAPI) LoadSchoolDevices(context.Context, string) ([]model.Device, error) {
	return s.devices, nil
}

// newClient returns an in-process client backed by the seeded mock store
// with latency disabled.
func newClient(t *testing.T) *service.Client {
	t.Helper()
	cred, err := db.NewCredential("123456", "demo", "ACLZBw6QCZ")
	if err != nil {
		t.Fatalf("credential error: %v", err)
	}
	svc := service.New(db.NewSeededStore(1, cred), tokens.NewMemoryRegistry(), service.Options{
		JWTSecret: "test-secret",
		JWTIssuer: "test-issuer",
	})
	return service.NewClient(svc, session.New())
}

func loggedInClient(t *testing.T) *service.Client {
	t.Helper()
	client := newClient(t)
	if _, err := client.Authorize(context.Background(), "demo", "ACLZBw6QCZ"); err != nil {
		t.Fatalf("authorize error: %v", err)
	}
	return client
}
