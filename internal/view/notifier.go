package view

import (
	"sync"
	"time"
)

const DefaultToastDuration = 3 * time.Second

type Toast struct {
	ID      uint64
	Message string
}

// Notifier holds the app-wide error banner and the single transient toast.
type Notifier struct {
	mu       sync.Mutex
	clock    Clock
	banner   string
	toast    *Toast
	nextID   uint64
	onChange func()
}

func NewNotifier(clock Clock) *Notifier {
	if clock == nil {
		clock = RealClock()
	}
	return &Notifier{clock: clock}
}

// OnChange registers a callback fired after every state change.
func (n *Notifier) OnChange(fn func()) {
	n.mu.Lock()
	n.onChange = fn
	n.mu.Unlock()
}

func (n *Notifier) SetGlobalError(msg string) {
	n.mu.Lock()
	n.banner = msg
	fn := n.onChange
	n.mu.Unlock()
	notify(fn)
}

func (n *Notifier) ClearGlobalError() {
	n.SetGlobalError("")
}

func (n *Notifier) GlobalError() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.banner
}

// ShowErrorToast replaces the current toast and returns its id. The toast is
// cleared after d unless a newer toast replaced it first.
func (n *Notifier) ShowErrorToast(msg string, d time.Duration) uint64 {
	if d <= 0 {
		d = DefaultToastDuration
	}
	n.mu.Lock()
	n.nextID++
	id := n.nextID
	n.toast = &Toast{ID: id, Message: msg}
	fn := n.onChange
	n.mu.Unlock()

	n.clock.AfterFunc(d, func() { n.expireToast(id) })
	notify(fn)
	return id
}

func (n *Notifier) expireToast(id uint64) {
	n.mu.Lock()
	if n.toast == nil || n.toast.ID != id {
		n.mu.Unlock()
		return
	}
	n.toast = nil
	fn := n.onChange
	n.mu.Unlock()
	notify(fn)
}

func (n *Notifier) Toast() (Toast, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.toast == nil {
		return Toast{}, false
	}
	return *n.toast, true
}
