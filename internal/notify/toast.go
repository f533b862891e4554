// Package notify holds the transient toast notifications shown by the host
// UI. Toasts auto-dismiss on a timer; they are a side channel and never
// influence wizard or store state.
package notify

import (
	"sync"
	"time"
)

// DefaultTTL matches the host UI auto-dismiss delay.
const DefaultTTL = 2 * time.Second

// Kind classifies a toast.
type Kind string

const (
	KindSuccess Kind = "success"
	KindError   Kind = "error"
)

// Toast is a transient message.
type Toast struct {
	Message   string
	Kind      Kind
	CreatedAt time.Time
}

// Toaster keeps the currently visible toasts and dismisses them after a TTL.
type Toaster struct {
	mu     sync.Mutex
	ttl    time.Duration
	active []Toast

	// OnDismiss, when set, is called after a toast expires.
	OnDismiss func(Toast)
}

// NewToaster creates a toaster with the given TTL (DefaultTTL when <= 0).
func NewToaster(ttl time.Duration) *Toaster {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Toaster{ttl: ttl}
}

// Show displays a toast and schedules its dismissal.
func (t *Toaster) Show(message string, kind Kind) {
	toast := Toast{Message: message, Kind: kind, CreatedAt: time.Now()}

	t.mu.Lock()
	t.active = append(t.active, toast)
	t.mu.Unlock()

	time.AfterFunc(t.ttl, func() { t.dismiss(toast) })
}

// Active returns the currently visible toasts.
func (t *Toaster) Active() []Toast {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]Toast(nil), t.active...)
}

func (t *Toaster) dismiss(toast Toast) {
	t.mu.Lock()
	for i := range t.active {
		if t.active[i] == toast {
			t.active = append(t.active[:i], t.active[i+1:]...)
			break
		}
	}
	t.mu.Unlock()

	if t.OnDismiss != nil {
		t.OnDismiss(toast)
	}
}
