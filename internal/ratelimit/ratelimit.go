// Package ratelimit implements a per-client fixed-window request
// counter. State is per process; a restart resets every window.
package ratelimit

import (
	"sync"
	"time"
)

// Window is the counting period.
const Window = time.Minute

// Decision is the outcome of one Allow call, with the bookkeeping
// handlers echo back to clients.
type Decision struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetAt   time.Time
}

type window struct {
	count   int
	resetAt time.Time
}

// Limiter counts requests per client key within fixed windows. Each
// endpoint owns its own Limiter so limits never bleed across routes.
type Limiter struct {
	mu      sync.Mutex
	limit   int
	windows map[string]*window

	// now is replaceable for tests.
	now func() time.Time
}

func New(limit int) *Limiter {
	return &Limiter{
		limit:   limit,
		windows: make(map[string]*window),
		now:     time.Now,
	}
}

// Allow records one request for clientKey and reports whether it fits
// in the current window.
func (l *Limiter) Allow(clientKey string) Decision {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	w, ok := l.windows[clientKey]
	if !ok || now.After(w.resetAt) {
		w = &window{count: 0, resetAt: now.Add(Window)}
		l.windows[clientKey] = w
	}

	d := Decision{Limit: l.limit, ResetAt: w.resetAt}
	if w.count >= l.limit {
		d.Remaining = 0
		return d
	}
	w.count++
	d.Allowed = true
	d.Remaining = l.limit - w.count
	return d
}
