// Package ratelimit provides a per-key fixed-window request limiter.
package ratelimit

import (
	"context"
	"log"
	"sync"
	"time"
)

// Default policy for public form submissions.
const (
	DefaultMaxRequests = 3
	DefaultWindow      = time.Minute
)

// Decision is the outcome of Admit.
type Decision struct {
	Allowed bool
	// RetryAfterSeconds is set when Allowed is false.
	RetryAfterSeconds int
}

// record counts requests admitted for one key in the window starting at windowStart.
type record struct {
	count       int
	windowStart time.Time
}

// FixedWindow admits at most max requests per key in each window. Windows start at a key's first
// request and reset on the first request after they end. Safe for concurrent use.
type FixedWindow struct {
	mu      sync.Mutex
	max     int
	window  time.Duration
	records map[string]*record
	nowF    func() time.Time
}

// NewFixedWindow returns a limiter allowing max requests per window per key.
// Non-positive values fall back to DefaultMaxRequests and DefaultWindow.
func NewFixedWindow(max int, window time.Duration) *FixedWindow {
	if max <= 0 {
		max = DefaultMaxRequests
	}
	if window <= 0 {
		window = DefaultWindow
	}
	return &FixedWindow{
		max:     max,
		window:  window,
		records: make(map[string]*record),
		nowF:    time.Now,
	}
}

// Admit records a request for key arriving at now and reports whether it may proceed.
func (l *FixedWindow) Admit(key string, now time.Time) Decision {
	l.mu.Lock()
	defer l.mu.Unlock()

	rec, ok := l.records[key]
	if !ok || now.Sub(rec.windowStart) > l.window {
		l.records[key] = &record{count: 1, windowStart: now}
		return Decision{Allowed: true}
	}
	if rec.count >= l.max {
		return Decision{Allowed: false, RetryAfterSeconds: retryAfter(l.window - now.Sub(rec.windowStart))}
	}
	rec.count++
	return Decision{Allowed: true}
}

// retryAfter rounds remaining up to whole seconds, never below one.
func retryAfter(remaining time.Duration) int {
	secs := int((remaining + time.Second - 1) / time.Second)
	if secs < 1 {
		secs = 1
	}
	return secs
}

// Sweep drops records whose window ended before now and returns how many were removed.
func (l *FixedWindow) Sweep(now time.Time) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	removed := 0
	for key, rec := range l.records {
		if now.Sub(rec.windowStart) > l.window {
			delete(l.records, key)
			removed++
		}
	}
	return removed
}

// Run sweeps expired records every interval until ctx is done.
func (l *FixedWindow) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = l.window
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := l.Sweep(l.nowF()); n > 0 {
				log.Printf("ratelimit: swept %d expired keys, %d tracked", n, l.Len())
			}
		}
	}
}

// Len returns the number of tracked keys.
func (l *FixedWindow) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.records)
}
