// Package ratelimit bounds repeated attempts per client identity with a
// fixed-window counter. Best effort only: state lives in memory and
// resets on restart, so this is not a hard security boundary.
package ratelimit

import (
	"sync"
	"time"
)

type window struct {
	count int
	start time.Time
}

type Limiter struct {
	mu      sync.Mutex
	limit   int
	window  time.Duration
	entries map[string]*window
	now     func() time.Time
}

func New(limit int, windowSize time.Duration) *Limiter {
	return &Limiter{
		limit:   limit,
		window:  windowSize,
		entries: make(map[string]*window),
		now:     time.Now,
	}
}

// Allow reports whether the identity may make another attempt within
// the current window, counting the attempt when it may.
func (l *Limiter) Allow(id string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	entry, ok := l.entries[id]
	if !ok || now.Sub(entry.start) > l.window {
		l.entries[id] = &window{count: 1, start: now}
		return true
	}
	if entry.count >= l.limit {
		return false
	}
	entry.count++
	return true
}
