package usecase

import (
	"sync"
	"time"
)

// FixGate enforces the minimum interval between processed fixes. Fixes inside
// the interval are dropped, not deferred: the latest position is not replayed
// when the interval ends.
type FixGate struct {
	foregroundInterval time.Duration
	backgroundInterval time.Duration

	mu      sync.Mutex
	last    time.Time
	hasLast bool
}

func NewFixGate(foregroundInterval, backgroundInterval time.Duration) *FixGate {
	return &FixGate{
		foregroundInterval: foregroundInterval,
		backgroundInterval: backgroundInterval,
	}
}

// Allow reports whether a fix arriving at now may be processed. inBackground
// is true when the app delivered the fix while not in the foreground.
func (g *FixGate) Allow(now time.Time, inBackground bool) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	interval := g.foregroundInterval
	if inBackground {
		interval = g.backgroundInterval
	}

	if g.hasLast && now.Sub(g.last) < interval {
		return false
	}

	g.last = now
	g.hasLast = true
	return true
}

// Reset forgets the last accepted fix so the next one passes.
func (g *FixGate) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.hasLast = false
}
