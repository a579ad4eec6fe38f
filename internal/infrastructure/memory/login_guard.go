// Package memory provides in-process implementations of the login attempt
// guard and the token revocation store for single-instance deployments.
//
// State lives in process memory and is populated at runtime: a restart
// amnesties all lockouts and revocations. That tradeoff is accepted for the
// in-process variant; multi-instance deployments should use the Redis
// implementations instead.
package memory

import (
	"context"
	"sync"
	"time"
)

type attemptRecord struct {
	failures    int
	lastFailure time.Time
}

// LoginGuard tracks failed logins per source IP in a locked map. A source
// with threshold failures inside the window is blocked until the window
// elapses since its last failure, evaluated lazily on read.
type LoginGuard struct {
	mu        sync.Mutex
	records   map[string]*attemptRecord
	threshold int
	window    time.Duration
}

func NewLoginGuard(threshold int, window time.Duration) *LoginGuard {
	return &LoginGuard{
		records:   make(map[string]*attemptRecord),
		threshold: threshold,
		window:    window,
	}
}

func (g *LoginGuard) IsBlocked(_ context.Context, source string) (bool, time.Duration, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	rec, ok := g.records[source]
	if !ok {
		return false, 0, nil
	}
	remaining := g.window - time.Since(rec.lastFailure)
	if remaining <= 0 {
		delete(g.records, source)
		return false, 0, nil
	}
	if rec.failures < g.threshold {
		return false, 0, nil
	}
	return true, remaining, nil
}

func (g *LoginGuard) RecordFailure(_ context.Context, source string) error {
	now := time.Now()

	g.mu.Lock()
	defer g.mu.Unlock()

	rec, ok := g.records[source]
	if !ok || now.Sub(rec.lastFailure) > g.window {
		rec = &attemptRecord{}
		g.records[source] = rec
	}
	rec.failures++
	rec.lastFailure = now
	return nil
}

func (g *LoginGuard) Reset(_ context.Context, source string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.records, source)
	return nil
}

// StartSweeper evicts lapsed records every interval until ctx is cancelled,
// bounding memory growth. Lazy expiry on read keeps the guard correct even
// without it.
func (g *LoginGuard) StartSweeper(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				g.sweep()
			}
		}
	}()
}

func (g *LoginGuard) sweep() {
	g.mu.Lock()
	defer g.mu.Unlock()
	for source, rec := range g.records {
		if time.Since(rec.lastFailure) > g.window {
			delete(g.records, source)
		}
	}
}
