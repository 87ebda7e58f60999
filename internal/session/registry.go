// Package session keeps one application controller per visitor session.
package session

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"settimohub.it/hub-web/internal/app"
)

const (
	defaultTTL           = 30 * time.Minute
	minimumSweepInterval = time.Second
)

// Factory builds an unstarted controller rendering in lang.
type Factory func(lang string) *app.Controller

// Registry maps session ids to started controllers and evicts idle ones.
type Registry struct {
	mu      sync.Mutex
	entries map[string]*entry

	newController Factory
	ttl           time.Duration
	sweepEvery    time.Duration
	now           func() time.Time
	logger        *zap.Logger

	stop      chan struct{}
	done      chan struct{}
	closeOnce sync.Once
}

type entry struct {
	ctrl     *app.Controller
	lastSeen time.Time
	ready    chan struct{}
	err      error
}

// Option configures a Registry.
type Option func(*Registry)

// WithTTL sets how long an idle session survives.
func WithTTL(ttl time.Duration) Option {
	return func(r *Registry) {
		if ttl > 0 {
			r.ttl = ttl
		}
	}
}

// WithSweepInterval sets how often the janitor looks for idle sessions.
func WithSweepInterval(d time.Duration) Option {
	return func(r *Registry) {
		if d > 0 {
			r.sweepEvery = d
		}
	}
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(r *Registry) {
		if now != nil {
			r.now = now
		}
	}
}

// WithLogger sets the registry logger.
func WithLogger(logger *zap.Logger) Option {
	return func(r *Registry) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// New starts a registry and its janitor goroutine. Call Close to stop it.
func New(newController Factory, opts ...Option) *Registry {
	r := &Registry{
		entries:       make(map[string]*entry),
		newController: newController,
		ttl:           defaultTTL,
		now:           time.Now,
		logger:        zap.NewNop(),
		stop:          make(chan struct{}),
		done:          make(chan struct{}),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.sweepEvery == 0 {
		r.sweepEvery = max(r.ttl/2, minimumSweepInterval)
	}
	go r.janitor()
	return r
}

// Get returns the controller for id, creating and starting it on first use.
// Concurrent first requests share one Start. When Start fails the controller is
// returned together with the error and forgotten, so the next request retries.
// A non-empty lang that differs from the controller's repaints it in lang.
func (r *Registry) Get(ctx context.Context, id, lang string) (*app.Controller, error) {
	now := r.now()

	r.mu.Lock()
	e, ok := r.entries[id]
	if ok {
		e.lastSeen = now
		r.mu.Unlock()
		select {
		case <-e.ready:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
		if e.err != nil {
			return e.ctrl, e.err
		}
		if lang != "" && e.ctrl.Lang() != lang {
			e.ctrl.SetLang(lang)
		}
		return e.ctrl, nil
	}
	e = &entry{lastSeen: now, ready: make(chan struct{})}
	r.entries[id] = e
	r.mu.Unlock()

	e.ctrl = r.newController(lang)
	e.err = e.ctrl.Start(ctx, now)
	if e.err != nil {
		r.logger.Warn("session: controller start failed", zap.String("session", id), zap.Error(e.err))
		r.mu.Lock()
		if r.entries[id] == e {
			delete(r.entries, id)
		}
		r.mu.Unlock()
	} else {
		r.logger.Debug("session: controller started", zap.String("session", id), zap.String("lang", lang))
	}
	close(e.ready)
	return e.ctrl, e.err
}

// Len reports the number of live sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// Close stops the janitor and drops every session. It is safe to call twice.
func (r *Registry) Close() {
	r.closeOnce.Do(func() {
		close(r.stop)
		<-r.done
		r.mu.Lock()
		r.entries = make(map[string]*entry)
		r.mu.Unlock()
	})
}

func (r *Registry) janitor() {
	defer close(r.done)
	ticker := time.NewTicker(r.sweepEvery)
	defer ticker.Stop()
	for {
		select {
		case <-r.stop:
			return
		case <-ticker.C:
			if n := r.sweep(r.now()); n > 0 {
				r.logger.Debug("session: evicted idle sessions", zap.Int("count", n))
			}
		}
	}
}

// sweep drops started sessions idle for longer than the TTL.
func (r *Registry) sweep(now time.Time) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	evicted := 0
	for id, e := range r.entries {
		select {
		case <-e.ready:
		default:
			continue
		}
		if now.Sub(e.lastSeen) > r.ttl {
			delete(r.entries, id)
			evicted++
		}
	}
	return evicted
}
