package mapview

import (
	"context"
	"sync"
	"time"

	"streetlight-map/internal/metrics"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type registryEntry struct {
	ctrl     *Controller
	lastSeen time.Time
}

// Registry keeps one Controller per view id and evicts views left idle
// longer than the TTL.
type Registry struct {
	mu      sync.RWMutex
	views   map[string]*registryEntry
	factory func() *Controller
	ttl     time.Duration
	now     func() time.Time
	logr    *zap.Logger
}

func NewRegistry(factory func() *Controller, ttl time.Duration, logr *zap.Logger) *Registry {
	if logr == nil {
		logr = zap.NewNop()
	}
	return &Registry{
		views:   make(map[string]*registryEntry),
		factory: factory,
		ttl:     ttl,
		now:     time.Now,
		logr:    logr,
	}
}

// Create opens a new view and returns its id.
func (r *Registry) Create() (string, *Controller) {
	id := uuid.NewString()
	ctrl := r.factory()

	r.mu.Lock()
	r.views[id] = &registryEntry{ctrl: ctrl, lastSeen: r.now()}
	n := len(r.views)
	r.mu.Unlock()

	metrics.SetActiveViews(n)
	return id, ctrl
}

// Get returns the view and marks it as used.
func (r *Registry) Get(id string) (*Controller, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.views[id]
	if !ok {
		return nil, ErrViewNotFound
	}
	entry.lastSeen = r.now()
	return entry.ctrl, nil
}

func (r *Registry) Delete(id string) bool {
	r.mu.Lock()
	entry, ok := r.views[id]
	if ok {
		delete(r.views, id)
	}
	n := len(r.views)
	r.mu.Unlock()

	if ok {
		entry.ctrl.Close()
		metrics.SetActiveViews(n)
	}
	return ok
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.views)
}

// Sweep closes views idle since before now-TTL and returns how many went.
func (r *Registry) Sweep(now time.Time) int {
	if r.ttl <= 0 {
		return 0
	}
	cutoff := now.Add(-r.ttl)

	var expired []*Controller
	r.mu.Lock()
	for id, entry := range r.views {
		if entry.lastSeen.Before(cutoff) {
			expired = append(expired, entry.ctrl)
			delete(r.views, id)
		}
	}
	n := len(r.views)
	r.mu.Unlock()

	for _, ctrl := range expired {
		ctrl.Close()
	}
	if len(expired) > 0 {
		metrics.SetActiveViews(n)
		r.logr.Info("expired idle views", zap.Int("count", len(expired)), zap.Int("remaining", n))
	}
	return len(expired)
}

// Run sweeps on every tick until ctx is done.
func (r *Registry) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case t := <-ticker.C:
			r.Sweep(t)
		}
	}
}
