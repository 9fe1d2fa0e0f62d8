package server

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/vango-dev/filters/pkg/middleware"
)

// Registry tracks live instances and closes idle ones.
type Registry struct {
	mu        sync.RWMutex
	instances map[string]*Instance

	max    int
	idle   time.Duration
	logger *zap.Logger
}

// NewRegistry creates a Registry. max <= 0 means no limit.
func NewRegistry(max int, idle time.Duration, logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{
		instances: make(map[string]*Instance),
		max:       max,
		idle:      idle,
		logger:    logger,
	}
}

// Add registers inst.
func (r *Registry) Add(inst *Instance) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.max > 0 && len(r.instances) >= r.max {
		return ErrMaxInstances
	}
	r.instances[inst.ID] = inst
	middleware.RecordInstanceCreate()
	return nil
}

// Get returns the instance with the given ID.
func (r *Registry) Get(id string) (*Instance, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	inst, ok := r.instances[id]
	if !ok {
		return nil, ErrInstanceNotFound
	}
	return inst, nil
}

// Remove unregisters and closes the instance. Unknown IDs are ignored.
func (r *Registry) Remove(id string) {
	r.mu.Lock()
	inst, ok := r.instances[id]
	delete(r.instances, id)
	r.mu.Unlock()

	if ok {
		inst.Close()
		middleware.RecordInstanceDestroy()
	}
}

// Count returns the number of live instances.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.instances)
}

// Sweep closes instances idle since before now minus the idle timeout and
// returns how many were closed.
func (r *Registry) Sweep(now time.Time) int {
	r.mu.Lock()
	var expired []*Instance
	for id, inst := range r.instances {
		if now.Sub(inst.LastActive()) > r.idle {
			expired = append(expired, inst)
			delete(r.instances, id)
		}
	}
	remaining := len(r.instances)
	r.mu.Unlock()

	for _, inst := range expired {
		inst.Close()
		middleware.RecordInstanceDestroy()
	}
	if len(expired) > 0 {
		r.logger.Info("cleaned up idle instances",
			zap.Int("count", len(expired)),
			zap.Int("remaining", remaining),
		)
	}
	return len(expired)
}

// Run sweeps every interval until ctx is done, then closes every instance.
func (r *Registry) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case now := <-ticker.C:
			r.Sweep(now)
		case <-ctx.Done():
			r.Shutdown()
			return nil
		}
	}
}

// Shutdown closes every instance.
func (r *Registry) Shutdown() {
	r.mu.Lock()
	all := r.instances
	r.instances = make(map[string]*Instance)
	r.mu.Unlock()

	var wg sync.WaitGroup
	for _, inst := range all {
		wg.Add(1)
		go func(inst *Instance) {
			defer wg.Done()
			inst.Close()
			middleware.RecordInstanceDestroy()
		}(inst)
	}
	wg.Wait()

	r.logger.Info("instance registry shutdown", zap.Int("closed_instances", len(all)))
}
