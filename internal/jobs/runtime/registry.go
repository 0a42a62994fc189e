package runtime

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"sync"
)

var ErrDuplicateJob = errors.New("job type already registered")

// Handler runs one job type. Type must be stable; it is the key the
// scheduler and the Temporal activity dispatch on.
type Handler interface {
	Type() string
	Run(ctx *Context) error
}

type Registry struct {
	mu       sync.RWMutex
	handlers map[string]Handler
}

func NewRegistry() *Registry {
	return &Registry{handlers: map[string]Handler{}}
}

func (r *Registry) Register(h Handler) error {
	if h == nil || h.Type() == "" {
		return fmt.Errorf("register job: handler without a type")
	}
	jobType := h.Type()
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, dup := r.handlers[jobType]; dup {
		return fmt.Errorf("%s: %w", jobType, ErrDuplicateJob)
	}
	r.handlers[jobType] = h
	return nil
}

func (r *Registry) Get(jobType string) (Handler, bool) {
	r.mu.RLock()
	h, ok := r.handlers[jobType]
	r.mu.RUnlock()
	return h, ok
}

// Types lists registered job types in name order.
func (r *Registry) Types() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Sorted(maps.Keys(r.handlers))
}
