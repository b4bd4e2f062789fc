package runtime

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Handler runs one job_type. Run reports progress through ctx; returning an
// error fails the job, returning nil without a terminal call succeeds it.
type Handler interface {
	Type() string
	Run(ctx *Context) error
}

// Registry maps job_type to its handler. It is filled at startup and read by
// every worker goroutine.
type Registry struct {
	mu       sync.RWMutex
	handlers map[string]Handler
}

func NewRegistry() *Registry {
	return &Registry{handlers: make(map[string]Handler)}
}

func (r *Registry) Register(h Handler) error {
	if h == nil {
		return errors.New("nil job handler")
	}
	jobType := strings.TrimSpace(h.Type())
	if jobType == "" {
		return fmt.Errorf("job handler %T has an empty type", h)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if prev, exists := r.handlers[jobType]; exists {
		return fmt.Errorf("job_type %q already handled by %T", jobType, prev)
	}
	r.handlers[jobType] = h
	return nil
}

// RegisterAll registers every handler and reports all failures together.
func (r *Registry) RegisterAll(hs ...Handler) error {
	var problems []error
	for _, h := range hs {
		if err := r.Register(h); err != nil {
			problems = append(problems, err)
		}
	}
	return errors.Join(problems...)
}

func (r *Registry) Get(jobType string) (Handler, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.handlers[jobType]
	return h, ok
}

func (r *Registry) Types() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.handlers))
	for t := range r.handlers {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}
