package upgrade

import (
	"slices"
	"sync"

	"github.com/thoreinstein/passmenu/internal/errors"
	"github.com/thoreinstein/passmenu/internal/schema"
	"github.com/thoreinstein/passmenu/internal/tree"
)

// ErrDuplicateStep indicates two steps were registered for the same source version.
var ErrDuplicateStep = errors.New("duplicate upgrade step")

// Transform rewrites a document from one schema revision to the next. It may
// mutate and return its argument.
type Transform func(doc tree.Mapping) (tree.Mapping, error)

// Step upgrades documents at From to To.
type Step struct {
	From        schema.Version
	To          schema.Version
	Description string
	Apply       Transform
}

// Registry maps a source version to the step that upgrades it. It is
// immutable once built and safe for concurrent use.
type Registry struct {
	steps map[schema.Version]Step
}

// NewRegistry builds a registry from steps. Each source version may appear
// once and every step needs a transform.
func NewRegistry(steps ...Step) (*Registry, error) {
	r := &Registry{steps: make(map[schema.Version]Step, len(steps))}
	for _, s := range steps {
		if s.Apply == nil {
			return nil, errors.Newf("upgrade step from %s has no transform", s.From)
		}
		if _, dup := r.steps[s.From]; dup {
			return nil, errors.Wrapf(ErrDuplicateStep, "from %s", s.From)
		}
		r.steps[s.From] = s
	}
	return r, nil
}

// Lookup returns the step registered for v.
func (r *Registry) Lookup(v schema.Version) (Step, bool) {
	s, ok := r.steps[v]
	return s, ok
}

// Len returns the number of registered steps.
func (r *Registry) Len() int {
	return len(r.steps)
}

// Steps returns the registered steps ordered by source version.
func (r *Registry) Steps() []Step {
	out := make([]Step, 0, len(r.steps))
	for _, s := range r.steps {
		out = append(out, s)
	}
	slices.SortFunc(out, func(a, b Step) int {
		return a.From.Compare(b.From)
	})
	return out
}

var defaultRegistry = sync.OnceValue(func() *Registry {
	r, err := NewRegistry(builtinSteps()...)
	if err != nil {
		panic(err)
	}
	return r
})

// DefaultRegistry returns the registry of built-in upgrade steps.
func DefaultRegistry() *Registry {
	return defaultRegistry()
}
