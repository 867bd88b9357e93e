// Package registry holds the stacks known to stackctl.
//
// A stack package registers its declared values together with its own source
// files, so discovery can run from an embedded filesystem and the template
// builder can pair every value with the declaration it came from.
package registry

import (
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"sync"
)

// Stack kinds.
const (
	KindEventRule = "event-rule"
	KindHTTPAPI   = "http-api"
	KindRESTAPI   = "rest-api"
)

// Stack is a deployable unit: one template, one set of declarations.
type Stack struct {
	// Name is the stack name and the template file stem
	Name string
	// Kind selects the trigger-specific checks
	Kind string
	// Description becomes the template Description
	Description string
	// Dir is the source directory relative to the module root
	Dir string
	// Sources holds the stack package's Go files
	Sources fs.FS
	// Values maps declaration names to their values
	Values map[string]any
}

// Validate reports a stack that cannot be synthesized.
func (s Stack) Validate() error {
	var errs []error
	if s.Name == "" {
		errs = append(errs, errors.New("stack name is required"))
	}
	switch s.Kind {
	case KindEventRule, KindHTTPAPI, KindRESTAPI:
	default:
		errs = append(errs, fmt.Errorf("stack %s: unknown kind %q", s.Name, s.Kind))
	}
	if s.Sources == nil {
		errs = append(errs, fmt.Errorf("stack %s: no sources", s.Name))
	}
	if len(s.Values) == 0 {
		errs = append(errs, fmt.Errorf("stack %s: no values", s.Name))
	}
	return errors.Join(errs...)
}

// Registry is a concurrency-safe set of stacks keyed by name.
type Registry struct {
	mu     sync.RWMutex
	stacks map[string]Stack
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{stacks: make(map[string]Stack)}
}

// Register adds a stack. Names must be unique.
func (r *Registry) Register(s Stack) error {
	if err := s.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.stacks[s.Name]; exists {
		return fmt.Errorf("stack %s already registered", s.Name)
	}
	r.stacks[s.Name] = s
	return nil
}

// Lookup returns the stack with the given name.
func (r *Registry) Lookup(name string) (Stack, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.stacks[name]
	return s, ok
}

// All returns every stack sorted by name.
func (r *Registry) All() []Stack {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stacks := make([]Stack, 0, len(r.stacks))
	for _, s := range r.stacks {
		stacks = append(stacks, s)
	}
	sort.Slice(stacks, func(i, j int) bool { return stacks[i].Name < stacks[j].Name })
	return stacks
}

// Select returns the named stacks in the order given, or all stacks when
// names is empty.
func (r *Registry) Select(names []string) ([]Stack, error) {
	if len(names) == 0 {
		return r.All(), nil
	}

	stacks := make([]Stack, 0, len(names))
	for _, name := range names {
		s, ok := r.Lookup(name)
		if !ok {
			return nil, fmt.Errorf("unknown stack %q", name)
		}
		stacks = append(stacks, s)
	}
	return stacks, nil
}

// Names returns the registered stack names in sorted order.
func (r *Registry) Names() []string {
	stacks := r.All()
	names := make([]string, len(stacks))
	for i, s := range stacks {
		names[i] = s.Name
	}
	return names
}
