package capability

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var ErrUnknownCapability = errors.New("unknown capability")

// Registry keeps capabilities in registration order with unique names.
type Registry struct {
	order  []Capability
	byName map[string]Capability
}

func NewRegistry(caps ...Capability) (*Registry, error) {
	r := &Registry{byName: make(map[string]Capability)}
	for _, c := range caps {
		if err := r.Register(c); err != nil {
			return nil, err
		}
	}
	return r, nil
}

func (r *Registry) Register(c Capability) error {
	name := strings.TrimSpace(c.Name())
	if name == "" {
		return errors.New("capability name is empty")
	}
	if _, exists := r.byName[name]; exists {
		return fmt.Errorf("capability %q already registered", name)
	}
	r.byName[name] = c
	r.order = append(r.order, c)
	return nil
}

func (r *Registry) Get(name string) (Capability, bool) {
	c, ok := r.byName[strings.TrimSpace(name)]
	return c, ok
}

func (r *Registry) List() []Capability {
	out := make([]Capability, len(r.order))
	copy(out, r.order)
	return out
}

func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.order))
	for _, c := range r.order {
		names = append(names, c.Name())
	}
	return names
}

// Invoke runs the named capability and renders any failure into the returned string.
// Only an unknown name produces an error.
func (r *Registry) Invoke(ctx context.Context, name, input string) (string, error) {
	c, ok := r.Get(name)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownCapability, name)
	}
	return Invoke(ctx, c, input), nil
}
