// Package registry declares the operations exposed to protocol clients: their
// names, argument schemas, descriptions, and how validated arguments bind to a
// request against the remote Kanban service.
package registry

import (
	"encoding/json"
	"fmt"
	"sync"
)

type FieldType string

const (
	TypeString FieldType = "string"
)

// Field declares one argument accepted by an operation.
type Field struct {
	Name        string
	Type        FieldType
	Required    bool
	Description string

	// Identifier marks fields that end up in a URL path or name a remote
	// entity. Their values must be non-empty ASCII alphanumerics.
	Identifier bool

	// Verbs lists values of an Identifier field that are exempt from the
	// identifier pattern because they are translated into dedicated endpoints.
	Verbs []string
}

// Schema is the ordered list of fields an operation accepts.
type Schema []Field

// Field returns the field with the given name.
func (s Schema) Field(name string) (Field, bool) {
	for _, f := range s {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// Args is a validated argument bag. It only holds fields declared in the
// operation's schema; absent optional fields have no key.
type Args map[string]string

// Binding turns validated arguments into a remote request.
type Binding func(Args) (*Request, error)

// Descriptor describes a single operation.
type Descriptor struct {
	Name        string
	Description string
	Schema      Schema
	Bind        Binding
}

// Registry maps operation names to descriptors, preserving declaration order.
type Registry struct {
	mu     sync.RWMutex
	byName map[string]*Descriptor
	order  []*Descriptor
}

func New() *Registry {
	return &Registry{
		byName: make(map[string]*Descriptor),
	}
}

// Register adds a descriptor. Names must be unique.
func (r *Registry) Register(d *Descriptor) error {
	if d.Name == "" {
		return fmt.Errorf("operation name is required")
	}
	if d.Bind == nil {
		return fmt.Errorf("operation '%s' has no binding", d.Name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byName[d.Name]; exists {
		return fmt.Errorf("an operation named '%s' is already registered", d.Name)
	}

	r.byName[d.Name] = d
	r.order = append(r.order, d)

	return nil
}

// Lookup returns the descriptor registered under name.
func (r *Registry) Lookup(name string) (*Descriptor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	d, ok := r.byName[name]
	return d, ok
}

// Descriptors returns all descriptors in registration order.
func (r *Registry) Descriptors() []*Descriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Descriptor, len(r.order))
	copy(out, r.order)
	return out
}

// bind adapts a binding over a typed argument struct. The struct is filled
// from the validated bag through its json tags.
func bind[T any](fn func(T) (*Request, error)) Binding {
	return func(args Args) (*Request, error) {
		var typed T

		data, err := json.Marshal(args)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal args: %w", err)
		}

		if err := json.Unmarshal(data, &typed); err != nil {
			return nil, fmt.Errorf("failed to unmarshal args: %w", err)
		}

		return fn(typed)
	}
}
