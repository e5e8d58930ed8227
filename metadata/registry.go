package metadata

import (
	"fmt"
	"reflect"
	"sync"

	jerrors "github.com/ediel-queiroz/jnosql/errors"
)

// Registry holds every registered entity metadata. Registration happens at
// bootstrap; lookups afterwards are read-only. The RWMutex keeps the
// registry safe for concurrent readers without assuming a freeze step.
type Registry struct {
	mu     sync.RWMutex
	byName map[string]*EntityMetadata
	byType map[reflect.Type]*EntityMetadata
	// groups: group head entity name -> discriminator value -> metadata
	groups map[string]map[string]*EntityMetadata
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{
		byName: make(map[string]*EntityMetadata),
		byType: make(map[reflect.Type]*EntityMetadata),
		groups: make(map[string]map[string]*EntityMetadata),
	}
}

// Register adds metadata to the registry. Group heads must register before
// their subtypes so the discriminator lookup map can be completed at
// registration time.
func (r *Registry) Register(m *EntityMetadata) error {
	if m == nil {
		return fmt.Errorf("%w: nil metadata", jerrors.ErrInvalidConfig)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byName[m.TypeName()]; exists {
		return fmt.Errorf("%w: %q", jerrors.ErrDuplicateEntity, m.TypeName())
	}

	goType := reflect.TypeOf(m.New())
	if existing, exists := r.byType[goType]; exists {
		return fmt.Errorf("%w: %s maps to both %q and %q",
			jerrors.ErrDuplicateEntity, goType, existing.TypeName(), m.TypeName())
	}

	inh, hasInheritance := m.Inheritance()
	if hasInheritance {
		if inh.Parent == "" {
			// group head: seed the group with its own discriminator value
			r.groups[m.TypeName()] = map[string]*EntityMetadata{inh.Value: m}
		} else {
			group, ok := r.groups[inh.Parent]
			if !ok {
				return fmt.Errorf("%w: group head %q not registered before subtype %q",
					jerrors.ErrUnknownEntity, inh.Parent, m.TypeName())
			}
			if _, dup := group[inh.Value]; dup {
				return fmt.Errorf("%w: discriminator value %q in group %q",
					jerrors.ErrDuplicateEntity, inh.Value, inh.Parent)
			}
			group[inh.Value] = m
		}
	}

	r.byName[m.TypeName()] = m
	r.byType[goType] = m
	return nil
}

// MustRegister is Register for bootstrap code
func (r *Registry) MustRegister(m *EntityMetadata) {
	if err := r.Register(m); err != nil {
		panic(err)
	}
}

// FindByName returns the metadata registered under the given entity name
func (r *Registry) FindByName(name string) (*EntityMetadata, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.byName[name]
	return m, ok
}

// FindByObject returns the metadata of a domain object's concrete type
func (r *Registry) FindByObject(o any) (*EntityMetadata, bool) {
	if o == nil {
		return nil, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.byType[reflect.TypeOf(o)]
	return m, ok
}

// Group returns the discriminator lookup map of an inheritance group, or
// nil when the name heads no group. The returned map must not be mutated.
func (r *Registry) Group(name string) map[string]*EntityMetadata {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.groups[name]
}

// DiscriminatorColumn returns the discriminator document name of a group
func (r *Registry) DiscriminatorColumn(name string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	head, ok := r.byName[name]
	if !ok {
		return "", false
	}
	inh, has := head.Inheritance()
	if !has || inh.Parent != "" {
		return "", false
	}
	return inh.Column, true
}
