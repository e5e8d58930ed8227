// Package metadata holds the per-domain-type schema the converter works
// from: explicit field accessor tables, the identifier field, and
// inheritance groups with their discriminator mappings. Metadata is built
// once at bootstrap through the Builder and treated as immutable shared
// state afterwards.
package metadata

import (
	"fmt"
)

// Kind classifies a field for value coercion during conversion
type Kind int

const (
	// String fields coerce to string
	String Kind = iota
	// Int fields coerce to int64
	Int
	// Float fields coerce to float64
	Float
	// Bool fields coerce to bool
	Bool
	// Time fields coerce to time.Time
	Time
	// List fields hold []any of scalars
	List
	// Embedded fields hold a nested domain object converted through its
	// own metadata (TargetEntity names it)
	Embedded
	// EmbeddedList fields hold []any of nested domain objects
	EmbeddedList
)

// String returns the string representation of the Kind
func (k Kind) String() string {
	switch k {
	case String:
		return "string"
	case Int:
		return "int"
	case Float:
		return "float"
	case Bool:
		return "bool"
	case Time:
		return "time"
	case List:
		return "list"
	case Embedded:
		return "embedded"
	case EmbeddedList:
		return "embedded-list"
	default:
		return "unknown"
	}
}

// FieldMetadata is one entry of a type's accessor table. Get reads the
// field from a domain object, Set writes the coerced value back. Both
// receive the owner as produced by the metadata's New factory.
type FieldMetadata struct {
	// Name is the document name in the generic entity
	Name string
	// Kind selects the coercion applied before Set is called
	Kind Kind
	// ID marks the identifier field
	ID bool
	// Generated marks an identifier filled by the template when empty
	Generated bool
	// TargetEntity names the metadata of Embedded/EmbeddedList fields
	TargetEntity string

	Get func(owner any) any
	Set func(owner any, value any) error
}

// Inheritance describes a type's position in an inheritance group. The
// group head declares the discriminator column; every member (including
// the head) carries its own discriminator value.
type Inheritance struct {
	// Column is the discriminator document name
	Column string
	// Value is this type's discriminator value
	Value string
	// Parent is the entity name of the group head
	Parent string
}

// EntityMetadata is the immutable schema of one domain type
type EntityMetadata struct {
	name        string
	factory     func() any
	fields      []FieldMetadata
	idIndex     int
	inheritance *Inheritance
}

// Name returns the entity name the type maps to. Subtypes share the name
// of their group head.
func (m *EntityMetadata) Name() string {
	if m.inheritance != nil && m.inheritance.Parent != "" {
		return m.inheritance.Parent
	}
	return m.name
}

// TypeName returns the registered name of this concrete type (for group
// heads this equals Name)
func (m *EntityMetadata) TypeName() string {
	return m.name
}

// New instantiates an empty domain object of this type
func (m *EntityMetadata) New() any {
	return m.factory()
}

// Fields returns a copy of the accessor table in declaration order
func (m *EntityMetadata) Fields() []FieldMetadata {
	out := make([]FieldMetadata, len(m.fields))
	copy(out, m.fields)
	return out
}

// ID returns the identifier field
func (m *EntityMetadata) ID() (FieldMetadata, bool) {
	if m.idIndex < 0 {
		return FieldMetadata{}, false
	}
	return m.fields[m.idIndex], true
}

// Inheritance returns the type's inheritance declaration, if any
func (m *EntityMetadata) Inheritance() (Inheritance, bool) {
	if m.inheritance == nil {
		return Inheritance{}, false
	}
	return *m.inheritance, true
}

// validate is called by Build
func (m *EntityMetadata) validate() error {
	if m.name == "" {
		return fmt.Errorf("entity name is required")
	}
	if m.factory == nil {
		return fmt.Errorf("entity %q: factory is required", m.name)
	}
	seen := make(map[string]bool, len(m.fields))
	for _, f := range m.fields {
		if f.Name == "" {
			return fmt.Errorf("entity %q: field name is required", m.name)
		}
		if seen[f.Name] {
			return fmt.Errorf("entity %q: duplicate field %q", m.name, f.Name)
		}
		seen[f.Name] = true
		if f.Get == nil || f.Set == nil {
			return fmt.Errorf("entity %q: field %q needs both accessors", m.name, f.Name)
		}
		if (f.Kind == Embedded || f.Kind == EmbeddedList) && f.TargetEntity == "" {
			return fmt.Errorf("entity %q: embedded field %q needs a target entity", m.name, f.Name)
		}
	}
	if m.inheritance != nil {
		if m.inheritance.Column == "" || m.inheritance.Value == "" {
			return fmt.Errorf("entity %q: inheritance needs column and value", m.name)
		}
	}
	return nil
}
