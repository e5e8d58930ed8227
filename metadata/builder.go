package metadata

import (
	"fmt"
	"time"
)

// Builder assembles EntityMetadata declaratively. Builders are throwaway
// bootstrap objects; the metadata they produce is immutable.
type Builder struct {
	meta EntityMetadata
}

// NewBuilder starts metadata for an entity. The factory produces an empty
// domain object (typically a pointer to a zero struct).
func NewBuilder(name string, factory func() any) *Builder {
	return &Builder{meta: EntityMetadata{
		name:    name,
		factory: factory,
		idIndex: -1,
	}}
}

// Field declares a non-identifier field
func (b *Builder) Field(f FieldMetadata) *Builder {
	b.meta.fields = append(b.meta.fields, f)
	return b
}

// ID declares the identifier field
func (b *Builder) ID(f FieldMetadata) *Builder {
	f.ID = true
	b.meta.idIndex = len(b.meta.fields)
	b.meta.fields = append(b.meta.fields, f)
	return b
}

// GeneratedID declares an identifier the template fills with a generated
// value when it is empty on insert
func (b *Builder) GeneratedID(f FieldMetadata) *Builder {
	f.Generated = true
	return b.ID(f)
}

// Inheritance marks this type as the head of an inheritance group. Column
// is the discriminator document name; value is the head's own discriminator
// value (stored when a plain instance of the head converts).
func (b *Builder) Inheritance(column, value string) *Builder {
	b.meta.inheritance = &Inheritance{Column: column, Value: value}
	return b
}

// SubtypeOf marks this type as a member of the named group with the given
// discriminator value. The group head must be registered first; the
// discriminator column comes from the head.
func (b *Builder) SubtypeOf(parent, value string) *Builder {
	b.meta.inheritance = &Inheritance{Parent: parent, Value: value}
	return b
}

// Build validates and returns the metadata
func (b *Builder) Build() (*EntityMetadata, error) {
	m := b.meta
	if err := m.validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// MustBuild is Build for bootstrap code where a broken declaration is a
// programming error
func (b *Builder) MustBuild() *EntityMetadata {
	m, err := b.Build()
	if err != nil {
		panic(err)
	}
	return m
}

// Getter adapts a typed read accessor to the FieldMetadata contract
func Getter[T any, V any](get func(*T) V) func(any) any {
	return func(owner any) any {
		return get(owner.(*T))
	}
}

// Setter adapts a typed write accessor to the FieldMetadata contract. The
// incoming value must already carry the field's canonical kind type
// (string, int64, float64, bool, time.Time, []any, or the embedded domain
// type).
func Setter[T any, V any](set func(*T, V)) func(any, any) error {
	return func(owner any, value any) error {
		t, ok := owner.(*T)
		if !ok {
			return fmt.Errorf("accessor owner is %T, want %T", owner, (*T)(nil))
		}
		v, ok := value.(V)
		if !ok {
			var want V
			return fmt.Errorf("accessor value is %T, want %T", value, want)
		}
		set(t, v)
		return nil
	}
}

// StringField is shorthand for a string field backed by typed accessors
func StringField[T any](name string, get func(*T) string, set func(*T, string)) FieldMetadata {
	return FieldMetadata{Name: name, Kind: String, Get: Getter(get), Set: Setter(set)}
}

// IntField is shorthand for an int64 field backed by typed accessors
func IntField[T any](name string, get func(*T) int64, set func(*T, int64)) FieldMetadata {
	return FieldMetadata{Name: name, Kind: Int, Get: Getter(get), Set: Setter(set)}
}

// FloatField is shorthand for a float64 field backed by typed accessors
func FloatField[T any](name string, get func(*T) float64, set func(*T, float64)) FieldMetadata {
	return FieldMetadata{Name: name, Kind: Float, Get: Getter(get), Set: Setter(set)}
}

// BoolField is shorthand for a bool field backed by typed accessors
func BoolField[T any](name string, get func(*T) bool, set func(*T, bool)) FieldMetadata {
	return FieldMetadata{Name: name, Kind: Bool, Get: Getter(get), Set: Setter(set)}
}

// TimeField is shorthand for a time.Time field backed by typed accessors
func TimeField[T any](name string, get func(*T) time.Time, set func(*T, time.Time)) FieldMetadata {
	return FieldMetadata{Name: name, Kind: Time, Get: Getter(get), Set: Setter(set)}
}

// ListField is shorthand for a []any scalar list field
func ListField[T any](name string, get func(*T) []any, set func(*T, []any)) FieldMetadata {
	return FieldMetadata{Name: name, Kind: List, Get: Getter(get), Set: Setter(set)}
}

// EmbeddedField declares a nested domain object field converted through the
// target entity's metadata
func EmbeddedField[T any, V any](name, target string, get func(*T) *V, set func(*T, *V)) FieldMetadata {
	return FieldMetadata{
		Name:         name,
		Kind:         Embedded,
		TargetEntity: target,
		Get: func(owner any) any {
			v := get(owner.(*T))
			if v == nil {
				return nil
			}
			return v
		},
		Set: func(owner any, value any) error {
			t, ok := owner.(*T)
			if !ok {
				return fmt.Errorf("accessor owner is %T, want %T", owner, (*T)(nil))
			}
			if value == nil {
				set(t, nil)
				return nil
			}
			v, ok := value.(*V)
			if !ok {
				return fmt.Errorf("accessor value is %T, want %T", value, (*V)(nil))
			}
			set(t, v)
			return nil
		},
	}
}

// EmbeddedListField declares a list of nested domain objects
func EmbeddedListField[T any, V any](name, target string, get func(*T) []*V, set func(*T, []*V)) FieldMetadata {
	return FieldMetadata{
		Name:         name,
		Kind:         EmbeddedList,
		TargetEntity: target,
		Get: func(owner any) any {
			items := get(owner.(*T))
			if items == nil {
				return nil
			}
			out := make([]any, len(items))
			for i, item := range items {
				out[i] = item
			}
			return out
		},
		Set: func(owner any, value any) error {
			t, ok := owner.(*T)
			if !ok {
				return fmt.Errorf("accessor owner is %T, want %T", owner, (*T)(nil))
			}
			items, ok := value.([]any)
			if !ok {
				return fmt.Errorf("accessor value is %T, want []any", value)
			}
			typed := make([]*V, len(items))
			for i, item := range items {
				v, ok := item.(*V)
				if !ok {
					return fmt.Errorf("list element %d is %T, want %T", i, item, (*V)(nil))
				}
				typed[i] = v
			}
			set(t, typed)
			return nil
		},
	}
}
