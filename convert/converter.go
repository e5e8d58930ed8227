// Package convert maps domain objects to generic entities and back. The
// converter is a pure transform over registered metadata: no partial
// results escape a failed conversion, and inheritance hierarchies resolve
// through the registry's discriminator lookup rather than runtime type
// inspection.
package convert

import (
	"fmt"

	"github.com/ediel-queiroz/jnosql/entity"
	jerrors "github.com/ediel-queiroz/jnosql/errors"
	"github.com/ediel-queiroz/jnosql/metadata"
)

const component = "converter"

// Converter translates between generic entities and domain objects using a
// metadata registry built at bootstrap
type Converter struct {
	registry *metadata.Registry
}

// New creates a converter over the given registry
func New(registry *metadata.Registry) *Converter {
	return &Converter{registry: registry}
}

// ToEntity converts a generic entity into a domain object. When the entity
// name heads an inheritance group, the discriminator document selects the
// concrete type: a missing discriminator or an unmapped value is a mapping
// error.
func (c *Converter) ToEntity(e *entity.DocumentEntity) (any, error) {
	return c.ToEntityAs(e.Name(), e)
}

// ToEntityAs converts a generic entity using the metadata registered under
// the given name, regardless of the entity's own name
func (c *Converter) ToEntityAs(name string, e *entity.DocumentEntity) (any, error) {
	meta, ok := c.registry.FindByName(name)
	if !ok {
		return nil, jerrors.NewMapping(jerrors.ErrUnknownEntity, component, "ToEntity",
			"entity %q", name)
	}

	if column, heads := c.registry.DiscriminatorColumn(meta.TypeName()); heads {
		resolved, err := c.resolveSubtype(meta.TypeName(), column, e)
		if err != nil {
			return nil, err
		}
		meta = resolved
	}

	return c.populate(meta, e)
}

// resolveSubtype picks the concrete metadata of an inheritance group from
// the entity's discriminator document
func (c *Converter) resolveSubtype(group, column string, e *entity.DocumentEntity) (*metadata.EntityMetadata, error) {
	doc, ok := e.Find(column)
	if !ok {
		return nil, jerrors.NewMapping(jerrors.ErrDiscriminatorMissing, component, "ToEntity",
			"entity %q, discriminator %q", group, column)
	}
	value, err := entity.AsString(doc.Value)
	if err != nil {
		return nil, jerrors.NewMapping(err, component, "ToEntity",
			"entity %q, discriminator %q", group, column)
	}
	meta, ok := c.registry.Group(group)[value]
	if !ok {
		return nil, jerrors.NewMapping(jerrors.ErrDiscriminatorUnknown, component, "ToEntity",
			"entity %q, discriminator %s=%q", group, column, value)
	}
	return meta, nil
}

// populate instantiates the metadata's type and fills every declared field
// present in the entity. Absent fields keep their zero value.
func (c *Converter) populate(meta *metadata.EntityMetadata, e *entity.DocumentEntity) (any, error) {
	obj := meta.New()
	for _, f := range meta.Fields() {
		doc, ok := e.Find(f.Name)
		if !ok || doc.Value == nil {
			continue
		}
		value, err := c.raise(f, doc.Value)
		if err != nil {
			return nil, jerrors.NewMapping(err, component, "ToEntity",
				"entity %q, field %q", meta.TypeName(), f.Name)
		}
		if err := f.Set(obj, value); err != nil {
			return nil, jerrors.NewMapping(err, component, "ToEntity",
				"entity %q, field %q", meta.TypeName(), f.Name)
		}
	}
	return obj, nil
}

// raise coerces a document value to the field's domain representation
func (c *Converter) raise(f metadata.FieldMetadata, v any) (any, error) {
	switch f.Kind {
	case metadata.String:
		return entity.AsString(v)
	case metadata.Int:
		return entity.AsInt64(v)
	case metadata.Float:
		return entity.AsFloat64(v)
	case metadata.Bool:
		return entity.AsBool(v)
	case metadata.Time:
		return entity.AsTime(v)
	case metadata.List:
		list, ok := v.([]any)
		if !ok {
			return nil, fmt.Errorf("%w: %T to list", jerrors.ErrFieldCoercion, v)
		}
		return list, nil
	case metadata.Embedded:
		docs, ok := v.([]entity.Document)
		if !ok {
			return nil, fmt.Errorf("%w: %T to embedded entity", jerrors.ErrFieldCoercion, v)
		}
		return c.ToEntityAs(f.TargetEntity, entity.Of(f.TargetEntity, docs...))
	case metadata.EmbeddedList:
		items, ok := v.([]any)
		if !ok {
			return nil, fmt.Errorf("%w: %T to embedded list", jerrors.ErrFieldCoercion, v)
		}
		out := make([]any, len(items))
		for i, item := range items {
			docs, ok := item.([]entity.Document)
			if !ok {
				return nil, fmt.Errorf("%w: list element %d is %T", jerrors.ErrFieldCoercion, i, item)
			}
			converted, err := c.ToEntityAs(f.TargetEntity, entity.Of(f.TargetEntity, docs...))
			if err != nil {
				return nil, err
			}
			out[i] = converted
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: unknown kind %v", jerrors.ErrFieldCoercion, f.Kind)
	}
}

// ToDocument converts a domain object into a generic entity. Subtypes emit
// the entity under their group head's name plus the discriminator document.
// The object's type must declare an identifier field.
func (c *Converter) ToDocument(o any) (*entity.DocumentEntity, error) {
	if o == nil {
		return nil, jerrors.NewMapping(jerrors.ErrNilDomainObject, component, "ToDocument",
			"cannot convert")
	}
	meta, ok := c.registry.FindByObject(o)
	if !ok {
		return nil, jerrors.NewMapping(jerrors.ErrUnknownEntity, component, "ToDocument",
			"type %T", o)
	}
	if _, hasID := meta.ID(); !hasID {
		return nil, jerrors.NewMapping(jerrors.ErrIdentifierMissing, component, "ToDocument",
			"entity %q", meta.TypeName())
	}

	docs, err := c.lower(meta, o)
	if err != nil {
		return nil, err
	}
	return entity.Of(meta.Name(), docs...), nil
}

// lower emits the document list of an object: declared fields in order,
// then the discriminator when the type belongs to a group. Nil field values
// are skipped.
func (c *Converter) lower(meta *metadata.EntityMetadata, o any) ([]entity.Document, error) {
	docs := make([]entity.Document, 0, len(meta.Fields())+1)
	for _, f := range meta.Fields() {
		raw := f.Get(o)
		if raw == nil {
			continue
		}
		value, err := c.lowerValue(f, raw)
		if err != nil {
			return nil, jerrors.NewMapping(err, component, "ToDocument",
				"entity %q, field %q", meta.TypeName(), f.Name)
		}
		docs = append(docs, entity.NewDocument(f.Name, value))
	}
	if inh, ok := meta.Inheritance(); ok {
		column := inh.Column
		if column == "" {
			head, _ := c.registry.DiscriminatorColumn(inh.Parent)
			column = head
		}
		docs = append(docs, entity.NewDocument(column, inh.Value))
	}
	return docs, nil
}

func (c *Converter) lowerValue(f metadata.FieldMetadata, v any) (any, error) {
	switch f.Kind {
	case metadata.Embedded:
		sub, ok := c.registry.FindByObject(v)
		if !ok {
			return nil, fmt.Errorf("%w: embedded type %T", jerrors.ErrUnknownEntity, v)
		}
		return c.lower(sub, v)
	case metadata.EmbeddedList:
		items, ok := v.([]any)
		if !ok {
			return nil, fmt.Errorf("%w: %T as embedded list", jerrors.ErrFieldCoercion, v)
		}
		out := make([]any, len(items))
		for i, item := range items {
			sub, ok := c.registry.FindByObject(item)
			if !ok {
				return nil, fmt.Errorf("%w: list element %d type %T", jerrors.ErrUnknownEntity, i, item)
			}
			docs, err := c.lower(sub, item)
			if err != nil {
				return nil, err
			}
			out[i] = docs
		}
		return out, nil
	default:
		return v, nil
	}
}
