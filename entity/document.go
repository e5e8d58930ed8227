// Package entity provides the communication layer of the mapping framework:
// generic entities made of named documents, value coercion, query
// descriptors, and the Manager contract implemented by store drivers.
//
// A DocumentEntity is one record independent of any domain type. Store
// drivers persist and retrieve DocumentEntity values; the convert package
// binds them to domain objects through registered metadata.
package entity

import (
	"fmt"
	"strconv"
	"time"

	jerrors "github.com/ediel-queiroz/jnosql/errors"
)

// Document is one named field of a generic entity. Value is restricted to
// nil, bool, string, int64, float64, time.Time, []Document (a nested
// entity), or []any (a list whose elements follow the same rules).
type Document struct {
	Name  string
	Value any
}

// NewDocument creates a document with the given name and value
func NewDocument(name string, value any) Document {
	return Document{Name: name, Value: value}
}

// String coerces the document value to a string
func (d Document) String() (string, error) {
	return AsString(d.Value)
}

// Int coerces the document value to an int64
func (d Document) Int() (int64, error) {
	return AsInt64(d.Value)
}

// Float coerces the document value to a float64
func (d Document) Float() (float64, error) {
	return AsFloat64(d.Value)
}

// Bool coerces the document value to a bool
func (d Document) Bool() (bool, error) {
	return AsBool(d.Value)
}

// Time coerces the document value to a time.Time
func (d Document) Time() (time.Time, error) {
	return AsTime(d.Value)
}

// SubDocuments returns the value as a nested document list
func (d Document) SubDocuments() ([]Document, error) {
	if docs, ok := d.Value.([]Document); ok {
		return docs, nil
	}
	return nil, coercionError(d.Value, "[]Document")
}

// List returns the value as a generic list
func (d Document) List() ([]any, error) {
	if list, ok := d.Value.([]any); ok {
		return list, nil
	}
	return nil, coercionError(d.Value, "[]any")
}

func coercionError(v any, target string) error {
	return fmt.Errorf("%w: %T to %s", jerrors.ErrFieldCoercion, v, target)
}

// AsString coerces a document value to a string
func AsString(v any) (string, error) {
	switch val := v.(type) {
	case string:
		return val, nil
	case int64:
		return strconv.FormatInt(val, 10), nil
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64), nil
	case bool:
		return strconv.FormatBool(val), nil
	case time.Time:
		return val.Format(time.RFC3339Nano), nil
	default:
		return "", coercionError(v, "string")
	}
}

// AsInt64 coerces a document value to an int64. Floats convert only when
// integral; strings parse as base-10 integers.
func AsInt64(v any) (int64, error) {
	switch val := v.(type) {
	case int64:
		return val, nil
	case int:
		return int64(val), nil
	case int32:
		return int64(val), nil
	case float64:
		if val == float64(int64(val)) {
			return int64(val), nil
		}
		return 0, coercionError(v, "int64")
	case string:
		n, err := strconv.ParseInt(val, 10, 64)
		if err != nil {
			return 0, coercionError(v, "int64")
		}
		return n, nil
	default:
		return 0, coercionError(v, "int64")
	}
}

// AsFloat64 coerces a document value to a float64
func AsFloat64(v any) (float64, error) {
	switch val := v.(type) {
	case float64:
		return val, nil
	case int64:
		return float64(val), nil
	case int:
		return float64(val), nil
	case string:
		f, err := strconv.ParseFloat(val, 64)
		if err != nil {
			return 0, coercionError(v, "float64")
		}
		return f, nil
	default:
		return 0, coercionError(v, "float64")
	}
}

// AsBool coerces a document value to a bool
func AsBool(v any) (bool, error) {
	switch val := v.(type) {
	case bool:
		return val, nil
	case string:
		b, err := strconv.ParseBool(val)
		if err != nil {
			return false, coercionError(v, "bool")
		}
		return b, nil
	default:
		return false, coercionError(v, "bool")
	}
}

// AsTime coerces a document value to a time.Time. Strings parse as RFC3339;
// integers are Unix milliseconds.
func AsTime(v any) (time.Time, error) {
	switch val := v.(type) {
	case time.Time:
		return val, nil
	case string:
		t, err := time.Parse(time.RFC3339Nano, val)
		if err != nil {
			return time.Time{}, coercionError(v, "time.Time")
		}
		return t, nil
	case int64:
		return time.UnixMilli(val).UTC(), nil
	default:
		return time.Time{}, coercionError(v, "time.Time")
	}
}
