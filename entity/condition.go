package entity

import (
	"fmt"
	"strings"

	jerrors "github.com/ediel-queiroz/jnosql/errors"
)

// Operator is a comparison operator of a query condition
type Operator string

const (
	// Eq matches when the field value equals the condition value
	Eq Operator = "="
	// Gt matches when the field value is greater than the condition value
	Gt Operator = ">"
	// Gte matches when the field value is greater than or equal
	Gte Operator = ">="
	// Lt matches when the field value is less than the condition value
	Lt Operator = "<"
	// Lte matches when the field value is less than or equal
	Lte Operator = "<="
	// In matches when the field value appears in the condition list
	In Operator = "IN"
	// Like matches strings against a pattern with % wildcards
	Like Operator = "LIKE"
)

// Condition is one field predicate of a select or delete query. Conditions
// on the same query combine with AND.
type Condition struct {
	Field    string
	Operator Operator
	Value    any
}

// Matches evaluates the condition against an entity. A missing field never
// matches.
func (c Condition) Matches(e *DocumentEntity) (bool, error) {
	doc, ok := e.Find(c.Field)
	if !ok {
		return false, nil
	}

	switch c.Operator {
	case Eq:
		return valuesEqual(doc.Value, c.Value), nil
	case Gt, Gte, Lt, Lte:
		cmp, err := compareValues(doc.Value, c.Value)
		if err != nil {
			return false, err
		}
		switch c.Operator {
		case Gt:
			return cmp > 0, nil
		case Gte:
			return cmp >= 0, nil
		case Lt:
			return cmp < 0, nil
		default:
			return cmp <= 0, nil
		}
	case In:
		list, ok := c.Value.([]any)
		if !ok {
			return false, fmt.Errorf("%w: IN requires a list value", jerrors.ErrMalformedQuery)
		}
		for _, item := range list {
			if valuesEqual(doc.Value, item) {
				return true, nil
			}
		}
		return false, nil
	case Like:
		s, err := AsString(doc.Value)
		if err != nil {
			return false, err
		}
		pattern, err := AsString(c.Value)
		if err != nil {
			return false, err
		}
		return matchLike(s, pattern), nil
	default:
		return false, fmt.Errorf("%w: operator %q", jerrors.ErrMalformedQuery, c.Operator)
	}
}

// valuesEqual compares two document values, treating int64 and float64 as
// the same numeric domain
func valuesEqual(a, b any) bool {
	if af, aok := numeric(a); aok {
		if bf, bok := numeric(b); bok {
			return af == bf
		}
		return false
	}
	return a == b
}

func numeric(v any) (float64, bool) {
	switch n := v.(type) {
	case int64:
		return float64(n), true
	case int:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}

// compareValues orders two values: numbers numerically, strings
// lexicographically
func compareValues(a, b any) (int, error) {
	if af, aok := numeric(a); aok {
		bf, bok := numeric(b)
		if !bok {
			return 0, coercionError(b, "number")
		}
		switch {
		case af < bf:
			return -1, nil
		case af > bf:
			return 1, nil
		default:
			return 0, nil
		}
	}
	as, aok := a.(string)
	bs, bok := b.(string)
	if !aok || !bok {
		return 0, coercionError(a, "comparable value")
	}
	return strings.Compare(as, bs), nil
}

// matchLike matches s against a pattern where % matches any run of
// characters. A pattern without % requires an exact match.
func matchLike(s, pattern string) bool {
	parts := strings.Split(pattern, "%")
	if len(parts) == 1 {
		return s == pattern
	}

	if parts[0] != "" {
		if !strings.HasPrefix(s, parts[0]) {
			return false
		}
		s = s[len(parts[0]):]
	}

	last := parts[len(parts)-1]
	middle := parts[1 : len(parts)-1]
	for _, part := range middle {
		if part == "" {
			continue
		}
		idx := strings.Index(s, part)
		if idx < 0 {
			return false
		}
		s = s[idx+len(part):]
	}

	if last != "" {
		return strings.HasSuffix(s, last)
	}
	return true
}
