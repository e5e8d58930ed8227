package entity

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	jerrors "github.com/ediel-queiroz/jnosql/errors"
)

// MarshalJSON encodes the entity as a plain JSON object preserving field
// order. Nested []Document values become nested objects, lists become
// arrays. The entity name is not part of the payload; store drivers carry
// it in the key.
func (e *DocumentEntity) MarshalJSON() ([]byte, error) {
	return marshalDocuments(e.documents)
}

func marshalDocuments(docs []Document) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, doc := range docs {
		if i > 0 {
			buf.WriteByte(',')
		}
		name, err := json.Marshal(doc.Name)
		if err != nil {
			return nil, err
		}
		buf.Write(name)
		buf.WriteByte(':')
		if err := marshalValue(&buf, doc.Value); err != nil {
			return nil, err
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func marshalValue(buf *bytes.Buffer, v any) error {
	switch val := v.(type) {
	case []Document:
		data, err := marshalDocuments(val)
		if err != nil {
			return err
		}
		buf.Write(data)
	case []any:
		buf.WriteByte('[')
		for i, item := range val {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := marshalValue(buf, item); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	case time.Time:
		data, err := json.Marshal(val.Format(time.RFC3339Nano))
		if err != nil {
			return err
		}
		buf.Write(data)
	default:
		data, err := json.Marshal(val)
		if err != nil {
			return err
		}
		buf.Write(data)
	}
	return nil
}

// FromJSON decodes a JSON object into an entity with the given name.
// Numbers decode as int64 when integral, float64 otherwise; nested objects
// become []Document; arrays become []any.
func FromJSON(name string, data []byte) (*DocumentEntity, error) {
	docs, err := DocumentsFromJSON(data)
	if err != nil {
		return nil, err
	}
	return Of(name, docs...), nil
}

// DocumentsFromJSON decodes a JSON object into an ordered document list
func DocumentsFromJSON(data []byte) ([]Document, error) {
	dec := newDecoder(data)
	tok, err := dec.Token()
	if err != nil {
		return nil, invalidJSON(err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, invalidJSON(fmt.Errorf("expected object, got %v", tok))
	}
	docs, err := decodeDocuments(dec)
	if err != nil {
		return nil, invalidJSON(err)
	}
	return docs, nil
}

// ValueFromJSON decodes a single JSON value (scalar, array, or object)
// using the same conventions as DocumentsFromJSON
func ValueFromJSON(data []byte) (any, error) {
	dec := newDecoder(data)
	v, err := decodeValue(dec)
	if err != nil {
		return nil, invalidJSON(err)
	}
	return v, nil
}

func newDecoder(data []byte) *json.Decoder {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	return dec
}

func invalidJSON(err error) error {
	return fmt.Errorf("%w: %v", jerrors.ErrMalformedQuery, err)
}

// decodeDocuments consumes object members until the closing brace. The
// opening brace must already be consumed.
func decodeDocuments(dec *json.Decoder) ([]Document, error) {
	var docs []Document
	for {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		if delim, ok := tok.(json.Delim); ok && delim == '}' {
			return docs, nil
		}
		name, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("expected field name, got %v", tok)
		}
		value, err := decodeValue(dec)
		if err != nil {
			return nil, err
		}
		docs = append(docs, Document{Name: name, Value: value})
	}
}

func decodeValue(dec *json.Decoder) (any, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			return decodeDocuments(dec)
		case '[':
			var list []any
			for dec.More() {
				item, err := decodeValue(dec)
				if err != nil {
					return nil, err
				}
				list = append(list, item)
			}
			// closing bracket
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return list, nil
		default:
			return nil, fmt.Errorf("unexpected delimiter %v", t)
		}
	case json.Number:
		return numberValue(t)
	default:
		// string, bool, nil
		return tok, nil
	}
}

// numberValue keeps integral numbers as int64 and everything else as
// float64
func numberValue(n json.Number) (any, error) {
	s := n.String()
	if !strings.ContainsAny(s, ".eE") {
		i, err := n.Int64()
		if err == nil {
			return i, nil
		}
	}
	f, err := n.Float64()
	if err != nil {
		return nil, err
	}
	return f, nil
}
