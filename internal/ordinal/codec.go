package ordinal

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/opforge/opforge/internal/model"
)

// Record is the runtime value form the codec operates on: property name to
// value, with nested schema-bearing members as nested Records.
type Record map[string]any

// Constructor builds an instance from every decoded slot value at once, in
// schema order. Registered for types with all-at-once construction.
type Constructor func(values []any) (Record, error)

// VersionMismatchError is returned when an encoded value's slot count does
// not match the current schema. Misassigning trailing or missing members is
// never an option; the decode fails explicitly.
type VersionMismatchError struct {
	TypeName string
	Expected int
	Actual   int
}

func (e *VersionMismatchError) Error() string {
	return fmt.Sprintf("ordinal schema mismatch for %s: expected %d members, got %d",
		e.TypeName, e.Expected, e.Actual)
}

// Codec encodes and decodes values against registered ordinal schemas.
// Registration happens once at startup; Encode and Decode are then safe for
// concurrent use.
type Codec struct {
	schemas map[string]*model.OrdinalSchema
	ctors   map[string]Constructor
}

// NewCodec returns an empty codec.
func NewCodec() *Codec {
	return &Codec{
		schemas: map[string]*model.OrdinalSchema{},
		ctors:   map[string]Constructor{},
	}
}

// Register adds a schema. Nested schema references resolve against the same
// codec, so every referenced schema must be registered before use.
func (c *Codec) Register(s *model.OrdinalSchema) {
	c.schemas[s.TypeName] = s
}

// RegisterConstructor supplies the all-at-once constructor for a type. Types
// with mutable assignment do not need one.
func (c *Codec) RegisterConstructor(typeName string, fn Constructor) {
	c.ctors[typeName] = fn
}

// Encode emits one array slot per schema entry, in schema order, recursing
// into nested schema-bearing members.
func (c *Codec) Encode(typeName string, rec Record) ([]byte, error) {
	slots, err := c.encodeSlots(typeName, rec)
	if err != nil {
		return nil, err
	}
	return json.Marshal(slots)
}

func (c *Codec) encodeSlots(typeName string, rec Record) ([]any, error) {
	schema, ok := c.schemas[typeName]
	if !ok {
		return nil, fmt.Errorf("no ordinal schema registered for %s", typeName)
	}

	slots := make([]any, len(schema.Properties))
	for i, prop := range schema.Properties {
		value := rec[prop.Name]
		if value == nil {
			slots[i] = nil
			continue
		}
		encoded, err := c.encodeValue(prop, value)
		if err != nil {
			return nil, fmt.Errorf("%s.%s: %w", typeName, prop.Name, err)
		}
		slots[i] = encoded
	}
	return slots, nil
}

func (c *Codec) encodeValue(prop model.OrdinalProperty, value any) (any, error) {
	switch prop.Class {
	case model.ClassNested:
		nested, err := asRecord(value)
		if err != nil {
			return nil, err
		}
		return c.encodeSlots(prop.SchemaRef, nested)

	case model.ClassCollection:
		items, ok := value.([]any)
		if !ok {
			return nil, fmt.Errorf("expected collection, got %T", value)
		}
		if prop.SchemaRef == "" {
			return items, nil
		}
		out := make([]any, len(items))
		for i, item := range items {
			nested, err := asRecord(item)
			if err != nil {
				return nil, err
			}
			slots, err := c.encodeSlots(prop.SchemaRef, nested)
			if err != nil {
				return nil, err
			}
			out[i] = slots
		}
		return out, nil

	default:
		return value, nil
	}
}

// Decode reads slots in schema order and materializes a Record. Types with
// mutable assignment are filled one slot at a time; all-at-once types buffer
// every value and construct in one step.
func (c *Codec) Decode(typeName string, data []byte) (Record, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode %s: %w", typeName, err)
	}
	return c.decodeSlots(typeName, raw)
}

func (c *Codec) decodeSlots(typeName string, raw []json.RawMessage) (Record, error) {
	schema, ok := c.schemas[typeName]
	if !ok {
		return nil, fmt.Errorf("no ordinal schema registered for %s", typeName)
	}
	if len(raw) != len(schema.Properties) {
		return nil, &VersionMismatchError{
			TypeName: typeName,
			Expected: len(schema.Properties),
			Actual:   len(raw),
		}
	}

	switch schema.Construction {
	case model.AllAtOnceConstruction:
		values := make([]any, len(raw))
		for i, prop := range schema.Properties {
			value, err := c.decodeValue(prop, raw[i])
			if err != nil {
				return nil, fmt.Errorf("%s.%s: %w", typeName, prop.Name, err)
			}
			values[i] = value
		}
		if ctor, ok := c.ctors[typeName]; ok {
			return ctor(values)
		}
		rec := make(Record, len(values))
		for i, prop := range schema.Properties {
			rec[prop.Name] = values[i]
		}
		return rec, nil

	default:
		rec := make(Record, len(raw))
		for i, prop := range schema.Properties {
			value, err := c.decodeValue(prop, raw[i])
			if err != nil {
				return nil, fmt.Errorf("%s.%s: %w", typeName, prop.Name, err)
			}
			rec[prop.Name] = value
		}
		return rec, nil
	}
}

func (c *Codec) decodeValue(prop model.OrdinalProperty, raw json.RawMessage) (any, error) {
	if isJSONNull(raw) {
		return nil, nil
	}

	switch prop.Class {
	case model.ClassNested:
		var slots []json.RawMessage
		if err := json.Unmarshal(raw, &slots); err != nil {
			return nil, err
		}
		return c.decodeSlots(prop.SchemaRef, slots)

	case model.ClassCollection:
		var items []json.RawMessage
		if err := json.Unmarshal(raw, &items); err != nil {
			return nil, err
		}
		out := make([]any, len(items))
		for i, item := range items {
			if prop.SchemaRef == "" {
				value, err := decodeScalar(item)
				if err != nil {
					return nil, err
				}
				out[i] = value
				continue
			}
			var slots []json.RawMessage
			if err := json.Unmarshal(item, &slots); err != nil {
				return nil, err
			}
			rec, err := c.decodeSlots(prop.SchemaRef, slots)
			if err != nil {
				return nil, err
			}
			out[i] = rec
		}
		return out, nil

	default:
		return decodeScalar(raw)
	}
}

// decodeScalar preserves number literals via json.Number so that re-encoding
// a decoded value reproduces the original bytes.
func decodeScalar(raw json.RawMessage) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	return v, nil
}

func isJSONNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

func asRecord(value any) (Record, error) {
	switch v := value.(type) {
	case Record:
		return v, nil
	case map[string]any:
		return Record(v), nil
	default:
		return nil, fmt.Errorf("expected nested record, got %T", value)
	}
}
