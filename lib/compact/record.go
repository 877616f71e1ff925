package compact

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"
)

// GenericRecord is a schema-described record whose values are held in a
// map instead of an application type. It is produced when a record of a
// type without registered serializer is read, and it can be built by hand
// to write records of arbitrary shape.
//
// Values use the Go types of the typed accessors (see kindOps).
// A GenericRecord is immutable; Clone creates modified copies.
type GenericRecord struct {
	schema *Schema
	values map[string]any
}

// NewGenericRecord builds a record of typeName from field descriptors and
// their values. Every value is validated against the kind of its field;
// the schema is derived from the fields.
func NewGenericRecord(typeName string, fields []FieldDescriptor, values map[string]any) (*GenericRecord, error) {
	schema, err := NewSchema(typeName, fields)
	if err != nil {
		return nil, err
	}
	return NewGenericRecordWithSchema(schema, values)
}

// NewGenericRecordWithSchema builds a record for an existing schema. Every
// schema field must have a valid value (nil is valid for nullable and
// variable-size kinds); values for unknown fields are rejected.
func NewGenericRecordWithSchema(schema *Schema, values map[string]any) (*GenericRecord, error) {
	for name := range values {
		if schema.field(name) == nil {
			return nil, newErrorf(ErrCUnknownField, "invalid field name %q for %s", name, schema)
		}
	}
	copied := make(map[string]any, len(schema.fields))
	for _, fd := range schema.fields {
		v, ok := values[fd.Name]
		if !ok && kindSize(fd.Kind) != variableSize {
			return nil, newErrorf(ErrCInvalidValue, "missing value for field %q of kind %s", fd.Name, fd.Kind)
		}
		if !fieldOps(fd.Kind).validate(v) {
			return nil, newErrorf(ErrCInvalidValue, "value %v (%T) of field %q does not match kind %s", v, v, fd.Name, fd.Kind)
		}
		copied[fd.Name] = v
	}
	return &GenericRecord{schema: schema, values: copied}, nil
}

// newTrustedGenericRecord wraps decoded values without validation.
func newTrustedGenericRecord(schema *Schema, values map[string]any) *GenericRecord {
	return &GenericRecord{schema: schema, values: values}
}

// Schema returns the schema of the record.
func (g *GenericRecord) Schema() *Schema { return g.schema }

// TypeName returns the type name of the record's schema.
func (g *GenericRecord) TypeName() string { return g.schema.typeName }

// GetFieldNames returns the field names in schema order.
func (g *GenericRecord) GetFieldNames() []string { return g.schema.FieldNames() }

// HasField reports whether the schema has the named field.
func (g *GenericRecord) HasField(name string) bool { return g.schema.field(name) != nil }

// GetFieldKind returns the kind of the named field or KindNotAvailable.
func (g *GenericRecord) GetFieldKind(name string) FieldKind {
	if fd := g.schema.field(name); fd != nil {
		return fd.Kind
	}
	return KindNotAvailable
}

// Get returns the raw value of the named field.
func (g *GenericRecord) Get(name string) (any, error) {
	if g.schema.field(name) == nil {
		return nil, newErrorf(ErrCUnknownField, "invalid field name %q for %s", name, g.schema)
	}
	return g.values[name], nil
}

// Clone returns a deep copy of the record with the given fields replaced.
// Override values are validated like in NewGenericRecordWithSchema.
func (g *GenericRecord) Clone(overrides map[string]any) (*GenericRecord, error) {
	for name, v := range overrides {
		fd := g.schema.field(name)
		if fd == nil {
			return nil, newErrorf(ErrCUnknownField, "invalid field name %q for %s", name, g.schema)
		}
		if !fieldOps(fd.Kind).validate(v) {
			return nil, newErrorf(ErrCInvalidValue, "value %v (%T) of field %q does not match kind %s", v, v, name, fd.Kind)
		}
	}
	c := g.deepClone()
	for name, v := range overrides {
		c.values[name] = v
	}
	return c, nil
}

func (g *GenericRecord) deepClone() *GenericRecord {
	values := make(map[string]any, len(g.values))
	for _, fd := range g.schema.fields {
		values[fd.Name] = fieldOps(fd.Kind).clone(g.values[fd.Name])
	}
	return &GenericRecord{schema: g.schema, values: values}
}

// Equal reports whether both records have equal schemas and values.
func (g *GenericRecord) Equal(o *GenericRecord) bool {
	if g == o {
		return true
	}
	if g == nil || o == nil || !g.schema.Equal(o.schema) {
		return false
	}
	for _, fd := range g.schema.fields {
		if !fieldOps(fd.Kind).equal(g.values[fd.Name], o.values[fd.Name]) {
			return false
		}
	}
	return true
}

// Hash returns a hash consistent with Equal.
func (g *GenericRecord) Hash() uint64 {
	h := newRecordHasher()
	h.u64(uint64(g.schema.id))
	for _, fd := range g.schema.fields {
		fieldOps(fd.Kind).hash(h, g.values[fd.Name])
	}
	return h.sum()
}

// String returns the record as JSON: {"<typeName>": {<field>: <value>, ...}}.
// Non-finite floats appear as the strings "NaN", "+Inf" and "-Inf".
func (g *GenericRecord) String() string {
	b, err := g.MarshalJSON()
	if err != nil {
		return fmt.Sprintf("%s{<%v>}", g.schema.typeName, err)
	}
	return string(b)
}

// MarshalJSON implements json.Marshaler. Fields appear in schema order.
func (g *GenericRecord) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	name, _ := json.Marshal(g.schema.typeName)
	buf.WriteString("{")
	buf.Write(name)
	buf.WriteString(":{")
	for i, fd := range g.schema.fields {
		if i > 0 {
			buf.WriteString(",")
		}
		key, _ := json.Marshal(fd.Name)
		buf.Write(key)
		buf.WriteString(":")
		v, err := json.Marshal(jsonValue(g.values[fd.Name]))
		if err != nil {
			return nil, err
		}
		buf.Write(v)
	}
	buf.WriteString("}}")
	return buf.Bytes(), nil
}

// jsonValue replaces non-finite floats, which encoding/json rejects, by
// their string form. Other values are returned unchanged.
func jsonValue(v any) any {
	switch x := v.(type) {
	case float32:
		return jsonFloat(float64(x), x)
	case float64:
		return jsonFloat(x, x)
	case *float32:
		if x == nil {
			return x
		}
		return jsonFloat(float64(*x), *x)
	case *float64:
		if x == nil {
			return x
		}
		return jsonFloat(*x, *x)
	case []float32:
		return jsonFloats(x, func(f float32) any { return jsonFloat(float64(f), f) })
	case []float64:
		return jsonFloats(x, func(f float64) any { return jsonFloat(f, f) })
	case []*float32:
		return jsonFloats(x, func(f *float32) any { return jsonValue(f) })
	case []*float64:
		return jsonFloats(x, func(f *float64) any { return jsonValue(f) })
	}
	return v
}

func jsonFloat(f float64, orig any) any {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return strconv.FormatFloat(f, 'g', -1, 64)
	}
	return orig
}

func jsonFloats[T any](s []T, conv func(T) any) any {
	if s == nil {
		return s
	}
	out := make([]any, len(s))
	for i, f := range s {
		out[i] = conv(f)
	}
	return out
}

// --------------------------------------------------------------------------
// Typed getters
// --------------------------------------------------------------------------

// getTyped returns the value of the named field, which must have one of the
// given kinds.
func getTyped[T any](g *GenericRecord, name string, kinds ...FieldKind) (T, error) {
	var zero T
	fd := g.schema.field(name)
	if fd == nil {
		return zero, newErrorf(ErrCUnknownField, "invalid field name %q for %s", name, g.schema)
	}
	if !slices.Contains(kinds, fd.Kind) {
		names := make([]string, len(kinds))
		for i, k := range kinds {
			names[i] = k.String()
		}
		return zero, newErrorf(ErrCFieldKindMismatch, "mismatched field kind %s for field %q, kind must be one of [%s]",
			fd.Kind, name, strings.Join(names, ", "))
	}
	v, _ := g.values[name].(T)
	return v, nil
}

// getNonNull reads a primitive stored as primitive or nullable kind.
func getNonNull[T any](g *GenericRecord, name string, kind, nullableKind FieldKind, method string) (T, error) {
	var zero T
	if g.GetFieldKind(name) == nullableKind {
		p, err := getTyped[*T](g, name, nullableKind)
		if err != nil {
			return zero, err
		}
		if p == nil {
			return zero, newErrorf(ErrCUnexpectedNull, "unexpected null value for field %q, use %s instead", name, method)
		}
		return *p, nil
	}
	return getTyped[T](g, name, kind, nullableKind)
}

// getNullable reads a nullable primitive stored as primitive or nullable kind.
func getNullable[T any](g *GenericRecord, name string, kind, nullableKind FieldKind) (*T, error) {
	if g.GetFieldKind(name) == kind {
		v, err := getTyped[T](g, name, kind)
		if err != nil {
			return nil, err
		}
		return &v, nil
	}
	return getTyped[*T](g, name, nullableKind, kind)
}

func getArrayNonNull[T any](g *GenericRecord, name string, kind, nullableKind FieldKind, method string) ([]T, error) {
	if g.GetFieldKind(name) == nullableKind {
		items, err := getTyped[[]*T](g, name, nullableKind)
		if err != nil || items == nil {
			return nil, err
		}
		out := make([]T, len(items))
		for i, item := range items {
			if item == nil {
				return nil, newErrorf(ErrCUnexpectedNull, "array field %q contains null, use %s instead", name, method)
			}
			out[i] = *item
		}
		return out, nil
	}
	return getTyped[[]T](g, name, kind, nullableKind)
}

func getArrayNullable[T any](g *GenericRecord, name string, kind, nullableKind FieldKind) ([]*T, error) {
	if g.GetFieldKind(name) == kind {
		items, err := getTyped[[]T](g, name, kind)
		if err != nil || items == nil {
			return nil, err
		}
		out := make([]*T, len(items))
		for i := range items {
			v := items[i]
			out[i] = &v
		}
		return out, nil
	}
	return getTyped[[]*T](g, name, nullableKind, kind)
}

func (g *GenericRecord) GetBoolean(name string) (bool, error) {
	return getNonNull[bool](g, name, KindBoolean, KindNullableBoolean, "GetNullableBoolean")
}

func (g *GenericRecord) GetInt8(name string) (int8, error) {
	return getNonNull[int8](g, name, KindInt8, KindNullableInt8, "GetNullableInt8")
}

func (g *GenericRecord) GetInt16(name string) (int16, error) {
	return getNonNull[int16](g, name, KindInt16, KindNullableInt16, "GetNullableInt16")
}

func (g *GenericRecord) GetInt32(name string) (int32, error) {
	return getNonNull[int32](g, name, KindInt32, KindNullableInt32, "GetNullableInt32")
}

func (g *GenericRecord) GetInt64(name string) (int64, error) {
	return getNonNull[int64](g, name, KindInt64, KindNullableInt64, "GetNullableInt64")
}

func (g *GenericRecord) GetFloat32(name string) (float32, error) {
	return getNonNull[float32](g, name, KindFloat32, KindNullableFloat32, "GetNullableFloat32")
}

func (g *GenericRecord) GetFloat64(name string) (float64, error) {
	return getNonNull[float64](g, name, KindFloat64, KindNullableFloat64, "GetNullableFloat64")
}

func (g *GenericRecord) GetString(name string) (*string, error) {
	return getTyped[*string](g, name, KindString)
}

func (g *GenericRecord) GetDecimal(name string) (*Decimal, error) {
	return getTyped[*Decimal](g, name, KindDecimal)
}

func (g *GenericRecord) GetTime(name string) (*LocalTime, error) {
	return getTyped[*LocalTime](g, name, KindTime)
}

func (g *GenericRecord) GetDate(name string) (*LocalDate, error) {
	return getTyped[*LocalDate](g, name, KindDate)
}

func (g *GenericRecord) GetTimestamp(name string) (*LocalDateTime, error) {
	return getTyped[*LocalDateTime](g, name, KindTimestamp)
}

func (g *GenericRecord) GetTimestampWithTimezone(name string) (*OffsetDateTime, error) {
	return getTyped[*OffsetDateTime](g, name, KindTimestampWithTimezone)
}

// GetCompact returns a nested value: a *GenericRecord or, for records read
// with a registered serializer for the nested type, the typed object.
func (g *GenericRecord) GetCompact(name string) (any, error) {
	return getTyped[any](g, name, KindCompact)
}

// GetGenericRecord returns a nested generic record.
func (g *GenericRecord) GetGenericRecord(name string) (*GenericRecord, error) {
	v, err := g.GetCompact(name)
	if err != nil || v == nil {
		return nil, err
	}
	r, ok := v.(*GenericRecord)
	if !ok {
		return nil, newErrorf(ErrCInvalidValue, "field %q holds %T, not a generic record", name, v)
	}
	return r, nil
}

func (g *GenericRecord) GetArrayOfBoolean(name string) ([]bool, error) {
	return getArrayNonNull[bool](g, name, KindArrayOfBoolean, KindArrayOfNullableBoolean, "GetArrayOfNullableBoolean")
}

func (g *GenericRecord) GetArrayOfInt8(name string) ([]int8, error) {
	return getArrayNonNull[int8](g, name, KindArrayOfInt8, KindArrayOfNullableInt8, "GetArrayOfNullableInt8")
}

func (g *GenericRecord) GetArrayOfInt16(name string) ([]int16, error) {
	return getArrayNonNull[int16](g, name, KindArrayOfInt16, KindArrayOfNullableInt16, "GetArrayOfNullableInt16")
}

func (g *GenericRecord) GetArrayOfInt32(name string) ([]int32, error) {
	return getArrayNonNull[int32](g, name, KindArrayOfInt32, KindArrayOfNullableInt32, "GetArrayOfNullableInt32")
}

func (g *GenericRecord) GetArrayOfInt64(name string) ([]int64, error) {
	return getArrayNonNull[int64](g, name, KindArrayOfInt64, KindArrayOfNullableInt64, "GetArrayOfNullableInt64")
}

func (g *GenericRecord) GetArrayOfFloat32(name string) ([]float32, error) {
	return getArrayNonNull[float32](g, name, KindArrayOfFloat32, KindArrayOfNullableFloat32, "GetArrayOfNullableFloat32")
}

func (g *GenericRecord) GetArrayOfFloat64(name string) ([]float64, error) {
	return getArrayNonNull[float64](g, name, KindArrayOfFloat64, KindArrayOfNullableFloat64, "GetArrayOfNullableFloat64")
}

func (g *GenericRecord) GetArrayOfString(name string) ([]*string, error) {
	return getTyped[[]*string](g, name, KindArrayOfString)
}

func (g *GenericRecord) GetArrayOfDecimal(name string) ([]*Decimal, error) {
	return getTyped[[]*Decimal](g, name, KindArrayOfDecimal)
}

func (g *GenericRecord) GetArrayOfTime(name string) ([]*LocalTime, error) {
	return getTyped[[]*LocalTime](g, name, KindArrayOfTime)
}

func (g *GenericRecord) GetArrayOfDate(name string) ([]*LocalDate, error) {
	return getTyped[[]*LocalDate](g, name, KindArrayOfDate)
}

func (g *GenericRecord) GetArrayOfTimestamp(name string) ([]*LocalDateTime, error) {
	return getTyped[[]*LocalDateTime](g, name, KindArrayOfTimestamp)
}

func (g *GenericRecord) GetArrayOfTimestampWithTimezone(name string) ([]*OffsetDateTime, error) {
	return getTyped[[]*OffsetDateTime](g, name, KindArrayOfTimestampWithTimezone)
}

func (g *GenericRecord) GetArrayOfCompact(name string) ([]any, error) {
	return getTyped[[]any](g, name, KindArrayOfCompact)
}

func (g *GenericRecord) GetNullableBoolean(name string) (*bool, error) {
	return getNullable[bool](g, name, KindBoolean, KindNullableBoolean)
}

func (g *GenericRecord) GetNullableInt8(name string) (*int8, error) {
	return getNullable[int8](g, name, KindInt8, KindNullableInt8)
}

func (g *GenericRecord) GetNullableInt16(name string) (*int16, error) {
	return getNullable[int16](g, name, KindInt16, KindNullableInt16)
}

func (g *GenericRecord) GetNullableInt32(name string) (*int32, error) {
	return getNullable[int32](g, name, KindInt32, KindNullableInt32)
}

func (g *GenericRecord) GetNullableInt64(name string) (*int64, error) {
	return getNullable[int64](g, name, KindInt64, KindNullableInt64)
}

func (g *GenericRecord) GetNullableFloat32(name string) (*float32, error) {
	return getNullable[float32](g, name, KindFloat32, KindNullableFloat32)
}

func (g *GenericRecord) GetNullableFloat64(name string) (*float64, error) {
	return getNullable[float64](g, name, KindFloat64, KindNullableFloat64)
}

func (g *GenericRecord) GetArrayOfNullableBoolean(name string) ([]*bool, error) {
	return getArrayNullable[bool](g, name, KindArrayOfBoolean, KindArrayOfNullableBoolean)
}

func (g *GenericRecord) GetArrayOfNullableInt8(name string) ([]*int8, error) {
	return getArrayNullable[int8](g, name, KindArrayOfInt8, KindArrayOfNullableInt8)
}

func (g *GenericRecord) GetArrayOfNullableInt16(name string) ([]*int16, error) {
	return getArrayNullable[int16](g, name, KindArrayOfInt16, KindArrayOfNullableInt16)
}

func (g *GenericRecord) GetArrayOfNullableInt32(name string) ([]*int32, error) {
	return getArrayNullable[int32](g, name, KindArrayOfInt32, KindArrayOfNullableInt32)
}

func (g *GenericRecord) GetArrayOfNullableInt64(name string) ([]*int64, error) {
	return getArrayNullable[int64](g, name, KindArrayOfInt64, KindArrayOfNullableInt64)
}

func (g *GenericRecord) GetArrayOfNullableFloat32(name string) ([]*float32, error) {
	return getArrayNullable[float32](g, name, KindArrayOfFloat32, KindArrayOfNullableFloat32)
}

func (g *GenericRecord) GetArrayOfNullableFloat64(name string) ([]*float64, error) {
	return getArrayNullable[float64](g, name, KindArrayOfFloat64, KindArrayOfNullableFloat64)
}
