package compact

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSchemaFieldOrderIndependence(t *testing.T) {
	a := mustSchema(t, "rec", NewField("c", KindInt32), NewField("a", KindString), NewField("b", KindBoolean))
	b := mustSchema(t, "rec", NewField("a", KindString), NewField("b", KindBoolean), NewField("c", KindInt32))

	assert.Equal(t, a.ID(), b.ID())
	assert.Equal(t, []string{"a", "b", "c"}, a.FieldNames())
	assert.True(t, a.Equal(b))
}

func TestSchemaIDChanges(t *testing.T) {
	base := mustSchema(t, "rec", NewField("a", KindInt32), NewField("b", KindString))

	tests := []struct {
		name   string
		schema *Schema
	}{
		{"renamed field", mustSchema(t, "rec", NewField("x", KindInt32), NewField("b", KindString))},
		{"changed kind", mustSchema(t, "rec", NewField("a", KindInt64), NewField("b", KindString))},
		{"other type name", mustSchema(t, "rec2", NewField("a", KindInt32), NewField("b", KindString))},
		{"extra field", mustSchema(t, "rec", NewField("a", KindInt32), NewField("b", KindString), NewField("c", KindInt8))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotEqual(t, base.ID(), tt.schema.ID())
			assert.False(t, base.Equal(tt.schema))
		})
	}
}

func TestSchemaFingerprintValues(t *testing.T) {
	// reference values of the fingerprint algorithm
	assert.Equal(t, int64(-6031767438435409305),
		mustSchema(t, "point", NewField("y", KindInt32), NewField("x", KindInt32)).ID())
	assert.Equal(t, int64(-2070306242361297200),
		mustSchema(t, "rec", NewField("a", KindInt32), NewField("b", KindString), NewField("c", KindArrayOfInt32)).ID())
	assert.Equal(t, int64(-4327250087401636846), mustSchema(t, "").ID())
}

func TestSchemaLayout(t *testing.T) {
	s := mustSchema(t, "layout",
		NewField("i8", KindInt8),
		NewField("i64", KindInt64),
		NewField("b1", KindBoolean),
		NewField("i32a", KindInt32),
		NewField("i32b", KindInt32),
		NewField("f64", KindFloat64),
		NewField("str", KindString),
		NewField("arr", KindArrayOfInt32),
		NewField("b0", KindBoolean),
		NewField("i16", KindInt16),
		NewField("n32", KindNullableInt32),
	)

	field := func(name string) FieldDescriptor {
		fd, ok := s.Field(name)
		require.True(t, ok, name)
		return fd
	}

	// 8-byte fields in name order, then 4, 2, 1
	assert.Equal(t, 0, field("f64").Offset)
	assert.Equal(t, 8, field("i64").Offset)
	assert.Equal(t, 16, field("i32a").Offset)
	assert.Equal(t, 20, field("i32b").Offset)
	assert.Equal(t, 24, field("i16").Offset)
	assert.Equal(t, 26, field("i8").Offset)

	// booleans share one byte behind the fixed fields
	assert.Equal(t, 27, field("b0").Offset)
	assert.Equal(t, 0, field("b0").BitOffset)
	assert.Equal(t, 27, field("b1").Offset)
	assert.Equal(t, 1, field("b1").BitOffset)
	assert.Equal(t, 28, s.FixedSizeFieldsLength())

	// variable-size fields indexed by name, nullable primitives included
	assert.Equal(t, 0, field("arr").Index)
	assert.Equal(t, 1, field("n32").Index)
	assert.Equal(t, 2, field("str").Index)
	assert.Equal(t, 3, s.NumberVarSizeFields())
	assert.Equal(t, -1, field("str").Offset)
	assert.Equal(t, -1, field("i8").Index)
}

func TestSchemaNineBooleansUseTwoBytes(t *testing.T) {
	var fields []FieldDescriptor
	for _, name := range []string{"a", "b", "c", "d", "e", "f", "g", "h", "i"} {
		fields = append(fields, NewField(name, KindBoolean))
	}
	s := mustSchema(t, "flags", fields...)
	assert.Equal(t, 2, s.FixedSizeFieldsLength())
	fd, _ := s.Field("i")
	assert.Equal(t, 1, fd.Offset)
	assert.Equal(t, 0, fd.BitOffset)
}

func TestSchemaRejectsInvalidFields(t *testing.T) {
	_, err := NewSchema("bad", []FieldDescriptor{NewField("a", KindInt32), NewField("a", KindInt64)})
	assert.True(t, errors.Is(err, ErrInvalidValue))

	for _, k := range []FieldKind{KindNotAvailable, kindChar, kindArrayOfPortable, FieldKind(47), FieldKind(-1)} {
		_, err := NewSchema("bad", []FieldDescriptor{NewField("a", k)})
		assert.Error(t, err, k.String())
	}
}

func TestSchemaCodec(t *testing.T) {
	s := mustSchema(t, "codec",
		NewField("name", KindString),
		NewField("age", KindInt32),
		NewField("tags", KindArrayOfString),
		NewField("nested", KindCompact),
	)

	t.Run("single", func(t *testing.T) {
		out := NewObjectDataOutput(0)
		WriteSchema(out, s)
		got, err := ReadSchema(NewObjectDataInput(out.ToBytes()))
		require.NoError(t, err)
		assert.True(t, s.Equal(got))
		assert.Equal(t, s.ID(), got.ID())
	})

	t.Run("list", func(t *testing.T) {
		other := mustSchema(t, "other", NewField("x", KindFloat64))
		got, err := DecodeSchemas(EncodeSchemas(s, other))
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.True(t, s.Equal(got[0]))
		assert.True(t, other.Equal(got[1]))

		empty, err := DecodeSchemas(EncodeSchemas())
		require.NoError(t, err)
		assert.Empty(t, empty)
	})

	t.Run("id mismatch", func(t *testing.T) {
		out := NewObjectDataOutput(0)
		WriteSchema(out, s)
		b := out.ToBytes()
		b[7] ^= 0x01
		_, err := ReadSchema(NewObjectDataInput(b))
		assert.True(t, errors.Is(err, ErrMalformed))
	})

	t.Run("truncated", func(t *testing.T) {
		out := NewObjectDataOutput(0)
		WriteSchema(out, s)
		b := out.ToBytes()
		_, err := ReadSchema(NewObjectDataInput(b[:len(b)-3]))
		assert.True(t, errors.Is(err, ErrMalformed))
	})
}

func TestFieldKindNames(t *testing.T) {
	k, err := ParseFieldKind("ARRAY_OF_NULLABLE_FLOAT64")
	require.NoError(t, err)
	assert.Equal(t, KindArrayOfNullableFloat64, k)
	assert.Equal(t, "INT32", KindInt32.String())

	_, err = ParseFieldKind("CHAR")
	assert.Error(t, err)
	_, err = ParseFieldKind("int32")
	assert.Error(t, err)
}

func TestSchemaDefinition(t *testing.T) {
	s := mustSchema(t, "rec",
		NewField("c", KindArrayOfInt32),
		NewField("a", KindInt32),
		NewField("b", KindString),
	)

	d := s.Definition()
	assert.Equal(t, "rec", d.TypeName)
	assert.Equal(t, int64(-2070306242361297200), d.ID)
	assert.Equal(t, []FieldDefinition{
		{Name: "a", Kind: "INT32"},
		{Name: "b", Kind: "STRING"},
		{Name: "c", Kind: "ARRAY_OF_INT32"},
	}, d.Fields)

	back, err := d.Schema()
	require.NoError(t, err)
	assert.True(t, s.Equal(back))

	d.ID = 1
	_, err = d.Schema()
	assert.ErrorIs(t, err, ErrInvalidValue)

	_, err = SchemaDefinition{TypeName: "x", Fields: []FieldDefinition{{Name: "f", Kind: "UUID"}}}.Schema()
	assert.ErrorIs(t, err, ErrInvalidValue)
}
