package compact

import (
	"encoding/json"
	"errors"
	"math"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenericRecordValidation(t *testing.T) {
	tests := []struct {
		name  string
		kind  FieldKind
		value any
		ok    bool
	}{
		{"int32", KindInt32, int32(1), true},
		{"int32 as int", KindInt32, 1, false},
		{"string pointer", KindString, ptr("x"), true},
		{"string value", KindString, "x", false},
		{"null string", KindString, nil, true},
		{"nullable int8", KindNullableInt8, ptr(int8(1)), true},
		{"nullable int8 as value", KindNullableInt8, int8(1), false},
		{"array of int64", KindArrayOfInt64, []int64{1}, true},
		{"array of int64 as int32", KindArrayOfInt64, []int32{1}, false},
		{"decimal", KindDecimal, &Decimal{}, true},
		{"compact", KindCompact, &GenericRecord{}, true},
		{"compact typed", KindCompact, point{}, false},
		{"array of compact", KindArrayOfCompact, []any{nil}, true},
		{"array of compact wrong slice", KindArrayOfCompact, []*GenericRecord{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewGenericRecord("v", []FieldDescriptor{NewField("f", tt.kind)}, map[string]any{"f": tt.value})
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.True(t, errors.Is(err, ErrInvalidValue), "got %v", err)
			}
		})
	}
}

func TestGenericRecordConstruction(t *testing.T) {
	schema := mustSchema(t, "c", NewField("n", KindInt32), NewField("s", KindString))

	_, err := NewGenericRecordWithSchema(schema, map[string]any{"s": ptr("x")})
	assert.True(t, errors.Is(err, ErrInvalidValue), "fixed-size value missing")

	rec, err := NewGenericRecordWithSchema(schema, map[string]any{"n": int32(1)})
	require.NoError(t, err, "variable-size values default to null")
	s, err := rec.GetString("s")
	require.NoError(t, err)
	assert.Nil(t, s)

	_, err = NewGenericRecordWithSchema(schema, map[string]any{"n": int32(1), "x": int32(2)})
	assert.True(t, errors.Is(err, ErrUnknownField))

	assert.Equal(t, []string{"n", "s"}, rec.GetFieldNames())
	assert.True(t, rec.HasField("n"))
	assert.False(t, rec.HasField("x"))
	assert.Equal(t, KindString, rec.GetFieldKind("s"))
}

func TestGenericRecordClone(t *testing.T) {
	dec := NewDecimal(big.NewInt(15), 1)
	orig, err := NewRecordBuilder("c").
		SetInt32("n", 1).
		SetDecimal("d", &dec).
		SetArrayOfString("tags", []*string{ptr("a")}).
		Build()
	require.NoError(t, err)

	clone, err := orig.Clone(map[string]any{"n": int32(2)})
	require.NoError(t, err)
	n, _ := clone.GetInt32("n")
	assert.Equal(t, int32(2), n)
	n, _ = orig.GetInt32("n")
	assert.Equal(t, int32(1), n)

	// untouched fields are deep copies
	tags, _ := clone.GetArrayOfString("tags")
	*tags[0] = "changed"
	origTags, _ := orig.GetArrayOfString("tags")
	assert.Equal(t, "a", *origTags[0])

	d, _ := clone.GetDecimal("d")
	od, _ := orig.GetDecimal("d")
	assert.NotSame(t, d, od)
	assert.Equal(t, "1.5", d.String())

	_, err = orig.Clone(map[string]any{"missing": int32(1)})
	assert.True(t, errors.Is(err, ErrUnknownField))
	_, err = orig.Clone(map[string]any{"n": "two"})
	assert.True(t, errors.Is(err, ErrInvalidValue))

	same, err := orig.Clone(nil)
	require.NoError(t, err)
	assert.True(t, orig.Equal(same))
	assert.Equal(t, orig.Hash(), same.Hash())
}

func TestGenericRecordEqual(t *testing.T) {
	a, err := NewRecordBuilder("e").SetInt32("n", 1).SetString("s", ptr("x")).Build()
	require.NoError(t, err)
	b, err := NewRecordBuilder("e").SetString("s", ptr("x")).SetInt32("n", 1).Build()
	require.NoError(t, err)
	c, err := NewRecordBuilder("e").SetInt32("n", 1).SetString("s", ptr("y")).Build()
	require.NoError(t, err)
	d, err := NewRecordBuilder("f").SetInt32("n", 1).SetString("s", ptr("x")).Build()
	require.NoError(t, err)

	assert.True(t, a.Equal(b))
	assert.Equal(t, a.Hash(), b.Hash())
	assert.False(t, a.Equal(c))
	assert.False(t, a.Equal(d))
	assert.False(t, a.Equal(nil))
}

func TestGenericRecordString(t *testing.T) {
	inner, err := NewRecordBuilder("inner").SetBoolean("ok", true).Build()
	require.NoError(t, err)
	dec, err := ParseDecimal("-0.50")
	require.NoError(t, err)
	rec, err := NewRecordBuilder("outer").
		SetString("s", ptr("x")).
		SetNullableInt64("n", nil).
		SetDecimal("d", &dec).
		SetDate("day", &LocalDate{Year: 2024, Month: 1, Day: 2}).
		SetGenericRecord("in", inner).
		Build()
	require.NoError(t, err)

	assert.JSONEq(t,
		`{"outer":{"d":"-0.50","day":"2024-01-02","in":{"inner":{"ok":true}},"n":null,"s":"x"}}`,
		rec.String())
}

func TestRecordBuilderReplacesField(t *testing.T) {
	rec, err := NewRecordBuilder("r").SetInt32("a", 1).SetString("a", ptr("x")).Build()
	require.NoError(t, err)
	assert.Equal(t, KindString, rec.GetFieldKind("a"))
	assert.Equal(t, 1, rec.Schema().FieldCount())
}

func TestGenericRecordHashFollowsEqual(t *testing.T) {
	negZero := math.Copysign(0, -1)
	negZero32 := float32(negZero)
	zero32 := float32(0)
	decA, err := ParseDecimal("1.50")
	require.NoError(t, err)
	decB, err := ParseDecimal("1.50")
	require.NoError(t, err)

	build := func(f64 float64, f32 *float32, arr []float64, dec *Decimal) *GenericRecord {
		rec, err := NewRecordBuilder("f").
			SetFloat64("v", f64).
			SetNullableFloat32("n", f32).
			SetArrayOfFloat64("a", arr).
			SetDecimal("d", dec).
			SetArrayOfString("s", []*string{ptr("x"), nil}).
			Build()
		require.NoError(t, err)
		return rec
	}

	a := build(0, &zero32, []float64{0, 1}, &decA)
	b := build(negZero, &negZero32, []float64{negZero, 1}, &decB)
	require.True(t, a.Equal(b))
	assert.Equal(t, a.Hash(), b.Hash())

	c := build(0, nil, []float64{0, 1}, &decA)
	assert.False(t, a.Equal(c))
	assert.NotEqual(t, a.Hash(), c.Hash())

	d := build(0, &zero32, nil, &decA)
	e := build(0, &zero32, []float64{}, &decA)
	assert.False(t, d.Equal(e))
	assert.NotEqual(t, d.Hash(), e.Hash())
}

func TestGenericRecordNestedHash(t *testing.T) {
	inner := func(v float64) *GenericRecord {
		rec, err := NewRecordBuilder("inner").SetFloat64("v", v).Build()
		require.NoError(t, err)
		return rec
	}
	outer := func(in *GenericRecord) *GenericRecord {
		rec, err := NewRecordBuilder("outer").
			SetGenericRecord("in", in).
			SetArrayOfGenericRecord("all", []*GenericRecord{in, nil}).
			Build()
		require.NoError(t, err)
		return rec
	}

	a, b := outer(inner(0)), outer(inner(math.Copysign(0, -1)))
	require.True(t, a.Equal(b))
	assert.Equal(t, a.Hash(), b.Hash())
	assert.NotEqual(t, a.Hash(), outer(inner(1)).Hash())
}

func TestGenericRecordNonFiniteString(t *testing.T) {
	nan := float32(math.NaN())
	rec, err := NewRecordBuilder("f").
		SetFloat64("nan", math.NaN()).
		SetNullableFloat32("n", &nan).
		SetArrayOfFloat64("a", []float64{math.Inf(1), 1.5, math.Inf(-1)}).
		SetInt32("i", 7).
		Build()
	require.NoError(t, err)

	s := rec.String()
	require.True(t, json.Valid([]byte(s)), s)
	assert.JSONEq(t, `{"f":{"a":["+Inf",1.5,"-Inf"],"i":7,"n":"NaN","nan":"NaN"}}`, s)
}
