package compact

import (
	"context"
	"errors"
	"math"
	"math/big"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordScenarioBytes(t *testing.T) {
	s := NewStreamSerializer(newTestService())
	rec, err := NewRecordBuilder("rec").
		SetInt32("a", 7).
		SetString("b", ptr("x")).
		SetArrayOfInt32("c", []int32{1, 2, 3}).
		Build()
	require.NoError(t, err)

	b := encodeRecord(t, s, rec)
	want := []byte{
		0, 0, 0, 25, // variable data length (fixed region included)
		0, 0, 0, 7, // a
		0, 0, 0, 1, 'x', // b
		0, 0, 0, 3, 0, 0, 0, 1, 0, 0, 0, 2, 0, 0, 0, 3, // c
		4, 9, // offsets of b and c
	}
	assert.Equal(t, want, b)

	got := decodeRecord(t, s, rec.Schema(), b)
	a, err := got.GetInt32("a")
	require.NoError(t, err)
	assert.Equal(t, int32(7), a)
	str, err := got.GetString("b")
	require.NoError(t, err)
	assert.Equal(t, "x", *str)
	arr, err := got.GetArrayOfInt32("c")
	require.NoError(t, err)
	assert.Equal(t, []int32{1, 2, 3}, arr)
}

func TestRecordScenarioNulls(t *testing.T) {
	s := NewStreamSerializer(newTestService())
	rec, err := NewRecordBuilder("rec").
		SetInt32("a", 7).
		SetString("b", nil).
		SetArrayOfInt32("c", nil).
		Build()
	require.NoError(t, err)

	b := encodeRecord(t, s, rec)
	// no variable data, both offsets null
	assert.Equal(t, []byte{0, 0, 0, 4, 0, 0, 0, 7, 0xff, 0xff}, b)

	got := decodeRecord(t, s, rec.Schema(), b)
	str, err := got.GetString("b")
	require.NoError(t, err)
	assert.Nil(t, str)
	arr, err := got.GetArrayOfInt32("c")
	require.NoError(t, err)
	assert.Nil(t, arr)
	assert.True(t, rec.Equal(got))
}

func TestRecordRoundTripAllKinds(t *testing.T) {
	svc := newTestService()
	s := NewStreamSerializer(svc)

	inner, err := NewRecordBuilder("inner").SetInt64("id", 99).SetString("label", ptr("in")).Build()
	require.NoError(t, err)
	require.NoError(t, svc.PutLocal(inner.Schema()))
	inner2, err := inner.Clone(map[string]any{"id": int64(100)})
	require.NoError(t, err)

	dec := NewDecimal(big.NewInt(-1234567), 3)
	bigDec := NewDecimal(new(big.Int).Lsh(big.NewInt(1), 100), 0)
	date := LocalDate{Year: -2024, Month: 2, Day: 29}
	tm := LocalTime{Hour: 23, Minute: 59, Second: 58, Nano: 999999999}
	ts := LocalDateTime{Date: date, Time: tm}
	tz := OffsetDateTime{DateTime: ts, OffsetSeconds: -18 * 3600}

	rec, err := NewRecordBuilder("all").
		SetBoolean("bool", true).
		SetInt8("i8", math.MinInt8).
		SetInt16("i16", math.MaxInt16).
		SetInt32("i32", math.MinInt32).
		SetInt64("i64", math.MaxInt64).
		SetFloat32("f32", 1.5).
		SetFloat64("f64", -math.Pi).
		SetString("str", ptr("grüße")).
		SetDecimal("dec", &dec).
		SetTime("time", &tm).
		SetDate("date", &date).
		SetTimestamp("ts", &ts).
		SetTimestampWithTimezone("tz", &tz).
		SetGenericRecord("nested", inner).
		SetArrayOfBoolean("bools", []bool{true, false, true, true, false, false, true, false, true, true}).
		SetArrayOfInt8("i8s", []int8{-1, 0, 1}).
		SetArrayOfInt16("i16s", []int16{}).
		SetArrayOfInt32("i32s", []int32{1 << 20}).
		SetArrayOfInt64("i64s", []int64{math.MinInt64, 0}).
		SetArrayOfFloat32("f32s", []float32{0.25}).
		SetArrayOfFloat64("f64s", []float64{1e300, -0.5}).
		SetArrayOfString("strs", []*string{ptr("a"), nil, ptr("")}).
		SetArrayOfDecimal("decs", []*Decimal{&bigDec, nil, &dec}).
		SetArrayOfTime("times", []*LocalTime{&tm, nil}).
		SetArrayOfDate("dates", []*LocalDate{nil, &date}).
		SetArrayOfTimestamp("tss", []*LocalDateTime{&ts}).
		SetArrayOfTimestampWithTimezone("tzs", []*OffsetDateTime{&tz, nil}).
		SetArrayOfGenericRecord("nesteds", []*GenericRecord{inner, nil, inner2}).
		SetNullableBoolean("nbool", ptr(false)).
		SetNullableInt8("ni8", nil).
		SetNullableInt16("ni16", ptr(int16(-300))).
		SetNullableInt32("ni32", ptr(int32(42))).
		SetNullableInt64("ni64", nil).
		SetNullableFloat32("nf32", ptr(float32(-2))).
		SetNullableFloat64("nf64", ptr(0.125)).
		SetArrayOfNullableBoolean("nbools", []*bool{ptr(true), nil}).
		SetArrayOfNullableInt8("ni8s", []*int8{nil}).
		SetArrayOfNullableInt16("ni16s", []*int16{ptr(int16(1))}).
		SetArrayOfNullableInt32("ni32s", []*int32{ptr(int32(1)), nil, ptr(int32(3))}).
		SetArrayOfNullableInt64("ni64s", nil).
		SetArrayOfNullableFloat32("nf32s", []*float32{}).
		SetArrayOfNullableFloat64("nf64s", []*float64{ptr(2.5), nil}).
		Build()
	require.NoError(t, err)

	got := decodeRecord(t, s, rec.Schema(), encodeRecord(t, s, rec))
	assert.True(t, rec.Equal(got), "want %s\ngot  %s", rec, got)
	assert.Equal(t, rec.Hash(), got.Hash())

	empty, err := got.GetArrayOfInt16("i16s")
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)

	nested, err := got.GetGenericRecord("nested")
	require.NoError(t, err)
	id, err := nested.GetInt64("id")
	require.NoError(t, err)
	assert.Equal(t, int64(99), id)

	d, err := got.GetDecimal("dec")
	require.NoError(t, err)
	assert.Equal(t, "-1234.567", d.String())
}

func TestOffsetTierBoundaries(t *testing.T) {
	s := NewStreamSerializer(newTestService())

	tests := []struct {
		name       string
		dataLength int
		width      int
	}{
		{"byte tier upper bound", byteOffsetRange - 1, 1},
		{"short tier lower bound", byteOffsetRange, 2},
		{"short tier upper bound", shortOffsetRange - 1, 2},
		{"int tier lower bound", shortOffsetRange, 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// two strings: "a" sized to reach dataLength, "b" empty (4 bytes)
			a := strings.Repeat("z", tt.dataLength-8)
			rec, err := NewRecordBuilder("tier").SetString("a", &a).SetString("b", ptr("")).Build()
			require.NoError(t, err)

			b := encodeRecord(t, s, rec)
			require.Len(t, b, 4+tt.dataLength+2*tt.width)

			got := decodeRecord(t, s, rec.Schema(), b)
			assert.True(t, rec.Equal(got))
			bv, err := got.GetString("b")
			require.NoError(t, err)
			assert.Equal(t, "", *bv)
		})
	}
}

func TestByteTierOffsetsAreUnsigned(t *testing.T) {
	s := NewStreamSerializer(newTestService())
	a := strings.Repeat("y", 200)
	rec, err := NewRecordBuilder("unsigned").SetString("a", &a).SetString("b", ptr("x")).Build()
	require.NoError(t, err)

	b := encodeRecord(t, s, rec)
	// offset of "b" is 204, stored as 0xcc in a single byte
	assert.Equal(t, byte(204), b[len(b)-1])

	got := decodeRecord(t, s, rec.Schema(), b)
	bv, err := got.GetString("b")
	require.NoError(t, err)
	assert.Equal(t, "x", *bv)
}

func TestBooleanBitPacking(t *testing.T) {
	s := NewStreamSerializer(newTestService())
	builder := NewRecordBuilder("flags")
	want := map[string]bool{}
	for i, name := range []string{"a", "b", "c", "d", "e", "f", "g", "h", "i"} {
		v := i%3 == 0
		want[name] = v
		builder.SetBoolean(name, v)
	}
	rec, err := builder.Build()
	require.NoError(t, err)

	b := encodeRecord(t, s, rec)
	// a, d, g set: bits 0, 3, 6 of the first byte; i unset in the second
	assert.Equal(t, []byte{0x49, 0x00}, b)

	got := decodeRecord(t, s, rec.Schema(), b)
	for name, v := range want {
		gv, err := got.GetBoolean(name)
		require.NoError(t, err)
		assert.Equal(t, v, gv, name)
	}
}

func TestBooleanArrayEncoding(t *testing.T) {
	out := NewObjectDataOutput(0)
	encodeBooleanBits(out, []bool{true, false, false, false, false, false, false, false, true, true})
	assert.Equal(t, []byte{0, 0, 0, 10, 0x01, 0x03}, out.ToBytes())

	got := decodeBooleanBits(NewObjectDataInput(out.ToBytes()))
	assert.Equal(t, []bool{true, false, false, false, false, false, false, false, true, true}, got)
}

// readerFor encodes rec and returns a Reader positioned on its body.
func readerFor(t *testing.T, rec *GenericRecord) *Reader {
	t.Helper()
	s := NewStreamSerializer(newTestService())
	b := encodeRecord(t, s, rec)
	return newReader(context.Background(), s, NewObjectDataInput(b), rec.Schema())
}

func TestReaderNullableInterop(t *testing.T) {
	rec, err := NewRecordBuilder("interop").
		SetInt32("plain", 5).
		SetNullableInt32("set", ptr(int32(6))).
		SetNullableInt32("unset", nil).
		SetArrayOfInt32("arr", []int32{1, 2}).
		SetArrayOfNullableInt32("narr", []*int32{ptr(int32(3)), nil}).
		SetArrayOfNullableInt32("full", []*int32{ptr(int32(4))}).
		SetBoolean("flag", true).
		SetNullableBoolean("nflag", ptr(true)).
		Build()
	require.NoError(t, err)

	t.Run("nullable accessor on primitive", func(t *testing.T) {
		r := readerFor(t, rec)
		assert.Equal(t, int32(5), *r.ReadNullableInt32("plain"))
		assert.True(t, *r.ReadNullableBoolean("flag"))
		assert.Equal(t, []*int32{ptr(int32(1)), ptr(int32(2))}, r.ReadArrayOfNullableInt32("arr"))
		require.NoError(t, r.Err())
	})

	t.Run("primitive accessor on nullable", func(t *testing.T) {
		r := readerFor(t, rec)
		assert.Equal(t, int32(6), r.ReadInt32("set"))
		assert.True(t, r.ReadBoolean("nflag"))
		assert.Equal(t, []int32{4}, r.ReadArrayOfInt32("full"))
		require.NoError(t, r.Err())
	})

	t.Run("null through primitive accessor", func(t *testing.T) {
		r := readerFor(t, rec)
		assert.Equal(t, int32(0), r.ReadInt32("unset"))
		assert.True(t, errors.Is(r.Err(), ErrUnexpectedNull))
	})

	t.Run("null item through primitive array accessor", func(t *testing.T) {
		r := readerFor(t, rec)
		assert.Nil(t, r.ReadArrayOfInt32("narr"))
		assert.True(t, errors.Is(r.Err(), ErrUnexpectedNull))
		assert.Contains(t, r.Err().Error(), "ReadArrayOfNullableInt32")
	})

	t.Run("generic record getters", func(t *testing.T) {
		_, err := rec.GetInt32("unset")
		assert.True(t, errors.Is(err, ErrUnexpectedNull))
		_, err = rec.GetArrayOfInt32("narr")
		assert.True(t, errors.Is(err, ErrUnexpectedNull))

		v, err := rec.GetInt32("set")
		require.NoError(t, err)
		assert.Equal(t, int32(6), v)
		p, err := rec.GetNullableInt32("plain")
		require.NoError(t, err)
		assert.Equal(t, int32(5), *p)
	})
}

func TestReaderFieldErrors(t *testing.T) {
	rec, err := NewRecordBuilder("errs").SetInt32("a", 1).SetString("s", ptr("x")).Build()
	require.NoError(t, err)

	r := readerFor(t, rec)
	assert.Equal(t, KindNotAvailable, r.GetFieldKind("missing"))
	assert.Equal(t, KindInt32, r.GetFieldKind("a"))

	r.ReadString("a")
	assert.True(t, errors.Is(r.Err(), ErrFieldKindMismatch))
	// sticky: later valid reads return zero values
	assert.Equal(t, int32(0), r.ReadInt32("a"))

	r = readerFor(t, rec)
	r.ReadInt64("nope")
	assert.True(t, errors.Is(r.Err(), ErrUnknownField))

	_, err = rec.GetString("a")
	assert.True(t, errors.Is(err, ErrFieldKindMismatch))
	assert.Equal(t, KindNotAvailable, rec.GetFieldKind("nope"))
}

func TestReaderTruncatedInput(t *testing.T) {
	rec, err := NewRecordBuilder("trunc").SetString("s", ptr("hello")).SetInt64("n", 1).Build()
	require.NoError(t, err)
	s := NewStreamSerializer(newTestService())
	b := encodeRecord(t, s, rec)

	r := newReader(context.Background(), s, NewObjectDataInput(b[:len(b)-4]), rec.Schema())
	_, err = r.toGenericRecord()
	assert.True(t, errors.Is(err, ErrMalformed))
}

func TestWriterFieldErrors(t *testing.T) {
	schema := mustSchema(t, "w", NewField("a", KindInt32), NewField("s", KindString))
	s := NewStreamSerializer(newTestService())

	w := newWriter(s, NewObjectDataOutput(0), schema)
	w.WriteInt64("a", 1)
	assert.True(t, errors.Is(w.Err(), ErrFieldKindMismatch))

	w = newWriter(s, NewObjectDataOutput(0), schema)
	w.WriteString("missing", ptr("x"))
	assert.True(t, errors.Is(w.Err(), ErrUnknownField))
}

func TestWriterHeterogeneousCompactArray(t *testing.T) {
	svc := newTestService()
	s := NewStreamSerializer(svc)
	x, err := NewRecordBuilder("x").SetInt32("v", 1).Build()
	require.NoError(t, err)
	y, err := NewRecordBuilder("y").SetInt32("v", 1).Build()
	require.NoError(t, err)
	require.NoError(t, svc.PutLocal(x.Schema()))
	require.NoError(t, svc.PutLocal(y.Schema()))

	schema := mustSchema(t, "holder", NewField("items", KindArrayOfCompact))
	out := NewObjectDataOutput(0)
	w := newWriter(s, out, schema)
	before := out.Position()
	w.WriteArrayOfCompact("items", []any{x, nil, y})
	assert.True(t, errors.Is(w.Err(), ErrHeterogeneousArray))
	assert.Equal(t, before, out.Position(), "no bytes for a rejected array")

	assert.NoError(t, checkCompactArray("items", []any{x, nil, x}))
	assert.Error(t, checkCompactArray("items", []any{x, point{}}))
}

func TestDateTimeConversions(t *testing.T) {
	ref := time.Date(2023, time.March, 4, 5, 6, 7, 8, time.FixedZone("x", 3600))
	o := OffsetDateTimeOf(ref)
	assert.True(t, ref.Equal(o.Time()))
	assert.Equal(t, int32(3600), o.OffsetSeconds)
	assert.Equal(t, "2023-03-04", LocalDateOf(ref).String())
}
