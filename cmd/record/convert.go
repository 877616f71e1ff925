package record

import (
	"fmt"
	"github.com/ValentinKolb/dGrid/lib/compact"
	"math"
	"time"
)

// Layouts accepted for the date and time kinds
const (
	dateLayout      = "2006-01-02"
	timeLayout      = "15:04:05.999999999"
	timestampLayout = "2006-01-02T15:04:05.999999999"
)

// NewRecord builds a record of schema from plain values as produced by a
// yaml or json decoder. Nested compact fields are not supported.
func NewRecord(schema *compact.Schema, values map[string]any) (*compact.GenericRecord, error) {
	converted := make(map[string]any, len(values))
	for name, v := range values {
		field, ok := schema.Field(name)
		if !ok {
			return nil, fmt.Errorf("unknown field %q for type %s", name, schema.TypeName())
		}
		c, err := convertValue(field.Kind, v)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", name, err)
		}
		converted[name] = c
	}
	return compact.NewGenericRecordWithSchema(schema, converted)
}

// convertValue converts v to the Go type used for kind
func convertValue(kind compact.FieldKind, v any) (any, error) {
	switch kind {
	case compact.KindBoolean:
		return asBool(v)
	case compact.KindInt8:
		return asInt[int8](v)
	case compact.KindInt16:
		return asInt[int16](v)
	case compact.KindInt32:
		return asInt[int32](v)
	case compact.KindInt64:
		return asInt[int64](v)
	case compact.KindFloat32:
		return asFloat32(v)
	case compact.KindFloat64:
		return asFloat64(v)

	case compact.KindNullableBoolean:
		return nullable(v, asBool)
	case compact.KindNullableInt8:
		return nullable(v, asInt[int8])
	case compact.KindNullableInt16:
		return nullable(v, asInt[int16])
	case compact.KindNullableInt32:
		return nullable(v, asInt[int32])
	case compact.KindNullableInt64:
		return nullable(v, asInt[int64])
	case compact.KindNullableFloat32:
		return nullable(v, asFloat32)
	case compact.KindNullableFloat64:
		return nullable(v, asFloat64)
	case compact.KindString:
		return nullable(v, asString)
	case compact.KindDecimal:
		return nullable(v, asDecimal)
	case compact.KindDate:
		return nullable(v, asDate)
	case compact.KindTime:
		return nullable(v, asTime)
	case compact.KindTimestamp:
		return nullable(v, asTimestamp)
	case compact.KindTimestampWithTimezone:
		return nullable(v, asTimestampWithTimezone)

	case compact.KindArrayOfBoolean:
		return array(v, asBool)
	case compact.KindArrayOfInt8:
		return array(v, asInt[int8])
	case compact.KindArrayOfInt16:
		return array(v, asInt[int16])
	case compact.KindArrayOfInt32:
		return array(v, asInt[int32])
	case compact.KindArrayOfInt64:
		return array(v, asInt[int64])
	case compact.KindArrayOfFloat32:
		return array(v, asFloat32)
	case compact.KindArrayOfFloat64:
		return array(v, asFloat64)

	case compact.KindArrayOfNullableBoolean:
		return nullableArray(v, asBool)
	case compact.KindArrayOfNullableInt8:
		return nullableArray(v, asInt[int8])
	case compact.KindArrayOfNullableInt16:
		return nullableArray(v, asInt[int16])
	case compact.KindArrayOfNullableInt32:
		return nullableArray(v, asInt[int32])
	case compact.KindArrayOfNullableInt64:
		return nullableArray(v, asInt[int64])
	case compact.KindArrayOfNullableFloat32:
		return nullableArray(v, asFloat32)
	case compact.KindArrayOfNullableFloat64:
		return nullableArray(v, asFloat64)
	case compact.KindArrayOfString:
		return nullableArray(v, asString)
	case compact.KindArrayOfDecimal:
		return nullableArray(v, asDecimal)
	case compact.KindArrayOfDate:
		return nullableArray(v, asDate)
	case compact.KindArrayOfTime:
		return nullableArray(v, asTime)
	case compact.KindArrayOfTimestamp:
		return nullableArray(v, asTimestamp)
	case compact.KindArrayOfTimestampWithTimezone:
		return nullableArray(v, asTimestampWithTimezone)
	}
	return nil, fmt.Errorf("kind %s is not supported on the command line", kind)
}

// --------------------------------------------------------------------------
// Generic helpers
// --------------------------------------------------------------------------

type integer interface {
	~int8 | ~int16 | ~int32 | ~int64
}

// nullable returns nil (as untyped nil) for nil input, else a pointer to the converted value
func nullable[T any](v any, conv func(any) (T, error)) (any, error) {
	if v == nil {
		return nil, nil
	}
	x, err := conv(v)
	if err != nil {
		return nil, err
	}
	return &x, nil
}

func array[T any](v any, conv func(any) (T, error)) (any, error) {
	if v == nil {
		return nil, nil
	}
	items, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("expected a list, got %T", v)
	}
	out := make([]T, len(items))
	for i, item := range items {
		x, err := conv(item)
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}
		out[i] = x
	}
	return out, nil
}

func nullableArray[T any](v any, conv func(any) (T, error)) (any, error) {
	if v == nil {
		return nil, nil
	}
	items, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("expected a list, got %T", v)
	}
	out := make([]*T, len(items))
	for i, item := range items {
		if item == nil {
			continue
		}
		x, err := conv(item)
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}
		out[i] = &x
	}
	return out, nil
}

// --------------------------------------------------------------------------
// Scalar conversions
// --------------------------------------------------------------------------

func asBool(v any) (bool, error) {
	b, ok := v.(bool)
	if !ok {
		return false, fmt.Errorf("expected a boolean, got %T", v)
	}
	return b, nil
}

func asInt[T integer](v any) (T, error) {
	var n int64
	switch x := v.(type) {
	case int:
		n = int64(x)
	case int64:
		n = x
	case uint64:
		if x > math.MaxInt64 {
			return 0, fmt.Errorf("%d is out of range", x)
		}
		n = int64(x)
	case float64:
		if x != math.Trunc(x) {
			return 0, fmt.Errorf("expected an integer, got %v", x)
		}
		n = int64(x)
	default:
		return 0, fmt.Errorf("expected an integer, got %T", v)
	}
	if int64(T(n)) != n {
		return 0, fmt.Errorf("%d is out of range", n)
	}
	return T(n), nil
}

func asFloat64(v any) (float64, error) {
	switch x := v.(type) {
	case float64:
		return x, nil
	case int:
		return float64(x), nil
	case int64:
		return float64(x), nil
	case uint64:
		return float64(x), nil
	}
	return 0, fmt.Errorf("expected a number, got %T", v)
}

func asFloat32(v any) (float32, error) {
	f, err := asFloat64(v)
	return float32(f), err
}

func asString(v any) (string, error) {
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("expected a string, got %T", v)
	}
	return s, nil
}

func asDecimal(v any) (compact.Decimal, error) {
	switch x := v.(type) {
	case string:
		return compact.ParseDecimal(x)
	case int, int64, uint64, float64:
		return compact.ParseDecimal(fmt.Sprint(x))
	}
	return compact.Decimal{}, fmt.Errorf("expected a decimal string, got %T", v)
}

func parseTime(v any, layout string) (time.Time, error) {
	s, err := asString(v)
	if err != nil {
		return time.Time{}, err
	}
	return time.Parse(layout, s)
}

func asDate(v any) (compact.LocalDate, error) {
	t, err := parseTime(v, dateLayout)
	return compact.LocalDateOf(t), err
}

func asTime(v any) (compact.LocalTime, error) {
	t, err := parseTime(v, timeLayout)
	return compact.LocalTimeOf(t), err
}

func asTimestamp(v any) (compact.LocalDateTime, error) {
	t, err := parseTime(v, timestampLayout)
	return compact.LocalDateTimeOf(t), err
}

func asTimestampWithTimezone(v any) (compact.OffsetDateTime, error) {
	t, err := parseTime(v, time.RFC3339Nano)
	return compact.OffsetDateTimeOf(t), err
}
