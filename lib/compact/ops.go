package compact

import (
	"reflect"
)

// variableSize marks kinds whose encoded width depends on the value.
const variableSize = -1

// kindOps bundles everything that differs between field kinds. There is
// exactly one entry per kind; writer, reader and generic record dispatch
// through this table instead of switching on the kind themselves.
//
// Values handled by the table use the Go types of the typed accessors:
// primitives by value (int32), nullable and variable-size scalars as
// pointers (*int32, *string, *Decimal), arrays as slices ([]int32, []*int32),
// nested compact values as any and []any.
type kindOps struct {
	size     int
	write    func(w CompactWriter, name string, v any)
	read     func(r CompactReader, name string) any
	validate func(v any) bool
	clone    func(v any) any
	equal    func(a, b any) bool
	hash     func(h *recordHasher, v any)
}

var opsTable [kindCount]*kindOps

// fieldOps returns the operations of k or nil for unsupported kinds.
func fieldOps(k FieldKind) *kindOps {
	if !k.Valid() {
		return nil
	}
	return opsTable[k]
}

// kindSize returns the fixed byte width of k, 0 for booleans (they are bit
// packed) and variableSize for everything that is not fixed-size.
func kindSize(k FieldKind) int {
	if ops := fieldOps(k); ops != nil {
		return ops.size
	}
	return variableSize
}

// --------------------------------------------------------------------------
// Table construction helpers
// --------------------------------------------------------------------------

func fixedOps[T comparable](size int, write func(CompactWriter, string, T), read func(CompactReader, string) T) *kindOps {
	return &kindOps{
		size: size,
		write: func(w CompactWriter, name string, v any) {
			x, _ := v.(T)
			write(w, name, x)
		},
		read: func(r CompactReader, name string) any { return read(r, name) },
		validate: func(v any) bool {
			_, ok := v.(T)
			return ok
		},
		clone: func(v any) any { return v },
		equal: func(a, b any) bool { return a == b },
		hash: func(h *recordHasher, v any) {
			x, _ := v.(T)
			h.scalar(x)
		},
	}
}

func pointerOps[T any](write func(CompactWriter, string, *T), read func(CompactReader, string) *T, eq func(a, b T) bool) *kindOps {
	return &kindOps{
		size: variableSize,
		write: func(w CompactWriter, name string, v any) {
			p, _ := v.(*T)
			write(w, name, p)
		},
		read: func(r CompactReader, name string) any { return read(r, name) },
		validate: func(v any) bool {
			if v == nil {
				return true
			}
			_, ok := v.(*T)
			return ok
		},
		clone: func(v any) any {
			p, _ := v.(*T)
			return clonePtr(p)
		},
		equal: func(a, b any) bool {
			pa, _ := a.(*T)
			pb, _ := b.(*T)
			return ptrEqual(pa, pb, eq)
		},
		hash: func(h *recordHasher, v any) {
			p, _ := v.(*T)
			if p == nil {
				h.u64(0)
				return
			}
			h.u64(1)
			h.scalar(*p)
		},
	}
}

func sliceOps[T any](write func(CompactWriter, string, []T), read func(CompactReader, string) []T, eq func(a, b T) bool, cp func(T) T) *kindOps {
	return &kindOps{
		size: variableSize,
		write: func(w CompactWriter, name string, v any) {
			s, _ := v.([]T)
			write(w, name, s)
		},
		read: func(r CompactReader, name string) any { return read(r, name) },
		validate: func(v any) bool {
			if v == nil {
				return true
			}
			_, ok := v.([]T)
			return ok
		},
		clone: func(v any) any {
			s, _ := v.([]T)
			if s == nil {
				return s
			}
			out := make([]T, len(s))
			for i := range s {
				out[i] = cp(s[i])
			}
			return out
		},
		equal: func(a, b any) bool {
			sa, _ := a.([]T)
			sb, _ := b.([]T)
			if (sa == nil) != (sb == nil) || len(sa) != len(sb) {
				return false
			}
			for i := range sa {
				if !eq(sa[i], sb[i]) {
					return false
				}
			}
			return true
		},
		hash: func(h *recordHasher, v any) {
			s, _ := v.([]T)
			if s == nil {
				h.u64(0)
				return
			}
			h.u64(uint64(len(s)) + 1)
			for _, x := range s {
				h.element(x)
			}
		},
	}
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	// decimals share their big.Int otherwise
	if d, ok := any(v).(Decimal); ok {
		v = any(NewDecimal(d.unscaled, d.scale)).(T)
	}
	return &v
}

func ptrEqual[T any](a, b *T, eq func(a, b T) bool) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return eq(*a, *b)
}

func same[T comparable](a, b T) bool { return a == b }
func identity[T any](v T) T          { return v }

func ptrElemEqual[T comparable](a, b *T) bool { return ptrEqual(a, b, same[T]) }
func decimalElemEqual(a, b *Decimal) bool {
	return ptrEqual(a, b, func(x, y Decimal) bool { return x.Equal(y) })
}

// compactEqual compares nested compact values. Generic records compare
// structurally, typed objects with reflect.DeepEqual.
func compactEqual(a, b any) bool {
	ra, okA := a.(*GenericRecord)
	rb, okB := b.(*GenericRecord)
	if okA || okB {
		return okA && okB && ra.Equal(rb)
	}
	return reflect.DeepEqual(a, b)
}

func compactClone(v any) any {
	if r, ok := v.(*GenericRecord); ok && r != nil {
		return r.deepClone()
	}
	return v
}

func compactValid(v any) bool {
	if v == nil {
		return true
	}
	r, ok := v.(*GenericRecord)
	return ok && r != nil
}

// --------------------------------------------------------------------------
// The table
// --------------------------------------------------------------------------

func init() {
	opsTable[KindBoolean] = fixedOps(0, CompactWriter.WriteBoolean, CompactReader.ReadBoolean)
	opsTable[KindInt8] = fixedOps(1, CompactWriter.WriteInt8, CompactReader.ReadInt8)
	opsTable[KindInt16] = fixedOps(2, CompactWriter.WriteInt16, CompactReader.ReadInt16)
	opsTable[KindInt32] = fixedOps(4, CompactWriter.WriteInt32, CompactReader.ReadInt32)
	opsTable[KindInt64] = fixedOps(8, CompactWriter.WriteInt64, CompactReader.ReadInt64)
	opsTable[KindFloat32] = fixedOps(4, CompactWriter.WriteFloat32, CompactReader.ReadFloat32)
	opsTable[KindFloat64] = fixedOps(8, CompactWriter.WriteFloat64, CompactReader.ReadFloat64)

	opsTable[KindArrayOfBoolean] = sliceOps(CompactWriter.WriteArrayOfBoolean, CompactReader.ReadArrayOfBoolean, same[bool], identity[bool])
	opsTable[KindArrayOfInt8] = sliceOps(CompactWriter.WriteArrayOfInt8, CompactReader.ReadArrayOfInt8, same[int8], identity[int8])
	opsTable[KindArrayOfInt16] = sliceOps(CompactWriter.WriteArrayOfInt16, CompactReader.ReadArrayOfInt16, same[int16], identity[int16])
	opsTable[KindArrayOfInt32] = sliceOps(CompactWriter.WriteArrayOfInt32, CompactReader.ReadArrayOfInt32, same[int32], identity[int32])
	opsTable[KindArrayOfInt64] = sliceOps(CompactWriter.WriteArrayOfInt64, CompactReader.ReadArrayOfInt64, same[int64], identity[int64])
	opsTable[KindArrayOfFloat32] = sliceOps(CompactWriter.WriteArrayOfFloat32, CompactReader.ReadArrayOfFloat32, same[float32], identity[float32])
	opsTable[KindArrayOfFloat64] = sliceOps(CompactWriter.WriteArrayOfFloat64, CompactReader.ReadArrayOfFloat64, same[float64], identity[float64])

	opsTable[KindString] = pointerOps(CompactWriter.WriteString, CompactReader.ReadString, same[string])
	opsTable[KindDecimal] = pointerOps(CompactWriter.WriteDecimal, CompactReader.ReadDecimal, Decimal.Equal)
	opsTable[KindTime] = pointerOps(CompactWriter.WriteTime, CompactReader.ReadTime, same[LocalTime])
	opsTable[KindDate] = pointerOps(CompactWriter.WriteDate, CompactReader.ReadDate, same[LocalDate])
	opsTable[KindTimestamp] = pointerOps(CompactWriter.WriteTimestamp, CompactReader.ReadTimestamp, same[LocalDateTime])
	opsTable[KindTimestampWithTimezone] = pointerOps(CompactWriter.WriteTimestampWithTimezone, CompactReader.ReadTimestampWithTimezone, same[OffsetDateTime])

	opsTable[KindArrayOfString] = sliceOps(CompactWriter.WriteArrayOfString, CompactReader.ReadArrayOfString, ptrElemEqual[string], clonePtr[string])
	opsTable[KindArrayOfDecimal] = sliceOps(CompactWriter.WriteArrayOfDecimal, CompactReader.ReadArrayOfDecimal, decimalElemEqual, clonePtr[Decimal])
	opsTable[KindArrayOfTime] = sliceOps(CompactWriter.WriteArrayOfTime, CompactReader.ReadArrayOfTime, ptrElemEqual[LocalTime], clonePtr[LocalTime])
	opsTable[KindArrayOfDate] = sliceOps(CompactWriter.WriteArrayOfDate, CompactReader.ReadArrayOfDate, ptrElemEqual[LocalDate], clonePtr[LocalDate])
	opsTable[KindArrayOfTimestamp] = sliceOps(CompactWriter.WriteArrayOfTimestamp, CompactReader.ReadArrayOfTimestamp, ptrElemEqual[LocalDateTime], clonePtr[LocalDateTime])
	opsTable[KindArrayOfTimestampWithTimezone] = sliceOps(CompactWriter.WriteArrayOfTimestampWithTimezone, CompactReader.ReadArrayOfTimestampWithTimezone, ptrElemEqual[OffsetDateTime], clonePtr[OffsetDateTime])

	opsTable[KindCompact] = &kindOps{
		size:     variableSize,
		write:    CompactWriter.WriteCompact,
		read:     CompactReader.ReadCompact,
		validate: compactValid,
		clone:    compactClone,
		equal:    compactEqual,
		hash:     (*recordHasher).element,
	}
	opsTable[KindArrayOfCompact] = sliceOps(CompactWriter.WriteArrayOfCompact, CompactReader.ReadArrayOfCompact, compactEqual, compactClone)
	arrayOfCompact := opsTable[KindArrayOfCompact]
	arrayOfCompact.validate = func(v any) bool {
		if v == nil {
			return true
		}
		items, ok := v.([]any)
		if !ok {
			return false
		}
		for _, item := range items {
			if !compactValid(item) {
				return false
			}
		}
		return true
	}

	opsTable[KindNullableBoolean] = pointerOps(CompactWriter.WriteNullableBoolean, CompactReader.ReadNullableBoolean, same[bool])
	opsTable[KindNullableInt8] = pointerOps(CompactWriter.WriteNullableInt8, CompactReader.ReadNullableInt8, same[int8])
	opsTable[KindNullableInt16] = pointerOps(CompactWriter.WriteNullableInt16, CompactReader.ReadNullableInt16, same[int16])
	opsTable[KindNullableInt32] = pointerOps(CompactWriter.WriteNullableInt32, CompactReader.ReadNullableInt32, same[int32])
	opsTable[KindNullableInt64] = pointerOps(CompactWriter.WriteNullableInt64, CompactReader.ReadNullableInt64, same[int64])
	opsTable[KindNullableFloat32] = pointerOps(CompactWriter.WriteNullableFloat32, CompactReader.ReadNullableFloat32, same[float32])
	opsTable[KindNullableFloat64] = pointerOps(CompactWriter.WriteNullableFloat64, CompactReader.ReadNullableFloat64, same[float64])

	opsTable[KindArrayOfNullableBoolean] = sliceOps(CompactWriter.WriteArrayOfNullableBoolean, CompactReader.ReadArrayOfNullableBoolean, ptrElemEqual[bool], clonePtr[bool])
	opsTable[KindArrayOfNullableInt8] = sliceOps(CompactWriter.WriteArrayOfNullableInt8, CompactReader.ReadArrayOfNullableInt8, ptrElemEqual[int8], clonePtr[int8])
	opsTable[KindArrayOfNullableInt16] = sliceOps(CompactWriter.WriteArrayOfNullableInt16, CompactReader.ReadArrayOfNullableInt16, ptrElemEqual[int16], clonePtr[int16])
	opsTable[KindArrayOfNullableInt32] = sliceOps(CompactWriter.WriteArrayOfNullableInt32, CompactReader.ReadArrayOfNullableInt32, ptrElemEqual[int32], clonePtr[int32])
	opsTable[KindArrayOfNullableInt64] = sliceOps(CompactWriter.WriteArrayOfNullableInt64, CompactReader.ReadArrayOfNullableInt64, ptrElemEqual[int64], clonePtr[int64])
	opsTable[KindArrayOfNullableFloat32] = sliceOps(CompactWriter.WriteArrayOfNullableFloat32, CompactReader.ReadArrayOfNullableFloat32, ptrElemEqual[float32], clonePtr[float32])
	opsTable[KindArrayOfNullableFloat64] = sliceOps(CompactWriter.WriteArrayOfNullableFloat64, CompactReader.ReadArrayOfNullableFloat64, ptrElemEqual[float64], clonePtr[float64])
}
