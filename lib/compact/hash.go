package compact

import (
	"encoding/binary"
	"hash"
	"hash/fnv"
	"math"
	"reflect"
)

// recordHasher feeds field values into FNV-1a. Values that compare equal
// through kindOps.equal produce the same input.
type recordHasher struct {
	h   hash.Hash64
	buf [8]byte
}

func newRecordHasher() *recordHasher {
	return &recordHasher{h: fnv.New64a()}
}

func (h *recordHasher) sum() uint64 { return h.h.Sum64() }

func (h *recordHasher) u64(x uint64) {
	binary.LittleEndian.PutUint64(h.buf[:], x)
	_, _ = h.h.Write(h.buf[:])
}

func (h *recordHasher) bytes(b []byte) {
	h.u64(uint64(len(b)))
	_, _ = h.h.Write(b)
}

// scalar hashes a non-pointer value
func (h *recordHasher) scalar(v any) {
	switch x := v.(type) {
	case nil:
		h.u64(0)
	case bool:
		if x {
			h.u64(1)
		} else {
			h.u64(0)
		}
	case int8:
		h.u64(uint64(x))
	case int16:
		h.u64(uint64(x))
	case int32:
		h.u64(uint64(x))
	case int64:
		h.u64(uint64(x))
	case float32:
		// -0 == +0
		if x == 0 {
			h.u64(0)
		} else {
			h.u64(uint64(math.Float32bits(x)))
		}
	case float64:
		if x == 0 {
			h.u64(0)
		} else {
			h.u64(math.Float64bits(x))
		}
	case string:
		h.bytes([]byte(x))
	case Decimal:
		u := x.UnscaledValue()
		h.u64(uint64(x.scale))
		h.u64(uint64(u.Sign()))
		h.bytes(u.Bytes())
	case LocalDate:
		h.u64(uint64(x.Year))
		h.u64(uint64(x.Month))
		h.u64(uint64(x.Day))
	case LocalTime:
		h.u64(uint64(x.Hour))
		h.u64(uint64(x.Minute))
		h.u64(uint64(x.Second))
		h.u64(uint64(x.Nano))
	case LocalDateTime:
		h.scalar(x.Date)
		h.scalar(x.Time)
	case OffsetDateTime:
		h.scalar(x.DateTime)
		h.u64(uint64(x.OffsetSeconds))
	case *GenericRecord:
		if x == nil {
			h.u64(0)
		} else {
			h.u64(x.Hash())
		}
	default:
		// typed compact objects compare with reflect.DeepEqual, equal ones share their type
		h.bytes([]byte(reflect.TypeOf(x).String()))
	}
}

// element hashes a value that may be a pointer, nil pointers differ from
// pointers to zero values
func (h *recordHasher) element(v any) {
	if r, ok := v.(*GenericRecord); ok {
		h.scalar(r)
		return
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Pointer {
		h.scalar(v)
		return
	}
	if rv.IsNil() {
		h.u64(0)
		return
	}
	h.u64(1)
	h.scalar(rv.Elem().Interface())
}
