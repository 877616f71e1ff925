package compact

import (
	"encoding/binary"
	"math"
)

const defaultOutputSize = 64

// ObjectDataOutput is a growable big-endian byte buffer with a write cursor.
// Besides the usual sequential writes it supports positional writes (the
// P-prefixed methods) which do not move the cursor. Positional writes must
// target bytes that have already been written or reserved.
type ObjectDataOutput struct {
	buf []byte
	pos int
}

// NewObjectDataOutput creates an output with the given initial capacity.
func NewObjectDataOutput(size int) *ObjectDataOutput {
	if size <= 0 {
		size = defaultOutputSize
	}
	return &ObjectDataOutput{buf: make([]byte, size)}
}

// Position returns the current write position.
func (o *ObjectDataOutput) Position() int { return o.pos }

// ToBytes returns a copy of the written bytes.
func (o *ObjectDataOutput) ToBytes() []byte {
	b := make([]byte, o.pos)
	copy(b, o.buf[:o.pos])
	return b
}

// ensure grows the buffer so that n more bytes fit behind the cursor.
func (o *ObjectDataOutput) ensure(n int) {
	if o.pos+n <= len(o.buf) {
		return
	}
	size := len(o.buf) * 2
	if size < o.pos+n {
		size = o.pos + n
	}
	grown := make([]byte, size)
	copy(grown, o.buf[:o.pos])
	o.buf = grown
}

// --------------------------------------------------------------------------
// Sequential writes
// --------------------------------------------------------------------------

func (o *ObjectDataOutput) WriteBool(v bool) {
	if v {
		o.WriteInt8(1)
	} else {
		o.WriteInt8(0)
	}
}

func (o *ObjectDataOutput) WriteInt8(v int8) {
	o.ensure(1)
	o.buf[o.pos] = byte(v)
	o.pos++
}

func (o *ObjectDataOutput) WriteInt16(v int16) {
	o.ensure(2)
	binary.BigEndian.PutUint16(o.buf[o.pos:], uint16(v))
	o.pos += 2
}

func (o *ObjectDataOutput) WriteInt32(v int32) {
	o.ensure(4)
	binary.BigEndian.PutUint32(o.buf[o.pos:], uint32(v))
	o.pos += 4
}

func (o *ObjectDataOutput) WriteInt64(v int64) {
	o.ensure(8)
	binary.BigEndian.PutUint64(o.buf[o.pos:], uint64(v))
	o.pos += 8
}

func (o *ObjectDataOutput) WriteFloat32(v float32) {
	o.WriteInt32(int32(math.Float32bits(v)))
}

func (o *ObjectDataOutput) WriteFloat64(v float64) {
	o.WriteInt64(int64(math.Float64bits(v)))
}

// WriteRaw writes b without a length prefix.
func (o *ObjectDataOutput) WriteRaw(b []byte) {
	o.ensure(len(b))
	copy(o.buf[o.pos:], b)
	o.pos += len(b)
}

// WriteBytes writes b prefixed with its int32 length.
func (o *ObjectDataOutput) WriteBytes(b []byte) {
	o.WriteInt32(int32(len(b)))
	o.WriteRaw(b)
}

// WriteString writes the UTF-8 bytes of s prefixed with their int32 length.
func (o *ObjectDataOutput) WriteString(s string) {
	o.WriteInt32(int32(len(s)))
	o.ensure(len(s))
	copy(o.buf[o.pos:], s)
	o.pos += len(s)
}

// WriteZeroBytes reserves n zeroed bytes.
func (o *ObjectDataOutput) WriteZeroBytes(n int) {
	o.ensure(n)
	clear(o.buf[o.pos : o.pos+n])
	o.pos += n
}

// --------------------------------------------------------------------------
// Positional writes (cursor is not moved)
// --------------------------------------------------------------------------

func (o *ObjectDataOutput) PWriteBool(pos int, v bool) {
	if v {
		o.buf[pos] = 1
	} else {
		o.buf[pos] = 0
	}
}

// PWriteBoolBit sets or clears a single bit of the byte at pos. The other
// bits of that byte are left untouched.
func (o *ObjectDataOutput) PWriteBoolBit(pos int, bit int, v bool) {
	if v {
		o.buf[pos] |= 1 << uint(bit)
	} else {
		o.buf[pos] &^= 1 << uint(bit)
	}
}

func (o *ObjectDataOutput) PWriteInt8(pos int, v int8) {
	o.buf[pos] = byte(v)
}

func (o *ObjectDataOutput) PWriteInt16(pos int, v int16) {
	binary.BigEndian.PutUint16(o.buf[pos:], uint16(v))
}

func (o *ObjectDataOutput) PWriteInt32(pos int, v int32) {
	binary.BigEndian.PutUint32(o.buf[pos:], uint32(v))
}

func (o *ObjectDataOutput) PWriteInt64(pos int, v int64) {
	binary.BigEndian.PutUint64(o.buf[pos:], uint64(v))
}

func (o *ObjectDataOutput) PWriteFloat32(pos int, v float32) {
	o.PWriteInt32(pos, int32(math.Float32bits(v)))
}

func (o *ObjectDataOutput) PWriteFloat64(pos int, v float64) {
	o.PWriteInt64(pos, int64(math.Float64bits(v)))
}
