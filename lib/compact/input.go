package compact

import (
	"encoding/binary"
	"math"
)

// ObjectDataInput reads big-endian values from a byte slice.
//
// Errors are sticky: the first out-of-range read records an ErrCMalformed
// error, and every following read returns a zero value. Callers check Err
// once after a group of reads.
type ObjectDataInput struct {
	buf []byte
	pos int
	err error
}

// NewObjectDataInput creates an input reading b from offset 0.
func NewObjectDataInput(b []byte) *ObjectDataInput {
	return &ObjectDataInput{buf: b}
}

// Position returns the current read position.
func (in *ObjectDataInput) Position() int { return in.pos }

// SetPosition moves the read cursor.
func (in *ObjectDataInput) SetPosition(pos int) {
	if pos < 0 || pos > len(in.buf) {
		in.fail(pos, 0)
		return
	}
	in.pos = pos
}

// Available returns the number of unread bytes.
func (in *ObjectDataInput) Available() int { return len(in.buf) - in.pos }

// Err returns the first error encountered by a read.
func (in *ObjectDataInput) Err() error { return in.err }

// setErr records err unless an error is already present.
func (in *ObjectDataInput) setErr(err error) {
	if in.err == nil {
		in.err = err
	}
}

func (in *ObjectDataInput) fail(pos, n int) {
	in.setErr(newErrorf(ErrCMalformed, "cannot read %d bytes at position %d, input has %d bytes", n, pos, len(in.buf)))
}

// check reports whether n bytes can be read at pos.
func (in *ObjectDataInput) check(pos, n int) bool {
	if in.err != nil {
		return false
	}
	if pos < 0 || n < 0 || pos+n > len(in.buf) {
		in.fail(pos, n)
		return false
	}
	return true
}

// --------------------------------------------------------------------------
// Sequential reads
// --------------------------------------------------------------------------

func (in *ObjectDataInput) ReadBool() bool {
	return in.ReadInt8() != 0
}

func (in *ObjectDataInput) ReadInt8() int8 {
	v := in.ReadInt8At(in.pos)
	if in.err == nil {
		in.pos++
	}
	return v
}

func (in *ObjectDataInput) ReadInt16() int16 {
	v := in.ReadInt16At(in.pos)
	if in.err == nil {
		in.pos += 2
	}
	return v
}

func (in *ObjectDataInput) ReadInt32() int32 {
	v := in.ReadInt32At(in.pos)
	if in.err == nil {
		in.pos += 4
	}
	return v
}

func (in *ObjectDataInput) ReadInt64() int64 {
	v := in.ReadInt64At(in.pos)
	if in.err == nil {
		in.pos += 8
	}
	return v
}

func (in *ObjectDataInput) ReadFloat32() float32 {
	return math.Float32frombits(uint32(in.ReadInt32()))
}

func (in *ObjectDataInput) ReadFloat64() float64 {
	return math.Float64frombits(uint64(in.ReadInt64()))
}

// ReadRaw reads n bytes into a new slice.
func (in *ObjectDataInput) ReadRaw(n int) []byte {
	if !in.check(in.pos, n) {
		return nil
	}
	b := make([]byte, n)
	copy(b, in.buf[in.pos:in.pos+n])
	in.pos += n
	return b
}

// ReadBytes reads an int32 length prefixed byte slice.
func (in *ObjectDataInput) ReadBytes() []byte {
	n := in.ReadInt32()
	if in.err != nil {
		return nil
	}
	return in.ReadRaw(int(n))
}

// ReadString reads an int32 length prefixed UTF-8 string.
func (in *ObjectDataInput) ReadString() string {
	n := in.ReadInt32()
	if !in.check(in.pos, int(n)) {
		return ""
	}
	s := string(in.buf[in.pos : in.pos+int(n)])
	in.pos += int(n)
	return s
}

// --------------------------------------------------------------------------
// Positional reads (cursor is not moved)
// --------------------------------------------------------------------------

func (in *ObjectDataInput) ReadBoolAt(pos int) bool {
	return in.ReadInt8At(pos) != 0
}

// ReadBoolBitAt returns the bit at position bit of the byte at pos.
func (in *ObjectDataInput) ReadBoolBitAt(pos int, bit int) bool {
	return (in.ReadInt8At(pos)>>uint(bit))&1 != 0
}

func (in *ObjectDataInput) ReadInt8At(pos int) int8 {
	if !in.check(pos, 1) {
		return 0
	}
	return int8(in.buf[pos])
}

func (in *ObjectDataInput) ReadInt16At(pos int) int16 {
	if !in.check(pos, 2) {
		return 0
	}
	return int16(binary.BigEndian.Uint16(in.buf[pos:]))
}

func (in *ObjectDataInput) ReadInt32At(pos int) int32 {
	if !in.check(pos, 4) {
		return 0
	}
	return int32(binary.BigEndian.Uint32(in.buf[pos:]))
}

func (in *ObjectDataInput) ReadInt64At(pos int) int64 {
	if !in.check(pos, 8) {
		return 0
	}
	return int64(binary.BigEndian.Uint64(in.buf[pos:]))
}

func (in *ObjectDataInput) ReadFloat32At(pos int) float32 {
	return math.Float32frombits(uint32(in.ReadInt32At(pos)))
}

func (in *ObjectDataInput) ReadFloat64At(pos int) float64 {
	return math.Float64frombits(uint64(in.ReadInt64At(pos)))
}
