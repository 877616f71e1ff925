package compact

import (
	"context"
	"strings"
)

// Reader reads the fields of a single compact record body. Fixed-size fields
// are read at their schema offset, variable-size fields through the offset
// table. Every read restores the input position, so fields can be read in
// any order.
type Reader struct {
	ctx        context.Context
	serializer *StreamSerializer
	in         *ObjectDataInput
	schema     *Schema
	dataStart  int
	offsetsPos int
	readOffset offsetReader
	err        error
}

// newReader positions in behind the record body so that the caller can
// continue reading whatever follows it.
func newReader(ctx context.Context, serializer *StreamSerializer, in *ObjectDataInput, schema *Schema) *Reader {
	r := &Reader{ctx: ctx, serializer: serializer, in: in, schema: schema}
	var end int
	if n := schema.numberVarSizeFields; n > 0 {
		dataLength := int(in.ReadInt32())
		r.dataStart = in.Position()
		r.offsetsPos = r.dataStart + dataLength
		var width int
		r.readOffset, width = offsetReaderFor(dataLength)
		end = r.offsetsPos + n*width
	} else {
		r.dataStart = in.Position()
		end = r.dataStart + schema.fixedSizeFieldsLength
	}
	in.SetPosition(end)
	return r
}

// Err returns the first read error.
func (r *Reader) Err() error {
	if r.err != nil {
		return r.err
	}
	return r.in.Err()
}

func (r *Reader) failed() bool { return r.Err() != nil }

// Schema returns the schema of the record being read.
func (r *Reader) Schema() *Schema { return r.schema }

// GetFieldKind returns the kind of the field or KindNotAvailable.
func (r *Reader) GetFieldKind(name string) FieldKind {
	if fd := r.schema.field(name); fd != nil {
		return fd.Kind
	}
	return KindNotAvailable
}

// field looks up the descriptor for a read. kinds lists all acceptable
// kinds; the first one is the kind the accessor is named after.
func (r *Reader) field(name string, kinds ...FieldKind) *FieldDescriptor {
	if r.failed() {
		return nil
	}
	fd := r.schema.field(name)
	if fd == nil {
		r.err = newErrorf(ErrCUnknownField, "unknown field name %q for %s", name, r.schema)
		return nil
	}
	for _, k := range kinds {
		if fd.Kind == k {
			return fd
		}
	}
	names := make([]string, len(kinds))
	for i, k := range kinds {
		names[i] = k.String()
	}
	r.err = newErrorf(ErrCFieldKindMismatch, "mismatched field kind %s for field %q, kind must be one of [%s]",
		fd.Kind, name, strings.Join(names, ", "))
	return nil
}

// varPosition resolves the absolute position of a variable-size field.
// ok is false for null values.
func (r *Reader) varPosition(fd *FieldDescriptor) (pos int, ok bool) {
	off := r.readOffset(r.in, r.offsetsPos, fd.Index)
	if off == nullOffset || r.in.Err() != nil {
		return 0, false
	}
	return r.dataStart + int(off), true
}

func (r *Reader) fixedPos(fd *FieldDescriptor) int { return r.dataStart + fd.Offset }

func (r *Reader) unexpectedNull(name, method string) {
	if r.err == nil {
		r.err = newErrorf(ErrCUnexpectedNull, "unexpected null value for field %q, use %s instead", name, method)
	}
}

// --------------------------------------------------------------------------
// Generic helpers
// --------------------------------------------------------------------------

// readVar decodes a variable-size field, returning nil for null.
func readVar[T any](r *Reader, fd *FieldDescriptor, dec func(*ObjectDataInput) T) *T {
	pos, ok := r.varPosition(fd)
	if !ok {
		return nil
	}
	saved := r.in.Position()
	r.in.SetPosition(pos)
	v := dec(r.in)
	r.in.SetPosition(saved)
	if r.failed() {
		return nil
	}
	return &v
}

// readFixedOrNullable reads a primitive that may be stored under its
// nullable kind, failing on null.
func readFixedOrNullable[T any](r *Reader, name string, kind, nullableKind FieldKind, at func(*ObjectDataInput, int) T, dec func(*ObjectDataInput) T, method string) T {
	var zero T
	fd := r.field(name, kind, nullableKind)
	if fd == nil {
		return zero
	}
	if fd.Kind == kind {
		return at(r.in, r.fixedPos(fd))
	}
	p := readVar(r, fd, dec)
	if p == nil {
		if !r.failed() {
			r.unexpectedNull(name, method)
		}
		return zero
	}
	return *p
}

// readNullable reads a nullable primitive that may be stored under its
// primitive kind.
func readNullable[T any](r *Reader, name string, kind, nullableKind FieldKind, at func(*ObjectDataInput, int) T, dec func(*ObjectDataInput) T) *T {
	fd := r.field(name, nullableKind, kind)
	if fd == nil {
		return nil
	}
	if fd.Kind == kind {
		v := at(r.in, r.fixedPos(fd))
		if r.failed() {
			return nil
		}
		return &v
	}
	return readVar(r, fd, dec)
}

func readVarField[T any](r *Reader, name string, kind FieldKind, dec func(*ObjectDataInput) T) *T {
	fd := r.field(name, kind)
	if fd == nil {
		return nil
	}
	return readVar(r, fd, dec)
}

func readSliceField[T any](r *Reader, name string, kind FieldKind, dec func(*ObjectDataInput) []T) []T {
	fd := r.field(name, kind)
	if fd == nil {
		return nil
	}
	if p := readVar(r, fd, dec); p != nil {
		return *p
	}
	return nil
}

func readVarArrayField[T any](r *Reader, name string, kind FieldKind, dec func(*ObjectDataInput) T) []*T {
	fd := r.field(name, kind)
	if fd == nil {
		return nil
	}
	return readVarArray(r, fd, dec)
}

func readVarArray[T any](r *Reader, fd *FieldDescriptor, dec func(*ObjectDataInput) T) []*T {
	pos, ok := r.varPosition(fd)
	if !ok {
		return nil
	}
	saved := r.in.Position()
	r.in.SetPosition(pos)
	items := readVarItems(r.in, dec)
	r.in.SetPosition(saved)
	if r.failed() {
		return nil
	}
	return items
}

// readVarItems reads an array written by writeVarItems.
func readVarItems[T any](in *ObjectDataInput, dec func(*ObjectDataInput) T) []*T {
	dataLength := int(in.ReadInt32())
	n := int(in.ReadInt32())
	dataStart := in.Position()
	if in.Err() != nil {
		return nil
	}
	if n < 0 || dataLength < 0 || n > in.Available() {
		in.setErr(newErrorf(ErrCMalformed, "invalid array header: length %d, count %d", dataLength, n))
		return nil
	}
	readOffset, _ := offsetReaderFor(dataLength)
	offsetsPos := dataStart + dataLength
	items := make([]*T, n)
	for i := 0; i < n; i++ {
		off := readOffset(in, offsetsPos, i)
		if off == nullOffset {
			continue
		}
		in.SetPosition(dataStart + int(off))
		v := dec(in)
		if in.Err() != nil {
			return nil
		}
		items[i] = &v
	}
	return items
}

// readPrimitiveArray reads a primitive array that may be stored as an array
// of its nullable kind. A null item fails the read.
func readPrimitiveArray[T any](r *Reader, name string, kind, nullableKind FieldKind, decArray func(*ObjectDataInput) []T, dec func(*ObjectDataInput) T, method string) []T {
	fd := r.field(name, kind, nullableKind)
	if fd == nil {
		return nil
	}
	if fd.Kind == kind {
		if p := readVar(r, fd, decArray); p != nil {
			return *p
		}
		return nil
	}
	items := readVarArray(r, fd, dec)
	if items == nil {
		return nil
	}
	out := make([]T, len(items))
	for i, item := range items {
		if item == nil {
			r.unexpectedNull(name, method)
			return nil
		}
		out[i] = *item
	}
	return out
}

// readNullableArray reads an array of a nullable kind that may be stored as
// a primitive array.
func readNullableArray[T any](r *Reader, name string, kind, nullableKind FieldKind, decArray func(*ObjectDataInput) []T, dec func(*ObjectDataInput) T) []*T {
	fd := r.field(name, nullableKind, kind)
	if fd == nil {
		return nil
	}
	if fd.Kind == nullableKind {
		return readVarArray(r, fd, dec)
	}
	p := readVar(r, fd, decArray)
	if p == nil {
		return nil
	}
	out := make([]*T, len(*p))
	for i := range *p {
		out[i] = &(*p)[i]
	}
	return out
}

func decodeSlice[T any](get func(*ObjectDataInput) T) func(*ObjectDataInput) []T {
	return func(in *ObjectDataInput) []T {
		n := int(in.ReadInt32())
		if in.Err() != nil {
			return nil
		}
		if n < 0 || n > in.Available() {
			in.setErr(newErrorf(ErrCMalformed, "invalid array length %d", n))
			return nil
		}
		out := make([]T, n)
		for i := range out {
			out[i] = get(in)
		}
		return out
	}
}

func decodeBooleanBits(in *ObjectDataInput) []bool {
	n := int(in.ReadInt32())
	if in.Err() != nil {
		return nil
	}
	if n < 0 || (n+7)/8 > in.Available() {
		in.setErr(newErrorf(ErrCMalformed, "invalid boolean array length %d", n))
		return nil
	}
	out := make([]bool, n)
	for i := 0; i < n; i += 8 {
		b := uint8(in.ReadInt8())
		for j := 0; j < 8 && i+j < n; j++ {
			out[i+j] = b&(1<<uint(j)) != 0
		}
	}
	return out
}

// readNested decodes a nested compact value at the current position.
func (r *Reader) readNested(in *ObjectDataInput) any {
	v, err := r.serializer.readObject(r.ctx, in)
	if err != nil && r.err == nil {
		r.err = err
	}
	return v
}

// --------------------------------------------------------------------------
// Interface Methods (docu see compact.CompactReader)
// --------------------------------------------------------------------------

func (r *Reader) ReadBoolean(name string) bool {
	return readFixedOrNullable(r, name, KindBoolean, KindNullableBoolean, r.readBooleanBitOf(name), (*ObjectDataInput).ReadBool, "ReadNullableBoolean")
}

// readBooleanBitOf adapts the bit read of a boolean field to the positional
// read signature used by the generic helpers.
func (r *Reader) readBooleanBitOf(name string) func(*ObjectDataInput, int) bool {
	return func(in *ObjectDataInput, pos int) bool {
		fd := r.schema.field(name)
		return in.ReadBoolBitAt(pos, fd.BitOffset)
	}
}

func (r *Reader) ReadInt8(name string) int8 {
	return readFixedOrNullable(r, name, KindInt8, KindNullableInt8, (*ObjectDataInput).ReadInt8At, (*ObjectDataInput).ReadInt8, "ReadNullableInt8")
}

func (r *Reader) ReadInt16(name string) int16 {
	return readFixedOrNullable(r, name, KindInt16, KindNullableInt16, (*ObjectDataInput).ReadInt16At, (*ObjectDataInput).ReadInt16, "ReadNullableInt16")
}

func (r *Reader) ReadInt32(name string) int32 {
	return readFixedOrNullable(r, name, KindInt32, KindNullableInt32, (*ObjectDataInput).ReadInt32At, (*ObjectDataInput).ReadInt32, "ReadNullableInt32")
}

func (r *Reader) ReadInt64(name string) int64 {
	return readFixedOrNullable(r, name, KindInt64, KindNullableInt64, (*ObjectDataInput).ReadInt64At, (*ObjectDataInput).ReadInt64, "ReadNullableInt64")
}

func (r *Reader) ReadFloat32(name string) float32 {
	return readFixedOrNullable(r, name, KindFloat32, KindNullableFloat32, (*ObjectDataInput).ReadFloat32At, (*ObjectDataInput).ReadFloat32, "ReadNullableFloat32")
}

func (r *Reader) ReadFloat64(name string) float64 {
	return readFixedOrNullable(r, name, KindFloat64, KindNullableFloat64, (*ObjectDataInput).ReadFloat64At, (*ObjectDataInput).ReadFloat64, "ReadNullableFloat64")
}

func (r *Reader) ReadString(name string) *string {
	return readVarField(r, name, KindString, (*ObjectDataInput).ReadString)
}

func (r *Reader) ReadDecimal(name string) *Decimal {
	return readVarField(r, name, KindDecimal, readDecimal)
}

func (r *Reader) ReadTime(name string) *LocalTime {
	return readVarField(r, name, KindTime, readLocalTime)
}

func (r *Reader) ReadDate(name string) *LocalDate {
	return readVarField(r, name, KindDate, readLocalDate)
}

func (r *Reader) ReadTimestamp(name string) *LocalDateTime {
	return readVarField(r, name, KindTimestamp, readLocalDateTime)
}

func (r *Reader) ReadTimestampWithTimezone(name string) *OffsetDateTime {
	return readVarField(r, name, KindTimestampWithTimezone, readOffsetDateTime)
}

func (r *Reader) ReadCompact(name string) any {
	if p := readVarField(r, name, KindCompact, r.readNested); p != nil {
		return *p
	}
	return nil
}

func (r *Reader) ReadArrayOfBoolean(name string) []bool {
	return readPrimitiveArray(r, name, KindArrayOfBoolean, KindArrayOfNullableBoolean, decodeBooleanBits, (*ObjectDataInput).ReadBool, "ReadArrayOfNullableBoolean")
}

func (r *Reader) ReadArrayOfInt8(name string) []int8 {
	return readPrimitiveArray(r, name, KindArrayOfInt8, KindArrayOfNullableInt8, decodeSlice((*ObjectDataInput).ReadInt8), (*ObjectDataInput).ReadInt8, "ReadArrayOfNullableInt8")
}

func (r *Reader) ReadArrayOfInt16(name string) []int16 {
	return readPrimitiveArray(r, name, KindArrayOfInt16, KindArrayOfNullableInt16, decodeSlice((*ObjectDataInput).ReadInt16), (*ObjectDataInput).ReadInt16, "ReadArrayOfNullableInt16")
}

func (r *Reader) ReadArrayOfInt32(name string) []int32 {
	return readPrimitiveArray(r, name, KindArrayOfInt32, KindArrayOfNullableInt32, decodeSlice((*ObjectDataInput).ReadInt32), (*ObjectDataInput).ReadInt32, "ReadArrayOfNullableInt32")
}

func (r *Reader) ReadArrayOfInt64(name string) []int64 {
	return readPrimitiveArray(r, name, KindArrayOfInt64, KindArrayOfNullableInt64, decodeSlice((*ObjectDataInput).ReadInt64), (*ObjectDataInput).ReadInt64, "ReadArrayOfNullableInt64")
}

func (r *Reader) ReadArrayOfFloat32(name string) []float32 {
	return readPrimitiveArray(r, name, KindArrayOfFloat32, KindArrayOfNullableFloat32, decodeSlice((*ObjectDataInput).ReadFloat32), (*ObjectDataInput).ReadFloat32, "ReadArrayOfNullableFloat32")
}

func (r *Reader) ReadArrayOfFloat64(name string) []float64 {
	return readPrimitiveArray(r, name, KindArrayOfFloat64, KindArrayOfNullableFloat64, decodeSlice((*ObjectDataInput).ReadFloat64), (*ObjectDataInput).ReadFloat64, "ReadArrayOfNullableFloat64")
}

func (r *Reader) ReadArrayOfString(name string) []*string {
	return readVarArrayField(r, name, KindArrayOfString, (*ObjectDataInput).ReadString)
}

func (r *Reader) ReadArrayOfDecimal(name string) []*Decimal {
	return readVarArrayField(r, name, KindArrayOfDecimal, readDecimal)
}

func (r *Reader) ReadArrayOfTime(name string) []*LocalTime {
	return readVarArrayField(r, name, KindArrayOfTime, readLocalTime)
}

func (r *Reader) ReadArrayOfDate(name string) []*LocalDate {
	return readVarArrayField(r, name, KindArrayOfDate, readLocalDate)
}

func (r *Reader) ReadArrayOfTimestamp(name string) []*LocalDateTime {
	return readVarArrayField(r, name, KindArrayOfTimestamp, readLocalDateTime)
}

func (r *Reader) ReadArrayOfTimestampWithTimezone(name string) []*OffsetDateTime {
	return readVarArrayField(r, name, KindArrayOfTimestampWithTimezone, readOffsetDateTime)
}

func (r *Reader) ReadArrayOfCompact(name string) []any {
	items := readVarArrayField(r, name, KindArrayOfCompact, r.readNested)
	if items == nil {
		return nil
	}
	out := make([]any, len(items))
	for i, item := range items {
		if item != nil {
			out[i] = *item
		}
	}
	return out
}

func (r *Reader) ReadNullableBoolean(name string) *bool {
	return readNullable(r, name, KindBoolean, KindNullableBoolean, r.readBooleanBitOf(name), (*ObjectDataInput).ReadBool)
}

func (r *Reader) ReadNullableInt8(name string) *int8 {
	return readNullable(r, name, KindInt8, KindNullableInt8, (*ObjectDataInput).ReadInt8At, (*ObjectDataInput).ReadInt8)
}

func (r *Reader) ReadNullableInt16(name string) *int16 {
	return readNullable(r, name, KindInt16, KindNullableInt16, (*ObjectDataInput).ReadInt16At, (*ObjectDataInput).ReadInt16)
}

func (r *Reader) ReadNullableInt32(name string) *int32 {
	return readNullable(r, name, KindInt32, KindNullableInt32, (*ObjectDataInput).ReadInt32At, (*ObjectDataInput).ReadInt32)
}

func (r *Reader) ReadNullableInt64(name string) *int64 {
	return readNullable(r, name, KindInt64, KindNullableInt64, (*ObjectDataInput).ReadInt64At, (*ObjectDataInput).ReadInt64)
}

func (r *Reader) ReadNullableFloat32(name string) *float32 {
	return readNullable(r, name, KindFloat32, KindNullableFloat32, (*ObjectDataInput).ReadFloat32At, (*ObjectDataInput).ReadFloat32)
}

func (r *Reader) ReadNullableFloat64(name string) *float64 {
	return readNullable(r, name, KindFloat64, KindNullableFloat64, (*ObjectDataInput).ReadFloat64At, (*ObjectDataInput).ReadFloat64)
}

func (r *Reader) ReadArrayOfNullableBoolean(name string) []*bool {
	return readNullableArray(r, name, KindArrayOfBoolean, KindArrayOfNullableBoolean, decodeBooleanBits, (*ObjectDataInput).ReadBool)
}

func (r *Reader) ReadArrayOfNullableInt8(name string) []*int8 {
	return readNullableArray(r, name, KindArrayOfInt8, KindArrayOfNullableInt8, decodeSlice((*ObjectDataInput).ReadInt8), (*ObjectDataInput).ReadInt8)
}

func (r *Reader) ReadArrayOfNullableInt16(name string) []*int16 {
	return readNullableArray(r, name, KindArrayOfInt16, KindArrayOfNullableInt16, decodeSlice((*ObjectDataInput).ReadInt16), (*ObjectDataInput).ReadInt16)
}

func (r *Reader) ReadArrayOfNullableInt32(name string) []*int32 {
	return readNullableArray(r, name, KindArrayOfInt32, KindArrayOfNullableInt32, decodeSlice((*ObjectDataInput).ReadInt32), (*ObjectDataInput).ReadInt32)
}

func (r *Reader) ReadArrayOfNullableInt64(name string) []*int64 {
	return readNullableArray(r, name, KindArrayOfInt64, KindArrayOfNullableInt64, decodeSlice((*ObjectDataInput).ReadInt64), (*ObjectDataInput).ReadInt64)
}

func (r *Reader) ReadArrayOfNullableFloat32(name string) []*float32 {
	return readNullableArray(r, name, KindArrayOfFloat32, KindArrayOfNullableFloat32, decodeSlice((*ObjectDataInput).ReadFloat32), (*ObjectDataInput).ReadFloat32)
}

func (r *Reader) ReadArrayOfNullableFloat64(name string) []*float64 {
	return readNullableArray(r, name, KindArrayOfFloat64, KindArrayOfNullableFloat64, decodeSlice((*ObjectDataInput).ReadFloat64), (*ObjectDataInput).ReadFloat64)
}

// --------------------------------------------------------------------------
// Generic record conversion
// --------------------------------------------------------------------------

// toGenericRecord reads every field of the schema into a GenericRecord.
func (r *Reader) toGenericRecord() (*GenericRecord, error) {
	values := make(map[string]any, len(r.schema.fields))
	for _, fd := range r.schema.fields {
		values[fd.Name] = fieldOps(fd.Kind).read(r, fd.Name)
	}
	if err := r.Err(); err != nil {
		return nil, err
	}
	return newTrustedGenericRecord(r.schema, values), nil
}
