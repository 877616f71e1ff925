package compact

// Writer writes a single compact record body for a known schema.
//
// Layout of the body:
//
//	[int32 variable data length]   only if the schema has variable-size fields
//	[fixed-size region]            primitives at their offsets, booleans as bits
//	[variable-size data]           in write order
//	[offset table]                 one 1, 2 or 4 byte entry per variable field
//
// Offsets are relative to the start of the fixed-size region.
type Writer struct {
	serializer *StreamSerializer
	out        *ObjectDataOutput
	schema     *Schema
	dataStart  int
	offsets    []int32
	err        error
}

func newWriter(serializer *StreamSerializer, out *ObjectDataOutput, schema *Schema) *Writer {
	w := &Writer{serializer: serializer, out: out, schema: schema}
	if n := schema.numberVarSizeFields; n > 0 {
		w.offsets = make([]int32, n)
		for i := range w.offsets {
			w.offsets[i] = nullOffset
		}
		w.dataStart = out.Position() + 4
		out.WriteZeroBytes(schema.fixedSizeFieldsLength + 4)
	} else {
		w.dataStart = out.Position()
		out.WriteZeroBytes(schema.fixedSizeFieldsLength)
	}
	return w
}

// end appends the offset table and patches the data length.
func (w *Writer) end() {
	if w.schema.numberVarSizeFields == 0 {
		return
	}
	dataLength := w.out.Position() - w.dataStart
	writeOffsets(w.out, dataLength, w.offsets)
	w.out.PWriteInt32(w.dataStart-4, int32(dataLength))
}

// Err returns the first write error.
func (w *Writer) Err() error { return w.err }

// field looks up the descriptor for a write. It returns nil (and records the
// error) if the field does not exist or has a different kind.
func (w *Writer) field(name string, kind FieldKind) *FieldDescriptor {
	if w.err != nil {
		return nil
	}
	fd := w.schema.field(name)
	if fd == nil {
		w.err = newErrorf(ErrCUnknownField, "invalid field name %q for %s", name, w.schema)
		return nil
	}
	if fd.Kind != kind {
		w.err = newErrorf(ErrCFieldKindMismatch, "invalid field kind for %q: schema has %s, write used %s", name, fd.Kind, kind)
		return nil
	}
	return fd
}

// begin marks the current position as the start of the field's data.
func (w *Writer) begin(fd *FieldDescriptor) {
	w.offsets[fd.Index] = int32(w.out.Position() - w.dataStart)
}

// --------------------------------------------------------------------------
// Generic helpers
// --------------------------------------------------------------------------

func writeFixed[T any](w *Writer, name string, kind FieldKind, v T, put func(*ObjectDataOutput, int, T)) {
	if fd := w.field(name, kind); fd != nil {
		put(w.out, w.dataStart+fd.Offset, v)
	}
}

func writeVar[T any](w *Writer, name string, kind FieldKind, v *T, enc func(*ObjectDataOutput, T)) {
	fd := w.field(name, kind)
	if fd == nil {
		return
	}
	if v == nil {
		w.offsets[fd.Index] = nullOffset
		return
	}
	w.begin(fd)
	enc(w.out, *v)
}

func writeSlice[T any](w *Writer, name string, kind FieldKind, v []T, enc func(*ObjectDataOutput, []T)) {
	fd := w.field(name, kind)
	if fd == nil {
		return
	}
	if v == nil {
		w.offsets[fd.Index] = nullOffset
		return
	}
	w.begin(fd)
	enc(w.out, v)
}

func writeVarArray[T any](w *Writer, name string, kind FieldKind, items []*T, enc func(*ObjectDataOutput, T)) {
	fd := w.field(name, kind)
	if fd == nil {
		return
	}
	if items == nil {
		w.offsets[fd.Index] = nullOffset
		return
	}
	w.begin(fd)
	writeVarItems(w.out, len(items), func(i int) bool {
		if items[i] == nil {
			return false
		}
		enc(w.out, *items[i])
		return true
	})
}

// writeVarItems writes an array of variable-size items: data length, item
// count, the items and an offset table locating every item. writeItem
// returns false for null items, which must not write anything.
func writeVarItems(out *ObjectDataOutput, n int, writeItem func(i int) bool) {
	lengthPos := out.Position()
	out.WriteZeroBytes(4)
	out.WriteInt32(int32(n))
	dataStart := out.Position()
	offsets := make([]int32, n)
	for i := 0; i < n; i++ {
		pos := out.Position()
		if writeItem(i) {
			offsets[i] = int32(pos - dataStart)
		} else {
			offsets[i] = nullOffset
		}
	}
	dataLength := out.Position() - dataStart
	out.PWriteInt32(lengthPos, int32(dataLength))
	writeOffsets(out, dataLength, offsets)
}

func encodeSlice[T any](put func(*ObjectDataOutput, T)) func(*ObjectDataOutput, []T) {
	return func(out *ObjectDataOutput, v []T) {
		out.WriteInt32(int32(len(v)))
		for _, x := range v {
			put(out, x)
		}
	}
}

// encodeBooleanBits packs 8 booleans per byte, first element in the lowest bit.
func encodeBooleanBits(out *ObjectDataOutput, v []bool) {
	out.WriteInt32(int32(len(v)))
	for i := 0; i < len(v); i += 8 {
		var b uint8
		for j := 0; j < 8 && i+j < len(v); j++ {
			if v[i+j] {
				b |= 1 << uint(j)
			}
		}
		out.WriteInt8(int8(b))
	}
}

// --------------------------------------------------------------------------
// Interface Methods (docu see compact.CompactWriter)
// --------------------------------------------------------------------------

func (w *Writer) WriteBoolean(name string, v bool) {
	if fd := w.field(name, KindBoolean); fd != nil {
		w.out.PWriteBoolBit(w.dataStart+fd.Offset, fd.BitOffset, v)
	}
}

func (w *Writer) WriteInt8(name string, v int8) {
	writeFixed(w, name, KindInt8, v, (*ObjectDataOutput).PWriteInt8)
}

func (w *Writer) WriteInt16(name string, v int16) {
	writeFixed(w, name, KindInt16, v, (*ObjectDataOutput).PWriteInt16)
}

func (w *Writer) WriteInt32(name string, v int32) {
	writeFixed(w, name, KindInt32, v, (*ObjectDataOutput).PWriteInt32)
}

func (w *Writer) WriteInt64(name string, v int64) {
	writeFixed(w, name, KindInt64, v, (*ObjectDataOutput).PWriteInt64)
}

func (w *Writer) WriteFloat32(name string, v float32) {
	writeFixed(w, name, KindFloat32, v, (*ObjectDataOutput).PWriteFloat32)
}

func (w *Writer) WriteFloat64(name string, v float64) {
	writeFixed(w, name, KindFloat64, v, (*ObjectDataOutput).PWriteFloat64)
}

func (w *Writer) WriteString(name string, v *string) {
	writeVar(w, name, KindString, v, (*ObjectDataOutput).WriteString)
}

func (w *Writer) WriteDecimal(name string, v *Decimal) {
	writeVar(w, name, KindDecimal, v, writeDecimal)
}

func (w *Writer) WriteTime(name string, v *LocalTime) {
	writeVar(w, name, KindTime, v, writeLocalTime)
}

func (w *Writer) WriteDate(name string, v *LocalDate) {
	writeVar(w, name, KindDate, v, writeLocalDate)
}

func (w *Writer) WriteTimestamp(name string, v *LocalDateTime) {
	writeVar(w, name, KindTimestamp, v, writeLocalDateTime)
}

func (w *Writer) WriteTimestampWithTimezone(name string, v *OffsetDateTime) {
	writeVar(w, name, KindTimestampWithTimezone, v, writeOffsetDateTime)
}

func (w *Writer) WriteCompact(name string, v any) {
	fd := w.field(name, KindCompact)
	if fd == nil {
		return
	}
	if isNilCompact(v) {
		w.offsets[fd.Index] = nullOffset
		return
	}
	w.begin(fd)
	if err := w.serializer.writeObject(w.out, v); err != nil {
		w.err = err
	}
}

func (w *Writer) WriteArrayOfBoolean(name string, v []bool) {
	writeSlice(w, name, KindArrayOfBoolean, v, encodeBooleanBits)
}

func (w *Writer) WriteArrayOfInt8(name string, v []int8) {
	writeSlice(w, name, KindArrayOfInt8, v, encodeSlice((*ObjectDataOutput).WriteInt8))
}

func (w *Writer) WriteArrayOfInt16(name string, v []int16) {
	writeSlice(w, name, KindArrayOfInt16, v, encodeSlice((*ObjectDataOutput).WriteInt16))
}

func (w *Writer) WriteArrayOfInt32(name string, v []int32) {
	writeSlice(w, name, KindArrayOfInt32, v, encodeSlice((*ObjectDataOutput).WriteInt32))
}

func (w *Writer) WriteArrayOfInt64(name string, v []int64) {
	writeSlice(w, name, KindArrayOfInt64, v, encodeSlice((*ObjectDataOutput).WriteInt64))
}

func (w *Writer) WriteArrayOfFloat32(name string, v []float32) {
	writeSlice(w, name, KindArrayOfFloat32, v, encodeSlice((*ObjectDataOutput).WriteFloat32))
}

func (w *Writer) WriteArrayOfFloat64(name string, v []float64) {
	writeSlice(w, name, KindArrayOfFloat64, v, encodeSlice((*ObjectDataOutput).WriteFloat64))
}

func (w *Writer) WriteArrayOfString(name string, v []*string) {
	writeVarArray(w, name, KindArrayOfString, v, (*ObjectDataOutput).WriteString)
}

func (w *Writer) WriteArrayOfDecimal(name string, v []*Decimal) {
	writeVarArray(w, name, KindArrayOfDecimal, v, writeDecimal)
}

func (w *Writer) WriteArrayOfTime(name string, v []*LocalTime) {
	writeVarArray(w, name, KindArrayOfTime, v, writeLocalTime)
}

func (w *Writer) WriteArrayOfDate(name string, v []*LocalDate) {
	writeVarArray(w, name, KindArrayOfDate, v, writeLocalDate)
}

func (w *Writer) WriteArrayOfTimestamp(name string, v []*LocalDateTime) {
	writeVarArray(w, name, KindArrayOfTimestamp, v, writeLocalDateTime)
}

func (w *Writer) WriteArrayOfTimestampWithTimezone(name string, v []*OffsetDateTime) {
	writeVarArray(w, name, KindArrayOfTimestampWithTimezone, v, writeOffsetDateTime)
}

func (w *Writer) WriteArrayOfCompact(name string, v []any) {
	fd := w.field(name, KindArrayOfCompact)
	if fd == nil {
		return
	}
	if v == nil {
		w.offsets[fd.Index] = nullOffset
		return
	}
	// checked up front so no bytes of a mixed array are written
	if err := checkCompactArray(name, v); err != nil {
		w.err = err
		return
	}
	w.begin(fd)
	writeVarItems(w.out, len(v), func(i int) bool {
		if isNilCompact(v[i]) {
			return false
		}
		if err := w.serializer.writeObject(w.out, v[i]); err != nil && w.err == nil {
			w.err = err
		}
		return true
	})
}

func (w *Writer) WriteNullableBoolean(name string, v *bool) {
	writeVar(w, name, KindNullableBoolean, v, (*ObjectDataOutput).WriteBool)
}

func (w *Writer) WriteNullableInt8(name string, v *int8) {
	writeVar(w, name, KindNullableInt8, v, (*ObjectDataOutput).WriteInt8)
}

func (w *Writer) WriteNullableInt16(name string, v *int16) {
	writeVar(w, name, KindNullableInt16, v, (*ObjectDataOutput).WriteInt16)
}

func (w *Writer) WriteNullableInt32(name string, v *int32) {
	writeVar(w, name, KindNullableInt32, v, (*ObjectDataOutput).WriteInt32)
}

func (w *Writer) WriteNullableInt64(name string, v *int64) {
	writeVar(w, name, KindNullableInt64, v, (*ObjectDataOutput).WriteInt64)
}

func (w *Writer) WriteNullableFloat32(name string, v *float32) {
	writeVar(w, name, KindNullableFloat32, v, (*ObjectDataOutput).WriteFloat32)
}

func (w *Writer) WriteNullableFloat64(name string, v *float64) {
	writeVar(w, name, KindNullableFloat64, v, (*ObjectDataOutput).WriteFloat64)
}

func (w *Writer) WriteArrayOfNullableBoolean(name string, v []*bool) {
	writeVarArray(w, name, KindArrayOfNullableBoolean, v, (*ObjectDataOutput).WriteBool)
}

func (w *Writer) WriteArrayOfNullableInt8(name string, v []*int8) {
	writeVarArray(w, name, KindArrayOfNullableInt8, v, (*ObjectDataOutput).WriteInt8)
}

func (w *Writer) WriteArrayOfNullableInt16(name string, v []*int16) {
	writeVarArray(w, name, KindArrayOfNullableInt16, v, (*ObjectDataOutput).WriteInt16)
}

func (w *Writer) WriteArrayOfNullableInt32(name string, v []*int32) {
	writeVarArray(w, name, KindArrayOfNullableInt32, v, (*ObjectDataOutput).WriteInt32)
}

func (w *Writer) WriteArrayOfNullableInt64(name string, v []*int64) {
	writeVarArray(w, name, KindArrayOfNullableInt64, v, (*ObjectDataOutput).WriteInt64)
}

func (w *Writer) WriteArrayOfNullableFloat32(name string, v []*float32) {
	writeVarArray(w, name, KindArrayOfNullableFloat32, v, (*ObjectDataOutput).WriteFloat32)
}

func (w *Writer) WriteArrayOfNullableFloat64(name string, v []*float64) {
	writeVarArray(w, name, KindArrayOfNullableFloat64, v, (*ObjectDataOutput).WriteFloat64)
}
