package compact

// SchemaWriter is a CompactWriter that ignores values and records the field
// names and kinds written. Running a serializer's Write against it yields
// the schema of the serializer's type.
type SchemaWriter struct {
	typeName string
	fields   []FieldDescriptor
	seen     map[string]struct{}
	err      error
}

// NewSchemaWriter creates a SchemaWriter for typeName.
func NewSchemaWriter(typeName string) *SchemaWriter {
	return &SchemaWriter{typeName: typeName, seen: make(map[string]struct{})}
}

// Err returns the first error, a field written twice.
func (s *SchemaWriter) Err() error { return s.err }

// Build returns the schema of the recorded fields.
func (s *SchemaWriter) Build() (*Schema, error) {
	if s.err != nil {
		return nil, s.err
	}
	return NewSchema(s.typeName, s.fields)
}

func (s *SchemaWriter) add(name string, kind FieldKind) {
	if s.err != nil {
		return
	}
	if _, dup := s.seen[name]; dup {
		s.err = newErrorf(ErrCInvalidValue, "field %q is written twice for type %q", name, s.typeName)
		return
	}
	s.seen[name] = struct{}{}
	s.fields = append(s.fields, NewField(name, kind))
}

// ----- Interface Methods (docu see compact.CompactWriter) -----

func (s *SchemaWriter) WriteBoolean(name string, _ bool)       { s.add(name, KindBoolean) }
func (s *SchemaWriter) WriteInt8(name string, _ int8)          { s.add(name, KindInt8) }
func (s *SchemaWriter) WriteInt16(name string, _ int16)        { s.add(name, KindInt16) }
func (s *SchemaWriter) WriteInt32(name string, _ int32)        { s.add(name, KindInt32) }
func (s *SchemaWriter) WriteInt64(name string, _ int64)        { s.add(name, KindInt64) }
func (s *SchemaWriter) WriteFloat32(name string, _ float32)    { s.add(name, KindFloat32) }
func (s *SchemaWriter) WriteFloat64(name string, _ float64)    { s.add(name, KindFloat64) }
func (s *SchemaWriter) WriteString(name string, _ *string)     { s.add(name, KindString) }
func (s *SchemaWriter) WriteDecimal(name string, _ *Decimal)   { s.add(name, KindDecimal) }
func (s *SchemaWriter) WriteTime(name string, _ *LocalTime)    { s.add(name, KindTime) }
func (s *SchemaWriter) WriteDate(name string, _ *LocalDate)    { s.add(name, KindDate) }
func (s *SchemaWriter) WriteCompact(name string, _ any)        { s.add(name, KindCompact) }
func (s *SchemaWriter) WriteTimestamp(name string, _ *LocalDateTime) {
	s.add(name, KindTimestamp)
}
func (s *SchemaWriter) WriteTimestampWithTimezone(name string, _ *OffsetDateTime) {
	s.add(name, KindTimestampWithTimezone)
}

func (s *SchemaWriter) WriteArrayOfBoolean(name string, _ []bool)       { s.add(name, KindArrayOfBoolean) }
func (s *SchemaWriter) WriteArrayOfInt8(name string, _ []int8)          { s.add(name, KindArrayOfInt8) }
func (s *SchemaWriter) WriteArrayOfInt16(name string, _ []int16)        { s.add(name, KindArrayOfInt16) }
func (s *SchemaWriter) WriteArrayOfInt32(name string, _ []int32)        { s.add(name, KindArrayOfInt32) }
func (s *SchemaWriter) WriteArrayOfInt64(name string, _ []int64)        { s.add(name, KindArrayOfInt64) }
func (s *SchemaWriter) WriteArrayOfFloat32(name string, _ []float32)    { s.add(name, KindArrayOfFloat32) }
func (s *SchemaWriter) WriteArrayOfFloat64(name string, _ []float64)    { s.add(name, KindArrayOfFloat64) }
func (s *SchemaWriter) WriteArrayOfString(name string, _ []*string)     { s.add(name, KindArrayOfString) }
func (s *SchemaWriter) WriteArrayOfDecimal(name string, _ []*Decimal)   { s.add(name, KindArrayOfDecimal) }
func (s *SchemaWriter) WriteArrayOfTime(name string, _ []*LocalTime)    { s.add(name, KindArrayOfTime) }
func (s *SchemaWriter) WriteArrayOfDate(name string, _ []*LocalDate)    { s.add(name, KindArrayOfDate) }
func (s *SchemaWriter) WriteArrayOfCompact(name string, _ []any)        { s.add(name, KindArrayOfCompact) }
func (s *SchemaWriter) WriteArrayOfTimestamp(name string, _ []*LocalDateTime) {
	s.add(name, KindArrayOfTimestamp)
}
func (s *SchemaWriter) WriteArrayOfTimestampWithTimezone(name string, _ []*OffsetDateTime) {
	s.add(name, KindArrayOfTimestampWithTimezone)
}

func (s *SchemaWriter) WriteNullableBoolean(name string, _ *bool)       { s.add(name, KindNullableBoolean) }
func (s *SchemaWriter) WriteNullableInt8(name string, _ *int8)          { s.add(name, KindNullableInt8) }
func (s *SchemaWriter) WriteNullableInt16(name string, _ *int16)        { s.add(name, KindNullableInt16) }
func (s *SchemaWriter) WriteNullableInt32(name string, _ *int32)        { s.add(name, KindNullableInt32) }
func (s *SchemaWriter) WriteNullableInt64(name string, _ *int64)        { s.add(name, KindNullableInt64) }
func (s *SchemaWriter) WriteNullableFloat32(name string, _ *float32)    { s.add(name, KindNullableFloat32) }
func (s *SchemaWriter) WriteNullableFloat64(name string, _ *float64)    { s.add(name, KindNullableFloat64) }

func (s *SchemaWriter) WriteArrayOfNullableBoolean(name string, _ []*bool) {
	s.add(name, KindArrayOfNullableBoolean)
}
func (s *SchemaWriter) WriteArrayOfNullableInt8(name string, _ []*int8) {
	s.add(name, KindArrayOfNullableInt8)
}
func (s *SchemaWriter) WriteArrayOfNullableInt16(name string, _ []*int16) {
	s.add(name, KindArrayOfNullableInt16)
}
func (s *SchemaWriter) WriteArrayOfNullableInt32(name string, _ []*int32) {
	s.add(name, KindArrayOfNullableInt32)
}
func (s *SchemaWriter) WriteArrayOfNullableInt64(name string, _ []*int64) {
	s.add(name, KindArrayOfNullableInt64)
}
func (s *SchemaWriter) WriteArrayOfNullableFloat32(name string, _ []*float32) {
	s.add(name, KindArrayOfNullableFloat32)
}
func (s *SchemaWriter) WriteArrayOfNullableFloat64(name string, _ []*float64) {
	s.add(name, KindArrayOfNullableFloat64)
}
