package compact

// RecordBuilder collects fields and values for a GenericRecord.
//
//	rec, err := compact.NewRecordBuilder("employee").
//		SetInt32("age", 42).
//		SetString("name", &name).
//		Build()
//
// Setting a field twice replaces kind and value. Build validates values like
// NewGenericRecord.
type RecordBuilder struct {
	typeName string
	order    []string
	kinds    map[string]FieldKind
	values   map[string]any
}

// NewRecordBuilder starts a record of typeName.
func NewRecordBuilder(typeName string) *RecordBuilder {
	return &RecordBuilder{
		typeName: typeName,
		kinds:    make(map[string]FieldKind),
		values:   make(map[string]any),
	}
}

// Set adds a field of the given kind. It is the untyped form of the SetX
// methods, used when kinds are only known at runtime.
func (b *RecordBuilder) Set(name string, kind FieldKind, value any) *RecordBuilder {
	if _, ok := b.kinds[name]; !ok {
		b.order = append(b.order, name)
	}
	b.kinds[name] = kind
	b.values[name] = value
	return b
}

// Build creates the record.
func (b *RecordBuilder) Build() (*GenericRecord, error) {
	fields := make([]FieldDescriptor, len(b.order))
	for i, name := range b.order {
		fields[i] = NewField(name, b.kinds[name])
	}
	return NewGenericRecord(b.typeName, fields, b.values)
}

func (b *RecordBuilder) SetBoolean(name string, v bool) *RecordBuilder {
	return b.Set(name, KindBoolean, v)
}

func (b *RecordBuilder) SetInt8(name string, v int8) *RecordBuilder {
	return b.Set(name, KindInt8, v)
}

func (b *RecordBuilder) SetInt16(name string, v int16) *RecordBuilder {
	return b.Set(name, KindInt16, v)
}

func (b *RecordBuilder) SetInt32(name string, v int32) *RecordBuilder {
	return b.Set(name, KindInt32, v)
}

func (b *RecordBuilder) SetInt64(name string, v int64) *RecordBuilder {
	return b.Set(name, KindInt64, v)
}

func (b *RecordBuilder) SetFloat32(name string, v float32) *RecordBuilder {
	return b.Set(name, KindFloat32, v)
}

func (b *RecordBuilder) SetFloat64(name string, v float64) *RecordBuilder {
	return b.Set(name, KindFloat64, v)
}

func (b *RecordBuilder) SetString(name string, v *string) *RecordBuilder {
	return b.Set(name, KindString, v)
}

func (b *RecordBuilder) SetDecimal(name string, v *Decimal) *RecordBuilder {
	return b.Set(name, KindDecimal, v)
}

func (b *RecordBuilder) SetTime(name string, v *LocalTime) *RecordBuilder {
	return b.Set(name, KindTime, v)
}

func (b *RecordBuilder) SetDate(name string, v *LocalDate) *RecordBuilder {
	return b.Set(name, KindDate, v)
}

func (b *RecordBuilder) SetTimestamp(name string, v *LocalDateTime) *RecordBuilder {
	return b.Set(name, KindTimestamp, v)
}

func (b *RecordBuilder) SetTimestampWithTimezone(name string, v *OffsetDateTime) *RecordBuilder {
	return b.Set(name, KindTimestampWithTimezone, v)
}

// SetGenericRecord adds a nested record. A nil record is stored as null.
func (b *RecordBuilder) SetGenericRecord(name string, v *GenericRecord) *RecordBuilder {
	if v == nil {
		return b.Set(name, KindCompact, nil)
	}
	return b.Set(name, KindCompact, v)
}

func (b *RecordBuilder) SetArrayOfBoolean(name string, v []bool) *RecordBuilder {
	return b.Set(name, KindArrayOfBoolean, v)
}

func (b *RecordBuilder) SetArrayOfInt8(name string, v []int8) *RecordBuilder {
	return b.Set(name, KindArrayOfInt8, v)
}

func (b *RecordBuilder) SetArrayOfInt16(name string, v []int16) *RecordBuilder {
	return b.Set(name, KindArrayOfInt16, v)
}

func (b *RecordBuilder) SetArrayOfInt32(name string, v []int32) *RecordBuilder {
	return b.Set(name, KindArrayOfInt32, v)
}

func (b *RecordBuilder) SetArrayOfInt64(name string, v []int64) *RecordBuilder {
	return b.Set(name, KindArrayOfInt64, v)
}

func (b *RecordBuilder) SetArrayOfFloat32(name string, v []float32) *RecordBuilder {
	return b.Set(name, KindArrayOfFloat32, v)
}

func (b *RecordBuilder) SetArrayOfFloat64(name string, v []float64) *RecordBuilder {
	return b.Set(name, KindArrayOfFloat64, v)
}

func (b *RecordBuilder) SetArrayOfString(name string, v []*string) *RecordBuilder {
	return b.Set(name, KindArrayOfString, v)
}

func (b *RecordBuilder) SetArrayOfDecimal(name string, v []*Decimal) *RecordBuilder {
	return b.Set(name, KindArrayOfDecimal, v)
}

func (b *RecordBuilder) SetArrayOfTime(name string, v []*LocalTime) *RecordBuilder {
	return b.Set(name, KindArrayOfTime, v)
}

func (b *RecordBuilder) SetArrayOfDate(name string, v []*LocalDate) *RecordBuilder {
	return b.Set(name, KindArrayOfDate, v)
}

func (b *RecordBuilder) SetArrayOfTimestamp(name string, v []*LocalDateTime) *RecordBuilder {
	return b.Set(name, KindArrayOfTimestamp, v)
}

func (b *RecordBuilder) SetArrayOfTimestampWithTimezone(name string, v []*OffsetDateTime) *RecordBuilder {
	return b.Set(name, KindArrayOfTimestampWithTimezone, v)
}

// SetArrayOfGenericRecord adds an array of nested records of one schema.
func (b *RecordBuilder) SetArrayOfGenericRecord(name string, v []*GenericRecord) *RecordBuilder {
	if v == nil {
		return b.Set(name, KindArrayOfCompact, nil)
	}
	items := make([]any, len(v))
	for i, r := range v {
		if r != nil {
			items[i] = r
		}
	}
	return b.Set(name, KindArrayOfCompact, items)
}

func (b *RecordBuilder) SetNullableBoolean(name string, v *bool) *RecordBuilder {
	return b.Set(name, KindNullableBoolean, v)
}

func (b *RecordBuilder) SetNullableInt8(name string, v *int8) *RecordBuilder {
	return b.Set(name, KindNullableInt8, v)
}

func (b *RecordBuilder) SetNullableInt16(name string, v *int16) *RecordBuilder {
	return b.Set(name, KindNullableInt16, v)
}

func (b *RecordBuilder) SetNullableInt32(name string, v *int32) *RecordBuilder {
	return b.Set(name, KindNullableInt32, v)
}

func (b *RecordBuilder) SetNullableInt64(name string, v *int64) *RecordBuilder {
	return b.Set(name, KindNullableInt64, v)
}

func (b *RecordBuilder) SetNullableFloat32(name string, v *float32) *RecordBuilder {
	return b.Set(name, KindNullableFloat32, v)
}

func (b *RecordBuilder) SetNullableFloat64(name string, v *float64) *RecordBuilder {
	return b.Set(name, KindNullableFloat64, v)
}

func (b *RecordBuilder) SetArrayOfNullableBoolean(name string, v []*bool) *RecordBuilder {
	return b.Set(name, KindArrayOfNullableBoolean, v)
}

func (b *RecordBuilder) SetArrayOfNullableInt8(name string, v []*int8) *RecordBuilder {
	return b.Set(name, KindArrayOfNullableInt8, v)
}

func (b *RecordBuilder) SetArrayOfNullableInt16(name string, v []*int16) *RecordBuilder {
	return b.Set(name, KindArrayOfNullableInt16, v)
}

func (b *RecordBuilder) SetArrayOfNullableInt32(name string, v []*int32) *RecordBuilder {
	return b.Set(name, KindArrayOfNullableInt32, v)
}

func (b *RecordBuilder) SetArrayOfNullableInt64(name string, v []*int64) *RecordBuilder {
	return b.Set(name, KindArrayOfNullableInt64, v)
}

func (b *RecordBuilder) SetArrayOfNullableFloat32(name string, v []*float32) *RecordBuilder {
	return b.Set(name, KindArrayOfNullableFloat32, v)
}

func (b *RecordBuilder) SetArrayOfNullableFloat64(name string, v []*float64) *RecordBuilder {
	return b.Set(name, KindArrayOfNullableFloat64, v)
}
