package compact

import "context"

// --------------------------------------------------------------------------
// Writer / Reader
// --------------------------------------------------------------------------

// CompactWriter is handed to Serializer.Write. Each method writes the named
// field, which must exist in the schema with the matching kind. Errors are
// sticky: after the first failure all further writes are ignored and Err
// returns the failure.
//
// Nullable and variable-size values are passed as pointers or slices, nil
// meaning null.
type CompactWriter interface {
	WriteBoolean(fieldName string, value bool)
	WriteInt8(fieldName string, value int8)
	WriteInt16(fieldName string, value int16)
	WriteInt32(fieldName string, value int32)
	WriteInt64(fieldName string, value int64)
	WriteFloat32(fieldName string, value float32)
	WriteFloat64(fieldName string, value float64)

	WriteString(fieldName string, value *string)
	WriteDecimal(fieldName string, value *Decimal)
	WriteTime(fieldName string, value *LocalTime)
	WriteDate(fieldName string, value *LocalDate)
	WriteTimestamp(fieldName string, value *LocalDateTime)
	WriteTimestampWithTimezone(fieldName string, value *OffsetDateTime)
	// WriteCompact writes a nested compact value: a *GenericRecord or an
	// object with a registered serializer.
	WriteCompact(fieldName string, value any)

	WriteArrayOfBoolean(fieldName string, value []bool)
	WriteArrayOfInt8(fieldName string, value []int8)
	WriteArrayOfInt16(fieldName string, value []int16)
	WriteArrayOfInt32(fieldName string, value []int32)
	WriteArrayOfInt64(fieldName string, value []int64)
	WriteArrayOfFloat32(fieldName string, value []float32)
	WriteArrayOfFloat64(fieldName string, value []float64)

	WriteArrayOfString(fieldName string, value []*string)
	WriteArrayOfDecimal(fieldName string, value []*Decimal)
	WriteArrayOfTime(fieldName string, value []*LocalTime)
	WriteArrayOfDate(fieldName string, value []*LocalDate)
	WriteArrayOfTimestamp(fieldName string, value []*LocalDateTime)
	WriteArrayOfTimestampWithTimezone(fieldName string, value []*OffsetDateTime)
	// WriteArrayOfCompact writes nested compact values. All non-nil items
	// must be of the same type (or share one schema for generic records).
	WriteArrayOfCompact(fieldName string, value []any)

	WriteNullableBoolean(fieldName string, value *bool)
	WriteNullableInt8(fieldName string, value *int8)
	WriteNullableInt16(fieldName string, value *int16)
	WriteNullableInt32(fieldName string, value *int32)
	WriteNullableInt64(fieldName string, value *int64)
	WriteNullableFloat32(fieldName string, value *float32)
	WriteNullableFloat64(fieldName string, value *float64)

	WriteArrayOfNullableBoolean(fieldName string, value []*bool)
	WriteArrayOfNullableInt8(fieldName string, value []*int8)
	WriteArrayOfNullableInt16(fieldName string, value []*int16)
	WriteArrayOfNullableInt32(fieldName string, value []*int32)
	WriteArrayOfNullableInt64(fieldName string, value []*int64)
	WriteArrayOfNullableFloat32(fieldName string, value []*float32)
	WriteArrayOfNullableFloat64(fieldName string, value []*float64)

	// Err returns the first error of any write.
	Err() error
}

// CompactReader is handed to Serializer.Read. Fields may be read in any
// order. Errors are sticky like for CompactWriter: after the first failure
// all reads return zero values and Err returns the failure.
//
// Primitive accessors also accept the nullable kind of the field and fail
// with ErrCUnexpectedNull on null. Nullable accessors accept the primitive
// kind.
type CompactReader interface {
	// GetFieldKind returns the kind of the field or KindNotAvailable.
	GetFieldKind(fieldName string) FieldKind

	ReadBoolean(fieldName string) bool
	ReadInt8(fieldName string) int8
	ReadInt16(fieldName string) int16
	ReadInt32(fieldName string) int32
	ReadInt64(fieldName string) int64
	ReadFloat32(fieldName string) float32
	ReadFloat64(fieldName string) float64

	ReadString(fieldName string) *string
	ReadDecimal(fieldName string) *Decimal
	ReadTime(fieldName string) *LocalTime
	ReadDate(fieldName string) *LocalDate
	ReadTimestamp(fieldName string) *LocalDateTime
	ReadTimestampWithTimezone(fieldName string) *OffsetDateTime
	ReadCompact(fieldName string) any

	ReadArrayOfBoolean(fieldName string) []bool
	ReadArrayOfInt8(fieldName string) []int8
	ReadArrayOfInt16(fieldName string) []int16
	ReadArrayOfInt32(fieldName string) []int32
	ReadArrayOfInt64(fieldName string) []int64
	ReadArrayOfFloat32(fieldName string) []float32
	ReadArrayOfFloat64(fieldName string) []float64

	ReadArrayOfString(fieldName string) []*string
	ReadArrayOfDecimal(fieldName string) []*Decimal
	ReadArrayOfTime(fieldName string) []*LocalTime
	ReadArrayOfDate(fieldName string) []*LocalDate
	ReadArrayOfTimestamp(fieldName string) []*LocalDateTime
	ReadArrayOfTimestampWithTimezone(fieldName string) []*OffsetDateTime
	ReadArrayOfCompact(fieldName string) []any

	ReadNullableBoolean(fieldName string) *bool
	ReadNullableInt8(fieldName string) *int8
	ReadNullableInt16(fieldName string) *int16
	ReadNullableInt32(fieldName string) *int32
	ReadNullableInt64(fieldName string) *int64
	ReadNullableFloat32(fieldName string) *float32
	ReadNullableFloat64(fieldName string) *float64

	ReadArrayOfNullableBoolean(fieldName string) []*bool
	ReadArrayOfNullableInt8(fieldName string) []*int8
	ReadArrayOfNullableInt16(fieldName string) []*int16
	ReadArrayOfNullableInt32(fieldName string) []*int32
	ReadArrayOfNullableInt64(fieldName string) []*int64
	ReadArrayOfNullableFloat32(fieldName string) []*float32
	ReadArrayOfNullableFloat64(fieldName string) []*float64

	// Err returns the first error of any read.
	Err() error
}

// --------------------------------------------------------------------------
// Application serializers
// --------------------------------------------------------------------------

// Serializer converts values of type T from and to compact records.
// TypeName is the cross-process identity of the type; it is hashed into the
// schema id and used to pick the serializer when reading.
type Serializer[T any] interface {
	TypeName() string
	Read(r CompactReader) (T, error)
	Write(w CompactWriter, value T) error
}

// --------------------------------------------------------------------------
// Schema service (implemented by lib/schemamgr)
// --------------------------------------------------------------------------

// SchemaService resolves and distributes schemas.
type SchemaService interface {
	// Get returns the schema with the given id, fetching it from the cluster
	// if it is not known locally. Unknown ids yield ErrSchemaNotFound.
	Get(ctx context.Context, id int64) (*Schema, error)
	// GetLocal returns the schema only if it is known locally. A locally
	// known schema has either been replicated by Put or learned from the
	// cluster, so it is safe to write records with it.
	GetLocal(id int64) (*Schema, bool)
	// Put replicates the schema to the cluster and caches it once all
	// members acknowledged it.
	Put(ctx context.Context, schema *Schema) error
	// PutLocal caches the schema without sending it.
	PutLocal(schema *Schema) error
}
