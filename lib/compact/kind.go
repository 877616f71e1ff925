package compact

import "fmt"

// FieldKind identifies the kind of a compact field. The numeric values are
// part of the wire format (they are hashed into the schema id and written in
// schema messages) and must never change.
type FieldKind int32

const (
	KindNotAvailable FieldKind = 0

	KindBoolean                        FieldKind = 1
	KindArrayOfBoolean                 FieldKind = 2
	KindInt8                           FieldKind = 3
	KindArrayOfInt8                    FieldKind = 4
	kindChar                           FieldKind = 5 // reserved
	kindArrayOfChar                    FieldKind = 6 // reserved
	KindInt16                          FieldKind = 7
	KindArrayOfInt16                   FieldKind = 8
	KindInt32                          FieldKind = 9
	KindArrayOfInt32                   FieldKind = 10
	KindInt64                          FieldKind = 11
	KindArrayOfInt64                   FieldKind = 12
	KindFloat32                        FieldKind = 13
	KindArrayOfFloat32                 FieldKind = 14
	KindFloat64                        FieldKind = 15
	KindArrayOfFloat64                 FieldKind = 16
	KindString                         FieldKind = 17
	KindArrayOfString                  FieldKind = 18
	KindDecimal                        FieldKind = 19
	KindArrayOfDecimal                 FieldKind = 20
	KindTime                           FieldKind = 21
	KindArrayOfTime                    FieldKind = 22
	KindDate                           FieldKind = 23
	KindArrayOfDate                    FieldKind = 24
	KindTimestamp                      FieldKind = 25
	KindArrayOfTimestamp               FieldKind = 26
	KindTimestampWithTimezone          FieldKind = 27
	KindArrayOfTimestampWithTimezone   FieldKind = 28
	KindCompact                        FieldKind = 29
	KindArrayOfCompact                 FieldKind = 30
	kindPortable                       FieldKind = 31 // reserved
	kindArrayOfPortable                FieldKind = 32 // reserved
	KindNullableBoolean                FieldKind = 33
	KindArrayOfNullableBoolean         FieldKind = 34
	KindNullableInt8                   FieldKind = 35
	KindArrayOfNullableInt8            FieldKind = 36
	KindNullableInt16                  FieldKind = 37
	KindArrayOfNullableInt16           FieldKind = 38
	KindNullableInt32                  FieldKind = 39
	KindArrayOfNullableInt32           FieldKind = 40
	KindNullableInt64                  FieldKind = 41
	KindArrayOfNullableInt64           FieldKind = 42
	KindNullableFloat32                FieldKind = 43
	KindArrayOfNullableFloat32         FieldKind = 44
	KindNullableFloat64                FieldKind = 45
	KindArrayOfNullableFloat64         FieldKind = 46
)

const kindCount = 47

var kindNames = [kindCount]string{
	KindNotAvailable:                 "NOT_AVAILABLE",
	KindBoolean:                      "BOOLEAN",
	KindArrayOfBoolean:               "ARRAY_OF_BOOLEAN",
	KindInt8:                         "INT8",
	KindArrayOfInt8:                  "ARRAY_OF_INT8",
	kindChar:                         "CHAR",
	kindArrayOfChar:                  "ARRAY_OF_CHAR",
	KindInt16:                        "INT16",
	KindArrayOfInt16:                 "ARRAY_OF_INT16",
	KindInt32:                        "INT32",
	KindArrayOfInt32:                 "ARRAY_OF_INT32",
	KindInt64:                        "INT64",
	KindArrayOfInt64:                 "ARRAY_OF_INT64",
	KindFloat32:                      "FLOAT32",
	KindArrayOfFloat32:               "ARRAY_OF_FLOAT32",
	KindFloat64:                      "FLOAT64",
	KindArrayOfFloat64:               "ARRAY_OF_FLOAT64",
	KindString:                       "STRING",
	KindArrayOfString:                "ARRAY_OF_STRING",
	KindDecimal:                      "DECIMAL",
	KindArrayOfDecimal:               "ARRAY_OF_DECIMAL",
	KindTime:                         "TIME",
	KindArrayOfTime:                  "ARRAY_OF_TIME",
	KindDate:                         "DATE",
	KindArrayOfDate:                  "ARRAY_OF_DATE",
	KindTimestamp:                    "TIMESTAMP",
	KindArrayOfTimestamp:             "ARRAY_OF_TIMESTAMP",
	KindTimestampWithTimezone:        "TIMESTAMP_WITH_TIMEZONE",
	KindArrayOfTimestampWithTimezone: "ARRAY_OF_TIMESTAMP_WITH_TIMEZONE",
	KindCompact:                      "COMPACT",
	KindArrayOfCompact:               "ARRAY_OF_COMPACT",
	kindPortable:                     "PORTABLE",
	kindArrayOfPortable:              "ARRAY_OF_PORTABLE",
	KindNullableBoolean:              "NULLABLE_BOOLEAN",
	KindArrayOfNullableBoolean:       "ARRAY_OF_NULLABLE_BOOLEAN",
	KindNullableInt8:                 "NULLABLE_INT8",
	KindArrayOfNullableInt8:          "ARRAY_OF_NULLABLE_INT8",
	KindNullableInt16:                "NULLABLE_INT16",
	KindArrayOfNullableInt16:         "ARRAY_OF_NULLABLE_INT16",
	KindNullableInt32:                "NULLABLE_INT32",
	KindArrayOfNullableInt32:         "ARRAY_OF_NULLABLE_INT32",
	KindNullableInt64:                "NULLABLE_INT64",
	KindArrayOfNullableInt64:         "ARRAY_OF_NULLABLE_INT64",
	KindNullableFloat32:              "NULLABLE_FLOAT32",
	KindArrayOfNullableFloat32:       "ARRAY_OF_NULLABLE_FLOAT32",
	KindNullableFloat64:              "NULLABLE_FLOAT64",
	KindArrayOfNullableFloat64:       "ARRAY_OF_NULLABLE_FLOAT64",
}

// String returns the wire name of the kind, e.g. "ARRAY_OF_NULLABLE_INT32".
func (k FieldKind) String() string {
	if k < 0 || int(k) >= kindCount {
		return fmt.Sprintf("FieldKind(%d)", int32(k))
	}
	return kindNames[k]
}

// Valid reports whether k can be used in a schema. CHAR and PORTABLE kinds
// are reserved by the protocol but not supported by compact serialization.
func (k FieldKind) Valid() bool {
	if k <= KindNotAvailable || int(k) >= kindCount {
		return false
	}
	switch k {
	case kindChar, kindArrayOfChar, kindPortable, kindArrayOfPortable:
		return false
	}
	return true
}

// ParseFieldKind converts a wire name (case-sensitive, as returned by String)
// into its FieldKind.
func ParseFieldKind(name string) (FieldKind, error) {
	for i, n := range kindNames {
		if n == name && FieldKind(i).Valid() {
			return FieldKind(i), nil
		}
	}
	return KindNotAvailable, newErrorf(ErrCInvalidValue, "unknown field kind %q", name)
}
