package compact

import (
	"errors"
	"fmt"
)

// --------------------------------------------------------------------------
// Custom Error Type
// --------------------------------------------------------------------------

// Error is the error type returned by every operation of this package.
// It wraps an error code (of type ErrCode) and a message.
type Error struct {
	Code ErrCode // The error code
	Msg  string  // The error message
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("CompactError (code %s): %s", e.Code, e.Msg)
}

// Is reports whether target is an *Error with the same code. This allows
// errors.Is(err, compact.ErrUnexpectedNull) regardless of the message.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

// NewError creates a new Error with the given code and message.
func NewError(code ErrCode, msg string) *Error {
	return &Error{
		Code: code,
		Msg:  msg,
	}
}

// newErrorf creates a new Error with a formatted message.
func newErrorf(code ErrCode, format string, args ...any) *Error {
	return NewError(code, fmt.Sprintf(format, args...))
}

// SchemaNotReplicatedError is returned when a record is about to be written
// with a schema that is not yet known to the whole cluster. The caller has to
// replicate Schema (see SchemaService.Put) and retry the write.
type SchemaNotReplicatedError struct {
	Schema *Schema
}

func (e *SchemaNotReplicatedError) Error() string {
	return fmt.Sprintf("CompactError (code %s): schema %d for type %q is not replicated to the cluster yet",
		ErrCSchemaNotReplicated, e.Schema.ID(), e.Schema.TypeName())
}

// Is matches ErrSchemaNotReplicated.
func (e *SchemaNotReplicatedError) Is(target error) bool {
	var t *Error
	return errors.As(target, &t) && t.Code == ErrCSchemaNotReplicated
}

// --------------------------------------------------------------------------
// Error Codes
// --------------------------------------------------------------------------

// ErrCode classifies the errors of this package.
type ErrCode uint8

const (
	ErrCUnknown             ErrCode = iota
	ErrCSchemaNotFound              // schema id unknown locally and on the cluster
	ErrCSchemaNotReplicated         // schema not yet acknowledged by the cluster
	ErrCSchemaCollision             // two different schemas share one id
	ErrCFieldKindMismatch           // accessor kind does not match the schema
	ErrCUnknownField                // no field with the requested name
	ErrCUnexpectedNull              // non-nullable accessor hit a null value
	ErrCHeterogeneousArray          // compact array with more than one type or schema
	ErrCInvalidValue                // value does not match its declared kind
	ErrCSerializerNotFound          // no serializer registered for a type
	ErrCMalformed                   // truncated or otherwise invalid input
)

// String returns the string representation of an ErrCode.
func (c ErrCode) String() string {
	switch c {
	case ErrCSchemaNotFound:
		return "SchemaNotFound"
	case ErrCSchemaNotReplicated:
		return "SchemaNotReplicated"
	case ErrCSchemaCollision:
		return "SchemaCollision"
	case ErrCFieldKindMismatch:
		return "FieldKindMismatch"
	case ErrCUnknownField:
		return "UnknownField"
	case ErrCUnexpectedNull:
		return "UnexpectedNull"
	case ErrCHeterogeneousArray:
		return "HeterogeneousArray"
	case ErrCInvalidValue:
		return "InvalidValue"
	case ErrCSerializerNotFound:
		return "SerializerNotFound"
	case ErrCMalformed:
		return "Malformed"
	default:
		return "Unknown"
	}
}

// Sentinels for errors.Is checks.
var (
	ErrSchemaNotFound      = &Error{Code: ErrCSchemaNotFound}
	ErrSchemaNotReplicated = &Error{Code: ErrCSchemaNotReplicated}
	ErrSchemaCollision     = &Error{Code: ErrCSchemaCollision}
	ErrFieldKindMismatch   = &Error{Code: ErrCFieldKindMismatch}
	ErrUnknownField        = &Error{Code: ErrCUnknownField}
	ErrUnexpectedNull      = &Error{Code: ErrCUnexpectedNull}
	ErrHeterogeneousArray  = &Error{Code: ErrCHeterogeneousArray}
	ErrInvalidValue        = &Error{Code: ErrCInvalidValue}
	ErrSerializerNotFound  = &Error{Code: ErrCSerializerNotFound}
	ErrMalformed           = &Error{Code: ErrCMalformed}
)
