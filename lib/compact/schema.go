package compact

import (
	"slices"
	"strings"
)

// FieldDescriptor describes one field of a schema. Offset and BitOffset are
// only set for fixed-size fields (BitOffset only for booleans), Index only
// for variable-size fields. Unset layout values are -1.
type FieldDescriptor struct {
	Name      string
	Kind      FieldKind
	Offset    int
	BitOffset int
	Index     int
}

// NewField creates a descriptor without layout information.
func NewField(name string, kind FieldKind) FieldDescriptor {
	return FieldDescriptor{Name: name, Kind: kind, Offset: -1, BitOffset: -1, Index: -1}
}

// Equal reports whether both descriptors have the same name and kind.
func (d FieldDescriptor) Equal(o FieldDescriptor) bool {
	return d.Name == o.Name && d.Kind == o.Kind
}

// Schema describes the layout of compact records of one type. A Schema is
// immutable; its fields are always ordered by name so that the same field
// set yields the same layout and id no matter how it was assembled.
type Schema struct {
	typeName              string
	fields                []*FieldDescriptor
	byName                map[string]*FieldDescriptor
	fixedSizeFieldsLength int
	numberVarSizeFields   int
	id                    int64
}

// NewSchema builds a schema for typeName from the given (name, kind) pairs.
// Layout information in the passed descriptors is ignored and recomputed.
func NewSchema(typeName string, fields []FieldDescriptor) (*Schema, error) {
	s := &Schema{
		typeName: typeName,
		fields:   make([]*FieldDescriptor, 0, len(fields)),
		byName:   make(map[string]*FieldDescriptor, len(fields)),
	}
	for _, f := range fields {
		if !f.Kind.Valid() {
			return nil, newErrorf(ErrCInvalidValue, "field %q of type %q has unsupported kind %s", f.Name, typeName, f.Kind)
		}
		if _, dup := s.byName[f.Name]; dup {
			return nil, newErrorf(ErrCInvalidValue, "field %q is defined more than once for type %q", f.Name, typeName)
		}
		fd := NewField(f.Name, f.Kind)
		s.fields = append(s.fields, &fd)
		s.byName[f.Name] = &fd
	}
	slices.SortFunc(s.fields, func(a, b *FieldDescriptor) int { return strings.Compare(a.Name, b.Name) })
	s.layout()
	s.id = fingerprintSchema(s)
	return s, nil
}

// layout assigns offsets to fixed-size fields and indexes to variable-size
// fields. Fixed-size fields are ordered by descending size, booleans are
// packed as bits behind them, variable-size fields are indexed in name order.
func (s *Schema) layout() {
	var fixed, booleans, variable []*FieldDescriptor
	for _, fd := range s.fields {
		switch {
		case kindSize(fd.Kind) == variableSize:
			variable = append(variable, fd)
		case fd.Kind == KindBoolean:
			booleans = append(booleans, fd)
		default:
			fixed = append(fixed, fd)
		}
	}

	// stable, so equal sizes keep name order
	slices.SortStableFunc(fixed, func(a, b *FieldDescriptor) int {
		return kindSize(b.Kind) - kindSize(a.Kind)
	})

	offset := 0
	for _, fd := range fixed {
		fd.Offset = offset
		offset += kindSize(fd.Kind)
	}

	for i, fd := range booleans {
		fd.Offset = offset + i/8
		fd.BitOffset = i % 8
	}
	offset += (len(booleans) + 7) / 8

	s.fixedSizeFieldsLength = offset
	for i, fd := range variable {
		fd.Index = i
	}
	s.numberVarSizeFields = len(variable)
}

// --------------------------------------------------------------------------
// Accessors
// --------------------------------------------------------------------------

// TypeName returns the cross-process type name of the schema.
func (s *Schema) TypeName() string { return s.typeName }

// ID returns the 64-bit fingerprint identifying the schema.
func (s *Schema) ID() int64 { return s.id }

// FixedSizeFieldsLength returns the size in bytes of the fixed-size region,
// including the bytes used by packed booleans.
func (s *Schema) FixedSizeFieldsLength() int { return s.fixedSizeFieldsLength }

// NumberVarSizeFields returns the number of variable-size fields.
func (s *Schema) NumberVarSizeFields() int { return s.numberVarSizeFields }

// FieldCount returns the number of fields.
func (s *Schema) FieldCount() int { return len(s.fields) }

// Fields returns copies of all field descriptors ordered by name.
func (s *Schema) Fields() []FieldDescriptor {
	out := make([]FieldDescriptor, len(s.fields))
	for i, fd := range s.fields {
		out[i] = *fd
	}
	return out
}

// FieldNames returns all field names in schema order.
func (s *Schema) FieldNames() []string {
	out := make([]string, len(s.fields))
	for i, fd := range s.fields {
		out[i] = fd.Name
	}
	return out
}

// Field returns the descriptor of the named field.
func (s *Schema) Field(name string) (FieldDescriptor, bool) {
	fd, ok := s.byName[name]
	if !ok {
		return FieldDescriptor{}, false
	}
	return *fd, true
}

func (s *Schema) field(name string) *FieldDescriptor {
	return s.byName[name]
}

// Equal reports whether both schemas describe the same type with the same
// fields. Layout is derived from the fields, so it is not compared.
func (s *Schema) Equal(o *Schema) bool {
	if s == o {
		return true
	}
	if s == nil || o == nil {
		return false
	}
	if s.id != o.id || s.typeName != o.typeName ||
		s.numberVarSizeFields != o.numberVarSizeFields ||
		s.fixedSizeFieldsLength != o.fixedSizeFieldsLength ||
		len(s.fields) != len(o.fields) {
		return false
	}
	for name, fd := range s.byName {
		ofd, ok := o.byName[name]
		if !ok || !fd.Equal(*ofd) {
			return false
		}
	}
	return true
}

// String returns a short human readable description.
func (s *Schema) String() string {
	var sb strings.Builder
	sb.WriteString("Schema{typeName=")
	sb.WriteString(s.typeName)
	sb.WriteString(", fields=[")
	for i, fd := range s.fields {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(fd.Name)
		sb.WriteString(":")
		sb.WriteString(fd.Kind.String())
	}
	sb.WriteString("]}")
	return sb.String()
}
