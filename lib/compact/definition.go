package compact

// SchemaDefinition is the plain, serializable form of a schema as used in
// schema files and the admin api. ID is informational: it is ignored by
// Schema and filled in by Definition.
type SchemaDefinition struct {
	TypeName string            `json:"typeName" yaml:"typeName"`
	ID       int64             `json:"id,omitempty" yaml:"id,omitempty"`
	Fields   []FieldDefinition `json:"fields" yaml:"fields"`
}

// FieldDefinition names a field and its kind (e.g. "INT32", "ARRAY_OF_STRING").
type FieldDefinition struct {
	Name string `json:"name" yaml:"name"`
	Kind string `json:"kind" yaml:"kind"`
}

// Definition returns the definition of the schema with fields in schema order.
func (s *Schema) Definition() SchemaDefinition {
	d := SchemaDefinition{
		TypeName: s.typeName,
		ID:       s.id,
		Fields:   make([]FieldDefinition, len(s.fields)),
	}
	for i, fd := range s.fields {
		d.Fields[i] = FieldDefinition{Name: fd.Name, Kind: fd.Kind.String()}
	}
	return d
}

// Schema builds the schema described by d. A non-zero ID must match the
// computed id.
func (d SchemaDefinition) Schema() (*Schema, error) {
	fields := make([]FieldDescriptor, len(d.Fields))
	for i, f := range d.Fields {
		kind, err := ParseFieldKind(f.Kind)
		if err != nil {
			return nil, newErrorf(ErrCInvalidValue, "field %q of type %q: %s", f.Name, d.TypeName, err.(*Error).Msg)
		}
		fields[i] = NewField(f.Name, kind)
	}
	s, err := NewSchema(d.TypeName, fields)
	if err != nil {
		return nil, err
	}
	if d.ID != 0 && d.ID != s.id {
		return nil, newErrorf(ErrCInvalidValue, "schema id %d of type %q does not match its fields (computed %d)", d.ID, d.TypeName, s.id)
	}
	return s, nil
}
