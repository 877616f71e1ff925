package compact

// WriteSchema writes the schema message: schema id, type name, field count,
// then name and kind id of every field in schema order.
func WriteSchema(out *ObjectDataOutput, s *Schema) {
	out.WriteInt64(s.id)
	out.WriteString(s.typeName)
	out.WriteInt32(int32(len(s.fields)))
	for _, fd := range s.fields {
		out.WriteString(fd.Name)
		out.WriteInt32(int32(fd.Kind))
	}
}

// ReadSchema reads a schema message written by WriteSchema. The layout and id
// are recomputed locally; a schema whose transmitted id differs from the
// recomputed one is rejected.
func ReadSchema(in *ObjectDataInput) (*Schema, error) {
	id := in.ReadInt64()
	typeName := in.ReadString()
	count := in.ReadInt32()
	if err := in.Err(); err != nil {
		return nil, err
	}
	if count < 0 || int(count) > in.Available() {
		return nil, newErrorf(ErrCMalformed, "invalid field count %d in schema message", count)
	}
	fields := make([]FieldDescriptor, 0, count)
	for i := int32(0); i < count; i++ {
		name := in.ReadString()
		kind := FieldKind(in.ReadInt32())
		fields = append(fields, NewField(name, kind))
	}
	if err := in.Err(); err != nil {
		return nil, err
	}
	s, err := NewSchema(typeName, fields)
	if err != nil {
		return nil, err
	}
	if s.id != id {
		return nil, newErrorf(ErrCMalformed, "schema id mismatch for type %q: received %d, computed %d", typeName, id, s.id)
	}
	return s, nil
}

// EncodeSchemas encodes a list of schemas as an int32 count followed by the
// schema messages.
func EncodeSchemas(schemas ...*Schema) []byte {
	out := NewObjectDataOutput(64 * (len(schemas) + 1))
	out.WriteInt32(int32(len(schemas)))
	for _, s := range schemas {
		WriteSchema(out, s)
	}
	return out.ToBytes()
}

// DecodeSchemas decodes the output of EncodeSchemas.
func DecodeSchemas(b []byte) ([]*Schema, error) {
	in := NewObjectDataInput(b)
	count := in.ReadInt32()
	if err := in.Err(); err != nil {
		return nil, err
	}
	if count < 0 || int(count) > in.Available() {
		return nil, newErrorf(ErrCMalformed, "invalid schema count %d", count)
	}
	schemas := make([]*Schema, 0, count)
	for i := int32(0); i < count; i++ {
		s, err := ReadSchema(in)
		if err != nil {
			return nil, err
		}
		schemas = append(schemas, s)
	}
	return schemas, nil
}
