package compact

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sync/atomic"

	"github.com/puzpuzpuz/xsync/v3"
)

// registration is the type-erased form of a Serializer[T].
type registration struct {
	typeName string
	tag      reflect.Type
	write    func(w CompactWriter, v any) error
	read     func(r CompactReader) (any, error)
	schema   atomic.Pointer[Schema] // inferred on first write
}

// StreamSerializer converts objects from and to compact records. Objects of
// registered types are written with their serializer; *GenericRecord values
// are written from their own schema. On read, the type name of the record's
// schema selects a registered serializer; records of unregistered types are
// returned as *GenericRecord.
//
// Schemas are resolved through a SchemaService. A record is only written if
// its schema (and the schemas of all nested records) is known to the service
// locally, i.e. replicated to the cluster.
type StreamSerializer struct {
	service SchemaService
	byTag   *xsync.MapOf[reflect.Type, *registration]
	byName  *xsync.MapOf[string, *registration]
}

// NewStreamSerializer creates a serializer resolving schemas with service.
func NewStreamSerializer(service SchemaService) *StreamSerializer {
	return &StreamSerializer{
		service: service,
		byTag:   xsync.NewMapOf[reflect.Type, *registration](),
		byName:  xsync.NewMapOf[string, *registration](),
	}
}

// Register adds a serializer for values of type T. T is the local dispatch
// tag for outgoing objects; the serializer's type name identifies the type
// across processes. Registering a tag or type name twice fails.
func Register[T any](s *StreamSerializer, ser Serializer[T]) error {
	reg := &registration{
		typeName: ser.TypeName(),
		tag:      reflect.TypeFor[T](),
		write: func(w CompactWriter, v any) error {
			t, ok := v.(T)
			if !ok {
				return newErrorf(ErrCInvalidValue, "value of type %T passed to serializer of %q", v, ser.TypeName())
			}
			return ser.Write(w, t)
		},
		read: func(r CompactReader) (any, error) { return ser.Read(r) },
	}
	if reg.typeName == "" {
		return NewError(ErrCInvalidValue, "serializer type name must not be empty")
	}
	if _, loaded := s.byName.LoadOrStore(reg.typeName, reg); loaded {
		return newErrorf(ErrCInvalidValue, "a serializer for type name %q is already registered", reg.typeName)
	}
	if _, loaded := s.byTag.LoadOrStore(reg.tag, reg); loaded {
		s.byName.Delete(reg.typeName)
		return newErrorf(ErrCInvalidValue, "a serializer for %s is already registered", reg.tag)
	}
	return nil
}

// Service returns the schema service of s.
func (s *StreamSerializer) Service() SchemaService { return s.service }

// GetOrFetchSchema resolves a schema id through the schema service.
func (s *StreamSerializer) GetOrFetchSchema(ctx context.Context, id int64) (*Schema, error) {
	schema, err := s.service.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if schema == nil {
		return nil, newErrorf(ErrCSchemaNotFound, "the schema %d cannot be found in the cluster", id)
	}
	return schema, nil
}

// SchemaOf returns the schema v is written with. For registered types
// without cached schema, the schema is inferred by running the serializer
// against a SchemaWriter.
func (s *StreamSerializer) SchemaOf(v any) (*Schema, error) {
	schema, _, err := s.resolve(v)
	return schema, err
}

// resolve returns the schema of v and the function writing its fields.
func (s *StreamSerializer) resolve(v any) (*Schema, func(CompactWriter) error, error) {
	if g, ok := v.(*GenericRecord); ok {
		return g.schema, func(w CompactWriter) error {
			for _, fd := range g.schema.fields {
				fieldOps(fd.Kind).write(w, fd.Name, g.values[fd.Name])
			}
			return nil
		}, nil
	}
	reg, ok := s.byTag.Load(reflect.TypeOf(v))
	if !ok {
		return nil, nil, newErrorf(ErrCSerializerNotFound, "no compact serializer registered for %T", v)
	}
	write := func(w CompactWriter) error { return reg.write(w, v) }
	if schema := reg.schema.Load(); schema != nil {
		return schema, write, nil
	}
	sw := NewSchemaWriter(reg.typeName)
	if err := write(sw); err != nil {
		return nil, nil, err
	}
	schema, err := sw.Build()
	if err != nil {
		return nil, nil, err
	}
	if !reg.schema.CompareAndSwap(nil, schema) {
		schema = reg.schema.Load()
	}
	return schema, write, nil
}

// writeObject writes the schema id of v followed by its record body.
func (s *StreamSerializer) writeObject(out *ObjectDataOutput, v any) error {
	schema, write, err := s.resolve(v)
	if err != nil {
		return err
	}
	if _, ok := s.service.GetLocal(schema.id); !ok {
		return &SchemaNotReplicatedError{Schema: schema}
	}
	out.WriteInt64(schema.id)
	w := newWriter(s, out, schema)
	if err := write(w); err != nil {
		return err
	}
	if err := w.Err(); err != nil {
		return err
	}
	w.end()
	return nil
}

// readObject reads a schema id and the record body following it.
func (s *StreamSerializer) readObject(ctx context.Context, in *ObjectDataInput) (any, error) {
	id := in.ReadInt64()
	if err := in.Err(); err != nil {
		return nil, err
	}
	schema, err := s.GetOrFetchSchema(ctx, id)
	if err != nil {
		return nil, err
	}
	r := newReader(ctx, s, in, schema)
	if err := r.Err(); err != nil {
		return nil, err
	}
	reg, ok := s.byName.Load(schema.typeName)
	if !ok {
		return r.toGenericRecord()
	}
	v, err := reg.read(r)
	if err != nil {
		return nil, err
	}
	if err := r.Err(); err != nil {
		return nil, err
	}
	return v, nil
}

// --------------------------------------------------------------------------
// Encoding / decoding
// --------------------------------------------------------------------------

// Write appends the compact encoding of v (schema id + body) to out. If a
// schema involved is not replicated yet, a *SchemaNotReplicatedError is
// returned and out is left unchanged.
func (s *StreamSerializer) Write(ctx context.Context, out *ObjectDataOutput, v any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if isNilCompact(v) {
		return NewError(ErrCInvalidValue, "cannot write a nil compact value")
	}
	scratch := NewObjectDataOutput(defaultOutputSize)
	if err := s.writeObject(scratch, v); err != nil {
		return err
	}
	out.WriteRaw(scratch.buf[:scratch.pos])
	return nil
}

// Read decodes one compact value from in. Schemas unknown locally are
// fetched through the schema service.
func (s *StreamSerializer) Read(ctx context.Context, in *ObjectDataInput) (any, error) {
	return s.readObject(ctx, in)
}

// EnsureReplicated replicates every schema needed to write v. It repeats
// the write until no schema is missing anymore.
func (s *StreamSerializer) EnsureReplicated(ctx context.Context, v any) error {
	_, err := s.encode(ctx, v)
	return err
}

// ToBytes encodes v after making sure all its schemas are replicated.
func (s *StreamSerializer) ToBytes(ctx context.Context, v any) ([]byte, error) {
	return s.encode(ctx, v)
}

// FromBytes decodes a value produced by ToBytes.
func (s *StreamSerializer) FromBytes(ctx context.Context, b []byte) (any, error) {
	in := NewObjectDataInput(b)
	v, err := s.readObject(ctx, in)
	if err != nil {
		return nil, err
	}
	if in.Available() != 0 {
		return nil, newErrorf(ErrCMalformed, "%d trailing bytes after compact value", in.Available())
	}
	return v, nil
}

func (s *StreamSerializer) encode(ctx context.Context, v any) ([]byte, error) {
	if isNilCompact(v) {
		return nil, NewError(ErrCInvalidValue, "cannot write a nil compact value")
	}
	replicated := make(map[int64]struct{})
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		out := NewObjectDataOutput(defaultOutputSize)
		err := s.writeObject(out, v)
		if err == nil {
			return out.ToBytes(), nil
		}
		var notReplicated *SchemaNotReplicatedError
		if !errors.As(err, &notReplicated) {
			return nil, err
		}
		id := notReplicated.Schema.ID()
		if _, seen := replicated[id]; seen {
			return nil, fmt.Errorf("schema %d still unknown locally after replication: %w", id, err)
		}
		if err := s.service.Put(ctx, notReplicated.Schema); err != nil {
			return nil, err
		}
		replicated[id] = struct{}{}
	}
}

// ----- Typed helpers -----

// Encode is ToBytes for a statically typed value.
func Encode[T any](ctx context.Context, s *StreamSerializer, v T) ([]byte, error) {
	return s.ToBytes(ctx, v)
}

// Decode is FromBytes asserting the result type.
func Decode[T any](ctx context.Context, s *StreamSerializer, b []byte) (T, error) {
	var zero T
	v, err := s.FromBytes(ctx, b)
	if err != nil {
		return zero, err
	}
	t, ok := v.(T)
	if !ok {
		return zero, newErrorf(ErrCInvalidValue, "decoded %T, want %s", v, reflect.TypeFor[T]())
	}
	return t, nil
}
