package compact

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

// testService is an in-process SchemaService. Put acknowledges immediately
// unless refusePut is set; puts counts calls per schema id.
type testService struct {
	mu        sync.Mutex
	schemas   map[int64]*Schema
	puts      map[int64]int
	refusePut bool
	// remote holds schemas only "the cluster" knows, returned by Get.
	remote map[int64]*Schema
}

func newTestService() *testService {
	return &testService{
		schemas: make(map[int64]*Schema),
		puts:    make(map[int64]int),
		remote:  make(map[int64]*Schema),
	}
}

func (s *testService) Get(_ context.Context, id int64) (*Schema, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sc, ok := s.schemas[id]; ok {
		return sc, nil
	}
	if sc, ok := s.remote[id]; ok {
		s.schemas[id] = sc
		return sc, nil
	}
	return nil, ErrSchemaNotFound
}

func (s *testService) GetLocal(id int64) (*Schema, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sc, ok := s.schemas[id]
	return sc, ok
}

func (s *testService) Put(_ context.Context, sc *Schema) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.puts[sc.ID()]++
	if s.refusePut {
		// acknowledged but never cached, like a cluster that never confirms
		return nil
	}
	s.schemas[sc.ID()] = sc
	return nil
}

func (s *testService) PutLocal(sc *Schema) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.schemas[sc.ID()] = sc
	return nil
}

func mustSchema(t *testing.T, typeName string, fields ...FieldDescriptor) *Schema {
	t.Helper()
	s, err := NewSchema(typeName, fields)
	require.NoError(t, err)
	return s
}

func ptr[T any](v T) *T { return &v }

// encodeRecord writes a generic record body (without schema id) directly
// through a Writer.
func encodeRecord(t *testing.T, s *StreamSerializer, rec *GenericRecord) []byte {
	t.Helper()
	out := NewObjectDataOutput(0)
	w := newWriter(s, out, rec.schema)
	for _, fd := range rec.schema.fields {
		fieldOps(fd.Kind).write(w, fd.Name, rec.values[fd.Name])
	}
	require.NoError(t, w.Err())
	w.end()
	return out.ToBytes()
}

func decodeRecord(t *testing.T, s *StreamSerializer, schema *Schema, b []byte) *GenericRecord {
	t.Helper()
	in := NewObjectDataInput(b)
	r := newReader(context.Background(), s, in, schema)
	rec, err := r.toGenericRecord()
	require.NoError(t, err)
	require.Equal(t, len(b), in.Position(), "reader must stop behind the record")
	return rec
}
