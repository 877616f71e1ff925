package mstore

import (
	"cmp"
	"github.com/ValentinKolb/dGrid/lib/compact"
	"github.com/ValentinKolb/dGrid/lib/schemastore"
	"github.com/puzpuzpuz/xsync/v3"
	"slices"
)

// NewMemoryStore creates a new in-memory schema store
func NewMemoryStore() schemastore.ISchemaStore {
	return &memoryStore{
		schemas: xsync.NewMapOf[int64, *compact.Schema](),
	}
}

type memoryStore struct {
	schemas *xsync.MapOf[int64, *compact.Schema]
}

// --------------------------------------------------------------------------
// Interface Methods (docu see schemastore.ISchemaStore)
// --------------------------------------------------------------------------

func (m *memoryStore) Put(schema *compact.Schema) (bool, error) {
	actual, loaded := m.schemas.LoadOrStore(schema.ID(), schema)
	if !loaded {
		return true, nil
	}
	if !actual.Equal(schema) {
		return false, schemastore.CollisionError(actual, schema)
	}
	return false, nil
}

func (m *memoryStore) Get(id int64) (*compact.Schema, bool, error) {
	schema, ok := m.schemas.Load(id)
	return schema, ok, nil
}

func (m *memoryStore) List() ([]*compact.Schema, error) {
	schemas := make([]*compact.Schema, 0, m.schemas.Size())
	m.schemas.Range(func(_ int64, schema *compact.Schema) bool {
		schemas = append(schemas, schema)
		return true
	})
	slices.SortFunc(schemas, func(a, b *compact.Schema) int {
		return cmp.Compare(a.ID(), b.ID())
	})
	return schemas, nil
}

func (m *memoryStore) Len() int {
	return m.schemas.Size()
}

func (m *memoryStore) Close() error {
	return nil
}
