package testing

import (
	"fmt"
	"sync"
	"testing"

	"github.com/ValentinKolb/dGrid/lib/compact"
	"github.com/ValentinKolb/dGrid/lib/schemastore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunSchemaStoreTests runs the test suite every schema store must pass.
// The factory is called once per sub test and must return an empty store.
func RunSchemaStoreTests(t *testing.T, name string, factory schemastore.StoreFactory) {
	t.Run(name, func(t *testing.T) {
		t.Run("Put&Get", func(t *testing.T) {
			testPutGet(t, newStore(t, factory))
		})

		t.Run("PutTwice", func(t *testing.T) {
			testPutTwice(t, newStore(t, factory))
		})

		t.Run("DistinctSchemas", func(t *testing.T) {
			testDistinctSchemas(t, newStore(t, factory))
		})

		t.Run("ListOrdered", func(t *testing.T) {
			testListOrdered(t, newStore(t, factory))
		})

		t.Run("ConcurrentPut", func(t *testing.T) {
			testConcurrentPut(t, newStore(t, factory))
		})
	})
}

// --------------------------------------------------------------------------
// Helper functions
// --------------------------------------------------------------------------

func newStore(t *testing.T, factory schemastore.StoreFactory) schemastore.ISchemaStore {
	t.Helper()
	store, err := factory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

// NewTestSchema returns a schema for typeName with n int32 fields
func NewTestSchema(t testing.TB, typeName string, n int) *compact.Schema {
	t.Helper()
	fields := make([]compact.FieldDescriptor, n)
	for i := range fields {
		fields[i] = compact.NewField(fmt.Sprintf("f%d", i), compact.KindInt32)
	}
	schema, err := compact.NewSchema(typeName, fields)
	require.NoError(t, err)
	return schema
}

// --------------------------------------------------------------------------
// Test functions
// --------------------------------------------------------------------------

func testPutGet(t *testing.T, store schemastore.ISchemaStore) {
	schema := NewTestSchema(t, "point", 2)

	_, ok, err := store.Get(schema.ID())
	require.NoError(t, err)
	assert.False(t, ok)

	stored, err := store.Put(schema)
	require.NoError(t, err)
	assert.True(t, stored)

	got, ok, err := store.Get(schema.ID())
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, schema.Equal(got))
	assert.Equal(t, 1, store.Len())
}

func testPutTwice(t *testing.T, store schemastore.ISchemaStore) {
	schema := NewTestSchema(t, "point", 2)

	_, err := store.Put(schema)
	require.NoError(t, err)

	stored, err := store.Put(NewTestSchema(t, "point", 2))
	require.NoError(t, err)
	assert.False(t, stored, "equal schema must not be stored again")
	assert.Equal(t, 1, store.Len())
}

func testDistinctSchemas(t *testing.T, store schemastore.ISchemaStore) {
	a := NewTestSchema(t, "a", 1)
	b := NewTestSchema(t, "b", 1)
	require.NotEqual(t, a.ID(), b.ID())

	_, err := store.Put(a)
	require.NoError(t, err)
	_, err = store.Put(b)
	require.NoError(t, err)
	assert.Equal(t, 2, store.Len())

	got, ok, err := store.Get(b.ID())
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "b", got.TypeName())
}

func testListOrdered(t *testing.T, store schemastore.ISchemaStore) {
	for i := 0; i < 20; i++ {
		_, err := store.Put(NewTestSchema(t, fmt.Sprintf("type-%d", i), i%4))
		require.NoError(t, err)
	}

	schemas, err := store.List()
	require.NoError(t, err)
	require.Len(t, schemas, 20)
	for i := 1; i < len(schemas); i++ {
		assert.Less(t, schemas[i-1].ID(), schemas[i].ID())
	}
}

func testConcurrentPut(t *testing.T, store schemastore.ISchemaStore) {
	const workers = 8
	const types = 10

	var wg sync.WaitGroup
	storedCount := make([]int, types)
	var mu sync.Mutex

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < types; i++ {
				stored, err := store.Put(NewTestSchema(t, fmt.Sprintf("type-%d", i), 3))
				assert.NoError(t, err)
				if stored {
					mu.Lock()
					storedCount[i]++
					mu.Unlock()
				}
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, types, store.Len())
	for i, n := range storedCount {
		assert.Equal(t, 1, n, "type-%d stored %d times", i, n)
	}
}
