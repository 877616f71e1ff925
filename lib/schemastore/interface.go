package schemastore

import (
	"fmt"
	"github.com/ValentinKolb/dGrid/lib/compact"
)

// --------------------------------------------------------------------------
// Interface Definition
// --------------------------------------------------------------------------

// StoreFactory creates a new schema store
type StoreFactory func() (ISchemaStore, error)

// ISchemaStore holds the schemas a member knows. Schemas are immutable and
// never removed; an id is bound to the first schema stored under it.
type ISchemaStore interface {
	// Put stores the schema. It returns false if an equal schema was already
	// stored and a compact.ErrSchemaCollision error if a different schema
	// exists under the same id.
	Put(schema *compact.Schema) (stored bool, err error)
	// Get returns the schema with the given id. The boolean return value
	// indicates whether the schema was found.
	Get(id int64) (schema *compact.Schema, loaded bool, err error)
	// List returns all stored schemas ordered by id.
	List() ([]*compact.Schema, error)
	// Len returns the number of stored schemas.
	Len() int
	// Close releases all resources held by the store.
	Close() error
}

// CollisionError creates the error returned when a different schema is
// stored under the id of schema.
func CollisionError(existing, schema *compact.Schema) error {
	return compact.NewError(compact.ErrCSchemaCollision,
		fmt.Sprintf("schema with id %d already exists. existing schema: %s new schema: %s", schema.ID(), existing, schema))
}
