// Package schemastore defines the storage used by cluster members to keep
// the schemas sent by clients.
//
// Two implementations exist:
//
//   - mstore: in-memory store backed by a concurrent map, used when no data
//     directory is configured.
//
//   - pstore: persistent store backed by pebble. Schemas survive restarts of
//     the member, so records written before a restart stay readable.
//
// A schema is immutable and its id is derived from its content, so stores
// never overwrite or delete. Storing a second, different schema under an
// existing id is rejected with compact.ErrSchemaCollision.
//
// The testing subpackage contains a test suite shared by all implementations.
package schemastore
