// Package pstore provides a persistent implementation of schemastore.ISchemaStore
// backed by pebble.
//
// Every schema is stored under a 9 byte key: the prefix 's' followed by the
// big-endian schema id with its sign bit flipped, so iteration returns schemas
// ordered by id. The value is the schema message as produced by
// compact.EncodeSchemas. Writes are synced to disk before Put returns, a
// member only acknowledges a schema it will still know after a crash.
package pstore
