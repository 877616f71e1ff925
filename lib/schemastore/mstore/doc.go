// Package mstore provides an in-memory implementation of schemastore.ISchemaStore
// on top of a lock-free concurrent map (xsync.MapOf). Inserts use LoadOrStore,
// so two members racing to store the same id never leave different schemas behind.
package mstore
