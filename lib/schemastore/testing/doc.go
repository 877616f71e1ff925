// Package testing provides a test suite shared by all schemastore.ISchemaStore
// implementations. Implementations call RunSchemaStoreTests from their own tests.
package testing
