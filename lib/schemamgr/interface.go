package schemamgr

import (
	"context"
	"github.com/ValentinKolb/dGrid/lib/compact"
	"github.com/google/uuid"
)

// Invoker sends schema requests to the cluster. It is implemented by the RPC
// client (see rpc/client) and replaced by stubs in tests.
type Invoker interface {
	// SendSchema sends the schema to the cluster and returns the ids of the
	// members that are known to hold it afterwards.
	SendSchema(ctx context.Context, schema *compact.Schema) ([]uuid.UUID, error)

	// FetchSchema looks the schema up on the cluster. It returns nil without
	// an error if no member knows the id.
	FetchSchema(ctx context.Context, schemaId int64) (*compact.Schema, error)

	// SendAllSchemas sends all given schemas in one request.
	SendAllSchemas(ctx context.Context, schemas []*compact.Schema) error

	// Members returns the ids of all current cluster members.
	Members(ctx context.Context) ([]uuid.UUID, error)
}
