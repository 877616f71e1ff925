package server

import (
	"context"
	"fmt"
	"github.com/ValentinKolb/dGrid/lib/compact"
	"github.com/ValentinKolb/dGrid/lib/schemastore"
	"github.com/ValentinKolb/dGrid/rpc/common"
	"github.com/VictoriaMetrics/metrics"
	"github.com/google/uuid"
	"sync"
	"time"
)

// peerReplicator sends schemas to one peer member (implemented by client.RPCPeer)
type peerReplicator interface {
	Replicate(ctx context.Context, schemas []*compact.Schema, origin string) (uuid.UUID, error)
	Close() error
}

// NewSchemaServerAdapter creates the adapter serving the schema protocol of
// a member. peers maps peer names to their replicators.
func NewSchemaServerAdapter(config common.ServerConfig, peers map[string]peerReplicator) IRPCServerAdapter {
	timeout := time.Duration(config.TimeoutSecond) * time.Second
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &schemaServerAdapterImpl{
		name:    config.MemberName,
		id:      config.MemberID(),
		members: config.MemberIDs(),
		peers:   peers,
		timeout: timeout,
	}
}

type schemaServerAdapterImpl struct {
	name    string
	id      uuid.UUID
	members []uuid.UUID
	peers   map[string]peerReplicator
	timeout time.Duration
}

func (adapter *schemaServerAdapterImpl) Handle(req *common.Message, store schemastore.ISchemaStore) *common.Message {
	if store == nil {
		return common.NewErrorResponse("handler: store is nil")
	}
	requestCounter(req.MsgType).Inc()

	switch req.MsgType {
	case common.MsgTSchemaPut:
		schemas, err := decodeSchemas(req.Payload, true)
		if err != nil {
			return common.NewSchemaPutResponse(nil, err)
		}
		members, err := adapter.storeAndReplicate(store, schemas)
		return common.NewSchemaPutResponse(members, err)

	case common.MsgTSchemaPutAll:
		schemas, err := decodeSchemas(req.Payload, false)
		if err != nil {
			return common.NewSchemaPutAllResponse(err)
		}
		_, err = adapter.storeAndReplicate(store, schemas)
		return common.NewSchemaPutAllResponse(err)

	case common.MsgTSchemaReplicate:
		schemas, err := decodeSchemas(req.Payload, false)
		if err != nil {
			return common.NewSchemaReplicateResponse(adapter.id, err)
		}
		if err := storeAll(store, schemas); err != nil {
			return common.NewSchemaReplicateResponse(adapter.id, err)
		}
		Logger.Debugf("stored %d schemas replicated by %s", len(schemas), string(req.Meta))
		return common.NewSchemaReplicateResponse(adapter.id, nil)

	case common.MsgTSchemaFetch:
		schema, ok, err := store.Get(req.SchemaID)
		if err != nil || !ok {
			return common.NewSchemaFetchResponse(nil, false, err)
		}
		return common.NewSchemaFetchResponse(compact.EncodeSchemas(schema), true, nil)

	case common.MsgTMembers:
		return common.NewMembersResponse(adapter.members, nil)

	default:
		return common.NewErrorResponse(
			fmt.Sprintf("RPC SchemaAdapter - Unsupported message type: %s", req.MsgType),
		)
	}
}

// --------------------------------------------------------------------------
// Helper Methods
// --------------------------------------------------------------------------

// storeAndReplicate stores the schemas locally, then sends them to all peers
// in parallel. It returns the ids of all members that hold the schemas. Peers
// that fail are left out, the client retries until all members are listed.
func (adapter *schemaServerAdapterImpl) storeAndReplicate(store schemastore.ISchemaStore, schemas []*compact.Schema) ([]uuid.UUID, error) {
	if err := storeAll(store, schemas); err != nil {
		return nil, err
	}

	members := []uuid.UUID{adapter.id}
	if len(adapter.peers) == 0 || len(schemas) == 0 {
		return members, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), adapter.timeout)
	defer cancel()

	var mu sync.Mutex
	var wg sync.WaitGroup
	for name, peer := range adapter.peers {
		wg.Add(1)
		go func(name string, peer peerReplicator) {
			defer wg.Done()
			id, err := peer.Replicate(ctx, schemas, adapter.name)
			if err != nil {
				replicationFailures.Inc()
				Logger.Warningf("failed to replicate %d schemas to %s: %v", len(schemas), name, err)
				return
			}
			mu.Lock()
			members = append(members, id)
			mu.Unlock()
		}(name, peer)
	}
	wg.Wait()

	return members, nil
}

// storeAll stores every schema, stopping at the first error
func storeAll(store schemastore.ISchemaStore, schemas []*compact.Schema) error {
	for _, schema := range schemas {
		stored, err := store.Put(schema)
		if err != nil {
			Logger.Errorf("failed to store schema %d (%s): %v", schema.ID(), schema.TypeName(), err)
			return err
		}
		if stored {
			schemasStored.Inc()
			Logger.Infof("stored schema %d (%s)", schema.ID(), schema.TypeName())
		}
	}
	return nil
}

// decodeSchemas decodes a schema payload, single requires exactly one schema
func decodeSchemas(payload []byte, single bool) ([]*compact.Schema, error) {
	schemas, err := compact.DecodeSchemas(payload)
	if err != nil {
		return nil, fmt.Errorf("invalid schema payload: %w", err)
	}
	if single && len(schemas) != 1 {
		return nil, fmt.Errorf("invalid schema payload: expected one schema, got %d", len(schemas))
	}
	return schemas, nil
}

// --------------------------------------------------------------------------
// Metrics
// --------------------------------------------------------------------------

var (
	schemasStored       = metrics.NewCounter(`dgrid_server_schemas_stored_total`)
	replicationFailures = metrics.NewCounter(`dgrid_server_replication_failures_total`)
)

func requestCounter(msgType common.MessageType) *metrics.Counter {
	return metrics.GetOrCreateCounter(fmt.Sprintf(`dgrid_server_requests_total{type=%q}`, msgType.String()))
}
