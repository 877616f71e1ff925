package client

import (
	"context"
	"fmt"
	"github.com/ValentinKolb/dGrid/lib/compact"
	"github.com/ValentinKolb/dGrid/lib/schemamgr"
	"github.com/ValentinKolb/dGrid/rpc/common"
	"github.com/ValentinKolb/dGrid/rpc/serializer"
	"github.com/ValentinKolb/dGrid/rpc/transport"
	"github.com/google/uuid"
	"time"
)

// NewRPCSchemaInvoker creates a new RPC schema invoker
// The function takes a shard ID, a config, a transport and a serializer as parameters
// It connects the transport and returns a schemamgr.Invoker
func NewRPCSchemaInvoker(
	shardId uint64,
	config common.ClientConfig,
	transport transport.IRPCClientTransport,
	serializer serializer.IRPCSerializer,
) (schemamgr.Invoker, error) {

	if err := transport.Connect(config); err != nil {
		return nil, err
	}

	return &rpcSchemaInvoker{
		rpcClientAdapter{
			shardId:    shardId,
			config:     config,
			transport:  transport,
			serializer: serializer,
		},
	}, nil
}

// NewRPCSchemaService connects to the cluster and returns a schema service
// using the schema settings of config. Whenever the transport restores a lost
// connection, all known schemas are sent again since the member on the other
// side may have restarted without them.
func NewRPCSchemaService(
	shardId uint64,
	config common.ClientConfig,
	transport transport.IRPCClientTransport,
	serializer serializer.IRPCSerializer,
) (*schemamgr.Service, error) {
	invoker, err := NewRPCSchemaInvoker(shardId, config, transport, serializer)
	if err != nil {
		return nil, err
	}
	svc := schemamgr.NewService(invoker, SchemaConfig(config))
	transport.OnReconnect(resendSchemas(svc, config))
	return svc, nil
}

// resendSchemas returns the reconnect callback of a schema service
func resendSchemas(svc *schemamgr.Service, config common.ClientConfig) func() {
	timeout := time.Duration(config.TimeoutSecond) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return func() {
		if !svc.HasAnySchemas() {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		if err := svc.SendAllSchemas(ctx); err != nil {
			Logger.Warningf("failed to send schemas after reconnect: %v", err)
		}
	}
}

// SchemaConfig converts the schema settings of a client config
func SchemaConfig(config common.ClientConfig) schemamgr.Config {
	cfg := schemamgr.DefaultConfig()
	if config.Schema.MaxPutRetries > 0 {
		cfg.MaxPutRetries = config.Schema.MaxPutRetries
	}
	if config.Schema.RetryPauseMillis > 0 {
		cfg.RetryPause = time.Duration(config.Schema.RetryPauseMillis) * time.Millisecond
	}
	return cfg
}

type rpcSchemaInvoker struct {
	rpcClientAdapter
}

// --------------------------------------------------------------------------
// Interface Methods (docu see schemamgr.Invoker)
// --------------------------------------------------------------------------

func (i *rpcSchemaInvoker) SendSchema(ctx context.Context, schema *compact.Schema) ([]uuid.UUID, error) {
	req := common.NewSchemaPutRequest(compact.EncodeSchemas(schema))
	resp, err := invokeRPCRequest(ctx, i.shardId, req, i.transport, i.serializer)
	if err != nil {
		return nil, err
	}
	return resp.Members, nil
}

func (i *rpcSchemaInvoker) FetchSchema(ctx context.Context, schemaId int64) (*compact.Schema, error) {
	req := common.NewSchemaFetchRequest(schemaId)
	resp, err := invokeRPCRequest(ctx, i.shardId, req, i.transport, i.serializer)
	if err != nil {
		return nil, err
	}
	if !resp.Ok {
		return nil, nil
	}
	return decodeOne(resp.Payload)
}

func (i *rpcSchemaInvoker) SendAllSchemas(ctx context.Context, schemas []*compact.Schema) error {
	req := common.NewSchemaPutAllRequest(compact.EncodeSchemas(schemas...))
	_, err := invokeRPCRequest(ctx, i.shardId, req, i.transport, i.serializer)
	return err
}

func (i *rpcSchemaInvoker) Members(ctx context.Context) ([]uuid.UUID, error) {
	resp, err := invokeRPCRequest(ctx, i.shardId, common.NewMembersRequest(), i.transport, i.serializer)
	if err != nil {
		return nil, err
	}
	return resp.Members, nil
}

// --------------------------------------------------------------------------
// Helper
// --------------------------------------------------------------------------

// decodeOne decodes a payload that must hold exactly one schema
func decodeOne(payload []byte) (*compact.Schema, error) {
	schemas, err := compact.DecodeSchemas(payload)
	if err != nil {
		return nil, err
	}
	if len(schemas) != 1 {
		return nil, fmt.Errorf("expected one schema in payload, got %d", len(schemas))
	}
	return schemas[0], nil
}
