package client

import (
	"context"
	"fmt"
	"github.com/ValentinKolb/dGrid/lib/compact"
	"github.com/ValentinKolb/dGrid/rpc/common"
	"github.com/ValentinKolb/dGrid/rpc/serializer"
	"github.com/ValentinKolb/dGrid/rpc/transport"
	"github.com/google/uuid"
	"sync"
)

// RPCPeer is the connection of a member to one of its peers. It connects
// lazily on first use and again after a failed connect, so members can be
// started in any order.
type RPCPeer struct {
	rpcClientAdapter
	mu        sync.Mutex
	connected bool
}

// NewRPCPeer creates a new peer client. No connection is made until the first request.
func NewRPCPeer(
	shardId uint64,
	config common.ClientConfig,
	transport transport.IRPCClientTransport,
	serializer serializer.IRPCSerializer,
) *RPCPeer {
	return &RPCPeer{
		rpcClientAdapter: rpcClientAdapter{
			shardId:    shardId,
			config:     config,
			transport:  transport,
			serializer: serializer,
		},
	}
}

// Replicate stores the schemas on the peer and returns the id of the peer.
// origin is the name of the sending member (used for logging on the peer).
func (p *RPCPeer) Replicate(ctx context.Context, schemas []*compact.Schema, origin string) (uuid.UUID, error) {
	if err := p.connect(); err != nil {
		return uuid.Nil, err
	}

	req := common.NewSchemaReplicateRequest(compact.EncodeSchemas(schemas...), origin)
	resp, err := invokeRPCRequest(ctx, p.shardId, req, p.transport, p.serializer)
	if err != nil {
		return uuid.Nil, err
	}
	if len(resp.Members) != 1 {
		return uuid.Nil, fmt.Errorf("peer answered replication with %d member ids", len(resp.Members))
	}
	return resp.Members[0], nil
}

// Close closes the connection to the peer
func (p *RPCPeer) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.connected {
		return nil
	}
	p.connected = false
	return p.transport.Close()
}

func (p *RPCPeer) connect() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.connected {
		return nil
	}
	if err := p.transport.Connect(p.config); err != nil {
		return err
	}
	p.connected = true
	return nil
}
