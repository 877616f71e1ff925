package server

import (
	"errors"
	"fmt"
	"github.com/ValentinKolb/dGrid/lib/schemastore"
	"github.com/ValentinKolb/dGrid/lib/schemastore/mstore"
	"github.com/ValentinKolb/dGrid/lib/schemastore/pstore"
	"github.com/ValentinKolb/dGrid/rpc/client"
	"github.com/ValentinKolb/dGrid/rpc/common"
	"github.com/ValentinKolb/dGrid/rpc/serializer"
	"github.com/ValentinKolb/dGrid/rpc/transport"
	"github.com/lni/dragonboat/v4/logger"
	"github.com/puzpuzpuz/xsync/v3"
	"net/http"
	"os/signal"
	"runtime"
	"syscall"
)

var Logger = logger.GetLogger("server")

// PeerTransportFactory creates the client transport used to reach one peer
type PeerTransportFactory func() transport.IRPCClientTransport

// serverShard is a struct that represents a shard in the RPC server
// It contains the schema store it encapsulates and the adapter
// that handles requests for the store
type serverShard struct {
	Store   schemastore.ISchemaStore
	Adapter IRPCServerAdapter
}

// NewRPCServer creates a new RPC server (a cluster member)
// It takes a config, a server transport, a factory for peer transports and a serializer as parameters
//
// Usage:
//
//	s := server.NewRPCServer(
//		*config,
//		tcp.NewTCPServerTransport(0, 0),
//		tcp.NewTCPClientTransport,
//		serializer.NewBinarySerializer(),
//	)
//
//	if err := s.Serve(); err != nil {
//		panic(err)
//	}
func NewRPCServer(
	config common.ServerConfig,
	transport transport.IRPCServerTransport,
	peerTransport PeerTransportFactory,
	serializer serializer.IRPCSerializer,
) *RPCServer {
	// https://github.com/golang/go/issues/17393
	if runtime.GOOS == "darwin" {
		signal.Ignore(syscall.Signal(0xd))
	}

	if config.ShardID == 0 {
		config.ShardID = common.DefaultSchemaShardID
	}

	Logger.Infof("Created RPC Server")
	Logger.Infof(config.String())

	return &RPCServer{
		config:        config,
		transport:     transport,
		peerTransport: peerTransport,
		serializer:    serializer,
		shards:        xsync.NewMapOf[uint64, serverShard](),
		peers:         make(map[string]*client.RPCPeer),
	}
}

// RPCServer serves the schema protocol of one member
type RPCServer struct {
	config        common.ServerConfig
	transport     transport.IRPCServerTransport
	peerTransport PeerTransportFactory
	serializer    serializer.IRPCSerializer
	shards        *xsync.MapOf[uint64, serverShard]
	peers         map[string]*client.RPCPeer
	admin         *http.Server
}

func (s *RPCServer) registerTransportHandler() {
	s.transport.RegisterHandler(func(shardId uint64, req []byte) []byte {
		var msg common.Message
		var respMsg *common.Message

		shard, ok := s.shards.Load(shardId)
		if !ok {
			respMsg = common.NewErrorResponse(fmt.Sprintf("shard %d not found", shardId))
		} else if err := s.serializer.Deserialize(req, &msg); err != nil {
			respMsg = common.NewErrorResponse(fmt.Sprintf("failed to deserialize request: %s", err))
		} else {
			respMsg = shard.Adapter.Handle(&msg, shard.Store)
		}

		val, err := s.serializer.Serialize(*respMsg)
		if err != nil {
			Logger.Errorf("failed to serialize response: %v", err)
			val, _ = s.serializer.Serialize(*common.NewErrorResponse(fmt.Sprintf("failed to serialize response: %s", err)))
		}
		return val
	})
}

// openStore opens the persistent store if a data dir is configured, else an in-memory one
func (s *RPCServer) openStore() (schemastore.ISchemaStore, error) {
	if s.config.DataDir == "" {
		Logger.Infof("using in-memory schema store")
		return mstore.NewMemoryStore(), nil
	}
	return pstore.NewPebbleStore(s.config.DataDir)
}

func (s *RPCServer) init() error {
	// Init logger
	if s.config.LogLevel != "" {
		common.InitLoggers(s.config.LogLevel)
	}

	store, err := s.openStore()
	if err != nil {
		return fmt.Errorf("failed to open schema store: %w", err)
	}

	// One peer client per configured peer, connected on first use
	replicators := make(map[string]peerReplicator, len(s.config.Peers))
	for name, endpoint := range s.config.Peers {
		peer := client.NewRPCPeer(s.config.ShardID, s.config.PeerClientConfig(endpoint), s.peerTransport(), s.serializer)
		s.peers[name] = peer
		replicators[name] = peer
		Logger.Infof("configured peer %s (%s) at %s", name, common.MemberID(name), endpoint)
	}

	s.shards.Store(s.config.ShardID, serverShard{
		Store:   store,
		Adapter: NewSchemaServerAdapter(s.config, replicators),
	})
	Logger.Infof("created schema service for shard %d", s.config.ShardID)

	s.registerTransportHandler()

	if s.config.AdminEndpoint != "" {
		s.admin = &http.Server{
			Addr:    s.config.AdminEndpoint,
			Handler: newAdminRouter(s.config, store),
		}
		go func() {
			Logger.Infof("Starting admin api on %s", s.config.AdminEndpoint)
			if err := s.admin.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				Logger.Errorf("admin api failed: %v", err)
			}
		}()
	}

	Logger.Infof("dGrid member %s setup completed successfully", s.config.MemberName)
	return nil
}

// Serve starts the RPC server
// This function will also initialize the store, the peers and the admin api and start the transport layer.
// It blocks until Close is called.
func (s *RPCServer) Serve() error {
	if err := s.init(); err != nil {
		return err
	}
	return s.transport.Listen(s.config)
}

// Close stops the server and releases the store and the peer connections
func (s *RPCServer) Close() error {
	errs := []error{s.transport.Close()}
	if s.admin != nil {
		errs = append(errs, s.admin.Close())
	}
	for _, peer := range s.peers {
		errs = append(errs, peer.Close())
	}
	s.shards.Range(func(_ uint64, shard serverShard) bool {
		errs = append(errs, shard.Store.Close())
		return true
	})
	return errors.Join(errs...)
}
