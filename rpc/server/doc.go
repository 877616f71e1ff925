// Package server implements the cluster member of dGrid. A member stores the
// compact schemas of the cluster and serves them over RPC.
//
// Key Components:
//
//   - IRPCServerAdapter: Interface defining the contract for server adapters,
//     with the Handle method that processes incoming requests against a
//     schemastore.ISchemaStore.
//
//   - NewSchemaServerAdapter: Factory function creating the adapter for the
//     schema protocol (put, put all, replicate, fetch, members).
//
//   - NewRPCServer: Factory function creating a configured member with the
//     specified transport and serializer mechanisms.
//
// Replication:
//
// A schema put by a client is stored locally and then sent to every configured
// peer in parallel. The response lists the ids of all members that hold the
// schema afterwards. Peers that could not be reached are left out, the client
// compares the list with the member list and retries. Schemas received from a
// peer are stored but never forwarded again.
//
// Storage:
//
// Without a data directory the schemas are kept in memory (mstore). With a
// data directory they are persisted with pebble (pstore) and survive restarts.
//
// Usage Example:
//
//	config := common.ServerConfig{
//	  MemberName:    "member-1",
//	  Peers:         map[string]string{"member-2": "10.0.0.2:8080"},
//	  DataDir:       "/var/lib/dgrid",
//	  AdminEndpoint: ":9090",
//	  TimeoutSecond: 5,
//	  LogLevel:      "info",
//	  Transport:     common.ServerTransportConfig{Endpoint: "0.0.0.0:8080"},
//	}
//
//	s := server.NewRPCServer(
//	  config,
//	  tcp.NewTCPServerTransport(0, 0),
//	  tcp.NewTCPClientTransport,
//	  serializer.NewBinarySerializer(),
//	)
//
//	if err := s.Serve(); err != nil {
//	  log.Fatalf("Server error: %v", err)
//	}
//
// Admin API:
//
// If AdminEndpoint is set, a small http api (chi) exposes /health, /metrics
// (prometheus format), /members, /schemas and /schemas/{id}.
//
// Thread Safety:
//
//	The server handles concurrent requests across multiple connections.
//	Serve must be called only once.
package server
