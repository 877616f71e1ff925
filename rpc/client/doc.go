// Package client implements the RPC clients of the schema distribution system.
// It connects the client side schema service (lib/schemamgr) and the member
// to member replication to the transport and serialization layers.
//
// The package focuses on:
//   - Transparent RPC access to the schema operations of the cluster
//   - Integration with the transport and serialization layers
//   - Error handling and conversion between RPC and domain errors
//   - Round trip timing per message type (rcrowley/go-metrics timers)
//
// Key Components:
//
//   - NewRPCSchemaInvoker: Factory function that creates a client implementing the
//     schemamgr.Invoker interface. It sends schema put, fetch, put all and members
//     requests to a member via the configured transport layer.
//
//   - NewRPCSchemaService: Shortcut that wraps the invoker in a schemamgr.Service
//     configured from the schema section of the client config.
//
//   - RPCPeer: Member to member client used by the server to replicate schemas.
//     It connects lazily so members can start in any order.
//
//   - WriteTimings: Prints count, mean and p99 round trip time per message type.
//
// Usage Example:
//
//	config := common.ClientConfig{
//	  TimeoutSecond: 5,
//	  Transport: common.ClientTransportConfig{
//	    Endpoints:  []string{"localhost:8080"},
//	    RetryCount: 3,
//	  },
//	}
//
//	svc, _ := client.NewRPCSchemaService(common.DefaultSchemaShardID, config,
//	  tcp.NewTCPClientTransport(), serializer.NewBinarySerializer())
//
//	s := compact.NewStreamSerializer(svc)
//	data, _ := s.ToBytes(ctx, record) // replicates the schema of record first
//
// Thread Safety:
//
//	All client implementations are thread-safe and can be used concurrently from
//	multiple goroutines without additional synchronization.
package client
