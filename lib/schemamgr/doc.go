// Package schemamgr implements the client side schema distribution service.
//
// A compact record carries only the 64-bit id of its schema, so every schema
// used for writing must be known to the whole cluster before the first record
// leaves the process. Service enforces this:
//
//   - Put sends the schema to the cluster and caches it only after every
//     current member acknowledged it. Members that do not have it yet cause a
//     retry after Config.RetryPause, up to Config.MaxPutRetries attempts,
//     after which Put fails with a ReplicationError (the client is likely
//     connected to both halves of a split cluster).
//
//   - Get serves schemas from the local cache and fetches unknown ids from
//     the cluster. Ids the cluster does not know yield compact.ErrSchemaNotFound.
//
//   - PutLocal caches a schema learned from inbound data without sending it.
//
// Concurrent Put or Get calls for the same id share one network round trip.
// The round trip runs detached from the caller that started it, so a caller
// giving up (context done) does not fail the others.
//
// Two different schemas under one id are a fatal inconsistency and are
// reported as compact.ErrSchemaCollision.
//
// The service talks to the cluster through the Invoker interface. The RPC
// implementation lives in rpc/client:
//
//	invoker, _ := client.NewRPCSchemaInvoker(common.DefaultSchemaShardID, config, tcp.NewTCPClientTransport(), serializer.NewBinarySerializer())
//	svc := schemamgr.NewService(invoker, schemamgr.DefaultConfig())
//	s := compact.NewStreamSerializer(svc)
//
// Counters (cache hits and misses, fetches, replications, retries, collisions)
// are registered with VictoriaMetrics/metrics.
package schemamgr
