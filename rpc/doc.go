// Package rpc provides the remote procedure call layer of dGrid. It connects
// clients to cluster members and members to each other for the distribution
// of compact schemas.
//
// The package is organized into several subpackages:
//
//   - common: Core data structures and utilities used across the RPC system,
//     including the Message protocol, configuration structures, and logging.
//
//   - transport: Network communication abstractions with a TCP implementation.
//
//   - serializer: Message serialization (Binary, JSON) for converting between
//     Message objects and byte arrays.
//
//   - client: RPC implementation of schemamgr.Invoker and the peer client
//     used by members to replicate schemas.
//
//   - server: The cluster member, handling schema requests and the admin api.
package rpc
