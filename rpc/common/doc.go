// Package common provides core data structures and utilities shared across
// the schema distribution system. It defines the protocol elements and the
// configuration structures used by the other rpc packages.
//
// The package focuses on:
//   - Message protocol definition for client to member and member to member communication
//   - Configuration structures for client and server components
//   - Custom logging implementation integrated with Dragonboat's logger package
//
// Key Components:
//
//   - Message: Core data structure for all RPC communication between components,
//     with a flexible structure that adapts to different operation types.
//     Includes factory methods for creating the various request and response messages.
//     Schemas travel in the Payload field, encoded with compact.EncodeSchemas.
//
//   - MessageType: Enumeration defining all supported operation types
//     (schema put, replicate, fetch, put all, members) and control messages.
//
//   - ServerConfig: Configuration of a cluster member: its name (from which the
//     member id is derived), its peers, storage and network settings.
//
//   - ClientConfig: Configuration for client components, controlling connection
//     parameters, timeouts, retry behavior and schema replication retries.
//
//   - Logger: Custom logging implementation that plugs into Dragonboat's
//     logger factory while providing consistent formatting across the application.
package common
