// Package tcp implements TCP socket-based transport for the schema distribution
// RPC system. It provides concrete implementations of the base package's connector
// interfaces optimized for TCP connections.
//
// This package builds on the base package's transport functionality, inheriting its
// performance optimizations including connection pooling, buffer reuse, and request
// routing. See the base package documentation for detailed information on the underlying
// transport mechanisms and performance characteristics.
//
// Key Components:
//
//   - clientConnector: TCP-specific implementation of base.IClientConnector
//
//   - serverConnector: TCP-specific implementation of base.IServerConnector
//
// The default server buffer size is 512 KB with 16 workers per connection. Both
// can be set through NewTCPServerTransport. Socket and TCP options (no delay,
// keep alive, linger, buffer sizes) are applied to every client and server connection.
package tcp
