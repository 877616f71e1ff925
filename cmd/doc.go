// Package cmd implements the command-line interface of dGrid. It provides a
// hierarchical command structure for running a cluster member and for
// working with schemas and compact records as a client.
//
// The package is organized into several subpackages:
//
//   - serve: Starts and configures a dGrid member
//   - schema: Commands for schema operations (id, put, fetch, members)
//   - record: Commands for encoding and decoding compact records
//   - util: Shared utilities for command-line processing and configuration (internal use)
//
// See dgrid -help for a list of all commands.
package cmd
