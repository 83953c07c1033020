// Package cmd implements the command-line interface for the lset engine.
// It provides a hierarchical command structure with operations for running
// the server and interacting with it as a client.
//
// The package is organized into several subpackages:
//
//   - lset: Commands for LSET operations (create, add, get, scan, remove, etc.)
//   - serve: Commands for starting and configuring the lset server
//   - util: Shared utilities for command-line processing and configuration (internal use)
//
// See lset -help for a list of all commands.
package cmd
