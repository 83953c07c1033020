// Package common provides core data structures and utilities shared across
// the LSET engine's RPC layer. It defines fundamental types, configuration
// structures, and protocol elements used by other packages.
//
// The package focuses on:
//   - Message protocol definition for inter-component communication
//   - Configuration structures for client and server components
//   - A small logging implementation on dragonboat's logger.ILogger facade
//
// Key Components:
//
//   - Message: Core data structure for all RPC communication between components,
//     with a flexible structure that adapts to different operation types.
//     Includes factory methods for creating various request and response messages.
//
//   - MessageType: Enumeration defining all supported operation types in the
//     system, covering every LSET operation plus generic success/error control
//     messages.
//
//   - ServerConfig: Configuration for the single embedded engine a server hosts,
//     covering transport settings, timeouts, and log level.
//
//   - ClientConfig: Configuration for client components, controlling connection
//     parameters, timeouts, and retry behavior.
//
//   - Logger: Custom logging implementation providing consistent formatting
//     across the application.
package common
