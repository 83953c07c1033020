// Package server implements the RPC server hosting a single embedded LSET
// engine instance. It provides the adapter translating decoded requests
// into lset.Set method calls, along with the core server implementation
// that wires the transport and serialization layers to it.
//
// The package focuses on:
//   - Server-side RPC request handling for every LSET operation
//   - Adapter pattern to decouple the engine from RPC mechanics
//
// Key Components:
//
//   - IRPCServerAdapter: Interface defining the contract for the server
//     adapter, with the Handle method that processes incoming requests
//     against the bound lset.Set instance.
//
//   - NewLSetServerAdapter: Factory function creating an adapter bound to a
//     lset.Set instance, translating RPC requests to its method calls.
//
//   - NewRPCServer: Factory function creating a configured server with the
//     specified transport and serializer mechanisms.
//
// Usage Example:
//
//	// Create server configuration
//	config := common.ServerConfig{
//	  Transport: common.ServerTransportConfig{
//	    Endpoint: "0.0.0.0:8080",
//	  },
//	  TimeoutSecond: 5,
//	  LogLevel:      "info",
//	}
//
//	// Create and start the server
//	s := server.NewRPCServer(
//	  config,
//	  tcp.NewTCPServerTransport(),
//	  serializer.NewBinarySerializer(),
//	)
//
//	// Start the server
//	if err := s.Serve(); err != nil {
//	  log.Fatalf("Server error: %v", err)
//	}
//
// Thread Safety:
//
//	The server implementation is thread-safe and can handle concurrent
//	requests across multiple connections. Each request is processed
//	independently against the embedded engine. The Listen method is not
//	thread-safe and should be called only once.
package server
