// Package client implements an RPC client for a remote LSET engine. It
// provides ILSetClient, an implementation mirroring lset.Set's method set
// that forwards every operation to a remote server via the configured
// transport and serializer.
//
// The package focuses on:
//   - Transparent RPC access to a remote LSET engine
//   - Integration with the transport and serialization layers
//   - Error handling and conversion between RPC and domain errors
//
// Key Components:
//
//   - NewRPCLSetClient: Factory function that creates a client implementing
//     the ILSetClient interface. This client forwards all operations to a
//     remote server via the configured transport layer.
//
// Usage Example:
//
//		// Configure the client
//		config := common.ClientConfig{
//		  Transport: common.ClientTransportConfig{
//		    Endpoints:              []string{"localhost:5000"},
//		    RetryCount:             3,
//		    ConnectionsPerEndpoint: 1,
//		  },
//		  TimeoutSecond: 5,
//		}
//
//	 // Create a serializer
//		serializer := serializer.NewBinarySerializer()
//
//		// Create the client
//		set, _ := client.NewRPCLSetClient(0, config, tcp.NewTCPClientTransport(), serializer)
//
//		// Use the set
//		_ = set.Create("myrec", "myset", nil)
//		_ = set.Add("myrec", "myset", "hello", nil)
//		exists, _ := set.Exists("myrec", "myset", "hello")
//
// Performance Considerations:
//
//   - For applications that frequently send large payloads, increasing ConnectionsPerEndpoint
//     can improve throughput by allowing parallel requests.
//
//   - For small messages, a single connection per endpoint is often more efficient due to
//     reduced connection overhead.
//
//   - The choice of serializer significantly affects performance. The binary serializer
//     provides the best performance and smallest payload size.
//
// Thread Safety:
//
//	All client implementations are thread-safe and can be used concurrently from
//	multiple goroutines without additional synchronization.
package client
