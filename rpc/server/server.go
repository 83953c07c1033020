package server

import (
	"fmt"
	"net/http"
	"os/signal"
	"runtime"
	"syscall"

	_ "net/http/pprof"

	"github.com/lsetdb/lset/internal/host"
	"github.com/lsetdb/lset/internal/host/dbhost"
	"github.com/lsetdb/lset/internal/host/memhost"
	"github.com/lsetdb/lset/lib/db/engines/maple"
	"github.com/lsetdb/lset/lib/telemetry"
	"github.com/lsetdb/lset/lib/udf"
	"github.com/lsetdb/lset/lset"
	"github.com/lsetdb/lset/rpc/common"
	"github.com/lsetdb/lset/rpc/serializer"
	"github.com/lsetdb/lset/rpc/transport"
)

// metricsAddr is the fixed address the diagnostic /metrics and /debug/pprof
// endpoints are served on, kept off the main RPC endpoint.
const metricsAddr = ":6060"

var Logger = common.GetLogger("rpc")

// engineShardID is the fixed routing key a single-engine server registers
// its handler under. The transport layer still addresses requests by
// shard, but a server built around one embedded LSET instance has exactly
// one shard to route to.
const engineShardID uint64 = 0

// NewRPCServer creates a new RPC server hosting a single embedded LSET
// engine instance.
//
// Usage:
//
//	s := server.NewRPCServer(
//		*config,
//		http.NewHttpServerTransport(),
//		serializer.NewJSONSerializer(),
//	)
//
//	if err := s.Serve(); err != nil {
//		panic(err)
//	}
func NewRPCServer(
	config common.ServerConfig,
	transport transport.IRPCServerTransport,
	serializer serializer.IRPCSerializer,
) rpcServer {
	// https://github.com/golang/go/issues/17393
	if runtime.GOOS == "darwin" {
		signal.Ignore(syscall.Signal(0xd))
	}

	Logger.Infof("Created RPC Server")
	Logger.Infof(config.String())

	return rpcServer{
		config:     config,
		transport:  transport,
		serializer: serializer,
	}
}

type rpcServer struct {
	config     common.ServerConfig
	transport  transport.IRPCServerTransport
	serializer serializer.IRPCSerializer
	adapter    IRPCServerAdapter
}

func (s *rpcServer) registerTransportHandler() {
	s.transport.RegisterHandler(func(shardId uint64, req []byte) []byte {
		var msg common.Message
		var respMsg *common.Message

		if shardId != engineShardID {
			respMsg = common.NewErrorResponse("unknown engine shard")
		} else if err := s.serializer.Deserialize(req, &msg); err != nil {
			respMsg = common.NewErrorResponse(fmt.Sprintf("failed to deserialize request: %s", err))
		} else {
			respMsg = s.adapter.Handle(&msg)
		}

		val, err := s.serializer.Serialize(*respMsg)
		if err != nil {
			val, _ = s.serializer.Serialize(*common.NewErrorResponse(fmt.Sprintf("failed to serialize response: %s", err)))
		}
		return val
	})
}

func (s *rpcServer) init() error {
	common.InitLoggers(s.config)

	h, err := newHost(s.config.StorageBackend)
	if err != nil {
		return err
	}

	registry := udf.NewDefaultRegistry()
	set := lset.New(h, registry)
	s.adapter = NewLSetServerAdapter(set)

	Logger.Infof("lset engine ready (storage backend: %s)", s.config.StorageBackend)

	http.Handle("/metrics", telemetry.Handler())
	go func() {
		Logger.Infof("starting metrics/pprof server on %s", metricsAddr)
		Logger.Errorf("%v", http.ListenAndServe(metricsAddr, nil))
	}()

	s.registerTransportHandler()

	return nil
}

// newHost builds the host.Host backend named by backend: "maple" wraps
// the maple db.KVDB engine behind dbhost for a persistent process-local
// store; "memory" or the empty string selects the non-persistent memhost
// used by default and by the test suite; any other name is an error.
func newHost(backend string) (host.Host, error) {
	switch backend {
	case "maple":
		return dbhost.New(maple.NewMapleDB(nil)), nil
	case "", "memory":
		return memhost.New(), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", backend)
	}
}

// Serve starts the RPC server.
// This function will also initialize the embedded engine and start the
// transport layer.
func (s *rpcServer) Serve() error {
	err := s.init()
	if err != nil {
		return err
	}
	return s.transport.Listen(s.config)
}
