package server

import (
	"github.com/lsetdb/lset/rpc/common"
)

// IRPCServerAdapter is the interface for the RPC server adapter bound to a
// single embedded LSET instance. It is responsible for dispatching a
// decoded request to the right lset.Set method and encoding the result.
type IRPCServerAdapter interface {
	// Handle handles a request and returns a response. If an error occurs,
	// it is encoded into the response's Err field rather than returned,
	// since a handler must always produce something to write back.
	Handle(req *common.Message) (resp *common.Message)
}
