package client

import (
	"github.com/lsetdb/lset/rpc/common"
	"github.com/lsetdb/lset/rpc/serializer"
	"github.com/lsetdb/lset/rpc/transport"
)

// ILSetClient is the client-side view of a remote LSET engine: every
// method mirrors one of lset.Set's operations, swapping the in-process
// host.Host call for an RPC round trip.
type ILSetClient interface {
	Create(topRec, bin string, userModule any) error
	Add(topRec, bin string, value, userModule any) error
	AddAll(topRec, bin string, values []any, userModule any) error
	Get(topRec, bin string, key, userModule any, filterName string, filterArgs []any) (any, error)
	Exists(topRec, bin string, key any) (bool, error)
	Scan(topRec, bin string, userModule any, filterName string, filterArgs []any) ([]any, error)
	Remove(topRec, bin string, key, userModule any, filterName string, filterArgs []any, returnVal bool) (any, error)
	Destroy(topRec, bin string) error
	Size(topRec, bin string) (int64, error)
	Config(topRec, bin string) (map[string]any, error)
	GetCapacity(topRec, bin string) (int64, error)
	SetCapacity(topRec, bin string, capacity int64) error
	Dump(topRec, bin string) (string, error)
}

// NewRPCLSetClient connects to a remote RPC server hosting a single
// embedded LSET engine instance, and returns a client implementing
// ILSetClient against it.
func NewRPCLSetClient(
	setId uint64,
	config common.ClientConfig,
	transport transport.IRPCClientTransport,
	serializer serializer.IRPCSerializer,
) (ILSetClient, error) {
	if err := transport.Connect(config); err != nil {
		return nil, err
	}

	c := rpcLSetClient{
		rpcClientAdapter{
			setId:      setId,
			config:     config,
			transport:  transport,
			serializer: serializer,
		},
	}

	return &c, nil
}

type rpcLSetClient struct {
	rpcClientAdapter
}

func (c *rpcLSetClient) Create(topRec, bin string, userModule any) error {
	req := common.NewCreateRequest(topRec, bin, userModule)
	_, err := invokeRPCRequest(c.setId, req, c.transport, c.serializer)
	return err
}

func (c *rpcLSetClient) Add(topRec, bin string, value, userModule any) error {
	req := common.NewAddRequest(topRec, bin, value, userModule)
	_, err := invokeRPCRequest(c.setId, req, c.transport, c.serializer)
	return err
}

func (c *rpcLSetClient) AddAll(topRec, bin string, values []any, userModule any) error {
	req := common.NewAddAllRequest(topRec, bin, values, userModule)
	_, err := invokeRPCRequest(c.setId, req, c.transport, c.serializer)
	return err
}

func (c *rpcLSetClient) Get(topRec, bin string, key, userModule any, filterName string, filterArgs []any) (any, error) {
	req := common.NewGetRequest(topRec, bin, key, userModule, filterName, filterArgs)
	resp, err := invokeRPCRequest(c.setId, req, c.transport, c.serializer)
	if err != nil {
		return nil, err
	}
	return common.DecodeAny(resp.Value)
}

func (c *rpcLSetClient) Exists(topRec, bin string, key any) (bool, error) {
	req := common.NewExistsRequest(topRec, bin, key)
	resp, err := invokeRPCRequest(c.setId, req, c.transport, c.serializer)
	if err != nil {
		return false, err
	}
	return resp.Ok, nil
}

func (c *rpcLSetClient) Scan(topRec, bin string, userModule any, filterName string, filterArgs []any) ([]any, error) {
	req := common.NewScanRequest(topRec, bin, userModule, filterName, filterArgs)
	resp, err := invokeRPCRequest(c.setId, req, c.transport, c.serializer)
	if err != nil {
		return nil, err
	}
	decoded, err := common.DecodeAny(resp.Value)
	if err != nil || decoded == nil {
		return nil, err
	}
	values, ok := decoded.([]any)
	if !ok {
		return nil, nil
	}
	return values, nil
}

func (c *rpcLSetClient) Remove(topRec, bin string, key, userModule any, filterName string, filterArgs []any, returnVal bool) (any, error) {
	req := common.NewRemoveRequest(topRec, bin, key, userModule, filterName, filterArgs, returnVal)
	resp, err := invokeRPCRequest(c.setId, req, c.transport, c.serializer)
	if err != nil {
		return nil, err
	}
	return common.DecodeAny(resp.Value)
}

func (c *rpcLSetClient) Destroy(topRec, bin string) error {
	req := common.NewDestroyRequest(topRec, bin)
	_, err := invokeRPCRequest(c.setId, req, c.transport, c.serializer)
	return err
}

func (c *rpcLSetClient) Size(topRec, bin string) (int64, error) {
	req := common.NewSizeRequest(topRec, bin)
	resp, err := invokeRPCRequest(c.setId, req, c.transport, c.serializer)
	if err != nil {
		return 0, err
	}
	return resp.Size, nil
}

func (c *rpcLSetClient) Config(topRec, bin string) (map[string]any, error) {
	req := common.NewConfigRequest(topRec, bin)
	resp, err := invokeRPCRequest(c.setId, req, c.transport, c.serializer)
	if err != nil {
		return nil, err
	}
	decoded, err := common.DecodeAny(resp.Value)
	if err != nil || decoded == nil {
		return nil, err
	}
	cfg, ok := decoded.(map[string]any)
	if !ok {
		return nil, nil
	}
	return cfg, nil
}

func (c *rpcLSetClient) GetCapacity(topRec, bin string) (int64, error) {
	req := common.NewGetCapacityRequest(topRec, bin)
	resp, err := invokeRPCRequest(c.setId, req, c.transport, c.serializer)
	if err != nil {
		return 0, err
	}
	return resp.Capacity, nil
}

func (c *rpcLSetClient) SetCapacity(topRec, bin string, capacity int64) error {
	req := common.NewSetCapacityRequest(topRec, bin, capacity)
	_, err := invokeRPCRequest(c.setId, req, c.transport, c.serializer)
	return err
}

func (c *rpcLSetClient) Dump(topRec, bin string) (string, error) {
	req := common.NewDumpRequest(topRec, bin)
	resp, err := invokeRPCRequest(c.setId, req, c.transport, c.serializer)
	if err != nil {
		return "", err
	}
	return resp.Dump, nil
}
