package server

import (
	"fmt"

	"github.com/lsetdb/lset/lset"
	"github.com/lsetdb/lset/rpc/common"
)

// NewLSetServerAdapter binds an adapter to a single embedded LSET engine
// instance. Every message it handles addresses one (topRec, bin) pair on
// that instance.
func NewLSetServerAdapter(set *lset.Set) IRPCServerAdapter {
	return &lsetServerAdapterImpl{set: set}
}

type lsetServerAdapterImpl struct {
	set *lset.Set
}

func (a *lsetServerAdapterImpl) Handle(req *common.Message) *common.Message {
	if a.set == nil {
		return common.NewErrorResponse("handler: lset instance is nil")
	}

	switch req.MsgType {
	case common.MsgTLSetCreate:
		userModule, err := common.DecodeAny(req.UserModule)
		if err != nil {
			return common.NewCreateResponse(err)
		}
		err = a.set.Create(req.TopRec, req.Bin, userModule)
		return common.NewCreateResponse(err)

	case common.MsgTLSetAdd:
		value, err := common.DecodeAny(req.Value)
		if err != nil {
			return common.NewAddResponse(err)
		}
		userModule, err := common.DecodeAny(req.UserModule)
		if err != nil {
			return common.NewAddResponse(err)
		}
		err = a.set.Add(req.TopRec, req.Bin, value, userModule, nil)
		return common.NewAddResponse(err)

	case common.MsgTLSetAddAll:
		decoded, err := common.DecodeAny(req.Value)
		if err != nil {
			return common.NewAddAllResponse(err)
		}
		values, ok := decoded.([]any)
		if !ok {
			return common.NewAddAllResponse(fmt.Errorf("add_all: expected a JSON array of values"))
		}
		userModule, err := common.DecodeAny(req.UserModule)
		if err != nil {
			return common.NewAddAllResponse(err)
		}
		err = a.set.AddAll(req.TopRec, req.Bin, values, userModule, nil)
		return common.NewAddAllResponse(err)

	case common.MsgTLSetGet:
		key, err := common.DecodeAny(req.Key)
		if err != nil {
			return common.NewGetResponse(nil, err)
		}
		userModule, err := common.DecodeAny(req.UserModule)
		if err != nil {
			return common.NewGetResponse(nil, err)
		}
		filterArgs, err := decodeArgs(req.FilterArgs)
		if err != nil {
			return common.NewGetResponse(nil, err)
		}
		value, err := a.set.Get(req.TopRec, req.Bin, key, userModule, req.FilterName, filterArgs, nil)
		return common.NewGetResponse(value, err)

	case common.MsgTLSetExists:
		key, err := common.DecodeAny(req.Key)
		if err != nil {
			return common.NewExistsResponse(false, err)
		}
		ok, err := a.set.Exists(req.TopRec, req.Bin, key, nil)
		return common.NewExistsResponse(ok, err)

	case common.MsgTLSetScan:
		userModule, err := common.DecodeAny(req.UserModule)
		if err != nil {
			return common.NewScanResponse(nil, err)
		}
		filterArgs, err := decodeArgs(req.FilterArgs)
		if err != nil {
			return common.NewScanResponse(nil, err)
		}
		values, err := a.set.Scan(req.TopRec, req.Bin, userModule, req.FilterName, filterArgs, nil)
		return common.NewScanResponse(values, err)

	case common.MsgTLSetRemove:
		key, err := common.DecodeAny(req.Key)
		if err != nil {
			return common.NewRemoveResponse(nil, err)
		}
		userModule, err := common.DecodeAny(req.UserModule)
		if err != nil {
			return common.NewRemoveResponse(nil, err)
		}
		filterArgs, err := decodeArgs(req.FilterArgs)
		if err != nil {
			return common.NewRemoveResponse(nil, err)
		}
		value, err := a.set.Remove(req.TopRec, req.Bin, key, userModule, req.FilterName, filterArgs, req.ReturnVal, nil)
		return common.NewRemoveResponse(value, err)

	case common.MsgTLSetDestroy:
		err := a.set.Destroy(req.TopRec, req.Bin, nil)
		return common.NewDestroyResponse(err)

	case common.MsgTLSetSize:
		size, err := a.set.Size(req.TopRec, req.Bin)
		return common.NewSizeResponse(size, err)

	case common.MsgTLSetConfig:
		cfg, err := a.set.Config(req.TopRec, req.Bin)
		return common.NewConfigResponse(cfg, err)

	case common.MsgTLSetGetCapacity:
		capacity, err := a.set.GetCapacity(req.TopRec, req.Bin)
		return common.NewGetCapacityResponse(capacity, err)

	case common.MsgTLSetSetCapacity:
		err := a.set.SetCapacity(req.TopRec, req.Bin, req.Capacity)
		return common.NewSetCapacityResponse(err)

	case common.MsgTLSetDump:
		report, err := a.set.Dump(req.TopRec, req.Bin)
		return common.NewDumpResponse(report, err)

	default:
		return common.NewErrorResponse(
			fmt.Sprintf("RPC LSetAdapter - unsupported message type: %s", req.MsgType),
		)
	}
}

// decodeArgs decodes a JSON-encoded []any filter-args payload, tolerating
// an absent one (nil filterArgs means "no extra arguments").
func decodeArgs(b []byte) ([]any, error) {
	decoded, err := common.DecodeAny(b)
	if err != nil || decoded == nil {
		return nil, err
	}
	args, ok := decoded.([]any)
	if !ok {
		return nil, fmt.Errorf("filter args: expected a JSON array")
	}
	return args, nil
}
