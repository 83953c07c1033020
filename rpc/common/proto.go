package common

import (
	"encoding/json"
	"fmt"
)

// --------------------------------------------------------------------------
// Message Structure
// --------------------------------------------------------------------------

// Message represents a single message used for both requests and responses
// to a remote LSET instance. Which fields are used depends on MsgType. Key,
// Value, and UserModule carry JSON-encoded `any` payloads rather than typed
// Go values, since an LSET member or key can be any comparable/structured
// value (spec.md §3's "Key extraction" rule) and the wire format must stay
// agnostic of it.
type Message struct {
	MsgType MessageType `json:"msg_type"`

	TopRec string `json:"topRec,omitempty"` // top-record key, every op
	Bin    string `json:"bin,omitempty"`    // bin name, every op

	Key        []byte `json:"key,omitempty"`        // JSON-encoded key: get, exists, remove
	Value      []byte `json:"value,omitempty"`      // JSON-encoded value(s): add, add_all, get/scan responses, config response
	UserModule []byte `json:"userModule,omitempty"` // JSON-encoded UserModule: create, add, add_all, get, scan, remove

	FilterName string `json:"filterName,omitempty"` // get, scan, remove
	FilterArgs []byte `json:"filterArgs,omitempty"` // JSON-encoded []any: get, scan, remove

	ReturnVal bool  `json:"returnVal,omitempty"` // remove request
	Capacity  int64 `json:"capacity,omitempty"`  // get_capacity response, set_capacity request
	Size      int64 `json:"size,omitempty"`      // size response

	Dump string `json:"dump,omitempty"` // dump response

	// Response only fields
	Ok  bool   `json:"ok,omitempty"`  // exists response
	Err string `json:"err,omitempty"` // empty if no error, otherwise the error message
}

// --------------------------------------------------------------------------
// Message Factory Functions
// --------------------------------------------------------------------------

// EncodeAny JSON-encodes v, returning nil for a nil v so the wire message
// can omit the field entirely.
func EncodeAny(v any) []byte {
	if v == nil {
		return nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return b
}

// DecodeAny JSON-decodes b into an any, returning nil if b is empty.
func DecodeAny(b []byte) (any, error) {
	if len(b) == 0 {
		return nil, nil
	}
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return nil, fmt.Errorf("decode payload: %w", err)
	}
	return v, nil
}

// NewCreateRequest creates a new Create request.
func NewCreateRequest(topRec, bin string, userModule any) *Message {
	return &Message{
		MsgType:    MsgTLSetCreate,
		TopRec:     topRec,
		Bin:        bin,
		UserModule: EncodeAny(userModule),
	}
}

// NewCreateResponse creates a new Create response.
func NewCreateResponse(err error) *Message {
	msg := &Message{MsgType: MsgTLSetCreate}
	if err != nil {
		msg.Err = err.Error()
	}
	return msg
}

// NewAddRequest creates a new Add request.
func NewAddRequest(topRec, bin string, value, userModule any) *Message {
	return &Message{
		MsgType:    MsgTLSetAdd,
		TopRec:     topRec,
		Bin:        bin,
		Value:      EncodeAny(value),
		UserModule: EncodeAny(userModule),
	}
}

// NewAddResponse creates a new Add response.
func NewAddResponse(err error) *Message {
	msg := &Message{MsgType: MsgTLSetAdd}
	if err != nil {
		msg.Err = err.Error()
	}
	return msg
}

// NewAddAllRequest creates a new AddAll request; values is JSON-encoded as
// a single array in Value.
func NewAddAllRequest(topRec, bin string, values []any, userModule any) *Message {
	return &Message{
		MsgType:    MsgTLSetAddAll,
		TopRec:     topRec,
		Bin:        bin,
		Value:      EncodeAny(values),
		UserModule: EncodeAny(userModule),
	}
}

// NewAddAllResponse creates a new AddAll response.
func NewAddAllResponse(err error) *Message {
	msg := &Message{MsgType: MsgTLSetAddAll}
	if err != nil {
		msg.Err = err.Error()
	}
	return msg
}

// NewGetRequest creates a new Get request.
func NewGetRequest(topRec, bin string, key, userModule any, filterName string, filterArgs []any) *Message {
	return &Message{
		MsgType:    MsgTLSetGet,
		TopRec:     topRec,
		Bin:        bin,
		Key:        EncodeAny(key),
		UserModule: EncodeAny(userModule),
		FilterName: filterName,
		FilterArgs: EncodeAny(filterArgs),
	}
}

// NewGetResponse creates a new Get response.
func NewGetResponse(value any, err error) *Message {
	msg := &Message{MsgType: MsgTLSetGet, Value: EncodeAny(value)}
	if err != nil {
		msg.Err = err.Error()
	}
	return msg
}

// NewExistsRequest creates a new Exists request.
func NewExistsRequest(topRec, bin string, key any) *Message {
	return &Message{
		MsgType: MsgTLSetExists,
		TopRec:  topRec,
		Bin:     bin,
		Key:     EncodeAny(key),
	}
}

// NewExistsResponse creates a new Exists response.
func NewExistsResponse(ok bool, err error) *Message {
	msg := &Message{MsgType: MsgTLSetExists, Ok: ok}
	if err != nil {
		msg.Err = err.Error()
	}
	return msg
}

// NewScanRequest creates a new Scan request.
func NewScanRequest(topRec, bin string, userModule any, filterName string, filterArgs []any) *Message {
	return &Message{
		MsgType:    MsgTLSetScan,
		TopRec:     topRec,
		Bin:        bin,
		UserModule: EncodeAny(userModule),
		FilterName: filterName,
		FilterArgs: EncodeAny(filterArgs),
	}
}

// NewScanResponse creates a new Scan response; values is JSON-encoded as a
// single array in Value.
func NewScanResponse(values []any, err error) *Message {
	msg := &Message{MsgType: MsgTLSetScan, Value: EncodeAny(values)}
	if err != nil {
		msg.Err = err.Error()
	}
	return msg
}

// NewRemoveRequest creates a new Remove request.
func NewRemoveRequest(topRec, bin string, key, userModule any, filterName string, filterArgs []any, returnVal bool) *Message {
	return &Message{
		MsgType:    MsgTLSetRemove,
		TopRec:     topRec,
		Bin:        bin,
		Key:        EncodeAny(key),
		UserModule: EncodeAny(userModule),
		FilterName: filterName,
		FilterArgs: EncodeAny(filterArgs),
		ReturnVal:  returnVal,
	}
}

// NewRemoveResponse creates a new Remove response.
func NewRemoveResponse(value any, err error) *Message {
	msg := &Message{MsgType: MsgTLSetRemove, Value: EncodeAny(value)}
	if err != nil {
		msg.Err = err.Error()
	}
	return msg
}

// NewDestroyRequest creates a new Destroy request.
func NewDestroyRequest(topRec, bin string) *Message {
	return &Message{MsgType: MsgTLSetDestroy, TopRec: topRec, Bin: bin}
}

// NewDestroyResponse creates a new Destroy response.
func NewDestroyResponse(err error) *Message {
	msg := &Message{MsgType: MsgTLSetDestroy}
	if err != nil {
		msg.Err = err.Error()
	}
	return msg
}

// NewSizeRequest creates a new Size request.
func NewSizeRequest(topRec, bin string) *Message {
	return &Message{MsgType: MsgTLSetSize, TopRec: topRec, Bin: bin}
}

// NewSizeResponse creates a new Size response.
func NewSizeResponse(size int64, err error) *Message {
	msg := &Message{MsgType: MsgTLSetSize, Size: size}
	if err != nil {
		msg.Err = err.Error()
	}
	return msg
}

// NewConfigRequest creates a new Config request.
func NewConfigRequest(topRec, bin string) *Message {
	return &Message{MsgType: MsgTLSetConfig, TopRec: topRec, Bin: bin}
}

// NewConfigResponse creates a new Config response; cfg is JSON-encoded as a
// map in Value.
func NewConfigResponse(cfg map[string]any, err error) *Message {
	msg := &Message{MsgType: MsgTLSetConfig, Value: EncodeAny(cfg)}
	if err != nil {
		msg.Err = err.Error()
	}
	return msg
}

// NewGetCapacityRequest creates a new GetCapacity request.
func NewGetCapacityRequest(topRec, bin string) *Message {
	return &Message{MsgType: MsgTLSetGetCapacity, TopRec: topRec, Bin: bin}
}

// NewGetCapacityResponse creates a new GetCapacity response.
func NewGetCapacityResponse(capacity int64, err error) *Message {
	msg := &Message{MsgType: MsgTLSetGetCapacity, Capacity: capacity}
	if err != nil {
		msg.Err = err.Error()
	}
	return msg
}

// NewSetCapacityRequest creates a new SetCapacity request.
func NewSetCapacityRequest(topRec, bin string, capacity int64) *Message {
	return &Message{MsgType: MsgTLSetSetCapacity, TopRec: topRec, Bin: bin, Capacity: capacity}
}

// NewSetCapacityResponse creates a new SetCapacity response.
func NewSetCapacityResponse(err error) *Message {
	msg := &Message{MsgType: MsgTLSetSetCapacity}
	if err != nil {
		msg.Err = err.Error()
	}
	return msg
}

// NewDumpRequest creates a new Dump request.
func NewDumpRequest(topRec, bin string) *Message {
	return &Message{MsgType: MsgTLSetDump, TopRec: topRec, Bin: bin}
}

// NewDumpResponse creates a new Dump response.
func NewDumpResponse(report string, err error) *Message {
	msg := &Message{MsgType: MsgTLSetDump, Dump: report}
	if err != nil {
		msg.Err = err.Error()
	}
	return msg
}

// NewErrorResponse creates a new Error response.
func NewErrorResponse(err string) *Message {
	return &Message{MsgType: MsgTError, Err: err}
}

// --------------------------------------------------------------------------
// Message Type Definition
// --------------------------------------------------------------------------

// MessageType defines the type of message used in RPC communication.
type MessageType uint8

// String returns the string representation of a MessageType.
func (t MessageType) String() string {
	switch t {
	case MsgTLSetCreate:
		return "create"
	case MsgTLSetAdd:
		return "add"
	case MsgTLSetAddAll:
		return "add_all"
	case MsgTLSetGet:
		return "get"
	case MsgTLSetExists:
		return "exists"
	case MsgTLSetScan:
		return "scan"
	case MsgTLSetRemove:
		return "remove"
	case MsgTLSetDestroy:
		return "destroy"
	case MsgTLSetSize:
		return "size"
	case MsgTLSetConfig:
		return "config"
	case MsgTLSetGetCapacity:
		return "get_capacity"
	case MsgTLSetSetCapacity:
		return "set_capacity"
	case MsgTLSetDump:
		return "dump"
	case MsgTError:
		return "error"
	case MsgTSuccess:
		return "success"
	default:
		return "unknown"
	}
}

// MarshalJSON implements the json.Marshaler interface for MessageType. This
// allows MessageType to be serialized as a string in JSON.
func (t MessageType) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

// UnmarshalJSON implements the json.Unmarshaler interface for MessageType.
func (t *MessageType) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}

	switch s {
	case "create":
		*t = MsgTLSetCreate
	case "add":
		*t = MsgTLSetAdd
	case "add_all":
		*t = MsgTLSetAddAll
	case "get":
		*t = MsgTLSetGet
	case "exists":
		*t = MsgTLSetExists
	case "scan":
		*t = MsgTLSetScan
	case "remove":
		*t = MsgTLSetRemove
	case "destroy":
		*t = MsgTLSetDestroy
	case "size":
		*t = MsgTLSetSize
	case "config":
		*t = MsgTLSetConfig
	case "get_capacity":
		*t = MsgTLSetGetCapacity
	case "set_capacity":
		*t = MsgTLSetSetCapacity
	case "dump":
		*t = MsgTLSetDump
	case "error":
		*t = MsgTError
	case "success":
		*t = MsgTSuccess
	default:
		return fmt.Errorf("unknown message type: %s", s)
	}

	return nil
}

// --------------------------------------------------------------------------
// Message Type Constants
// --------------------------------------------------------------------------

const (
	// General message types

	MsgTUnknown MessageType = iota
	MsgTSuccess             // indicates a successful operation
	MsgTError               // indicates an error occurred

	// LSET operations (spec.md §6)

	MsgTLSetCreate      // create a new LSET descriptor in a bin
	MsgTLSetAdd         // insert a single member
	MsgTLSetAddAll      // insert several members, aborting on first failure
	MsgTLSetGet         // return a member by key
	MsgTLSetExists      // report whether a member is present
	MsgTLSetScan        // return every member passing an optional filter
	MsgTLSetRemove      // delete a member by key
	MsgTLSetDestroy     // remove the descriptor, cascading sub-records
	MsgTLSetSize        // return the logical member count
	MsgTLSetConfig      // return the configurable options plus live counters
	MsgTLSetGetCapacity // return the advisory capacity ceiling
	MsgTLSetSetCapacity // set the advisory capacity ceiling
	MsgTLSetDump        // return a diagnostic report
)
