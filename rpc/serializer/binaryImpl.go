package serializer

import (
	"encoding/binary"
	"fmt"

	"github.com/lsetdb/lset/rpc/common"
)

// NewBinarySerializer creates a new serializer using a custom binary format
// optimized for speed and efficiency.
func NewBinarySerializer() IRPCSerializer {
	return &binarySerializerImpl{}
}

// binarySerializerImpl implements IRPCSerializer using a custom binary format.
type binarySerializerImpl struct{}

// Bit flags indicating which variable-length fields are present. Fixed-size
// fields (ReturnVal, Ok, Capacity, Size) are always written; their zero
// values are valid data, not "absent" markers, so flagging them buys
// nothing.
const (
	hasTopRec     byte = 1 << 0
	hasBin        byte = 1 << 1
	hasKey        byte = 1 << 2
	hasValue      byte = 1 << 3
	hasUserModule byte = 1 << 4
	hasFilterName byte = 1 << 5
	hasFilterArgs byte = 1 << 6
	hasErr        byte = 1 << 7

	hasDump byte = 1 << 0 // second flags byte
)

// --------------------------------------------------------------------------
// Interface Methods (docu see serializer.IRPCSerializer)
// --------------------------------------------------------------------------

func (b binarySerializerImpl) Serialize(msg common.Message) ([]byte, error) {
	result := make([]byte, 0, b.sizeBytes(msg))

	result = append(result, byte(msg.MsgType))

	var flags1, flags2 byte
	if msg.TopRec != "" {
		flags1 |= hasTopRec
	}
	if msg.Bin != "" {
		flags1 |= hasBin
	}
	if msg.Key != nil {
		flags1 |= hasKey
	}
	if msg.Value != nil {
		flags1 |= hasValue
	}
	if msg.UserModule != nil {
		flags1 |= hasUserModule
	}
	if msg.FilterName != "" {
		flags1 |= hasFilterName
	}
	if msg.FilterArgs != nil {
		flags1 |= hasFilterArgs
	}
	if msg.Err != "" {
		flags1 |= hasErr
	}
	if msg.Dump != "" {
		flags2 |= hasDump
	}
	result = append(result, flags1, flags2)

	result = appendString(result, msg.TopRec, flags1&hasTopRec != 0)
	result = appendString(result, msg.Bin, flags1&hasBin != 0)
	result = appendBytes(result, msg.Key, flags1&hasKey != 0)
	result = appendBytes(result, msg.Value, flags1&hasValue != 0)
	result = appendBytes(result, msg.UserModule, flags1&hasUserModule != 0)
	result = appendString(result, msg.FilterName, flags1&hasFilterName != 0)
	result = appendBytes(result, msg.FilterArgs, flags1&hasFilterArgs != 0)
	result = appendString(result, msg.Err, flags1&hasErr != 0)
	result = appendString(result, msg.Dump, flags2&hasDump != 0)

	var fixed [18]byte
	if msg.ReturnVal {
		fixed[0] = 1
	}
	if msg.Ok {
		fixed[1] = 1
	}
	binary.BigEndian.PutUint64(fixed[2:10], uint64(msg.Capacity))
	binary.BigEndian.PutUint64(fixed[10:18], uint64(msg.Size))
	result = append(result, fixed[:]...)

	return result, nil
}

func (b binarySerializerImpl) Deserialize(data []byte, msg *common.Message) error {
	if len(data) < 3 {
		return fmt.Errorf("data too short for message header")
	}

	msg.MsgType = common.MessageType(data[0])
	flags1, flags2 := data[1], data[2]
	pos := 3

	var err error
	if msg.TopRec, pos, err = readString(data, pos, flags1&hasTopRec != 0); err != nil {
		return fmt.Errorf("topRec: %w", err)
	}
	if msg.Bin, pos, err = readString(data, pos, flags1&hasBin != 0); err != nil {
		return fmt.Errorf("bin: %w", err)
	}
	if msg.Key, pos, err = readBytes(data, pos, flags1&hasKey != 0); err != nil {
		return fmt.Errorf("key: %w", err)
	}
	if msg.Value, pos, err = readBytes(data, pos, flags1&hasValue != 0); err != nil {
		return fmt.Errorf("value: %w", err)
	}
	if msg.UserModule, pos, err = readBytes(data, pos, flags1&hasUserModule != 0); err != nil {
		return fmt.Errorf("userModule: %w", err)
	}
	if msg.FilterName, pos, err = readString(data, pos, flags1&hasFilterName != 0); err != nil {
		return fmt.Errorf("filterName: %w", err)
	}
	if msg.FilterArgs, pos, err = readBytes(data, pos, flags1&hasFilterArgs != 0); err != nil {
		return fmt.Errorf("filterArgs: %w", err)
	}
	if msg.Err, pos, err = readString(data, pos, flags1&hasErr != 0); err != nil {
		return fmt.Errorf("err: %w", err)
	}
	if msg.Dump, pos, err = readString(data, pos, flags2&hasDump != 0); err != nil {
		return fmt.Errorf("dump: %w", err)
	}

	if pos+18 > len(data) {
		return fmt.Errorf("data too short for fixed fields")
	}
	msg.ReturnVal = data[pos] != 0
	msg.Ok = data[pos+1] != 0
	msg.Capacity = int64(binary.BigEndian.Uint64(data[pos+2 : pos+10]))
	msg.Size = int64(binary.BigEndian.Uint64(data[pos+10 : pos+18]))

	return nil
}

// --------------------------------------------------------------------------
// Helper Methods
// --------------------------------------------------------------------------

func appendString(dst []byte, s string, present bool) []byte {
	if !present {
		return dst
	}
	return appendBytes(dst, []byte(s), true)
}

func appendBytes(dst []byte, b []byte, present bool) []byte {
	if !present {
		return dst
	}
	var lenBuf [4]byte
	binary.BigEndian.PutUint32(lenBuf[:], uint32(len(b)))
	dst = append(dst, lenBuf[:]...)
	return append(dst, b...)
}

func readString(data []byte, pos int, present bool) (string, int, error) {
	if !present {
		return "", pos, nil
	}
	b, newPos, err := readBytes(data, pos, true)
	return string(b), newPos, err
}

func readBytes(data []byte, pos int, present bool) ([]byte, int, error) {
	if !present {
		return nil, pos, nil
	}
	if pos+4 > len(data) {
		return nil, pos, fmt.Errorf("data too short for length prefix")
	}
	n := int(binary.BigEndian.Uint32(data[pos : pos+4]))
	pos += 4
	if pos+n > len(data) {
		return nil, pos, fmt.Errorf("data too short for payload")
	}
	b := make([]byte, n)
	copy(b, data[pos:pos+n])
	return b, pos + n, nil
}

// sizeBytes estimates the buffer size needed for serialization.
func (b binarySerializerImpl) sizeBytes(msg common.Message) int {
	size := 3 // MsgType + 2 flag bytes
	if msg.TopRec != "" {
		size += 4 + len(msg.TopRec)
	}
	if msg.Bin != "" {
		size += 4 + len(msg.Bin)
	}
	if msg.Key != nil {
		size += 4 + len(msg.Key)
	}
	if msg.Value != nil {
		size += 4 + len(msg.Value)
	}
	if msg.UserModule != nil {
		size += 4 + len(msg.UserModule)
	}
	if msg.FilterName != "" {
		size += 4 + len(msg.FilterName)
	}
	if msg.FilterArgs != nil {
		size += 4 + len(msg.FilterArgs)
	}
	if msg.Err != "" {
		size += 4 + len(msg.Err)
	}
	if msg.Dump != "" {
		size += 4 + len(msg.Dump)
	}
	size += 18 // fixed fields
	return size
}
