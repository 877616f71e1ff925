package serializer

import (
	"encoding/binary"
	"fmt"
	"github.com/ValentinKolb/dGrid/lib/compact"
	"github.com/ValentinKolb/dGrid/rpc/common"
	"github.com/google/uuid"
)

// NewBinarySerializer creates a new serializer using a custom binary format
// optimized for speed and efficiency
func NewBinarySerializer() IRPCSerializer {
	return &binarySerializerImpl{}
}

// binarySerializerImpl implements IRPCSerializer using a custom binary format
type binarySerializerImpl struct {
}

// Bit flags to indicate which optional fields are present
const (
	hasSchemaID byte = 1 << 0
	hasPayload  byte = 1 << 1
	hasMembers  byte = 1 << 2
	hasOk       byte = 1 << 3
	hasErr      byte = 1 << 4
	hasMeta     byte = 1 << 5
	hasErrCode  byte = 1 << 6
)

const memberIDSize = len(uuid.UUID{})

// --------------------------------------------------------------------------
// Interface Methods (docu see serializer.IRPCSerializer)
// --------------------------------------------------------------------------

func (b binarySerializerImpl) Serialize(msg common.Message) ([]byte, error) {
	result := make([]byte, b.sizeBytes(msg))

	// Header: message type, flags (set at the end)
	result[0] = byte(msg.MsgType)
	var flags byte
	pos := 2

	if msg.SchemaID != 0 {
		flags |= hasSchemaID
		binary.BigEndian.PutUint64(result[pos:pos+8], uint64(msg.SchemaID))
		pos += 8
	}

	if msg.Payload != nil {
		flags |= hasPayload
		pos = putBytes(result, pos, msg.Payload)
	}

	if len(msg.Members) > 0 {
		flags |= hasMembers
		binary.BigEndian.PutUint32(result[pos:pos+4], uint32(len(msg.Members)))
		pos += 4
		for _, id := range msg.Members {
			copy(result[pos:pos+memberIDSize], id[:])
			pos += memberIDSize
		}
	}

	if msg.Ok {
		flags |= hasOk
		result[pos] = 1
		pos++
	}

	if msg.Err != "" {
		flags |= hasErr
		pos = putBytes(result, pos, []byte(msg.Err))
	}

	if msg.Meta != nil {
		flags |= hasMeta
		pos = putBytes(result, pos, msg.Meta)
	}

	if msg.ErrCode != 0 {
		flags |= hasErrCode
		result[pos] = byte(msg.ErrCode)
	}

	result[1] = flags
	return result, nil
}

func (b binarySerializerImpl) Deserialize(data []byte, msg *common.Message) error {
	// Check minimum size (MsgType + flags)
	if len(data) < 2 {
		return fmt.Errorf("data too short for message header")
	}

	msg.MsgType = common.MessageType(data[0])
	flags := data[1]
	pos := 2

	// Reset all optional fields, the message may be reused
	msg.SchemaID = 0
	msg.Payload = nil
	msg.Members = nil
	msg.Ok = false
	msg.Err = ""
	msg.ErrCode = 0
	msg.Meta = nil

	if flags&hasSchemaID != 0 {
		if pos+8 > len(data) {
			return fmt.Errorf("data too short for schema id")
		}
		msg.SchemaID = int64(binary.BigEndian.Uint64(data[pos : pos+8]))
		pos += 8
	}

	var err error
	if flags&hasPayload != 0 {
		if msg.Payload, pos, err = getBytes(data, pos, "payload"); err != nil {
			return err
		}
	}

	if flags&hasMembers != 0 {
		if pos+4 > len(data) {
			return fmt.Errorf("data too short for member count")
		}
		count := int(binary.BigEndian.Uint32(data[pos : pos+4]))
		pos += 4
		if count > (len(data)-pos)/memberIDSize {
			return fmt.Errorf("data too short for %d members", count)
		}
		msg.Members = make([]uuid.UUID, count)
		for i := range msg.Members {
			copy(msg.Members[i][:], data[pos:pos+memberIDSize])
			pos += memberIDSize
		}
	}

	if flags&hasOk != 0 {
		if pos+1 > len(data) {
			return fmt.Errorf("data too short for Ok flag")
		}
		msg.Ok = data[pos] != 0
		pos++
	}

	if flags&hasErr != 0 {
		var errBytes []byte
		if errBytes, pos, err = getBytes(data, pos, "error"); err != nil {
			return err
		}
		msg.Err = string(errBytes)
	}

	if flags&hasMeta != 0 {
		if msg.Meta, pos, err = getBytes(data, pos, "meta"); err != nil {
			return err
		}
	}

	if flags&hasErrCode != 0 {
		if pos+1 > len(data) {
			return fmt.Errorf("data too short for error code")
		}
		msg.ErrCode = compact.ErrCode(data[pos])
	}

	return nil
}

// --------------------------------------------------------------------------
// Helper Methods
// --------------------------------------------------------------------------

// sizeBytes calculates the total size needed for serialization
func (b binarySerializerImpl) sizeBytes(msg common.Message) int {
	// 1 byte for MsgType + 1 byte for flags
	size := 2

	if msg.SchemaID != 0 {
		size += 8
	}
	if msg.Payload != nil {
		size += 4 + len(msg.Payload)
	}
	if len(msg.Members) > 0 {
		size += 4 + len(msg.Members)*memberIDSize
	}
	if msg.Ok {
		size++
	}
	if msg.Err != "" {
		size += 4 + len(msg.Err)
	}
	if msg.Meta != nil {
		size += 4 + len(msg.Meta)
	}
	if msg.ErrCode != 0 {
		size++
	}

	return size
}

// putBytes writes a length prefixed byte slice at pos and returns the new position
func putBytes(dst []byte, pos int, src []byte) int {
	binary.BigEndian.PutUint32(dst[pos:pos+4], uint32(len(src)))
	pos += 4
	copy(dst[pos:pos+len(src)], src)
	return pos + len(src)
}

// getBytes reads a length prefixed byte slice at pos. The result is a copy
// (never nil) so it does not alias the transport buffer.
func getBytes(data []byte, pos int, what string) ([]byte, int, error) {
	if pos+4 > len(data) {
		return nil, pos, fmt.Errorf("data too short for %s length", what)
	}
	n := int(binary.BigEndian.Uint32(data[pos : pos+4]))
	pos += 4
	if n > len(data)-pos {
		return nil, pos, fmt.Errorf("data too short for %s data", what)
	}
	out := make([]byte, n)
	copy(out, data[pos:pos+n])
	return out, pos + n, nil
}
