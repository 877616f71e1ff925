package base

import (
	"encoding/binary"
	"fmt"
	"io"
	"net"
)

// Every frame starts with a fixed header:
//
//	[0:8]   shard id      (uint64, big endian)
//	[8:16]  request id    (uint64, big endian)
//	[16:20] payload size  (uint32, big endian)
//
// followed by the payload.
const frameHeaderSize = 20

// frameHeader is the decoded header of a frame
type frameHeader struct {
	shardID   uint64
	requestID uint64
	size      uint32
}

func (h frameHeader) encode(dst []byte) {
	binary.BigEndian.PutUint64(dst[0:8], h.shardID)
	binary.BigEndian.PutUint64(dst[8:16], h.requestID)
	binary.BigEndian.PutUint32(dst[16:frameHeaderSize], h.size)
}

func decodeFrameHeader(src []byte) frameHeader {
	return frameHeader{
		shardID:   binary.BigEndian.Uint64(src[0:8]),
		requestID: binary.BigEndian.Uint64(src[8:16]),
		size:      binary.BigEndian.Uint32(src[16:frameHeaderSize]),
	}
}

// FrameTooLargeError is returned for frames whose payload exceeds the limit
type FrameTooLargeError struct {
	Size  uint64
	Limit int
}

func (e *FrameTooLargeError) Error() string {
	return fmt.Sprintf("frame payload of %d bytes exceeds the limit of %d bytes", e.Size, e.Limit)
}

// writeFrame writes header and payload with a single vectored write.
// An empty payload is not handed to the connection at all.
func writeFrame(conn net.Conn, shardID uint64, requestID uint64, data []byte, limit int) error {
	if len(data) > limit {
		return &FrameTooLargeError{Size: uint64(len(data)), Limit: limit}
	}

	header := make([]byte, frameHeaderSize)
	frameHeader{shardID: shardID, requestID: requestID, size: uint32(len(data))}.encode(header)

	if len(data) == 0 {
		_, err := conn.Write(header)
		return err
	}
	buffers := net.Buffers{header, data}
	_, err := buffers.WriteTo(conn)
	return err
}

// readFrame reads one frame. The payload is read into buf when it fits,
// otherwise into a fresh slice. Payloads above limit are rejected before
// anything is allocated for them, the connection is unusable afterwards.
func readFrame(conn net.Conn, buf []byte, limit int) (uint64, uint64, []byte, error) {
	if len(buf) < frameHeaderSize {
		buf = make([]byte, frameHeaderSize)
	}
	if _, err := io.ReadFull(conn, buf[:frameHeaderSize]); err != nil {
		return 0, 0, nil, err
	}
	h := decodeFrameHeader(buf)

	if uint64(h.size) > uint64(limit) {
		return h.shardID, h.requestID, nil, &FrameTooLargeError{Size: uint64(h.size), Limit: limit}
	}
	if h.size == 0 {
		return h.shardID, h.requestID, []byte{}, nil
	}

	if len(buf) < int(h.size) {
		buf = make([]byte, h.size)
	}
	payload := buf[:h.size]
	if _, err := io.ReadFull(conn, payload); err != nil {
		return 0, 0, nil, err
	}
	return h.shardID, h.requestID, payload, nil
}
