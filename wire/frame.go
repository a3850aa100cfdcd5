package wire

import (
	"encoding/binary"
	"fmt"
)

// Size is the fixed length in bytes of every frame on the wire.
const Size = 8

// Frame is the 8-byte request/response unit of the Frankly wire protocol.
type Frame struct {
	// Request is the 16-bit command identifier.
	Request uint16

	// Result is ResultPending on outgoing frames, or one of the Result*
	// status codes on incoming frames.
	Result uint8

	// PacketID is a request/response correlator, and for multi-word
	// transfers (PageBufferWriteWord) doubles as the word index.
	PacketID uint8

	// Data is the 32-bit payload; interpretation depends on Request.
	Data uint32
}

// Encode serializes the frame to its 8-byte wire representation.
func (f Frame) Encode() [Size]byte {
	var buf [Size]byte
	binary.LittleEndian.PutUint16(buf[0:2], f.Request)
	buf[2] = f.Result
	buf[3] = f.PacketID
	binary.LittleEndian.PutUint32(buf[4:8], f.Data)
	return buf
}

// Decode parses an 8-byte wire representation into a Frame.
// The only validation performed is length; semantic validation (result
// codes, request/packet_id correlation) belongs to the device driver.
func Decode(buf []byte) (Frame, error) {
	if len(buf) != Size {
		return Frame{}, fmt.Errorf("wire: frame must be %d bytes, got %d", Size, len(buf))
	}
	return Frame{
		Request:  binary.LittleEndian.Uint16(buf[0:2]),
		Result:   buf[2],
		PacketID: buf[3],
		Data:     binary.LittleEndian.Uint32(buf[4:8]),
	}, nil
}

// NewRequest builds a request frame with Result set to the pending sentinel.
func NewRequest(req uint16, packetID uint8, data uint32) Frame {
	return Frame{Request: req, Result: ResultPending, PacketID: packetID, Data: data}
}
