package device

import (
	"fmt"

	"github.com/franklyfw/franklyfw/wire"
)

// ComNoResponse indicates a request's response never arrived within the
// transport's timeout.
type ComNoResponse struct {
	Request uint16
}

func (e *ComNoResponse) Error() string {
	return fmt.Sprintf("device: no response to %s", wire.RequestName(e.Request))
}

// ComError wraps a transport-level failure (a broken link, not a
// protocol-level rejection) encountered while sending or receiving.
type ComError struct {
	Request uint16
	Err     error
}

func (e *ComError) Error() string {
	return fmt.Sprintf("device: transport error on %s: %v", wire.RequestName(e.Request), e.Err)
}

func (e *ComError) Unwrap() error {
	return e.Err
}

// ResultError indicates the device answered with a non-success result
// code, per spec §6's result byte.
type ResultError struct {
	Request uint16
	Result  uint8
}

func (e *ResultError) Error() string {
	return fmt.Sprintf("device: %s failed: %s", wire.RequestName(e.Request), wire.ResultName(e.Result))
}

// NotSupported is a ResultError specialization for ResultErrNotSupported
// and ResultErrUnknownReq, surfaced as its own type so callers can probe
// for "this device doesn't implement that operation" without switching
// on the result code.
type NotSupported struct {
	Request uint16
}

func (e *NotSupported) Error() string {
	return fmt.Sprintf("device: %s is not supported by this device", wire.RequestName(e.Request))
}

// MsgCorruption indicates a response frame echoed back a request code or
// packet id the caller did not send, meaning the link mixed up frames.
type MsgCorruption struct {
	Request      uint16
	WantPacketID uint8
	GotRequest   uint16
	GotPacketID  uint8
}

func (e *MsgCorruption) Error() string {
	return fmt.Sprintf("device: corrupted response to %s (packet_id=%d): got request=%s packet_id=%d",
		wire.RequestName(e.Request), e.WantPacketID, wire.RequestName(e.GotRequest), e.GotPacketID)
}

// Error is a general-purpose device-level failure not covered by the
// more specific error types above, e.g. a CRC mismatch between the
// image and the device's recomputed checksum.
type Error struct {
	Op  string
	Msg string
}

func (e *Error) Error() string {
	return fmt.Sprintf("device: %s: %s", e.Op, e.Msg)
}
