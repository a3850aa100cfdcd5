package device

import (
	"github.com/franklyfw/franklyfw/transport"
	"github.com/franklyfw/franklyfw/wire"
)

// exchange sends a single request frame and validates its response:
// the response must echo the same request code and packet id, and
// carry a result byte the caller's wantSuccess predicate accepts.
// wantSuccess defaults to wire.IsSuccess when nil.
func (d *Device) exchange(req uint16, packetID uint8, data uint32, wantSuccess func(uint8) bool) (wire.Frame, error) {
	if wantSuccess == nil {
		wantSuccess = wire.IsSuccess
	}

	if err := d.transport.Send(wire.NewRequest(req, packetID, data)); err != nil {
		return wire.Frame{}, &ComError{Request: req, Err: err}
	}

	resp, err := d.transport.Recv()
	if err != nil {
		if err == transport.ErrNoResponse {
			return wire.Frame{}, &ComNoResponse{Request: req}
		}
		return wire.Frame{}, &ComError{Request: req, Err: err}
	}

	if resp.Request != req || resp.PacketID != packetID {
		return wire.Frame{}, &MsgCorruption{
			Request: req, WantPacketID: packetID,
			GotRequest: resp.Request, GotPacketID: resp.PacketID,
		}
	}

	switch resp.Result {
	case wire.ResultErrNotSupported, wire.ResultErrUnknownReq:
		return wire.Frame{}, &NotSupported{Request: req}
	}

	if !wantSuccess(resp.Result) {
		return wire.Frame{}, &ResultError{Request: req, Result: resp.Result}
	}

	return resp, nil
}

// constEntry reads a request's value once and caches it; used for
// identity and layout fields that never change within a session
// (device/flash info, per spec §4.6).
type constEntry struct {
	dev     *Device
	request uint16

	cached bool
	value  uint32
}

func newConstEntry(dev *Device, request uint16) *constEntry {
	return &constEntry{dev: dev, request: request}
}

// Get returns the cached value, fetching it on first use.
func (c *constEntry) Get() (uint32, error) {
	if c.cached {
		return c.value, nil
	}
	resp, err := c.dev.exchange(c.request, 0, 0, nil)
	if err != nil {
		return 0, err
	}
	c.value = resp.Data
	c.cached = true
	return c.value, nil
}

// roEntry reads a request's value fresh on every call; used for fields
// that can change over the device's lifetime (e.g. computed CRCs).
type roEntry struct {
	dev     *Device
	request uint16
}

func newROEntry(dev *Device, request uint16) *roEntry {
	return &roEntry{dev: dev, request: request}
}

// Get fetches the current value.
func (r *roEntry) Get() (uint32, error) {
	resp, err := r.dev.exchange(r.request, 0, 0, nil)
	if err != nil {
		return 0, err
	}
	return resp.Data, nil
}

// rwEntry reads and writes a request's value; used for the page buffer
// and similar stateful registers.
type rwEntry struct {
	dev     *Device
	request uint16
}

func newRWEntry(dev *Device, request uint16) *rwEntry {
	return &rwEntry{dev: dev, request: request}
}

// Get fetches the current value.
func (r *rwEntry) Get() (uint32, error) {
	resp, err := r.dev.exchange(r.request, 0, 0, nil)
	if err != nil {
		return 0, err
	}
	return resp.Data, nil
}

// Set writes value and returns whatever the device echoed back in its
// response data (a written-back value, a computed CRC, a page index —
// meaning depends on the request).
func (r *rwEntry) Set(packetID uint8, value uint32) (uint32, error) {
	resp, err := r.dev.exchange(r.request, packetID, value, nil)
	if err != nil {
		return 0, err
	}
	return resp.Data, nil
}

// SetMatch is like Set, but additionally requires the result code be
// ResultOkValueMatch rather than merely any success code; used where a
// mismatch is a meaningful outcome of its own (e.g. CRC comparisons).
func (r *rwEntry) SetMatch(packetID uint8, value uint32) (wire.Frame, error) {
	return r.dev.exchange(r.request, packetID, value, func(result uint8) bool {
		return result == wire.ResultOkValueMatch
	})
}

// cmdEntry issues a command invoked for its side effect, whose response
// carries only a status; used for PageBufferClear, ResetDevice and
// StartApp (the last two may legitimately never answer: the device can
// reset or jump to the application before replying).
type cmdEntry struct {
	dev     *Device
	request uint16
}

func newCmdEntry(dev *Device, request uint16) *cmdEntry {
	return &cmdEntry{dev: dev, request: request}
}

// Run issues the command. A ComNoResponse is treated as success by the
// caller (see Device.Reset / softOnNoResponse), not here: this method
// reports the raw outcome.
func (c *cmdEntry) Run(packetID uint8, data uint32) (wire.Frame, error) {
	return c.dev.exchange(c.request, packetID, data, nil)
}
