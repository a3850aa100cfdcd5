// Package sim provides an in-process reference implementation of a
// Frankly bootloader device. It implements transport.Transport directly
// against a simulated flash model instead of a byte stream, so the
// device driver and CLI can be exercised deterministically without
// real hardware, per spec §8.
package sim

import (
	"hash/crc32"

	"github.com/franklyfw/franklyfw/flash"
	"github.com/franklyfw/franklyfw/transport"
	"github.com/franklyfw/franklyfw/wire"
)

// ErasedFill is the byte value simulated flash reads as before any
// write, matching flashimage.ErasedFill.
const ErasedFill = 0xFF

// Identity is the simulated device's fixed identity fields, returned by
// the DevInfo* requests.
type Identity struct {
	VID, PID, PRD            uint32
	UID1, UID2, UID3, UID4   uint32
	BootloaderVersion        uint32
	BootloaderCRC            uint32
}

// Config configures a simulated Device.
type Config struct {
	Identity Identity
	Desc     flash.Desc

	// Node is the bus address this device answers to in addressed mode.
	Node uint8

	// Unresponsive, when set, makes the device silently drop every
	// frame; used to exercise ComNoResponse handling.
	Unresponsive bool
}

// Device is a simulated Frankly bootloader target: flash storage, a
// single page buffer, and the request/response state machine a real
// device implements in firmware.
type Device struct {
	cfg Config

	pages  map[uint32][]byte
	buffer []byte
}

// NewDevice constructs a simulated device from cfg.
func NewDevice(cfg Config) *Device {
	return &Device{
		cfg:    cfg,
		pages:  make(map[uint32][]byte),
		buffer: make([]byte, cfg.Desc.PageSize),
	}
}

func (d *Device) pageBytes(idx uint32) []byte {
	p, ok := d.pages[idx]
	if !ok {
		p = make([]byte, d.cfg.Desc.PageSize)
		for i := range p {
			p[i] = ErasedFill
		}
		d.pages[idx] = p
	}
	return p
}

// applicationCRC computes CRC-32/ISO-HDLC over every application page,
// in ascending order; pages never written read as all-ErasedFill per
// the simulator's default-fill policy.
func (d *Device) applicationCRC() uint32 {
	h := crc32.NewIEEE()
	for _, idx := range d.cfg.Desc.ApplicationPages() {
		h.Write(d.pageBytes(idx))
	}
	return h.Sum32()
}

// handle computes the response to a single request frame, modeling the
// firmware's request dispatch.
func (d *Device) handle(f wire.Frame) wire.Frame {
	ok := func(data uint32) wire.Frame {
		return wire.Frame{Request: f.Request, Result: wire.ResultOk, PacketID: f.PacketID, Data: data}
	}
	matched := func(data uint32) wire.Frame {
		return wire.Frame{Request: f.Request, Result: wire.ResultOkValueMatch, PacketID: f.PacketID, Data: data}
	}
	mismatch := func(data uint32) wire.Frame {
		return wire.Frame{Request: f.Request, Result: wire.ResultErrValueMismatch, PacketID: f.PacketID, Data: data}
	}

	switch f.Request {
	case wire.ReqPing:
		return ok(0)
	case wire.ReqResetDevice, wire.ReqStartApp:
		return ok(0)

	case wire.ReqDevInfoBootloaderVersion:
		return ok(d.cfg.Identity.BootloaderVersion)
	case wire.ReqDevInfoBootloaderCRC:
		return ok(d.cfg.Identity.BootloaderCRC)
	case wire.ReqDevInfoVID:
		return ok(d.cfg.Identity.VID)
	case wire.ReqDevInfoPID:
		return ok(d.cfg.Identity.PID)
	case wire.ReqDevInfoPRD:
		return ok(d.cfg.Identity.PRD)
	case wire.ReqDevInfoUID1:
		return ok(d.cfg.Identity.UID1)
	case wire.ReqDevInfoUID2:
		return ok(d.cfg.Identity.UID2)
	case wire.ReqDevInfoUID3:
		return ok(d.cfg.Identity.UID3)
	case wire.ReqDevInfoUID4:
		return ok(d.cfg.Identity.UID4)

	case wire.ReqFlashInfoStartAddr:
		return ok(d.cfg.Desc.StartAddr)
	case wire.ReqFlashInfoPageSize:
		return ok(d.cfg.Desc.PageSize)
	case wire.ReqFlashInfoNumPages:
		return ok(d.cfg.Desc.PageCount)

	case wire.ReqAppInfoPageIdx:
		return ok(d.cfg.Desc.AppStartPage)
	case wire.ReqAppInfoCRCCalc:
		return ok(d.applicationCRC())

	case wire.ReqPageBufferClear:
		for i := range d.buffer {
			d.buffer[i] = ErasedFill
		}
		return ok(0)
	case wire.ReqPageBufferWriteWord:
		// The word index is not checked against earlier writes: any
		// in-range index is accepted, in any order.
		word := int(f.PacketID)
		offset := word * 4
		if offset < 0 || offset+4 > len(d.buffer) {
			return mismatch(0)
		}
		d.buffer[offset] = byte(f.Data)
		d.buffer[offset+1] = byte(f.Data >> 8)
		d.buffer[offset+2] = byte(f.Data >> 16)
		d.buffer[offset+3] = byte(f.Data >> 24)
		return ok(0)
	case wire.ReqPageBufferCalcCRC:
		crc := crc32.ChecksumIEEE(d.buffer)
		if crc == f.Data {
			return matched(crc)
		}
		return mismatch(crc)
	case wire.ReqPageBufferWriteToFlash:
		page := f.Data
		if !d.cfg.Desc.IsApplicationPage(page) {
			return mismatch(page)
		}
		dst := d.pageBytes(page)
		copy(dst, d.buffer)
		return matched(page)

	case wire.ReqFlashWriteErasePage:
		page := f.Data
		if !d.cfg.Desc.IsApplicationPage(page) {
			return mismatch(page)
		}
		p := d.pageBytes(page)
		for i := range p {
			p[i] = ErasedFill
		}
		return ok(page)
	case wire.ReqFlashWriteAppCRC:
		// Bare persist command per spec §6: no match semantics, the host
		// has already compared AppInfoCRCCalc before sending this.
		return ok(f.Data)

	default:
		return wire.Frame{Request: f.Request, Result: wire.ResultErrUnknownReq, PacketID: f.PacketID}
	}
}

// Transport is a transport.Transport backed by an in-process Device,
// standing in for a real serial or CAN link in tests and the CLI's
// "sim" transport type.
type Transport struct {
	dev  *Device
	mode transport.Mode

	pending  wire.Frame
	hasReply bool
}

// New wraps dev as a Transport.
func New(dev *Device) *Transport {
	return &Transport{dev: dev, mode: transport.Broadcast}
}

// Open is a no-op: the simulated device is already constructed and
// ready. iface and node are ignored.
func (t *Transport) Open(iface string, node *uint8) error {
	return nil
}

// Close is a no-op.
func (t *Transport) Close() error {
	return nil
}

// Send delivers a frame to the simulated device, unless the current
// mode addresses a node other than the device's own, or the device is
// configured unresponsive.
func (t *Transport) Send(f wire.Frame) error {
	t.hasReply = false
	if nodeID, ok := t.mode.Node(); ok && nodeID != t.dev.cfg.Node {
		return nil
	}
	if t.dev.cfg.Unresponsive {
		return nil
	}
	t.pending = t.dev.handle(f)
	t.hasReply = true
	return nil
}

// Recv returns the simulated device's response to the last Send, or
// transport.ErrNoResponse if nothing answered.
func (t *Transport) Recv() (wire.Frame, error) {
	if !t.hasReply {
		return wire.Frame{}, transport.ErrNoResponse
	}
	t.hasReply = false
	return t.pending, nil
}

// ScanNetwork pings the device and reports its node id if it answers.
func (t *Transport) ScanNetwork() ([]uint8, error) {
	if t.dev.cfg.Unresponsive {
		return nil, nil
	}
	return []uint8{t.dev.cfg.Node}, nil
}

// SetMode selects broadcast or addressed delivery.
func (t *Transport) SetMode(m transport.Mode) error {
	t.mode = m
	return nil
}
