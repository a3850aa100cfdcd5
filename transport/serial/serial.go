// Package serial implements the transport.Transport contract over a
// point-to-point UART/USB serial endpoint, per spec §4.3.
package serial

import (
	"time"

	"github.com/pkg/errors"
	"go.bug.st/serial"

	"github.com/franklyfw/franklyfw/transport"
	"github.com/franklyfw/franklyfw/wire"
)

// DefaultBaudRate is used when no explicit rate is configured.
const DefaultBaudRate = 115200

// DefaultReadTimeout bounds how long Recv waits for a response.
const DefaultReadTimeout = 2 * time.Second

// Transport frames the 8-byte wire payload directly over the serial byte
// stream: the externally visible contract is still the plain 8-byte
// frame (spec §4.3), so no additional delimiter is applied.
type Transport struct {
	port     serial.Port
	baudRate int
	mode     transport.Mode
	haveMode bool
}

// Option configures a Transport before Open.
type Option func(*Transport)

// WithBaudRate overrides DefaultBaudRate.
func WithBaudRate(rate int) Option {
	return func(t *Transport) { t.baudRate = rate }
}

// New constructs a serial Transport. Call Open before use.
func New(opts ...Option) *Transport {
	t := &Transport{baudRate: DefaultBaudRate}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Open opens the named serial device (e.g. "/dev/ttyUSB0", "COM3"). node
// is unused: a point-to-point link has exactly one endpoint.
func (t *Transport) Open(iface string, node *uint8) error {
	mode := &serial.Mode{BaudRate: t.baudRate}
	port, err := serial.Open(iface, mode)
	if err != nil {
		return errors.Wrapf(err, "serial: open %s", iface)
	}
	if err := port.SetReadTimeout(DefaultReadTimeout); err != nil {
		_ = port.Close()
		return errors.Wrap(err, "serial: set read timeout")
	}
	t.port = port
	return nil
}

// Close releases the serial port.
func (t *Transport) Close() error {
	if t.port == nil {
		return nil
	}
	return t.port.Close()
}

// Send writes the frame's 8 bytes to the port.
func (t *Transport) Send(f wire.Frame) error {
	buf := f.Encode()
	n, err := t.port.Write(buf[:])
	if err != nil {
		return errors.Wrap(err, "serial: write")
	}
	if n != wire.Size {
		return errors.Errorf("serial: short write: wrote %d of %d bytes", n, wire.Size)
	}
	return nil
}

// Recv reads exactly 8 bytes, blocking up to the configured read
// timeout. Returns transport.ErrNoResponse on timeout.
func (t *Transport) Recv() (wire.Frame, error) {
	buf := make([]byte, wire.Size)
	total := 0
	for total < wire.Size {
		n, err := t.port.Read(buf[total:])
		if err != nil {
			return wire.Frame{}, errors.Wrap(err, "serial: read")
		}
		if n == 0 {
			// SetReadTimeout elapsed with nothing available.
			return wire.Frame{}, transport.ErrNoResponse
		}
		total += n
	}
	return wire.Decode(buf)
}

// ScanNetwork sends a ping and reports whether the single endpoint
// answered. Per spec §9, a point-to-point transport returns either the
// singleton responder or the empty set.
func (t *Transport) ScanNetwork() ([]uint8, error) {
	if err := t.Send(wire.NewRequest(wire.ReqPing, 0, 0)); err != nil {
		return nil, err
	}
	resp, err := t.Recv()
	if err == transport.ErrNoResponse {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if resp.Request != wire.ReqPing {
		return nil, nil
	}

	id, ok := t.mode.Node()
	if !ok {
		id = 0
	}
	return []uint8{id}, nil
}

// SetMode is a no-op for broadcast (there is only ever one endpoint) and
// simply records the node id for addressed mode so ScanNetwork can
// report it.
func (t *Transport) SetMode(m transport.Mode) error {
	t.mode = m
	t.haveMode = true
	return nil
}
