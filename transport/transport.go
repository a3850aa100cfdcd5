// Package transport defines the uniform transport contract that the
// serial, CAN, and simulator backends implement, per spec §4.2.
package transport

import (
	"fmt"

	"github.com/franklyfw/franklyfw/wire"
)

// Mode selects whether outbound frames address every node on the bus
// (Broadcast) or a single node (Node).
type Mode struct {
	broadcast bool
	node      uint8
}

// Broadcast is the mode in which outbound frames address every node.
var Broadcast = Mode{broadcast: true}

// NodeMode returns a mode that addresses only the given node.
func NodeMode(id uint8) Mode {
	return Mode{node: id}
}

// IsBroadcast reports whether m is the broadcast mode.
func (m Mode) IsBroadcast() bool {
	return m.broadcast
}

// Node returns the addressed node id and whether m actually addresses a
// single node (false when m is Broadcast).
func (m Mode) Node() (id uint8, ok bool) {
	return m.node, !m.broadcast
}

func (m Mode) String() string {
	if m.broadcast {
		return "broadcast"
	}
	return fmt.Sprintf("node(%d)", m.node)
}

// Transport is the uniform contract a point-to-point link (serial), a
// multi-drop bus (CAN), or an in-process simulator must satisfy.
//
// Open and Close bracket the transport's lifetime. Send/Recv exchange one
// frame at a time; Recv blocks up to a transport-defined timeout and
// returns a no-response failure if it elapses. ScanNetwork discovers
// responding node ids and must be idempotent. SetMode selects broadcast
// or addressed delivery for all subsequent Send/Recv calls.
type Transport interface {
	// Open prepares the transport for use against the named interface
	// (e.g. a serial device path or a CAN interface name). node is
	// used by transports that need to know their own identity
	// up front; it may be nil.
	Open(iface string, node *uint8) error

	// Close releases the transport's underlying resources.
	Close() error

	// Send transmits a single frame.
	Send(f wire.Frame) error

	// Recv receives a single frame, blocking up to a transport-defined
	// timeout. Returns ErrNoResponse on timeout.
	Recv() (wire.Frame, error)

	// ScanNetwork discovers responding node ids. Idempotent; must have
	// no visible effect on subsequent addressed traffic.
	ScanNetwork() ([]uint8, error)

	// SetMode selects broadcast or addressed delivery.
	SetMode(m Mode) error
}

// ErrNoResponse is returned by Recv when its timeout elapses without a
// response arriving.
var ErrNoResponse = fmt.Errorf("transport: no response")
