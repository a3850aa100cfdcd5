// Package can implements the transport.Transport contract over a CAN
// bus with multiple Frankly nodes addressed per spec §4.4/§6: a base
// arbitration id B (default 0x780) identifies the bus-wide broadcast
// pair, and node n's request/response ids are derived as
// B + (n<<1) for requests and R(n) = B + (n<<1) + 1 for responses.
package can

import (
	"context"
	"time"

	"github.com/brutella/can"
	"github.com/pkg/errors"

	"github.com/franklyfw/franklyfw/transport"
	"github.com/franklyfw/franklyfw/wire"
)

// DefaultBaseID is the arbitration id a Frankly bus uses for broadcast
// traffic when no override is configured.
const DefaultBaseID = 0x780

// DefaultRecvTimeout bounds how long Recv waits for a frame.
const DefaultRecvTimeout = 2 * time.Second

// DefaultScanWindow bounds how long ScanNetwork waits for responses to
// a broadcast ping.
const DefaultScanWindow = 500 * time.Millisecond

// requestID returns the arbitration id a node (or the bus, for
// broadcast) expects requests on.
func requestID(base uint32, node uint8) uint32 {
	return base + uint32(node)<<1
}

// responseID returns the arbitration id a node replies on: R(n) =
// B + (n<<1) + 1, always odd, per spec §4.4/§6.
func responseID(base uint32, node uint8) uint32 {
	return base + uint32(node)<<1 + 1
}

// Transport is a CAN-bus backed transport.Transport. One Transport
// instance addresses one bus; SetMode selects which node(s) its
// Send/Recv calls target.
type Transport struct {
	baseID uint32
	bus    *can.Bus

	mode transport.Mode

	frames chan can.Frame
}

// Option configures a Transport before Open.
type Option func(*Transport)

// WithBaseID overrides DefaultBaseID.
func WithBaseID(id uint32) Option {
	return func(t *Transport) { t.baseID = id }
}

// New constructs a CAN Transport. Call Open before use.
func New(opts ...Option) *Transport {
	t := &Transport{baseID: DefaultBaseID, mode: transport.Broadcast}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Open attaches to the named CAN interface (e.g. "can0"). node, when
// non-nil, sets the transport's initial addressed mode.
func (t *Transport) Open(iface string, node *uint8) error {
	bus, err := can.NewBusForInterfaceWithName(iface)
	if err != nil {
		return errors.Wrapf(err, "can: open %s", iface)
	}
	t.bus = bus
	t.frames = make(chan can.Frame, 16)
	bus.SubscribeFunc(func(f can.Frame) {
		select {
		case t.frames <- f:
		default:
			// Drop on a full buffer rather than block the bus callback.
		}
	})
	go func() {
		_ = bus.ConnectAndPublish()
	}()

	if node != nil {
		t.mode = transport.NodeMode(*node)
	}
	return nil
}

// Close detaches from the bus.
func (t *Transport) Close() error {
	if t.bus == nil {
		return nil
	}
	return t.bus.Disconnect()
}

// Send transmits a frame addressed per the transport's current mode.
// Broadcast mode uses the bus-wide request id; node mode uses that
// node's request id.
func (t *Transport) Send(f wire.Frame) error {
	id := requestID(t.baseID, 0)
	if nodeID, ok := t.mode.Node(); ok {
		id = requestID(t.baseID, nodeID)
	}
	buf := f.Encode()
	frame := can.Frame{ID: id, Length: uint8(wire.Size), Data: [8]byte(buf)}
	if err := t.bus.Publish(frame); err != nil {
		return errors.Wrap(err, "can: publish")
	}
	return nil
}

// Recv waits for a frame matching the transport's current mode's
// response id. In broadcast mode it accepts a response from any node.
func (t *Transport) Recv() (wire.Frame, error) {
	ctx, cancel := context.WithTimeout(context.Background(), DefaultRecvTimeout)
	defer cancel()
	return t.recvCtx(ctx)
}

func (t *Transport) recvCtx(ctx context.Context) (wire.Frame, error) {
	wantNode, addressed := t.mode.Node()
	for {
		select {
		case <-ctx.Done():
			return wire.Frame{}, transport.ErrNoResponse
		case f := <-t.frames:
			if addressed && f.ID != responseID(t.baseID, wantNode) {
				continue
			}
			if !addressed && !isResponseID(t.baseID, f.ID) {
				continue
			}
			return wire.Decode(f.Data[:f.Length])
		}
	}
}

// isResponseID reports whether id is some node's response id on this
// bus: R(n) = B + (n<<1) + 1 for n in [0, 255], so its offset from B is
// always odd and at most 0x1FF.
func isResponseID(base, id uint32) bool {
	return id > base && id <= base+0x1FF && (id-base)%2 == 1
}

// ScanNetwork broadcasts a ping and collects every node id that answers
// within DefaultScanWindow.
func (t *Transport) ScanNetwork() ([]uint8, error) {
	prevMode := t.mode
	t.mode = transport.Broadcast
	defer func() { t.mode = prevMode }()

	if err := t.Send(wire.NewRequest(wire.ReqPing, 0, 0)); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), DefaultScanWindow)
	defer cancel()

	seen := make(map[uint8]bool)
	for {
		select {
		case <-ctx.Done():
			ids := make([]uint8, 0, len(seen))
			for id := range seen {
				ids = append(ids, id)
			}
			return ids, nil
		case f := <-t.frames:
			if !isResponseID(t.baseID, f.ID) {
				continue
			}
			node := uint8((f.ID - t.baseID - 1) >> 1)
			seen[node] = true
		}
	}
}

// SetMode selects broadcast or single-node addressing for subsequent
// Send/Recv calls.
func (t *Transport) SetMode(m transport.Mode) error {
	t.mode = m
	return nil
}
