package sim

import (
	"testing"

	"github.com/franklyfw/franklyfw/flash"
	"github.com/franklyfw/franklyfw/transport"
	"github.com/franklyfw/franklyfw/wire"
)

func testConfig(t *testing.T) Config {
	t.Helper()
	desc, err := flash.NewDesc(0x08000000, 1024, 64, 8)
	if err != nil {
		t.Fatalf("flash.NewDesc() error = %v", err)
	}
	return Config{
		Identity: Identity{VID: 0x1234, PID: 0x5678, PRD: 1, UID1: 0xAA},
		Desc:     desc,
		Node:     3,
	}
}

func TestPingRoundTrip(t *testing.T) {
	tr := New(NewDevice(testConfig(t)))
	if err := tr.Send(wire.NewRequest(wire.ReqPing, 0, 0)); err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	resp, err := tr.Recv()
	if err != nil {
		t.Fatalf("Recv() error = %v", err)
	}
	if resp.Result != wire.ResultOk {
		t.Errorf("Result = %v, want ResultOk", resp.Result)
	}
}

func TestDevInfoReturnsConfiguredIdentity(t *testing.T) {
	tr := New(NewDevice(testConfig(t)))
	_ = tr.Send(wire.NewRequest(wire.ReqDevInfoVID, 0, 0))
	resp, err := tr.Recv()
	if err != nil {
		t.Fatalf("Recv() error = %v", err)
	}
	if resp.Data != 0x1234 {
		t.Errorf("Data = 0x%X, want 0x1234", resp.Data)
	}
}

func TestUnresponsiveDeviceYieldsNoResponse(t *testing.T) {
	cfg := testConfig(t)
	cfg.Unresponsive = true
	tr := New(NewDevice(cfg))
	_ = tr.Send(wire.NewRequest(wire.ReqPing, 0, 0))
	_, err := tr.Recv()
	if err != transport.ErrNoResponse {
		t.Fatalf("Recv() error = %v, want transport.ErrNoResponse", err)
	}

	ids, err := tr.ScanNetwork()
	if err != nil {
		t.Fatalf("ScanNetwork() error = %v", err)
	}
	if len(ids) != 0 {
		t.Errorf("ScanNetwork() = %v, want empty", ids)
	}
}

func TestAddressedModeIgnoresOtherNodes(t *testing.T) {
	tr := New(NewDevice(testConfig(t)))
	if err := tr.SetMode(transport.NodeMode(9)); err != nil {
		t.Fatalf("SetMode() error = %v", err)
	}
	_ = tr.Send(wire.NewRequest(wire.ReqPing, 0, 0))
	_, err := tr.Recv()
	if err != transport.ErrNoResponse {
		t.Fatalf("Recv() error = %v, want transport.ErrNoResponse for wrong node", err)
	}
}

func TestPageBufferWriteCRCAndCommit(t *testing.T) {
	tr := New(NewDevice(testConfig(t)))

	_ = tr.Send(wire.NewRequest(wire.ReqPageBufferClear, 0, 0))
	if _, err := tr.Recv(); err != nil {
		t.Fatalf("clear: Recv() error = %v", err)
	}

	_ = tr.Send(wire.NewRequest(wire.ReqPageBufferWriteWord, 0, 0xDEADBEEF))
	if _, err := tr.Recv(); err != nil {
		t.Fatalf("write word: Recv() error = %v", err)
	}

	_ = tr.Send(wire.NewRequest(wire.ReqPageBufferCalcCRC, 0, 0))
	crcResp, err := tr.Recv()
	if err != nil {
		t.Fatalf("calc crc: Recv() error = %v", err)
	}
	if crcResp.Data == 0 {
		t.Errorf("page buffer CRC = 0, want nonzero after a non-fill write")
	}

	_ = tr.Send(wire.NewRequest(wire.ReqPageBufferWriteToFlash, 0, 8))
	commitResp, err := tr.Recv()
	if err != nil {
		t.Fatalf("commit: Recv() error = %v", err)
	}
	if commitResp.Result != wire.ResultOkValueMatch {
		t.Errorf("commit Result = %v, want ResultOkValueMatch", commitResp.Result)
	}
}

func TestWriteToFlashRejectsBootloaderPage(t *testing.T) {
	tr := New(NewDevice(testConfig(t)))
	_ = tr.Send(wire.NewRequest(wire.ReqPageBufferWriteToFlash, 0, 2))
	resp, err := tr.Recv()
	if err != nil {
		t.Fatalf("Recv() error = %v", err)
	}
	if resp.Result != wire.ResultErrValueMismatch {
		t.Errorf("Result = %v, want ResultErrValueMismatch for bootloader-section page", resp.Result)
	}
}

func TestUnknownRequestReturnsErrUnknownReq(t *testing.T) {
	tr := New(NewDevice(testConfig(t)))
	_ = tr.Send(wire.NewRequest(0xFFFF, 0, 0))
	resp, err := tr.Recv()
	if err != nil {
		t.Fatalf("Recv() error = %v", err)
	}
	if resp.Result != wire.ResultErrUnknownReq {
		t.Errorf("Result = %v, want ResultErrUnknownReq", resp.Result)
	}
}
