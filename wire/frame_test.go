package wire

import "testing"

func TestEncodeDecodeRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		in   Frame
	}{
		{
			name: "ping request",
			in:   Frame{Request: ReqPing, Result: ResultPending, PacketID: 0, Data: 0},
		},
		{
			name: "flash write word",
			in:   Frame{Request: ReqPageBufferWriteWord, Result: ResultPending, PacketID: 17, Data: 0xAABBCCDD},
		},
		{
			name: "response with high packet id",
			in:   Frame{Request: ReqFlashWriteErasePage, Result: ResultOk, PacketID: 255, Data: 8},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := tt.in.Encode()
			got, err := Decode(buf[:])
			if err != nil {
				t.Fatalf("Decode() error = %v", err)
			}
			if got != tt.in {
				t.Errorf("round trip mismatch: got %+v, want %+v", got, tt.in)
			}
		})
	}
}

func TestEncodeLittleEndian(t *testing.T) {
	f := Frame{Request: 0x0102, Result: 0x03, PacketID: 0x04, Data: 0x0A0B0C0D}
	buf := f.Encode()

	want := [Size]byte{0x02, 0x01, 0x03, 0x04, 0x0D, 0x0C, 0x0B, 0x0A}
	if buf != want {
		t.Errorf("Encode() = %02X, want %02X", buf, want)
	}
}

func TestDecodeRejectsWrongLength(t *testing.T) {
	tests := []struct {
		name string
		buf  []byte
	}{
		{name: "too short", buf: make([]byte, 7)},
		{name: "too long", buf: make([]byte, 9)},
		{name: "empty", buf: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Decode(tt.buf); err == nil {
				t.Errorf("Decode() with %d bytes should have failed", len(tt.buf))
			}
		})
	}
}

func TestNewRequestSetsPendingResult(t *testing.T) {
	f := NewRequest(ReqPing, 3, 42)
	if f.Result != ResultPending {
		t.Errorf("NewRequest().Result = 0x%02X, want ResultPending", f.Result)
	}
	if f.Request != ReqPing || f.PacketID != 3 || f.Data != 42 {
		t.Errorf("NewRequest() = %+v, unexpected fields", f)
	}
}
