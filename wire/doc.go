// Package wire implements the Frankly bootloader's request/response frame
// codec and the request and result code enumerations.
//
// # Frame Format
//
// Every frame on the wire is exactly 8 bytes, little-endian:
//
//	[REQUEST(2)][RESULT(1)][PACKET_ID(1)][DATA(4)]
//
// An outgoing (request) frame always carries ResultPending in the RESULT
// byte. An incoming (response) frame carries one of the Result* codes and
// echoes the REQUEST and PACKET_ID fields of the request it answers.
//
// # Usage
//
//	f := wire.Frame{Request: wire.ReqPing, Result: wire.ResultPending, PacketID: 0}
//	buf := f.Encode()
//	// ... send buf, receive response bytes into resp ...
//	got, err := wire.Decode(resp)
package wire
