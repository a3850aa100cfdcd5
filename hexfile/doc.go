// Package hexfile parses Intel HEX firmware images into an address-to-byte
// mapping, per spec §4.8.
//
// # Record Format
//
// Each line is a colon-prefixed, hex-encoded record:
//
//	:LL AAAA TT DD... CC
//
// Where LL is the data byte count, AAAA the 16-bit offset address, TT the
// record type, DD the data bytes, and CC the checksum — the two's
// complement of the sum of all preceding bytes on the line.
//
// Record types 00 (data), 01 (end-of-file), and 04 (extended linear
// address) are recognized; any other type is rejected. A duplicate
// address across records is rejected with the offending line number,
// per spec §9's resolution of the source's open question on this point.
package hexfile
