// Package flashimage partitions a parsed Intel HEX byte map into
// page-sized, word-aligned, default-filled flash pages ready for
// programming, per spec §4.9.
package flashimage
