// Package codec implements the byte-deterministic encode/decode of
// persisted records (spec §4.1): same value -> same bytes on every
// platform, different values -> different bytes.
//
// Framing rules:
//   - fixed-width integers are big-endian when used as keys (for correct
//     lexicographic KV ordering) and little-endian when used as value
//     fields of a serialized record;
//   - arbitrary-precision integers are a varint length prefix followed
//     by big-endian bytes;
//   - sequences are a varint count followed by concatenated elements;
//   - structures are the concatenation of their fields in declaration
//     order.
package codec

import (
	"encoding/binary"
	"fmt"
)

// PutUvarint appends n to dst as an unsigned LEB128 varint, the
// idiomatic Go ecosystem variable-length unsigned integer (this package
// wraps encoding/binary's varint rather than hand-rolling the bit
// shifting the teacher's Bitcoin-style CompactSize does, since the spec
// only requires *a* variable-length count/length prefix, not the
// Bitcoin-specific tag scheme).
func PutUvarint(dst []byte, n uint64) []byte {
	var buf [binary.MaxVarintLen64]byte
	w := binary.PutUvarint(buf[:], n)
	return append(dst, buf[:w]...)
}

// Uvarint decodes an unsigned varint from the front of buf, returning
// the value and the number of bytes consumed.
func Uvarint(buf []byte) (uint64, int, error) {
	v, n := binary.Uvarint(buf)
	if n <= 0 {
		return 0, 0, fmt.Errorf("codec: truncated or invalid varint")
	}
	return v, n, nil
}

// PutBigBytes appends an arbitrary-precision unsigned integer (as a
// big-endian byte string, e.g. from math/big.Int.Bytes()) to dst,
// length-prefixed with a varint.
func PutBigBytes(dst []byte, b []byte) []byte {
	dst = PutUvarint(dst, uint64(len(b)))
	return append(dst, b...)
}

// BigBytes decodes one length-prefixed big-endian byte string from the
// front of buf.
func BigBytes(buf []byte) ([]byte, int, error) {
	n, nn, err := Uvarint(buf)
	if err != nil {
		return nil, 0, err
	}
	if uint64(len(buf)-nn) < n {
		return nil, 0, fmt.Errorf("codec: truncated bigint: want %d bytes, have %d", n, len(buf)-nn)
	}
	out := append([]byte{}, buf[nn:nn+int(n)]...)
	return out, nn + int(n), nil
}

// BEUint64 encodes n as an 8-byte big-endian key (used for the order and
// difficulty tree keys, per spec §6, so the backend's lexicographic byte
// ordering matches numeric ordering).
func BEUint64(n uint64) []byte {
	var out [8]byte
	binary.BigEndian.PutUint64(out[:], n)
	return out[:]
}

// DecodeBEUint64 decodes an 8-byte big-endian key back to a height.
func DecodeBEUint64(b []byte) (uint64, error) {
	if len(b) != 8 {
		return 0, fmt.Errorf("codec: big-endian u64 key must be 8 bytes, got %d", len(b))
	}
	return binary.BigEndian.Uint64(b), nil
}
