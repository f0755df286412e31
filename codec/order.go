package codec

import (
	"fmt"

	"github.com/rubinchain/blockcore/chain"
)

// OrderKey encodes a height as the 8-byte big-endian order-tree key
// (spec §6): big-endian so the KV backend's lexicographic byte ordering
// yields ascending numeric order for first/last/get_gt cursors.
func OrderKey(height uint64) []byte { return BEUint64(height) }

// DecodeOrderKey is the inverse of OrderKey.
func DecodeOrderKey(key []byte) (uint64, error) { return DecodeBEUint64(key) }

// OrderValue encodes an order entry's value: the raw 32-byte header
// hash, no framing (spec §4.1).
func OrderValue(h chain.HeaderHash) []byte {
	out := make([]byte, 32)
	copy(out, h[:])
	return out
}

// DecodeOrderValue is the inverse of OrderValue.
func DecodeOrderValue(b []byte) (chain.HeaderHash, error) {
	var out chain.HeaderHash
	if len(b) != 32 {
		return out, fmt.Errorf("codec: order value must be 32 bytes, got %d", len(b))
	}
	copy(out[:], b)
	return out, nil
}
