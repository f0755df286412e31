package codec

import (
	"encoding/binary"
	"fmt"

	"github.com/rubinchain/blockcore/chain"
)

// EncodeBlock serializes a Block as:
//
//	header_hash (32) || varint(n) || n * tx_hash (32) || signature
//
// matching the teacher's field-concatenation codec style (node/store's
// encodeIndexEntry / utxo_encoding.go) generalized to this record's
// fields (spec §4.1).
func EncodeBlock(b chain.Block) []byte {
	out := make([]byte, 0, 32+binary.MaxVarintLen64+len(b.TxHashes)*32+len(b.Signature))
	out = append(out, b.HeaderHash[:]...)
	out = PutUvarint(out, uint64(len(b.TxHashes)))
	for _, h := range b.TxHashes {
		out = append(out, h[:]...)
	}
	out = append(out, b.Signature...)
	return out
}

// DecodeBlock is the inverse of EncodeBlock. The signature is whatever
// bytes remain after the tx-hash sequence, since it has no length prefix
// of its own (it runs to the end of the record).
func DecodeBlock(b []byte) (chain.Block, error) {
	if len(b) < 32 {
		return chain.Block{}, fmt.Errorf("codec: block: truncated header hash")
	}
	var out chain.Block
	copy(out.HeaderHash[:], b[:32])
	off := 32

	n, nn, err := Uvarint(b[off:])
	if err != nil {
		return chain.Block{}, fmt.Errorf("codec: block: tx count: %w", err)
	}
	off += nn

	if n > 0 {
		out.TxHashes = make([][32]byte, n)
	}
	for i := uint64(0); i < n; i++ {
		if off+32 > len(b) {
			return chain.Block{}, fmt.Errorf("codec: block: truncated tx_hashes")
		}
		copy(out.TxHashes[i][:], b[off:off+32])
		off += 32
	}
	out.Signature = chain.Signature(append([]byte(nil), b[off:]...))
	return out, nil
}
