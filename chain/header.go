// Package chain defines the thin, hashing-only surface the persistence
// core consumes from the out-of-scope header/transaction/consensus
// domains (spec §6): the core calls Hash() on header-bearing inputs and
// never inspects header internals.
package chain

import (
	"crypto/sha3"
	"encoding/binary"
	"encoding/hex"
)

// HeaderHash is the 32-byte content address of a block header, the
// primary key of the block tree and the canonical block identity.
type HeaderHash [32]byte

func (h HeaderHash) Bytes() []byte { return h[:] }

func (h HeaderHash) String() string { return hex.EncodeToString(h[:]) }

// Header stands in for the networking/consensus header this core never
// inspects beyond hashing it. Field layout mirrors the teacher's wire
// BlockHeader (version, parent hash, merkle root, timestamp, target,
// nonce) so the hash this package computes lines up with a real chain's
// header shape.
type Header struct {
	Version       uint32
	PrevBlockHash HeaderHash
	MerkleRoot    [32]byte
	Timestamp     uint64
	Target        [32]byte
	Nonce         uint64
}

// Bytes serializes the header for hashing: little-endian fixed-width
// fields concatenated in declaration order, matching the teacher's
// BlockHeaderBytes.
func (h Header) Bytes() []byte {
	out := make([]byte, 0, 4+32+32+8+32+8)
	var tmp4 [4]byte
	var tmp8 [8]byte

	binary.LittleEndian.PutUint32(tmp4[:], h.Version)
	out = append(out, tmp4[:]...)
	out = append(out, h.PrevBlockHash[:]...)
	out = append(out, h.MerkleRoot[:]...)
	binary.LittleEndian.PutUint64(tmp8[:], h.Timestamp)
	out = append(out, tmp8[:]...)
	out = append(out, h.Target[:]...)
	binary.LittleEndian.PutUint64(tmp8[:], h.Nonce)
	out = append(out, tmp8[:]...)
	return out
}

// Hash computes the header's content address. The core calls this and
// nothing else on a Header.
func (h Header) Hash() HeaderHash {
	return HeaderHash(sha3.Sum256(h.Bytes()))
}
