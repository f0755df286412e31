package chain

import "crypto/sha3"

// leafTag/nodeTag domain-separate leaf hashes from internal node hashes,
// mirroring the teacher's tagged merkle construction (merkleRootTagged)
// so two different-shaped inputs can never collide on the same digest.
const (
	merkleLeafTag byte = 0x00
	merkleNodeTag byte = 0x01
)

// MerkleAccumulator is an append-only Merkle tree over transaction
// hashes. BlockInfo.AppendTx extends it as transactions are added to a
// block in memory; the core never persists the accumulator itself, only
// the transaction hashes that feed it (spec §3, BlockInfo).
type MerkleAccumulator struct {
	leaves [][32]byte
}

// Append adds a transaction hash to the accumulator.
func (m *MerkleAccumulator) Append(txHash [32]byte) {
	m.leaves = append(m.leaves, txHash)
}

// Len returns the number of leaves appended so far.
func (m *MerkleAccumulator) Len() int { return len(m.leaves) }

// Root computes the current Merkle root. Returns the zero hash for an
// empty accumulator (an empty block has no transactions committed yet).
func (m *MerkleAccumulator) Root() [32]byte {
	if len(m.leaves) == 0 {
		return [32]byte{}
	}

	level := make([][32]byte, len(m.leaves))
	var leafPreimage [1 + 32]byte
	leafPreimage[0] = merkleLeafTag
	for i, leaf := range m.leaves {
		copy(leafPreimage[1:], leaf[:])
		level[i] = sha3.Sum256(leafPreimage[:])
	}

	var nodePreimage [1 + 32 + 32]byte
	nodePreimage[0] = merkleNodeTag
	for len(level) > 1 {
		next := make([][32]byte, 0, (len(level)+1)/2)
		for i := 0; i < len(level); {
			if i == len(level)-1 {
				// Odd promotion: carry the unpaired node forward unchanged.
				next = append(next, level[i])
				i++
				continue
			}
			copy(nodePreimage[1:33], level[i][:])
			copy(nodePreimage[33:], level[i+1][:])
			next = append(next, sha3.Sum256(nodePreimage[:]))
			i += 2
		}
		level = next
	}
	return level[0]
}
