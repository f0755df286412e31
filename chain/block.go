package chain

// Block is the on-disk persisted unit (spec §3): it stores only hashes,
// never full header or transaction bodies. Invariant: Hash(Block) ==
// HeaderHash.
type Block struct {
	HeaderHash HeaderHash
	TxHashes   [][32]byte
	Signature  Signature
}

// BlockInfo is the richer in-memory form used before persistence: full
// header, full transaction bodies, signature. AppendTx extends both the
// transaction list and a running Merkle accumulator held in the
// BlockInfo itself, next to the header; it does not write the root into
// Header.MerkleRoot, so the header (and its hash) is unchanged by it.
type BlockInfo struct {
	Header    Header
	Txs       []Transaction
	Signature Signature
	accum     MerkleAccumulator
}

// AppendTx appends a transaction to the block and extends the Merkle
// accumulator over transaction hashes.
func (b *BlockInfo) AppendTx(tx Transaction) {
	b.Txs = append(b.Txs, tx)
	b.accum.Append(tx.Hash())
}

// MerkleRoot returns the root of the accumulator built from appended
// transactions so far.
func (b *BlockInfo) MerkleRoot() [32]byte { return b.accum.Root() }

// ToBlock converts the richer in-memory form into its on-disk Block,
// replacing transaction bodies with their hashes. hash(Block) ==
// hash(b.Header) is maintained because HeaderHash is derived from the
// same Header value, not recomputed from the (now-discarded) bodies.
func (b *BlockInfo) ToBlock() Block {
	hashes := make([][32]byte, len(b.Txs))
	for i, tx := range b.Txs {
		hashes[i] = tx.Hash()
	}
	return Block{
		HeaderHash: b.Header.Hash(),
		TxHashes:   hashes,
		Signature:  b.Signature,
	}
}

// BlockOrder is the (height, header hash) pairing persisted in the order
// tree (spec §3, BlockOrder record).
type BlockOrder struct {
	Height     uint64
	HeaderHash HeaderHash
}

// Ranks bundles the four auxiliary fork-choice scalars a BlockDifficulty
// record carries, each retained both height-local and as a cumulative
// running sum (spec §3).
type Ranks struct {
	TargetRank            []byte // arbitrary-precision unsigned integer, big-endian
	CumulativeTargetsRank []byte
	HashRank              []byte
	CumulativeHashesRank  []byte
}

// BlockDifficulty is the per-height ranking and proof-of-work state
// (spec §3). Difficulty and CumulativeDifficulty are arbitrary-precision
// unsigned integers encoded as big-endian byte strings (see package
// codec for the wire framing); Go callers that want math/big values
// should route through codec.BigFromBytes/BigToBytes.
type BlockDifficulty struct {
	Height               uint64
	Timestamp            uint64
	Difficulty           []byte
	CumulativeDifficulty []byte
	Ranks                Ranks
}

// GenesisDifficulty returns the height-0 difficulty record: all difficulties and
// ranks zero, timestamp supplied by the caller (spec §3).
func GenesisDifficulty(timestamp uint64) BlockDifficulty {
	zero := []byte{}
	return BlockDifficulty{
		Height:               0,
		Timestamp:            timestamp,
		Difficulty:           zero,
		CumulativeDifficulty: zero,
		Ranks: Ranks{
			TargetRank:            zero,
			CumulativeTargetsRank: zero,
			HashRank:              zero,
			CumulativeHashesRank:  zero,
		},
	}
}
