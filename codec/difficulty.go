package codec

import (
	"encoding/binary"
	"fmt"

	"github.com/rubinchain/blockcore/chain"
)

// EncodeBlockDifficulty serializes a BlockDifficulty as:
//
//	height (u64 LE) || timestamp (u64 LE) || bigint(difficulty) ||
//	bigint(cumulative_difficulty) || ranks
//
// where ranks is the concatenation of four length-prefixed big-endian
// integers in fixed order: target_rank, cumulative_targets_rank,
// hash_rank, cumulative_hashes_rank (spec §4.1).
func EncodeBlockDifficulty(d chain.BlockDifficulty) []byte {
	out := make([]byte, 0, 8+8+64)
	var tmp8 [8]byte

	binary.LittleEndian.PutUint64(tmp8[:], d.Height)
	out = append(out, tmp8[:]...)
	binary.LittleEndian.PutUint64(tmp8[:], d.Timestamp)
	out = append(out, tmp8[:]...)

	out = PutBigBytes(out, d.Difficulty)
	out = PutBigBytes(out, d.CumulativeDifficulty)
	out = PutBigBytes(out, d.Ranks.TargetRank)
	out = PutBigBytes(out, d.Ranks.CumulativeTargetsRank)
	out = PutBigBytes(out, d.Ranks.HashRank)
	out = PutBigBytes(out, d.Ranks.CumulativeHashesRank)
	return out
}

// DecodeBlockDifficulty is the inverse of EncodeBlockDifficulty.
func DecodeBlockDifficulty(b []byte) (chain.BlockDifficulty, error) {
	if len(b) < 16 {
		return chain.BlockDifficulty{}, fmt.Errorf("codec: block_difficulty: truncated fixed header")
	}
	var out chain.BlockDifficulty
	out.Height = binary.LittleEndian.Uint64(b[0:8])
	out.Timestamp = binary.LittleEndian.Uint64(b[8:16])
	off := 16

	var err error
	out.Difficulty, off, err = readBigAt(b, off, "difficulty")
	if err != nil {
		return chain.BlockDifficulty{}, err
	}
	out.CumulativeDifficulty, off, err = readBigAt(b, off, "cumulative_difficulty")
	if err != nil {
		return chain.BlockDifficulty{}, err
	}
	out.Ranks.TargetRank, off, err = readBigAt(b, off, "target_rank")
	if err != nil {
		return chain.BlockDifficulty{}, err
	}
	out.Ranks.CumulativeTargetsRank, off, err = readBigAt(b, off, "cumulative_targets_rank")
	if err != nil {
		return chain.BlockDifficulty{}, err
	}
	out.Ranks.HashRank, off, err = readBigAt(b, off, "hash_rank")
	if err != nil {
		return chain.BlockDifficulty{}, err
	}
	out.Ranks.CumulativeHashesRank, off, err = readBigAt(b, off, "cumulative_hashes_rank")
	if err != nil {
		return chain.BlockDifficulty{}, err
	}
	if off != len(b) {
		return chain.BlockDifficulty{}, fmt.Errorf("codec: block_difficulty: trailing bytes")
	}
	return out, nil
}

func readBigAt(b []byte, off int, field string) ([]byte, int, error) {
	v, n, err := BigBytes(b[off:])
	if err != nil {
		return nil, 0, fmt.Errorf("codec: block_difficulty: %s: %w", field, err)
	}
	return v, off + n, nil
}
