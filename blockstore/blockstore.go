// Package blockstore implements the three named trees and their typed
// read/write operations (spec §4.3): a content-addressed block index, a
// height-ordering index, and a difficulty/ranking index, kept mutually
// consistent by the caller's batches (spec §3 invariants) and the
// overlay (package overlay) for transitions that must touch more than
// one tree atomically.
package blockstore

import (
	"go.uber.org/zap"

	"github.com/rubinchain/blockcore/blockerrs"
	"github.com/rubinchain/blockcore/chain"
	"github.com/rubinchain/blockcore/codec"
	"github.com/rubinchain/blockcore/kv"
	"github.com/rubinchain/blockcore/obslog"
	"github.com/rubinchain/blockcore/obsmetrics"
)

// Tree names are fixed byte-string constants (spec §6).
var (
	TreeBlocks     = []byte("_blocks")
	TreeOrder      = []byte("_block_order")
	TreeDifficulty = []byte("_block_difficulty")
)

// BlockStore holds handles to the three named trees.
type BlockStore struct {
	backend    kv.Backend
	blocks     kv.Tree
	order      kv.Tree
	difficulty kv.Tree
	log        *zap.SugaredLogger
	metrics    *obsmetrics.Collectors
}

// Open opens or creates the three trees on backend. Idempotent, mirroring
// the teacher's Open(datadir, ...) which recreates its buckets with
// CreateBucketIfNotExists on every call. A nil logger is replaced with a
// no-op one so logging is never a required dependency for callers; a nil
// metrics collector disables instrumentation entirely, so the core has
// no mandatory metrics dependency either.
func Open(backend kv.Backend, logger *zap.SugaredLogger, metrics *obsmetrics.Collectors) (*BlockStore, error) {
	if logger == nil {
		logger = obslog.Noop()
	}
	blocks, err := backend.OpenTree(TreeBlocks)
	if err != nil {
		return nil, blockerrs.Io("open blocks tree", err)
	}
	order, err := backend.OpenTree(TreeOrder)
	if err != nil {
		return nil, blockerrs.Io("open order tree", err)
	}
	difficulty, err := backend.OpenTree(TreeDifficulty)
	if err != nil {
		return nil, blockerrs.Io("open difficulty tree", err)
	}
	logger.Debugw("blockstore opened")
	return &BlockStore{backend: backend, blocks: blocks, order: order, difficulty: difficulty, log: logger, metrics: metrics}, nil
}

// Insert writes hash(block) -> encode(block) for each block as one
// atomic batch, overwriting any existing entry at that key. Returns the
// hashes in input order.
func (s *BlockStore) Insert(blocks []chain.Block) ([]chain.HeaderHash, error) {
	hashes := make([]chain.HeaderHash, len(blocks))
	ops := make([]kv.Op, len(blocks))
	for i, b := range blocks {
		hashes[i] = b.HeaderHash
		ops[i] = kv.Op{Key: b.HeaderHash.Bytes(), Value: codec.EncodeBlock(b)}
	}
	if err := s.backend.Apply(kv.Batch{Tree: string(TreeBlocks), Ops: ops}); err != nil {
		return nil, blockerrs.Io("insert blocks", err)
	}
	s.log.Debugw("inserted blocks", "count", len(blocks))
	if s.metrics != nil {
		if n, err := s.blocks.Len(); err == nil {
			s.metrics.BlockCount.Set(float64(n))
		}
	}
	return hashes, nil
}

// InsertOrder writes height_be -> hash_bytes for each pair, atomically.
// Caller-supplied lengths must match.
func (s *BlockStore) InsertOrder(heights []uint64, hashes []chain.HeaderHash) error {
	if len(heights) != len(hashes) {
		return blockerrs.ErrInvalidInputLengths
	}
	ops := make([]kv.Op, len(heights))
	var maxHeight uint64
	for i, h := range heights {
		ops[i] = kv.Op{Key: codec.OrderKey(h), Value: codec.OrderValue(hashes[i])}
		if h > maxHeight {
			maxHeight = h
		}
	}
	if err := s.backend.Apply(kv.Batch{Tree: string(TreeOrder), Ops: ops}); err != nil {
		return blockerrs.Io("insert order", err)
	}
	if s.metrics != nil && len(heights) > 0 {
		s.metrics.OrderHeight.Set(float64(maxHeight))
	}
	return nil
}

// InsertDifficulty writes height_be -> encode(record) for each record,
// atomically.
func (s *BlockStore) InsertDifficulty(records []chain.BlockDifficulty) error {
	ops := make([]kv.Op, len(records))
	for i, r := range records {
		ops[i] = kv.Op{Key: codec.OrderKey(r.Height), Value: codec.EncodeBlockDifficulty(r)}
	}
	if err := s.backend.Apply(kv.Batch{Tree: string(TreeDifficulty), Ops: ops}); err != nil {
		return blockerrs.Io("insert difficulty", err)
	}
	return nil
}

// Contains reports membership in the block tree.
func (s *BlockStore) Contains(hash chain.HeaderHash) (bool, error) {
	ok, err := s.blocks.Contains(hash.Bytes())
	if err != nil {
		return false, blockerrs.Io("contains block", err)
	}
	return ok, nil
}

// ContainsOrder reports membership in the order tree.
func (s *BlockStore) ContainsOrder(height uint64) (bool, error) {
	ok, err := s.order.Contains(codec.OrderKey(height))
	if err != nil {
		return false, blockerrs.Io("contains order", err)
	}
	return ok, nil
}

// Get looks up each hash in the block tree, preserving input order. When
// strict is false, a missing entry yields nil at that position; when
// strict is true, the first missing hash fails the whole call.
func (s *BlockStore) Get(hashes []chain.HeaderHash, strict bool) ([]*chain.Block, error) {
	out := make([]*chain.Block, len(hashes))
	for i, h := range hashes {
		raw, ok, err := s.blocks.Get(h.Bytes())
		if err != nil {
			return nil, blockerrs.Io("get block", err)
		}
		if !ok {
			if strict {
				return nil, blockerrs.NewBlockNotFound(h)
			}
			continue
		}
		b, err := codec.DecodeBlock(raw)
		if err != nil {
			return nil, blockerrs.Deserialize("block", err)
		}
		out[i] = &b
	}
	return out, nil
}

// GetOrder looks up each height in the order tree, preserving input
// order, with the same strict/non-strict semantics as Get.
func (s *BlockStore) GetOrder(heights []uint64, strict bool) ([]*chain.HeaderHash, error) {
	out := make([]*chain.HeaderHash, len(heights))
	for i, h := range heights {
		raw, ok, err := s.order.Get(codec.OrderKey(h))
		if err != nil {
			return nil, blockerrs.Io("get order", err)
		}
		if !ok {
			if strict {
				return nil, blockerrs.NewBlockNumberNotFound(h)
			}
			continue
		}
		hash, err := codec.DecodeOrderValue(raw)
		if err != nil {
			return nil, blockerrs.Deserialize("order value", err)
		}
		out[i] = &hash
	}
	return out, nil
}

// GetDifficulty looks up each height in the difficulty tree, preserving
// input order, with the same strict/non-strict semantics as Get.
func (s *BlockStore) GetDifficulty(heights []uint64, strict bool) ([]*chain.BlockDifficulty, error) {
	out := make([]*chain.BlockDifficulty, len(heights))
	for i, h := range heights {
		raw, ok, err := s.difficulty.Get(codec.OrderKey(h))
		if err != nil {
			return nil, blockerrs.Io("get difficulty", err)
		}
		if !ok {
			if strict {
				return nil, blockerrs.NewBlockDifficultyNotFound(h)
			}
			continue
		}
		d, err := codec.DecodeBlockDifficulty(raw)
		if err != nil {
			return nil, blockerrs.Deserialize("block_difficulty", err)
		}
		out[i] = &d
	}
	return out, nil
}

// GetAll returns every block in the tree. Diagnostic convenience only:
// unbounded in memory, not for production hot paths (spec §9).
func (s *BlockStore) GetAll() ([]chain.Block, error) {
	var out []chain.Block
	err := s.blocks.ForEach(func(_, v []byte) (bool, error) {
		b, err := codec.DecodeBlock(v)
		if err != nil {
			return false, blockerrs.Deserialize("block", err)
		}
		out = append(out, b)
		return true, nil
	})
	if err != nil {
		return nil, blockerrs.Io("get all blocks", err)
	}
	return out, nil
}

// GetAllOrder returns every order entry in the tree, in ascending height
// order. Diagnostic convenience only (spec §9).
func (s *BlockStore) GetAllOrder() ([]chain.BlockOrder, error) {
	var out []chain.BlockOrder
	err := s.order.ForEach(func(k, v []byte) (bool, error) {
		height, err := codec.DecodeOrderKey(k)
		if err != nil {
			return false, blockerrs.Deserialize("order key", err)
		}
		hash, err := codec.DecodeOrderValue(v)
		if err != nil {
			return false, blockerrs.Deserialize("order value", err)
		}
		out = append(out, chain.BlockOrder{Height: height, HeaderHash: hash})
		return true, nil
	})
	if err != nil {
		return nil, blockerrs.Io("get all order", err)
	}
	return out, nil
}

// GetAllDifficulty returns every difficulty record in the tree, in
// ascending height order. Diagnostic convenience only (spec §9).
func (s *BlockStore) GetAllDifficulty() ([]chain.BlockDifficulty, error) {
	var out []chain.BlockDifficulty
	err := s.difficulty.ForEach(func(_, v []byte) (bool, error) {
		d, err := codec.DecodeBlockDifficulty(v)
		if err != nil {
			return false, blockerrs.Deserialize("block_difficulty", err)
		}
		out = append(out, d)
		return true, nil
	})
	if err != nil {
		return nil, blockerrs.Io("get all difficulty", err)
	}
	return out, nil
}

// GetFirst returns the lowest (height, hash) in the order tree. Fails
// with a typed not-found error when the tree is empty — this
// implementation always uses the typed-error behavior, never the
// source's unconditional-unwrap panic (spec §9 Open Question).
func (s *BlockStore) GetFirst() (uint64, chain.HeaderHash, error) {
	entry, ok, err := s.order.First()
	if err != nil {
		return 0, chain.HeaderHash{}, blockerrs.Io("get first order", err)
	}
	if !ok {
		return 0, chain.HeaderHash{}, blockerrs.NewBlockNumberNotFound(0)
	}
	height, err := codec.DecodeOrderKey(entry.Key)
	if err != nil {
		return 0, chain.HeaderHash{}, blockerrs.Deserialize("order key", err)
	}
	hash, err := codec.DecodeOrderValue(entry.Value)
	if err != nil {
		return 0, chain.HeaderHash{}, blockerrs.Deserialize("order value", err)
	}
	return height, hash, nil
}

// GetLast returns the highest (height, hash) in the order tree. Fails
// with a typed not-found error when the tree is empty.
func (s *BlockStore) GetLast() (uint64, chain.HeaderHash, error) {
	entry, ok, err := s.order.Last()
	if err != nil {
		return 0, chain.HeaderHash{}, blockerrs.Io("get last order", err)
	}
	if !ok {
		return 0, chain.HeaderHash{}, blockerrs.NewBlockNumberNotFound(0)
	}
	height, err := codec.DecodeOrderKey(entry.Key)
	if err != nil {
		return 0, chain.HeaderHash{}, blockerrs.Deserialize("order key", err)
	}
	hash, err := codec.DecodeOrderValue(entry.Value)
	if err != nil {
		return 0, chain.HeaderHash{}, blockerrs.Deserialize("order value", err)
	}
	return height, hash, nil
}

// GetAfter returns up to n+1 hashes at heights strictly greater than h,
// in ascending height order (n = 0 still yields the hash at h+1). It
// walks the get_gt cursor forward, feeding each returned height back in
// as the next cursor key, and stops as soon as the returned height is
// not the cursor plus one, so it stops at the first gap rather than
// skipping over one (spec §4.3 algorithmic
// notes; the walk itself is the same fork-point/path style the teacher's
// node/store/reorg.go uses to follow an index chain one step at a
// time, generalized from walking PrevHash links to walking the get_gt
// cursor).
func (s *BlockStore) GetAfter(h uint64, n uint64) ([]chain.HeaderHash, error) {
	// The range is heights h+1 .. h+n+1 inclusive (spec §8: "returns
	// heights h+1, h+2, ..., min(h+n+1, last)"), i.e. up to n+1 hashes.
	limit := n + 1
	out := make([]chain.HeaderHash, 0, limit)
	cursor := h
	for uint64(len(out)) < limit {
		entry, ok, err := s.order.GetGT(codec.OrderKey(cursor))
		if err != nil {
			return nil, blockerrs.Io("get_after", err)
		}
		if !ok {
			break
		}
		height, err := codec.DecodeOrderKey(entry.Key)
		if err != nil {
			return nil, blockerrs.Deserialize("order key", err)
		}
		if height != cursor+1 {
			break
		}
		hash, err := codec.DecodeOrderValue(entry.Value)
		if err != nil {
			return nil, blockerrs.Deserialize("order value", err)
		}
		out = append(out, hash)
		cursor = height
	}
	return out, nil
}

// GetLastDifficulty returns the last difficulty record, or nil if the
// difficulty tree is empty.
func (s *BlockStore) GetLastDifficulty() (*chain.BlockDifficulty, error) {
	entry, ok, err := s.difficulty.Last()
	if err != nil {
		return nil, blockerrs.Io("get last difficulty", err)
	}
	if !ok {
		return nil, nil
	}
	d, err := codec.DecodeBlockDifficulty(entry.Value)
	if err != nil {
		return nil, blockerrs.Deserialize("block_difficulty", err)
	}
	return &d, nil
}

// GetLastNDifficulties returns the last n difficulty records in
// ascending height order: built by reverse-iterating and reversing the
// assembly, so callers receive ascending heights regardless of the
// backend's native iteration direction (spec §4.3).
func (s *BlockStore) GetLastNDifficulties(n uint64) ([]chain.BlockDifficulty, error) {
	collected := make([]chain.BlockDifficulty, 0, n)
	err := s.difficulty.ForEachReverse(func(_, v []byte) (bool, error) {
		if uint64(len(collected)) >= n {
			return false, nil
		}
		d, err := codec.DecodeBlockDifficulty(v)
		if err != nil {
			return false, blockerrs.Deserialize("block_difficulty", err)
		}
		collected = append(collected, d)
		return true, nil
	})
	if err != nil {
		return nil, blockerrs.Io("get last n difficulties", err)
	}
	for i, j := 0, len(collected)-1; i < j; i, j = i+1, j-1 {
		collected[i], collected[j] = collected[j], collected[i]
	}
	return collected, nil
}

// Len returns the number of entries in the order tree, the authoritative
// height registry.
func (s *BlockStore) Len() (int, error) {
	n, err := s.order.Len()
	if err != nil {
		return 0, blockerrs.Io("len", err)
	}
	return n, nil
}

// IsEmpty reports whether the order tree has zero entries.
func (s *BlockStore) IsEmpty() (bool, error) {
	empty, err := s.order.IsEmpty()
	if err != nil {
		return false, blockerrs.Io("is_empty", err)
	}
	return empty, nil
}
