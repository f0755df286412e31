// Package overlay implements the speculative, read-through,
// write-buffered view of the three BlockStore trees (spec §4.4): a
// per-tree in-memory buffer of pending writes, read-through to the
// backend, and an atomic commit-or-discard that either promotes every
// buffered write together or drops them all.
package overlay

import (
	"bytes"
	"sync"

	"go.uber.org/zap"

	"github.com/rubinchain/blockcore/blockerrs"
	"github.com/rubinchain/blockcore/blockstore"
	"github.com/rubinchain/blockcore/chain"
	"github.com/rubinchain/blockcore/codec"
	"github.com/rubinchain/blockcore/kv"
	"github.com/rubinchain/blockcore/obslog"
	"github.com/rubinchain/blockcore/obsmetrics"
)

// entry is a buffered write: either a value, or a tombstone recording
// that the key was deleted within this overlay.
type entry struct {
	value   []byte
	deleted bool
}

// treeBuffer is the in-memory buffer for one tree, read-through to the
// underlying kv.Tree.
type treeBuffer struct {
	name    []byte
	backend kv.Tree
	pending map[string]entry
}

func newTreeBuffer(name []byte, backend kv.Tree) *treeBuffer {
	return &treeBuffer{name: name, backend: backend, pending: make(map[string]entry)}
}

func (t *treeBuffer) get(key []byte) ([]byte, bool, error) {
	if e, ok := t.pending[string(key)]; ok {
		if e.deleted {
			return nil, false, nil
		}
		return e.value, true, nil
	}
	return t.backend.Get(key)
}

func (t *treeBuffer) put(key, value []byte) {
	t.pending[string(key)] = entry{value: value}
}

func (t *treeBuffer) del(key []byte) {
	t.pending[string(key)] = entry{deleted: true}
}

func (t *treeBuffer) discard() {
	t.pending = make(map[string]entry)
}

// pendingExtreme scans the buffer's non-tombstoned pending writes and
// returns the smallest (reverse=false) or largest (reverse=true) key,
// read-your-writes style so a staged-but-uncommitted entry can win over
// the committed store.
func (t *treeBuffer) pendingExtreme(reverse bool) (kv.KV, bool) {
	var best kv.KV
	found := false
	for k, e := range t.pending {
		if e.deleted {
			continue
		}
		key := []byte(k)
		if !found {
			best = kv.KV{Key: key, Value: e.value}
			found = true
			continue
		}
		if (!reverse && bytes.Compare(key, best.Key) < 0) || (reverse && bytes.Compare(key, best.Key) > 0) {
			best = kv.KV{Key: key, Value: e.value}
		}
	}
	return best, found
}

// backendExtreme returns the smallest (reverse=false) or largest
// (reverse=true) backend key that isn't shadowed by a pending tombstone,
// stepping past tombstoned keys in ascending/descending order.
func (t *treeBuffer) backendExtreme(reverse bool) (kv.KV, bool, error) {
	var out kv.KV
	found := false
	walk := t.backend.ForEach
	if reverse {
		walk = t.backend.ForEachReverse
	}
	err := walk(func(k, v []byte) (bool, error) {
		if e, ok := t.pending[string(k)]; ok && e.deleted {
			return true, nil
		}
		out = kv.KV{Key: append([]byte(nil), k...), Value: append([]byte(nil), v...)}
		found = true
		return false, nil
	})
	return out, found, err
}

// extreme merges pending and backend state to find the smallest
// (reverse=false) or largest (reverse=true) visible key.
func (t *treeBuffer) extreme(reverse bool) (kv.KV, bool, error) {
	pending, pendingOk := t.pendingExtreme(reverse)
	backend, backendOk, err := t.backendExtreme(reverse)
	if err != nil {
		return kv.KV{}, false, err
	}
	switch {
	case pendingOk && backendOk:
		if (!reverse && bytes.Compare(pending.Key, backend.Key) <= 0) || (reverse && bytes.Compare(pending.Key, backend.Key) >= 0) {
			return pending, true, nil
		}
		return backend, true, nil
	case pendingOk:
		return pending, true, nil
	case backendOk:
		return backend, true, nil
	default:
		return kv.KV{}, false, nil
	}
}

func (t *treeBuffer) ops() []kv.Op {
	ops := make([]kv.Op, 0, len(t.pending))
	for k, e := range t.pending {
		if e.deleted {
			ops = append(ops, kv.Op{Key: []byte(k), Delete: true})
			continue
		}
		ops = append(ops, kv.Op{Key: []byte(k), Value: e.value})
	}
	return ops
}

// Overlay is a mutex-protected handle over the three staging buffers, so
// the same overlay may be passed across call boundaries and held
// concurrently by logically related operations; all accesses through the
// overlay take the mutex (spec §4.4, §5).
type Overlay struct {
	mu         sync.Mutex
	backend    kv.Backend
	blocks     *treeBuffer
	order      *treeBuffer
	difficulty *treeBuffer
	log        *zap.SugaredLogger
	metrics    *obsmetrics.Collectors
}

// New opens an overlay over the three named trees on backend. A nil
// logger is replaced with a no-op one; a nil metrics collector disables
// instrumentation entirely.
func New(backend kv.Backend, logger *zap.SugaredLogger, metrics *obsmetrics.Collectors) (*Overlay, error) {
	if logger == nil {
		logger = obslog.Noop()
	}
	blocks, err := backend.OpenTree(blockstore.TreeBlocks)
	if err != nil {
		return nil, blockerrs.Io("open blocks tree", err)
	}
	order, err := backend.OpenTree(blockstore.TreeOrder)
	if err != nil {
		return nil, blockerrs.Io("open order tree", err)
	}
	difficulty, err := backend.OpenTree(blockstore.TreeDifficulty)
	if err != nil {
		return nil, blockerrs.Io("open difficulty tree", err)
	}
	return &Overlay{
		backend:    backend,
		blocks:     newTreeBuffer(blockstore.TreeBlocks, blocks),
		order:      newTreeBuffer(blockstore.TreeOrder, order),
		difficulty: newTreeBuffer(blockstore.TreeDifficulty, difficulty),
		log:        logger,
		metrics:    metrics,
	}, nil
}

// notePending refreshes the OverlayPending gauge to the total number of
// buffered (possibly tombstoned) entries across all three trees.
func (o *Overlay) notePending() {
	if o.metrics == nil {
		return
	}
	n := len(o.blocks.pending) + len(o.order.pending) + len(o.difficulty.pending)
	o.metrics.OverlayPending.Set(float64(n))
}

// Insert stages hash(block) -> encode(block) writes in the blocks
// buffer.
func (o *Overlay) Insert(blocks []chain.Block) ([]chain.HeaderHash, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	hashes := make([]chain.HeaderHash, len(blocks))
	for i, b := range blocks {
		hashes[i] = b.HeaderHash
		o.blocks.put(b.HeaderHash.Bytes(), codec.EncodeBlock(b))
	}
	o.notePending()
	return hashes, nil
}

// InsertOrder stages height_be -> hash_bytes writes. Fails immediately
// with InvalidInputLengths if the slices don't line up, mutating
// nothing.
func (o *Overlay) InsertOrder(heights []uint64, hashes []chain.HeaderHash) error {
	if len(heights) != len(hashes) {
		return blockerrs.ErrInvalidInputLengths
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	for i, h := range heights {
		o.order.put(codec.OrderKey(h), codec.OrderValue(hashes[i]))
	}
	o.notePending()
	return nil
}

// InsertDifficulty stages height_be -> encode(record) writes.
func (o *Overlay) InsertDifficulty(records []chain.BlockDifficulty) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	for _, r := range records {
		o.difficulty.put(codec.OrderKey(r.Height), codec.EncodeBlockDifficulty(r))
	}
	o.notePending()
	return nil
}

// DeleteOrder stages a tombstone for height in the order tree (used
// during fork rollback, spec §3 Lifecycle).
func (o *Overlay) DeleteOrder(height uint64) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.order.del(codec.OrderKey(height))
	o.notePending()
}

// Get reads through the overlay's own buffer first (read-your-writes);
// if the key isn't buffered, the read falls through to the underlying
// blocks tree. Strict/non-strict semantics match BlockStore.Get.
func (o *Overlay) Get(hashes []chain.HeaderHash, strict bool) ([]*chain.Block, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]*chain.Block, len(hashes))
	for i, h := range hashes {
		raw, ok, err := o.blocks.get(h.Bytes())
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

// GetOrder reads through the overlay's order buffer, falling through to
// the underlying order tree.
func (o *Overlay) GetOrder(heights []uint64, strict bool) ([]*chain.HeaderHash, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]*chain.HeaderHash, len(heights))
	for i, h := range heights {
		raw, ok, err := o.order.get(codec.OrderKey(h))
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

// GetDifficulty reads through the overlay's difficulty buffer, falling
// through to the underlying difficulty tree.
func (o *Overlay) GetDifficulty(heights []uint64, strict bool) ([]*chain.BlockDifficulty, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]*chain.BlockDifficulty, len(heights))
	for i, h := range heights {
		raw, ok, err := o.difficulty.get(codec.OrderKey(h))
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

// GetFirst returns the lowest (height, hash) visible through the
// overlay, merging staged order-tree writes with the underlying store
// (read-your-writes). Fails with a typed not-found error when nothing is
// visible.
func (o *Overlay) GetFirst() (uint64, chain.HeaderHash, error) {
	return o.orderExtreme(false)
}

// GetLast returns the highest (height, hash) visible through the
// overlay, merging staged order-tree writes with the underlying store
// (read-your-writes). Fails with a typed not-found error on an empty
// overlay+store, never a panic — this implementation always uses the
// typed-error behavior, including here, rather than the source's
// unconditional-unwrap panic (spec §9 Open Question).
func (o *Overlay) GetLast() (uint64, chain.HeaderHash, error) {
	return o.orderExtreme(true)
}

func (o *Overlay) orderExtreme(reverse bool) (uint64, chain.HeaderHash, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	entry, ok, err := o.order.extreme(reverse)
	if err != nil {
		return 0, chain.HeaderHash{}, blockerrs.Io("order extreme", err)
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

// Commit atomically promotes every buffered write across all three
// trees to the underlying backend in one combined transaction (spec
// §4.4: "when commit succeeds, all three trees move together; when it
// fails, none move"), then releases the buffers. Per-tree atomicity
// does not compose into cross-tree atomicity on its own, so Commit
// hands every tree's batch to a single ApplyMany call rather than
// issuing one Apply per tree: either every batch lands, or (on failure,
// or a crash mid-commit) none do, preserving the height/difficulty
// pairing invariant (spec §3 invariant 3, `H_d = H_o`) across restarts.
// On failure, the buffers remain valid for retry or Discard (spec §7).
func (o *Overlay) Commit() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	var batches []kv.Batch
	if ops := o.blocks.ops(); len(ops) > 0 {
		batches = append(batches, kv.Batch{Tree: string(blockstore.TreeBlocks), Ops: ops})
	}
	if ops := o.order.ops(); len(ops) > 0 {
		batches = append(batches, kv.Batch{Tree: string(blockstore.TreeOrder), Ops: ops})
	}
	if ops := o.difficulty.ops(); len(ops) > 0 {
		batches = append(batches, kv.Batch{Tree: string(blockstore.TreeDifficulty), Ops: ops})
	}

	if len(batches) > 0 {
		if err := o.backend.ApplyMany(batches); err != nil {
			return blockerrs.Io("commit overlay", err)
		}
	}

	o.release()
	if o.metrics != nil {
		o.metrics.OverlayCommits.Inc()
	}
	o.log.Debugw("overlay committed")
	return nil
}

// Discard drops every buffered write without touching the underlying
// store.
func (o *Overlay) Discard() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.release()
	if o.metrics != nil {
		o.metrics.OverlayDiscards.Inc()
	}
	o.log.Debugw("overlay discarded")
}

// release reclaims buffered state. Called after a successful Commit and
// on Discard, so resources are reclaimed whichever of the two wins; a
// failed Commit leaves the buffers in place for retry or Discard.
func (o *Overlay) release() {
	o.blocks.discard()
	o.order.discard()
	o.difficulty.discard()
	o.notePending()
}
