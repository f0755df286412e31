// Package kv is the external ordered key-value store contract the core
// requires from its environment (spec §4.2): named trees, point
// lookup/membership, atomic batch apply, and first/last/greater-than
// cursors over lexicographically ordered byte-string keys.
//
// The core (blockstore, overlay) programs against these interfaces, not
// against any particular backend, so a different embedded store could
// be bound in its place without touching either package. See
// kv/boltkv for the one concrete binding this repository ships, to
// go.etcd.io/bbolt.
package kv

// KV is an entry read back from a tree, pairing its key and value.
type KV struct {
	Key   []byte
	Value []byte
}

// Tree is one named, independently-keyed byte-string keyspace.
type Tree interface {
	// Get returns the value for key, or (nil, false) if absent.
	Get(key []byte) ([]byte, bool, error)
	// Contains reports whether key is present.
	Contains(key []byte) (bool, error)
	// Insert writes key -> value, overwriting any existing value.
	Insert(key, value []byte) error
	// Delete removes key. Deleting an absent key is not an error.
	Delete(key []byte) error

	// First returns the lexicographically smallest (key, value), or
	// ok=false if the tree is empty.
	First() (entry KV, ok bool, err error)
	// Last returns the lexicographically largest (key, value), or
	// ok=false if the tree is empty.
	Last() (entry KV, ok bool, err error)
	// GetGT returns the strictly-greater successor of key in key order,
	// or ok=false if none exists.
	GetGT(key []byte) (entry KV, ok bool, err error)

	// ForEach iterates the tree in ascending key order, calling fn for
	// each entry until fn returns false or iteration completes.
	ForEach(fn func(key, value []byte) (keepGoing bool, err error)) error
	// ForEachReverse iterates in descending key order.
	ForEachReverse(fn func(key, value []byte) (keepGoing bool, err error)) error

	// Len returns the number of entries in the tree.
	Len() (int, error)
	// IsEmpty reports whether the tree has zero entries.
	IsEmpty() (bool, error)
}

// Op is one write in a Batch: a Value insert, or a tombstone when Value
// is nil and Delete is true.
type Op struct {
	Key    []byte
	Value  []byte
	Delete bool
}

// Batch is a collection of insert/delete operations applied all-or-
// nothing to one tree (spec §4.2). The core does not assume
// transactions spanning multiple trees; cross-tree atomicity is the
// Overlay's responsibility (spec §4.4).
type Batch struct {
	Tree string
	Ops  []Op
}

// Backend opens named trees and applies atomic batches. A Backend
// implementation is expected to support concurrent readers and a single
// logical writer per tree (spec §5).
type Backend interface {
	// OpenTree opens or creates the named tree. Idempotent.
	OpenTree(name []byte) (Tree, error)
	// Apply applies a batch atomically to its named tree. Writes from a
	// single successful Apply are observed together by subsequent
	// readers (spec §5).
	Apply(b Batch) error
	// ApplyMany applies every batch as one combined transaction spanning
	// all of their trees (spec §4.4): either every batch's writes land
	// together, or none do. This is what gives the Overlay's commit
	// cross-tree atomicity; Apply alone only promises atomicity within a
	// single tree.
	ApplyMany(batches []Batch) error
	// Close releases the backend's resources.
	Close() error
}
