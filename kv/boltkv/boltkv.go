// Package boltkv binds the kv.Backend/kv.Tree contract to
// go.etcd.io/bbolt, the embedded ordered KV store the teacher's
// node/store.DB already uses (node/store/db.go: bolt.Open,
// CreateBucketIfNotExists, tx.Bucket(...).Get/Put/Delete, Update/View).
// bbolt's named buckets, lexicographically ordered byte-string keys,
// and atomic Update batches are exactly the primitives spec §4.2
// requires.
package boltkv

import (
	"bytes"
	"fmt"

	bolt "go.etcd.io/bbolt"

	"github.com/rubinchain/blockcore/kv"
)

// Backend is a kv.Backend backed by a single bbolt database file.
type Backend struct {
	db *bolt.DB
}

var _ kv.Backend = (*Backend)(nil)

// Open opens (creating if necessary) the bbolt database at path,
// matching the teacher's Open(datadir, ...) shape.
func Open(path string) (*Backend, error) {
	db, err := bolt.Open(path, 0o600, nil)
	if err != nil {
		return nil, fmt.Errorf("boltkv: open %s: %w", path, err)
	}
	return &Backend{db: db}, nil
}

// OpenTree opens or creates the named bucket. Idempotent.
func (b *Backend) OpenTree(name []byte) (kv.Tree, error) {
	err := b.db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(name)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("boltkv: create bucket %s: %w", name, err)
	}
	return &Tree{db: b.db, name: append([]byte(nil), name...)}, nil
}

// Apply applies a batch atomically: one bolt.Update transaction
// touching a single bucket, all-or-nothing.
func (b *Backend) Apply(batch kv.Batch) error {
	name := []byte(batch.Tree)
	return b.db.Update(func(tx *bolt.Tx) error {
		bu := tx.Bucket(name)
		if bu == nil {
			return fmt.Errorf("boltkv: bucket %s not opened", name)
		}
		for _, op := range batch.Ops {
			if op.Delete {
				if err := bu.Delete(op.Key); err != nil {
					return err
				}
				continue
			}
			if err := bu.Put(op.Key, op.Value); err != nil {
				return err
			}
		}
		return nil
	})
}

// ApplyMany applies every batch inside a single bolt.Update transaction,
// so writes to different buckets commit or abort together (spec §4.4's
// "one combined batch"). This is the primitive Overlay.Commit uses to
// give cross-tree atomicity across the blocks/order/difficulty trees.
func (b *Backend) ApplyMany(batches []kv.Batch) error {
	return b.db.Update(func(tx *bolt.Tx) error {
		for _, batch := range batches {
			name := []byte(batch.Tree)
			bu := tx.Bucket(name)
			if bu == nil {
				return fmt.Errorf("boltkv: bucket %s not opened", name)
			}
			for _, op := range batch.Ops {
				if op.Delete {
					if err := bu.Delete(op.Key); err != nil {
						return err
					}
					continue
				}
				if err := bu.Put(op.Key, op.Value); err != nil {
					return err
				}
			}
		}
		return nil
	})
}

// Close releases the underlying bbolt database.
func (b *Backend) Close() error { return b.db.Close() }

// Tree is a kv.Tree backed by one bbolt bucket.
type Tree struct {
	db   *bolt.DB
	name []byte
}

var _ kv.Tree = (*Tree)(nil)

func (t *Tree) Get(key []byte) ([]byte, bool, error) {
	var out []byte
	err := t.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(t.name).Get(key)
		if v != nil {
			out = append([]byte(nil), v...)
		}
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return out, out != nil, nil
}

func (t *Tree) Contains(key []byte) (bool, error) {
	var ok bool
	err := t.db.View(func(tx *bolt.Tx) error {
		ok = tx.Bucket(t.name).Get(key) != nil
		return nil
	})
	return ok, err
}

func (t *Tree) Insert(key, value []byte) error {
	return t.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(t.name).Put(key, value)
	})
}

func (t *Tree) Delete(key []byte) error {
	return t.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(t.name).Delete(key)
	})
}

func (t *Tree) First() (kv.KV, bool, error) {
	var out kv.KV
	var ok bool
	err := t.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(t.name).Cursor()
		k, v := c.First()
		if k == nil {
			return nil
		}
		out = kv.KV{Key: append([]byte(nil), k...), Value: append([]byte(nil), v...)}
		ok = true
		return nil
	})
	return out, ok, err
}

func (t *Tree) Last() (kv.KV, bool, error) {
	var out kv.KV
	var ok bool
	err := t.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(t.name).Cursor()
		k, v := c.Last()
		if k == nil {
			return nil
		}
		out = kv.KV{Key: append([]byte(nil), k...), Value: append([]byte(nil), v...)}
		ok = true
		return nil
	})
	return out, ok, err
}

// GetGT returns the strict successor of key: bbolt's Cursor.Seek lands
// on key itself when present, so we seek and then step forward past an
// exact match.
func (t *Tree) GetGT(key []byte) (kv.KV, bool, error) {
	var out kv.KV
	var ok bool
	err := t.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(t.name).Cursor()
		k, v := c.Seek(key)
		if k != nil && bytes.Equal(k, key) {
			k, v = c.Next()
		}
		if k == nil {
			return nil
		}
		out = kv.KV{Key: append([]byte(nil), k...), Value: append([]byte(nil), v...)}
		ok = true
		return nil
	})
	return out, ok, err
}

func (t *Tree) ForEach(fn func(key, value []byte) (bool, error)) error {
	return t.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(t.name).Cursor()
		for k, v := c.First(); k != nil; k, v = c.Next() {
			keepGoing, err := fn(k, v)
			if err != nil {
				return err
			}
			if !keepGoing {
				return nil
			}
		}
		return nil
	})
}

func (t *Tree) ForEachReverse(fn func(key, value []byte) (bool, error)) error {
	return t.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(t.name).Cursor()
		for k, v := c.Last(); k != nil; k, v = c.Prev() {
			keepGoing, err := fn(k, v)
			if err != nil {
				return err
			}
			if !keepGoing {
				return nil
			}
		}
		return nil
	})
}

func (t *Tree) Len() (int, error) {
	n := 0
	err := t.db.View(func(tx *bolt.Tx) error {
		n = tx.Bucket(t.name).Stats().KeyN
		return nil
	})
	return n, err
}

func (t *Tree) IsEmpty() (bool, error) {
	n, err := t.Len()
	return n == 0, err
}
