package boltkv

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rubinchain/blockcore/kv"
)

func openTestBackend(t *testing.T) *Backend {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	b, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = b.Close() })
	return b
}

func TestOpenTreeIdempotent(t *testing.T) {
	b := openTestBackend(t)
	tree1, err := b.OpenTree([]byte("t"))
	require.NoError(t, err)
	tree2, err := b.OpenTree([]byte("t"))
	require.NoError(t, err)
	require.NoError(t, tree1.Insert([]byte("k"), []byte("v")))
	got, ok, err := tree2.Get([]byte("k"))
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, []byte("v"), got)
}

func TestGetContainsMissing(t *testing.T) {
	b := openTestBackend(t)
	tree, err := b.OpenTree([]byte("t"))
	require.NoError(t, err)

	_, ok, err := tree.Get([]byte("missing"))
	require.NoError(t, err)
	require.False(t, ok)

	ok, err = tree.Contains([]byte("missing"))
	require.NoError(t, err)
	require.False(t, ok)
}

func TestInsertDelete(t *testing.T) {
	b := openTestBackend(t)
	tree, err := b.OpenTree([]byte("t"))
	require.NoError(t, err)

	require.NoError(t, tree.Insert([]byte("a"), []byte("1")))
	ok, err := tree.Contains([]byte("a"))
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, tree.Delete([]byte("a")))
	ok, err = tree.Contains([]byte("a"))
	require.NoError(t, err)
	require.False(t, ok)
}

func TestFirstLastEmpty(t *testing.T) {
	b := openTestBackend(t)
	tree, err := b.OpenTree([]byte("t"))
	require.NoError(t, err)

	_, ok, err := tree.First()
	require.NoError(t, err)
	require.False(t, ok)

	_, ok, err = tree.Last()
	require.NoError(t, err)
	require.False(t, ok)
}

func TestFirstLastOrdering(t *testing.T) {
	b := openTestBackend(t)
	tree, err := b.OpenTree([]byte("t"))
	require.NoError(t, err)

	for _, k := range []string{"b", "a", "c"} {
		require.NoError(t, tree.Insert([]byte(k), []byte(k)))
	}

	first, ok, err := tree.First()
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, []byte("a"), first.Key)

	last, ok, err := tree.Last()
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, []byte("c"), last.Key)
}

func TestGetGTStepsPastExactMatch(t *testing.T) {
	b := openTestBackend(t)
	tree, err := b.OpenTree([]byte("t"))
	require.NoError(t, err)

	for _, k := range []string{"a", "b", "d"} {
		require.NoError(t, tree.Insert([]byte(k), []byte(k)))
	}

	got, ok, err := tree.GetGT([]byte("b"))
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, []byte("d"), got.Key, "GetGT(b) must skip the exact match and land on the next key")

	got, ok, err = tree.GetGT([]byte("c"))
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, []byte("d"), got.Key)

	_, ok, err = tree.GetGT([]byte("d"))
	require.NoError(t, err)
	require.False(t, ok)
}

func TestForEachAndReverse(t *testing.T) {
	b := openTestBackend(t)
	tree, err := b.OpenTree([]byte("t"))
	require.NoError(t, err)

	for _, k := range []string{"a", "b", "c"} {
		require.NoError(t, tree.Insert([]byte(k), []byte(k)))
	}

	var forward []string
	require.NoError(t, tree.ForEach(func(k, v []byte) (bool, error) {
		forward = append(forward, string(k))
		return true, nil
	}))
	require.Equal(t, []string{"a", "b", "c"}, forward)

	var reverse []string
	require.NoError(t, tree.ForEachReverse(func(k, v []byte) (bool, error) {
		reverse = append(reverse, string(k))
		return true, nil
	}))
	require.Equal(t, []string{"c", "b", "a"}, reverse)
}

func TestForEachEarlyStop(t *testing.T) {
	b := openTestBackend(t)
	tree, err := b.OpenTree([]byte("t"))
	require.NoError(t, err)
	for _, k := range []string{"a", "b", "c"} {
		require.NoError(t, tree.Insert([]byte(k), []byte(k)))
	}

	var seen []string
	require.NoError(t, tree.ForEach(func(k, v []byte) (bool, error) {
		seen = append(seen, string(k))
		return string(k) != "b", nil
	}))
	require.Equal(t, []string{"a", "b"}, seen)
}

func TestLenIsEmpty(t *testing.T) {
	b := openTestBackend(t)
	tree, err := b.OpenTree([]byte("t"))
	require.NoError(t, err)

	empty, err := tree.IsEmpty()
	require.NoError(t, err)
	require.True(t, empty)

	require.NoError(t, tree.Insert([]byte("a"), []byte("1")))
	n, err := tree.Len()
	require.NoError(t, err)
	require.Equal(t, 1, n)

	empty, err = tree.IsEmpty()
	require.NoError(t, err)
	require.False(t, empty)
}

func TestApplyBatchAtomicAndDeletes(t *testing.T) {
	b := openTestBackend(t)
	_, err := b.OpenTree([]byte("t"))
	require.NoError(t, err)

	err = b.Apply(kv.Batch{Tree: "t", Ops: []kv.Op{
		{Key: []byte("a"), Value: []byte("1")},
		{Key: []byte("b"), Value: []byte("2")},
	}})
	require.NoError(t, err)

	err = b.Apply(kv.Batch{Tree: "t", Ops: []kv.Op{
		{Key: []byte("a"), Delete: true},
		{Key: []byte("c"), Value: []byte("3")},
	}})
	require.NoError(t, err)

	tree, err := b.OpenTree([]byte("t"))
	require.NoError(t, err)

	ok, err := tree.Contains([]byte("a"))
	require.NoError(t, err)
	require.False(t, ok)

	got, ok, err := tree.Get([]byte("c"))
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, []byte("3"), got)
}

func TestApplyUnopenedBucketFails(t *testing.T) {
	b := openTestBackend(t)
	err := b.Apply(kv.Batch{Tree: "never-opened", Ops: []kv.Op{{Key: []byte("a"), Value: []byte("1")}}})
	require.Error(t, err)
}
