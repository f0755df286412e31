package blockstore

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rubinchain/blockcore/blockerrs"
	"github.com/rubinchain/blockcore/chain"
	"github.com/rubinchain/blockcore/kv/boltkv"
)

func openTestStore(t *testing.T) *BlockStore {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	backend, err := boltkv.Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = backend.Close() })
	store, err := Open(backend, nil, nil)
	require.NoError(t, err)
	return store
}

func blockAt(nonce uint64) chain.Block {
	h := chain.Header{Version: 1, Nonce: nonce}
	return chain.Block{HeaderHash: h.Hash()}
}

// Scenario 1 (spec): insert the genesis block, assert contains/get_first/get_last/len.
func TestGenesisBlockScenario(t *testing.T) {
	s := openTestStore(t)
	genesis := blockAt(0)

	hashes, err := s.Insert([]chain.Block{genesis})
	require.NoError(t, err)
	require.Equal(t, []chain.HeaderHash{genesis.HeaderHash}, hashes)

	require.NoError(t, s.InsertOrder([]uint64{0}, []chain.HeaderHash{genesis.HeaderHash}))

	ok, err := s.Contains(genesis.HeaderHash)
	require.NoError(t, err)
	require.True(t, ok)

	height, hash, err := s.GetFirst()
	require.NoError(t, err)
	require.Equal(t, uint64(0), height)
	require.Equal(t, genesis.HeaderHash, hash)

	height, hash, err = s.GetLast()
	require.NoError(t, err)
	require.Equal(t, uint64(0), height)
	require.Equal(t, genesis.HeaderHash, hash)

	n, err := s.Len()
	require.NoError(t, err)
	require.Equal(t, 1, n)
}

// Scenario 2 (spec): get_after over a contiguous run, including n = 0.
func TestGetAfterScenario(t *testing.T) {
	s := openTestStore(t)
	blocks := []chain.Block{blockAt(0), blockAt(1), blockAt(2)}
	_, err := s.Insert(blocks)
	require.NoError(t, err)
	hashes := []chain.HeaderHash{blocks[0].HeaderHash, blocks[1].HeaderHash, blocks[2].HeaderHash}
	require.NoError(t, s.InsertOrder([]uint64{0, 1, 2}, hashes))

	got, err := s.GetAfter(0, 5)
	require.NoError(t, err)
	require.Equal(t, []chain.HeaderHash{hashes[1], hashes[2]}, got)

	got, err = s.GetAfter(0, 0)
	require.NoError(t, err)
	require.Equal(t, []chain.HeaderHash{hashes[1]}, got)
}

func TestGetAfterStopsAtGap(t *testing.T) {
	s := openTestStore(t)
	blocks := []chain.Block{blockAt(0), blockAt(1), blockAt(2)}
	_, err := s.Insert(blocks)
	require.NoError(t, err)
	hashes := []chain.HeaderHash{blocks[0].HeaderHash, blocks[1].HeaderHash, blocks[2].HeaderHash}
	// Heights 0 and 2 only: height 1 is a gap.
	require.NoError(t, s.InsertOrder([]uint64{0, 2}, []chain.HeaderHash{hashes[0], hashes[2]}))

	got, err := s.GetAfter(0, 5)
	require.NoError(t, err)
	require.Empty(t, got, "must stop at the first missing height rather than skip over it")
}

// Scenario 3 (spec): difficulty ordering.
func TestDifficultyScenario(t *testing.T) {
	s := openTestStore(t)
	records := make([]chain.BlockDifficulty, 10)
	for h := uint64(0); h < 10; h++ {
		records[h] = chain.BlockDifficulty{
			Height:               h,
			Difficulty:           []byte{10},
			CumulativeDifficulty: []byte{byte(10 * (h + 1))},
		}
	}
	require.NoError(t, s.InsertDifficulty(records))

	last3, err := s.GetLastNDifficulties(3)
	require.NoError(t, err)
	require.Len(t, last3, 3)
	require.Equal(t, []uint64{7, 8, 9}, []uint64{last3[0].Height, last3[1].Height, last3[2].Height})

	last, err := s.GetLastDifficulty()
	require.NoError(t, err)
	require.Equal(t, uint64(9), last.Height)
}

func TestOrderingPermutedInsertion(t *testing.T) {
	s := openTestStore(t)
	heights := []uint64{2, 0, 1}
	var hashes []chain.HeaderHash
	var blocks []chain.Block
	for _, h := range heights {
		b := blockAt(h)
		blocks = append(blocks, b)
		hashes = append(hashes, b.HeaderHash)
	}
	_, err := s.Insert(blocks)
	require.NoError(t, err)
	require.NoError(t, s.InsertOrder(heights, hashes))

	firstHeight, firstHash, err := s.GetFirst()
	require.NoError(t, err)
	require.Equal(t, uint64(0), firstHeight)
	require.Equal(t, blockAt(0).HeaderHash, firstHash)

	lastHeight, lastHash, err := s.GetLast()
	require.NoError(t, err)
	require.Equal(t, uint64(2), lastHeight)
	require.Equal(t, blockAt(2).HeaderHash, lastHash)
}

func TestGetFirstLastEmptyStoreFailsTyped(t *testing.T) {
	s := openTestStore(t)
	_, _, err := s.GetFirst()
	require.Error(t, err)
	var notFound *blockerrs.BlockNumberNotFoundError
	require.ErrorAs(t, err, &notFound)

	_, _, err = s.GetLast()
	require.Error(t, err)
	require.ErrorAs(t, err, &notFound)
}

func TestInsertIdempotent(t *testing.T) {
	s := openTestStore(t)
	b := blockAt(0)
	_, err := s.Insert([]chain.Block{b})
	require.NoError(t, err)
	_, err = s.Insert([]chain.Block{b})
	require.NoError(t, err)

	all, err := s.GetAll()
	require.NoError(t, err)
	require.Len(t, all, 1)
}

func TestGetStrictVsNonStrict(t *testing.T) {
	s := openTestStore(t)
	b := blockAt(0)
	_, err := s.Insert([]chain.Block{b})
	require.NoError(t, err)

	missing := blockAt(99).HeaderHash
	got, err := s.Get([]chain.HeaderHash{b.HeaderHash, missing}, false)
	require.NoError(t, err)
	require.NotNil(t, got[0])
	require.Nil(t, got[1])

	_, err = s.Get([]chain.HeaderHash{missing, b.HeaderHash}, true)
	require.Error(t, err)
	var notFound *blockerrs.BlockNotFoundError
	require.ErrorAs(t, err, &notFound)
}

func TestInsertOrderLengthMismatch(t *testing.T) {
	s := openTestStore(t)
	err := s.InsertOrder([]uint64{1, 2}, []chain.HeaderHash{blockAt(0).HeaderHash})
	require.ErrorIs(t, err, blockerrs.ErrInvalidInputLengths)
}

func TestContentAddressing(t *testing.T) {
	header := chain.Header{Version: 3, Timestamp: 77, Nonce: 1}
	info := chain.BlockInfo{Header: header}
	info.AppendTx(chain.Transaction{Payload: []byte("tx1")})
	require.Equal(t, header.Hash(), info.ToBlock().HeaderHash)
}
