package codec

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rubinchain/blockcore/chain"
)

func TestEncodeDecodeBlockRoundTrip(t *testing.T) {
	b := chain.Block{
		HeaderHash: chain.Header{Version: 1, Nonce: 9}.Hash(),
		TxHashes:   [][32]byte{{1}, {2}, {3}},
		Signature:  chain.Signature{0xaa, 0xbb, 0xcc},
	}
	encoded := EncodeBlock(b)
	got, err := DecodeBlock(encoded)
	require.NoError(t, err)
	require.Equal(t, b, got)
}

func TestEncodeDecodeBlockNoTxs(t *testing.T) {
	b := chain.Block{
		HeaderHash: chain.Header{}.Hash(),
		TxHashes:   [][32]byte{},
		Signature:  chain.Signature{0x01},
	}
	got, err := DecodeBlock(EncodeBlock(b))
	require.NoError(t, err)
	require.Equal(t, b.HeaderHash, got.HeaderHash)
	require.Empty(t, got.TxHashes)
	require.Equal(t, b.Signature, got.Signature)
}

func TestDecodeBlockTruncatedHeader(t *testing.T) {
	_, err := DecodeBlock([]byte{1, 2, 3})
	require.Error(t, err)
}

func TestDecodeBlockTruncatedTxHashes(t *testing.T) {
	b := chain.Block{HeaderHash: chain.Header{}.Hash(), TxHashes: [][32]byte{{1}, {2}}}
	encoded := EncodeBlock(b)
	_, err := DecodeBlock(encoded[:len(encoded)-10])
	require.Error(t, err)
}
