package codec

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rubinchain/blockcore/chain"
)

func TestBigToBytesZero(t *testing.T) {
	require.Equal(t, []byte{}, BigToBytes(big.NewInt(0)))
	require.Equal(t, []byte{}, BigToBytes(nil))
}

func TestBigToBytesRoundTrip(t *testing.T) {
	v := new(big.Int)
	v.SetString("123456789012345678901234567890", 10)
	got := BigFromBytes(BigToBytes(v))
	require.Equal(t, 0, v.Cmp(got))
}

func TestOrderKeyValueRoundTrip(t *testing.T) {
	var hash chain.HeaderHash
	hash[0] = 0xaa
	key := OrderKey(9)
	height, err := DecodeOrderKey(key)
	require.NoError(t, err)
	require.Equal(t, uint64(9), height)

	value := OrderValue(hash)
	got, err := DecodeOrderValue(value)
	require.NoError(t, err)
	require.Equal(t, hash, got)
}
