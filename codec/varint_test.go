package codec

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestUvarintRoundTrip(t *testing.T) {
	for _, n := range []uint64{0, 1, 127, 128, 300, 1 << 40} {
		buf := PutUvarint(nil, n)
		got, consumed, err := Uvarint(buf)
		require.NoError(t, err)
		require.Equal(t, n, got)
		require.Equal(t, len(buf), consumed)
	}
}

func TestUvarintTruncated(t *testing.T) {
	_, _, err := Uvarint(nil)
	require.Error(t, err)
}

func TestBigBytesRoundTrip(t *testing.T) {
	want := []byte{0xde, 0xad, 0xbe, 0xef}
	buf := PutBigBytes(nil, want)
	got, consumed, err := BigBytes(buf)
	require.NoError(t, err)
	require.Equal(t, want, got)
	require.Equal(t, len(buf), consumed)
}

func TestBigBytesTruncated(t *testing.T) {
	buf := PutUvarint(nil, 10)
	_, _, err := BigBytes(buf)
	require.Error(t, err)
}

func TestBEUint64PreservesOrder(t *testing.T) {
	a := BEUint64(1)
	b := BEUint64(2)
	require.Less(t, string(a), string(b), "big-endian keys must sort lexicographically in numeric order")
}

func TestDecodeBEUint64RoundTrip(t *testing.T) {
	n, err := DecodeBEUint64(BEUint64(123456))
	require.NoError(t, err)
	require.Equal(t, uint64(123456), n)
}

func TestDecodeBEUint64WrongLength(t *testing.T) {
	_, err := DecodeBEUint64([]byte{1, 2, 3})
	require.Error(t, err)
}
