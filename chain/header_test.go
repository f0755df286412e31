package chain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHeaderHashIsDeterministic(t *testing.T) {
	h := Header{Version: 1, Timestamp: 42, Nonce: 7}
	first := h.Hash()
	second := h.Hash()
	require.Equal(t, first, second)
}

func TestHeaderHashDistinguishesFields(t *testing.T) {
	base := Header{Version: 1, Timestamp: 42, Nonce: 7}
	changed := base
	changed.Nonce = 8
	require.NotEqual(t, base.Hash(), changed.Hash())
}

func TestHeaderHashStringIsHex(t *testing.T) {
	h := Header{Version: 1}.Hash()
	require.Len(t, h.String(), 64)
}
