package obslog

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewValidLevel(t *testing.T) {
	logger, err := New("debug")
	require.NoError(t, err)
	require.NotNil(t, logger)
}

func TestNewInvalidLevel(t *testing.T) {
	_, err := New("not-a-level")
	require.Error(t, err)
}

func TestNoopNeverPanics(t *testing.T) {
	logger := Noop()
	require.NotPanics(t, func() { logger.Debugw("anything", "k", "v") })
}
