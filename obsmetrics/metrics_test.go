package obsmetrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/require"
)

func TestNewCollectorsRegistersAll(t *testing.T) {
	reg := prometheus.NewRegistry()
	c, err := NewCollectors(reg, "blockcore")
	require.NoError(t, err)

	c.BlockCount.Set(3)
	c.OverlayCommits.Inc()

	families, err := reg.Gather()
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(families), 5)
}

func TestNewCollectorsDuplicateRegistrationFails(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := NewCollectors(reg, "blockcore")
	require.NoError(t, err)
	_, err = NewCollectors(reg, "blockcore")
	require.Error(t, err)
}

func TestBlockCountGaugeValue(t *testing.T) {
	reg := prometheus.NewRegistry()
	c, err := NewCollectors(reg, "blockcore")
	require.NoError(t, err)
	c.BlockCount.Set(42)

	var m dto.Metric
	require.NoError(t, c.BlockCount.Write(&m))
	require.Equal(t, float64(42), m.GetGauge().GetValue())
}
