package database

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPoolCollector_Gather(t *testing.T) {
	c := NewPoolCollector(func() PoolStats {
		return PoolStats{Acquired: 3, Idle: 2, Total: 5, Max: 10, AcquireCount: 42, EmptyAcquire: 1, AcquireSecs: 0.5}
	}, "neighborly")

	reg := prometheus.NewRegistry()
	require.NoError(t, reg.Register(c))

	families, err := reg.Gather()
	require.NoError(t, err)
	require.Len(t, families, 7)

	values := map[string]float64{}
	for _, mf := range families {
		require.Len(t, mf.GetMetric(), 1)
		m := mf.GetMetric()[0]
		require.Len(t, m.GetLabel(), 1)
		assert.Equal(t, "neighborly", m.GetLabel()[0].GetValue())
		if m.GetGauge() != nil {
			values[mf.GetName()] = m.GetGauge().GetValue()
		} else {
			values[mf.GetName()] = m.GetCounter().GetValue()
		}
	}

	assert.Equal(t, 3.0, values["db_pool_acquired_connections"])
	assert.Equal(t, 10.0, values["db_pool_max_connections"])
	assert.Equal(t, 42.0, values["db_pool_acquire_count_total"])
	assert.Equal(t, 0.5, values["db_pool_acquire_duration_seconds_total"])
}
