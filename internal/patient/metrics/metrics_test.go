package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.IncrementWrite("remote", false)
		m.IncrementRead("local", true)
		m.SetPending(3)
		m.ObserveRemote("insert", nil, time.Second)
		m.IncrementCorrupt()
	})
}

func TestMetrics_Records(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.IncrementWrite("offline", true)
	m.IncrementWrite("offline", true)
	m.IncrementRead("remote", false)
	m.SetPending(4)
	m.ObserveRemote("query", errors.New("boom"), 20*time.Millisecond)
	m.IncrementCorrupt()

	assert.Equal(t, 2.0, testutil.ToFloat64(m.WriteOutcome.WithLabelValues("offline", "true")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ReadSource.WithLabelValues("remote", "false")))
	assert.Equal(t, 4.0, testutil.ToFloat64(m.PendingRecords))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.QueueCorrupt))

	count, err := testutil.GatherAndCount(reg, "healthreg_remote_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestMetrics_SeparateRegistries(t *testing.T) {
	assert.NotPanics(t, func() {
		New(prometheus.NewRegistry())
		New(prometheus.NewRegistry())
	})
}
