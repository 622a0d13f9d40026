package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecord(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ClientOutcome(OutcomeOK)
	m.ClientOutcome(OutcomeOK)
	m.ClientOutcome(OutcomeReadTimeout)
	m.ServerStatus(500)
	m.CodecFailure("server", "deserialize")
	m.ObservePhase("connect", time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.ClientRequests.WithLabelValues(OutcomeOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ClientRequests.WithLabelValues(OutcomeReadTimeout)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ServerRequests.WithLabelValues("500")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CodecFailures.WithLabelValues("server", "deserialize")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.PhaseDuration))
}

func TestNilIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ClientOutcome(OutcomeOK)
		m.ObservePhase("socket", time.Second)
		m.ServerStatus(200)
		m.CodecFailure("client", "serialize")
	})
}

func TestDoubleRegisterPanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	New(reg)
	assert.Panics(t, func() { New(reg) })
}
