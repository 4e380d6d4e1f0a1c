package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewManager(t *testing.T) {
	m, reg := NewTestManagerAndRegistry()
	require.NotNil(t, m)

	m.CounterGraphQLOperations.With(prometheus.Labels{"operation": "mutation", "outcome": "ok"}).Inc()
	m.CounterTokensIssued.Inc()
	m.CounterTokensIssued.Inc()

	assert.Equal(t, float64(1), testutil.ToFloat64(
		m.CounterGraphQLOperations.With(prometheus.Labels{"operation": "mutation", "outcome": "ok"}),
	))
	assert.Equal(t, float64(2), testutil.ToFloat64(m.CounterTokensIssued))

	families, err := reg.Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, families)
}

func TestSetupPrometheus(t *testing.T) {
	extra := prometheus.NewCounter(prometheus.CounterOpts{Name: "extra_total", Help: "extra"})
	reg := SetupPrometheus(extra)
	require.NotNil(t, reg)

	// already registered
	assert.Error(t, reg.Register(extra))
}
