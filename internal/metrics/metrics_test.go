package metrics_test

import (
	"testing"

	"github.com/SscSPs/host_ledger/internal/metrics"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_RegistersIndependentCollectors(t *testing.T) {
	first := metrics.New()
	second := metrics.New()

	first.LedgerEvents.WithLabelValues("CONTRIBUTION").Inc()
	first.OrderLocksSwept.Add(3)

	assert.Equal(t, float64(1), testutil.ToFloat64(first.LedgerEvents.WithLabelValues("CONTRIBUTION")))
	assert.Equal(t, float64(3), testutil.ToFloat64(first.OrderLocksSwept))
	assert.Equal(t, float64(0), testutil.ToFloat64(second.OrderLocksSwept))

	families, err := first.Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, families)
}

func TestRegistry_NilIsNoop(t *testing.T) {
	var r *metrics.Registry
	assert.NotPanics(t, func() {
		r.LedgerEventRecorded("CONTRIBUTION", 2)
		r.OrderLockAttempt("acquired")
		r.OrderLocksCleared(1)
		r.SettlementsUpdated("INVOICED", 1)
		r.SubscriptionChanged("create")
	})
}
