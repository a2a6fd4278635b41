package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestLedgerCountersAreShared(t *testing.T) {
	m := Ledger()
	require.Same(t, m, Ledger())

	before := testutil.ToFloat64(m.views.WithLabelValues("admitted"))
	m.ObserveView("admitted")
	m.ObserveView("admitted")
	require.Equal(t, before+2, testutil.ToFloat64(m.views.WithLabelValues("admitted")))

	m.ObservePayout("")
	require.GreaterOrEqual(t, testutil.ToFloat64(m.payouts.WithLabelValues("unknown")), 1.0)

	var nilMetrics *LedgerMetrics
	nilMetrics.ObserveReward("claimed")
}
