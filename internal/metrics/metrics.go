package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

type LedgerMetrics struct {
	views         *prometheus.CounterVec
	rewards       *prometheus.CounterVec
	payouts       *prometheus.CounterVec
	ledgerEntries *prometheus.CounterVec
	uploads       *prometheus.CounterVec
}

var (
	ledgerOnce     sync.Once
	ledgerRegistry *LedgerMetrics
)

// Ledger returns the process-wide collectors, registering them on first use.
func Ledger() *LedgerMetrics {
	ledgerOnce.Do(func() {
		ledgerRegistry = &LedgerMetrics{
			views: prometheus.NewCounterVec(prometheus.CounterOpts{
				Name: "reelspay_views_total",
				Help: "View reports by admission outcome.",
			}, []string{"outcome"}),
			rewards: prometheus.NewCounterVec(prometheus.CounterOpts{
				Name: "reelspay_rewards_total",
				Help: "Reward claims by outcome.",
			}, []string{"outcome"}),
			payouts: prometheus.NewCounterVec(prometheus.CounterOpts{
				Name: "reelspay_payouts_total",
				Help: "Payout requests and resolutions by outcome.",
			}, []string{"outcome"}),
			ledgerEntries: prometheus.NewCounterVec(prometheus.CounterOpts{
				Name: "reelspay_ledger_entries_total",
				Help: "Coin transactions written by kind.",
			}, []string{"kind"}),
			uploads: prometheus.NewCounterVec(prometheus.CounterOpts{
				Name: "reelspay_uploads_total",
				Help: "Upload attempts by outcome.",
			}, []string{"outcome"}),
		}
		prometheus.MustRegister(
			ledgerRegistry.views,
			ledgerRegistry.rewards,
			ledgerRegistry.payouts,
			ledgerRegistry.ledgerEntries,
			ledgerRegistry.uploads,
		)
	})
	return ledgerRegistry
}

func label(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}

func (m *LedgerMetrics) ObserveView(outcome string) {
	if m == nil {
		return
	}
	m.views.WithLabelValues(label(outcome)).Inc()
}

func (m *LedgerMetrics) ObserveReward(outcome string) {
	if m == nil {
		return
	}
	m.rewards.WithLabelValues(label(outcome)).Inc()
}

func (m *LedgerMetrics) ObservePayout(outcome string) {
	if m == nil {
		return
	}
	m.payouts.WithLabelValues(label(outcome)).Inc()
}

func (m *LedgerMetrics) ObserveLedgerEntry(kind string) {
	if m == nil {
		return
	}
	m.ledgerEntries.WithLabelValues(label(kind)).Inc()
}

func (m *LedgerMetrics) ObserveUpload(outcome string) {
	if m == nil {
		return
	}
	m.uploads.WithLabelValues(label(outcome)).Inc()
}
