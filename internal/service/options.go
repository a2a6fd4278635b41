package service

import (
	"log/slog"
	"time"

	"github.com/reelspay/reelspay-backend/internal/metrics"
)

// Option customises a service at construction time.
type Option func(*settings)

type settings struct {
	now     func() time.Time
	logger  *slog.Logger
	metrics *metrics.LedgerMetrics
}

func WithClock(now func() time.Time) Option {
	return func(s *settings) {
		if now != nil {
			s.now = now
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(s *settings) {
		if l != nil {
			s.logger = l
		}
	}
}

func WithMetrics(m *metrics.LedgerMetrics) Option {
	return func(s *settings) {
		s.metrics = m
	}
}

func newSettings(opts []Option) settings {
	s := settings{
		now:     time.Now,
		logger:  slog.Default(),
		metrics: metrics.Ledger(),
	}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

func (s settings) clock() time.Time {
	return s.now().UTC()
}
