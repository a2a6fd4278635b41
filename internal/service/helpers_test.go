package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/reelspay/reelspay-backend/internal/dbtest"
	"github.com/reelspay/reelspay-backend/internal/model"
	"github.com/reelspay/reelspay-backend/internal/repository"
	"github.com/reelspay/reelspay-backend/internal/revenue"
	"github.com/reelspay/reelspay-backend/internal/rewardtoken"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newClock() *fakeClock {
	return &fakeClock{t: time.Date(2025, 4, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

type testEnv struct {
	db       *gorm.DB
	clock    *fakeClock
	profiles repository.ProfileRepository
	videos   repository.VideoRepository
	views    repository.ViewRepository
	ledger   repository.LedgerRepository
	payouts  repository.PayoutRepository
	rewards  repository.RewardRepository
	notes    NotificationService
	issuer   *rewardtoken.Issuer
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := dbtest.Open(t)
	clock := newClock()
	return &testEnv{
		db:       db,
		clock:    clock,
		profiles: repository.NewProfileRepository(db),
		videos:   repository.NewVideoRepository(db),
		views:    repository.NewViewRepository(db),
		ledger:   repository.NewLedgerRepository(db),
		payouts:  repository.NewPayoutRepository(db),
		rewards:  repository.NewRewardRepository(db),
		notes:    NewNotificationService(repository.NewNotificationRepository(db)),
		issuer:   rewardtoken.NewIssuer("test-secret", 10*time.Minute).WithClock(clock.Now),
	}
}

func (e *testEnv) viewService(window WindowReserver) ViewService {
	return NewViewService(e.views, e.videos, e.profiles, window, DefaultViewLimits(), WithClock(e.clock.Now))
}

func (e *testEnv) rewardService() RewardService {
	return NewRewardService(e.db, e.rewards, e.videos, e.profiles, e.ledger, e.views, e.notes, e.issuer, RewardConfig{
		Table:    revenue.DefaultTable(),
		MinWatch: 5 * time.Second,
		Bucket:   time.Hour,
	}, WithClock(e.clock.Now))
}

func (e *testEnv) payoutService(ledger repository.LedgerRepository) PayoutService {
	if ledger == nil {
		ledger = e.ledger
	}
	return NewPayoutService(e.db, e.payouts, ledger, e.profiles, e.notes, DefaultPayoutPolicy(), WithClock(e.clock.Now))
}

func (e *testEnv) count(t *testing.T, m interface{}, where string, args ...interface{}) int64 {
	t.Helper()
	var n int64
	q := e.db.Model(m)
	if where != "" {
		q = q.Where(where, args...)
	}
	require.NoError(t, q.Count(&n).Error)
	return n
}

func (e *testEnv) profile(t *testing.T, id uint64) model.Profile {
	t.Helper()
	var p model.Profile
	require.NoError(t, e.db.First(&p, id).Error)
	return p
}

// requireLedgerConsistent asserts coins_balance equals the sum of the profile's transactions.
func (e *testEnv) requireLedgerConsistent(t *testing.T, profileID uint64) {
	t.Helper()
	sum, err := e.ledger.Sum(context.Background(), profileID)
	require.NoError(t, err)
	require.Equal(t, e.profile(t, profileID).CoinsBalance, sum)
}
