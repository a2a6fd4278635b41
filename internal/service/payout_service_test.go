package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/reelspay/reelspay-backend/internal/dbtest"
	"github.com/reelspay/reelspay-backend/internal/model"
	"github.com/reelspay/reelspay-backend/internal/repository"
	"github.com/stretchr/testify/require"
)

func TestValidPayoutAddress(t *testing.T) {
	tests := []struct {
		addr string
		want bool
	}{
		{"creator@upi", true},
		{"a.b-c_d@okaxis", true},
		{"ab@upi", true},
		{"a@upi", false},
		{"creator@u", false},
		{"a..b@upi", false},
		{".creator@upi", false},
		{"creator.@upi", false},
		{"creator@1bank", false},
		{"creator upi", false},
		{"", false},
		{"abcdefghijklmnopqrstuvwxyzabcdefghijklmnop@upi", false},
	}
	for _, tt := range tests {
		t.Run(tt.addr, func(t *testing.T) {
			require.Equal(t, tt.want, ValidPayoutAddress(tt.addr))
		})
	}
}

func TestPayoutRequestScenario(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	p := dbtest.Profile(t, env.db, "uid-creator", 10000)
	svc := env.payoutService(nil)

	res, err := svc.Request(ctx, "uid-creator", 5000, "creator@upi")
	require.NoError(t, err)
	require.Equal(t, model.PayoutStatusPending, res.Request.Status)
	require.Equal(t, int64(5000), res.Request.PaiseAmount)
	require.Equal(t, "50", res.AmountInCurrency.String())

	got := env.profile(t, p.ID)
	require.Equal(t, int64(5000), got.CoinsBalance)
	require.NotNil(t, got.PayoutAddress)
	require.Equal(t, "creator@upi", *got.PayoutAddress)

	require.Equal(t, int64(1), env.count(t, &model.PayoutRequest{}, "profile_id = ? AND status = ?", p.ID, model.PayoutStatusPending))
	var debit model.CoinTransaction
	require.NoError(t, env.db.Where("profile_id = ? AND transaction_type = ?", p.ID, model.KindPayout).First(&debit).Error)
	require.Equal(t, int64(-5000), debit.Amount)
	require.Equal(t, "Payout request: ₹50 to creator@upi", *debit.Description)
	require.Equal(t, res.Request.ID, *debit.PayoutRequestID)
	env.requireLedgerConsistent(t, p.ID)
}

func TestPayoutRequestRejectionsHaveNoSideEffects(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	p := dbtest.Profile(t, env.db, "uid-rich", 8000)
	svc := env.payoutService(nil)

	tests := []struct {
		name    string
		uid     string
		coins   int64
		addr    string
		wantErr error
	}{
		{"unauthenticated", "", 5000, "creator@upi", ErrUnauthenticated},
		{"no profile", "uid-ghost", 5000, "creator@upi", ErrProfileNotFound},
		{"below minimum", "uid-rich", 4999, "creator@upi", ErrBelowMinimum},
		{"bad address", "uid-rich", 5000, "creator..x@upi", ErrInvalidAddress},
		{"over balance", "uid-rich", 9000, "creator@upi", ErrInsufficientFund},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Request(ctx, tt.uid, tt.coins, tt.addr)
			require.ErrorIs(t, err, tt.wantErr)
		})
	}

	require.Zero(t, env.count(t, &model.PayoutRequest{}, ""))
	require.Equal(t, int64(8000), env.profile(t, p.ID).CoinsBalance)
	env.requireLedgerConsistent(t, p.ID)
}

func TestPayoutExclusivity(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	dbtest.Profile(t, env.db, "uid-two", 50000)
	svc := env.payoutService(nil)

	_, err := svc.Request(ctx, "uid-two", 5000, "creator@upi")
	require.NoError(t, err)
	_, err = svc.Request(ctx, "uid-two", 5000, "creator@upi")
	require.ErrorIs(t, err, ErrPendingPayout)
	require.Equal(t, KindConflict, KindOf(err))
}

func TestPayoutConcurrentRequestsReserveOnce(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	p := dbtest.Profile(t, env.db, "uid-race", 12000)
	svc := env.payoutService(nil)

	var (
		wg  sync.WaitGroup
		mu  sync.Mutex
		oks int
	)
	for i := 0; i < 6; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := svc.Request(ctx, "uid-race", 6000, "creator@upi"); err == nil {
				mu.Lock()
				oks++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	require.Equal(t, 1, oks)
	require.Equal(t, int64(6000), env.profile(t, p.ID).CoinsBalance)
	require.Equal(t, int64(1), env.count(t, &model.PayoutRequest{}, ""))
	env.requireLedgerConsistent(t, p.ID)
}

// failingLedger simulates a debit that loses a race after the request row exists.
type failingLedger struct {
	repository.LedgerRepository
	err error
}

func (f failingLedger) Apply(ctx context.Context, e repository.Entry) (*model.CoinTransaction, error) {
	return nil, f.err
}

func TestPayoutCompensatingDeleteOnDebitFailure(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		err     error
		wantErr error
	}{
		{"concurrent debit drained balance", repository.ErrInsufficientBalance, ErrInsufficientFund},
		{"storage failure", errors.New("connection reset"), nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			p := dbtest.Profile(t, env.db, "uid-comp", 10000)
			svc := env.payoutService(failingLedger{LedgerRepository: env.ledger, err: tt.err})

			_, err := svc.Request(ctx, "uid-comp", 5000, "creator@upi")
			require.Error(t, err)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
			} else {
				require.Equal(t, KindDependency, KindOf(err))
			}

			require.Zero(t, env.count(t, &model.PayoutRequest{}, ""))
			require.Equal(t, int64(10000), env.profile(t, p.ID).CoinsBalance)

			// the freed slot accepts a fresh request once the ledger is healthy
			_, err = env.payoutService(nil).Request(ctx, "uid-comp", 5000, "creator@upi")
			require.NoError(t, err)
		})
	}
}

func TestPayoutResolve(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	p := dbtest.Profile(t, env.db, "uid-settle", 20000)
	svc := env.payoutService(nil)

	first, err := svc.Request(ctx, "uid-settle", 5000, "creator@upi")
	require.NoError(t, err)
	done, err := svc.Resolve(ctx, first.Request.ID, model.PayoutStatusCompleted, "")
	require.NoError(t, err)
	require.Equal(t, model.PayoutStatusCompleted, done.Status)
	require.NotNil(t, done.ProcessedAt)
	require.Equal(t, int64(15000), env.profile(t, p.ID).CoinsBalance)

	_, err = svc.Resolve(ctx, first.Request.ID, model.PayoutStatusFailed, "late")
	require.ErrorIs(t, err, ErrPayoutFinalized)

	second, err := svc.Request(ctx, "uid-settle", 7000, "creator@upi")
	require.NoError(t, err)
	require.Equal(t, int64(8000), env.profile(t, p.ID).CoinsBalance)

	failed, err := svc.Resolve(ctx, second.Request.ID, model.PayoutStatusFailed, "bank rejected")
	require.NoError(t, err)
	require.Equal(t, "bank rejected", *failed.FailureReason)
	require.Equal(t, int64(15000), env.profile(t, p.ID).CoinsBalance)
	require.Equal(t, int64(1), env.count(t, &model.CoinTransaction{}, "profile_id = ? AND transaction_type = ?", p.ID, model.KindRefund))
	env.requireLedgerConsistent(t, p.ID)

	_, err = svc.Resolve(ctx, 9999, model.PayoutStatusCompleted, "")
	require.ErrorIs(t, err, ErrPayoutNotFound)
	_, err = svc.Resolve(ctx, second.Request.ID, model.PayoutStatusPending, "")
	require.ErrorIs(t, err, ErrInvalidInput)

	pending, err := svc.ListByStatus(ctx, model.PayoutStatusPending, 10)
	require.NoError(t, err)
	require.Empty(t, pending)
	mine, err := svc.ListMine(ctx, "uid-settle")
	require.NoError(t, err)
	require.Len(t, mine, 2)

	notes, unread, err := env.notes.List(ctx, "uid-settle", InboxQuery{UnreadOnly: true, Limit: 10})
	require.NoError(t, err)
	require.Equal(t, int64(4), unread)
	require.Len(t, notes, 4)
}
