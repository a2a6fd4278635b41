package repository

import (
	"context"
	"testing"
	"time"

	"github.com/reelspay/reelspay-backend/internal/dbtest"
	"github.com/reelspay/reelspay-backend/internal/model"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestPendingSlotAllowsOneOutstandingRequest(t *testing.T) {
	ctx := context.Background()
	db := dbtest.Open(t)
	repo := NewPayoutRepository(db)
	p := dbtest.Profile(t, db, "uid-payout", 20000)

	first := &model.PayoutRequest{ProfileID: p.ID, CoinsAmount: 5000, PaiseAmount: 5000, PayoutAddress: "creator@upi"}
	require.NoError(t, repo.CreatePending(ctx, first))

	second := &model.PayoutRequest{ProfileID: p.ID, CoinsAmount: 6000, PaiseAmount: 6000, PayoutAddress: "creator@upi"}
	require.ErrorIs(t, repo.CreatePending(ctx, second), ErrDuplicate)

	pending, err := repo.HasPending(ctx, p.ID)
	require.NoError(t, err)
	require.True(t, pending)

	at := time.Date(2025, 3, 2, 0, 0, 0, 0, time.UTC)
	err = db.Transaction(func(tx *gorm.DB) error {
		got, err := repo.ResolveTx(tx, first.ID, model.PayoutStatusCompleted, nil, at)
		if err != nil {
			return err
		}
		require.Equal(t, model.PayoutStatusCompleted, got.Status)
		require.Nil(t, got.PendingSlot)
		require.NotNil(t, got.ProcessedAt)
		return nil
	})
	require.NoError(t, err)

	// a resolved request frees the slot and cannot be resolved again
	require.NoError(t, repo.CreatePending(ctx, second))
	err = db.Transaction(func(tx *gorm.DB) error {
		_, err := repo.ResolveTx(tx, first.ID, model.PayoutStatusFailed, nil, at)
		return err
	})
	require.ErrorIs(t, err, ErrNotPending)

	list, err := repo.ListByStatus(ctx, model.PayoutStatusPending, 10)
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, second.ID, list[0].ID)
}

func TestDeleteOnlyRemovesPending(t *testing.T) {
	ctx := context.Background()
	db := dbtest.Open(t)
	repo := NewPayoutRepository(db)
	p := dbtest.Profile(t, db, "uid-delete", 0)

	req := &model.PayoutRequest{ProfileID: p.ID, CoinsAmount: 5000, PaiseAmount: 5000, PayoutAddress: "a.b@bank"}
	require.NoError(t, repo.CreatePending(ctx, req))
	require.NoError(t, repo.Delete(ctx, req.ID))

	_, err := repo.FindByID(ctx, req.ID)
	require.True(t, IsNotFound(err))
}
