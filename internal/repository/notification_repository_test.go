package repository

import (
	"context"
	"testing"

	"github.com/reelspay/reelspay-backend/internal/dbtest"
	"github.com/reelspay/reelspay-backend/internal/model"
	"github.com/stretchr/testify/require"
)

func TestNotificationPerPayoutEventIsWrittenOnce(t *testing.T) {
	ctx := context.Background()
	repo := NewNotificationRepository(dbtest.Open(t))
	payoutID := uint64(41)
	videoID := uint64(7)

	created, err := repo.Create(ctx, &model.Notification{UserUID: "u1", Type: model.NotificationPayoutRequested, PayoutRequestID: &payoutID})
	require.NoError(t, err)
	require.True(t, created)

	created, err = repo.Create(ctx, &model.Notification{UserUID: "u1", Type: model.NotificationPayoutRequested, PayoutRequestID: &payoutID})
	require.NoError(t, err)
	require.False(t, created)

	created, err = repo.Create(ctx, &model.Notification{UserUID: "u1", Type: model.NotificationPayoutFailed, PayoutRequestID: &payoutID})
	require.NoError(t, err)
	require.True(t, created)

	// earnings carry no payout request and are never collapsed
	for i := 0; i < 2; i++ {
		created, err = repo.Create(ctx, &model.Notification{UserUID: "u1", Type: model.NotificationCreatorEarning, VideoID: &videoID})
		require.NoError(t, err)
		require.True(t, created)
	}

	all, err := repo.List(ctx, NotificationQuery{UserUID: "u1"})
	require.NoError(t, err)
	require.Len(t, all, 4)

	forPayout, err := repo.List(ctx, NotificationQuery{UserUID: "u1", PayoutRequestID: payoutID})
	require.NoError(t, err)
	require.Len(t, forPayout, 2)

	earnings, err := repo.List(ctx, NotificationQuery{UserUID: "u1", Type: model.NotificationCreatorEarning})
	require.NoError(t, err)
	require.Len(t, earnings, 2)
}

func TestNotificationMarkRead(t *testing.T) {
	ctx := context.Background()
	repo := NewNotificationRepository(dbtest.Open(t))
	var ids []uint64
	for i := 0; i < 3; i++ {
		n := &model.Notification{UserUID: "u1", Type: model.NotificationCreatorEarning}
		_, err := repo.Create(ctx, n)
		require.NoError(t, err)
		ids = append(ids, n.ID)
	}
	_, err := repo.Create(ctx, &model.Notification{UserUID: "u2", Type: model.NotificationCreatorEarning})
	require.NoError(t, err)

	marked, err := repo.MarkRead(ctx, "u1", ids[:1])
	require.NoError(t, err)
	require.Equal(t, int64(1), marked)

	// another user's ids are not touched
	marked, err = repo.MarkRead(ctx, "u2", ids[1:])
	require.NoError(t, err)
	require.Zero(t, marked)

	unread, err := repo.List(ctx, NotificationQuery{UserUID: "u1", UnreadOnly: true})
	require.NoError(t, err)
	require.Len(t, unread, 2)

	marked, err = repo.MarkRead(ctx, "u1", nil)
	require.NoError(t, err)
	require.Equal(t, int64(2), marked)

	n, err := repo.CountUnread(ctx, "u1")
	require.NoError(t, err)
	require.Zero(t, n)
	n, err = repo.CountUnread(ctx, "u2")
	require.NoError(t, err)
	require.Equal(t, int64(1), n)
}
