package service

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/reelspay/reelspay-backend/internal/dbtest"
	"github.com/reelspay/reelspay-backend/internal/model"
	"github.com/reelspay/reelspay-backend/internal/ratelimit"
	"github.com/stretchr/testify/require"
)

func TestRecordWatchIsIdempotentPerAddress(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	creator := dbtest.Profile(t, env.db, "creator", 0)
	viewer := dbtest.Profile(t, env.db, "viewer", 0)
	v := dbtest.Video(t, env.db, creator.ID)
	svc := env.viewService(nil)

	first, err := svc.RecordWatch(ctx, WatchInput{VideoID: v.ID, ViewerUID: "viewer", Address: "203.0.113.9"})
	require.NoError(t, err)
	require.True(t, first.Admitted)

	env.clock.Advance(10 * time.Minute)
	second, err := svc.RecordWatch(ctx, WatchInput{VideoID: v.ID, ViewerUID: "viewer", Address: "203.0.113.9"})
	require.NoError(t, err)
	require.False(t, second.Admitted)
	require.True(t, second.Deduplicated)

	var views []model.VideoView
	require.NoError(t, env.db.Where("video_id = ?", v.ID).Find(&views).Error)
	require.Len(t, views, 1)
	require.False(t, views[0].CoinsAwarded)
	require.Equal(t, viewer.ID, *views[0].ViewerID)

	// watching never credits anyone
	require.Zero(t, env.count(t, &model.CoinTransaction{}, ""))
	require.Zero(t, env.profile(t, viewer.ID).CoinsBalance)
}

func TestRecordWatchUnknownAddressSharesThrottle(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	creator := dbtest.Profile(t, env.db, "creator", 0)
	svc := env.viewService(nil)

	videos := make([]*model.Video, 7)
	for i := range videos {
		videos[i] = dbtest.Video(t, env.db, creator.ID)
	}
	for i := 0; i < 5; i++ {
		res, err := svc.RecordWatch(ctx, WatchInput{VideoID: videos[i].ID})
		require.NoError(t, err)
		require.True(t, res.Admitted)
		env.clock.Advance(2 * time.Second)
	}

	_, err := svc.RecordWatch(ctx, WatchInput{VideoID: videos[5].ID})
	require.ErrorIs(t, err, ErrRateLimited)
	require.Equal(t, KindRateLimited, KindOf(err))
	require.Zero(t, env.count(t, &model.VideoView{}, "video_id = ?", videos[5].ID))

	env.clock.Advance(61 * time.Second)
	res, err := svc.RecordWatch(ctx, WatchInput{VideoID: videos[6].ID})
	require.NoError(t, err)
	require.True(t, res.Admitted)

	var unknown int64
	require.NoError(t, env.db.Model(&model.VideoView{}).Where("viewer_ip = ?", model.UnknownAddress).Count(&unknown).Error)
	require.Equal(t, int64(6), unknown)
}

func TestRecordWatchErrors(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	svc := env.viewService(nil)

	_, err := svc.RecordWatch(ctx, WatchInput{})
	require.ErrorIs(t, err, ErrVideoIDRequired)
	require.Equal(t, "video_id required", err.Error())

	_, err = svc.RecordWatch(ctx, WatchInput{VideoID: 77, Address: "1.1.1.1"})
	require.ErrorIs(t, err, ErrVideoNotFound)
}

func TestRecordWatchWithRedisWindow(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	creator := dbtest.Profile(t, env.db, "creator", 0)
	v1 := dbtest.Video(t, env.db, creator.ID)
	v2 := dbtest.Video(t, env.db, creator.ID)

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	window := ratelimit.NewRedisWindow(rdb, 5, time.Minute)
	svc := env.viewService(window)

	res, err := svc.RecordWatch(ctx, WatchInput{VideoID: v1.ID, Address: "10.1.1.1"})
	require.NoError(t, err)
	require.True(t, res.Admitted)

	// deduplicated reports must not consume the address window
	for i := 0; i < 10; i++ {
		res, err = svc.RecordWatch(ctx, WatchInput{VideoID: v1.ID, Address: "10.1.1.1"})
		require.NoError(t, err)
		require.True(t, res.Deduplicated)
	}
	res, err = svc.RecordWatch(ctx, WatchInput{VideoID: v2.ID, Address: "10.1.1.1"})
	require.NoError(t, err)
	require.True(t, res.Admitted)

	members, err := mr.ZMembers("reelspay:view_window:10.1.1.1")
	require.NoError(t, err)
	require.Len(t, members, 2)
}

func TestRecountViews(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	creator := dbtest.Profile(t, env.db, "creator", 0)
	v := dbtest.Video(t, env.db, creator.ID)
	svc := env.viewService(nil)

	_, err := svc.RecordWatch(ctx, WatchInput{VideoID: v.ID, Address: "1.1.1.1"})
	require.NoError(t, err)
	require.NoError(t, env.db.Model(&model.Video{}).Where("id = ?", v.ID).Update("views_count", 40).Error)

	n, err := svc.RecountViews(ctx, v.ID)
	require.NoError(t, err)
	require.Equal(t, int64(1), n)

	_, err = svc.RecountViews(ctx, 999)
	require.ErrorIs(t, err, ErrVideoNotFound)
}
