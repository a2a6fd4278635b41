package main

import (
	"context"
	"testing"

	"github.com/reelspay/reelspay-backend/internal/dbtest"
	"github.com/reelspay/reelspay-backend/internal/model"
	"github.com/reelspay/reelspay-backend/internal/service"
	"github.com/stretchr/testify/require"
)

func TestSeedIsIdempotent(t *testing.T) {
	ctx := context.Background()
	conn := dbtest.Open(t)

	n, err := seed(ctx, conn, "", "ops", false)
	require.NoError(t, err)
	require.Equal(t, len(buildSeedVideos()), n)

	n, err = seed(ctx, conn, "", "ops", false)
	require.NoError(t, err)
	require.Zero(t, n)

	var videos int64
	require.NoError(t, conn.Model(&model.Video{}).Count(&videos).Error)
	require.EqualValues(t, len(buildSeedVideos()), videos)

	var creator model.Profile
	require.NoError(t, conn.Where("user_uid = ?", "seed-creator").First(&creator).Error)
	require.True(t, creator.IsCreator)
	var roles int64
	require.NoError(t, conn.Model(&model.UserRole{}).Count(&roles).Error)
	require.EqualValues(t, 1, roles)
}

func TestSeedVideosFitTheirClass(t *testing.T) {
	for _, v := range buildSeedVideos() {
		limits, ok := service.ClassLimits(v.Class)
		require.True(t, ok)
		require.GreaterOrEqual(t, v.Seconds, limits.MinSeconds, v.Title)
		require.LessOrEqual(t, v.Seconds, limits.MaxSeconds, v.Title)
		require.True(t, v.Category.Valid())
	}
}
