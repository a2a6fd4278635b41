package main

import (
	"bytes"
	"context"
	"testing"

	"github.com/reelspay/reelspay-backend/internal/dbtest"
	"github.com/reelspay/reelspay-backend/internal/model"
	"github.com/reelspay/reelspay-backend/internal/service"
	"github.com/stretchr/testify/require"
)

func TestSettleCommands(t *testing.T) {
	ctx := context.Background()
	conn := dbtest.Open(t)
	creator := dbtest.Profile(t, conn, "creator", 12000)
	ops := newOperator(conn, service.DefaultPayoutPolicy())

	first, err := ops.payouts.Request(ctx, "creator", 5000, "creator@upi")
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, ops.execute(ctx, []string{"list"}, &out))
	require.Contains(t, out.String(), "creator@upi")
	require.Contains(t, out.String(), "pending")

	out.Reset()
	require.NoError(t, ops.execute(ctx, []string{"fail", "1", "account", "closed"}, &out))
	require.Equal(t, "payout 1 failed\n", out.String())

	var failed model.PayoutRequest
	require.NoError(t, conn.First(&failed, first.Request.ID).Error)
	require.Equal(t, "account closed", *failed.FailureReason)

	second, err := ops.payouts.Request(ctx, "creator", 6000, "creator@upi")
	require.NoError(t, err)
	out.Reset()
	require.NoError(t, ops.execute(ctx, []string{"complete", "2"}, &out))
	require.Equal(t, "payout 2 completed\n", out.String())
	require.EqualValues(t, 2, second.Request.ID)

	require.ErrorIs(t, ops.execute(ctx, []string{"complete", "2"}, &out), service.ErrPayoutFinalized)

	out.Reset()
	require.NoError(t, ops.execute(ctx, []string{"audit", "1"}, &out))
	require.Contains(t, out.String(), `"consistent": true`)
	require.Contains(t, out.String(), `"coins_balance": 6000`)
	require.EqualValues(t, 1, creator.ID)
}

func TestSettleUsage(t *testing.T) {
	ops := newOperator(dbtest.Open(t), service.DefaultPayoutPolicy())
	ctx := context.Background()
	for _, args := range [][]string{nil, {"bogus"}, {"complete"}, {"fail", "1"}, {"audit", "x"}, {"list", "-nope"}} {
		require.ErrorIs(t, ops.execute(ctx, args, &bytes.Buffer{}), errUsage, "%v", args)
	}
}
