package reqctx

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRoundTrip(t *testing.T) {
	ctx := context.Background()
	require.Empty(t, RID(ctx))
	require.Empty(t, Address(ctx))

	ctx = WithAddress(WithRID(ctx, "req-1"), "203.0.113.9")
	require.Equal(t, "req-1", RID(ctx))
	require.Equal(t, "203.0.113.9", Address(ctx))
}
