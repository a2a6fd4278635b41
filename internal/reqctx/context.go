package reqctx

import "context"

type ctxKey string

const (
	keyRID     ctxKey = "reelspay_rid"
	keyAddress ctxKey = "reelspay_client_address"
)

// WithRID stores the request correlation id for logs.
func WithRID(ctx context.Context, rid string) context.Context {
	return context.WithValue(ctx, keyRID, rid)
}

// RID returns correlation id if present.
func RID(ctx context.Context) string {
	v, _ := ctx.Value(keyRID).(string)
	return v
}

// WithAddress stores the network address the request was attributed to.
func WithAddress(ctx context.Context, addr string) context.Context {
	return context.WithValue(ctx, keyAddress, addr)
}

// Address returns the client address if present.
func Address(ctx context.Context) string {
	v, _ := ctx.Value(keyAddress).(string)
	return v
}
