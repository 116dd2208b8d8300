package core

import "context"

type contextKey string

const (
	ctxKeyUser      contextKey = "import_user"
	ctxKeyIPAddress contextKey = "import_ip"
)

// ContextWithUser records who triggered an operation, for logging.
func ContextWithUser(ctx context.Context, user string) context.Context {
	return context.WithValue(ctx, ctxKeyUser, user)
}

// ContextWithIPAddress records the client address, for logging.
func ContextWithIPAddress(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, ctxKeyIPAddress, ip)
}

// UserFromContext returns the user recorded by ContextWithUser, or "".
func UserFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(ctxKeyUser).(string); ok {
		return v
	}
	return ""
}

// IPAddressFromContext returns the address recorded by ContextWithIPAddress, or "".
func IPAddressFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(ctxKeyIPAddress).(string); ok {
		return v
	}
	return ""
}
