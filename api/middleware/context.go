package middleware

import "context"

type contextKey string

const (
	ctxSessionID contextKey = "session_id"
	ctxAuthToken contextKey = "auth_token"
)

// SessionIDFromContext returns the buyer session id set by the session
// middleware, or "".
func SessionIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxSessionID).(string); ok {
		return v
	}
	return ""
}

// AuthTokenFromContext returns the marketplace bearer token forwarded
// by the caller, or "" for anonymous viewers.
func AuthTokenFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxAuthToken).(string); ok {
		return v
	}
	return ""
}

// WithSessionID injects the session identifier into the context.
func WithSessionID(ctx context.Context, sessionID string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxSessionID, sessionID)
}

// WithAuthToken injects the forwarded bearer token into the context.
func WithAuthToken(ctx context.Context, token string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxAuthToken, token)
}
