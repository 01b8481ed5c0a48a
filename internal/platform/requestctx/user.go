package requestctx

import "context"

// userIDContextKey is the context key for authenticated user identity.
type userIDContextKey struct{}

// WithUserID stores a user identifier in context.
func WithUserID(ctx context.Context, userID string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, userIDContextKey{}, userID)
}

// UserIDFromContext returns the user identifier stored in context.
func UserIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	value, _ := ctx.Value(userIDContextKey{}).(string)
	return value
}

// PrincipalFromContext returns the authenticated principal for ctx.
//
// A bound request context wins over a bare user id so that handlers and
// background work observe the same identity for one call.
func PrincipalFromContext(ctx context.Context) string {
	if rc, ok := FromContext(ctx); ok {
		return rc.Principal()
	}
	return UserIDFromContext(ctx)
}
