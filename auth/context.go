// Package auth, as part of the authentication module.
// This file, `context.go`, carries the raw Authorization header through the
// request `context.Context` so resolvers deep inside the GraphQL executor can
// reach it without seeing the *http.Request.
package auth

import (
	"context"
)

// `contextKey` is a custom type for context keys. Using a custom type prevents collisions
// with context keys defined in other packages.
type contextKey string

const (
	tokenContextKey contextKey = "auth_token"
)

// NewContextWithToken returns a child context carrying the raw token string.
func NewContextWithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenContextKey, token)
}

// TokenFromContext extracts the raw token stored by NewContextWithToken.
// The second return value reports whether a token was stored at all.
func TokenFromContext(ctx context.Context) (string, bool) {
	token, ok := ctx.Value(tokenContextKey).(string)
	return token, ok
}
