// Package auth, as part of the authentication module.
// This file, `middleware.go`, defines HTTP middleware related to authentication.
// Unlike a classic guard, nothing here rejects a request: authentication is
// enforced per GraphQL field by the gate, so `user` queries work without a token.
package auth

import (
	"fmt"
	"net/http"
)

// AuthorizationHeader is the request header that carries the token.
const AuthorizationHeader = "Authorization"

// TokenMiddleware copies the Authorization header into the request context.
// The returned middleware conforms to the standard Go `func(next http.Handler) http.Handler` pattern.
func TokenMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := NewContextWithToken(r.Context(), r.Header.Get(AuthorizationHeader))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// DebugTokenInjector creates middleware that overwrites the Authorization header
// of every request with a token signed for name. It stands in for a real client
// holding credentials and must only be enabled in development.
// The token is signed once, when the middleware is built.
func DebugTokenInjector(tokens *TokenService, name string) (func(next http.Handler) http.Handler, error) {
	token, err := tokens.Sign(name)
	if err != nil {
		return nil, fmt.Errorf("failed to sign debug token for %q: %w", name, err)
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r.Header.Set(AuthorizationHeader, token)
			next.ServeHTTP(w, r)
		})
	}, nil
}
