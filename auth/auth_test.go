package auth

import (
	"context"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/todograph-go/apperror"
	"github.com/user/todograph-go/config"
	"github.com/user/todograph-go/store"
	"github.com/user/todograph-go/users"
)

func newGate(t *testing.T, secret string) (*Gate, *TokenService) {
	t.Helper()
	s, err := store.NewDefault()
	require.NoError(t, err)
	tokens := NewTokenService(config.AuthConfig{JWTSecret: secret})
	return NewGate(tokens, users.NewService(s)), tokens
}

func TestSign_PayloadCarriesOnlyName(t *testing.T) {
	_, tokens := newGate(t, "secret")

	token, err := tokens.Sign("Bob")
	require.NoError(t, err)

	parts := strings.Split(token, ".")
	require.Len(t, parts, 3)
	payload, err := base64.RawURLEncoding.DecodeString(parts[1])
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"Bob"}`, string(payload))
}

func TestAuthenticate_ValidToken(t *testing.T) {
	gate, tokens := newGate(t, "secret")

	for _, name := range []string{"Bob", "Alice", "Steeve"} {
		token, err := tokens.Sign(name)
		require.NoError(t, err)

		user, err := gate.Authenticate(token)
		require.NoError(t, err)
		require.NotNil(t, user)
		assert.Equal(t, name, user.Name)
	}
}

func TestAuthenticate_BearerPrefix(t *testing.T) {
	gate, tokens := newGate(t, "secret")
	token, err := tokens.Sign("Alice")
	require.NoError(t, err)

	for _, header := range []string{"Bearer " + token, "bearer " + token, "  BEARER   " + token + " "} {
		user, err := gate.Authenticate(header)
		require.NoError(t, err, header)
		require.NotNil(t, user)
		assert.Equal(t, "1", user.ID)
	}
}

func TestAuthenticate_UnknownUserIsNil(t *testing.T) {
	gate, tokens := newGate(t, "secret")
	token, err := tokens.Sign("Mallory")
	require.NoError(t, err)

	user, err := gate.Authenticate(token)
	assert.NoError(t, err)
	assert.Nil(t, user)
}

func TestAuthenticate_InvalidTokens(t *testing.T) {
	gate, tokens := newGate(t, "secret")
	_, otherTokens := newGate(t, "another-secret")

	bob, err := tokens.Sign("Bob")
	require.NoError(t, err)
	wrongSecret, err := otherTokens.Sign("Bob")
	require.NoError(t, err)
	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{Name: "Bob"}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	// Swap the payload for Alice's while keeping Bob's signature.
	parts := strings.Split(bob, ".")
	parts[1] = base64.RawURLEncoding.EncodeToString([]byte(`{"name":"Alice"}`))
	tampered := strings.Join(parts, ".")

	tests := map[string]string{
		"empty":        "",
		"garbage":      "not-a-token",
		"wrong secret": wrongSecret,
		"tampered":     tampered,
		"alg none":     none,
		"bearer only":  "Bearer ",
	}
	for name, token := range tests {
		t.Run(name, func(t *testing.T) {
			user, err := gate.Authenticate(token)
			require.Error(t, err)
			assert.True(t, apperror.IsInvalidToken(err), "got %v", err)
			assert.Nil(t, user)
		})
	}
}

func TestTokenMiddleware_StoresHeader(t *testing.T) {
	var got string
	var found bool
	h := TokenMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, found = TokenFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodPost, "/graphql", nil)
	req.Header.Set("Authorization", "abc.def.ghi")
	h.ServeHTTP(httptest.NewRecorder(), req)

	assert.True(t, found)
	assert.Equal(t, "abc.def.ghi", got)

	_, found = TokenFromContext(context.Background())
	assert.False(t, found)
}

func TestDebugTokenInjector_OverridesHeader(t *testing.T) {
	gate, tokens := newGate(t, "secret")
	inject, err := DebugTokenInjector(tokens, "Bob")
	require.NoError(t, err)

	var header string
	h := inject(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header = r.Header.Get("Authorization")
	}))

	req := httptest.NewRequest(http.MethodPost, "/graphql", nil)
	req.Header.Set("Authorization", "client supplied")
	h.ServeHTTP(httptest.NewRecorder(), req)

	user, err := gate.Authenticate(header)
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, "Bob", user.Name)
}
