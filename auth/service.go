// Package auth is responsible for token handling and the authentication gate.
// This includes signing tokens (for the debug injector and the CLI), verifying
// signatures, decoding payloads, and resolving the user a token was issued for.
package auth

import (
	"errors"
	"fmt"
	"strings"

	// Third-party library for JWT handling. `jwt/v5` indicates version 5.
	"github.com/golang-jwt/jwt/v5"

	"github.com/user/todograph-go/apperror"
	"github.com/user/todograph-go/config"
)

// Claims is the payload of our tokens: the name of the user they were issued for.
// Embedding `jwt.RegisteredClaims` lets the parser run its standard checks;
// every registered claim is left empty, so tokens never expire.
type Claims struct {
	Name string `json:"name"`
	jwt.RegisteredClaims
}

// TokenService signs, verifies and decodes tokens with a shared HMAC secret.
type TokenService struct {
	secret []byte
}

// NewTokenService creates a new TokenService from the auth configuration.
func NewTokenService(authConfig config.AuthConfig) *TokenService {
	return &TokenService{secret: []byte(authConfig.JWTSecret)}
}

// Sign creates an HS256 token whose payload is `{"name": name}`.
func (s *TokenService) Sign(name string) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{Name: name})
	tokenString, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return tokenString, nil
}

// Verify checks the token's signature against the shared secret.
// Any failure (malformed token, wrong secret, tampered payload, non-HMAC algorithm)
// is reported as an InvalidTokenError.
func (s *TokenService) Verify(tokenString string) error {
	tokenString = stripBearer(tokenString)
	if tokenString == "" {
		return apperror.NewInvalidTokenError("invalid token", errors.New("token is missing"))
	}
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			// Ensure the token's signing method is HMAC, as expected.
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return apperror.NewInvalidTokenError("invalid token", err)
	}
	if !token.Valid {
		return apperror.NewInvalidTokenError("invalid token", nil)
	}
	return nil
}

// Decode reads the token payload without checking the signature.
// Callers must Verify first.
func (s *TokenService) Decode(tokenString string) (*Claims, error) {
	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(stripBearer(tokenString), claims); err != nil {
		return nil, apperror.NewInvalidTokenError("invalid token payload", err)
	}
	return claims, nil
}

// stripBearer removes an optional "Bearer " scheme prefix (case-insensitive).
// The tutorial client sends the bare token, regular clients send "Bearer {token}".
func stripBearer(header string) string {
	header = strings.TrimSpace(header)
	if len(header) > len("bearer ") && strings.EqualFold(header[:len("bearer ")], "bearer ") {
		return strings.TrimSpace(header[len("bearer "):])
	}
	return header
}
