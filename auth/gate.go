package auth

import (
	"github.com/user/todograph-go/store"
)

// UserFinder looks a user up by name. users.Service satisfies it.
type UserFinder interface {
	Find(name string) (store.User, bool)
}

// Gate authenticates bearer tokens and resolves the user they name.
// It is stateless across requests.
type Gate struct {
	tokens *TokenService
	users  UserFinder
}

// NewGate creates a new Gate.
func NewGate(tokens *TokenService, users UserFinder) *Gate {
	return &Gate{tokens: tokens, users: users}
}

// Authenticate verifies the token, decodes its payload and looks up the user
// named in it.
//
// A bad signature fails with an InvalidTokenError and no user. A valid token
// for a name that is not in the store yields (nil, nil): an unknown user is a
// null viewer, not an error.
func (g *Gate) Authenticate(token string) (*store.User, error) {
	if err := g.tokens.Verify(token); err != nil {
		return nil, err
	}
	claims, err := g.tokens.Decode(token)
	if err != nil {
		return nil, err
	}
	user, ok := g.users.Find(claims.Name)
	if !ok {
		return nil, nil
	}
	return &user, nil
}
