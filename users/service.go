// Package users encapsulates user lookup.
// This file, `service.go`, contains the business logic for finding users.
// It acts as the "Service" layer shared by the GraphQL resolvers and the
// authentication gate.
package users

import (
	"github.com/user/todograph-go/store"
)

// Service provides read access to user records.
// It holds no state of its own; the Store it wraps is the single owner of the data.
type Service struct {
	store *store.Store
}

// NewService creates a new Service.
// This is the constructor function for `Service`; the store is injected explicitly.
func NewService(s *store.Store) *Service {
	return &Service{store: s}
}

// Find returns the first user whose name matches exactly.
// The second return value is false when no user matches; that is a normal
// outcome, not an error.
func (s *Service) Find(name string) (store.User, bool) {
	for _, u := range s.store.Users() {
		if u.Name == name {
			return u, true
		}
	}
	return store.User{}, false
}

// List returns every user in fixture order.
func (s *Service) List() []store.User {
	return s.store.Users()
}
