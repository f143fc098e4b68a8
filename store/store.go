// Package store holds the in-memory fixture that stands in for a database.
// A Store is built once at startup, validated, and never mutated afterwards,
// so reads are deterministic for the lifetime of the process and safe to share
// between concurrent requests without locking.
package store

import (
	"bytes"
	// `embed` bundles the default fixture into the binary.
	_ "embed"
	"fmt"
	"io"
	"os"

	// `yaml.v3` decodes the fixture file.
	"gopkg.in/yaml.v3"

	"github.com/user/todograph-go/apperror"
)

//go:embed fixture.yaml
var defaultFixture []byte

// Fixture is the on-disk shape of the fake database.
type Fixture struct {
	Users []User            `yaml:"users"`
	Todos map[string][]Todo `yaml:"todos"`
}

// Store owns the users and the per-user todo lists.
type Store struct {
	users []User
	todos map[string][]Todo
}

// New builds a Store from a fixture after validating it.
// The fixture's slices are copied, so later changes to f do not leak in.
func New(f Fixture) (*Store, error) {
	if err := validate(f); err != nil {
		return nil, err
	}
	s := &Store{
		users: append([]User(nil), f.Users...),
		todos: make(map[string][]Todo, len(f.Todos)),
	}
	for owner, list := range f.Todos {
		s.todos[owner] = append([]Todo(nil), list...)
	}
	return s, nil
}

// NewDefault builds the Store from the embedded tutorial fixture.
func NewDefault() (*Store, error) {
	return Load(bytes.NewReader(defaultFixture))
}

// Load decodes a YAML fixture from r and builds a Store from it.
// Unknown keys are rejected so a typo in a discriminator ("ocurrence") fails loudly.
func Load(r io.Reader) (*Store, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var f Fixture
	if err := dec.Decode(&f); err != nil {
		return nil, apperror.NewValidationError("failed to decode fixture", err)
	}
	return New(f)
}

// Open loads the fixture at path, or the embedded one when path is empty.
func Open(path string) (*Store, error) {
	if path == "" {
		return NewDefault()
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, apperror.NewConfigError(fmt.Sprintf("failed to open fixture %q", path), err)
	}
	defer file.Close()
	return Load(file)
}

// Users returns all user records in fixture order.
func (s *Store) Users() []User {
	return append([]User(nil), s.users...)
}

// TodosFor returns the todos owned by the named user in fixture order.
// An owner without todos yields an empty, non-nil slice.
func (s *Store) TodosFor(name string) []Todo {
	list := s.todos[name]
	return append(make([]Todo, 0, len(list)), list...)
}

func validate(f Fixture) error {
	ids := make(map[string]struct{}, len(f.Users))
	names := make(map[string]struct{}, len(f.Users))
	for i, u := range f.Users {
		if u.ID == "" || u.Name == "" {
			return apperror.NewValidationError(fmt.Sprintf("user #%d: id and name are required", i), nil)
		}
		if _, dup := ids[u.ID]; dup {
			return apperror.NewValidationError(fmt.Sprintf("user #%d: duplicate id %q", i, u.ID), nil)
		}
		ids[u.ID] = struct{}{}
		names[u.Name] = struct{}{}
	}
	for owner, list := range f.Todos {
		if _, ok := names[owner]; !ok {
			return apperror.NewValidationError(fmt.Sprintf("todos owned by unknown user %q", owner), nil)
		}
		for i, t := range list {
			if t.ID == "" || t.Title == "" || t.Content == "" {
				return apperror.NewValidationError(fmt.Sprintf("todo %s#%d: id, title and content are required", owner, i), nil)
			}
			if t.Kind() == KindUnknown {
				return apperror.NewValidationError(fmt.Sprintf("todo %s#%d: exactly one of date or occurence must be set", owner, i), nil)
			}
		}
	}
	return nil
}
