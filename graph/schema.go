// Package graph declares the GraphQL schema of the todo service and the
// resolvers behind it.
//
// Types are built explicitly with graphql-go's builders. Resolvers are not
// attached inline: NewSchema looks each field up in a Resolvers table keyed by
// (type, field), so the wiring between schema and services is visible in one
// place (see NewResolvers).
package graph

import (
	"fmt"
	"sort"
	"strings"

	"github.com/graphql-go/graphql"

	"github.com/user/todograph-go/store"
)

// Schema type names.
const (
	QueryTypeName         = "RootQuery"
	UserTypeName          = "User"
	TodoTypeName          = "Todo"
	PonctualTodoTypeName  = string(store.KindPonctual)
	RecurrentTodoTypeName = string(store.KindRecurrent)
)

// builder attaches table resolvers to fields and remembers which entries it used.
type builder struct {
	resolvers Resolvers
	used      map[FieldKey]bool
}

func (b *builder) fields(typeName string, fields graphql.Fields) graphql.Fields {
	for name, field := range fields {
		key := FieldKey{Type: typeName, Field: name}
		if fn, ok := b.resolvers[key]; ok {
			field.Resolve = fn
			b.used[key] = true
		}
	}
	return fields
}

// unused reports table entries that match no field, sorted for stable messages.
func (b *builder) unused() []string {
	var out []string
	for key := range b.resolvers {
		if !b.used[key] {
			out = append(out, key.Type+"."+key.Field)
		}
	}
	sort.Strings(out)
	return out
}

// todoFields are the fields every Todo variant exposes.
func todoFields() graphql.Fields {
	return graphql.Fields{
		"id":      &graphql.Field{Type: graphql.NewNonNull(graphql.ID)},
		"title":   &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		"content": &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
	}
}

// todoKind extracts the variant of a value resolved for a Todo-typed field.
func todoKind(value interface{}) store.TodoKind {
	switch t := value.(type) {
	case store.Todo:
		return t.Kind()
	case *store.Todo:
		if t != nil {
			return t.Kind()
		}
	}
	return store.KindUnknown
}

// NewSchema builds the executable schema, attaching resolvers from r.
// A table entry naming a field that does not exist is an error.
func NewSchema(r Resolvers) (graphql.Schema, error) {
	b := &builder{resolvers: r, used: make(map[FieldKey]bool)}

	var ponctualTodoType, recurrentTodoType *graphql.Object

	todoInterface := graphql.NewInterface(graphql.InterfaceConfig{
		Name:        TodoTypeName,
		Description: "Something a user has to do.",
		Fields:      b.fields(TodoTypeName, todoFields()),
		ResolveType: func(p graphql.ResolveTypeParams) *graphql.Object {
			switch todoKind(p.Value) {
			case store.KindPonctual:
				return ponctualTodoType
			case store.KindRecurrent:
				return recurrentTodoType
			}
			return nil
		},
	})

	ponctual := todoFields()
	ponctual["date"] = &graphql.Field{Type: graphql.NewNonNull(graphql.String)}
	ponctualTodoType = graphql.NewObject(graphql.ObjectConfig{
		Name:        PonctualTodoTypeName,
		Description: "A one-off todo tied to a calendar day.",
		Interfaces:  []*graphql.Interface{todoInterface},
		Fields:      b.fields(PonctualTodoTypeName, ponctual),
		IsTypeOf: func(p graphql.IsTypeOfParams) bool {
			return todoKind(p.Value) == store.KindPonctual
		},
	})

	recurrent := todoFields()
	recurrent["occurence"] = &graphql.Field{Type: graphql.NewNonNull(graphql.String)}
	recurrentTodoType = graphql.NewObject(graphql.ObjectConfig{
		Name:        RecurrentTodoTypeName,
		Description: "A todo that repeats.",
		Interfaces:  []*graphql.Interface{todoInterface},
		Fields:      b.fields(RecurrentTodoTypeName, recurrent),
		IsTypeOf: func(p graphql.IsTypeOfParams) bool {
			return todoKind(p.Value) == store.KindRecurrent
		},
	})

	userType := graphql.NewObject(graphql.ObjectConfig{
		Name: UserTypeName,
		Fields: b.fields(UserTypeName, graphql.Fields{
			"id":          &graphql.Field{Type: graphql.NewNonNull(graphql.ID)},
			"name":        &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
			"description": &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
			"age":         &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
			"admin":       &graphql.Field{Type: graphql.NewNonNull(graphql.Boolean)},
			"todos": &graphql.Field{
				Type: graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(todoInterface))),
				Args: graphql.FieldConfigArgument{
					"search": &graphql.ArgumentConfig{Type: graphql.String},
				},
			},
		}),
	})

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: QueryTypeName,
		Fields: b.fields(QueryTypeName, graphql.Fields{
			"user": &graphql.Field{
				Type: userType,
				Args: graphql.FieldConfigArgument{
					"name": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
			},
			"viewer": &graphql.Field{
				Type:        userType,
				Description: "The user the request's token was issued for.",
			},
		}),
	})

	if unused := b.unused(); len(unused) > 0 {
		return graphql.Schema{}, fmt.Errorf("resolvers registered for unknown fields: %s", strings.Join(unused, ", "))
	}

	schema, err := graphql.NewSchema(graphql.SchemaConfig{
		Query: queryType,
		// The variants are only reachable through the interface, so list them explicitly.
		Types: []graphql.Type{ponctualTodoType, recurrentTodoType},
	})
	if err != nil {
		return graphql.Schema{}, fmt.Errorf("failed to build schema: %w", err)
	}
	return schema, nil
}

// Build wires services into the resolver table and builds the schema.
func Build(svc Services) (graphql.Schema, error) {
	return NewSchema(NewResolvers(svc))
}
