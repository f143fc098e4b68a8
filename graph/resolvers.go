package graph

import (
	"github.com/graphql-go/graphql"
	"go.uber.org/zap"

	"github.com/user/todograph-go/auth"
	"github.com/user/todograph-go/store"
)

// ViewerResultName is the name the authentication middleware binds its user under.
const ViewerResultName = "user"

// UserFinder looks a user up by name.
type UserFinder interface {
	Find(name string) (store.User, bool)
}

// TodoSource lists the todos owned by a user.
type TodoSource interface {
	TodosFor(name string) []store.Todo
}

// Authenticator turns a raw token into the user it was issued for.
type Authenticator interface {
	Authenticate(token string) (*store.User, error)
}

// Services are the dependencies threaded into every resolver.
type Services struct {
	Users  UserFinder
	Todos  TodoSource
	Gate   Authenticator
	Logger *zap.Logger
}

// FieldKey identifies one field of one schema type.
type FieldKey struct {
	Type  string
	Field string
}

// Resolvers is the registration table from (type, field) to resolver function.
// Fields without an entry fall back to graphql-go's default property resolver.
type Resolvers map[FieldKey]graphql.FieldResolveFn

// NewResolvers builds the resolver table for the schema.
func NewResolvers(svc Services) Resolvers {
	if svc.Logger == nil {
		svc.Logger = zap.NewNop()
	}
	r := &resolvers{svc: svc}
	return Resolvers{
		{Type: QueryTypeName, Field: "user"}: r.user,
		{Type: QueryTypeName, Field: "viewer"}: WithMiddlewares(r.viewer, Binding{
			Provider:   AuthMiddleware(svc.Gate, svc.Logger),
			ResultName: ViewerResultName,
		}),
		{Type: UserTypeName, Field: "todos"}: r.todos,
	}
}

type resolvers struct {
	svc Services
}

// user resolves `user(name: String!): User`.
func (r *resolvers) user(p graphql.ResolveParams) (interface{}, error) {
	name, _ := p.Args["name"].(string)
	u, ok := r.svc.Users.Find(name)
	if !ok {
		return nil, nil
	}
	return &u, nil
}

// viewer resolves `viewer: User` from the authentication middleware's result.
func (r *resolvers) viewer(p graphql.ResolveParams) (interface{}, error) {
	v, _ := MiddlewareResult(p.Context, ViewerResultName)
	if u, ok := v.(*store.User); ok && u != nil {
		return u, nil
	}
	return nil, nil
}

// todos resolves `User.todos(search: String): [Todo!]!`.
// The search argument is accepted but not applied.
func (r *resolvers) todos(p graphql.ResolveParams) (interface{}, error) {
	var name string
	switch u := p.Source.(type) {
	case *store.User:
		name = u.Name
	case store.User:
		name = u.Name
	}
	return r.svc.Todos.TodosFor(name), nil
}

// AuthMiddleware authenticates the token carried by the request context.
// It yields the authenticated *store.User, or nil when the token names an
// unknown user. An invalid token fails the field with an InvalidTokenError.
func AuthMiddleware(gate Authenticator, logger *zap.Logger) Middleware {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(p graphql.ResolveParams) (interface{}, error) {
		token, _ := auth.TokenFromContext(p.Context)
		u, err := gate.Authenticate(token)
		if err != nil {
			logger.Debug("authentication failed",
				zap.String("request_id", requestID(p.Context)),
				zap.String("field", p.Info.FieldName),
				zap.Error(err))
			return nil, err
		}
		if u == nil {
			return nil, nil
		}
		return u, nil
	}
}
