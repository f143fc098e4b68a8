package graph

import (
	"context"

	"github.com/graphql-go/graphql"
)

// Middleware runs before a resolver and computes an intermediate value for it.
// Returning an error aborts the field; the resolver is not called.
type Middleware func(p graphql.ResolveParams) (interface{}, error)

// Binding attaches a Middleware to a resolver under a result name.
// The resolver reads the value with MiddlewareResult(p.Context, ResultName).
type Binding struct {
	Provider   Middleware
	ResultName string
}

type middlewareResultKey string

// middlewareResult wraps the value so a nil result is still "present".
type middlewareResult struct {
	value interface{}
}

// WithMiddlewares wraps resolve so the bindings run first, in order.
// Each result is placed on the context passed to later bindings and to resolve.
func WithMiddlewares(resolve graphql.FieldResolveFn, bindings ...Binding) graphql.FieldResolveFn {
	return func(p graphql.ResolveParams) (interface{}, error) {
		if p.Context == nil {
			p.Context = context.Background()
		}
		for _, b := range bindings {
			v, err := b.Provider(p)
			if err != nil {
				return nil, err
			}
			p.Context = context.WithValue(p.Context, middlewareResultKey(b.ResultName), middlewareResult{value: v})
		}
		return resolve(p)
	}
}

// MiddlewareResult returns the value a bound middleware produced under name.
// ok is false when no middleware with that name ran for this field.
func MiddlewareResult(ctx context.Context, name string) (value interface{}, ok bool) {
	if ctx == nil {
		return nil, false
	}
	r, ok := ctx.Value(middlewareResultKey(name)).(middlewareResult)
	if !ok {
		return nil, false
	}
	return r.value, true
}
