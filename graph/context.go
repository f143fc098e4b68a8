package graph

import (
	"context"
	"net/http"
)

// RequestContext is the per-request resolution context: the raw HTTP request
// and an identifier used to correlate log lines. A fresh one is attached by the
// transport shell to every request.
type RequestContext struct {
	ID      string
	Request *http.Request
}

type requestContextKey struct{}

// NewContext returns a child context carrying rc.
func NewContext(ctx context.Context, rc *RequestContext) context.Context {
	return context.WithValue(ctx, requestContextKey{}, rc)
}

// FromContext returns the RequestContext stored by NewContext, if any.
func FromContext(ctx context.Context) (*RequestContext, bool) {
	if ctx == nil {
		return nil, false
	}
	rc, ok := ctx.Value(requestContextKey{}).(*RequestContext)
	return rc, ok
}

// requestID is a logging helper; it returns "" outside of an HTTP request.
func requestID(ctx context.Context) string {
	if rc, ok := FromContext(ctx); ok {
		return rc.ID
	}
	return ""
}
