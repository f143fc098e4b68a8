package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/user/todograph-go/apperror"
	"github.com/user/todograph-go/graph"
)

// RequestIDHeader carries the request identifier in and out of the service.
const RequestIDHeader = "X-Request-Id"

// resolutionContext attaches a fresh graph.RequestContext to every request.
// The identifier is taken from the incoming X-Request-Id header when present
// and echoed back on the response.
func resolutionContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)
		rc := &graph.RequestContext{ID: id}
		r = r.WithContext(graph.NewContext(r.Context(), rc))
		rc.Request = r
		next.ServeHTTP(w, r)
	})
}

// requestLogger logs one line per request once the response is written.
func requestLogger(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			defer func() {
				var id string
				if rc, ok := graph.FromContext(r.Context()); ok {
					id = rc.ID
				}
				logger.Info("request",
					zap.String("request_id", id),
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.String("remote", r.RemoteAddr),
					zap.Int("status", ww.Status()),
					zap.Int("bytes", ww.BytesWritten()),
					zap.Duration("duration", time.Since(start)))
			}()
			next.ServeHTTP(ww, r)
		})
	}
}

// recoverer turns a panic in a handler into a 500 response with an apperror body.
func recoverer(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					if rvr == http.ErrAbortHandler {
						panic(rvr)
					}
					logger.Error("panic while serving request",
						zap.Any("panic", rvr),
						zap.String("path", r.URL.Path),
						zap.Stack("stack"))
					writeError(w, apperror.NewInternalError("internal server error", nil))
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
