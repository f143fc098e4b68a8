// Package server is the HTTP transport shell: it exposes the GraphQL schema at
// /graphql, the GraphiQL explorer at /graphiql and a health probe, and owns the
// lifecycle of the underlying http.Server.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	// `chi` is a lightweight, idiomatic and composable router for building HTTP services in Go.
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	// `chi/cors` provides CORS (Cross-Origin Resource Sharing) middleware.
	"github.com/go-chi/cors"
	"github.com/graphql-go/graphql"
	"github.com/graphql-go/handler"
	"go.uber.org/zap"

	"github.com/user/todograph-go/apperror"
	"github.com/user/todograph-go/auth"
	"github.com/user/todograph-go/config"
	"github.com/user/todograph-go/graph"
)

// Server serves the GraphQL schema over HTTP.
type Server struct {
	cfg    *config.AppConfig
	logger *zap.Logger
	router chi.Router
	srv    *http.Server
}

// New builds the router and the http.Server for schema.
// tokens is used to sign the debug token when the injector is enabled.
func New(cfg *config.AppConfig, schema graphql.Schema, tokens *auth.TokenService, logger *zap.Logger) (*Server, error) {
	s := &Server{cfg: cfg, logger: logger}

	r := chi.NewRouter()

	// Global middleware; chi requires it to be registered before any route.
	r.Use(resolutionContext)
	r.Use(requestLogger(logger))
	r.Use(recoverer(logger))
	r.Use(middleware.RealIP)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", RequestIDHeader},
		ExposedHeaders: []string{RequestIDHeader},
		MaxAge:         300,
	}))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, apperror.NewNotFoundError(fmt.Sprintf("no route for %s", r.URL.Path), nil))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, apperror.NewBadRequestError(fmt.Sprintf("method %s not allowed", r.Method), nil))
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	var inject func(http.Handler) http.Handler
	if cfg.Auth.DebugTokenEnabled {
		var err error
		inject, err = auth.DebugTokenInjector(tokens, cfg.Auth.DebugTokenUser)
		if err != nil {
			return nil, err
		}
		logger.Warn("debug token injector enabled, every request is authenticated",
			zap.String("user", cfg.Auth.DebugTokenUser))
	}

	// GraphQL routes share the token middleware chain, so queries sent from
	// GraphiQL are authenticated the same way as API calls.
	r.Group(func(r chi.Router) {
		if inject != nil {
			r.Use(inject)
		}
		r.Use(auth.TokenMiddleware)

		r.Handle("/graphql", s.graphQLHandler(&schema, false))
		if cfg.GraphQL.GraphiQLEnabled {
			r.Handle("/graphiql", s.graphQLHandler(&schema, true))
		}
	})

	s.router = r
	s.srv = &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s, nil
}

// graphQLHandler executes queries sent as JSON POST bodies or GET parameters.
// With graphiql set, browsers asking for HTML get the GraphiQL explorer instead.
func (s *Server) graphQLHandler(schema *graphql.Schema, graphiql bool) http.Handler {
	return handler.New(&handler.Config{
		Schema:   schema,
		Pretty:   s.cfg.GraphQL.Pretty,
		GraphiQL: graphiql,
		ResultCallbackFn: func(ctx context.Context, params *graphql.Params, result *graphql.Result, responseBody []byte) {
			if len(result.Errors) == 0 {
				return
			}
			var id string
			if rc, ok := graph.FromContext(ctx); ok {
				id = rc.ID
			}
			messages := make([]string, 0, len(result.Errors))
			for _, e := range result.Errors {
				messages = append(messages, e.Message)
			}
			s.logger.Info("graphql request returned errors",
				zap.String("request_id", id),
				zap.String("operation", params.OperationName),
				zap.Strings("errors", messages))
		},
	})
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves until ctx is cancelled, then shuts down gracefully within the
// configured timeout.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", zap.String("addr", s.srv.Addr))
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("failed to start server: %w", err)
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := s.srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	s.logger.Info("server stopped gracefully")
	return nil
}
