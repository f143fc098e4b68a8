package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/user/todograph-go/auth"
	"github.com/user/todograph-go/config"
	"github.com/user/todograph-go/graph"
	"github.com/user/todograph-go/store"
	"github.com/user/todograph-go/users"
)

func testConfig() *config.AppConfig {
	return &config.AppConfig{
		Auth:    &config.AuthConfig{JWTSecret: "secret", DebugTokenEnabled: true, DebugTokenUser: "Bob"},
		Server:  &config.ServerConfig{Port: "0", ShutdownTimeout: 5 * time.Second},
		GraphQL: &config.GraphQLConfig{Pretty: false, GraphiQLEnabled: true},
		Store:   &config.StoreConfig{},
		Log:     &config.LogConfig{Level: "debug"},
	}
}

func newTestServer(t *testing.T, cfg *config.AppConfig) (*Server, *auth.TokenService) {
	t.Helper()
	logger := zaptest.NewLogger(t)
	s, err := store.NewDefault()
	require.NoError(t, err)
	userService := users.NewService(s)
	tokens := auth.NewTokenService(*cfg.Auth)
	schema, err := graph.Build(graph.Services{
		Users:  userService,
		Todos:  s,
		Gate:   auth.NewGate(tokens, userService),
		Logger: logger,
	})
	require.NoError(t, err)
	srv, err := New(cfg, schema, tokens, logger)
	require.NoError(t, err)
	return srv, tokens
}

type gqlResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []struct {
		Message    string                 `json:"message"`
		Extensions map[string]interface{} `json:"extensions"`
	} `json:"errors"`
}

func postQuery(t *testing.T, h http.Handler, query, authorization string) (*httptest.ResponseRecorder, gqlResponse) {
	t.Helper()
	body, err := json.Marshal(map[string]interface{}{"query": query})
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/graphql", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var resp gqlResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp), rec.Body.String())
	return rec, resp
}

func TestGraphQL_ViewerWithInjectedToken(t *testing.T) {
	srv, _ := newTestServer(t, testConfig())

	rec, resp := postQuery(t, srv.Handler(), `{ viewer { name todos { title } } }`, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, resp.Errors)
	assert.JSONEq(t, `{"viewer": {"name": "Bob", "todos": [{"title": "Todo1"}, {"title": "Todo2"}, {"title": "Todo3"}]}}`, string(resp.Data))
}

func TestGraphQL_InjectorOverridesClientToken(t *testing.T) {
	srv, _ := newTestServer(t, testConfig())

	_, resp := postQuery(t, srv.Handler(), `{ viewer { name } }`, "not-a-token")
	assert.Empty(t, resp.Errors)
	assert.JSONEq(t, `{"viewer": {"name": "Bob"}}`, string(resp.Data))
}

func TestGraphQL_ClientTokens(t *testing.T) {
	cfg := testConfig()
	cfg.Auth.DebugTokenEnabled = false
	srv, tokens := newTestServer(t, cfg)

	alice, err := tokens.Sign("Alice")
	require.NoError(t, err)

	t.Run("valid", func(t *testing.T) {
		_, resp := postQuery(t, srv.Handler(), `{ viewer { name } }`, "Bearer "+alice)
		assert.Empty(t, resp.Errors)
		assert.JSONEq(t, `{"viewer": {"name": "Alice"}}`, string(resp.Data))
	})

	t.Run("invalid is scoped to viewer", func(t *testing.T) {
		rec, resp := postQuery(t, srv.Handler(), `{ viewer { name } user(name: "Steeve") { age } }`, "Bearer "+alice+"tampered")
		assert.Equal(t, http.StatusOK, rec.Code)
		require.Len(t, resp.Errors, 1)
		assert.Contains(t, resp.Errors[0].Message, "invalid token")
		assert.Equal(t, "INVALID_TOKEN", resp.Errors[0].Extensions["code"])
		assert.JSONEq(t, `{"viewer": null, "user": {"age": 28}}`, string(resp.Data))
	})

	t.Run("no token", func(t *testing.T) {
		_, resp := postQuery(t, srv.Handler(), `{ viewer { name } }`, "")
		require.Len(t, resp.Errors, 1)
		assert.JSONEq(t, `{"viewer": null}`, string(resp.Data))
	})
}

func TestGraphQL_GetQuery(t *testing.T) {
	srv, _ := newTestServer(t, testConfig())

	req := httptest.NewRequest(http.MethodGet, "/graphql?query="+url.QueryEscape(`{ user(name: "Alice") { admin } }`), nil)
	req.Header.Set("Accept", "application/json")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"data": {"user": {"admin": true}}}`, rec.Body.String())
}

func TestGraphiQL(t *testing.T) {
	t.Run("enabled", func(t *testing.T) {
		srv, _ := newTestServer(t, testConfig())
		req := httptest.NewRequest(http.MethodGet, "/graphiql", nil)
		req.Header.Set("Accept", "text/html")
		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, strings.ToLower(rec.Body.String()), "graphiql")
	})

	t.Run("disabled", func(t *testing.T) {
		cfg := testConfig()
		cfg.GraphQL.GraphiQLEnabled = false
		srv, _ := newTestServer(t, cfg)
		req := httptest.NewRequest(http.MethodGet, "/graphiql", nil)
		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.JSONEq(t, `{"error": "no route for /graphiql", "code": "NOT_FOUND"}`, rec.Body.String())
	})
}

func TestHealthz(t *testing.T) {
	srv, _ := newTestServer(t, testConfig())
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status": "ok"}`, rec.Body.String())
}

func TestRequestID(t *testing.T) {
	srv, _ := newTestServer(t, testConfig())

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Len(t, rec.Header().Get(RequestIDHeader), 36)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(RequestIDHeader, "trace-me")
	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	assert.Equal(t, "trace-me", rec.Header().Get(RequestIDHeader))
}

func TestResolutionContext_CarriesRequest(t *testing.T) {
	var rc *graph.RequestContext
	h := resolutionContext(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rc, _ = graph.FromContext(r.Context())
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/graphql", nil))

	require.NotNil(t, rc)
	assert.NotEmpty(t, rc.ID)
	require.NotNil(t, rc.Request)
	assert.Equal(t, "/graphql", rc.Request.URL.Path)
}

func TestRecoverer(t *testing.T) {
	h := recoverer(zaptest.NewLogger(t))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error": "internal server error", "code": "INTERNAL_ERROR"}`, rec.Body.String())
}

func TestRun_ShutsDownOnCancel(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := l.Addr().(*net.TCPAddr).Port
	require.NoError(t, l.Close())

	cfg := testConfig()
	cfg.Server.Port = strconv.Itoa(port)
	srv, _ := newTestServer(t, cfg)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx) }()

	healthURL := "http://127.0.0.1:" + cfg.Server.Port + "/healthz"
	require.Eventually(t, func() bool {
		resp, err := http.Get(healthURL)
		if err != nil {
			return false
		}
		defer resp.Body.Close()
		_, _ = io.Copy(io.Discard, resp.Body)
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 20*time.Millisecond, "server on port %d never became healthy", port)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
