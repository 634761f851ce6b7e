package client

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

const testAPIKey = "anon-key"

func makeToken(t *testing.T, sub uuid.UUID, email string, exp time.Time) string {
	t.Helper()
	claims := jwt.MapClaims{"sub": sub.String(), "email": email, "exp": exp.Unix(), "role": "authenticated"}
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return s
}

type recordedRequest struct {
	Method string
	Path   string
	Query  string
	Header http.Header
	Body   []byte
}

// fakeBackend mimics the auth and REST endpoints closely enough for the
// client. Each route answers with the handler registered through Handle.
type fakeBackend struct {
	t      *testing.T
	server *httptest.Server

	mu       sync.Mutex
	requests []recordedRequest
	handlers map[string]http.HandlerFunc
}

const (
	routeToken  = "token"
	routeSignup = "signup"
	routeUser   = "user"
	routeLogout = "logout"
	routeRest   = "rest"
	routeRPC    = "rpc"
)

func newFakeBackend(t *testing.T) *fakeBackend {
	t.Helper()
	fb := &fakeBackend{t: t, handlers: map[string]http.HandlerFunc{}}

	r := chi.NewRouter()
	r.Use(fb.record)
	r.Post("/auth/v1/token", fb.dispatch(routeToken))
	r.Post("/auth/v1/signup", fb.dispatch(routeSignup))
	r.Get("/auth/v1/user", fb.dispatch(routeUser))
	r.Post("/auth/v1/logout", fb.dispatch(routeLogout))
	r.Post("/rest/v1/rpc/{fn}", fb.dispatch(routeRPC))
	r.HandleFunc("/rest/v1/{table}", fb.dispatch(routeRest))

	fb.server = httptest.NewServer(r)
	t.Cleanup(fb.server.Close)
	return fb
}

func (fb *fakeBackend) URL() string { return fb.server.URL }

func (fb *fakeBackend) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		_ = r.Body.Close()
		r.Body = io.NopCloser(bytes.NewReader(body))

		fb.mu.Lock()
		fb.requests = append(fb.requests, recordedRequest{
			Method: r.Method,
			Path:   r.URL.Path,
			Query:  r.URL.RawQuery,
			Header: r.Header.Clone(),
			Body:   body,
		})
		fb.mu.Unlock()

		next.ServeHTTP(w, r)
	})
}

func (fb *fakeBackend) Handle(route string, h http.HandlerFunc) {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	fb.handlers[route] = h
}

func (fb *fakeBackend) dispatch(route string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		fb.mu.Lock()
		h := fb.handlers[route]
		fb.mu.Unlock()

		if h == nil {
			fb.t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
			w.WriteHeader(http.StatusTeapot)
			return
		}
		h(w, r)
	}
}

func (fb *fakeBackend) Requests() []recordedRequest {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	out := make([]recordedRequest, len(fb.requests))
	copy(out, fb.requests)
	return out
}

func (fb *fakeBackend) Last() recordedRequest {
	reqs := fb.Requests()
	require.NotEmpty(fb.t, reqs)
	return reqs[len(reqs)-1]
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func tokenBody(access, refresh string, user *userResponse) map[string]any {
	body := map[string]any{
		"access_token":  access,
		"refresh_token": refresh,
		"token_type":    "bearer",
		"expires_in":    3600,
	}
	if user != nil {
		body["user"] = user
	}
	return body
}

func newTestClient(t *testing.T, fb *fakeBackend, storage SessionStorage) *HTTPClient {
	t.Helper()
	c, err := New(Options{BaseURL: fb.URL(), APIKey: testAPIKey, Storage: storage})
	require.NoError(t, err)
	return c
}
