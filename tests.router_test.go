package main

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

// newTestRouterAPI wires the full routing surface over mock storages to
// probe the route table.
func newTestRouterAPI(opsEnabled bool) *APIHandler {
	mockRepo := &MockBookStorage{
		AddFunc: func(ctx context.Context, id string, book Book) error {
			return nil
		},
		GetOneFunc: func(ctx context.Context, id string) (Book, error) {
			return Book{}, nil
		},
		DeleteFunc: func(ctx context.Context, id string) error {
			return nil
		},
		UpdateFunc: func(ctx context.Context, id string, book Book) (Book, error) {
			return Book{}, nil
		},
		GetAllFunc: func(ctx context.Context) ([]Book, error) {
			return []Book{}, nil
		},
	}
	mockAuthors := &MockAuthorStorage{
		AddFunc: func(ctx context.Context, id string, author Author) error {
			return nil
		},
		GetOneFunc: func(ctx context.Context, id string) (Author, error) {
			return Author{}, nil
		},
		DeleteFunc: func(ctx context.Context, id string) error {
			return nil
		},
		GetAllFunc: func(ctx context.Context) ([]Author, error) {
			return []Author{}, nil
		},
	}
	mockQueue := &MockQueuer{
		PushFunc: func(ctx context.Context, qid string, event BookEvent) error {
			return nil
		},
	}
	mockCovers := &MockCoverStorage{
		SaveFunc: func(name string, r io.Reader) (string, error) {
			return CoverPrefix + "/" + name, nil
		},
		RemoveFunc: func(path string) error { return nil },
	}

	config := &Config{
		OpsEndpointsEnable: opsEnabled,
		Auth: AuthConfig{
			CookieName: "bca_session",
			SessionTTL: time.Hour,
		},
	}
	bs := NewBookService(zap.NewNop(), config, NewMockClocker(), mockRepo, mockAuthors, mockCovers, mockQueue)
	as := NewAuthorService(zap.NewNop(), mockAuthors, mockRepo, mockQueue)
	accounts := NewAuthService(zap.NewNop(), config, NewMockClocker(), NewIDsHandler(), &MockUserStorage{}, &MockSessionStorage{
		GetFunc: func(ctx context.Context, id string) (Session, error) {
			return Session{}, ErrSessionNotFound
		},
	})
	return NewAPIHandler(zap.NewNop(), config, NewMockClocker(), NewMockUIDHandler("cb8f2136", true), &Statistics{started: NewMockClocker().Now()}, DefaultPolicy, bs, as, accounts)
}

// TestSetupRoutes ensures all expected endpoints are implemented. Gated
// routes answer with the login redirect for anonymous callers, which
// still proves the route exists.
func TestSetupRoutes(t *testing.T) {
	testCases := []struct {
		name        string
		request     *http.Request
		implemented bool
	}{
		{
			"index endpoint",
			httptest.NewRequest(http.MethodGet, "/", nil),
			true,
		},
		{
			"status endpoint",
			httptest.NewRequest(http.MethodGet, "/status", nil),
			true,
		},
		{
			"book form endpoint",
			httptest.NewRequest(http.MethodGet, "/form", nil),
			true,
		},
		{
			"book creation endpoint",
			httptest.NewRequest(http.MethodPost, "/form", nil),
			true,
		},
		{
			"book listing endpoint",
			httptest.NewRequest(http.MethodGet, "/list", nil),
			true,
		},
		{
			"library stats endpoint",
			httptest.NewRequest(http.MethodGet, "/stats", nil),
			true,
		},
		{
			"book detail endpoint",
			httptest.NewRequest(http.MethodGet, "/b:cb8f2136/detail", nil),
			true,
		},
		{
			"book edit endpoint",
			httptest.NewRequest(http.MethodPost, "/b:cb8f2136/edit", nil),
			true,
		},
		{
			"book delete confirmation endpoint",
			httptest.NewRequest(http.MethodGet, "/b:cb8f2136/delete", nil),
			true,
		},
		{
			"book delete endpoint",
			httptest.NewRequest(http.MethodPost, "/b:cb8f2136/delete", nil),
			true,
		},
		{
			"book cover upload endpoint",
			httptest.NewRequest(http.MethodPost, "/b:cb8f2136/cover", nil),
			true,
		},
		{
			"authors listing endpoint",
			httptest.NewRequest(http.MethodGet, "/authors", nil),
			true,
		},
		{
			"author creation endpoint",
			httptest.NewRequest(http.MethodPost, "/authors", nil),
			true,
		},
		{
			"author deletion endpoint",
			httptest.NewRequest(http.MethodPost, "/authors/a:1/delete", nil),
			true,
		},
		{
			"register endpoint",
			httptest.NewRequest(http.MethodPost, "/register", nil),
			true,
		},
		{
			"login endpoint",
			httptest.NewRequest(http.MethodPost, "/login", nil),
			true,
		},
		{
			"logout endpoint",
			httptest.NewRequest(http.MethodPost, "/logout", nil),
			true,
		},
		{
			"ops stats endpoint",
			httptest.NewRequest(http.MethodGet, "/ops/stats", nil),
			true,
		},
		{
			"ops configs endpoint",
			httptest.NewRequest(http.MethodGet, "/ops/configs", nil),
			true,
		},
		{
			"ops maintenance endpoint",
			httptest.NewRequest(http.MethodGet, "/ops/maintenance", nil),
			true,
		},
		{
			"unknown endpoint",
			httptest.NewRequest(http.MethodGet, "/unknown/road", nil),
			false,
		},
		{
			"unregistered author road",
			httptest.NewRequest(http.MethodGet, "/authors/a:1/rename", nil),
			false,
		},
	}

	api := newTestRouterAPI(true)
	pub, ops := api.MiddlewaresStacks()
	router := api.SetupRoutes(&MiddlewareMap{public: pub, ops: ops})

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			router.ServeHTTP(w, tc.request)
			if tc.implemented {
				assert.NotEqual(t, 404, w.Code)
			} else {
				assert.Equal(t, 404, w.Code)
			}
		})
	}
}

// TestSetupRoutesOpsDisabled ensures ops endpoints vanish when disabled.
func TestSetupRoutesOpsDisabled(t *testing.T) {
	api := newTestRouterAPI(false)
	pub, ops := api.MiddlewaresStacks()
	router := api.SetupRoutes(&MiddlewareMap{public: pub, ops: ops})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ops/stats", nil))
	assert.Equal(t, 404, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/status", nil))
	assert.Equal(t, 200, w.Code)
}

// TestProtectedRoutesRedirectAnonymous pins the gate behavior on the
// mutating routes: anonymous callers land on the login route.
func TestProtectedRoutesRedirectAnonymous(t *testing.T) {
	api := newTestRouterAPI(true)
	pub, ops := api.MiddlewaresStacks()
	router := api.SetupRoutes(&MiddlewareMap{public: pub, ops: ops})

	protected := []*http.Request{
		httptest.NewRequest(http.MethodGet, "/form", nil),
		httptest.NewRequest(http.MethodPost, "/form", nil),
		httptest.NewRequest(http.MethodGet, "/b:cb8f2136/detail", nil),
		httptest.NewRequest(http.MethodPost, "/b:cb8f2136/edit", nil),
		httptest.NewRequest(http.MethodPost, "/b:cb8f2136/delete", nil),
		httptest.NewRequest(http.MethodPost, "/b:cb8f2136/cover", nil),
		httptest.NewRequest(http.MethodPost, "/authors", nil),
		httptest.NewRequest(http.MethodPost, "/authors/a:1/delete", nil),
	}
	for _, req := range protected {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusSeeOther, w.Code, "%s %s", req.Method, req.URL.Path)
		assert.Equal(t, "/login", w.Header().Get("Location"))
	}

	open := []*http.Request{
		httptest.NewRequest(http.MethodGet, "/list", nil),
		httptest.NewRequest(http.MethodGet, "/stats", nil),
		httptest.NewRequest(http.MethodGet, "/authors", nil),
	}
	for _, req := range open {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code, "%s %s", req.Method, req.URL.Path)
	}
}

// TestDetailRouteRequiresSession ensures a book detail request without a
// session lands on the login route while any authenticated user gets
// through, members included.
func TestDetailRouteRequiresSession(t *testing.T) {
	api := newTestRouterAPI(true)
	api.accounts = NewAuthService(zap.NewNop(), api.config, NewMockClocker(), NewIDsHandler(), &MockUserStorage{}, &MockSessionStorage{
		GetFunc: func(ctx context.Context, id string) (Session, error) {
			if id == "s:member" {
				return Session{ID: id, Username: "reader", Role: RoleMember}, nil
			}
			return Session{}, ErrSessionNotFound
		},
	})
	pub, ops := api.MiddlewaresStacks()
	router := api.SetupRoutes(&MiddlewareMap{public: pub, ops: ops})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/b:cb8f2136/detail", nil))
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Location"))

	req := httptest.NewRequest(http.MethodGet, "/b:cb8f2136/detail", nil)
	req.AddCookie(&http.Cookie{Name: "bca_session", Value: "s:member"})
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}
