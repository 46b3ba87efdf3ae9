package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestGateAPI(sessions map[string]Session) *APIHandler {
	sessionStore := &MockSessionStorage{
		GetFunc: func(ctx context.Context, id string) (Session, error) {
			session, exists := sessions[id]
			if !exists {
				return Session{}, ErrSessionNotFound
			}
			return session, nil
		},
		DeleteFunc: func(ctx context.Context, id string) error {
			delete(sessions, id)
			return nil
		},
	}
	config := &Config{
		Auth: AuthConfig{
			CookieName: "bca_session",
			SessionTTL: time.Hour,
		},
	}
	accounts := NewAuthService(zap.NewNop(), config, NewMockClocker(), NewIDsHandler(), nil, sessionStore)
	return NewAPIHandler(zap.NewNop(), config, NewMockClocker(), NewIDsHandler(), &Statistics{started: NewMockClocker().Now()}, DefaultPolicy, nil, nil, accounts)
}

// okHandler answers 200 and records whether it ran.
func okHandler(called *bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*called = true
		w.WriteHeader(http.StatusOK)
	})
}

// TestMiddlewaresStacks ensures we get both public and ops middlewares
// stacks with exact number of elements in those stacks.
func TestMiddlewaresStacks(t *testing.T) {
	api := newTestGateAPI(nil)
	pub, ops := api.MiddlewaresStacks()
	assert.Equal(t, 6, len(*pub))
	assert.Equal(t, 4, len(*ops))
}

// TestChain ensures each middleware in the stack is called as well the handler.
func TestChain(t *testing.T) {
	var ca, cb, ch bool
	queue := make(chan int, 3)

	middlewareA := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			queue <- 1
			ca = true
			next.ServeHTTP(w, r)
		})
	}
	middlewareB := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			queue <- 2
			cb = true
			next.ServeHTTP(w, r)
		})
	}
	middlewares := Middlewares{
		middlewareA,
		middlewareB,
	}

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		queue <- 3
		ch = true
	})

	chained := (&middlewares).Chain(handler)
	req := httptest.NewRequest(http.MethodGet, "/list", nil)
	chained.ServeHTTP(httptest.NewRecorder(), req)

	t.Run("check calling", func(t *testing.T) {
		assert.True(t, ca)
		assert.True(t, cb)
		assert.True(t, ch)
	})

	t.Run("check ordering", func(t *testing.T) {
		assert.Equal(t, 1, <-queue)
		assert.Equal(t, 2, <-queue)
		assert.Equal(t, 3, <-queue)
	})
}

// TestRequestsCounterMiddleware ensures the request counter increments.
func TestRequestsCounterMiddleware(t *testing.T) {
	api := newTestGateAPI(nil)
	var called bool
	handler := api.RequestsCounterMiddleware(okHandler(&called))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/list", nil))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/list", nil))

	assert.True(t, called)
	assert.Equal(t, uint64(2), atomic.LoadUint64(&api.stats.called))
}

// TestRequestIDMiddleware ensures each request receives a prefixed id.
func TestRequestIDMiddleware(t *testing.T) {
	api := newTestGateAPI(nil)
	var requestID string
	handler := api.RequestIDMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID = GetValueFromContext(r.Context(), ContextRequestID)
	}))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/list", nil))
	assert.NotEmpty(t, requestID)
	assert.Equal(t, RequestIDPrefix+":", requestID[:2])
}

// TestCoreMiddleware ensures the response status lands in the stats.
func TestCoreMiddleware(t *testing.T) {
	api := newTestGateAPI(nil)
	handler := api.CoreMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/list", nil))

	api.stats.mu.RLock()
	defer api.stats.mu.RUnlock()
	assert.Equal(t, uint64(1), api.stats.status[http.StatusTeapot])
}

// TestMaintenanceMiddleware ensures public routes answer 503 while the
// maintenance mode is on, and ops routes keep working.
func TestMaintenanceMiddleware(t *testing.T) {
	api := newTestGateAPI(nil)
	api.mode.enabled.Store(true)
	api.mode.message = "upgrading"
	api.mode.started = time.Now().UTC()

	var called bool
	handler := api.MaintenanceMiddleware(okHandler(&called))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/list", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.False(t, called)

	w = httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ops/stats", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, called)
}

// TestSessionMiddleware ensures a valid cookie resolves into a session
// in the request context and a bad cookie leaves the caller anonymous.
func TestSessionMiddleware(t *testing.T) {
	sessions := map[string]Session{
		"s:valid": {ID: "s:valid", UserID: "u:1", Username: "reader", Role: RoleMember},
	}
	api := newTestGateAPI(sessions)

	var got Session
	var found bool
	handler := api.SessionMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, found = GetSessionFromContext(r.Context())
	}))

	t.Run("valid cookie", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/list", nil)
		req.AddCookie(&http.Cookie{Name: "bca_session", Value: "s:valid"})
		handler.ServeHTTP(httptest.NewRecorder(), req)
		require.True(t, found)
		assert.Equal(t, "reader", got.Username)
		assert.Equal(t, RoleMember, got.Role)
	})

	t.Run("unknown cookie", func(t *testing.T) {
		found = false
		req := httptest.NewRequest(http.MethodGet, "/list", nil)
		req.AddCookie(&http.Cookie{Name: "bca_session", Value: "s:expired"})
		handler.ServeHTTP(httptest.NewRecorder(), req)
		assert.False(t, found)
	})

	t.Run("no cookie", func(t *testing.T) {
		found = false
		req := httptest.NewRequest(http.MethodGet, "/list", nil)
		handler.ServeHTTP(httptest.NewRecorder(), req)
		assert.False(t, found)
	})
}

// TestRequirePermission ensures denied and anonymous callers are
// redirected to the login route instead of receiving a 403.
func TestRequirePermission(t *testing.T) {
	api := newTestGateAPI(nil)

	t.Run("anonymous caller redirects to login", func(t *testing.T) {
		var called bool
		handler := api.RequirePermission(ActionCreate)(okHandler(&called))
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/form", nil))
		assert.Equal(t, http.StatusSeeOther, w.Code)
		assert.Equal(t, "/login", w.Header().Get("Location"))
		assert.False(t, called)
	})

	t.Run("member denied on mutation redirects to login", func(t *testing.T) {
		var called bool
		handler := api.RequirePermission(ActionDelete)(okHandler(&called))
		req := httptest.NewRequest(http.MethodGet, "/b:1/delete", nil)
		session := Session{ID: "s:1", Role: RoleMember, Username: "reader"}
		req = req.WithContext(context.WithValue(req.Context(), ContextSession, session))
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		assert.Equal(t, http.StatusSeeOther, w.Code)
		assert.Equal(t, "/login", w.Header().Get("Location"))
		assert.False(t, called)
	})

	t.Run("member allowed to view", func(t *testing.T) {
		var called bool
		handler := api.RequirePermission(ActionView)(okHandler(&called))
		req := httptest.NewRequest(http.MethodGet, "/list", nil)
		session := Session{ID: "s:1", Role: RoleMember, Username: "reader"}
		req = req.WithContext(context.WithValue(req.Context(), ContextSession, session))
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.True(t, called)
	})

	t.Run("admin allowed everything", func(t *testing.T) {
		for _, action := range []Action{ActionCreate, ActionUpdate, ActionDelete, ActionView} {
			var called bool
			handler := api.RequirePermission(action)(okHandler(&called))
			req := httptest.NewRequest(http.MethodGet, "/form", nil)
			session := Session{ID: "s:2", Role: RoleAdmin, Username: "boss"}
			req = req.WithContext(context.WithValue(req.Context(), ContextSession, session))
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)
			assert.Equal(t, http.StatusOK, w.Code)
			assert.True(t, called)
		}
	})
}

// TestPanicRecoveryMiddleware ensures a panicking handler turns into a
// 500 response instead of tearing the server down.
func TestPanicRecoveryMiddleware(t *testing.T) {
	api := newTestGateAPI(nil)
	handler := api.PanicRecoveryMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))
	w := httptest.NewRecorder()
	assert.NotPanics(t, func() {
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/list", nil))
	})
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

// TestDefaultPolicy pins down the role to action decision table.
func TestDefaultPolicy(t *testing.T) {
	assert.True(t, DefaultPolicy(RoleAdmin, ActionCreate))
	assert.True(t, DefaultPolicy(RoleAdmin, ActionDelete))
	assert.True(t, DefaultPolicy(RoleMember, ActionView))
	assert.False(t, DefaultPolicy(RoleMember, ActionCreate))
	assert.False(t, DefaultPolicy(RoleMember, ActionUpdate))
	assert.False(t, DefaultPolicy(RoleMember, ActionDelete))
	assert.False(t, DefaultPolicy("", ActionCreate))
}
