package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// newTestAccountsAPI wires an api handler over an auth service backed by
// in-memory user and session maps.
func newTestAccountsAPI(t *testing.T, adminUsers ...string) *APIHandler {
	t.Helper()
	users := make(map[string]User)
	sessions := make(map[string]Session)

	userStore := &MockUserStorage{
		AddFunc: func(ctx context.Context, username string, user User) error {
			if _, exists := users[username]; exists {
				return ErrUserExists
			}
			users[username] = user
			return nil
		},
		GetByUsernameFunc: func(ctx context.Context, username string) (User, error) {
			user, exists := users[username]
			if !exists {
				return User{}, ErrUserNotFound
			}
			return user, nil
		},
	}
	sessionStore := &MockSessionStorage{
		AddFunc: func(ctx context.Context, session Session, ttl time.Duration) error {
			sessions[session.ID] = session
			return nil
		},
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
			AdminUsers: adminUsers,
		},
	}
	accounts := NewAuthService(zap.NewNop(), config, NewMockClocker(), NewIDsHandler(), userStore, sessionStore)
	return NewAPIHandler(zap.NewNop(), config, NewMockClocker(), NewIDsHandler(), &Statistics{started: NewMockClocker().Now()}, DefaultPolicy, nil, nil, accounts)
}

func credentialsBody(t *testing.T, username, password string) *bytes.Buffer {
	t.Helper()
	payload, err := json.Marshal(Credentials{Username: username, Password: password})
	require.NoError(t, err)
	return bytes.NewBuffer(payload)
}

// TestRegisterHandler ensures accounts can be created once and the
// password hash never leaves the service.
func TestRegisterHandler(t *testing.T) {
	t.Run("should pass: new member account", func(t *testing.T) {
		api := newTestAccountsAPI(t)
		req := httptest.NewRequest(http.MethodPost, "/register", credentialsBody(t, "reader", "s3cret"))
		w := httptest.NewRecorder()
		api.Register(w, req)
		res := w.Result()
		defer res.Body.Close()
		assert.Equal(t, http.StatusCreated, res.StatusCode)
		m := decodeEnvelope(t, res.Body)
		data, ok := m["data"].(map[string]interface{})
		require.True(t, ok)
		assert.Equal(t, "reader", data["username"])
		assert.Equal(t, string(RoleMember), data["role"])
		_, leaked := data["password_hash"]
		assert.False(t, leaked)
	})

	t.Run("should pass: configured admin receives the Admin role", func(t *testing.T) {
		api := newTestAccountsAPI(t, "boss")
		req := httptest.NewRequest(http.MethodPost, "/register", credentialsBody(t, "boss", "s3cret"))
		w := httptest.NewRecorder()
		api.Register(w, req)
		res := w.Result()
		defer res.Body.Close()
		assert.Equal(t, http.StatusCreated, res.StatusCode)
		m := decodeEnvelope(t, res.Body)
		data, ok := m["data"].(map[string]interface{})
		require.True(t, ok)
		assert.Equal(t, string(RoleAdmin), data["role"])
	})

	t.Run("should fail: username already taken", func(t *testing.T) {
		api := newTestAccountsAPI(t)
		req := httptest.NewRequest(http.MethodPost, "/register", credentialsBody(t, "reader", "s3cret"))
		api.Register(httptest.NewRecorder(), req)

		req = httptest.NewRequest(http.MethodPost, "/register", credentialsBody(t, "reader", "other"))
		w := httptest.NewRecorder()
		api.Register(w, req)
		res := w.Result()
		defer res.Body.Close()
		assert.Equal(t, http.StatusBadRequest, res.StatusCode)
		m := decodeEnvelope(t, res.Body)
		fields, ok := m["data"].(map[string]interface{})
		require.True(t, ok)
		assert.Equal(t, "is already taken", fields["username"])
	})

	t.Run("should fail: blank username", func(t *testing.T) {
		api := newTestAccountsAPI(t)
		req := httptest.NewRequest(http.MethodPost, "/register", credentialsBody(t, "  ", "s3cret"))
		w := httptest.NewRecorder()
		api.Register(w, req)
		res := w.Result()
		defer res.Body.Close()
		assert.Equal(t, http.StatusBadRequest, res.StatusCode)
	})

	t.Run("should fail: blank password", func(t *testing.T) {
		api := newTestAccountsAPI(t)
		req := httptest.NewRequest(http.MethodPost, "/register", credentialsBody(t, "reader", "  "))
		w := httptest.NewRecorder()
		api.Register(w, req)
		res := w.Result()
		defer res.Body.Close()
		assert.Equal(t, http.StatusBadRequest, res.StatusCode)
		m := decodeEnvelope(t, res.Body)
		data, ok := m["data"].(map[string]interface{})
		require.True(t, ok)
		assert.Equal(t, "must be provided", data["password"])
	})
}

// TestLoginHandler ensures a session cookie is handed out on valid
// credentials and never on invalid ones.
func TestLoginHandler(t *testing.T) {
	t.Run("should pass: valid credentials set the session cookie", func(t *testing.T) {
		api := newTestAccountsAPI(t)
		req := httptest.NewRequest(http.MethodPost, "/register", credentialsBody(t, "reader", "s3cret"))
		api.Register(httptest.NewRecorder(), req)

		req = httptest.NewRequest(http.MethodPost, "/login", credentialsBody(t, "reader", "s3cret"))
		w := httptest.NewRecorder()
		api.Login(w, req)
		res := w.Result()
		defer res.Body.Close()
		assert.Equal(t, http.StatusOK, res.StatusCode)

		var sessionCookie *http.Cookie
		for _, cookie := range res.Cookies() {
			if cookie.Name == "bca_session" {
				sessionCookie = cookie
			}
		}
		require.NotNil(t, sessionCookie)
		assert.NotEmpty(t, sessionCookie.Value)
		assert.True(t, sessionCookie.HttpOnly)

		m := decodeEnvelope(t, res.Body)
		data, ok := m["data"].(map[string]interface{})
		require.True(t, ok)
		assert.Equal(t, "reader", data["username"])
	})

	t.Run("should fail: wrong password", func(t *testing.T) {
		api := newTestAccountsAPI(t)
		req := httptest.NewRequest(http.MethodPost, "/register", credentialsBody(t, "reader", "s3cret"))
		api.Register(httptest.NewRecorder(), req)

		req = httptest.NewRequest(http.MethodPost, "/login", credentialsBody(t, "reader", "wrong"))
		w := httptest.NewRecorder()
		api.Login(w, req)
		res := w.Result()
		defer res.Body.Close()
		assert.Equal(t, http.StatusUnauthorized, res.StatusCode)
		assert.Empty(t, res.Cookies())
	})

	t.Run("should fail: unknown username", func(t *testing.T) {
		api := newTestAccountsAPI(t)
		req := httptest.NewRequest(http.MethodPost, "/login", credentialsBody(t, "nobody", "s3cret"))
		w := httptest.NewRecorder()
		api.Login(w, req)
		res := w.Result()
		defer res.Body.Close()
		assert.Equal(t, http.StatusUnauthorized, res.StatusCode)
	})
}

// TestLogoutHandler ensures the session is destroyed and the cookie
// cleared, while anonymous callers are pointed to the login route.
func TestLogoutHandler(t *testing.T) {
	t.Run("should pass: active session destroyed", func(t *testing.T) {
		api := newTestAccountsAPI(t)
		req := httptest.NewRequest(http.MethodPost, "/register", credentialsBody(t, "reader", "s3cret"))
		api.Register(httptest.NewRecorder(), req)

		session, err := api.accounts.Login(context.Background(), "reader", "s3cret")
		require.NoError(t, err)

		req = httptest.NewRequest(http.MethodPost, "/logout", nil)
		req = req.WithContext(context.WithValue(req.Context(), ContextSession, session))
		w := httptest.NewRecorder()
		api.Logout(w, req)
		res := w.Result()
		defer res.Body.Close()
		assert.Equal(t, http.StatusOK, res.StatusCode)

		var cleared *http.Cookie
		for _, cookie := range res.Cookies() {
			if cookie.Name == "bca_session" {
				cleared = cookie
			}
		}
		require.NotNil(t, cleared)
		assert.Equal(t, -1, cleared.MaxAge)

		_, err = api.accounts.Current(context.Background(), session.ID)
		assert.ErrorIs(t, err, ErrSessionNotFound)
	})

	t.Run("should redirect: anonymous caller", func(t *testing.T) {
		api := newTestAccountsAPI(t)
		req := httptest.NewRequest(http.MethodPost, "/logout", nil)
		w := httptest.NewRecorder()
		api.Logout(w, req)
		res := w.Result()
		defer res.Body.Close()
		assert.Equal(t, http.StatusSeeOther, res.StatusCode)
		assert.Equal(t, "/login", res.Header.Get("Location"))
	})
}

// TestLoginFormHandler ensures the gate redirect target answers 200.
func TestLoginFormHandler(t *testing.T) {
	api := newTestAccountsAPI(t)
	req := httptest.NewRequest(http.MethodGet, "/login", nil)
	w := httptest.NewRecorder()
	api.LoginForm(w, req)
	res := w.Result()
	defer res.Body.Close()
	assert.Equal(t, http.StatusOK, res.StatusCode)
	m := decodeEnvelope(t, res.Body)
	data, ok := m["data"].(map[string]interface{})
	require.True(t, ok)
	assert.Contains(t, data["fields"], "username")
}
