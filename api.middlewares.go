package main

import (
	"context"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// MiddlewareFunc is a custom type for ease of use.
type MiddlewareFunc func(http.Handler) http.Handler

// Middlewares is a custom type to represent a stack of
// middleware functions used to build a single chain.
type Middlewares []MiddlewareFunc

// Chain wraps a given http.Handler with the list of middlewares.
// It does by starting from the last middleware from the list.
func (m *Middlewares) Chain(h http.Handler) http.Handler {
	if len(*m) == 0 {
		return h
	}
	lg := len(*m)
	handler := (*m)[lg-1](h)

	for i := lg - 2; i >= 0; i-- {
		handler = (*m)[i](handler)
	}

	return handler
}

// MiddlewaresStacks builds the middlewares chains for the public-facing
// routes and for the ops routes. The session resolution only runs on the
// public chain, ops endpoints are expected to be network-restricted.
func (api *APIHandler) MiddlewaresStacks() (*Middlewares, *Middlewares) {
	middlewaresPublic := Middlewares{
		api.PanicRecoveryMiddleware,
		api.RequestsCounterMiddleware,
		api.RequestIDMiddleware,
		api.CoreMiddleware,
		api.MaintenanceMiddleware,
		api.SessionMiddleware,
	}
	middlewaresOps := Middlewares{
		api.PanicRecoveryMiddleware,
		api.RequestsCounterMiddleware,
		api.RequestIDMiddleware,
		api.CoreMiddleware,
	}
	return &middlewaresPublic, &middlewaresOps
}

// CoreMiddleware setup the duration measurement for each request, logs its
// result and records the response status into the ops statistics.
func (api *APIHandler) CoreMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := GetValueFromContext(r.Context(), ContextRequestID)

		api.logger.Info(
			"request",
			zap.String("request.id", requestID),
			zap.String("request.method", r.Method),
			zap.String("request.path", r.URL.Path),
			zap.String("request.ip", GetRequestSourceIP(r)),
			zap.String("request.agent", r.UserAgent()),
			zap.String("request.referer", r.Referer()),
		)

		cw := NewCustomResponseWriter(w)
		next.ServeHTTP(cw, r)

		api.stats.mu.Lock()
		api.stats.status[cw.Status()]++
		api.stats.mu.Unlock()

		api.logger.Info(
			"request",
			zap.String("request.id", requestID),
			zap.String("request.method", r.Method),
			zap.String("request.path", r.URL.Path),
			zap.Int("request.status", cw.Status()),
			zap.Int("request.bytes", cw.Bytes()),
			zap.Duration("request.duration", time.Since(start)),
		)
	})
}

// RequestsCounterMiddleware increments the number of received requests statistics and add this
// new value to the request context to be used during logging as `request.num` field.
func (api *APIHandler) RequestsCounterMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := context.WithValue(r.Context(), ContextRequestNumber, atomic.AddUint64(&api.stats.called, 1))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequestIDMiddleware generates and add a unique id to the request context.
func (api *APIHandler) RequestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := api.ids.Generate(RequestIDPrefix)
		ctx := context.WithValue(r.Context(), ContextRequestID, requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// MaintenanceMiddleware answers every non-ops request with 503 while the
// maintenance mode is enabled.
func (api *APIHandler) MaintenanceMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if api.mode.enabled.Load() && !strings.HasPrefix(r.URL.Path, "/ops") {
			requestID := GetValueFromContext(r.Context(), ContextRequestID)
			errResp := NewAPIError(requestID, http.StatusServiceUnavailable, "service currently unavailable.", map[string]string{
				"reason": api.mode.message,
				"since":  api.mode.started.Format(time.RFC1123),
			})
			if err := WriteErrorResponse(r.Context(), w, errResp); err != nil {
				api.logger.Error("failed to send maintenance response", zap.String("request.id", requestID), zap.Error(err))
			}
			return
		}
		next.ServeHTTP(w, r)
	})
}

// SessionMiddleware resolves the session cookie into an authenticated
// session and stores it into the request context. Anonymous requests
// pass through untouched, the permission gate decides later.
func (api *APIHandler) SessionMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(api.config.Auth.CookieName)
		if err != nil || cookie.Value == "" {
			next.ServeHTTP(w, r)
			return
		}
		session, err := api.accounts.Current(r.Context(), cookie.Value)
		if err != nil {
			// expired or unknown session, treat the caller as anonymous.
			next.ServeHTTP(w, r)
			return
		}
		ctx := context.WithValue(r.Context(), ContextSession, session)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequirePermission gates an action behind the injected policy. Anonymous
// or denied callers are redirected to the login route, never shown a 403.
func (api *APIHandler) RequirePermission(action Action) MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := GetValueFromContext(r.Context(), ContextRequestID)
			session, ok := GetSessionFromContext(r.Context())
			if !ok {
				api.logger.Info("gate: anonymous request on protected route",
					zap.String("request.id", requestID),
					zap.String("request.path", r.URL.Path),
					zap.String("action", string(action)),
				)
				http.Redirect(w, r, "/login", http.StatusSeeOther)
				return
			}
			if !api.policy(session.Role, action) {
				api.logger.Info("gate: permission denied",
					zap.String("request.id", requestID),
					zap.String("request.path", r.URL.Path),
					zap.String("user.id", session.UserID),
					zap.String("user.role", string(session.Role)),
					zap.String("action", string(action)),
				)
				http.Redirect(w, r, "/login", http.StatusSeeOther)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// PanicRecoveryMiddleware catches any panic during the request lifecycle and produces
// an error log for further analysis. It sends a failure response to the client with 500.
func (api *APIHandler) PanicRecoveryMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		recovery := func() {
			if err := recover(); err != nil {
				requestID := GetValueFromContext(r.Context(), ContextRequestID)
				api.logger.Error("panic occurred", zap.String("request.id", requestID), zap.Any("error", err))
				errResp := NewAPIError(requestID, http.StatusInternalServerError, "failed to process the request.", EmptyData)
				if err := WriteErrorResponse(r.Context(), w, errResp); err != nil {
					api.logger.Error("failed to send error response", zap.String("request.id", requestID), zap.Error(err))
				}
			}
		}
		defer recovery()
		next.ServeHTTP(w, r)
	})
}
