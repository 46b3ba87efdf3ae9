package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"strings"
)

// Sentinel errors surfaced by the storage and auth layers.
var (
	ErrBookNotFound       = errors.New("book not found")
	ErrAuthorNotFound     = errors.New("author not found")
	ErrUserNotFound       = errors.New("user not found")
	ErrUserExists         = errors.New("user already exists")
	ErrSessionNotFound    = errors.New("session not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// ContextKey is a custom type for request context keys.
type ContextKey string

const (
	BookIDPrefix    string = "b"
	AuthorIDPrefix  string = "a"
	UserIDPrefix    string = "u"
	SessionIDPrefix string = "s"
	RequestIDPrefix string = "r"

	ContextRequestID     ContextKey = "request.id"
	ContextRequestNumber ContextKey = "request.number"
	ContextSession       ContextKey = "request.session"
)

// GetValueFromContext returns the string value of a given key in the
// context. If this key is not available, it returns an empty string.
func GetValueFromContext(ctx context.Context, contextKey ContextKey) string {
	if val := ctx.Value(contextKey); val != nil {
		if s, ok := val.(string); ok {
			return s
		}
	}
	return ""
}

// GetSessionFromContext returns the authenticated session stored into
// the request context by the session middleware, if any.
func GetSessionFromContext(ctx context.Context) (Session, bool) {
	if val := ctx.Value(ContextSession); val != nil {
		if session, ok := val.(Session); ok {
			return session, true
		}
	}
	return Session{}, false
}

// GetRequestSourceIP helps find the source IP of the caller.
func GetRequestSourceIP(r *http.Request) string {
	// Get IP from the X-REAL-IP header
	ip := r.Header.Get("X-REAL-IP")
	netIP := net.ParseIP(ip)
	if netIP != nil {
		return ip
	}

	// Get IP from X-FORWARDED-FOR header
	ips := r.Header.Get("X-FORWARDED-FOR")
	splitIps := strings.Split(ips, ",")
	for _, ip := range splitIps {
		netIP = net.ParseIP(ip)
		if netIP != nil {
			return ip
		}
	}

	// Get IP from RemoteAddr
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return ""
	}
	netIP = net.ParseIP(ip)
	if netIP != nil {
		return ip
	}
	return ""
}

// IsAppRunningInDocker checks the existence of the .dockerenv
// file at the root directory and returns a boolean result. This
// helps know if the App is running in a docker container or not.
func IsAppRunningInDocker() bool {
	if _, err := os.Stat("/.dockerenv"); err == nil {
		return true
	}
	return false
}
