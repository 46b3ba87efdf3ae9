package main

import (
	"context"
	"time"
)

// Role is the authorization group a user belongs to.
type Role string

const (
	RoleAdmin  Role = "Admin"
	RoleMember Role = "Member"
)

// Action is an operation a user may attempt on the book collection.
type Action string

const (
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
	ActionView   Action = "view"
)

// Policy maps (role, action) to an allow/deny decision. It is injected
// into the permission middleware so the gate stays independent of any
// authentication mechanism.
type Policy func(role Role, action Action) bool

// DefaultPolicy grants everything to the Admin role and read-only
// access to everyone else.
func DefaultPolicy(role Role, action Action) bool {
	if role == RoleAdmin {
		return true
	}
	return action == ActionView
}

// User represents a registered account.
type User struct {
	ID           string `json:"id"`
	Username     string `json:"username" validate:"notblank"`
	PasswordHash string `json:"password_hash,omitempty"`
	Role         Role   `json:"role"`
	CreatedAt    string `json:"createdAt,omitempty"`
}

// Session is an authenticated browsing session resolved from a cookie.
type Session struct {
	ID        string `json:"id"`
	UserID    string `json:"user_id"`
	Username  string `json:"username"`
	Role      Role   `json:"role"`
	CreatedAt string `json:"createdAt,omitempty"`
}

// UserStorage defines possible operations on user accounts.
type UserStorage interface {
	Add(ctx context.Context, username string, user User) error
	GetByUsername(ctx context.Context, username string) (User, error)
}

// SessionStorage defines possible operations on sessions. Sessions
// expire on their own once the ttl elapses.
type SessionStorage interface {
	Add(ctx context.Context, session Session, ttl time.Duration) error
	Get(ctx context.Context, id string) (Session, error)
	Delete(ctx context.Context, id string) error
}
