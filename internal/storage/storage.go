// Package storage defines the Storage interface, the contract every user
// store must satisfy to work with this application.
//
// Handlers and the registration flow depend only on this interface, so the
// backend (SQLite file, Redis key, remote collection endpoint) is picked by
// config in main.go and nothing else changes.
//
// Backends translate their own failures into the sentinel errors below so
// callers can branch with errors.Is without knowing which store is behind
// the interface.
package storage

import (
	"context"
	"errors"

	"github.com/aanand-mishra/registration-api/internal/types"
)

var (
	// ErrNotFound means no user has the requested id.
	ErrNotFound = errors.New("user not found")

	// ErrDuplicateEmail means the email is already registered. Emails are
	// compared case-insensitively.
	ErrDuplicateEmail = errors.New("email already registered")

	// ErrServer means the backing service answered but failed (5xx).
	ErrServer = errors.New("storage server error")

	// ErrNetwork means the backing service could not be reached.
	ErrNetwork = errors.New("storage unreachable")
)

// Storage is the user store contract.
type Storage interface {
	// CreateUser persists an accepted registration and returns its id.
	// u.ID is ignored. Returns ErrDuplicateEmail when the email is taken.
	CreateUser(ctx context.Context, u types.User) (int64, error)

	// GetUserByID fetches one user. Returns ErrNotFound if absent.
	GetUserByID(ctx context.Context, id int64) (types.User, error)

	// GetUsers returns every user in insertion order. The slice is empty,
	// not nil, when there are none.
	GetUsers(ctx context.Context) ([]types.User, error)
}

// Driver names accepted by config key storage.driver.
const (
	DriverSQLite = "sqlite"
	DriverKV     = "kv"
	DriverRemote = "remote"
)
