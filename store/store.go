// Package store defines the credential store consumed by the
// authenticator, plus an in-memory implementation for tests and small
// deployments. Backend-specific implementations live in subpackages.
package store

import (
	"context"
	"fmt"
	"time"
)

// Record is a stored credential. It is read-only to the authenticator;
// the only write the authenticator ever requests is the last-used
// timestamp, keyed by ID.
type Record struct {
	ID           any
	Identity     string
	PasswordHash string
	LastUsedAt   *time.Time
}

// Store looks up credentials by identity. Implementations must be safe
// for concurrent use; sessions share a single store.
type Store interface {
	// FindByIdentity returns the credential record for identity, or
	// (nil, nil) when no such identity exists. A non-nil error means
	// the backend failed, not that the identity is unknown.
	FindByIdentity(ctx context.Context, identity string) (*Record, error)

	// FindSecret returns the stored secret for identity. The boolean
	// reports whether the identity exists.
	FindSecret(ctx context.Context, identity string) (string, bool, error)

	// TouchLastUsed records that the credential identified by id was
	// used at the given time. The write is idempotent; concurrent
	// touches for the same id resolve last-write-wins.
	TouchLastUsed(ctx context.Context, id any, at time.Time) error
}

// Error wraps a backend failure with the operation that hit it.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("store: %s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// SchemaConfig maps the store's logical fields onto physical table and
// column names. It is resolved once at startup and passed by value;
// nothing re-reads it at runtime.
type SchemaConfig struct {
	Table          string
	IDColumn       string
	IdentityColumn string
	PasswordColumn string

	// LastUsedColumn enables last-used tracking when non-empty.
	LastUsedColumn string
}

// DefaultSchema returns the column layout assumed when a deployment
// does not override it. Last-used tracking is off by default.
func DefaultSchema() SchemaConfig {
	return SchemaConfig{
		Table:          "users",
		IDColumn:       "id",
		IdentityColumn: "username",
		PasswordColumn: "password",
	}
}

// TracksLastUsed reports whether the schema carries a last-used column.
func (c SchemaConfig) TracksLastUsed() bool {
	return c.LastUsedColumn != ""
}
