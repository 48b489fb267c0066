// Package postgres implements the credential store over a PostgreSQL
// database using the pgx stdlib driver. Table and column names come
// from a store.SchemaConfig so the backend can sit on top of an
// existing user table without schema changes.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/synqronlabs/talon/store"
)

// DBTX is the subset of database/sql the store uses. Both *sql.DB and
// *sql.Tx satisfy it.
type DBTX interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// Store is a SQL-backed credential store.
type Store struct {
	db     DBTX
	schema store.SchemaConfig

	findQuery   string
	secretQuery string
	touchQuery  string
}

// Open connects to the database at dsn and verifies the connection.
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("postgres: ping: %w", err)
	}
	return db, nil
}

// New builds a store over db using the given schema. The queries are
// assembled once here; nothing consults the schema afterwards.
func New(db DBTX, schema store.SchemaConfig) *Store {
	return &Store{
		db:          db,
		schema:      schema,
		findQuery:   findQuery(schema),
		secretQuery: secretQuery(schema),
		touchQuery:  touchQuery(schema),
	}
}

func quote(name string) string {
	return pgx.Identifier{name}.Sanitize()
}

func findQuery(s store.SchemaConfig) string {
	cols := fmt.Sprintf("%s, %s, %s", quote(s.IDColumn), quote(s.IdentityColumn), quote(s.PasswordColumn))
	if s.TracksLastUsed() {
		cols += ", " + quote(s.LastUsedColumn)
	}
	return fmt.Sprintf("SELECT %s FROM %s WHERE %s = $1", cols, quote(s.Table), quote(s.IdentityColumn))
}

func secretQuery(s store.SchemaConfig) string {
	return fmt.Sprintf("SELECT %s FROM %s WHERE %s = $1",
		quote(s.PasswordColumn), quote(s.Table), quote(s.IdentityColumn))
}

func touchQuery(s store.SchemaConfig) string {
	if !s.TracksLastUsed() {
		return ""
	}
	return fmt.Sprintf("UPDATE %s SET %s = $1 WHERE %s = $2",
		quote(s.Table), quote(s.LastUsedColumn), quote(s.IDColumn))
}

func (s *Store) FindByIdentity(ctx context.Context, identity string) (*store.Record, error) {
	row := s.db.QueryRowContext(ctx, s.findQuery, identity)

	var (
		rec      store.Record
		id       int64
		lastUsed sql.NullTime
	)
	var err error
	if s.schema.TracksLastUsed() {
		err = row.Scan(&id, &rec.Identity, &rec.PasswordHash, &lastUsed)
	} else {
		err = row.Scan(&id, &rec.Identity, &rec.PasswordHash)
	}
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, &store.Error{Op: "find identity", Err: err}
	}
	rec.ID = id
	if lastUsed.Valid {
		t := lastUsed.Time
		rec.LastUsedAt = &t
	}
	return &rec, nil
}

func (s *Store) FindSecret(ctx context.Context, identity string) (string, bool, error) {
	var secret string
	err := s.db.QueryRowContext(ctx, s.secretQuery, identity).Scan(&secret)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, &store.Error{Op: "find secret", Err: err}
	}
	return secret, true, nil
}

func (s *Store) TouchLastUsed(ctx context.Context, id any, at time.Time) error {
	if s.touchQuery == "" {
		return nil
	}
	if _, err := s.db.ExecContext(ctx, s.touchQuery, at, id); err != nil {
		return &store.Error{Op: "touch last used", Err: err}
	}
	return nil
}
