// Package dbmanager manages the PostgreSQL connection pool and the
// per-connection scope variables that pin every statement on a
// connection to one tenant.
package dbmanager

import (
	"context"
	"database/sql"
)

type ScopedDb interface {
	// Conn returns a new connection to the database.
	Conn(ctx context.Context) (ScopedConn, error)
	// Stats returns the number of connection requests and returns.
	Stats() (requests, returns uint64)
}

type ScopedConn interface {
	// AddScopes sets the given scope variables on the connection.
	AddScopes(ctx context.Context, scopes map[string]string) error
	// DropScopes resets the given scope variables on the connection.
	DropScopes(ctx context.Context, scopes []string) error
	// AddScope sets a single scope variable on the connection.
	AddScope(ctx context.Context, scope, value string) error
	// DropScope resets a single scope variable on the connection.
	DropScope(ctx context.Context, scope string) error
	// DropAllScopes resets all configured scope variables.
	DropAllScopes(ctx context.Context) error
	// Conn returns the underlying connection of the ScopedConn.
	Conn() *sql.Conn
	// Close drops all scopes and returns the connection to the pool.
	Close(ctx context.Context)
}

func NewScopedDb(ctx context.Context, dbtype string, configuredScopes []string) (ScopedDb, error) {
	switch dbtype {
	case "postgresql":
		return NewPostgresqlDb(ctx, configuredScopes)
	}
	return nil, ErrUnsupportedDbType
}
