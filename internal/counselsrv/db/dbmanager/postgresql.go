package dbmanager

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/avast/retry-go/v4"
	_ "github.com/jackc/pgx/v4/stdlib"
	"github.com/rs/zerolog/log"

	"github.com/counseldesk/counseldesk/internal/counselsrv/config"
)

var ErrUnsupportedDbType = errors.New("unsupported db type")

type postgresConn struct {
	conn             *sql.Conn
	cancel           context.CancelFunc
	scopes           map[string]string
	configuredScopes []string
	pool             *postgresPool
}

type postgresPool struct {
	configuredScopes []string
	connRequests     atomic.Uint64
	connReturns      atomic.Uint64
	db               *sql.DB
}

// NewPostgresqlDb opens the connection pool and verifies it with a
// retried ping so server startup survives the database coming up a few
// seconds later.
func NewPostgresqlDb(ctx context.Context, configuredScopes []string) (ScopedDb, error) {
	dsn := config.Config().DB.Dsn()

	sqlDB, err := sql.Open("pgx", dsn)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("failed to open db")
		return nil, err
	}

	err = retry.Do(
		func() error {
			return sqlDB.PingContext(ctx)
		},
		retry.Attempts(5),
		retry.Delay(time.Second),
		retry.DelayType(retry.BackOffDelay),
		retry.OnRetry(func(n uint, err error) {
			log.Ctx(ctx).Warn().Err(err).Uint("attempt", n).Msg("db ping failed, retrying")
		}),
	)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("failed to ping db")
		sqlDB.Close()
		return nil, err
	}

	return &postgresPool{
		configuredScopes: configuredScopes,
		db:               sqlDB,
	}, nil
}

// Conn pins a connection from the pool. Scope variables are reset
// before the connection is handed out so a recycled connection can
// never carry a previous request's tenant.
func (p *postgresPool) Conn(ctx context.Context) (ScopedConn, error) {
	ctx, cancel := context.WithCancel(ctx)

	conn, err := p.db.Conn(ctx)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("failed to obtain connection")
		cancel()
		return nil, err
	}

	for _, stmt := range []string{
		"SET lock_timeout = '5s'",
		"SET statement_timeout = '5s'",
	} {
		if _, err := conn.ExecContext(ctx, stmt); err != nil {
			log.Ctx(ctx).Error().Err(err).Msg("failed to set connection timeout")
			cancel()
			conn.Close()
			return nil, err
		}
	}

	h := &postgresConn{
		configuredScopes: p.configuredScopes,
		scopes:           make(map[string]string),
		cancel:           cancel,
		pool:             p,
		conn:             conn,
	}

	if err := h.DropScopes(ctx, p.configuredScopes); err != nil {
		cancel()
		conn.Close()
		return nil, err
	}

	p.connRequests.Add(1)
	return h, nil
}

func (p *postgresPool) Stats() (requests, returns uint64) {
	return p.connRequests.Load(), p.connReturns.Load()
}

// Close drops all scopes and returns the connection to the pool.
func (h *postgresConn) Close(ctx context.Context) {
	if err := h.DropAllScopes(ctx); err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("failed to drop scopes on close")
	}
	if h.cancel != nil {
		h.cancel()
	}
	if h.conn != nil {
		h.conn.Close()
	}
	h.pool.connReturns.Add(1)
}

func (h *postgresConn) isConfiguredScope(scope string) bool {
	for _, s := range h.configuredScopes {
		if s == scope {
			return true
		}
	}
	return false
}

func (h *postgresConn) AddScopes(ctx context.Context, scopes map[string]string) error {
	for scope, value := range scopes {
		if err := h.AddScope(ctx, scope, value); err != nil {
			return err
		}
	}
	return nil
}

func (h *postgresConn) AddScope(ctx context.Context, scope, value string) error {
	if h.conn == nil {
		return sql.ErrConnDone
	}
	if !h.isConfiguredScope(scope) {
		return fmt.Errorf("scope %q is not configured", scope)
	}
	sqlCmd := fmt.Sprintf("SET %s TO $1", scope)
	if _, err := h.conn.ExecContext(ctx, sqlCmd, value); err != nil {
		log.Ctx(ctx).Error().Err(err).Str("scope", scope).Msg("failed to set scope")
		return err
	}
	h.scopes[scope] = value
	return nil
}

func (h *postgresConn) DropScopes(ctx context.Context, scopes []string) error {
	for _, scope := range scopes {
		if err := h.DropScope(ctx, scope); err != nil {
			return err
		}
	}
	return nil
}

func (h *postgresConn) DropScope(ctx context.Context, scope string) error {
	if h.conn == nil {
		return nil
	}
	sqlCmd := fmt.Sprintf("RESET %s", scope)
	if _, err := h.conn.ExecContext(ctx, sqlCmd); err != nil {
		log.Ctx(ctx).Error().Err(err).Str("scope", scope).Msg("failed to reset scope")
		return err
	}
	delete(h.scopes, scope)
	return nil
}

func (h *postgresConn) DropAllScopes(ctx context.Context) error {
	return h.DropScopes(ctx, h.configuredScopes)
}

func (h *postgresConn) Conn() *sql.Conn {
	return h.conn
}
