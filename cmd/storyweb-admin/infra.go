package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/target/storyweb/config"
	"github.com/target/storyweb/internal/bootstrap"
	"github.com/target/storyweb/internal/ports"
)

// sessionInfra is the configured session store plus the connections behind it.
type sessionInfra struct {
	Store ports.SessionStore
	db    *sql.DB
	redis redis.UniversalClient
}

// openSessionStore connects whatever the configured backend needs.
func openSessionStore(logger *slog.Logger, cfg *config.AppConfig) (*sessionInfra, error) {
	if cfg.Session.Backend == config.SessionBackendMemory {
		return nil, errors.New("the memory session backend lives inside the server process; nothing to inspect")
	}

	infra := &sessionInfra{}
	var err error
	if cfg.NeedsPostgres() {
		infra.db, err = bootstrap.ConnectDB(bootstrap.DatabaseConfig{DBConfig: cfg.Postgres, Logger: logger})
		if err != nil {
			return nil, fmt.Errorf("connect db: %w", err)
		}
	}
	if cfg.NeedsRedis() {
		infra.redis, err = bootstrap.ConnectRedis(bootstrap.DatabaseConfig{RedisConfig: cfg.Redis, Logger: logger})
		if err != nil {
			return nil, errors.Join(fmt.Errorf("connect redis: %w", err), infra.Close())
		}
	}

	infra.Store, err = bootstrap.BuildSessionStore(bootstrap.SessionStoreConfig{
		Session:     cfg.Session,
		DB:          infra.db,
		RedisClient: infra.redis,
		Logger:      logger,
	})
	if err != nil {
		return nil, errors.Join(err, infra.Close())
	}
	return infra, nil
}

func (i *sessionInfra) Close() error {
	if i == nil {
		return nil
	}
	var closeErr error
	if i.db != nil {
		if err := i.db.Close(); err != nil {
			closeErr = errors.Join(closeErr, fmt.Errorf("close db: %w", err))
		}
	}
	if i.redis != nil {
		if err := i.redis.Close(); err != nil {
			closeErr = errors.Join(closeErr, fmt.Errorf("close redis: %w", err))
		}
	}
	return closeErr
}

// withSessionStore runs f against the configured store under a signal-aware timeout.
func withSessionStore(
	cmdCtx *commandContext,
	timeout time.Duration,
	f func(context.Context, ports.SessionStore) error,
) error {
	ctx, stop := signal.NotifyContext(cmdCtx.Ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	infra, err := openSessionStore(cmdCtx.Logger, &cmdCtx.Config)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := infra.Close(); cerr != nil {
			cmdCtx.Logger.Warn("close session infra failed", "error", cerr)
		}
	}()

	return f(ctx, infra.Store)
}
