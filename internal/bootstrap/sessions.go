package bootstrap

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"
	"github.com/target/storyweb/config"
	"github.com/target/storyweb/internal/adapters/memory"
	"github.com/target/storyweb/internal/adapters/postgres"
	redisadapter "github.com/target/storyweb/internal/adapters/redis"
	"github.com/target/storyweb/internal/ports"
)

// SessionStoreConfig selects and connects the session backend.
type SessionStoreConfig struct {
	Session     config.SessionConfig
	DB          *sql.DB
	RedisClient redis.UniversalClient
	Logger      *slog.Logger
}

// BuildSessionStore returns the store for the configured backend.
//
//nolint:ireturn // the backend is chosen at runtime.
func BuildSessionStore(cfg SessionStoreConfig) (ports.SessionStore, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	switch cfg.Session.Backend {
	case config.SessionBackendRedis, "":
		if cfg.RedisClient == nil {
			return nil, errors.New("redis session backend requires a redis client")
		}
		logger.Info("session store ready", "backend", config.SessionBackendRedis, "prefix", cfg.Session.KeyPrefix)
		return redisadapter.NewSessionStoreWithPrefix(cfg.RedisClient, cfg.Session.KeyPrefix), nil
	case config.SessionBackendPostgres:
		if cfg.DB == nil {
			return nil, errors.New("postgres session backend requires a database")
		}
		logger.Info("session store ready", "backend", config.SessionBackendPostgres)
		return postgres.NewSessionStore(cfg.DB), nil
	case config.SessionBackendMemory:
		logger.Warn("using in-memory session store; sessions are lost on restart")
		return memory.NewSessionStore(), nil
	default:
		return nil, fmt.Errorf("unknown session backend %q", cfg.Session.Backend)
	}
}
