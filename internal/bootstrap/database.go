package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/url"
	"strconv"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib" // registers the pgx database/sql driver
	"github.com/redis/go-redis/v9"
	"github.com/target/storyweb/config"
	"github.com/target/storyweb/internal/migrate"
)

// DatabaseConfig carries the connection settings for whichever session backend is selected.
type DatabaseConfig struct {
	DBConfig    config.DBConfig
	RedisConfig config.RedisConfig
	Logger      *slog.Logger
}

// postgresDSN renders the pgx connection URL; url.URL escapes credentials.
func postgresDSN(c config.DBConfig) string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     net.JoinHostPort(c.Host, strconv.Itoa(c.Port)),
		Path:     "/" + c.Name,
		RawQuery: url.Values{"sslmode": {c.SSLMode}}.Encode(),
	}
	return u.String()
}

// ConnectDB opens the postgres session database and verifies it answers.
func ConnectDB(cfg DatabaseConfig) (*sql.DB, error) {
	pg := cfg.DBConfig
	db, err := sql.Open("pgx", postgresDSN(pg))
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if pg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(pg.MaxOpenConns)
	}
	if pg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(pg.MaxIdleConns)
	}
	if pg.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(pg.ConnMaxLifetime)
	}

	if err := verify(db.PingContext, db.Close); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if cfg.Logger != nil {
		cfg.Logger.Info("session database connected", "host", pg.Host, "port", pg.Port, "database", pg.Name)
	}
	return db, nil
}

// ConnectRedis builds a direct, sentinel, or cluster client and verifies it answers.
//
//nolint:ireturn // the concrete client type depends on topology
func ConnectRedis(cfg DatabaseConfig) (redis.UniversalClient, error) {
	client, desc, err := newRedisClient(cfg.RedisConfig)
	if err != nil {
		return nil, err
	}
	ping := func(ctx context.Context) error { return client.Ping(ctx).Err() }
	if err := verify(ping, client.Close); err != nil {
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	if cfg.Logger != nil {
		cfg.Logger.Info("session redis connected", "addr", redactAddr(desc))
	}
	return client, nil
}

// verify pings once within config.ConnectTimeout and closes the handle on failure.
func verify(ping func(context.Context) error, closeFn func() error) error {
	ctx, cancel := context.WithTimeout(context.Background(), config.ConnectTimeout)
	defer cancel()
	err := ping(ctx)
	if err == nil {
		return nil
	}
	if closeErr := closeFn(); closeErr != nil {
		err = errors.Join(err, fmt.Errorf("close: %w", closeErr))
	}
	return err
}

//nolint:ireturn // the concrete client type depends on topology
func newRedisClient(c config.RedisConfig) (redis.UniversalClient, string, error) {
	switch {
	case c.UseCluster:
		return newClusterClient(c)
	case c.UseSentinel:
		if len(c.SentinelNodes) == 0 {
			return nil, "", errors.New("redis sentinel configuration requires at least one sentinel node")
		}
		client := redis.NewFailoverClient(&redis.FailoverOptions{
			MasterName:       c.SentinelMasterName,
			SentinelAddrs:    c.SentinelNodes,
			Password:         c.Password,
			SentinelPassword: c.SentinelPassword,
			DB:               c.DB,
		})
		return client, "sentinel:" + c.SentinelMasterName, nil
	}

	uri := strings.TrimSpace(c.URI)
	switch {
	case uri == "":
		return nil, "", errors.New("redis direct configuration requires a URI")
	case isRedisURL(uri):
		opt, err := redis.ParseURL(uri)
		if err != nil {
			return nil, "", fmt.Errorf("parse redis url: %w", err)
		}
		// An explicit /N in the URL wins over REDIS_DB.
		if opt.DB == 0 {
			opt.DB = c.DB
		}
		return redis.NewClient(opt), opt.Addr, nil
	default:
		return redis.NewClient(&redis.Options{Addr: uri, Password: c.Password, DB: c.DB}), uri, nil
	}
}

//nolint:ireturn // the concrete client type depends on topology
func newClusterClient(c config.RedisConfig) (redis.UniversalClient, string, error) {
	opts := &redis.ClusterOptions{Password: c.Password}
	for _, addr := range c.ClusterNodes {
		if addr = strings.TrimSpace(addr); addr != "" {
			opts.Addrs = append(opts.Addrs, addr)
		}
	}

	// Without explicit nodes, seed the cluster from REDIS_URI.
	if uri := strings.TrimSpace(c.URI); len(opts.Addrs) == 0 && uri != "" {
		if !isRedisURL(uri) {
			opts.Addrs = []string{uri}
		} else {
			parsed, err := redis.ParseURL(uri)
			if err != nil {
				return nil, "", fmt.Errorf("parse redis cluster url: %w", err)
			}
			opts.Addrs = []string{parsed.Addr}
			opts.Username = parsed.Username
			opts.TLSConfig = parsed.TLSConfig
			if parsed.Password != "" {
				opts.Password = parsed.Password
			}
		}
	}
	if len(opts.Addrs) == 0 {
		return nil, "", errors.New("redis cluster configuration requires at least one address")
	}
	return redis.NewClusterClient(opts), "cluster:" + strings.Join(opts.Addrs, ","), nil
}

func isRedisURL(value string) bool {
	return strings.HasPrefix(value, "redis://") || strings.HasPrefix(value, "rediss://")
}

// redactAddr strips credentials from an address before it is logged.
func redactAddr(addr string) string {
	if u, err := url.Parse(addr); err == nil && u.User != nil {
		u.User = url.User("*")
		return u.Redacted()
	}
	if i := strings.LastIndex(addr, "@"); i > -1 {
		return addr[i+1:]
	}
	return addr
}

// RunMigrations applies the embedded session schema.
func RunMigrations(ctx context.Context, db *sql.DB, logger *slog.Logger) error {
	applied, err := migrate.Run(ctx, db)
	if err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	if logger != nil {
		logger.InfoContext(ctx, "database migrations completed", "applied", len(applied))
	}
	return nil
}
