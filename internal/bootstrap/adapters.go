package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/target/storyweb/config"
	"github.com/target/storyweb/internal/adapters/reaper"
	"github.com/target/storyweb/internal/observability/statsd"
	"github.com/target/storyweb/internal/ports"
)

// SessionReaperConfig contains configuration for the session reaper.
type SessionReaperConfig struct {
	Store   ports.SessionStore
	Logger  *slog.Logger
	Config  config.ReaperConfig
	Metrics statsd.Sink
}

// RunSessionReaper purges expired sessions until ctx is cancelled. Stores that
// expire records natively have nothing to purge and return immediately.
func RunSessionReaper(ctx context.Context, cfg SessionReaperConfig) error {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	runner, err := reaper.NewRunner(reaper.RunnerOptions{
		Store:   cfg.Store,
		Config:  cfg.Config,
		Logger:  logger,
		Metrics: cfg.Metrics,
	})
	if errors.Is(err, reaper.ErrNoPurge) {
		logger.InfoContext(ctx, "session reaper idle: store expires records natively")
		return nil
	}
	if err != nil {
		return fmt.Errorf("create session reaper: %w", err)
	}

	return runner.Run(ctx)
}
