// Package reaper runs the session reaper as a standalone background service.
package reaper

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/target/storyweb/config"
	"github.com/target/storyweb/internal/observability/statsd"
	"github.com/target/storyweb/internal/ports"
	"github.com/target/storyweb/internal/service"
)

// Runner constructs the reaper service and runs the purge loop.
type Runner struct {
	reaper *service.ReaperService
	logger *slog.Logger
}

// RunnerOptions holds the dependencies for creating a Runner.
type RunnerOptions struct {
	Store   ports.SessionStore
	Config  config.ReaperConfig
	Logger  *slog.Logger
	Metrics statsd.Sink
}

// ErrNoPurge is returned when the configured store expires records on its own.
var ErrNoPurge = errors.New("session store expires records natively")

// NewRunner creates a new reaper runner with the given options.
func NewRunner(opts RunnerOptions) (*Runner, error) {
	if opts.Store == nil {
		return nil, errors.New("session store is required")
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	purger, ok := opts.Store.(ports.SessionPurger)
	if !ok {
		return nil, ErrNoPurge
	}

	svc, err := service.NewReaperService(service.ReaperServiceOptions{
		Store:   purger,
		Config:  opts.Config,
		Logger:  opts.Logger,
		Metrics: opts.Metrics,
	})
	if err != nil {
		return nil, fmt.Errorf("wire reaper service: %w", err)
	}
	return &Runner{reaper: svc, logger: opts.Logger}, nil
}

// Run starts the reaper loop and runs until the context is cancelled.
func (r *Runner) Run(ctx context.Context) error {
	r.logger.InfoContext(ctx, "starting session reaper runner")
	return r.reaper.Run(ctx)
}
