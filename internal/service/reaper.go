package service

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/target/storyweb/config"
	"github.com/target/storyweb/internal/observability/metrics"
	"github.com/target/storyweb/internal/observability/statsd"
	"github.com/target/storyweb/internal/ports"
)

// ReaperServiceOptions groups dependencies for ReaperService.
type ReaperServiceOptions struct {
	Store   ports.SessionPurger // Required: store with expired records to remove
	Config  config.ReaperConfig
	Logger  *slog.Logger
	Metrics statsd.Sink
}

// ReaperService removes expired session records from stores that do not expire
// them natively.
type ReaperService struct {
	store   ports.SessionPurger
	config  config.ReaperConfig
	logger  *slog.Logger
	metrics statsd.Sink
}

// NewReaperService constructs a new ReaperService.
func NewReaperService(opts ReaperServiceOptions) (*ReaperService, error) {
	if opts.Store == nil {
		return nil, errors.New("session purger is required")
	}
	cfg := opts.Config
	cfg.Sanitize()

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "session_reaper")
	logger.Debug("ReaperService initialized", "interval", cfg.Interval)

	return &ReaperService{
		store:   opts.Store,
		config:  cfg,
		logger:  logger,
		metrics: opts.Metrics,
	}, nil
}

// Run purges once after a short jitter and then every interval until ctx is
// cancelled. Returns nil on graceful shutdown.
func (s *ReaperService) Run(ctx context.Context) error {
	s.logger.InfoContext(ctx, "starting session reaper", "interval", s.config.Interval)

	s.waitWithJitter(ctx)

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	if _, err := s.PurgeOnce(ctx); err != nil {
		s.logPurgeError(ctx, err, "initial purge")
	}

	for {
		select {
		case <-ctx.Done():
			s.logger.InfoContext(ctx, "session reaper stopping", "reason", ctx.Err())
			if errors.Is(ctx.Err(), context.Canceled) {
				return nil
			}
			return ctx.Err()
		case <-ticker.C:
			if _, err := s.PurgeOnce(ctx); err != nil {
				s.logPurgeError(ctx, err, "purge")
			}
		}
	}
}

// PurgeOnce runs a single purge pass and reports how many sessions were removed.
func (s *ReaperService) PurgeOnce(ctx context.Context) (int64, error) {
	start := time.Now()
	n, err := s.store.PurgeExpired(ctx)
	metrics.EmitSessionPurge(s.metrics, metrics.PurgeMetric{
		Count:   n,
		Err:     suppressContextCancellation(err),
		Elapsed: time.Since(start),
	})
	if err != nil {
		return n, fmt.Errorf("purge expired sessions: %w", err)
	}
	if n > 0 {
		s.logger.InfoContext(ctx, "purged expired sessions", "count", n)
	}
	return n, nil
}

// waitWithJitter sleeps up to 10% of the interval so replicas started together
// do not purge in lockstep.
func (s *ReaperService) waitWithJitter(ctx context.Context) {
	maxJitter := int64(s.config.Interval / 10)
	if maxJitter <= 0 {
		return
	}

	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		s.logger.WarnContext(ctx, "failed to generate jitter, skipping", "error", err)
		return
	}

	jitterNanos := binary.BigEndian.Uint64(buf[:]) % uint64(maxJitter)
	jitter := time.Duration(int64(jitterNanos)) // #nosec G115 - bounded by maxJitter which is int64

	select {
	case <-time.After(jitter):
	case <-ctx.Done():
	}
}

func (s *ReaperService) logPurgeError(ctx context.Context, err error, label string) {
	if isContextCancellation(err) {
		s.logger.DebugContext(ctx, label+" cancelled by context", "error", err)
		return
	}
	s.logger.ErrorContext(ctx, label+" failed", "error", err)
}

func isContextCancellation(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

func suppressContextCancellation(err error) error {
	if isContextCancellation(err) {
		return nil
	}
	return err
}
