package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/target/storyweb/config"
	"github.com/target/storyweb/internal/adapters/storyapi"
	"github.com/target/storyweb/internal/observability/statsd"
	"github.com/target/storyweb/internal/ports"
	"github.com/target/storyweb/internal/service"
)

// ServiceContainer holds all application services.
type ServiceContainer struct {
	Store         ports.SessionStore
	Sessions      *service.SessionService
	Guards        *service.GuardService
	Expiry        *service.ExpiryInterceptor
	Auth          *service.AuthService
	Accounts      *service.AccountService
	Observability ObservabilityContainer
}

// ObservabilityContainer groups shared observability dependencies.
type ObservabilityContainer struct {
	MetricsSink   *statsd.Client
	MetricsConfig config.ObservabilityMetricsConfig
}

// ServiceDeps groups dependencies for service initialization.
type ServiceDeps struct {
	Config      *config.AppConfig
	DB          *sql.DB
	RedisClient redis.UniversalClient
	Logger      *slog.Logger
}

// buildObservability configures the metrics sink. A failed dial disables
// metrics rather than failing startup.
func buildObservability(ctx context.Context, logger *slog.Logger, cfg config.ObservabilityConfig) ObservabilityContainer {
	obsLogger := logger
	if obsLogger == nil {
		obsLogger = slog.Default()
	}

	client, err := statsd.NewClient(ctx, statsd.Config{
		Enabled: cfg.Metrics.IsEnabled(),
		Address: cfg.Metrics.StatsdAddress,
		Prefix:  cfg.Metrics.Prefix,
		Logger:  obsLogger,
	})
	if err != nil {
		obsLogger.Error("failed to initialise statsd client", "error", err)
		client = nil
	}

	return ObservabilityContainer{
		MetricsSink:   client,
		MetricsConfig: cfg.Metrics,
	}
}

// metricsSink returns nil for a missing client so services see a nil interface.
//
//nolint:ireturn // nil interface when metrics are off.
func (o ObservabilityContainer) metricsSink() statsd.Sink {
	if o.MetricsSink == nil {
		return nil
	}
	return o.MetricsSink
}

func newStoryAPIClient(cfg config.APIConfig, logger *slog.Logger) (*storyapi.Client, error) {
	client, err := storyapi.NewClient(storyapi.Config{
		BaseURL:     cfg.BaseURL,
		Timeout:     cfg.Timeout,
		MessagePath: cfg.ErrorMessagePath,
		Logger:      logger,
	})
	if err != nil {
		return nil, fmt.Errorf("story api client: %w", err)
	}
	return client, nil
}

// NewServices wires the session store, story API client, and the services on top of them.
func NewServices(ctx context.Context, deps *ServiceDeps) (ServiceContainer, error) {
	if deps == nil || deps.Config == nil {
		return ServiceContainer{}, errors.New("service deps with config are required")
	}
	cfg := deps.Config
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	observability := buildObservability(ctx, logger, cfg.Observability)
	sink := observability.metricsSink()

	store, err := BuildSessionStore(SessionStoreConfig{
		Session:     cfg.Session,
		DB:          deps.DB,
		RedisClient: deps.RedisClient,
		Logger:      logger,
	})
	if err != nil {
		return ServiceContainer{}, err
	}

	api, err := newStoryAPIClient(cfg.API, logger)
	if err != nil {
		return ServiceContainer{}, err
	}

	sessions := service.NewSessionService(service.SessionServiceOptions{
		Store:  store,
		TTL:    cfg.Session.TTL,
		Logger: logger,
	})

	return ServiceContainer{
		Store:    store,
		Sessions: sessions,
		Guards: service.NewGuardService(service.GuardServiceOptions{
			Sessions: sessions,
			Metrics:  sink,
			Logger:   logger,
		}),
		Expiry: service.NewExpiryInterceptor(service.ExpiryInterceptorOptions{
			Metrics: sink,
			Logger:  logger,
		}),
		Auth: service.NewAuthService(service.AuthServiceOptions{
			Provider:    BuildAuthProvider(ctx, AuthConfig{Auth: cfg.Auth, Logger: logger}),
			Roles:       BuildRoleMapper(cfg.Auth),
			API:         api,
			Sessions:    sessions,
			TokenExpiry: storyapi.TokenExpiry,
			Metrics:     sink,
			Logger:      logger,
		}),
		Accounts:      service.NewAccountService(api),
		Observability: observability,
	}, nil
}

// ServiceOrchestrationConfig contains configuration for service orchestration.
type ServiceOrchestrationConfig struct {
	Config   *config.AppConfig
	Services ServiceContainer
	Logger   *slog.Logger
}

// shutdownWaitTimeout bounds each stop step when no HTTP shutdown timeout is configured.
const shutdownWaitTimeout = 15 * time.Second

// backgroundService is a process mode that runs beside (or instead of) the HTTP server.
type backgroundService struct {
	mode config.ServiceMode
	name string
	run  func(context.Context) error
}

func backgroundServices(cfg *ServiceOrchestrationConfig, logger *slog.Logger) []backgroundService {
	return []backgroundService{{
		mode: config.ServiceModeSessionReaper,
		name: "session reaper",
		run: func(ctx context.Context) error {
			return RunSessionReaper(ctx, SessionReaperConfig{
				Store:   cfg.Services.Store,
				Logger:  logger,
				Config:  cfg.Config.Reaper,
				Metrics: cfg.Services.Observability.metricsSink(),
			})
		},
	}}
}

// serviceRuntime tracks everything RunServicesWithShutdown started.
type serviceRuntime struct {
	logger  *slog.Logger
	errCh   chan error
	server  *http.Server
	running []runningService
}

type runningService struct {
	name string
	done <-chan struct{}
}

func (rt *serviceRuntime) launch(ctx context.Context, svc backgroundService) {
	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := svc.run(ctx); err != nil {
			rt.report(ctx, fmt.Errorf("%s failed: %w", svc.name, err))
		}
	}()
	rt.running = append(rt.running, runningService{name: svc.name, done: done})
	rt.logger.InfoContext(ctx, "background service started", "service", svc.name, "mode", svc.mode)
}

// report hands err to the supervisor without blocking a stopping service.
func (rt *serviceRuntime) report(ctx context.Context, err error) {
	select {
	case rt.errCh <- err:
	case <-ctx.Done():
	default:
		rt.logger.WarnContext(ctx, "dropping service error", "error", err)
	}
}

// stop drains HTTP first, then waits for each background service.
func (rt *serviceRuntime) stop(ctx context.Context, timeout time.Duration) error {
	if timeout <= 0 {
		timeout = shutdownWaitTimeout
	}
	if rt.server != nil {
		shutdownCtx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		if err := ShutdownHTTPServer(ShutdownConfig{Context: shutdownCtx, Server: rt.server, Logger: rt.logger}); err != nil {
			return err
		}
	}
	for _, svc := range rt.running {
		select {
		case <-svc.done:
			rt.logger.Info("service stopped", "service", svc.name)
		case <-time.After(timeout):
			rt.logger.Warn("timed out waiting for service", "service", svc.name)
		}
	}
	return nil
}

// RunServicesWithShutdown starts every enabled service and blocks until a
// shutdown signal arrives or one of them fails.
func RunServicesWithShutdown(cfg *ServiceOrchestrationConfig) error {
	if cfg == nil || cfg.Config == nil {
		return errors.New("service orchestration config with AppConfig is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	enabled, err := cfg.Config.GetEnabledServices()
	if err != nil {
		return fmt.Errorf("determine enabled services: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rt := &serviceRuntime{logger: logger, errCh: make(chan error, errorChannelBufferSize(enabled))}
	if enabled[config.ServiceModeHTTP] {
		rt.server, err = StartHTTPServer(&HTTPServerConfig{
			Config:   cfg.Config,
			Services: cfg.Services,
			Logger:   logger,
			ErrCh:    rt.errCh,
		})
		if err != nil {
			return err
		}
	}
	for _, svc := range backgroundServices(cfg, logger) {
		if enabled[svc.mode] {
			rt.launch(ctx, svc)
		}
	}

	sigCtx, stopSignals := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stopSignals()

	var runErr error
	select {
	case <-sigCtx.Done():
		logger.Info("shutting down services")
	case runErr = <-rt.errCh:
		logger.Error("service error", "error", runErr)
	}
	cancel()

	// The service context is cancelled; in-flight requests get their own deadline.
	stopErr := rt.stop(context.WithoutCancel(ctx), cfg.Config.HTTP.ShutdownTimeout)
	if runErr != nil {
		if stopErr != nil {
			logger.Error("graceful stop failed", "error", stopErr)
		}
		return runErr
	}
	return stopErr
}

func errorChannelCapacity(enabled map[config.ServiceMode]bool) int {
	count := 0
	for _, mode := range config.ValidServiceModes() {
		if enabled[mode] {
			count++
		}
	}
	return count
}

// errorChannelBufferSize leaves room for one error per service plus the HTTP listener.
func errorChannelBufferSize(enabled map[config.ServiceMode]bool) int {
	return errorChannelCapacity(enabled) + 1
}
