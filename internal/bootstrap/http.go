package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/target/storyweb/config"
	httpx "github.com/target/storyweb/internal/http"
)

// HTTPServerConfig contains configuration for HTTP server.
type HTTPServerConfig struct {
	Config   *config.AppConfig
	Services ServiceContainer
	Logger   *slog.Logger
	// ErrCh receives a listener failure; nil only logs it.
	ErrCh chan<- error
}

// BuildRouterServices maps the service container and config onto the router's dependencies.
func BuildRouterServices(appCfg *config.AppConfig, services ServiceContainer, logger *slog.Logger) httpx.RouterServices {
	if appCfg == nil {
		appCfg = &config.AppConfig{}
	}
	secure := appCfg.HTTP.SecureCookies && !appCfg.IsDev

	rs := httpx.RouterServices{
		Sessions:  services.Sessions,
		Guards:    services.Guards,
		Expiry:    services.Expiry,
		Auth:      services.Auth,
		Accounts:  services.Accounts,
		Readiness: services.Sessions,
		Cookies: httpx.CookieConfig{
			SessionName: appCfg.Session.CookieName,
			Domain:      appCfg.HTTP.CookieDomain,
			Secure:      secure,
		},
		CSRF: httpx.CSRFConfig{
			CookieDomain: appCfg.HTTP.CookieDomain,
			Secure:       secure,
		},
		IsDev:  appCfg.IsDev,
		Logger: logger,
	}
	if services.Observability.MetricsSink != nil {
		rs.Metrics = services.Observability.MetricsSink
	}
	if appCfg.HTTP.CompressionEnabled {
		logger.Info("HTTP compression enabled", "level", appCfg.HTTP.CompressionLevel)
		rs.Compression = &httpx.CompressionConfig{Level: appCfg.HTTP.CompressionLevel, Logger: logger}
	}
	return rs
}

// StartHTTPServer creates and starts the HTTP server.
// Returns the server instance for graceful shutdown.
func StartHTTPServer(cfg *HTTPServerConfig) (*http.Server, error) {
	if cfg == nil {
		return nil, errors.New("http server config is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	appCfg := cfg.Config
	if appCfg == nil {
		appCfg = &config.AppConfig{}
	}

	handler, err := httpx.NewRouter(BuildRouterServices(appCfg, cfg.Services, logger))
	if err != nil {
		return nil, fmt.Errorf("build router: %w", err)
	}

	return startServer(serverParams{
		logger:            logger,
		handler:           handler,
		addr:              appCfg.HTTP.Addr,
		readHeaderTimeout: appCfg.HTTP.ReadHeaderTimeout,
		errCh:             cfg.ErrCh,
	}), nil
}

type serverParams struct {
	logger            *slog.Logger
	handler           http.Handler
	addr              string
	readHeaderTimeout time.Duration
	errCh             chan<- error
}

func startServer(p serverParams) *http.Server {
	// Guard against empty addr to avoid listening on Go default
	addr := p.addr
	if addr == "" {
		addr = ":8080"
	}
	readHeaderTimeout := p.readHeaderTimeout
	if readHeaderTimeout <= 0 {
		readHeaderTimeout = 10 * time.Second
	}

	server := &http.Server{
		Addr:              addr,
		Handler:           p.handler,
		ReadHeaderTimeout: readHeaderTimeout,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		p.logger.Info("starting HTTP server", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			p.logger.Error("HTTP server failed", "error", err)
			if p.errCh != nil {
				select {
				case p.errCh <- fmt.Errorf("http server: %w", err):
				default:
				}
			}
		}
	}()

	return server
}

// ShutdownConfig contains dependencies for HTTP server shutdown.
type ShutdownConfig struct {
	Context context.Context
	Server  *http.Server
	Logger  *slog.Logger
}

// ShutdownHTTPServer gracefully shuts down the HTTP server.
func ShutdownHTTPServer(cfg ShutdownConfig) error {
	if cfg.Server == nil {
		return nil
	}

	if cfg.Logger != nil {
		cfg.Logger.Info("shutting down HTTP server")
	}

	ctx := cfg.Context
	if ctx == nil {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(context.Background(), shutdownWaitTimeout)
		defer cancel()
	}

	if err := cfg.Server.Shutdown(ctx); err != nil {
		return err
	}

	if cfg.Logger != nil {
		cfg.Logger.Info("HTTP server stopped")
	}

	return nil
}
