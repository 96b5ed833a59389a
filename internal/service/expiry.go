package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/target/storyweb/internal/domain/expiry"
	"github.com/target/storyweb/internal/domain/guard"
	"github.com/target/storyweb/internal/observability/metrics"
	"github.com/target/storyweb/internal/observability/statsd"
	"github.com/target/storyweb/internal/ports"
)

// ExpiryInterceptorOptions groups dependencies for ExpiryInterceptor.
type ExpiryInterceptorOptions struct {
	Metrics statsd.Sink
	Logger  *slog.Logger
}

// ExpiryInterceptor turns story API "token missing/invalid" messages into a
// signed-out browser: one toast, cleared token and user, and a redirect to sign in.
type ExpiryInterceptor struct {
	metrics statsd.Sink
	logger  *slog.Logger
}

// NewExpiryInterceptor constructs an ExpiryInterceptor.
func NewExpiryInterceptor(opts ExpiryInterceptorOptions) *ExpiryInterceptor {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &ExpiryInterceptor{
		metrics: opts.Metrics,
		logger:  logger.With("component", "session_expiry"),
	}
}

// CheckAndHandle reports whether message is a session-expiry message. When it is,
// it toasts the message under the fixed expiry identity, clears token and user
// (the admin marker stays), and redirects to the admin or user sign-in page.
// Other messages cause no side effect.
func (i *ExpiryInterceptor) CheckAndHandle(
	ctx context.Context,
	message string,
	client ports.BrowserScope,
	isAdminContext bool,
) bool {
	if !expiry.IsExpiryMessage(message) {
		return false
	}

	client.Toast(ports.Toast{ID: expiry.ToastID, Message: message, Level: ports.ToastError})

	if err := client.ClearSession(ctx, expiry.ClearedKeys()...); err != nil {
		i.logger.ErrorContext(ctx, "clear expired session failed", "error", err)
	}

	target := guard.PathLogin
	if isAdminContext {
		target = guard.PathAdminLogin
	}
	client.Redirect(target)

	i.logger.InfoContext(ctx, "session expired", "admin", isAdminContext, "redirect", target)
	metrics.EmitSessionExpired(i.metrics, isAdminContext)
	return true
}

// HandleError runs CheckAndHandle on the message carried by a story API error.
// Errors that are not API errors are never handled.
func (i *ExpiryInterceptor) HandleError(
	ctx context.Context,
	err error,
	client ports.BrowserScope,
	isAdminContext bool,
) bool {
	var apiErr *ports.APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	return i.CheckAndHandle(ctx, apiErr.Message, client, isAdminContext)
}
