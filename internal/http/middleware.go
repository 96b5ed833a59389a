package httpx

import (
	"context"
	"log/slog"
	"net/http"
	"runtime/debug"
	"time"

	domainauth "github.com/target/storyweb/internal/domain/auth"
	"github.com/target/storyweb/internal/domain/guard"
	"github.com/target/storyweb/internal/observability/metrics"
	"github.com/target/storyweb/internal/observability/statsd"
)

// Logging returns a middleware that logs HTTP requests and responses and, when
// sink is non-nil, records request latency.
func Logging(logger *slog.Logger, sink statsd.Sink) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := &respWriter{ResponseWriter: w, status: http.StatusOK}
			route := new(string)
			next.ServeHTTP(ww, r.WithContext(context.WithValue(r.Context(), routeKey{}, route)))
			elapsed := time.Since(start)
			logger.Info("http",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", ww.status),
				slog.Duration("duration", elapsed),
			)
			metrics.EmitHTTPRequest(sink, metrics.HTTPRequestMetric{
				Method:  r.Method,
				Route:   *route,
				Status:  ww.status,
				Elapsed: elapsed,
			})
		})
	}
}

type routeKey struct{}

// recordRoute reports the mux pattern that served the request back to Logging.
// Middleware between the two clones the request, so the pattern cannot be read
// off the outer request.
func recordRoute(mux http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mux.ServeHTTP(w, r)
		if route, ok := r.Context().Value(routeKey{}).(*string); ok {
			*route = r.Pattern
		}
	})
}

type respWriter struct {
	http.ResponseWriter
	status int
}

func (w *respWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

func (w *respWriter) Flush() {
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// Recover returns a middleware that recovers from panics and logs them.
func Recover(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					logger.Error("panic",
						slog.Any("error", err),
						slog.String("path", r.URL.Path),
						slog.String("method", r.Method),
						slog.String("stack", string(debug.Stack())))
					http.Error(w, "Internal Server Error", http.StatusInternalServerError)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// SessionReader loads the session record for a request.
type SessionReader interface {
	Load(ctx context.Context, id string) (domainauth.Session, error)
}

// LoadSession puts the browser's session into the request context. Load
// failures degrade to an anonymous session.
func LoadSession(sessions SessionReader, cookies CookieConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := cookies.SessionID(r)
			sess, _ := sessions.Load(r.Context(), id) //nolint:errcheck // Load logs and degrades to anonymous.
			next.ServeHTTP(w, r.WithContext(SetSessionInContext(r.Context(), sess)))
		})
	}
}

// GuardEvaluator decides what happens to a request for a guarded page.
type GuardEvaluator interface {
	Evaluate(ctx context.Context, policy guard.Policy, sessionID string) guard.Decision
	EvaluateSession(ctx context.Context, policy guard.Policy, sess domainauth.Session) guard.Decision
}

// Guard protects a subtree with the policy for audience. The subtree renders
// only on an allow decision; a deny redirects once to the policy destination.
// While the probe is unresolved the browser gets the loading page and no redirect.
func Guard(
	guards GuardEvaluator,
	cookies CookieConfig,
	audience guard.Audience,
	loading http.Handler,
) func(http.Handler) http.Handler {
	policy := guard.MustPolicy(audience)
	if loading == nil {
		loading = http.HandlerFunc(loadingFallback)
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var decision guard.Decision
			if sess, ok := SessionFromContext(r.Context()); ok {
				decision = guards.EvaluateSession(r.Context(), policy, sess)
			} else {
				decision = guards.Evaluate(r.Context(), policy, cookies.SessionID(r))
			}
			switch decision.Outcome {
			case guard.OutcomeRender:
				next.ServeHTTP(w, r)
			case guard.OutcomeRedirect:
				redirect(w, r, decision.Target)
			default:
				loading.ServeHTTP(w, r)
			}
		})
	}
}

func loadingFallback(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Retry-After", "1")
	http.Error(w, "Loading…", http.StatusServiceUnavailable)
}
