package service

import (
	"context"
	"log/slog"

	domainauth "github.com/target/storyweb/internal/domain/auth"
	"github.com/target/storyweb/internal/domain/guard"
	"github.com/target/storyweb/internal/observability/metrics"
	"github.com/target/storyweb/internal/observability/statsd"
)

// GuardServiceOptions groups dependencies for GuardService.
type GuardServiceOptions struct {
	Sessions *SessionService
	Metrics  statsd.Sink
	Logger   *slog.Logger
}

// GuardService runs the route guard for one request: it probes the session,
// feeds the probe status through a boundary, and reports the decision.
type GuardService struct {
	sessions *SessionService
	metrics  statsd.Sink
	logger   *slog.Logger
}

// NewGuardService constructs a GuardService.
func NewGuardService(opts GuardServiceOptions) *GuardService {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &GuardService{
		sessions: opts.Sessions,
		metrics:  opts.Metrics,
		logger:   logger.With("component", "guard"),
	}
}

// Evaluate loads the session for sessionID once and decides what to do with a
// request for a page guarded by policy.
func (g *GuardService) Evaluate(ctx context.Context, policy guard.Policy, sessionID string) guard.Decision {
	sess, _ := g.sessions.Load(ctx, sessionID) //nolint:errcheck // Load logs and degrades to anonymous.
	return g.EvaluateSession(ctx, policy, sess)
}

// EvaluateSession decides for a session already loaded for this request. The
// decision is Wait only when the probe could not resolve (ctx already done).
func (g *GuardService) EvaluateSession(ctx context.Context, policy guard.Policy, sess domainauth.Session) guard.Decision {
	probe := NewSessionProbe(sess)
	boundary := guard.NewBoundary(policy, sess.Viewer)

	// First pass sees the unresolved probe and always waits.
	boundary.Observe(probe.Status())

	decision, changed := boundary.Observe(probe.Resolve(ctx))
	if decision.Outcome == guard.OutcomeRedirect && changed {
		g.logger.DebugContext(ctx, "guard redirect",
			"audience", string(policy.Audience),
			"target", decision.Target,
		)
		metrics.EmitGuardRedirect(g.metrics, string(policy.Audience), decision.Target)
	}
	return decision
}
