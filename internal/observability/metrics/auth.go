package metrics

import (
	"maps"
	"time"

	obserrors "github.com/target/storyweb/internal/observability/errors"
	"github.com/target/storyweb/internal/observability/statsd"
)

// Result constants for metric tagging.
const (
	ResultSuccess = "success"
	ResultError   = "error"
	ResultNoop    = "noop"
)

// Context values for session.expired.
const (
	ContextAdmin = "admin"
	ContextUser  = "user"
)

// EmitGuardRedirect counts a guard sending a browser away from a page.
func EmitGuardRedirect(sink statsd.Sink, audience, target string) {
	if sink == nil {
		return
	}
	sink.Count("guard.redirect", 1, map[string]string{
		"audience": audience,
		"target":   target,
	})
}

// EmitSessionExpired counts an expiry message handled by the interceptor.
func EmitSessionExpired(sink statsd.Sink, admin bool) {
	if sink == nil {
		return
	}
	ctx := ContextUser
	if admin {
		ctx = ContextAdmin
	}
	sink.Count("session.expired", 1, map[string]string{"context": ctx})
}

// LoginMetric describes one sign-in attempt.
type LoginMetric struct {
	Method string // password, admin, oauth
	Err    error
}

// EmitLogin counts a sign-in attempt and tags failures with their error class.
func EmitLogin(sink statsd.Sink, in LoginMetric) {
	if sink == nil {
		return
	}
	tags := map[string]string{"method": in.Method, "result": ResultSuccess}
	if in.Err != nil {
		tags["result"] = ResultError
		if class := obserrors.Classify(in.Err); class != "" {
			tags["error_class"] = class
		}
	}
	sink.Count("auth.login", 1, tags)
}

// PurgeMetric describes one session reaper pass.
type PurgeMetric struct {
	Count   int64
	Err     error
	Elapsed time.Duration
}

// EmitSessionPurge counts a reaper pass, its removed rows and its duration.
func EmitSessionPurge(sink statsd.Sink, in PurgeMetric) {
	if sink == nil {
		return
	}
	result := ResultSuccess
	switch {
	case in.Err != nil:
		result = ResultError
	case in.Count == 0:
		result = ResultNoop
	}
	tags := map[string]string{"result": result}
	if in.Err != nil {
		if class := obserrors.Classify(in.Err); class != "" {
			tags["error_class"] = class
		}
	}
	sink.Count("session.purge", 1, tags)
	if in.Elapsed > 0 {
		sink.Timing("session.purge_duration", in.Elapsed, CloneTags(tags))
	}
	if in.Err == nil && in.Count > 0 {
		sink.Count("session.purged", in.Count, nil)
	}
}

// CloneTags returns a shallow copy so sinks may retain the map.
func CloneTags(tags map[string]string) map[string]string {
	if tags == nil {
		return nil
	}
	out := make(map[string]string, len(tags))
	maps.Copy(out, tags)
	return out
}
