package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/target/storyweb/internal/observability/statsd"
	"github.com/target/storyweb/internal/ports"
)

func TestEmitGuardRedirect(t *testing.T) {
	var sink statsd.Recorder
	EmitGuardRedirect(&sink, "private", "/login")
	got := sink.Named("guard.redirect")
	require.Len(t, got, 1)
	assert.Equal(t, map[string]string{"audience": "private", "target": "/login"}, got[0].Tags)
}

func TestEmitSessionExpired(t *testing.T) {
	var sink statsd.Recorder
	EmitSessionExpired(&sink, true)
	EmitSessionExpired(&sink, false)
	got := sink.Named("session.expired")
	require.Len(t, got, 2)
	assert.Equal(t, ContextAdmin, got[0].Tags["context"])
	assert.Equal(t, ContextUser, got[1].Tags["context"])
}

func TestEmitLogin(t *testing.T) {
	var sink statsd.Recorder
	EmitLogin(&sink, LoginMetric{Method: "password"})
	EmitLogin(&sink, LoginMetric{Method: "password", Err: errors.New("bad")})
	EmitLogin(&sink, LoginMetric{Method: "admin", Err: &ports.APIError{Status: 401, Message: "Token invalid"}})

	got := sink.Named("auth.login")
	require.Len(t, got, 3)
	assert.Equal(t, map[string]string{"method": "password", "result": ResultSuccess}, got[0].Tags)
	assert.Equal(t, ResultError, got[1].Tags["result"])
	assert.NotEmpty(t, got[1].Tags["error_class"])
	assert.Equal(t, "api_401", got[2].Tags["error_class"])
}

func TestEmit_NilSink(t *testing.T) {
	assert.NotPanics(t, func() {
		EmitGuardRedirect(nil, "public", "/landing-page")
		EmitSessionExpired(nil, false)
		EmitLogin(nil, LoginMetric{Method: "oauth"})
	})
}

func TestEmitSessionPurge(t *testing.T) {
	rec := &statsd.Recorder{}
	EmitSessionPurge(rec, PurgeMetric{Count: 4, Elapsed: time.Millisecond})
	EmitSessionPurge(rec, PurgeMetric{Err: errors.New("boom")})

	passes := rec.Named("session.purge")
	require.Len(t, passes, 2)
	assert.Equal(t, ResultSuccess, passes[0].Tags["result"])
	assert.Equal(t, ResultError, passes[1].Tags["result"])
	assert.NotEmpty(t, passes[1].Tags["error_class"])

	purged := rec.Named("session.purged")
	require.Len(t, purged, 1)
	assert.InDelta(t, 4, purged[0].Value, 0)
	assert.Len(t, rec.Named("session.purge_duration"), 1)
}

func TestEmitHTTPRequest(t *testing.T) {
	rec := &statsd.Recorder{}
	EmitHTTPRequest(rec, HTTPRequestMetric{Method: "GET", Route: "GET /cart", Status: 303, Elapsed: 2 * time.Millisecond})
	EmitHTTPRequest(rec, HTTPRequestMetric{Method: "GET", Status: 0})

	got := rec.Named("http.request")
	require.Len(t, got, 2)
	assert.Equal(t, map[string]string{"method": "GET", "route": "GET /cart", "status": "3xx"}, got[0].Tags)
	assert.Equal(t, "unmatched", got[1].Tags["route"])
	assert.Equal(t, "unknown", got[1].Tags["status"])
}
