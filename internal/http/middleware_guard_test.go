package httpx

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "github.com/target/storyweb/internal/domain/auth"
	"github.com/target/storyweb/internal/domain/guard"
)

type fixedGuards struct {
	decision   guard.Decision
	bySession  int
	byID       int
	lastSessID string
}

func (f *fixedGuards) Evaluate(_ context.Context, _ guard.Policy, sessionID string) guard.Decision {
	f.byID++
	f.lastSessID = sessionID
	return f.decision
}

func (f *fixedGuards) EvaluateSession(_ context.Context, _ guard.Policy, sess domainauth.Session) guard.Decision {
	f.bySession++
	f.lastSessID = sess.ID
	return f.decision
}

func guardedRequest(t *testing.T, guards GuardEvaluator, r *http.Request) (*httptest.ResponseRecorder, bool) {
	t.Helper()
	called := false
	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	})
	rec := httptest.NewRecorder()
	Guard(guards, CookieConfig{}, guard.AudiencePrivate, nil)(next).ServeHTTP(rec, r)
	return rec, called
}

func TestGuard_WaitServesLoadingWithoutRedirect(t *testing.T) {
	guards := &fixedGuards{decision: guard.Decision{Outcome: guard.OutcomeWait}}
	rec, called := guardedRequest(t, guards, httptest.NewRequest(http.MethodGet, "/profile", nil))

	assert.False(t, called)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("Retry-After"))
	assert.Empty(t, rec.Header().Get("Location"))
}

func TestGuard_RedirectAndRender(t *testing.T) {
	guards := &fixedGuards{decision: guard.Decision{Outcome: guard.OutcomeRedirect, Target: guard.PathLogin}}
	rec, called := guardedRequest(t, guards, httptest.NewRequest(http.MethodGet, "/profile", nil))
	assert.False(t, called)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, guard.PathLogin, rec.Header().Get("Location"))

	guards.decision = guard.Decision{Outcome: guard.OutcomeRender}
	rec, called = guardedRequest(t, guards, httptest.NewRequest(http.MethodGet, "/profile", nil))
	assert.True(t, called)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestGuard_UsesSessionFromContext(t *testing.T) {
	guards := &fixedGuards{decision: guard.Decision{Outcome: guard.OutcomeRender}}

	r := httptest.NewRequest(http.MethodGet, "/profile", nil)
	r = r.WithContext(SetSessionInContext(r.Context(), domainauth.Session{ID: "loaded"}))
	_, called := guardedRequest(t, guards, r)
	require.True(t, called)
	assert.Equal(t, 1, guards.bySession)
	assert.Zero(t, guards.byID)
	assert.Equal(t, "loaded", guards.lastSessID)

	r = httptest.NewRequest(http.MethodGet, "/profile", nil)
	r.AddCookie(&http.Cookie{Name: DefaultSessionCookieName, Value: "from-cookie"})
	guardedRequest(t, guards, r)
	assert.Equal(t, 1, guards.byID)
	assert.Equal(t, "from-cookie", guards.lastSessID)
}
