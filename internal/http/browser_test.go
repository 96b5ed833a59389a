package httpx

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/target/storyweb/internal/ports"
)

func showToastsFrom(t *testing.T, header http.Header) []ports.Toast {
	t.Helper()
	var events map[string]json.RawMessage
	require.NoError(t, json.Unmarshal([]byte(header.Get("Hx-Trigger")), &events))
	var toasts []ports.Toast
	require.NoError(t, json.Unmarshal(events["showToast"], &toasts))
	return toasts
}

func TestBrowserScope_CommitSendsEveryToastToHTMX(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/cart", nil)
	r.Header.Set("Hx-Request", "true")
	rec := httptest.NewRecorder()

	scope := NewBrowserScope(rec, r, nil, CookieConfig{})
	scope.Toast(ports.Toast{ID: "a", Message: "first"})
	scope.Toast(ports.Toast{ID: "b", Message: "second"})
	assert.False(t, scope.Commit())

	toasts := showToastsFrom(t, rec.Header())
	require.Len(t, toasts, 2)
	assert.Equal(t, "first", toasts[0].Message)
	assert.Equal(t, "second", toasts[1].Message)
}

func TestTriggerToasts_KeepsEarlierTriggers(t *testing.T) {
	rec := httptest.NewRecorder()
	SetHXTrigger(rec, "nav:activate", map[string]string{"path": "/cart"})
	triggerToasts(rec, []ports.Toast{{ID: "session-expiry", Message: "Invalid token or expired"}})
	triggerToasts(rec, []ports.Toast{
		{Message: "Something went wrong."},
		{ID: "session-expiry", Message: "Invalid token or expired"},
	})

	toasts := showToastsFrom(t, rec.Header())
	require.Len(t, toasts, 2)
	assert.Equal(t, "session-expiry", toasts[0].ID)
	assert.Equal(t, "Something went wrong.", toasts[1].Message)
	assert.Contains(t, rec.Header().Get("Hx-Trigger"), "nav:activate")
}

func TestTriggerToasts_NoneLeavesHeaderAlone(t *testing.T) {
	rec := httptest.NewRecorder()
	triggerToasts(rec, nil)
	assert.Empty(t, rec.Header().Get("Hx-Trigger"))
}
