package main

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/target/storyweb/internal/adapters/memory"
	domainauth "github.com/target/storyweb/internal/domain/auth"
	"github.com/target/storyweb/internal/migrate"
	"github.com/target/storyweb/internal/ports"
	"github.com/target/storyweb/internal/testutil"
)

func seededStore(t *testing.T, sessions ...domainauth.Session) *memory.SessionStore {
	t.Helper()
	store := memory.NewSessionStore()
	for _, sess := range sessions {
		sess.ExpiresAt = time.Now().Add(time.Hour)
		require.NoError(t, store.Save(t.Context(), sess))
	}
	return store
}

func TestShowSessionMasksToken(t *testing.T) {
	sess := testutil.NewSession("s1").WithToken("secret-token-abcd").AsUser("writer@example.com", true).Build()
	store := seededStore(t, sess)

	var out bytes.Buffer
	require.NoError(t, showSession(t.Context(), &out, store, sessionShowOptions{ID: "s1"}))
	text := out.String()
	assert.Contains(t, text, "****abcd")
	assert.NotContains(t, text, "secret-token")
	assert.Contains(t, text, "writer@example.com (public=true)")

	out.Reset()
	require.NoError(t, showSession(t.Context(), &out, store, sessionShowOptions{ID: "s1", RawJSON: true}))
	assert.Contains(t, out.String(), `"token": "****abcd"`)

	err := showSession(t.Context(), &out, store, sessionShowOptions{ID: "missing"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestClearSession(t *testing.T) {
	admin := testutil.NewSession("a1").WithToken("admin-token").AsAdmin("boss@example.com").Build()
	user := testutil.NewSession("u1").WithToken("user-token").AsUser("writer@example.com", false).Build()
	store := seededStore(t, admin, user)

	var out bytes.Buffer
	require.NoError(t, clearSession(t.Context(), &out, store, sessionClearOptions{
		ID:   "a1",
		Keys: []domainauth.Key{domainauth.KeyToken, domainauth.KeyUser},
	}))
	assert.Contains(t, out.String(), "Cleared token, user from session a1.")

	got, err := store.Get(t.Context(), "a1")
	require.NoError(t, err)
	assert.Empty(t, got.Token)
	assert.True(t, got.HasAdmin(), "admin marker survives clearing token and user")

	require.NoError(t, clearSession(t.Context(), &out, store, sessionClearOptions{ID: "u1"}))
	_, err = store.Get(t.Context(), "u1")
	require.ErrorIs(t, err, ports.ErrSessionNotFound)
}

func TestListSessions(t *testing.T) {
	store := seededStore(t,
		testutil.NewSession("b").WithToken("t").AsUser("b@example.com", false).Build(),
		testutil.NewSession("a").WithToken("t").AsAdmin("a@example.com").Build(),
	)

	var out bytes.Buffer
	require.NoError(t, listSessions(t.Context(), &out, store, sessionListOptions{Limit: 1}))
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[1], "a "), "ids are listed in order: %q", lines[1])
	assert.Contains(t, lines[2], "increase --limit")

	out.Reset()
	require.NoError(t, listSessions(t.Context(), &out, memory.NewSessionStore(), sessionListOptions{}))
	assert.Contains(t, out.String(), "(no sessions)")
}

func TestPurgeSessions(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, purgeSessions(t.Context(), &out, seededStore(t)))
	assert.Equal(t, "Purged 0 expired sessions.\n", out.String())
}

func TestParseKeys(t *testing.T) {
	keys, err := parseKeys(" Token, user ,")
	require.NoError(t, err)
	assert.Equal(t, []domainauth.Key{domainauth.KeyToken, domainauth.KeyUser}, keys)

	keys, err = parseKeys("")
	require.NoError(t, err)
	assert.Nil(t, keys)

	_, err = parseKeys("token,cart")
	require.Error(t, err)
}

func TestParseSessionClearFlags(t *testing.T) {
	opts, err := parseSessionClearFlags([]string{"abc", "--keys", "admin", "--yes"})
	require.NoError(t, err)
	assert.Equal(t, "abc", opts.ID)
	assert.Equal(t, []domainauth.Key{domainauth.KeyAdmin}, opts.Keys)
	assert.True(t, opts.Yes)

	_, err = parseSessionClearFlags([]string{"--keys", "admin"})
	require.Error(t, err)
}

func TestParseSessionListFlagsRejectsNegativeLimit(t *testing.T) {
	_, err := parseSessionListFlags([]string{"--limit", "-1"})
	require.Error(t, err)
}

func TestConfirm(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, confirm(strings.NewReader("y\n"), &out, "Go?", false))
	assert.Equal(t, "Go? [y/N]: ", out.String())
	require.Error(t, confirm(strings.NewReader("\n"), &out, "Go?", false))
	require.NoError(t, confirm(strings.NewReader(""), &out, "Go?", true))
}

func TestConfirmRemoteHost(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, confirmRemoteHost(strings.NewReader("db.example.com\n"), &out, "migrate", "db.example.com"))
	assert.Contains(t, out.String(), "does not look local")

	err := confirmRemoteHost(strings.NewReader("y\n"), &out, "migrate", "db.example.com")
	require.ErrorIs(t, err, errAborted)
	require.ErrorIs(t, confirmRemoteHost(strings.NewReader(""), &out, "migrate", "db.example.com"), errAborted)
}

func TestMaskToken(t *testing.T) {
	assert.Empty(t, maskToken(""))
	assert.Equal(t, "****", maskToken("short"))
	assert.Equal(t, "****6789", maskToken("0123456789"))
}

func TestIsLikelyRemoteHost(t *testing.T) {
	for host, want := range map[string]bool{
		"":               false,
		"localhost":      false,
		"127.0.0.1":      false,
		"db.local":       false,
		"10.1.2.3":       true,
		"db.example.com": true,
	} {
		assert.Equal(t, want, isLikelyRemoteHost(host), host)
	}
}

func TestPrintMigrationStatus(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, printMigrationStatus(&out, []migrate.Migration{
		{Version: "0001_sessions", Applied: true},
		{Version: "0002_sessions_expiry_index", Applied: false},
	}))
	text := out.String()
	assert.Contains(t, text, "VERSION")
	assert.Regexp(t, `0001_sessions\s+applied`, text)
	assert.Regexp(t, `0002_sessions_expiry_index\s+pending`, text)
}
