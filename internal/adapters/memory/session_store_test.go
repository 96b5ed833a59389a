package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "github.com/target/storyweb/internal/domain/auth"
	"github.com/target/storyweb/internal/ports"
)

func TestSessionStore_SaveGetDelete(t *testing.T) {
	store := NewSessionStore()
	ctx := context.Background()

	sess := domainauth.Session{
		ID:        "s1",
		Token:     "tok",
		Role:      domainauth.RoleUser,
		User:      &domainauth.UserProfile{Email: "a@b.com"},
		ExpiresAt: time.Now().Add(time.Hour),
	}
	require.NoError(t, store.Save(ctx, sess))

	got, err := store.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "tok", got.Token)

	got.User.Email = "mutated"
	again, err := store.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "a@b.com", again.User.Email)

	require.NoError(t, store.Delete(ctx, "s1"))
	_, err = store.Get(ctx, "s1")
	require.ErrorIs(t, err, ports.ErrSessionNotFound)
}

func TestSessionStore_Expiry(t *testing.T) {
	store := NewSessionStore()
	ctx := context.Background()
	now := time.Now()
	store.now = func() time.Time { return now }

	require.NoError(t, store.Save(ctx, domainauth.Session{ID: "a", ExpiresAt: now.Add(time.Minute)}))
	require.NoError(t, store.Save(ctx, domainauth.Session{ID: "b", ExpiresAt: now.Add(time.Hour)}))
	require.Error(t, store.Save(ctx, domainauth.Session{ID: "c", ExpiresAt: now}))

	now = now.Add(2 * time.Minute)
	ids, err := store.List(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, ids)

	assert.Equal(t, 1, store.Sweep())
	_, err = store.Get(ctx, "a")
	require.ErrorIs(t, err, ports.ErrSessionNotFound)
}

func TestSessionStore_ExpiredReadKeepsResavedSession(t *testing.T) {
	store := NewSessionStore()
	ctx := context.Background()
	now := time.Now()
	store.now = func() time.Time { return now }
	require.NoError(t, store.Save(ctx, domainauth.Session{ID: "a", Token: "old", ExpiresAt: now.Add(time.Minute)}))

	// Get read the entry as expired; a re-login saves a fresh one before the delete.
	readAt := now.Add(2 * time.Minute)
	now = readAt
	require.NoError(t, store.Save(ctx, domainauth.Session{ID: "a", Token: "fresh", ExpiresAt: readAt.Add(time.Hour)}))

	sess, ok := store.dropIfExpired("a", readAt)
	require.True(t, ok)
	assert.Equal(t, "fresh", sess.Token)

	got, err := store.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "fresh", got.Token)
}

func TestSessionStore_DropIfExpiredRemovesStaleEntry(t *testing.T) {
	store := NewSessionStore()
	ctx := context.Background()
	now := time.Now()
	store.now = func() time.Time { return now }
	require.NoError(t, store.Save(ctx, domainauth.Session{ID: "a", ExpiresAt: now.Add(time.Minute)}))

	_, ok := store.dropIfExpired("a", now.Add(time.Hour))
	assert.False(t, ok)
	ids, err := store.List(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, ids)
}
