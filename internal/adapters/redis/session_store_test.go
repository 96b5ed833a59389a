package redis

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "github.com/target/storyweb/internal/domain/auth"
	"github.com/target/storyweb/internal/ports"
	"github.com/target/storyweb/internal/testutil"
)

// setupTestRedis creates a Redis client for testing.
// Tests will be skipped if Redis is not available.
func setupTestRedis(t *testing.T) *redis.Client {
	t.Helper()
	return testutil.SetupTestRedis(t)
}

func userSession(id string, ttl time.Duration) domainauth.Session {
	return domainauth.Session{
		ID:        id,
		Token:     "tok",
		Role:      domainauth.RoleUser,
		User:      &domainauth.UserProfile{Email: "user@example.com", Public: true},
		ExpiresAt: time.Now().Add(ttl),
	}
}

func TestSessionStore_SaveAndGet(t *testing.T) {
	store := NewSessionStore(setupTestRedis(t))
	ctx := context.Background()

	session := userSession("test-session-1", 30*time.Minute)
	require.NoError(t, store.Save(ctx, session))

	retrieved, err := store.Get(ctx, "test-session-1")
	require.NoError(t, err)
	assert.Equal(t, session.Token, retrieved.Token)
	assert.Equal(t, session.Role, retrieved.Role)
	require.NotNil(t, retrieved.User)
	assert.True(t, retrieved.User.Public)
	assert.WithinDuration(t, session.ExpiresAt, retrieved.ExpiresAt, time.Second)
}

func TestSessionStore_GetNonExistent(t *testing.T) {
	store := NewSessionStore(setupTestRedis(t))

	_, err := store.Get(context.Background(), "non-existent")
	require.ErrorIs(t, err, ports.ErrSessionNotFound)
	_, err = store.Get(context.Background(), "")
	require.ErrorIs(t, err, ports.ErrSessionNotFound)
}

func TestSessionStore_TTL(t *testing.T) {
	client := setupTestRedis(t)
	store := NewSessionStoreWithPrefix(client, "test:session:")
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, userSession("ttl", 10*time.Minute)))

	ttl, err := client.TTL(ctx, "test:session:ttl").Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, 9*time.Minute)
	assert.LessOrEqual(t, ttl, 10*time.Minute)
}

func TestSessionStore_SaveRejectsExpiredAndEmpty(t *testing.T) {
	store := NewSessionStore(setupTestRedis(t))
	ctx := context.Background()

	require.Error(t, store.Save(ctx, userSession("old", -time.Minute)))
	require.Error(t, store.Save(ctx, userSession("", time.Minute)))
}

func TestSessionStore_DeleteAndList(t *testing.T) {
	store := NewSessionStoreWithPrefix(setupTestRedis(t), "list:session:")
	ctx := context.Background()

	for _, id := range []string{"a", "b", "c"} {
		require.NoError(t, store.Save(ctx, userSession(id, time.Minute)))
	}

	ids, err := store.List(ctx, 0)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a", "b", "c"}, ids)

	limited, err := store.List(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)

	require.NoError(t, store.Delete(ctx, "b"))
	require.NoError(t, store.Delete(ctx, ""))
	_, err = store.Get(ctx, "b")
	require.ErrorIs(t, err, ports.ErrSessionNotFound)
}
