package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "github.com/target/storyweb/internal/domain/auth"
	mocks "github.com/target/storyweb/internal/mocks/auth"
)

func newTestSessions(t *testing.T) (*SessionService, *mocks.MemorySessionStore) {
	t.Helper()
	store := mocks.NewMemorySessionStore()
	return NewSessionService(SessionServiceOptions{Store: store, TTL: time.Hour}), store
}

func TestSessionService_LoadUnknownIsAnonymous(t *testing.T) {
	sessions, _ := newTestSessions(t)
	ctx := context.Background()

	for _, id := range []string{"", "missing"} {
		sess, err := sessions.Load(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, domainauth.RoleAnonymous, sess.Role)
		assert.False(t, sess.Authenticated())
	}
}

func TestSessionService_LoadStorageFailureDegrades(t *testing.T) {
	sessions, store := newTestSessions(t)
	store.GetErr = errors.New("connection refused")

	sess, err := sessions.Load(context.Background(), "s1")
	require.Error(t, err)
	assert.False(t, sess.Authenticated())
	assert.Empty(t, sessions.Token(context.Background(), "s1"))
}

func TestSessionService_LoadExpired(t *testing.T) {
	sessions, store := newTestSessions(t)
	store.Put(domainauth.Session{ID: "s1", Token: "t", Role: domainauth.RoleUser, ExpiresAt: time.Now().Add(-time.Minute)})

	sess, err := sessions.Load(context.Background(), "s1")
	require.NoError(t, err)
	assert.False(t, sess.Authenticated())
}

func TestSessionService_SignInRolesAreExclusive(t *testing.T) {
	sessions, _ := newTestSessions(t)
	ctx := context.Background()

	admin, err := sessions.SignInAdmin(ctx, "s1", "admin-token", domainauth.AdminProfile{Email: "ops@example.com"}, time.Time{})
	require.NoError(t, err)
	assert.True(t, admin.HasAdmin())
	assert.NotNil(t, sessions.Admin(ctx, "s1"))

	user, err := sessions.SignInUser(ctx, "s1", "user-token", domainauth.UserProfile{Email: "a@b.com"}, time.Time{})
	require.NoError(t, err)
	assert.True(t, user.HasUser())
	assert.Nil(t, sessions.Admin(ctx, "s1"), "user sign-in replaces the admin role")
	assert.Equal(t, "user-token", sessions.Token(ctx, "s1"))
	require.NotNil(t, sessions.User(ctx, "s1"))
	assert.Equal(t, "a@b.com", sessions.User(ctx, "s1").Email)
}

func TestSessionService_SignInDefaults(t *testing.T) {
	sessions, _ := newTestSessions(t)

	sess, err := sessions.SignInUser(context.Background(), "", "tok", domainauth.UserProfile{Email: "a@b.com"}, time.Time{})
	require.NoError(t, err)
	assert.NotEmpty(t, sess.ID)
	assert.WithinDuration(t, time.Now().Add(time.Hour), sess.ExpiresAt, 5*time.Second)

	_, err = sessions.SignInUser(context.Background(), "s", "", domainauth.UserProfile{}, time.Time{})
	require.Error(t, err)
}

func TestSessionService_ClearTokenAndUser(t *testing.T) {
	sessions, store := newTestSessions(t)
	ctx := context.Background()
	_, err := sessions.SignInUser(ctx, "s1", "tok", domainauth.UserProfile{Email: "a@b.com"}, time.Time{})
	require.NoError(t, err)

	require.NoError(t, sessions.Clear(ctx, "s1", domainauth.KeyToken, domainauth.KeyUser))
	_, ok := store.Peek("s1")
	assert.False(t, ok, "a session with no flags left is deleted")

	saves, deletes := store.Saves, store.Deletes
	require.NoError(t, sessions.Clear(ctx, "s1", domainauth.KeyToken, domainauth.KeyUser))
	assert.Equal(t, saves, store.Saves, "second clear has no storage effect")
	assert.Equal(t, deletes, store.Deletes, "second clear has no storage effect")
}

func TestSessionService_ClearKeepsAdminMarker(t *testing.T) {
	sessions, store := newTestSessions(t)
	ctx := context.Background()
	_, err := sessions.SignInAdmin(ctx, "s1", "tok", domainauth.AdminProfile{Email: "ops@example.com"}, time.Time{})
	require.NoError(t, err)

	require.NoError(t, sessions.Clear(ctx, "s1", domainauth.KeyToken, domainauth.KeyUser))

	stored, ok := store.Peek("s1")
	require.True(t, ok)
	assert.Empty(t, stored.Token)
	assert.True(t, stored.HasAdmin())

	v := sessions.Viewer(ctx, "s1")
	assert.False(t, v.Authenticated)
	assert.True(t, v.Admin)
}

func TestSessionService_ClearAll(t *testing.T) {
	sessions, store := newTestSessions(t)
	ctx := context.Background()
	_, err := sessions.SignInUser(ctx, "s1", "tok", domainauth.UserProfile{Email: "a@b.com"}, time.Time{})
	require.NoError(t, err)

	require.NoError(t, sessions.ClearAll(ctx, "s1"))
	_, ok := store.Peek("s1")
	assert.False(t, ok)
	require.NoError(t, sessions.ClearAll(ctx, ""))
}

func TestNewSessionID_Unique(t *testing.T) {
	assert.NotEqual(t, NewSessionID(), NewSessionID())
}

type pingingStore struct {
	*mocks.MemorySessionStore
	err error
}

func (p pingingStore) Ping(context.Context) error { return p.err }

func TestSessionService_Ready(t *testing.T) {
	sessions, _ := newTestSessions(t)
	require.NoError(t, sessions.Ready(context.Background()))

	down := errors.New("connection refused")
	pinged := NewSessionService(SessionServiceOptions{
		Store: pingingStore{MemorySessionStore: mocks.NewMemorySessionStore(), err: down},
	})
	assert.ErrorIs(t, pinged.Ready(context.Background()), down)
}
