package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "github.com/target/storyweb/internal/domain/auth"
	apperrors "github.com/target/storyweb/internal/errors"
	"github.com/target/storyweb/internal/ports"
	"github.com/target/storyweb/internal/testutil"
)

func TestSessionStore_Lifecycle(t *testing.T) {
	testutil.WithEphemeralDB(t, func(db *sql.DB) {
		store := NewSessionStore(db)
		ctx := context.Background()

		sess := domainauth.Session{
			ID:        "s1",
			Token:     "tok",
			Role:      domainauth.RoleUser,
			User:      &domainauth.UserProfile{Email: "a@b.com", Public: true},
			ExpiresAt: time.Now().Add(time.Hour),
		}
		require.NoError(t, store.Save(ctx, sess))

		got, err := store.Get(ctx, "s1")
		require.NoError(t, err)
		assert.Equal(t, "tok", got.Token)
		assert.Equal(t, domainauth.RoleUser, got.Role)
		require.NotNil(t, got.User)
		assert.True(t, got.User.Public)
		assert.Nil(t, got.Admin)

		// Upsert switches role in place.
		sess.Role = domainauth.RoleAdmin
		sess.User = nil
		sess.Admin = &domainauth.AdminProfile{Email: "ops@example.com"}
		require.NoError(t, store.Save(ctx, sess))
		got, err = store.Get(ctx, "s1")
		require.NoError(t, err)
		assert.True(t, got.HasAdmin())

		ids, err := store.List(ctx, 10)
		require.NoError(t, err)
		assert.Equal(t, []string{"s1"}, ids)

		require.NoError(t, store.Delete(ctx, "s1"))
		_, err = store.Get(ctx, "s1")
		require.ErrorIs(t, err, ports.ErrSessionNotFound)
	})
}

func TestSessionStore_RoleExclusivityEnforced(t *testing.T) {
	testutil.WithEphemeralDB(t, func(db *sql.DB) {
		store := NewSessionStore(db)
		err := store.Save(context.Background(), domainauth.Session{
			ID:        "both",
			Token:     "tok",
			Role:      domainauth.RoleUser,
			User:      &domainauth.UserProfile{Email: "a@b.com"},
			Admin:     &domainauth.AdminProfile{},
			ExpiresAt: time.Now().Add(time.Hour),
		})
		require.Error(t, err)
		assert.True(t, apperrors.IsValidation(err))
	})
}

func TestSessionStore_ExpiredRows(t *testing.T) {
	testutil.WithEphemeralDB(t, func(db *sql.DB) {
		store := NewSessionStore(db)
		ctx := context.Background()

		require.NoError(t, store.Save(ctx, domainauth.Session{ID: "s1", Token: "t", Role: domainauth.RoleUser, ExpiresAt: time.Now().Add(time.Minute)}))
		store.now = func() time.Time { return time.Now().Add(2 * time.Minute) }

		_, err := store.Get(ctx, "s1")
		require.ErrorIs(t, err, ports.ErrSessionNotFound)

		n, err := store.PurgeExpired(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)
	})
}

func TestSessionStore_Validation(t *testing.T) {
	store := NewSessionStore(nil)
	ctx := context.Background()

	require.Error(t, store.Save(ctx, domainauth.Session{ExpiresAt: time.Now().Add(time.Hour)}))
	require.Error(t, store.Save(ctx, domainauth.Session{ID: "x", ExpiresAt: time.Now().Add(-time.Hour)}))
	_, err := store.Get(ctx, "")
	require.ErrorIs(t, err, ports.ErrSessionNotFound)
	require.NoError(t, store.Delete(ctx, ""))
}
