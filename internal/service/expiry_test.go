package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	domainauth "github.com/target/storyweb/internal/domain/auth"
	"github.com/target/storyweb/internal/mocks"
	authmocks "github.com/target/storyweb/internal/mocks/auth"
	"github.com/target/storyweb/internal/ports"
)

type expiryFixture struct {
	sessions  *SessionService
	store     *authmocks.MemorySessionStore
	browser   *authmocks.RecordingBrowser
	sink      *countingSink
	intercept *ExpiryInterceptor
}

func newExpiryFixture(t *testing.T, stored domainauth.Session) *expiryFixture {
	t.Helper()
	sessions, store := newTestSessions(t)
	store.Put(stored)
	browser := &authmocks.RecordingBrowser{
		Clear: func(ctx context.Context, keys ...domainauth.Key) error {
			return sessions.Clear(ctx, stored.ID, keys...)
		},
	}
	sink := newCountingSink()
	return &expiryFixture{
		sessions:  sessions,
		store:     store,
		browser:   browser,
		sink:      sink,
		intercept: NewExpiryInterceptor(ExpiryInterceptorOptions{Metrics: sink}),
	}
}

func userSession() domainauth.Session {
	return domainauth.Session{
		ID:        "s1",
		Token:     "tok",
		Role:      domainauth.RoleUser,
		User:      &domainauth.UserProfile{Email: "a@b.com"},
		ExpiresAt: time.Now().Add(time.Hour),
	}
}

func TestExpiryInterceptor_RecognizedMessages(t *testing.T) {
	for _, msg := range []string{"Access denied, authentication token missing", "Invalid token or expired"} {
		f := newExpiryFixture(t, userSession())

		handled := f.intercept.CheckAndHandle(context.Background(), msg, f.browser, false)

		assert.True(t, handled, msg)
		assert.Equal(t, []string{"/login"}, f.browser.Redirects)
		require.Len(t, f.browser.Toasts, 1)
		assert.Equal(t, ports.Toast{ID: "session-expiry", Message: msg, Level: ports.ToastError}, f.browser.Toasts[0])
		_, ok := f.store.Peek("s1")
		assert.False(t, ok, "token and user cleared")
		assert.Equal(t, 1, f.sink.counts["session.expired"])
	}
}

func TestExpiryInterceptor_AdminContextRedirect(t *testing.T) {
	f := newExpiryFixture(t, userSession())
	assert.True(t, f.intercept.CheckAndHandle(context.Background(), "Invalid token or expired", f.browser, true))
	assert.Equal(t, []string{"/admin/login"}, f.browser.Redirects)
}

func TestExpiryInterceptor_Idempotent(t *testing.T) {
	f := newExpiryFixture(t, userSession())
	ctx := context.Background()

	assert.True(t, f.intercept.CheckAndHandle(ctx, "Invalid token or expired", f.browser, false))
	saves, deletes := f.store.Saves, f.store.Deletes
	assert.Equal(t, 1, deletes)

	assert.True(t, f.intercept.CheckAndHandle(ctx, "Invalid token or expired", f.browser, false))
	assert.Equal(t, saves, f.store.Saves, "no additional storage effect")
	assert.Equal(t, deletes, f.store.Deletes, "no additional storage effect")

	assert.Equal(t, []string{"/login", "/login"}, f.browser.Redirects, "redirects every time")
	assert.Len(t, f.browser.VisibleToasts(), 1, "toasts share one identity and do not stack")
}

func TestExpiryInterceptor_KeepsAdminMarker(t *testing.T) {
	f := newExpiryFixture(t, domainauth.Session{
		ID:        "s1",
		Token:     "tok",
		Role:      domainauth.RoleAdmin,
		Admin:     &domainauth.AdminProfile{Email: "ops@example.com"},
		ExpiresAt: time.Now().Add(time.Hour),
	})

	assert.True(t, f.intercept.CheckAndHandle(context.Background(), "Invalid token or expired", f.browser, true))

	stored, ok := f.store.Peek("s1")
	require.True(t, ok)
	assert.Empty(t, stored.Token)
	assert.True(t, stored.HasAdmin())
	assert.Equal(t, []domainauth.Key{domainauth.KeyToken, domainauth.KeyUser}, f.browser.Cleared[0])
}

func TestExpiryInterceptor_UnrecognizedMessages(t *testing.T) {
	for _, msg := range []string{"Network error", "invalid token or expired", "Invalid token or expired.", ""} {
		f := newExpiryFixture(t, userSession())

		assert.False(t, f.intercept.CheckAndHandle(context.Background(), msg, f.browser, false), msg)
		assert.Empty(t, f.browser.Redirects)
		assert.Empty(t, f.browser.Toasts)
		assert.Empty(t, f.browser.Cleared)
		assert.Zero(t, f.store.Saves+f.store.Deletes)
		assert.Zero(t, f.sink.counts["session.expired"])
	}
}

func TestExpiryInterceptor_ClearFailureStillRedirects(t *testing.T) {
	ctrl := gomock.NewController(t)
	browser := mocks.NewMockBrowserScope(ctrl)

	gomock.InOrder(
		browser.EXPECT().Toast(gomock.Any()),
		browser.EXPECT().ClearSession(gomock.Any(), domainauth.KeyToken, domainauth.KeyUser).Return(errors.New("redis down")),
		browser.EXPECT().Redirect("/login"),
	)

	i := NewExpiryInterceptor(ExpiryInterceptorOptions{})
	assert.True(t, i.CheckAndHandle(context.Background(), "Access denied, authentication token missing", browser, false))
}

func TestExpiryInterceptor_HandleError(t *testing.T) {
	ctrl := gomock.NewController(t)
	browser := mocks.NewMockBrowserScope(ctrl)
	i := NewExpiryInterceptor(ExpiryInterceptorOptions{})
	ctx := context.Background()

	// Non-API and unrecognized errors touch nothing; gomock fails on any call.
	assert.False(t, i.HandleError(ctx, errors.New("dial tcp: timeout"), browser, false))
	assert.False(t, i.HandleError(ctx, &ports.APIError{Status: 500, Message: "Network error"}, browser, false))

	browser.EXPECT().Toast(gomock.Any())
	browser.EXPECT().ClearSession(gomock.Any(), gomock.Any(), gomock.Any())
	browser.EXPECT().Redirect("/admin/login")
	wrapped := fmt.Errorf("cart: %w", &ports.APIError{Status: 401, Message: "Invalid token or expired"})
	assert.True(t, i.HandleError(ctx, wrapped, browser, true))
}
