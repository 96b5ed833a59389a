package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSession_Authenticated(t *testing.T) {
	assert.False(t, Session{}.Authenticated())
	assert.True(t, Session{Token: "t"}.Authenticated())
}

func TestSession_RoleIsExclusive(t *testing.T) {
	s := Session{Role: RoleUser, Admin: &AdminProfile{}, User: &UserProfile{Email: "a@b.com"}}
	assert.True(t, s.HasUser())
	assert.False(t, s.HasAdmin(), "admin marker without admin role must not count")

	s.Role = RoleAdmin
	assert.False(t, s.HasUser())
	assert.True(t, s.HasAdmin())
}

func TestSession_Without(t *testing.T) {
	exp := time.Now().Add(time.Hour)
	user := Session{ID: "s", Token: "t", Role: RoleUser, User: &UserProfile{Email: "a@b.com"}, ExpiresAt: exp}

	cleared := user.Without(KeyToken, KeyUser)
	assert.Equal(t, "s", cleared.ID)
	assert.Empty(t, cleared.Token)
	assert.Equal(t, RoleAnonymous, cleared.Role)
	assert.Nil(t, cleared.User)
	assert.True(t, cleared.IsEmpty())
	assert.NotNil(t, user.User, "original must not be mutated")

	admin := Session{ID: "s", Token: "t", Role: RoleAdmin, Admin: &AdminProfile{Email: "ops@b.com"}}
	kept := admin.Without(KeyToken, KeyUser)
	assert.Empty(t, kept.Token)
	assert.Equal(t, RoleAdmin, kept.Role)
	assert.True(t, kept.HasAdmin())
	assert.False(t, kept.IsEmpty())

	assert.True(t, admin.Without(AllKeys()...).IsEmpty())
}

func TestSession_Viewer(t *testing.T) {
	s := Session{Token: "t", Role: RoleUser, User: &UserProfile{Email: "a@b.com", Public: true}}
	v := s.Viewer()
	assert.True(t, v.Authenticated)
	assert.True(t, v.HasUser())
	assert.True(t, v.IsPublicUser())
	assert.False(t, v.Admin)

	v.User.Email = "changed"
	assert.Equal(t, "a@b.com", s.User.Email, "viewer holds a copy")

	assert.Equal(t, Viewer{}, Session{}.Viewer())
}
