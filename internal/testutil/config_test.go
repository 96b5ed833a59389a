package testutil

import (
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "github.com/target/storyweb/internal/domain/auth"
)

func TestDefaultTestDBConfig(t *testing.T) {
	t.Run("defaults to local test database port 55432", func(t *testing.T) {
		for _, k := range []string{"TEST_DB_HOST", "TEST_DB_PORT", "TEST_DB_USER", "TEST_DB_PASSWORD", "TEST_DB_NAME"} {
			t.Setenv(k, "")
		}
		cfg := DefaultTestDBConfig()
		assert.Equal(t, TestDBConfig{
			Host: "localhost", Port: "55432", User: "storyweb", Password: "storyweb", DBName: "storyweb",
		}, cfg)
	})

	t.Run("respects TEST_DB_* environment variables", func(t *testing.T) {
		t.Setenv("TEST_DB_HOST", "postgres")
		t.Setenv("TEST_DB_PORT", "5432")
		t.Setenv("TEST_DB_USER", "ci")
		t.Setenv("TEST_DB_PASSWORD", "p@ss word")
		t.Setenv("TEST_DB_NAME", "ci_db")
		cfg := DefaultTestDBConfig()
		assert.Equal(t, "postgres", cfg.Host)
		assert.Equal(t, "5432", cfg.Port)

		u, err := url.Parse(cfg.DSN())
		require.NoError(t, err)
		assert.Equal(t, "postgres:5432", u.Host)
		assert.Equal(t, "/ci_db", u.Path)
		pw, _ := u.User.Password()
		assert.Equal(t, "p@ss word", pw)
		assert.Equal(t, "disable", u.Query().Get("sslmode"))
	})
}

func TestSessionBuilder(t *testing.T) {
	u := UserSession("u1")
	assert.Equal(t, domainauth.RoleUser, u.Role)
	assert.True(t, u.HasUser())
	assert.False(t, u.HasAdmin())

	a := NewSession("a1").WithToken("t").AsUser("x@example.com", false).AsAdmin("x@example.com").Build()
	assert.True(t, a.HasAdmin())
	assert.Nil(t, a.User)
	assert.Equal(t, TestTime().Add(time.Hour), a.ExpiresAt)
}
