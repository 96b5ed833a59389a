package ports_test

import (
	"testing"

	mocks "github.com/target/storyweb/internal/mocks/auth"
	"github.com/target/storyweb/internal/ports"
)

// This test only verifies that our mocks conform to the ports at compile time.
func TestMocksImplementPorts(t *testing.T) {
	t.Helper()

	var _ ports.AuthProvider = (*mocks.MockAuthProvider)(nil)
	var _ ports.SessionStore = (*mocks.MemorySessionStore)(nil)
	var _ ports.SessionLister = (*mocks.MemorySessionStore)(nil)
	var _ ports.RoleMapper = (*mocks.StaticRoleMapper)(nil)
	var _ ports.BrowserScope = (*mocks.RecordingBrowser)(nil)
}
