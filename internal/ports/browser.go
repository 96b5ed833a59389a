package ports

import (
	"context"

	domainauth "github.com/target/storyweb/internal/domain/auth"
)

// Toast levels understood by the page layout.
const (
	ToastInfo    = "info"
	ToastSuccess = "success"
	ToastWarning = "warning"
	ToastError   = "error"
)

// Toast is a user-visible notification. A toast with a non-empty ID replaces any
// pending toast with the same ID instead of stacking.
type Toast struct {
	ID      string `json:"id,omitempty"`
	Message string `json:"message"`
	Level   string `json:"type"`
}

// BrowserScope is the set of side effects available while handling one browser request.
type BrowserScope interface {
	Redirect(path string)
	Toast(t Toast)
	ClearSession(ctx context.Context, keys ...domainauth.Key) error
}
