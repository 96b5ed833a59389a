// Package expiry classifies remote API error messages that mean the session is no longer valid.
package expiry

import domainauth "github.com/target/storyweb/internal/domain/auth"

// Recognized messages returned by the story API when the bearer token is missing or rejected.
const (
	MessageTokenMissing = "Access denied, authentication token missing"
	MessageTokenInvalid = "Invalid token or expired"
)

// ToastID is the notification identity used for expiry toasts. Repeated toasts
// with the same identity replace each other instead of stacking.
const ToastID = "session-expiry"

// IsExpiryMessage reports whether msg is one of the recognized messages.
// Matching is exact and case-sensitive.
func IsExpiryMessage(msg string) bool {
	switch msg {
	case MessageTokenMissing, MessageTokenInvalid:
		return true
	default:
		return false
	}
}

// ClearedKeys are the session flags removed on expiry. The admin marker is left in place.
func ClearedKeys() []domainauth.Key {
	return []domainauth.Key{domainauth.KeyToken, domainauth.KeyUser}
}
