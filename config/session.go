package config

import (
	"fmt"
	"strings"
	"time"
)

// SessionBackend selects where session records live.
type SessionBackend string

const (
	SessionBackendRedis    SessionBackend = "redis"
	SessionBackendPostgres SessionBackend = "postgres"
	SessionBackendMemory   SessionBackend = "memory"
)

// UnmarshalText implements encoding.TextUnmarshaler for SessionBackend.
func (b *SessionBackend) UnmarshalText(text []byte) error {
	v := SessionBackend(strings.ToLower(strings.TrimSpace(string(text))))
	switch v {
	case SessionBackendRedis, SessionBackendPostgres, SessionBackendMemory:
		*b = v
		return nil
	default:
		return fmt.Errorf("invalid SessionBackend: %q (valid options: redis, postgres, memory)", string(text))
	}
}

// SessionConfig controls the server-side session record.
type SessionConfig struct {
	Backend SessionBackend `env:"SESSION_BACKEND" envDefault:"redis"`

	// TTL applies when the story API token carries no expiry.
	TTL time.Duration `env:"SESSION_TTL" envDefault:"24h"`

	// KeyPrefix namespaces Redis keys.
	KeyPrefix string `env:"SESSION_KEY_PREFIX" envDefault:"storyweb:session:"`

	CookieName string `env:"SESSION_COOKIE_NAME" envDefault:"session_id"`
}

// Sanitize applies guardrails to session configuration values.
func (s *SessionConfig) Sanitize() {
	if s.Backend == "" {
		s.Backend = SessionBackendRedis
	}
	if s.TTL < time.Minute {
		s.TTL = 24 * time.Hour
	}
	if strings.TrimSpace(s.KeyPrefix) == "" {
		s.KeyPrefix = "storyweb:session:"
	}
	if strings.TrimSpace(s.CookieName) == "" {
		s.CookieName = "session_id"
	}
}
