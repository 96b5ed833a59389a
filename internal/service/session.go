package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	domainauth "github.com/target/storyweb/internal/domain/auth"
	"github.com/target/storyweb/internal/ports"
)

// DefaultSessionTTL applies when neither the token nor the caller supplies an expiry.
const DefaultSessionTTL = 24 * time.Hour

// SessionServiceOptions groups dependencies for SessionService.
type SessionServiceOptions struct {
	Store  ports.SessionStore
	TTL    time.Duration
	Logger *slog.Logger
	Now    func() time.Time
}

// SessionService is the only reader and writer of session records. Guards, the
// probe, and the expiry interceptor go through it instead of the raw store.
type SessionService struct {
	store  ports.SessionStore
	ttl    time.Duration
	logger *slog.Logger
	now    func() time.Time
}

// NewSessionService constructs a SessionService.
func NewSessionService(opts SessionServiceOptions) *SessionService {
	ttl := opts.TTL
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &SessionService{
		store:  opts.Store,
		ttl:    ttl,
		logger: logger.With("component", "session"),
		now:    now,
	}
}

// NewSessionID creates a random, URL-safe session id.
func NewSessionID() string {
	return uuid.NewString()
}

// Ready reports whether the session backend is reachable. In-process stores are always ready.
func (s *SessionService) Ready(ctx context.Context) error {
	if p, ok := s.store.(ports.SessionPinger); ok {
		return p.Ping(ctx)
	}
	return nil
}

// TTL returns the default session lifetime.
func (s *SessionService) TTL() time.Duration { return s.ttl }

// Load returns the session for id. Unknown, expired and empty ids yield an
// anonymous session and no error. Storage failures are logged and also yield an
// anonymous session; the error is returned for callers that care.
func (s *SessionService) Load(ctx context.Context, id string) (domainauth.Session, error) {
	anon := domainauth.Session{ID: id, Role: domainauth.RoleAnonymous}
	if id == "" {
		return anon, nil
	}

	sess, err := s.store.Get(ctx, id)
	if err != nil {
		if errors.Is(err, ports.ErrSessionNotFound) {
			return anon, nil
		}
		s.logger.WarnContext(ctx, "session load failed; treating as signed out", "error", err)
		return anon, fmt.Errorf("load session: %w", err)
	}

	if !sess.ExpiresAt.IsZero() && s.now().After(sess.ExpiresAt) {
		return anon, nil
	}
	if sess.Role == "" {
		sess.Role = domainauth.RoleAnonymous
	}
	return sess, nil
}

func (s *SessionService) get(ctx context.Context, id string) domainauth.Session {
	sess, _ := s.Load(ctx, id) //nolint:errcheck // Load already logged and degraded.
	return sess
}

// Token returns the bearer token for id, or "" when signed out.
func (s *SessionService) Token(ctx context.Context, id string) string {
	return s.get(ctx, id).Token
}

// User returns a copy of the regular-user profile, or nil.
func (s *SessionService) User(ctx context.Context, id string) *domainauth.UserProfile {
	return s.get(ctx, id).Viewer().User
}

// Admin returns a copy of the admin marker, or nil.
func (s *SessionService) Admin(ctx context.Context, id string) *domainauth.AdminProfile {
	sess := s.get(ctx, id)
	if !sess.HasAdmin() {
		return nil
	}
	a := *sess.Admin
	return &a
}

// Viewer returns the read-only view guards evaluate.
func (s *SessionService) Viewer(ctx context.Context, id string) domainauth.Viewer {
	return s.get(ctx, id).Viewer()
}

// SignInUser stores token and profile under id and makes the session a regular-user session.
// An admin marker held by the session is dropped. An empty id gets a fresh one.
func (s *SessionService) SignInUser(
	ctx context.Context,
	id, token string,
	profile domainauth.UserProfile,
	expiresAt time.Time,
) (domainauth.Session, error) {
	sess := domainauth.Session{
		ID:    id,
		Token: token,
		Role:  domainauth.RoleUser,
		User:  &profile,
	}
	return s.signIn(ctx, sess, expiresAt)
}

// SignInAdmin stores token and marker under id and makes the session an admin session.
// A user profile held by the session is dropped. An empty id gets a fresh one.
func (s *SessionService) SignInAdmin(
	ctx context.Context,
	id, token string,
	profile domainauth.AdminProfile,
	expiresAt time.Time,
) (domainauth.Session, error) {
	sess := domainauth.Session{
		ID:    id,
		Token: token,
		Role:  domainauth.RoleAdmin,
		Admin: &profile,
	}
	return s.signIn(ctx, sess, expiresAt)
}

func (s *SessionService) signIn(ctx context.Context, sess domainauth.Session, expiresAt time.Time) (domainauth.Session, error) {
	if sess.Token == "" {
		return domainauth.Session{}, errors.New("token is required")
	}
	if sess.ID == "" {
		sess.ID = NewSessionID()
	}
	now := s.now()
	if expiresAt.IsZero() || !expiresAt.After(now) {
		expiresAt = now.Add(s.ttl)
	}
	sess.ExpiresAt = expiresAt

	if err := s.store.Save(ctx, sess); err != nil {
		return domainauth.Session{}, fmt.Errorf("save session: %w", err)
	}
	return sess, nil
}

// Clear removes the named flags from the session. Clearing flags that are already
// absent writes nothing; a session left with no flags is deleted.
func (s *SessionService) Clear(ctx context.Context, id string, keys ...domainauth.Key) error {
	if id == "" || len(keys) == 0 {
		return nil
	}

	cur, err := s.Load(ctx, id)
	if err != nil {
		return err
	}
	next := cur.Without(keys...)
	if !flagsChanged(cur, next) {
		return nil
	}

	if next.IsEmpty() {
		if err := s.store.Delete(ctx, id); err != nil {
			return fmt.Errorf("delete session: %w", err)
		}
		return nil
	}
	if err := s.store.Save(ctx, next); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// ClearAll removes every flag.
func (s *SessionService) ClearAll(ctx context.Context, id string) error {
	if id == "" {
		return nil
	}
	if err := s.store.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

func flagsChanged(a, b domainauth.Session) bool {
	return a.Token != b.Token ||
		a.Role != b.Role ||
		(a.User == nil) != (b.User == nil) ||
		(a.Admin == nil) != (b.Admin == nil)
}
