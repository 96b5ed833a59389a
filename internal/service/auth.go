package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	domainauth "github.com/target/storyweb/internal/domain/auth"
	apperrors "github.com/target/storyweb/internal/errors"
	"github.com/target/storyweb/internal/observability/metrics"
	"github.com/target/storyweb/internal/observability/statsd"
	"github.com/target/storyweb/internal/ports"
)

// TokenExpiryFunc reports when a story API bearer token expires, if it says.
type TokenExpiryFunc func(token string) (time.Time, bool)

// AuthServiceOptions groups dependencies for AuthService.
type AuthServiceOptions struct {
	// Provider is nil when OAuth sign-in is disabled.
	Provider    ports.AuthProvider
	Roles       ports.RoleMapper
	API         ports.StoryAPI
	Sessions    *SessionService
	TokenExpiry TokenExpiryFunc
	Metrics     statsd.Sink
	Logger      *slog.Logger
}

// AuthService orchestrates sign-in flows: it calls the story API (and the IdP for
// OAuth), then records the result through the session accessor.
type AuthService struct {
	provider    ports.AuthProvider
	roles       ports.RoleMapper
	api         ports.StoryAPI
	sessions    *SessionService
	tokenExpiry TokenExpiryFunc
	metrics     statsd.Sink
	logger      *slog.Logger
}

// ErrOAuthDisabled is returned by the OAuth methods when no provider is configured.
var ErrOAuthDisabled = errors.New("oauth sign-in is disabled")

// NewAuthService constructs a new AuthService.
func NewAuthService(opts AuthServiceOptions) *AuthService {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthService{
		provider:    opts.Provider,
		roles:       opts.Roles,
		api:         opts.API,
		sessions:    opts.Sessions,
		tokenExpiry: opts.TokenExpiry,
		metrics:     opts.Metrics,
		logger:      logger.With("component", "auth"),
	}
}

// OAuthEnabled reports whether an IdP is configured.
func (s *AuthService) OAuthEnabled() bool { return s.provider != nil }

func validateCredentials(in ports.Credentials) (ports.Credentials, error) {
	in.Email = strings.TrimSpace(in.Email)
	if in.Email == "" {
		return in, apperrors.ValidationField("email", "Email is required.")
	}
	if _, err := mail.ParseAddress(in.Email); err != nil {
		return in, apperrors.ValidationField("email", "Enter a valid email address.")
	}
	if in.Password == "" {
		return in, apperrors.ValidationField("password", "Password is required.")
	}
	return in, nil
}

// Login signs a regular user in with email and password.
func (s *AuthService) Login(ctx context.Context, sessionID string, in ports.Credentials) (domainauth.Session, error) {
	sess, err := s.login(ctx, sessionID, in)
	metrics.EmitLogin(s.metrics, metrics.LoginMetric{Method: "password", Err: err})
	return sess, err
}

func (s *AuthService) login(ctx context.Context, sessionID string, in ports.Credentials) (domainauth.Session, error) {
	in, err := validateCredentials(in)
	if err != nil {
		return domainauth.Session{}, err
	}
	res, err := s.api.Login(ctx, in)
	if err != nil {
		return domainauth.Session{}, fmt.Errorf("story api login: %w", err)
	}
	if res.Token == "" {
		return domainauth.Session{}, apperrors.Internal("story api returned no token")
	}
	if res.User.Email == "" {
		res.User.Email = in.Email
	}
	return s.sessions.SignInUser(ctx, sessionID, res.Token, res.User, s.expiry(res.Token))
}

// AdminLogin signs an admin in with email and password.
func (s *AuthService) AdminLogin(ctx context.Context, sessionID string, in ports.Credentials) (domainauth.Session, error) {
	sess, err := s.adminLogin(ctx, sessionID, in)
	metrics.EmitLogin(s.metrics, metrics.LoginMetric{Method: "admin", Err: err})
	return sess, err
}

func (s *AuthService) adminLogin(ctx context.Context, sessionID string, in ports.Credentials) (domainauth.Session, error) {
	in, err := validateCredentials(in)
	if err != nil {
		return domainauth.Session{}, err
	}
	res, err := s.api.AdminLogin(ctx, in)
	if err != nil {
		return domainauth.Session{}, fmt.Errorf("story api admin login: %w", err)
	}
	if res.Token == "" {
		return domainauth.Session{}, apperrors.Internal("story api returned no token")
	}
	if res.Admin.Email == "" {
		res.Admin.Email = in.Email
	}
	return s.sessions.SignInAdmin(ctx, sessionID, res.Token, res.Admin, s.expiry(res.Token))
}

// BeginLoginResult contains the result of beginning a login flow.
type BeginLoginResult struct {
	AuthURL string
	State   string
	Nonce   string
}

// BeginLogin initiates an OAuth flow and returns the provider auth URL with state and nonce.
func (s *AuthService) BeginLogin(ctx context.Context, redirectURL string) (*BeginLoginResult, error) {
	if s.provider == nil {
		return nil, ErrOAuthDisabled
	}
	if redirectURL == "" {
		return nil, errors.New("redirect URL is required")
	}

	authURL, state, nonce, err := s.provider.Begin(ctx, ports.BeginInput{RedirectURL: redirectURL})
	if err != nil {
		return nil, fmt.Errorf("begin auth flow: %w", err)
	}
	return &BeginLoginResult{AuthURL: authURL, State: state, Nonce: nonce}, nil
}

// CompleteLoginInput groups parameters for completing a login flow.
type CompleteLoginInput struct {
	SessionID string
	Code      string
	State     string
	Nonce     string
}

// CompleteLogin exchanges the code for an identity, trades the identity for a
// story API token, and signs the session in with the mapped role.
func (s *AuthService) CompleteLogin(ctx context.Context, input CompleteLoginInput) (domainauth.Session, error) {
	sess, err := s.completeLogin(ctx, input)
	metrics.EmitLogin(s.metrics, metrics.LoginMetric{Method: "oauth", Err: err})
	return sess, err
}

func (s *AuthService) completeLogin(ctx context.Context, input CompleteLoginInput) (domainauth.Session, error) {
	if s.provider == nil {
		return domainauth.Session{}, ErrOAuthDisabled
	}
	if input.Code == "" {
		return domainauth.Session{}, errors.New("authorization code is required")
	}
	if input.State == "" {
		return domainauth.Session{}, errors.New("state parameter is required")
	}
	if input.Nonce == "" {
		return domainauth.Session{}, errors.New("nonce parameter is required")
	}

	identity, err := s.provider.Exchange(ctx, ports.ExchangeInput{
		Code:  input.Code,
		State: input.State,
		Nonce: input.Nonce,
	})
	if err != nil {
		return domainauth.Session{}, fmt.Errorf("exchange authorization code: %w", err)
	}

	res, err := s.api.ExchangeOAuth(ctx, ports.OAuthIdentity{
		Subject: identity.Subject,
		Email:   identity.Email,
		Name:    identity.Name,
		IDToken: identity.IDToken,
	})
	if err != nil {
		return domainauth.Session{}, fmt.Errorf("story api oauth exchange: %w", err)
	}
	if res.Token == "" {
		return domainauth.Session{}, apperrors.Internal("story api returned no token")
	}

	expiresAt := s.expiry(res.Token)
	if expiresAt.IsZero() || (!identity.ExpiresAt.IsZero() && identity.ExpiresAt.Before(expiresAt)) {
		expiresAt = identity.ExpiresAt
	}

	role := domainauth.RoleUser
	if s.roles != nil {
		role = s.roles.Map(identity)
	}
	if role == domainauth.RoleAdmin {
		admin := domainauth.AdminProfile{ID: res.User.ID, Email: identity.Email}
		return s.sessions.SignInAdmin(ctx, input.SessionID, res.Token, admin, expiresAt)
	}

	profile := res.User
	if profile.Email == "" {
		profile.Email = identity.Email
	}
	if profile.Name == "" {
		profile.Name = identity.Name
	}
	return s.sessions.SignInUser(ctx, input.SessionID, res.Token, profile, expiresAt)
}

// Logout revokes the token upstream when there is one and clears every flag.
// An upstream failure is logged; the local session is cleared regardless.
func (s *AuthService) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	if token := s.sessions.Token(ctx, sessionID); token != "" {
		if err := s.api.Logout(ctx, token); err != nil {
			s.logger.WarnContext(ctx, "story api logout failed", "error", err)
		}
	}
	return s.sessions.ClearAll(ctx, sessionID)
}

func (s *AuthService) expiry(token string) time.Time {
	if s.tokenExpiry == nil {
		return time.Time{}
	}
	if exp, ok := s.tokenExpiry(token); ok {
		return exp
	}
	return time.Time{}
}
