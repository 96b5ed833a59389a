package bootstrap

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/target/storyweb/config"
	"github.com/target/storyweb/internal/adapters/authroles"
	"github.com/target/storyweb/internal/adapters/devauth"
	"github.com/target/storyweb/internal/adapters/oidc"
	"github.com/target/storyweb/internal/ports"
)

// AuthConfig contains configuration for the OAuth sign-in provider.
type AuthConfig struct {
	Auth       config.AuthConfig
	HTTPClient *http.Client
	Logger     *slog.Logger
}

// BuildAuthProvider returns the IdP behind "Continue with Google", or nil when
// OAuth sign-in is disabled or not fully configured. Email/password sign-in
// works either way.
//
//nolint:ireturn // the provider is chosen at runtime.
func BuildAuthProvider(ctx context.Context, cfg AuthConfig) ports.AuthProvider {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if !cfg.Auth.OAuthEnabled {
		return nil
	}

	switch cfg.Auth.Mode {
	case config.AuthModeMock:
		return buildDevAuthProvider(cfg, logger)
	case config.AuthModeOAuth:
		return buildOIDCProvider(ctx, cfg, logger)
	default:
		return nil
	}
}

// BuildRoleMapper maps IdP identities to roles from the admin settings.
func BuildRoleMapper(cfg config.AuthConfig) authroles.StaticRoleMapper {
	return authroles.StaticRoleMapper{
		AdminGroup:  cfg.AdminGroup,
		AdminEmails: cfg.AdminEmails,
	}
}

//nolint:ireturn // nil interface when disabled.
func buildDevAuthProvider(cfg AuthConfig, logger *slog.Logger) ports.AuthProvider {
	// Explicitly enabled dev auth mode; build a local provider.
	prov, err := devauth.NewProvider(devauth.Config{
		Subject: cfg.Auth.DevAuth.Subject,
		Email:   cfg.Auth.DevAuth.Email,
		Name:    cfg.Auth.DevAuth.Name,
		Groups:  cfg.Auth.DevAuth.Groups,
		// session duration defaults inside provider
	})
	if err != nil {
		logger.Warn("failed to create dev auth provider, oauth sign-in disabled", "error", err)
		return nil
	}
	logger.Warn("mock oauth provider enabled; do not use in production", "email", cfg.Auth.DevAuth.Email)
	return prov
}

//nolint:ireturn // nil interface when disabled.
func buildOIDCProvider(ctx context.Context, cfg AuthConfig, logger *slog.Logger) ports.AuthProvider {
	// Only enable when fully configured
	oauth := cfg.Auth.OAuth
	if oauth.DiscoveryURL == "" || oauth.ClientID == "" || oauth.ClientSecret == "" {
		logger.Warn("oauth sign-in enabled but required config missing; oauth sign-in disabled",
			"discovery_url_empty", oauth.DiscoveryURL == "",
			"client_id_empty", oauth.ClientID == "",
			"client_secret_empty", oauth.ClientSecret == "",
		)
		return nil
	}

	prov, err := oidc.NewProvider(ctx, oidc.ProviderConfig{
		ClientID:     oauth.ClientID,
		ClientSecret: oauth.ClientSecret,
		RedirectURL:  oauth.RedirectURL,
		Scope:        oauth.Scope,
		DiscoveryURL: oauth.DiscoveryURL,
		HTTPClient:   cfg.HTTPClient,
	})
	if err != nil {
		logger.Warn("failed to create OIDC provider, oauth sign-in disabled", "error", err)
		return nil
	}
	return prov
}
