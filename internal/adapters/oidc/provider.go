package oidc

// Package oidc signs storyweb users in through an OpenID Connect identity provider.

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strings"
	"time"

	gooidc "github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"

	domainauth "github.com/target/storyweb/internal/domain/auth"
	"github.com/target/storyweb/internal/ports"
)

// Provider implements ports.AuthProvider on top of go-oidc and oauth2.
type Provider struct {
	config     *oauth2.Config
	httpClient *http.Client

	oidcProvider *gooidc.Provider
	verifier     *gooidc.IDTokenVerifier
	now          func() time.Time
}

// ProviderConfig holds configuration for the OIDC provider.
type ProviderConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	Scope        string
	// DiscoveryURL is the issuer URL, with or without the well-known suffix.
	DiscoveryURL string
	HTTPClient   *http.Client
}

// DiscoveryDocument is the subset of the discovery document go-oidc reads.
type DiscoveryDocument struct {
	Issuer                string `json:"issuer"`
	AuthorizationEndpoint string `json:"authorization_endpoint"`
	TokenEndpoint         string `json:"token_endpoint"`
	UserinfoEndpoint      string `json:"userinfo_endpoint"`
	JwksURI               string `json:"jwks_uri"`
}

// DefaultScope is used when ProviderConfig.Scope is empty.
const DefaultScope = "openid profile email"

// NewProvider fetches the discovery document and builds a Provider.
func NewProvider(ctx context.Context, config ProviderConfig) (*Provider, error) {
	switch {
	case config.ClientID == "":
		return nil, errors.New("client ID is required")
	case config.ClientSecret == "":
		return nil, errors.New("client secret is required")
	case config.RedirectURL == "":
		return nil, errors.New("redirect URL is required")
	case config.DiscoveryURL == "":
		return nil, errors.New("discovery URL is required")
	}

	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	scope := config.Scope
	if strings.TrimSpace(scope) == "" {
		scope = DefaultScope
	}

	ctx = gooidc.ClientContext(ctx, httpClient)
	issuer := strings.TrimSuffix(config.DiscoveryURL, "/")
	issuer = strings.TrimSuffix(issuer, "/.well-known/openid-configuration")
	op, err := gooidc.NewProvider(ctx, issuer)
	if err != nil {
		return nil, fmt.Errorf("oidc discovery: %w", err)
	}

	return &Provider{
		config: &oauth2.Config{
			ClientID:     config.ClientID,
			ClientSecret: config.ClientSecret,
			RedirectURL:  config.RedirectURL,
			Scopes:       strings.Fields(scope),
			Endpoint:     op.Endpoint(),
		},
		httpClient:   httpClient,
		oidcProvider: op,
		verifier:     op.Verifier(&gooidc.Config{ClientID: config.ClientID}),
		now:          time.Now,
	}, nil
}

// Begin returns the IdP authorization URL with a fresh state and nonce.
func (p *Provider) Begin(_ context.Context, in ports.BeginInput) (string, string, string, error) {
	if in.RedirectURL == "" {
		return "", "", "", errors.New("redirect URL is required")
	}
	state, err := randomString(32)
	if err != nil {
		return "", "", "", fmt.Errorf("generate state: %w", err)
	}
	nonce, err := randomString(32)
	if err != nil {
		return "", "", "", fmt.Errorf("generate nonce: %w", err)
	}
	authURL := p.config.AuthCodeURL(state,
		gooidc.Nonce(nonce),
		oauth2.SetAuthURLParam("prompt", "select_account"),
	)
	return authURL, state, nonce, nil
}

// Exchange trades the authorization code for tokens and maps the verified
// claims, topped up from the userinfo endpoint, into an Identity.
func (p *Provider) Exchange(ctx context.Context, in ports.ExchangeInput) (domainauth.Identity, error) {
	switch {
	case in.Code == "":
		return domainauth.Identity{}, errors.New("authorization code is required")
	case in.State == "":
		return domainauth.Identity{}, errors.New("state is required")
	case in.Nonce == "":
		return domainauth.Identity{}, errors.New("nonce is required")
	}

	ctx = gooidc.ClientContext(ctx, p.httpClient)
	token, err := p.config.Exchange(ctx, in.Code)
	if err != nil {
		return domainauth.Identity{}, fmt.Errorf("exchange code for token: %w", err)
	}

	var c claims
	rawID := ""
	if slices.Contains(p.config.Scopes, gooidc.ScopeOpenID) {
		rawID, err = idTokenFrom(token)
		if err != nil {
			return domainauth.Identity{}, err
		}
		idTok, verr := p.verifier.Verify(ctx, rawID)
		if verr != nil {
			return domainauth.Identity{}, fmt.Errorf("verify id_token: %w", verr)
		}
		if cerr := idTok.Claims(&c); cerr != nil {
			return domainauth.Identity{}, fmt.Errorf("parse id_token claims: %w", cerr)
		}
		if c.Nonce != in.Nonce {
			return domainauth.Identity{}, errors.New("invalid nonce")
		}
	}

	if c.incomplete() {
		ui, uerr := p.oidcProvider.UserInfo(ctx, oauth2.StaticTokenSource(token))
		if uerr != nil {
			return domainauth.Identity{}, fmt.Errorf("get user info: %w", uerr)
		}
		var extra claims
		if cerr := ui.Claims(&extra); cerr != nil {
			return domainauth.Identity{}, fmt.Errorf("decode user info: %w", cerr)
		}
		c.fillFrom(extra)
	}

	id := c.identity()
	id.IDToken = rawID
	id.ExpiresAt = p.now().Add(time.Hour)
	if !token.Expiry.IsZero() {
		id.ExpiresAt = token.Expiry
	}
	if id.Subject == "" || id.Email == "" {
		return domainauth.Identity{}, errors.New("identity provider returned no subject or email")
	}
	return id, nil
}

// claims covers standard OIDC claims plus the AD/ADFS shapes some IdPs emit.
type claims struct {
	Sub            string   `json:"sub"`
	SamAccountName string   `json:"samaccountname"`
	Email          string   `json:"email"`
	Mail           string   `json:"mail"`
	Name           string   `json:"name"`
	GivenName      string   `json:"given_name"`
	FamilyName     string   `json:"family_name"`
	Groups         []string `json:"groups"`
	MemberOf       []string `json:"memberof"`
	Nonce          string   `json:"nonce"`
}

func (c claims) incomplete() bool {
	return firstNonEmpty(c.Sub, c.SamAccountName) == "" || firstNonEmpty(c.Email, c.Mail) == ""
}

// fillFrom copies fields that c lacks from o.
func (c *claims) fillFrom(o claims) {
	fill := func(dst *string, src string) {
		if *dst == "" {
			*dst = src
		}
	}
	fill(&c.Sub, o.Sub)
	fill(&c.SamAccountName, o.SamAccountName)
	fill(&c.Email, o.Email)
	fill(&c.Mail, o.Mail)
	fill(&c.Name, o.Name)
	fill(&c.GivenName, o.GivenName)
	fill(&c.FamilyName, o.FamilyName)
	if len(c.Groups) == 0 {
		c.Groups = o.Groups
	}
	if len(c.MemberOf) == 0 {
		c.MemberOf = o.MemberOf
	}
}

func (c claims) identity() domainauth.Identity {
	name := c.Name
	if name == "" {
		name = strings.TrimSpace(c.GivenName + " " + c.FamilyName)
	}
	groups := c.Groups
	if len(groups) == 0 {
		groups = c.MemberOf
	}
	return domainauth.Identity{
		Subject: firstNonEmpty(c.Sub, c.SamAccountName),
		Email:   firstNonEmpty(c.Email, c.Mail),
		Name:    name,
		Groups:  append([]string(nil), groups...),
	}
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

// randomString returns a URL-safe random string of exactly n characters.
func randomString(n int) (string, error) {
	if n <= 0 {
		return "", nil
	}
	b := make([]byte, (n*3+3)/4+1)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b)[:n], nil
}

func idTokenFrom(tok *oauth2.Token) (string, error) {
	if tok == nil {
		return "", errors.New("nil token")
	}
	s, ok := tok.Extra("id_token").(string)
	if !ok || s == "" {
		return "", errors.New("missing id_token in token response")
	}
	return s, nil
}
