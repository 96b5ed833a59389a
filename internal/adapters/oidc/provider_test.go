package oidc

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/target/storyweb/internal/ports"
)

// newIdP serves discovery plus a token endpoint that answers with tokenBody.
func newIdP(t *testing.T, tokenStatus int, tokenBody map[string]any) *httptest.Server {
	t.Helper()
	var srv *httptest.Server
	mux := http.NewServeMux()
	mux.HandleFunc("/.well-known/openid-configuration", func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(DiscoveryDocument{
			Issuer:                srv.URL,
			AuthorizationEndpoint: srv.URL + "/auth",
			TokenEndpoint:         srv.URL + "/token",
			UserinfoEndpoint:      srv.URL + "/userinfo",
			JwksURI:               srv.URL + "/jwks",
		})
	})
	mux.HandleFunc("/token", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(tokenStatus)
		_ = json.NewEncoder(w).Encode(tokenBody)
	})
	srv = httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newTestProvider(t *testing.T, srv *httptest.Server) *Provider {
	t.Helper()
	p, err := NewProvider(context.Background(), ProviderConfig{
		ClientID:     "storyweb",
		ClientSecret: "secret",
		RedirectURL:  "http://localhost:8080/auth/callback",
		DiscoveryURL: srv.URL + "/.well-known/openid-configuration",
		HTTPClient:   srv.Client(),
	})
	require.NoError(t, err)
	return p
}

func TestNewProvider(t *testing.T) {
	srv := newIdP(t, http.StatusOK, nil)
	p := newTestProvider(t, srv)

	assert.Equal(t, srv.URL+"/auth", p.config.Endpoint.AuthURL)
	assert.Equal(t, srv.URL+"/token", p.config.Endpoint.TokenURL)
	assert.Equal(t, []string{"openid", "profile", "email"}, p.config.Scopes)
}

func TestNewProvider_ValidationErrors(t *testing.T) {
	full := ProviderConfig{
		ClientID:     "client",
		ClientSecret: "secret",
		RedirectURL:  "http://localhost/callback",
		DiscoveryURL: "http://example.com",
	}
	tests := []struct {
		name   string
		mutate func(*ProviderConfig)
		errMsg string
	}{
		{"missing client ID", func(c *ProviderConfig) { c.ClientID = "" }, "client ID is required"},
		{"missing client secret", func(c *ProviderConfig) { c.ClientSecret = "" }, "client secret is required"},
		{"missing redirect URL", func(c *ProviderConfig) { c.RedirectURL = "" }, "redirect URL is required"},
		{"missing discovery URL", func(c *ProviderConfig) { c.DiscoveryURL = "" }, "discovery URL is required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := full
			tt.mutate(&cfg)
			_, err := NewProvider(context.Background(), cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestProvider_Begin(t *testing.T) {
	p := newTestProvider(t, newIdP(t, http.StatusOK, nil))

	authURL, state, nonce, err := p.Begin(context.Background(), ports.BeginInput{RedirectURL: "/dashboard"})
	require.NoError(t, err)
	assert.Len(t, state, 32)
	assert.Len(t, nonce, 32)

	u, err := url.Parse(authURL)
	require.NoError(t, err)
	q := u.Query()
	assert.Equal(t, "storyweb", q.Get("client_id"))
	assert.Equal(t, state, q.Get("state"))
	assert.Equal(t, nonce, q.Get("nonce"))
	assert.Equal(t, "code", q.Get("response_type"))

	_, _, _, err = p.Begin(context.Background(), ports.BeginInput{})
	assert.ErrorContains(t, err, "redirect URL is required")
}

func TestProvider_Exchange_ValidationErrors(t *testing.T) {
	p := newTestProvider(t, newIdP(t, http.StatusOK, nil))

	tests := []struct {
		name   string
		input  ports.ExchangeInput
		errMsg string
	}{
		{"missing code", ports.ExchangeInput{State: "s", Nonce: "n"}, "authorization code is required"},
		{"missing state", ports.ExchangeInput{Code: "c", Nonce: "n"}, "state is required"},
		{"missing nonce", ports.ExchangeInput{Code: "c", State: "s"}, "nonce is required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := p.Exchange(context.Background(), tt.input)
			assert.ErrorContains(t, err, tt.errMsg)
		})
	}
}

func TestProvider_Exchange_TokenEndpointFailure(t *testing.T) {
	p := newTestProvider(t, newIdP(t, http.StatusBadRequest, map[string]any{"error": "invalid_grant"}))

	_, err := p.Exchange(context.Background(), ports.ExchangeInput{Code: "c", State: "s", Nonce: "n"})
	assert.ErrorContains(t, err, "exchange code for token")
}

func TestProvider_Exchange_MissingIDToken(t *testing.T) {
	p := newTestProvider(t, newIdP(t, http.StatusOK, map[string]any{
		"access_token": "at",
		"token_type":   "Bearer",
		"expires_in":   3600,
	}))

	_, err := p.Exchange(context.Background(), ports.ExchangeInput{Code: "c", State: "s", Nonce: "n"})
	assert.ErrorContains(t, err, "missing id_token")
}

func TestIDTokenFrom(t *testing.T) {
	tok := (&oauth2.Token{}).WithExtra(map[string]any{"id_token": "abc.def.ghi"})
	raw, err := idTokenFrom(tok)
	require.NoError(t, err)
	assert.Equal(t, "abc.def.ghi", raw)

	_, err = idTokenFrom((&oauth2.Token{}).WithExtra(map[string]any{"other": "x"}))
	assert.ErrorContains(t, err, "missing id_token")

	_, err = idTokenFrom(nil)
	assert.ErrorContains(t, err, "nil token")
}

func TestClaims_Identity(t *testing.T) {
	t.Run("standard claims", func(t *testing.T) {
		c := claims{Sub: "sub-1", Email: "ada@example.com", Name: "Ada Lovelace", Groups: []string{"storyweb-admins"}}
		id := c.identity()
		assert.Equal(t, "sub-1", id.Subject)
		assert.Equal(t, "ada@example.com", id.Email)
		assert.Equal(t, "Ada Lovelace", id.Name)
		assert.Equal(t, []string{"storyweb-admins"}, id.Groups)
	})

	t.Run("directory claims", func(t *testing.T) {
		c := claims{
			SamAccountName: "alovelace",
			Mail:           "ada@corp.example.com",
			GivenName:      "Ada",
			FamilyName:     "Lovelace",
			MemberOf:       []string{"CN=Storyweb-Admin"},
		}
		id := c.identity()
		assert.Equal(t, "alovelace", id.Subject)
		assert.Equal(t, "ada@corp.example.com", id.Email)
		assert.Equal(t, "Ada Lovelace", id.Name)
		assert.Equal(t, []string{"CN=Storyweb-Admin"}, id.Groups)
	})
}

func TestClaims_FillFrom(t *testing.T) {
	c := claims{Sub: "keep", Groups: []string{"x"}}
	assert.True(t, c.incomplete())

	c.fillFrom(claims{Sub: "other", Email: "ada@example.com", Name: "Ada", Groups: []string{"y"}})
	assert.False(t, c.incomplete())
	assert.Equal(t, "keep", c.Sub)
	assert.Equal(t, "ada@example.com", c.Email)
	assert.Equal(t, "Ada", c.Name)
	assert.Equal(t, []string{"x"}, c.Groups)
}

func TestRandomString(t *testing.T) {
	a, err := randomString(16)
	require.NoError(t, err)
	b, err := randomString(16)
	require.NoError(t, err)
	assert.Len(t, a, 16)
	assert.NotEqual(t, a, b)

	empty, err := randomString(0)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestProvider_ImplementsInterface(t *testing.T) {
	var _ ports.AuthProvider = (*Provider)(nil)
}
