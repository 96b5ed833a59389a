package devauth

import (
	"context"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/target/storyweb/internal/ports"
)

func TestProvider_BeginAndExchange(t *testing.T) {
	prov, err := NewProvider(Config{Subject: "dev-user", Email: "dev@example.com", Name: "Dev", Groups: []string{"users"}})
	if err != nil {
		t.Fatalf("NewProvider error: %v", err)
	}
	fixed := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	prov.now = func() time.Time { return fixed }

	authURL, state, nonce, err := prov.Begin(context.Background(), ports.BeginInput{RedirectURL: "/"})
	if err != nil {
		t.Fatalf("Begin error: %v", err)
	}
	if !strings.HasPrefix(authURL, CallbackPath+"?") {
		t.Fatalf("unexpected authURL: %s", authURL)
	}
	if state == "" || nonce == "" {
		t.Fatal("state and nonce should be generated")
	}
	u, err := url.Parse(authURL)
	if err != nil {
		t.Fatalf("parse authURL: %v", err)
	}
	if got := u.Query().Get("state"); got != state {
		t.Fatalf("state in URL = %q, want %q", got, state)
	}

	id, err := prov.Exchange(context.Background(), ports.ExchangeInput{Code: "dev", State: state, Nonce: nonce})
	if err != nil {
		t.Fatalf("Exchange error: %v", err)
	}
	if id.Subject != "dev-user" || id.Email != "dev@example.com" || id.Name != "Dev" {
		t.Fatalf("unexpected identity: %+v", id)
	}
	if want := fixed.Add(8 * time.Hour); !id.ExpiresAt.Equal(want) {
		t.Fatalf("ExpiresAt = %v, want %v", id.ExpiresAt, want)
	}

	id.Groups[0] = "mutated"
	again, err := prov.Exchange(context.Background(), ports.ExchangeInput{Code: "dev"})
	if err != nil {
		t.Fatalf("Exchange error: %v", err)
	}
	if again.Groups[0] != "users" {
		t.Fatalf("groups leaked between exchanges: %v", again.Groups)
	}
}

func TestNewProvider_Validation(t *testing.T) {
	if _, err := NewProvider(Config{Email: "dev@example.com"}); err == nil {
		t.Fatal("expected error for missing subject")
	}
	if _, err := NewProvider(Config{Subject: "dev"}); err == nil {
		t.Fatal("expected error for missing email")
	}
}

func TestProvider_ExchangeRequiresCode(t *testing.T) {
	prov, err := NewProvider(Config{Subject: "dev", Email: "dev@example.com"})
	if err != nil {
		t.Fatalf("NewProvider error: %v", err)
	}
	if _, err := prov.Exchange(context.Background(), ports.ExchangeInput{}); err == nil {
		t.Fatal("expected error for missing code")
	}
}
