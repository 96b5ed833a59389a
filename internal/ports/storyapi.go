package ports

import (
	"context"
	"fmt"
	"time"

	domainauth "github.com/target/storyweb/internal/domain/auth"
)

// Credentials are the email/password pair posted by the sign-in forms.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResult is returned by a successful user sign-in.
type LoginResult struct {
	Token string                 `json:"token"`
	User  domainauth.UserProfile `json:"user"`
}

// AdminLoginResult is returned by a successful admin sign-in.
type AdminLoginResult struct {
	Token string                  `json:"token"`
	Admin domainauth.AdminProfile `json:"admin"`
}

// OAuthIdentity is forwarded to the story API after an IdP sign-in.
type OAuthIdentity struct {
	Subject string `json:"subject"`
	Email   string `json:"email"`
	Name    string `json:"name,omitempty"`
	IDToken string `json:"id_token,omitempty"`
}

// Plan is a pricing plan.
type Plan struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	PriceCents  int64  `json:"price_cents"`
	Currency    string `json:"currency"`
	Interval    string `json:"interval"`
	Stories     int    `json:"stories"`
	Featured    bool   `json:"featured"`
}

// Cart is the signed-in user's pending plan selection.
type Cart struct {
	PlanID     string `json:"plan_id,omitempty"`
	Plan       *Plan  `json:"plan,omitempty"`
	TotalCents int64  `json:"total_cents"`
	Currency   string `json:"currency"`
}

// UserSummary is a row in the admin user listing.
type UserSummary struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name,omitempty"`
	Public    bool      `json:"public"`
	CreatedAt time.Time `json:"created_at"`
}

// StoryAPI is the remote story backend. Calls that need a session take its bearer token.
type StoryAPI interface {
	Login(ctx context.Context, in Credentials) (LoginResult, error)
	AdminLogin(ctx context.Context, in Credentials) (AdminLoginResult, error)
	ExchangeOAuth(ctx context.Context, in OAuthIdentity) (LoginResult, error)
	Logout(ctx context.Context, token string) error
	Plans(ctx context.Context) ([]Plan, error)
	Cart(ctx context.Context, token string) (Cart, error)
	SelectPlan(ctx context.Context, token, planID string) (Cart, error)
	AdminUsers(ctx context.Context, token string) ([]UserSummary, error)
}

// APIError is a non-2xx response from the story API. Message is the
// human-readable text extracted from the response body.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("story api: status %d", e.Status)
	}
	return fmt.Sprintf("story api: status %d: %s", e.Status, e.Message)
}
