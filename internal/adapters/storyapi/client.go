// Package storyapi is the HTTP client for the remote story API.
package storyapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	jmespath "github.com/jmespath-community/go-jmespath"

	"github.com/target/storyweb/internal/ports"
)

// DefaultMessagePath selects the error message from a JSON error body.
const DefaultMessagePath = "message"

const maxResponseBodyBytes = 1 << 20

// Config configures the story API client.
type Config struct {
	BaseURL string
	Timeout time.Duration
	// MessagePath is a JMESPath expression applied to JSON error bodies.
	MessagePath string
	// Client overrides the default client. It must not carry a cookie jar.
	Client      *http.Client
	Logger      *slog.Logger
}

// Client calls the story API. It is safe for concurrent use.
type Client struct {
	base        *url.URL
	messagePath string
	client      *http.Client
	logger      *slog.Logger
}

var _ ports.StoryAPI = (*Client)(nil)

// NewClient builds a story API client.
func NewClient(cfg Config) (*Client, error) {
	raw := strings.TrimSpace(cfg.BaseURL)
	if raw == "" {
		return nil, errors.New("story api base url is required")
	}
	base, err := url.Parse(strings.TrimSuffix(raw, "/"))
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid story api base url %q", raw)
	}

	path := strings.TrimSpace(cfg.MessagePath)
	if path == "" {
		path = DefaultMessagePath
	}
	if _, err := jmespath.Compile(path); err != nil {
		return nil, fmt.Errorf("invalid error message path %q: %w", path, err)
	}

	hc := cfg.Client
	if hc == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		// No cookie jar: one client serves every browser session, and the API
		// authenticates each call by its bearer token.
		hc = &http.Client{Timeout: timeout}
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		base:        base,
		messagePath: path,
		client:      hc,
		logger:      logger.With("component", "storyapi"),
	}, nil
}

func (c *Client) Login(ctx context.Context, in ports.Credentials) (ports.LoginResult, error) {
	var out ports.LoginResult
	err := c.do(ctx, call{method: http.MethodPost, path: "/auth/login", body: in, out: &out})
	return out, err
}

func (c *Client) AdminLogin(ctx context.Context, in ports.Credentials) (ports.AdminLoginResult, error) {
	var out ports.AdminLoginResult
	err := c.do(ctx, call{method: http.MethodPost, path: "/auth/admin/login", body: in, out: &out})
	return out, err
}

func (c *Client) ExchangeOAuth(ctx context.Context, in ports.OAuthIdentity) (ports.LoginResult, error) {
	var out ports.LoginResult
	err := c.do(ctx, call{method: http.MethodPost, path: "/auth/oauth", body: in, out: &out})
	return out, err
}

func (c *Client) Logout(ctx context.Context, token string) error {
	return c.do(ctx, call{method: http.MethodPost, path: "/auth/logout", token: token})
}

func (c *Client) Plans(ctx context.Context) ([]ports.Plan, error) {
	var out []ports.Plan
	err := c.do(ctx, call{method: http.MethodGet, path: "/plans", out: &out})
	return out, err
}

func (c *Client) Cart(ctx context.Context, token string) (ports.Cart, error) {
	var out ports.Cart
	err := c.do(ctx, call{method: http.MethodGet, path: "/cart", token: token, out: &out})
	return out, err
}

func (c *Client) SelectPlan(ctx context.Context, token, planID string) (ports.Cart, error) {
	var out ports.Cart
	body := map[string]string{"plan_id": planID}
	err := c.do(ctx, call{method: http.MethodPost, path: "/cart", token: token, body: body, out: &out})
	return out, err
}

func (c *Client) AdminUsers(ctx context.Context, token string) ([]ports.UserSummary, error) {
	var out []ports.UserSummary
	err := c.do(ctx, call{method: http.MethodGet, path: "/admin/users", token: token, out: &out})
	return out, err
}

type call struct {
	method string
	path   string
	token  string
	body   any
	out    any
}

func (c *Client) do(ctx context.Context, in call) error {
	var reader io.Reader
	if in.body != nil {
		b, err := json.Marshal(in.body)
		if err != nil {
			return fmt.Errorf("encode %s request: %w", in.path, err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, in.method, c.base.JoinPath(in.path).String(), reader)
	if err != nil {
		return fmt.Errorf("create %s request: %w", in.path, err)
	}
	req.Header.Set("Accept", "application/json")
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if in.token != "" {
		req.Header.Set("Authorization", "Bearer "+in.token)
	}

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("story api %s %s: %w", in.method, in.path, err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			c.logger.DebugContext(ctx, "close response body", "error", closeErr)
		}
	}()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBodyBytes+1))
	if err != nil {
		return fmt.Errorf("read %s response: %w", in.path, err)
	}
	if len(body) > maxResponseBodyBytes {
		return fmt.Errorf("story api %s response exceeds %d bytes", in.path, maxResponseBodyBytes)
	}

	c.logger.DebugContext(ctx, "story api call",
		"method", in.method,
		"path", in.path,
		"status", resp.StatusCode,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &ports.APIError{Status: resp.StatusCode, Message: c.extractMessage(body)}
	}

	if in.out == nil || len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, in.out); err != nil {
		return fmt.Errorf("decode %s response: %w", in.path, err)
	}
	return nil
}

// extractMessage applies the configured JMESPath to a JSON error body. Non-JSON
// bodies and non-string results yield "".
func (c *Client) extractMessage(body []byte) string {
	var data any
	if err := json.Unmarshal(body, &data); err != nil {
		return ""
	}
	res, err := jmespath.Search(c.messagePath, data)
	if err != nil {
		return ""
	}
	msg, _ := res.(string)
	return msg
}
