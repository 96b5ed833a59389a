package config

import (
	"strings"
	"time"
)

// APIConfig configures the client for the remote story API.
type APIConfig struct {
	BaseURL string        `env:"BASE_URL" envDefault:"http://localhost:3000/api"`
	Timeout time.Duration `env:"TIMEOUT"  envDefault:"10s"`
	// ErrorMessagePath is a JMESPath expression selecting the human-readable
	// message from an error response body.
	ErrorMessagePath string `env:"ERROR_MESSAGE_PATH" envDefault:"message"`
}

// Sanitize applies guardrails to API client configuration values.
func (a *APIConfig) Sanitize() {
	a.BaseURL = strings.TrimRight(strings.TrimSpace(a.BaseURL), "/")
	if a.Timeout <= 0 {
		a.Timeout = 10 * time.Second
	}
	if strings.TrimSpace(a.ErrorMessagePath) == "" {
		a.ErrorMessagePath = "message"
	}
}
