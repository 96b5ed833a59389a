package config

import (
	"os"
	"strings"
)

// AppConfig is the storyweb configuration, composed from the per-concern
// structs in this package and loaded from the environment with
// github.com/caarlos0/env:
//   - http.go: listener, cookies and compression
//   - session.go: session backend and lifetime
//   - database.go: PostgreSQL and Redis connections
//   - api.go: remote story API client
//   - auth.go: OAuth / dev sign-in and admin mapping
//   - services.go: which processes run (http, session-reaper)
//   - observability.go: StatsD metrics
type AppConfig struct {
	// IsDev enables development behaviour (template reloading, insecure cookies).
	// Set DEV=true or NODE_ENV=development.
	IsDev bool `env:"DEV" envDefault:"false"`

	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	HTTP     HTTPConfig
	Session  SessionConfig
	Postgres DBConfig    `envPrefix:"DB_"`
	Redis    RedisConfig `envPrefix:"REDIS_"`
	API      APIConfig   `envPrefix:"STORY_API_"`
	Auth     AuthConfig

	// Services is a comma-delimited list of processes to run.
	Services string `env:"SERVICES" envDefault:"http"`
	Reaper   ReaperConfig

	Observability ObservabilityConfig
}

// Sanitize applies guardrails to configuration values loaded from env.
func (c *AppConfig) Sanitize() {
	c.HTTP.Sanitize()
	c.Session.Sanitize()
	c.API.Sanitize()
	c.Auth.Sanitize()
	c.Reaper.Sanitize()
	c.Observability.Sanitize()
	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))
	c.detectDevMode()
}

// Validate reports configuration that Sanitize cannot repair.
func (c *AppConfig) Validate() error {
	return c.HTTP.Validate()
}

// detectDevMode falls back to NODE_ENV, which frontend tooling sets.
func (c *AppConfig) detectDevMode() {
	if !c.IsDev {
		nodeEnv := strings.ToLower(os.Getenv("NODE_ENV"))
		c.IsDev = nodeEnv == "development" || nodeEnv == "dev"
	}
}

// GetEnabledServices returns the enabled services based on the Services field.
func (c *AppConfig) GetEnabledServices() (map[ServiceMode]bool, error) {
	return ParseServices(c.Services)
}

// IsHTTPServerEnabled reports whether the web server runs in this process.
func (c *AppConfig) IsHTTPServerEnabled() bool {
	services, err := c.GetEnabledServices()
	return err == nil && services[ServiceModeHTTP]
}

// IsSessionReaperEnabled reports whether expired sessions are purged in this process.
func (c *AppConfig) IsSessionReaperEnabled() bool {
	services, err := c.GetEnabledServices()
	return err == nil && services[ServiceModeSessionReaper]
}

// NeedsPostgres reports whether any enabled component talks to PostgreSQL.
func (c *AppConfig) NeedsPostgres() bool {
	return c.Session.Backend == SessionBackendPostgres
}

// NeedsRedis reports whether any enabled component talks to Redis.
func (c *AppConfig) NeedsRedis() bool {
	return c.Session.Backend == SessionBackendRedis
}
