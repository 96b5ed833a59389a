package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ServiceMode names a process storyweb can run.
type ServiceMode string

const (
	// ServiceModeHTTP runs the web server.
	ServiceModeHTTP ServiceMode = "http"
	// ServiceModeSessionReaper periodically deletes expired session records.
	ServiceModeSessionReaper ServiceMode = "session-reaper"
)

// ValidServiceModes returns all valid service mode names.
func ValidServiceModes() []ServiceMode {
	return []ServiceMode{ServiceModeHTTP, ServiceModeSessionReaper}
}

// ParseServices parses a comma-delimited list of service names.
func ParseServices(servicesStr string) (map[ServiceMode]bool, error) {
	if servicesStr == "" {
		return nil, errors.New("at least one service must be specified")
	}

	services := make(map[ServiceMode]bool)
	for part := range strings.SplitSeq(servicesStr, ",") {
		name := strings.TrimSpace(part)
		if name == "" {
			continue
		}
		switch mode := ServiceMode(name); mode {
		case ServiceModeHTTP, ServiceModeSessionReaper:
			services[mode] = true
		default:
			return nil, fmt.Errorf("invalid service name: %q (valid options: http, session-reaper)", name)
		}
	}
	if len(services) == 0 {
		return nil, errors.New("at least one valid service must be specified")
	}
	return services, nil
}

// ReaperConfig controls the session reaper.
type ReaperConfig struct {
	Interval time.Duration `env:"REAPER_INTERVAL" envDefault:"5m"`
}

// Sanitize applies guardrails to reaper configuration values.
func (r *ReaperConfig) Sanitize() {
	if r.Interval < time.Second {
		r.Interval = 5 * time.Minute
	}
}
