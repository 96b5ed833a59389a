//go:build tools

// Package tools documents development tool dependencies.
// These tools are run with `go run` or installed via `go install` and are not
// tracked in go.mod since they are not runtime dependencies.
package tools

// Development tools:
//
// Air - live reload while editing templates and handlers (DEV=true serves
// templates and static files from disk)
//   Install: go install github.com/air-verse/air@v1.63.0
//   Docs: https://github.com/air-verse/air
//
// mockgen - regenerates internal/mocks from the ports package
//   Run: go generate ./internal/mocks
//   Docs: https://github.com/uber-go/mock
