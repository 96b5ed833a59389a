package errors

import (
	"context"
	goerrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	apperrors "github.com/target/storyweb/internal/errors"
	"github.com/target/storyweb/internal/ports"
)

type customErr struct{}

func (customErr) Error() string { return "custom" }

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"api error", fmt.Errorf("login: %w", &ports.APIError{Status: 401, Message: "Token missing"}), "api_401"},
		{"app error", apperrors.ValidationField("email", "Email is required."), "validation"},
		{"deadline", fmt.Errorf("call: %w", context.DeadlineExceeded), "timeout"},
		{"canceled", context.Canceled, "canceled"},
		{"plain", goerrors.New("boom"), "errors_errorstring"},
		{"custom type", fmt.Errorf("wrap: %w", customErr{}), "errors_customerr"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.err))
		})
	}
}
