package httpx

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	apperrors "github.com/target/storyweb/internal/errors"
	"github.com/target/storyweb/internal/ports"
)

func TestWriteError(t *testing.T) {
	rr := httptest.NewRecorder()
	WriteError(rr, ErrorParams{Code: http.StatusBadRequest, ErrCode: "bad", Err: errors.New("nope")})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"error":"bad","message":"nope"}`, rr.Body.String())
}

func TestStatusForError(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{&ports.APIError{Status: 401, Message: "Invalid token or expired"}, http.StatusUnauthorized},
		{fmt.Errorf("wrapped: %w", &ports.APIError{Status: 422}), http.StatusBadRequest},
		{&ports.APIError{Status: 503}, http.StatusBadGateway},
		{apperrors.ValidationField("email", "Email is required."), http.StatusBadRequest},
		{apperrors.NotFound("missing"), http.StatusNotFound},
		{apperrors.Wrap(errors.New("dial"), apperrors.ErrCodeUnavailable, "store down"), http.StatusServiceUnavailable},
		{context.DeadlineExceeded, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, statusForError(tt.err), tt.err.Error())
	}
}

func TestPublicMessage(t *testing.T) {
	assert.Equal(t, "Plan sold out", publicMessage(&ports.APIError{Status: 409, Message: "Plan sold out"}, "fallback"))
	assert.Equal(t, "Email is required.", publicMessage(apperrors.ValidationField("email", "Email is required."), "fallback"))
	assert.Equal(t, "fallback", publicMessage(errors.New("boom"), "fallback"))
}
