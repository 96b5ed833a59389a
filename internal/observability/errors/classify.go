// Package errors turns errors into short, low-cardinality class names for metric tags.
package errors

import (
	"context"
	goerrors "errors"
	"reflect"
	"strconv"
	"strings"

	apperrors "github.com/target/storyweb/internal/errors"
	"github.com/target/storyweb/internal/ports"
)

// Classify names the kind of err: "api_<status>" for story API rejections, the
// application error code when there is one, then context errors, and finally
// the innermost concrete type in snake case.
func Classify(err error) string {
	if err == nil {
		return ""
	}

	var apiErr *ports.APIError
	if goerrors.As(err, &apiErr) {
		return "api_" + strconv.Itoa(apiErr.Status)
	}
	var appErr *apperrors.AppError
	if goerrors.As(err, &appErr) {
		return string(appErr.Code)
	}
	switch {
	case goerrors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case goerrors.Is(err, context.Canceled):
		return "canceled"
	}

	for {
		unwrapped := goerrors.Unwrap(err)
		if unwrapped == nil {
			break
		}
		err = unwrapped
	}
	t := reflect.TypeOf(err)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	name := strings.ReplaceAll(strings.ToLower(t.String()), ".", "_")
	if name == "" {
		return "unknown"
	}
	return name
}
