package runner

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/anthropics/anthropic-sdk-go"

	"github.com/petasbytes/chain-tools/chain"
	"github.com/petasbytes/chain-tools/internal/config"
)

// IsFatal reports whether err should end the session rather than just the
// turn. Cancellation, rejected credentials, an unknown model and
// configuration errors are fatal. Rate limits, server errors, rejected
// requests, network failures and the step limit are not.
func IsFatal(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return true
	}
	if errors.Is(err, config.ErrMissingAPIKey) || errors.Is(err, config.ErrInvalid) ||
		errors.Is(err, chain.ErrTemplate) || errors.Is(err, chain.ErrBinding) {
		return true
	}
	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		switch apiErr.StatusCode {
		case http.StatusUnauthorized, http.StatusForbidden, http.StatusNotFound:
			return true
		}
	}
	return false
}

// errorKind names err for telemetry without including its message.
func errorKind(err error) string {
	var apiErr *anthropic.Error
	switch {
	case errors.Is(err, context.Canceled):
		return "canceled"
	case errors.Is(err, context.DeadlineExceeded):
		return "deadline"
	case errors.Is(err, ErrMaxSteps):
		return "max_steps"
	case errors.As(err, &apiErr):
		return "api_" + strconv.Itoa(apiErr.StatusCode)
	default:
		return "error"
	}
}
