package browser

import (
	"errors"

	"github.com/auradrive/auradrive/internal/client/api"
)

// backendMessage extracts the backend's error message when err carries one.
func backendMessage(err error) string {
	var apiErr *api.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return ""
}

// orBackend prefers the backend's error message over the fallback notice.
func orBackend(err error, fallback string) string {
	if msg := backendMessage(err); msg != "" {
		return msg
	}
	return fallback
}
