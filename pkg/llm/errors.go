package llm

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
)

var ErrEmptyResponse = errors.New("provider returned no candidates")

// ProviderError is a non-2xx answer from a remote model API.
type ProviderError struct {
	Provider   string
	StatusCode int
	Body       string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s error: status %d, body: %s", e.Provider, e.StatusCode, e.Body)
}

// IsAuth reports whether the provider rejected our credentials.
func (e *ProviderError) IsAuth() bool {
	return e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden
}

// IsRetryable classifies an error from a provider call. Timeouts, connection
// failures, 408, 429 and 5xx are transient; everything else is permanent.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var perr *ProviderError
	if errors.As(err, &perr) {
		switch {
		case perr.StatusCode == http.StatusRequestTimeout,
			perr.StatusCode == http.StatusTooManyRequests,
			perr.StatusCode >= 500:
			return true
		default:
			return false
		}
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	var opErr *net.OpError
	return errors.As(err, &opErr)
}
