package reportportal

import (
	"math"
	"math/rand"
	"net/http"
	"time"
)

// calculateBackoff returns the delay before the given retry attempt:
// exponential growth from InitialDelay, capped at MaxDelay, then spread by the
// configured jitter fraction so concurrent reporters don't retry in lockstep.
func calculateBackoff(attempt int, config *RetryConfig) time.Duration {
	if attempt <= 0 {
		return 0
	}

	delay := float64(config.InitialDelay) * math.Pow(config.Multiplier, float64(attempt-1))
	delay = math.Min(delay, float64(config.MaxDelay))

	if config.Jitter > 0 {
		delay += delay * config.Jitter * (rand.Float64()*2 - 1)
	}

	return time.Duration(delay)
}

// isRetryableStatus reports whether a response status is worth retrying:
// timeouts, throttling and server-side failures.
func isRetryableStatus(code int) bool {
	switch code {
	case http.StatusRequestTimeout,
		http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	default:
		return false
	}
}
