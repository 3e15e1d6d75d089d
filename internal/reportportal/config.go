package reportportal

import "time"

// Config holds ReportPortal connection configuration
type Config struct {
	Endpoint string        // Base URL, e.g. https://reportportal.example.com
	Project  string        // Project name the launch belongs to
	Token    string        // API token, sent as a bearer credential
	Timeout  time.Duration // Overall timeout per call including retries
}

// RetryConfig holds retry configuration
type RetryConfig struct {
	MaxRetries   int           // Maximum retry attempts (default: 3)
	InitialDelay time.Duration // Initial delay between retries (default: 1s)
	MaxDelay     time.Duration // Maximum delay (default: 30s)
	Multiplier   float64       // Backoff multiplier (default: 2.0)
	Jitter       float64       // Fraction of each delay randomized both ways (default: 0.1, 0 disables)
}

// DefaultRetryConfig returns default retry configuration
func DefaultRetryConfig() *RetryConfig {
	return &RetryConfig{
		MaxRetries:   3,
		InitialDelay: 1 * time.Second,
		MaxDelay:     30 * time.Second,
		Multiplier:   2.0,
		Jitter:       0.1,
	}
}
