package reportportal

import (
	"testing"
	"time"
)

func TestCalculateBackoff(t *testing.T) {
	config := &RetryConfig{
		InitialDelay: 100 * time.Millisecond,
		MaxDelay:     5 * time.Second,
		Multiplier:   2.0,
		Jitter:       0.1,
	}

	tests := []struct {
		name        string
		attempt     int
		minExpected time.Duration
		maxExpected time.Duration
	}{
		{
			name:        "no backoff for attempt 0",
			attempt:     0,
			minExpected: 0,
			maxExpected: 0,
		},
		{
			name:        "first retry",
			attempt:     1,
			minExpected: 90 * time.Millisecond,  // 100ms - 10% jitter
			maxExpected: 110 * time.Millisecond, // 100ms + 10% jitter
		},
		{
			name:        "second retry",
			attempt:     2,
			minExpected: 180 * time.Millisecond, // 200ms - 10% jitter
			maxExpected: 220 * time.Millisecond, // 200ms + 10% jitter
		},
		{
			name:        "capped at max delay",
			attempt:     10,
			minExpected: 4500 * time.Millisecond, // 5s - 10% jitter
			maxExpected: 5500 * time.Millisecond, // 5s + 10% jitter
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			delay := calculateBackoff(tt.attempt, config)

			if tt.minExpected == 0 && tt.maxExpected == 0 {
				if delay != 0 {
					t.Errorf("Expected no delay for attempt %d, got %v", tt.attempt, delay)
				}
			} else {
				if delay < tt.minExpected || delay > tt.maxExpected {
					t.Errorf("Expected delay between %v and %v for attempt %d, got %v",
						tt.minExpected, tt.maxExpected, tt.attempt, delay)
				}
			}
		})
	}
}

func TestCalculateBackoff_NoJitter(t *testing.T) {
	config := &RetryConfig{
		InitialDelay: 100 * time.Millisecond,
		MaxDelay:     5 * time.Second,
		Multiplier:   2.0,
	}

	// With jitter disabled the schedule is exact
	tests := []struct {
		attempt  int
		expected time.Duration
	}{
		{1, 100 * time.Millisecond},
		{2, 200 * time.Millisecond},
		{3, 400 * time.Millisecond},
		{10, 5 * time.Second},
	}

	for _, tt := range tests {
		if got := calculateBackoff(tt.attempt, config); got != tt.expected {
			t.Errorf("calculateBackoff(%d): expected %v, got %v", tt.attempt, tt.expected, got)
		}
	}
}

func TestIsRetryableStatus(t *testing.T) {
	tests := []struct {
		code     int
		expected bool
	}{
		{200, false},
		{201, false},
		{400, false},
		{401, false},
		{404, false},
		{408, true},
		{429, true},
		{500, true},
		{502, true},
		{503, true},
		{504, true},
	}

	for _, tt := range tests {
		if got := isRetryableStatus(tt.code); got != tt.expected {
			t.Errorf("isRetryableStatus(%d): expected %v, got %v", tt.code, tt.expected, got)
		}
	}
}
