package api

import (
	"testing"

	"golang.org/x/time/rate"
)

func TestIPRateLimiter(t *testing.T) {
	limiter := NewIPRateLimiter(rate.Limit(1.0/3.0), 1)

	// First request from an IP passes, the immediate second does not.
	if !limiter.GetLimiter("10.0.0.1").Allow() {
		t.Error("Expected first request to pass")
	}
	if limiter.GetLimiter("10.0.0.1").Allow() {
		t.Error("Expected second request to be throttled")
	}

	// A different IP has its own bucket.
	if !limiter.GetLimiter("10.0.0.2").Allow() {
		t.Error("Expected a different IP to pass")
	}
}

func TestIPRateLimiterReusesBucket(t *testing.T) {
	limiter := NewIPRateLimiter(1, 5)

	a := limiter.GetLimiter("10.0.0.1")
	b := limiter.GetLimiter("10.0.0.1")
	if a != b {
		t.Error("Expected the same bucket for the same IP")
	}
}
