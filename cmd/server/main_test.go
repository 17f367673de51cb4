package main

import (
	"testing"

	"github.com/contabilidad/ledger/internal/infrastructure/config"
)

func TestRateLimiterFromConfig(t *testing.T) {
	if got := rateLimiterFromConfig(&config.Config{RateLimitPerSecond: 0}); got != nil {
		t.Fatalf("expected nil limiter when rate limiting is disabled")
	}

	if got := rateLimiterFromConfig(&config.Config{RateLimitPerSecond: 100, RateLimitBurst: 50}); got == nil {
		t.Fatalf("expected limiter when rate limiting is enabled")
	}
}
