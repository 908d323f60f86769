package config

import (
	"strings"
	"testing"
	"time"
)

func TestSearchConfigValidate(t *testing.T) {
	good := SearchConfig{PageSize: 10, MaxAttempts: 2, Timeout: 5 * time.Second}
	if err := good.Validate(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}
	if err := (SearchConfig{PageSize: 11, MaxAttempts: 2}).Validate(); err == nil {
		t.Errorf("page_size above the Custom Search cap should be rejected")
	}
	if err := (SearchConfig{PageSize: 10, MaxAttempts: 0}).Validate(); err == nil {
		t.Errorf("zero max_attempts should be rejected")
	}
}

func TestDispatchConfigValidate(t *testing.T) {
	good := DispatchConfig{MaxConcurrent: 5, RetailerTimeout: 5 * time.Second, AggregateTimeout: 8 * time.Second}
	if err := good.Validate(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}
	bad := DispatchConfig{MaxConcurrent: 5, RetailerTimeout: 10 * time.Second, AggregateTimeout: 8 * time.Second}
	if err := bad.Validate(); err == nil {
		t.Errorf("retailer_timeout exceeding aggregate_timeout should be rejected")
	}
}

func TestMatchConfigValidate(t *testing.T) {
	if err := (MatchConfig{Threshold: 0.3}).Validate(); err != nil {
		t.Fatalf("valid threshold rejected: %v", err)
	}
	if err := (MatchConfig{Threshold: 1.5}).Validate(); err == nil {
		t.Errorf("threshold above 1 should be rejected")
	}
}

func TestVerifyConfigValidate(t *testing.T) {
	good := VerifyConfig{Workers: 10, Attempts: 2, AttemptTimeout: 3 * time.Second, Deadline: 6 * time.Second}
	if err := good.Validate(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}
	if err := (VerifyConfig{Workers: 0, Attempts: 2, AttemptTimeout: time.Second, Deadline: time.Second}).Validate(); err == nil {
		t.Errorf("zero workers should be rejected")
	}
}

func TestRedisConfig(t *testing.T) {
	r := RedisConfig{Host: "localhost", Port: "6379"}
	if r.Addr() != "localhost:6379" {
		t.Fatalf("Addr() = %q", r.Addr())
	}
	if err := r.Validate(); err != nil {
		t.Fatalf("valid redis config rejected: %v", err)
	}
	if err := (RedisConfig{Host: "localhost"}).Validate(); err == nil {
		t.Errorf("host without port should be rejected")
	}
	if err := (RedisConfig{}).Validate(); err != nil {
		t.Errorf("empty redis config is allowed (redis disabled): %v", err)
	}
}

func TestDefaultRetailers(t *testing.T) {
	retailers := DefaultRetailers()
	if len(retailers) != 29 {
		t.Fatalf("expected 29 default retailers, got %d", len(retailers))
	}
	seen := make(map[string]bool, len(retailers))
	for _, r := range retailers {
		if r.ID == "" || r.DisplayName == "" {
			t.Errorf("retailer missing id or display name: %+v", r)
		}
		if !strings.HasPrefix(r.SiteFilter, "site:") {
			t.Errorf("retailer %s: site filter %q missing site: prefix", r.ID, r.SiteFilter)
		}
		if seen[r.ID] {
			t.Errorf("duplicate retailer id %s", r.ID)
		}
		seen[r.ID] = true
	}
	if retailers[0].ID != "amazon.co.uk" {
		t.Errorf("amazon should lead the registry order, got %s", retailers[0].ID)
	}
}
