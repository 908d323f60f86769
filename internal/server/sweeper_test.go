package server

import (
	"testing"
	"time"
)

func TestIsDue(t *testing.T) {
	now := time.Now()
	recent := now.Add(-5 * time.Minute)
	old := now.Add(-25 * time.Hour)
	twoHours := now.Add(-2 * time.Hour)

	cases := []struct {
		name string
		spec string
		last *time.Time
		want bool
	}{
		{"hourly never run", "@hourly", nil, true},
		{"hourly recent", "@hourly", &recent, false},
		{"hourly stale", "@hourly", &twoHours, true},
		{"daily recent", "@daily", &twoHours, false},
		{"daily stale", "@daily", &old, true},
		{"cron never run", "*/15 * * * *", nil, true},
		{"cron stale", "*/15 * * * *", &twoHours, true},
		{"invalid spec falls back to daily", "not-a-cron", &old, true},
		{"invalid spec recent", "not-a-cron", &recent, false},
	}
	for _, tc := range cases {
		if got := isDue(tc.spec, tc.last); got != tc.want {
			t.Errorf("%s: isDue(%q) = %v, want %v", tc.name, tc.spec, got, tc.want)
		}
	}
}
