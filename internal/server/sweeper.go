package server

import (
	"context"
	"log"
	"time"

	"github.com/gorhill/cronexpr"
	"github.com/redis/go-redis/v9"

	"github.com/mohammad-safakhou/pricepilot/internal/retailer"
	"github.com/mohammad-safakhou/pricepilot/internal/telemetry"
	"github.com/mohammad-safakhou/pricepilot/internal/verify"
)

// Sweeper periodically probes each retailer's homepage and publishes the
// outcome as an up/down gauge. When redis is available a SetNX lock keeps
// multiple instances from sweeping at once.
type Sweeper struct {
	Registry *retailer.Registry
	Verifier *verify.Verifier
	Tele     *telemetry.Telemetry
	Rdb      *redis.Client
	Schedule string
	Timeout  time.Duration
	Stop     chan struct{}
	Logger   *log.Logger

	last *time.Time
}

func (s *Sweeper) Start() {
	if s.Logger == nil {
		s.Logger = log.New(log.Writer(), "[SWEEP] ", log.LstdFlags)
	}
	ticker := time.NewTicker(1 * time.Minute)
	go func() {
		for {
			select {
			case <-s.Stop:
				ticker.Stop()
				return
			case <-ticker.C:
				s.tick()
			}
		}
	}()
}

func (s *Sweeper) tick() {
	if !isDue(s.Schedule, s.last) {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), s.Timeout)
	defer cancel()

	// distributed lock to avoid duplicate sweeps
	if s.Rdb != nil {
		ok, _ := s.Rdb.SetNX(ctx, "sweep:lock", "1", 2*time.Minute).Result()
		if !ok {
			return
		}
		defer s.Rdb.Del(ctx, "sweep:lock")
	}

	now := time.Now()
	s.last = &now
	s.sweep(ctx)
}

func (s *Sweeper) sweep(ctx context.Context) {
	retailers := s.Registry.List()
	urls := make([]string, 0, len(retailers))
	byURL := make(map[string]string, len(retailers))
	for _, rt := range retailers {
		u := rt.HomepageURL()
		urls = append(urls, u)
		byURL[u] = rt.ID
	}

	results := s.Verifier.VerifyAll(ctx, urls)
	down := 0
	for u, res := range results {
		up := res.Status == verify.StatusVerified
		if !up {
			down++
		}
		s.Tele.SetRetailerUp(byURL[u], up)
	}
	s.Logger.Printf("sweep complete: %d retailers, %d down", len(retailers), down)
}

// isDue determines whether a sweep with the given schedule should run now.
// Supports "@daily", "@hourly", and standard 5-field cron expressions.
func isDue(cronSpec string, last *time.Time) bool {
	now := time.Now()
	switch cronSpec {
	case "@daily":
		if last == nil {
			return true
		}
		return now.Sub(*last) >= 24*time.Hour
	case "@hourly":
		if last == nil {
			return true
		}
		return now.Sub(*last) >= time.Hour
	default:
		expr, err := cronexpr.Parse(cronSpec)
		if err != nil {
			if last == nil {
				return true
			}
			return now.Sub(*last) >= 24*time.Hour
		}
		if last == nil {
			return true
		}
		next := expr.Next(*last)
		return !next.After(now)
	}
}
