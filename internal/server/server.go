package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/mohammad-safakhou/pricepilot/config"
	"github.com/mohammad-safakhou/pricepilot/internal/match"
	"github.com/mohammad-safakhou/pricepilot/internal/pipeline"
	"github.com/mohammad-safakhou/pricepilot/internal/retailer"
	"github.com/mohammad-safakhou/pricepilot/internal/search"
	"github.com/mohammad-safakhou/pricepilot/internal/telemetry"
	"github.com/mohammad-safakhou/pricepilot/internal/verify"
)

// extensionOrigin matches the packed browser extension's origin.
var extensionOrigin = regexp.MustCompile(`^chrome-extension://[a-z]{32}$`)

func Run(cfg *config.Config) error {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	// Unified HTTP error handler with structured JSON and logging
	baseLogger := log.New(log.Writer(), "[HTTP] ", log.LstdFlags)
	e.HTTPErrorHandler = func(err error, c echo.Context) {
		code := http.StatusInternalServerError
		msg := err.Error()
		if he, ok := err.(*echo.HTTPError); ok {
			code = he.Code
			if he.Message != nil {
				msg = fmt.Sprint(he.Message)
			}
		}
		req := c.Request()
		baseLogger.Printf("%d %s %s from %s: %v", code, req.Method, req.URL.Path, c.RealIP(), err)
		if !c.Response().Committed {
			_ = c.JSON(code, map[string]interface{}{"error": msg})
		}
	}
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOriginFunc: func(origin string) (bool, error) {
			if extensionOrigin.MatchString(origin) {
				return true, nil
			}
			return strings.HasPrefix(origin, "http://localhost"), nil
		},
		AllowMethods: []string{"GET", "POST", "OPTIONS"},
		AllowHeaders: []string{"Content-Type"},
	}))

	registry, err := retailer.NewRegistry(cfg.Retailers)
	if err != nil {
		return err
	}

	googleClient := search.NewGoogleClient(cfg.Search)
	dispatcher := search.NewDispatcher(googleClient, cfg.Dispatch, cfg.Search, nil)
	matcher := match.NewMatcher(cfg.Match.Threshold)
	verifier := verify.New(cfg.Verify, nil)
	tele := telemetry.New(prometheus.DefaultRegisterer)
	pipe := pipeline.New(registry, dispatcher, matcher, verifier, tele, cfg.Pipeline, nil)

	// Search credentials are checked once at startup instead of per request.
	// A failed probe is not fatal: the service stays up and /search reports
	// apiError until credentials are fixed.
	{
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := googleClient.CheckCredentials(ctx); err != nil {
			baseLogger.Printf("search credential check failed: %v", err)
		}
		cancel()
	}

	// redis is optional: rate limits and sweep locks degrade gracefully
	var rdb *redis.Client
	if cfg.Redis.Host != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr(),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := rdb.Ping(context.Background()).Err(); err != nil {
			baseLogger.Printf("redis unavailable (%s), rate limiting disabled: %v", cfg.Redis.Addr(), err)
			rdb = nil
		}
	}

	limiter := &RateLimiter{Rdb: rdb, Logger: baseLogger}
	var searchLimit, defaultLimit echo.MiddlewareFunc
	if cfg.Server.RateLimit.Enabled {
		searchLimit = limiter.Middleware("search", cfg.Server.RateLimit.SearchPerMinute)
		defaultLimit = limiter.Middleware("default", cfg.Server.RateLimit.DefaultPerMinute)
	} else {
		searchLimit = limiter.Middleware("search", 0)
		defaultLimit = limiter.Middleware("default", 0)
	}

	h := &SearchHandler{
		Pipeline: pipe,
		Registry: registry,
		MaxConc:  cfg.Dispatch.MaxConcurrent,
	}
	h.Register(e, searchLimit, defaultLimit)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	if cfg.Sweep.Enabled {
		sweeper := &Sweeper{
			Registry: registry,
			Verifier: verifier,
			Tele:     tele,
			Rdb:      rdb,
			Schedule: cfg.Sweep.Schedule,
			Timeout:  cfg.Sweep.Timeout,
			Stop:     make(chan struct{}),
		}
		sweeper.Start()
	}

	addr := cfg.Server.Address
	if addr == "" {
		addr = ":8080"
	}
	log.Printf("listening on %s", addr)
	return e.Start(addr)
}
