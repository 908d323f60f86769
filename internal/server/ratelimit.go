package server

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
)

// RateLimiter enforces a fixed-window per-IP request budget backed by
// redis. With no redis client it lets everything through, so a single
// instance without redis still works.
type RateLimiter struct {
	Rdb    *redis.Client
	Logger *log.Logger
}

// Middleware returns an echo middleware allowing perMinute requests per
// client IP for the named route group. Redis failures fail open.
func (rl *RateLimiter) Middleware(group string, perMinute int) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if rl == nil || rl.Rdb == nil || perMinute <= 0 {
				return next(c)
			}
			ctx := c.Request().Context()
			window := time.Now().Unix() / 60
			key := fmt.Sprintf("ratelimit:%s:%s:%d", group, c.RealIP(), window)

			n, err := rl.Rdb.Incr(ctx, key).Result()
			if err != nil {
				if rl.Logger != nil {
					rl.Logger.Printf("rate limit check failed, allowing request: %v", err)
				}
				return next(c)
			}
			if n == 1 {
				rl.Rdb.Expire(ctx, key, time.Minute)
			}
			if n > int64(perMinute) {
				return echo.NewHTTPError(http.StatusTooManyRequests,
					fmt.Sprintf("rate limit exceeded: %d requests per minute", perMinute))
			}
			return next(c)
		}
	}
}
