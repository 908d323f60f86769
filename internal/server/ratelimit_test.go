package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func TestRateLimiterWithoutRedisAllowsAll(t *testing.T) {
	rl := &RateLimiter{}
	mw := rl.Middleware("search", 1)

	e := echo.New()
	handler := mw(func(c echo.Context) error { return c.String(http.StatusOK, "ok") })

	for i := 0; i < 10; i++ {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()
		if err := handler(e.NewContext(req, rec)); err != nil {
			t.Fatalf("request %d rejected without redis: %v", i, err)
		}
	}
}

func TestRateLimiterZeroLimitDisabled(t *testing.T) {
	rl := &RateLimiter{}
	mw := rl.Middleware("default", 0)

	e := echo.New()
	handler := mw(func(c echo.Context) error { return c.String(http.StatusOK, "ok") })

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	if err := handler(e.NewContext(req, rec)); err != nil {
		t.Fatalf("zero limit should disable limiting: %v", err)
	}
}
