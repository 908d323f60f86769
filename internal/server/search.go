package server

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/mohammad-safakhou/pricepilot/internal/pipeline"
	"github.com/mohammad-safakhou/pricepilot/internal/retailer"
	"github.com/mohammad-safakhou/pricepilot/internal/search"
)

// Runner executes one search pipeline run.
type Runner interface {
	Run(ctx context.Context, q search.Query) (pipeline.Response, error)
}

// SearchHandler serves the product search endpoints.
type SearchHandler struct {
	Pipeline Runner
	Registry *retailer.Registry
	MaxConc  int
}

func (h *SearchHandler) Register(e *echo.Echo, searchLimit echo.MiddlewareFunc, defaultLimit echo.MiddlewareFunc) {
	e.POST("/search", h.search, searchLimit)
	e.GET("/retailers", h.retailers, defaultLimit)
	e.GET("/health", h.health, defaultLimit)
}

func (h *SearchHandler) search(c echo.Context) error {
	var req SearchRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid JSON body")
	}
	if strings.TrimSpace(req.SearchQuery) == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "searchQuery is required")
	}

	resp, err := h.Pipeline.Run(c.Request().Context(), search.Query{
		SearchQuery:  req.SearchQuery,
		ProductTitle: req.ProductTitle,
	})
	if err != nil {
		if errors.Is(err, pipeline.ErrInvalidQuery) {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		return err
	}
	return c.JSON(http.StatusOK, toSearchResponse(resp))
}

func (h *SearchHandler) retailers(c echo.Context) error {
	list := h.Registry.List()
	out := RetailersResponse{Retailers: make([]RetailerDTO, 0, len(list)), Count: len(list)}
	for _, rt := range list {
		out.Retailers = append(out.Retailers, RetailerDTO{
			ID:          rt.ID,
			DisplayName: rt.DisplayName,
			Domain:      strings.TrimPrefix(rt.SiteFilter, "site:"),
		})
	}
	return c.JSON(http.StatusOK, out)
}

func (h *SearchHandler) health(c echo.Context) error {
	return c.JSON(http.StatusOK, HealthResponse{
		Status:         "ok",
		Message:        "price comparison search API is running",
		Retailers:      h.Registry.Len(),
		MaxConcurrency: h.MaxConc,
	})
}
