package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/mohammad-safakhou/pricepilot/config"
	"github.com/mohammad-safakhou/pricepilot/internal/pipeline"
	"github.com/mohammad-safakhou/pricepilot/internal/retailer"
	"github.com/mohammad-safakhou/pricepilot/internal/search"
	"github.com/mohammad-safakhou/pricepilot/internal/verify"
)

type fakeRunner struct {
	resp pipeline.Response
	err  error
	got  search.Query
}

func (f *fakeRunner) Run(ctx context.Context, q search.Query) (pipeline.Response, error) {
	f.got = q
	return f.resp, f.err
}

func setupHandler(t *testing.T, runner Runner) *SearchHandler {
	t.Helper()
	reg, err := retailer.NewRegistry([]config.RetailerConfig{
		{ID: "currys", DisplayName: "Currys", SiteFilter: "site:currys.co.uk"},
		{ID: "argos", DisplayName: "Argos", SiteFilter: "site:argos.co.uk"},
	})
	if err != nil {
		t.Fatalf("registry: %v", err)
	}
	return &SearchHandler{Pipeline: runner, Registry: reg, MaxConc: 5}
}

func TestSearchHandlerSuccess(t *testing.T) {
	rt := retailer.Retailer{ID: "currys", DisplayName: "Currys", SiteFilter: "site:currys.co.uk"}
	runner := &fakeRunner{resp: pipeline.Response{
		Success: true,
		Results: []pipeline.SearchResult{{
			Retailer: rt,
			Listing: pipeline.ScoredListing{
				RawListing: search.RawListing{
					Title:      "Dell XPS 13 Laptop",
					URL:        "https://www.currys.co.uk/products/dell-xps-13",
					Snippet:    "13 inch laptop",
					RetailerID: "currys",
				},
				MatchScore: 0.92,
			},
			Verification: verify.Result{
				Status:     verify.StatusVerified,
				HTTPStatus: 200,
				Latency:    42 * time.Millisecond,
			},
		}},
		SearchQueries:      []pipeline.RetailerStatus{{RetailerID: "currys", Status: "success"}},
		TotalRetailers:     2,
		SuccessfulSearches: 2,
		FoundResults:       1,
	}}
	h := setupHandler(t, runner)

	body := `{"searchQuery":"dell xps 13","productTitle":"Dell XPS 13"}`
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/search", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	ctx := e.NewContext(req, rec)

	if err := h.search(ctx); err != nil {
		t.Fatalf("search: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if runner.got.SearchQuery != "dell xps 13" || runner.got.ProductTitle != "Dell XPS 13" {
		t.Fatalf("query not forwarded: %+v", runner.got)
	}

	var resp SearchResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !resp.Success || len(resp.Results) != 1 {
		t.Fatalf("unexpected response: %+v", resp)
	}
	got := resp.Results[0]
	if got.Retailer != "Currys" || got.RetailerID != "currys" {
		t.Errorf("retailer mapping wrong: %+v", got)
	}
	if got.Verification.Status != "verified" || got.Verification.LatencyMs != 42 {
		t.Errorf("verification mapping wrong: %+v", got.Verification)
	}
}

func TestSearchHandlerMissingQuery(t *testing.T) {
	h := setupHandler(t, &fakeRunner{})

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/search", strings.NewReader(`{"searchQuery":"  "}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	ctx := e.NewContext(req, rec)

	err := h.search(ctx)
	if err == nil {
		t.Fatalf("expected error for empty searchQuery")
	}
	httpErr, ok := err.(*echo.HTTPError)
	if !ok {
		t.Fatalf("expected HTTPError, got %T", err)
	}
	if httpErr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", httpErr.Code)
	}
}

func TestSearchHandlerInvalidBody(t *testing.T) {
	h := setupHandler(t, &fakeRunner{})

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/search", strings.NewReader(`{not json`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	ctx := e.NewContext(req, rec)

	err := h.search(ctx)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok {
		t.Fatalf("expected HTTPError, got %T (%v)", err, err)
	}
	if httpErr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", httpErr.Code)
	}
}

func TestRetailersHandler(t *testing.T) {
	h := setupHandler(t, &fakeRunner{})

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/retailers", nil)
	rec := httptest.NewRecorder()
	ctx := e.NewContext(req, rec)

	if err := h.retailers(ctx); err != nil {
		t.Fatalf("retailers: %v", err)
	}
	var resp RetailersResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.Count != 2 || len(resp.Retailers) != 2 {
		t.Fatalf("unexpected retailers: %+v", resp)
	}
	if resp.Retailers[0].Domain != "currys.co.uk" {
		t.Errorf("domain should strip the site: prefix, got %q", resp.Retailers[0].Domain)
	}
}

func TestHealthHandler(t *testing.T) {
	h := setupHandler(t, &fakeRunner{})

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	ctx := e.NewContext(req, rec)

	if err := h.health(ctx); err != nil {
		t.Fatalf("health: %v", err)
	}
	var resp HealthResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.Status != "ok" || resp.Retailers != 2 || resp.MaxConcurrency != 5 {
		t.Fatalf("unexpected health payload: %+v", resp)
	}
}

func TestExtensionOriginAllowed(t *testing.T) {
	cases := []struct {
		origin string
		want   bool
	}{
		{"chrome-extension://abcdefghijklmnopqrstuvwxyzabcdef", true},
		{"chrome-extension://short", false},
		{"chrome-extension://ABCDEFGHIJKLMNOPQRSTUVWXYZABCDEF", false},
		{"https://evil.example.com", false},
	}
	for _, tc := range cases {
		if got := extensionOrigin.MatchString(tc.origin); got != tc.want {
			t.Errorf("extensionOrigin(%q) = %v, want %v", tc.origin, got, tc.want)
		}
	}
}
