// Package pipeline orchestrates a product search request end to end:
// dispatch across retailers, score titles, deduplicate, verify links and
// rank the survivors.
package pipeline

import (
	"context"
	"errors"
	"log"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mohammad-safakhou/pricepilot/config"
	"github.com/mohammad-safakhou/pricepilot/internal/helpers"
	"github.com/mohammad-safakhou/pricepilot/internal/match"
	"github.com/mohammad-safakhou/pricepilot/internal/retailer"
	"github.com/mohammad-safakhou/pricepilot/internal/search"
	"github.com/mohammad-safakhou/pricepilot/internal/telemetry"
	"github.com/mohammad-safakhou/pricepilot/internal/verify"
)

// ErrInvalidQuery is returned for requests missing a usable search query.
// It is the only request-level error a well-configured pipeline produces.
var ErrInvalidQuery = errors.New("searchQuery is required")

// Dispatcher is the per-retailer search fan-out.
type Dispatcher interface {
	Dispatch(ctx context.Context, q search.Query, retailers []retailer.Retailer) map[string]search.Outcome
}

// Verifier is the per-URL reachability fan-out.
type Verifier interface {
	VerifyAll(ctx context.Context, urls []string) map[string]verify.Result
}

// ScoredListing is a candidate listing with its title match score and the
// canonical URL used for deduplication.
type ScoredListing struct {
	search.RawListing
	MatchScore   float64 `json:"match_score"`
	CanonicalURL string  `json:"-"`
}

// SearchResult is one final, link-verified result.
type SearchResult struct {
	Retailer     retailer.Retailer `json:"retailer"`
	Listing      ScoredListing     `json:"listing"`
	Verification verify.Result     `json:"verification"`
}

// RetailerStatus reports the terminal dispatch outcome for one retailer.
type RetailerStatus struct {
	RetailerID string `json:"retailer"`
	Status     string `json:"status"`
	Error      string `json:"error,omitempty"`
}

// Response is the full outcome of one pipeline run. An empty Results slice
// with Success=true is a valid "no results" outcome.
type Response struct {
	RequestID          string           `json:"request_id"`
	Success            bool             `json:"success"`
	Results            []SearchResult   `json:"results"`
	SearchQueries      []RetailerStatus `json:"searchQueries"`
	TotalRetailers     int              `json:"totalRetailers"`
	SuccessfulSearches int              `json:"successfulSearches"`
	FoundResults       int              `json:"foundResults"`
	APIError           string           `json:"apiError,omitempty"`
}

// Pipeline wires the stages together. All state is request-scoped; the
// pipeline itself is safe for concurrent use.
type Pipeline struct {
	registry   *retailer.Registry
	dispatcher Dispatcher
	matcher    *match.Matcher
	verifier   Verifier
	tele       *telemetry.Telemetry
	logger     *log.Logger
	maxResults int
}

func New(reg *retailer.Registry, d Dispatcher, m *match.Matcher, v Verifier,
	tele *telemetry.Telemetry, cfg config.PipelineConfig, logger *log.Logger) *Pipeline {
	if logger == nil {
		logger = log.New(log.Writer(), "[PIPELINE] ", log.LstdFlags)
	}
	return &Pipeline{
		registry:   reg,
		dispatcher: d,
		matcher:    m,
		verifier:   v,
		tele:       tele,
		logger:     logger,
		maxResults: cfg.MaxResults,
	}
}

// Run executes Dispatch -> Score -> Dedupe -> Verify -> Rank -> Emit for
// one query. Per-retailer and per-URL failures are absorbed and reported
// in the response; only invalid input produces an error.
func (p *Pipeline) Run(ctx context.Context, q search.Query) (Response, error) {
	if strings.TrimSpace(q.SearchQuery) == "" {
		return Response{}, ErrInvalidQuery
	}
	if strings.TrimSpace(q.ProductTitle) == "" {
		q.ProductTitle = q.SearchQuery
	}

	requestID := uuid.NewString()
	retailers := p.registry.List()
	resp := Response{
		RequestID:      requestID,
		Success:        true,
		Results:        []SearchResult{},
		TotalRetailers: len(retailers),
	}

	// Dispatch
	start := time.Now()
	outcomes := p.dispatcher.Dispatch(ctx, q, retailers)
	p.tele.ObserveStage("dispatch", time.Since(start))

	var candidates []search.RawListing
	unauthorized := 0
	for _, rt := range retailers {
		out := outcomes[rt.ID]
		status := RetailerStatus{RetailerID: rt.ID, Status: "success"}
		if out.Err != nil {
			status.Status = "error"
			status.Error = out.Err.Kind.String() + ": " + out.Err.Err.Error()
			if out.Err.Kind == search.KindUnauthorized {
				unauthorized++
			}
			p.logger.Printf("[%s] retailer %s failed: %v", requestID, rt.ID, out.Err)
		} else {
			resp.SuccessfulSearches++
			candidates = append(candidates, out.Listings...)
		}
		p.tele.ObserveSearch(rt.ID, status.Status)
		resp.SearchQueries = append(resp.SearchQueries, status)
	}
	if unauthorized == len(retailers) && len(retailers) > 0 {
		resp.APIError = "search index rejected the configured credentials"
	}

	// Score
	scored := p.score(candidates, q.ProductTitle)

	// Dedupe
	deduped := p.dedupe(scored)

	// Verify
	start = time.Now()
	urls := make([]string, 0, len(deduped))
	for _, s := range deduped {
		urls = append(urls, s.RawListing.URL)
	}
	verifications := p.verifier.VerifyAll(ctx, urls)
	p.tele.ObserveStage("verify", time.Since(start))
	for _, res := range verifications {
		p.tele.ObserveVerification(string(res.Status))
	}

	// Rank + Emit
	resp.Results = p.rank(deduped, verifications, q.ProductTitle)
	if len(resp.Results) > p.maxResults {
		resp.Results = resp.Results[:p.maxResults]
	}
	resp.FoundResults = len(resp.Results)

	p.logger.Printf("[%s] %d results from %d/%d retailers (query %q)",
		requestID, resp.FoundResults, resp.SuccessfulSearches, resp.TotalRetailers, truncate(q.ProductTitle, 60))
	return resp, nil
}

// score attaches match scores and drops below-threshold and
// non-canonicalizable listings.
func (p *Pipeline) score(candidates []search.RawListing, productTitle string) []ScoredListing {
	scored := make([]ScoredListing, 0, len(candidates))
	for _, c := range candidates {
		s := p.matcher.Score(c.Title, productTitle)
		if s < p.matcher.Threshold() {
			continue
		}
		canonical, err := helpers.CanonicalURL(c.URL)
		if err != nil {
			p.logger.Printf("dropping listing with unusable url %q: %v", c.URL, err)
			continue
		}
		scored = append(scored, ScoredListing{RawListing: c, MatchScore: s, CanonicalURL: canonical})
	}
	return scored
}

// dedupe collapses listings sharing a canonical URL, keeping the highest
// score and breaking ties by registry order.
func (p *Pipeline) dedupe(scored []ScoredListing) []ScoredListing {
	byURL := make(map[string]ScoredListing, len(scored))
	order := make([]string, 0, len(scored))
	for _, s := range scored {
		existing, seen := byURL[s.CanonicalURL]
		if !seen {
			byURL[s.CanonicalURL] = s
			order = append(order, s.CanonicalURL)
			continue
		}
		if s.MatchScore > existing.MatchScore ||
			(s.MatchScore == existing.MatchScore &&
				p.registry.Position(s.RetailerID) < p.registry.Position(existing.RetailerID)) {
			byURL[s.CanonicalURL] = s
		}
	}
	out := make([]ScoredListing, 0, len(byURL))
	for _, u := range order {
		out = append(out, byURL[u])
	}
	return out
}

// rank keeps verified listings only and orders them deterministically:
// score desc, verification latency asc, registry order, longest common
// substring with the target title desc, canonical URL asc.
func (p *Pipeline) rank(deduped []ScoredListing, verifications map[string]verify.Result, productTitle string) []SearchResult {
	results := make([]SearchResult, 0, len(deduped))
	for _, s := range deduped {
		v, ok := verifications[s.RawListing.URL]
		if !ok || v.Status != verify.StatusVerified {
			continue
		}
		rt, _ := p.registry.Get(s.RetailerID)
		results = append(results, SearchResult{Retailer: rt, Listing: s, Verification: v})
	}

	sort.SliceStable(results, func(i, j int) bool {
		a, b := results[i], results[j]
		if a.Listing.MatchScore != b.Listing.MatchScore {
			return a.Listing.MatchScore > b.Listing.MatchScore
		}
		if a.Verification.Latency != b.Verification.Latency {
			return a.Verification.Latency < b.Verification.Latency
		}
		pa, pb := p.registry.Position(a.Retailer.ID), p.registry.Position(b.Retailer.ID)
		if pa != pb {
			return pa < pb
		}
		ca := match.CommonSubstringLen(a.Listing.Title, productTitle)
		cb := match.CommonSubstringLen(b.Listing.Title, productTitle)
		if ca != cb {
			return ca > cb
		}
		return a.Listing.CanonicalURL < b.Listing.CanonicalURL
	})
	return results
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
