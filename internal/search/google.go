package search

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/mohammad-safakhou/pricepilot/config"
	"github.com/mohammad-safakhou/pricepilot/internal/retailer"
)

// GoogleClient calls the Google Custom Search JSON API, scoping each query
// to a retailer via its site filter.
type GoogleClient struct {
	http     *httpClient
	apiKey   string
	engineID string
	endpoint string
	pageSize int
}

type googleItem struct {
	Title   string `json:"title"`
	Link    string `json:"link"`
	Snippet string `json:"snippet"`
}

type googleResponse struct {
	Items []googleItem `json:"items"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

func NewGoogleClient(cfg config.SearchConfig) *GoogleClient {
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = "https://www.googleapis.com/customsearch/v1"
	}
	pageSize := cfg.PageSize
	if pageSize <= 0 || pageSize > 10 {
		pageSize = 10
	}
	return &GoogleClient{
		http:     newHTTPClient(cfg.Timeout),
		apiKey:   cfg.APIKey,
		engineID: cfg.EngineID,
		endpoint: endpoint,
		pageSize: pageSize,
	}
}

// Search performs one retailer-scoped index call and parses up to one page
// of candidate listings. Items missing a title or link are skipped
// individually; the response as a whole stays usable.
func (g *GoogleClient) Search(ctx context.Context, rt retailer.Retailer, q Query) ([]RawListing, error) {
	raw, err := g.query(ctx, rt.SiteFilter+" "+q.SearchQuery, g.pageSize)
	if err != nil {
		return nil, classify(rt.ID, err)
	}

	listings := make([]RawListing, 0, len(raw.Items))
	for _, item := range raw.Items {
		if strings.TrimSpace(item.Link) == "" || strings.TrimSpace(item.Title) == "" {
			// Malformed item only; keep the rest of the page.
			continue
		}
		listings = append(listings, RawListing{
			Title:      item.Title,
			URL:        item.Link,
			Snippet:    item.Snippet,
			RetailerID: rt.ID,
		})
	}
	return listings, nil
}

// CheckCredentials issues one minimal probe so bad keys surface at startup
// rather than as a wall of per-retailer failures on the first request.
func (g *GoogleClient) CheckCredentials(ctx context.Context) error {
	if g.apiKey == "" || g.engineID == "" {
		return fmt.Errorf("search api_key and engine_id are not configured")
	}
	_, err := g.query(ctx, "test", 1)
	return err
}

func (g *GoogleClient) query(ctx context.Context, q string, num int) (*googleResponse, error) {
	params := url.Values{}
	params.Set("key", g.apiKey)
	params.Set("cx", g.engineID)
	params.Set("q", q)
	params.Set("num", strconv.Itoa(num))

	var resp googleResponse
	if err := g.http.getJSON(ctx, g.endpoint+"?"+params.Encode(), &resp); err != nil {
		return nil, err
	}
	// The API reports some failures inside a 200 body.
	if resp.Error != nil {
		return nil, &statusError{code: resp.Error.Code, body: resp.Error.Message}
	}
	return &resp, nil
}
