// Package search queries the external search index per retailer and fans
// the calls out concurrently with partial-failure tolerance.
package search

import (
	"context"

	"github.com/mohammad-safakhou/pricepilot/internal/retailer"
)

// Query is one inbound product lookup.
type Query struct {
	SearchQuery  string `json:"searchQuery"`
	ProductTitle string `json:"productTitle"`
}

// RawListing is an unverified, unscored candidate from one retailer.
type RawListing struct {
	Title      string `json:"title"`
	URL        string `json:"url"`
	Snippet    string `json:"snippet"`
	RetailerID string `json:"retailer_id"`
}

// Client performs a single search-index call for one (retailer, query)
// pair. Implementations return a *Error on failure.
type Client interface {
	Search(ctx context.Context, rt retailer.Retailer, q Query) ([]RawListing, error)
}
