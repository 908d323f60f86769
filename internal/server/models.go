package server

import (
	"github.com/mohammad-safakhou/pricepilot/internal/pipeline"
	"github.com/mohammad-safakhou/pricepilot/internal/verify"
)

// SearchRequest is the POST /search payload. ProductTitle is optional and
// defaults to the search query.
type SearchRequest struct {
	SearchQuery  string `json:"searchQuery"`
	ProductTitle string `json:"productTitle"`
}

// VerificationDTO is the wire form of a link verification outcome.
type VerificationDTO struct {
	Status     string `json:"status"`
	HTTPStatus int    `json:"httpStatus,omitempty"`
	LatencyMs  int64  `json:"latencyMs,omitempty"`
	PageTitle  string `json:"pageTitle,omitempty"`
}

// ResultDTO is one verified product listing in the response.
type ResultDTO struct {
	Retailer     string          `json:"retailer"`
	RetailerID   string          `json:"retailerId"`
	Title        string          `json:"title"`
	URL          string          `json:"url"`
	Snippet      string          `json:"snippet,omitempty"`
	MatchScore   float64         `json:"matchScore"`
	Verification VerificationDTO `json:"verification"`
}

// SearchResponse mirrors the response contract the browser extension
// consumes.
type SearchResponse struct {
	Success            bool                      `json:"success"`
	Results            []ResultDTO               `json:"results"`
	SearchQueries      []pipeline.RetailerStatus `json:"searchQueries"`
	TotalRetailers     int                       `json:"totalRetailers"`
	SuccessfulSearches int                       `json:"successfulSearches"`
	FoundResults       int                       `json:"foundResults"`
	APIError           string                    `json:"apiError,omitempty"`
}

// RetailerDTO is one configured storefront.
type RetailerDTO struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
	Domain      string `json:"domain"`
}

// RetailersResponse lists the configured storefronts.
type RetailersResponse struct {
	Retailers []RetailerDTO `json:"retailers"`
	Count     int           `json:"count"`
}

// HealthResponse reports service readiness.
type HealthResponse struct {
	Status         string `json:"status"`
	Message        string `json:"message,omitempty"`
	Retailers      int    `json:"retailers"`
	MaxConcurrency int    `json:"maxConcurrency"`
}

func toSearchResponse(r pipeline.Response) SearchResponse {
	out := SearchResponse{
		Success:            r.Success,
		Results:            make([]ResultDTO, 0, len(r.Results)),
		SearchQueries:      r.SearchQueries,
		TotalRetailers:     r.TotalRetailers,
		SuccessfulSearches: r.SuccessfulSearches,
		FoundResults:       r.FoundResults,
		APIError:           r.APIError,
	}
	for _, res := range r.Results {
		out.Results = append(out.Results, ResultDTO{
			Retailer:     res.Retailer.DisplayName,
			RetailerID:   res.Retailer.ID,
			Title:        res.Listing.Title,
			URL:          res.Listing.RawListing.URL,
			Snippet:      res.Listing.Snippet,
			MatchScore:   res.Listing.MatchScore,
			Verification: toVerificationDTO(res.Verification),
		})
	}
	return out
}

func toVerificationDTO(v verify.Result) VerificationDTO {
	return VerificationDTO{
		Status:     string(v.Status),
		HTTPStatus: v.HTTPStatus,
		LatencyMs:  v.Latency.Milliseconds(),
		PageTitle:  v.PageTitle,
	}
}
