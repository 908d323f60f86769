// Package retailer holds the static registry of storefronts the service
// searches across. The registry is built once at startup and read-only
// afterwards.
package retailer

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mohammad-safakhou/pricepilot/config"
)

// ErrConfig marks a malformed retailer configuration. It is fatal at
// startup and never raised per-request.
var ErrConfig = errors.New("invalid retailer configuration")

// Retailer is one configured storefront, scoped by a site filter applied
// to the shared search index.
type Retailer struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	SiteFilter  string `json:"site_filter"`
}

// HomepageURL derives the storefront root from the site filter, used by
// the availability sweep.
func (r Retailer) HomepageURL() string {
	domain := strings.TrimSpace(strings.TrimPrefix(r.SiteFilter, "site:"))
	return "https://" + domain + "/"
}

// Registry is an ordered, immutable set of retailers. Order is the
// configuration order and is the tie-break order downstream.
type Registry struct {
	retailers []Retailer
	position  map[string]int
}

// NewRegistry validates the configured retailers and freezes them into a
// registry.
func NewRegistry(entries []config.RetailerConfig) (*Registry, error) {
	if len(entries) == 0 {
		return nil, fmt.Errorf("%w: no retailers configured", ErrConfig)
	}
	reg := &Registry{
		retailers: make([]Retailer, 0, len(entries)),
		position:  make(map[string]int, len(entries)),
	}
	for i, e := range entries {
		id := strings.TrimSpace(e.ID)
		filter := strings.TrimSpace(e.SiteFilter)
		if id == "" {
			return nil, fmt.Errorf("%w: retailer %d: missing id", ErrConfig, i)
		}
		if filter == "" {
			return nil, fmt.Errorf("%w: retailer %q: missing site_filter", ErrConfig, id)
		}
		if _, dup := reg.position[id]; dup {
			return nil, fmt.Errorf("%w: duplicate retailer id %q", ErrConfig, id)
		}
		name := strings.TrimSpace(e.DisplayName)
		if name == "" {
			name = id
		}
		reg.position[id] = len(reg.retailers)
		reg.retailers = append(reg.retailers, Retailer{ID: id, DisplayName: name, SiteFilter: filter})
	}
	return reg, nil
}

// List returns the retailers in registry order. The returned slice is a
// copy; callers cannot mutate the registry.
func (r *Registry) List() []Retailer {
	out := make([]Retailer, len(r.retailers))
	copy(out, r.retailers)
	return out
}

// Len returns the number of registered retailers.
func (r *Registry) Len() int { return len(r.retailers) }

// Get returns the retailer with the given id.
func (r *Registry) Get(id string) (Retailer, bool) {
	i, ok := r.position[id]
	if !ok {
		return Retailer{}, false
	}
	return r.retailers[i], true
}

// Position returns the registry-order index of the given retailer id, or
// Len() for unknown ids so they always sort last.
func (r *Registry) Position(id string) int {
	if i, ok := r.position[id]; ok {
		return i
	}
	return len(r.retailers)
}
