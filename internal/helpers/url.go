package helpers

import (
	"errors"
	"net/url"
	"path"
	"strings"
)

var trackingQueryParams = map[string]struct{}{
	"utm_source":   {},
	"utm_medium":   {},
	"utm_campaign": {},
	"utm_term":     {},
	"utm_content":  {},
	"utm_id":       {},
	"gclid":        {},
	"dclid":        {},
	"fbclid":       {},
	"msclkid":      {},
	"igshid":       {},
	"ref":          {},
	"tag":          {},
}

// CanonicalURL normalises a listing URL for cross-retailer deduplication.
// It lowercases scheme/host, removes default ports, strips fragments and
// tracking query parameters, cleans the path and re-encodes remaining query
// parameters in sorted order. Schemeless input defaults to https.
func CanonicalURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", errors.New("empty url")
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	if parsed.Scheme == "" && parsed.Host == "" {
		if strings.HasPrefix(raw, "//") {
			parsed, err = url.Parse("https:" + raw)
		} else {
			parsed, err = url.Parse("https://" + raw)
		}
		if err != nil {
			return "", err
		}
	}

	if parsed.Scheme == "" {
		parsed.Scheme = "https"
	}
	parsed.Scheme = strings.ToLower(parsed.Scheme)

	host := strings.ToLower(parsed.Host)
	if host == "" {
		return "", errors.New("url missing host")
	}
	if h, port, ok := strings.Cut(host, ":"); ok {
		if (parsed.Scheme == "http" && port == "80") || (parsed.Scheme == "https" && port == "443") {
			host = h
		}
	}
	parsed.Host = host

	hadTrailingSlash := strings.HasSuffix(parsed.Path, "/")
	cleaned := path.Clean(parsed.Path)
	if cleaned == "." || cleaned == "" {
		cleaned = "/"
	}
	if !strings.HasPrefix(cleaned, "/") {
		cleaned = "/" + cleaned
	}
	if cleaned != "/" && hadTrailingSlash {
		cleaned += "/"
	}
	parsed.Path = cleaned

	parsed.Fragment = ""
	query := parsed.Query()
	for key := range query {
		if _, drop := trackingQueryParams[strings.ToLower(key)]; drop {
			query.Del(key)
		}
	}
	// Encode sorts keys, which keeps canonical forms deterministic.
	parsed.RawQuery = query.Encode()

	return parsed.String(), nil
}

// IsProbeable reports whether a URL may be submitted to the link verifier.
// Only absolute http/https URLs with a host qualify; anything else is
// excluded by policy.
func IsProbeable(raw string) bool {
	parsed, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return false
	}
	scheme := strings.ToLower(parsed.Scheme)
	return (scheme == "http" || scheme == "https") && parsed.Host != ""
}
