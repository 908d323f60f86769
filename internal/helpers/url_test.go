package helpers

import "testing"

func TestCanonicalURL(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "defaults https and cleans path",
			in:   "Amazon.co.uk/dp/../gp/product/B0TEST",
			want: "https://amazon.co.uk/gp/product/B0TEST",
		},
		{
			name: "removes default port fragment and tracking params",
			in:   "http://www.currys.co.uk:80/laptops/dell-xps-13?sku=123&utm_source=cse#reviews",
			want: "http://www.currys.co.uk/laptops/dell-xps-13?sku=123",
		},
		{
			name: "sorts query parameters and preserves trailing slash",
			in:   "https://argos.co.uk/product/9914/?b=2&a=1&fbclid=xyz",
			want: "https://argos.co.uk/product/9914/?a=1&b=2",
		},
		{
			name: "schemeless with double slash",
			in:   "//johnlewis.com/dell-xps-13/p111?gclid=abc",
			want: "https://johnlewis.com/dell-xps-13/p111",
		},
		{
			name: "normalises repeated slashes",
			in:   "https://boots.com//beauty//skincare///serum",
			want: "https://boots.com/beauty/skincare/serum",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CanonicalURL(tt.in)
			if err != nil {
				t.Fatalf("CanonicalURL() error = %v", err)
			}
			if got != tt.want {
				t.Fatalf("CanonicalURL() got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCanonicalURLErrors(t *testing.T) {
	t.Parallel()
	for _, in := range []string{"", "   ", "https://"} {
		if _, err := CanonicalURL(in); err == nil {
			t.Errorf("CanonicalURL(%q) expected error", in)
		}
	}
}

func TestIsProbeable(t *testing.T) {
	t.Parallel()
	tests := []struct {
		in   string
		want bool
	}{
		{"https://amazon.co.uk/dp/B0TEST", true},
		{"http://tesco.com/groceries", true},
		{"ftp://example.com/file", false},
		{"mailto:help@example.com", false},
		{"javascript:void(0)", false},
		{"/relative/path", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := IsProbeable(tt.in); got != tt.want {
			t.Errorf("IsProbeable(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
