// Package verify performs live reachability probes against candidate
// listing URLs. Verification is total: every submitted URL yields exactly
// one Result.
package verify

import (
	"context"
	"errors"
	"io"
	"log"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-shiori/go-readability"
	"golang.org/x/sync/errgroup"

	"github.com/mohammad-safakhou/pricepilot/config"
	"github.com/mohammad-safakhou/pricepilot/internal/helpers"
)

// Status is the terminal verification state of one URL.
type Status string

const (
	StatusVerified    Status = "verified"
	StatusUnreachable Status = "unreachable"
	StatusTimedOut    Status = "timed_out"
	StatusSkipped     Status = "skipped"
)

// Result is the outcome of probing one URL.
type Result struct {
	URL        string        `json:"url"`
	Status     Status        `json:"status"`
	HTTPStatus int           `json:"http_status,omitempty"`
	Latency    time.Duration `json:"latency,omitempty"`
	PageTitle  string        `json:"page_title,omitempty"`
	Detail     string        `json:"detail,omitempty"`
}

// maxTitleBody bounds how much of a fallback GET body is read for title
// extraction.
const maxTitleBody = 256 << 10

// Verifier probes URLs with bounded concurrency, per-attempt timeouts and
// retry with exponential backoff on transient failures.
type Verifier struct {
	client         *http.Client
	logger         *log.Logger
	workers        int
	attempts       int
	attemptTimeout time.Duration
	backoff        time.Duration
	deadline       time.Duration
	userAgent      string
	fetchTitle     bool
}

func New(cfg config.VerifyConfig, logger *log.Logger) *Verifier {
	if logger == nil {
		logger = log.New(log.Writer(), "[VERIFY] ", log.LstdFlags)
	}
	return &Verifier{
		client: &http.Client{
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 4,
				IdleConnTimeout:     30 * time.Second,
			},
		},
		logger:         logger,
		workers:        cfg.Workers,
		attempts:       cfg.Attempts,
		attemptTimeout: cfg.AttemptTimeout,
		backoff:        cfg.Backoff,
		deadline:       cfg.Deadline,
		userAgent:      cfg.UserAgent,
		fetchTitle:     cfg.FetchTitle,
	}
}

// VerifyAll probes the given (already deduplicated) URLs through a worker
// pool and returns one Result per URL. The verifier's deadline is a hard
// ceiling: URLs still in flight when it expires are reported TimedOut and
// their probes abandoned.
func (v *Verifier) VerifyAll(ctx context.Context, urls []string) map[string]Result {
	results := make(map[string]Result, len(urls))
	if len(urls) == 0 {
		return results
	}

	poolCtx, cancel := context.WithTimeout(ctx, v.deadline)
	defer cancel()

	out := make(chan Result, len(urls))
	var g errgroup.Group
	g.SetLimit(v.workers)
	for _, u := range urls {
		g.Go(func() error {
			out <- v.Verify(poolCtx, u)
			return nil
		})
	}
	done := make(chan struct{})
	go func() {
		_ = g.Wait()
		close(done)
	}()

collect:
	for range urls {
		select {
		case res := <-out:
			results[res.URL] = res
		case <-poolCtx.Done():
			break collect
		}
	}
	// Deadline expired: whatever has not reported is timed out.
	for _, u := range urls {
		if _, ok := results[u]; !ok {
			results[u] = Result{URL: u, Status: StatusTimedOut, Detail: "verification deadline exceeded"}
		}
	}
	return results
}

// Verify probes a single URL. Non-http(s) URLs are Skipped by policy.
func (v *Verifier) Verify(ctx context.Context, rawURL string) Result {
	if !helpers.IsProbeable(rawURL) {
		return Result{URL: rawURL, Status: StatusSkipped, Detail: "non-http scheme"}
	}

	var last Result
	for attempt := 0; attempt < v.attempts; attempt++ {
		if ctx.Err() != nil {
			return Result{URL: rawURL, Status: StatusTimedOut, Detail: "verification deadline exceeded"}
		}

		res, transient := v.probe(ctx, rawURL)
		if !transient {
			return res
		}
		last = res

		if attempt < v.attempts-1 {
			select {
			case <-time.After(v.backoff * time.Duration(1<<attempt)):
			case <-ctx.Done():
				return Result{URL: rawURL, Status: StatusTimedOut, Detail: "verification deadline exceeded"}
			}
		}
	}
	return last
}

// probe performs one verification attempt: HEAD first, then a ranged GET
// when the target rejects HEAD. The second return value reports whether
// the failure is transient and worth retrying.
func (v *Verifier) probe(ctx context.Context, rawURL string) (Result, bool) {
	attemptCtx, cancel := context.WithTimeout(ctx, v.attemptTimeout)
	defer cancel()

	start := time.Now()
	resp, err := v.do(attemptCtx, http.MethodHead, rawURL)
	if err == nil && (resp.StatusCode == http.StatusMethodNotAllowed || resp.StatusCode == http.StatusNotImplemented) {
		resp.Body.Close()
		resp, err = v.do(attemptCtx, http.MethodGet, rawURL)
	}
	if err != nil {
		// HEAD may be dropped outright by picky servers; give GET one shot
		// within the same attempt before classifying.
		if attemptCtx.Err() == nil {
			resp, err = v.do(attemptCtx, http.MethodGet, rawURL)
		}
	}
	latency := time.Since(start)

	if err != nil {
		return v.classifyFailure(rawURL, latency, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 400:
		res := Result{URL: rawURL, Status: StatusVerified, HTTPStatus: resp.StatusCode, Latency: latency}
		if v.fetchTitle && resp.Request.Method == http.MethodGet {
			res.PageTitle = extractTitle(resp)
		}
		return res, false
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		return Result{URL: rawURL, Status: StatusUnreachable, HTTPStatus: resp.StatusCode, Latency: latency}, false
	default: // 5xx: transient
		return Result{URL: rawURL, Status: StatusUnreachable, HTTPStatus: resp.StatusCode, Latency: latency,
			Detail: "server error"}, true
	}
}

func (v *Verifier) do(ctx context.Context, method, rawURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, rawURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", v.userAgent)
	if method == http.MethodGet {
		req.Header.Set("Range", "bytes=0-262143")
	}
	return v.client.Do(req)
}

// classifyFailure folds a transport error into a Result, reporting whether
// a retry could help.
func (v *Verifier) classifyFailure(rawURL string, latency time.Duration, err error) (Result, bool) {
	if errors.Is(err, context.DeadlineExceeded) {
		return Result{URL: rawURL, Status: StatusTimedOut, Latency: latency, Detail: "attempt timed out"}, true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return Result{URL: rawURL, Status: StatusTimedOut, Latency: latency, Detail: "attempt timed out"}, true
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return Result{URL: rawURL, Status: StatusUnreachable, Latency: latency, Detail: "dns failure"}, !dnsErr.IsNotFound
	}
	// Connection resets and refusals are retried once; they often clear.
	return Result{URL: rawURL, Status: StatusUnreachable, Latency: latency, Detail: err.Error()}, true
}

// extractTitle pulls the page title out of an HTML fallback-GET body.
// Best effort only; verification never fails because of it.
func extractTitle(resp *http.Response) string {
	ct := resp.Header.Get("Content-Type")
	if ct != "" && !strings.Contains(ct, "html") {
		return ""
	}
	pageURL, err := url.Parse(resp.Request.URL.String())
	if err != nil {
		return ""
	}
	article, err := readability.FromReader(io.LimitReader(resp.Body, maxTitleBody), pageURL)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(article.Title)
}
