package search

import (
	"context"
	"log"
	"time"

	"github.com/mohammad-safakhou/pricepilot/config"
	"github.com/mohammad-safakhou/pricepilot/internal/retailer"
)

// Outcome is the terminal per-retailer dispatch result: either listings or
// a typed error, never both, never neither.
type Outcome struct {
	RetailerID string
	Listings   []RawListing
	Err        *Error
}

// Dispatcher fans one search call per retailer out concurrently and
// collects results with partial-failure tolerance. Every dispatch returns
// exactly one Outcome per retailer.
type Dispatcher struct {
	client Client
	logger *log.Logger

	maxConcurrent    int
	maxAttempts      int
	backoff          time.Duration
	retailerTimeout  time.Duration
	aggregateTimeout time.Duration
}

func NewDispatcher(client Client, cfg config.DispatchConfig, searchCfg config.SearchConfig, logger *log.Logger) *Dispatcher {
	if logger == nil {
		logger = log.New(log.Writer(), "[DISPATCH] ", log.LstdFlags)
	}
	return &Dispatcher{
		client:           client,
		logger:           logger,
		maxConcurrent:    cfg.MaxConcurrent,
		maxAttempts:      searchCfg.MaxAttempts,
		backoff:          searchCfg.Backoff,
		retailerTimeout:  cfg.RetailerTimeout,
		aggregateTimeout: cfg.AggregateTimeout,
	}
}

// Dispatch runs the per-retailer fan-out. Retryable failures (rate limited,
// timeout) are retried with exponential backoff up to the attempt budget;
// the aggregate deadline is a hard ceiling after which unanswered retailers
// are marked timed out and their in-flight work is abandoned.
func (d *Dispatcher) Dispatch(ctx context.Context, q Query, retailers []retailer.Retailer) map[string]Outcome {
	aggCtx, cancel := context.WithTimeout(ctx, d.aggregateTimeout)
	defer cancel()

	sem := make(chan struct{}, d.maxConcurrent)
	results := make(chan Outcome, len(retailers))

	for _, rt := range retailers {
		go func(rt retailer.Retailer) {
			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-aggCtx.Done():
				results <- Outcome{RetailerID: rt.ID, Err: classify(rt.ID, aggCtx.Err())}
				return
			}
			results <- d.searchOne(aggCtx, rt, q)
		}(rt)
	}

	collected := make(map[string]Outcome, len(retailers))
	for range retailers {
		select {
		case out := <-results:
			collected[out.RetailerID] = out
		case <-aggCtx.Done():
		}
		if aggCtx.Err() != nil {
			break
		}
	}

	// Scoop anything that was already delivered before the deadline fired.
drain:
	for {
		select {
		case out := <-results:
			collected[out.RetailerID] = out
		default:
			break drain
		}
	}

	// Best-effort collection: whoever missed the deadline is a timeout.
	for _, rt := range retailers {
		if _, ok := collected[rt.ID]; !ok {
			collected[rt.ID] = Outcome{
				RetailerID: rt.ID,
				Err:        &Error{Kind: KindTimeout, RetailerID: rt.ID, Err: context.DeadlineExceeded},
			}
		}
	}
	return collected
}

// searchOne runs the bounded retry loop for a single retailer.
func (d *Dispatcher) searchOne(ctx context.Context, rt retailer.Retailer, q Query) Outcome {
	var lastErr *Error
	for attempt := 0; attempt < d.maxAttempts; attempt++ {
		callCtx, cancel := context.WithTimeout(ctx, d.retailerTimeout)
		listings, err := d.client.Search(callCtx, rt, q)
		cancel()
		if err == nil {
			return Outcome{RetailerID: rt.ID, Listings: listings}
		}

		lastErr = classify(rt.ID, err)
		if !lastErr.Retryable() || attempt == d.maxAttempts-1 {
			break
		}
		d.logger.Printf("retrying %s after %s (attempt %d/%d)", rt.ID, lastErr.Kind, attempt+1, d.maxAttempts)
		select {
		case <-time.After(d.backoff * time.Duration(1<<attempt)):
		case <-ctx.Done():
			return Outcome{RetailerID: rt.ID, Err: classify(rt.ID, ctx.Err())}
		}
	}
	return Outcome{RetailerID: rt.ID, Err: lastErr}
}
