package search

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
)

// ErrorKind classifies a failed search-index call.
type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	KindRateLimited
	KindUnauthorized
	KindTimeout
	KindMalformed
)

func (k ErrorKind) String() string {
	switch k {
	case KindRateLimited:
		return "rate_limited"
	case KindUnauthorized:
		return "unauthorized"
	case KindTimeout:
		return "timeout"
	case KindMalformed:
		return "malformed"
	default:
		return "unknown"
	}
}

// Error is a typed per-retailer search failure. It is recovered locally by
// the dispatcher and never fails the whole request.
type Error struct {
	Kind       ErrorKind
	RetailerID string
	Err        error
}

func (e *Error) Error() string {
	return fmt.Sprintf("search %s: %s: %v", e.RetailerID, e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Retryable reports whether the dispatcher may retry this failure.
// Unauthorized and malformed responses will not get better on retry.
func (e *Error) Retryable() bool {
	return e.Kind == KindRateLimited || e.Kind == KindTimeout
}

// classify wraps a client failure into a typed *Error for the given
// retailer. Already-typed errors only gain the retailer id.
func classify(retailerID string, err error) *Error {
	var typed *Error
	if errors.As(err, &typed) {
		if typed.RetailerID == "" {
			typed.RetailerID = retailerID
		}
		return typed
	}
	return &Error{Kind: kindOf(err), RetailerID: retailerID, Err: err}
}

// kindOf maps a transport, decode or status failure onto the taxonomy.
func kindOf(err error) ErrorKind {
	var se *statusError
	if errors.As(err, &se) {
		switch {
		case se.code == 429:
			return KindRateLimited
		case se.code == 401 || se.code == 403:
			return KindUnauthorized
		case se.code == 400:
			return KindMalformed
		default:
			return KindUnknown
		}
	}

	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
		return KindMalformed
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return KindTimeout
	}
	return KindUnknown
}
