package scrape

import (
	"errors"
	"fmt"
)

// ErrCantIdentifyURL is returned when no registered suite claims a URL.
var ErrCantIdentifyURL = errors.New("no suite identifies this url")

// ErrUnsupported signals that a suite does not implement an optional
// capability. The planner and iterators treat it as "this strategy or
// page link is unavailable"; it is never surfaced to callers as a failure.
var ErrUnsupported = errors.New("capability not supported by suite")

// Done is returned by Feed.Next and Search.Next when the sequence is
// exhausted. It is not an error in the failure sense.
var Done = errors.New("no more videos")

// FetchError wraps a failed HTTP fetch: either a transport error or a
// non-success status code. Fetches are not retried.
type FetchError struct {
	URL        string
	StatusCode int // 0 when the request never produced a response
	Err        error
}

func (e *FetchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
	}
	return fmt.Sprintf("fetch %s: status %d", e.URL, e.StatusCode)
}

func (e *FetchError) Unwrap() error { return e.Err }

// ParseError wraps a malformed response body. It aborts the current
// resolution or iteration step exactly like a FetchError.
type ParseError struct {
	Suite string
	What  string // which payload failed: "oembed", "api", "scrape", "feed entry", ...
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: parse %s: %v", e.Suite, e.What, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }
