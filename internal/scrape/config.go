package scrape

import (
	"net/http"
	"time"
)

// Config controls the fetch layer. It is injected into NewClient; nothing
// in this package reads process-wide state.
type Config struct {
	// FetchTimeout bounds every single network call. Defaults to 10s.
	FetchTimeout time.Duration
	// UserAgent is sent on every request. Defaults to a rotating
	// browser-like agent.
	UserAgent string
	// RequestsPerSecond throttles outgoing fetches across the client.
	// Zero disables throttling.
	RequestsPerSecond float64
	// HTTPClient overrides the default transport. Its own timeout is left
	// alone; FetchTimeout is applied per request via context.
	HTTPClient *http.Client
}

const defaultFetchTimeout = 10 * time.Second

// newHTTPClient mirrors the transport settings we want for polite
// scraping: modest connection reuse, bounded redirects.
func newHTTPClient() *http.Client {
	return &http.Client{
		Transport: &http.Transport{
			MaxIdleConns:        10,
			MaxIdleConnsPerHost: 5,
			IdleConnTimeout:     30 * time.Second,
			TLSHandshakeTimeout: 15 * time.Second,
		},
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= 10 {
				return &FetchError{URL: req.URL.String(), Err: errTooManyRedirects}
			}
			return nil
		},
	}
}
