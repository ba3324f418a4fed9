package scrape

import (
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

var errTooManyRedirects = errors.New("stopped after 10 redirects")

// maxBodyBytes caps response bodies; provider pages and API payloads are
// small, anything bigger is garbage.
const maxBodyBytes = 8 * 1024 * 1024

var userAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.4 Safari/605.1.15",
}

// randomUserAgent picks a browser-like agent per request.
func randomUserAgent() string {
	return userAgents[rand.Intn(len(userAgents))]
}

// Client performs the blocking, bounded-timeout fetches for planners and
// iterators. It does not retry, cache, or parallelize; a failed fetch
// aborts the unit of work that issued it.
type Client struct {
	httpClient *http.Client
	timeout    time.Duration
	userAgent  string
	limiter    *rate.Limiter
}

// NewClient builds a fetch client from cfg.
func NewClient(cfg Config) *Client {
	c := &Client{
		httpClient: cfg.HTTPClient,
		timeout:    cfg.FetchTimeout,
		userAgent:  cfg.UserAgent,
	}
	if c.httpClient == nil {
		c.httpClient = newHTTPClient()
	}
	if c.timeout <= 0 {
		c.timeout = defaultFetchTimeout
	}
	if cfg.RequestsPerSecond > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1)
	}
	return c
}

// Get fetches rawURL and returns the decoded body. Extra headers (e.g.
// If-None-Match for conditional feed fetches) may be nil.
func (c *Client) Get(ctx context.Context, rawURL string, header http.Header) ([]byte, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	ua := c.userAgent
	if ua == "" {
		ua = randomUserAgent()
	}
	req.Header.Set("User-Agent", ua)
	if req.Header.Get("Accept") == "" {
		req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,application/json;q=0.9,*/*;q=0.8")
	}
	req.Header.Set("Accept-Encoding", "gzip")

	incrFetch()
	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		incrFetchError()
		return nil, &FetchError{URL: rawURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		incrFetchError()
		return nil, &FetchError{URL: rawURL, StatusCode: resp.StatusCode}
	}

	body, err := readBody(resp)
	if err != nil {
		incrFetchError()
		return nil, &FetchError{URL: rawURL, StatusCode: resp.StatusCode, Err: err}
	}

	slog.Debug("fetched",
		slog.String("url", rawURL),
		slog.Int("status", resp.StatusCode),
		slog.Int("bytes", len(body)),
		slog.Duration("elapsed", time.Since(start)),
	)
	return body, nil
}

// readBody reads the response body, handling gzip decompression when the
// transport did not do it for us.
func readBody(resp *http.Response) ([]byte, error) {
	var r io.Reader = resp.Body
	if resp.Header.Get("Content-Encoding") == "gzip" {
		gz, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, err
		}
		defer gz.Close()
		r = gz
	}
	return io.ReadAll(io.LimitReader(r, maxBodyBytes))
}
