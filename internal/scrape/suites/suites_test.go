package suites

import (
	"io"
	"net/http"
	"strings"

	"vidscrape/internal/scrape"
)

type roundTripFunc func(req *http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

// newFakeClient builds a fetch client whose transport answers from handler
// instead of the network.
func newFakeClient(handler func(req *http.Request) (status int, body string)) *scrape.Client {
	rt := roundTripFunc(func(req *http.Request) (*http.Response, error) {
		status, body := handler(req)
		return &http.Response{
			StatusCode: status,
			Body:       io.NopCloser(strings.NewReader(body)),
			Header:     make(http.Header),
			Request:    req,
		}, nil
	})
	return scrape.NewClient(scrape.Config{
		HTTPClient: &http.Client{Transport: rt},
		UserAgent:  "test",
	})
}
