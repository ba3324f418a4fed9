package scrape

import (
	"context"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// condSuite fetches feed pages through the client with conditional headers,
// the way the provider suites do.
type condSuite struct {
	*fakeSuite
}

func (s *condSuite) GetFeedPage(ctx context.Context, f *Feed, pageURL string) (*Page, error) {
	if _, err := f.Client().Get(ctx, pageURL, f.ConditionalHeader()); err != nil {
		return nil, err
	}
	return s.fakeSuite.page(pageURL)
}

func TestFeedConditionalFetch(t *testing.T) {
	var sent []http.Header
	client := NewClient(Config{
		HTTPClient: &http.Client{
			Transport: roundTripFunc(func(req *http.Request) (*http.Response, error) {
				sent = append(sent, req.Header.Clone())
				return &http.Response{
					StatusCode: http.StatusOK,
					Body:       io.NopCloser(strings.NewReader("{}")),
					Header:     make(http.Header),
				}, nil
			}),
		},
	})

	inner := newFakeSuite("s")
	inner.feedPages(2, 1)
	fresh := time.Date(2025, 3, 4, 5, 6, 7, 0, time.UTC)
	inner.pages[0].Meta.LastModified = fresh
	inner.pages[0].Meta.Etag = `"fresh"`
	suite := &condSuite{fakeSuite: inner}

	seed := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	feed, err := NewFeed(client, suite, inner.firstFeedURL(), FeedOptions{
		Crawl:        true,
		LastModified: seed,
		Etag:         `"stale"`,
	})
	require.NoError(t, err)

	h := feed.ConditionalHeader()
	assert.Equal(t, seed.UTC().Format(http.TimeFormat), h.Get("If-Modified-Since"))
	assert.Equal(t, `"stale"`, h.Get("If-None-Match"))

	videos := collect(t, feed.Next)
	require.Len(t, videos, 2)
	require.Len(t, sent, 2)

	// The seeds ride on the first fetch only; the first response's meta
	// replaces them, so the second fetch carries the fresh validators.
	assert.Equal(t, seed.UTC().Format(http.TimeFormat), sent[0].Get("If-Modified-Since"))
	assert.Equal(t, `"stale"`, sent[0].Get("If-None-Match"))

	assert.True(t, feed.Meta.LastModified.Equal(fresh))
	assert.Equal(t, `"fresh"`, feed.Meta.Etag)
	assert.Equal(t, fresh.UTC().Format(http.TimeFormat), sent[1].Get("If-Modified-Since"))
	assert.Equal(t, `"fresh"`, sent[1].Get("If-None-Match"))
}

func TestFeedConditionalHeaderEmptyWithoutSeeds(t *testing.T) {
	suite := newFakeSuite("s")
	suite.feedPages(1, 1)

	feed := newTestFeed(t, suite, FeedOptions{})
	h := feed.ConditionalHeader()
	assert.Empty(t, h.Get("If-Modified-Since"))
	assert.Empty(t, h.Get("If-None-Match"))
}
