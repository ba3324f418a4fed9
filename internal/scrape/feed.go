package scrape

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// FeedOptions configures feed iteration.
type FeedOptions struct {
	// Fields is passed to each video the feed yields; empty requests all.
	Fields []Field
	// Crawl continues onto subsequent pages once the current page is
	// exhausted, when the suite supports it.
	Crawl bool
	// MaxResults caps the number of yielded videos; 0 means no cap.
	MaxResults int
	// APIKeys is passed to each yielded video.
	APIKeys map[string]string
	// LastModified and Etag seed conditional-fetch headers for the first
	// request; the first response's values replace them.
	LastModified time.Time
	Etag         string
}

// Feed iterates the videos of a provider feed. "Feed" means any paginated
// list of videos at a url: an RSS/Atom document, an API listing, or a
// scraped video list page, whatever the suite fetches.
//
// Meta is frozen from the first page's response and never refreshed.
// A Feed is forward-only and not restartable; build a new one to
// re-iterate.
type Feed struct {
	URL  string
	Meta PageMeta

	feedSuite Suite
	client    *Client
	iterator
}

// NewFeed builds a feed iterator for an explicitly chosen suite. The suite
// must classify the url as a feed url. No fetch happens until the first
// Next call.
func NewFeed(client *Client, suite Suite, feedURL string, opts FeedOptions) (*Feed, error) {
	if suite == nil {
		return nil, ErrCantIdentifyURL
	}
	ok, err := suite.HandlesFeedURL(feedURL)
	if err == nil && !ok {
		return nil, ErrCantIdentifyURL
	}
	f := &Feed{
		URL:       feedURL,
		feedSuite: suite,
		client:    client,
	}
	f.Meta.LastModified = opts.LastModified
	f.Meta.Etag = opts.Etag
	f.iterator = iterator{
		src:        f,
		id:         uuid.NewString(),
		fields:     opts.Fields,
		apiKeys:    opts.APIKeys,
		crawl:      opts.Crawl,
		maxResults: opts.MaxResults,
	}
	return f, nil
}

// Feed resolves the suite for feedURL and builds a feed iterator.
func (r *Registry) Feed(client *Client, feedURL string, opts FeedOptions) (*Feed, error) {
	suite, err := r.SuiteForFeedURL(feedURL)
	if err != nil {
		return nil, err
	}
	return NewFeed(client, suite, feedURL, opts)
}

// Next returns the next video in the feed, or Done when the feed is
// exhausted. Stopping early is the way to cancel: no further page is
// fetched once the consumer stops calling Next.
func (f *Feed) Next(ctx context.Context) (*Video, error) {
	return f.next(ctx)
}

// Suite returns the suite driving this feed.
func (f *Feed) Suite() Suite { return f.feedSuite }

// Client returns the fetch client, for suite page fetchers.
func (f *Feed) Client() *Client { return f.client }

// ConditionalHeader builds If-Modified-Since / If-None-Match headers from
// the current meta, for suites whose providers honor them.
func (f *Feed) ConditionalHeader() http.Header {
	h := make(http.Header)
	if !f.Meta.LastModified.IsZero() {
		h.Set("If-Modified-Since", f.Meta.LastModified.UTC().Format(http.TimeFormat))
	}
	if f.Meta.Etag != "" {
		h.Set("If-None-Match", f.Meta.Etag)
	}
	return h
}

// EmittedCount reports how many videos have been yielded so far.
func (f *Feed) EmittedCount() int { return f.count }

// APIKeys returns the provider keys the feed was configured with.
func (f *Feed) APIKeys() map[string]string { return f.apiKeys }

func (f *Feed) suite() Suite { return f.feedSuite }
func (f *Feed) kind() string { return "feed" }

func (f *Feed) firstURL() (string, error) { return f.URL, nil }

func (f *Feed) fetchPage(ctx context.Context, pageURL string) (*Page, error) {
	metrics.FeedPages.Add(1)
	return f.feedSuite.GetFeedPage(ctx, f, pageURL)
}

func (f *Feed) parseItem(item any) (map[Field]any, error) {
	return f.feedSuite.ParseFeedEntry(item)
}

func (f *Feed) nextPageURL(page *Page) (string, error) {
	return f.feedSuite.NextFeedPageURL(f, page)
}

func (f *Feed) freezeMeta(page *Page) { f.Meta = page.Meta }
