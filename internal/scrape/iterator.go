package scrape

import (
	"context"
	"errors"
	"log/slog"
)

// pageSource is what Feed and Search plug into the shared crawl engine:
// where to start, how to fetch and decode one page, how to turn a raw item
// into field data, and where the next page lives.
type pageSource interface {
	suite() Suite
	kind() string
	firstURL() (string, error)
	fetchPage(ctx context.Context, pageURL string) (*Page, error)
	parseItem(item any) (map[Field]any, error)
	nextPageURL(page *Page) (string, error)
	freezeMeta(page *Page)
}

// iterator drives the page cursor shared by feeds and searches. The
// sequence it produces is lazy, forward-only and not restartable; pages are
// fetched strictly in order, exactly once, and never beyond what the
// consumer pulls or the max-results cap allows.
type iterator struct {
	src        pageSource
	id         string // crawl-session correlation id for log lines
	fields     []Field
	apiKeys    map[string]string
	crawl      bool
	maxResults int // 0 = unlimited

	started bool
	first   bool // first page fetched, meta frozen
	pageURL string
	page    *Page
	idx     int
	count   int
	done    bool
}

// next yields the following video in the sequence, or Done on exhaustion.
// Any fetch or parse error terminates the sequence; videos already yielded
// remain valid.
func (it *iterator) next(ctx context.Context) (*Video, error) {
	if it.done {
		return nil, Done
	}
	if !it.started {
		u, err := it.src.firstURL()
		if errors.Is(err, ErrUnsupported) {
			// The suite cannot produce this sequence at all; an empty
			// sequence, not a failure.
			it.done = true
			return nil, Done
		}
		if err != nil {
			it.done = true
			return nil, err
		}
		it.pageURL = u
		it.started = true
	}

	for {
		if it.page == nil {
			if v, err := it.fetchNextPage(ctx); v != nil || err != nil {
				return v, err
			}
		}

		if it.idx < len(it.page.Entries) {
			entry := it.page.Entries[it.idx]
			it.idx++
			v, err := it.materialize(entry)
			if err != nil {
				it.done = true
				return nil, err
			}
			it.count++
			// Strict upper bound, checked after every emission: once the
			// cap is reached no further page is fetched.
			if it.maxResults > 0 && it.count >= it.maxResults {
				it.done = true
			}
			return v, nil
		}

		// Page exhausted. Continue only when crawling is on and the suite
		// knows a next page.
		if !it.crawl {
			it.done = true
			return nil, Done
		}
		nextURL, err := it.src.nextPageURL(it.page)
		if err != nil && !errors.Is(err, ErrUnsupported) {
			it.done = true
			return nil, err
		}
		if nextURL == "" || errors.Is(err, ErrUnsupported) {
			it.done = true
			return nil, Done
		}
		it.pageURL = nextURL
		it.page = nil
	}
}

// fetchNextPage fetches it.pageURL and installs it as the current page.
// Returns (nil, nil) when iteration should proceed into the new page.
func (it *iterator) fetchNextPage(ctx context.Context) (*Video, error) {
	slog.Debug("fetching page",
		slog.String("kind", it.src.kind()),
		slog.String("crawl_id", it.id),
		slog.String("url", it.pageURL),
		slog.Int("emitted", it.count),
	)
	page, err := it.src.fetchPage(ctx, it.pageURL)
	if errors.Is(err, ErrUnsupported) {
		it.done = true
		return nil, Done
	}
	if err != nil {
		it.done = true
		return nil, err
	}
	page.URL = it.pageURL
	if !it.first {
		it.first = true
		it.src.freezeMeta(page)
	}
	// An empty page ends the crawl even when a next-page url would be
	// computable.
	if len(page.Entries) == 0 {
		it.done = true
		return nil, Done
	}
	it.page = page
	it.idx = 0
	return nil, nil
}

// materialize turns one raw item into a video record: parse it, construct
// a record for its canonical link, and merge the parsed data
// (first-writer-wins, same rule the planner uses).
func (it *iterator) materialize(entry any) (*Video, error) {
	data, err := it.src.parseItem(entry)
	if err != nil {
		return nil, &ParseError{Suite: it.src.suite().Name(), What: it.src.kind() + " item", Err: err}
	}
	link, _ := data[FieldLink].(string)
	if link == "" {
		return nil, &ParseError{Suite: it.src.suite().Name(), What: it.src.kind() + " item", Err: errItemWithoutLink}
	}
	v, err := NewVideo(link, it.src.suite(), it.fields, it.apiKeys)
	if err != nil {
		return nil, err
	}
	if err := v.apply(data); err != nil {
		return nil, &ParseError{Suite: it.src.suite().Name(), What: it.src.kind() + " item", Err: err}
	}
	return v, nil
}

var errItemWithoutLink = errors.New("item has no link")
