package scrape

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"sync/atomic"
)

// Shared test doubles for the planner, iterator and registry tests.

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

// newTestClient returns a Client whose transport answers every request with
// 200 and an empty body, counting requests.
func newTestClient(requests *atomic.Int64) *Client {
	return NewClient(Config{
		HTTPClient: &http.Client{
			Transport: roundTripFunc(func(req *http.Request) (*http.Response, error) {
				if requests != nil {
					requests.Add(1)
				}
				return &http.Response{
					StatusCode: http.StatusOK,
					Body:       io.NopCloser(strings.NewReader("{}")),
					Header:     make(http.Header),
				}, nil
			}),
		},
	})
}

// fakeSuite is a fully scriptable Suite. Coverage sets, per-strategy data,
// feed/search pages and failure injection are all assignable per test; it
// records which strategies ran and how many pages were fetched.
type fakeSuite struct {
	name     string
	videoRE  *regexp.Regexp
	feedRE   *regexp.Regexp
	noVideo  bool // video classification unsupported
	noFeed   bool // feed classification unsupported
	noSearch bool // search url unsupported

	oembed FieldSet
	api    FieldSet
	scrape FieldSet

	data     map[Strategy]map[Field]any
	failWith map[Strategy]error // parse failure injection

	pages        []*Page // feed/search pages served in order
	pageURLs     []string
	pageFailures map[string]error // pageURL → error
	searchFirst  string

	ran          []Strategy
	pagesFetched []string
}

func newFakeSuite(name string) *fakeSuite {
	return &fakeSuite{
		name:    name,
		videoRE: regexp.MustCompile(`^http://` + name + `\.test/video/`),
		feedRE:  regexp.MustCompile(`^http://` + name + `\.test/feed`),
		data:    map[Strategy]map[Field]any{},
	}
}

func (f *fakeSuite) Name() string { return f.name }

func (f *fakeSuite) HandlesVideoURL(u string) (bool, error) {
	if f.noVideo {
		return false, ErrUnsupported
	}
	return f.videoRE.MatchString(u), nil
}

func (f *fakeSuite) HandlesFeedURL(u string) (bool, error) {
	if f.noFeed {
		return false, ErrUnsupported
	}
	return f.feedRE.MatchString(u), nil
}

func (f *fakeSuite) OEmbedFields() FieldSet { return f.oembed }
func (f *fakeSuite) APIFields() FieldSet    { return f.api }
func (f *fakeSuite) ScrapeFields() FieldSet { return f.scrape }

func (f *fakeSuite) OEmbedURL(*Video) (string, error) {
	return "http://" + f.name + ".test/oembed", nil
}
func (f *fakeSuite) APIURL(*Video) (string, error) {
	return "http://" + f.name + ".test/api", nil
}
func (f *fakeSuite) ScrapeURL(*Video) (string, error) {
	return "http://" + f.name + ".test/scrape", nil
}

func (f *fakeSuite) parse(s Strategy) (map[Field]any, error) {
	if err := f.failWith[s]; err != nil {
		return nil, err
	}
	f.ran = append(f.ran, s)
	return f.data[s], nil
}

func (f *fakeSuite) ParseOEmbed([]byte) (map[Field]any, error) { return f.parse(StrategyOEmbed) }
func (f *fakeSuite) ParseAPI([]byte) (map[Field]any, error)    { return f.parse(StrategyAPI) }
func (f *fakeSuite) ParseScrape([]byte) (map[Field]any, error) { return f.parse(StrategyScrape) }

func (f *fakeSuite) page(pageURL string) (*Page, error) {
	f.pagesFetched = append(f.pagesFetched, pageURL)
	if err := f.pageFailures[pageURL]; err != nil {
		return nil, err
	}
	for i, u := range f.pageURLs {
		if u == pageURL {
			// Copy so the iterator's page.URL write never leaks between
			// iterations of the same test fixture.
			p := *f.pages[i]
			return &p, nil
		}
	}
	return nil, fmt.Errorf("no such page %q", pageURL)
}

func (f *fakeSuite) GetFeedPage(_ context.Context, _ *Feed, pageURL string) (*Page, error) {
	return f.page(pageURL)
}

func (f *fakeSuite) ParseFeedEntry(entry any) (map[Field]any, error) {
	data, ok := entry.(map[Field]any)
	if !ok {
		return nil, fmt.Errorf("unexpected entry type %T", entry)
	}
	return data, nil
}

func (f *fakeSuite) NextFeedPageURL(_ *Feed, page *Page) (string, error) {
	return f.nextURL(page), nil
}

func (f *fakeSuite) SearchURL(*Search) (string, error) {
	if f.noSearch {
		return "", ErrUnsupported
	}
	return f.searchFirst, nil
}

func (f *fakeSuite) GetSearchPage(_ context.Context, _ *Search, pageURL string) (*Page, error) {
	return f.page(pageURL)
}

func (f *fakeSuite) ParseSearchResult(result any) (map[Field]any, error) {
	return f.ParseFeedEntry(result)
}

func (f *fakeSuite) NextSearchPageURL(_ *Search, page *Page) (string, error) {
	return f.nextURL(page), nil
}

func (f *fakeSuite) nextURL(page *Page) string {
	for i, u := range f.pageURLs {
		if u == page.URL && i+1 < len(f.pageURLs) {
			return f.pageURLs[i+1]
		}
	}
	return ""
}

// feedPages installs n pages of itemsPerPage entries each. Entry k of page
// p links to http://<name>.test/video/<p>-<k> and carries a title.
func (f *fakeSuite) feedPages(n, itemsPerPage int) {
	f.pages = nil
	f.pageURLs = nil
	for p := 0; p < n; p++ {
		pageURL := fmt.Sprintf("http://%s.test/feed?page=%d", f.name, p+1)
		page := &Page{Meta: PageMeta{Title: fmt.Sprintf("page %d meta", p+1)}}
		for k := 0; k < itemsPerPage; k++ {
			page.Entries = append(page.Entries, map[Field]any{
				FieldLink:  fmt.Sprintf("http://%s.test/video/%d-%d", f.name, p+1, k+1),
				FieldTitle: fmt.Sprintf("video %d-%d", p+1, k+1),
			})
		}
		f.pages = append(f.pages, page)
		f.pageURLs = append(f.pageURLs, pageURL)
	}
	f.searchFirst = f.pageURLs[0]
}

func (f *fakeSuite) firstFeedURL() string {
	if len(f.pageURLs) > 0 {
		return f.pageURLs[0]
	}
	return "http://" + f.name + ".test/feed"
}

func (f *fakeSuite) video(url string, fields ...Field) *Video {
	v, err := NewVideo(url, f, fields, nil)
	if err != nil {
		panic(err)
	}
	return v
}
