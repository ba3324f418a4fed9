package scrape

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"regexp"
	"time"
)

// Strategy is one of the three data-acquisition methods a suite may offer
// for a single video.
type Strategy string

const (
	StrategyOEmbed Strategy = "oembed"
	StrategyAPI    Strategy = "api"
	StrategyScrape Strategy = "scrape"
)

// PageMeta carries feed/search side-channel attributes. The iterator
// freezes it from the first page's response; zero values mean the provider
// did not report the attribute.
type PageMeta struct {
	Title        string
	Description  string
	Webpage      string
	GUID         string
	Etag         string
	LastModified time.Time

	// EntryCount estimates the total number of entries in a feed.
	EntryCount int
	// TotalResults estimates the total number of results for a search.
	TotalResults int
	// Elapsed is the time the remote service reports having spent on the
	// query, for providers that expose it.
	Elapsed time.Duration
}

// Page is one fetched page of a feed or search. Entries are opaque raw
// items; the suite that produced them parses them back in ParseFeedEntry
// or ParseSearchResult.
type Page struct {
	Meta    PageMeta
	Entries []any

	// URL is the url this page was fetched from. The iterator fills it in
	// after every fetch; suites read it when computing the next page url.
	URL string
	// Raw optionally holds the suite's decoded response, for suites whose
	// pagination state (continuation tokens, cursors) lives in the
	// response body rather than the url.
	Raw any
}

// Suite is the per-provider capability contract. Optional capabilities
// return ErrUnsupported instead of panicking; the planner, the iterators
// and the registry check for it before treating absence as failure.
//
// Embed BaseSuite to inherit defaults: regex-backed URL classification,
// oEmbed URL construction and standard oEmbed JSON parsing, and
// "unsupported" for everything provider-specific.
type Suite interface {
	Name() string

	HandlesVideoURL(url string) (bool, error)
	HandlesFeedURL(url string) (bool, error)

	// Per-strategy coverage. Static suite properties, never
	// request-dependent.
	OEmbedFields() FieldSet
	APIFields() FieldSet
	ScrapeFields() FieldSet

	OEmbedURL(v *Video) (string, error)
	APIURL(v *Video) (string, error)
	ScrapeURL(v *Video) (string, error)
	ParseOEmbed(body []byte) (map[Field]any, error)
	ParseAPI(body []byte) (map[Field]any, error)
	ParseScrape(body []byte) (map[Field]any, error)

	// GetFeedPage fetches and decodes one feed page. The Feed is passed in
	// for conditional-fetch headers (etag, last-modified) and the fetch
	// client.
	GetFeedPage(ctx context.Context, f *Feed, pageURL string) (*Page, error)
	ParseFeedEntry(entry any) (map[Field]any, error)
	// NextFeedPageURL returns the URL for the page after the given one, or
	// "" when the feed has no further page.
	NextFeedPageURL(f *Feed, page *Page) (string, error)

	SearchURL(s *Search) (string, error)
	GetSearchPage(ctx context.Context, s *Search, pageURL string) (*Page, error)
	ParseSearchResult(result any) (map[Field]any, error)
	NextSearchPageURL(s *Search, page *Page) (string, error)
}

// defaultOEmbedFields is what a standard oEmbed video response supplies.
var defaultOEmbedFields = NewFieldSet(
	FieldTitle, FieldUser, FieldUserURL, FieldThumbnailURL, FieldEmbedCode,
)

// BaseSuite provides the default capability implementations. Provider
// suites embed it and override what they support.
type BaseSuite struct {
	// VideoPattern matches urls this suite handles as videos. Nil means
	// video classification is unsupported.
	VideoPattern *regexp.Regexp
	// FeedPattern matches urls this suite handles as feeds. Nil means feed
	// classification is unsupported.
	FeedPattern *regexp.Regexp
	// OEmbedEndpoint is the provider's oEmbed API endpoint, if any.
	OEmbedEndpoint string
}

func (b *BaseSuite) HandlesVideoURL(u string) (bool, error) {
	if b.VideoPattern == nil {
		return false, ErrUnsupported
	}
	return b.VideoPattern.MatchString(u), nil
}

func (b *BaseSuite) HandlesFeedURL(u string) (bool, error) {
	if b.FeedPattern == nil {
		return false, ErrUnsupported
	}
	return b.FeedPattern.MatchString(u), nil
}

// OEmbedFields defaults to the commonly available oEmbed fields when an
// endpoint is declared and to the empty set otherwise.
func (b *BaseSuite) OEmbedFields() FieldSet {
	if b.OEmbedEndpoint == "" {
		return nil
	}
	return defaultOEmbedFields
}

func (b *BaseSuite) APIFields() FieldSet    { return nil }
func (b *BaseSuite) ScrapeFields() FieldSet { return nil }

func (b *BaseSuite) OEmbedURL(v *Video) (string, error) {
	if b.OEmbedEndpoint == "" {
		return "", ErrUnsupported
	}
	return b.OEmbedEndpoint + "?url=" + url.QueryEscape(v.URL), nil
}

// ParseOEmbed decodes a standard oEmbed JSON document. Only keys present
// in the response end up in the mapping, so absent attributes stay unset
// on the video.
func (b *BaseSuite) ParseOEmbed(body []byte) (map[Field]any, error) {
	var raw map[string]any
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("oembed json: %w", err)
	}
	data := make(map[Field]any)
	for key, field := range map[string]Field{
		"title":         FieldTitle,
		"author_name":   FieldUser,
		"author_url":    FieldUserURL,
		"thumbnail_url": FieldThumbnailURL,
		"html":          FieldEmbedCode,
	} {
		if s, ok := raw[key].(string); ok {
			data[field] = s
		}
	}
	return data, nil
}

func (b *BaseSuite) APIURL(*Video) (string, error)              { return "", ErrUnsupported }
func (b *BaseSuite) ScrapeURL(*Video) (string, error)           { return "", ErrUnsupported }
func (b *BaseSuite) ParseAPI([]byte) (map[Field]any, error)     { return nil, ErrUnsupported }
func (b *BaseSuite) ParseScrape([]byte) (map[Field]any, error)  { return nil, ErrUnsupported }

func (b *BaseSuite) GetFeedPage(context.Context, *Feed, string) (*Page, error) {
	return nil, ErrUnsupported
}
func (b *BaseSuite) ParseFeedEntry(any) (map[Field]any, error) { return nil, ErrUnsupported }

// NextFeedPageURL defaults to "no further page". Suites with paginated
// feeds override it.
func (b *BaseSuite) NextFeedPageURL(*Feed, *Page) (string, error) { return "", nil }

func (b *BaseSuite) SearchURL(*Search) (string, error) { return "", ErrUnsupported }
func (b *BaseSuite) GetSearchPage(context.Context, *Search, string) (*Page, error) {
	return nil, ErrUnsupported
}
func (b *BaseSuite) ParseSearchResult(any) (map[Field]any, error) { return nil, ErrUnsupported }
func (b *BaseSuite) NextSearchPageURL(*Search, *Page) (string, error) { return "", nil }

// coverage returns the field set a single strategy can supply.
func coverage(s Suite, strategy Strategy) FieldSet {
	switch strategy {
	case StrategyOEmbed:
		return s.OEmbedFields()
	case StrategyAPI:
		return s.APIFields()
	case StrategyScrape:
		return s.ScrapeFields()
	}
	return nil
}

func strategyURL(s Suite, strategy Strategy, v *Video) (string, error) {
	switch strategy {
	case StrategyOEmbed:
		return s.OEmbedURL(v)
	case StrategyAPI:
		return s.APIURL(v)
	case StrategyScrape:
		return s.ScrapeURL(v)
	}
	return "", fmt.Errorf("unknown strategy %q", strategy)
}

func strategyParse(s Suite, strategy Strategy, body []byte) (map[Field]any, error) {
	switch strategy {
	case StrategyOEmbed:
		return s.ParseOEmbed(body)
	case StrategyAPI:
		return s.ParseAPI(body)
	case StrategyScrape:
		return s.ParseScrape(body)
	}
	return nil, fmt.Errorf("unknown strategy %q", strategy)
}
