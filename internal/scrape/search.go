package scrape

import (
	"context"
	"strings"

	"github.com/google/uuid"
)

// OrderBy values a search may request. Providers that do not support the
// requested ordering return empty result sets rather than erroring.
const (
	OrderRelevant = "relevant"
	OrderLatest   = "latest"
	OrderPopular  = "popular"
)

// SearchOptions configures search iteration.
type SearchOptions struct {
	// OrderBy is one of the Order* constants, optionally prefixed with "-"
	// for descending order. Empty uses the provider default.
	OrderBy string
	// Fields is passed to each video the search yields; empty requests all.
	Fields []Field
	// Crawl continues onto subsequent result pages.
	Crawl bool
	// MaxResults caps the number of yielded videos; 0 means no cap.
	MaxResults int
	// APIKeys is passed to each yielded video.
	APIKeys map[string]string
}

// Search iterates the videos matching a query against one suite.
// Meta (total results, elapsed time) is frozen from the first response.
// Like Feed, a Search is forward-only and not restartable.
type Search struct {
	// RawQuery is the query exactly as the caller supplied it.
	RawQuery string
	// Query is the normalized query rebuilt from the parsed terms.
	Query string
	// IncludeTerms and ExcludeTerms are the parsed query terms.
	IncludeTerms []string
	ExcludeTerms []string
	// OrderBy is the requested ordering.
	OrderBy string

	Meta PageMeta

	searchSuite Suite
	client      *Client
	iterator
}

// NewSearch builds a search iterator against the given suite. No fetch
// happens until the first Next call; suites without search support yield
// an empty sequence.
func NewSearch(client *Client, suite Suite, query string, opts SearchOptions) (*Search, error) {
	if suite == nil {
		return nil, ErrCantIdentifyURL
	}
	include, exclude := TermsFromQuery(query)
	s := &Search{
		RawQuery:     query,
		Query:        QueryFromTerms(include, exclude),
		IncludeTerms: include,
		ExcludeTerms: exclude,
		OrderBy:      opts.OrderBy,
		searchSuite:  suite,
		client:       client,
	}
	s.iterator = iterator{
		src:        s,
		id:         uuid.NewString(),
		fields:     opts.Fields,
		apiKeys:    opts.APIKeys,
		crawl:      opts.Crawl,
		maxResults: opts.MaxResults,
	}
	return s, nil
}

// Next returns the next search result, or Done when exhausted.
func (s *Search) Next(ctx context.Context) (*Video, error) {
	return s.next(ctx)
}

// Suite returns the suite this search runs against.
func (s *Search) Suite() Suite { return s.searchSuite }

// Client returns the fetch client, for suite page fetchers.
func (s *Search) Client() *Client { return s.client }

// EmittedCount reports how many videos have been yielded so far.
func (s *Search) EmittedCount() int { return s.count }

// APIKeys returns the provider keys the search was configured with.
func (s *Search) APIKeys() map[string]string { return s.apiKeys }

func (s *Search) suite() Suite { return s.searchSuite }
func (s *Search) kind() string { return "search" }

func (s *Search) firstURL() (string, error) {
	return s.searchSuite.SearchURL(s)
}

func (s *Search) fetchPage(ctx context.Context, pageURL string) (*Page, error) {
	metrics.SearchPages.Add(1)
	return s.searchSuite.GetSearchPage(ctx, s, pageURL)
}

func (s *Search) parseItem(item any) (map[Field]any, error) {
	return s.searchSuite.ParseSearchResult(item)
}

func (s *Search) nextPageURL(page *Page) (string, error) {
	return s.searchSuite.NextSearchPageURL(s, page)
}

func (s *Search) freezeMeta(page *Page) { s.Meta = page.Meta }

// TermsFromQuery splits a raw query into include and exclude terms.
// Double-quoted phrases stay together; a leading "-" on a term excludes it.
func TermsFromQuery(query string) (include, exclude []string) {
	var (
		term     strings.Builder
		inQuotes bool
		negated  bool
	)
	flush := func() {
		t := term.String()
		term.Reset()
		if t == "" {
			negated = false
			return
		}
		if negated {
			exclude = append(exclude, t)
		} else {
			include = append(include, t)
		}
		negated = false
	}
	for _, r := range query {
		switch {
		case r == '"':
			inQuotes = !inQuotes
		case r == '-' && !inQuotes && term.Len() == 0:
			negated = true
		case r == ' ' && !inQuotes:
			flush()
		default:
			term.WriteRune(r)
		}
	}
	flush()
	return include, exclude
}

// QueryFromTerms rebuilds a normalized query string: multi-word terms are
// quoted, excluded terms carry a "-" prefix.
func QueryFromTerms(include, exclude []string) string {
	parts := make([]string, 0, len(include)+len(exclude))
	for _, t := range include {
		parts = append(parts, quoteTerm(t))
	}
	for _, t := range exclude {
		parts = append(parts, "-"+quoteTerm(t))
	}
	return strings.Join(parts, " ")
}

func quoteTerm(t string) string {
	if strings.ContainsRune(t, ' ') {
		return `"` + t + `"`
	}
	return t
}
