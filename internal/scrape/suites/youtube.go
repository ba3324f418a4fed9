package suites

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/araddon/dateparse"

	"vidscrape/internal/scrape"
)

const (
	ytOEmbedEndpoint = "https://www.youtube.com/oembed"
	ytDataAPIBase    = "https://www.googleapis.com/youtube/v3"
	ytWatchBase      = "https://www.youtube.com/watch?v="
	ytSearchPageSize = 50 // Data API v3 maximum
)

var (
	ytVideoRE   = regexp.MustCompile(`^https?://(?:(?:www\.|m\.)?youtube\.com/watch\?|youtu\.be/)`)
	ytFeedRE    = regexp.MustCompile(`^https?://(?:www\.)?youtube\.com/feeds/videos\.xml\?`)
	ytVideoIDRE = regexp.MustCompile(`(?:youtube\.com/watch\?(?:.*&)?v=|youtu\.be/)([a-zA-Z0-9_-]{11})`)
)

// ytOrderBy maps the generic orderings to Data API values. Orderings
// outside this map are unsupported and produce empty result sets.
var ytOrderBy = map[string]string{
	scrape.OrderRelevant: "relevance",
	scrape.OrderLatest:   "date",
	scrape.OrderPopular:  "viewCount",
}

var (
	ytAPIFields = scrape.NewFieldSet(
		scrape.FieldTitle, scrape.FieldDescription, scrape.FieldPublishDatetime,
		scrape.FieldThumbnailURL, scrape.FieldUser, scrape.FieldUserURL,
		scrape.FieldTags, scrape.FieldLink, scrape.FieldIsEmbeddable,
		scrape.FieldEmbedCode,
	)
	ytScrapeFields = scrape.NewFieldSet(
		scrape.FieldTitle, scrape.FieldDescription, scrape.FieldThumbnailURL,
		scrape.FieldLink, scrape.FieldEmbedCode, scrape.FieldFlashEnclosureURL,
	)
)

// YouTube aggregates metadata through the oEmbed endpoint, the Data API v3
// (key required, passed via APIKeys["youtube"]), and a watch-page scrape.
// Feeds are the channel/playlist Atom documents under /feeds/videos.xml;
// search runs against the Data API with pageToken continuation.
type YouTube struct {
	scrape.BaseSuite
}

func NewYouTube() *YouTube {
	return &YouTube{BaseSuite: scrape.BaseSuite{
		VideoPattern:   ytVideoRE,
		FeedPattern:    ytFeedRE,
		OEmbedEndpoint: ytOEmbedEndpoint,
	}}
}

func (*YouTube) Name() string { return "youtube" }

func (*YouTube) APIFields() scrape.FieldSet    { return ytAPIFields }
func (*YouTube) ScrapeFields() scrape.FieldSet { return ytScrapeFields }

// ytVideoID pulls the 11-char video id from any watch/short url form.
func ytVideoID(rawURL string) string {
	m := ytVideoIDRE.FindStringSubmatch(rawURL)
	if len(m) >= 2 {
		return m[1]
	}
	return ""
}

func ytEmbedCode(id string) string {
	return fmt.Sprintf(`<iframe width="480" height="270" src="https://www.youtube.com/embed/%s" frameborder="0" allowfullscreen></iframe>`, id)
}

func ytFlashEnclosureURL(id string) string {
	return "https://www.youtube.com/v/" + id
}

func ytThumbnailURL(id string) string {
	return "https://img.youtube.com/vi/" + id + "/hqdefault.jpg"
}

// --- api strategy (Data API v3 videos endpoint) ---

func (*YouTube) APIURL(v *scrape.Video) (string, error) {
	id := ytVideoID(v.URL)
	if id == "" {
		return "", fmt.Errorf("no video id in %q", v.URL)
	}
	key := v.APIKeys["youtube"]
	if key == "" {
		return "", fmt.Errorf("youtube data API key missing")
	}
	params := url.Values{}
	params.Set("part", "snippet,status,player")
	params.Set("id", id)
	params.Set("key", key)
	return ytDataAPIBase + "/videos?" + params.Encode(), nil
}

type ytVideoItem struct {
	ID      string `json:"id"`
	Snippet struct {
		PublishedAt  string                       `json:"publishedAt"`
		ChannelID    string                       `json:"channelId"`
		ChannelTitle string                       `json:"channelTitle"`
		Title        string                       `json:"title"`
		Description  string                       `json:"description"`
		Tags         []string                     `json:"tags"`
		Thumbnails   map[string]struct{ URL string `json:"url"` } `json:"thumbnails"`
	} `json:"snippet"`
	Status struct {
		Embeddable bool `json:"embeddable"`
	} `json:"status"`
	Player struct {
		EmbedHTML string `json:"embedHtml"`
	} `json:"player"`
}

type ytVideosResponse struct {
	Items []ytVideoItem `json:"items"`
}

func (*YouTube) ParseAPI(body []byte) (map[scrape.Field]any, error) {
	var resp ytVideosResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("videos response: %w", err)
	}
	if len(resp.Items) == 0 {
		return nil, fmt.Errorf("video not found")
	}
	item := resp.Items[0]
	data := map[scrape.Field]any{
		scrape.FieldTitle:        item.Snippet.Title,
		scrape.FieldDescription:  item.Snippet.Description,
		scrape.FieldUser:         item.Snippet.ChannelTitle,
		scrape.FieldUserURL:      "https://www.youtube.com/channel/" + item.Snippet.ChannelID,
		scrape.FieldLink:         ytWatchBase + item.ID,
		scrape.FieldIsEmbeddable: item.Status.Embeddable,
	}
	if t, err := time.Parse(time.RFC3339, item.Snippet.PublishedAt); err == nil {
		data[scrape.FieldPublishDatetime] = t
	}
	if len(item.Snippet.Tags) > 0 {
		data[scrape.FieldTags] = item.Snippet.Tags
	}
	if thumb := ytPickThumbnail(item.Snippet.Thumbnails); thumb != "" {
		data[scrape.FieldThumbnailURL] = thumb
	} else {
		data[scrape.FieldThumbnailURL] = ytThumbnailURL(item.ID)
	}
	if item.Player.EmbedHTML != "" {
		data[scrape.FieldEmbedCode] = item.Player.EmbedHTML
	} else {
		data[scrape.FieldEmbedCode] = ytEmbedCode(item.ID)
	}
	return data, nil
}

func ytPickThumbnail(thumbs map[string]struct{ URL string `json:"url"` }) string {
	for _, size := range []string{"high", "medium", "default"} {
		if t, ok := thumbs[size]; ok && t.URL != "" {
			return t.URL
		}
	}
	return ""
}

// --- scrape strategy (watch page og tags) ---

func (*YouTube) ScrapeURL(v *scrape.Video) (string, error) {
	id := ytVideoID(v.URL)
	if id == "" {
		return "", fmt.Errorf("no video id in %q", v.URL)
	}
	return ytWatchBase + id, nil
}

func (*YouTube) ParseScrape(body []byte) (map[scrape.Field]any, error) {
	tags, err := ogTags(body)
	if err != nil {
		return nil, err
	}
	data := make(map[scrape.Field]any)
	if v, ok := tags["og:title"]; ok {
		data[scrape.FieldTitle] = v
	}
	if v, ok := tags["og:description"]; ok {
		data[scrape.FieldDescription] = v
	}
	if v, ok := tags["og:image"]; ok {
		data[scrape.FieldThumbnailURL] = v
	}
	link := tags["og:url"]
	if link == "" {
		canonical, title := canonicalLink(body)
		link = canonical
		if _, ok := data[scrape.FieldTitle]; !ok && title != "" {
			data[scrape.FieldTitle] = title
		}
	}
	if link != "" {
		data[scrape.FieldLink] = link
		if id := ytVideoID(link); id != "" {
			data[scrape.FieldEmbedCode] = ytEmbedCode(id)
			data[scrape.FieldFlashEnclosureURL] = ytFlashEnclosureURL(id)
		}
	}
	return data, nil
}

// --- feed (channel/playlist Atom documents) ---

type ytAtomLink struct {
	Rel  string `xml:"rel,attr"`
	Href string `xml:"href,attr"`
}

type ytAtomAuthor struct {
	Name string `xml:"name"`
	URI  string `xml:"uri"`
}

type ytAtomEntry struct {
	ID        string       `xml:"id"`
	Title     string       `xml:"title"`
	Published string       `xml:"published"`
	Links     []ytAtomLink `xml:"link"`
	Author    ytAtomAuthor `xml:"author"`
	Group     struct {
		Description string `xml:"description"`
		Thumbnail   struct {
			URL string `xml:"url,attr"`
		} `xml:"thumbnail"`
	} `xml:"http://search.yahoo.com/mrss/ group"`
}

type ytAtomFeed struct {
	XMLName   xml.Name      `xml:"feed"`
	ID        string        `xml:"id"`
	Title     string        `xml:"title"`
	Published string        `xml:"published"`
	Links     []ytAtomLink  `xml:"link"`
	Author    ytAtomAuthor  `xml:"author"`
	Entries   []ytAtomEntry `xml:"entry"`
}

func atomLink(links []ytAtomLink, rel string) string {
	for _, l := range links {
		if l.Rel == rel {
			return l.Href
		}
	}
	return ""
}

func (*YouTube) GetFeedPage(ctx context.Context, f *scrape.Feed, pageURL string) (*scrape.Page, error) {
	body, err := f.Client().Get(ctx, pageURL, f.ConditionalHeader())
	if err != nil {
		return nil, err
	}
	var feed ytAtomFeed
	if err := xml.Unmarshal(body, &feed); err != nil {
		return nil, fmt.Errorf("atom feed: %w", err)
	}
	page := &scrape.Page{
		Meta: scrape.PageMeta{
			Title:   feed.Title,
			GUID:    feed.ID,
			Webpage: atomLink(feed.Links, "alternate"),
		},
	}
	if t, err := dateparse.ParseAny(feed.Published); err == nil {
		page.Meta.LastModified = t
	}
	for i := range feed.Entries {
		page.Entries = append(page.Entries, &feed.Entries[i])
	}
	return page, nil
}

func (*YouTube) ParseFeedEntry(entry any) (map[scrape.Field]any, error) {
	e, ok := entry.(*ytAtomEntry)
	if !ok {
		return nil, fmt.Errorf("unexpected entry type %T", entry)
	}
	link := atomLink(e.Links, "alternate")
	if link == "" {
		return nil, fmt.Errorf("entry %q has no alternate link", e.ID)
	}
	data := map[scrape.Field]any{
		scrape.FieldTitle:       e.Title,
		scrape.FieldDescription: e.Group.Description,
		scrape.FieldLink:        link,
		scrape.FieldUser:        e.Author.Name,
		scrape.FieldUserURL:     e.Author.URI,
	}
	if t, err := dateparse.ParseAny(e.Published); err == nil {
		data[scrape.FieldPublishDatetime] = t
	}
	if id := ytVideoID(link); id != "" {
		data[scrape.FieldEmbedCode] = ytEmbedCode(id)
		data[scrape.FieldFlashEnclosureURL] = ytFlashEnclosureURL(id)
		if e.Group.Thumbnail.URL != "" {
			data[scrape.FieldThumbnailURL] = e.Group.Thumbnail.URL
		} else {
			data[scrape.FieldThumbnailURL] = ytThumbnailURL(id)
		}
	}
	return data, nil
}

// Atom feeds carry no pagination; the BaseSuite default ("no further
// page") applies.

// --- search (Data API v3 search endpoint) ---

func (*YouTube) SearchURL(s *scrape.Search) (string, error) {
	order := strings.TrimPrefix(s.OrderBy, "-")
	apiOrder := ""
	if order != "" {
		var ok bool
		if apiOrder, ok = ytOrderBy[order]; !ok {
			return "", scrape.ErrUnsupported
		}
	}
	key := s.APIKeys()["youtube"]
	if key == "" {
		return "", scrape.ErrUnsupported
	}
	params := url.Values{}
	params.Set("part", "snippet")
	params.Set("type", "video")
	params.Set("q", s.Query)
	params.Set("maxResults", fmt.Sprintf("%d", ytSearchPageSize))
	params.Set("key", key)
	if apiOrder != "" {
		params.Set("order", apiOrder)
	}
	return ytDataAPIBase + "/search?" + params.Encode(), nil
}

type ytSearchItem struct {
	ID struct {
		VideoID string `json:"videoId"`
	} `json:"id"`
	Snippet struct {
		PublishedAt  string                       `json:"publishedAt"`
		ChannelID    string                       `json:"channelId"`
		ChannelTitle string                       `json:"channelTitle"`
		Title        string                       `json:"title"`
		Description  string                       `json:"description"`
		Thumbnails   map[string]struct{ URL string `json:"url"` } `json:"thumbnails"`
	} `json:"snippet"`
}

type ytSearchResponse struct {
	NextPageToken string `json:"nextPageToken"`
	PageInfo      struct {
		TotalResults int `json:"totalResults"`
	} `json:"pageInfo"`
	Items []ytSearchItem `json:"items"`
}

func (*YouTube) GetSearchPage(ctx context.Context, s *scrape.Search, pageURL string) (*scrape.Page, error) {
	body, err := s.Client().Get(ctx, pageURL, nil)
	if err != nil {
		return nil, err
	}
	var resp ytSearchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("search response: %w", err)
	}
	page := &scrape.Page{
		Meta: scrape.PageMeta{TotalResults: resp.PageInfo.TotalResults},
		Raw:  &resp,
	}
	for i := range resp.Items {
		page.Entries = append(page.Entries, &resp.Items[i])
	}
	return page, nil
}

func (*YouTube) ParseSearchResult(result any) (map[scrape.Field]any, error) {
	item, ok := result.(*ytSearchItem)
	if !ok {
		return nil, fmt.Errorf("unexpected result type %T", result)
	}
	if item.ID.VideoID == "" {
		return nil, fmt.Errorf("result has no video id")
	}
	id := item.ID.VideoID
	data := map[scrape.Field]any{
		scrape.FieldTitle:             item.Snippet.Title,
		scrape.FieldDescription:       item.Snippet.Description,
		scrape.FieldLink:              ytWatchBase + id,
		scrape.FieldUser:              item.Snippet.ChannelTitle,
		scrape.FieldUserURL:           "https://www.youtube.com/channel/" + item.Snippet.ChannelID,
		scrape.FieldEmbedCode:         ytEmbedCode(id),
		scrape.FieldFlashEnclosureURL: ytFlashEnclosureURL(id),
	}
	if t, err := time.Parse(time.RFC3339, item.Snippet.PublishedAt); err == nil {
		data[scrape.FieldPublishDatetime] = t
	}
	if thumb := ytPickThumbnail(item.Snippet.Thumbnails); thumb != "" {
		data[scrape.FieldThumbnailURL] = thumb
	} else {
		data[scrape.FieldThumbnailURL] = ytThumbnailURL(id)
	}
	return data, nil
}

func (*YouTube) NextSearchPageURL(s *scrape.Search, page *scrape.Page) (string, error) {
	resp, ok := page.Raw.(*ytSearchResponse)
	if !ok || resp.NextPageToken == "" {
		return "", nil
	}
	u, err := url.Parse(page.URL)
	if err != nil {
		return "", nil
	}
	q := u.Query()
	q.Set("pageToken", resp.NextPageToken)
	u.RawQuery = q.Encode()
	return u.String(), nil
}
