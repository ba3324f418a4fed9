package suites

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/araddon/dateparse"

	"vidscrape/internal/scrape"
)

const (
	vimeoOEmbedEndpoint = "https://vimeo.com/api/oembed.json"
	vimeoSimpleAPIBase  = "https://vimeo.com/api/v2"
	// vimeoPerPage is the Simple API page size; a short page means the
	// listing is exhausted.
	vimeoPerPage = 20
)

var (
	vimeoVideoRE   = regexp.MustCompile(`^https?://(?:www\.)?vimeo\.com/(\d+)`)
	vimeoFeedRE    = regexp.MustCompile(`^https?://(?:www\.)?vimeo\.com/(?:api/v2/)?([\w-]+)/videos`)
	vimeoVideoIDRE = regexp.MustCompile(`vimeo\.com/(?:video/)?(\d+)`)
)

var (
	vimeoAPIFields = scrape.NewFieldSet(
		scrape.FieldTitle, scrape.FieldDescription, scrape.FieldPublishDatetime,
		scrape.FieldThumbnailURL, scrape.FieldUser, scrape.FieldUserURL,
		scrape.FieldTags, scrape.FieldLink, scrape.FieldEmbedCode,
	)
	vimeoScrapeFields = scrape.NewFieldSet(
		scrape.FieldTitle, scrape.FieldDescription, scrape.FieldThumbnailURL,
		scrape.FieldLink, scrape.FieldEmbedCode, scrape.FieldFileURL,
		scrape.FieldFileURLIsFlaky,
	)
)

// Vimeo aggregates metadata through the oEmbed endpoint, the unauthenticated
// Simple API (JSON), and a video-page scrape. Feeds are a user's videos via
// the Simple API with ?page=N pagination. Vimeo exposes no unauthenticated
// search, so the search capability is unsupported.
//
// File urls scraped from the player are session-bound, hence
// file_url_is_flaky.
type Vimeo struct {
	scrape.BaseSuite
}

func NewVimeo() *Vimeo {
	return &Vimeo{BaseSuite: scrape.BaseSuite{
		VideoPattern:   vimeoVideoRE,
		FeedPattern:    vimeoFeedRE,
		OEmbedEndpoint: vimeoOEmbedEndpoint,
	}}
}

func (*Vimeo) Name() string { return "vimeo" }

func (*Vimeo) APIFields() scrape.FieldSet    { return vimeoAPIFields }
func (*Vimeo) ScrapeFields() scrape.FieldSet { return vimeoScrapeFields }

func vimeoVideoID(rawURL string) string {
	m := vimeoVideoIDRE.FindStringSubmatch(rawURL)
	if len(m) >= 2 {
		return m[1]
	}
	return ""
}

func vimeoEmbedCode(id string) string {
	return fmt.Sprintf(`<iframe src="https://player.vimeo.com/video/%s" width="640" height="360" frameborder="0" allowfullscreen></iframe>`, id)
}

// --- api strategy (Simple API video endpoint) ---

func (*Vimeo) APIURL(v *scrape.Video) (string, error) {
	id := vimeoVideoID(v.URL)
	if id == "" {
		return "", fmt.Errorf("no video id in %q", v.URL)
	}
	return vimeoSimpleAPIBase + "/video/" + id + ".json", nil
}

// vimeoVideo is one video object as the Simple API returns it, both from
// the per-video endpoint and from user video listings.
type vimeoVideo struct {
	ID             json.Number `json:"id"`
	Title          string      `json:"title"`
	Description    string      `json:"description"`
	URL            string      `json:"url"`
	UploadDate     string      `json:"upload_date"`
	ThumbnailLarge string      `json:"thumbnail_large"`
	UserName       string      `json:"user_name"`
	UserURL        string      `json:"user_url"`
	Tags           string      `json:"tags"`
}

func (*Vimeo) ParseAPI(body []byte) (map[scrape.Field]any, error) {
	var videos []vimeoVideo
	if err := json.Unmarshal(body, &videos); err != nil {
		return nil, fmt.Errorf("simple API response: %w", err)
	}
	if len(videos) == 0 {
		return nil, fmt.Errorf("video not found")
	}
	return vimeoVideoData(&videos[0]), nil
}

func vimeoVideoData(v *vimeoVideo) map[scrape.Field]any {
	data := map[scrape.Field]any{
		scrape.FieldTitle:        v.Title,
		scrape.FieldDescription:  v.Description,
		scrape.FieldLink:         v.URL,
		scrape.FieldThumbnailURL: v.ThumbnailLarge,
		scrape.FieldUser:         v.UserName,
		scrape.FieldUserURL:      v.UserURL,
		scrape.FieldEmbedCode:    vimeoEmbedCode(v.ID.String()),
	}
	if t, err := dateparse.ParseAny(v.UploadDate); err == nil {
		data[scrape.FieldPublishDatetime] = t
	}
	if v.Tags != "" {
		tags := strings.Split(v.Tags, ",")
		for i := range tags {
			tags[i] = strings.TrimSpace(tags[i])
		}
		data[scrape.FieldTags] = tags
	}
	return data
}

// --- scrape strategy (video page og tags) ---

func (*Vimeo) ScrapeURL(v *scrape.Video) (string, error) {
	id := vimeoVideoID(v.URL)
	if id == "" {
		return "", fmt.Errorf("no video id in %q", v.URL)
	}
	return "https://vimeo.com/" + id, nil
}

func (*Vimeo) ParseScrape(body []byte) (map[scrape.Field]any, error) {
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
		if id := vimeoVideoID(link); id != "" {
			data[scrape.FieldEmbedCode] = vimeoEmbedCode(id)
		}
	}
	// The player url is tied to the visitor session and expires.
	if v, ok := tags["og:video:url"]; ok {
		data[scrape.FieldFileURL] = v
		data[scrape.FieldFileURLIsFlaky] = true
	}
	return data, nil
}

// --- feed (Simple API user videos, page-numbered) ---

// vimeoFeedAPIURL rewrites a user videos url to its Simple API form,
// preserving query parameters (the page number). Already-API urls pass
// through unchanged.
func vimeoFeedAPIURL(feedURL string) (string, error) {
	if strings.Contains(feedURL, "/api/v2/") {
		return feedURL, nil
	}
	m := vimeoFeedRE.FindStringSubmatch(feedURL)
	if m == nil {
		return "", fmt.Errorf("not a vimeo feed url: %q", feedURL)
	}
	apiURL := vimeoSimpleAPIBase + "/" + m[1] + "/videos.json"
	if u, err := url.Parse(feedURL); err == nil && u.RawQuery != "" {
		apiURL += "?" + u.RawQuery
	}
	return apiURL, nil
}

func (*Vimeo) GetFeedPage(ctx context.Context, f *scrape.Feed, pageURL string) (*scrape.Page, error) {
	apiURL, err := vimeoFeedAPIURL(pageURL)
	if err != nil {
		return nil, err
	}
	body, err := f.Client().Get(ctx, apiURL, f.ConditionalHeader())
	if err != nil {
		return nil, err
	}
	var videos []vimeoVideo
	if err := json.Unmarshal(body, &videos); err != nil {
		return nil, fmt.Errorf("simple API listing: %w", err)
	}
	page := &scrape.Page{}
	if m := vimeoFeedRE.FindStringSubmatch(f.URL); m != nil {
		page.Meta.Webpage = "https://vimeo.com/" + m[1] + "/videos"
	}
	for i := range videos {
		page.Entries = append(page.Entries, &videos[i])
	}
	return page, nil
}

func (v *Vimeo) ParseFeedEntry(entry any) (map[scrape.Field]any, error) {
	vid, ok := entry.(*vimeoVideo)
	if !ok {
		return nil, fmt.Errorf("unexpected entry type %T", entry)
	}
	if vid.URL == "" {
		return nil, fmt.Errorf("entry %s has no url", vid.ID)
	}
	return vimeoVideoData(vid), nil
}

// NextFeedPageURL advances the Simple API ?page=N parameter. A page shorter
// than the API page size means the listing is exhausted.
func (*Vimeo) NextFeedPageURL(f *scrape.Feed, page *scrape.Page) (string, error) {
	if len(page.Entries) < vimeoPerPage {
		return "", nil
	}
	u, err := url.Parse(page.URL)
	if err != nil {
		return "", nil
	}
	q := u.Query()
	current := 1
	if n, err := strconv.Atoi(q.Get("page")); err == nil && n > 0 {
		current = n
	}
	q.Set("page", strconv.Itoa(current+1))
	u.RawQuery = q.Encode()
	return u.String(), nil
}
