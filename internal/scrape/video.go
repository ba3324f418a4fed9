package scrape

import (
	"fmt"
	"time"
)

// Video holds the metadata collected for a single video. Attributes start
// unset and are written at most once: once a strategy or feed entry has
// populated a field, later data for the same field is discarded
// (first-writer-wins). Only requested fields are ever stored.
type Video struct {
	// URL is the original "pasted" url. Immutable after construction.
	URL string

	// Fields is the subset of attributes the caller cares about.
	Fields []Field

	// APIKeys carries provider API keys consulted by suite URL builders.
	APIKeys map[string]string

	Title             string
	Description       string
	PublishDatetime   time.Time
	FileURL           string
	FileURLIsFlaky    bool
	FlashEnclosureURL string
	IsEmbeddable      bool
	EmbedCode         string
	ThumbnailURL      string
	User              string
	UserURL           string
	Tags              []string
	Link              string

	suite  Suite
	loaded bool
	set    map[Field]bool
}

// NewVideo constructs a record handled by the given suite. Unknown
// requested fields are dropped; a nil or empty fields slice requests
// everything. The suite must classify the url as a video url.
func NewVideo(url string, suite Suite, fields []Field, apiKeys map[string]string) (*Video, error) {
	if suite == nil {
		return nil, ErrCantIdentifyURL
	}
	ok, err := suite.HandlesVideoURL(url)
	if err == nil && !ok {
		return nil, ErrCantIdentifyURL
	}
	requested := make([]Field, 0, len(AllFields))
	if len(fields) == 0 {
		requested = append(requested, AllFields...)
	} else {
		for _, f := range fields {
			if validField(f) {
				requested = append(requested, f)
			}
		}
	}
	return &Video{
		URL:     url,
		Fields:  requested,
		APIKeys: apiKeys,
		suite:   suite,
		set:     make(map[Field]bool, len(requested)),
	}, nil
}

// Suite returns the suite responsible for this video.
func (v *Video) Suite() Suite { return v.suite }

// Loaded reports whether a load cycle has completed for this video.
// Videos pre-populated from a feed or search are not considered loaded.
func (v *Video) Loaded() bool { return v.loaded }

// IsSet reports whether the field has been populated.
func (v *Video) IsSet(f Field) bool { return v.set[f] }

// MissingFields returns the requested fields that have not been populated,
// in request order. Recomputed on every call.
func (v *Video) MissingFields() []Field {
	var missing []Field
	for _, f := range v.Fields {
		if !v.set[f] {
			missing = append(missing, f)
		}
	}
	return missing
}

// missingFieldSet is MissingFields as a set, for coverage arithmetic.
func (v *Video) missingFieldSet() FieldSet {
	s := make(FieldSet)
	for _, f := range v.MissingFields() {
		s[f] = struct{}{}
	}
	return s
}

// apply merges a parsed field→value mapping into the video. Fields outside
// the requested set are ignored; fields already set keep their value.
func (v *Video) apply(data map[Field]any) error {
	for _, f := range v.Fields {
		value, ok := data[f]
		if !ok || v.set[f] {
			continue
		}
		if err := v.assign(f, value); err != nil {
			return err
		}
		v.set[f] = true
	}
	return nil
}

func (v *Video) assign(f Field, value any) error {
	switch f {
	case FieldTitle:
		return setString(f, value, &v.Title)
	case FieldDescription:
		return setString(f, value, &v.Description)
	case FieldPublishDatetime:
		t, ok := value.(time.Time)
		if !ok {
			return fmt.Errorf("field %s: expected time.Time, got %T", f, value)
		}
		v.PublishDatetime = t
	case FieldFileURL:
		return setString(f, value, &v.FileURL)
	case FieldFileURLIsFlaky:
		return setBool(f, value, &v.FileURLIsFlaky)
	case FieldFlashEnclosureURL:
		return setString(f, value, &v.FlashEnclosureURL)
	case FieldIsEmbeddable:
		return setBool(f, value, &v.IsEmbeddable)
	case FieldEmbedCode:
		return setString(f, value, &v.EmbedCode)
	case FieldThumbnailURL:
		return setString(f, value, &v.ThumbnailURL)
	case FieldUser:
		return setString(f, value, &v.User)
	case FieldUserURL:
		return setString(f, value, &v.UserURL)
	case FieldTags:
		tags, ok := value.([]string)
		if !ok {
			return fmt.Errorf("field %s: expected []string, got %T", f, value)
		}
		v.Tags = tags
	case FieldLink:
		return setString(f, value, &v.Link)
	default:
		return fmt.Errorf("unknown field %s", f)
	}
	return nil
}

func setString(f Field, value any, dst *string) error {
	s, ok := value.(string)
	if !ok {
		return fmt.Errorf("field %s: expected string, got %T", f, value)
	}
	*dst = s
	return nil
}

func setBool(f Field, value any, dst *bool) error {
	b, ok := value.(bool)
	if !ok {
		return fmt.Errorf("field %s: expected bool, got %T", f, value)
	}
	*dst = b
	return nil
}
