package scrape

import "errors"

// Registry is an ordered collection of suites. It is an explicit object:
// callers construct one and hand it to whatever needs suite lookup; there
// is no package-level instance.
type Registry struct {
	suites []Suite
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register appends a suite, preserving registration order. Registering the
// same suite instance twice is a no-op.
func (r *Registry) Register(s Suite) {
	for _, existing := range r.suites {
		if existing == s {
			return
		}
	}
	r.suites = append(r.suites, s)
}

// Suites returns the registered suites in registration order.
func (r *Registry) Suites() []Suite {
	out := make([]Suite, len(r.suites))
	copy(out, r.suites)
	return out
}

// SuiteForVideoURL returns the first registered suite that claims the url
// as a video, or ErrCantIdentifyURL. Suites without a video classifier are
// skipped.
func (r *Registry) SuiteForVideoURL(url string) (Suite, error) {
	for _, s := range r.suites {
		ok, err := s.HandlesVideoURL(url)
		if errors.Is(err, ErrUnsupported) {
			continue
		}
		if err != nil {
			return nil, err
		}
		if ok {
			return s, nil
		}
	}
	return nil, ErrCantIdentifyURL
}

// SuiteForFeedURL is SuiteForVideoURL for feed urls.
func (r *Registry) SuiteForFeedURL(url string) (Suite, error) {
	for _, s := range r.suites {
		ok, err := s.HandlesFeedURL(url)
		if errors.Is(err, ErrUnsupported) {
			continue
		}
		if err != nil {
			return nil, err
		}
		if ok {
			return s, nil
		}
	}
	return nil, ErrCantIdentifyURL
}

// Video resolves the suite for url and constructs a record requesting the
// given fields.
func (r *Registry) Video(url string, fields []Field, apiKeys map[string]string) (*Video, error) {
	suite, err := r.SuiteForVideoURL(url)
	if err != nil {
		return nil, err
	}
	return NewVideo(url, suite, fields, apiKeys)
}
