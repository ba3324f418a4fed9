package scrape

import (
	"errors"
	"testing"
)

func TestRegistryFirstMatchWins(t *testing.T) {
	r := NewRegistry()
	a := newFakeSuite("a")
	b := newFakeSuite("b")
	// Both suites claim every video url.
	a.videoRE = b.videoRE

	r.Register(a)
	r.Register(b)

	s, err := r.SuiteForVideoURL("http://a.test/video/1")
	if err != nil {
		t.Fatalf("SuiteForVideoURL: %v", err)
	}
	if s.Name() != "a" {
		t.Errorf("got suite %q, want first-registered %q", s.Name(), "a")
	}
}

func TestRegistrySkipsUnsupportedClassifiers(t *testing.T) {
	r := NewRegistry()
	a := newFakeSuite("a")
	a.noVideo = true
	b := newFakeSuite("b")

	r.Register(a)
	r.Register(b)

	s, err := r.SuiteForVideoURL("http://b.test/video/1")
	if err != nil {
		t.Fatalf("SuiteForVideoURL: %v", err)
	}
	if s.Name() != "b" {
		t.Errorf("got suite %q, want %q", s.Name(), "b")
	}
}

func TestRegistryUnknownURL(t *testing.T) {
	r := NewRegistry()
	r.Register(newFakeSuite("a"))

	if _, err := r.SuiteForVideoURL("http://nobody.test/video/1"); !errors.Is(err, ErrCantIdentifyURL) {
		t.Errorf("video lookup: got %v, want ErrCantIdentifyURL", err)
	}
	if _, err := r.SuiteForFeedURL("http://nobody.test/feed"); !errors.Is(err, ErrCantIdentifyURL) {
		t.Errorf("feed lookup: got %v, want ErrCantIdentifyURL", err)
	}
}

func TestRegistryDuplicateRegistrationIgnored(t *testing.T) {
	r := NewRegistry()
	a := newFakeSuite("a")
	r.Register(a)
	r.Register(a)

	if n := len(r.Suites()); n != 1 {
		t.Errorf("got %d suites, want 1", n)
	}
}

func TestRegistryVideoConstruction(t *testing.T) {
	r := NewRegistry()
	a := newFakeSuite("a")
	r.Register(a)

	v, err := r.Video("http://a.test/video/1", nil, nil)
	if err != nil {
		t.Fatalf("Video: %v", err)
	}
	if v.Suite() != a {
		t.Error("video not bound to the claiming suite")
	}
	if len(v.Fields) != len(AllFields) {
		t.Errorf("got %d requested fields, want all %d", len(v.Fields), len(AllFields))
	}

	if _, err := r.Video("http://nobody.test/video/1", nil, nil); !errors.Is(err, ErrCantIdentifyURL) {
		t.Errorf("got %v, want ErrCantIdentifyURL", err)
	}
}
