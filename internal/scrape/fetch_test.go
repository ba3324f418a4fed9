package scrape

import (
	"compress/gzip"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestClientGet(t *testing.T) {
	var gotUA, gotEtag string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotEtag = r.Header.Get("If-None-Match")
		w.Write([]byte("hello"))
	}))
	defer srv.Close()

	c := NewClient(Config{UserAgent: "vidscrape-test"})
	header := make(http.Header)
	header.Set("If-None-Match", `"abc"`)

	body, err := c.Get(context.Background(), srv.URL, header)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(body) != "hello" {
		t.Errorf("body = %q", body)
	}
	if gotUA != "vidscrape-test" {
		t.Errorf("user agent = %q", gotUA)
	}
	if gotEtag != `"abc"` {
		t.Errorf("etag header = %q", gotEtag)
	}
}

func TestClientGetGzip(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Encoding", "gzip")
		gz := gzip.NewWriter(w)
		gz.Write([]byte("compressed payload"))
		gz.Close()
	}))
	defer srv.Close()

	c := NewClient(Config{})
	body, err := c.Get(context.Background(), srv.URL, nil)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(body) != "compressed payload" {
		t.Errorf("body = %q", body)
	}
}

func TestClientGetNonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewClient(Config{})
	_, err := c.Get(context.Background(), srv.URL, nil)

	var fetchErr *FetchError
	if !errors.As(err, &fetchErr) {
		t.Fatalf("got %v, want FetchError", err)
	}
	if fetchErr.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", fetchErr.StatusCode)
	}
}

func TestClientGetRespectsContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := NewClient(Config{})
	if _, err := c.Get(ctx, srv.URL, nil); err == nil {
		t.Error("expected an error for a canceled context")
	}
}
