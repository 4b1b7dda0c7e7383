package parser

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"ReviewScout/internal/domain"
	"ReviewScout/internal/scanner"
)

func TestYouTubeSearch(t *testing.T) {
	t.Parallel()

	var gotQuery, gotDuration, gotKey string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		gotQuery = r.URL.Query().Get("q")
		gotDuration = r.URL.Query().Get("videoDuration")
		gotKey = r.URL.Query().Get("key")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"items":[
			{"id":{"videoId":"abc"},"snippet":{"title":"Glow serum review","description":"#glow #serum","channelTitle":"Skin Lab","publishedAt":"2024-03-01T10:00:00Z","thumbnails":{"high":{"url":"https://img/abc.jpg"}}}},
			{"id":{},"snippet":{"title":"channel result"}}
		]}`))
	}))
	defer srv.Close()

	ys := NewYouTubeScanner(domain.PlatformShortVideo, srv.URL, "k1", nil, srv.Client())
	results, err := ys.Search(context.Background(), scanner.Query{Text: "glow serum review", MaxResults: 5})
	if err != nil {
		t.Fatalf("Search error: %v", err)
	}

	if gotQuery != "glow serum review" || gotDuration != "short" || gotKey != "k1" {
		t.Fatalf("unexpected request q=%q duration=%q key=%q", gotQuery, gotDuration, gotKey)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	got := results[0]
	if got.ExternalID != "abc" || got.Platform != domain.PlatformShortVideo {
		t.Fatalf("unexpected candidate %+v", got)
	}
	if got.URL != "https://www.youtube.com/shorts/abc" {
		t.Fatalf("unexpected url %s", got.URL)
	}
	if got.Author != "Skin Lab" || got.ThumbnailURL != "https://img/abc.jpg" {
		t.Fatalf("unexpected author/thumbnail %q %q", got.Author, got.ThumbnailURL)
	}
	if got.PublishedAt.IsZero() {
		t.Fatalf("expected published time")
	}
}

func TestYouTubeDetails(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/videos" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if ids := r.URL.Query().Get("id"); ids != "a,b" {
			t.Errorf("unexpected ids %s", ids)
		}
		_, _ = w.Write([]byte(`{"items":[
			{"id":"a","statistics":{"viewCount":"1200","likeCount":"30","commentCount":"4"}},
			{"id":"b","statistics":{"viewCount":"7"}}
		]}`))
	}))
	defer srv.Close()

	ys := NewYouTubeScanner(domain.PlatformVideo, srv.URL, "k1", nil, srv.Client())
	stats, err := ys.Details(context.Background(), []string{"a", "b"})
	if err != nil {
		t.Fatalf("Details error: %v", err)
	}
	if stats["a"] != (domain.Engagement{Views: 1200, Likes: 30, Comments: 4}) {
		t.Fatalf("unexpected stats for a: %+v", stats["a"])
	}
	if stats["b"].Views != 7 || stats["b"].Likes != 0 {
		t.Fatalf("unexpected stats for b: %+v", stats["b"])
	}
}

func TestYouTubeErrorsHideAPIKey(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusForbidden)
	}))
	defer srv.Close()

	ys := NewYouTubeScanner(domain.PlatformVideo, srv.URL, "secret-key", nil, srv.Client())
	_, err := ys.Search(context.Background(), scanner.Query{Text: "x"})
	if err == nil {
		t.Fatalf("expected error")
	}
	if strings.Contains(err.Error(), "secret-key") {
		t.Fatalf("error leaks api key: %v", err)
	}
	if !strings.Contains(err.Error(), "quota exceeded") {
		t.Fatalf("error should carry the body: %v", err)
	}
}

func TestYouTubeRequiresKey(t *testing.T) {
	t.Parallel()

	ys := NewYouTubeScanner(domain.PlatformVideo, "http://127.0.0.1:1", "", nil, nil)
	if _, err := ys.Search(context.Background(), scanner.Query{Text: "x"}); err == nil {
		t.Fatalf("expected missing key error")
	}
}
