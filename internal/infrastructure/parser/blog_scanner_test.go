package parser

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"

	"ReviewScout/internal/domain"
	"ReviewScout/internal/scanner"
)

const blogPage = `
<ul>
  <li class="bx">
    <a class="title_link" href="/post/1">Glow   Serum <b>review</b></a>
    <span class="name">beautynote</span>
    <span class="sub_time">2024.03.05.</span>
    <div class="dsc_link">Two weeks with it. #glow #serum</div>
    <img src="https://img.example/1.jpg">
  </li>
  <li class="bx">
    <a class="title_link" href="https://blog.example/post/2">Second post</a>
    <div class="dsc_link">no tags here</div>
  </li>
  <li class="bx">
    <a class="title_link" href="/post/1">Duplicate of the first</a>
  </li>
  <li class="bx"><span>ad slot without a link</span></li>
</ul>`

func TestBuildSearchURL(t *testing.T) {
	t.Parallel()

	u, err := buildSearchURL("https://search.example/blog?where=blog", "query", "glow serum review", "display", 20)
	if err != nil {
		t.Fatalf("buildSearchURL returned error: %v", err)
	}

	parsed, err := url.Parse(u)
	if err != nil {
		t.Fatalf("parse result: %v", err)
	}
	q := parsed.Query()
	if q.Get("where") != "blog" {
		t.Fatalf("existing params should survive, got %s", parsed.RawQuery)
	}
	if q.Get("query") != "glow serum review" {
		t.Fatalf("unexpected query %q", q.Get("query"))
	}
	if q.Get("display") != "20" {
		t.Fatalf("expected display=20, got %s", q.Get("display"))
	}
}

func TestParsePost(t *testing.T) {
	t.Parallel()

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(blogPage))
	if err != nil {
		t.Fatalf("new document: %v", err)
	}
	base, _ := url.Parse("https://blog.example/search")
	b := NewBlogScanner("https://blog.example/search", nil, nil)

	post, ok := b.parsePost(doc.Find("li.bx").First(), base)
	if !ok {
		t.Fatalf("expected post to parse")
	}
	if post.Title != "Glow Serum review" {
		t.Fatalf("unexpected title %q", post.Title)
	}
	if post.URL != "https://blog.example/post/1" || post.ExternalID != post.URL {
		t.Fatalf("unexpected url %q", post.URL)
	}
	if post.Author != "beautynote" {
		t.Fatalf("unexpected author %q", post.Author)
	}
	if !post.PublishedAt.Equal(time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected date %v", post.PublishedAt)
	}
	if len(post.Tags) != 2 || post.Tags[1] != "serum" {
		t.Fatalf("unexpected tags %v", post.Tags)
	}
	if post.ThumbnailURL != "https://img.example/1.jpg" {
		t.Fatalf("unexpected thumbnail %q", post.ThumbnailURL)
	}
}

func TestBlogSearch(t *testing.T) {
	t.Parallel()

	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("q")
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(blogPage))
	}))
	defer srv.Close()

	b := NewBlogScanner(srv.URL+"/search", map[string]string{"query_param": "q"}, srv.Client())
	results, err := b.Search(context.Background(), scanner.Query{Text: "glow review", MaxResults: 10})
	if err != nil {
		t.Fatalf("Search error: %v", err)
	}
	if gotQuery != "glow review" {
		t.Fatalf("unexpected query %q", gotQuery)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 unique posts, got %d", len(results))
	}
	for _, r := range results {
		if r.Platform != domain.PlatformBlog {
			t.Fatalf("unexpected platform %s", r.Platform)
		}
	}

	limited, err := b.Search(context.Background(), scanner.Query{Text: "glow review", MaxResults: 1})
	if err != nil {
		t.Fatalf("Search error: %v", err)
	}
	if len(limited) != 1 {
		t.Fatalf("expected MaxResults to cap results, got %d", len(limited))
	}
}

func TestBlogSearchStatusError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	b := NewBlogScanner(srv.URL, nil, srv.Client())
	if _, err := b.Search(context.Background(), scanner.Query{Text: "x"}); err == nil {
		t.Fatalf("expected status error")
	}
}
