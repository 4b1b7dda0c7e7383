package parser

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"ReviewScout/internal/domain"
	"ReviewScout/internal/hashtag"
	"ReviewScout/internal/scanner"
)

var blogDateLayouts = []string{
	"2006-01-02",
	"2006.01.02.",
	"2006.01.02",
	"2006. 1. 2.",
	"Jan 2, 2006",
	"2 Jan 2006",
	time.RFC3339,
}

// blogSelectors locate result fields on a search results page.
type blogSelectors struct {
	Item    string
	Title   string
	Snippet string
	Author  string
	Date    string
	Thumb   string
}

func defaultBlogSelectors() blogSelectors {
	return blogSelectors{
		Item:    "li.bx, .search-result, article",
		Title:   "a.title_link, a.api_txt_lines.total_tit, .title a, h2 a, h3 a",
		Snippet: ".dsc_link, .api_txt_lines.dsc_txt, .snippet, .desc, p",
		Author:  ".name, .sub_txt.sub_name, .author",
		Date:    ".sub_time, .date, time",
		Thumb:   "img",
	}
}

// BlogScanner scrapes an HTML search results page.
type BlogScanner struct {
	client     *http.Client
	endpoint   string
	queryParam string
	limitParam string
	selectors  blogSelectors
}

var _ scanner.Scanner = (*BlogScanner)(nil)

// NewBlogScanner wires an HTTP client.
// Options: query_param, limit_param and the item/title/snippet/author/date/thumb selectors.
func NewBlogScanner(endpoint string, options map[string]string, client *http.Client) *BlogScanner {
	if client == nil {
		client = &http.Client{Timeout: 20 * time.Second}
	}
	sel := defaultBlogSelectors()
	for key, target := range map[string]*string{
		"item_selector":    &sel.Item,
		"title_selector":   &sel.Title,
		"snippet_selector": &sel.Snippet,
		"author_selector":  &sel.Author,
		"date_selector":    &sel.Date,
		"thumb_selector":   &sel.Thumb,
	} {
		if v := options[key]; v != "" {
			*target = v
		}
	}
	queryParam := options["query_param"]
	if queryParam == "" {
		queryParam = "query"
	}
	return &BlogScanner{
		client:     client,
		endpoint:   endpoint,
		queryParam: queryParam,
		limitParam: options["limit_param"],
		selectors:  sel,
	}
}

// Platform identifies the scanner inside the registry.
func (b *BlogScanner) Platform() domain.Platform {
	return domain.PlatformBlog
}

// Search fetches one results page and extracts its posts.
func (b *BlogScanner) Search(ctx context.Context, q scanner.Query) ([]domain.Candidate, error) {
	pageURL, err := buildSearchURL(b.endpoint, b.queryParam, q.Text, b.limitParam, q.MaxResults)
	if err != nil {
		return nil, err
	}

	doc, err := b.fetchDocument(ctx, pageURL)
	if err != nil {
		return nil, err
	}

	base, _ := url.Parse(pageURL)
	results := b.extractPosts(doc, base)
	if q.MaxResults > 0 && len(results) > q.MaxResults {
		results = results[:q.MaxResults]
	}
	return results, nil
}

func (b *BlogScanner) fetchDocument(ctx context.Context, pageURL string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := b.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request document: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("blog search returned %s", resp.Status)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}
	return doc, nil
}

func (b *BlogScanner) extractPosts(doc *goquery.Document, base *url.URL) []domain.Candidate {
	var collected []domain.Candidate
	seen := map[string]struct{}{}

	doc.Find(b.selectors.Item).Each(func(_ int, item *goquery.Selection) {
		post, ok := b.parsePost(item, base)
		if !ok {
			return
		}
		if _, dup := seen[post.ExternalID]; dup {
			return
		}
		seen[post.ExternalID] = struct{}{}
		collected = append(collected, post)
	})
	return collected
}

func (b *BlogScanner) parsePost(item *goquery.Selection, base *url.URL) (domain.Candidate, bool) {
	link := item.Find(b.selectors.Title).First()
	title := collapse(link.Text())
	href, _ := link.Attr("href")
	if title == "" || href == "" {
		return domain.Candidate{}, false
	}
	href = resolveLink(base, href)

	snippet := collapse(item.Find(b.selectors.Snippet).First().Text())
	thumb, _ := item.Find(b.selectors.Thumb).First().Attr("src")

	return domain.Candidate{
		Platform:     domain.PlatformBlog,
		ExternalID:   href,
		Title:        title,
		Description:  snippet,
		Author:       collapse(item.Find(b.selectors.Author).First().Text()),
		URL:          href,
		ThumbnailURL: thumb,
		Tags:         hashtag.ExtractText(snippet),
		PublishedAt:  parseBlogDate(collapse(item.Find(b.selectors.Date).First().Text())),
	}, true
}

func buildSearchURL(base, queryParam, query, limitParam string, limit int) (string, error) {
	parsed, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("invalid blog search url %s: %w", base, err)
	}

	values := parsed.Query()
	values.Set(queryParam, query)
	if limitParam != "" && limit > 0 {
		values.Set(limitParam, strconv.Itoa(limit))
	}
	parsed.RawQuery = values.Encode()
	return parsed.String(), nil
}

func resolveLink(base *url.URL, href string) string {
	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil || base == nil {
		return href
	}
	return base.ResolveReference(ref).String()
}

func parseBlogDate(text string) time.Time {
	for _, layout := range blogDateLayouts {
		if t, err := time.Parse(layout, text); err == nil {
			return t
		}
	}
	return time.Time{}
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
