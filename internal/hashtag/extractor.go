// Package hashtag pulls hashtag tokens out of product detail blobs and post text.
package hashtag

import (
	"encoding/base64"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

var tagExpr = regexp.MustCompile(`#([\p{L}\p{N}_]+)`)

// Extract decodes a base64 HTML blob and returns its hashtags without the
// leading '#', de-duplicated case-insensitively in first-seen order.
// A missing or undecodable blob yields an empty list.
func Extract(blob string) []string {
	fragment, ok := decode(blob)
	if !ok {
		return []string{}
	}
	return ExtractText(htmlText(fragment))
}

// ExtractText returns the hashtags found in plain text.
func ExtractText(text string) []string {
	tags := []string{}
	seen := map[string]struct{}{}
	for _, m := range tagExpr.FindAllStringSubmatch(text, -1) {
		key := strings.ToLower(m[1])
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		tags = append(tags, m[1])
	}
	return tags
}

func decode(blob string) (string, bool) {
	blob = strings.TrimSpace(blob)
	if blob == "" {
		return "", false
	}
	// Newlines are common in stored base64.
	blob = strings.Join(strings.Fields(blob), "")

	encodings := []*base64.Encoding{
		base64.StdEncoding,
		base64.RawStdEncoding,
		base64.URLEncoding,
		base64.RawURLEncoding,
	}
	for _, enc := range encodings {
		if raw, err := enc.DecodeString(blob); err == nil {
			return string(raw), true
		}
	}
	return "", false
}

// htmlText flattens an HTML fragment into text. Text nodes are joined with
// spaces so tags in adjacent elements do not run together.
func htmlText(fragment string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return fragment
	}

	var parts []string
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && (n.Data == "script" || n.Data == "style") {
			return
		}
		if n.Type == html.TextNode {
			if text := strings.TrimSpace(n.Data); text != "" {
				parts = append(parts, text)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, n := range doc.Nodes {
		walk(n)
	}
	return strings.Join(parts, " ")
}
