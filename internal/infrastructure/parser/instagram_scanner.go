package parser

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"ReviewScout/internal/domain"
	"ReviewScout/internal/hashtag"
	"ReviewScout/internal/scanner"
)

const instagramTimeLayout = "2006-01-02T15:04:05-0700"

// InstagramScanner searches photo posts through the Instagram Graph API
// hashtag endpoints. A query becomes one hashtag: its terms without the
// trailing qualifier, concatenated.
type InstagramScanner struct {
	api        jsonAPI
	token      string
	userID     string
	edge       string
	qualifiers map[string]struct{}
}

var _ scanner.Scanner = (*InstagramScanner)(nil)

// NewInstagramScanner wires an HTTP client.
// Options: user_id (required), edge (recent_media or top_media), qualifiers (comma separated).
func NewInstagramScanner(endpoint, token string, options map[string]string, client *http.Client) *InstagramScanner {
	edge := options["edge"]
	if edge != "top_media" {
		edge = "recent_media"
	}
	qualifiers := "review,후기"
	if v := options["qualifiers"]; v != "" {
		qualifiers = v
	}
	set := map[string]struct{}{}
	for _, q := range strings.Split(qualifiers, ",") {
		if q = strings.ToLower(strings.TrimSpace(q)); q != "" {
			set[q] = struct{}{}
		}
	}
	return &InstagramScanner{
		api:        newJSONAPI(endpoint, client),
		token:      token,
		userID:     options["user_id"],
		edge:       edge,
		qualifiers: set,
	}
}

// Platform identifies the scanner inside the registry.
func (s *InstagramScanner) Platform() domain.Platform {
	return domain.PlatformPhotoPost
}

type instagramHashtagResponse struct {
	Data []struct {
		ID string `json:"id"`
	} `json:"data"`
}

type instagramMediaResponse struct {
	Data []struct {
		ID            string `json:"id"`
		Caption       string `json:"caption"`
		MediaType     string `json:"media_type"`
		MediaURL      string `json:"media_url"`
		Permalink     string `json:"permalink"`
		Timestamp     string `json:"timestamp"`
		LikeCount     int64  `json:"like_count"`
		CommentsCount int64  `json:"comments_count"`
	} `json:"data"`
}

// Search resolves the hashtag id, then reads its media edge.
func (s *InstagramScanner) Search(ctx context.Context, q scanner.Query) ([]domain.Candidate, error) {
	if s.token == "" || s.userID == "" {
		return nil, fmt.Errorf("instagram: access token and user_id are required")
	}
	tag := s.hashtagFor(q.Text)
	if tag == "" {
		return nil, nil
	}

	params := url.Values{}
	params.Set("user_id", s.userID)
	params.Set("q", tag)
	params.Set("access_token", s.token)

	var found instagramHashtagResponse
	if err := s.api.get(ctx, "/ig_hashtag_search", params, &found); err != nil {
		return nil, fmt.Errorf("instagram hashtag search: %w", err)
	}
	if len(found.Data) == 0 {
		return nil, nil
	}

	params = url.Values{}
	params.Set("user_id", s.userID)
	params.Set("fields", "id,caption,media_type,media_url,permalink,timestamp,like_count,comments_count")
	params.Set("limit", strconv.Itoa(clampResults(q.MaxResults, 50)))
	params.Set("access_token", s.token)

	var media instagramMediaResponse
	if err := s.api.get(ctx, "/"+found.Data[0].ID+"/"+s.edge, params, &media); err != nil {
		return nil, fmt.Errorf("instagram %s: %w", s.edge, err)
	}

	candidates := make([]domain.Candidate, 0, len(media.Data))
	for _, m := range media.Data {
		if m.ID == "" {
			continue
		}
		published, _ := time.Parse(instagramTimeLayout, m.Timestamp)
		candidates = append(candidates, domain.Candidate{
			Platform:     domain.PlatformPhotoPost,
			ExternalID:   m.ID,
			Title:        firstLine(m.Caption, 100),
			Description:  m.Caption,
			URL:          m.Permalink,
			ThumbnailURL: m.MediaURL,
			Tags:         hashtag.ExtractText(m.Caption),
			PublishedAt:  published,
			Engagement:   domain.Engagement{Likes: m.LikeCount, Comments: m.CommentsCount},
		})
	}
	return candidates, nil
}

func (s *InstagramScanner) hashtagFor(query string) string {
	var parts []string
	for _, field := range strings.Fields(strings.ToLower(query)) {
		field = strings.TrimLeft(field, "#")
		if _, skip := s.qualifiers[field]; skip || field == "" {
			continue
		}
		parts = append(parts, field)
	}
	return strings.Join(parts, "")
}

func firstLine(text string, limit int) string {
	line := strings.TrimSpace(text)
	if i := strings.IndexByte(line, '\n'); i >= 0 {
		line = strings.TrimSpace(line[:i])
	}
	runes := []rune(line)
	if len(runes) > limit {
		return string(runes[:limit])
	}
	return line
}
