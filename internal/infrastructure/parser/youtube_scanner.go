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
	"ReviewScout/internal/scanner"
)

// YouTubeScanner searches the YouTube Data API v3. The same adapter serves
// long-form videos and shorts, the latter via videoDuration=short.
type YouTubeScanner struct {
	api      jsonAPI
	apiKey   string
	platform domain.Platform
	options  map[string]string
}

var (
	_ scanner.Scanner       = (*YouTubeScanner)(nil)
	_ scanner.DetailFetcher = (*YouTubeScanner)(nil)
)

// NewYouTubeScanner wires an HTTP client for the given platform.
// Options: video_duration, region_code, relevance_language, order.
func NewYouTubeScanner(platform domain.Platform, endpoint, apiKey string, options map[string]string, client *http.Client) *YouTubeScanner {
	return &YouTubeScanner{
		api:      newJSONAPI(endpoint, client),
		apiKey:   apiKey,
		platform: platform,
		options:  options,
	}
}

// Platform identifies the scanner inside the registry.
func (y *YouTubeScanner) Platform() domain.Platform {
	return y.platform
}

type youtubeSearchResponse struct {
	Items []struct {
		ID struct {
			VideoID string `json:"videoId"`
		} `json:"id"`
		Snippet youtubeSnippet `json:"snippet"`
	} `json:"items"`
}

type youtubeSnippet struct {
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	ChannelTitle string    `json:"channelTitle"`
	PublishedAt  time.Time `json:"publishedAt"`
	Tags         []string  `json:"tags"`
	Thumbnails   map[string]struct {
		URL string `json:"url"`
	} `json:"thumbnails"`
}

// Search runs one search.list call.
func (y *YouTubeScanner) Search(ctx context.Context, q scanner.Query) ([]domain.Candidate, error) {
	if y.apiKey == "" {
		return nil, fmt.Errorf("youtube: api key is not configured")
	}

	params := url.Values{}
	params.Set("part", "snippet")
	params.Set("type", "video")
	params.Set("q", q.Text)
	params.Set("maxResults", strconv.Itoa(clampResults(q.MaxResults, 50)))
	params.Set("key", y.apiKey)
	if d := y.videoDuration(); d != "" {
		params.Set("videoDuration", d)
	}
	for opt, param := range map[string]string{"region_code": "regionCode", "relevance_language": "relevanceLanguage", "order": "order"} {
		if v := y.options[opt]; v != "" {
			params.Set(param, v)
		}
	}

	var resp youtubeSearchResponse
	if err := y.api.get(ctx, "/search", params, &resp); err != nil {
		return nil, fmt.Errorf("youtube search: %w", err)
	}

	candidates := make([]domain.Candidate, 0, len(resp.Items))
	for _, item := range resp.Items {
		if item.ID.VideoID == "" {
			continue
		}
		candidates = append(candidates, domain.Candidate{
			Platform:     y.platform,
			ExternalID:   item.ID.VideoID,
			Title:        item.Snippet.Title,
			Description:  item.Snippet.Description,
			Author:       item.Snippet.ChannelTitle,
			URL:          y.watchURL(item.ID.VideoID),
			ThumbnailURL: item.Snippet.thumbnail(),
			Tags:         item.Snippet.Tags,
			PublishedAt:  item.Snippet.PublishedAt,
		})
	}
	return candidates, nil
}

type youtubeVideosResponse struct {
	Items []struct {
		ID         string `json:"id"`
		Statistics struct {
			ViewCount    string `json:"viewCount"`
			LikeCount    string `json:"likeCount"`
			CommentCount string `json:"commentCount"`
		} `json:"statistics"`
	} `json:"items"`
}

// Details looks up view, like and comment counters in batches of 50.
func (y *YouTubeScanner) Details(ctx context.Context, ids []string) (map[string]domain.Engagement, error) {
	out := make(map[string]domain.Engagement, len(ids))
	for start := 0; start < len(ids); start += 50 {
		end := start + 50
		if end > len(ids) {
			end = len(ids)
		}

		params := url.Values{}
		params.Set("part", "statistics")
		params.Set("id", strings.Join(ids[start:end], ","))
		params.Set("key", y.apiKey)

		var resp youtubeVideosResponse
		if err := y.api.get(ctx, "/videos", params, &resp); err != nil {
			return nil, fmt.Errorf("youtube videos: %w", err)
		}
		for _, item := range resp.Items {
			out[item.ID] = domain.Engagement{
				Views:    parseCount(item.Statistics.ViewCount),
				Likes:    parseCount(item.Statistics.LikeCount),
				Comments: parseCount(item.Statistics.CommentCount),
			}
		}
	}
	return out, nil
}

func (y *YouTubeScanner) videoDuration() string {
	if d := y.options["video_duration"]; d != "" {
		return d
	}
	if y.platform == domain.PlatformShortVideo {
		return "short"
	}
	return ""
}

func (y *YouTubeScanner) watchURL(id string) string {
	if y.platform == domain.PlatformShortVideo {
		return "https://www.youtube.com/shorts/" + id
	}
	return "https://www.youtube.com/watch?v=" + id
}

func (s youtubeSnippet) thumbnail() string {
	for _, size := range []string{"high", "medium", "default"} {
		if t, ok := s.Thumbnails[size]; ok && t.URL != "" {
			return t.URL
		}
	}
	return ""
}

func parseCount(value string) int64 {
	n, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
	if err != nil {
		return 0
	}
	return n
}

func clampResults(n, limit int) int {
	if n <= 0 {
		return 10
	}
	if n > limit {
		return limit
	}
	return n
}
