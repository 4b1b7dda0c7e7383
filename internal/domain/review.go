package domain

import (
	"fmt"
	"strings"
	"time"
)

// Platform enumerates the external networks reviews are collected from.
type Platform string

const (
	PlatformVideo      Platform = "VIDEO"
	PlatformPhotoPost  Platform = "PHOTO_POST"
	PlatformShortVideo Platform = "SHORT_VIDEO"
	PlatformBlog       Platform = "BLOG"
)

// ParsePlatform accepts platform names case-insensitively.
func ParsePlatform(value string) (Platform, error) {
	p := Platform(strings.ToUpper(strings.TrimSpace(value)))
	switch p {
	case PlatformVideo, PlatformPhotoPost, PlatformShortVideo, PlatformBlog:
		return p, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownPlatform, value)
}

// ReviewStatus is the moderation state. Any state may move to any other.
type ReviewStatus string

const (
	StatusPending  ReviewStatus = "PENDING"
	StatusApproved ReviewStatus = "APPROVED"
	StatusRejected ReviewStatus = "REJECTED"
)

// Valid reports whether s is a known moderation state.
func (s ReviewStatus) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// Engagement holds the public counters reported by the platform.
type Engagement struct {
	Views    int64 `json:"views"`
	Likes    int64 `json:"likes"`
	Comments int64 `json:"comments"`
}

// ProductMatch links a review to a product with a 0-100 relevance score.
type ProductMatch struct {
	ProductCode string `json:"productCode"`
	MatchScore  int    `json:"matchScore"`
}

// Candidate is raw search-adapter output before scoring.
type Candidate struct {
	Platform     Platform
	ExternalID   string
	Title        string
	Description  string
	Author       string
	URL          string
	ThumbnailURL string
	Tags         []string
	PublishedAt  time.Time
	Engagement   Engagement
}

// Text returns the lower-cased searchable text of the candidate.
func (c Candidate) Text() string {
	parts := []string{c.Title, c.Description}
	parts = append(parts, c.Tags...)
	return strings.ToLower(strings.Join(parts, " "))
}

// SocialReview is a third-party post ingested as a candidate product review.
type SocialReview struct {
	ID              string         `json:"id"`
	Platform        Platform       `json:"platform"`
	ExternalID      string         `json:"externalId"`
	Title           string         `json:"title"`
	Description     string         `json:"description"`
	Author          string         `json:"author"`
	URL             string         `json:"url"`
	ThumbnailURL    string         `json:"thumbnailUrl,omitempty"`
	PublishedAt     time.Time      `json:"publishedAt"`
	Engagement      Engagement     `json:"engagement"`
	MatchedProducts []ProductMatch `json:"matchedProducts"`
	Status          ReviewStatus   `json:"status"`
	CreatedAt       time.Time      `json:"createdAt"`
	UpdatedAt       time.Time      `json:"updatedAt"`
}

// Key is the dedup identity of a review.
func (r SocialReview) Key() ReviewKey {
	return ReviewKey{Platform: r.Platform, ExternalID: r.ExternalID}
}

// Matches reports whether the review was matched to productCode.
func (r SocialReview) Matches(productCode string) bool {
	for _, m := range r.MatchedProducts {
		if m.ProductCode == productCode {
			return true
		}
	}
	return false
}

// ReviewKey identifies a post across collection runs.
type ReviewKey struct {
	Platform   Platform
	ExternalID string
}

func (k ReviewKey) String() string {
	return string(k.Platform) + ":" + k.ExternalID
}
