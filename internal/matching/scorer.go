// Package matching decides whether a candidate post is about a product.
package matching

import (
	"fmt"
	"math"
	"strings"

	"ReviewScout/internal/domain"
)

// Policy selects a scoring formula.
type Policy string

const (
	PolicyHashtagOverlap Policy = "hashtag-overlap"
	PolicyWeightedSum    Policy = "weighted-sum"
)

// ParsePolicy validates a configured policy name.
func ParsePolicy(value string) (Policy, error) {
	switch p := Policy(strings.ToLower(strings.TrimSpace(value))); p {
	case PolicyHashtagOverlap, PolicyWeightedSum:
		return p, nil
	}
	return "", fmt.Errorf("unknown match policy %q", value)
}

// DefaultPolicy is used for platforms with no configured policy.
func DefaultPolicy(platform domain.Platform) Policy {
	switch platform {
	case domain.PlatformPhotoPost, domain.PlatformBlog:
		return PolicyHashtagOverlap
	default:
		return PolicyWeightedSum
	}
}

// Thresholds are the tunable constants of both policies.
type Thresholds struct {
	HashtagWeight int `yaml:"hashtagWeight" env:"MATCH_HASHTAG_WEIGHT" env-default:"20"`
	HashtagCap    int `yaml:"hashtagCap" env:"MATCH_HASHTAG_CAP" env-default:"60"`
	NameBonus     int `yaml:"nameBonus" env:"MATCH_NAME_BONUS" env-default:"30"`
	KeywordBonus  int `yaml:"keywordBonus" env:"MATCH_KEYWORD_BONUS" env-default:"10"`
	MinAccept     int `yaml:"minAccept" env:"MATCH_MIN_ACCEPT" env-default:"20"`
	NameOnlyScore int `yaml:"nameOnlyScore" env:"MATCH_NAME_ONLY_SCORE" env-default:"80"`
	MaxScore      int `yaml:"maxScore" env:"MATCH_MAX_SCORE" env-default:"100"`
}

// DefaultThresholds mirrors the env-default tags above.
func DefaultThresholds() Thresholds {
	return Thresholds{
		HashtagWeight: 20,
		HashtagCap:    60,
		NameBonus:     30,
		KeywordBonus:  10,
		MinAccept:     20,
		NameOnlyScore: 80,
		MaxScore:      100,
	}
}

var defaultReviewKeywords = []string{"review", "recommend", "haul", "후기", "리뷰", "추천", "사용기"}

// Scorer computes 0-100 relevance scores.
type Scorer struct {
	thresholds     Thresholds
	reviewKeywords []string
}

// NewScorer builds a scorer; a zero Thresholds value means defaults.
func NewScorer(t Thresholds, reviewKeywords []string) *Scorer {
	if t == (Thresholds{}) {
		t = DefaultThresholds()
	}
	if len(reviewKeywords) == 0 {
		reviewKeywords = defaultReviewKeywords
	}
	lowered := make([]string, 0, len(reviewKeywords))
	for _, k := range reviewKeywords {
		if k = strings.ToLower(strings.TrimSpace(k)); k != "" {
			lowered = append(lowered, k)
		}
	}
	return &Scorer{thresholds: t, reviewKeywords: lowered}
}

// Thresholds returns the active constants.
func (s *Scorer) Thresholds() Thresholds {
	return s.thresholds
}

// Score rates candidate against product. ok=false means reject silently.
func (s *Scorer) Score(policy Policy, product domain.Product, hashtags []string, candidate domain.Candidate) (int, bool) {
	text := candidate.Text()
	switch policy {
	case PolicyHashtagOverlap:
		return s.hashtagOverlap(product, hashtags, text)
	default:
		return s.weightedSum(product, hashtags, text)
	}
}

func (s *Scorer) hashtagOverlap(product domain.Product, hashtags []string, text string) (int, bool) {
	if len(hashtags) > 0 {
		matched := countMatched(hashtags, text)
		if matched > 0 {
			ratio := float64(matched) / float64(len(hashtags)) * 100
			return s.clamp(int(math.Round(ratio))), true
		}
	}
	if nameMatches(product.Name, text) {
		return s.clamp(s.thresholds.NameOnlyScore), true
	}
	return 0, false
}

func (s *Scorer) weightedSum(product domain.Product, hashtags []string, text string) (int, bool) {
	t := s.thresholds

	score := countMatched(hashtags, text) * t.HashtagWeight
	if score > t.HashtagCap {
		score = t.HashtagCap
	}
	if nameMatches(product.Name, text) {
		score += t.NameBonus
	}
	if s.mentionsReview(text) {
		score += t.KeywordBonus
	}

	score = s.clamp(score)
	if score < t.MinAccept {
		return score, false
	}
	return score, true
}

func (s *Scorer) mentionsReview(text string) bool {
	for _, k := range s.reviewKeywords {
		if strings.Contains(text, k) {
			return true
		}
	}
	return false
}

func (s *Scorer) clamp(score int) int {
	upper := s.thresholds.MaxScore
	if upper <= 0 || upper > 100 {
		upper = 100
	}
	if score < 0 {
		return 0
	}
	if score > upper {
		return upper
	}
	return score
}

// countMatched counts hashtags present in text, with or without the '#'.
func countMatched(hashtags []string, text string) int {
	matched := 0
	for _, tag := range hashtags {
		tag = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(tag), "#"))
		if tag == "" {
			continue
		}
		if strings.Contains(text, tag) {
			matched++
		}
	}
	return matched
}

func nameMatches(name, text string) bool {
	name = strings.ToLower(strings.TrimSpace(name))
	return name != "" && strings.Contains(text, name)
}
