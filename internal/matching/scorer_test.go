package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"ReviewScout/internal/domain"
)

var serum = domain.Product{Code: "P-1", Name: "Aqua Serum"}

func candidate(title, description string) domain.Candidate {
	return domain.Candidate{Title: title, Description: description}
}

func TestHashtagOverlap(t *testing.T) {
	s := NewScorer(Thresholds{}, nil)
	tags := []string{"hydration", "glow", "cica", "vegan"}

	tests := []struct {
		name      string
		tags      []string
		candidate domain.Candidate
		wantScore int
		wantOK    bool
	}{
		{"ratio of matched tags", tags, candidate("Morning #Hydration routine", "so much glow"), 50, true},
		{"all tags", tags, candidate("hydration glow cica vegan", ""), 100, true},
		{"rounded ratio", []string{"a1", "b2", "c3"}, candidate("a1 only", ""), 33, true},
		{"name fallback", tags, candidate("My aqua serum week", ""), 80, true},
		{"name fallback without tags", nil, candidate("AQUA SERUM!", ""), 80, true},
		{"reject", tags, candidate("unrelated", "nothing here"), 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score, ok := s.Score(PolicyHashtagOverlap, serum, tt.tags, tt.candidate)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantScore, score)
		})
	}
}

func TestWeightedSum(t *testing.T) {
	s := NewScorer(Thresholds{}, nil)
	tags := []string{"hydration", "glow", "cica", "vegan"}

	tests := []struct {
		name      string
		candidate domain.Candidate
		wantScore int
		wantOK    bool
	}{
		{"one tag", candidate("hydration", ""), 20, true},
		{"tag cap", candidate("hydration glow cica vegan", ""), 60, true},
		{"everything", candidate("Aqua Serum review", "hydration glow cica vegan"), 100, true},
		{"name and keyword", candidate("aqua serum 후기", ""), 40, true},
		{"keyword only below threshold", candidate("my review", ""), 10, false},
		{"nothing", candidate("cats", ""), 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score, ok := s.Score(PolicyWeightedSum, serum, tags, tt.candidate)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantScore, score)
		})
	}
}

func TestScoreAlwaysWithinBounds(t *testing.T) {
	generous := Thresholds{HashtagWeight: 90, HashtagCap: 500, NameBonus: 300, KeywordBonus: 100, MinAccept: 0, NameOnlyScore: 250, MaxScore: 1000}
	s := NewScorer(generous, nil)
	c := candidate("Aqua Serum review hydration glow", "")

	for _, policy := range []Policy{PolicyHashtagOverlap, PolicyWeightedSum} {
		score, _ := s.Score(policy, serum, []string{"hydration", "glow"}, c)
		assert.GreaterOrEqual(t, score, 0)
		assert.LessOrEqual(t, score, 100)
	}

	score, ok := s.Score(PolicyHashtagOverlap, serum, nil, c)
	assert.True(t, ok)
	assert.Equal(t, 100, score)
}

func TestTagsFromCandidateCount(t *testing.T) {
	s := NewScorer(Thresholds{}, nil)
	c := domain.Candidate{Title: "clip", Tags: []string{"Glow"}}

	score, ok := s.Score(PolicyWeightedSum, serum, []string{"glow"}, c)

	assert.True(t, ok)
	assert.Equal(t, 20, score)
}

func TestParsePolicy(t *testing.T) {
	p, err := ParsePolicy(" Weighted-Sum ")
	assert.NoError(t, err)
	assert.Equal(t, PolicyWeightedSum, p)

	_, err = ParsePolicy("magic")
	assert.Error(t, err)

	assert.Equal(t, PolicyHashtagOverlap, DefaultPolicy(domain.PlatformPhotoPost))
	assert.Equal(t, PolicyWeightedSum, DefaultPolicy(domain.PlatformVideo))
}
