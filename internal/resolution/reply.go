package resolution

import (
	"fmt"
	"strings"

	"ReviewScout/internal/domain"
	"ReviewScout/pkg/llmjson"
)

const maxAIHashtags = 10

type aiReply struct {
	Narrative string   `json:"narrative"`
	Summary   string   `json:"summary"`
	Headline  string   `json:"headline"`
	Hashtags  []string `json:"hashtags"`
	Sentiment struct {
		PositiveRatio *int `json:"positiveRatio"`
		NegativeRatio *int `json:"negativeRatio"`
	} `json:"sentiment"`
}

func parseReply(raw string) (aiReply, error) {
	reply, err := llmjson.Decode[aiReply](raw)
	if err != nil {
		return aiReply{}, fmt.Errorf("%w: %v", domain.ErrMalformedResponse, err)
	}
	reply.Summary = strings.TrimSpace(reply.Summary)
	if reply.Summary == "" {
		return aiReply{}, fmt.Errorf("%w: empty summary", domain.ErrMalformedResponse)
	}
	if reply.Narrative = strings.TrimSpace(reply.Narrative); reply.Narrative == "" {
		reply.Narrative = reply.Summary
	}
	reply.Headline = strings.TrimSpace(reply.Headline)
	reply.Hashtags = cleanHashtags(reply.Hashtags, maxAIHashtags)
	return reply, nil
}

func (r aiReply) sentiment() domain.Sentiment {
	switch {
	case r.Sentiment.PositiveRatio != nil:
		return domain.Sentiment{PositiveRatio: *r.Sentiment.PositiveRatio}.Normalize()
	case r.Sentiment.NegativeRatio != nil:
		return domain.Sentiment{PositiveRatio: 100 - *r.Sentiment.NegativeRatio}.Normalize()
	default:
		return domain.NeutralSentiment()
	}
}

func cleanHashtags(tags []string, limit int) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(tag), "#"))
		if tag == "" {
			continue
		}
		key := strings.ToLower(tag)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, tag)
		if len(out) == limit {
			break
		}
	}
	return out
}
