package resolution

import (
	"fmt"
	"strings"

	"ReviewScout/internal/domain"
)

// Persona is the fixed head of every system prompt.
const Persona = `You are a beauty editor. You read social media reviews of one skincare product and write an honest, concise summary for shoppers.
Reply with a single JSON object and nothing else:
{"narrative": "running analysis of everything reviewers said so far",
 "summary": "two or three sentences for the product page",
 "headline": "one short line",
 "hashtags": ["up to 10 keywords without #"],
 "sentiment": {"positiveRatio": 0, "negativeRatio": 0}}
positiveRatio and negativeRatio are integers that add up to 100.`

const maxReviewChars = 600

// PromptInput gathers everything the prompt is assembled from.
type PromptInput struct {
	ProductCode       string
	Reviews           []domain.SocialReview
	Direction         string
	PreviousNarrative string
	// Feedback is newest first.
	Feedback []domain.FeedbackRecord
}

// BuildPrompt returns the system and user prompts.
func BuildPrompt(in PromptInput) (system, user string) {
	var sb strings.Builder
	sb.WriteString(Persona)

	if dir := strings.TrimSpace(in.Direction); dir != "" {
		sb.WriteString("\n\nEditor direction for this product:\n")
		sb.WriteString(dir)
	}
	if prev := strings.TrimSpace(in.PreviousNarrative); prev != "" {
		sb.WriteString("\n\nYour previous analysis. Extend and correct it rather than starting over:\n")
		sb.WriteString(prev)
	}
	if len(in.Feedback) > 0 {
		sb.WriteString("\n\nEditors corrected earlier summaries. Follow their style:")
		for i, fb := range in.Feedback {
			fmt.Fprintf(&sb, "\n%d. Original: %s\n   Corrected: %s", i+1,
				oneLine(fb.OriginalSummary), oneLine(fb.CorrectedSummary))
		}
	}
	system = sb.String()

	var ub strings.Builder
	fmt.Fprintf(&ub, "Product: %s\nApproved reviews: %d\n", in.ProductCode, len(in.Reviews))
	for i, r := range in.Reviews {
		fmt.Fprintf(&ub, "\n[%d] %s | %s\n", i+1, r.Platform, oneLine(r.Title))
		if desc := truncate(oneLine(r.Description), maxReviewChars); desc != "" {
			ub.WriteString(desc)
			ub.WriteByte('\n')
		}
		fmt.Fprintf(&ub, "views=%d likes=%d comments=%d\n",
			r.Engagement.Views, r.Engagement.Likes, r.Engagement.Comments)
	}
	user = ub.String()
	return system, user
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "…"
}
