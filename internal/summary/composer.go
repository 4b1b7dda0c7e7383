// Package summary renders the keyword-fallback narrative shown to shoppers.
package summary

import (
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"ReviewScout/internal/domain"
	"ReviewScout/internal/keywords"
)

// Picker chooses an index in [0,n). *rand.Rand satisfies it.
type Picker interface {
	Intn(n int) int
}

// FixedPicker always picks the same index, clamped to the bank size.
type FixedPicker int

func (f FixedPicker) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	i := int(f)
	if i < 0 {
		i = 0
	}
	return i % n
}

type lockedPicker struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

func (l *lockedPicker) Intn(n int) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.rnd.Intn(n)
}

// NewRandomPicker returns a goroutine-safe seeded picker.
func NewRandomPicker(seed int64) Picker {
	return &lockedPicker{rnd: rand.New(rand.NewSource(seed))}
}

// Verdict tiers by positive ratio.
const (
	VerdictConfident = "confident"
	VerdictQualified = "qualified"
	VerdictMixed     = "mixed"
)

// VerdictFor maps a positive ratio onto a verdict tier.
func VerdictFor(positiveRatio int) string {
	switch {
	case positiveRatio >= 70:
		return VerdictConfident
	case positiveRatio >= 50:
		return VerdictQualified
	default:
		return VerdictMixed
	}
}

// Composition is the composer output.
type Composition struct {
	Narrative string
	Headline  string
	Effect    string
	Texture   string
	Verdict   string
}

// Composer picks phrases from the banks.
type Composer struct {
	picker Picker
	banks  PhraseBanks
}

// NewComposer uses picker for phrase selection; nil seeds from the clock.
func NewComposer(picker Picker) *Composer {
	if picker == nil {
		picker = NewRandomPicker(time.Now().UnixNano())
	}
	return &Composer{picker: picker, banks: DefaultPhraseBanks()}
}

// Compose builds the narrative and headline for an analysis.
func (c *Composer) Compose(analysis keywords.Analysis, sentiment domain.Sentiment) Composition {
	comp := Composition{Verdict: VerdictFor(sentiment.PositiveRatio)}

	if hit, ok := analysis.Category(keywords.CategoryEffects).Dominant(); ok {
		comp.Effect = hit.Entry.Label()
	}
	if hit, ok := analysis.Category(keywords.CategoryTexture).Dominant(); ok {
		comp.Texture = hit.Entry.Label()
	}

	intro := c.pick(c.banks.Effects, comp.Effect)
	texture := c.pick(c.banks.Textures, comp.Texture)
	verdict := c.pick(c.banks.Verdicts, comp.Verdict)

	lines := []string{
		fill(intro, comp.Effect, "its everyday results"),
		fill(texture, comp.Texture, "formula"),
		fill(verdict, fmt.Sprintf("%d%%", sentiment.PositiveRatio), ""),
	}
	comp.Narrative = strings.Join(lines, "\n")
	comp.Headline = headline(comp, sentiment)
	return comp
}

func (c *Composer) pick(bank map[string][]string, key string) string {
	phrases := bank[strings.ToLower(key)]
	if len(phrases) == 0 {
		phrases = bank[defaultBucket]
	}
	if len(phrases) == 0 {
		return ""
	}
	return phrases[c.picker.Intn(len(phrases))]
}

func fill(phrase, value, fallback string) string {
	if value == "" {
		value = fallback
	}
	return strings.ReplaceAll(phrase, "{}", value)
}

func headline(comp Composition, sentiment domain.Sentiment) string {
	var parts []string
	if comp.Effect != "" {
		parts = append(parts, comp.Effect)
	}
	if comp.Texture != "" {
		parts = append(parts, comp.Texture+" texture")
	}
	parts = append(parts, fmt.Sprintf("%d%% positive", sentiment.PositiveRatio))
	return strings.Join(parts, " · ")
}
