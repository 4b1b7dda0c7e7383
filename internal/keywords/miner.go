package keywords

import (
	"sort"
	"strings"
	"unicode"
)

const (
	defaultMinerMinCount = 2
	defaultMinerLimit    = 30
	boostFactor          = 2
)

// DynamicKeyword is a frequent term found without a dictionary entry.
type DynamicKeyword struct {
	Term    string
	Count   int
	Score   int
	Boosted bool
}

// Miner surfaces emergent terminology by frequency.
type Miner struct {
	stopwords map[string]struct{}
	boost     map[string]struct{}
	MinCount  int
	Limit     int
}

// NewMiner builds a miner with the given stop and boost vocabularies.
func NewMiner(stopwords, boost []string) *Miner {
	return &Miner{
		stopwords: toSet(stopwords),
		boost:     toSet(boost),
		MinCount:  defaultMinerMinCount,
		Limit:     defaultMinerLimit,
	}
}

// Tokens splits text into Latin runs of at least 3 letters and CJK runs of
// at least 2 characters, lower-cased. Stopwords are kept here.
func Tokens(text string) []string {
	var (
		tokens  []string
		current strings.Builder
		kind    runeKind
		length  int
	)

	flush := func() {
		if length > 0 && length >= kind.minLength() {
			tokens = append(tokens, current.String())
		}
		current.Reset()
		length = 0
		kind = kindOther
	}

	for _, r := range text {
		k := classify(r)
		if k == kindOther {
			flush()
			continue
		}
		if k != kind {
			flush()
			kind = k
		}
		current.WriteRune(unicode.ToLower(r))
		length++
	}
	flush()

	return tokens
}

// Mine counts tokens across texts and returns the top keywords by boosted score.
func (m *Miner) Mine(texts []string) []DynamicKeyword {
	counts := map[string]int{}
	for _, text := range texts {
		for _, tok := range Tokens(text) {
			if _, stop := m.stopwords[tok]; stop {
				continue
			}
			counts[tok]++
		}
	}

	minCount := m.MinCount
	if minCount <= 0 {
		minCount = defaultMinerMinCount
	}

	result := make([]DynamicKeyword, 0, len(counts))
	for term, count := range counts {
		if count < minCount {
			continue
		}
		kw := DynamicKeyword{Term: term, Count: count, Score: count}
		if _, ok := m.boost[term]; ok {
			kw.Boosted = true
			kw.Score = count * boostFactor
		}
		result = append(result, kw)
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].Score != result[j].Score {
			return result[i].Score > result[j].Score
		}
		return result[i].Term < result[j].Term
	})

	limit := m.Limit
	if limit <= 0 {
		limit = defaultMinerLimit
	}
	if len(result) > limit {
		result = result[:limit]
	}
	return result
}

type runeKind int

const (
	kindOther runeKind = iota
	kindLatin
	kindCJK
)

func (k runeKind) minLength() int {
	if k == kindCJK {
		return 2
	}
	return 3
}

func classify(r rune) runeKind {
	switch {
	case unicode.Is(unicode.Hangul, r), unicode.Is(unicode.Han, r),
		unicode.Is(unicode.Hiragana, r), unicode.Is(unicode.Katakana, r):
		return kindCJK
	case unicode.Is(unicode.Latin, r):
		return kindLatin
	default:
		return kindOther
	}
}

func toSet(words []string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		if w = strings.ToLower(strings.TrimSpace(w)); w != "" {
			set[w] = struct{}{}
		}
	}
	return set
}
