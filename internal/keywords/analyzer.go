package keywords

import (
	"sort"
	"strings"

	"ReviewScout/internal/domain"
)

const (
	defaultTopPerCategory = 5
	defaultHashtagLimit   = 20
)

// KeywordHit aggregates one dictionary entry across a review batch.
type KeywordHit struct {
	Entry Entry
	Count int
	// Score is Count × Entry.Weight.
	Score float64
}

// CategoryResult aggregates one category across a review batch.
type CategoryResult struct {
	Category Category
	Count    int
	Weight   float64
	// Hits holds every matched entry, highest score first; Top is its prefix.
	Hits []KeywordHit
	Top  []KeywordHit
}

// Dominant returns the highest scoring hit of the category.
func (c CategoryResult) Dominant() (KeywordHit, bool) {
	if len(c.Top) == 0 {
		return KeywordHit{}, false
	}
	return c.Top[0], true
}

// Analysis is the output of a batch run.
type Analysis struct {
	ReviewCount int
	Categories  map[Category]CategoryResult
	Dynamic     []DynamicKeyword
}

// Category returns the result for c, zero-valued when nothing matched.
func (a Analysis) Category(c Category) CategoryResult {
	if res, ok := a.Categories[c]; ok {
		return res
	}
	return CategoryResult{Category: c}
}

// RankedKeyword is an entry of the merged hashtag list.
type RankedKeyword struct {
	Keyword string
	Count   int
	Boosted bool
	Dynamic bool
}

// Analyzer runs dictionary matching and dynamic mining over reviews.
type Analyzer struct {
	dict           *Dictionary
	miner          *Miner
	TopPerCategory int
	HashtagLimit   int
}

// NewAnalyzer wires a lexicon; nil means the embedded default.
func NewAnalyzer(lex *Lexicon) *Analyzer {
	if lex == nil {
		lex = DefaultLexicon()
	}
	return &Analyzer{
		dict:           lex.Dictionary,
		miner:          NewMiner(lex.Stopwords, lex.Boost),
		TopPerCategory: defaultTopPerCategory,
		HashtagLimit:   defaultHashtagLimit,
	}
}

// Analyze aggregates keyword statistics over the given reviews.
func (a *Analyzer) Analyze(reviews []domain.SocialReview) Analysis {
	texts := make([]string, 0, len(reviews))
	for _, r := range reviews {
		texts = append(texts, strings.ToLower(r.Title+" "+r.Description))
	}
	return a.AnalyzeTexts(texts)
}

// AnalyzeTexts is Analyze over already combined texts.
func (a *Analyzer) AnalyzeTexts(texts []string) Analysis {
	lowered := make([]string, len(texts))
	for i, t := range texts {
		lowered[i] = strings.ToLower(t)
	}

	analysis := Analysis{
		ReviewCount: len(texts),
		Categories:  make(map[Category]CategoryResult, len(Categories)),
		Dynamic:     a.miner.Mine(lowered),
	}

	for _, cat := range Categories {
		hits := make(map[string]*KeywordHit)
		var order []string
		for _, entry := range a.dict.Entries(cat) {
			for _, text := range lowered {
				n := strings.Count(text, entry.Term)
				if n == 0 {
					continue
				}
				hit, ok := hits[entry.Term]
				if !ok {
					hit = &KeywordHit{Entry: entry}
					hits[entry.Term] = hit
					order = append(order, entry.Term)
				}
				hit.Count += n
				hit.Score += float64(n) * entry.Weight
			}
		}
		if len(order) == 0 {
			continue
		}

		res := CategoryResult{Category: cat}
		for _, term := range order {
			hit := hits[term]
			res.Count += hit.Count
			res.Weight += hit.Score
			res.Hits = append(res.Hits, *hit)
		}
		sort.SliceStable(res.Hits, func(i, j int) bool {
			return res.Hits[i].Score > res.Hits[j].Score
		})
		res.Top = res.Hits
		if top := a.topPerCategory(); len(res.Top) > top {
			res.Top = res.Top[:top]
		}
		analysis.Categories[cat] = res
	}

	return analysis
}

// Ranked merges dynamic keywords (first) with dictionary top keywords,
// de-duplicated by normalized key, ordered by (boosted, count) descending.
// Sentiment words are not hashtags and are left out.
func (a *Analyzer) Ranked(analysis Analysis) []RankedKeyword {
	var merged []RankedKeyword
	seen := map[string]struct{}{}
	add := func(kw RankedKeyword) {
		key := NormalizeKey(kw.Keyword)
		if key == "" {
			return
		}
		if _, ok := seen[key]; ok {
			return
		}
		seen[key] = struct{}{}
		merged = append(merged, kw)
	}

	for _, d := range analysis.Dynamic {
		add(RankedKeyword{Keyword: d.Term, Count: d.Count, Boosted: d.Boosted, Dynamic: true})
	}
	for _, cat := range Categories {
		if cat == CategorySentiment {
			continue
		}
		for _, hit := range analysis.Category(cat).Top {
			add(RankedKeyword{Keyword: hit.Entry.Label(), Count: hit.Count})
		}
	}

	sort.SliceStable(merged, func(i, j int) bool {
		if merged[i].Boosted != merged[j].Boosted {
			return merged[i].Boosted
		}
		return merged[i].Count > merged[j].Count
	})

	if limit := a.hashtagLimit(); len(merged) > limit {
		merged = merged[:limit]
	}
	return merged
}

// Hashtags returns the keyword strings of Ranked.
func (a *Analyzer) Hashtags(analysis Analysis) []string {
	ranked := a.Ranked(analysis)
	tags := make([]string, 0, len(ranked))
	for _, r := range ranked {
		tags = append(tags, r.Keyword)
	}
	return tags
}

// NormalizeKey folds case, spacing and separators so "Vitamin C" and
// "vitamin_c" collapse to one hashtag.
func NormalizeKey(keyword string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(keyword) {
		switch r {
		case ' ', '\t', '#', '-', '_':
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (a *Analyzer) topPerCategory() int {
	if a.TopPerCategory <= 0 {
		return defaultTopPerCategory
	}
	return a.TopPerCategory
}

func (a *Analyzer) hashtagLimit() int {
	if a.HashtagLimit <= 0 {
		return defaultHashtagLimit
	}
	return a.HashtagLimit
}
