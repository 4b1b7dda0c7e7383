// Package query turns product hashtags into external search queries.
package query

import "strings"

const (
	defaultQualifier          = "review"
	defaultLocalizedQualifier = "후기"
)

// Planner builds combination queries, largest hashtag subsets first.
type Planner struct {
	Qualifier          string
	LocalizedQualifier string
}

// NewPlanner returns a planner with the default qualifiers.
func NewPlanner() *Planner {
	return &Planner{
		Qualifier:          defaultQualifier,
		LocalizedQualifier: defaultLocalizedQualifier,
	}
}

// Plan returns de-duplicated queries. With hashtags it emits every
// combination from size len(hashtags) down to 1; without, two name-based
// fallbacks.
func (p *Planner) Plan(hashtags []string, productName string) []string {
	return p.PlanN(hashtags, productName, 0)
}

// PlanN is Plan stopped after the first limit queries, so callers that
// execute only a few never enumerate all 2^n-1 combinations. A limit <= 0
// means no limit.
func (p *Planner) PlanN(hashtags []string, productName string, limit int) []string {
	qualifier := p.qualifier()
	tags := cleanTags(hashtags)

	if len(tags) == 0 {
		name := strings.TrimSpace(productName)
		if name == "" {
			return nil
		}
		return truncate(dedupe([]string{
			name + " " + qualifier,
			name + " " + p.localizedQualifier(),
		}), limit)
	}

	var queries []string
	seen := map[string]struct{}{}
	full := func() bool { return limit > 0 && len(queries) >= limit }
	for size := len(tags); size >= 1 && !full(); size-- {
		eachCombination(tags, size, func(combo []string) bool {
			q := strings.Join(combo, " ") + " " + qualifier
			if _, ok := seen[q]; !ok {
				seen[q] = struct{}{}
				queries = append(queries, q)
			}
			return !full()
		})
	}
	return queries
}

// Combinations returns all k-element subsets of items in lexicographic index order.
func Combinations(items []string, k int) [][]string {
	var result [][]string
	eachCombination(items, k, func(combo []string) bool {
		result = append(result, append([]string(nil), combo...))
		return true
	})
	return result
}

// eachCombination visits k-element subsets in lexicographic index order
// until fn returns false.
func eachCombination(items []string, k int, fn func(combo []string) bool) {
	n := len(items)
	if k <= 0 || k > n {
		return
	}

	idx := make([]int, k)
	for i := range idx {
		idx[i] = i
	}
	combo := make([]string, k)
	for {
		for i, j := range idx {
			combo[i] = items[j]
		}
		if !fn(combo) {
			return
		}

		// Advance the rightmost index that still has room.
		i := k - 1
		for i >= 0 && idx[i] == n-k+i {
			i--
		}
		if i < 0 {
			return
		}
		idx[i]++
		for j := i + 1; j < k; j++ {
			idx[j] = idx[j-1] + 1
		}
	}
}

func (p *Planner) qualifier() string {
	if p == nil || strings.TrimSpace(p.Qualifier) == "" {
		return defaultQualifier
	}
	return strings.TrimSpace(p.Qualifier)
}

func (p *Planner) localizedQualifier() string {
	if p == nil || strings.TrimSpace(p.LocalizedQualifier) == "" {
		return defaultLocalizedQualifier
	}
	return strings.TrimSpace(p.LocalizedQualifier)
}

func cleanTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := map[string]struct{}{}
	for _, tag := range tags {
		tag = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(tag), "#"))
		if tag == "" {
			continue
		}
		key := strings.ToLower(tag)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, tag)
	}
	return out
}

func dedupe(queries []string) []string {
	out := make([]string, 0, len(queries))
	seen := map[string]struct{}{}
	for _, q := range queries {
		key := strings.ToLower(q)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, q)
	}
	return out
}

func truncate(queries []string, limit int) []string {
	if limit > 0 && len(queries) > limit {
		return queries[:limit]
	}
	return queries
}
