// Package keywords extracts weighted dictionary keywords, emergent terms and
// sentiment from approved review text.
package keywords

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Category groups dictionary entries.
type Category string

const (
	CategoryTexture     Category = "texture"
	CategoryIngredients Category = "ingredients"
	CategoryEffects     Category = "effects"
	CategoryScent       Category = "scent"
	CategoryUsage       Category = "usage"
	CategoryTarget      Category = "target"
	CategorySentiment   Category = "sentiment"
)

// Categories lists every category in reporting order.
var Categories = []Category{
	CategoryTexture,
	CategoryIngredients,
	CategoryEffects,
	CategoryScent,
	CategoryUsage,
	CategoryTarget,
	CategorySentiment,
}

// Polarity tags sentiment entries.
type Polarity string

const (
	PolarityNone     Polarity = ""
	PolarityPositive Polarity = "positive"
	PolarityNegative Polarity = "negative"
)

// Entry is a single dictionary keyword.
type Entry struct {
	Term      string   `yaml:"term"`
	Category  Category `yaml:"-"`
	Weight    float64  `yaml:"weight"`
	Polarity  Polarity `yaml:"polarity"`
	Canonical string   `yaml:"canonical"`
}

// Label is the canonical form when present, the term otherwise.
func (e Entry) Label() string {
	if e.Canonical != "" {
		return e.Canonical
	}
	return e.Term
}

// Dictionary is a category-indexed keyword table, built once at startup.
type Dictionary struct {
	byCategory map[Category][]Entry
	size       int
}

// NewDictionary validates entries and indexes them by category.
func NewDictionary(entries []Entry) (*Dictionary, error) {
	d := &Dictionary{byCategory: make(map[Category][]Entry, len(Categories))}
	seen := map[string]struct{}{}

	for _, e := range entries {
		e.Term = strings.ToLower(strings.TrimSpace(e.Term))
		e.Canonical = strings.TrimSpace(e.Canonical)
		if e.Term == "" {
			return nil, fmt.Errorf("dictionary: empty term in category %q", e.Category)
		}
		if !knownCategory(e.Category) {
			return nil, fmt.Errorf("dictionary: unknown category %q for term %q", e.Category, e.Term)
		}
		if e.Weight == 0 {
			e.Weight = 1
		}
		if e.Weight < 0 {
			return nil, fmt.Errorf("dictionary: negative weight for term %q", e.Term)
		}
		switch {
		case e.Category == CategorySentiment && e.Polarity != PolarityPositive && e.Polarity != PolarityNegative:
			return nil, fmt.Errorf("dictionary: sentiment term %q needs polarity", e.Term)
		case e.Category != CategorySentiment && e.Polarity != PolarityNone:
			return nil, fmt.Errorf("dictionary: polarity only applies to sentiment, term %q", e.Term)
		}

		key := string(e.Category) + "\x00" + e.Term
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}

		d.byCategory[e.Category] = append(d.byCategory[e.Category], e)
		d.size++
	}
	return d, nil
}

// Entries returns the entries of one category.
func (d *Dictionary) Entries(c Category) []Entry {
	return d.byCategory[c]
}

// Len is the total number of entries.
func (d *Dictionary) Len() int {
	return d.size
}

func knownCategory(c Category) bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// Lexicon bundles the dictionary with the miner vocabularies.
type Lexicon struct {
	Dictionary *Dictionary
	Stopwords  []string
	Boost      []string
}

type lexiconFile struct {
	Dictionary map[string][]Entry `yaml:"dictionary"`
	Stopwords  []string           `yaml:"stopwords"`
	Boost      []string           `yaml:"boost"`
}

//go:embed lexicon.yaml
var defaultLexiconYAML []byte

// ParseLexicon reads the YAML lexicon format.
func ParseLexicon(data []byte) (*Lexicon, error) {
	var file lexiconFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse lexicon: %w", err)
	}

	var entries []Entry
	// Walk in reporting order so entry order is stable.
	for _, c := range Categories {
		for _, e := range file.Dictionary[string(c)] {
			e.Category = c
			entries = append(entries, e)
		}
	}
	for name := range file.Dictionary {
		if !knownCategory(Category(name)) {
			return nil, fmt.Errorf("parse lexicon: unknown category %q", name)
		}
	}

	dict, err := NewDictionary(entries)
	if err != nil {
		return nil, err
	}
	return &Lexicon{Dictionary: dict, Stopwords: file.Stopwords, Boost: file.Boost}, nil
}

// LoadLexiconFile reads a lexicon from disk.
func LoadLexiconFile(path string) (*Lexicon, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read lexicon %s: %w", path, err)
	}
	return ParseLexicon(data)
}

// DefaultLexicon returns the embedded lexicon. It panics if the embedded
// file is broken, which the package tests guard against.
func DefaultLexicon() *Lexicon {
	lex, err := ParseLexicon(defaultLexiconYAML)
	if err != nil {
		panic(err)
	}
	return lex
}
