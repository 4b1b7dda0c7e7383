package keywords

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ReviewScout/internal/domain"
)

func review(title, description string) domain.SocialReview {
	return domain.SocialReview{Title: title, Description: description}
}

func TestDefaultLexiconParses(t *testing.T) {
	lex := DefaultLexicon()

	require.NotNil(t, lex.Dictionary)
	assert.Greater(t, lex.Dictionary.Len(), 50)
	for _, c := range Categories {
		assert.NotEmpty(t, lex.Dictionary.Entries(c), "category %s", c)
	}
	assert.Contains(t, lex.Stopwords, "the")
	assert.Contains(t, lex.Boost, "serum")
}

func TestAnalyzeCategoryHits(t *testing.T) {
	a := NewAnalyzer(nil)

	res := a.Analyze([]domain.SocialReview{review("Hyaluronic Acid Moisturizing Serum", "")})

	ingredients := res.Category(CategoryIngredients)
	require.NotEmpty(t, ingredients.Top)
	assert.Equal(t, "hyaluronic", ingredients.Top[0].Entry.Term)
	assert.Equal(t, "hyaluronic acid", ingredients.Top[0].Entry.Label())

	effects := res.Category(CategoryEffects)
	require.NotEmpty(t, effects.Top)
	assert.Equal(t, "moisturizing", effects.Top[0].Entry.Term)

	texture := res.Category(CategoryTexture)
	require.NotEmpty(t, texture.Top)
	assert.Equal(t, "serum", texture.Top[0].Entry.Term)

	assert.Equal(t, 1, res.ReviewCount)
}

func TestAnalyzeAggregatesAcrossBatch(t *testing.T) {
	dict, err := NewDictionary([]Entry{
		{Term: "serum", Category: CategoryTexture, Weight: 1},
		{Term: "cream", Category: CategoryTexture, Weight: 3},
	})
	require.NoError(t, err)
	a := NewAnalyzer(&Lexicon{Dictionary: dict})

	res := a.AnalyzeTexts([]string{"Serum serum", "serum and CREAM"})

	texture := res.Category(CategoryTexture)
	assert.Equal(t, 4, texture.Count)
	assert.InDelta(t, 6.0, texture.Weight, 1e-9)
	require.Len(t, texture.Top, 2)
	assert.Equal(t, "serum", texture.Top[0].Entry.Term)
	assert.Equal(t, 3, texture.Top[0].Count)
	assert.Equal(t, "cream", texture.Top[1].Entry.Term)
}

func TestAnalyzeKeepsTopFive(t *testing.T) {
	var entries []Entry
	text := ""
	for i, term := range []string{"aaa", "bbb", "ccc", "ddd", "eee", "fff", "ggg"} {
		entries = append(entries, Entry{Term: term, Category: CategoryScent, Weight: float64(i + 1)})
		text += term + " "
	}
	dict, err := NewDictionary(entries)
	require.NoError(t, err)

	res := NewAnalyzer(&Lexicon{Dictionary: dict}).AnalyzeTexts([]string{text})

	scent := res.Category(CategoryScent)
	assert.Len(t, scent.Hits, 7)
	require.Len(t, scent.Top, 5)
	assert.Equal(t, "ggg", scent.Top[0].Entry.Term)
	assert.Equal(t, "ccc", scent.Top[4].Entry.Term)
}

func TestSentimentRatio(t *testing.T) {
	a := NewAnalyzer(nil)

	res := a.Analyze([]domain.SocialReview{
		review("I love it", ""),
		review("great buy", ""),
		review("my favorite", ""),
		review("honestly a waste", ""),
	})

	assert.Equal(t, domain.Sentiment{PositiveRatio: 75, NegativeRatio: 25}, ScoreSentiment(res))
}

func TestSentimentDefaultsToNeutral(t *testing.T) {
	res := NewAnalyzer(nil).Analyze([]domain.SocialReview{review("plain words", "")})

	assert.Equal(t, domain.NeutralSentiment(), ScoreSentiment(res))
	assert.Equal(t, domain.NeutralSentiment(), SentimentFromTotals(0, 0))
	assert.Equal(t, domain.Sentiment{PositiveRatio: 67, NegativeRatio: 33}, SentimentFromTotals(2, 1))
}

func TestTokens(t *testing.T) {
	got := Tokens("abc12de 한국어a 가 Tea-time")

	assert.Equal(t, []string{"abc", "한국어", "tea", "time"}, got)
}

func TestMinerBoostAndThreshold(t *testing.T) {
	m := NewMiner([]string{"is"}, []string{"serum", "moisturizing", "보습"})

	got := m.Mine([]string{
		"Moisturizing serum is great, moisturizing!",
		"serum serum 보습 보습 보습이",
	})

	require.Len(t, got, 3)
	assert.Equal(t, DynamicKeyword{Term: "serum", Count: 3, Score: 6, Boosted: true}, got[0])
	assert.Equal(t, "moisturizing", got[1].Term)
	assert.Equal(t, "보습", got[2].Term)
}

func TestMinerDropsStopwordsAndCapsResults(t *testing.T) {
	m := NewMiner([]string{"video"}, nil)
	m.Limit = 2

	got := m.Mine([]string{"video video alpha alpha beta beta gamma gamma gamma"})

	require.Len(t, got, 2)
	assert.Equal(t, "gamma", got[0].Term)
	assert.Equal(t, "alpha", got[1].Term)
}

func TestRankedMergesAndOrders(t *testing.T) {
	dict, err := NewDictionary([]Entry{
		{Term: "serum", Category: CategoryTexture},
		{Term: "vitamin c", Category: CategoryIngredients},
		{Term: "love", Category: CategorySentiment, Polarity: PolarityPositive},
	})
	require.NoError(t, err)
	a := NewAnalyzer(&Lexicon{Dictionary: dict, Stopwords: []string{"love"}, Boost: []string{"serum"}})

	res := a.AnalyzeTexts([]string{
		"serum vitamin c love glowy glowy",
		"serum vitamin_c love",
	})
	ranked := a.Ranked(res)

	keywords := make([]string, 0, len(ranked))
	for _, r := range ranked {
		keywords = append(keywords, r.Keyword)
	}
	// Boosted first, then by count; the dictionary's "serum" folds into the mined one.
	assert.Equal(t, []string{"serum", "glowy", "vitamin", "vitamin c"}, keywords)
	assert.True(t, ranked[0].Dynamic)
}

func TestRankedCap(t *testing.T) {
	var texts []string
	for _, w := range []string{"alpha", "bravo", "charlie", "delta", "echo", "foxtrot"} {
		texts = append(texts, w+" "+w)
	}
	a := NewAnalyzer(&Lexicon{Dictionary: mustDict(t)})
	a.HashtagLimit = 4

	assert.Len(t, a.Hashtags(a.AnalyzeTexts(texts)), 4)
}

func TestNewDictionaryValidation(t *testing.T) {
	_, err := NewDictionary([]Entry{{Term: "x", Category: "colour"}})
	assert.Error(t, err)

	_, err = NewDictionary([]Entry{{Term: "good", Category: CategorySentiment}})
	assert.Error(t, err)

	_, err = NewDictionary([]Entry{{Term: "gel", Category: CategoryTexture, Polarity: PolarityPositive}})
	assert.Error(t, err)

	d, err := NewDictionary([]Entry{{Term: " Gel ", Category: CategoryTexture}, {Term: "gel", Category: CategoryTexture}})
	require.NoError(t, err)
	assert.Equal(t, 1, d.Len())
	assert.InDelta(t, 1.0, d.Entries(CategoryTexture)[0].Weight, 1e-9)
}

func TestLoadLexiconFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lexicon.yaml")
	data := []byte("dictionary:\n  texture:\n    - {term: jelly, canonical: gel}\nstopwords: [the]\nboost: [jelly]\n")
	require.NoError(t, os.WriteFile(path, data, 0o644))

	lex, err := LoadLexiconFile(path)
	require.NoError(t, err)
	assert.Equal(t, 1, lex.Dictionary.Len())
	assert.Equal(t, "gel", lex.Dictionary.Entries(CategoryTexture)[0].Label())

	_, err = ParseLexicon([]byte("dictionary:\n  colour:\n    - {term: red}\n"))
	assert.Error(t, err)

	_, err = LoadLexiconFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func mustDict(t *testing.T) *Dictionary {
	t.Helper()
	d, err := NewDictionary(nil)
	require.NoError(t, err)
	return d
}
