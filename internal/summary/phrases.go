package summary

const defaultBucket = "default"

// PhraseBanks holds the templates. "{}" is replaced by the bucket's keyword.
type PhraseBanks struct {
	Effects  map[string][]string
	Textures map[string][]string
	Verdicts map[string][]string
}

// DefaultPhraseBanks returns the built-in English templates.
func DefaultPhraseBanks() PhraseBanks {
	return PhraseBanks{
		Effects: map[string][]string{
			"moisturizing": {
				"Reviewers keep coming back to how deeply moisturizing it feels.",
				"Hydration is the headline here: skin stays comfortable for hours.",
			},
			"brightening": {
				"Most posts point to a visibly brighter, more even tone.",
				"Creators highlight the glow it leaves behind.",
			},
			"soothing": {
				"It earns praise for calming redness and irritated skin.",
				"Soothing is the word that comes up again and again.",
			},
			"anti-aging": {
				"Reviewers mention softer-looking fine lines over time.",
			},
			"firming": {
				"Several reviewers notice skin that feels firmer and bouncier.",
			},
			"pore-care": {
				"Pores look tighter and cleaner according to reviewers.",
			},
			"oil-control": {
				"It keeps shine and sebum in check through the day.",
			},
			defaultBucket: {
				"Reviewers talk most about {}.",
				"The common thread in reviews is {}.",
			},
		},
		Textures: map[string][]string{
			"serum": {
				"The serum texture spreads easily and layers well.",
				"As a serum it sinks in fast without a heavy film.",
			},
			"cream": {
				"The cream is cushiony but not greasy.",
			},
			"gel": {
				"The gel texture feels cool and refreshing.",
			},
			"lightweight": {
				"The lightweight feel makes it easy to use morning and night.",
			},
			"rich": {
				"The rich texture suits drier skin best.",
			},
			"lotion": {
				"The lotion absorbs quickly and works well under makeup.",
			},
			defaultBucket: {
				"Reviewers find the {} easy to work into a routine.",
			},
		},
		Verdicts: map[string][]string{
			VerdictConfident: {
				"Overall it comes highly recommended ({} positive).",
				"Most reviewers would buy it again ({} positive).",
			},
			VerdictQualified: {
				"Generally recommended, with a few reservations ({} positive).",
				"Worth a try for most skin types ({} positive).",
			},
			VerdictMixed: {
				"Opinions are mixed, so patch-test first ({} positive).",
				"Results vary between reviewers ({} positive).",
			},
		},
	}
}
