package classifier

import (
	"strings"

	"fjacquet/gl-posting/internal/textutils"

	"github.com/adrg/strutil"
	"github.com/adrg/strutil/metrics"
)

// Word-level fuzzy matching. Short words such as "UPS" or "ATT" must match exactly.
const (
	minFuzzyWordLen    = 4
	fuzzyWordThreshold = 0.90
)

// Scorer rates how alike two strings are, from 0 to 1.
type Scorer interface {
	Similarity(a, b string) float64
}

// StrutilScorer scores words with Jaro-Winkler and whole descriptions with Levenshtein.
type StrutilScorer struct {
	word   strutil.StringMetric
	phrase strutil.StringMetric
}

// NewScorer returns the default scorer.
func NewScorer() *StrutilScorer {
	return &StrutilScorer{
		word:   metrics.NewJaroWinkler(),
		phrase: metrics.NewLevenshtein(),
	}
}

// Similarity compares single words.
func (s *StrutilScorer) Similarity(a, b string) float64 {
	return strutil.Similarity(a, b, s.word)
}

// DescriptionSimilarity compares two whole descriptions in matched form.
func (s *StrutilScorer) DescriptionSimilarity(a, b string) float64 {
	return strutil.Similarity(a, b, s.phrase)
}

// descriptionScorer is implemented by scorers that compare whole descriptions
// differently from single words.
type descriptionScorer interface {
	DescriptionSimilarity(a, b string) float64
}

// phraseScore is the share of pattern words with a close counterpart among the text words.
func phraseScore(scorer Scorer, textWords []string, pattern string) float64 {
	patternWords := strings.Fields(textutils.NormalizeForMatch(pattern))
	if len(patternWords) == 0 {
		return 0
	}

	matched := 0
	for _, pw := range patternWords {
		for _, tw := range textWords {
			if pw == tw {
				matched++
				break
			}
			if len(pw) < minFuzzyWordLen || len(tw) < minFuzzyWordLen {
				continue
			}
			if scorer.Similarity(pw, tw) >= fuzzyWordThreshold {
				matched++
				break
			}
		}
	}
	return float64(matched) / float64(len(patternWords))
}

// descriptionSimilarity compares two descriptions: 1 when equal, 0.9 when one
// contains the other, otherwise a blend of word overlap and edit similarity.
func descriptionSimilarity(scorer Scorer, a, b string) float64 {
	a = textutils.NormalizeForMatch(a)
	b = textutils.NormalizeForMatch(b)
	if a == "" || b == "" {
		return 0
	}
	if a == b {
		return 1
	}
	if textutils.ContainsPhrase(a, b) || textutils.ContainsPhrase(b, a) {
		return 0.9
	}

	edit := 0.0
	if ds, ok := scorer.(descriptionScorer); ok {
		edit = ds.DescriptionSimilarity(a, b)
	} else {
		edit = scorer.Similarity(a, b)
	}
	return 0.4*tokenJaccard(a, b) + 0.6*edit
}

func tokenJaccard(a, b string) float64 {
	ta := strutil.UniqueSlice(strings.Fields(a))
	tb := strutil.UniqueSlice(strings.Fields(b))
	if len(ta) == 0 && len(tb) == 0 {
		return 0
	}

	common := 0
	for _, t := range ta {
		if strutil.SliceContains(tb, t) {
			common++
		}
	}
	return float64(common) / float64(len(ta)+len(tb)-common)
}
