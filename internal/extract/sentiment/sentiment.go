package sentiment

import "strings"

// Verdicts returned by a Scorer.
const (
	Positive = "positive"
	Negative = "negative"
	Neutral  = "neutral"
)

// Scorer assigns a sentiment verdict to free text.
type Scorer interface {
	Score(text string) string
}

var positiveTerms = []string{
	"bueno",
	"excelente",
	"perfecto",
	"gracias",
	"aprobado",
	"éxito",
	"feliz",
	"satisfecho",
	"good",
	"excellent",
	"perfect",
	"thanks",
	"approved",
	"success",
	"happy",
	"satisfied",
}

var negativeTerms = []string{
	"malo",
	"error",
	"problema",
	"rechazado",
	"fallo",
	"triste",
	"insatisfecho",
	"queja",
	"bad",
	"problem",
	"rejected",
	"failure",
	"sad",
	"dissatisfied",
	"complaint",
}

// KeywordScorer compares how many distinct positive and negative terms
// appear in the text. Ties are neutral.
type KeywordScorer struct{}

// Score returns positive, negative, or neutral for the given text.
func (KeywordScorer) Score(text string) string {
	lower := strings.ToLower(text)

	positive := 0
	for _, term := range positiveTerms {
		if strings.Contains(lower, term) {
			positive++
		}
	}
	negative := 0
	for _, term := range negativeTerms {
		if strings.Contains(lower, term) {
			negative++
		}
	}

	switch {
	case positive > negative:
		return Positive
	case negative > positive:
		return Negative
	default:
		return Neutral
	}
}

var _ Scorer = KeywordScorer{}
