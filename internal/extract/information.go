package extract

import (
	"strings"

	"docscan-backend/internal/extract/sentiment"
	"docscan-backend/internal/ocr"
)

// summaryLimit caps how much of the document text the summary carries.
const summaryLimit = 200

// InformationData is the structured payload extracted from informational
// documents.
type InformationData struct {
	Description string `json:"description"`
	Summary     string `json:"summary"`
	Sentiment   string `json:"sentiment"`
	TextLength  int    `json:"textLength"`
}

func extractInformation(a ocr.RawAnalysis, scorer sentiment.Scorer) InformationData {
	text := strings.Join(a.Lines, " ")
	summary := summarize(text)

	return InformationData{
		Description: summary,
		Summary:     summary,
		Sentiment:   scorer.Score(text),
		TextLength:  len([]rune(text)),
	}
}

func summarize(text string) string {
	runes := []rune(text)
	if len(runes) <= summaryLimit {
		return text
	}
	return string(runes[:summaryLimit]) + "..."
}
