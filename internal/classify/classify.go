package classify

import (
	"strings"

	"docscan-backend/internal/ocr"
)

// Classification is the document category assigned by a policy.
type Classification string

const (
	Invoice      Classification = "Invoice"
	Information  Classification = "Information"
	Unclassified Classification = "Unclassified"
)

// Policy assigns a classification to a raw analysis.
type Policy interface {
	Classify(a ocr.RawAnalysis) Classification
}

// DefaultThreshold is the number of distinct billing terms that must appear
// before a document is treated as an invoice.
const DefaultThreshold = 3

// DefaultLexicon is the billing vocabulary used by the keyword policy,
// covering the Spanish and English terms found on invoices.
var DefaultLexicon = []string{
	"factura",
	"invoice",
	"total",
	"subtotal",
	"iva",
	"impuesto",
	"cliente",
	"proveedor",
	"supplier",
	"customer",
	"producto",
	"cantidad",
	"precio",
	"número de factura",
	"invoice number",
	"fecha de emisión",
	"fecha de vencimiento",
}

// KeywordPolicy classifies by counting distinct lexicon terms contained in
// the analyzed text. Matching is case-insensitive substring containment.
type KeywordPolicy struct {
	Lexicon   []string
	Threshold int
}

// NewKeywordPolicy returns the default policy with an optional threshold
// override. Non-positive thresholds fall back to DefaultThreshold.
func NewKeywordPolicy(threshold int) KeywordPolicy {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return KeywordPolicy{Lexicon: DefaultLexicon, Threshold: threshold}
}

// Classify returns Invoice when at least Threshold distinct lexicon terms
// appear in the analysis, Information otherwise.
func (p KeywordPolicy) Classify(a ocr.RawAnalysis) Classification {
	lexicon := p.Lexicon
	if len(lexicon) == 0 {
		lexicon = DefaultLexicon
	}
	threshold := p.Threshold
	if threshold <= 0 {
		threshold = DefaultThreshold
	}

	haystack := buildHaystack(a)
	if haystack == "" {
		return Information
	}

	matches := 0
	for _, term := range lexicon {
		if strings.Contains(haystack, strings.ToLower(term)) {
			matches++
			if matches >= threshold {
				return Invoice
			}
		}
	}
	return Information
}

// buildHaystack lowers and joins the detected lines and form values.
func buildHaystack(a ocr.RawAnalysis) string {
	parts := make([]string, 0, len(a.Lines)+len(a.KeyValues))
	parts = append(parts, a.Lines...)
	for _, v := range a.KeyValues {
		parts = append(parts, v)
	}
	return strings.ToLower(strings.Join(parts, " "))
}

var _ Policy = KeywordPolicy{}
