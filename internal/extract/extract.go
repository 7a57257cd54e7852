package extract

import (
	"encoding/json"
	"fmt"

	"docscan-backend/internal/classify"
	"docscan-backend/internal/extract/sentiment"
	"docscan-backend/internal/ocr"
)

// FieldNotFound marks a structured field the analysis did not contain.
// Fields are never omitted; absent values carry this sentinel.
const FieldNotFound = "not_found"

// Result is the structured output of one extraction. Exactly one variant is
// set, matching the classification.
type Result struct {
	Classification classify.Classification
	Invoice        *InvoiceData
	Information    *InformationData
}

// Run extracts the structured payload for the given classification.
// Extraction never fails: missing fields degrade to sentinels.
func Run(a ocr.RawAnalysis, class classify.Classification, scorer sentiment.Scorer) Result {
	if class == classify.Invoice {
		inv := extractInvoice(a)
		return Result{Classification: classify.Invoice, Invoice: &inv}
	}
	info := extractInformation(a, scorer)
	return Result{Classification: classify.Information, Information: &info}
}

// Payload marshals the active variant and checks it against its schema.
// A schema violation means the extractor produced a malformed payload.
func (r Result) Payload() ([]byte, error) {
	switch {
	case r.Invoice != nil:
		data, err := json.Marshal(r.Invoice)
		if err != nil {
			return nil, fmt.Errorf("marshal invoice payload: %w", err)
		}
		if err := validatePayload(invoiceSchema, data); err != nil {
			return nil, err
		}
		return data, nil
	case r.Information != nil:
		data, err := json.Marshal(r.Information)
		if err != nil {
			return nil, fmt.Errorf("marshal information payload: %w", err)
		}
		if err := validatePayload(informationSchema, data); err != nil {
			return nil, err
		}
		return data, nil
	default:
		return nil, fmt.Errorf("extraction result has no payload")
	}
}
