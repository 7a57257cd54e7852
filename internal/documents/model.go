package documents

import (
	"encoding/json"
	"time"

	"docscan-backend/internal/classify"
)

// Accepted file types.
const (
	FileTypePDF = "PDF"
	FileTypeJPG = "JPG"
	FileTypePNG = "PNG"
)

// Analysis statuses. Completed and error are terminal; a document moves out
// of processing exactly once.
const (
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusError      = "error"
)

// Document represents an uploaded document and its analysis outcome.
// ExtractedData is nil until the document completes.
type Document struct {
	ID               string
	OriginalFilename string
	FileType         string
	StorageKey       string
	StorageURL       string
	OwnerID          string
	Classification   classify.Classification
	Status           string
	ExtractedData    json.RawMessage
	CreatedAt        time.Time
	UpdatedAt        time.Time
}
