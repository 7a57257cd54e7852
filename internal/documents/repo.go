package documents

import (
	"context"
	"encoding/json"
	"time"

	"docscan-backend/internal/classify"
)

const (
	defaultListLimit = 100
	maxListLimit     = 1000
)

// ListFilter narrows document listings. OwnerID is required; list results
// never cross owners.
type ListFilter struct {
	OwnerID        string
	Classification string
	Limit          int
	Offset         int
}

// DocumentsRepo defines persistence operations for documents.
type DocumentsRepo interface {
	Create(ctx context.Context, doc Document) error
	GetByID(ctx context.Context, documentID string) (Document, error)
	List(ctx context.Context, f ListFilter) ([]Document, error)

	// FinalizeCompleted moves a processing document to completed with its
	// classification and extracted payload. A document that already left
	// processing returns ErrAlreadyFinalized.
	FinalizeCompleted(ctx context.Context, documentID string, classification classify.Classification, extracted json.RawMessage, at time.Time) error

	// FinalizeError moves a processing document to error. The document keeps
	// a nil payload and its Unclassified classification.
	FinalizeError(ctx context.Context, documentID string, at time.Time) error
}
