package documents

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"

	"docscan-backend/internal/classify"
)

// MemoryRepo is an in-memory implementation of DocumentsRepo.
type MemoryRepo struct {
	mu   sync.RWMutex
	data map[string]Document // documentId -> document
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		data: make(map[string]Document),
	}
}

// Create stores a new document.
func (r *MemoryRepo) Create(ctx context.Context, doc Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data[doc.ID] = doc
	return nil
}

// GetByID returns a document by ID.
func (r *MemoryRepo) GetByID(ctx context.Context, documentID string) (Document, error) {
	if err := ctx.Err(); err != nil {
		return Document{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	doc, ok := r.data[documentID]
	if !ok {
		return Document{}, ErrNotFound
	}
	return doc, nil
}

// List returns an owner's documents, newest first, honoring limit/offset.
func (r *MemoryRepo) List(ctx context.Context, f ListFilter) ([]Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	limit := f.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	offset := f.Offset
	if offset < 0 {
		offset = 0
	}

	r.mu.RLock()
	docs := make([]Document, 0, len(r.data))
	for _, doc := range r.data {
		if doc.OwnerID != f.OwnerID {
			continue
		}
		if f.Classification != "" && string(doc.Classification) != f.Classification {
			continue
		}
		docs = append(docs, doc)
	}
	r.mu.RUnlock()

	sort.Slice(docs, func(i, j int) bool {
		return docs[i].CreatedAt.After(docs[j].CreatedAt)
	})

	if offset >= len(docs) {
		return []Document{}, nil
	}
	end := len(docs)
	if offset+limit < end {
		end = offset + limit
	}
	return docs[offset:end], nil
}

// FinalizeCompleted moves a processing document to completed.
func (r *MemoryRepo) FinalizeCompleted(ctx context.Context, documentID string, classification classify.Classification, extracted json.RawMessage, at time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	doc, ok := r.data[documentID]
	if !ok {
		return ErrNotFound
	}
	if doc.Status != StatusProcessing {
		return ErrAlreadyFinalized
	}
	doc.Classification = classification
	doc.Status = StatusCompleted
	doc.ExtractedData = extracted
	doc.UpdatedAt = at
	r.data[documentID] = doc
	return nil
}

// FinalizeError moves a processing document to error.
func (r *MemoryRepo) FinalizeError(ctx context.Context, documentID string, at time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	doc, ok := r.data[documentID]
	if !ok {
		return ErrNotFound
	}
	if doc.Status != StatusProcessing {
		return ErrAlreadyFinalized
	}
	doc.Status = StatusError
	doc.ExtractedData = nil
	doc.UpdatedAt = at
	r.data[documentID] = doc
	return nil
}

var _ DocumentsRepo = (*MemoryRepo)(nil)
