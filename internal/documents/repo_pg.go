package documents

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"docscan-backend/internal/classify"
)

// PGRepo implements DocumentsRepo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

const documentColumns = `id, original_filename, file_type, storage_key, storage_url, owner_id, classification, status, extracted_data, created_at, updated_at`

// Create inserts a new document.
func (r *PGRepo) Create(ctx context.Context, doc Document) error {
	const query = `
INSERT INTO documents (
    id,
    original_filename,
    file_type,
    storage_key,
    storage_url,
    owner_id,
    classification,
    status,
    extracted_data,
    created_at,
    updated_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	_, err := r.DB.ExecContext(
		ctx,
		query,
		doc.ID,
		doc.OriginalFilename,
		doc.FileType,
		doc.StorageKey,
		doc.StorageURL,
		doc.OwnerID,
		string(doc.Classification),
		doc.Status,
		extractedParam(doc.ExtractedData),
		doc.CreatedAt,
		doc.UpdatedAt,
	)
	return err
}

// GetByID fetches a document by ID. Ownership checks belong to the caller so
// unknown and foreign documents stay distinguishable.
func (r *PGRepo) GetByID(ctx context.Context, documentID string) (Document, error) {
	const query = `
SELECT ` + documentColumns + `
FROM documents
WHERE id = $1
LIMIT 1`

	doc, err := scanDocument(r.DB.QueryRowContext(ctx, query, documentID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Document{}, ErrNotFound
		}
		return Document{}, err
	}
	return doc, nil
}

// List returns the owner's documents, newest first.
func (r *PGRepo) List(ctx context.Context, f ListFilter) ([]Document, error) {
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

	query := `
SELECT ` + documentColumns + `
FROM documents
WHERE owner_id = $1`
	args := []any{f.OwnerID}

	if f.Classification != "" {
		args = append(args, f.Classification)
		query += ` AND classification = $2`
	}
	query += fmt.Sprintf(`
ORDER BY created_at DESC
LIMIT $%d OFFSET $%d`, len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, doc)
	}
	return out, rows.Err()
}

// FinalizeCompleted performs the guarded processing -> completed transition.
func (r *PGRepo) FinalizeCompleted(ctx context.Context, documentID string, classification classify.Classification, extracted json.RawMessage, at time.Time) error {
	const query = `
UPDATE documents
SET classification = $2, status = $3, extracted_data = $4, updated_at = $5
WHERE id = $1 AND status = $6`

	res, err := r.DB.ExecContext(ctx, query, documentID, string(classification), StatusCompleted, extractedParam(extracted), at, StatusProcessing)
	if err != nil {
		return err
	}
	return r.checkFinalized(ctx, documentID, res)
}

// FinalizeError performs the guarded processing -> error transition.
func (r *PGRepo) FinalizeError(ctx context.Context, documentID string, at time.Time) error {
	const query = `
UPDATE documents
SET status = $2, updated_at = $3
WHERE id = $1 AND status = $4`

	res, err := r.DB.ExecContext(ctx, query, documentID, StatusError, at, StatusProcessing)
	if err != nil {
		return err
	}
	return r.checkFinalized(ctx, documentID, res)
}

func (r *PGRepo) checkFinalized(ctx context.Context, documentID string, res sql.Result) error {
	updated, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if updated > 0 {
		return nil
	}

	var status string
	err = r.DB.QueryRowContext(ctx, `SELECT status FROM documents WHERE id = $1`, documentID).Scan(&status)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	return ErrAlreadyFinalized
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner) (Document, error) {
	var doc Document
	var extracted []byte
	err := row.Scan(
		&doc.ID,
		&doc.OriginalFilename,
		&doc.FileType,
		&doc.StorageKey,
		&doc.StorageURL,
		&doc.OwnerID,
		&doc.Classification,
		&doc.Status,
		&extracted,
		&doc.CreatedAt,
		&doc.UpdatedAt,
	)
	if err != nil {
		return Document{}, err
	}
	if len(extracted) > 0 {
		doc.ExtractedData = extracted
	}
	return doc, nil
}

func extractedParam(extracted json.RawMessage) any {
	if len(extracted) == 0 {
		return nil
	}
	return []byte(extracted)
}

var _ DocumentsRepo = (*PGRepo)(nil)
