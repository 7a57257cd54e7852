package documents

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"docscan-backend/internal/classify"
	"docscan-backend/internal/events"
	"docscan-backend/internal/extract"
	"docscan-backend/internal/extract/sentiment"
	"docscan-backend/internal/ocr"
	"docscan-backend/internal/shared/metrics"
	"docscan-backend/internal/shared/storage/object"
	"docscan-backend/internal/shared/telemetry"
)

const (
	defaultOCRTimeout     = 30 * time.Second
	defaultMaxUploadBytes = 10 << 20
)

var allowedExtensions = []string{".pdf", ".jpg", ".jpeg", ".png"}

// Service contains business logic for documents.
type Service struct {
	Repo           DocumentsRepo
	Events         events.EventsRepo
	Store          object.ObjectStore
	Engine         ocr.Engine
	Classifier     classify.Policy
	Scorer         sentiment.Scorer
	OCRTimeout     time.Duration
	MaxUploadBytes int64
}

// Upload runs the intake pipeline for one file: validate, store the blob,
// record the document with its upload event, analyze, classify, extract,
// and finalize. The returned document carries the terminal state.
func (s *Service) Upload(ctx context.Context, ownerID, fileName string, r io.Reader) (Document, error) {
	if strings.TrimSpace(ownerID) == "" {
		return Document{}, fmt.Errorf("%w: owner is required", ErrValidation)
	}
	fileType, err := fileTypeForName(fileName)
	if err != nil {
		return Document{}, err
	}
	data, err := readUpload(r, s.maxUploadBytes())
	if err != nil {
		return Document{}, err
	}

	storageKey, _, _, err := s.Store.Save(ctx, fileName, bytes.NewReader(data))
	if err != nil {
		return Document{}, fmt.Errorf("%w: save upload: %w", ErrStorage, err)
	}

	now := time.Now().UTC()
	doc := Document{
		ID:               uuid.NewString(),
		OriginalFilename: fileName,
		FileType:         fileType,
		StorageKey:       storageKey,
		StorageURL:       s.Store.URL(storageKey),
		OwnerID:          ownerID,
		Classification:   classify.Unclassified,
		Status:           StatusProcessing,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if err := s.createWithUploadEvent(ctx, doc, uploadEvent(doc)); err != nil {
		s.discardBlob(ctx, doc.ID, storageKey)
		return Document{}, fmt.Errorf("%w: record upload: %w", ErrStorage, err)
	}
	metrics.IncDocumentUploaded(fileType)
	telemetry.Info("document.status", map[string]any{
		"request_id":        telemetry.RequestID(ctx),
		"user_id":           ownerID,
		"document_id":       doc.ID,
		"status":            StatusProcessing,
		"status_transition": "uploaded->processing",
		"file_type":         fileType,
	})

	return s.analyze(ctx, doc, data)
}

// List returns the owner's documents, newest first.
func (s *Service) List(ctx context.Context, f ListFilter) ([]Document, error) {
	if strings.TrimSpace(f.OwnerID) == "" {
		return nil, fmt.Errorf("%w: owner is required", ErrValidation)
	}
	return s.Repo.List(ctx, f)
}

// Get returns one document. Documents owned by someone else return
// ErrForbidden so handlers can tell 403 apart from 404.
func (s *Service) Get(ctx context.Context, ownerID, documentID string) (Document, error) {
	if documentID == "" {
		return Document{}, fmt.Errorf("%w: document id is required", ErrValidation)
	}
	doc, err := s.Repo.GetByID(ctx, documentID)
	if err != nil {
		return Document{}, err
	}
	if doc.OwnerID != ownerID {
		return Document{}, ErrForbidden
	}
	return doc, nil
}

func (s *Service) analyze(ctx context.Context, doc Document, data []byte) (Document, error) {
	started := time.Now().UTC()

	// Analysis keeps running if the client disconnects; a canceled request
	// must not strand the document in processing.
	actx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.ocrTimeout())
	defer cancel()

	raw, err := s.Engine.Analyze(actx, data, doc.FileType)
	if err != nil {
		failure := ocr.Failure(fmt.Errorf("analyze %s: %w", doc.FileType, err))
		s.failAnalysis(ctx, doc, failure, started)
		return Document{}, failure
	}

	classification := s.classifier().Classify(raw)
	result := extract.Run(raw, classification, s.scorer())
	payload, err := result.Payload()
	if err != nil {
		failure := fmt.Errorf("%w: %w", ErrStorage, err)
		s.failAnalysis(ctx, doc, failure, started)
		return Document{}, failure
	}

	completedAt := time.Now().UTC()
	ev := analysisEvent(doc, fmt.Sprintf("Analysis completed: %s", classification), map[string]any{"classification": string(classification)}, completedAt)
	if err := s.finalizeCompletedWithEvent(context.WithoutCancel(ctx), doc.ID, classification, payload, completedAt, ev); err != nil {
		if errors.Is(err, ErrAlreadyFinalized) || errors.Is(err, ErrNotFound) {
			return Document{}, err
		}
		telemetry.Error("document.finalize_failed", map[string]any{
			"request_id":  telemetry.RequestID(ctx),
			"document_id": doc.ID,
			"error":       sanitizeError(err),
		})
		return Document{}, fmt.Errorf("%w: finalize completed: %w", ErrStorage, err)
	}

	metrics.IncAnalysisFinished(string(classification), StatusCompleted)
	metrics.ObserveAnalysisDuration(completedAt.Sub(started))
	telemetry.Info("document.status", map[string]any{
		"request_id":        telemetry.RequestID(ctx),
		"user_id":           doc.OwnerID,
		"document_id":       doc.ID,
		"status":            StatusCompleted,
		"status_transition": "processing->completed",
		"classification":    string(classification),
		"duration_ms":       durationMs(completedAt.Sub(started)),
	})

	doc.Classification = classification
	doc.Status = StatusCompleted
	doc.ExtractedData = payload
	doc.UpdatedAt = completedAt
	return doc, nil
}

// failAnalysis moves the document to its error state and records the
// failure event. Finalization runs on a detached context so a canceled
// request cannot block the terminal transition.
func (s *Service) failAnalysis(ctx context.Context, doc Document, cause error, started time.Time) {
	at := time.Now().UTC()
	ev := analysisEvent(doc, "Analysis failed: "+sanitizeError(cause), nil, at)
	if err := s.finalizeErrorWithEvent(context.WithoutCancel(ctx), doc.ID, at, ev); err != nil && !errors.Is(err, ErrAlreadyFinalized) {
		telemetry.Error("document.finalize_failed", map[string]any{
			"request_id":  telemetry.RequestID(ctx),
			"document_id": doc.ID,
			"error":       sanitizeError(err),
			"cause":       sanitizeError(cause),
		})
	}
	metrics.IncAnalysisFinished(string(classify.Unclassified), StatusError)
	metrics.ObserveAnalysisDuration(at.Sub(started))
	telemetry.Info("document.status", map[string]any{
		"request_id":        telemetry.RequestID(ctx),
		"user_id":           doc.OwnerID,
		"document_id":       doc.ID,
		"status":            StatusError,
		"status_transition": "processing->error",
		"error":             sanitizeError(cause),
		"duration_ms":       durationMs(at.Sub(started)),
	})
}

func (s *Service) discardBlob(ctx context.Context, documentID, storageKey string) {
	if err := s.Store.Delete(context.WithoutCancel(ctx), storageKey); err != nil {
		telemetry.Warn("document.blob_orphaned", map[string]any{
			"request_id":  telemetry.RequestID(ctx),
			"document_id": documentID,
			"storage_key": storageKey,
			"error":       sanitizeError(err),
		})
	}
}

// createWithUploadEvent persists the document and its upload event in one
// transaction when both repos share a Postgres handle; otherwise it falls
// back to sequential calls for the in-memory pair.
func (s *Service) createWithUploadEvent(ctx context.Context, doc Document, ev events.Event) error {
	if db := s.sharedDB(); db != nil {
		return createWithTx(ctx, db, doc, ev)
	}
	if err := s.Repo.Create(ctx, doc); err != nil {
		return err
	}
	return s.Events.Append(ctx, ev)
}

func (s *Service) finalizeCompletedWithEvent(ctx context.Context, documentID string, classification classify.Classification, payload json.RawMessage, at time.Time, ev events.Event) error {
	if db := s.sharedDB(); db != nil {
		const query = `
UPDATE documents
SET classification = $2, status = $3, extracted_data = $4, updated_at = $5
WHERE id = $1 AND status = $6`
		args := []any{documentID, string(classification), StatusCompleted, extractedParam(payload), at, StatusProcessing}
		return finalizeWithTx(ctx, db, documentID, query, args, ev)
	}
	if err := s.Repo.FinalizeCompleted(ctx, documentID, classification, payload, at); err != nil {
		return err
	}
	return s.Events.Append(ctx, ev)
}

func (s *Service) finalizeErrorWithEvent(ctx context.Context, documentID string, at time.Time, ev events.Event) error {
	if db := s.sharedDB(); db != nil {
		const query = `
UPDATE documents
SET status = $2, updated_at = $3
WHERE id = $1 AND status = $4`
		args := []any{documentID, StatusError, at, StatusProcessing}
		return finalizeWithTx(ctx, db, documentID, query, args, ev)
	}
	if err := s.Repo.FinalizeError(ctx, documentID, at); err != nil {
		return err
	}
	return s.Events.Append(ctx, ev)
}

func (s *Service) sharedDB() *sql.DB {
	docPG, ok := s.Repo.(*PGRepo)
	if !ok || docPG == nil || docPG.DB == nil {
		return nil
	}
	evPG, ok := s.Events.(*events.PGRepo)
	if !ok || evPG == nil || evPG.DB == nil {
		return nil
	}
	if docPG.DB != evPG.DB {
		return nil
	}
	return docPG.DB
}

const insertEventSQL = `
INSERT INTO events (id, event_type, description, document_id, user_id, metadata, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)`

func createWithTx(ctx context.Context, db *sql.DB, doc Document, ev events.Event) error {
	evArgs, err := eventInsertArgs(ev)
	if err != nil {
		return err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	const insertDocument = `
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

	if _, err := tx.ExecContext(
		ctx,
		insertDocument,
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
	); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, insertEventSQL, evArgs...); err != nil {
		return err
	}
	return tx.Commit()
}

// finalizeWithTx applies a guarded status update and appends the analysis
// event in the same transaction. When the guard matches no row the event is
// never written; the document is either gone or already terminal.
func finalizeWithTx(ctx context.Context, db *sql.DB, documentID, query string, args []any, ev events.Event) error {
	evArgs, err := eventInsertArgs(ev)
	if err != nil {
		return err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	updated, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if updated == 0 {
		var status string
		err := tx.QueryRowContext(ctx, `SELECT status FROM documents WHERE id = $1`, documentID).Scan(&status)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		return ErrAlreadyFinalized
	}
	if _, err := tx.ExecContext(ctx, insertEventSQL, evArgs...); err != nil {
		return err
	}
	return tx.Commit()
}

func eventInsertArgs(ev events.Event) ([]any, error) {
	var metadata any
	if len(ev.Metadata) > 0 {
		raw, err := json.Marshal(ev.Metadata)
		if err != nil {
			return nil, fmt.Errorf("marshal event metadata: %w", err)
		}
		metadata = raw
	}
	return []any{ev.ID, ev.EventType, ev.Description, nullStr(ev.DocumentID), nullStr(ev.UserID), metadata, ev.CreatedAt}, nil
}

func nullStr(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func uploadEvent(doc Document) events.Event {
	return events.Event{
		ID:          uuid.NewString(),
		EventType:   events.TypeDocumentUpload,
		Description: fmt.Sprintf("Document %s uploaded", doc.OriginalFilename),
		DocumentID:  &doc.ID,
		UserID:      &doc.OwnerID,
		CreatedAt:   doc.CreatedAt,
	}
}

func analysisEvent(doc Document, description string, metadata map[string]any, at time.Time) events.Event {
	return events.Event{
		ID:          uuid.NewString(),
		EventType:   events.TypeAIAnalysis,
		Description: description,
		DocumentID:  &doc.ID,
		UserID:      &doc.OwnerID,
		Metadata:    metadata,
		CreatedAt:   at,
	}
}

func fileTypeForName(fileName string) (string, error) {
	if strings.TrimSpace(fileName) == "" {
		return "", fmt.Errorf("%w: file name is required", ErrValidation)
	}
	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".pdf":
		return FileTypePDF, nil
	case ".jpg", ".jpeg":
		return FileTypeJPG, nil
	case ".png":
		return FileTypePNG, nil
	default:
		return "", fmt.Errorf("%w: file type not allowed, accepted formats: %s", ErrValidation, strings.Join(allowedExtensions, ", "))
	}
}

func readUpload(r io.Reader, maxBytes int64) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("%w: read upload: %w", ErrValidation, err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: file is empty", ErrValidation)
	}
	if int64(len(data)) > maxBytes {
		return nil, fmt.Errorf("%w: file exceeds the %dMB size limit", ErrValidation, maxBytes>>20)
	}
	return data, nil
}

func (s *Service) ocrTimeout() time.Duration {
	if s.OCRTimeout > 0 {
		return s.OCRTimeout
	}
	return defaultOCRTimeout
}

func (s *Service) maxUploadBytes() int64 {
	if s.MaxUploadBytes > 0 {
		return s.MaxUploadBytes
	}
	return defaultMaxUploadBytes
}

func (s *Service) classifier() classify.Policy {
	if s.Classifier != nil {
		return s.Classifier
	}
	return classify.NewKeywordPolicy(0)
}

func (s *Service) scorer() sentiment.Scorer {
	if s.Scorer != nil {
		return s.Scorer
	}
	return sentiment.KeywordScorer{}
}

func sanitizeError(err error) string {
	if err == nil {
		return ""
	}
	msg := strings.ReplaceAll(err.Error(), "\n", " ")
	msg = strings.ReplaceAll(msg, "\r", " ")
	msg = strings.TrimSpace(msg)
	const maxLen = 500
	if len(msg) > maxLen {
		msg = msg[:maxLen]
	}
	return msg
}

func durationMs(d time.Duration) float64 {
	return float64(d.Microseconds()) / 1000.0
}
