package events

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestPGRepoAppendInsertsRow(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}
	docID := "doc-1"
	userID := "user-1"
	ev := Event{
		ID:          "ev-1",
		EventType:   TypeAIAnalysis,
		Description: "Analysis completed: Invoice",
		DocumentID:  &docID,
		UserID:      &userID,
		Metadata:    map[string]any{"classification": "Invoice"},
		CreatedAt:   time.Now().UTC(),
	}

	mock.ExpectExec("INSERT INTO events").
		WithArgs(
			ev.ID,
			ev.EventType,
			ev.Description,
			docID,
			userID,
			[]byte(`{"classification":"Invoice"}`),
			ev.CreatedAt,
		).
		WillReturnResult(sqlmock.NewResult(1, 1))

	if err := repo.Append(context.Background(), ev); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoAppendNilOptionals(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}
	ev := Event{
		ID:          "ev-2",
		EventType:   TypeUserLogin,
		Description: "User logged in",
		CreatedAt:   time.Now().UTC(),
	}

	mock.ExpectExec("INSERT INTO events").
		WithArgs(ev.ID, ev.EventType, ev.Description, nil, nil, nil, ev.CreatedAt).
		WillReturnResult(sqlmock.NewResult(1, 1))

	if err := repo.Append(context.Background(), ev); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoListAppliesFilterAndScans(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}
	now := time.Now().UTC()
	start := now.Add(-24 * time.Hour)
	end := now.Add(time.Hour)
	f := Filter{
		UserID:      "user-1",
		EventType:   TypeDocumentUpload,
		Description: "uploaded",
		Start:       &start,
		End:         &end,
		Limit:       50,
		Offset:      10,
	}

	rows := sqlmock.NewRows([]string{"id", "event_type", "description", "document_id", "user_id", "metadata", "created_at"}).
		AddRow("ev-1", TypeDocumentUpload, "Document a.pdf uploaded", "doc-1", "user-1", []byte(`{"file_type":"PDF"}`), now).
		AddRow("ev-2", TypeDocumentUpload, "Document b.pdf uploaded", nil, "user-1", nil, now.Add(-time.Minute))

	mock.ExpectQuery("SELECT id, event_type, description, document_id, user_id, metadata, created_at").
		WithArgs("user-1", TypeDocumentUpload, "%uploaded%", start, end, 50, 10).
		WillReturnRows(rows)

	out, err := repo.List(context.Background(), f)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("got %d events, want 2", len(out))
	}
	if out[0].DocumentID == nil || *out[0].DocumentID != "doc-1" {
		t.Errorf("out[0].DocumentID = %v, want doc-1", out[0].DocumentID)
	}
	if out[0].Metadata["file_type"] != "PDF" {
		t.Errorf("out[0].Metadata = %v, want file_type PDF", out[0].Metadata)
	}
	if out[1].DocumentID != nil {
		t.Errorf("out[1].DocumentID = %v, want nil", out[1].DocumentID)
	}
	if out[1].Metadata != nil {
		t.Errorf("out[1].Metadata = %v, want nil", out[1].Metadata)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoListDefaultsLimitAndOffset(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}

	mock.ExpectQuery("SELECT id, event_type, description, document_id, user_id, metadata, created_at").
		WithArgs(defaultListLimit, 0).
		WillReturnRows(sqlmock.NewRows([]string{"id", "event_type", "description", "document_id", "user_id", "metadata", "created_at"}))

	if _, err := repo.List(context.Background(), Filter{Limit: 0, Offset: -5}); err != nil {
		t.Fatalf("List: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoCountUsesFilter(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM events`).
		WithArgs("user-1", TypeAIAnalysis).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(7))

	n, err := repo.Count(context.Background(), Filter{UserID: "user-1", EventType: TypeAIAnalysis})
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if n != 7 {
		t.Fatalf("Count = %d, want 7", n)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}
