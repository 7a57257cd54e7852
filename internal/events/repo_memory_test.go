package events

import (
	"context"
	"testing"
	"time"
)

func seedEvent(t *testing.T, repo *MemoryRepo, id, eventType, description, userID string, at time.Time) {
	t.Helper()
	ev := Event{
		ID:          id,
		EventType:   eventType,
		Description: description,
		CreatedAt:   at,
	}
	if userID != "" {
		ev.UserID = &userID
	}
	if err := repo.Append(context.Background(), ev); err != nil {
		t.Fatalf("Append %s: %v", id, err)
	}
}

func TestMemoryRepoFiltersConjunctively(t *testing.T) {
	repo := NewMemoryRepo()
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	seedEvent(t, repo, "ev-1", TypeDocumentUpload, "Document a.pdf uploaded", "user-1", base)
	seedEvent(t, repo, "ev-2", TypeDocumentUpload, "Document b.pdf uploaded", "user-1", base.Add(time.Minute))
	seedEvent(t, repo, "ev-3", TypeAIAnalysis, "Analysis completed: Invoice", "user-1", base.Add(2*time.Minute))
	seedEvent(t, repo, "ev-4", TypeDocumentUpload, "Document c.pdf uploaded", "user-2", base.Add(3*time.Minute))

	out, err := repo.List(context.Background(), Filter{UserID: "user-1", EventType: TypeDocumentUpload})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("got %d events, want 2", len(out))
	}
	if out[0].ID != "ev-2" || out[1].ID != "ev-1" {
		t.Errorf("order = [%s %s], want newest first [ev-2 ev-1]", out[0].ID, out[1].ID)
	}

	n, err := repo.Count(context.Background(), Filter{UserID: "user-1", EventType: TypeDocumentUpload})
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if n != 2 {
		t.Errorf("Count = %d, want 2", n)
	}
}

func TestMemoryRepoDescriptionSubstring(t *testing.T) {
	repo := NewMemoryRepo()
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	seedEvent(t, repo, "ev-1", TypeDocumentUpload, "Document invoice.pdf uploaded", "user-1", base)
	seedEvent(t, repo, "ev-2", TypeAIAnalysis, "Analysis completed: Invoice", "user-1", base.Add(time.Minute))

	out, err := repo.List(context.Background(), Filter{Description: "uploaded"})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(out) != 1 || out[0].ID != "ev-1" {
		t.Fatalf("got %v, want only ev-1", out)
	}
}

func TestMemoryRepoTimeWindowInclusive(t *testing.T) {
	repo := NewMemoryRepo()
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 3, 2, 23, 59, 59, 0, time.UTC)

	seedEvent(t, repo, "before", TypeDocumentUpload, "d", "user-1", start.Add(-time.Second))
	seedEvent(t, repo, "at-start", TypeDocumentUpload, "d", "user-1", start)
	seedEvent(t, repo, "at-end", TypeDocumentUpload, "d", "user-1", end)
	seedEvent(t, repo, "after", TypeDocumentUpload, "d", "user-1", end.Add(time.Second))

	out, err := repo.List(context.Background(), Filter{Start: &start, End: &end})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("got %d events, want 2 (bounds inclusive)", len(out))
	}
	if out[0].ID != "at-end" || out[1].ID != "at-start" {
		t.Errorf("order = [%s %s], want [at-end at-start]", out[0].ID, out[1].ID)
	}
}

func TestMemoryRepoPagination(t *testing.T) {
	repo := NewMemoryRepo()
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		seedEvent(t, repo, string(rune('a'+i)), TypeDocumentUpload, "d", "user-1", base.Add(time.Duration(i)*time.Minute))
	}

	out, err := repo.List(context.Background(), Filter{Limit: 2, Offset: 1})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("got %d events, want 2", len(out))
	}
	// Newest first is e..a; offset 1 skips e.
	if out[0].ID != "d" || out[1].ID != "c" {
		t.Errorf("page = [%s %s], want [d c]", out[0].ID, out[1].ID)
	}

	empty, err := repo.List(context.Background(), Filter{Offset: 99})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(empty) != 0 {
		t.Errorf("got %d events, want 0 past the end", len(empty))
	}
}

func TestMemoryRepoAppendCopiesMetadata(t *testing.T) {
	repo := NewMemoryRepo()
	meta := map[string]any{"classification": "Invoice"}
	ev := Event{ID: "ev-1", EventType: TypeAIAnalysis, Description: "d", Metadata: meta, CreatedAt: time.Now().UTC()}
	if err := repo.Append(context.Background(), ev); err != nil {
		t.Fatalf("Append: %v", err)
	}

	meta["classification"] = "changed"

	out, err := repo.List(context.Background(), Filter{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if out[0].Metadata["classification"] != "Invoice" {
		t.Errorf("metadata = %v, want the value at append time", out[0].Metadata)
	}
}
