package events

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"

	"docscan-backend/internal/shared/server/middleware"
)

const testGuestUserID = "guest:test-guest"

func setupEventsRouter(t *testing.T) (*gin.Engine, *MemoryRepo) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	repo := NewMemoryRepo()
	handler := NewHandler(repo)

	router := gin.New()
	router.Use(middleware.Auth())
	handler.RegisterRoutes(router.Group("/"))

	return router, repo
}

func addGuestHeader(req *http.Request) {
	req.Header.Set("X-Guest-Id", "test-guest")
}

func seedHistory(t *testing.T, repo *MemoryRepo) {
	t.Helper()
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	seedEvent(t, repo, "ev-1", TypeDocumentUpload, "Document a.pdf uploaded", testGuestUserID, base)
	seedEvent(t, repo, "ev-2", TypeDocumentUpload, "Document b.pdf uploaded", testGuestUserID, base.Add(time.Minute))
	seedEvent(t, repo, "ev-3", TypeAIAnalysis, "Analysis completed: Invoice", testGuestUserID, base.Add(2*time.Minute))
	seedEvent(t, repo, "ev-other", TypeDocumentUpload, "Document x.pdf uploaded", "guest:someone-else", base.Add(3*time.Minute))
}

type historyResponse struct {
	Events []Event `json:"events"`
	Total  int     `json:"total"`
	Limit  int     `json:"limit"`
	Offset int     `json:"offset"`
}

func TestEventHistoryScopedToCaller(t *testing.T) {
	router, repo := setupEventsRouter(t)
	seedHistory(t, repo)

	req := httptest.NewRequest(http.MethodGet, "/documents/events/history", nil)
	addGuestHeader(req)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.Code)
	}

	var got historyResponse
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if got.Total != 3 {
		t.Errorf("total = %d, want 3 (foreign events excluded)", got.Total)
	}
	if len(got.Events) != 3 {
		t.Fatalf("got %d events, want 3", len(got.Events))
	}
	if got.Events[0].ID != "ev-3" {
		t.Errorf("events[0].ID = %s, want newest first", got.Events[0].ID)
	}
	if got.Limit != 100 || got.Offset != 0 {
		t.Errorf("limit/offset = %d/%d, want defaults 100/0", got.Limit, got.Offset)
	}
}

func TestEventHistoryFiltersAndPaginates(t *testing.T) {
	router, repo := setupEventsRouter(t)
	seedHistory(t, repo)

	req := httptest.NewRequest(http.MethodGet, "/documents/events/history?event_type=document_upload&limit=1&offset=1", nil)
	addGuestHeader(req)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.Code)
	}

	var got historyResponse
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if got.Total != 2 {
		t.Errorf("total = %d, want 2 uploads", got.Total)
	}
	if len(got.Events) != 1 || got.Events[0].ID != "ev-1" {
		t.Errorf("events = %v, want the older upload only", got.Events)
	}
	if got.Limit != 1 || got.Offset != 1 {
		t.Errorf("limit/offset = %d/%d, want echoed 1/1", got.Limit, got.Offset)
	}
}

func TestEventHistoryDateWindow(t *testing.T) {
	router, repo := setupEventsRouter(t)
	base := time.Date(2024, 3, 1, 23, 30, 0, 0, time.UTC)
	seedEvent(t, repo, "in-window", TypeDocumentUpload, "d", testGuestUserID, base)
	seedEvent(t, repo, "next-day", TypeDocumentUpload, "d", testGuestUserID, base.Add(time.Hour))

	req := httptest.NewRequest(http.MethodGet, "/documents/events/history?start_date=2024-03-01&end_date=2024-03-01", nil)
	addGuestHeader(req)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.Code)
	}

	var got historyResponse
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if got.Total != 1 || len(got.Events) != 1 || got.Events[0].ID != "in-window" {
		t.Errorf("got %v (total %d), want only the event inside the day", got.Events, got.Total)
	}
}

func TestEventHistoryRejectsBadDate(t *testing.T) {
	router, _ := setupEventsRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/documents/events/history?start_date=01-03-2024", nil)
	addGuestHeader(req)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.Code)
	}
	if !strings.Contains(resp.Body.String(), "validation_error") {
		t.Errorf("body = %s, want a validation_error envelope", resp.Body.String())
	}
}

func TestEventHistoryEmptyIsArray(t *testing.T) {
	router, _ := setupEventsRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/documents/events/history", nil)
	addGuestHeader(req)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.Code)
	}
	if !strings.Contains(resp.Body.String(), `"events":[]`) {
		t.Errorf("body = %s, want an empty events array", resp.Body.String())
	}
}

func TestEventHistoryRequiresIdentity(t *testing.T) {
	router, _ := setupEventsRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/documents/events/history", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", resp.Code)
	}
}

func TestEventExportWorkbook(t *testing.T) {
	router, repo := setupEventsRouter(t)
	seedHistory(t, repo)

	req := httptest.NewRequest(http.MethodGet, "/documents/events/export?event_type=document_upload", nil)
	addGuestHeader(req)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.Code)
	}
	if ct := resp.Header().Get("Content-Type"); ct != xlsxContentType {
		t.Errorf("Content-Type = %q, want %q", ct, xlsxContentType)
	}
	disposition := resp.Header().Get("Content-Disposition")
	if !strings.HasPrefix(disposition, "attachment; filename=event_history_") || !strings.HasSuffix(disposition, ".xlsx") {
		t.Errorf("Content-Disposition = %q, want an event_history attachment", disposition)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	f, err := excelize.OpenReader(bytes.NewReader(body))
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	t.Cleanup(func() { _ = f.Close() })

	rows, err := f.GetRows(exportSheet)
	if err != nil {
		t.Fatalf("read sheet: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("got %d rows, want header plus the caller's 2 uploads", len(rows))
	}
}

func TestEventExportRejectsBadDate(t *testing.T) {
	router, _ := setupEventsRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/documents/events/export?end_date=bogus", nil)
	addGuestHeader(req)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.Code)
	}
}
