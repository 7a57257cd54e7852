package events

import "time"

// Event types recorded in the log.
const (
	TypeDocumentUpload = "document_upload"
	TypeAIAnalysis     = "ai_analysis"
	TypeUserLogin      = "user_login"
)

// Event is one entry of the append-only event log. Entries are never
// updated or deleted after Append.
type Event struct {
	ID          string         `json:"id"`
	EventType   string         `json:"event_type"`
	Description string         `json:"description"`
	DocumentID  *string        `json:"document_id"`
	UserID      *string        `json:"user_id"`
	Metadata    map[string]any `json:"metadata"`
	CreatedAt   time.Time      `json:"created_at"`
}
