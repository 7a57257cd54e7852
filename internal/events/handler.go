package events

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"docscan-backend/internal/shared/server/middleware"
	"docscan-backend/internal/shared/server/respond"
	"docscan-backend/internal/shared/telemetry"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Handler wires HTTP handlers to the event log.
type Handler struct {
	Repo EventsRepo
}

// NewHandler constructs a Handler.
func NewHandler(repo EventsRepo) *Handler {
	return &Handler{Repo: repo}
}

// RegisterRoutes attaches event routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/documents/events/history", h.history)
	rg.GET("/documents/events/export", h.export)
}

func (h *Handler) history(c *gin.Context) {
	f, err := filterFromQuery(c)
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		return
	}

	limit := defaultListLimit
	if v := c.Query("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			limit = parsed
		}
	}
	if limit < 1 {
		limit = 1
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}

	offset := 0
	if v := c.Query("offset"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			offset = parsed
		}
	}
	if offset < 0 {
		offset = 0
	}

	f.Limit = limit
	f.Offset = offset

	evs, err := h.Repo.List(c.Request.Context(), f)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list events", nil)
		return
	}
	total, err := h.Repo.Count(c.Request.Context(), f)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to count events", nil)
		return
	}

	if evs == nil {
		evs = []Event{}
	}
	respond.JSON(c, http.StatusOK, gin.H{
		"events": evs,
		"total":  total,
		"limit":  limit,
		"offset": offset,
	})
}

func (h *Handler) export(c *gin.Context) {
	f, err := filterFromQuery(c)
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		return
	}
	f.Limit = exportRowCap

	evs, err := h.Repo.List(c.Request.Context(), f)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to export events", nil)
		return
	}

	start := time.Now()
	data, err := BuildWorkbook(evs)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to render workbook", nil)
		return
	}

	telemetry.Info("events.export", map[string]any{
		"request_id":  middleware.RequestIDFromContext(c),
		"user_id":     f.UserID,
		"rows":        len(evs),
		"bytes":       len(data),
		"duration_ms": time.Since(start).Milliseconds(),
	})

	filename := fmt.Sprintf("event_history_%s.xlsx", time.Now().UTC().Format("20060102_150405"))
	respond.Attachment(c, filename, xlsxContentType, data)
}

func filterFromQuery(c *gin.Context) (Filter, error) {
	f := Filter{
		UserID:      middleware.UserIDFromContext(c),
		EventType:   strings.TrimSpace(c.Query("event_type")),
		Description: strings.TrimSpace(c.Query("description")),
	}

	if v := c.Query("start_date"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			return Filter{}, fmt.Errorf("invalid start_date %q, use YYYY-MM-DD", v)
		}
		f.Start = &t
	}
	if v := c.Query("end_date"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			return Filter{}, fmt.Errorf("invalid end_date %q, use YYYY-MM-DD", v)
		}
		end := t.Add(24*time.Hour - time.Second)
		f.End = &end
	}

	return f, nil
}
