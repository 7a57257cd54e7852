package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

// captureStdout runs fn with os.Stdout redirected and returns the emitted lines.
func captureStdout(t *testing.T, fn func()) []string {
	t.Helper()
	origStdout := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("pipe: %v", err)
	}
	os.Stdout = w
	defer func() {
		os.Stdout = origStdout
	}()

	fn()

	_ = w.Close()
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, r); err != nil {
		t.Fatalf("read log output: %v", err)
	}
	out := strings.TrimSpace(buf.String())
	if out == "" {
		return nil
	}
	return strings.Split(out, "\n")
}

func lastLogEntry(t *testing.T, lines []string) map[string]any {
	t.Helper()
	if len(lines) == 0 {
		t.Fatalf("expected log output")
	}
	var payload map[string]any
	if err := json.Unmarshal([]byte(lines[len(lines)-1]), &payload); err != nil {
		t.Fatalf("decode log json: %v", err)
	}
	return payload
}

func TestLoggingIncludesRequiredFields(t *testing.T) {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.Use(RequestID(), Auth(), Logging())
	router.GET("/test", func(c *gin.Context) {
		c.Set("documentId", "doc-1")
		c.Set("statusTransition", "processing->completed")
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	lines := captureStdout(t, func() {
		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.Header.Set("X-Guest-Id", "guest1")
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, req)
	})
	payload := lastLogEntry(t, lines)

	required := []string{"request_id", "user_id", "document_id", "duration_ms", "status", "status_transition", "route", "bytes_out"}
	for _, key := range required {
		if _, ok := payload[key]; !ok {
			t.Fatalf("missing log field: %s", key)
		}
	}
	if payload["user_id"] != "guest:guest1" {
		t.Fatalf("unexpected user_id: %v", payload["user_id"])
	}
	if payload["document_id"] != "doc-1" {
		t.Fatalf("unexpected document_id: %v", payload["document_id"])
	}
	if payload["status_transition"] != "processing->completed" {
		t.Fatalf("unexpected status_transition: %v", payload["status_transition"])
	}
	if payload["level"] != "info" {
		t.Fatalf("expected info level, got %v", payload["level"])
	}
}

func TestLoggingLevelTracksStatus(t *testing.T) {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.Use(RequestID(), Logging())
	router.GET("/missing", func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	})
	router.GET("/boom", func(c *gin.Context) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "boom"})
	})

	cases := []struct {
		path  string
		level string
	}{
		{path: "/missing", level: "warn"},
		{path: "/boom", level: "error"},
	}

	for _, tc := range cases {
		lines := captureStdout(t, func() {
			req := httptest.NewRequest(http.MethodGet, tc.path, nil)
			resp := httptest.NewRecorder()
			router.ServeHTTP(resp, req)
		})
		payload := lastLogEntry(t, lines)
		if payload["level"] != tc.level {
			t.Fatalf("%s: expected level %q, got %v", tc.path, tc.level, payload["level"])
		}
		if payload["route"] != tc.path {
			t.Fatalf("%s: unexpected route %v", tc.path, payload["route"])
		}
	}
}
