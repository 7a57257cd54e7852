package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"docscan-backend/internal/shared/telemetry"
)

func TestRequestIDGeneratedWhenMissing(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(RequestID())

	var fromGin, fromCtx string
	router.GET("/documents", func(c *gin.Context) {
		fromGin = RequestIDFromContext(c)
		fromCtx = telemetry.RequestID(c.Request.Context())
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/documents", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if fromGin == "" {
		t.Fatalf("expected a generated request ID")
	}
	if fromCtx != fromGin {
		t.Fatalf("request context ID %q does not match gin ID %q", fromCtx, fromGin)
	}
	if got := resp.Header().Get("X-Request-Id"); got != fromGin {
		t.Fatalf("expected response header %q, got %q", fromGin, got)
	}
}

func TestRequestIDReusesInboundHeader(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(RequestID())
	router.GET("/documents", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/documents", nil)
	req.Header.Set("X-Request-Id", "client-abc-123")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if got := resp.Header().Get("X-Request-Id"); got != "client-abc-123" {
		t.Fatalf("expected inbound ID to be reused, got %q", got)
	}
}

func TestRequestIDSanitizesInboundHeader(t *testing.T) {
	cases := []struct {
		name    string
		header  string
		replace bool
	}{
		{name: "control bytes", header: "bad\x00id", replace: true},
		{name: "spaces", header: "two words", replace: true},
		{name: "oversized", header: strings.Repeat("a", 500), replace: false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			gin.SetMode(gin.TestMode)
			router := gin.New()
			router.Use(RequestID())
			router.GET("/documents", func(c *gin.Context) {
				c.Status(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/documents", nil)
			req.Header.Set("X-Request-Id", tc.header)
			resp := httptest.NewRecorder()
			router.ServeHTTP(resp, req)

			got := resp.Header().Get("X-Request-Id")
			if got == "" {
				t.Fatalf("expected a request ID header")
			}
			if tc.replace && got == tc.header {
				t.Fatalf("expected inbound ID %q to be replaced", tc.header)
			}
			if !tc.replace {
				if len(got) != maxInboundRequestIDLen {
					t.Fatalf("expected truncation to %d bytes, got %d", maxInboundRequestIDLen, len(got))
				}
			}
		})
	}
}
