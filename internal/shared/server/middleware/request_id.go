package middleware

import (
	"crypto/rand"
	"encoding/hex"
	"time"

	"github.com/gin-gonic/gin"

	"docscan-backend/internal/shared/telemetry"
)

const requestIDKey = "requestId"

// maxInboundRequestIDLen caps client-supplied X-Request-Id values before
// they reach logs and event exports.
const maxInboundRequestIDLen = 128

// RequestID attaches a request ID to the gin context, the request context,
// and the response header. Inbound IDs are reused so callers can correlate
// across services; the request context copy follows the document through
// the analysis pipeline.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := sanitizeRequestID(c.GetHeader("X-Request-Id"))
		if id == "" {
			id = generateRequestID()
		}
		c.Set(requestIDKey, id)
		c.Request = c.Request.WithContext(telemetry.WithRequestID(c.Request.Context(), id))
		c.Writer.Header().Set("X-Request-Id", id)
		c.Next()
	}
}

// RequestIDFromContext fetches the request ID stored by RequestID middleware.
func RequestIDFromContext(c *gin.Context) string {
	if c == nil {
		return ""
	}
	val, _ := c.Get(requestIDKey)
	if id, ok := val.(string); ok {
		return id
	}
	return ""
}

// sanitizeRequestID rejects inbound IDs with control or non-ASCII bytes and
// truncates oversized ones.
func sanitizeRequestID(id string) string {
	if len(id) > maxInboundRequestIDLen {
		id = id[:maxInboundRequestIDLen]
	}
	for _, r := range id {
		if r < 0x21 || r > 0x7e {
			return ""
		}
	}
	return id
}

func generateRequestID() string {
	var b [16]byte
	if _, err := rand.Read(b[:]); err != nil {
		return time.Now().UTC().Format("20060102150405.000000000")
	}
	return hex.EncodeToString(b[:])
}
