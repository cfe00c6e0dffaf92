package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"social-campaign-platform/internal/auth"
	"social-campaign-platform/internal/telemetry"
	"social-campaign-platform/models"
)

// AuditMiddleware creates audit logs for all requests
func AuditMiddleware(auditor *models.AuditLogger, metrics *telemetry.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		// Capture request body for audit (skip multipart and cap size)
		var bodyBytes []byte
		if c.Request.Body != nil {
			ct := c.Request.Header.Get("Content-Type")
			if !strings.HasPrefix(ct, "multipart/") {
				limited := io.LimitReader(c.Request.Body, 1<<20) // 1MB cap
				bodyBytes, _ = io.ReadAll(limited)
				c.Request.Body = io.NopCloser(bytes.NewBuffer(bodyBytes))
			}
		}

		requestID := c.GetString("request_id")
		if requestID == "" {
			requestID = uuid.NewString()
			c.Set("request_id", requestID)
		}

		c.Next()

		event := createAuditEvent(c, bodyBytes, start, requestID)

		// Log asynchronously to not block response
		auditor.LogAsync(event)
		if metrics != nil {
			metrics.AuditEventsLogged.Add(c.Request.Context(), 1)
		}
	}
}

// createAuditEvent creates an audit event from the request context
func createAuditEvent(c *gin.Context, bodyBytes []byte, start time.Time, requestID string) *models.AuditEvent {
	event := &models.AuditEvent{
		Timestamp: start,
		IPAddress: c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
		RequestID: requestID,
		Success:   c.Writer.Status() < 400,
		CreatedAt: time.Now(),
	}

	if claims, exists := c.Get("claims"); exists {
		if cl, ok := claims.(*auth.Claims); ok {
			event.UserID = cl.UserID
		}
	}

	event.Action = mapHTTPMethodToAction(c.Request.Method)
	event.Resource, event.ResourceID = extractResourceFromPath(c.Request.URL.Path)

	if !event.Success {
		event.ErrorMessage = "HTTP " + c.Writer.Header().Get("Content-Type")
	}

	event.Changes = extractChangesFromBody(bodyBytes, event.Action)

	return event
}

// mapHTTPMethodToAction maps HTTP methods to audit actions
func mapHTTPMethodToAction(method string) string {
	switch method {
	case "GET":
		return "READ"
	case "POST":
		return "CREATE"
	case "PUT", "PATCH":
		return "UPDATE"
	case "DELETE":
		return "DELETE"
	default:
		return "UNKNOWN"
	}
}

// extractResourceFromPath extracts resource type and ID from URL path
func extractResourceFromPath(path string) (string, string) {
	switch {
	case strings.Contains(path, "/api/auth/"):
		return "user", ""
	case strings.Contains(path, "/schedule"):
		return "schedule", extractIDFromPath(path)
	case strings.Contains(path, "/drafts"):
		return "draft", extractIDFromPath(path)
	case strings.Contains(path, "/api/wizard/"):
		return "session", extractIDFromPath(path)
	case strings.Contains(path, "/api/ideas"):
		return "idea", extractIDFromPath(path)
	case strings.Contains(path, "/api/campaigns"):
		return "campaign", extractIDFromPath(path)
	default:
		return "unknown", ""
	}
}

// extractIDFromPath extracts a UUID-shaped segment from the URL path
func extractIDFromPath(path string) string {
	for _, part := range strings.Split(path, "/") {
		if len(part) == 36 && strings.Count(part, "-") == 4 {
			return part
		}
	}
	return ""
}

// extractChangesFromBody extracts changes from request body
func extractChangesFromBody(bodyBytes []byte, action string) map[string]interface{} {
	if len(bodyBytes) == 0 || action == "READ" || action == "DELETE" {
		return nil
	}

	var body map[string]interface{}
	if err := json.Unmarshal(bodyBytes, &body); err != nil {
		return map[string]interface{}{
			"raw_body": string(bodyBytes),
		}
	}

	sensitiveFields := []string{"password", "token", "secret", "key"}
	filteredBody := make(map[string]interface{})

	for key, value := range body {
		if containsSensitiveField(key, sensitiveFields) {
			filteredBody[key] = "[REDACTED]"
		} else {
			filteredBody[key] = value
		}
	}

	return filteredBody
}

// containsSensitiveField checks if a field name is sensitive
func containsSensitiveField(field string, sensitiveFields []string) bool {
	fieldLower := strings.ToLower(field)
	for _, sensitive := range sensitiveFields {
		if strings.Contains(fieldLower, sensitive) {
			return true
		}
	}
	return false
}
