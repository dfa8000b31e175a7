package handler

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"radarmap/internal/http/middleware"
)

// errorPayload defines the standardized error response body.
type errorPayload struct {
	RequestID string        `json:"request_id"`
	Error     errorEnvelope `json:"error"`
}

type errorEnvelope struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// requestIDFromCtx extracts request_id previously stored by middleware.RequestID.
func requestIDFromCtx(c *fiber.Ctx) string {
	if v := c.Locals(middleware.RequestIDLocalKey); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// writeError writes a standardized JSON error response without leaking internal errors.
//
// Parameters:
// - status: HTTP status code to return
// - code: machine-readable short error code (e.g., "INVALID_LIMIT", "NOT_FOUND", "INTERNAL_ERROR")
// - message: human-readable safe message (no internal details)
func writeError(c *fiber.Ctx, status int, code, message string) error {
	res := errorPayload{
		RequestID: requestIDFromCtx(c),
		Error: errorEnvelope{
			Code:    code,
			Message: message,
		},
	}
	return c.Status(status).JSON(res)
}

// wantsJSON reports whether an error should be answered with the JSON payload
// rather than the HTML error page.
func wantsJSON(c *fiber.Ctx) bool {
	if strings.HasPrefix(c.Path(), "/api/") {
		return true
	}
	return c.Accepts(fiber.MIMETextHTML, fiber.MIMEApplicationJSON) == fiber.MIMEApplicationJSON
}

func describe(status int) (code, message string) {
	switch status {
	case fiber.StatusBadRequest:
		return "BAD_REQUEST", "bad request"
	case fiber.StatusNotFound:
		return "NOT_FOUND", "resource not found"
	case fiber.StatusMethodNotAllowed:
		return "METHOD_NOT_ALLOWED", "method not allowed"
	case fiber.StatusServiceUnavailable:
		return "SERVICE_UNAVAILABLE", "service unavailable"
	default:
		return "INTERNAL_ERROR", "internal server error"
	}
}

// ErrorHandler returns a Fiber global error handler. API clients get the JSON
// payload; browsers get the error page, or plain text when no views are configured.
func ErrorHandler() fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status := fiber.StatusInternalServerError
		var fe *fiber.Error
		if errors.As(err, &fe) {
			status = fe.Code
		}
		code, message := describe(status)

		if wantsJSON(c) {
			return writeError(c, status, code, message)
		}

		if c.App().Config().Views == nil {
			c.Type("txt")
			return c.Status(status).SendString(message)
		}
		return c.Status(status).Render("error", fiber.Map{
			"Status":    status,
			"Message":   message,
			"RequestID": requestIDFromCtx(c),
		})
	}
}
