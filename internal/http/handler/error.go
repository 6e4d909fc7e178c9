package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"minutesapi/internal/http/middleware"
	"minutesapi/internal/model"
	"minutesapi/internal/service"
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

type stageStatus struct {
	status int
	code   string
}

var stageStatuses = map[model.Stage]stageStatus{
	model.StageInit:       {fiber.StatusServiceUnavailable, "CONFIGURATION_ERROR"},
	model.StageUpload:     {fiber.StatusBadGateway, "UPLOAD_ERROR"},
	model.StageTranscribe: {fiber.StatusBadGateway, "TRANSCRIPTION_ERROR"},
	model.StageSummarize:  {fiber.StatusBadGateway, "SUMMARIZATION_ERROR"},
	model.StageRender:     {fiber.StatusInternalServerError, "RENDER_ERROR"},
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
// - code: machine-readable short error code (e.g., "FILE_REQUIRED", "UPLOAD_ERROR")
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

// writeStageError reports a failed pipeline run with the failing stage's message.
func writeStageError(c *fiber.Ctx, err error) error {
	var se *service.StageError
	if errors.As(err, &se) {
		if st, ok := stageStatuses[se.Stage]; ok {
			return writeError(c, st.status, st.code, se.UserMessage())
		}
	}
	return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
}

// ErrorHandler returns a Fiber global error handler that standardizes error responses.
func ErrorHandler() fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status := fiber.StatusInternalServerError
		if e, ok := err.(*fiber.Error); ok {
			status = e.Code
		}

		switch status {
		case fiber.StatusBadRequest:
			return writeError(c, status, "BAD_REQUEST", "bad request")
		case fiber.StatusNotFound:
			return writeError(c, status, "NOT_FOUND", "resource not found")
		case fiber.StatusMethodNotAllowed:
			return writeError(c, status, "METHOD_NOT_ALLOWED", "method not allowed")
		case fiber.StatusRequestEntityTooLarge:
			return writeError(c, status, "FILE_TOO_LARGE", "uploaded file exceeds the size limit")
		default:
			return writeError(c, status, "INTERNAL_ERROR", "internal server error")
		}
	}
}
