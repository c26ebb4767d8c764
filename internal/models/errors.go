package models

import (
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
)

// Error codes shared by services and handlers.
const (
	CodeNotFound         = "NOT_FOUND"
	CodeForbidden        = "FORBIDDEN"
	CodeValidation       = "VALIDATION_ERROR"
	CodeUnauthorized     = "UNAUTHORIZED"
	CodeConflict         = "CONFLICT"
	CodeNoTitle          = "NO_TITLE"
	CodeInvalidThumbnail = "INVALID_THUMBNAIL"
	CodeTooLarge         = "TOO_LARGE"
	CodeInvalidAction    = "INVALID_ACTION"
	CodeTooSoon          = "TOO_SOON"
	CodeInternal         = "INTERNAL_ERROR"
)

// Sentinel outcomes. Compare with errors.Is; any AppError carrying the same
// code matches, so constructors below can add detail to the message.
var (
	ErrNotFound         = &AppError{Code: CodeNotFound, Message: "not found"}
	ErrForbidden        = &AppError{Code: CodeForbidden, Message: "forbidden"}
	ErrNoTitle          = &AppError{Code: CodeNoTitle, Message: "title required to publish"}
	ErrInvalidThumbnail = &AppError{Code: CodeInvalidThumbnail, Message: "thumbnail must be an image attached to the draft"}
	ErrTooLarge         = &AppError{Code: CodeTooLarge, Message: "file too large"}
	ErrConflict         = &AppError{Code: CodeConflict, Message: "conflict"}
	ErrInvalidAction    = &AppError{Code: CodeInvalidAction, Message: "invalid action"}
	ErrTooSoon          = &AppError{Code: CodeTooSoon, Message: "too soon"}
)

// ErrorResponse represents a standardized API error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

// AppError represents a custom application error
type AppError struct {
	Code    string
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Is reports whether target is an AppError with the same code.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	return ok && t.Code == e.Code
}

// Predefined error constructors
func NewNotFoundError(resource string, id interface{}) *AppError {
	return &AppError{
		Code:    CodeNotFound,
		Message: fmt.Sprintf("%s with ID %v not found", resource, id),
	}
}

func NewValidationError(message string) *AppError {
	return &AppError{
		Code:    CodeValidation,
		Message: message,
	}
}

func NewUnauthorizedError(message string) *AppError {
	return &AppError{
		Code:    CodeUnauthorized,
		Message: message,
	}
}

func NewForbiddenError(message string) *AppError {
	return &AppError{
		Code:    CodeForbidden,
		Message: message,
	}
}

func NewConflictError(message string) *AppError {
	return &AppError{
		Code:    CodeConflict,
		Message: message,
	}
}

// NewTooLargeError reports an upload above limit bytes.
func NewTooLargeError(limit int64) *AppError {
	return &AppError{
		Code:    CodeTooLarge,
		Message: fmt.Sprintf("file exceeds %d bytes", limit),
	}
}

// NewTooSoonError reports an action that may be retried after remaining.
func NewTooSoonError(action string, remaining time.Duration) *AppError {
	return &AppError{
		Code:    CodeTooSoon,
		Message: fmt.Sprintf("%s allowed again in %s", action, remaining.Round(time.Minute)),
	}
}

func NewInternalError(err error) *AppError {
	return &AppError{
		Code:    CodeInternal,
		Message: "Internal server error",
		Err:     err,
	}
}

// RespondWithError creates a standardized error response
func RespondWithError(c *fiber.Ctx, status int, err error) error {
	var response ErrorResponse

	var appErr *AppError
	if errors.As(err, &appErr) {
		response = ErrorResponse{
			Error: appErr.Message,
			Code:  appErr.Code,
		}
		if appErr.Err != nil && appErr.Code != CodeInternal {
			response.Details = appErr.Err.Error()
		}
	} else {
		response = ErrorResponse{
			Error: err.Error(),
		}
	}

	return c.Status(status).JSON(response)
}
