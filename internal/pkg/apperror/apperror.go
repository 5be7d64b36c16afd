package apperror

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
)

// Code is the machine-readable error class carried to clients.
type Code string

const (
	CodeUnauthorized         Code = "UNAUTHORIZED"
	CodeNotFound             Code = "NOT_FOUND"
	CodeSessionExpired       Code = "SESSION_EXPIRED"
	CodeConversationResolved Code = "CONVERSATION_RESOLVED"
	CodeBadRequest           Code = "BAD_REQUEST"
	CodeUpstreamFailure      Code = "UPSTREAM_FAILURE"
)

// AppError pairs a code with a human message. Services fail fast with one of
// these before any mutation happens; the HTTP layer maps it to a status.
type AppError struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func New(code Code, message string) *AppError {
	return &AppError{Code: code, Message: message}
}

// Wrap keeps the upstream cause for logs while exposing only code+message.
func Wrap(code Code, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

func Unauthorized(message string) *AppError {
	return New(CodeUnauthorized, message)
}

func NotFound(message string) *AppError {
	return New(CodeNotFound, message)
}

func SessionExpired(message string) *AppError {
	return New(CodeSessionExpired, message)
}

func ConversationResolved() *AppError {
	return New(CodeConversationResolved, "Conversation resolved")
}

func BadRequest(message string) *AppError {
	return New(CodeBadRequest, message)
}

func Upstream(message string, err error) *AppError {
	return Wrap(CodeUpstreamFailure, message, err)
}

// HTTPStatus maps the taxonomy onto fiber status codes.
func (e *AppError) HTTPStatus() int {
	switch e.Code {
	case CodeUnauthorized, CodeSessionExpired:
		return fiber.StatusUnauthorized
	case CodeNotFound:
		return fiber.StatusNotFound
	case CodeConversationResolved, CodeBadRequest:
		return fiber.StatusBadRequest
	case CodeUpstreamFailure:
		return fiber.StatusBadGateway
	default:
		return fiber.StatusInternalServerError
	}
}

// As extracts an AppError from an error chain.
func As(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}
