package util

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
)

// ErrorKind classifies failures at the collaborator boundaries so callers can
// branch on kind instead of matching message substrings.
type ErrorKind string

const (
	KindValidation  ErrorKind = "validation"
	KindAuth        ErrorKind = "auth"
	KindProvider    ErrorKind = "provider"
	KindParse       ErrorKind = "parse"
	KindPersistence ErrorKind = "persistence"
	KindNotFound    ErrorKind = "not_found"
)

type AppError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// StatusCode maps the error kind to the HTTP status used by the central
// fiber error handler.
func (e *AppError) StatusCode() int {
	switch e.Kind {
	case KindValidation, KindParse:
		return fiber.StatusBadRequest
	case KindAuth:
		return fiber.StatusUnauthorized
	case KindNotFound:
		return fiber.StatusNotFound
	case KindProvider:
		return fiber.StatusBadGateway
	default:
		return fiber.StatusInternalServerError
	}
}

func NewValidationError(message string) *AppError {
	return &AppError{Kind: KindValidation, Message: message}
}

func NewAuthError(message string) *AppError {
	return &AppError{Kind: KindAuth, Message: message}
}

func NewProviderError(message string, err error) *AppError {
	return &AppError{Kind: KindProvider, Message: message, Err: err}
}

func NewParseError(message string, err error) *AppError {
	return &AppError{Kind: KindParse, Message: message, Err: err}
}

func NewPersistenceError(message string, err error) *AppError {
	return &AppError{Kind: KindPersistence, Message: message, Err: err}
}

func NewNotFoundError(message string) *AppError {
	return &AppError{Kind: KindNotFound, Message: message}
}

// IsKind reports whether err is an AppError of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind == kind
	}
	return false
}

// FiberErrorHandler is the central fiber error handler: AppError kinds map to
// their status codes, everything else stays a 500 unless fiber already chose
// one. The body is always `{"error": message}`.
func FiberErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := err.Error()

	var appErr *AppError
	var fiberErr *fiber.Error
	if errors.As(err, &appErr) {
		code = appErr.StatusCode()
		message = appErr.Message
	} else if errors.As(err, &fiberErr) {
		code = fiberErr.Code
	}

	if message == "" {
		message = "Internal Server Error"
	}
	return c.Status(code).JSON(fiber.Map{"error": message})
}
