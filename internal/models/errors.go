package models

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
)

// Error codes carried by AppError. Callers map these to their own protocol.
const (
	CodeValidation         = "VALIDATION_ERROR"
	CodeEmptyContent       = "EMPTY_CONTENT"
	CodeDuplicateUsername  = "DUPLICATE_USERNAME"
	CodeDuplicateEmail     = "DUPLICATE_EMAIL"
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
	CodeUnauthenticated    = "UNAUTHENTICATED"
	CodeForbidden          = "FORBIDDEN"
	CodeNotFound           = "NOT_FOUND"
	CodeUnavailable        = "UNAVAILABLE"
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

func NewEmptyContentError() *AppError {
	return &AppError{
		Code:    CodeEmptyContent,
		Message: "Content is required",
	}
}

func NewDuplicateEmailError() *AppError {
	return &AppError{
		Code:    CodeDuplicateEmail,
		Message: "Email already exists",
	}
}

func NewDuplicateUsernameError() *AppError {
	return &AppError{
		Code:    CodeDuplicateUsername,
		Message: "Username already exists",
	}
}

// NewInvalidCredentialsError is shared by unknown-email and wrong-password paths.
func NewInvalidCredentialsError() *AppError {
	return &AppError{
		Code:    CodeInvalidCredentials,
		Message: "Invalid credentials",
	}
}

func NewUnauthenticatedError(message string) *AppError {
	return &AppError{
		Code:    CodeUnauthenticated,
		Message: message,
	}
}

func NewForbiddenError(message string) *AppError {
	return &AppError{
		Code:    CodeForbidden,
		Message: message,
	}
}

func NewUnavailableError(err error) *AppError {
	return &AppError{
		Code:    CodeUnavailable,
		Message: "Service temporarily unavailable",
		Err:     err,
	}
}

// ErrorCode returns the AppError code carried by err, or "" for untagged errors.
func ErrorCode(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ""
}

// IsCode reports whether err carries the given AppError code.
func IsCode(err error, code string) bool {
	return ErrorCode(err) == code
}

// HTTPStatus maps an error to the status code the HTTP layer responds with.
func HTTPStatus(err error) int {
	switch ErrorCode(err) {
	case CodeValidation, CodeEmptyContent:
		return fiber.StatusBadRequest
	case CodeDuplicateEmail, CodeDuplicateUsername:
		return fiber.StatusConflict
	case CodeInvalidCredentials, CodeUnauthenticated:
		return fiber.StatusUnauthorized
	case CodeForbidden:
		return fiber.StatusForbidden
	case CodeNotFound:
		return fiber.StatusNotFound
	case CodeUnavailable:
		return fiber.StatusServiceUnavailable
	default:
		return fiber.StatusInternalServerError
	}
}

// RespondWithError writes a standardized error response using the status derived from err.
func RespondWithError(c *fiber.Ctx, err error) error {
	var response ErrorResponse

	var appErr *AppError
	if errors.As(err, &appErr) {
		response = ErrorResponse{
			Error: appErr.Message,
			Code:  appErr.Code,
		}
	} else {
		response = ErrorResponse{
			Error: "Internal server error",
		}
	}

	return c.Status(HTTPStatus(err)).JSON(response)
}
