package models

import (
	"errors"
	"fmt"
)

// Error codes returned by the post lifecycle engine. Handlers map these
// to HTTP statuses; services and models never touch HTTP.
const (
	CodeValidation        = "VALIDATION_ERROR"
	CodeNotFound          = "NOT_FOUND"
	CodeExpired           = "EXPIRED"
	CodeSelfVote          = "SELF_VOTE"
	CodeDuplicateVote     = "DUPLICATE_VOTE"
	CodeInvalidExpiration = "INVALID_EXPIRATION"
	CodeConflict          = "CONFLICT"
	CodeStore             = "STORE_ERROR"
	CodeUnauthorized      = "UNAUTHORIZED"
	CodeInternal          = "INTERNAL_ERROR"
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

func NewNoPostsError(topic Topic) *AppError {
	return &AppError{
		Code:    CodeNotFound,
		Message: fmt.Sprintf("No posts found for topic %s", topic),
	}
}

func NewValidationError(message string) *AppError {
	return &AppError{
		Code:    CodeValidation,
		Message: message,
	}
}

func NewExpiredError() *AppError {
	return &AppError{
		Code:    CodeExpired,
		Message: "Post has expired and no longer accepts interactions",
	}
}

func NewSelfVoteError() *AppError {
	return &AppError{
		Code:    CodeSelfVote,
		Message: "You cannot vote on your own post",
	}
}

func NewDuplicateVoteError(kind VoteKind) *AppError {
	return &AppError{
		Code:    CodeDuplicateVote,
		Message: fmt.Sprintf("You have already recorded a %s on this post", kind),
	}
}

func NewInvalidExpirationError(message string) *AppError {
	return &AppError{
		Code:    CodeInvalidExpiration,
		Message: message,
	}
}

func NewConflictError(resource string, id interface{}) *AppError {
	return &AppError{
		Code:    CodeConflict,
		Message: fmt.Sprintf("%s with ID %v was modified concurrently", resource, id),
	}
}

func NewStoreError(err error) *AppError {
	return &AppError{
		Code:    CodeStore,
		Message: "Persistence operation failed",
		Err:     err,
	}
}

func NewUnauthorizedError(message string) *AppError {
	return &AppError{
		Code:    CodeUnauthorized,
		Message: message,
	}
}

func NewInternalError(err error) *AppError {
	return &AppError{
		Code:    CodeInternal,
		Message: "Internal server error",
		Err:     err,
	}
}

// CodeOf extracts the AppError code from err, or empty string when err
// is not an AppError.
func CodeOf(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ""
}
