package services

import (
	"errors"
	"fmt"

	apperrors "github.com/SAP-F-2025/quiz-attempt-service/internal/errors"
)

var (
	ErrForbidden = errors.New("forbidden - insufficient permissions")

	ErrQuizNotFound    = errors.New("quiz not found")
	ErrQuizUnavailable = errors.New("quiz is not currently available")

	ErrQuestionNotFound      = errors.New("question not found")
	ErrInvalidQuestionNumber = errors.New("invalid question number")

	ErrAttemptNotFound = errors.New("attempt not found")
)

type ValidationError = apperrors.ValidationError
type ValidationErrors = apperrors.ValidationErrors

// PermissionError reports a caller acting on a resource it does not own.
type PermissionError struct {
	UserID     string `json:"user_id"`
	ResourceID uint   `json:"resource_id"`
	Resource   string `json:"resource"`
	Action     string `json:"action"`
	Reason     string `json:"reason"`
}

func (pe *PermissionError) Error() string {
	if pe.ResourceID == 0 {
		return fmt.Sprintf("permission denied: user %s cannot %s %s - %s", pe.UserID, pe.Action, pe.Resource, pe.Reason)
	}
	return fmt.Sprintf("permission denied: user %s cannot %s %s %d - %s",
		pe.UserID, pe.Action, pe.Resource, pe.ResourceID, pe.Reason)
}

// Is lets errors.Is(err, ErrForbidden) match any permission error.
func (pe *PermissionError) Is(target error) bool {
	return target == ErrForbidden
}

func NewPermissionError(userID string, resourceID uint, resource, action, reason string) *PermissionError {
	return &PermissionError{
		UserID:     userID,
		ResourceID: resourceID,
		Resource:   resource,
		Action:     action,
		Reason:     reason,
	}
}

// ErrorKind is the caller-visible class of a lifecycle failure.
type ErrorKind string

const (
	KindForbidden       ErrorKind = "forbidden"
	KindNotFound        ErrorKind = "not_found"
	KindQuizUnavailable ErrorKind = "quiz_unavailable"
	KindInvalidInput    ErrorKind = "invalid_input"
	KindInternal        ErrorKind = "internal"
)

// KindOf classifies err. Anything unrecognised, storage failures included, is KindInternal.
func KindOf(err error) ErrorKind {
	switch {
	case IsForbidden(err):
		return KindForbidden
	case IsNotFound(err):
		return KindNotFound
	case errors.Is(err, ErrQuizUnavailable):
		return KindQuizUnavailable
	case IsValidation(err):
		return KindInvalidInput
	default:
		return KindInternal
	}
}

func IsNotFound(err error) bool {
	return errors.Is(err, ErrQuizNotFound) ||
		errors.Is(err, ErrQuestionNotFound) ||
		errors.Is(err, ErrAttemptNotFound)
}

func IsForbidden(err error) bool {
	return errors.Is(err, ErrForbidden)
}

// IsValidation covers field validation failures and out of range question numbers
func IsValidation(err error) bool {
	if errors.Is(err, ErrInvalidQuestionNumber) {
		return true
	}
	var ve ValidationErrors
	return errors.As(err, &ve)
}
