package services

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	testCases := []struct {
		name string
		err  error
		want ErrorKind
	}{
		{"permission error", NewPermissionError("bob", 1, "attempt", "complete", "not owned by user"), KindForbidden},
		{"wrapped permission error", fmt.Errorf("complete: %w", NewPermissionError("bob", 1, "attempt", "complete", "not owned by user")), KindForbidden},
		{"attempt not found", ErrAttemptNotFound, KindNotFound},
		{"wrapped quiz not found", fmt.Errorf("start: %w", ErrQuizNotFound), KindNotFound},
		{"quiz unavailable", ErrQuizUnavailable, KindQuizUnavailable},
		{"question number", ErrInvalidQuestionNumber, KindInvalidInput},
		{"field validation", ValidationErrors{{Field: "selected_option", Message: "is required"}}, KindInvalidInput},
		{"storage failure", errors.New("connection refused"), KindInternal},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, KindOf(tc.err))
		})
	}
}

func TestPermissionError_Message(t *testing.T) {
	assert.Equal(t, "permission denied: user bob cannot complete attempt 7 - not owned by user",
		NewPermissionError("bob", 7, "attempt", "complete", "not owned by user").Error())
	assert.Equal(t, "permission denied: user bob cannot export attempt export - only admins can export other users",
		NewPermissionError("bob", 0, "attempt export", "export", "only admins can export other users").Error())
	assert.True(t, errors.Is(NewPermissionError("bob", 7, "attempt", "complete", ""), ErrForbidden))
}
