package errors

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidationError(t *testing.T) {
	err := NewValidationError("selected_option", "must be at most 4", 7)

	assert.Equal(t, "selected_option", err.Field)
	assert.Equal(t, "must be at most 4", err.Message)
	assert.Equal(t, 7, err.Value)
	assert.Equal(t, "validation error on field 'selected_option': must be at most 4", err.Error())
}

func TestValidationErrors(t *testing.T) {
	var errs ValidationErrors
	assert.Equal(t, "validation failed", errs.Error())

	errs = append(errs, *NewValidationError("question_id", "is required", nil))
	assert.Equal(t, "validation failed: question_id is required", errs.Error())

	errs = append(errs, *NewValidationErrorWithRule("selected_option", "is required", "required", nil))
	assert.Equal(t, "validation failed: 2 field errors", errs.Error())
	assert.Equal(t, []string{"question_id", "selected_option"}, errs.Fields())
	assert.Equal(t, "required", errs[1].Rule)
}

func TestToValidationErrors(t *testing.T) {
	type answer struct {
		QuestionID     uint `validate:"required"`
		SelectedOption int  `validate:"min=1,max=4"`
	}

	err := validator.New().Struct(answer{SelectedOption: 9})
	require.Error(t, err)

	errs := ToValidationErrors(err)
	require.Len(t, errs, 2)
	assert.Equal(t, "QuestionID", errs[0].Field)
	assert.Equal(t, "is required", errs[0].Message)
	assert.Equal(t, "SelectedOption", errs[1].Field)
	assert.Equal(t, "must be at most 4", errs[1].Message)
	assert.Equal(t, "max", errs[1].Rule)

	assert.Empty(t, ToValidationErrors(assert.AnError))
}
