package validator

import (
	"testing"

	"github.com/SAP-F-2025/quiz-attempt-service/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type answerInput struct {
	QuestionID     uint   `json:"question_id" validate:"required"`
	SelectedOption int    `json:"selected_option" validate:"required,option_index"`
	Status         string `form:"status" validate:"omitempty,attempt_status"`
	SortOrder      string `form:"sort_order" validate:"omitempty,sort_order"`
}

func TestValidator_ValidateStruct(t *testing.T) {
	v := New()

	require.NoError(t, v.ValidateStruct(answerInput{QuestionID: 1, SelectedOption: 4, Status: "expired", SortOrder: "DESC"}))

	err := v.ValidateStruct(answerInput{SelectedOption: 5, Status: "paused", SortOrder: "sideways"})
	require.Error(t, err)

	var errs ValidationErrors
	require.ErrorAs(t, err, &errs)
	assert.Equal(t, []string{"question_id", "selected_option", "status", "sort_order"}, errs.Fields())
	assert.Equal(t, "must be an option number between 1 and 4", errs[1].Message)
}

func TestQuestionValidator(t *testing.T) {
	v := NewQuestionValidator()
	third := "Paris"
	twoOptions := &models.Question{ID: 1, Title: "Capital", Option1: "Rome", Option2: "Oslo", CorrectAnswer: 2}
	threeOptions := &models.Question{ID: 2, Title: "Capital", Option1: "Rome", Option2: "Oslo", Option3: &third, CorrectAnswer: 3}

	t.Run("selection", func(t *testing.T) {
		assert.NoError(t, v.ValidateSelection(twoOptions, 2))
		assert.Error(t, v.ValidateSelection(twoOptions, 3))
		assert.NoError(t, v.ValidateSelection(threeOptions, 3))
		assert.Error(t, v.ValidateSelection(threeOptions, 0))
		assert.Error(t, v.ValidateSelection(nil, 1))
	})

	t.Run("selection keeps positions when option 3 is missing", func(t *testing.T) {
		fourth := "Paris"
		gap := &models.Question{ID: 5, Title: "Capital", Option1: "Rome", Option2: "Oslo", Option4: &fourth, CorrectAnswer: 4}

		assert.NoError(t, v.ValidateSelection(gap, 4))

		err := v.ValidateSelection(gap, 3)
		require.Error(t, err)
		var errs ValidationErrors
		require.ErrorAs(t, err, &errs)
		assert.Equal(t, "must be one of the populated options [1 2 4] of this question", errs[0].Message)
	})

	t.Run("definition", func(t *testing.T) {
		assert.NoError(t, v.ValidateQuestion(twoOptions))
		assert.NoError(t, v.ValidateQuestion(threeOptions))

		gap := &models.Question{ID: 3, Title: "Gap", Option1: "a", Option2: "b", Option4: &third, CorrectAnswer: 4}
		assert.NoError(t, v.ValidateQuestion(gap))

		gap.CorrectAnswer = 3
		assert.Error(t, v.ValidateQuestion(gap))

		outOfRange := &models.Question{ID: 4, Title: "Range", Option1: "a", Option2: "b", CorrectAnswer: 3}
		assert.Error(t, v.ValidateQuestion(outOfRange))
	})
}
