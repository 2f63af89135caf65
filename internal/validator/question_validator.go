package validator

import (
	"fmt"

	"github.com/SAP-F-2025/quiz-attempt-service/internal/errors"
	"github.com/SAP-F-2025/quiz-attempt-service/internal/models"
)

// QuestionValidator checks answers and question definitions against the option layout
type QuestionValidator struct{}

// NewQuestionValidator creates a new question validator
func NewQuestionValidator() *QuestionValidator {
	return &QuestionValidator{}
}

// ValidateSelection rejects an option index the question does not offer,
// e.g. option 3 on a question that only populates options 1, 2 and 4.
func (v *QuestionValidator) ValidateSelection(question *models.Question, selected int) error {
	if question == nil {
		return fmt.Errorf("question cannot be nil")
	}

	if !v.hasOption(question, selected) {
		return ValidationErrors{*errors.NewValidationErrorWithRule(
			"selected_option",
			fmt.Sprintf("must be one of the populated options %v of this question", populatedOptions(question)),
			"option_index",
			selected,
		)}
	}
	return nil
}

// ValidateQuestion validates a complete question definition
func (v *QuestionValidator) ValidateQuestion(question *models.Question) error {
	if question.Title == "" {
		return fmt.Errorf("question title is required")
	}
	if question.Option1 == "" || question.Option2 == "" {
		return fmt.Errorf("question %d must offer at least two options", question.ID)
	}
	if !v.hasOption(question, question.CorrectAnswer) {
		return fmt.Errorf("question %d correct answer %d is not one of its options", question.ID, question.CorrectAnswer)
	}
	return nil
}

func (v *QuestionValidator) hasOption(question *models.Question, index int) bool {
	if index < models.MinOptionIndex || index > models.MaxOptionIndex {
		return false
	}
	return question.HasOption(index)
}

func populatedOptions(question *models.Question) []int {
	var indexes []int
	for i := models.MinOptionIndex; i <= models.MaxOptionIndex; i++ {
		if question.HasOption(i) {
			indexes = append(indexes, i)
		}
	}
	return indexes
}
