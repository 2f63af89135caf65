package validator

import (
	"reflect"
	"strings"

	apperrors "github.com/SAP-F-2025/quiz-attempt-service/internal/errors"
	"github.com/SAP-F-2025/quiz-attempt-service/internal/models"
	"github.com/go-playground/validator/v10"
)

type ValidationErrors = apperrors.ValidationErrors

// Validator combines struct tag validation with the question option rules
type Validator struct {
	structValidator   *validator.Validate
	questionValidator *QuestionValidator
}

// New creates a new centralized validator instance
func New() *Validator {
	structValidator := validator.New()

	// Register all custom validators once
	registerCustomValidators(structValidator)

	return &Validator{
		structValidator:   structValidator,
		questionValidator: NewQuestionValidator(),
	}
}

// ValidateStruct validates struct tags and converts failures to ValidationErrors
func (v *Validator) ValidateStruct(s interface{}) error {
	if err := v.structValidator.Struct(s); err != nil {
		if errs := apperrors.ToValidationErrors(err); len(errs) > 0 {
			return errs
		}
		return err
	}
	return nil
}

// Question returns the question validator
func (v *Validator) Question() *QuestionValidator {
	return v.questionValidator
}

// registerCustomValidators registers all custom validation functions
func registerCustomValidators(validate *validator.Validate) {
	validate.RegisterValidation("option_index", validateOptionIndex)
	validate.RegisterValidation("attempt_status", validateAttemptStatus)
	validate.RegisterValidation("sort_order", validateSortOrder)

	// Custom tag name function for better error messages
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		for _, tag := range []string{"json", "form"} {
			name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name != "" {
				return name
			}
		}
		return fld.Name
	})
}

func validateOptionIndex(fl validator.FieldLevel) bool {
	value := int(fl.Field().Int())
	return value >= models.MinOptionIndex && value <= models.MaxOptionIndex
}

func validateAttemptStatus(fl validator.FieldLevel) bool {
	return models.AttemptStatus(fl.Field().String()).IsValid()
}

func validateSortOrder(fl validator.FieldLevel) bool {
	switch strings.ToLower(fl.Field().String()) {
	case "asc", "desc":
		return true
	}
	return false
}
