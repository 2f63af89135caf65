package repositories

import (
	"context"
	"time"

	"github.com/SAP-F-2025/quiz-attempt-service/internal/models"
)

// QuizRepository is read access to quiz definitions and their question bank.
type QuizRepository interface {
	GetByID(ctx context.Context, id uint) (*models.Quiz, error)
	// GetByIDWithQuestions loads questions ordered by position then id.
	GetByIDWithQuestions(ctx context.Context, id uint) (*models.Quiz, error)
	GetQuestion(ctx context.Context, questionID uint) (*models.Question, error)
	CountQuestions(ctx context.Context, quizID uint) (int, error)
	ListAvailable(ctx context.Context, now time.Time) ([]*QuizAvailability, error)
}
