package repositories

import (
	"context"
	"time"

	"github.com/SAP-F-2025/quiz-attempt-service/internal/models"
)

// AttemptRepository interface for quiz attempt operations
type AttemptRepository interface {
	// Basic operations
	Create(ctx context.Context, attempt *models.UserQuizAttempt) error
	GetByID(ctx context.Context, id uint) (*models.UserQuizAttempt, error)

	// Active attempt management. GetActive returns nil, nil when no attempt is open.
	GetActive(ctx context.Context, userID string, quizID uint) (*models.UserQuizAttempt, error)

	// Terminal transitions. Both only touch an in_progress row and report whether it changed.
	Complete(ctx context.Context, id uint, score, totalQuestions int, endTime time.Time) (bool, error)
	Expire(ctx context.Context, id uint, endTime time.Time) (bool, error)

	// Query operations
	List(ctx context.Context, filters AttemptFilters) ([]*models.UserQuizAttempt, int64, error)
	ListByUserAndQuiz(ctx context.Context, userID string, quizID uint) ([]*models.UserQuizAttempt, error)
	ListStale(ctx context.Context, now time.Time, limit int) ([]*models.UserQuizAttempt, error)
	CountCompleted(ctx context.Context, userID string, quizID uint) (int, error)
}

// AnswerRepository interface for user answer operations
type AnswerRepository interface {
	// Upsert inserts the answer or overwrites the existing one for (attempt, question).
	Upsert(ctx context.Context, answer *models.UserAnswer) error
	GetByAttemptAndQuestion(ctx context.Context, attemptID, questionID uint) (*models.UserAnswer, error)
	ListByAttempt(ctx context.Context, attemptID uint) ([]*models.UserAnswer, error)
	Tally(ctx context.Context, attemptID uint) (*AnswerTally, error)
}

// ScoreRepository interface for completed attempt results
type ScoreRepository interface {
	Create(ctx context.Context, score *models.Score) error
	GetByAttempt(ctx context.Context, attemptID uint) (*models.Score, error)
}
