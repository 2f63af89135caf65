package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/SAP-F-2025/quiz-attempt-service/internal/models"
	"github.com/SAP-F-2025/quiz-attempt-service/internal/repositories"
	"gorm.io/gorm"
)

type AttemptPostgreSQL struct {
	db *gorm.DB
}

func NewAttemptPostgreSQL(db *gorm.DB) repositories.AttemptRepository {
	return &AttemptPostgreSQL{db: db}
}

func (a AttemptPostgreSQL) Create(ctx context.Context, attempt *models.UserQuizAttempt) error {
	return a.db.WithContext(ctx).Omit("Quiz", "Answers").Create(attempt).Error
}

func (a AttemptPostgreSQL) GetByID(ctx context.Context, id uint) (*models.UserQuizAttempt, error) {
	var attempt models.UserQuizAttempt
	if err := a.db.WithContext(ctx).First(&attempt, id).Error; err != nil {
		return nil, err
	}

	return &attempt, nil
}

func (a AttemptPostgreSQL) GetActive(ctx context.Context, userID string, quizID uint) (*models.UserQuizAttempt, error) {
	var attempt models.UserQuizAttempt
	if err := a.db.WithContext(ctx).
		Where("user_id = ? AND quiz_id = ? AND status = ?", userID, quizID, models.AttemptInProgress).
		First(&attempt).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &attempt, nil
}

func (a AttemptPostgreSQL) Complete(ctx context.Context, id uint, score, totalQuestions int, endTime time.Time) (bool, error) {
	result := a.db.WithContext(ctx).Model(&models.UserQuizAttempt{}).
		Where("id = ? AND status = ?", id, models.AttemptInProgress).
		Updates(map[string]interface{}{
			"score":           score,
			"total_questions": totalQuestions,
			"end_time":        endTime,
			"status":          models.AttemptCompleted,
		})
	if result.Error != nil {
		return false, result.Error
	}

	return result.RowsAffected > 0, nil
}

func (a AttemptPostgreSQL) Expire(ctx context.Context, id uint, endTime time.Time) (bool, error) {
	result := a.db.WithContext(ctx).Model(&models.UserQuizAttempt{}).
		Where("id = ? AND status = ?", id, models.AttemptInProgress).
		Updates(map[string]interface{}{
			"end_time": endTime,
			"status":   models.AttemptExpired,
		})
	if result.Error != nil {
		return false, result.Error
	}

	return result.RowsAffected > 0, nil
}

func (a AttemptPostgreSQL) List(ctx context.Context, filters repositories.AttemptFilters) ([]*models.UserQuizAttempt, int64, error) {
	var attempts []*models.UserQuizAttempt
	var total int64

	// apply filter first
	query := a.db.WithContext(ctx).Model(&models.UserQuizAttempt{})
	query = applyAttemptFilters(query, filters)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	// then apply pagination and sorting
	query = applyPaginationAndSort(query, filters.SortBy, filters.SortOrder, filters.Limit, filters.Offset)

	if err := query.Preload("Quiz").Find(&attempts).Error; err != nil {
		return nil, 0, err
	}

	return attempts, total, nil
}

func (a AttemptPostgreSQL) ListByUserAndQuiz(ctx context.Context, userID string, quizID uint) ([]*models.UserQuizAttempt, error) {
	var attempts []*models.UserQuizAttempt
	if err := a.db.WithContext(ctx).
		Where("user_id = ? AND quiz_id = ?", userID, quizID).
		Order("start_time DESC").
		Order("id DESC").
		Find(&attempts).Error; err != nil {
		return nil, err
	}

	return attempts, nil
}

// ListStale returns in_progress attempts whose quiz can no longer be taken at now.
func (a AttemptPostgreSQL) ListStale(ctx context.Context, now time.Time, limit int) ([]*models.UserQuizAttempt, error) {
	var attempts []*models.UserQuizAttempt

	query := a.db.WithContext(ctx).
		Model(&models.UserQuizAttempt{}).
		Select("user_quiz_attempts.*").
		Joins("JOIN quizzes ON quizzes.id = user_quiz_attempts.quiz_id").
		Where("user_quiz_attempts.status = ?", models.AttemptInProgress).
		Where("quizzes.is_active = ? OR quizzes.end_date < ? OR quizzes.start_date > ?", false, now, now).
		Order("user_quiz_attempts.id")

	if limit > 0 {
		query = query.Limit(limit)
	}

	if err := query.Find(&attempts).Error; err != nil {
		return nil, err
	}

	return attempts, nil
}

func (a AttemptPostgreSQL) CountCompleted(ctx context.Context, userID string, quizID uint) (int, error) {
	var count int64
	if err := a.db.WithContext(ctx).
		Model(&models.UserQuizAttempt{}).
		Where("user_id = ? AND quiz_id = ? AND status = ?", userID, quizID, models.AttemptCompleted).
		Count(&count).Error; err != nil {
		return 0, err
	}

	return int(count), nil
}
