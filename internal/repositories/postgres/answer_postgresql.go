package postgres

import (
	"context"

	"github.com/SAP-F-2025/quiz-attempt-service/internal/models"
	"github.com/SAP-F-2025/quiz-attempt-service/internal/repositories"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AnswerPostgreSQL struct {
	db *gorm.DB
}

func NewAnswerPostgreSQL(db *gorm.DB) repositories.AnswerRepository {
	return &AnswerPostgreSQL{db: db}
}

// Upsert relies on idx_answer_attempt_question. time_spent is only overwritten when supplied.
func (a AnswerPostgreSQL) Upsert(ctx context.Context, answer *models.UserAnswer) error {
	updates := []string{"selected_option", "is_correct", "updated_at"}
	if answer.TimeSpent != nil {
		updates = append(updates, "time_spent")
	}

	return a.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_quiz_attempt_id"}, {Name: "question_id"}},
		DoUpdates: clause.AssignmentColumns(updates),
	}).Create(answer).Error
}

func (a AnswerPostgreSQL) GetByAttemptAndQuestion(ctx context.Context, attemptID, questionID uint) (*models.UserAnswer, error) {
	var answer models.UserAnswer
	if err := a.db.WithContext(ctx).
		Where("user_quiz_attempt_id = ? AND question_id = ?", attemptID, questionID).
		First(&answer).Error; err != nil {
		return nil, err
	}

	return &answer, nil
}

func (a AnswerPostgreSQL) ListByAttempt(ctx context.Context, attemptID uint) ([]*models.UserAnswer, error) {
	var answers []*models.UserAnswer
	if err := a.db.WithContext(ctx).
		Where("user_quiz_attempt_id = ?", attemptID).
		Order("question_id").
		Find(&answers).Error; err != nil {
		return nil, err
	}

	return answers, nil
}

func (a AnswerPostgreSQL) Tally(ctx context.Context, attemptID uint) (*repositories.AnswerTally, error) {
	var row struct {
		Answered int64
		Correct  int64
	}

	if err := a.db.WithContext(ctx).
		Model(&models.UserAnswer{}).
		Select("COUNT(*) AS answered, COALESCE(SUM(CASE WHEN is_correct THEN 1 ELSE 0 END), 0) AS correct").
		Where("user_quiz_attempt_id = ?", attemptID).
		Scan(&row).Error; err != nil {
		return nil, err
	}

	return &repositories.AnswerTally{
		Answered: int(row.Answered),
		Correct:  int(row.Correct),
	}, nil
}
