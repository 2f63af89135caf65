package postgres

import (
	"context"
	"time"

	"github.com/SAP-F-2025/quiz-attempt-service/internal/models"
	"github.com/SAP-F-2025/quiz-attempt-service/internal/repositories"
	"gorm.io/gorm"
)

type QuizPostgreSQL struct {
	db *gorm.DB
}

func NewQuizPostgreSQL(db *gorm.DB) repositories.QuizRepository {
	return &QuizPostgreSQL{db: db}
}

func (q QuizPostgreSQL) GetByID(ctx context.Context, id uint) (*models.Quiz, error) {
	var quiz models.Quiz
	if err := q.db.WithContext(ctx).First(&quiz, id).Error; err != nil {
		return nil, err
	}

	return &quiz, nil
}

func (q QuizPostgreSQL) GetByIDWithQuestions(ctx context.Context, id uint) (*models.Quiz, error) {
	var quiz models.Quiz
	if err := q.db.WithContext(ctx).
		Preload("Questions", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC").Order("id ASC")
		}).
		First(&quiz, id).Error; err != nil {
		return nil, err
	}

	return &quiz, nil
}

func (q QuizPostgreSQL) GetQuestion(ctx context.Context, questionID uint) (*models.Question, error) {
	var question models.Question
	if err := q.db.WithContext(ctx).First(&question, questionID).Error; err != nil {
		return nil, err
	}

	return &question, nil
}

func (q QuizPostgreSQL) CountQuestions(ctx context.Context, quizID uint) (int, error) {
	var count int64
	if err := q.db.WithContext(ctx).
		Model(&models.Question{}).
		Where("quiz_id = ?", quizID).
		Count(&count).Error; err != nil {
		return 0, err
	}

	return int(count), nil
}

func (q QuizPostgreSQL) ListAvailable(ctx context.Context, now time.Time) ([]*repositories.QuizAvailability, error) {
	var quizzes []*models.Quiz
	if err := q.db.WithContext(ctx).
		Where("is_active = ? AND start_date <= ? AND end_date >= ?", true, now, now).
		Order("end_date ASC").
		Find(&quizzes).Error; err != nil {
		return nil, err
	}

	if len(quizzes) == 0 {
		return []*repositories.QuizAvailability{}, nil
	}

	ids := make([]uint, 0, len(quizzes))
	for _, quiz := range quizzes {
		ids = append(ids, quiz.ID)
	}

	var counts []struct {
		QuizID uint
		Total  int64
	}
	if err := q.db.WithContext(ctx).
		Model(&models.Question{}).
		Select("quiz_id, COUNT(*) AS total").
		Where("quiz_id IN ?", ids).
		Group("quiz_id").
		Scan(&counts).Error; err != nil {
		return nil, err
	}

	countByQuiz := make(map[uint]int, len(counts))
	for _, c := range counts {
		countByQuiz[c.QuizID] = int(c.Total)
	}

	result := make([]*repositories.QuizAvailability, 0, len(quizzes))
	for _, quiz := range quizzes {
		result = append(result, &repositories.QuizAvailability{
			Quiz:          quiz,
			QuestionCount: countByQuiz[quiz.ID],
		})
	}

	return result, nil
}
