package postgres

import (
	"context"

	"github.com/SAP-F-2025/quiz-attempt-service/internal/models"
	"github.com/SAP-F-2025/quiz-attempt-service/internal/repositories"
	"gorm.io/gorm"
)

type ScorePostgreSQL struct {
	db *gorm.DB
}

func NewScorePostgreSQL(db *gorm.DB) repositories.ScoreRepository {
	return &ScorePostgreSQL{db: db}
}

func (s ScorePostgreSQL) Create(ctx context.Context, score *models.Score) error {
	return s.db.WithContext(ctx).Create(score).Error
}

func (s ScorePostgreSQL) GetByAttempt(ctx context.Context, attemptID uint) (*models.Score, error) {
	var score models.Score
	if err := s.db.WithContext(ctx).Where("attempt_id = ?", attemptID).First(&score).Error; err != nil {
		return nil, err
	}

	return &score, nil
}
