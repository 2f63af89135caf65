package postgres

import (
	"context"
	"fmt"

	"github.com/SAP-F-2025/quiz-attempt-service/internal/models"
	"gorm.io/gorm"
)

// activeAttemptIndex makes (user_id, quiz_id) unique among in_progress attempts only,
// so retakes keep their history while a second concurrent start fails on insert.
const activeAttemptIndex = `CREATE UNIQUE INDEX IF NOT EXISTS idx_attempt_active_user_quiz
	ON user_quiz_attempts (user_id, quiz_id)
	WHERE status = 'in_progress'`

// Migrate creates or updates the schema used by the service.
func Migrate(ctx context.Context, db *gorm.DB) error {
	if err := db.WithContext(ctx).AutoMigrate(
		&models.Quiz{},
		&models.Question{},
		&models.UserQuizAttempt{},
		&models.UserAnswer{},
		&models.Score{},
	); err != nil {
		return fmt.Errorf("failed to auto-migrate: %w", err)
	}

	if err := db.WithContext(ctx).Exec(activeAttemptIndex).Error; err != nil {
		return fmt.Errorf("failed to create active attempt index: %w", err)
	}

	return nil
}
