package repositories

import (
	"time"

	"github.com/SAP-F-2025/quiz-attempt-service/internal/models"
)

// ===== SHARED FILTER STRUCTS =====

type AttemptFilters struct {
	UserID    string                `json:"user_id"`
	QuizID    *uint                 `json:"quiz_id"`
	Status    *models.AttemptStatus `json:"status"`
	DateFrom  *time.Time            `json:"date_from"`
	DateTo    *time.Time            `json:"date_to"`
	Limit     int                   `json:"limit"`
	Offset    int                   `json:"offset"`
	SortBy    string                `json:"sort_by"`    // "start_time", "end_time", "score"
	SortOrder string                `json:"sort_order"` // "asc", "desc"
}

// ===== SHARED HELPER STRUCTS =====

// QuizAvailability is a quiz with its current question count.
type QuizAvailability struct {
	Quiz          *models.Quiz `json:"quiz"`
	QuestionCount int          `json:"question_count"`
}

// AnswerTally is the aggregate used for scoring.
type AnswerTally struct {
	Answered int `json:"answered"`
	Correct  int `json:"correct"`
}
