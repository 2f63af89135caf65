package models

import (
	"time"

	"gorm.io/datatypes"
)

// Score is the immutable result written once per completed attempt.
type Score struct {
	ID              uint           `json:"id" gorm:"primaryKey"`
	AttemptID       uint           `json:"attempt_id" gorm:"not null;uniqueIndex"`
	QuizID          uint           `json:"quiz_id" gorm:"not null;index"`
	UserID          string         `json:"user_id" gorm:"not null;size:255;index"`
	Score           int            `json:"score" gorm:"not null"`
	TotalQuestions  int            `json:"total_questions" gorm:"not null"`
	Percentage      float64        `json:"percentage" gorm:"not null"`
	TimeTaken       int            `json:"time_taken"` // seconds
	AttemptNumber   int            `json:"attempt_number" gorm:"not null;default:1"`
	DetailedResults datatypes.JSON `json:"detailed_results" gorm:"type:jsonb"`

	CreatedAt time.Time `json:"created_at"`
}

func (Score) TableName() string {
	return "scores"
}

// AnswerResult is one entry of Score.DetailedResults.
type AnswerResult struct {
	QuestionID     uint `json:"question_id"`
	SelectedOption int  `json:"selected_option"`
	IsCorrect      bool `json:"is_correct"`
}
