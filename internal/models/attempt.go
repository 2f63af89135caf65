package models

import (
	"math"
	"time"
)

type AttemptStatus string

const (
	AttemptInProgress AttemptStatus = "in_progress"
	AttemptCompleted  AttemptStatus = "completed"
	AttemptExpired    AttemptStatus = "expired"
)

func (s AttemptStatus) IsValid() bool {
	switch s {
	case AttemptInProgress, AttemptCompleted, AttemptExpired:
		return true
	}
	return false
}

// IsTerminal reports whether no further transition is allowed out of the status.
func (s AttemptStatus) IsTerminal() bool {
	return s == AttemptCompleted || s == AttemptExpired
}

// UserQuizAttempt is one user's run through a quiz. At most one in_progress attempt
// exists per (user_id, quiz_id); see postgres.activeAttemptIndex.
type UserQuizAttempt struct {
	ID             uint          `json:"id" gorm:"primaryKey"`
	UserID         string        `json:"user_id" gorm:"not null;size:255;index:idx_attempt_user_quiz"`
	QuizID         uint          `json:"quiz_id" gorm:"not null;index:idx_attempt_user_quiz"`
	Status         AttemptStatus `json:"status" gorm:"not null;size:20;index"`
	StartTime      time.Time     `json:"start_time" gorm:"not null"`
	EndTime        *time.Time    `json:"end_time"`
	TotalQuestions int           `json:"total_questions" gorm:"not null"`
	Score          *int          `json:"score"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Quiz    *Quiz        `json:"-" gorm:"foreignKey:QuizID;constraint:OnDelete:CASCADE"`
	Answers []UserAnswer `json:"-" gorm:"foreignKey:UserQuizAttemptID;constraint:OnDelete:CASCADE"`
}

func (UserQuizAttempt) TableName() string {
	return "user_quiz_attempts"
}

func (a *UserQuizAttempt) IsOwnedBy(userID string) bool {
	return a.UserID == userID
}

// Percentage is score over total_questions rounded to two decimals, 0 when either is missing.
func (a *UserQuizAttempt) Percentage() float64 {
	if a.Score == nil {
		return 0
	}
	return Percentage(*a.Score, a.TotalQuestions)
}

// Percentage rounds score/total*100 to two decimals and guards against a zero total.
func Percentage(score, total int) float64 {
	if total <= 0 {
		return 0
	}
	return math.Round(float64(score)/float64(total)*10000) / 100
}

// UserAnswer is the single answer record for (user_quiz_attempt_id, question_id).
type UserAnswer struct {
	ID                uint `json:"id" gorm:"primaryKey"`
	UserQuizAttemptID uint `json:"user_quiz_attempt_id" gorm:"not null;uniqueIndex:idx_answer_attempt_question"`
	QuestionID        uint `json:"question_id" gorm:"not null;uniqueIndex:idx_answer_attempt_question"`
	SelectedOption    int  `json:"selected_option" gorm:"not null"`
	IsCorrect         bool `json:"is_correct" gorm:"not null"`
	TimeSpent         *int `json:"time_spent"` // seconds

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (UserAnswer) TableName() string {
	return "user_answers"
}
