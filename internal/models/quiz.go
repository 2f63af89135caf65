package models

import (
	"errors"
	"time"
)

// Quiz is the read model of a scheduled quiz. It is owned by the admin side and never
// mutated by the attempt lifecycle.
type Quiz struct {
	ID              uint      `json:"id" gorm:"primaryKey"`
	Title           string    `json:"title" gorm:"not null;size:200"`
	ChapterID       uint      `json:"chapter_id" gorm:"not null;index"`
	StartDate       time.Time `json:"start_date" gorm:"not null;index"`
	EndDate         time.Time `json:"end_date" gorm:"not null;index"`
	DurationMinutes int       `json:"duration_minutes" gorm:"not null"`
	IsActive        bool      `json:"is_active" gorm:"not null"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Questions []Question `json:"questions,omitempty" gorm:"foreignKey:QuizID;constraint:OnDelete:CASCADE"`
}

func (Quiz) TableName() string {
	return "quizzes"
}

var (
	ErrQuizWindowInvalid   = errors.New("quiz start_date must be before end_date")
	ErrQuizDurationInvalid = errors.New("quiz duration must be positive")
)

// Validate checks the structural invariants of a quiz definition.
func (q *Quiz) Validate() error {
	if !q.StartDate.Before(q.EndDate) {
		return ErrQuizWindowInvalid
	}
	if q.DurationMinutes <= 0 {
		return ErrQuizDurationInvalid
	}
	return nil
}

// Duration is the per-attempt time allowance.
func (q *Quiz) Duration() time.Duration {
	return time.Duration(q.DurationMinutes) * time.Minute
}

// IsAvailable reports whether the quiz can be taken at now. Both window bounds are inclusive.
func (q *Quiz) IsAvailable(now time.Time) bool {
	if !q.IsActive {
		return false
	}
	return !now.Before(q.StartDate) && !now.After(q.EndDate)
}

// TimeRemaining returns how long an attempt may still run at now. The per-attempt
// duration is truncated by the end of the quiz window.
func (q *Quiz) TimeRemaining(now time.Time) time.Duration {
	if !q.IsAvailable(now) {
		return 0
	}

	deadline := now.Add(q.Duration())
	if q.EndDate.Before(deadline) {
		deadline = q.EndDate
	}

	remaining := deadline.Sub(now)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// TimeRemainingSeconds is TimeRemaining in whole seconds.
func (q *Quiz) TimeRemainingSeconds(now time.Time) int {
	return int(q.TimeRemaining(now) / time.Second)
}

// QuestionAt returns the question at a 1-based position in the ordered list.
func (q *Quiz) QuestionAt(number int) (*Question, bool) {
	if number < 1 || number > len(q.Questions) {
		return nil, false
	}
	return &q.Questions[number-1], true
}
