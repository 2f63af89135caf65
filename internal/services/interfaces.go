package services

import (
	"context"
	"io"
	"time"

	"github.com/SAP-F-2025/quiz-attempt-service/internal/models"
)

// AttemptService is the attempt lifecycle engine
type AttemptService interface {
	// Core lifecycle
	Start(ctx context.Context, userID string, quizID uint) (*StartAttemptResponse, error)
	GetQuestion(ctx context.Context, userID string, attemptID uint, questionNumber int) (*QuestionResponse, error)
	SubmitAnswer(ctx context.Context, userID string, attemptID uint, req *SubmitAnswerRequest) (*SubmitAnswerResponse, error)
	CheckTime(ctx context.Context, userID string, attemptID uint) (*TimeCheckResponse, error)
	Complete(ctx context.Context, userID string, attemptID uint) (*AttemptResponse, error)

	// History and discovery
	ListAttempts(ctx context.Context, userID string, quizID uint) ([]*AttemptHistoryItem, error)
	ScoreSummary(ctx context.Context, userID string) ([]*ScoreSummaryItem, error)
	AvailableQuizzes(ctx context.Context) ([]*AvailableQuiz, error)
}

// SweepService expires attempts abandoned after their quiz window closed
type SweepService interface {
	SweepExpired(ctx context.Context, now time.Time) (int, error)
	Run(ctx context.Context, interval time.Duration)
}

// ExportService renders attempt history as a spreadsheet
type ExportService interface {
	ExportAttempts(ctx context.Context, caller models.Caller, req *ExportRequest, w io.Writer) error
}

// TotalQuestionsPolicy decides which question count a completed attempt is scored against
type TotalQuestionsPolicy string

const (
	// TotalQuestionsSnapshot keeps the count frozen when the attempt started
	TotalQuestionsSnapshot TotalQuestionsPolicy = "snapshot"
	// TotalQuestionsLive recounts the quiz at completion, falling back to the answered count
	TotalQuestionsLive TotalQuestionsPolicy = "live"
)

// ===== REQUEST DTOs =====

type SubmitAnswerRequest struct {
	QuestionID     uint `json:"question_id" validate:"required"`
	SelectedOption int  `json:"selected_option" validate:"required,option_index"`
	TimeSpent      *int `json:"time_spent" validate:"omitempty,min=0"`
}

type ExportRequest struct {
	UserID   string     `form:"user_id"`
	QuizID   *uint      `form:"quiz_id"`
	Status   string     `form:"status" validate:"omitempty,attempt_status"`
	DateFrom *time.Time `form:"date_from" time_format:"2006-01-02T15:04:05Z07:00"`
	DateTo   *time.Time `form:"date_to" time_format:"2006-01-02T15:04:05Z07:00"`
}

// ===== RESPONSE DTOs =====

type StartAttemptResponse struct {
	AttemptID      uint      `json:"attempt_id"`
	QuizID         uint      `json:"quiz_id"`
	TimeRemaining  int       `json:"time_remaining"` // seconds
	TotalQuestions int       `json:"total_questions"`
	StartTime      time.Time `json:"start_time"`
	Resumed        bool      `json:"resumed"`
}

type QuestionResponse struct {
	AttemptID      uint                `json:"attempt_id"`
	QuestionNumber int                 `json:"question_number"`
	TotalQuestions int                 `json:"total_questions"`
	Question       models.QuestionView `json:"question"`
}

// SubmitAnswerResponse omits the feedback fields when answer feedback is disabled
type SubmitAnswerResponse struct {
	AttemptID     uint  `json:"attempt_id"`
	QuestionID    uint  `json:"question_id"`
	IsCorrect     *bool `json:"is_correct,omitempty"`
	CorrectAnswer *int  `json:"correct_answer,omitempty"`
}

type TimeCheckResponse struct {
	AttemptID     uint                 `json:"attempt_id"`
	TimeRemaining int                  `json:"time_remaining"` // seconds
	Status        models.AttemptStatus `json:"status"`
	Message       string               `json:"message,omitempty"`
}

type AttemptResponse struct {
	ID             uint                 `json:"id"`
	UserID         string               `json:"user_id"`
	QuizID         uint                 `json:"quiz_id"`
	TotalQuestions int                  `json:"total_questions"`
	Score          *int                 `json:"score"`
	Status         models.AttemptStatus `json:"status"`
	StartTime      time.Time            `json:"start_time"`
	EndTime        *time.Time           `json:"end_time"`
}

type AttemptHistoryItem struct {
	AttemptID      uint                 `json:"attempt_id"`
	QuizID         uint                 `json:"quiz_id"`
	StartTime      time.Time            `json:"start_time"`
	EndTime        *time.Time           `json:"end_time"`
	Score          int                  `json:"score"`
	TotalQuestions int                  `json:"total_questions"`
	Percentage     float64              `json:"percentage"`
	Status         models.AttemptStatus `json:"status"`
}

type ScoreSummaryItem struct {
	AttemptID      uint       `json:"attempt_id"`
	QuizID         uint       `json:"quiz_id"`
	QuizTitle      string     `json:"quiz_title"`
	Date           *time.Time `json:"date"`
	Score          int        `json:"score"`
	TotalQuestions int        `json:"total_questions"`
	Percentage     float64    `json:"percentage"`
}

type AvailableQuiz struct {
	ID              uint      `json:"id"`
	Title           string    `json:"title"`
	ChapterID       uint      `json:"chapter_id"`
	StartDate       time.Time `json:"start_date"`
	EndDate         time.Time `json:"end_date"`
	DurationSeconds int       `json:"duration_seconds"`
	QuestionCount   int       `json:"question_count"`
	TimeRemaining   int       `json:"time_remaining"` // seconds an attempt started now would get
}
