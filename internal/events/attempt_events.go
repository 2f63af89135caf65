package events

import (
	"strconv"
	"time"

	"github.com/google/uuid"
)

// EventType represents the attempt lifecycle transitions that are published
type EventType string

const (
	EventAttemptStarted         EventType = "attempt.started"
	EventAttemptAnswerSubmitted EventType = "attempt.answer_submitted"
	EventAttemptExpired         EventType = "attempt.expired"
	EventAttemptCompleted       EventType = "attempt.completed"
)

const (
	eventSource  = "quiz-attempt-service"
	eventVersion = "1.0"
)

// Event is the envelope of every published event
type Event struct {
	ID        string                 `json:"id"`
	Type      EventType              `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	Source    string                 `json:"source"`
	Version   string                 `json:"version"`
	Data      interface{}            `json:"data"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

// PartitionKey keeps all events of one attempt on the same partition.
func (e *Event) PartitionKey() string {
	if e.Metadata != nil {
		if id, ok := e.Metadata["attempt_id"].(uint); ok {
			return strconv.FormatUint(uint64(id), 10)
		}
	}
	return e.ID
}

// Attempt event payloads

type AttemptStartedEvent struct {
	AttemptID      uint      `json:"attempt_id"`
	QuizID         uint      `json:"quiz_id"`
	UserID         string    `json:"user_id"`
	StartedAt      time.Time `json:"started_at"`
	TimeRemaining  int       `json:"time_remaining"` // seconds
	TotalQuestions int       `json:"total_questions"`
}

type AnswerSubmittedEvent struct {
	AttemptID      uint      `json:"attempt_id"`
	QuizID         uint      `json:"quiz_id"`
	UserID         string    `json:"user_id"`
	QuestionID     uint      `json:"question_id"`
	SelectedOption int       `json:"selected_option"`
	IsCorrect      bool      `json:"is_correct"`
	SubmittedAt    time.Time `json:"submitted_at"`
}

type AttemptExpiredEvent struct {
	AttemptID uint      `json:"attempt_id"`
	QuizID    uint      `json:"quiz_id"`
	UserID    string    `json:"user_id"`
	ExpiredAt time.Time `json:"expired_at"`
	Trigger   string    `json:"trigger"` // "check_time" or "sweep"
}

type AttemptCompletedEvent struct {
	AttemptID      uint      `json:"attempt_id"`
	QuizID         uint      `json:"quiz_id"`
	UserID         string    `json:"user_id"`
	Score          int       `json:"score"`
	TotalQuestions int       `json:"total_questions"`
	Percentage     float64   `json:"percentage"`
	AttemptNumber  int       `json:"attempt_number"`
	CompletedAt    time.Time `json:"completed_at"`
}

// Event factory functions

func NewAttemptStartedEvent(payload AttemptStartedEvent) *Event {
	return newEvent(EventAttemptStarted, payload.AttemptID, payload.StartedAt, payload)
}

func NewAnswerSubmittedEvent(payload AnswerSubmittedEvent) *Event {
	return newEvent(EventAttemptAnswerSubmitted, payload.AttemptID, payload.SubmittedAt, payload)
}

func NewAttemptExpiredEvent(payload AttemptExpiredEvent) *Event {
	return newEvent(EventAttemptExpired, payload.AttemptID, payload.ExpiredAt, payload)
}

func NewAttemptCompletedEvent(payload AttemptCompletedEvent) *Event {
	return newEvent(EventAttemptCompleted, payload.AttemptID, payload.CompletedAt, payload)
}

func newEvent(eventType EventType, attemptID uint, at time.Time, data interface{}) *Event {
	return &Event{
		ID:        GenerateEventID(),
		Type:      eventType,
		Timestamp: at,
		Source:    eventSource,
		Version:   eventVersion,
		Data:      data,
		Metadata: map[string]interface{}{
			"attempt_id": attemptID,
		},
	}
}

// GenerateEventID returns a random event id
func GenerateEventID() string {
	return uuid.NewString()
}
