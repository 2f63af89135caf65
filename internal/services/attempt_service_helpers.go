package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/SAP-F-2025/quiz-attempt-service/internal/events"
	"github.com/SAP-F-2025/quiz-attempt-service/internal/models"
	"github.com/SAP-F-2025/quiz-attempt-service/internal/repositories"
	"gorm.io/datatypes"
)

const (
	expiryTriggerCheckTime = "check_time"
	expiryTriggerSweep     = "sweep"

	unknownQuizTitle = "Unknown Quiz"
)

// completionResult is what a successful scoring transaction produced
type completionResult struct {
	score *models.Score
}

// ===== HELPER METHODS =====

func (s *attemptService) getQuiz(ctx context.Context, quizID uint, withQuestions bool) (*models.Quiz, error) {
	var (
		quiz *models.Quiz
		err  error
	)
	if withQuestions {
		quiz, err = s.repo.Quiz().GetByIDWithQuestions(ctx, quizID)
	} else {
		quiz, err = s.repo.Quiz().GetByID(ctx, quizID)
	}
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrQuizNotFound
		}
		return nil, fmt.Errorf("failed to get quiz: %w", err)
	}
	return quiz, nil
}

// checkQuestion rejects a question definition that cannot be answered or scored
func (s *attemptService) checkQuestion(question *models.Question) error {
	if err := s.validator.Question().ValidateQuestion(question); err != nil {
		s.logger.Error("Malformed question definition", "question_id", question.ID, "quiz_id", question.QuizID, "error", err)
		return fmt.Errorf("invalid question definition: %w", err)
	}
	return nil
}

// getOwnedAttempt loads the attempt and rejects callers that do not own it
func (s *attemptService) getOwnedAttempt(ctx context.Context, userID string, attemptID uint, action string) (*models.UserQuizAttempt, error) {
	attempt, err := s.reloadAttempt(ctx, attemptID)
	if err != nil {
		return nil, err
	}

	if !attempt.IsOwnedBy(userID) {
		return nil, NewPermissionError(userID, attemptID, "attempt", action, "not owned by user")
	}

	return attempt, nil
}

func (s *attemptService) reloadAttempt(ctx context.Context, attemptID uint) (*models.UserQuizAttempt, error) {
	attempt, err := s.repo.Attempt().GetByID(ctx, attemptID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrAttemptNotFound
		}
		return nil, fmt.Errorf("failed to get attempt: %w", err)
	}
	return attempt, nil
}

// score runs inside the completion transaction. It returns nil when another
// request finished the attempt first.
func (s *attemptService) score(ctx context.Context, tx repositories.Repository, attempt *models.UserQuizAttempt, now time.Time) (*completionResult, error) {
	tally, err := tx.Answer().Tally(ctx, attempt.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to count answers: %w", err)
	}

	total := s.resolveTotalQuestions(ctx, tx, attempt, tally)

	completed, err := tx.Attempt().Complete(ctx, attempt.ID, tally.Correct, total, now)
	if err != nil {
		return nil, fmt.Errorf("failed to complete attempt: %w", err)
	}
	if !completed {
		return nil, nil
	}

	answers, err := tx.Answer().ListByAttempt(ctx, attempt.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list answers: %w", err)
	}

	details, err := detailedResults(answers)
	if err != nil {
		return nil, err
	}

	attemptNumber, err := tx.Attempt().CountCompleted(ctx, attempt.UserID, attempt.QuizID)
	if err != nil {
		return nil, fmt.Errorf("failed to count completed attempts: %w", err)
	}

	record := &models.Score{
		AttemptID:       attempt.ID,
		QuizID:          attempt.QuizID,
		UserID:          attempt.UserID,
		Score:           tally.Correct,
		TotalQuestions:  total,
		Percentage:      models.Percentage(tally.Correct, total),
		TimeTaken:       int(now.Sub(attempt.StartTime) / time.Second),
		AttemptNumber:   attemptNumber,
		DetailedResults: details,
	}
	if err := tx.Score().Create(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to save score: %w", err)
	}

	return &completionResult{score: record}, nil
}

// resolveTotalQuestions applies the configured question count policy
func (s *attemptService) resolveTotalQuestions(ctx context.Context, tx repositories.Repository, attempt *models.UserQuizAttempt, tally *repositories.AnswerTally) int {
	if s.opts.TotalQuestionsPolicy != TotalQuestionsLive {
		return attempt.TotalQuestions
	}

	count, err := tx.Quiz().CountQuestions(ctx, attempt.QuizID)
	if err != nil || count == 0 {
		s.logger.Warn("Could not resolve live question count, scoring against answered questions",
			"attempt_id", attempt.ID,
			"quiz_id", attempt.QuizID,
			"error", err)
		return tally.Answered
	}
	return count
}

func detailedResults(answers []*models.UserAnswer) (datatypes.JSON, error) {
	results := make([]models.AnswerResult, 0, len(answers))
	for _, a := range answers {
		results = append(results, models.AnswerResult{
			QuestionID:     a.QuestionID,
			SelectedOption: a.SelectedOption,
			IsCorrect:      a.IsCorrect,
		})
	}

	raw, err := json.Marshal(results)
	if err != nil {
		return nil, fmt.Errorf("failed to encode detailed results: %w", err)
	}
	return datatypes.JSON(raw), nil
}

// expireAttempt moves an in_progress attempt to expired and publishes the event.
// It reports false when the attempt had already left in_progress.
func expireAttempt(ctx context.Context, repo repositories.Repository, publisher events.EventPublisher, logger *slog.Logger, attempt *models.UserQuizAttempt, now time.Time, trigger string) (bool, error) {
	expired, err := repo.Attempt().Expire(ctx, attempt.ID, now)
	if err != nil {
		return false, fmt.Errorf("failed to expire attempt: %w", err)
	}
	if !expired {
		return false, nil
	}

	logger.Info("Quiz attempt expired",
		"attempt_id", attempt.ID,
		"user_id", attempt.UserID,
		"trigger", trigger)

	publishEvent(ctx, publisher, logger, events.NewAttemptExpiredEvent(events.AttemptExpiredEvent{
		AttemptID: attempt.ID,
		QuizID:    attempt.QuizID,
		UserID:    attempt.UserID,
		ExpiredAt: now,
		Trigger:   trigger,
	}))

	return true, nil
}

func (s *attemptService) publish(ctx context.Context, event *events.Event) {
	publishEvent(ctx, s.publisher, s.logger, event)
}

// publishEvent never fails the caller; lifecycle state is already committed
func publishEvent(ctx context.Context, publisher events.EventPublisher, logger *slog.Logger, event *events.Event) {
	if publisher == nil {
		return
	}
	if err := publisher.Publish(ctx, event); err != nil {
		logger.Error("Failed to publish attempt event",
			"event_type", event.Type,
			"event_id", event.ID,
			"error", err)
	}
}

// ===== RESPONSE BUILDERS =====

func (s *attemptService) buildStartResponse(attempt *models.UserQuizAttempt, quiz *models.Quiz, now time.Time, resumed bool) *StartAttemptResponse {
	return &StartAttemptResponse{
		AttemptID:      attempt.ID,
		QuizID:         attempt.QuizID,
		TimeRemaining:  quiz.TimeRemainingSeconds(now),
		TotalQuestions: attempt.TotalQuestions,
		StartTime:      attempt.StartTime,
		Resumed:        resumed,
	}
}

func buildAttemptResponse(attempt *models.UserQuizAttempt) *AttemptResponse {
	return &AttemptResponse{
		ID:             attempt.ID,
		UserID:         attempt.UserID,
		QuizID:         attempt.QuizID,
		TotalQuestions: attempt.TotalQuestions,
		Score:          attempt.Score,
		Status:         attempt.Status,
		StartTime:      attempt.StartTime,
		EndTime:        attempt.EndTime,
	}
}

func terminalTimeCheck(attempt *models.UserQuizAttempt) *TimeCheckResponse {
	message := "Attempt already completed"
	if attempt.Status == models.AttemptExpired {
		message = "Time is up, the attempt has expired"
	}
	return &TimeCheckResponse{
		AttemptID:     attempt.ID,
		TimeRemaining: 0,
		Status:        attempt.Status,
		Message:       message,
	}
}

func scoreValue(attempt *models.UserQuizAttempt) int {
	if attempt.Score == nil {
		return 0
	}
	return *attempt.Score
}

func quizTitle(attempt *models.UserQuizAttempt) string {
	if attempt.Quiz == nil {
		return unknownQuizTitle
	}
	return attempt.Quiz.Title
}
