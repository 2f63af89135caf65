package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/SAP-F-2025/quiz-attempt-service/internal/events"
	"github.com/SAP-F-2025/quiz-attempt-service/internal/models"
	"github.com/SAP-F-2025/quiz-attempt-service/internal/repositories"
	"github.com/SAP-F-2025/quiz-attempt-service/internal/validator"
)

// AttemptOptions tunes the lifecycle engine
type AttemptOptions struct {
	// AnswerFeedback returns is_correct and correct_answer from SubmitAnswer
	AnswerFeedback       bool
	TotalQuestionsPolicy TotalQuestionsPolicy
	// Now overrides the clock, mostly for tests
	Now func() time.Time
}

// DefaultAttemptOptions returns feedback on and the snapshot question count policy
func DefaultAttemptOptions() AttemptOptions {
	return AttemptOptions{
		AnswerFeedback:       true,
		TotalQuestionsPolicy: TotalQuestionsSnapshot,
	}
}

type attemptService struct {
	repo      repositories.Repository
	publisher events.EventPublisher
	validator *validator.Validator
	logger    *slog.Logger
	log       *ServiceLogger
	opts      AttemptOptions
}

func NewAttemptService(repo repositories.Repository, publisher events.EventPublisher, validator *validator.Validator, logger *slog.Logger, opts AttemptOptions) AttemptService {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.TotalQuestionsPolicy == "" {
		opts.TotalQuestionsPolicy = TotalQuestionsSnapshot
	}

	return &attemptService{
		repo:      repo,
		publisher: publisher,
		validator: validator,
		logger:    logger,
		log:       NewServiceLogger(logger, LogConfig{Service: "quiz-attempt-service", Component: "attempts"}),
		opts:      opts,
	}
}

// ===== CORE ATTEMPT OPERATIONS =====

func (s *attemptService) Start(ctx context.Context, userID string, quizID uint) (resp *StartAttemptResponse, err error) {
	op := s.log.WithOperation(ctx, "start_attempt", userID)
	defer func() { op.LogResult(quizID, "quiz", err) }()

	now := s.opts.Now()

	// The window and active flag are read from the store, never from the definition cache
	quiz, err := s.getQuiz(ctx, quizID, false)
	if err != nil {
		return nil, err
	}

	if err = quiz.Validate(); err != nil {
		s.logger.Warn("Refusing to start malformed quiz", "quiz_id", quizID, "error", err)
		return nil, ErrQuizUnavailable
	}
	if !quiz.IsAvailable(now) {
		return nil, ErrQuizUnavailable
	}

	active, err := s.repo.Attempt().GetActive(ctx, userID, quizID)
	if err != nil {
		return nil, fmt.Errorf("failed to get active attempt: %w", err)
	}
	if active != nil {
		s.logger.Info("Resuming existing attempt", "attempt_id", active.ID, "user_id", userID)
		return s.buildStartResponse(active, quiz, now, true), nil
	}

	totalQuestions, err := s.repo.Quiz().CountQuestions(ctx, quizID)
	if err != nil {
		return nil, fmt.Errorf("failed to count questions: %w", err)
	}

	attempt := &models.UserQuizAttempt{
		UserID:         userID,
		QuizID:         quizID,
		Status:         models.AttemptInProgress,
		StartTime:      now,
		TotalQuestions: totalQuestions,
	}

	if err = s.repo.Attempt().Create(ctx, attempt); err != nil {
		if !repositories.IsDuplicateError(err) {
			return nil, fmt.Errorf("failed to create attempt: %w", err)
		}

		// A concurrent start for the same pair won the insert
		winner, getErr := s.repo.Attempt().GetActive(ctx, userID, quizID)
		if getErr != nil {
			return nil, fmt.Errorf("failed to get active attempt: %w", getErr)
		}
		if winner == nil {
			return nil, fmt.Errorf("failed to create attempt: %w", err)
		}

		s.logger.Info("Concurrent start resolved as resume", "attempt_id", winner.ID, "user_id", userID)
		return s.buildStartResponse(winner, quiz, now, true), nil
	}

	resp = s.buildStartResponse(attempt, quiz, now, false)

	s.publish(ctx, events.NewAttemptStartedEvent(events.AttemptStartedEvent{
		AttemptID:      attempt.ID,
		QuizID:         quizID,
		UserID:         userID,
		StartedAt:      now,
		TimeRemaining:  resp.TimeRemaining,
		TotalQuestions: attempt.TotalQuestions,
	}))

	s.logger.Info("Quiz attempt started",
		"attempt_id", attempt.ID,
		"quiz_id", quizID,
		"user_id", userID)

	return resp, nil
}

func (s *attemptService) GetQuestion(ctx context.Context, userID string, attemptID uint, questionNumber int) (*QuestionResponse, error) {
	attempt, err := s.getOwnedAttempt(ctx, userID, attemptID, "read")
	if err != nil {
		return nil, err
	}

	quiz, err := s.getQuiz(ctx, attempt.QuizID, true)
	if err != nil {
		return nil, err
	}

	question, ok := quiz.QuestionAt(questionNumber)
	if !ok {
		return nil, ErrInvalidQuestionNumber
	}
	if err = s.checkQuestion(question); err != nil {
		return nil, err
	}

	return &QuestionResponse{
		AttemptID:      attempt.ID,
		QuestionNumber: questionNumber,
		TotalQuestions: attempt.TotalQuestions,
		Question:       question.View(),
	}, nil
}

func (s *attemptService) SubmitAnswer(ctx context.Context, userID string, attemptID uint, req *SubmitAnswerRequest) (resp *SubmitAnswerResponse, err error) {
	op := s.log.WithOperation(ctx, "submit_answer", userID)
	defer func() { op.LogResult(attemptID, "attempt", err) }()

	attempt, err := s.getOwnedAttempt(ctx, userID, attemptID, "answer")
	if err != nil {
		return nil, err
	}

	if err = s.validator.ValidateStruct(req); err != nil {
		return nil, err
	}

	question, err := s.repo.Quiz().GetQuestion(ctx, req.QuestionID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrQuestionNotFound
		}
		return nil, fmt.Errorf("failed to get question: %w", err)
	}
	if question.QuizID != attempt.QuizID {
		return nil, ErrQuestionNotFound
	}
	if err = s.checkQuestion(question); err != nil {
		return nil, err
	}

	if err = s.validator.Question().ValidateSelection(question, req.SelectedOption); err != nil {
		return nil, err
	}

	answer := &models.UserAnswer{
		UserQuizAttemptID: attempt.ID,
		QuestionID:        question.ID,
		SelectedOption:    req.SelectedOption,
		IsCorrect:         question.IsCorrect(req.SelectedOption),
		TimeSpent:         req.TimeSpent,
	}

	if err = s.repo.Answer().Upsert(ctx, answer); err != nil {
		return nil, fmt.Errorf("failed to save answer: %w", err)
	}

	s.publish(ctx, events.NewAnswerSubmittedEvent(events.AnswerSubmittedEvent{
		AttemptID:      attempt.ID,
		QuizID:         attempt.QuizID,
		UserID:         userID,
		QuestionID:     question.ID,
		SelectedOption: answer.SelectedOption,
		IsCorrect:      answer.IsCorrect,
		SubmittedAt:    s.opts.Now(),
	}))

	resp = &SubmitAnswerResponse{
		AttemptID:  attempt.ID,
		QuestionID: question.ID,
	}
	if s.opts.AnswerFeedback {
		isCorrect := answer.IsCorrect
		correctAnswer := question.CorrectAnswer
		resp.IsCorrect = &isCorrect
		resp.CorrectAnswer = &correctAnswer
	}

	return resp, nil
}

func (s *attemptService) CheckTime(ctx context.Context, userID string, attemptID uint) (*TimeCheckResponse, error) {
	attempt, err := s.getOwnedAttempt(ctx, userID, attemptID, "check time of")
	if err != nil {
		return nil, err
	}

	if attempt.Status.IsTerminal() {
		return terminalTimeCheck(attempt), nil
	}

	now := s.opts.Now()

	quiz, err := s.getQuiz(ctx, attempt.QuizID, false)
	if err != nil {
		return nil, err
	}

	// Expiry is decided on the exact duration; only the response is whole seconds
	if quiz.TimeRemaining(now) > 0 {
		return &TimeCheckResponse{
			AttemptID:     attempt.ID,
			TimeRemaining: quiz.TimeRemainingSeconds(now),
			Status:        attempt.Status,
		}, nil
	}

	expired, err := expireAttempt(ctx, s.repo, s.publisher, s.logger, attempt, now, expiryTriggerCheckTime)
	if err != nil {
		return nil, err
	}
	if !expired {
		// Completed or expired concurrently; report what is stored
		current, err := s.reloadAttempt(ctx, attempt.ID)
		if err != nil {
			return nil, err
		}
		return terminalTimeCheck(current), nil
	}

	return &TimeCheckResponse{
		AttemptID:     attempt.ID,
		TimeRemaining: 0,
		Status:        models.AttemptExpired,
		Message:       "Time is up, the attempt has expired",
	}, nil
}

func (s *attemptService) Complete(ctx context.Context, userID string, attemptID uint) (resp *AttemptResponse, err error) {
	op := s.log.WithOperation(ctx, "complete_attempt", userID)
	defer func() { op.LogResult(attemptID, "attempt", err) }()

	attempt, err := s.getOwnedAttempt(ctx, userID, attemptID, "complete")
	if err != nil {
		return nil, err
	}

	if attempt.Status.IsTerminal() {
		s.logger.Info("Attempt already finished, returning stored result",
			"attempt_id", attempt.ID,
			"status", attempt.Status)
		return buildAttemptResponse(attempt), nil
	}

	now := s.opts.Now()

	var result *completionResult
	err = s.repo.WithTransaction(ctx, func(tx repositories.Repository) error {
		var txErr error
		result, txErr = s.score(ctx, tx, attempt, now)
		return txErr
	})
	if err != nil {
		return nil, err
	}

	current, err := s.reloadAttempt(ctx, attempt.ID)
	if err != nil {
		return nil, err
	}

	if result == nil {
		s.logger.Info("Attempt finished concurrently, returning stored result",
			"attempt_id", attempt.ID,
			"status", current.Status)
		return buildAttemptResponse(current), nil
	}

	s.publish(ctx, events.NewAttemptCompletedEvent(events.AttemptCompletedEvent{
		AttemptID:      attempt.ID,
		QuizID:         attempt.QuizID,
		UserID:         userID,
		Score:          result.score.Score,
		TotalQuestions: result.score.TotalQuestions,
		Percentage:     result.score.Percentage,
		AttemptNumber:  result.score.AttemptNumber,
		CompletedAt:    now,
	}))

	s.logger.Info("Quiz attempt completed",
		"attempt_id", attempt.ID,
		"user_id", userID,
		"score", result.score.Score,
		"total_questions", result.score.TotalQuestions)

	return buildAttemptResponse(current), nil
}

// ===== HISTORY AND DISCOVERY =====

func (s *attemptService) ListAttempts(ctx context.Context, userID string, quizID uint) ([]*AttemptHistoryItem, error) {
	attempts, err := s.repo.Attempt().ListByUserAndQuiz(ctx, userID, quizID)
	if err != nil {
		return nil, fmt.Errorf("failed to list attempts: %w", err)
	}

	items := make([]*AttemptHistoryItem, 0, len(attempts))
	for _, a := range attempts {
		items = append(items, &AttemptHistoryItem{
			AttemptID:      a.ID,
			QuizID:         a.QuizID,
			StartTime:      a.StartTime,
			EndTime:        a.EndTime,
			Score:          scoreValue(a),
			TotalQuestions: a.TotalQuestions,
			Percentage:     a.Percentage(),
			Status:         a.Status,
		})
	}
	return items, nil
}

func (s *attemptService) ScoreSummary(ctx context.Context, userID string) ([]*ScoreSummaryItem, error) {
	completed := models.AttemptCompleted
	attempts, _, err := s.repo.Attempt().List(ctx, repositories.AttemptFilters{
		UserID:    userID,
		Status:    &completed,
		SortBy:    "end_time",
		SortOrder: "desc",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list completed attempts: %w", err)
	}

	items := make([]*ScoreSummaryItem, 0, len(attempts))
	for _, a := range attempts {
		items = append(items, &ScoreSummaryItem{
			AttemptID:      a.ID,
			QuizID:         a.QuizID,
			QuizTitle:      quizTitle(a),
			Date:           a.EndTime,
			Score:          scoreValue(a),
			TotalQuestions: a.TotalQuestions,
			Percentage:     a.Percentage(),
		})
	}
	return items, nil
}

func (s *attemptService) AvailableQuizzes(ctx context.Context) ([]*AvailableQuiz, error) {
	now := s.opts.Now()

	available, err := s.repo.Quiz().ListAvailable(ctx, now)
	if err != nil {
		return nil, fmt.Errorf("failed to list available quizzes: %w", err)
	}

	quizzes := make([]*AvailableQuiz, 0, len(available))
	for _, a := range available {
		quizzes = append(quizzes, &AvailableQuiz{
			ID:              a.Quiz.ID,
			Title:           a.Quiz.Title,
			ChapterID:       a.Quiz.ChapterID,
			StartDate:       a.Quiz.StartDate,
			EndDate:         a.Quiz.EndDate,
			DurationSeconds: int(a.Quiz.Duration() / time.Second),
			QuestionCount:   a.QuestionCount,
			TimeRemaining:   a.Quiz.TimeRemainingSeconds(now),
		})
	}
	return quizzes, nil
}
