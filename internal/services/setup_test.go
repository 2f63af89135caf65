package services

import (
	"context"
	"testing"
	"time"

	"github.com/SAP-F-2025/quiz-attempt-service/internal/events"
	"github.com/SAP-F-2025/quiz-attempt-service/internal/models"
	"github.com/SAP-F-2025/quiz-attempt-service/internal/repositories"
	"github.com/SAP-F-2025/quiz-attempt-service/internal/repositories/postgres"
	"github.com/SAP-F-2025/quiz-attempt-service/internal/utils"
	"github.com/SAP-F-2025/quiz-attempt-service/internal/validator"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// T of the lifecycle scenario: quizzes open at quizOpen
var quizOpen = time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)

type testClock struct {
	now time.Time
}

func (c *testClock) Now() time.Time { return c.now }

func (c *testClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

type testEnv struct {
	db        *gorm.DB
	repo      *postgres.Repository
	publisher *events.MockEventPublisher
	clock     *testClock
	validator *validator.Validator
	svc       AttemptService
}

func newTestEnv(t *testing.T, configure ...func(*AttemptOptions)) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, postgres.Migrate(context.Background(), db))

	env := &testEnv{
		db:        db,
		repo:      postgres.NewRepository(db),
		publisher: events.NewMockEventPublisher(utils.NewDiscardLogger()),
		clock:     &testClock{now: quizOpen.Add(time.Hour)},
		validator: validator.New(),
	}

	opts := DefaultAttemptOptions()
	opts.Now = env.clock.Now
	for _, fn := range configure {
		fn(&opts)
	}

	env.svc = NewAttemptService(env.repo, env.publisher, env.validator, utils.NewDiscardLogger(), opts)
	return env
}

// seedQuiz creates a quiz open for a week with the given correct answers, one question each.
// Every question offers four options.
func (e *testEnv) seedQuiz(t *testing.T, duration time.Duration, correct ...int) *models.Quiz {
	t.Helper()
	return e.seedQuizWindow(t, quizOpen, quizOpen.Add(7*24*time.Hour), duration, true, correct...)
}

func (e *testEnv) seedQuizWindow(t *testing.T, start, end time.Time, duration time.Duration, active bool, correct ...int) *models.Quiz {
	t.Helper()

	quiz := &models.Quiz{
		Title:           "Concurrency in Go",
		ChapterID:       7,
		StartDate:       start,
		EndDate:         end,
		DurationMinutes: int(duration / time.Minute),
		IsActive:        active,
	}
	require.NoError(t, e.db.Create(quiz).Error)

	third, fourth := "select", "sync.Mutex"
	for i, answer := range correct {
		question := models.Question{
			QuizID:        quiz.ID,
			Position:      i + 1,
			Title:         "Question",
			Content:       "Which primitive fits?",
			Option1:       "channel",
			Option2:       "goroutine",
			Option3:       &third,
			Option4:       &fourth,
			CorrectAnswer: answer,
		}
		require.NoError(t, e.db.Create(&question).Error)
		quiz.Questions = append(quiz.Questions, question)
	}
	return quiz
}

func (e *testEnv) countAttempts(t *testing.T, userID string, quizID uint) int64 {
	t.Helper()
	var count int64
	require.NoError(t, e.db.Model(&models.UserQuizAttempt{}).
		Where("user_id = ? AND quiz_id = ?", userID, quizID).
		Count(&count).Error)
	return count
}

func (e *testEnv) answer(t *testing.T, userID string, attemptID, questionID uint, option int) *SubmitAnswerResponse {
	t.Helper()
	resp, err := e.svc.SubmitAnswer(context.Background(), userID, attemptID, &SubmitAnswerRequest{
		QuestionID:     questionID,
		SelectedOption: option,
	})
	require.NoError(t, err)
	return resp
}

// racingAttempts lets a competing start win the insert right before ours
type racingAttempts struct {
	repositories.AttemptRepository
	winnerID uint
}

func (r *racingAttempts) Create(ctx context.Context, attempt *models.UserQuizAttempt) error {
	if r.winnerID == 0 {
		winner := *attempt
		if err := r.AttemptRepository.Create(ctx, &winner); err != nil {
			return err
		}
		r.winnerID = winner.ID
	}
	return r.AttemptRepository.Create(ctx, attempt)
}

type racingRepository struct {
	*postgres.Repository
	attempts *racingAttempts
}

func (r *racingRepository) Attempt() repositories.AttemptRepository { return r.attempts }

// MockEventPublisher is a testify mock of events.EventPublisher
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(ctx context.Context, event *events.Event) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockEventPublisher) Close() error {
	args := m.Called()
	return args.Error(0)
}

// MockQuizRepository is a mock implementation of QuizRepository
type MockQuizRepository struct {
	mock.Mock
}

func (m *MockQuizRepository) GetByID(ctx context.Context, id uint) (*models.Quiz, error) {
	args := m.Called(ctx, id)
	quiz, _ := args.Get(0).(*models.Quiz)
	return quiz, args.Error(1)
}

func (m *MockQuizRepository) GetByIDWithQuestions(ctx context.Context, id uint) (*models.Quiz, error) {
	args := m.Called(ctx, id)
	quiz, _ := args.Get(0).(*models.Quiz)
	return quiz, args.Error(1)
}

func (m *MockQuizRepository) GetQuestion(ctx context.Context, questionID uint) (*models.Question, error) {
	args := m.Called(ctx, questionID)
	question, _ := args.Get(0).(*models.Question)
	return question, args.Error(1)
}

func (m *MockQuizRepository) CountQuestions(ctx context.Context, quizID uint) (int, error) {
	args := m.Called(ctx, quizID)
	return args.Int(0), args.Error(1)
}

func (m *MockQuizRepository) ListAvailable(ctx context.Context, now time.Time) ([]*repositories.QuizAvailability, error) {
	args := m.Called(ctx, now)
	available, _ := args.Get(0).([]*repositories.QuizAvailability)
	return available, args.Error(1)
}

// MockAttemptRepository is a mock implementation of AttemptRepository
type MockAttemptRepository struct {
	mock.Mock
}

func (m *MockAttemptRepository) Create(ctx context.Context, attempt *models.UserQuizAttempt) error {
	args := m.Called(ctx, attempt)
	return args.Error(0)
}

func (m *MockAttemptRepository) GetByID(ctx context.Context, id uint) (*models.UserQuizAttempt, error) {
	args := m.Called(ctx, id)
	attempt, _ := args.Get(0).(*models.UserQuizAttempt)
	return attempt, args.Error(1)
}

func (m *MockAttemptRepository) GetActive(ctx context.Context, userID string, quizID uint) (*models.UserQuizAttempt, error) {
	args := m.Called(ctx, userID, quizID)
	attempt, _ := args.Get(0).(*models.UserQuizAttempt)
	return attempt, args.Error(1)
}

func (m *MockAttemptRepository) Complete(ctx context.Context, id uint, score, totalQuestions int, endTime time.Time) (bool, error) {
	args := m.Called(ctx, id, score, totalQuestions, endTime)
	return args.Bool(0), args.Error(1)
}

func (m *MockAttemptRepository) Expire(ctx context.Context, id uint, endTime time.Time) (bool, error) {
	args := m.Called(ctx, id, endTime)
	return args.Bool(0), args.Error(1)
}

func (m *MockAttemptRepository) List(ctx context.Context, filters repositories.AttemptFilters) ([]*models.UserQuizAttempt, int64, error) {
	args := m.Called(ctx, filters)
	attempts, _ := args.Get(0).([]*models.UserQuizAttempt)
	return attempts, args.Get(1).(int64), args.Error(2)
}

func (m *MockAttemptRepository) ListByUserAndQuiz(ctx context.Context, userID string, quizID uint) ([]*models.UserQuizAttempt, error) {
	args := m.Called(ctx, userID, quizID)
	attempts, _ := args.Get(0).([]*models.UserQuizAttempt)
	return attempts, args.Error(1)
}

func (m *MockAttemptRepository) ListStale(ctx context.Context, now time.Time, limit int) ([]*models.UserQuizAttempt, error) {
	args := m.Called(ctx, now, limit)
	attempts, _ := args.Get(0).([]*models.UserQuizAttempt)
	return attempts, args.Error(1)
}

func (m *MockAttemptRepository) CountCompleted(ctx context.Context, userID string, quizID uint) (int, error) {
	args := m.Called(ctx, userID, quizID)
	return args.Int(0), args.Error(1)
}

// mockRepository wires the mocks into a repositories.Repository
type mockRepository struct {
	quiz    *MockQuizRepository
	attempt *MockAttemptRepository
}

func (r *mockRepository) Quiz() repositories.QuizRepository       { return r.quiz }
func (r *mockRepository) Attempt() repositories.AttemptRepository { return r.attempt }
func (r *mockRepository) Answer() repositories.AnswerRepository   { return nil }
func (r *mockRepository) Score() repositories.ScoreRepository     { return nil }

func (r *mockRepository) WithTransaction(ctx context.Context, fn func(tx repositories.Repository) error) error {
	return fn(r)
}
