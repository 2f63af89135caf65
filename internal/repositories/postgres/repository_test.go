package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/SAP-F-2025/quiz-attempt-service/internal/models"
	"github.com/SAP-F-2025/quiz-attempt-service/internal/repositories"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var baseTime = time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// a single connection keeps the in-memory database alive for the whole test
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, Migrate(context.Background(), db))
	return db
}

func seedQuiz(t *testing.T, db *gorm.DB, start, end time.Time, active bool, questions int) *models.Quiz {
	t.Helper()

	quiz := &models.Quiz{
		Title:           "Go basics",
		ChapterID:       1,
		StartDate:       start,
		EndDate:         end,
		DurationMinutes: 30,
		IsActive:        active,
	}
	require.NoError(t, db.Create(quiz).Error)

	// insert in reverse so ordering by position is actually exercised
	for i := questions; i >= 1; i-- {
		q := &models.Question{
			QuizID:        quiz.ID,
			Position:      i,
			Title:         "Question",
			Content:       "Pick one",
			Option1:       "a",
			Option2:       "b",
			CorrectAnswer: 1,
		}
		require.NoError(t, db.Create(q).Error)
	}
	return quiz
}

func newAttempt(userID string, quizID uint) *models.UserQuizAttempt {
	return &models.UserQuizAttempt{
		UserID:         userID,
		QuizID:         quizID,
		Status:         models.AttemptInProgress,
		StartTime:      baseTime.Add(time.Hour),
		TotalQuestions: 3,
	}
}

func TestAttemptRepository_ActiveIndex(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := NewRepository(db)
	quiz := seedQuiz(t, db, baseTime, baseTime.Add(7*24*time.Hour), true, 3)

	first := newAttempt("user-1", quiz.ID)
	require.NoError(t, repo.Attempt().Create(ctx, first))

	err := repo.Attempt().Create(ctx, newAttempt("user-1", quiz.ID))
	require.Error(t, err)
	assert.True(t, repositories.IsDuplicateError(err))

	// another user is unaffected
	require.NoError(t, repo.Attempt().Create(ctx, newAttempt("user-2", quiz.ID)))

	active, err := repo.Attempt().GetActive(ctx, "user-1", quiz.ID)
	require.NoError(t, err)
	require.NotNil(t, active)
	assert.Equal(t, first.ID, active.ID)

	// once the first attempt is terminal a retake is allowed
	changed, err := repo.Attempt().Complete(ctx, first.ID, 2, 3, baseTime.Add(2*time.Hour))
	require.NoError(t, err)
	assert.True(t, changed)
	require.NoError(t, repo.Attempt().Create(ctx, newAttempt("user-1", quiz.ID)))

	history, err := repo.Attempt().ListByUserAndQuiz(ctx, "user-1", quiz.ID)
	require.NoError(t, err)
	assert.Len(t, history, 2)

	completed, err := repo.Attempt().CountCompleted(ctx, "user-1", quiz.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, completed)
}

func TestAttemptRepository_GetActiveNone(t *testing.T) {
	repo := NewRepository(newTestDB(t))

	active, err := repo.Attempt().GetActive(context.Background(), "nobody", 42)
	require.NoError(t, err)
	assert.Nil(t, active)

	_, err = repo.Attempt().GetByID(context.Background(), 42)
	assert.True(t, repositories.IsNotFoundError(err))
}

func TestAttemptRepository_TerminalTransitionsAreConditional(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := NewRepository(db)
	quiz := seedQuiz(t, db, baseTime, baseTime.Add(time.Hour), true, 1)

	attempt := newAttempt("user-1", quiz.ID)
	require.NoError(t, repo.Attempt().Create(ctx, attempt))

	changed, err := repo.Attempt().Expire(ctx, attempt.ID, baseTime.Add(2*time.Hour))
	require.NoError(t, err)
	assert.True(t, changed)

	changed, err = repo.Attempt().Complete(ctx, attempt.ID, 1, 1, baseTime.Add(3*time.Hour))
	require.NoError(t, err)
	assert.False(t, changed)

	changed, err = repo.Attempt().Expire(ctx, attempt.ID, baseTime.Add(3*time.Hour))
	require.NoError(t, err)
	assert.False(t, changed)

	stored, err := repo.Attempt().GetByID(ctx, attempt.ID)
	require.NoError(t, err)
	assert.Equal(t, models.AttemptExpired, stored.Status)
	assert.Nil(t, stored.Score)
	require.NotNil(t, stored.EndTime)
}

func TestAttemptRepository_ListStale(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := NewRepository(db)
	now := baseTime.Add(48 * time.Hour)

	open := seedQuiz(t, db, baseTime, baseTime.Add(7*24*time.Hour), true, 1)
	closed := seedQuiz(t, db, baseTime, baseTime.Add(24*time.Hour), true, 1)
	disabled := seedQuiz(t, db, baseTime, baseTime.Add(7*24*time.Hour), false, 1)

	for _, quiz := range []*models.Quiz{open, closed, disabled} {
		require.NoError(t, repo.Attempt().Create(ctx, newAttempt("user-1", quiz.ID)))
	}

	stale, err := repo.Attempt().ListStale(ctx, now, 10)
	require.NoError(t, err)
	require.Len(t, stale, 2)
	assert.Equal(t, closed.ID, stale[0].QuizID)
	assert.Equal(t, disabled.ID, stale[1].QuizID)

	limited, err := repo.Attempt().ListStale(ctx, now, 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestAttemptRepository_ListWithFilters(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := NewRepository(db)
	quiz := seedQuiz(t, db, baseTime, baseTime.Add(7*24*time.Hour), true, 1)

	first := newAttempt("user-1", quiz.ID)
	require.NoError(t, repo.Attempt().Create(ctx, first))
	_, err := repo.Attempt().Complete(ctx, first.ID, 1, 1, baseTime.Add(2*time.Hour))
	require.NoError(t, err)

	second := newAttempt("user-1", quiz.ID)
	second.StartTime = baseTime.Add(3 * time.Hour)
	require.NoError(t, repo.Attempt().Create(ctx, second))
	require.NoError(t, repo.Attempt().Create(ctx, newAttempt("user-2", quiz.ID)))

	attempts, total, err := repo.Attempt().List(ctx, repositories.AttemptFilters{UserID: "user-1"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, attempts, 2)
	assert.Equal(t, second.ID, attempts[0].ID)
	require.NotNil(t, attempts[0].Quiz)
	assert.Equal(t, "Go basics", attempts[0].Quiz.Title)

	status := models.AttemptCompleted
	attempts, total, err = repo.Attempt().List(ctx, repositories.AttemptFilters{UserID: "user-1", Status: &status})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, first.ID, attempts[0].ID)
}

func TestAnswerRepository_Upsert(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := NewRepository(db)
	quiz := seedQuiz(t, db, baseTime, baseTime.Add(time.Hour), true, 2)

	attempt := newAttempt("user-1", quiz.ID)
	require.NoError(t, repo.Attempt().Create(ctx, attempt))

	spent := 12
	require.NoError(t, repo.Answer().Upsert(ctx, &models.UserAnswer{
		UserQuizAttemptID: attempt.ID, QuestionID: 1, SelectedOption: 1, IsCorrect: true, TimeSpent: &spent,
	}))
	require.NoError(t, repo.Answer().Upsert(ctx, &models.UserAnswer{
		UserQuizAttemptID: attempt.ID, QuestionID: 1, SelectedOption: 2, IsCorrect: false,
	}))
	require.NoError(t, repo.Answer().Upsert(ctx, &models.UserAnswer{
		UserQuizAttemptID: attempt.ID, QuestionID: 2, SelectedOption: 1, IsCorrect: true,
	}))

	answers, err := repo.Answer().ListByAttempt(ctx, attempt.ID)
	require.NoError(t, err)
	require.Len(t, answers, 2)

	first, err := repo.Answer().GetByAttemptAndQuestion(ctx, attempt.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, first.SelectedOption)
	assert.False(t, first.IsCorrect)
	require.NotNil(t, first.TimeSpent)
	assert.Equal(t, 12, *first.TimeSpent)

	tally, err := repo.Answer().Tally(ctx, attempt.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, tally.Answered)
	assert.Equal(t, 1, tally.Correct)

	empty, err := repo.Answer().Tally(ctx, 999)
	require.NoError(t, err)
	assert.Equal(t, 0, empty.Answered)
	assert.Equal(t, 0, empty.Correct)
}

func TestQuizRepository(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := NewRepository(db)
	now := baseTime.Add(time.Hour)

	open := seedQuiz(t, db, baseTime, baseTime.Add(24*time.Hour), true, 3)
	seedQuiz(t, db, baseTime.Add(48*time.Hour), baseTime.Add(72*time.Hour), true, 1)
	seedQuiz(t, db, baseTime, baseTime.Add(24*time.Hour), false, 1)

	quiz, err := repo.Quiz().GetByIDWithQuestions(ctx, open.ID)
	require.NoError(t, err)
	require.Len(t, quiz.Questions, 3)
	for i, q := range quiz.Questions {
		assert.Equal(t, i+1, q.Position)
	}

	count, err := repo.Quiz().CountQuestions(ctx, open.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	question, err := repo.Quiz().GetQuestion(ctx, quiz.Questions[0].ID)
	require.NoError(t, err)
	assert.Equal(t, open.ID, question.QuizID)

	_, err = repo.Quiz().GetByID(ctx, 999)
	assert.True(t, repositories.IsNotFoundError(err))

	available, err := repo.Quiz().ListAvailable(ctx, now)
	require.NoError(t, err)
	require.Len(t, available, 1)
	assert.Equal(t, open.ID, available[0].Quiz.ID)
	assert.Equal(t, 3, available[0].QuestionCount)
}

func TestRepository_WithTransactionRollsBack(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := NewRepository(db)
	quiz := seedQuiz(t, db, baseTime, baseTime.Add(time.Hour), true, 1)

	boom := errors.New("boom")
	err := repo.WithTransaction(ctx, func(tx repositories.Repository) error {
		if err := tx.Attempt().Create(ctx, newAttempt("user-1", quiz.ID)); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	active, err := repo.Attempt().GetActive(ctx, "user-1", quiz.ID)
	require.NoError(t, err)
	assert.Nil(t, active)
}

func TestScoreRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(newTestDB(t))

	score := &models.Score{
		AttemptID:       5,
		QuizID:          1,
		UserID:          "user-1",
		Score:           2,
		TotalQuestions:  3,
		Percentage:      66.67,
		AttemptNumber:   1,
		DetailedResults: []byte(`[{"question_id":1,"selected_option":1,"is_correct":true}]`),
	}
	require.NoError(t, repo.Score().Create(ctx, score))

	stored, err := repo.Score().GetByAttempt(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, 66.67, stored.Percentage)
	assert.JSONEq(t, `[{"question_id":1,"selected_option":1,"is_correct":true}]`, string(stored.DetailedResults))

	err = repo.Score().Create(ctx, &models.Score{AttemptID: 5, QuizID: 1, UserID: "user-1"})
	assert.True(t, repositories.IsDuplicateError(err))
}
