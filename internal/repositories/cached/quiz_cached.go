package cached

import (
	"context"
	"errors"
	"log/slog"
	"math/rand"
	"strconv"
	"time"

	"github.com/SAP-F-2025/quiz-attempt-service/internal/cache"
	"github.com/SAP-F-2025/quiz-attempt-service/internal/models"
	"github.com/SAP-F-2025/quiz-attempt-service/internal/repositories"
	"golang.org/x/sync/singleflight"
)

const quizKeyPrefix = "quiz:definition:"

// QuizRepository fronts a QuizRepository with a read-through cache of quiz definitions.
// Concurrent misses for the same quiz collapse into one load. A cached question list is
// only served under a quiz header read fresh from the store, and is reloaded once the
// header or the question count no longer matches it.
type QuizRepository struct {
	repositories.QuizRepository

	cache  cache.CacheService
	ttl    time.Duration
	logger *slog.Logger
	sf     singleflight.Group
}

func NewQuizRepository(base repositories.QuizRepository, c cache.CacheService, ttl time.Duration, logger *slog.Logger) *QuizRepository {
	return &QuizRepository{
		QuizRepository: base,
		cache:          c,
		ttl:            ttl,
		logger:         logger,
	}
}

func (r *QuizRepository) GetByIDWithQuestions(ctx context.Context, id uint) (*models.Quiz, error) {
	key := quizKey(id)

	var quiz models.Quiz
	err := r.cache.Get(ctx, key, &quiz)
	switch {
	case err == nil:
		fresh, err := r.revalidate(ctx, &quiz)
		if err != nil {
			return nil, err
		}
		if fresh != nil {
			return fresh, nil
		}
		r.logger.Info("Cached quiz is stale, reloading", "quiz_id", id)
		if err := r.Invalidate(ctx, id); err != nil {
			r.logger.Warn("Failed to drop stale quiz", "quiz_id", id, "error", err)
		}
	case !errors.Is(err, cache.ErrCacheMiss):
		r.logger.Warn("Quiz cache read failed, loading from store", "quiz_id", id, "error", err)
	}

	result, err, _ := r.sf.Do(key, func() (interface{}, error) {
		loaded, err := r.QuizRepository.GetByIDWithQuestions(ctx, id)
		if err != nil {
			return nil, err
		}

		if err := r.cache.Set(ctx, key, loaded, r.ttlWithJitter()); err != nil {
			r.logger.Warn("Failed to cache quiz", "quiz_id", id, "error", err)
		}
		return loaded, nil
	})
	if err != nil {
		return nil, err
	}

	// callers may mutate the result, so each gets its own copy
	shared := result.(*models.Quiz)
	copied := *shared
	copied.Questions = append([]models.Question(nil), shared.Questions...)
	return &copied, nil
}

// revalidate puts the cached questions under the stored quiz header. It returns nil
// when the cached entry no longer matches the store.
func (r *QuizRepository) revalidate(ctx context.Context, cached *models.Quiz) (*models.Quiz, error) {
	header, err := r.QuizRepository.GetByID(ctx, cached.ID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			_ = r.Invalidate(ctx, cached.ID)
		}
		return nil, err
	}
	if !header.UpdatedAt.Equal(cached.UpdatedAt) {
		return nil, nil
	}

	count, err := r.QuizRepository.CountQuestions(ctx, cached.ID)
	if err != nil {
		return nil, err
	}
	if count != len(cached.Questions) {
		return nil, nil
	}

	header.Questions = cached.Questions
	return header, nil
}

// Invalidate drops the cached definition of a quiz.
func (r *QuizRepository) Invalidate(ctx context.Context, id uint) error {
	return r.cache.Delete(ctx, quizKey(id))
}

func (r *QuizRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	jitterMax := int64(r.ttl) / 10
	return r.ttl + time.Duration(rand.Int63n(jitterMax+1))
}

func quizKey(id uint) string {
	return quizKeyPrefix + strconv.FormatUint(uint64(id), 10)
}

// Repository swaps the quiz store of a Repository for the cached one. Transactions
// read quizzes from the underlying store.
type Repository struct {
	repositories.Repository
	quiz *QuizRepository
}

func NewRepository(base repositories.Repository, c cache.CacheService, ttl time.Duration, logger *slog.Logger) *Repository {
	return &Repository{
		Repository: base,
		quiz:       NewQuizRepository(base.Quiz(), c, ttl, logger),
	}
}

func (r *Repository) Quiz() repositories.QuizRepository {
	return r.quiz
}
