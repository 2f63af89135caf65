package postgres

import (
	"context"

	"github.com/SAP-F-2025/quiz-attempt-service/internal/repositories"
	"gorm.io/gorm"
)

type Repository struct {
	db      *gorm.DB
	quiz    repositories.QuizRepository
	attempt repositories.AttemptRepository
	answer  repositories.AnswerRepository
	score   repositories.ScoreRepository
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		db:      db,
		quiz:    NewQuizPostgreSQL(db),
		attempt: NewAttemptPostgreSQL(db),
		answer:  NewAnswerPostgreSQL(db),
		score:   NewScorePostgreSQL(db),
	}
}

func (r *Repository) Quiz() repositories.QuizRepository       { return r.quiz }
func (r *Repository) Attempt() repositories.AttemptRepository { return r.attempt }
func (r *Repository) Answer() repositories.AnswerRepository   { return r.answer }
func (r *Repository) Score() repositories.ScoreRepository     { return r.score }

func (r *Repository) WithTransaction(ctx context.Context, fn func(tx repositories.Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewRepository(tx))
	})
}
