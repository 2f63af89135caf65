package repositories

import "context"

// Repository groups the stores used by the attempt lifecycle.
type Repository interface {
	Quiz() QuizRepository
	Attempt() AttemptRepository
	Answer() AnswerRepository
	Score() ScoreRepository

	// WithTransaction runs fn against a repository bound to a single transaction.
	// The transaction is committed when fn returns nil and rolled back otherwise.
	WithTransaction(ctx context.Context, fn func(tx Repository) error) error
}
