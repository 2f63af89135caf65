package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/SAP-F-2025/quiz-attempt-service/internal/events"
	"github.com/SAP-F-2025/quiz-attempt-service/internal/repositories"
)

const defaultSweepBatchSize = 100

type sweepService struct {
	repo      repositories.Repository
	publisher events.EventPublisher
	logger    *slog.Logger
	batchSize int
}

func NewSweepService(repo repositories.Repository, publisher events.EventPublisher, logger *slog.Logger, batchSize int) SweepService {
	if batchSize <= 0 {
		batchSize = defaultSweepBatchSize
	}
	return &sweepService{
		repo:      repo,
		publisher: publisher,
		logger:    logger.With("component", "sweeper"),
		batchSize: batchSize,
	}
}

// SweepExpired expires every in_progress attempt whose quiz is closed or
// deactivated at now and returns how many it expired.
func (s *sweepService) SweepExpired(ctx context.Context, now time.Time) (int, error) {
	expiredTotal := 0

	for {
		if err := ctx.Err(); err != nil {
			return expiredTotal, err
		}

		stale, err := s.repo.Attempt().ListStale(ctx, now, s.batchSize)
		if err != nil {
			return expiredTotal, err
		}

		for _, attempt := range stale {
			expired, err := expireAttempt(ctx, s.repo, s.publisher, s.logger, attempt, now, expiryTriggerSweep)
			if err != nil {
				return expiredTotal, err
			}
			if expired {
				expiredTotal++
			}
		}

		if len(stale) < s.batchSize {
			break
		}
	}

	if expiredTotal > 0 {
		s.logger.Info("Expired abandoned attempts", "count", expiredTotal)
	}
	return expiredTotal, nil
}

// Run sweeps on every tick until ctx is cancelled
func (s *sweepService) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.logger.Info("Attempt sweeper started", "interval", interval)

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Attempt sweeper stopped")
			return
		case tick := <-ticker.C:
			if _, err := s.SweepExpired(ctx, tick); err != nil && ctx.Err() == nil {
				s.logger.Error("Attempt sweep failed", "error", err)
			}
		}
	}
}
