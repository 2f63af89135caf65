package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/SAP-F-2025/quiz-attempt-service/internal/auth"
	"github.com/SAP-F-2025/quiz-attempt-service/internal/cache"
	"github.com/SAP-F-2025/quiz-attempt-service/internal/config"
	"github.com/SAP-F-2025/quiz-attempt-service/internal/events"
	"github.com/SAP-F-2025/quiz-attempt-service/internal/repositories"
	"github.com/SAP-F-2025/quiz-attempt-service/internal/repositories/cached"
	"github.com/SAP-F-2025/quiz-attempt-service/internal/repositories/postgres"
	"github.com/SAP-F-2025/quiz-attempt-service/internal/services"
	"github.com/SAP-F-2025/quiz-attempt-service/internal/utils"
	"github.com/SAP-F-2025/quiz-attempt-service/internal/validator"
	"github.com/SAP-F-2025/quiz-attempt-service/pkg"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// application holds the wired dependencies shared by the subcommands
type application struct {
	cfg       *config.Config
	logger    utils.Logger
	db        *gorm.DB
	redis     *redis.Client
	publisher events.EventPublisher

	attempts services.AttemptService
	sweeper  services.SweepService
	exports  services.ExportService

	verifier auth.Verifier
	guard    *auth.SessionGuard
}

func newApplication(ctx context.Context, configPath string) (*application, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, err
	}

	logger := utils.NewEnvironmentLogger(cfg.IsProduction())
	slogLogger := utils.ToSlogLogger(logger)
	app := &application{cfg: cfg, logger: logger}

	app.db, err = pkg.InitDatabase(ctx, cfg)
	if err != nil {
		return nil, err
	}

	app.redis, err = pkg.NewRedisClient(ctx, cfg)
	if err != nil {
		app.Close()
		return nil, err
	}

	var repo repositories.Repository = postgres.NewRepository(app.db)
	if app.redis != nil {
		repo = cached.NewRepository(repo, cache.NewRedisCache(app.redis, slogLogger), cfg.Cache.QuizTTL, slogLogger)
	}

	app.publisher, err = cfg.Events.CreateEventPublisher(slogLogger)
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("failed to create event publisher: %w", err)
	}

	v := validator.New()
	app.attempts = services.NewAttemptService(repo, app.publisher, v, slogLogger, services.AttemptOptions{
		AnswerFeedback:       cfg.Attempts.AnswerFeedback,
		TotalQuestionsPolicy: services.TotalQuestionsPolicy(cfg.Attempts.TotalQuestionsPolicy),
	})
	app.sweeper = services.NewSweepService(repo, app.publisher, slogLogger, cfg.Sweep.BatchSize)
	app.exports = services.NewExportService(repo, v, slogLogger)

	switch cfg.Auth.Provider {
	case config.AuthProviderCasdoor:
		app.verifier = auth.NewCasdoorVerifier(auth.CasdoorConfig{
			Endpoint:     cfg.Auth.Casdoor.Endpoint,
			ClientID:     cfg.Auth.Casdoor.ClientID,
			ClientSecret: cfg.Auth.Casdoor.ClientSecret,
			Certificate:  cfg.Auth.Casdoor.Certificate,
			Organization: cfg.Auth.Casdoor.Organization,
			Application:  cfg.Auth.Casdoor.Application,
		})
	default:
		app.verifier = auth.NewHMACVerifier(cfg.Auth.JWTSecret, cfg.Auth.JWTIssuer)
	}

	var activity auth.ActivityStore = auth.NewMemoryActivityStore(cfg.Auth.ActivityRetention)
	if app.redis != nil {
		activity = auth.NewRedisActivityStore(app.redis, cfg.Auth.ActivityRetention)
	} else {
		slogLogger.Warn("redis not configured, session activity is kept in memory")
	}
	app.guard = auth.NewSessionGuard(activity, cfg.Auth.SessionTimeout)

	return app, nil
}

func (a *application) migrate(ctx context.Context) error {
	if err := postgres.Migrate(ctx, a.db); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	a.logger.Info("migrations applied")
	return nil
}

func (a *application) Close() error {
	var errs []error
	if a.publisher != nil {
		errs = append(errs, a.publisher.Close())
	}
	if a.redis != nil {
		errs = append(errs, a.redis.Close())
	}
	if a.db != nil {
		errs = append(errs, pkg.CloseDatabase(a.db))
	}
	return errors.Join(errs...)
}
