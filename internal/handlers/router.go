package handlers

import (
	"net/http"

	"github.com/SAP-F-2025/quiz-attempt-service/internal/auth"
	"github.com/SAP-F-2025/quiz-attempt-service/internal/services"
	"github.com/SAP-F-2025/quiz-attempt-service/internal/utils"
	"github.com/gin-gonic/gin"
)

type HandlerManager struct {
	attemptHandler *AttemptHandler
	sessionHandler *SessionHandler
	authMiddleware gin.HandlerFunc
	logger         utils.Logger
}

func NewHandlerManager(
	attemptService services.AttemptService,
	exportService services.ExportService,
	verifier auth.Verifier,
	guard *auth.SessionGuard,
	logger utils.Logger,
) *HandlerManager {
	return &HandlerManager{
		attemptHandler: NewAttemptHandler(attemptService, exportService, logger),
		sessionHandler: NewSessionHandler(guard, logger),
		authMiddleware: AuthMiddleware(verifier, guard, logger),
		logger:         logger,
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	router.Use(utils.ContextLogger(hm.logger), utils.LoggerMiddleware(hm.logger), gin.Recovery())

	// Health check endpoint
	router.GET("/health", HealthCheck)

	// API v1 routes
	v1 := router.Group("/api/v1", hm.authMiddleware)
	{
		// Quiz routes
		quizzes := v1.Group("/quizzes")
		{
			quizzes.GET("/available", hm.attemptHandler.AvailableQuizzes)
			quizzes.POST("/:quiz_id/attempts", hm.attemptHandler.StartAttempt)
			quizzes.GET("/:quiz_id/attempts", hm.attemptHandler.ListAttempts)
		}

		// Attempt routes
		attempts := v1.Group("/attempts")
		{
			attempts.GET("/export", hm.attemptHandler.ExportAttempts)
			attempts.GET("/:id/questions/:number", hm.attemptHandler.GetQuestion)
			attempts.POST("/:id/answers", hm.attemptHandler.SubmitAnswer)
			attempts.GET("/:id/time", hm.attemptHandler.CheckTime)
			attempts.POST("/:id/complete", hm.attemptHandler.CompleteAttempt)
		}

		v1.GET("/scores", hm.attemptHandler.ScoreSummary)
		v1.POST("/session/logout", hm.sessionHandler.Logout)
	}
}

func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "quiz-attempt-service",
	})
}
