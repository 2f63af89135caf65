package handlers

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/SAP-F-2025/quiz-attempt-service/internal/services"
	"github.com/SAP-F-2025/quiz-attempt-service/internal/utils"
	"github.com/gin-gonic/gin"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type AttemptHandler struct {
	BaseHandler
	service       services.AttemptService
	exportService services.ExportService
	now           func() time.Time
}

func NewAttemptHandler(service services.AttemptService, exportService services.ExportService, logger utils.Logger) *AttemptHandler {
	return &AttemptHandler{
		BaseHandler:   NewBaseHandler(logger),
		service:       service,
		exportService: exportService,
		now:           time.Now,
	}
}

// StartAttempt godoc
// @Summary Start or resume a quiz attempt
// @Description Starts a new attempt, or returns the caller's open attempt for the quiz
// @Tags attempts
// @Produce json
// @Param quiz_id path int true "Quiz ID"
// @Success 201 {object} services.StartAttemptResponse "New attempt"
// @Success 200 {object} services.StartAttemptResponse "Resumed attempt"
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /quizzes/{quiz_id}/attempts [post]
func (h *AttemptHandler) StartAttempt(c *gin.Context) {
	caller, ok := h.getCaller(c)
	if !ok {
		return
	}
	quizID, ok := h.parseIDParam(c, "quiz_id")
	if !ok {
		return
	}

	h.LogRequest(c, "Starting attempt", "quiz_id", quizID)

	resp, err := h.service.Start(c.Request.Context(), caller.UserID, quizID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	if resp.Resumed {
		h.RespondWithSuccess(c, http.StatusOK, "Attempt resumed", resp, "attempt_id", resp.AttemptID)
		return
	}
	h.RespondWithSuccess(c, http.StatusCreated, "Attempt started", resp, "attempt_id", resp.AttemptID)
}

// GetQuestion godoc
// @Summary Get a question of an attempt
// @Tags attempts
// @Produce json
// @Param id path int true "Attempt ID"
// @Param number path int true "Question number, starting at 1"
// @Success 200 {object} services.QuestionResponse
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /attempts/{id}/questions/{number} [get]
func (h *AttemptHandler) GetQuestion(c *gin.Context) {
	caller, ok := h.getCaller(c)
	if !ok {
		return
	}
	attemptID, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}
	number, ok := h.parseIntParam(c, "number")
	if !ok {
		return
	}

	resp, err := h.service.GetQuestion(c.Request.Context(), caller.UserID, attemptID, number)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.RespondWithSuccess(c, http.StatusOK, "Question retrieved", resp, "attempt_id", attemptID, "question_number", number)
}

// SubmitAnswer godoc
// @Summary Record or replace the answer to a question
// @Tags attempts
// @Accept json
// @Produce json
// @Param id path int true "Attempt ID"
// @Param request body services.SubmitAnswerRequest true "Answer"
// @Success 200 {object} services.SubmitAnswerResponse
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /attempts/{id}/answers [post]
func (h *AttemptHandler) SubmitAnswer(c *gin.Context) {
	caller, ok := h.getCaller(c)
	if !ok {
		return
	}
	attemptID, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	var req services.SubmitAnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, CodeInvalidInput, "Invalid request payload", err, err.Error())
		return
	}

	resp, err := h.service.SubmitAnswer(c.Request.Context(), caller.UserID, attemptID, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.RespondWithSuccess(c, http.StatusOK, "Answer recorded", resp, "attempt_id", attemptID, "question_id", req.QuestionID)
}

// CheckTime godoc
// @Summary Get the remaining time of an attempt
// @Description Expires the attempt when its time has run out
// @Tags attempts
// @Produce json
// @Param id path int true "Attempt ID"
// @Success 200 {object} services.TimeCheckResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /attempts/{id}/time [get]
func (h *AttemptHandler) CheckTime(c *gin.Context) {
	caller, ok := h.getCaller(c)
	if !ok {
		return
	}
	attemptID, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	resp, err := h.service.CheckTime(c.Request.Context(), caller.UserID, attemptID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.RespondWithSuccess(c, http.StatusOK, "Time checked", resp, "attempt_id", attemptID, "status", resp.Status)
}

// CompleteAttempt godoc
// @Summary Complete and score an attempt
// @Tags attempts
// @Produce json
// @Param id path int true "Attempt ID"
// @Success 200 {object} services.AttemptResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /attempts/{id}/complete [post]
func (h *AttemptHandler) CompleteAttempt(c *gin.Context) {
	caller, ok := h.getCaller(c)
	if !ok {
		return
	}
	attemptID, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	h.LogRequest(c, "Completing attempt", "attempt_id", attemptID)

	resp, err := h.service.Complete(c.Request.Context(), caller.UserID, attemptID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.RespondWithSuccess(c, http.StatusOK, "Attempt completed", resp, "attempt_id", attemptID, "status", resp.Status)
}

// ListAttempts godoc
// @Summary List the caller's attempts on a quiz
// @Tags attempts
// @Produce json
// @Param quiz_id path int true "Quiz ID"
// @Success 200 {array} services.AttemptHistoryItem
// @Router /quizzes/{quiz_id}/attempts [get]
func (h *AttemptHandler) ListAttempts(c *gin.Context) {
	caller, ok := h.getCaller(c)
	if !ok {
		return
	}
	quizID, ok := h.parseIDParam(c, "quiz_id")
	if !ok {
		return
	}

	items, err := h.service.ListAttempts(c.Request.Context(), caller.UserID, quizID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.RespondWithSuccess(c, http.StatusOK, "Attempts retrieved", items, "quiz_id", quizID, "count", len(items))
}

// ScoreSummary godoc
// @Summary List the caller's completed attempts with scores
// @Tags scores
// @Produce json
// @Success 200 {array} services.ScoreSummaryItem
// @Router /scores [get]
func (h *AttemptHandler) ScoreSummary(c *gin.Context) {
	caller, ok := h.getCaller(c)
	if !ok {
		return
	}

	items, err := h.service.ScoreSummary(c.Request.Context(), caller.UserID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.RespondWithSuccess(c, http.StatusOK, "Scores retrieved", items, "count", len(items))
}

// AvailableQuizzes godoc
// @Summary List quizzes open right now
// @Tags quizzes
// @Produce json
// @Success 200 {array} services.AvailableQuiz
// @Router /quizzes/available [get]
func (h *AttemptHandler) AvailableQuizzes(c *gin.Context) {
	if _, ok := h.getCaller(c); !ok {
		return
	}

	quizzes, err := h.service.AvailableQuizzes(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.RespondWithSuccess(c, http.StatusOK, "Available quizzes retrieved", quizzes, "count", len(quizzes))
}

// ExportAttempts godoc
// @Summary Download attempts as an XLSX workbook
// @Description Users export their own attempts. Admins may export any user, or everyone when user_id is empty.
// @Tags attempts
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param user_id query string false "User ID"
// @Param quiz_id query int false "Quiz ID"
// @Param status query string false "Attempt status"
// @Param date_from query string false "RFC3339 lower bound on start time"
// @Param date_to query string false "RFC3339 upper bound on start time"
// @Success 200 {file} file
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Router /attempts/export [get]
func (h *AttemptHandler) ExportAttempts(c *gin.Context) {
	caller, ok := h.getCaller(c)
	if !ok {
		return
	}

	var req services.ExportRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, CodeInvalidInput, "Invalid query parameters", err, err.Error())
		return
	}

	// Buffer so a failure can still be reported as JSON
	var buf bytes.Buffer
	if err := h.exportService.ExportAttempts(c.Request.Context(), caller, &req, &buf); err != nil {
		h.handleServiceError(c, err)
		return
	}

	exportFor := req.UserID
	if exportFor == "" && !caller.IsAdmin() {
		exportFor = caller.UserID
	}
	fileName := services.ExportFileName(exportFor, h.now())

	h.LogInfo(c, "Attempts exported", "file_name", fileName, "bytes", buf.Len())
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", fileName))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}
