package handlers

import (
	"net/http"

	"github.com/SAP-F-2025/quiz-attempt-service/internal/auth"
	"github.com/SAP-F-2025/quiz-attempt-service/internal/utils"
	"github.com/gin-gonic/gin"
)

type SessionHandler struct {
	BaseHandler
	guard *auth.SessionGuard
}

func NewSessionHandler(guard *auth.SessionGuard, logger utils.Logger) *SessionHandler {
	return &SessionHandler{
		BaseHandler: NewBaseHandler(logger),
		guard:       guard,
	}
}

// Logout godoc
// @Summary End the caller's session
// @Description Tokens issued before the logout are rejected afterwards
// @Tags session
// @Success 200 {object} SuccessResponse
// @Router /session/logout [post]
func (h *SessionHandler) Logout(c *gin.Context) {
	caller, ok := h.getCaller(c)
	if !ok {
		return
	}

	if err := h.guard.Logout(c.Request.Context(), caller.UserID); err != nil {
		h.RespondWithError(c, http.StatusInternalServerError, CodeInternalError, "Failed to end session", err)
		return
	}

	h.RespondWithSuccess(c, http.StatusOK, "Logged out", nil)
}
