package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/SAP-F-2025/quiz-attempt-service/internal/models"
	"github.com/gin-gonic/gin"
)

// Keys set on the gin context by AuthMiddleware
const (
	contextUserID   = "user_id"
	contextUserRole = "user_role"
)

// parseIDParam reads a positive numeric path parameter. On failure it has already
// written a 400 response and returns ok=false.
func (h *BaseHandler) parseIDParam(c *gin.Context, param string) (uint, bool) {
	idStr := strings.TrimSpace(c.Param(param))
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil || id == 0 {
		h.RespondWithError(c, http.StatusBadRequest, CodeInvalidInput, "Invalid "+param, nil, "must be a positive integer")
		return 0, false
	}
	return uint(id), true
}

// parseIntParam reads a numeric path parameter that the service range-checks itself.
func (h *BaseHandler) parseIntParam(c *gin.Context, param string) (int, bool) {
	value, err := strconv.Atoi(strings.TrimSpace(c.Param(param)))
	if err != nil {
		h.RespondWithError(c, http.StatusBadRequest, CodeInvalidInput, "Invalid "+param, nil, "must be an integer")
		return 0, false
	}
	return value, true
}

// getCaller returns the identity stored by AuthMiddleware.
func (h *BaseHandler) getCaller(c *gin.Context) (models.Caller, bool) {
	userID := c.GetString(contextUserID)
	if userID == "" {
		h.RespondWithError(c, http.StatusUnauthorized, CodeUnauthenticated, "User not authenticated", nil)
		return models.Caller{}, false
	}

	role, _ := c.Get(contextUserRole)
	userRole, _ := role.(models.UserRole)
	if userRole == "" {
		userRole = models.RoleUser
	}

	return models.Caller{UserID: userID, Role: userRole}, true
}
