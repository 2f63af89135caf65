package handlers

import (
	"errors"
	"net/http"

	"github.com/SAP-F-2025/quiz-attempt-service/internal/services"
	"github.com/gin-gonic/gin"
)

// handleServiceError maps service errors onto status codes and error codes
func (h *BaseHandler) handleServiceError(c *gin.Context, err error) {
	switch services.KindOf(err) {
	case services.KindForbidden:
		var permErr *services.PermissionError
		if errors.As(err, &permErr) {
			h.RespondWithError(c, http.StatusForbidden, CodeForbidden, "Access denied", err, map[string]interface{}{
				"resource": permErr.Resource,
				"action":   permErr.Action,
				"reason":   permErr.Reason,
			})
			return
		}
		h.RespondWithError(c, http.StatusForbidden, CodeForbidden, "Access denied", err)

	case services.KindNotFound:
		h.RespondWithError(c, http.StatusNotFound, CodeNotFound, err.Error(), err)

	case services.KindQuizUnavailable:
		h.RespondWithError(c, http.StatusBadRequest, CodeQuizUnavailable, err.Error(), err)

	case services.KindInvalidInput:
		// Field level failures carry their details
		var validationErrs services.ValidationErrors
		if errors.As(err, &validationErrs) {
			h.RespondWithError(c, http.StatusBadRequest, CodeInvalidInput, "Validation failed", err, validationErrs)
			return
		}
		h.RespondWithError(c, http.StatusBadRequest, CodeInvalidInput, err.Error(), err)

	default:
		h.RespondWithError(c, http.StatusInternalServerError, CodeInternalError, "Internal server error", err)
	}
}
