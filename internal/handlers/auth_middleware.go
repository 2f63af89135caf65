package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/SAP-F-2025/quiz-attempt-service/internal/auth"
	"github.com/SAP-F-2025/quiz-attempt-service/internal/utils"
	"github.com/gin-gonic/gin"
)

// AuthMiddleware resolves the bearer token to a caller and enforces the
// inactivity timeout before any handler runs.
func AuthMiddleware(verifier auth.Verifier, guard *auth.SessionGuard, logger utils.Logger) gin.HandlerFunc {
	base := NewBaseHandler(logger)

	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			base.RespondWithError(c, http.StatusUnauthorized, CodeUnauthenticated, "Missing bearer token", nil)
			return
		}

		identity, err := verifier.Verify(c.Request.Context(), token)
		if err != nil {
			base.RespondWithError(c, http.StatusUnauthorized, CodeUnauthenticated, "Invalid token", nil)
			return
		}

		if err := guard.Check(c.Request.Context(), identity); err != nil {
			if errors.Is(err, auth.ErrSessionExpired) {
				base.RespondWithError(c, http.StatusUnauthorized, CodeSessionExpired, "Session expired", nil)
				return
			}
			base.RespondWithError(c, http.StatusInternalServerError, CodeInternalError, "Internal server error", err)
			return
		}

		c.Set(contextUserID, identity.UserID)
		c.Set(contextUserRole, identity.Role)
		c.Next()
	}
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
