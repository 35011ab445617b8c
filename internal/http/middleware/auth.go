package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/invoice-ingest-backend/internal/http/response"
	"github.com/yungbote/invoice-ingest-backend/internal/platform/ctxutil"
	"github.com/yungbote/invoice-ingest-backend/internal/platform/logger"
	"github.com/yungbote/invoice-ingest-backend/internal/services"
)

type AuthMiddleware struct {
	log      *logger.Logger
	verifier services.TokenVerifier
	profiles services.ProfileService
}

func NewAuthMiddleware(log *logger.Logger, verifier services.TokenVerifier, profiles services.ProfileService) *AuthMiddleware {
	return &AuthMiddleware{
		log:      log.With("middleware", "AuthMiddleware"),
		verifier: verifier,
		profiles: profiles,
	}
}

// RequireAuth verifies the bearer token and attaches the caller's principal to the request context.
func (am *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			response.AbortError(c, http.StatusUnauthorized, "unauthorized", "Invalid token")
			return
		}
		ctx := c.Request.Context()
		id, err := am.verifier.Verify(ctx, token)
		if err != nil {
			am.log.Debug("Token rejected", "error", err)
			response.AbortError(c, http.StatusUnauthorized, "unauthorized", "Invalid token")
			return
		}
		principal, err := am.profiles.Principal(ctx, *id)
		if err != nil {
			am.log.Error("Principal resolution failed", "uid", id.UID, "error", err)
			response.AbortError(c, http.StatusServiceUnavailable, "auth_unavailable", "could not resolve caller")
			return
		}
		c.Request = c.Request.WithContext(ctxutil.WithRequestData(ctx, &ctxutil.RequestData{Principal: principal}))
		c.Next()
	}
}

func bearerToken(c *gin.Context) string {
	h := c.GetHeader("Authorization")
	if len(h) > 7 && strings.EqualFold(h[:7], "Bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}
