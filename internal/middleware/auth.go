package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/speeddate-dev/speeddate/internal/auth"
	"github.com/speeddate-dev/speeddate/internal/logging"
	"github.com/speeddate-dev/speeddate/internal/types"
)

// RequireSession rejects requests without a live session. On success the
// caller's identity is available through auth.IdentityFrom on the request
// context and under types.ContextIdentityKey on the gin context.
func RequireSession(sessions *auth.SessionManager) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		session, err := sessions.Load(ctx.Request)

		if err != nil {
			if !errors.Is(err, auth.ErrNoSession) {
				logging.Debug().Err(err).Str("path", ctx.Request.URL.Path).Msg("session rejected")
			}
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": types.MsgUnauthorized})
			return
		}

		if err := sessions.Refresh(ctx.Request.Context(), ctx.Writer, ctx.Request, session); err != nil {
			logging.Warn().Err(err).Str("session_id", session.ID).Msg("failed to refresh session")
		}

		identity := auth.Identity{
			SessionID: session.ID,
			UserID:    session.UserID,
			Email:     session.Email,
			Role:      session.Role,
		}

		ctx.Request = ctx.Request.WithContext(auth.WithIdentity(ctx.Request.Context(), identity))
		ctx.Set(types.ContextIdentityKey, identity)
		ctx.Next()
	}
}
