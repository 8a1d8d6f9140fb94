package api

import (
	"context"
	"log"
	"net/http"

	"ArthaFlowSaas/api/auth"
	"ArthaFlowSaas/api/constants"
	"ArthaFlowSaas/internal/validation"
)

type contextKey string

const (
	UserIDKey  contextKey = "user_id"
	SessionKey contextKey = "session"
)

// GetUserIDFromCtx returns the session-validated user id a middleware attached.
func GetUserIDFromCtx(ctx context.Context) string {
	if userID, ok := ctx.Value(UserIDKey).(string); ok {
		return userID
	}
	return ""
}

// GetSessionFromCtx returns the validated session, if any.
func GetSessionFromCtx(ctx context.Context) *auth.UserSession {
	if session, ok := ctx.Value(SessionKey).(*auth.UserSession); ok {
		return session
	}
	return nil
}

// SessionMiddleware pulls user_id out of the request, validates it against
// the active sessions and attaches both to the request context.
func SessionMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, err := validation.ExtractUserID(r)
		if err != nil {
			log.Println("[ERROR] Missing user_id in request")
			RespondWithError(w, http.StatusBadRequest, constants.ErrMissingUserID)
			return
		}

		session := validation.ValidateSession(userID)
		if session == nil {
			log.Println("[ERROR] Invalid session for user_id:", userID)
			RespondWithError(w, http.StatusUnauthorized, constants.ErrInvalidSession)
			return
		}

		ctx := context.WithValue(r.Context(), UserIDKey, userID)
		ctx = context.WithValue(ctx, SessionKey, session)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
