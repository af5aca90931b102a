package middleware

import (
	"net/http"

	"taskBoard/internal/auth"
	"taskBoard/internal/logger"

	"go.uber.org/zap"
)

const (
	MsgTokenMissing = "Access token is missing or invalid"
	MsgTokenInvalid = "Invalid or expired access token"
)

type TokenParser interface {
	Parse(raw string) (*auth.Claims, error)
}

// Authenticate reads the session cookie and puts its claims on the context.
func Authenticate(parser TokenParser, revoker auth.Revoker, cookieName string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(cookieName)
			if err != nil || cookie.Value == "" {
				writeError(w, http.StatusUnauthorized, MsgTokenMissing)
				return
			}

			claims, err := parser.Parse(cookie.Value)
			if err != nil {
				logger.Info("Auth: session token rejected",
					zap.String("request_id", GetRequestID(r.Context())),
					zap.Error(err))
				writeError(w, http.StatusForbidden, MsgTokenInvalid)
				return
			}

			revoked, err := revoker.IsRevoked(r.Context(), claims.ID)
			if err != nil {
				logger.Error("Auth: revocation lookup failed", err,
					zap.String("request_id", GetRequestID(r.Context())))
				writeError(w, http.StatusInternalServerError, msgInternal)
				return
			}
			if revoked {
				writeError(w, http.StatusForbidden, MsgTokenInvalid)
				return
			}

			recordUser(r.Context(), claims.UserID)
			next.ServeHTTP(w, r.WithContext(auth.WithClaims(r.Context(), claims)))
		})
	}
}
