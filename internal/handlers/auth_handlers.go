package handlers

import (
	"net/http"
	"strings"
	"time"

	"taskBoard/internal/auth"
	"taskBoard/internal/handlers/dto"
	"taskBoard/internal/logger"

	"go.uber.org/zap"
)

const msgNoToken = "No authentication token provided"

// CookieConfig describes the session cookie.
type CookieConfig struct {
	Name   string
	TTL    time.Duration
	Secure bool
}

func (c CookieConfig) sameSite() http.SameSite {
	// a frontend on another origin only gets the cookie back with None
	if c.Secure {
		return http.SameSiteNoneMode
	}
	return http.SameSiteLaxMode
}

type AuthHandler struct {
	Auth   AuthService
	Cookie CookieConfig
}

func NewAuthHandler(authService AuthService, cookie CookieConfig) AuthHandler {
	return AuthHandler{
		Auth:   authService,
		Cookie: cookie,
	}
}

func (h *AuthHandler) GoogleLogin(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	header := r.Header.Get("Authorization")
	rawToken := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	if header == "" || rawToken == "" {
		responseWithError(w, http.StatusUnauthorized, msgNoToken)
		return
	}

	result, err := h.Auth.Login(r.Context(), rawToken)
	if err != nil {
		handleServiceError(w, r, err, "google_login")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     h.Cookie.Name,
		Value:    result.Token,
		Path:     "/",
		MaxAge:   int(h.Cookie.TTL.Seconds()),
		Expires:  result.ExpiresAt,
		HttpOnly: true,
		Secure:   h.Cookie.Secure,
		SameSite: h.Cookie.sameSite(),
	})

	message := "User logged in successfully"
	if result.Created {
		message = "User registered and logged in successfully"
	}

	logger.Info("HTTP_OUT: user logged in",
		zap.String("user_id", result.User.ID.String()),
		zap.Duration("ms", time.Since(start)))

	responseWithMessage(w, http.StatusOK, message,
		toPayload("user", dto.FromProfile(result.User)))
}

func (h *AuthHandler) Profile(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}

	u, err := h.Auth.Profile(r.Context(), actor)
	if err != nil {
		handleServiceError(w, r, err, "profile")
		return
	}

	responseWithJSON(w, http.StatusOK, toPayload("user", dto.FromProfile(u)))
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	claims, _ := auth.ClaimsFromContext(r.Context())
	if err := h.Auth.Logout(r.Context(), claims); err != nil {
		handleServiceError(w, r, err, "logout")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     h.Cookie.Name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   h.Cookie.Secure,
		SameSite: h.Cookie.sameSite(),
	})

	responseWithMessage(w, http.StatusOK, "Logged out successfully")
}
