package handler

import (
	stderrors "errors"
	"net/http"
	"time"

	"ideaboard/internal/domain"
	"ideaboard/internal/middleware"
	"ideaboard/internal/repository"
	"ideaboard/internal/service"
	"ideaboard/internal/service/auth"
	"ideaboard/pkg/errors"
	"ideaboard/pkg/logger"
)

// CookieConfig controls the session cookie
type CookieConfig struct {
	Secure bool
}

// AuthHandler handles sign-in, sign-out and the current user
type AuthHandler struct {
	login             service.LoginService
	sessions          service.SessionService
	users             repository.UserRepository
	cookie            CookieConfig
	postLoginRedirect string
	logger            *logger.Logger
}

func NewAuthHandler(
	login service.LoginService,
	sessions service.SessionService,
	users repository.UserRepository,
	cookie CookieConfig,
	postLoginRedirect string,
	logger *logger.Logger,
) *AuthHandler {
	return &AuthHandler{
		login:             login,
		sessions:          sessions,
		users:             users,
		cookie:            cookie,
		postLoginRedirect: postLoginRedirect,
		logger:            logger.Named("auth_handler"),
	}
}

// MeResponse is the body of GET /api/me
type MeResponse struct {
	User    *domain.User `json:"user"`
	Success bool         `json:"success"`
}

// Login handles GET /login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	authURL, err := h.login.AuthCodeURL(r.Context())
	if err != nil {
		middleware.WriteError(w, r, errors.NewInternalError("Failed to start sign-in", err), h.logger)
		return
	}
	http.Redirect(w, r, authURL, http.StatusFound)
}

// Callback handles GET /auth/google/callback
func (h *AuthHandler) Callback(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	if reason := query.Get("error"); reason != "" {
		middleware.WriteError(w, r, errors.NewAuthenticationError("Sign-in was cancelled"), h.logger)
		return
	}

	user, err := h.login.Complete(r.Context(), query.Get("state"), query.Get("code"))
	if err != nil {
		if stderrors.Is(err, auth.ErrInvalidState) {
			middleware.WriteError(w, r, errors.NewValidationError("Invalid or expired sign-in attempt", nil), h.logger)
			return
		}
		middleware.WriteError(w, r, errors.NewExternalError("Sign-in with Google failed", err), h.logger)
		return
	}

	token, expiresAt, err := h.sessions.Issue(r.Context(), user)
	if err != nil {
		middleware.WriteError(w, r, errors.NewInternalError("Failed to start session", err), h.logger)
		return
	}

	http.SetCookie(w, h.sessionCookie(token, expiresAt))
	http.Redirect(w, r, h.postLoginRedirect, http.StatusSeeOther)
}

// Logout handles POST /logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if identity, ok := middleware.IdentityFromContext(r.Context()); ok {
		if err := h.sessions.Revoke(r.Context(), identity); err != nil {
			middleware.WriteError(w, r, errors.NewInternalError("Failed to end session", err), h.logger)
			return
		}
	}

	expired := h.sessionCookie("", time.Unix(0, 0))
	expired.MaxAge = -1
	http.SetCookie(w, expired)
	w.WriteHeader(http.StatusNoContent)
}

// Me handles GET /api/me. RequireSession guards the route.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		middleware.WriteError(w, r, errors.NewAuthenticationError("User not authenticated"), h.logger)
		return
	}

	user, err := h.users.GetByID(r.Context(), identity.UserID)
	if err != nil {
		if stderrors.Is(err, repository.ErrUserNotFound) {
			middleware.WriteError(w, r, errors.NewNotFoundError("User not found"), h.logger)
			return
		}
		middleware.WriteError(w, r, errors.NewInternalError("Failed to load user", err), h.logger)
		return
	}

	respondJSON(w, http.StatusOK, MeResponse{User: user, Success: true})
}

func (h *AuthHandler) sessionCookie(value string, expires time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    value,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	}
}
