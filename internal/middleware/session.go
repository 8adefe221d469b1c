package middleware

import (
	"context"
	"net/http"
	"strings"

	"ideaboard/internal/domain"
	"ideaboard/internal/service"
	"ideaboard/pkg/logger"
)

// ContextKey represents keys used in request context
type ContextKey string

const (
	// IdentityContextKey is the key for the resolved caller in context
	IdentityContextKey ContextKey = "identity"
	// RequestIDContextKey is the key for request ID in context
	RequestIDContextKey ContextKey = "request_id"

	// SessionCookieName carries the session token for browser clients
	SessionCookieName = "ideaboard_session"
)

// Session resolves the caller from the session cookie or a Bearer token.
// Requests without a valid session continue anonymously; RequireSession
// decides whether a route needs one.
func Session(sessions service.SessionService, logger *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := tokenFromRequest(r)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}

			identity, err := sessions.Resolve(r.Context(), token)
			if err != nil {
				logger.WithError(err).Debug("Ignoring unusable session")
				next.ServeHTTP(w, r)
				return
			}

			ctx := WithIdentity(r.Context(), identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireSession redirects anonymous callers to the login entry point
func RequireSession(loginPath string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !GateFromRequest(r).IsAuthenticated() {
				RedirectToLogin(w, r, loginPath)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RedirectToLogin sends the caller to loginPath. htmx requests get an
// HX-Redirect header so the whole page navigates instead of the fragment.
func RedirectToLogin(w http.ResponseWriter, r *http.Request, loginPath string) {
	if r.Header.Get("HX-Request") == "true" {
		w.Header().Set("HX-Redirect", loginPath)
		w.WriteHeader(http.StatusOK)
		return
	}
	http.Redirect(w, r, loginPath, http.StatusSeeOther)
}

// WithIdentity stores identity in ctx
func WithIdentity(ctx context.Context, identity domain.Identity) context.Context {
	return context.WithValue(ctx, IdentityContextKey, identity)
}

// IdentityFromContext returns the caller stored by Session, if any
func IdentityFromContext(ctx context.Context) (domain.Identity, bool) {
	identity, ok := ctx.Value(IdentityContextKey).(domain.Identity)
	if !ok || identity.IsZero() {
		return domain.Identity{}, false
	}
	return identity, true
}

// Gate answers who is calling for the current request
type Gate struct {
	identity domain.Identity
}

func GateFromRequest(r *http.Request) Gate {
	identity, _ := IdentityFromContext(r.Context())
	return Gate{identity: identity}
}

func (g Gate) IsAuthenticated() bool {
	return !g.identity.IsZero()
}

func (g Gate) CurrentIdentity() domain.Identity {
	return g.identity
}

func tokenFromRequest(r *http.Request) string {
	if authHeader := r.Header.Get("Authorization"); strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	}
	if cookie, err := r.Cookie(SessionCookieName); err == nil {
		return cookie.Value
	}
	return ""
}
