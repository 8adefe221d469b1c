package middleware

import (
	"math"
	"net/http"
	"strconv"

	"ideaboard/internal/service"
	"ideaboard/pkg/errors"
	"ideaboard/pkg/logger"
)

// RateLimitVotes rejects authenticated callers that toggle more often than
// limiter allows. Anonymous requests pass through so the vote handler can
// send them to login. Limiter failures let the request through.
func RateLimitVotes(limiter service.VoteLimiter, log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gate := GateFromRequest(r)
			if !gate.IsAuthenticated() {
				next.ServeHTTP(w, r)
				return
			}
			identity := gate.CurrentIdentity()

			info, err := limiter.Allow(r.Context(), identity.UserID)
			if err != nil {
				log.WithError(err).WithField("user_id", identity.UserID).Warn("Vote rate limit check failed, allowing request")
				next.ServeHTTP(w, r)
				return
			}

			if !info.IsAllowed {
				w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(info.TTL.Seconds()))))
				WriteError(w, r, errors.NewRateLimitError("Too many vote changes, try again later", info.TTL), log)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
