package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/iho/bankledger/internal/domain"
)

// TokenVerifier resolves a bearer token to the identity it was issued for.
type TokenVerifier interface {
	Identify(token string) (*domain.Identity, error)
}

// Authenticate rejects requests without a valid bearer token and stores the
// caller's identity in the request context. failures may be nil.
func Authenticate(verifier TokenVerifier, failures *prometheus.CounterVec) func(http.Handler) http.Handler {
	reject := func(w http.ResponseWriter, reason, message string) {
		if failures != nil {
			failures.WithLabelValues(reason).Inc()
		}
		writeError(w, http.StatusUnauthorized, domain.KindAuth, message)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				reject(w, "missing", "missing authorization header")
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
				reject(w, "malformed", "invalid authorization header format")
				return
			}

			identity, err := verifier.Identify(parts[1])
			if err != nil {
				reason := "invalid"
				if errors.Is(err, domain.ErrExpiredToken) {
					reason = "expired"
				}
				reject(w, reason, "invalid or expired token")
				return
			}

			ctx := domain.ContextWithIdentity(r.Context(), identity)
			zerolog.Ctx(ctx).UpdateContext(func(c zerolog.Context) zerolog.Context {
				return c.Str("user_id", identity.UserID)
			})

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
