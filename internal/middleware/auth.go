package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/ayush/travel-journal/backend/internal/apperr"
	"github.com/ayush/travel-journal/backend/internal/auth"
	"github.com/ayush/travel-journal/backend/internal/httputil"
)

// Verifier resolves a raw bearer token to its claims.
type Verifier interface {
	Verify(ctx context.Context, raw string) (*auth.Claims, error)
}

// RequireAuth is middleware that validates the bearer token and
// injects its claims into the request context.
func RequireAuth(v Verifier, log *logrus.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, err := bearerToken(r)
			if err != nil {
				httputil.WriteError(w, r, log, err)
				return
			}

			claims, err := v.Verify(r.Context(), raw)
			if err != nil {
				log.WithError(err).WithField("path", r.URL.Path).Debug("token rejected")
				httputil.WriteError(w, r, log, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(auth.WithClaims(r.Context(), claims)))
		})
	}
}

func bearerToken(r *http.Request) (string, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", apperr.Auth("Access token required")
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
		return "", apperr.Auth("Invalid Authorization header format")
	}
	return strings.TrimSpace(parts[1]), nil
}
