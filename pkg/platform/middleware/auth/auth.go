package auth

import (
	"log/slog"
	"net/http"
	"strings"

	id "confessional/pkg/domain"
	dErrors "confessional/pkg/domain-errors"
	"confessional/pkg/platform/httputil"
	"confessional/pkg/requestcontext"
)

// JWTValidator validates bearer tokens issued at login.
type JWTValidator interface {
	ValidateToken(tokenString string) (*JWTClaims, error)
}

// JWTClaims carries the authenticated principal. Status and role are never read
// from the token; the core re-reads the principal on every operation.
type JWTClaims struct {
	PrincipalID string
}

// RequireAuth validates the bearer token and stores the principal ID in the request context.
// Handlers pass that ID explicitly into the core.
func RequireAuth(validator JWTValidator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			requestID := requestcontext.RequestID(ctx)

			token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok || token == "" {
				logger.WarnContext(ctx, "unauthorized access - missing token",
					"request_id", requestID,
				)
				httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "missing or invalid Authorization header"))
				return
			}

			claims, err := validator.ValidateToken(token)
			if err != nil {
				logger.WarnContext(ctx, "unauthorized access - invalid token",
					"error", err,
					"request_id", requestID,
				)
				httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "invalid or expired token"))
				return
			}

			principalID, err := id.ParsePrincipalID(claims.PrincipalID)
			if err != nil {
				logger.WarnContext(ctx, "unauthorized access - malformed token subject",
					"error", err,
					"request_id", requestID,
				)
				httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "invalid or expired token"))
				return
			}

			ctx = requestcontext.WithPrincipalID(ctx, principalID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
