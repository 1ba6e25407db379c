package auth

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/arjunmeena977/vendor-ecommerce/pkg/web"
)

// Middleware authenticates requests and enforces route capabilities.
type Middleware struct {
	tokens   *TokenManager
	resolver IdentityResolver
	logger   *slog.Logger
}

func NewMiddleware(tokens *TokenManager, resolver IdentityResolver, logger *slog.Logger) *Middleware {
	return &Middleware{
		tokens:   tokens,
		resolver: resolver,
		logger:   logger.With("component", "auth"),
	}
}

// Authenticate verifies the bearer token, resolves the current user and puts
// the identity into the request context. Requests without a valid token are
// rejected with 401.
func (m *Middleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			web.RespondError(w, m.logger, http.StatusUnauthorized, "Authorization header is required")
			return
		}
		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == authHeader {
			web.RespondError(w, m.logger, http.StatusUnauthorized, "Bearer token is required")
			return
		}

		userID, err := m.tokens.Parse(tokenString)
		if err != nil {
			web.RespondError(w, m.logger, http.StatusUnauthorized, "Invalid token")
			return
		}

		identity, err := m.resolver.ResolveIdentity(r.Context(), userID)
		if err != nil {
			m.logger.WarnContext(r.Context(), "Token subject could not be resolved", "user_id", userID, "error", err)
			web.RespondError(w, m.logger, http.StatusUnauthorized, "User not found")
			return
		}

		next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), identity)))
	})
}

// Require enforces the given capability for every request in the group.
// It must be mounted after Authenticate for any capability above Public.
func (m *Middleware) Require(c Capability) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			err := Authorize(IdentityFromContext(r.Context()), c)
			switch {
			case err == nil:
				next.ServeHTTP(w, r)
			case errors.Is(err, ErrUnauthenticated):
				web.RespondError(w, m.logger, http.StatusUnauthorized, err.Error())
			default:
				web.RespondError(w, m.logger, http.StatusForbidden, err.Error())
			}
		})
	}
}

// RequireIdentity returns the identity or writes a 401. Handlers use it after
// the Authenticate middleware to obtain the actor.
func RequireIdentity(w http.ResponseWriter, r *http.Request, logger *slog.Logger) (*Identity, bool) {
	identity := IdentityFromContext(r.Context())
	if identity == nil {
		web.RespondError(w, logger, http.StatusUnauthorized, "authentication required")
		return nil, false
	}
	return identity, true
}
