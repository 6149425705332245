package auth

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/BradenHooton/userdesk/internal/models"
	pkghttp "github.com/BradenHooton/userdesk/pkg/http"
)

type contextKey string

const principalContextKey contextKey = "principal"

// PrincipalLoader fetches the current state of the user a token was issued to
type PrincipalLoader interface {
	GetByID(ctx context.Context, id int64) (*models.User, error)
}

// AuthMiddleware validates the bearer token, loads the user it names and
// stores that user on the request context as the principal.
func AuthMiddleware(tm *TokenManager, users PrincipalLoader, logger *slog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				pkghttp.WriteUnauthorized(w, "missing authorization header")
				return
			}

			scheme, tokenString, found := strings.Cut(authHeader, " ")
			if !found || !strings.EqualFold(scheme, "Bearer") || tokenString == "" {
				pkghttp.WriteUnauthorized(w, "invalid authorization header format")
				return
			}

			claims, err := tm.ValidateToken(tokenString)
			if err != nil {
				logger.Debug("token rejected", slog.Any("error", err))
				pkghttp.WriteUnauthorized(w, "invalid or expired token")
				return
			}

			user, err := users.GetByID(r.Context(), claims.UserID)
			if err != nil {
				if errors.Is(err, models.ErrNotFound) {
					pkghttp.WriteUnauthorized(w, "invalid or expired token")
					return
				}
				logger.Error("failed to load principal", slog.Int64("user_id", claims.UserID), slog.Any("error", err))
				pkghttp.WriteInternalError(w, "internal server error")
				return
			}

			if !user.Active {
				pkghttp.WriteUnauthorized(w, "account is inactive")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), user)))
		})
	}
}

// RequireAuthority allows the request when the principal holds any of labels
func RequireAuthority(labels ...string) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal := PrincipalFromContext(r.Context())
			if principal == nil {
				pkghttp.WriteUnauthorized(w, "unauthorized")
				return
			}

			for _, label := range labels {
				if principal.HasAuthority(label) {
					next.ServeHTTP(w, r)
					return
				}
			}

			pkghttp.WriteForbidden(w, "forbidden: insufficient permissions")
		})
	}
}

// WithPrincipal returns a copy of ctx carrying user as the authenticated principal
func WithPrincipal(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, principalContextKey, user)
}

// PrincipalFromContext returns the authenticated user, or nil
func PrincipalFromContext(ctx context.Context) *models.User {
	user, ok := ctx.Value(principalContextKey).(*models.User)
	if !ok {
		return nil
	}
	return user
}
