package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/caseboard/visit-scheduler/internal/models"
	"github.com/caseboard/visit-scheduler/internal/repository"
	"github.com/caseboard/visit-scheduler/internal/services"
)

type contextKey string

const (
	UserContextKey  contextKey = "user"
	TokenContextKey contextKey = "token"
)

// RequireAuth accepts either a session cookie or an "Authorization: Bearer"
// API token. Requests authenticated by token carry the token in the context.
func RequireAuth(authService *services.AuthService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			if header := r.Header.Get("Authorization"); header != "" {
				user, token, err := authService.AuthenticateToken(ctx, strings.TrimPrefix(header, "Bearer "))
				if err != nil {
					if !errors.Is(err, services.ErrUnauthenticated) && !errors.Is(err, services.ErrTokenExpired) {
						slog.Error("authenticating token", "error", err)
					}
					writeError(w, http.StatusUnauthorized, "unauthorized")
					return
				}
				ctx = context.WithValue(ctx, UserContextKey, user)
				ctx = context.WithValue(ctx, TokenContextKey, token)
				next.ServeHTTP(w, r.WithContext(ctx))
				return
			}

			user, err := authService.GetCurrentUser(r)
			if err != nil {
				writeError(w, http.StatusUnauthorized, "unauthorized")
				return
			}

			ctx = context.WithValue(ctx, UserContextKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAPIScope turns away tokens issued for intake only.
func RequireAPIScope(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if token, ok := GetToken(r.Context()); ok && token.Scope != repository.ScopeAPI {
			writeError(w, http.StatusForbidden, "token scope does not allow this request")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user := GetUser(r.Context())
		if user.Role != models.RoleAdmin {
			writeError(w, http.StatusForbidden, "forbidden")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func GetUser(ctx context.Context) models.User {
	user, _ := ctx.Value(UserContextKey).(models.User)
	return user
}

func GetToken(ctx context.Context) (models.APIToken, bool) {
	token, ok := ctx.Value(TokenContextKey).(models.APIToken)
	return token, ok
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
