package auth

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"bookapi/internal/store"
	"bookapi/internal/user"
)

type ctxKey string

const userKey ctxKey = "user"

func UserFromContext(ctx context.Context) (*user.User, bool) {
	u, ok := ctx.Value(userKey).(*user.User)
	return u, ok
}

func WithUser(ctx context.Context, u *user.User) context.Context {
	return context.WithValue(ctx, userKey, u)
}

// BearerToken returns the second whitespace-separated part of the
// Authorization header.
func BearerToken(r *http.Request) (string, bool) {
	parts := strings.Fields(r.Header.Get("Authorization"))
	if len(parts) < 2 {
		return "", false
	}
	return parts[1], true
}

// RequireAuth admits a request only when it carries a verified token that is
// not on the deny-list and whose user still exists.
func RequireAuth(jwtSvc *JWT, users store.Users, denylist store.Denylist, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := BearerToken(r)
			if !ok {
				http.Error(w, "Access denied. No token provided.", http.StatusUnauthorized)
				return
			}

			claims, err := jwtSvc.Verify(token)
			if err != nil {
				http.Error(w, "Invalid token.", http.StatusForbidden)
				return
			}

			revoked, err := denylist.Contains(r.Context(), token)
			if err != nil {
				log.Error("denylist lookup failed", "error", err)
				internalError(w, err)
				return
			}
			if revoked {
				http.Error(w, "Invalid token.", http.StatusForbidden)
				return
			}

			u, err := users.FindUserByID(r.Context(), claims.UserID)
			if errors.Is(err, store.ErrNotFound) {
				http.Error(w, "User not found.", http.StatusNotFound)
				return
			}
			if err != nil {
				log.Error("user lookup failed", "error", err)
				internalError(w, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), u)))
		})
	}
}

func internalError(w http.ResponseWriter, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusInternalServerError)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}
