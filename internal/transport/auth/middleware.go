package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"loan_allocator/internal/repository"
)

type ctxKey string

const UserIDKey ctxKey = "userID"

type TokenRepo interface {
	FindTokenByPlainToken(ctx context.Context, plainToken string) (*repository.APIToken, error)
}

// TokenMiddleware guards mutating endpoints with bearer tokens from
// the api_tokens table. The token may also arrive as a ?token= query
// parameter for clients that cannot set headers.
func TokenMiddleware(tokenRepo TokenRepo) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// allow OPTIONS (CORS preflight) to pass through
			if r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}

			authHeader := r.Header.Get("Authorization")
			var tok *repository.APIToken
			if authHeader != "" && strings.HasPrefix(authHeader, "Bearer ") {
				plainToken := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
				if plainToken != "" {
					t, err := tokenRepo.FindTokenByPlainToken(r.Context(), plainToken)
					if err == nil {
						tok = t
					} else {
						fmt.Printf("[AUTH] token lookup (header) error: %v\n", err)
					}
				}
			}

			if tok == nil {
				token := r.URL.Query().Get("token")
				if token != "" {
					t, err := tokenRepo.FindTokenByPlainToken(r.Context(), token)
					if err == nil {
						tok = t
					} else {
						fmt.Printf("[AUTH] token lookup (query) error: %v\n", err)
					}
				}
			}

			if tok == nil {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			if tok.ExpiresAt != nil && tok.ExpiresAt.Before(time.Now()) {
				http.Error(w, "Token expired", http.StatusUnauthorized)
				return
			}

			// user id travels as string, matching the run records
			uid := fmt.Sprintf("%d", tok.UserID)
			ctx := context.WithValue(r.Context(), UserIDKey, uid)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func GetUserID(ctx context.Context) (string, error) {
	v, ok := ctx.Value(UserIDKey).(string)
	if !ok || v == "" {
		return "", errors.New("userID not found in context")
	}
	return v, nil
}
