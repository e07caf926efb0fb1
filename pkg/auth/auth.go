// Package auth provides the HTTP authentication middleware. Requests carry a
// bearer JWT whose subject claim identifies the user; with auth disabled the
// caller may name itself via a header instead, which keeps local development
// friction-free.
package auth

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"atlas-backend/pkg/api"
)

type contextKey string

const userIDKey contextKey = "userId"

// UserIDHeader names the caller when authentication is disabled.
const UserIDHeader = "X-User-ID"

// anonymousUser is used when auth is off and no header was sent.
const anonymousUser = "anonymous"

// UserID returns the authenticated user id from the context.
func UserID(ctx context.Context) string {
	id, _ := ctx.Value(userIDKey).(string)
	return id
}

// WithUserID returns a context carrying the user id. Exposed for tests and
// internal callers.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// Middleware validates bearer tokens and injects the user id into the
// request context. When enabled is false it falls back to the user header.
func Middleware(secret string, enabled bool, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !enabled {
				userID := r.Header.Get(UserIDHeader)
				if userID == "" {
					userID = anonymousUser
				}
				next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), userID)))
				return
			}

			header := r.Header.Get("Authorization")
			if !strings.HasPrefix(header, "Bearer ") {
				api.Error(w, http.StatusUnauthorized, "missing bearer token")
				return
			}

			userID, err := validateToken(strings.TrimPrefix(header, "Bearer "), secret)
			if err != nil {
				logger.Debug("token rejected", zap.Error(err))
				api.Error(w, http.StatusUnauthorized, "invalid token")
				return
			}
			next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), userID)))
		})
	}
}

func validateToken(tokenString, secret string) (string, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return "", err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", fmt.Errorf("invalid token claims")
	}
	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return "", fmt.Errorf("token has no subject")
	}
	return sub, nil
}
