package handler

import (
	"context"
	"net/http"
	"strings"

	"pdf-viewer/internal/domain"
)

// AuthMiddleware validates Supabase JWT tokens
type AuthMiddleware struct {
	authService domain.AuthService
	logger      domain.Logger
}

// NewAuthMiddleware creates a new auth middleware
func NewAuthMiddleware(authService domain.AuthService, logger domain.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		authService: authService,
		logger:      logger,
	}
}

// Middleware rejects requests without a valid bearer token and stores the
// user and token in the request context. The user id becomes the owner of
// every viewer session the request creates or reaches.
func (m *AuthMiddleware) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, msg := bearerToken(r.Header.Get("Authorization"))
		if msg != "" {
			writeError(w, http.StatusUnauthorized, msg)
			return
		}

		user, err := m.authService.ValidateToken(token)
		if err != nil {
			m.logger.Warn("Token validation failed", "error", err.Error(), "path", r.URL.Path)
			writeError(w, http.StatusUnauthorized, "Invalid token")
			return
		}
		if user == nil || user.ID == "" {
			m.logger.Warn("Token resolved to no user", "path", r.URL.Path)
			writeError(w, http.StatusUnauthorized, "Invalid token")
			return
		}

		ctx := context.WithValue(r.Context(), userContextKey, user)
		ctx = context.WithValue(ctx, tokenContextKey, token)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// bearerToken extracts the token of a "Bearer <token>" header, or returns
// the message to reject the request with.
func bearerToken(header string) (string, string) {
	if header == "" {
		return "", "Authorization header required"
	}
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || scheme != "Bearer" || strings.Contains(token, " ") {
		return "", "Invalid authorization header format"
	}
	if token == "" {
		return "", "Token required"
	}
	return token, ""
}
