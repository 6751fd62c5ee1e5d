package http

import (
	"context"
	"net/http"
	"strings"
	"time"

	"librental-backend/internal/domain"
	"librental-backend/internal/logger"
	"librental-backend/internal/security"
)

type contextKey string

const claimsKey contextKey = "claims"

// AuthMiddleware validates bearer tokens and places the claims in the
// request context.
type AuthMiddleware struct {
	tokens security.TokenManager
}

func NewAuthMiddleware(tokens security.TokenManager) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens}
}

// Require rejects requests without a valid access token.
func (m *AuthMiddleware) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "missing bearer token"})
			return
		}

		claims, err := m.tokens.ValidateToken(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			writeError(w, err)
			return
		}
		if claims.Type != security.TokenTypeAccess {
			writeError(w, security.ErrWrongTokenType)
			return
		}

		ctx := context.WithValue(r.Context(), claimsKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAdmin additionally rejects non-admin users. Must run inside Require.
func (m *AuthMiddleware) RequireAdmin(next http.Handler) http.Handler {
	return m.Require(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims := ClaimsFromContext(r.Context())
		if claims == nil || claims.Role != string(domain.UserRoleAdmin) {
			writeJSON(w, http.StatusForbidden, errorResponse{Error: "admin role required"})
			return
		}
		next.ServeHTTP(w, r)
	}))
}

// ClaimsFromContext returns the authenticated claims, or nil.
func ClaimsFromContext(ctx context.Context) *security.UserClaims {
	claims, _ := ctx.Value(claimsKey).(*security.UserClaims)
	return claims
}

// LoggingMiddleware logs one line per request.
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		logger.Info("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration_ms", time.Since(start).Milliseconds())
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
