package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/gymfit/api-server-go/models"
	"github.com/gymfit/api-server-go/shared/utils"
)

type contextKey string

const contextKeyAdminClaims contextKey = "admin_claims"

// JWTAuthConfig contains configuration for JWT authentication
type JWTAuthConfig struct {
	// Secret is the HS256 signing key shared with the token issuer.
	Secret string
	// SkipPathPrefixes lists path prefixes that bypass authentication.
	SkipPathPrefixes []string
}

// Validate checks the configuration is usable
func (c JWTAuthConfig) Validate() error {
	if strings.TrimSpace(c.Secret) == "" {
		return fmt.Errorf("JWT secret is required")
	}
	return nil
}

// JWTAuthMiddleware validates administrator bearer tokens. Signature and
// expiry only; there is no revocation list.
type JWTAuthMiddleware struct {
	secret    []byte
	skipPaths []string
}

// NewJWTAuthMiddleware creates a new JWT authentication middleware
func NewJWTAuthMiddleware(config JWTAuthConfig) (*JWTAuthMiddleware, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &JWTAuthMiddleware{
		secret:    []byte(config.Secret),
		skipPaths: config.SkipPathPrefixes,
	}, nil
}

// AuthenticateJWT returns a middleware function that validates bearer tokens
func (j *JWTAuthMiddleware) AuthenticateJWT(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if j.shouldSkipAuth(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}

		tokenString, err := ExtractBearerToken(r)
		if err != nil {
			slog.Warn("Failed to extract bearer token", "error", err, "path", r.URL.Path, "method", r.Method)
			utils.RespondWithError(w, http.StatusUnauthorized, "Invalid or missing authorization header")
			return
		}

		claims, err := j.validateToken(tokenString)
		if err != nil {
			slog.Warn("Token validation failed", "error", err, "path", r.URL.Path, "method", r.Method)
			utils.RespondWithError(w, http.StatusUnauthorized, "Invalid access token")
			return
		}

		if claims.Role != models.RoleAdmin {
			slog.Warn("Token lacks admin role", "role", claims.Role, "email", claims.Email, "path", r.URL.Path)
			utils.RespondWithError(w, http.StatusForbidden, "Administrator role required")
			return
		}

		ctx := SetAdminClaims(r.Context(), claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// validateToken parses the token and verifies signature and expiry
func (j *JWTAuthMiddleware) validateToken(tokenString string) (*models.AdminClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &models.AdminClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return j.secret, nil
	}, jwt.WithValidMethods([]string{"HS256"}), jwt.WithExpirationRequired())
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	claims, ok := token.Claims.(*models.AdminClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}

	if claims.Subject == "" {
		return nil, fmt.Errorf("subject claim is missing")
	}
	if claims.Email == "" {
		return nil, fmt.Errorf("email claim is missing")
	}

	return claims, nil
}

// shouldSkipAuth determines if authentication should be skipped for this path
func (j *JWTAuthMiddleware) shouldSkipAuth(path string) bool {
	for _, skipPath := range j.skipPaths {
		if strings.HasPrefix(path, skipPath) {
			return true
		}
	}
	return false
}

// ExtractBearerToken extracts the Bearer token from the Authorization header
func ExtractBearerToken(r *http.Request) (string, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", fmt.Errorf("authorization header is missing")
	}

	if !strings.HasPrefix(authHeader, "Bearer ") {
		return "", fmt.Errorf("authorization header must start with 'Bearer '")
	}

	token := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	if token == "" {
		return "", fmt.Errorf("bearer token is empty")
	}

	return token, nil
}

// SetAdminClaims stores the authenticated administrator claims in the context
func SetAdminClaims(ctx context.Context, claims *models.AdminClaims) context.Context {
	return context.WithValue(ctx, contextKeyAdminClaims, claims)
}

// GetAdminClaims retrieves the authenticated administrator claims, or an error
// when the request was not authenticated.
func GetAdminClaims(ctx context.Context) (*models.AdminClaims, error) {
	claims, ok := ctx.Value(contextKeyAdminClaims).(*models.AdminClaims)
	if !ok || claims == nil {
		return nil, fmt.Errorf("no authenticated administrator in context")
	}
	return claims, nil
}
