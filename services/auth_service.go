package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/gymfit/api-server-go/models"
	apperrors "github.com/gymfit/api-server-go/pkg/errors"
)

// AuthService authenticates administrators and issues bearer tokens
type AuthService struct {
	db          *gorm.DB
	secret      []byte
	tokenExpiry time.Duration
}

// NewAuthService creates a new auth service. The secret signs HS256 tokens
// and must match the verification middleware.
func NewAuthService(db *gorm.DB, secret string, tokenExpiry time.Duration) *AuthService {
	return &AuthService{
		db:          db,
		secret:      []byte(secret),
		tokenExpiry: tokenExpiry,
	}
}

// Login verifies administrator credentials and returns a signed access token.
// Unknown emails and wrong passwords produce the same error so the endpoint
// does not leak which administrators exist.
func (s *AuthService) Login(ctx context.Context, req models.LoginRequest) (*models.TokenResponse, error) {
	email := strings.TrimSpace(strings.ToLower(req.Email))
	if email == "" || req.Password == "" {
		return nil, apperrors.ValidationError("MISSING_CREDENTIALS", "email and password are required")
	}

	var admin models.Administrator
	err := s.db.WithContext(ctx).First(&admin, "email = ?", email).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			slog.Warn("Login failed, unknown email", "email", email)
			return nil, apperrors.UnauthorizedError("invalid email or password")
		}
		return nil, apperrors.DatabaseError("lookup administrator", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(req.Password)); err != nil {
		slog.Warn("Login failed, wrong password", "email", email)
		return nil, apperrors.UnauthorizedError("invalid email or password")
	}

	token, err := s.issueToken(&admin)
	if err != nil {
		return nil, apperrors.InternalError("failed to sign access token")
	}

	slog.Info("Administrator logged in", "admin_id", admin.AdminID, "email", admin.Email)
	return &models.TokenResponse{
		AccessToken: token,
		TokenType:   "bearer",
		ExpiresIn:   int64(s.tokenExpiry.Seconds()),
	}, nil
}

// issueToken signs an HS256 token carrying the administrator identity
func (s *AuthService) issueToken(admin *models.Administrator) (string, error) {
	now := time.Now().UTC()
	claims := models.AdminClaims{
		Email: admin.Email,
		Role:  admin.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   admin.AdminID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenExpiry)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// HashPassword produces a bcrypt hash for storage in administrators.password_hash
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
