package services

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/gymfit/api-server-go/models"
	apperrors "github.com/gymfit/api-server-go/pkg/errors"
)

const testSecret = "test-signing-secret"

func seedAdmin(t *testing.T, db *gorm.DB, email, password string) {
	t.Helper()

	hash, err := HashPassword(password)
	require.NoError(t, err)

	admin := models.Administrator{
		AdminID:      "adm_test",
		Email:        email,
		PasswordHash: hash,
		Name:         "Test Admin",
		Role:         models.RoleAdmin,
	}
	require.NoError(t, db.Create(&admin).Error)
}

func TestLogin_Success(t *testing.T) {
	db := SetupTestDB(t)
	svc := NewAuthService(db, testSecret, time.Hour)
	seedAdmin(t, db, "admin@gym.com", "admin123")

	resp, err := svc.Login(context.Background(), models.LoginRequest{
		Email:    "admin@gym.com",
		Password: "admin123",
	})
	require.NoError(t, err)

	assert.Equal(t, "bearer", resp.TokenType)
	assert.EqualValues(t, 3600, resp.ExpiresIn)

	claims := &models.AdminClaims{}
	token, err := jwt.ParseWithClaims(resp.AccessToken, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(testSecret), nil
	})
	require.NoError(t, err)
	require.True(t, token.Valid)

	assert.Equal(t, "adm_test", claims.Subject)
	assert.Equal(t, "admin@gym.com", claims.Email)
	assert.Equal(t, models.RoleAdmin, claims.Role)
	assert.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt.Time, time.Minute)
}

func TestLogin_EmailIsCaseInsensitive(t *testing.T) {
	db := SetupTestDB(t)
	svc := NewAuthService(db, testSecret, time.Hour)
	seedAdmin(t, db, "admin@gym.com", "admin123")

	_, err := svc.Login(context.Background(), models.LoginRequest{
		Email:    "  Admin@Gym.com ",
		Password: "admin123",
	})
	require.NoError(t, err)
}

func TestLogin_Failures(t *testing.T) {
	db := SetupTestDB(t)
	svc := NewAuthService(db, testSecret, time.Hour)
	seedAdmin(t, db, "admin@gym.com", "admin123")

	tests := []struct {
		name     string
		req      models.LoginRequest
		wantType apperrors.ErrorType
	}{
		{"wrong password", models.LoginRequest{Email: "admin@gym.com", Password: "nope"}, apperrors.ErrorTypeUnauthorized},
		{"unknown email", models.LoginRequest{Email: "ghost@gym.com", Password: "admin123"}, apperrors.ErrorTypeUnauthorized},
		{"missing credentials", models.LoginRequest{}, apperrors.ErrorTypeValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Login(context.Background(), tt.req)
			require.Error(t, err)

			apiErr := apperrors.GetAPIError(err)
			require.NotNil(t, apiErr)
			assert.Equal(t, tt.wantType, apiErr.Type)
		})
	}
}

func TestLogin_SameErrorForUnknownEmailAndWrongPassword(t *testing.T) {
	db := SetupTestDB(t)
	svc := NewAuthService(db, testSecret, time.Hour)
	seedAdmin(t, db, "admin@gym.com", "admin123")

	_, errWrongPassword := svc.Login(context.Background(), models.LoginRequest{Email: "admin@gym.com", Password: "nope"})
	_, errUnknownEmail := svc.Login(context.Background(), models.LoginRequest{Email: "ghost@gym.com", Password: "admin123"})

	require.Error(t, errWrongPassword)
	require.Error(t, errUnknownEmail)
	assert.Equal(t, errWrongPassword.Error(), errUnknownEmail.Error())
}

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("secret")
	require.NoError(t, err)
	assert.NotEqual(t, "secret", hash)

	again, err := HashPassword("secret")
	require.NoError(t, err)
	assert.NotEqual(t, hash, again)
}
